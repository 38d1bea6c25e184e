package messenger

import (
	"context"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"go.uber.org/zap"
	"time"
)

var (
	ErrQueueNotFound = errors.New("queue not found")
)

type MessageService interface {
	SendMessage(item Item, body []byte) error
	PollMessages(ctx context.Context, item Item, messages chan<- *sqs.Message)
	DeleteMessage(item Item, msg *sqs.Message) error
	GetQueueSize(item Item) (*int, error)
}

type Messenger struct {
	client sqsiface.SQSAPI
	queues map[Item]string
	wait   int64
}

type Item string

var (
	ListingEvents Item = "listing.events"
)

// NewMessenger maps each item to its SQS queue url. Items without a url cannot be used.
func NewMessenger(client sqsiface.SQSAPI, queues map[Item]string) MessageService {
	return &Messenger{client: client, queues: queues, wait: 20}
}

func (m Messenger) queueUrl(item Item) (*string, error) {
	url, ok := m.queues[item]
	if !ok || url == "" {
		zap.L().With(zap.String("item", string(item))).Error("Queue: Queue not found")
		return nil, fmt.Errorf("%w: %s", ErrQueueNotFound, item)
	}
	return aws.String(url), nil
}

func (m Messenger) SendMessage(item Item, body []byte) error {
	queueUrl, err := m.queueUrl(item)
	if err != nil {
		return err
	}

	out, err := m.client.SendMessage(&sqs.SendMessageInput{
		QueueUrl:    queueUrl,
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			"Item": {DataType: aws.String("String"), StringValue: aws.String(string(item))},
		},
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("item", string(item))).Error("Queue: Failed to send message")
		return err
	}

	zap.L().With(zap.String("item", string(item)), zap.String("messageId", aws.StringValue(out.MessageId))).Debug("Queue: Message sent")

	return nil
}

// PollMessages long polls the queue until ctx is done, then closes messages.
func (m Messenger) PollMessages(ctx context.Context, item Item, messages chan<- *sqs.Message) {
	defer close(messages)

	queueUrl, err := m.queueUrl(item)
	if err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		out, err := m.client.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            queueUrl,
			MaxNumberOfMessages: aws.Int64(10),
			WaitTimeSeconds:     aws.Int64(m.wait),
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			zap.L().With(zap.Error(err), zap.String("item", string(item))).Error("Queue: Failed to receive messages")
			time.Sleep(time.Second)
			continue
		}

		for _, message := range out.Messages {
			select {
			case messages <- message:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (m Messenger) DeleteMessage(item Item, msg *sqs.Message) error {
	queueUrl, err := m.queueUrl(item)
	if err != nil {
		return err
	}

	_, err = m.client.DeleteMessage(&sqs.DeleteMessageInput{
		QueueUrl:      queueUrl,
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("item", string(item))).Error("Queue: Failed to delete message")
	}

	return err
}

func (m Messenger) GetQueueSize(item Item) (*int, error) {
	queueUrl, err := m.queueUrl(item)
	if err != nil {
		return nil, err
	}

	out, err := m.client.GetQueueAttributes(&sqs.GetQueueAttributesInput{
		QueueUrl:       queueUrl,
		AttributeNames: []*string{aws.String(sqs.QueueAttributeNameApproximateNumberOfMessages)},
	})
	if err != nil {
		return nil, err
	}

	var size int
	if _, err := fmt.Sscanf(aws.StringValue(out.Attributes[sqs.QueueAttributeNameApproximateNumberOfMessages]), "%d", &size); err != nil {
		return nil, err
	}

	return &size, nil
}
