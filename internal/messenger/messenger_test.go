package messenger

import (
	"context"
	"errors"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

const queueUrl = "https://sqs.eu-west-1.amazonaws.com/000000000000/marketplace-events"

type fakeSqs struct {
	sqsiface.SQSAPI

	mu       sync.Mutex
	sent     []*sqs.SendMessageInput
	pending  []*sqs.Message
	deleted  []string
	sendErr  error
	received int
}

func (f *fakeSqs) SendMessage(input *sqs.SendMessageInput) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, input)
	return &sqs.SendMessageOutput{MessageId: aws.String("m1")}, nil
}

func (f *fakeSqs) ReceiveMessageWithContext(ctx aws.Context, input *sqs.ReceiveMessageInput, _ ...request.Option) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	f.received++
	messages := f.pending
	f.pending = nil
	f.mu.Unlock()

	if len(messages) == 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return &sqs.ReceiveMessageOutput{Messages: messages}, nil
}

func (f *fakeSqs) DeleteMessage(input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, aws.StringValue(input.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSqs) GetQueueAttributes(input *sqs.GetQueueAttributesInput) (*sqs.GetQueueAttributesOutput, error) {
	return &sqs.GetQueueAttributesOutput{Attributes: map[string]*string{
		sqs.QueueAttributeNameApproximateNumberOfMessages: aws.String("7"),
	}}, nil
}

func (f *fakeSqs) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestMessenger(client sqsiface.SQSAPI) MessageService {
	return NewMessenger(client, map[Item]string{ListingEvents: queueUrl})
}

func TestSendMessage(t *testing.T) {
	client := &fakeSqs{}
	service := newTestMessenger(client)

	require.NoError(t, service.SendMessage(ListingEvents, []byte(`{"id":"1"}`)))
	require.Len(t, client.sent, 1)
	assert.Equal(t, queueUrl, aws.StringValue(client.sent[0].QueueUrl))
	assert.Equal(t, `{"id":"1"}`, aws.StringValue(client.sent[0].MessageBody))
	assert.Equal(t, string(ListingEvents), aws.StringValue(client.sent[0].MessageAttributes["Item"].StringValue))
}

func TestUnknownQueue(t *testing.T) {
	service := NewMessenger(&fakeSqs{}, map[Item]string{})

	assert.ErrorIs(t, service.SendMessage(ListingEvents, []byte("{}")), ErrQueueNotFound)
	assert.ErrorIs(t, service.DeleteMessage(ListingEvents, &sqs.Message{}), ErrQueueNotFound)
}

func TestSendMessageError(t *testing.T) {
	client := &fakeSqs{sendErr: errors.New("throttled")}
	assert.EqualError(t, newTestMessenger(client).SendMessage(ListingEvents, []byte("{}")), "throttled")
}

func TestPollAndDeleteMessages(t *testing.T) {
	client := &fakeSqs{pending: []*sqs.Message{
		{Body: aws.String(`{"id":"a"}`), ReceiptHandle: aws.String("r1")},
		{Body: aws.String(`{"id":"b"}`), ReceiptHandle: aws.String("r2")},
	}}
	service := newTestMessenger(client)

	ctx, cancel := context.WithCancel(context.Background())
	messages := make(chan *sqs.Message, 10)
	go service.PollMessages(ctx, ListingEvents, messages)

	first := <-messages
	second := <-messages
	assert.Equal(t, "r1", aws.StringValue(first.ReceiptHandle))
	assert.Equal(t, "r2", aws.StringValue(second.ReceiptHandle))
	require.NoError(t, service.DeleteMessage(ListingEvents, first))

	cancel()
	for range messages {
	}
	assert.Equal(t, []string{"r1"}, client.deleted)
}

func TestGetQueueSize(t *testing.T) {
	size, err := newTestMessenger(&fakeSqs{}).GetQueueSize(ListingEvents)
	require.NoError(t, err)
	assert.Equal(t, 7, *size)
}

func TestPublishListingEvents(t *testing.T) {
	client := &fakeSqs{}
	manager := event.NewManager()
	PublishListingEvents(manager, newTestMessenger(client))

	listing := entity.Listing{Id: "duck", Status: entity.ListingSold}
	manager.EmitEvent(event.ListingSoldEvent, entity.NewListingEvent(entity.ListingSoldEvent, entity.ZeroAddress, listing))
	manager.EmitEvent(event.ListingCancelledEvent, "not an event")

	assert.Eventually(t, func() bool { return client.sentCount() == 1 }, time.Second, 5*time.Millisecond)
	manager.Close()

	decoded, err := DecodeListingEvent(client.sent[0].MessageBody)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingSoldEvent, decoded.Type)
	assert.Equal(t, "duck", decoded.Listing.Id)
	assert.Equal(t, entity.ListingSold, decoded.Listing.Status)

	_, err = DecodeListingEvent(nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
