package main

import (
	"context"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config/di"
	"github.com/ZilDuck/zilliqa-marketplace/internal/indexer"
	"github.com/ZilDuck/zilliqa-marketplace/internal/messenger"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	messageService messenger.MessageService
	eventIndexer   indexer.ListingEventIndexer
)

func main() {
	config.Init("eventSubscriber")
	defer sentry.Flush(2 * time.Second)

	container, err := di.NewContainer(config.Get())
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	defer container.Delete()

	if messageService, err = container.GetMessenger(); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start messenger")
	}
	if eventIndexer, err = container.GetListingEventIndexer(); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start listing event indexer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pollListingEvents(ctx)
}

func pollListingEvents(ctx context.Context) {
	zap.L().Info("Subscribing to listing events")
	messages := make(chan *sqs.Message, 10)
	go messageService.PollMessages(ctx, messenger.ListingEvents, messages)

	for message := range messages {
		e, err := messenger.DecodeListingEvent(message.Body)
		if err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to read message")
			continue
		}

		eventIndexer.Index(e)
		eventIndexer.Flush()

		if err := messageService.DeleteMessage(messenger.ListingEvents, message); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to delete message")
		}
	}
}
