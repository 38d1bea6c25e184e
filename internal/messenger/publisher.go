package messenger

import (
	"encoding/json"
	"errors"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"go.uber.org/zap"
)

var ErrEmptyMessage = errors.New("empty message body")

type Listeners interface {
	AddEventListener(eventType event.Type, callback func(msg interface{}))
}

// PublishListingEvents forwards every listing event emitted on the manager to the listing event queue.
func PublishListingEvents(listeners Listeners, service MessageService) {
	for _, eventType := range event.ListingEvents {
		eventType := eventType
		listeners.AddEventListener(eventType, func(msg interface{}) {
			e, ok := msg.(entity.ListingEvent)
			if !ok {
				zap.L().With(zap.String("type", string(eventType))).Warn("Queue: Unexpected event payload")
				return
			}
			if err := PublishListingEvent(service, e); err != nil {
				zap.L().With(zap.Error(err), zap.String("listing", e.Listing.Id)).Error("Queue: Failed to publish listing event")
			}
		})
	}
}

func PublishListingEvent(service MessageService, e entity.ListingEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return service.SendMessage(ListingEvents, body)
}

func DecodeListingEvent(body *string) (entity.ListingEvent, error) {
	var e entity.ListingEvent
	if body == nil {
		return e, ErrEmptyMessage
	}
	err := json.Unmarshal([]byte(*body), &e)
	return e, err
}
