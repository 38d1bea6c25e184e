package entity

import (
	"github.com/nu7hatch/gouuid"
	"time"
)

type ListingEventType string

const (
	ListingCreatedEvent   ListingEventType = "ListingCreated"
	ListingSoldEvent      ListingEventType = "ListingSold"
	ListingCancelledEvent ListingEventType = "ListingCancelled"
)

type ListingEvent struct {
	ID         string           `json:"id"`
	Type       ListingEventType `json:"type"`
	Caller     Address          `json:"caller"`
	Listing    Listing          `json:"listing"`
	Settlement *Settlement      `json:"settlement,omitempty"`
	Time       time.Time        `json:"time"`
}

func NewListingEvent(eventType ListingEventType, caller Address, listing Listing) ListingEvent {
	id := ""
	if u, err := uuid.NewV4(); err == nil {
		id = u.String()
	}

	return ListingEvent{
		ID:      id,
		Type:    eventType,
		Caller:  caller,
		Listing: listing,
		Time:    time.Now(),
	}
}

func (e ListingEvent) Slug() string {
	return e.ID
}

type Entity interface {
	Slug() string
}
