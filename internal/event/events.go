package event

import "github.com/ZilDuck/zilliqa-marketplace/internal/entity"

type Type string

const (
	ListingCreatedEvent   = Type(entity.ListingCreatedEvent)
	ListingSoldEvent      = Type(entity.ListingSoldEvent)
	ListingCancelledEvent = Type(entity.ListingCancelledEvent)
)

var ListingEvents = []Type{ListingCreatedEvent, ListingSoldEvent, ListingCancelledEvent}
