package indexer

import (
	"encoding/json"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search/elastictest"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

const eventIndex = "zilliqa.test.listingevent"

func listingEvent(eventType entity.ListingEventType, id string) entity.ListingEvent {
	return entity.NewListingEvent(eventType, entity.ZeroAddress, entity.Listing{Id: id, AssetStandard: entity.SingleUnit})
}

func TestIndexPersistsFullBatches(t *testing.T) {
	server := elastictest.NewServer(t)
	indexer := NewListingEventIndexer(elastic_search.NewIndex(server.Client(t), "", 2), eventIndex)

	indexer.Index(listingEvent(entity.ListingCreatedEvent, "a"))
	assert.Equal(t, 0, server.Count(eventIndex))

	indexer.Index(listingEvent(entity.ListingSoldEvent, "a"))
	assert.Equal(t, 2, server.Count(eventIndex))

	indexer.Index(listingEvent(entity.ListingCreatedEvent, "b"))
	assert.Equal(t, 2, server.Count(eventIndex))
	assert.Equal(t, 1, indexer.Flush())
	assert.Equal(t, 3, server.Count(eventIndex))
	assert.Equal(t, 0, indexer.Flush())
}

func TestIndexedEventDocument(t *testing.T) {
	server := elastictest.NewServer(t)
	indexer := NewListingEventIndexer(elastic_search.NewIndex(server.Client(t), "", 1), eventIndex)

	e := listingEvent(entity.ListingCancelledEvent, "duck")
	indexer.Index(e)

	raw, ok := server.Document(eventIndex, e.Slug())
	require.True(t, ok)

	var stored entity.ListingEvent
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, entity.ListingCancelledEvent, stored.Type)
	assert.Equal(t, "duck", stored.Listing.Id)
}

func TestListenIndexesEmittedEvents(t *testing.T) {
	server := elastictest.NewServer(t)
	indexer := NewListingEventIndexer(elastic_search.NewIndex(server.Client(t), "", 1), eventIndex)

	manager := event.NewManager()
	indexer.Listen(manager)

	manager.EmitEvent(event.ListingCreatedEvent, listingEvent(entity.ListingCreatedEvent, "a"))
	manager.EmitEvent(event.ListingSoldEvent, listingEvent(entity.ListingSoldEvent, "a"))
	manager.EmitEvent(event.ListingCancelledEvent, "ignored")

	assert.Eventually(t, func() bool { return server.Count(eventIndex) == 2 }, time.Second, 5*time.Millisecond)
	manager.Close()
}
