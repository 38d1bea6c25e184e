package indexer

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"go.uber.org/zap"
)

type ListingEventIndexer interface {
	Listen(listeners Listeners)
	IndexEvent(msg interface{})
	Index(e entity.ListingEvent)
	Flush() int
}

type Listeners interface {
	AddEventListener(eventType event.Type, callback func(msg interface{}))
}

type listingEventIndexer struct {
	elastic elastic_search.Index
	index   string
}

func NewListingEventIndexer(elastic elastic_search.Index, index string) ListingEventIndexer {
	return listingEventIndexer{elastic, index}
}

func (i listingEventIndexer) Listen(listeners Listeners) {
	for _, eventType := range event.ListingEvents {
		listeners.AddEventListener(eventType, i.IndexEvent)
	}
}

func (i listingEventIndexer) IndexEvent(msg interface{}) {
	e, ok := msg.(entity.ListingEvent)
	if !ok {
		zap.L().Warn("ListingEventIndexer: Unexpected event payload")
		return
	}
	i.Index(e)
}

// Index queues the event and persists once a full batch is pending.
func (i listingEventIndexer) Index(e entity.ListingEvent) {
	zap.L().With(
		zap.String("event", string(e.Type)),
		zap.String("listing", e.Listing.Id),
		zap.String("status", e.Listing.Status.String()),
	).Info("ListingEventIndexer: Index event")

	i.elastic.AddIndexRequest(i.index, e)
	i.elastic.BatchPersist()
}

func (i listingEventIndexer) Flush() int {
	if len(i.elastic.GetRequests()) == 0 {
		return 0
	}
	return i.elastic.Persist()
}
