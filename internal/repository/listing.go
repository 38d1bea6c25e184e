package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
	"github.com/patrickmn/go-cache"
)

var (
	ErrListingNotFound = errors.New("listing not found")
)

type ListingRepository interface {
	GetListing(id string) (entity.Listing, error)
	SaveListing(listing entity.Listing) error

	// GetActiveListingsForAsset returns the seller's active listings of one asset, oldest first.
	GetActiveListingsForAsset(seller, contract entity.Address, assetId uint64) ([]entity.Listing, error)
	GetListingsByStatus(status entity.ListingStatus, size int) ([]entity.Listing, error)
}

type memoryListingRepository struct {
	cache *cache.Cache
}

func NewMemoryListingRepository() ListingRepository {
	return memoryListingRepository{cache.New(cache.NoExpiration, 0)}
}

func (r memoryListingRepository) GetListing(id string) (entity.Listing, error) {
	item, found := r.cache.Get(id)
	if !found {
		return entity.Listing{}, fmt.Errorf("%w: %s", ErrListingNotFound, id)
	}

	return item.(entity.Listing), nil
}

func (r memoryListingRepository) SaveListing(listing entity.Listing) error {
	r.cache.Set(listing.Id, listing, cache.NoExpiration)

	return nil
}

func (r memoryListingRepository) GetActiveListingsForAsset(seller, contract entity.Address, assetId uint64) ([]entity.Listing, error) {
	return r.filter(func(l entity.Listing) bool {
		return l.IsActive() && l.Seller == seller && l.AssetContract == contract && l.AssetId == assetId
	}, 0), nil
}

func (r memoryListingRepository) GetListingsByStatus(status entity.ListingStatus, size int) ([]entity.Listing, error) {
	return r.filter(func(l entity.Listing) bool {
		return l.Status == status
	}, size), nil
}

func (r memoryListingRepository) filter(match func(l entity.Listing) bool, size int) []entity.Listing {
	listings := make([]entity.Listing, 0)
	for _, item := range r.cache.Items() {
		if listing := item.Object.(entity.Listing); match(listing) {
			listings = append(listings, listing)
		}
	}
	sortByCreation(listings)

	if size > 0 && len(listings) > size {
		listings = listings[:size]
	}
	return listings
}

type elasticListingRepository struct {
	elastic elastic_search.Index
}

func NewElasticListingRepository(elastic elastic_search.Index) ListingRepository {
	return elasticListingRepository{elastic}
}

func (r elasticListingRepository) GetListing(id string) (entity.Listing, error) {
	source, err := r.elastic.Get(elastic_search.ListingIndex.Get(), entity.CreateListingSlug(id))
	if err != nil {
		if errors.Is(err, elastic_search.ErrDocumentNotFound) {
			return entity.Listing{}, fmt.Errorf("%w: %s", ErrListingNotFound, id)
		}
		return entity.Listing{}, err
	}

	var listing entity.Listing
	err = json.Unmarshal(source, &listing)

	return listing, err
}

func (r elasticListingRepository) SaveListing(listing entity.Listing) error {
	return r.elastic.Save(elastic_search.ListingIndex.Get(), listing)
}

func (r elasticListingRepository) GetActiveListingsForAsset(seller, contract entity.Address, assetId uint64) ([]entity.Listing, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("seller", seller.String()),
		elastic.NewTermQuery("assetContract", contract.String()),
		elastic.NewTermQuery("assetId", assetId),
		elastic.NewTermQuery("status", entity.ListingActive.String()),
	)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.ListingIndex.Get()).
		Query(query).
		Sort("createdAt", true).
		Size(100))

	return r.findMany(result, err)
}

func (r elasticListingRepository) GetListingsByStatus(status entity.ListingStatus, size int) ([]entity.Listing, error) {
	if size <= 0 {
		size = 100
	}
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("status", status.String()),
	)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.ListingIndex.Get()).
		Query(query).
		Sort("createdAt", true).
		Size(size))

	return r.findMany(result, err)
}

func (r elasticListingRepository) findMany(results *elastic.SearchResult, err error) ([]entity.Listing, error) {
	listings := make([]entity.Listing, 0)
	if err != nil {
		return listings, err
	}

	for _, hit := range results.Hits.Hits {
		var listing entity.Listing
		if err := json.Unmarshal(hit.Source, &listing); err != nil {
			return listings, err
		}
		listings = append(listings, listing)
	}
	sortByCreation(listings)

	return listings, nil
}
