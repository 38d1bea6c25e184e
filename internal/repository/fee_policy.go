package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/patrickmn/go-cache"
)

var (
	ErrFeePolicyNotFound = errors.New("fee policy not found")
)

type FeePolicyRepository interface {
	GetFeePolicy() (entity.MarketplaceFee, error)
	SaveFeePolicy(fee entity.MarketplaceFee) error
}

type memoryFeePolicyRepository struct {
	cache *cache.Cache
}

func NewMemoryFeePolicyRepository() FeePolicyRepository {
	return memoryFeePolicyRepository{cache.New(cache.NoExpiration, 0)}
}

func (r memoryFeePolicyRepository) GetFeePolicy() (entity.MarketplaceFee, error) {
	item, found := r.cache.Get(entity.MarketplaceFee{}.Slug())
	if !found {
		return entity.MarketplaceFee{}, ErrFeePolicyNotFound
	}

	return item.(entity.MarketplaceFee), nil
}

func (r memoryFeePolicyRepository) SaveFeePolicy(fee entity.MarketplaceFee) error {
	r.cache.Set(fee.Slug(), fee, cache.NoExpiration)

	return nil
}

type elasticFeePolicyRepository struct {
	elastic elastic_search.Index
}

func NewElasticFeePolicyRepository(elastic elastic_search.Index) FeePolicyRepository {
	return elasticFeePolicyRepository{elastic}
}

func (r elasticFeePolicyRepository) GetFeePolicy() (entity.MarketplaceFee, error) {
	source, err := r.elastic.Get(elastic_search.MarketplaceIndex.Get(), entity.MarketplaceFee{}.Slug())
	if err != nil {
		if errors.Is(err, elastic_search.ErrDocumentNotFound) {
			return entity.MarketplaceFee{}, ErrFeePolicyNotFound
		}
		return entity.MarketplaceFee{}, fmt.Errorf("failed to load fee policy: %w", err)
	}

	var fee entity.MarketplaceFee
	err = json.Unmarshal(source, &fee)

	return fee, err
}

func (r elasticFeePolicyRepository) SaveFeePolicy(fee entity.MarketplaceFee) error {
	return r.elastic.Save(elastic_search.MarketplaceIndex.Get(), fee)
}
