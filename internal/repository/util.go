package repository

import (
	"context"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"
	"sort"
	"time"
)

func search(searchService *elastic.SearchService) (*elastic.SearchResult, error) {
	result, err := searchService.Do(context.Background())
	if err != nil && err.Error() == "elastic: Error 429 (Too Many Requests)" {
		zap.L().Warn("Elastic: 429 (Too Many Requests)")
		time.Sleep(5 * time.Second)
		return search(searchService)
	}

	return result, err
}

// sortByCreation orders listings oldest first, ties broken by id.
func sortByCreation(listings []entity.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].Id < listings[j].Id
		}
		return listings[i].CreatedAt.Before(listings[j].CreatedAt)
	})
}
