package repository

import (
	"errors"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search/elastictest"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestFeePolicyRepository(t *testing.T) {
	server := elastictest.NewServer(t)
	repos := map[string]FeePolicyRepository{
		"memory":  NewMemoryFeePolicyRepository(),
		"elastic": NewElasticFeePolicyRepository(elastic_search.NewIndex(server.Client(t), "", 10)),
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			_, err := repo.GetFeePolicy()
			assert.True(t, errors.Is(err, ErrFeePolicyNotFound))

			fee := entity.MarketplaceFee{Owner: seller, BasisPoints: 250, Recipient: other}
			require.NoError(t, repo.SaveFeePolicy(fee))

			found, err := repo.GetFeePolicy()
			require.NoError(t, err)
			assert.Equal(t, uint(250), found.BasisPoints)
			assert.Equal(t, other, found.Recipient)
			assert.Equal(t, seller, found.Owner)
		})
	}
}
