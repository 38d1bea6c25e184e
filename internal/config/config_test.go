package config

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	cfg := Get()

	assert.Equal(t, "zilliqa", cfg.Network)
	assert.Equal(t, uint(200), cfg.Marketplace.FeeBasisPoints)
	assert.False(t, cfg.Marketplace.AllowZeroPrice)
	assert.Equal(t, "memory", cfg.ListingStore)
	assert.Equal(t, "wait_for", cfg.ElasticSearch.Refresh)
	assert.Empty(t, cfg.ElasticSearch.Hosts)
}

func TestGetFromEnvironment(t *testing.T) {
	t.Setenv("MARKETPLACE_FEE_BPS", "100")
	t.Setenv("MARKETPLACE_ALLOW_ZERO_PRICE", "true")
	t.Setenv("ELASTIC_SEARCH_HOSTS", "http://es1:9200,http://es2:9200")
	t.Setenv("API_RETRIES", "5")

	cfg := Get()

	assert.Equal(t, uint(100), cfg.Marketplace.FeeBasisPoints)
	assert.True(t, cfg.Marketplace.AllowZeroPrice)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.ElasticSearch.Hosts)
	assert.Equal(t, 5, cfg.Api.Retries)
}

func TestGetIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MARKETPLACE_FEE_BPS", "lots")
	t.Setenv("API_RETRIES", "-1")

	assert.Equal(t, uint(200), getUint("MARKETPLACE_FEE_BPS", 200))
	assert.Equal(t, -1, Get().Api.Retries)
}
