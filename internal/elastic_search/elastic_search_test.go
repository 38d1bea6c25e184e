package elastic_search_test

import (
	"encoding/json"
	"errors"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search/elastictest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

type document struct {
	Id    string `json:"id"`
	Value int    `json:"value"`
}

func (d document) Slug() string {
	return "doc-" + d.Id
}

func TestSaveAndGet(t *testing.T) {
	server := elastictest.NewServer(t)
	index := elastic_search.NewIndex(server.Client(t), "", 10)

	require.NoError(t, index.Save("docs", document{Id: "1", Value: 7}))

	raw, err := index.Get("docs", "doc-1")
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, document{Id: "1", Value: 7}, doc)
}

func TestGetMissingDocument(t *testing.T) {
	server := elastictest.NewServer(t)
	index := elastic_search.NewIndex(server.Client(t), "", 10)

	_, err := index.Get("docs", "doc-404")
	assert.True(t, errors.Is(err, elastic_search.ErrDocumentNotFound))
}

func TestPersistFlushesPendingRequests(t *testing.T) {
	server := elastictest.NewServer(t)
	index := elastic_search.NewIndex(server.Client(t), "", 2)

	index.AddIndexRequest("docs", document{Id: "1"})
	index.AddIndexRequest("docs", document{Id: "2"})
	index.AddIndexRequest("docs", document{Id: "3"})
	require.Len(t, index.GetRequests(), 3)
	require.NotNil(t, index.GetRequest("doc-2"))

	assert.Equal(t, 3, index.Persist())
	assert.Empty(t, index.GetRequests())
	assert.Equal(t, 3, server.Count("docs"))
}

func TestBatchPersistWaitsForBulkCount(t *testing.T) {
	server := elastictest.NewServer(t)
	index := elastic_search.NewIndex(server.Client(t), "", 2)

	index.AddIndexRequest("docs", document{Id: "1"})
	assert.False(t, index.BatchPersist())
	assert.Equal(t, 0, server.Count("docs"))

	index.AddIndexRequest("docs", document{Id: "2"})
	assert.True(t, index.BatchPersist())
	assert.Equal(t, 2, server.Count("docs"))
}

func TestInstallMappings(t *testing.T) {
	server := elastictest.NewServer(t)
	index := elastic_search.NewIndex(server.Client(t), "", 10)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "listing.json"), []byte(`{"mappings":{}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte(`ignored`), 0644))

	require.NoError(t, index.InstallMappings(dir))

	assert.True(t, server.HasIndex(elastic_search.ListingIndex.Get()))
	assert.False(t, server.HasIndex(elastic_search.MarketplaceIndex.Get()))
}
