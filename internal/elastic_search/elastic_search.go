package elastic_search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/aws/aws-sdk-go/aws/credentials"
	v4 "github.com/aws/aws-sdk-go/aws/signer/v4"
	"github.com/olivere/elastic/v7"
	"github.com/patrickmn/go-cache"
	"github.com/sha1sum/aws_signing_client"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
)

type Index interface {
	GetClient() *elastic.Client

	InstallMappings(dir string) error

	Get(index string, id string) (json.RawMessage, error)
	Save(index string, entity entity.Entity) error

	AddIndexRequest(index string, entity entity.Entity)
	GetRequests() []Request
	GetRequest(id string) *Request
	ClearRequests()

	BatchPersist() bool
	Persist() int
}

type index struct {
	client      *elastic.Client
	cache       *cache.Cache
	refresh     string
	bulkCount   int
	retryPeriod time.Duration
}

type Request struct {
	Index  string
	Entity entity.Entity
}

const saveAttempts int = 3

func New() (Index, error) {
	client, err := newClient(config.Get().ElasticSearch, config.Get().Aws)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("ElasticSearch: Failed to create client")
		return nil, err
	}

	return NewIndex(client, config.Get().ElasticSearch.Refresh, config.Get().ElasticSearch.BulkPersistCount), nil
}

func NewIndex(client *elastic.Client, refresh string, bulkCount int) Index {
	return index{
		client:      client,
		cache:       cache.New(5*time.Minute, 10*time.Minute),
		refresh:     refresh,
		bulkCount:   bulkCount,
		retryPeriod: time.Second,
	}
}

func newClient(cfg config.ElasticSearchConfig, aws config.AwsConfig) (*elastic.Client, error) {
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(strings.Join(cfg.Hosts, ",")),
		elastic.SetSniff(cfg.Sniff),
		elastic.SetHealthcheck(cfg.HealthCheck),
	}

	if cfg.Debug {
		opts = append(opts, elastic.SetTraceLog(ElasticLogger{}))
	}

	if cfg.Aws {
		creds := credentials.NewStaticCredentials(aws.AccessKey, aws.SecretKey, aws.Token)
		awsClient, err := aws_signing_client.New(v4.NewSigner(creds), nil, "es", aws.Region)
		if err != nil {
			return nil, err
		}

		opts = append(opts, elastic.SetHttpClient(awsClient))
		opts = append(opts, elastic.SetScheme("https"))
		return elastic.NewClient(opts...)
	}

	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}

	return elastic.NewClient(opts...)
}

func (i index) GetClient() *elastic.Client {
	return i.client
}

// InstallMappings creates one index per mapping file in dir, named after the file.
func (i index) InstallMappings(dir string) error {
	zap.L().With(zap.String("dir", dir)).Info("ElasticSearch: Install Mappings")

	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("elastic mappings directory: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}

		b, err := os.ReadFile(filepath.Join(dir, f.Name()))
		if err != nil {
			return fmt.Errorf("elastic mappings file %s: %w", f.Name(), err)
		}

		name := Indices(strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())))
		if err = i.createIndex(name.Get(), b); err != nil {
			return fmt.Errorf("failed to create index %s: %w", name.Get(), err)
		}
	}

	return nil
}

func (i index) createIndex(index string, mapping []byte) error {
	ctx := context.Background()
	client := i.client

	exists, err := client.IndexExists(index).Do(ctx)
	if err != nil {
		return err
	}

	if exists && config.Get().Reindex {
		zap.S().Infof("ElasticSearch: Deleting index %s", index)
		if _, err = client.DeleteIndex(index).Do(ctx); err != nil {
			return err
		}
		exists = false
	}

	if !exists {
		createIndex, err := client.CreateIndex(index).BodyString(string(mapping)).Do(ctx)
		if err != nil {
			return err
		}

		if createIndex.Acknowledged {
			zap.S().Infof("ElasticSearch: Created index %s", index)
		}
	}

	return nil
}

func (i index) Get(index string, id string) (json.RawMessage, error) {
	result, err := i.client.Get().Index(index).Id(id).Do(context.Background())
	if err != nil {
		if elastic.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, index, id)
		}
		return nil, err
	}
	if !result.Found {
		return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, index, id)
	}

	return result.Source, nil
}

func (i index) Save(index string, entity entity.Entity) error {
	var err error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		_, err = i.client.Index().
			Index(index).
			Id(entity.Slug()).
			BodyJson(entity).
			Refresh(i.refresh).
			Do(context.Background())
		if err == nil {
			return nil
		}

		zap.L().With(zap.Error(err), zap.String("index", index), zap.String("slug", entity.Slug()), zap.Int("attempt", attempt)).
			Warn("ElasticSearch: Failed to save entity")
		time.Sleep(i.retryPeriod)
	}

	zap.L().With(zap.String("index", index), zap.String("slug", entity.Slug())).
		Error("ElasticSearch: Failed to save entity, Too many attempts")

	return err
}

func (i index) AddIndexRequest(index string, entity entity.Entity) {
	zap.L().With(
		zap.String("index", index),
		zap.String("slug", entity.Slug()),
	).Debug("ElasticSearch: AddIndexRequest")

	i.cache.Set(entity.Slug(), Request{index, entity}, cache.DefaultExpiration)
}

func (i index) GetRequests() []Request {
	requests := make([]Request, 0)

	for _, item := range i.cache.Items() {
		requests = append(requests, item.Object.(Request))
	}

	return requests
}

func (i index) GetRequest(id string) *Request {
	if item, found := i.cache.Get(id); found {
		req := item.(Request)
		return &req
	}
	return nil
}

func (i index) ClearRequests() {
	i.cache.Flush()
}

func (i index) BatchPersist() bool {
	if i.cache.ItemCount() < i.bulkCount {
		return false
	}

	actions := i.cache.ItemCount()
	start := time.Now()
	i.Persist()

	zap.L().With(
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("actions", actions),
	).Info("ElasticSearch: Persisting data")

	return true
}

// Persist writes every pending index request in bulk and returns how many were sent.
func (i index) Persist() int {
	persisted := 0
	bulk := i.client.Bulk()
	for _, r := range i.GetRequests() {
		bulk.Add(elastic.NewBulkIndexRequest().Index(r.Index).Id(r.Entity.Slug()).Doc(r.Entity))

		if bulk.NumberOfActions() >= i.bulkCount {
			persisted += i.persist(bulk)
			bulk = i.client.Bulk()
		}
	}

	if bulk.NumberOfActions() != 0 {
		persisted += i.persist(bulk)
	}

	i.cache.Flush()

	return persisted
}

func (i index) persist(bulk *elastic.BulkService) int {
	actions := bulk.NumberOfActions()
	zap.S().Debugf("ElasticSearch: Persisting %d actions", actions)

	response, err := bulk.Refresh(i.refresh).Do(context.Background())
	if err != nil {
		zap.L().With(zap.Error(err)).Error("ElasticSearch: Failed to persist requests")
		return 0
	}

	for _, failed := range response.Failed() {
		zap.L().With(
			zap.Any("error", failed.Error),
			zap.String("index", failed.Index),
			zap.String("id", failed.Id),
		).Error("ElasticSearch: Failed to persist request. Retrying...")

		if req := i.GetRequest(failed.Id); req != nil {
			if err := i.Save(failed.Index, req.Entity); err != nil {
				actions--
			}
		}
	}

	return actions
}

type ElasticLogger struct{}

func (l ElasticLogger) Printf(format string, v ...interface{}) {
	zap.S().Debugf(format, v...)
}
