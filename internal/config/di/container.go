package di

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/api"
	"github.com/ZilDuck/zilliqa-marketplace/internal/chain"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/indexer"
	"github.com/ZilDuck/zilliqa-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-marketplace/internal/messenger"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

const (
	ElasticStore = "elastic"
	MemoryStore  = "memory"
)

var ErrNoEventQueue = errors.New("no event queue configured")

type Container struct {
	di.Container
	cfg *config.Config
}

func NewContainer(cfg *config.Config) (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions(cfg)...); err != nil {
		return nil, err
	}

	return &Container{builder.Build(), cfg}, nil
}

func Definitions(cfg *config.Config) []di.Def {
	return []di.Def{
		{
			Name: "elastic",
			Build: func(ctn di.Container) (interface{}, error) {
				elastic, err := elastic_search.New()
				if err != nil {
					zap.L().With(zap.Error(err)).Error("Failed to start ES")
					return nil, err
				}
				return elastic, nil
			},
			Close: func(obj interface{}) error {
				obj.(elastic_search.Index).Persist()
				return nil
			},
		},
		{
			Name: "listingRepo",
			Build: func(ctn di.Container) (interface{}, error) {
				if cfg.ListingStore != ElasticStore {
					return repository.NewMemoryListingRepository(), nil
				}
				elastic, err := ctn.SafeGet("elastic")
				if err != nil {
					return nil, err
				}
				return repository.NewElasticListingRepository(elastic.(elastic_search.Index)), nil
			},
		},
		{
			Name: "feePolicyRepo",
			Build: func(ctn di.Container) (interface{}, error) {
				if cfg.ListingStore != ElasticStore {
					return repository.NewMemoryFeePolicyRepository(), nil
				}
				elastic, err := ctn.SafeGet("elastic")
				if err != nil {
					return nil, err
				}
				return repository.NewElasticFeePolicyRepository(elastic.(elastic_search.Index)), nil
			},
		},
		{
			Name: "devnet",
			Build: func(ctn di.Container) (interface{}, error) {
				devnet := chain.NewDevnet()
				if cfg.DevnetGenesis == "" {
					zap.L().Info("Devnet: No genesis configured, starting empty")
					return devnet, nil
				}

				genesis, err := chain.LoadGenesis(cfg.DevnetGenesis)
				if err != nil {
					return nil, err
				}
				if err := devnet.Seed(genesis); err != nil {
					return nil, err
				}
				return devnet, nil
			},
		},
		{
			Name: "eventManager",
			Build: func(ctn di.Container) (interface{}, error) {
				return event.NewManager(), nil
			},
			Close: func(obj interface{}) error {
				obj.(*event.Manager).Close()
				return nil
			},
		},
		{
			Name: "marketplace",
			Build: func(ctn di.Container) (interface{}, error) {
				opts, err := marketplaceOptions(cfg.Marketplace)
				if err != nil {
					return nil, err
				}

				listings, err := ctn.SafeGet("listingRepo")
				if err != nil {
					return nil, err
				}
				fees, err := ctn.SafeGet("feePolicyRepo")
				if err != nil {
					return nil, err
				}

				obj, err := ctn.SafeGet("devnet")
				if err != nil {
					return nil, err
				}
				devnet := obj.(*chain.Devnet)
				market, err := marketplace.New(
					devnet,
					listings.(repository.ListingRepository),
					fees.(repository.FeePolicyRepository),
					ctn.Get("eventManager").(*event.Manager),
					opts,
				)
				if err != nil {
					return nil, err
				}
				devnet.RegisterReceiver(market.Address(), market)

				return market, nil
			},
		},
		{
			Name: "messenger",
			Build: func(ctn di.Container) (interface{}, error) {
				if cfg.Aws.EventQueueUrl == "" {
					return nil, ErrNoEventQueue
				}

				sess, err := session.NewSession(&aws.Config{
					Region:      aws.String(cfg.Aws.Region),
					Credentials: credentials.NewStaticCredentials(cfg.Aws.AccessKey, cfg.Aws.SecretKey, cfg.Aws.Token),
				})
				if err != nil {
					return nil, err
				}

				return messenger.NewMessenger(sqs.New(sess), map[messenger.Item]string{
					messenger.ListingEvents: cfg.Aws.EventQueueUrl,
				}), nil
			},
		},
		{
			Name: "listingEventIndexer",
			Build: func(ctn di.Container) (interface{}, error) {
				elastic, err := ctn.SafeGet("elastic")
				if err != nil {
					return nil, err
				}
				return indexer.NewListingEventIndexer(elastic.(elastic_search.Index), elastic_search.ListingEventIndex.Get()), nil
			},
		},
		{
			Name: "apiServer",
			Build: func(ctn di.Container) (interface{}, error) {
				market, err := ctn.SafeGet("marketplace")
				if err != nil {
					return nil, err
				}
				return api.NewServer(market.(*marketplace.Marketplace)), nil
			},
		},
	}
}

func marketplaceOptions(cfg config.MarketplaceConfig) (marketplace.Options, error) {
	opts := marketplace.Options{
		FeeBasisPoints: cfg.FeeBasisPoints,
		AllowZeroPrice: cfg.AllowZeroPrice,
	}

	var err error
	if opts.Address, err = entity.NewAddress(cfg.Address); err != nil {
		return opts, fmt.Errorf("MARKETPLACE_ADDRESS: %w", err)
	}
	if opts.Owner, err = entity.NewAddress(cfg.Owner); err != nil {
		return opts, fmt.Errorf("MARKETPLACE_OWNER: %w", err)
	}
	if cfg.FeeRecipient != "" {
		if opts.FeeRecipient, err = entity.NewAddress(cfg.FeeRecipient); err != nil {
			return opts, fmt.Errorf("MARKETPLACE_FEE_RECIPIENT: %w", err)
		}
	}

	return opts, nil
}

func (c *Container) Config() *config.Config {
	return c.cfg
}

func (c *Container) GetElastic() (elastic_search.Index, error) {
	obj, err := c.SafeGet("elastic")
	if err != nil {
		return nil, err
	}
	return obj.(elastic_search.Index), nil
}

func (c *Container) GetDevnet() (*chain.Devnet, error) {
	obj, err := c.SafeGet("devnet")
	if err != nil {
		return nil, err
	}
	return obj.(*chain.Devnet), nil
}

func (c *Container) GetEventManager() *event.Manager {
	return c.Get("eventManager").(*event.Manager)
}

func (c *Container) GetListingRepo() (repository.ListingRepository, error) {
	obj, err := c.SafeGet("listingRepo")
	if err != nil {
		return nil, err
	}
	return obj.(repository.ListingRepository), nil
}

func (c *Container) GetMarketplace() (*marketplace.Marketplace, error) {
	obj, err := c.SafeGet("marketplace")
	if err != nil {
		return nil, err
	}
	return obj.(*marketplace.Marketplace), nil
}

func (c *Container) GetMessenger() (messenger.MessageService, error) {
	obj, err := c.SafeGet("messenger")
	if err != nil {
		return nil, err
	}
	return obj.(messenger.MessageService), nil
}

func (c *Container) GetListingEventIndexer() (indexer.ListingEventIndexer, error) {
	obj, err := c.SafeGet("listingEventIndexer")
	if err != nil {
		return nil, err
	}
	return obj.(indexer.ListingEventIndexer), nil
}

func (c *Container) GetApiServer() (api.Server, error) {
	obj, err := c.SafeGet("apiServer")
	if err != nil {
		return api.Server{}, err
	}
	return obj.(api.Server), nil
}
