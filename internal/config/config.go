package config

import (
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"math/big"
	"strings"
)

type Config struct {
	Env        string
	Network    string
	Index      string
	Debug      bool
	LogPath    string
	Reindex    bool
	HealthPort string
	SentryDsn  string

	ListingStore string
	// DevnetGenesis is the path of a genesis file the devnet is seeded from.
	DevnetGenesis string

	Marketplace   MarketplaceConfig
	Api           ApiConfig
	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
}

type MarketplaceConfig struct {
	Owner          string
	Address        string
	FeeBasisPoints uint
	FeeRecipient   string
	AllowZeroPrice bool
}

type ApiConfig struct {
	Port    string
	Url     string
	Retries int
	Timeout int
}

type AwsConfig struct {
	AccessKey     string
	SecretKey     string
	Token         string
	Region        string
	EventQueueUrl string
}

type ElasticSearchConfig struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	Aws              bool
	MappingDir       string
	BulkPersistCount int
	Refresh          string
}

func init() {
	viper.AutomaticEnv()
}

func Init(name string) {
	if err := godotenv.Load(".env"); err != nil {
		zap.L().With(zap.Error(err)).Debug("No .env file loaded")
	}

	initLogger(name)
}

func initLogger(name string) {
	path := Get().LogPath
	if path == "" {
		path = fmt.Sprintf("/tmp/%s.log", name)
	}
	log.NewLogger(name, path, Get().Debug, Get().SentryDsn)
}

func Get() *Config {
	return &Config{
		Env:           getString("ENV", "dev"),
		Network:       getString("NETWORK", "zilliqa"),
		Index:         getString("INDEX_NAME", "marketplace"),
		Debug:         getBool("DEBUG", false),
		LogPath:       getString("LOG_PATH", ""),
		Reindex:       getBool("REINDEX", false),
		HealthPort:    getString("HEALTH_PORT", "8081"),
		SentryDsn:     getString("SENTRY_DSN", ""),
		ListingStore:  getString("LISTING_STORE", "memory"),
		DevnetGenesis: getString("DEVNET_GENESIS", ""),
		Marketplace: MarketplaceConfig{
			Owner:          getString("MARKETPLACE_OWNER", ""),
			Address:        getString("MARKETPLACE_ADDRESS", ""),
			FeeBasisPoints: getUint("MARKETPLACE_FEE_BPS", 200),
			FeeRecipient:   getString("MARKETPLACE_FEE_RECIPIENT", ""),
			AllowZeroPrice: getBool("MARKETPLACE_ALLOW_ZERO_PRICE", false),
		},
		Api: ApiConfig{
			Port:    getString("API_PORT", "8080"),
			Url:     getString("API_URL", "http://localhost:8080"),
			Retries: getInt("API_RETRIES", 3),
			Timeout: getInt("API_TIMEOUT", 10),
		},
		Aws: AwsConfig{
			AccessKey:     getString("AWS_ACCESS_KEY_ID", ""),
			SecretKey:     getString("AWS_SECRET_KEY_ID", ""),
			Token:         getString("AWS_TOKEN", ""),
			Region:        getString("AWS_REGION", ""),
			EventQueueUrl: getString("SQS_EVENT_QUEUE_URL", ""),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:            getSlice("ELASTIC_SEARCH_HOSTS", make([]string, 0), ","),
			Sniff:            getBool("ELASTIC_SEARCH_SNIFF", true),
			HealthCheck:      getBool("ELASTIC_SEARCH_HEALTH_CHECK", true),
			Debug:            getBool("ELASTIC_SEARCH_DEBUG", false),
			Username:         getString("ELASTIC_SEARCH_USERNAME", ""),
			Password:         getString("ELASTIC_SEARCH_PASSWORD", ""),
			Aws:              getBool("ELASTIC_SEARCH_AWS", false),
			MappingDir:       getString("ELASTIC_SEARCH_MAPPING_DIR", "./data/mappings"),
			BulkPersistCount: getInt("ELASTIC_SEARCH_BULK_PERSIST_COUNT", 300),
			Refresh:          getString("ELASTIC_SEARCH_REFRESH", "wait_for"),
		},
	}
}

func getString(key string, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, _, err := big.ParseFloat(valStr, 10, 0, big.ToNearestEven)
	if err != nil {
		return defaultValue
	}

	intVal, _ := val.Int64()
	return int(intVal)
}

func getUint(key string, defaultValue uint) uint {
	val := getInt(key, int(defaultValue))
	if val < 0 {
		return defaultValue
	}
	return uint(val)
}

func getBool(key string, defaultValue bool) bool {
	if !viper.IsSet(key) {
		return defaultValue
	}

	return viper.GetBool(key)
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := getString(key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
