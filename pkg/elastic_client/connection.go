package elastic_client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/config"
	"github.com/travigo/urbantransit/pkg/util"
)

const defaultIndexPrefix = "urbantransit"
const defaultFlushInterval = 15 * time.Second
const defaultMaxRetries = 5

var ErrNotConfigured = errors.New("elasticsearch address not set")

var Client *elasticsearch.Client
var bulkIndexer esutil.BulkIndexer

var indexPrefix = defaultIndexPrefix

type Config struct {
	Addresses []string
	Username  string
	Password  string

	// IndexPrefix is prepended to every event index name
	IndexPrefix   string
	FlushInterval time.Duration
	MaxRetries    int
}

// ConfigFromEnvironment reads the URBANTRANSIT_ELASTICSEARCH_* keys. The
// address may list several nodes separated by commas.
func ConfigFromEnvironment() Config {
	env := util.GetEnvironmentVariables()

	cfg := Config{
		Username:      env["URBANTRANSIT_ELASTICSEARCH_USERNAME"],
		Password:      env["URBANTRANSIT_ELASTICSEARCH_PASSWORD"],
		IndexPrefix:   defaultIndexPrefix,
		FlushInterval: config.DurationValue("URBANTRANSIT_ELASTICSEARCH_FLUSH_INTERVAL", defaultFlushInterval),
		MaxRetries:    config.IntValue("URBANTRANSIT_ELASTICSEARCH_MAX_RETRIES", defaultMaxRetries),
	}

	for _, address := range strings.Split(env["URBANTRANSIT_ELASTICSEARCH_ADDRESS"], ",") {
		if address = strings.TrimSpace(address); address != "" {
			cfg.Addresses = append(cfg.Addresses, address)
		}
	}

	if prefix := strings.TrimSpace(env["URBANTRANSIT_ELASTICSEARCH_INDEX_PREFIX"]); prefix != "" {
		cfg.IndexPrefix = prefix
	}

	return cfg
}

func (c Config) clientConfig() elasticsearch.Config {
	retryBackoff := backoff.NewExponentialBackOff()

	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return elasticsearch.Config{
		Addresses: c.Addresses,
		Username:  c.Username,
		Password:  c.Password,
		Transport: http.DefaultTransport.(*http.Transport).Clone(),

		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: maxRetries,
	}
}

// Connect sets up the client from the environment. When required is false
// and no address is configured events are silently dropped.
func Connect(required bool) error {
	cfg := ConfigFromEnvironment()

	if len(cfg.Addresses) == 0 {
		if required {
			return ErrNotConfigured
		}

		log.Info().Msg("Skipping Elasticsearch setup")
		return nil
	}

	return ConnectWithConfig(cfg)
}

func ConnectWithConfig(cfg Config) error {
	if len(cfg.Addresses) == 0 {
		return ErrNotConfigured
	}

	es, err := elasticsearch.NewClient(cfg.clientConfig())
	if err != nil {
		return err
	}

	if _, err := es.Info(); err != nil {
		return err
	}

	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}

	indexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        es,
		FlushInterval: flushInterval,
	})
	if err != nil {
		return err
	}

	Client = es
	bulkIndexer = indexer
	if cfg.IndexPrefix != "" {
		indexPrefix = cfg.IndexPrefix
	}

	log.Info().Strs("addresses", cfg.Addresses).Str("prefix", indexPrefix).Msg("Elasticsearch client setup")

	return nil
}

// IndexRequest queues a document on the bulk indexer, it is a no-op when
// Elasticsearch is not configured
func IndexRequest(indexName string, document io.ReadSeeker) {
	if Client == nil || bulkIndexer == nil {
		return
	}

	err := bulkIndexer.Add(
		context.Background(),
		esutil.BulkIndexerItem{
			Index:  indexName,
			Action: "index",
			Body:   document,
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					log.Error().Err(err).Str("index", indexName).Msg("Failed to index document")
				} else {
					log.Error().Str("type", res.Error.Type).Str("reason", res.Error.Reason).Msg("Failed to index document")
				}
			},
		},
	)
	if err != nil {
		log.Error().Err(err).Str("index", indexName).Msg("Failed to queue document")
	}
}

func WaitUntilQueueEmpty() {
	if bulkIndexer == nil {
		return
	}

	if err := bulkIndexer.Close(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to flush Elasticsearch queue")
	}
}
