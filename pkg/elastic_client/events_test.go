package elastic_client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRouteRequestIndexName(t *testing.T) {
	assert.Equal(t, "urbantransit-route-requests-2026-1", RouteRequestIndexName(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "urbantransit-route-requests-2026-53", RouteRequestIndexName(time.Date(2026, 12, 31, 12, 0, 0, 0, time.UTC)))
}

func TestRouteRequestIndexNameUsesPrefix(t *testing.T) {
	indexPrefix = "transit-dev"
	t.Cleanup(func() { indexPrefix = defaultIndexPrefix })

	assert.Equal(t, "transit-dev-route-requests-2026-1", RouteRequestIndexName(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestIndexRouteRequestWithoutClient(t *testing.T) {
	Client = nil

	assert.NotPanics(t, func() {
		IndexRouteRequest(RouteRequestEvent{Timestamp: time.Now(), OriginStopID: "S1"})
	})
}

func TestConnectOptional(t *testing.T) {
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_ADDRESS", "")

	assert.NoError(t, Connect(false))
	assert.Nil(t, Client)
}

func TestConnectRequired(t *testing.T) {
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_ADDRESS", "")

	assert.ErrorIs(t, Connect(true), ErrNotConfigured)
	assert.ErrorIs(t, ConnectWithConfig(Config{}), ErrNotConfigured)
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_ADDRESS", "http://es-1:9200, http://es-2:9200,")
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_USERNAME", "elastic")
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_PASSWORD", "secret")
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_INDEX_PREFIX", "transit-dev")
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_FLUSH_INTERVAL", "5s")
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_MAX_RETRIES", "2")

	cfg := ConfigFromEnvironment()

	assert.Equal(t, []string{"http://es-1:9200", "http://es-2:9200"}, cfg.Addresses)
	assert.Equal(t, "elastic", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "transit-dev", cfg.IndexPrefix)
	assert.Equal(t, 5*time.Second, cfg.FlushInterval)
	assert.Equal(t, 2, cfg.MaxRetries)
}

func TestConfigFromEnvironmentDefaults(t *testing.T) {
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_ADDRESS", "")
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_INDEX_PREFIX", "")
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_FLUSH_INTERVAL", "")
	t.Setenv("URBANTRANSIT_ELASTICSEARCH_MAX_RETRIES", "")

	cfg := ConfigFromEnvironment()

	assert.Empty(t, cfg.Addresses)
	assert.Equal(t, defaultIndexPrefix, cfg.IndexPrefix)
	assert.Equal(t, defaultFlushInterval, cfg.FlushInterval)
	assert.Equal(t, defaultMaxRetries, cfg.MaxRetries)
}

func TestClientConfig(t *testing.T) {
	esConfig := Config{Addresses: []string{"http://es-1:9200"}, Username: "elastic"}.clientConfig()

	assert.Equal(t, []string{"http://es-1:9200"}, esConfig.Addresses)
	assert.Equal(t, "elastic", esConfig.Username)
	assert.Equal(t, defaultMaxRetries, esConfig.MaxRetries)
	assert.Equal(t, []int{502, 503, 504, 429}, esConfig.RetryOnStatus)
	assert.NotNil(t, esConfig.RetryBackoff)
}
