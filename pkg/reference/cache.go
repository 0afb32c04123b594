package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/transit"
)

const notFoundMarker = "N/A"

const DefaultCacheExpiration = 30 * time.Minute

// CachedData is a read-through Redis cache in front of a reference data
// provider. Lookups that matched nothing are cached too.
type CachedData struct {
	Provider transit.ReferenceDataProvider
	Cache    *cache.Cache[string]
}

func NewCachedData(provider transit.ReferenceDataProvider, client *redis.Client, expiration time.Duration) *CachedData {
	if expiration <= 0 {
		expiration = DefaultCacheExpiration
	}

	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &CachedData{
		Provider: provider,
		Cache:    cache.New[string](redisStore),
	}
}

func lineCacheKey(id string) string {
	return fmt.Sprintf("urbantransit:reference:line:%s", id)
}

func stopCacheKey(id string) string {
	return fmt.Sprintf("urbantransit:reference:stop:%s", id)
}

func (c *CachedData) GetLines(ctx context.Context, ids []string) (map[string]*transit.Line, error) {
	return readThrough(ctx, c.Cache, ids, lineCacheKey, c.Provider.GetLines)
}

func (c *CachedData) GetStops(ctx context.Context, ids []string) (map[string]*transit.Stop, error) {
	return readThrough(ctx, c.Cache, ids, stopCacheKey, c.Provider.GetStops)
}

func readThrough[T any](
	ctx context.Context,
	valueCache *cache.Cache[string],
	ids []string,
	key func(string) string,
	fetch func(context.Context, []string) (map[string]*T, error),
) (map[string]*T, error) {
	results := map[string]*T{}
	var missing []string

	for _, id := range ids {
		cached, err := valueCache.Get(ctx, key(id))
		if err != nil {
			missing = append(missing, id)
			continue
		}

		if cached == notFoundMarker {
			continue
		}

		var value T
		if err := json.Unmarshal([]byte(cached), &value); err != nil {
			missing = append(missing, id)
			continue
		}
		results[id] = &value
	}

	if len(missing) == 0 {
		return results, nil
	}

	fetched, err := fetch(ctx, missing)
	if err != nil {
		return nil, err
	}

	for _, id := range missing {
		value, found := fetched[id]

		var cacheValue string
		if found && value != nil {
			results[id] = value

			valueJSON, _ := json.Marshal(value)
			cacheValue = string(valueJSON)
		} else {
			cacheValue = notFoundMarker
		}

		if err := valueCache.Set(ctx, key(id), cacheValue); err != nil {
			log.Debug().Err(err).Str("key", key(id)).Msg("Failed to cache reference data")
		}
	}

	return results, nil
}
