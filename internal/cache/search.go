package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

// kv is the part of the redis client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// SearchCache keeps encoded /search responses keyed by snapshot generation and
// query, so a reload never serves results from the previous files.
type SearchCache struct {
	Client kv
	TTL    time.Duration
}

func New(addr string, ttl time.Duration) *SearchCache {
	return &SearchCache{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		TTL:    ttl,
	}
}

func Key(generation int64, q string) string {
	return fmt.Sprintf("cafesync:search:%d:%s", generation, strings.ToLower(strings.TrimSpace(q)))
}

// Get devolve a resposta em cache. Qualquer erro do redis conta como miss.
func (c *SearchCache) Get(ctx context.Context, generation int64, q string) ([]byte, bool) {
	val, err := c.Client.Get(ctx, Key(generation, q)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *SearchCache) Set(ctx context.Context, generation int64, q string, body []byte) error {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return c.Client.Set(ctx, Key(generation, q), body, ttl).Err()
}
