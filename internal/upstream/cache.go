package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a successful upstream response is served from cache.
const DefaultTTL = time.Hour

// ErrUnavailable is returned when the upstream call fails for any reason.
var ErrUnavailable = errors.New("upstream unavailable")

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCoalescing collapses concurrent misses for the same key into one upstream call.
func WithCoalescing() Option {
	return func(c *Cache) { c.coalesce = true }
}

// Cache is a read-through TTL cache in front of a Source. Only successful
// responses are stored. Without coalescing, concurrent cold misses for one
// key may each reach upstream; the last write wins.
type Cache struct {
	source   Source
	ttl      time.Duration
	coalesce bool
	items    *ttlcache.Cache[string, json.RawMessage]
	inflight singleflight.Group
	stop     sync.Once
}

// NewCache builds a Cache and starts its expiry loop. Call Close to stop it.
func NewCache(source Source, opts ...Option) *Cache {
	c := &Cache{source: source, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	c.items = ttlcache.New(
		ttlcache.WithTTL[string, json.RawMessage](c.ttl),
		ttlcache.WithDisableTouchOnHit[string, json.RawMessage](),
	)
	go c.items.Start()
	return c
}

// Fetch returns the cached body for key, calling upstream on a miss.
func (c *Cache) Fetch(ctx context.Context, key string) (json.RawMessage, error) {
	if item := c.items.Get(key); item != nil {
		return item.Value(), nil
	}
	if !c.coalesce {
		return c.load(ctx, key)
	}

	// detach from the first caller's cancellation; the client timeout still applies
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.inflight.Do(key, func() (any, error) {
		return c.load(shared, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (c *Cache) load(ctx context.Context, key string) (json.RawMessage, error) {
	body, err := c.source.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, key, err)
	}
	c.items.Set(key, body, ttlcache.DefaultTTL)
	return body, nil
}

// Len reports the number of entries currently held, including expired ones
// the expiry loop has not removed yet.
func (c *Cache) Len() int {
	return c.items.Len()
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.items.DeleteAll()
}

// Close stops the background expiry loop.
func (c *Cache) Close() {
	c.stop.Do(c.items.Stop)
}
