// Package cache holds list views of assignment relations keyed by the parent
// id they were queried with.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/rota-api/pkg/metrics"
)

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// ListCache maps "<collection>:<field>:<id>" to the list returned for that
// query.
type ListCache struct {
	items   *gocache.Cache
	metrics *metrics.Metrics
}

func New(cfg Config, m *metrics.Metrics) *ListCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &ListCache{
		items:   gocache.New(cfg.TTL, cfg.CleanupInterval),
		metrics: m,
	}
}

func Key(collection, field, id string) string {
	return collection + ":" + field + ":" + id
}

// Lookup returns a copy of the cached list for the key.
func Lookup[T any](c *ListCache, collection, field, id string) ([]T, bool) {
	v, ok := c.items.Get(Key(collection, field, id))
	if !ok {
		c.metrics.CacheLookups.WithLabelValues(collection, "miss").Inc()
		return nil, false
	}
	list, ok := v.([]T)
	if !ok {
		c.metrics.CacheLookups.WithLabelValues(collection, "miss").Inc()
		return nil, false
	}
	c.metrics.CacheLookups.WithLabelValues(collection, "hit").Inc()
	return append([]T(nil), list...), true
}

// Store caches a copy of list under the key.
func Store[T any](c *ListCache, collection, field, id string, list []T) {
	c.items.SetDefault(Key(collection, field, id), append(make([]T, 0, len(list)), list...))
}

// Invalidate evicts the views of collection for each field/id pair in keys.
// An empty keys map evicts every view of the collection.
func (c *ListCache) Invalidate(collection string, keys map[string]string) {
	if len(keys) == 0 {
		c.InvalidateCollection(collection)
		return
	}
	for field, id := range keys {
		if id == "" {
			continue
		}
		c.items.Delete(Key(collection, field, id))
		c.metrics.CacheInvalidations.Inc()
	}
}

func (c *ListCache) InvalidateCollection(collection string) {
	prefix := collection + ":"
	for key := range c.items.Items() {
		if strings.HasPrefix(key, prefix) {
			c.items.Delete(key)
			c.metrics.CacheInvalidations.Inc()
		}
	}
}

func (c *ListCache) Flush() {
	c.items.Flush()
}

func (c *ListCache) Len() int {
	return c.items.ItemCount()
}
