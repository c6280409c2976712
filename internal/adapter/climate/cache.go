package climate

import (
	"context"
	"fmt"
	"sync"

	"github.com/agroclim/yield-emulator/internal/domain"
	"github.com/agroclim/yield-emulator/internal/observability"
)

// CachedSource wraps a DataSource with an in-memory LRU cache. Dataset
// arrays never change for a given crop and year, so every hit saves a full
// table download. Caching lives here, outside the computation core, so the
// emulator itself stays stateless.
type CachedSource struct {
	inner   domain.DataSource
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a data source. Pass nil
// metrics to disable cache instrumentation.
func NewCachedSource(inner domain.DataSource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) GridLatitudes(ctx context.Context) ([]float64, error) {
	return cached(c, "lats", "grid_latitudes", func() ([]float64, error) {
		return c.inner.GridLatitudes(ctx)
	})
}

func (c *CachedSource) GridLongitudes(ctx context.Context) ([]float64, error) {
	return cached(c, "lons", "grid_longitudes", func() ([]float64, error) {
		return c.inner.GridLongitudes(ctx)
	})
}

func (c *CachedSource) Coefficients(ctx context.Context, crop string) ([][]float64, error) {
	return cached(c, "coeff:"+crop, "coefficients", func() ([][]float64, error) {
		return c.inner.Coefficients(ctx, crop)
	})
}

func (c *CachedSource) Indicators(ctx context.Context, crop string) ([][]int, error) {
	return cached(c, "ind:"+crop, "indicators", func() ([][]int, error) {
		return c.inner.Indicators(ctx, crop)
	})
}

func (c *CachedSource) PlantingDay(ctx context.Context, crop string) ([]float64, error) {
	return cached(c, "pday:"+crop, "planting_day", func() ([]float64, error) {
		return c.inner.PlantingDay(ctx, crop)
	})
}

func (c *CachedSource) SeasonLength(ctx context.Context, crop string) ([]float64, error) {
	return cached(c, "slen:"+crop, "season_length", func() ([]float64, error) {
		return c.inner.SeasonLength(ctx, crop)
	})
}

func (c *CachedSource) ReferenceDailySeries(ctx context.Context, variable string, year int) ([][]float64, error) {
	key := fmt.Sprintf("daily:%s:%d", variable, year)
	return cached(c, key, "daily_series", func() ([][]float64, error) {
		return c.inner.ReferenceDailySeries(ctx, variable, year)
	})
}

func (c *CachedSource) YearRange(ctx context.Context) (int, int, error) {
	type span struct{ first, last int }
	s, err := cached(c, "years", "year_range", func() (span, error) {
		first, last, err := c.inner.YearRange(ctx)
		return span{first, last}, err
	})
	return s.first, s.last, err
}

// cached looks up key in the cache, falling back to fetch and storing the
// result. Errors are never cached so transient fetch failures can be
// retried by the caller.
func cached[T any](c *CachedSource, key, resource string, fetch func() (T, error)) (T, error) {
	if v, ok := c.cache.get(key); ok {
		c.countCache(resource, "hit")
		return v.(T), nil
	}
	c.countCache(resource, "miss")

	v, err := fetch()
	if err != nil {
		return v, err
	}
	c.cache.put(key, v)
	return v, nil
}

func (c *CachedSource) countCache(resource, result string) {
	if c.metrics != nil {
		c.metrics.DatasetCache.WithLabelValues(resource, result).Inc()
	}
}

var _ domain.DataSource = (*CachedSource)(nil)

// lruCache is a simple thread-safe LRU cache for dataset arrays.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value any
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
