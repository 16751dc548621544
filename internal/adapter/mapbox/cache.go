package mapbox

import (
	"container/list"
	"context"
	"math"
	"sync"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
)

// coordPrecision rounds coordinates to three decimals, about 100 m.
const coordPrecision = 1000

// coordKey identifies a rounded point.
type coordKey struct {
	lat, lon int32
}

func keyOf(lat, lon float64) coordKey {
	return coordKey{
		lat: int32(math.Round(lat * coordPrecision)),
		lon: int32(math.Round(lon * coordPrecision)),
	}
}

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache keyed on
// rounded coordinates, so fires at nearly the same spot share one lookup.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lruCache[coordKey]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder. metrics may be nil.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRUCache[coordKey](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	key := keyOf(lat, lon)
	if result, ok := c.cache.get(key); ok {
		c.observe("hit")
		return result, nil
	}
	c.observe("miss")

	result, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return result, err
	}
	// Points with no county (offshore, tribal land) are looked up again.
	if result.County != "" {
		c.cache.put(key, result)
	}
	return result, nil
}

func (c *CachedGeocoder) observe(result string) {
	if c.metrics != nil {
		c.metrics.GeocodeCache.WithLabelValues(result).Inc()
	}
}

// lruCache holds at most capacity results, evicting the least recently used.
// The list front is the most recent entry.
type lruCache[K comparable] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[K]*list.Element
}

type cacheItem[K comparable] struct {
	key    K
	result domain.GeocodingResult
}

func newLRUCache[K comparable](capacity int) *lruCache[K] {
	return &lruCache[K]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element),
	}
}

func (c *lruCache[K]) get(key K) (domain.GeocodingResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return domain.GeocodingResult{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheItem[K]).result, true
}

func (c *lruCache[K]) put(key K, result domain.GeocodingResult) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheItem[K]).result = result
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&cacheItem[K]{key: key, result: result})

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheItem[K]).key)
	}
}

func (c *lruCache[K]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
