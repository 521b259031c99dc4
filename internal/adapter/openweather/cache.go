package openweather

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	"github.com/couchcryptid/climacare-alerts/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedSource wraps a WeatherSource with a per-city TTL cache.
type CachedSource struct {
	inner   domain.WeatherSource
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	obs       domain.Observation
	fetchedAt time.Time
}

// NewCachedSource creates a cache decorator around a weather source.
func NewCachedSource(inner domain.WeatherSource, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedSource{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		entries: make(map[string]cacheEntry),
	}
}

// CurrentWeather returns the cached observation when it is younger than the
// TTL. Errors are never cached so the next call retries.
func (c *CachedSource) CurrentWeather(ctx context.Context, cityName string) (domain.Observation, error) {
	key := domain.CityKey(cityName)
	if obs, ok := c.get(key); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return obs, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	obs, err := c.inner.CurrentWeather(ctx, cityName)
	if err != nil {
		return obs, err
	}
	c.put(key, obs)
	return obs, nil
}

func (c *CachedSource) get(key string) (domain.Observation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.clock.Since(e.fetchedAt) >= c.ttl {
		return domain.Observation{}, false
	}
	return e.obs, true
}

func (c *CachedSource) put(key string, obs domain.Observation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{obs: obs, fetchedAt: now}
}

// Len reports the number of cached cities, expired entries included.
func (c *CachedSource) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
