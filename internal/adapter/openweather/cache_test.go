package openweather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	"github.com/couchcryptid/climacare-alerts/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls map[string]int
	err   error
}

func (s *countingSource) CurrentWeather(_ context.Context, city string) (domain.Observation, error) {
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[city]++
	if s.err != nil {
		return domain.Observation{}, s.err
	}
	return domain.Observation{CityName: city, Temperature: 25}, nil
}

func TestCachedSource_HitWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	inner := &countingSource{}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedSource(inner, 10*time.Minute, clock, metrics)

	_, err := cached.CurrentWeather(context.Background(), "Recife")
	require.NoError(t, err)
	clock.Advance(9 * time.Minute)
	obs, err := cached.CurrentWeather(context.Background(), "RECIFE")
	require.NoError(t, err)

	assert.Equal(t, "Recife", obs.CityName)
	assert.Equal(t, 1, inner.calls["Recife"])
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WeatherCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WeatherCache.WithLabelValues("miss")))
}

func TestCachedSource_ExpiresAtTTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	inner := &countingSource{}
	cached := NewCachedSource(inner, 10*time.Minute, clock, observability.NewMetricsForTesting())

	_, err := cached.CurrentWeather(context.Background(), "Recife")
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)
	_, err = cached.CurrentWeather(context.Background(), "Recife")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls["Recife"])
}

func TestCachedSource_ErrorsNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("boom")}
	cached := NewCachedSource(inner, 10*time.Minute, clockwork.NewFakeClockAt(testNow), observability.NewMetricsForTesting())

	_, err := cached.CurrentWeather(context.Background(), "Natal")
	require.Error(t, err)
	_, err = cached.CurrentWeather(context.Background(), "Natal")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls["Natal"])
	assert.Equal(t, 0, cached.Len())
}

func TestCachedSource_PrunesExpired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	cached := NewCachedSource(&countingSource{}, time.Minute, clock, observability.NewMetricsForTesting())

	_, _ = cached.CurrentWeather(context.Background(), "Natal")
	clock.Advance(2 * time.Minute)
	_, _ = cached.CurrentWeather(context.Background(), "Recife")

	assert.Equal(t, 1, cached.Len())
}
