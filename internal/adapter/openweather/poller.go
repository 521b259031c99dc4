package openweather

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Poller fetches every configured city once per interval and hands the
// observations out as raw events. It implements pipeline.BatchExtractor and
// is meant to be driven by a single pipeline goroutine.
type Poller struct {
	source   domain.WeatherSource
	cities   []domain.City
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	pending  []domain.RawEvent
	nextPoll time.Time
	polled   bool
}

// NewPoller creates a poller. The first poll happens on the first call to
// ExtractBatch.
func NewPoller(source domain.WeatherSource, cities []domain.City, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		source:   source,
		cities:   cities,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// ExtractBatch returns up to batchSize observations from the current round,
// waiting for the next round when the current one is drained.
func (p *Poller) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	if batchSize <= 0 {
		batchSize = 1
	}
	if len(p.pending) == 0 {
		if err := p.waitForRound(ctx); err != nil {
			return nil, err
		}
		p.pending = p.poll(ctx)
	}

	n := min(batchSize, len(p.pending))
	batch := p.pending[:n:n]
	p.pending = p.pending[n:]
	return batch, nil
}

func (p *Poller) waitForRound(ctx context.Context) error {
	if p.polled {
		if wait := p.nextPoll.Sub(p.clock.Now()); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.clock.After(wait):
			}
		}
	}
	p.polled = true
	p.nextPoll = p.clock.Now().Add(p.interval)
	return nil
}

// poll fetches all cities. Cities that fail are logged and skipped until the
// next round.
func (p *Poller) poll(ctx context.Context) []domain.RawEvent {
	events := make([]domain.RawEvent, 0, len(p.cities))
	failed := 0
	for _, city := range p.cities {
		if ctx.Err() != nil {
			break
		}
		obs, err := p.source.CurrentWeather(ctx, city.Name)
		if err != nil {
			failed++
			p.logger.Warn("weather fetch failed", "city", city.Name, "error", err)
			continue
		}
		if city.State != "" {
			obs.State = city.State
		}
		value, err := json.Marshal(obs)
		if err != nil {
			failed++
			p.logger.Warn("encode observation failed", "city", city.Name, "error", err)
			continue
		}
		events = append(events, domain.RawEvent{
			Key:       []byte(city.Code()),
			Value:     value,
			Headers:   map[string]string{"source": "openweather"},
			Topic:     "openweather",
			Timestamp: p.clock.Now(),
		})
	}
	p.logger.Info("weather poll complete", "cities", len(p.cities), "fetched", len(events), "failed", failed)
	return events
}
