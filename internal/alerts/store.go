// Package alerts owns the persisted collection of per-city climate alerts.
//
// The collection is a single JSON document read and written whole through a
// domain.StateStore. Every mutation is a read-modify-write of that document, so
// a Store serializes its operations with a mutex; run one writer per key.
package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	"github.com/couchcryptid/climacare-alerts/internal/observability"
	"github.com/jonboulle/clockwork"
	"gonum.org/v1/gonum/stat"
)

// DefaultKey is the document key used when none is configured.
const DefaultKey = "climate_alerts"

// DefaultMaxAge is the retention used by the refresh action of the dashboard.
const DefaultMaxAge = 24 * time.Hour

// Summary is the categorical aggregation of the live alerts.
// HeatAlerts + ColdAlerts + NormalConditions == Total.
type Summary struct {
	Total              int     `json:"total"`
	HeatAlerts         int     `json:"heatAlerts"`
	ColdAlerts         int     `json:"coldAlerts"`
	NormalConditions   int     `json:"normalConditions"`
	AverageTemperature float64 `json:"averageTemperature"`
}

// Store is the alert store.
type Store struct {
	backend domain.StateStore
	key     string
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the document key. Empty keys are ignored.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock sets the time source used for createdAt and eviction.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewStore creates a Store persisting through backend.
func NewStore(backend domain.StateStore, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest classifies an observation and upserts the resulting alert, replacing
// any live alert of the same city. The new alert is placed first.
//
// A failed read aborts the ingestion so that a transient backend error never
// overwrites the collection; a failed write is returned to the caller. Both
// wrap ErrStorageFailure.
func (s *Store) Ingest(ctx context.Context, obs domain.Observation) (domain.ClimateAlert, error) {
	if err := validateObservation(obs); err != nil {
		return domain.ClimateAlert{}, err
	}
	obs.CityName = strings.TrimSpace(obs.CityName)

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		s.observe("ingest", err)
		return domain.ClimateAlert{}, err
	}

	now := s.clock.Now()
	alert := domain.NewClimateAlert(obs, now)

	alerts := make([]domain.ClimateAlert, 0, len(state.Alerts)+1)
	alerts = append(alerts, alert)
	for _, a := range state.Alerts {
		if !domain.SameCity(a.CityName, obs.CityName) {
			alerts = append(alerts, a)
		}
	}

	if err := s.save(ctx, domain.AlertsState{Alerts: alerts, LastUpdated: now.UnixMilli()}); err != nil {
		s.observe("ingest", err)
		return domain.ClimateAlert{}, err
	}
	s.observe("ingest", nil)

	s.logger.Debug("alert ingested",
		"city", alert.CityName,
		"state", alert.State,
		"temperature", alert.Temperature,
		"tier", alert.Classification.Tier,
	)
	return alert, nil
}

// List returns the persisted collection. When nothing is stored, or the
// backend cannot be read, it returns the empty state.
func (s *Store) List(ctx context.Context) domain.AlertsState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	s.observe("list", err)
	if err != nil {
		s.logger.Warn("reading alerts failed, reporting empty state", "key", s.key, "error", err)
		return domain.EmptyState()
	}
	return state
}

// Get returns the live alert of a city, matched case-insensitively.
func (s *Store) Get(ctx context.Context, city string) (domain.ClimateAlert, error) {
	for _, a := range s.List(ctx).Alerts {
		if domain.SameCity(a.CityName, city) {
			return a, nil
		}
	}
	return domain.ClimateAlert{}, fmt.Errorf("%w: %s", ErrAlertNotFound, city)
}

// GroupByTier partitions the live alerts by classification tier. Every tier is
// present in the result, with an empty slice when it has no members.
func (s *Store) GroupByTier(ctx context.Context) map[domain.Tier][]domain.ClimateAlert {
	return GroupByTier(s.List(ctx).Alerts)
}

// Summary counts the live alerts by alert type.
func (s *Store) Summary(ctx context.Context) Summary {
	return Summarize(s.List(ctx).Alerts)
}

// EvictOlderThan removes every alert whose age is at least maxAge and persists
// the survivors with a refreshed lastUpdated. It returns the number removed.
// A non-positive maxAge selects DefaultMaxAge.
func (s *Store) EvictOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		s.observe("evict", err)
		return 0, err
	}

	now := s.clock.Now()
	recent := make([]domain.ClimateAlert, 0, len(state.Alerts))
	for _, a := range state.Alerts {
		if a.Age(now) < maxAge {
			recent = append(recent, a)
		}
	}

	if err := s.save(ctx, domain.AlertsState{Alerts: recent, LastUpdated: now.UnixMilli()}); err != nil {
		s.observe("evict", err)
		return 0, err
	}
	s.observe("evict", nil)

	removed := len(state.Alerts) - len(recent)
	s.metrics.AlertsEvicted.Add(float64(removed))
	if removed > 0 {
		s.logger.Info("evicted stale alerts", "removed", removed, "remaining", len(recent), "max_age", maxAge)
	}
	return removed, nil
}

// Reset discards every alert.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.save(ctx, domain.AlertsState{Alerts: []domain.ClimateAlert{}, LastUpdated: s.clock.Now().UnixMilli()})
	s.observe("reset", err)
	return err
}

// CheckReadiness reports whether the backend can be read.
func (s *Store) CheckReadiness(ctx context.Context) error {
	_, err := s.backend.Get(ctx, s.key)
	if err != nil && !errors.Is(err, domain.ErrStateNotFound) {
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	return nil
}

// load reads and decodes the document. A missing document is the empty state.
// A document that fails to decode is logged, counted and treated as empty.
func (s *Store) load(ctx context.Context) (domain.AlertsState, error) {
	raw, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, domain.ErrStateNotFound) {
		return domain.EmptyState(), nil
	}
	if err != nil {
		return domain.AlertsState{}, fmt.Errorf("%w: read %s: %w", ErrStorageFailure, s.key, err)
	}

	state, err := decodeState(raw)
	if err != nil {
		corrupt := &CorruptedStateError{Key: s.key, Err: err}
		s.logger.Error("resetting corrupted alerts state", "key", s.key, "error", corrupt, "bytes", len(raw))
		s.metrics.CorruptedStateReset.Inc()
		return domain.EmptyState(), nil
	}
	return state, nil
}

func (s *Store) save(ctx context.Context, state domain.AlertsState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode alerts state: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrStorageFailure, s.key, err)
	}
	s.recordLive(state.Alerts)
	return nil
}

func (s *Store) recordLive(alerts []domain.ClimateAlert) {
	for tier, members := range GroupByTier(alerts) {
		s.metrics.LiveAlerts.WithLabelValues(string(tier)).Set(float64(len(members)))
	}
}

func (s *Store) observe(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.StoreOperations.WithLabelValues(op, outcome).Inc()
}

// decodeState parses a persisted document. A JSON null alerts array decodes as
// empty; an alert whose classification tier is unknown makes the whole
// document corrupt.
func decodeState(raw []byte) (domain.AlertsState, error) {
	var state domain.AlertsState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.AlertsState{}, err
	}
	if state.Alerts == nil {
		state.Alerts = []domain.ClimateAlert{}
	}
	for i, a := range state.Alerts {
		if _, ok := domain.ParseTier(string(a.Classification.Tier)); !ok {
			return domain.AlertsState{}, fmt.Errorf("alert %d (%s): unknown tier %q", i, a.CityName, a.Classification.Tier)
		}
	}
	return state, nil
}

func validateObservation(obs domain.Observation) error {
	if strings.TrimSpace(obs.CityName) == "" {
		return fmt.Errorf("%w: city name is required", ErrInvalidObservation)
	}
	if math.IsNaN(obs.Temperature) || math.IsInf(obs.Temperature, 0) {
		return fmt.Errorf("%w: temperature must be finite, got %v", ErrInvalidObservation, obs.Temperature)
	}
	return nil
}

// GroupByTier partitions alerts by tier, with every tier present.
func GroupByTier(alerts []domain.ClimateAlert) map[domain.Tier][]domain.ClimateAlert {
	groups := make(map[domain.Tier][]domain.ClimateAlert, 7)
	for _, t := range domain.AllTiers() {
		groups[t] = []domain.ClimateAlert{}
	}
	for _, a := range alerts {
		groups[a.Classification.Tier] = append(groups[a.Classification.Tier], a)
	}
	return groups
}

// Summarize counts alerts by alert type and averages their temperatures.
func Summarize(alerts []domain.ClimateAlert) Summary {
	sum := Summary{Total: len(alerts)}
	temps := make([]float64, 0, len(alerts))
	for _, a := range alerts {
		switch a.Classification.AlertType {
		case domain.AlertHeat:
			sum.HeatAlerts++
		case domain.AlertCold:
			sum.ColdAlerts++
		default:
			sum.NormalConditions++
		}
		temps = append(temps, a.Temperature)
	}
	if len(temps) > 0 {
		sum.AverageTemperature = stat.Mean(temps, nil)
	}
	return sum
}

// NoAlert is the Filter.AlertType value selecting alerts without a heat or
// cold alert.
const NoAlert = "none"

// Filter selects alerts by alert type and tier. Zero fields match everything.
type Filter struct {
	AlertType string // "heat", "cold", NoAlert or empty
	Tier      domain.Tier
}

// Apply returns the alerts matching f, preserving order.
func (f Filter) Apply(alerts []domain.ClimateAlert) []domain.ClimateAlert {
	out := make([]domain.ClimateAlert, 0, len(alerts))
	for _, a := range alerts {
		if f.Tier != "" && a.Classification.Tier != f.Tier {
			continue
		}
		switch f.AlertType {
		case "":
		case NoAlert:
			if a.Classification.HasAlert() {
				continue
			}
		default:
			if string(a.Classification.AlertType) != f.AlertType {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
