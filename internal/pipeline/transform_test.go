package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/adapter/memory"
	"github.com/couchcryptid/climacare-alerts/internal/alerts"
	"github.com/couchcryptid/climacare-alerts/internal/domain"
	"github.com/couchcryptid/climacare-alerts/internal/observability"
	"github.com/couchcryptid/climacare-alerts/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, time.October, 18, 12, 0, 0, 0, time.UTC)

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (failingBackend) Set(context.Context, string, []byte) error {
	return errors.New("connection refused")
}

func newStore(backend domain.StateStore) *alerts.Store {
	return alerts.NewStore(backend, discardLogger(), observability.NewMetricsForTesting(),
		alerts.WithClock(clockwork.NewFakeClockAt(epoch)))
}

func TestAlertTransformer_Transform(t *testing.T) {
	store := newStore(memory.NewStore())
	tfm := pipeline.NewTransformer(store)

	out, err := tfm.Transform(context.Background(), makeRawEvent(t, "Cuiabá", 41, 0))
	require.NoError(t, err)

	assert.Equal(t, []byte("cuiaba"), out.Key)
	want := map[string]string{
		pipeline.HeaderTier:      "extreme_heat",
		pipeline.HeaderAlertType: "heat",
		pipeline.HeaderCreatedAt: "2024-10-18T12:00:00Z",
	}
	if diff := cmp.Diff(want, out.Headers); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}

	var alert domain.ClimateAlert
	require.NoError(t, json.Unmarshal(out.Value, &alert))
	assert.Equal(t, "cuiaba-1729252800000", alert.ID)
	assert.Equal(t, "MT", alert.State)

	stored, err := store.Get(context.Background(), "cuiabá")
	require.NoError(t, err)
	assert.Equal(t, alert.ID, stored.ID)
}

func TestAlertTransformer_NormalHasEmptyAlertType(t *testing.T) {
	tfm := pipeline.NewTransformer(newStore(memory.NewStore()))

	out, err := tfm.Transform(context.Background(), makeRawEvent(t, "Salvador", 25, 0))
	require.NoError(t, err)
	assert.Equal(t, "normal", out.Headers[pipeline.HeaderTier])
	assert.Empty(t, out.Headers[pipeline.HeaderAlertType])
}

func TestAlertTransformer_InvalidJSON(t *testing.T) {
	tfm := pipeline.NewTransformer(newStore(memory.NewStore()))

	_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte("not json")})
	assert.ErrorIs(t, err, alerts.ErrInvalidObservation)
}

func TestAlertTransformer_MissingCity(t *testing.T) {
	tfm := pipeline.NewTransformer(newStore(memory.NewStore()))

	_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte(`{"temperature":20}`)})
	assert.ErrorIs(t, err, alerts.ErrInvalidObservation)
}

func TestAlertTransformer_StorageFailure(t *testing.T) {
	tfm := pipeline.NewTransformer(newStore(failingBackend{}))

	_, err := tfm.Transform(context.Background(), makeRawEvent(t, "Recife", 30, 0))
	assert.ErrorIs(t, err, alerts.ErrStorageFailure)
}

func TestSerializeAlert(t *testing.T) {
	alert := domain.NewClimateAlert(domain.Observation{CityName: "São Paulo", State: "SP", Temperature: 6}, epoch)

	out, err := pipeline.SerializeAlert(alert)
	require.NoError(t, err)

	assert.Equal(t, []byte("sao-paulo"), out.Key)
	assert.Equal(t, "extreme_cold", out.Headers[pipeline.HeaderTier])
	assert.Equal(t, "cold", out.Headers[pipeline.HeaderAlertType])
	assert.Contains(t, string(out.Value), `"level":"extreme_cold"`)
}
