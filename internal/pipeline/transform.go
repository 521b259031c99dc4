package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/alerts"
	"github.com/couchcryptid/climacare-alerts/internal/domain"
)

// Output message header names.
const (
	HeaderTier      = "tier"
	HeaderAlertType = "alert_type"
	HeaderCreatedAt = "created_at"
)

// Ingester is the part of alerts.Store the transformer needs.
type Ingester interface {
	Ingest(ctx context.Context, obs domain.Observation) (domain.ClimateAlert, error)
}

// AlertTransformer implements Transformer: it parses the observation,
// upserts it into the alert store and serializes the resulting alert.
type AlertTransformer struct {
	store Ingester
}

// NewTransformer creates an AlertTransformer writing through store.
func NewTransformer(store Ingester) *AlertTransformer {
	return &AlertTransformer{store: store}
}

func (t *AlertTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	var obs domain.Observation
	if err := json.Unmarshal(raw.Value, &obs); err != nil {
		return domain.OutputEvent{}, fmt.Errorf("%w: decode: %w", alerts.ErrInvalidObservation, err)
	}

	alert, err := t.store.Ingest(ctx, obs)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	return SerializeAlert(alert)
}

// SerializeAlert encodes an alert as an output event keyed by the city slug.
func SerializeAlert(alert domain.ClimateAlert) (domain.OutputEvent, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize alert %s: %w", alert.ID, err)
	}
	return domain.OutputEvent{
		Key:   []byte(domain.Slug(alert.CityName)),
		Value: data,
		Headers: map[string]string{
			HeaderTier:      string(alert.Classification.Tier),
			HeaderAlertType: string(alert.Classification.AlertType),
			HeaderCreatedAt: time.UnixMilli(alert.CreatedAt).UTC().Format(time.RFC3339),
		},
	}, nil
}
