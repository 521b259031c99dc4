package domain

import (
	"context"
	"time"
)

// Observation is the flat JSON document produced by the weather data source.
type Observation struct {
	CityName    string  `json:"cityName"`
	State       string  `json:"state"`
	Temperature float64 `json:"temperature"`
	TempMin     float64 `json:"tempMin"`
	TempMax     float64 `json:"tempMax"`
	Description string  `json:"description"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	FeelsLike   float64 `json:"feelsLike"`
	Icon        string  `json:"icon"`
	LastUpdated int64   `json:"lastUpdated"` // epoch ms
}

// ClimateAlert is the live alert of one city.
type ClimateAlert struct {
	ID             string         `json:"id"`
	CityName       string         `json:"cityName"`
	State          string         `json:"state"`
	Temperature    float64        `json:"temperature"`
	TempMin        float64        `json:"tempMin"`
	TempMax        float64        `json:"tempMax"`
	Classification Classification `json:"classification"`
	Description    string         `json:"description"`
	Humidity       float64        `json:"humidity"`
	WindSpeed      float64        `json:"windSpeed"`
	FeelsLike      float64        `json:"feelsLike"`
	Icon           string         `json:"icon"`
	CreatedAt      int64          `json:"createdAt"`   // epoch ms, set once at ingestion
	LastUpdated    int64          `json:"lastUpdated"` // epoch ms, from the observation
}

// Age returns how long ago the alert was created relative to now.
func (a ClimateAlert) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-a.CreatedAt) * time.Millisecond
}

// AlertsState is the persisted envelope: alerts newest first plus the time of
// the last write to the collection.
type AlertsState struct {
	Alerts      []ClimateAlert `json:"alerts"`
	LastUpdated int64          `json:"lastUpdated"` // epoch ms
}

// EmptyState is the state reported when nothing has been persisted yet.
func EmptyState() AlertsState {
	return AlertsState{Alerts: []ClimateAlert{}, LastUpdated: 0}
}

// NewClimateAlert classifies an observation and builds the alert that
// supersedes any previous alert for the same city.
func NewClimateAlert(obs Observation, createdAt time.Time) ClimateAlert {
	ms := createdAt.UnixMilli()
	return ClimateAlert{
		ID:             AlertID(obs.CityName, ms),
		CityName:       obs.CityName,
		State:          obs.State,
		Temperature:    obs.Temperature,
		TempMin:        obs.TempMin,
		TempMax:        obs.TempMax,
		Classification: Classify(obs.Temperature),
		Description:    obs.Description,
		Humidity:       obs.Humidity,
		WindSpeed:      obs.WindSpeed,
		FeelsLike:      obs.FeelsLike,
		Icon:           obs.Icon,
		CreatedAt:      ms,
		LastUpdated:    obs.LastUpdated,
	}
}

// RawEvent represents an unprocessed message from an observation source.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized alert destined for the sinks.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
