package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCityKey(t *testing.T) {
	assert.Equal(t, CityKey("Recife"), CityKey("RECIFE"))
	assert.Equal(t, CityKey("São Paulo"), CityKey("SÃO PAULO"))
	assert.Equal(t, CityKey("Natal"), CityKey("  natal "))
	assert.NotEqual(t, CityKey("Natal"), CityKey("Palmas"))
	assert.True(t, SameCity("belém", "BELÉM"))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"São Paulo", "sao-paulo"},
		{"Rio de Janeiro", "rio-de-janeiro"},
		{"São Luís", "sao-luis"},
		{"Goiânia", "goiania"},
		{"  Boa   Vista ", "boa-vista"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), tt.in)
	}
}

func TestNewClimateAlert(t *testing.T) {
	created := time.Date(2024, time.October, 18, 12, 0, 0, 0, time.UTC)
	obs := Observation{
		CityName:    "Cuiabá",
		State:       "MT",
		Temperature: 38,
		TempMin:     27,
		TempMax:     39,
		Description: "céu limpo",
		Humidity:    22,
		WindSpeed:   3.6,
		FeelsLike:   40,
		Icon:        "01d",
		LastUpdated: created.Add(-5 * time.Minute).UnixMilli(),
	}

	a := NewClimateAlert(obs, created)

	assert.Equal(t, "cuiaba-"+"1729252800000", a.ID)
	assert.Equal(t, created.UnixMilli(), a.CreatedAt)
	assert.Equal(t, obs.LastUpdated, a.LastUpdated)
	assert.Equal(t, TierExtremeHeat, a.Classification.Tier)
	assert.Equal(t, "céu limpo", a.Description)
	assert.Equal(t, 90*time.Minute, a.Age(created.Add(90*time.Minute)))
}

func TestCapitals(t *testing.T) {
	caps := Capitals()
	require.Len(t, caps, 27)

	states := make(map[string]bool)
	for _, c := range caps {
		states[c.State] = true
	}
	assert.Len(t, states, 27, "one capital per federative unit")

	caps[0].Name = "mutated"
	assert.Equal(t, "São Paulo", Capitals()[0].Name)
}

func TestStateForCity(t *testing.T) {
	assert.Equal(t, "PE", StateForCity("Recife"))
	assert.Equal(t, "SP", StateForCity("guarulhos"))
	assert.Equal(t, "DF", StateForCity("BRASÍLIA"))
	assert.Equal(t, "BR", StateForCity("Atlantis"))
}
