package domain

import (
	"fmt"
	"math"
	"math/rand"
)

// DefaultForecastDays is the horizon shown on the city detail page.
const DefaultForecastDays = 3

// forecastSpread is the half-width of the uniform noise added to the base
// temperature, in degrees Celsius.
const forecastSpread = 3.0

var dayLabels = []string{"Hoje", "Amanhã", "Depois de Amanhã"}

// ForecastDay is one synthetic forecast entry.
type ForecastDay struct {
	Day            string         `json:"day"`
	Temperature    float64        `json:"temperature"`
	Classification Classification `json:"classification"`
}

// Forecast produces a synthetic outlook of the given number of days around
// baseTemperature. Each day is round(base + U) with U uniform in [-3, +3] and
// classified independently. It is noise, not a weather forecast.
//
// rnd supplies the noise; pass nil to seed a generator from the package clock.
// days <= 0 yields an empty slice.
func Forecast(baseTemperature float64, days int, rnd *rand.Rand) []ForecastDay {
	if days <= 0 {
		return []ForecastDay{}
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(clock.Now().UnixNano())) //nolint:gosec // synthetic noise, not security sensitive
	}

	out := make([]ForecastDay, days)
	for i := range out {
		variation := (rnd.Float64()*2 - 1) * forecastSpread
		temp := math.Round(baseTemperature + variation)
		out[i] = ForecastDay{
			Day:            dayLabel(i),
			Temperature:    temp,
			Classification: Classify(temp),
		}
	}
	return out
}

func dayLabel(i int) string {
	if i < len(dayLabels) {
		return dayLabels[i]
	}
	return fmt.Sprintf("Dia %d", i+1)
}
