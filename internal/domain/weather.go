package domain

import "context"

// WeatherSource fetches the current conditions of a city.
type WeatherSource interface {
	// CurrentWeather returns an observation for the named city. The state
	// abbreviation is resolved by the source.
	CurrentWeather(ctx context.Context, cityName string) (Observation, error)
}
