// Package openweather fetches current conditions from the OpenWeatherMap API
// and turns them into domain observations.
package openweather

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	"github.com/couchcryptid/climacare-alerts/internal/observability"
	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
)

const (
	countryCode        = "BR"
	defaultDescription = "Sem descrição"
	defaultIcon        = "01d"
)

// Client implements domain.WeatherSource using the current-weather endpoint.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates an OpenWeatherMap client. baseURL is the full URL of the
// current-weather endpoint.
func NewClient(baseURL, apiKey string, timeout time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		baseURL: baseURL,
		apiKey:  apiKey,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// CurrentWeather queries the API for "<city>,BR" in metric units with
// Portuguese descriptions. Temperatures are rounded to whole degrees.
func (c *Client) CurrentWeather(ctx context.Context, cityName string) (domain.Observation, error) {
	cityName = strings.TrimSpace(cityName)
	if cityName == "" {
		return domain.Observation{}, fmt.Errorf("city name is required")
	}

	start := c.clock.Now()
	var body response
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     cityName + "," + countryCode,
			"appid": c.apiKey,
			"units": "metric",
			"lang":  "pt_br",
		}).
		ForceContentType("application/json").
		SetResult(&body).
		Get(c.baseURL)
	c.metrics.WeatherAPIDuration.Observe(c.clock.Since(start).Seconds())

	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.Observation{}, fmt.Errorf("weather request for %s: %w", cityName, err)
	}
	if resp.IsError() {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		c.logger.Warn("weather API error", "city", cityName, "status", resp.StatusCode())
		return domain.Observation{}, fmt.Errorf("weather API error for %s: status %d", cityName, resp.StatusCode())
	}
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()

	return body.toObservation(cityName, c.clock.Now()), nil
}

// OpenWeatherMap response types; only the fields we map are declared.

type response struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (r response) toObservation(requested string, now time.Time) domain.Observation {
	name := r.Name
	if name == "" {
		name = requested
	}
	description, icon := defaultDescription, defaultIcon
	if len(r.Weather) > 0 {
		if r.Weather[0].Description != "" {
			description = r.Weather[0].Description
		}
		if r.Weather[0].Icon != "" {
			icon = r.Weather[0].Icon
		}
	}
	return domain.Observation{
		CityName:    name,
		State:       domain.StateForCity(requested),
		Temperature: roundHalfUp(r.Main.Temp),
		TempMin:     roundHalfUp(r.Main.TempMin),
		TempMax:     roundHalfUp(r.Main.TempMax),
		Description: description,
		Humidity:    r.Main.Humidity,
		WindSpeed:   r.Wind.Speed,
		FeelsLike:   roundHalfUp(r.Main.FeelsLike),
		Icon:        icon,
		LastUpdated: now.UnixMilli(),
	}
}

// roundHalfUp rounds halves toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
