package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/alerts"
	"github.com/couchcryptid/climacare-alerts/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const (
	maxBodyBytes    = 1 << 20
	maxForecastDays = 14
)

// AlertStore is the alert store surface served by the API.
type AlertStore interface {
	Ingest(ctx context.Context, obs domain.Observation) (domain.ClimateAlert, error)
	List(ctx context.Context) domain.AlertsState
	Get(ctx context.Context, city string) (domain.ClimateAlert, error)
	GroupByTier(ctx context.Context) map[domain.Tier][]domain.ClimateAlert
	Summary(ctx context.Context) alerts.Summary
	EvictOlderThan(ctx context.Context, maxAge time.Duration) (int, error)
	Reset(ctx context.Context) error
}

// API serves the /api/v1 routes.
type API struct {
	store         AlertStore
	defaultMaxAge time.Duration
	logger        *slog.Logger
}

// NewAPI creates the API. defaultMaxAge applies to DELETE /api/v1/alerts
// without a max_age parameter.
func NewAPI(store AlertStore, defaultMaxAge time.Duration, logger *slog.Logger) *API {
	return &API{store: store, defaultMaxAge: defaultMaxAge, logger: logger}
}

func (a *API) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/alerts", a.handleList)
	mux.HandleFunc("POST /api/v1/alerts", a.handleIngest)
	mux.HandleFunc("DELETE /api/v1/alerts", a.handleEvict)
	mux.HandleFunc("DELETE /api/v1/alerts/all", a.handleReset)
	mux.HandleFunc("GET /api/v1/alerts/by-tier", a.handleByTier)
	mux.HandleFunc("GET /api/v1/alerts/summary", a.handleSummary)
	mux.HandleFunc("GET /api/v1/alerts/{city}", a.handleGet)
	mux.HandleFunc("GET /api/v1/classify", handleClassify)
	mux.HandleFunc("GET /api/v1/forecast", handleForecast)
	mux.HandleFunc("GET /api/v1/capitals", handleCapitals)
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state := a.store.List(r.Context())
	state.Alerts = filter.Apply(state.Alerts)
	sharedobs.WriteJSON(w, http.StatusOK, state)
}

func parseFilter(r *http.Request) (alerts.Filter, error) {
	q := r.URL.Query()
	var f alerts.Filter

	switch t := q.Get("type"); t {
	case "", string(domain.AlertHeat), string(domain.AlertCold), alerts.NoAlert:
		f.AlertType = t
	default:
		return f, fmt.Errorf("invalid type %q", t)
	}

	if t := q.Get("tier"); t != "" {
		tier, ok := domain.ParseTier(t)
		if !ok {
			return f, fmt.Errorf("invalid tier %q", t)
		}
		f.Tier = tier
	}
	return f, nil
}

// handleGet looks the city up by name, then by slug.
func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")
	alert, err := a.store.Get(r.Context(), city)
	if err == nil {
		sharedobs.WriteJSON(w, http.StatusOK, alert)
		return
	}
	for _, candidate := range a.store.List(r.Context()).Alerts {
		if domain.Slug(candidate.CityName) == city {
			sharedobs.WriteJSON(w, http.StatusOK, candidate)
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("no alert for %s", city))
}

func (a *API) handleIngest(w http.ResponseWriter, r *http.Request) {
	var obs domain.Observation
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&obs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid observation body: "+err.Error())
		return
	}

	alert, err := a.store.Ingest(r.Context(), obs)
	switch {
	case errors.Is(err, alerts.ErrInvalidObservation):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		a.logger.Error("ingest failed", "error", err, "request_id", RequestIDFrom(r.Context()))
		writeError(w, http.StatusServiceUnavailable, "alert store unavailable")
	default:
		sharedobs.WriteJSON(w, http.StatusCreated, alert)
	}
}

func (a *API) handleByTier(w http.ResponseWriter, r *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, a.store.GroupByTier(r.Context()))
}

func (a *API) handleSummary(w http.ResponseWriter, r *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, a.store.Summary(r.Context()))
}

func (a *API) handleEvict(w http.ResponseWriter, r *http.Request) {
	maxAge := a.defaultMaxAge
	if s := r.URL.Query().Get("max_age"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid max_age %q", s))
			return
		}
		maxAge = d
	}

	removed, err := a.store.EvictOlderThan(r.Context(), maxAge)
	if err != nil {
		a.logger.Error("eviction failed", "error", err, "request_id", RequestIDFrom(r.Context()))
		writeError(w, http.StatusServiceUnavailable, "alert store unavailable")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Reset(r.Context()); err != nil {
		a.logger.Error("reset failed", "error", err, "request_id", RequestIDFrom(r.Context()))
		writeError(w, http.StatusServiceUnavailable, "alert store unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type classifyResponse struct {
	Temperature    float64               `json:"temperature"`
	Classification domain.Classification `json:"classification"`
}

func handleClassify(w http.ResponseWriter, r *http.Request) {
	temp, err := parseTemperature(r.URL.Query().Get("temp"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, classifyResponse{Temperature: temp, Classification: domain.Classify(temp)})
}

type forecastResponse struct {
	BaseTemperature float64              `json:"baseTemperature"`
	Days            []domain.ForecastDay `json:"days"`
}

func handleForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	temp, err := parseTemperature(q.Get("temp"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	days := domain.DefaultForecastDays
	if s := q.Get("days"); s != "" {
		days, err = strconv.Atoi(s)
		if err != nil || days < 1 || days > maxForecastDays {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", maxForecastDays))
			return
		}
	}
	sharedobs.WriteJSON(w, http.StatusOK, forecastResponse{BaseTemperature: temp, Days: domain.Forecast(temp, days, nil)})
}

func parseTemperature(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("temp is required")
	}
	temp, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		return 0, fmt.Errorf("invalid temp %q", s)
	}
	return temp, nil
}

type capitalResponse struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Code  string `json:"code"`
}

func handleCapitals(w http.ResponseWriter, _ *http.Request) {
	caps := domain.Capitals()
	out := make([]capitalResponse, len(caps))
	for i, c := range caps {
		out[i] = capitalResponse{Name: c.Name, State: c.State, Code: c.Code()}
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}
