package main

import (
	"github.com/couchcryptid/climacare-alerts/internal/alerts"
	"github.com/couchcryptid/climacare-alerts/internal/domain"
)

func validateTiers(list []domain.ClimateAlert) *phase {
	p := &phase{name: "Phase 1: Known tiers"}
	for i, a := range list {
		if _, ok := domain.ParseTier(string(a.Classification.Tier)); !ok {
			p.errorf("alert %d (%s): unknown tier %q", i, a.CityName, a.Classification.Tier)
		}
	}
	return p
}

func validateUniqueness(list []domain.ClimateAlert) *phase {
	p := &phase{name: "Phase 2: One alert per city"}
	seen := make(map[string]int, len(list))
	for i, a := range list {
		if a.CityName == "" {
			p.errorf("alert %d: empty city name", i)
			continue
		}
		key := domain.CityKey(a.CityName)
		if j, dup := seen[key]; dup {
			p.errorf("alert %d (%s) duplicates alert %d", i, a.CityName, j)
			continue
		}
		seen[key] = i
	}
	return p
}

func validateClassification(list []domain.ClimateAlert) *phase {
	p := &phase{name: "Phase 3: Classification matches temperature"}
	for i, a := range list {
		if want := domain.Classify(a.Temperature); a.Classification != want {
			p.errorf("alert %d (%s, %v°C): classified %s, want %s", i, a.CityName, a.Temperature, a.Classification.Tier, want.Tier)
		}
	}
	return p
}

func validateOrdering(state domain.AlertsState) *phase {
	p := &phase{name: "Phase 4: Identity and newest-first order"}
	for i, a := range state.Alerts {
		if want := domain.AlertID(a.CityName, a.CreatedAt); a.ID != want {
			p.errorf("alert %d (%s): id %q, want %q", i, a.CityName, a.ID, want)
		}
		if i > 0 && a.CreatedAt > state.Alerts[i-1].CreatedAt {
			p.errorf("alert %d (%s) is newer than alert %d", i, a.CityName, i-1)
		}
		if a.CreatedAt > state.LastUpdated {
			p.errorf("alert %d (%s): createdAt %d after state lastUpdated %d", i, a.CityName, a.CreatedAt, state.LastUpdated)
		}
	}
	return p
}

func validateSummary(list []domain.ClimateAlert) *phase {
	p := &phase{name: "Phase 5: Summary partitions the alerts"}
	s := alerts.Summarize(list)
	if s.Total != len(list) {
		p.errorf("summary total %d, want %d", s.Total, len(list))
	}
	if got := s.HeatAlerts + s.ColdAlerts + s.NormalConditions; got != s.Total {
		p.errorf("heat %d + cold %d + normal %d = %d, want %d", s.HeatAlerts, s.ColdAlerts, s.NormalConditions, got, s.Total)
	}
	grouped := 0
	for _, members := range alerts.GroupByTier(list) {
		grouped += len(members)
	}
	if grouped != len(list) {
		p.errorf("tier groups hold %d alerts, want %d", grouped, len(list))
	}
	return p
}

// validateCoverage checks that the last observation of every city in the
// fixture is the live alert of that city.
func validateCoverage(list []domain.ClimateAlert, observations []domain.Observation) *phase {
	p := &phase{name: "Phase 6: Observation coverage"}
	latest := make(map[string]domain.Observation, len(observations))
	for _, obs := range observations {
		latest[domain.CityKey(obs.CityName)] = obs
	}
	byCity := make(map[string]domain.ClimateAlert, len(list))
	for _, a := range list {
		byCity[domain.CityKey(a.CityName)] = a
	}
	for key, obs := range latest {
		a, ok := byCity[key]
		if !ok {
			p.errorf("%s: no alert", obs.CityName)
			continue
		}
		if a.Temperature != obs.Temperature {
			p.errorf("%s: alert temperature %v, observation %v", obs.CityName, a.Temperature, obs.Temperature)
		}
	}
	return p
}
