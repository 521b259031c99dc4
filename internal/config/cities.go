package config

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadCities returns the cities to poll. An empty path selects the built-in
// list of state capitals; otherwise the YAML file at path is read:
//
//	cities:
//	  - name: Recife
//	    state: PE
//	  - name: Campinas
//
// A missing state is resolved from the built-in table, falling back to "BR".
func LoadCities(path string) ([]domain.City, error) {
	if path == "" {
		return domain.Capitals(), nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load cities file %s: %w", path, err)
	}

	var cities []domain.City
	if err := k.UnmarshalWithConf("cities", &cities, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("parse cities file %s: %w", path, err)
	}

	out := make([]domain.City, 0, len(cities))
	seen := make(map[string]bool, len(cities))
	for _, c := range cities {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("cities file %s: entry with empty name", path)
		}
		key := domain.CityKey(c.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		if c.State == "" {
			c.State = domain.StateForCity(c.Name)
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("cities file %s: no cities listed", path)
	}
	return out, nil
}
