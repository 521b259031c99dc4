// Command genmock writes a deterministic weather observation fixture for the
// state capitals, used by the pipeline tests, and can seed a Kafka topic with
// it for local runs.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/observations.json
//	go run ./cmd/genmock -out data/mock/observations.json -brokers localhost:9092 -topic weather-observations
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	kafkago "github.com/segmentio/kafka-go"
)

// baseTime is the lastUpdated of the first observation; each following city
// is one minute later.
var baseTime = time.Date(2024, time.October, 18, 12, 0, 0, 0, time.UTC)

// One representative temperature per tier, cycled over the cities.
var profiles = []struct {
	temperature float64
	description string
	icon        string
}{
	{5, "névoa", "50d"},
	{12, "nublado", "04d"},
	{18, "nuvens dispersas", "03d"},
	{24, "céu limpo", "01d"},
	{30, "céu limpo", "01d"},
	{33, "poucas nuvens", "02d"},
	{38, "céu limpo", "01d"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the observation fixture")
	brokers := flag.String("brokers", "", "comma-separated Kafka brokers to seed (optional)")
	topic := flag.String("topic", "weather-observations", "Kafka topic to seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	observations := generate(domain.Capitals())

	data, err := json.MarshalIndent(observations, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*out, append(data, '\n'), 0o644); err != nil { //nolint:gosec // fixture file, world-readable is fine
		return err
	}
	log.Printf("wrote %d observations to %s", len(observations), *out)

	if *brokers == "" {
		return nil
	}
	return seed(sharedcfg.ParseBrokers(*brokers), *topic, observations)
}

func generate(cities []domain.City) []domain.Observation {
	observations := make([]domain.Observation, 0, len(cities))
	for i, c := range cities {
		p := profiles[i%len(profiles)]
		observations = append(observations, domain.Observation{
			CityName:    c.Name,
			State:       c.State,
			Temperature: p.temperature,
			TempMin:     p.temperature - 3,
			TempMax:     p.temperature + 2,
			Description: p.description,
			Humidity:    float64(40 + (i*7)%50),
			WindSpeed:   float64(15+(i%5)*8) / 10,
			FeelsLike:   p.temperature + 1,
			Icon:        p.icon,
			LastUpdated: baseTime.Add(time.Duration(i) * time.Minute).UnixMilli(),
		})
	}
	return observations
}

func seed(brokers []string, topic string, observations []domain.Observation) error {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		AllowAutoTopicCreation: true,
	}
	defer w.Close()

	msgs := make([]kafkago.Message, 0, len(observations))
	for _, obs := range observations {
		value, err := json.Marshal(obs)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafkago.Message{Key: []byte(domain.Slug(obs.CityName)), Value: value})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("seed %s: %w", topic, err)
	}
	log.Printf("seeded %d observations to %s", len(msgs), topic)
	return nil
}
