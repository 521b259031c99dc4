// Package mqtt publishes heat and cold alerts to an MQTT broker, one retained
// message per city.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos            = 1
	publishTimeout = 5 * time.Second
)

// publisher is the part of paho.Client the Publisher uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher implements pipeline.BatchLoader over MQTT. Alerts without an
// alert type (normal conditions) are not published.
type Publisher struct {
	client publisher
	prefix string
	logger *slog.Logger
}

// Connect dials the broker and returns a Publisher together with a function
// that disconnects it.
func Connect(broker, clientID, prefix string, logger *slog.Logger) (*Publisher, func(), error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(publishTimeout)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, nil, fmt.Errorf("connect to MQTT broker %s: timeout", broker)
	}
	if err := token.Error(); err != nil {
		return nil, nil, fmt.Errorf("connect to MQTT broker %s: %w", broker, err)
	}
	return NewPublisher(client, prefix, logger), func() { client.Disconnect(250) }, nil
}

// NewPublisher wraps a connected client.
func NewPublisher(client publisher, prefix string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		prefix: strings.TrimSuffix(prefix, "/"),
		logger: logger,
	}
}

// LoadBatch publishes every heat or cold alert of the batch to
// <prefix>/<state>/<city slug>.
func (p *Publisher) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	published := 0
	for _, event := range events {
		if event.Headers["alert_type"] == "" {
			continue
		}
		topic, err := p.topicFor(event)
		if err != nil {
			return err
		}
		if err := p.publish(ctx, topic, event.Value); err != nil {
			return err
		}
		published++
	}
	if published > 0 {
		p.logger.Debug("published alerts to mqtt", "count", published)
	}
	return nil
}

func (p *Publisher) topicFor(event domain.OutputEvent) (string, error) {
	var alert struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(event.Value, &alert); err != nil {
		return "", fmt.Errorf("decode alert %s: %w", event.Key, err)
	}
	state := strings.ToLower(alert.State)
	if state == "" {
		state = "br"
	}
	return fmt.Sprintf("%s/%s/%s", p.prefix, state, event.Key), nil
}

func (p *Publisher) publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, qos, true, payload)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
