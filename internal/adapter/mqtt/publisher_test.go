package mqtt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type message struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	sent []message
	err  error
}

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) paho.Token {
	c.sent = append(c.sent, message{topic: topic, retained: retained, payload: payload.([]byte)})
	return doneToken{err: c.err}
}

func testPublisher(c *fakeClient) *Publisher {
	return NewPublisher(c, "climacare/alerts/", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func event(slug, state, alertType string) domain.OutputEvent {
	return domain.OutputEvent{
		Key:     []byte(slug),
		Value:   []byte(`{"state":"` + state + `"}`),
		Headers: map[string]string{"alert_type": alertType},
	}
}

func TestPublisher_PublishesOnlyAlerts(t *testing.T) {
	client := &fakeClient{}
	p := testPublisher(client)

	err := p.LoadBatch(context.Background(), []domain.OutputEvent{
		event("cuiaba", "MT", "heat"),
		event("salvador", "BA", ""),
		event("curitiba", "PR", "cold"),
	})
	require.NoError(t, err)

	require.Len(t, client.sent, 2)
	assert.Equal(t, "climacare/alerts/mt/cuiaba", client.sent[0].topic)
	assert.True(t, client.sent[0].retained)
	assert.Equal(t, "climacare/alerts/pr/curitiba", client.sent[1].topic)
}

func TestPublisher_MissingStateFallsBack(t *testing.T) {
	client := &fakeClient{}
	require.NoError(t, testPublisher(client).LoadBatch(context.Background(), []domain.OutputEvent{event("gotham", "", "cold")}))
	require.Len(t, client.sent, 1)
	assert.Equal(t, "climacare/alerts/br/gotham", client.sent[0].topic)
}

func TestPublisher_PublishError(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	err := testPublisher(client).LoadBatch(context.Background(), []domain.OutputEvent{event("cuiaba", "MT", "heat")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestPublisher_BadPayload(t *testing.T) {
	client := &fakeClient{}
	bad := domain.OutputEvent{Key: []byte("x"), Value: []byte("{"), Headers: map[string]string{"alert_type": "heat"}}
	require.Error(t, testPublisher(client).LoadBatch(context.Background(), []domain.OutputEvent{bad}))
	assert.Empty(t, client.sent)
}
