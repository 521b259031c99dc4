//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(ctx context.Context, t *testing.T) string {
	t.Helper()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestStore_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s := NewStore(NewClient(startRedis(ctx, t), "", 0))
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Ping(ctx))

	_, err := s.Get(ctx, "climate_alerts")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)

	require.NoError(t, s.Set(ctx, "climate_alerts", []byte(`{"alerts":[],"lastUpdated":1}`)))
	require.NoError(t, s.Set(ctx, "climate_alerts", []byte(`{"alerts":[],"lastUpdated":2}`)))

	got, err := s.Get(ctx, "climate_alerts")
	require.NoError(t, err)
	assert.JSONEq(t, `{"alerts":[],"lastUpdated":2}`, string(got))
}
