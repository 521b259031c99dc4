package memory

import (
	"context"
	"testing"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetMissing(t *testing.T) {
	s := NewStore()
	_, err := s.Get(context.Background(), "climate_alerts")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestStore_SetGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte(`{"alerts":[]}`)))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"alerts":[]}`, string(got))
}

func TestStore_CopiesBuffers(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}
