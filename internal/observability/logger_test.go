package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/climacare-alerts/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabledLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	assert.Equal(t, slog.LevelDebug, enabledLevel(sharedobs.NewLogger("debug", "json")))
	assert.Equal(t, slog.LevelWarn, enabledLevel(sharedobs.NewLogger("WARNING", "json")))
	assert.Equal(t, slog.LevelError, enabledLevel(sharedobs.NewLogger("error", "json")))
	assert.Equal(t, slog.LevelInfo, enabledLevel(sharedobs.NewLogger("", "json")))
	assert.Equal(t, slog.LevelInfo, enabledLevel(sharedobs.NewLogger("chatty", "json")))
}

func TestNewWriterLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newWriterLogger(&buf, slog.LevelInfo, "json")

	logger.Debug("hidden")
	logger.Info("alert ingested", "city", "Recife")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "alert ingested", line["msg"])
	assert.Equal(t, "Recife", line["city"])
	assert.Equal(t, "climacare-alerts", line["service"])
}

func TestNewWriterLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newWriterLogger(&buf, slog.LevelDebug, "text")

	logger.Debug("visible", "tier", "hot")

	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "tier=hot")
}

func TestNewLogger_WritesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "climacare.log")
	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "json", LogFile: path})

	logger.Info("dropped")
	logger.Warn("kept", "city", "Cuiabá")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"msg":"kept"`)
	assert.Same(t, logger, slog.Default())
}
