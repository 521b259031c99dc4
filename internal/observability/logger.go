package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/couchcryptid/climacare-alerts/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "climacare-alerts"

// NewLogger builds the service logger from LOG_LEVEL, LOG_FORMAT and LOG_FILE
// and installs it as the slog default. With LOG_FILE set, output goes to a
// size-rotated file instead of stdout.
func NewLogger(cfg *config.Config) *slog.Logger {
	base := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogFile == "" {
		logger := base.With("service", serviceName)
		slog.SetDefault(logger)
		return logger
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger := newWriterLogger(rotated, enabledLevel(base), cfg.LogFormat)
	slog.SetDefault(logger)
	return logger
}

// newWriterLogger mirrors the shared logger's handler choice on an arbitrary writer.
func newWriterLogger(out io.Writer, level slog.Leveler, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}
	return slog.New(h).With("service", serviceName)
}

// enabledLevel reports the lowest level l emits.
func enabledLevel(l *slog.Logger) slog.Level {
	ctx := context.Background()
	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(ctx, lvl) {
			return lvl
		}
	}
	return slog.LevelError
}
