package observability

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/couchcryptid/burn-severity-etl/internal/config"
)

// NewLogger builds the service-wide slog logger from configuration. Every
// record carries the service name and a per-process instance id so logs from
// scaled-out replicas can be told apart.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.LogFormat) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With(
		"service", "burn-severity-etl",
		"instance_id", uuid.NewString(),
	)
}
