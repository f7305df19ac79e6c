package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Environment selects the log output format. Development environments
// get human-readable text, everything else gets JSON.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Module labels log records with the subsystem that emitted them.
type Module string

// ServiceInfo identifies the running service in log records and traces.
type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

// NewHandler builds the slog handler for the given environment. The log
// level is read from LOG_LEVEL (debug, info, warn, error) and defaults
// to info.
func NewHandler(env Environment, info ServiceInfo, module Module) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: LevelFromEnv(),
	}

	var handler slog.Handler
	if env == EnvDev {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	attrs := []slog.Attr{
		slog.String("service", info.Name),
		slog.String("version", info.Version),
		slog.String("module", string(module)),
	}
	if info.Revision != "" {
		attrs = append(attrs, slog.String("revision", info.Revision))
	}

	return handler.WithAttrs(attrs)
}

// LevelFromEnv parses LOG_LEVEL into a slog level, defaulting to info.
func LevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
