package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/rediscloud-tools/internal/config"
)

// NewLogger creates a structured zerolog.Logger for the given service name.
// The level comes from config; unparseable levels fall back to info.
func NewLogger(cfg *config.Config, service string) zerolog.Logger {
	ctx := zerolog.New(os.Stdout).With().Timestamp()
	if service != "" {
		ctx = ctx.Str("service", service)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
