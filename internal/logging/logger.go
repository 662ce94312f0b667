package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/provisioning/internal/config"
)

// NewLogger creates a structured zerolog.Logger writing to stdout.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return New(os.Stdout, cfg)
}

// New creates a structured zerolog.Logger writing to w, tagged with the
// service name and filtered at the configured level.
func New(w io.Writer, cfg *config.Config) zerolog.Logger {
	ctx := zerolog.New(w).With().Timestamp()

	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
