package infra

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the bot's root logger. Development gets a console writer at debug level.
// A non-empty level (LOG_LEVEL) overrides the environment default; unknown levels are ignored.
func NewLogger(appEnv, level string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if appEnv == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return newLogger(out, appEnv, level)
}

func newLogger(out io.Writer, appEnv, level string) zerolog.Logger {
	return zerolog.New(out).
		Level(resolveLevel(appEnv, level)).
		With().
		Timestamp().
		Str("service", "legalbot").
		Logger()
}

func resolveLevel(appEnv, level string) zerolog.Level {
	if level = strings.ToLower(strings.TrimSpace(level)); level != "" {
		if lvl, err := zerolog.ParseLevel(level); err == nil {
			return lvl
		}
	}
	if appEnv == "development" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// Logger aliases zerolog.Logger so packages can depend on the logging contract through infra.
type Logger = zerolog.Logger
