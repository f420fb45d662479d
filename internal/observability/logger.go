package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger. Console output is used in
// dev mode, plain JSON otherwise.
func InitLogger(app, mode string) zerolog.Logger {
	var logger zerolog.Logger
	if mode == "release" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		logger = zerolog.New(os.Stderr).With().Timestamp().Str("app", app).Logger()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		logger = zerolog.New(output).With().Timestamp().Str("app", app).Logger()
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = logger
	return logger
}
