package contract

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DotEnvFiles are the env files loaded before configuration is resolved, in order.
var DotEnvFiles = []string{".env", ".env.local"}

// SetupLogger routes the global zerolog logger to a console writer on w.
// Diagnostics stay quiet unless verbose is set.
func SetupLogger(w io.Writer, verbose bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

// LoadDotEnv loads every existing file of DotEnvFiles into the process environment.
// Variables that are already set are not overridden. It returns the files it loaded.
func LoadDotEnv(files ...string) ([]string, error) {
	if len(files) == 0 {
		files = DotEnvFiles
	}
	var loaded []string
	for _, location := range files {
		if _, err := os.Stat(location); err != nil {
			continue
		}
		if err := godotenv.Load(location); err != nil {
			return loaded, fmt.Errorf("error loading env file from %s: %w", location, err)
		}
		log.Debug().Str("file", location).Msg("env file loaded")
		loaded = append(loaded, location)
	}
	return loaded, nil
}
