package testutil

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogger(t *testing.T) zerolog.Logger {
	return zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stdout
	})).With().Str("test", t.Name()).Logger()
}
