// Package logging configures zerolog for the stadiumforge binaries. Package
// loggers are created with Module at init time and pick up Setup's output
// and level afterwards.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// switchWriter lets Setup retarget loggers that already exist
type switchWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

var output = &switchWriter{w: os.Stderr}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// Module returns a logger tagged with the module name
func Module(name string) zerolog.Logger {
	return zerolog.New(output).With().Timestamp().Str("module", name).Logger()
}

// Setup sets the global level and output format. Pretty output is the
// human-readable console format; otherwise lines are JSON.
func Setup(level string, pretty bool) error {
	return SetupWriter(os.Stderr, level, pretty)
}

// SetupWriter is Setup with an explicit destination
func SetupWriter(w io.Writer, level string, pretty bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	output.set(w)
	return nil
}
