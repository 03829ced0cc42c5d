// Package cli holds the flag and startup plumbing shared by the binaries
// under cmd/.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meur/stadiumforge/internal/config"
	"github.com/meur/stadiumforge/internal/logging"
)

// Globals are the persistent flags every binary accepts
type Globals struct {
	ConfigPath string
	LogLevel   string
	Pretty     bool
}

// Register binds the global flags to cmd
func (g *Globals) Register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&g.ConfigPath, "config", config.DefaultPath, "Config file path")
	f.StringVar(&g.LogLevel, "log-level", "", "Log level, overrides the config file")
	f.BoolVar(&g.Pretty, "pretty", false, "Human-readable log output")
}

// Load reads the config, applies the logging flags and configures the
// global logger.
func (g *Globals) Load() (*config.Config, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.Pretty {
		cfg.Logging.Pretty = true
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Pretty); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	return cfg, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Execute runs cmd and exits non-zero on error
func Execute(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
