// Package config loads stadiumforge settings from YAML, then environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLIs look for a config file
const DefaultPath = "stadiumforge.yaml"

// Config is the top-level configuration
type Config struct {
	Dumps   DumpsConfig   `yaml:"dumps"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
	Redis   RedisConfig   `yaml:"redis"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// DumpsConfig points at the wikitext dumps
type DumpsConfig struct {
	Items  string `yaml:"items"`
	Heroes string `yaml:"heroes"`
}

// OutputConfig says where results go
type OutputConfig struct {
	Dir       string `yaml:"dir"`        // items.json, heroes.json, meta.json
	PublicDir string `yaml:"public_dir"` // served static root
	DBPath    string `yaml:"db_path"`    // empty disables the SQLite mirror
}

// ItemsAssetDir is where hero item images are copied
func (o OutputConfig) ItemsAssetDir() string {
	return filepath.Join(o.PublicDir, "assets", "items")
}

// StadiumAssetDir is where dump images are copied
func (o OutputConfig) StadiumAssetDir() string {
	return filepath.Join(o.PublicDir, "stadium")
}

// BuildConfig tunes the extraction run
type BuildConfig struct {
	Concurrency int  `yaml:"concurrency"`
	Validate    bool `yaml:"validate"`
	CopyAssets  bool `yaml:"copy_assets"`
}

// RedisConfig enables publishing to and loading from Redis
type RedisConfig struct {
	Addr   string `yaml:"addr"` // empty disables Redis
	Prefix string `yaml:"prefix"`
}

// ServerConfig configures the read-only API
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Watch          bool     `yaml:"watch"`
}

// LoggingConfig configures zerolog
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Dumps: DumpsConfig{
			Items:  "dumps/stadium_items_dump",
			Heroes: "dumps/stadium_heroes_dump",
		},
		Output: OutputConfig{
			Dir:       "data/stadium",
			PublicDir: "public",
		},
		Build: BuildConfig{
			Concurrency: 8,
			CopyAssets:  true,
		},
		Redis: RedisConfig{
			Prefix: "stadium",
		},
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:*"},
			Watch:          true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	c.Dumps.Items = getEnv("STADIUM_DUMP_ITEMS", c.Dumps.Items)
	c.Dumps.Heroes = getEnv("STADIUM_DUMP_HEROES", c.Dumps.Heroes)
	c.Output.Dir = getEnv("STADIUM_OUT", c.Output.Dir)
	c.Output.PublicDir = getEnv("STADIUM_PUBLIC", c.Output.PublicDir)
	c.Output.DBPath = getEnv("STADIUM_DB", c.Output.DBPath)
	c.Redis.Addr = getEnv("STADIUM_REDIS_ADDR", c.Redis.Addr)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Logging.Level = getEnv("STADIUM_LOG_LEVEL", c.Logging.Level)

	if v := os.Getenv("STADIUM_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Build.Concurrency = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output dir is required")
	}
	if c.Build.Concurrency < 0 {
		return fmt.Errorf("invalid build concurrency: %d", c.Build.Concurrency)
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	if c.Server.Port != "" {
		if n, err := strconv.Atoi(c.Server.Port); err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("invalid server port: %s", c.Server.Port)
		}
	}
	return nil
}
