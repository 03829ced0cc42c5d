package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STADIUM_DUMP_ITEMS", "STADIUM_DUMP_HEROES", "STADIUM_OUT", "STADIUM_PUBLIC",
		"STADIUM_DB", "STADIUM_REDIS_ADDR", "PORT", "STADIUM_LOG_LEVEL", "STADIUM_CONCURRENCY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "stadiumforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dumps:
  items: /data/items
output:
  dir: /srv/stadium
  db_path: /srv/stadium.db
build:
  concurrency: 2
  validate: true
redis:
  addr: localhost:6379
server:
  allowed_origins: ["https://stadium.example"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/items", cfg.Dumps.Items)
	assert.Equal(t, "dumps/stadium_heroes_dump", cfg.Dumps.Heroes, "unset keys keep defaults")
	assert.Equal(t, "/srv/stadium", cfg.Output.Dir)
	assert.Equal(t, "/srv/stadium.db", cfg.Output.DBPath)
	assert.Equal(t, 2, cfg.Build.Concurrency)
	assert.True(t, cfg.Build.Validate)
	assert.True(t, cfg.Build.CopyAssets)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"https://stadium.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dumps: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STADIUM_DUMP_ITEMS", "/env/items")
	t.Setenv("STADIUM_OUT", "/env/out")
	t.Setenv("STADIUM_REDIS_ADDR", "redis:6379")
	t.Setenv("PORT", "9090")
	t.Setenv("STADIUM_LOG_LEVEL", "debug")
	t.Setenv("STADIUM_CONCURRENCY", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/env/items", cfg.Dumps.Items)
	assert.Equal(t, "/env/out", cfg.Output.Dir)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Build.Concurrency)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "no output dir", mutate: func(c *Config) { c.Output.Dir = " " }, wantErr: true},
		{name: "negative concurrency", mutate: func(c *Config) { c.Build.Concurrency = -1 }, wantErr: true},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = "http" }, wantErr: true},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = "70000" }, wantErr: true},
		{name: "no port", mutate: func(c *Config) { c.Server.Port = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssetDirs(t *testing.T) {
	o := OutputConfig{PublicDir: "public"}
	assert.Equal(t, filepath.Join("public", "assets", "items"), o.ItemsAssetDir())
	assert.Equal(t, filepath.Join("public", "stadium"), o.StadiumAssetDir())
}
