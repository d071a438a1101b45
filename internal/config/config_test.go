package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Scoring.TreatMissingAsZero)
	assert.Nil(t, cfg.Model.NoiseSeed)
	assert.Equal(t, 30, cfg.RateLimit.PerMinute)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }, "server.port is required"},
		{"non-numeric port", func(c *Config) { c.Server.Port = "http" }, "server.port must be numeric"},
		{"unknown mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"empty model path", func(c *Config) { c.Model.Path = "" }, "model.path is required"},
		{"empty data dir", func(c *Config) { c.Database.DataDir = "" }, "database.data_dir is required"},
		{"negative retention", func(c *Config) { c.Database.RetentionDays = -1 }, "database.retention_days"},
		{"zero rate", func(c *Config) { c.RateLimit.PerMinute = 0 }, "rate_limit.per_minute"},
		{"zero burst", func(c *Config) { c.RateLimit.BurstMultiplier = 0 }, "rate_limit.burst_multiplier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"PORT":                  "9090",
		"GIN_MODE":              "debug",
		"ENABLE_HSTS":           "true",
		"CORS_ORIGINS":          "https://a.example, https://b.example,",
		"MODEL_PATH":            "/srv/model.yaml",
		"NOISE_SEED":            "42",
		"TREAT_MISSING_AS_ZERO": "false",
		"DATA_DIR":              "/var/lib/lsi",
		"RETENTION_DAYS":        "90",
		"REDIS_ADDR":            "localhost:6379",
		"REDIS_DB":              "2",
		"RATE_LIMIT_PER_MIN":    "5",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.True(t, cfg.Server.EnableHSTS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "/srv/model.yaml", cfg.Model.Path)
	require.NotNil(t, cfg.Model.NoiseSeed)
	assert.Equal(t, uint64(42), *cfg.Model.NoiseSeed)
	assert.False(t, cfg.Scoring.TreatMissingAsZero)
	assert.Equal(t, "/var/lib/lsi", cfg.Database.DataDir)
	assert.Equal(t, 90, cfg.Database.RetentionDays)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 5, cfg.RateLimit.PerMinute)
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	for _, key := range []string{"ENABLE_HSTS", "NOISE_SEED", "TREAT_MISSING_AS_ZERO", "RETENTION_DAYS", "REDIS_DB", "RATE_LIMIT_PER_MIN"} {
		t.Run(key, func(t *testing.T) {
			err := DefaultConfig().ApplyEnv(envMap(map[string]string{key: "not-a-value"}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "learnstyle.yaml")

	cfg := DefaultConfig()
	cfg.Server.Port = "7070"
	cfg.Server.CacheTTL = time.Minute
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromFileKeepsDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  path: custom.yaml\n  noise_seed: 7\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", cfg.Model.Path)
	require.NotNil(t, cfg.Model.NoiseSeed)
	assert.Equal(t, uint64(7), *cfg.Model.NoiseSeed)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Scoring.TreatMissingAsZero)
}

func TestLoaderPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lsi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"7000\"\n  mode: test\n"), 0644))

	l := NewLoader(nil)
	l.getenv = envMap(map[string]string{"PORT": "7001"})

	cfg, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Server.Port, "env overrides file")
	assert.Equal(t, "test", cfg.Server.Mode, "file overrides defaults")
}

func TestLoaderExplicitMissingFileFails(t *testing.T) {
	l := NewLoader(nil)
	l.getenv = envMap(nil)

	_, err := l.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoaderWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	l := NewLoader(nil)
	l.getenv = envMap(nil)

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoaderRejectsInvalidResult(t *testing.T) {
	t.Chdir(t.TempDir())

	l := NewLoader(nil)
	l.getenv = envMap(map[string]string{"GIN_MODE": "prod"})

	_, err := l.Load("")
	assert.Error(t, err)
}
