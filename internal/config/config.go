// Package config provides configuration loading for the learning style service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Model     ModelConfig     `yaml:"model"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	EnableHSTS      bool          `yaml:"enable_hsts"`
}

// ModelConfig configures the classifier artifact and its noise input
type ModelConfig struct {
	// Path is the serialized classifier (.json, .yaml or .yml)
	Path string `yaml:"path"`
	// NoiseSeed pins the noise feature for reproducible runs. Nil draws from
	// the process-wide random source.
	NoiseSeed *uint64 `yaml:"noise_seed"`
}

// ScoringConfig configures response aggregation
type ScoringConfig struct {
	// TreatMissingAsZero scores unanswered items as 0 instead of rejecting the submission
	TreatMissingAsZero bool `yaml:"treat_missing_as_zero"`
}

// DatabaseConfig configures assessment storage
type DatabaseConfig struct {
	DataDir string `yaml:"data_dir"`
	// RetentionDays deletes assessments older than this many days; 0 keeps them
	RetentionDays int `yaml:"retention_days"`
}

// RedisConfig configures the optional distributed rate limiter backend
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig configures submission throttling
type RateLimitConfig struct {
	PerMinute       int `yaml:"per_minute"`
	BurstMultiplier int `yaml:"burst_multiplier"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "release",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 30 * time.Second,
			CacheTTL:        15 * time.Minute,
			RequestTimeout:  10 * time.Second,
		},
		Model: ModelConfig{
			Path: "models/model_rf.json",
		},
		Scoring: ScoringConfig{
			TreatMissingAsZero: true,
		},
		Database: DatabaseConfig{
			DataDir: "./data",
		},
		RateLimit: RateLimitConfig{
			PerMinute:       30,
			BurstMultiplier: 2,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric: %q", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	if c.Database.DataDir == "" {
		return fmt.Errorf("database.data_dir is required")
	}
	if c.Database.RetentionDays < 0 {
		return fmt.Errorf("database.retention_days must not be negative")
	}
	if c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("rate_limit.per_minute must be positive")
	}
	if c.RateLimit.BurstMultiplier <= 0 {
		return fmt.Errorf("rate_limit.burst_multiplier must be positive")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from environment variables
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := getenv("GIN_MODE"); v != "" {
		c.Server.Mode = v
	}
	if v := getenv("ENABLE_HSTS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ENABLE_HSTS: %w", err)
		}
		c.Server.EnableHSTS = b
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := getenv("NOISE_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("NOISE_SEED: %w", err)
		}
		c.Model.NoiseSeed = &seed
	}
	if v := getenv("TREAT_MISSING_AS_ZERO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TREAT_MISSING_AS_ZERO: %w", err)
		}
		c.Scoring.TreatMissingAsZero = b
	}
	if v := getenv("DATA_DIR"); v != "" {
		c.Database.DataDir = v
	}
	if v := getenv("RETENTION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RETENTION_DAYS: %w", err)
		}
		c.Database.RetentionDays = days
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}
	if v := getenv("RATE_LIMIT_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_PER_MIN: %w", err)
		}
		c.RateLimit.PerMinute = n
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
