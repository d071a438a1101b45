package config

import (
	"log/slog"
	"os"
)

// DefaultConfigFile is looked up in the working directory when no path is given
const DefaultConfigFile = "learnstyle.yaml"

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
	getenv func(string) string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, getenv: os.Getenv}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. YAML file (path, else CONFIG_FILE, else learnstyle.yaml if present)
// 3. Environment variables
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		path = l.getenv("CONFIG_FILE")
	}
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	fileConfig, err := LoadFromFile(path)
	switch {
	case err == nil:
		l.logger.Debug("Loaded config file", slog.String("path", path))
		config = fileConfig
	case explicit:
		return nil, err
	case !os.IsNotExist(unwrapAll(err)):
		l.logger.Warn("Failed to load config file", slog.String("path", path), slog.String("error", err.Error()))
	default:
		l.logger.Debug("No config file found", slog.String("path", path))
	}

	if err := config.ApplyEnv(l.getenv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func unwrapAll(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok || u.Unwrap() == nil {
			return err
		}
		err = u.Unwrap()
	}
}
