package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mchmarny/houseval/pkg/housing"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	envFileName    = ".env"
	dirMode        = 0700
	fileMode       = 0600

	defaultBatchWorkers  = 4
	defaultServerAddress = "127.0.0.1:8080"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config represents app config object. Values are read from config.yaml,
// then overridden by HOUSEVAL_* environment variables.
type Config struct {
	// Coefficients is a file path or http(s) URL of a coefficient document.
	// Empty selects the embedded model.
	Coefficients string `yaml:"coefficients" env:"HOUSEVAL_COEFFICIENTS"`
	// Baseline is the ocean_proximity value folded into the intercept.
	Baseline     string `yaml:"baseline" env:"HOUSEVAL_BASELINE" validate:"required"`
	LogLevel     string `yaml:"log_level" env:"HOUSEVAL_LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	DB           string `yaml:"db" env:"HOUSEVAL_DB"`
	BatchWorkers int    `yaml:"batch_workers" env:"HOUSEVAL_BATCH_WORKERS" validate:"gte=1,lte=64"`
	Server       Server `yaml:"server"`
}

type Server struct {
	Address string `yaml:"address" env:"HOUSEVAL_SERVER_ADDRESS" validate:"required,hostname_port"`
}

// Default returns the config written on first run.
func Default() *Config {
	return &Config{
		Baseline:     housing.DefaultBaseline,
		LogLevel:     "info",
		BatchWorkers: defaultBatchWorkers,
		Server: Server{
			Address: defaultServerAddress,
		},
	}
}

// Validate checks the config values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configFileName, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
// Keys missing from an existing file keep their default values.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if err := os.MkdirAll(dirPath, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create dir %s: %w", dirPath, err)
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, Default()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}
	return c, nil
}

// ApplyEnv overrides c with HOUSEVAL_* variables. A .env file in dirPath,
// when present, is loaded first; variables already set in the process win.
func ApplyEnv(dirPath string, c *Config) error {
	if c == nil {
		return errors.New("config required")
	}

	if dirPath != "" {
		p := filepath.Join(dirPath, envFileName)
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}

	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// Load reads the config in dirPath, applies environment overrides and
// validates the result.
func Load(dirPath string) (*Config, error) {
	c, err := ReadOrCreate(dirPath)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(dirPath, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// GetOrCreateHomeDir returns the app directory in the current user's home.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
