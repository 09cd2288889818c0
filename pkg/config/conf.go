// Package config loads the tradepulse settings from a yaml file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const (
	FileName = "config.yaml"

	DefaultLogLevel      = "info"
	DefaultReferenceDate = "2025-01-01"
	DefaultTopK          = 100
	DefaultWorkers       = 4

	EnvDBPath        = "TRADEPULSE_DB"
	EnvLogLevel      = "TRADEPULSE_LOG_LEVEL"
	EnvReferenceDate = "TRADEPULSE_REFERENCE_DATE"
	EnvTopK          = "TRADEPULSE_TOP_K"
	EnvWorkers       = "TRADEPULSE_WORKERS"

	dirMode  = 0700
	fileMode = 0600
)

var (
	ErrInvalidReferenceDate = errors.New("reference_date must be YYYY-MM-DD")
	ErrInvalidTopK          = errors.New("top_k must be positive")
	ErrInvalidWorkers       = errors.New("workers must be positive")
)

// Sources are the dataset locations, local paths or http(s) URLs.
type Sources struct {
	Exporters string `koanf:"exporters" yaml:"exporters"`
	Importers string `koanf:"importers" yaml:"importers"`
	News      string `koanf:"news" yaml:"news"`
}

// Config represents app config object.
type Config struct {
	DBPath        string  `koanf:"db_path" yaml:"db_path"`
	LogLevel      string  `koanf:"log_level" yaml:"log_level"`
	ReferenceDate string  `koanf:"reference_date" yaml:"reference_date"`
	TopK          int     `koanf:"top_k" yaml:"top_k"`
	Workers       int     `koanf:"workers" yaml:"workers"`
	Sources       Sources `koanf:"sources" yaml:"sources"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:      DefaultLogLevel,
		ReferenceDate: DefaultReferenceDate,
		TopK:          DefaultTopK,
		Workers:       DefaultWorkers,
	}
}

// Reference parses ReferenceDate, the "today" recency decay is measured from.
func (c *Config) Reference() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, c.ReferenceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidReferenceDate, c.ReferenceDate)
	}
	return t, nil
}

// Validate returns every problem with the config, empty when valid.
func (c *Config) Validate() []error {
	var errs []error
	if _, err := c.Reference(); err != nil {
		errs = append(errs, err)
	}
	if c.TopK <= 0 {
		errs = append(errs, ErrInvalidTopK)
	}
	if c.Workers <= 0 {
		errs = append(errs, ErrInvalidWorkers)
	}
	return errs
}

// Load reads the config file at path (skipped when empty) and applies the
// TRADEPULSE_* environment overrides on top. Load errors and validation
// errors are returned together.
func Load(path string) (*Config, []error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", path, err)}
		}
	}

	var loadErrs []error
	topK, err := getEnvIntOrDefault(EnvTopK, k.Int("top_k"), DefaultTopK)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	workers, err := getEnvIntOrDefault(EnvWorkers, k.Int("workers"), DefaultWorkers)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	c := &Config{
		DBPath:        getEnvOrKoanf(EnvDBPath, k, "db_path"),
		LogLevel:      getEnvOrDefault(EnvLogLevel, k.String("log_level"), DefaultLogLevel),
		ReferenceDate: getEnvOrDefault(EnvReferenceDate, k.String("reference_date"), DefaultReferenceDate),
		TopK:          topK,
		Workers:       workers,
		Sources: Sources{
			Exporters: k.String("sources.exporters"),
			Importers: k.String("sources.importers"),
			News:      k.String("sources.news"),
		},
	}

	return c, append(loadErrs, c.Validate()...)
}

// Save writes c to the config file in dirPath.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dirPath, FileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate loads the config from dirPath, writing the defaults first
// when the directory or file does not exist yet.
func ReadOrCreate(dirPath string) (*Config, []error) {
	if dirPath == "" {
		return nil, []error{errors.New("config directory required")}
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, []error{fmt.Errorf("failed to create dir %s: %w", dirPath, err)}
		}
	}

	path := filepath.Join(dirPath, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, Default()); err != nil {
			return nil, []error{fmt.Errorf("failed to create default config: %w", err)}
		}
	}

	return Load(path)
}

func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(envKey)); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// zero in the file falls back to the default
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}
