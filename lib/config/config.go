// Package config loads runtime settings from defaults, an optional YAML
// file, a .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type TMDB struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url" validate:"required,url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
}

type Storage struct {
	Driver string `yaml:"driver" validate:"oneof=file sqlite memory"`
	// Path is a directory for the file driver and a database file for sqlite.
	Path    string `yaml:"path" validate:"required_unless=Driver memory"`
	LockDir string `yaml:"lock_dir"`
	Key     string `yaml:"key" validate:"required"`
}

type Cache struct {
	RedisURL string `yaml:"redis_url"`
}

type Server struct {
	Port string `yaml:"port" validate:"required,numeric"`
}

type Log struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

type Config struct {
	TMDB    TMDB    `yaml:"tmdb"`
	Storage Storage `yaml:"storage"`
	Cache   Cache   `yaml:"cache"`
	Server  Server  `yaml:"server"`
	Log     Log     `yaml:"log"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		TMDB: TMDB{
			BaseURL:           "https://api.themoviedb.org/3",
			RequestsPerSecond: 40,
		},
		Storage: Storage{
			Driver: "file",
			Path:   "moviq-data",
			Key:    "moviq-watchlist",
		},
		Server: Server{Port: "8080"},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads path when it is not empty, then .env, then the process
// environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with a custom environment lookup and no .env file.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("TMDB_API_KEY", &cfg.TMDB.APIKey)
	str("TMDB_BASE_URL", &cfg.TMDB.BaseURL)
	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("DB_PATH", &cfg.Storage.Path)
	str("REDIS_URL", &cfg.Cache.RedisURL)
	str("PORT", &cfg.Server.Port)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FILE", &cfg.Log.File)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if v, ok := lookup("TMDB_RATE_LIMIT"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TMDB_RATE_LIMIT %q: %w", v, err)
		}
		cfg.TMDB.RequestsPerSecond = rps
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", describe(err))
	}
	return nil
}

// RequireCatalog checks the settings needed to reach the catalog.
func (c *Config) RequireCatalog() error {
	if err := validate.Var(c.TMDB.APIKey, "required"); err != nil {
		return errors.New("invalid configuration: TMDB_API_KEY is required")
	}
	return nil
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
