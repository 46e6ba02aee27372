package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"fintrack/internal/services/currency"
)

// EnvPrefix prefixes every environment variable the tracker reads
const EnvPrefix = "FINTRACK_"

// Config holds application configuration
type Config struct {
	Debug     bool   `json:"debug"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // "text" or "json"

	// Storage
	DataDirectory string `json:"data_directory"`
	User          string `json:"user"`
	Password      string `json:"-"` // Unlocks encrypted storage without prompting

	// Assistant
	AIAPIKey  string `json:"-"`
	AIBaseURL string `json:"ai_base_url"`
	AIModel   string `json:"ai_model"`

	// Exchange rates
	RatesURL string `json:"rates_url"`

	// Cron spec for the watch command
	WatchSchedule string `json:"watch_schedule"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	// Get working directory
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		Debug:         false,
		LogLevel:      "info",
		LogFormat:     "text",
		DataDirectory: filepath.Join(wd, "data"),
		User:          "default",
		AIBaseURL:     "https://openrouter.ai/api/v1",
		AIModel:       "openai/gpt-4o-mini",
		RatesURL:      currency.DefaultRatesURL,
		WatchSchedule: "@hourly",
	}
}

// Load reads an optional .env file from the working directory, then
// applies FINTRACK_* environment overrides
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit .env path. A missing file is not an
// error; variables already in the environment win over the file.
func LoadFrom(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	cfg := DefaultConfig()

	// Override with environment variables
	if debug := getEnv("DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	if level := getEnv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if format := getEnv("LOG_FORMAT"); format != "" {
		cfg.LogFormat = strings.ToLower(format)
	}
	if dataDir := getEnv("DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}
	if user := getEnv("USER"); user != "" {
		cfg.User = user
	}
	cfg.Password = getEnv("PASSWORD")
	cfg.AIAPIKey = getEnv("AI_API_KEY")
	if baseURL := getEnv("AI_BASE_URL"); baseURL != "" {
		cfg.AIBaseURL = baseURL
	}
	if model := getEnv("AI_MODEL"); model != "" {
		cfg.AIModel = model
	}
	if ratesURL := getEnv("RATES_URL"); ratesURL != "" {
		cfg.RatesURL = ratesURL
	}
	if schedule := getEnv("WATCH_SCHEDULE"); schedule != "" {
		cfg.WatchSchedule = schedule
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure directories exist
	if err := cfg.ensureDirectories(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid %sLOG_LEVEL: %w", EnvPrefix, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid %sLOG_FORMAT %q (want text or json)", EnvPrefix, c.LogFormat)
	}
	if strings.ContainsAny(c.User, `/\:`) || strings.HasPrefix(c.User, ".") {
		return fmt.Errorf("invalid %sUSER %q", EnvPrefix, c.User)
	}
	return nil
}

// NewLogger builds the logger described by the config
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return log
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() error {
	if err := os.MkdirAll(c.DataDirectory, 0700); err != nil {
		return fmt.Errorf("could not create data directory %s: %w", c.DataDirectory, err)
	}
	return nil
}

func getEnv(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}
