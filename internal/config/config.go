package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"promolift/internal/errors"

	"github.com/sirupsen/logrus"
)

// Config represents the complete application configuration
type Config struct {
	Data    DataConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// DataConfig describes where the promotion dataset lives and how groups are labelled
type DataConfig struct {
	Path        string
	Sheet       string
	GroupALabel string
	GroupBLabel string
	Watch       bool // reload the dataset when the file changes (server only)
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string // CORS origins for the JSON API; empty disables CORS
}

// LoggingConfig holds logrus settings
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:    *loadDataConfig(),
		Server:  *loadServerConfig(),
		Logging: *loadLoggingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Path:        getEnvOrDefault("DATASET_PATH", ""),
		Sheet:       getEnvOrDefault("DATASET_SHEET", "Sheet1"),
		GroupALabel: getEnvOrDefault("GROUP_A_LABEL", "1"),
		GroupBLabel: getEnvOrDefault("GROUP_B_LABEL", "2"),
		Watch:       getEnvBool("DATASET_WATCH", true),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "release"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

// LoadWithOverrides reads the environment, replaces data settings with any
// non-empty override, then validates
func LoadWithOverrides(overrides DataConfig) (*Config, error) {
	config := &Config{
		Data:    *loadDataConfig(),
		Server:  *loadServerConfig(),
		Logging: *loadLoggingConfig(),
	}
	if overrides.Path != "" {
		config.Data.Path = overrides.Path
	}
	if overrides.Sheet != "" {
		config.Data.Sheet = overrides.Sheet
	}
	if overrides.GroupALabel != "" {
		config.Data.GroupALabel = overrides.GroupALabel
	}
	if overrides.GroupBLabel != "" {
		config.Data.GroupBLabel = overrides.GroupBLabel
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks a config assembled outside Load (e.g. with CLI overrides)
func (c *Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(config *Config) error {
	if config.Data.Path == "" {
		return errors.ConfigInvalid("DATASET_PATH is required")
	}
	switch strings.ToLower(filepath.Ext(config.Data.Path)) {
	case ".csv", ".xlsx":
	default:
		return errors.ConfigInvalid("DATASET_PATH must point to a .csv or .xlsx file")
	}
	if config.Data.GroupALabel == "" || config.Data.GroupBLabel == "" {
		return errors.ConfigInvalid("group labels must not be empty")
	}
	if config.Data.GroupALabel == config.Data.GroupBLabel {
		return errors.ConfigInvalid("GROUP_A_LABEL and GROUP_B_LABEL must differ")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric: " + config.Server.Port)
	}
	if _, err := logrus.ParseLevel(config.Logging.Level); err != nil {
		return errors.ConfigInvalid("LOG_LEVEL is not a valid level: " + config.Logging.Level)
	}
	return nil
}

// ConfigureLogging applies the logging settings to the standard logrus logger
func (c *Config) ConfigureLogging() {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if strings.EqualFold(c.Logging.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		logrus.WithField("component", "Config").Warnf("%s=%q is not a boolean, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

// getEnvList splits a comma-separated variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
