package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load
const (
	EnvPort      = "GOLINKS_PORT"
	EnvBaseURL   = "GOLINKS_BASE_URL"
	EnvDBPath    = "GOLINKS_DB_PATH"
	EnvVerbose   = "GOLINKS_VERBOSE"
	EnvLogLevel  = "GOLINKS_LOG_LEVEL"
	EnvLogFormat = "GOLINKS_LOG_FORMAT"
	EnvLogOutput = "GOLINKS_LOG_OUTPUT"
	EnvQueueSize = "GOLINKS_CLICK_QUEUE_SIZE"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Clicks   ClicksConfig   `yaml:"clicks"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port    string `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Verbose bool   `yaml:"verbose"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Output  string `yaml:"output"`
}

// ClicksConfig holds click recording configuration
type ClicksConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// Sources lists where Load reads configuration from. Missing files are
// skipped.
type Sources struct {
	ConfigFile string
	EnvFiles   []string
}

// Default returns the configuration used when nothing overrides it,
// storing the database inside dataDir
func Default(dataDir string) *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "8080",
			BaseURL: "http://localhost:8080",
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dataDir, DatabaseFileName),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Clicks: ClicksConfig{
			QueueSize: 1024,
		},
	}
}

// DefaultSources returns the YAML file in dataDir and a .env file in the
// working directory
func DefaultSources(dataDir string) Sources {
	return Sources{
		ConfigFile: filepath.Join(dataDir, ConfigFileName),
		EnvFiles:   []string{".env"},
	}
}

// Load builds a configuration from defaults, then the YAML file, then the
// dotenv files, then the process environment. Later sources win.
func Load(dataDir string, src Sources) (*Config, error) {
	cfg := Default(dataDir)

	if src.ConfigFile != "" {
		if err := cfg.mergeFile(src.ConfigFile); err != nil {
			return nil, err
		}
	}

	dotenv, err := readEnvFiles(src.EnvFiles)
	if err != nil {
		return nil, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := cfg.mergeEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// mergeFile overlays the YAML file at path, if present
func (c *Config) mergeFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// readEnvFiles reads the dotenv files that exist without touching the
// process environment
func readEnvFiles(files []string) (map[string]string, error) {
	merged := make(map[string]string)

	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}

		values, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", file, err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}

	return merged, nil
}

// mergeEnv overlays GOLINKS_* variables
func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	strOverrides := map[string]*string{
		EnvPort:      &c.Server.Port,
		EnvBaseURL:   &c.Server.BaseURL,
		EnvDBPath:    &c.Database.Path,
		EnvLogLevel:  &c.Logging.Level,
		EnvLogFormat: &c.Logging.Format,
		EnvLogOutput: &c.Logging.Output,
	}
	for key, field := range strOverrides {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup(EnvVerbose); ok && v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvVerbose, v, err)
		}
		c.Logging.Verbose = verbose
	}

	if v, ok := lookup(EnvQueueSize); ok && v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvQueueSize, v, err)
		}
		c.Clicks.QueueSize = size
	}

	return nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("server port must be a number between 1 and 65535, got: %q", c.Server.Port)
	}

	if c.Server.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got: %q", c.Logging.Format)
	}

	if c.Clicks.QueueSize <= 0 {
		return fmt.Errorf("click queue size must be positive, got: %d", c.Clicks.QueueSize)
	}

	return nil
}

// LogLevel returns the effective log level; verbose forces debug
func (c *Config) LogLevel() string {
	if c.Logging.Verbose {
		return "debug"
	}
	return c.Logging.Level
}
