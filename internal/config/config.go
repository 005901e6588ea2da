package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr" envconfig:"HTTP_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"HTTP_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"HTTP_WRITE_TIMEOUT"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" envconfig:"HTTP_MAX_BODY_BYTES"`
	// GinMode is passed to gin.SetMode: "release", "debug" or "test".
	GinMode string `yaml:"gin_mode" envconfig:"GIN_MODE"`
}

// AzureConfig holds the completion provider settings.
type AzureConfig struct {
	APIKey      string        `yaml:"api_key" envconfig:"AZURE_OPENAI_API_KEY"`
	Endpoint    string        `yaml:"endpoint" envconfig:"AZURE_OPENAI_ENDPOINT"`
	Deployment  string        `yaml:"deployment" envconfig:"AZURE_OPENAI_DEPLOYMENT"`
	APIVersion  string        `yaml:"api_version" envconfig:"AZURE_OPENAI_API_VERSION"`
	// Temperature is nil until set, so an explicit 0 is kept.
	Temperature *float32      `yaml:"temperature" envconfig:"AZURE_OPENAI_TEMPERATURE"`
	MaxTokens   int           `yaml:"max_tokens" envconfig:"AZURE_OPENAI_MAX_TOKENS"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"AZURE_OPENAI_TIMEOUT"`
}

// GupshupConfig holds the messaging provider settings.
type GupshupConfig struct {
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	SourceNumber string        `yaml:"source_number" envconfig:"SOURCE_NUMBER"`
	AppName      string        `yaml:"app_name" envconfig:"GUPSHUP_APP_NAME"`
	Channel      string        `yaml:"channel" envconfig:"GUPSHUP_CHANNEL"`
	Endpoint     string        `yaml:"endpoint" envconfig:"GUPSHUP_ENDPOINT"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"GUPSHUP_TIMEOUT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// DatabaseConfig is optional; an empty URL disables usage accounting.
type DatabaseConfig struct {
	URL string `yaml:"url" envconfig:"DATABASE_URL"`
}

// Config aggregates everything the relay needs at startup.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Azure    AzureConfig    `yaml:"azure"`
	Gupshup  GupshupConfig  `yaml:"gupshup"`
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
}

const (
	DefaultAddr            = "0.0.0.0:8000"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultTemperature     = 0.4
	DefaultMaxTokens       = 300
	DefaultAzureTimeout    = 30 * time.Second
	DefaultGupshupEndpoint = "https://api.gupshup.io/wa/api/v1/msg"
	DefaultGupshupTimeout  = 15 * time.Second
	DefaultAppName         = "approchatbot"
	DefaultChannel         = "whatsapp"
)

// Load reads an optional YAML file and then applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults for the rest.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}

	var missing []string
	require := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	require("AZURE_OPENAI_API_KEY", cfg.Azure.APIKey)
	require("AZURE_OPENAI_ENDPOINT", cfg.Azure.Endpoint)
	require("AZURE_OPENAI_DEPLOYMENT", cfg.Azure.Deployment)
	require("AZURE_OPENAI_API_VERSION", cfg.Azure.APIVersion)
	require("API_KEY", cfg.Gupshup.APIKey)
	require("SOURCE_NUMBER", cfg.Gupshup.SourceNumber)
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	// Must outlast a full completion round trip plus the dispatch call.
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	cfg.Server.GinMode = strings.ToLower(strings.TrimSpace(cfg.Server.GinMode))
	switch cfg.Server.GinMode {
	case "":
		cfg.Server.GinMode = "release"
	case "release", "debug", "test":
	default:
		return fmt.Errorf("invalid server.gin_mode %q; allowed: release, debug, test", cfg.Server.GinMode)
	}

	if cfg.Azure.Temperature == nil {
		t := float32(DefaultTemperature)
		cfg.Azure.Temperature = &t
	}
	if t := *cfg.Azure.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("azure.temperature must be within [0, 2], got %v", t)
	}
	if cfg.Azure.MaxTokens < 0 {
		return fmt.Errorf("azure.max_tokens must be >= 0")
	}
	if cfg.Azure.MaxTokens == 0 {
		cfg.Azure.MaxTokens = DefaultMaxTokens
	}
	if cfg.Azure.Timeout <= 0 {
		cfg.Azure.Timeout = DefaultAzureTimeout
	}
	cfg.Azure.Endpoint = strings.TrimRight(cfg.Azure.Endpoint, "/")

	if cfg.Gupshup.AppName == "" {
		cfg.Gupshup.AppName = DefaultAppName
	}
	if cfg.Gupshup.Channel == "" {
		cfg.Gupshup.Channel = DefaultChannel
	}
	if cfg.Gupshup.Endpoint == "" {
		cfg.Gupshup.Endpoint = DefaultGupshupEndpoint
	}
	if cfg.Gupshup.Timeout <= 0 {
		cfg.Gupshup.Timeout = DefaultGupshupTimeout
	}

	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	switch cfg.Logging.Format {
	case "":
		cfg.Logging.Format = "json"
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging.format %q; allowed: json, text", cfg.Logging.Format)
	}
	return nil
}
