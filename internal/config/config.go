package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the relay server configuration
type Config struct {
	Server   ServerConfig `yaml:"server"`
	TLS      TLSConfig    `yaml:"tls"`
	DBPath   string       `yaml:"db_path"`
	Relay    RelayConfig  `yaml:"relay"`
	LogLevel string       `yaml:"log_level"`
}

// ServerConfig contains listener and static file settings
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

// TLSConfig contains HTTPS settings
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	MinVersion string `yaml:"min_version"`
}

// RelayConfig contains websocket relay limits
type RelayConfig struct {
	MaxMessageMB int     `yaml:"max_message_mb"` // largest frame, sized for whole PDFs
	Rate         float64 `yaml:"rate"`           // frames per second per connection, 0 disables
	Burst        int     `yaml:"burst"`
}

// MaxMessageBytes is MaxMessageMB in bytes
func (r RelayConfig) MaxMessageBytes() int64 {
	return int64(r.MaxMessageMB) * 1024 * 1024
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		TLS: TLSConfig{
			MinVersion: "1.2",
		},
		DBPath: "./data/pdfpw.db",
		Relay: RelayConfig{
			MaxMessageMB: 64,
			Rate:         50,
			Burst:        100,
		},
		LogLevel: "info",
	}
}

// LoadConfig builds the configuration from defaults, the YAML file named by
// CONFIG_FILE and the environment, in increasing precedence. A .env file in
// the working directory is loaded first when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("HOST", &c.Server.Host)
	setString("PORT", &c.Server.Port)
	setString("STATIC_DIR", &c.Server.StaticDir)
	setString("TLS_CERT_FILE", &c.TLS.CertFile)
	setString("TLS_KEY_FILE", &c.TLS.KeyFile)
	setString("TLS_MIN_VERSION", &c.TLS.MinVersion)
	setString("DB_PATH", &c.DBPath)
	setString("LOG_LEVEL", &c.LogLevel)

	if v := os.Getenv("TLS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TLS_ENABLED: %w", err)
		}
		c.TLS.Enabled = enabled
	}
	if v := os.Getenv("MAX_MESSAGE_MB"); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_MESSAGE_MB: %w", err)
		}
		c.Relay.MaxMessageMB = mb
	}
	if v := os.Getenv("RELAY_RATE"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RELAY_RATE: %w", err)
		}
		c.Relay.Rate = r
	}
	return nil
}

// Validate checks values that would otherwise fail at startup
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return fmt.Errorf("tls enabled but cert_file or key_file missing")
	}
	if c.Relay.MaxMessageMB < 1 {
		return fmt.Errorf("max_message_mb must be at least 1")
	}
	if c.Relay.Rate < 0 {
		return fmt.Errorf("relay rate must not be negative")
	}
	return nil
}

// ParseLogLevel maps a LOG_LEVEL value to a logrus level, falling back to
// fallback for empty or unknown values.
func ParseLogLevel(value string, fallback logrus.Level) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return fallback
	}
}

// NewLogger creates the process logger
func NewLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}
