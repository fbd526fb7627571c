package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// Presence Configuration
	Presence PresenceConfig `json:"presence"`

	// Fanout Configuration
	Fanout FanoutConfig `json:"fanout"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	Environment  string `json:"environment"` // development, staging, production
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// PresenceConfig contains session expiry and reaper configuration.
// ReapInterval is the sweep cadence; InactivityThreshold flips idle users
// offline; RetentionWindow is how long an offline account survives before
// it is deleted together with its messages. The three are independent knobs.
type PresenceConfig struct {
	ReapInterval        time.Duration `json:"reap_interval"`
	InactivityThreshold time.Duration `json:"inactivity_threshold"`
	RetentionWindow     time.Duration `json:"retention_window"`
	SessionTTL          time.Duration `json:"session_ttl"`
}

// FanoutConfig contains realtime delivery configuration
type FanoutConfig struct {
	SubscriberBuffer int `json:"subscriber_buffer"` // Per-subscriber queue size
	PingInterval     int `json:"ping_interval"`     // Websocket keepalive, seconds
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // json, text
	OutputPath string `json:"output_path"` // stdout, stderr, or file path
}

// Load builds a Config from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvOrDefault("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvIntOrDefault("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 15),
			Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			Username:     getEnvOrDefault("DB_USER", "chatapp_user"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			DatabaseName: getEnvOrDefault("DB_NAME", "chatapp_db"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		Presence: PresenceConfig{
			ReapInterval:        getEnvDurationOrDefault("PRESENCE_REAP_INTERVAL", 5*time.Minute),
			InactivityThreshold: getEnvDurationOrDefault("PRESENCE_INACTIVITY_THRESHOLD", 15*time.Minute),
			RetentionWindow:     getEnvDurationOrDefault("PRESENCE_RETENTION_WINDOW", 5*time.Minute),
			SessionTTL:          getEnvDurationOrDefault("PRESENCE_SESSION_TTL", 24*time.Hour),
		},
		Fanout: FanoutConfig{
			SubscriberBuffer: getEnvIntOrDefault("FANOUT_SUBSCRIBER_BUFFER", 64),
			PingInterval:     getEnvIntOrDefault("FANOUT_PING_INTERVAL", 30),
		},
		Logging: LoggingConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			Format:     getEnvOrDefault("LOG_FORMAT", "text"),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
		},
	}
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
