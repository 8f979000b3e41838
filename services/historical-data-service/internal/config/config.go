package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server          ServerConfig
	Database        DatabaseConfig
	Redis           RedisConfig
	Kafka           KafkaConfig
	Auth            AuthConfig
	BacktestService ServiceConfig
	Limits          LimitsConfig
	Cache           CacheConfig
	Metrics         MetricsConfig
	Logging         LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// KafkaConfig holds Kafka specific configuration
type KafkaConfig struct {
	Brokers  string
	ClientID string
	Topics   map[string]string
}

// BrokerList splits the comma separated broker setting
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// RangeEventsTopic returns the topic for range adjustment events. Viper lower-cases
// map keys, so the lookup is done on the lower-cased name.
func (k KafkaConfig) RangeEventsTopic() string {
	if topic := k.Topics["rangeevents"]; topic != "" {
		return topic
	}
	return "market-data-range-events"
}

// AuthConfig holds token and service key settings
type AuthConfig struct {
	JWTSecret      string
	ServiceKeyHash string
}

// ServiceConfig holds configuration for external services
type ServiceConfig struct {
	URL        string
	Timeout    time.Duration
	ServiceKey string
	MaxRetries uint64
}

// LimitsConfig controls how timeframe keys are checked on incoming requests
type LimitsConfig struct {
	StrictTimeframes bool
}

// CacheConfig holds response cache settings
type CacheConfig struct {
	Enabled         bool
	DefaultDuration time.Duration
	PrefixKey       string
	ExcludedPaths   []string
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// LoggingConfig holds logger settings. Format is json or console.
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables.
// A missing config file is not an error; defaults and environment apply.
func LoadConfig(path string) (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Environment variables override, e.g. DATABASE_HOST
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads a dotenv file into the process environment if it exists
func loadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); err != nil {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8082")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "60s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "historical_data")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// Redis defaults
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Kafka defaults
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.clientID", "historical-data-service")
	v.SetDefault("kafka.topics.rangeEvents", "market-data-range-events")

	// Auth defaults
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.serviceKeyHash", "")

	// Backtest service defaults
	v.SetDefault("backtestService.url", "http://backtest-service:8084")
	v.SetDefault("backtestService.timeout", "120s")
	v.SetDefault("backtestService.serviceKey", "historical-service-key")
	v.SetDefault("backtestService.maxRetries", 3)

	// Limits defaults
	v.SetDefault("limits.strictTimeframes", false)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.defaultDuration", "5m")
	v.SetDefault("cache.prefixKey", "historical")
	v.SetDefault("cache.excludedPaths", []string{})

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
