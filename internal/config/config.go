package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// JWTSecretEnv is the environment variable for the token signing secret.
	JWTSecretEnv = "JWT_SECRET"

	// JWTTTLMinutesEnv is the environment variable for the access token lifetime.
	JWTTTLMinutesEnv = "JWT_TTL_MINUTES"

	// RedisAddrEnv is the environment variable for the Redis address. Empty disables caching.
	RedisAddrEnv = "REDIS_ADDR"

	// RedisPasswordEnv is the environment variable for the Redis password.
	RedisPasswordEnv = "REDIS_PASSWORD"

	// RedisDBEnv is the environment variable for the Redis database index.
	RedisDBEnv = "REDIS_DB"

	// CacheTTLSecondsEnv is the environment variable for the response cache TTL.
	CacheTTLSecondsEnv = "CACHE_TTL_SECONDS"

	// ExchangeRateURLEnv is the environment variable for the USD-BRL quote endpoint.
	ExchangeRateURLEnv = "EXCHANGE_RATE_URL"

	// ExchangeRateDefaultEnv is the environment variable for the rate used when no quote is available.
	ExchangeRateDefaultEnv = "EXCHANGE_RATE_DEFAULT"

	// ExchangeRateRefreshSecondsEnv is the environment variable for how long a fetched quote stays fresh.
	ExchangeRateRefreshSecondsEnv = "EXCHANGE_RATE_REFRESH_SECONDS"

	// EventBrokerEnv selects the outbox publisher: sqs, kafka or none.
	EventBrokerEnv = "EVENT_BROKER"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"

	// KafkaBrokersEnv is the environment variable for the comma separated Kafka broker list.
	KafkaBrokersEnv = "KAFKA_BROKERS"

	// KafkaTopicEnv is the environment variable for the Kafka topic.
	KafkaTopicEnv = "KAFKA_TOPIC"

	// OutboxIntervalSecondsEnv is the environment variable for the outbox polling interval.
	OutboxIntervalSecondsEnv = "OUTBOX_INTERVAL_SECONDS"

	// SeedDemoDataEnv enables the demo user and products on startup.
	SeedDemoDataEnv = "SEED_DEMO_DATA"
)

// Event brokers.
const (
	BrokerNone  = "none"
	BrokerSQS   = "sqs"
	BrokerKafka = "kafka"
)

const (
	defaultJWTTTLMinutes              = 30
	defaultCacheTTLSeconds            = 300
	defaultExchangeRateURL            = "https://economia.awesomeapi.com.br/json/last/USD-BRL"
	defaultExchangeRate               = 5.0
	defaultExchangeRateRefreshSeconds = 300
	defaultOutboxIntervalSeconds      = 5
	defaultKafkaTopic                 = "inventory-events"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")

	// ErrInvalidConfig is returned when a configuration value is present but unusable.
	ErrInvalidConfig = errors.New("invalid config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	SeedDemoData  bool
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	Auth          Auth
	Redis         Redis
	ExchangeRate  ExchangeRate
	Outbox        Outbox
	AWS           AWSConfig
	Kafka         Kafka
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// DB represents database configuration settings.
type DB struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// Auth holds token signing settings.
type Auth struct {
	Secret   string
	TokenTTL time.Duration
}

// Redis holds the response cache connection. An empty Addr disables the cache.
type Redis struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ExchangeRate configures the USD-BRL rate provider.
type ExchangeRate struct {
	URL             string
	Default         float64
	RefreshInterval time.Duration
}

// Outbox configures event publishing.
type Outbox struct {
	Broker   string
	Interval time.Duration
}

// Kafka holds the Kafka publisher settings.
type Kafka struct {
	Brokers []string
	Topic   string
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	// Validate database configuration
	if err := allNonEmpty(map[string]string{
		DBHostEnv: c.Database.Host,
		DBUserEnv: c.Database.User,
		DBNameEnv: c.Database.Name,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	// Validate server ports
	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	// Validate port numbers
	if err := allNumbers(map[string]string{
		DBPortEnv:            c.Database.Port,
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	if err := allNonEmpty(map[string]string{
		JWTSecretEnv: c.Auth.Secret,
	}); err != nil {
		return fmt.Errorf("auth configuration incomplete: %w", err)
	}

	if c.ExchangeRate.Default <= 0 {
		return fmt.Errorf("%w for key: %s", ErrInvalidConfig, ExchangeRateDefaultEnv)
	}

	switch c.Outbox.Broker {
	case BrokerNone:
	case BrokerSQS:
		if err := allNonEmpty(map[string]string{
			SQSQueueURLEnv: c.AWS.SQSQueueURL,
		}); err != nil {
			return fmt.Errorf("AWS configuration incomplete: %w", err)
		}
	case BrokerKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka configuration incomplete: %w for key: %s", ErrMissingConfig, KafkaBrokersEnv)
		}
	default:
		return fmt.Errorf("%w for key %s: %q", ErrInvalidConfig, EventBrokerEnv, c.Outbox.Broker)
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if val, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	if val, err := strconv.ParseFloat(os.Getenv(name), 64); err == nil {
		return val
	}
	return defaultValue
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

func getEnvAsList(name string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(name), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode:    getEnvAsBool(DebugModeEnv, false),
		SeedDemoData: getEnvAsBool(SeedDemoDataEnv, false),
		Database: DB{
			Host:     os.Getenv(DBHostEnv),
			User:     os.Getenv(DBUserEnv),
			Password: os.Getenv(DBPassEnv),
			Name:     os.Getenv(DBNameEnv),
			Port:     os.Getenv(DBPortEnv),
		},
		HTTPServer: Server{
			Port: os.Getenv(HTTPServerPortEnv),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		Auth: Auth{
			Secret:   os.Getenv(JWTSecretEnv),
			TokenTTL: time.Duration(getEnvAsInt(JWTTTLMinutesEnv, defaultJWTTTLMinutes)) * time.Minute,
		},
		Redis: Redis{
			Addr:     os.Getenv(RedisAddrEnv),
			Password: os.Getenv(RedisPasswordEnv),
			DB:       getEnvAsInt(RedisDBEnv, 0),
			TTL:      time.Duration(getEnvAsInt(CacheTTLSecondsEnv, defaultCacheTTLSeconds)) * time.Second,
		},
		ExchangeRate: ExchangeRate{
			URL:             getEnv(ExchangeRateURLEnv, defaultExchangeRateURL),
			Default:         getEnvAsFloat(ExchangeRateDefaultEnv, defaultExchangeRate),
			RefreshInterval: time.Duration(getEnvAsInt(ExchangeRateRefreshSecondsEnv, defaultExchangeRateRefreshSeconds)) * time.Second,
		},
		Outbox: Outbox{
			Broker:   strings.ToLower(getEnv(EventBrokerEnv, BrokerNone)),
			Interval: time.Duration(getEnvAsInt(OutboxIntervalSecondsEnv, defaultOutboxIntervalSeconds)) * time.Second,
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
		Kafka: Kafka{
			Brokers: getEnvAsList(KafkaBrokersEnv),
			Topic:   getEnv(KafkaTopicEnv, defaultKafkaTopic),
		},
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
