package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Observation sources.
const (
	SourceKafka       = "kafka"
	SourceOpenWeather = "openweather"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogFile         string
	ShutdownTimeout time.Duration

	// Alert store persistence.
	StoreBackend  string
	StoreKey      string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PostgresDSN   string

	// Retention.
	AlertMaxAge      time.Duration
	EvictionInterval time.Duration

	Source string

	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	KafkaSinkEnabled   bool
	BatchSize          int
	BatchFlushInterval time.Duration

	// OpenWeatherMap polling configuration.
	OpenWeatherAPIKey   string
	OpenWeatherBaseURL  string
	OpenWeatherTimeout  time.Duration
	OpenWeatherCacheTTL time.Duration
	PollInterval        time.Duration
	CitiesFile          string

	// MQTT notifications; disabled when MQTTBroker is empty.
	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	alertMaxAge, err := parsePositiveDuration("ALERT_MAX_AGE", "24h")
	if err != nil {
		return nil, err
	}
	evictionInterval, err := parsePositiveDuration("EVICTION_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	owTimeout, err := parsePositiveDuration("OPENWEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	owCacheTTL, err := parsePositiveDuration("OPENWEATHER_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}

	redisDB, err := parseNonNegativeInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	kafkaSinkEnabled := true
	if v := os.Getenv("KAFKA_SINK_ENABLED"); v != "" {
		kafkaSinkEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         os.Getenv("LOG_FILE"),
		ShutdownTimeout: shutdownTimeout,

		StoreBackend:  sharedcfg.EnvOrDefault("STORE_BACKEND", BackendMemory),
		StoreKey:      sharedcfg.EnvOrDefault("STORE_KEY", "climate_alerts"),
		SQLitePath:    sharedcfg.EnvOrDefault("SQLITE_PATH", "climacare.db"),
		RedisAddr:     sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),

		AlertMaxAge:      alertMaxAge,
		EvictionInterval: evictionInterval,

		Source: sharedcfg.EnvOrDefault("SOURCE", SourceKafka),

		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "weather-observations"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "climate-alerts"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "climacare-alerts"),
		KafkaSinkEnabled:   kafkaSinkEnabled,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		OpenWeatherAPIKey:   os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL:  sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
		OpenWeatherTimeout:  owTimeout,
		OpenWeatherCacheTTL: owCacheTTL,
		PollInterval:        pollInterval,
		CitiesFile:          os.Getenv("CITIES_FILE"),

		MQTTBroker:      os.Getenv("MQTT_BROKER"),
		MQTTClientID:    sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "climacare-alerts"),
		MQTTTopicPrefix: sharedcfg.EnvOrDefault("MQTT_TOPIC_PREFIX", "climacare/alerts"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendRedis:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORE_BACKEND is sqlite")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORE_BACKEND is postgres")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q", c.StoreBackend)
	}

	if c.StoreKey == "" {
		return errors.New("STORE_KEY is required")
	}

	switch c.Source {
	case SourceKafka:
		if c.KafkaSourceTopic == "" {
			return errors.New("KAFKA_SOURCE_TOPIC is required")
		}
	case SourceOpenWeather:
		if c.OpenWeatherAPIKey == "" {
			return errors.New("SOURCE is openweather but OPENWEATHER_API_KEY is not set")
		}
	default:
		return fmt.Errorf("invalid SOURCE %q", c.Source)
	}

	if (c.Source == SourceKafka || c.KafkaSinkEnabled) && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaSinkEnabled && c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}
	return nil
}

func parsePositiveDuration(name, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(name, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parseNonNegativeInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}
