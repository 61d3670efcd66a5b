package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"go-exchange/internal/observability"

	"github.com/joho/godotenv"
)

type Config struct {
	Kafka    KafkaConfig
	Logging  LoggingConfig
	Mapper   MapperConfig
	Consumer ConsumerConfig
	Producer ProducerConfig
	Dedupe   DedupeConfig
	Metrics  MetricsConfig
	Context  ContextConfig
}

type KafkaConfig struct {
	Brokers []string
}

type LoggingConfig struct {
	Level string
	File  string
}

type MapperConfig struct {
	MaxLineLength       int
	StrictHeaderSection bool
}

type ConsumerConfig struct {
	Topic            string
	GroupID          string
	Workers          int
	RetryMax         int
	FetchMinBytes    int
	FetchMaxBytes    int
	RetryTopicPrefix string
	DLQTopic         string
	ReplyTopic       string
}

type ProducerConfig struct {
	Topic      string
	Acks       int
	Retries    int
	Idempotent bool
}

type DedupeConfig struct {
	RedisAddr string
	TTL       time.Duration
}

type MetricsConfig struct {
	Addr string
}

type ContextConfig struct {
	Name string
}

// Load reads .env when present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		observability.GetLogger().WithError(err).Warn("Failed to read .env file")
	}

	return &Config{
		Kafka: KafkaConfig{
			Brokers: parseBrokers(getEnv("KAFKA_BROKERS", "localhost:9092")),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Mapper: MapperConfig{
			MaxLineLength:       getEnvInt("MAPPER_MAX_LINE_LENGTH", 8192),
			StrictHeaderSection: getEnvBool("MAPPER_STRICT_HEADERS", false),
		},
		Consumer: ConsumerConfig{
			Topic:            getEnv("KAFKA_CONSUMER_TOPIC", "http-requests"),
			GroupID:          getEnv("KAFKA_CONSUMER_GROUP_ID", "exchange-processor-group"),
			Workers:          getEnvInt("KAFKA_CONSUMER_WORKERS", 5),
			RetryMax:         getEnvInt("KAFKA_CONSUMER_RETRY_MAX", 3),
			FetchMinBytes:    getEnvInt("KAFKA_CONSUMER_FETCH_MIN_BYTES", 1024),
			FetchMaxBytes:    getEnvInt("KAFKA_CONSUMER_FETCH_MAX_BYTES", 10485760),
			RetryTopicPrefix: getEnv("KAFKA_RETRY_TOPIC_PREFIX", "http-requests-retry"),
			DLQTopic:         getEnv("KAFKA_DLQ_TOPIC", "http-requests-dlq"),
			ReplyTopic:       getEnv("KAFKA_REPLY_TOPIC", ""),
		},
		Producer: ProducerConfig{
			Topic:      getEnv("KAFKA_PRODUCER_TOPIC", "http-requests"),
			Acks:       parseAcks(getEnv("KAFKA_PRODUCER_ACKS", "all")),
			Retries:    getEnvInt("KAFKA_PRODUCER_RETRIES", 3),
			Idempotent: getEnvBool("KAFKA_PRODUCER_IDEMPOTENT", true),
		},
		Dedupe: DedupeConfig{
			RedisAddr: getEnv("DEDUPE_REDIS_ADDR", ""),
			TTL:       getEnvDuration("DEDUPE_TTL", time.Hour),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
		Context: ContextConfig{
			Name: getEnv("CONTEXT_NAME", "go-exchange"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	result := make([]string, 0, len(parts))
	for _, broker := range parts {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseAcks(acks string) int {
	switch strings.ToLower(acks) {
	case "all", "-1":
		return -1
	case "0":
		return 0
	case "1":
		return 1
	default:
		return -1 // default to all
	}
}
