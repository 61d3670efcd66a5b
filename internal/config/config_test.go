package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 8192, cfg.Mapper.MaxLineLength)
	assert.False(t, cfg.Mapper.StrictHeaderSection)
	assert.Equal(t, 5, cfg.Consumer.Workers)
	assert.Equal(t, "", cfg.Consumer.ReplyTopic)
	assert.Equal(t, -1, cfg.Producer.Acks)
	assert.Equal(t, time.Hour, cfg.Dedupe.TTL)
	assert.Equal(t, "go-exchange", cfg.Context.Name)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " broker-1:9092, ,broker-2:9092 ")
	t.Setenv("MAPPER_MAX_LINE_LENGTH", "1024")
	t.Setenv("MAPPER_STRICT_HEADERS", "true")
	t.Setenv("KAFKA_CONSUMER_WORKERS", "not-a-number")
	t.Setenv("KAFKA_REPLY_TOPIC", "http-replies")
	t.Setenv("KAFKA_PRODUCER_ACKS", "1")
	t.Setenv("DEDUPE_REDIS_ADDR", "localhost:6379")
	t.Setenv("DEDUPE_TTL", "15m")
	t.Setenv("CONTEXT_NAME", "edge")

	cfg := Load()

	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 1024, cfg.Mapper.MaxLineLength)
	assert.True(t, cfg.Mapper.StrictHeaderSection)
	assert.Equal(t, 5, cfg.Consumer.Workers)
	assert.Equal(t, "http-replies", cfg.Consumer.ReplyTopic)
	assert.Equal(t, 1, cfg.Producer.Acks)
	assert.Equal(t, "localhost:6379", cfg.Dedupe.RedisAddr)
	assert.Equal(t, 15*time.Minute, cfg.Dedupe.TTL)
	assert.Equal(t, "edge", cfg.Context.Name)
}

func TestParseAcks(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"all", -1},
		{"-1", -1},
		{"ALL", -1},
		{"0", 0},
		{"1", 1},
		{"two", -1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAcks(tt.in))
		})
	}
}
