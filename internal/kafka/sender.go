package kafka

import (
	"context"

	"go-exchange/internal/observability"
	"go-exchange/pkg/errs"
	"go-exchange/pkg/mapper"
	"go-exchange/pkg/models"
	"go-exchange/pkg/stream"

	"go.uber.org/zap"
)

type SenderConfig struct {
	Topic   string
	Mapper  mapper.Mapper
	Metrics observability.MetricsCollector
	Logger  *zap.Logger
}

// Sender encodes messages with a mapper and publishes them as Kafka records.
// Failures are reported as errs.SendMessage and never retried here.
type Sender struct {
	topic     string
	mapper    mapper.Mapper
	publisher Publisher
	metrics   observability.MetricsCollector
	logger    *zap.Logger
}

var _ models.MessageSender = (*Sender)(nil)

func NewSender(cfg SenderConfig, publisher Publisher) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newSender(cfg, publisher), nil
}

func newSender(cfg SenderConfig, publisher Publisher) *Sender {
	if cfg.Mapper == nil {
		cfg.Mapper = mapper.NewHTTPRequestMapper(mapper.HTTPRequestMapperConfig{})
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewInMemoryMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Sender{
		topic:     cfg.Topic,
		mapper:    cfg.Mapper,
		publisher: publisher,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// Send publishes msg to the configured topic.
func (s *Sender) Send(ctx context.Context, msg *models.Message) error {
	return s.SendTo(ctx, s.topic, msg, nil)
}

// SendTo publishes msg to topic with extra record headers. The message id is
// the record key and travels in the message-id header.
func (s *Sender) SendTo(ctx context.Context, topic string, msg *models.Message, headers map[string]string) error {
	if msg == nil {
		s.metrics.IncSendFailed()
		return errs.New(errs.SendMessage, "nil message")
	}

	out := stream.NewMemory()
	if err := s.mapper.Encode(out, msg); err != nil {
		s.metrics.IncSendFailed()
		return errs.Wrap(errs.SendMessage, err, "encode message %q", msg.ID())
	}

	record := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		record[k] = v
	}
	if msg.ID() != "" {
		record[HeaderMessageID] = msg.ID()
	}

	if err := s.publisher.Publish(ctx, topic, msg.ID(), out.Bytes(), record); err != nil {
		s.metrics.IncSendFailed()
		return errs.Wrap(errs.SendMessage, err, "publish message %q to %s", msg.ID(), topic)
	}

	s.metrics.IncSent()
	s.logger.Debug("Message sent",
		zap.String("topic", topic),
		zap.String("message_id", msg.ID()),
	)
	return nil
}
