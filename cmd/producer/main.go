package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"go-exchange/internal/config"
	"go-exchange/internal/kafka"
	"go-exchange/internal/observability"
	"go-exchange/pkg/mapper"
	"go-exchange/pkg/models"
	"go-exchange/pkg/stream"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "file holding the HTTP request (stdin when empty)")
	topic := flag.String("topic", "", "destination topic (defaults to KAFKA_PRODUCER_TOPIC)")
	flag.Parse()

	cfg := config.Load()
	observability.InitLogger(cfg.Logging.Level)
	log := observability.GetLogger()

	if *topic == "" {
		*topic = cfg.Producer.Topic
	}

	raw, err := readInput(*file)
	if err != nil {
		log.WithError(err).Fatal("Failed to read request")
	}

	codec := mapper.NewHTTPRequestMapper(mapper.HTTPRequestMapperConfig{
		MaxLineLength:       cfg.Mapper.MaxLineLength,
		StrictHeaderSection: cfg.Mapper.StrictHeaderSection,
	})

	msg := models.NewMessage()
	if err := codec.Decode(stream.NewMemoryBytes(raw), msg); err != nil {
		log.WithError(err).Fatal("Request is not a valid HTTP request")
	}
	msg.SetID(uuid.NewString())

	zlog, err := observability.NewZapLogger(cfg.Logging.Level)
	if err != nil {
		log.WithError(err).Fatal("Failed to build zap logger")
	}
	defer zlog.Sync()

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Kafka.Brokers,
		Acks:       cfg.Producer.Acks,
		Retries:    cfg.Producer.Retries,
		Idempotent: cfg.Producer.Idempotent,
		Logger:     zlog,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create producer")
	}
	defer producer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := publish(ctx, *topic, codec, msg, producer, zlog); err != nil {
		log.WithError(err).Fatal("Failed to send request")
	}

	req := mapper.AsHTTP(msg)
	log.WithField("message_id", msg.ID()).
		WithField("topic", *topic).
		WithField("request", req.Method()+" "+req.URI()).
		Info("Request sent to kafka")
}

// publish sends msg to topic. A non-nil error means nothing was delivered.
func publish(ctx context.Context, topic string, codec mapper.Mapper, msg *models.Message, publisher kafka.Publisher, logger *zap.Logger) error {
	sender, err := kafka.NewSender(kafka.SenderConfig{
		Topic:  topic,
		Mapper: codec,
		Logger: logger,
	}, publisher)
	if err != nil {
		return err
	}
	return sender.Send(ctx, msg)
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
