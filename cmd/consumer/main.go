package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go-exchange/internal/config"
	"go-exchange/internal/kafka"
	"go-exchange/internal/observability"
	"go-exchange/internal/service"
	"go-exchange/pkg/mapper"
	"go-exchange/pkg/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	serviceName := flag.String("service", "", "consumer group id (defaults to KAFKA_CONSUMER_GROUP_ID)")
	methods := flag.String("methods", "", "comma separated HTTP methods to accept (all when empty)")
	flag.Parse()

	cfg := config.Load()
	if *serviceName != "" {
		cfg.Consumer.GroupID = *serviceName
	}

	observability.InitLogger(cfg.Logging.Level)
	if cfg.Logging.File != "" {
		closer := observability.InitLoggerWithFile(cfg.Logging.Level, observability.FileConfig{
			Path:     cfg.Logging.File,
			Compress: true,
		})
		defer closer.Close()
	}
	log := observability.GetLogger()

	zlog, err := observability.NewZapLogger(cfg.Logging.Level)
	if err != nil {
		log.WithError(err).Fatal("Failed to build zap logger")
	}
	defer zlog.Sync()

	metrics, err := observability.NewPrometheusMetrics("exchange", prometheus.DefaultRegisterer)
	if err != nil {
		log.WithError(err).Fatal("Failed to register metrics")
	}

	dedupe, closeDedupe := newDedupeStore(cfg.Dedupe)
	defer closeDedupe.Close()

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

	receiver, err := kafka.NewReceiver(kafka.ReceiverConfig{
		Brokers:          cfg.Kafka.Brokers,
		Topic:            cfg.Consumer.Topic,
		GroupID:          cfg.Consumer.GroupID,
		Workers:          cfg.Consumer.Workers,
		RetryMax:         cfg.Consumer.RetryMax,
		FetchMinBytes:    cfg.Consumer.FetchMinBytes,
		FetchMaxBytes:    cfg.Consumer.FetchMaxBytes,
		RetryTopicPrefix: cfg.Consumer.RetryTopicPrefix,
		DLQTopic:         cfg.Consumer.DLQTopic,
		ReplyTopic:       cfg.Consumer.ReplyTopic,
		Mapper: mapper.NewHTTPRequestMapper(mapper.HTTPRequestMapperConfig{
			MaxLineLength:       cfg.Mapper.MaxLineLength,
			StrictHeaderSection: cfg.Mapper.StrictHeaderSection,
		}),
		Context:     models.NewContext(cfg.Context.Name),
		Metrics:     metrics,
		DedupeStore: dedupe,
		Logger:      zlog,
	}, producer)
	if err != nil {
		log.WithError(err).Fatal("Failed to create receiver")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	health := kafka.NewHealthChecker(cfg.Kafka.Brokers, 5)
	go health.HealthCheckLoop(ctx, 30*time.Second, receiver.Reconnected)

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			if !health.Healthy() {
				w.WriteHeader(http.StatusServiceUnavailable)
			}
		})
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server stopped")
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	processor := service.NewExchangeProcessor(splitMethods(*methods)...)

	log.WithField("group_id", cfg.Consumer.GroupID).
		WithField("topic", cfg.Consumer.Topic).
		Info("Starting exchange consumer")

	if err := receiver.Start(ctx, processor.Process); err != nil {
		log.WithError(err).Error("Receiver stopped with error")
	}

	if err := receiver.Close(); err != nil {
		log.WithError(err).Error("Failed to close receiver")
	}
	log.Info("Consumer stopped")
}

// newDedupeStore prefers Redis when an address is configured.
func newDedupeStore(cfg config.DedupeConfig) (kafka.DedupeStore, io.Closer) {
	if cfg.RedisAddr != "" {
		store := kafka.NewRedisDedupeStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), "", cfg.TTL)
		return store, store
	}
	store := kafka.NewInMemoryDedupeStore(cfg.TTL)
	return store, store
}

func splitMethods(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, m := range strings.Split(s, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
