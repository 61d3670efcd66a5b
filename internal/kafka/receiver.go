package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"go-exchange/internal/observability"
	"go-exchange/pkg/mapper"
	"go-exchange/pkg/models"
	"go-exchange/pkg/stream"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ExchangeHandler processes one received exchange. A returned error marks
// the exchange as failed.
type ExchangeHandler func(ctx context.Context, ex *models.Exchange) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Receiver consumes encoded requests, decodes them into exchanges and runs
// them through a handler on a worker pool. Failed exchanges go to a retry
// topic and finally to the DLQ; successful ones may produce a reply.
type Receiver struct {
	reader           messageReader
	publisher        Publisher
	sender           *Sender
	mapper           mapper.Mapper
	context          models.Context
	logger           *zap.Logger
	metrics          observability.MetricsCollector
	dedupeStore      DedupeStore
	routeID          string
	workers          int
	retryMax         int
	retryTopicPrefix string
	dlqTopic         string
	replyTopic       string
	wg               sync.WaitGroup
}

type ReceiverConfig struct {
	Brokers          []string
	Topic            string
	GroupID          string
	Workers          int
	RetryMax         int
	FetchMinBytes    int
	FetchMaxBytes    int
	RetryTopicPrefix string
	DLQTopic         string
	ReplyTopic       string
	Mapper           mapper.Mapper
	Context          models.Context
	Metrics          observability.MetricsCollector
	DedupeStore      DedupeStore
	Logger           *zap.Logger
}

func NewReceiver(cfg ReceiverConfig, publisher Publisher) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.FetchMinBytes,
		MaxBytes:       cfg.FetchMaxBytes,
		CommitInterval: 0, // Manual commits
		StartOffset:    kafka.LastOffset,
	})

	return newReceiver(cfg, reader, publisher), nil
}

func newReceiver(cfg ReceiverConfig, reader messageReader, publisher Publisher) *Receiver {
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewInMemoryMetrics()
	}
	if cfg.DedupeStore == nil {
		cfg.DedupeStore = NewInMemoryDedupeStore(1 * time.Hour)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 5
	}
	if cfg.Mapper == nil {
		cfg.Mapper = mapper.NewHTTPRequestMapper(mapper.HTTPRequestMapperConfig{})
	}
	if cfg.Context == nil {
		cfg.Context = models.NewContext(cfg.GroupID)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Receiver{
		reader:    reader,
		publisher: publisher,
		sender: newSender(SenderConfig{
			Mapper:  cfg.Mapper,
			Metrics: cfg.Metrics,
			Logger:  cfg.Logger,
		}, publisher),
		mapper:           cfg.Mapper,
		context:          cfg.Context,
		logger:           cfg.Logger,
		metrics:          cfg.Metrics,
		dedupeStore:      cfg.DedupeStore,
		routeID:          cfg.Topic + "/" + cfg.GroupID,
		workers:          cfg.Workers,
		retryMax:         cfg.RetryMax,
		retryTopicPrefix: cfg.RetryTopicPrefix,
		dlqTopic:         cfg.DLQTopic,
		replyTopic:       cfg.ReplyTopic,
	}
}

// Start consumes until ctx is cancelled or the reader is closed.
func (r *Receiver) Start(ctx context.Context, handler ExchangeHandler) error {
	r.logger.Info("Starting receiver",
		zap.String("route_id", r.routeID),
		zap.Int("workers", r.workers),
	)

	records := make(chan kafka.Message, r.workers*2)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx, i, records, handler)
	}

	r.wg.Add(1)
	go r.fetcher(ctx, records)

	r.wg.Wait()
	return nil
}

// fetcher reads records from Kafka and hands them to the worker pool
func (r *Receiver) fetcher(ctx context.Context, records chan<- kafka.Message) {
	defer r.wg.Done()
	defer close(records)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Fetcher stopping due to context cancellation")
			return
		default:
		}

		record, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			r.logger.Error("Failed to fetch message", zap.Error(err))
			continue
		}

		r.metrics.IncReceived()

		select {
		case records <- record:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Receiver) worker(ctx context.Context, id int, records <-chan kafka.Message, handler ExchangeHandler) {
	defer r.wg.Done()
	r.logger.Debug("Worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			return
		case record, ok := <-records:
			if !ok {
				return
			}
			r.processRecord(ctx, record, handler, id)
		}
	}
}

// processRecord runs one record through decode, handler and routing. The
// record is committed whatever the outcome.
func (r *Receiver) processRecord(ctx context.Context, record kafka.Message, handler ExchangeHandler, workerID int) {
	defer r.commit(record)

	headers := fromRecordHeaders(record.Headers)
	msgID := headers[HeaderMessageID]

	logger := r.logger.With(
		zap.String("topic", record.Topic),
		zap.Int("partition", record.Partition),
		zap.Int64("offset", record.Offset),
		zap.String("message_id", msgID),
		zap.Int("worker_id", workerID),
	)

	if msgID != "" {
		seen, err := r.dedupeStore.Exists(ctx, msgID)
		if err != nil {
			logger.Warn("Dedupe lookup failed, processing anyway", zap.Error(err))
		}
		if seen {
			r.metrics.IncDuplicate()
			logger.Info("Duplicate message detected, skipping")
			return
		}
	}

	in := models.NewMessage()
	if err := r.mapper.Decode(stream.NewMemoryBytes(record.Value), in); err != nil {
		r.metrics.IncDecodeFailed()
		logger.Warn("Failed to decode message", zap.Error(err))
		r.forwardUndecodable(ctx, record, headers, err)
		return
	}
	r.metrics.IncDecoded()

	if msgID == "" {
		msgID = r.context.NewID()
	}
	in.SetID(msgID)

	ex, err := models.NewExchange(r.context, in)
	if err != nil {
		logger.Error("Failed to create exchange", zap.Error(err))
		return
	}
	retryCount := retryCountOf(headers)
	ex.SetFromRouteID(r.routeID)
	ex.SetProperty(PropertyTopic, record.Topic)
	ex.SetProperty(PropertyPartition, record.Partition)
	ex.SetProperty(PropertyOffset, record.Offset)
	ex.SetProperty(PropertyRetryCount, retryCount)

	if err := handler(ctx, ex); err != nil {
		ex.SetException(err)
	}

	if ex.IsFailed() {
		r.metrics.IncFailed()
		reason := failureReason(ex)
		logger.Error("Exchange failed", zap.String("exchange_id", ex.ID()), zap.String("reason", reason))

		if retryCount < r.retryMax {
			r.sendToRetry(ctx, ex.Copy(), retryCount+1, reason)
		} else {
			r.sendToDLQ(ctx, ex.Copy(), retryCount, reason)
		}
		return
	}

	r.metrics.IncProcessed()
	logger.Debug("Exchange processed", zap.String("exchange_id", ex.ID()))

	if err := r.dedupeStore.Add(ctx, msgID); err != nil {
		logger.Warn("Failed to record message id", zap.Error(err))
	}

	if ex.HasOut() && r.replyTopic != "" {
		r.sendReply(ctx, ex)
	}
}

func (r *Receiver) commit(record kafka.Message) {
	if err := r.reader.CommitMessages(context.Background(), record); err != nil {
		r.logger.Error("Failed to commit message", zap.Error(err))
	}
}

// sendToRetry re-encodes the exchange's in message onto the next retry topic.
func (r *Receiver) sendToRetry(ctx context.Context, ex *models.Exchange, retryCount int, reason string) {
	r.metrics.IncRetried()

	topic := fmt.Sprintf("%s-%d", r.retryTopicPrefix, retryCount)
	headers := map[string]string{
		HeaderRetryCount:    strconv.Itoa(retryCount),
		HeaderFailureReason: reason,
		HeaderOriginalTopic: originalTopic(ex),
	}

	if err := r.sender.SendTo(ctx, topic, ex.In(), headers); err != nil {
		r.logger.Error("Failed to send message to retry topic",
			zap.String("topic", topic),
			zap.Int("retry_count", retryCount),
			zap.Error(err),
		)
		return
	}
	r.logger.Info("Message sent to retry topic",
		zap.String("topic", topic),
		zap.Int("retry_count", retryCount),
	)
}

func (r *Receiver) sendToDLQ(ctx context.Context, ex *models.Exchange, retryCount int, reason string) {
	r.metrics.IncSentToDLQ()

	headers := map[string]string{
		HeaderRetryCount:    strconv.Itoa(retryCount),
		HeaderFailureReason: reason,
		HeaderOriginalTopic: originalTopic(ex),
		HeaderProcessedAt:   time.Now().Format(time.RFC3339),
	}

	if err := r.sender.SendTo(ctx, r.dlqTopic, ex.In(), headers); err != nil {
		r.logger.Error("Failed to send message to DLQ",
			zap.String("topic", r.dlqTopic),
			zap.Error(err),
		)
		return
	}
	r.logger.Info("Message sent to DLQ", zap.String("topic", r.dlqTopic))
}

// forwardUndecodable moves a record that is not a valid request to the DLQ
// untouched.
func (r *Receiver) forwardUndecodable(ctx context.Context, record kafka.Message, headers map[string]string, decodeErr error) {
	r.metrics.IncSentToDLQ()

	headers[HeaderFailureReason] = decodeErr.Error()
	headers[HeaderOriginalTopic] = record.Topic
	headers[HeaderProcessedAt] = time.Now().Format(time.RFC3339)

	if err := r.publisher.Publish(ctx, r.dlqTopic, string(record.Key), record.Value, headers); err != nil {
		r.logger.Error("Failed to send undecodable message to DLQ",
			zap.String("topic", r.dlqTopic),
			zap.Error(err),
		)
	}
}

func (r *Receiver) sendReply(ctx context.Context, ex *models.Exchange) {
	headers := map[string]string{HeaderExchangeID: ex.ID()}
	if err := r.sender.SendTo(ctx, r.replyTopic, ex.Out(), headers); err != nil {
		r.logger.Error("Failed to send reply",
			zap.String("topic", r.replyTopic),
			zap.String("exchange_id", ex.ID()),
			zap.Error(err),
		)
	}
}

// Reconnected is the health checker callback for brokers that came back.
func (r *Receiver) Reconnected() error {
	r.metrics.IncReconnected()
	r.logger.Info("Brokers reachable again", zap.String("route_id", r.routeID))
	return nil
}

// Close shuts down the reader and the publisher.
func (r *Receiver) Close() error {
	r.logger.Info("Closing receiver")
	return multierr.Combine(
		wrapClose("reader", r.reader.Close()),
		wrapClose("publisher", r.publisher.Close()),
	)
}

func wrapClose(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to close %s: %w", what, err)
}

func retryCountOf(headers map[string]string) int {
	if countStr, ok := headers[HeaderRetryCount]; ok {
		if count, err := strconv.Atoi(countStr); err == nil {
			return count
		}
	}
	return 0
}

func failureReason(ex *models.Exchange) string {
	switch {
	case ex.Exception() != nil:
		return ex.Exception().Error()
	case ex.In().IsFault():
		return "in message marked as fault"
	default:
		return "out message marked as fault"
	}
}

func originalTopic(ex *models.Exchange) string {
	topic, _ := ex.Property(PropertyTopic, "").(string)
	return topic
}
