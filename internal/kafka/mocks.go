package kafka

import (
	"context"
	"fmt"
	"io"
	"sync"

	kafka "github.com/segmentio/kafka-go"
)

// MockPublisher is a mock implementation of Publisher for testing
type MockPublisher struct {
	mu                sync.RWMutex
	PublishedMessages []PublishedMessage
	PublishFunc       func(ctx context.Context, topic, key string, value []byte, headers map[string]string) error
	CloseFunc         func() error
	FailCount         int
	failureCounter    int
}

type PublishedMessage struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		PublishedMessages: make([]PublishedMessage, 0),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, value []byte, headers map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, key, value, headers)
	}

	if m.FailCount > 0 {
		m.failureCounter++
		if m.failureCounter <= m.FailCount {
			return fmt.Errorf("simulated publish failure %d", m.failureCounter)
		}
	}

	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[k] = v
	}
	m.PublishedMessages = append(m.PublishedMessages, PublishedMessage{
		Topic:   topic,
		Key:     key,
		Value:   append([]byte(nil), value...),
		Headers: copied,
	})
	return nil
}

func (m *MockPublisher) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockPublisher) GetPublishedMessages() []PublishedMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages := make([]PublishedMessage, len(m.PublishedMessages))
	copy(messages, m.PublishedMessages)
	return messages
}

func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishedMessages = make([]PublishedMessage, 0)
	m.failureCounter = 0
}

// MockReader feeds queued records to a Receiver and records commits. Once the
// queue is drained FetchMessage blocks until ctx is done, or returns io.EOF
// when the reader was closed.
type MockReader struct {
	mu        sync.Mutex
	records   chan kafka.Message
	committed []kafka.Message
	closed    chan struct{}
	closeOnce sync.Once
	CommitErr error
	CloseErr  error
}

func NewMockReader(records ...kafka.Message) *MockReader {
	r := &MockReader{
		records: make(chan kafka.Message, len(records)+16),
		closed:  make(chan struct{}),
	}
	for _, rec := range records {
		r.records <- rec
	}
	return r
}

func (r *MockReader) Push(record kafka.Message) {
	r.records <- record
}

func (r *MockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case rec := <-r.records:
		return rec, nil
	case <-r.closed:
		return kafka.Message{}, io.EOF
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *MockReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CommitErr != nil {
		return r.CommitErr
	}
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *MockReader) Close() error {
	r.closeOnce.Do(func() { close(r.closed) })
	return r.CloseErr
}

func (r *MockReader) Committed() []kafka.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]kafka.Message, len(r.committed))
	copy(out, r.committed)
	return out
}

// MockDedupeStore is a mock implementation of DedupeStore for testing
type MockDedupeStore struct {
	mu          sync.RWMutex
	ExistsFunc  func(messageID string) (bool, error)
	AddFunc     func(messageID string) error
	existingIDs map[string]bool
}

func NewMockDedupeStore() *MockDedupeStore {
	return &MockDedupeStore{
		existingIDs: make(map[string]bool),
	}
}

func (m *MockDedupeStore) Exists(_ context.Context, messageID string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(messageID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.existingIDs[messageID], nil
}

func (m *MockDedupeStore) Add(_ context.Context, messageID string) error {
	if m.AddFunc != nil {
		return m.AddFunc(messageID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.existingIDs[messageID] = true
	return nil
}

func (m *MockDedupeStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.existingIDs = make(map[string]bool)
}
