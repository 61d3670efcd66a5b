package kafka

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go-exchange/internal/observability"

	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// HealthChecker checks the brokers and reconnects with exponential backoff
type HealthChecker struct {
	brokers     []string
	logger      *logrus.Logger
	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	check       func(ctx context.Context) error
	healthy     atomic.Bool
}

func NewHealthChecker(brokers []string, maxRetries int) *HealthChecker {
	c := &HealthChecker{
		brokers:     brokers,
		logger:      observability.GetLogger(),
		maxRetries:  maxRetries,
		baseBackoff: 1 * time.Second,
		maxBackoff:  30 * time.Second,
	}
	c.check = c.HealthCheck
	c.healthy.Store(true)
	return c
}

// HealthCheck dials the first broker and reads its partitions
func (c *HealthChecker) HealthCheck(ctx context.Context) error {
	if len(c.brokers) == 0 {
		return errors.New("no brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", c.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer conn.Close()

	if _, err = conn.ReadPartitions(); err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}
	return nil
}

// HealthCheckLoop runs health checks periodically with reconnection logic
func (c *HealthChecker) HealthCheckLoop(ctx context.Context, interval time.Duration, onReconnect func() error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Health check loop stopped")
			return
		case <-ticker.C:
			if err := c.check(ctx); err != nil {
				c.healthy.Store(false)
				c.logger.WithError(err).Warn("Health check failed, attempting reconnection")
				if err := c.reconnectWithBackoff(ctx, onReconnect); err != nil {
					c.logger.WithError(err).Error("Reconnection failed")
					continue
				}
			}
			c.healthy.Store(true)
		}
	}
}

func (c *HealthChecker) reconnectWithBackoff(ctx context.Context, onReconnect func() error) error {
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		backoff := c.backoff(attempt)

		c.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"backoff": backoff,
		}).Info("Attempting reconnection")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if err := c.check(ctx); err != nil {
			c.logger.WithError(err).Warn("Reconnection attempt failed")
			continue
		}

		if onReconnect != nil {
			if err := onReconnect(); err != nil {
				c.logger.WithError(err).Warn("Reconnect callback failed")
				continue
			}
		}

		c.logger.Info("Reconnection successful")
		return nil
	}

	return fmt.Errorf("failed to reconnect after %d attempts", c.maxRetries)
}

func (c *HealthChecker) backoff(attempt int) time.Duration {
	return time.Duration(math.Min(
		float64(c.baseBackoff)*math.Pow(2, float64(attempt)),
		float64(c.maxBackoff),
	))
}

// Healthy reports whether the last check, or the reconnection that followed
// it, reached the brokers.
func (c *HealthChecker) Healthy() bool {
	return c.healthy.Load()
}

func (c *HealthChecker) Brokers() []string {
	return c.brokers
}
