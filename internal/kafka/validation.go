package kafka

import "errors"

// ============================================================================
// Validation
// ============================================================================

func (c *ProducerConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("brokers cannot be empty")
	}
	if c.Retries < 0 {
		return errors.New("retries cannot be negative")
	}
	if c.WriteTimeout < 0 {
		return errors.New("writeTimeout cannot be negative")
	}
	return nil
}

func (c *SenderConfig) Validate() error {
	if c.Topic == "" {
		return errors.New("topic cannot be empty")
	}
	return nil
}

func (c *ReceiverConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("brokers cannot be empty")
	}
	if c.Topic == "" {
		return errors.New("topic cannot be empty")
	}
	if c.GroupID == "" {
		return errors.New("groupID cannot be empty")
	}
	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}
	if c.RetryMax < 0 {
		return errors.New("retryMax cannot be negative")
	}
	if c.RetryMax > 0 && c.RetryTopicPrefix == "" {
		return errors.New("retryTopicPrefix cannot be empty when retries are enabled")
	}
	if c.DLQTopic == "" {
		return errors.New("dlqTopic cannot be empty")
	}
	return nil
}
