package kafka

// Record headers written and read by the transport.
const (
	HeaderMessageID     = "message-id"
	HeaderExchangeID    = "exchange-id"
	HeaderRetryCount    = "retry-count"
	HeaderFailureReason = "failure-reason"
	HeaderOriginalTopic = "original-topic"
	HeaderProcessedAt   = "processed-at"
)

// Exchange properties set by the Receiver.
const (
	PropertyTopic      = "kafka.topic"
	PropertyPartition  = "kafka.partition"
	PropertyOffset     = "kafka.offset"
	PropertyRetryCount = "kafka.retry-count"
)
