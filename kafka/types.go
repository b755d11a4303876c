package kafka

import (
	"context"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Headers is a map of header key-value pairs. A nil value marks a header as
// absent: it is stripped from the outgoing message during enrichment, which
// lets an explicit nil remove a header inherited from an upstream message.
type Headers map[string][]byte

// Message represents a Kafka message. Outgoing envelopes are assembled
// internally; this type carries consumed messages being relayed through
// WithUpstream, and delivery-report details in logs and tests.
type Message struct {
	Key       []byte
	Value     []byte
	Headers   Headers
	Partition int32
	Offset    int64
	Timestamp time.Time
	Topic     string
}

// PartitionAny routes the message by key through the configured partitioner.
const PartitionAny int32 = -1

// HeaderGUID is the header key carrying the correlation identifier attached
// to every produced message.
const HeaderGUID = "guid"

// Acks configuration for producer acknowledgment
type Acks int

const (
	// AcksNone - No acknowledgment
	AcksNone Acks = 0
	// AcksLeader - Leader acknowledgment only
	AcksLeader Acks = 1
	// AcksAll - All replicas acknowledgment
	AcksAll Acks = -1
)

// Compression types for message compression
type Compression int

const (
	// CompressionNone - No compression
	CompressionNone Compression = 0
	// CompressionGZIP - GZIP compression
	CompressionGZIP Compression = 1
	// CompressionSnappy - Snappy compression
	CompressionSnappy Compression = 2
	// CompressionLZ4 - LZ4 compression
	CompressionLZ4 Compression = 3
	// CompressionZSTD - ZSTD compression
	CompressionZSTD Compression = 4
)

// LogLevel represents logging level
type LogLevel int

const (
	// LogLevelNone - No logging
	LogLevelNone LogLevel = 0
	// LogLevelError - Error level
	LogLevelError LogLevel = 1
	// LogLevelWarn - Warning level
	LogLevelWarn LogLevel = 2
	// LogLevelInfo - Info level
	LogLevelInfo LogLevel = 3
	// LogLevelDebug - Debug level
	LogLevelDebug LogLevel = 4
)

// HealthStatus represents health check status
type HealthStatus string

const (
	// HealthStatusUp indicates the service is healthy
	HealthStatusUp HealthStatus = "UP"
	// HealthStatusDown indicates the service is unhealthy
	HealthStatusDown HealthStatus = "DOWN"
)

// HealthResult represents health check result
type HealthResult struct {
	Status  HealthStatus           `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
	Error   error                  `json:"error,omitempty"`
}

// ProducerClient is the capability set the producer requires from the
// underlying broker client. *kafka.Producer from confluent-kafka-go satisfies
// it directly; tests and custom transports can substitute their own
// implementation via WithClient.
type ProducerClient interface {
	// Produce enqueues a message asynchronously. A nil delivery channel routes
	// the delivery report to the Events channel.
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error

	// Events is the channel on which delivery reports and client-level errors
	// are delivered.
	Events() chan kafka.Event

	// Flush waits up to timeoutMs for the outbound queue to drain and returns
	// the number of messages still outstanding. A timeout is not an error;
	// callers must check the returned count.
	Flush(timeoutMs int) int

	// Len returns the number of messages and requests awaiting delivery.
	Len() int

	// Transaction operations. Only valid on clients configured with a
	// transactional id.
	InitTransactions(ctx context.Context) error
	BeginTransaction() error
	CommitTransaction(ctx context.Context) error
	AbortTransaction(ctx context.Context) error

	// Close shuts the client down and releases its resources.
	Close()
}

// MetadataClient supplies per-topic partition counts. The default
// implementation wraps a confluent AdminClient; substitute via
// WithMetadataClient.
type MetadataClient interface {
	PartitionCount(topic string) (int32, error)
	Close()
}
