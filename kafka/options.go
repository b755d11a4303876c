package kafka

import (
	"time"
)

// ProducerConfig holds all producer configuration
type ProducerConfig struct {
	// Connection
	Brokers           []string
	ClientID          string
	ConnectionTimeout time.Duration
	RequestTimeout    time.Duration

	// SSL/SASL
	SSL  bool
	SASL *SASLConfig

	// Producer settings
	Acks        Acks
	Compression Compression
	Idempotent  bool

	// Transactions
	TransactionalID    string
	TransactionTimeout time.Duration

	// Schema registry
	SchemaRegistryURL      string
	SchemaRegistryUsername string
	SchemaRegistryPassword string

	// Routing
	Partitioner     Partitioner
	MetadataTimeout time.Duration

	// Logging
	LogLevel LogLevel
	Logger   Logger

	// Tracing
	Tracing *TracingConfig

	// Metrics
	Metrics Metrics

	// Injected collaborators, mainly for tests and custom transports
	Client         ProducerClient
	MetadataClient MetadataClient

	// Topics registered at construction
	serializers map[string]Serializer
	avroSchemas map[string]string
}

// SASLConfig holds SASL authentication configuration
type SASLConfig struct {
	Mechanism string
	Username  string
	Password  string
}

// TracingConfig holds OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled       bool
	TracerName    string
	TracerVersion string
}

// Option is a function that configures the producer
type Option func(*ProducerConfig)

// Default values
var (
	DefaultConnectionTimeout  = 10 * time.Second
	DefaultRequestTimeout     = 30 * time.Second
	DefaultTransactionTimeout = 1 * time.Minute
	DefaultConfirmAttempts    = 3
	DefaultConfirmTimeout     = 20 * time.Second
	DefaultPushInterval       = 30 * time.Second
)

// ==================== Producer Options ====================

// WithBrokers sets the Kafka broker addresses
func WithBrokers(brokers ...string) Option {
	return func(c *ProducerConfig) {
		c.Brokers = brokers
	}
}

// WithClientID sets the client ID
func WithClientID(clientID string) Option {
	return func(c *ProducerConfig) {
		c.ClientID = clientID
	}
}

// WithConnectionTimeout sets the connection timeout
func WithConnectionTimeout(timeout time.Duration) Option {
	return func(c *ProducerConfig) {
		c.ConnectionTimeout = timeout
	}
}

// WithRequestTimeout sets the request timeout
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *ProducerConfig) {
		c.RequestTimeout = timeout
	}
}

// WithSSL enables SSL
func WithSSL(enabled bool) Option {
	return func(c *ProducerConfig) {
		c.SSL = enabled
	}
}

// WithSASL sets SASL authentication
func WithSASL(sasl *SASLConfig) Option {
	return func(c *ProducerConfig) {
		c.SASL = sasl
	}
}

// WithAcks sets the acknowledgment level
func WithAcks(acks Acks) Option {
	return func(c *ProducerConfig) {
		c.Acks = acks
	}
}

// WithCompression sets the compression type
func WithCompression(compression Compression) Option {
	return func(c *ProducerConfig) {
		c.Compression = compression
	}
}

// WithIdempotent toggles the idempotent producer. Enabled by default.
func WithIdempotent(enabled bool) Option {
	return func(c *ProducerConfig) {
		c.Idempotent = enabled
	}
}

// WithTransactionTimeout sets the broker-side transaction timeout
func WithTransactionTimeout(timeout time.Duration) Option {
	return func(c *ProducerConfig) {
		c.TransactionTimeout = timeout
	}
}

// WithSchemaRegistry sets the schema registry endpoint, required when topics
// are registered with Avro schemas
func WithSchemaRegistry(url string) Option {
	return func(c *ProducerConfig) {
		c.SchemaRegistryURL = url
	}
}

// WithSchemaRegistryAuth sets basic-auth credentials for the schema registry
func WithSchemaRegistryAuth(username, password string) Option {
	return func(c *ProducerConfig) {
		c.SchemaRegistryUsername = username
		c.SchemaRegistryPassword = password
	}
}

// WithTopicSerializer registers a topic with the given serializer at
// construction time. Later registrations for the same topic win.
func WithTopicSerializer(topic string, s Serializer) Option {
	return func(c *ProducerConfig) {
		c.serializers[topic] = s
	}
}

// WithTopicSchema registers a topic with an Avro schema at construction time.
// The serializer is built against the configured schema registry.
func WithTopicSchema(topic, schema string) Option {
	return func(c *ProducerConfig) {
		c.avroSchemas[topic] = schema
	}
}

// WithPartitioner replaces the default key partitioner. The partitioner must
// match whatever hash the consuming side of the system routes by.
func WithPartitioner(partitioner Partitioner) Option {
	return func(c *ProducerConfig) {
		c.Partitioner = partitioner
	}
}

// WithMetadataTimeout bounds partition-count lookups
func WithMetadataTimeout(timeout time.Duration) Option {
	return func(c *ProducerConfig) {
		c.MetadataTimeout = timeout
	}
}

// WithLogLevel sets the log level
func WithLogLevel(level LogLevel) Option {
	return func(c *ProducerConfig) {
		c.LogLevel = level
	}
}

// WithLogger sets a custom logger
func WithLogger(logger Logger) Option {
	return func(c *ProducerConfig) {
		c.Logger = logger
	}
}

// WithTracing sets tracing configuration
func WithTracing(tracing *TracingConfig) Option {
	return func(c *ProducerConfig) {
		c.Tracing = tracing
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(metrics Metrics) Option {
	return func(c *ProducerConfig) {
		c.Metrics = metrics
	}
}

// WithClient injects the underlying broker client, bypassing client
// construction. Brokers remain required unless a metadata client is also
// injected.
func WithClient(client ProducerClient) Option {
	return func(c *ProducerConfig) {
		c.Client = client
	}
}

// WithMetadataClient injects the partition-count source, bypassing admin
// client construction.
func WithMetadataClient(metadata MetadataClient) Option {
	return func(c *ProducerConfig) {
		c.MetadataClient = metadata
	}
}

// ==================== Default Configs ====================

// newDefaultProducerConfig creates a new producer config with default values
func newDefaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		ConnectionTimeout:  DefaultConnectionTimeout,
		RequestTimeout:     DefaultRequestTimeout,
		Acks:               AcksAll,
		Compression:        CompressionNone,
		Idempotent:         true,
		TransactionTimeout: DefaultTransactionTimeout,
		MetadataTimeout:    DefaultMetadataTimeout,
		LogLevel:           LogLevelInfo,
		serializers:        make(map[string]Serializer),
		avroSchemas:        make(map[string]string),
	}
}
