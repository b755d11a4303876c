package kafka

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Verify the librdkafka producer satisfies the client capability surface
var _ ProducerClient = (*kafka.Producer)(nil)

// Producer publishes messages to Kafka with per-topic serialization, guid
// header stamping, key-hash partition routing, and flush-based delivery
// confirmation.
//
// A Producer is intended to be driven from a single goroutine. Delivery
// reports are drained inline on every produce and flush cycle instead of on
// a background goroutine, so produce order and report handling stay on the
// caller's goroutine.
type Producer struct {
	client   ProducerClient
	metadata MetadataClient
	config   *ProducerConfig
	tracer   *TracingService
	logger   Logger
	metrics  Metrics

	partitioner Partitioner
	serializers map[string]Serializer
	partitions  map[string]int32

	closed int32 // atomic: 0=open, 1=closed
}

// NewProducer creates a new producer. Topics registered through
// WithTopicSerializer or WithTopicSchema have their partition counts fetched
// here, so construction fails fast on unknown topics.
func NewProducer(opts ...Option) (*Producer, error) {
	config := newDefaultProducerConfig()
	for _, opt := range opts {
		opt(config)
	}

	if len(config.Brokers) == 0 && (config.Client == nil || config.MetadataClient == nil) {
		return nil, ErrNoBrokers
	}

	logger := config.Logger
	if logger == nil {
		logger = NewDefaultLogger(config.LogLevel)
	}

	client := config.Client
	if client == nil {
		// Build kafka config map
		configMap := &kafka.ConfigMap{
			"bootstrap.servers": strings.Join(config.Brokers, ","),
			"acks":              int(config.Acks),
		}

		if config.ClientID != "" {
			configMap.SetKey("client.id", config.ClientID)
		}

		if config.ConnectionTimeout > 0 {
			configMap.SetKey("socket.connection.setup.timeout.ms", int(config.ConnectionTimeout.Milliseconds()))
		}

		if config.RequestTimeout > 0 {
			configMap.SetKey("request.timeout.ms", int(config.RequestTimeout.Milliseconds()))
		}

		if config.Compression != CompressionNone {
			configMap.SetKey("compression.type", getCompressionName(config.Compression))
		}

		if config.Idempotent {
			configMap.SetKey("enable.idempotence", true)
		}

		if config.TransactionalID != "" {
			configMap.SetKey("transactional.id", config.TransactionalID)
			configMap.SetKey("transaction.timeout.ms", int(config.TransactionTimeout.Milliseconds()))
		}

		applyAuth(configMap, config)

		// Set log level
		configMap.SetKey("log_level", int(config.LogLevel))

		producer, err := kafka.NewProducer(configMap)
		if err != nil {
			return nil, fmt.Errorf("failed to create producer: %w", err)
		}
		client = producer
	}

	metadata := config.MetadataClient
	if metadata == nil {
		m, err := newAdminMetadataClient(config)
		if err != nil {
			client.Close()
			return nil, err
		}
		metadata = m
	}

	partitioner := config.Partitioner
	if partitioner == nil {
		partitioner = Murmur3Partitioner{}
	}

	metrics := config.Metrics
	if metrics == nil {
		metrics = NopMetrics{}
	}

	p := &Producer{
		client:      client,
		metadata:    metadata,
		config:      config,
		logger:      logger,
		metrics:     metrics,
		partitioner: partitioner,
		serializers: make(map[string]Serializer),
		partitions:  make(map[string]int32),
	}

	// Initialize tracing if enabled
	if config.Tracing != nil && config.Tracing.Enabled {
		p.tracer = NewTracingService(config.Tracing)
	}

	if err := p.registerInitialTopics(config); err != nil {
		p.client.Close()
		p.metadata.Close()
		return nil, err
	}

	return p, nil
}

// registerInitialTopics binds the construction-time topics: explicit
// serializers first, then Avro schemas built against the schema registry.
func (p *Producer) registerInitialTopics(config *ProducerConfig) error {
	for topic, s := range config.serializers {
		if err := p.RegisterTopic(topic, s); err != nil {
			return err
		}
	}

	if len(config.avroSchemas) == 0 {
		return nil
	}

	if config.SchemaRegistryURL == "" {
		return fmt.Errorf("schema registry URL is required for Avro topics")
	}

	registry, err := NewSchemaRegistryClient(config.SchemaRegistryURL, config.SchemaRegistryUsername, config.SchemaRegistryPassword)
	if err != nil {
		return fmt.Errorf("failed to create schema registry client: %w", err)
	}

	for topic, schema := range config.avroSchemas {
		s, err := NewAvroSerializer(registry, schema)
		if err != nil {
			return fmt.Errorf("invalid Avro schema for topic %q: %w", topic, err)
		}
		if err := p.RegisterTopic(topic, s); err != nil {
			return err
		}
	}

	return nil
}

// ==================== Produce Options ====================

// produceOptions collects per-message settings
type produceOptions struct {
	key       []byte
	topic     string
	headers   Headers
	partition int32
	upstream  *Message
}

// ProduceOption configures a single produce call
type ProduceOption func(*produceOptions)

// WithKey sets the message key
func WithKey(key []byte) ProduceOption {
	return func(o *produceOptions) {
		o.key = key
	}
}

// WithStringKey sets the message key from a string
func WithStringKey(key string) ProduceOption {
	return func(o *produceOptions) {
		o.key = []byte(key)
	}
}

// WithTopic sets the target topic, bypassing implicit topic resolution
func WithTopic(topic string) ProduceOption {
	return func(o *produceOptions) {
		o.topic = topic
	}
}

// WithHeaders merges the given headers into the message. A nil value removes
// the header, including one inherited from an upstream message.
func WithHeaders(headers Headers) ProduceOption {
	return func(o *produceOptions) {
		if o.headers == nil {
			o.headers = make(Headers, len(headers))
		}
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

// WithHeader sets a single header
func WithHeader(key string, value []byte) ProduceOption {
	return func(o *produceOptions) {
		if o.headers == nil {
			o.headers = make(Headers, 1)
		}
		o.headers[key] = value
	}
}

// WithPartition pins the message to a partition, bypassing the key hash
func WithPartition(partition int32) ProduceOption {
	return func(o *produceOptions) {
		o.partition = partition
	}
}

// WithUpstream marks a consumed message as the cause of this produce. Its
// headers and key carry over unless overridden, and its trace context is
// linked into the producer span.
func WithUpstream(msg *Message) ProduceOption {
	return func(o *produceOptions) {
		o.upstream = msg
	}
}

// ==================== Producing ====================

// Produce serializes the value and hands it to the client for asynchronous
// delivery. The message carries a guid header unless one was supplied, the
// key defaults to the upstream message's key, and the partition is derived
// from the key hash unless pinned with WithPartition.
//
// Delivery is not confirmed here. Use ConfirmDelivery or Close to drain the
// delivery queue.
func (p *Producer) Produce(ctx context.Context, value any, opts ...ProduceOption) error {
	if atomic.LoadInt32(&p.closed) == 1 {
		return ErrClosed
	}

	p.pollEvents()

	po := &produceOptions{partition: PartitionAny}
	for _, opt := range opts {
		opt(po)
	}

	topic, err := p.resolveTopic(po.topic)
	if err != nil {
		return err
	}

	serializer, ok := p.serializers[topic]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}

	headers, key := enrichHeaders(po.headers, po.upstream)
	if po.key != nil {
		key = po.key
	}

	partition := po.partition
	if partition == PartitionAny {
		partition, err = p.partitionFor(key, topic)
		if err != nil {
			return err
		}
	}

	payload, err := serializer.Serialize(topic, value)
	if err != nil {
		return fmt.Errorf("serialize message for topic %q: %w", topic, err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: partition,
		},
		Key:   key,
		Value: payload,
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{
			Key:   k,
			Value: v,
		})
	}

	// Add tracing
	var endSpan func(error)
	if p.tracer != nil {
		spanCtx := ctx
		if po.upstream != nil {
			spanCtx = p.tracer.ExtractTraceContext(spanCtx, po.upstream)
		}
		spanCtx, endSpan = p.tracer.StartProducerSpan(spanCtx, topic, key, partition)
		p.tracer.InjectTraceContext(spanCtx, msg)
	}

	if err := p.client.Produce(msg, nil); err != nil {
		if endSpan != nil {
			endSpan(err)
		}
		return fmt.Errorf("failed to produce message to topic %q: %w", topic, err)
	}
	if endSpan != nil {
		endSpan(nil)
	}

	p.metrics.MessagesProduced(1, topic)
	p.logger.Debug("Produced message to topic %q partition %d", topic, partition)

	return nil
}

// pollEvents drains pending delivery reports without blocking. Reports for
// fire-and-forget produces land on the client's event channel, which fills
// up unless drained on every produce and flush cycle.
func (p *Producer) pollEvents() {
	for {
		select {
		case e, ok := <-p.client.Events():
			if !ok {
				return
			}
			p.handleEvent(e)
		default:
			return
		}
	}
}

// handleEvent handles a single delivery report or client error
func (p *Producer) handleEvent(e kafka.Event) {
	switch ev := e.(type) {
	case *kafka.Message:
		topic := ""
		if ev.TopicPartition.Topic != nil {
			topic = *ev.TopicPartition.Topic
		}
		if ev.TopicPartition.Error != nil {
			p.metrics.DeliveryFailure(topic)
			p.logger.Error("Delivery failed for topic %q: %v", topic, ev.TopicPartition.Error)
		} else {
			p.logger.Debug("Delivered message to topic %q partition %d offset %d",
				topic, ev.TopicPartition.Partition, ev.TopicPartition.Offset)
		}
	case kafka.Error:
		p.logger.Error("Kafka error: %v", ev)
	}
}

// ==================== Delivery Confirmation ====================

// ConfirmDelivery flushes until the delivery queue is empty, giving the
// client at most attempts flush rounds of the given timeout each. A flush
// round reports nothing when it times out, so the queue length is checked
// between rounds and a DeliveryTimeoutError returned once rounds run out.
// Non-positive arguments fall back to DefaultConfirmAttempts and
// DefaultConfirmTimeout.
func (p *Producer) ConfirmDelivery(attempts int, timeout time.Duration) error {
	if attempts <= 0 {
		attempts = DefaultConfirmAttempts
	}
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}

	attempt := 1
	for p.client.Len() > 0 {
		if attempt > attempts {
			return &DeliveryTimeoutError{Attempts: attempts, Remaining: p.client.Len()}
		}
		p.logger.Debug("Flushing delivery queue, attempt %d of %d", attempt, attempts)
		p.client.Flush(int(timeout.Milliseconds()))
		p.pollEvents()
		attempt++
	}

	return nil
}

// Flush runs a single flush round and reports how many messages remain
// queued afterward.
func (p *Producer) Flush(timeout time.Duration) int {
	remaining := p.client.Flush(int(timeout.Milliseconds()))
	p.pollEvents()
	return remaining
}

// Len reports the number of messages awaiting delivery
func (p *Producer) Len() int {
	return p.client.Len()
}

// Close confirms outstanding deliveries, then releases the client and the
// metadata client. Safe to call more than once; later calls are no-ops.
func (p *Producer) Close() error {
	// Use atomic CAS to ensure only one Close can succeed
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		return nil
	}

	confirmErr := p.ConfirmDelivery(DefaultConfirmAttempts, DefaultConfirmTimeout)

	p.client.Close()
	p.metadata.Close()

	if confirmErr != nil {
		return fmt.Errorf("close: %w", confirmErr)
	}
	return nil
}

// ==================== Helpers ====================

// applyAuth sets the security protocol and SASL credentials on a config map
func applyAuth(configMap *kafka.ConfigMap, config *ProducerConfig) {
	if config.SSL {
		configMap.SetKey("security.protocol", "ssl")
	}

	if config.SASL != nil {
		if config.SSL {
			configMap.SetKey("security.protocol", "sasl_ssl")
		} else {
			configMap.SetKey("security.protocol", "sasl_plaintext")
		}
		configMap.SetKey("sasl.mechanism", config.SASL.Mechanism)
		configMap.SetKey("sasl.username", config.SASL.Username)
		configMap.SetKey("sasl.password", config.SASL.Password)
	}
}

func getCompressionName(compression Compression) string {
	switch compression {
	case CompressionGZIP:
		return "gzip"
	case CompressionSnappy:
		return "snappy"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}
