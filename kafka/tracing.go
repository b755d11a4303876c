package kafka

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Messaging attribute keys following the OpenTelemetry semantic conventions
const (
	MessagingSystemKey              = "messaging.system"
	MessagingDestinationNameKey     = "messaging.destination.name"
	MessagingDestinationPartitionID = "messaging.destination.partition.id"
	MessagingOperationNameKey       = "messaging.operation.name"
	MessagingOperationTypeKey       = "messaging.operation.type"
	MessagingKafkaMessageKeyKey     = "messaging.kafka.message.key"
)

// TracingService opens a producer span per enqueue and moves trace context
// through message headers in both directions: injected into outgoing wire
// messages, extracted from upstream messages being relayed.
type TracingService struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	config     *TracingConfig
}

// NewTracingService builds the service from the globally installed tracer
// provider and propagator.
func NewTracingService(config *TracingConfig) *TracingService {
	name := config.TracerName
	if name == "" {
		name = "github.com/talus-io/kafka-go"
	}
	version := config.TracerVersion
	if version == "" {
		version = Version
	}

	return &TracingService{
		tracer:     otel.Tracer(name, trace.WithInstrumentationVersion(version)),
		propagator: otel.GetTextMapPropagator(),
		config:     config,
	}
}

// StartProducerSpan opens a publish span for one message. The returned
// closure ends the span; pass the produce error so failed enqueues are
// recorded on it.
func (t *TracingService) StartProducerSpan(ctx context.Context, topic string, key []byte, partition int32) (context.Context, func(error)) {
	attrs := []attribute.KeyValue{
		attribute.String(MessagingSystemKey, "kafka"),
		attribute.String(MessagingDestinationNameKey, topic),
		attribute.String(MessagingOperationNameKey, "publish"),
		attribute.String(MessagingOperationTypeKey, "publish"),
	}
	if key != nil {
		attrs = append(attrs, attribute.String(MessagingKafkaMessageKeyKey, string(key)))
	}
	if partition != PartitionAny && partition >= 0 {
		attrs = append(attrs, attribute.Int(MessagingDestinationPartitionID, int(partition)))
	}

	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("%s publish", topic),
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// InjectTraceContext writes the active trace context into the wire message's
// headers.
func (t *TracingService) InjectTraceContext(ctx context.Context, msg *kafka.Message) {
	t.propagator.Inject(ctx, &kafkaHeaderCarrier{msg: msg})
}

// ExtractTraceContext reads trace context out of an upstream message's
// headers, so spans for messages produced because of it join the inbound
// trace.
func (t *TracingService) ExtractTraceContext(ctx context.Context, msg *Message) context.Context {
	return t.propagator.Extract(ctx, &messageHeaderCarrier{msg: msg})
}

// kafkaHeaderCarrier adapts the wire message's header slice to
// propagation.TextMapCarrier.
type kafkaHeaderCarrier struct {
	msg *kafka.Message
}

func (c *kafkaHeaderCarrier) Get(key string) string {
	for _, h := range c.msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *kafkaHeaderCarrier) Set(key, val string) {
	// Overwrite an existing header rather than appending a duplicate
	for i := range c.msg.Headers {
		if c.msg.Headers[i].Key == key {
			c.msg.Headers[i].Value = []byte(val)
			return
		}
	}
	c.msg.Headers = append(c.msg.Headers, kafka.Header{Key: key, Value: []byte(val)})
}

func (c *kafkaHeaderCarrier) Keys() []string {
	keys := make([]string, len(c.msg.Headers))
	for i, h := range c.msg.Headers {
		keys[i] = h.Key
	}
	return keys
}

// messageHeaderCarrier adapts an upstream Message's header map to
// propagation.TextMapCarrier.
type messageHeaderCarrier struct {
	msg *Message
}

func (c *messageHeaderCarrier) Get(key string) string {
	return string(c.msg.Headers[key])
}

func (c *messageHeaderCarrier) Set(key, val string) {
	if c.msg.Headers == nil {
		c.msg.Headers = make(Headers)
	}
	c.msg.Headers[key] = []byte(val)
}

func (c *messageHeaderCarrier) Keys() []string {
	if c.msg.Headers == nil {
		return nil
	}
	keys := make([]string, 0, len(c.msg.Headers))
	for k := range c.msg.Headers {
		keys = append(keys, k)
	}
	return keys
}
