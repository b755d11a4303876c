package kafka

import (
	"context"
	"strconv"
	"time"
)

// Failure provenance headers stamped on forwarded messages
const (
	HeaderFailureOrigin = "x-failure-origin-topic"
	HeaderFailureTime   = "x-failure-timestamp"
	HeaderFailureReason = "x-failure-reason"
	HeaderFailureCount  = "x-failure-count"
)

// DeadLetterForwarder routes messages a processing pipeline could not handle
// onto a quarantine topic. The original key and headers carry over, the
// already-serialized value is forwarded verbatim, and failure provenance
// headers are stamped on top.
type DeadLetterForwarder struct {
	producer *Producer
	topic    string

	// IncludeReason controls whether the failure reason is recorded in a
	// header. Disable when error strings may leak payload contents.
	IncludeReason bool
}

// NewDeadLetterForwarder creates a forwarder targeting the given quarantine
// topic. The topic is registered on the producer with a pass-through byte
// serializer.
func NewDeadLetterForwarder(producer *Producer, topic string) (*DeadLetterForwarder, error) {
	if err := producer.RegisterTopic(topic, BytesSerializer{}); err != nil {
		return nil, err
	}
	return &DeadLetterForwarder{
		producer:      producer,
		topic:         topic,
		IncludeReason: true,
	}, nil
}

// Topic returns the quarantine topic
func (f *DeadLetterForwarder) Topic() string {
	return f.topic
}

// Forward produces the failed message onto the quarantine topic. The failure
// count header increments across repeated forwards of the same message, so
// reprocessing loops stay observable.
func (f *DeadLetterForwarder) Forward(ctx context.Context, msg *Message, cause error) error {
	count := 1
	if msg.Headers != nil {
		if raw, ok := msg.Headers[HeaderFailureCount]; ok {
			if prev, err := strconv.Atoi(string(raw)); err == nil {
				count = prev + 1
			}
		}
	}

	opts := []ProduceOption{
		WithTopic(f.topic),
		WithUpstream(msg),
		WithHeader(HeaderFailureOrigin, []byte(msg.Topic)),
		WithHeader(HeaderFailureTime, time.Now().AppendFormat(nil, time.RFC3339)),
		WithHeader(HeaderFailureCount, []byte(strconv.Itoa(count))),
	}
	if f.IncludeReason && cause != nil {
		opts = append(opts, WithHeader(HeaderFailureReason, []byte(cause.Error())))
	}

	return f.producer.Produce(ctx, msg.Value, opts...)
}
