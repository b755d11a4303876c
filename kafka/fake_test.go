package kafka

import (
	"context"
	"fmt"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	_ ProducerClient = (*fakeClient)(nil)
	_ MetadataClient = (*fakeMetadata)(nil)
	_ Metrics        = (*recordingMetrics)(nil)
)

// fakeClient is an in-memory ProducerClient. Produced messages are recorded
// and counted as queued; each Flush call drains drainPerFlush of them, or all
// of them when drainPerFlush is negative.
type fakeClient struct {
	events   chan kafka.Event
	produced []*kafka.Message
	queued   int

	drainPerFlush int
	flushCalls    int
	closeCalls    int

	produceErr error

	initCalls   int
	beginCalls  int
	commitCalls int
	abortCalls  int
	initErr     error
	beginErr    error
	commitErr   error
	abortErr    error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		events:        make(chan kafka.Event, 64),
		drainPerFlush: -1,
	}
}

func (f *fakeClient) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	if f.produceErr != nil {
		return f.produceErr
	}
	f.produced = append(f.produced, msg)
	f.queued++
	return nil
}

func (f *fakeClient) Events() chan kafka.Event {
	return f.events
}

func (f *fakeClient) Flush(timeoutMs int) int {
	f.flushCalls++
	if f.drainPerFlush < 0 {
		f.queued = 0
	} else {
		f.queued -= f.drainPerFlush
		if f.queued < 0 {
			f.queued = 0
		}
	}
	return f.queued
}

func (f *fakeClient) Len() int {
	return f.queued
}

func (f *fakeClient) InitTransactions(ctx context.Context) error {
	f.initCalls++
	return f.initErr
}

func (f *fakeClient) BeginTransaction() error {
	f.beginCalls++
	return f.beginErr
}

func (f *fakeClient) CommitTransaction(ctx context.Context) error {
	f.commitCalls++
	if f.commitErr != nil {
		return f.commitErr
	}
	f.queued = 0
	return nil
}

func (f *fakeClient) AbortTransaction(ctx context.Context) error {
	f.abortCalls++
	if f.abortErr != nil {
		return f.abortErr
	}
	f.queued = 0
	return nil
}

func (f *fakeClient) Close() {
	f.closeCalls++
}

// fakeMetadata serves partition counts from a fixed map and records lookups.
type fakeMetadata struct {
	counts map[string]int32
	err    error
	calls  map[string]int
	closed bool
}

func newFakeMetadata(counts map[string]int32) *fakeMetadata {
	return &fakeMetadata{
		counts: counts,
		calls:  make(map[string]int),
	}
}

func (f *fakeMetadata) PartitionCount(topic string) (int32, error) {
	f.calls[topic]++
	if f.err != nil {
		return 0, f.err
	}
	count, ok := f.counts[topic]
	if !ok {
		return 0, fmt.Errorf("unknown topic %q", topic)
	}
	return count, nil
}

func (f *fakeMetadata) Close() {
	f.closed = true
}

// recordingMetrics counts emissions per topic
type recordingMetrics struct {
	produced map[string]int
	failures map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		produced: make(map[string]int),
		failures: make(map[string]int),
	}
}

func (m *recordingMetrics) MessagesProduced(count int, topic string) {
	m.produced[topic] += count
}

func (m *recordingMetrics) DeliveryFailure(topic string) {
	m.failures[topic]++
}

// newTestProducer builds a producer on top of the fakes with a test logger
func newTestProducer(t *testing.T, client *fakeClient, metadata *fakeMetadata, opts ...Option) *Producer {
	t.Helper()

	base := []Option{
		WithClient(client),
		WithMetadataClient(metadata),
		WithLogger(NewZapLogger(zaptest.NewLogger(t))),
	}
	p, err := NewProducer(append(base, opts...)...)
	require.NoError(t, err)
	return p
}

// deliveryReport builds a delivery-report event for the topic, carrying err
// as the per-message delivery error.
func deliveryReport(topic string, err error) *kafka.Message {
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: 0,
			Error:     err,
		},
	}
}

// headerValue returns the value of the named header on a wire message, or
// nil when absent.
func headerValue(msg *kafka.Message, key string) []byte {
	for _, h := range msg.Headers {
		if h.Key == key {
			return h.Value
		}
	}
	return nil
}
