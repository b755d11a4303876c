package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// HealthChecker probes broker reachability and topic availability. Each check
// opens a one-shot admin connection, so the checks stay meaningful even when
// the producer itself is wedged.
type HealthChecker struct {
	producer *Producer
	brokers  []string
	config   *ProducerConfig
	timeout  time.Duration
}

// NewHealthChecker builds a checker from a producer, reusing its brokers and
// credentials. Check results include the producer's delivery-queue depth.
func NewHealthChecker(producer *Producer) *HealthChecker {
	return &HealthChecker{
		producer: producer,
		brokers:  producer.config.Brokers,
		config:   producer.config,
		timeout:  10 * time.Second,
	}
}

// NewHealthCheckerWithBrokers builds a standalone checker for the given
// brokers, without credentials.
func NewHealthCheckerWithBrokers(brokers []string) *HealthChecker {
	return &HealthChecker{
		brokers: brokers,
		timeout: 10 * time.Second,
	}
}

// SetTimeout sets the per-check metadata timeout
func (h *HealthChecker) SetTimeout(timeout time.Duration) {
	h.timeout = timeout
}

// down builds a failed result carrying the error and any extra detail fields
func down(err error, extra map[string]interface{}) *HealthResult {
	details := map[string]interface{}{"error": err.Error()}
	for k, v := range extra {
		details[k] = v
	}
	return &HealthResult{
		Status:  HealthStatusDown,
		Error:   err,
		Details: details,
	}
}

// Check reports whether the cluster is reachable. On success the details
// carry the broker and topic counts, the responding broker id, and the
// producer's queued-message count when the checker was built from one.
func (h *HealthChecker) Check(ctx context.Context) *HealthResult {
	if err := ctx.Err(); err != nil {
		return down(err, nil)
	}

	admin, err := h.newAdminClient()
	if err != nil {
		return down(err, nil)
	}
	defer admin.Close()

	metadata, err := admin.GetMetadata(nil, true, int(h.effectiveTimeout(ctx).Milliseconds()))
	if err != nil {
		return down(err, nil)
	}
	if len(metadata.Brokers) == 0 {
		return down(ErrNoBrokers, nil)
	}

	details := map[string]interface{}{
		"brokers":       len(metadata.Brokers),
		"topics":        len(metadata.Topics),
		"originatingId": metadata.OriginatingBroker.ID,
	}
	if h.producer != nil {
		details["queued"] = h.producer.Len()
	}

	return &HealthResult{Status: HealthStatusUp, Details: details}
}

// CheckTopic reports whether a topic exists and is error-free, with
// per-partition leader and replica detail.
func (h *HealthChecker) CheckTopic(ctx context.Context, topic string) *HealthResult {
	if err := ctx.Err(); err != nil {
		return down(err, nil)
	}

	admin, err := h.newAdminClient()
	if err != nil {
		return down(err, nil)
	}
	defer admin.Close()

	metadata, err := admin.GetMetadata(&topic, false, int(h.effectiveTimeout(ctx).Milliseconds()))
	if err != nil {
		return down(err, map[string]interface{}{"topic": topic})
	}

	topicMeta, ok := metadata.Topics[topic]
	if !ok {
		return down(fmt.Errorf("topic not found: %s", topic), map[string]interface{}{"topic": topic})
	}
	if topicMeta.Error.Code() != kafka.ErrNoError {
		return down(topicMeta.Error, map[string]interface{}{"topic": topic})
	}

	partitions := make([]map[string]interface{}, 0, len(topicMeta.Partitions))
	for _, p := range topicMeta.Partitions {
		partitions = append(partitions, map[string]interface{}{
			"id":       p.ID,
			"leader":   p.Leader,
			"replicas": len(p.Replicas),
			"isrs":     len(p.Isrs),
		})
	}

	return &HealthResult{
		Status: HealthStatusUp,
		Details: map[string]interface{}{
			"topic":          topic,
			"partitionCount": len(topicMeta.Partitions),
			"partitions":     partitions,
		},
	}
}

// newAdminClient opens a one-shot admin connection, carrying the producer's
// auth settings when the checker was built from one.
func (h *HealthChecker) newAdminClient() (*kafka.AdminClient, error) {
	configMap := &kafka.ConfigMap{
		"bootstrap.servers": strings.Join(h.brokers, ","),
	}
	if h.config != nil {
		applyAuth(configMap, h.config)
	}
	return kafka.NewAdminClient(configMap)
}

// effectiveTimeout clamps the configured timeout to the context deadline
func (h *HealthChecker) effectiveTimeout(ctx context.Context) time.Duration {
	timeout := h.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}
