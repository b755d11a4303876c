package kafka

import (
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// DefaultMetadataTimeout bounds partition-count lookups against the broker.
const DefaultMetadataTimeout = 10 * time.Second

// Verify AdminMetadataClient implements MetadataClient interface
var _ MetadataClient = (*AdminMetadataClient)(nil)

// AdminMetadataClient resolves topic partition counts through a confluent
// AdminClient. A producer builds one automatically from its own connection
// settings unless WithMetadataClient supplies a replacement.
type AdminMetadataClient struct {
	admin   *kafka.AdminClient
	timeout time.Duration
}

// NewAdminMetadataClient creates a metadata client. It accepts the same
// options as NewProducer; only connection-related options (brokers, SSL/SASL,
// metadata timeout) are relevant.
func NewAdminMetadataClient(opts ...Option) (*AdminMetadataClient, error) {
	config := newDefaultProducerConfig()
	for _, opt := range opts {
		opt(config)
	}
	return newAdminMetadataClient(config)
}

func newAdminMetadataClient(config *ProducerConfig) (*AdminMetadataClient, error) {
	if len(config.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	configMap := &kafka.ConfigMap{
		"bootstrap.servers": strings.Join(config.Brokers, ","),
	}
	applyAuth(configMap, config)

	admin, err := kafka.NewAdminClient(configMap)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin client: %w", err)
	}

	return &AdminMetadataClient{
		admin:   admin,
		timeout: config.MetadataTimeout,
	}, nil
}

// PartitionCount returns the number of partitions for the topic.
func (m *AdminMetadataClient) PartitionCount(topic string) (int32, error) {
	metadata, err := m.admin.GetMetadata(&topic, false, int(m.timeout.Milliseconds()))
	if err != nil {
		return 0, fmt.Errorf("failed to get metadata for topic %q: %w", topic, err)
	}

	topicMeta, ok := metadata.Topics[topic]
	if !ok {
		return 0, fmt.Errorf("topic %q not present in metadata response", topic)
	}
	if topicMeta.Error.Code() != kafka.ErrNoError {
		return 0, fmt.Errorf("topic %q has error: %w", topic, topicMeta.Error)
	}
	if len(topicMeta.Partitions) == 0 {
		return 0, fmt.Errorf("topic %q reports no partitions", topic)
	}

	return int32(len(topicMeta.Partitions)), nil
}

// Close releases the underlying admin client.
func (m *AdminMetadataClient) Close() {
	m.admin.Close()
}
