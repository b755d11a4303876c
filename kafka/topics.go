package kafka

import (
	"fmt"
	"strings"
)

// InternalTopicSuffix marks change-log topics used for internal state
// replication. Topics carrying the suffix are excluded from implicit topic
// resolution.
const InternalTopicSuffix = "__changelog"

// ChangelogTopic returns the conventional change-log topic name for an
// application.
func ChangelogTopic(appName string) string {
	return appName + InternalTopicSuffix
}

// RegisterTopic binds a serializer to a topic for runtime registration,
// fetching and caching the topic's partition count up front. Registering an
// already-known topic replaces its serializer.
func (p *Producer) RegisterTopic(topic string, s Serializer) error {
	if _, err := p.partitionCount(topic); err != nil {
		return err
	}
	p.serializers[topic] = s
	p.logger.Debug("Registered topic %q", topic)
	return nil
}

// partitionCount returns the topic's partition count, fetching it from the
// metadata client and caching it on first use. Entries are never invalidated;
// a topic's partition count is assumed stable for the producer's lifetime.
func (p *Producer) partitionCount(topic string) (int32, error) {
	if count, ok := p.partitions[topic]; ok {
		return count, nil
	}

	count, err := p.metadata.PartitionCount(topic)
	if err != nil {
		return 0, &MetadataError{Topic: topic, Err: err}
	}

	p.partitions[topic] = count
	return count, nil
}

// partitionFor routes a key onto one of the topic's partitions.
func (p *Producer) partitionFor(key []byte, topic string) (int32, error) {
	count, err := p.partitionCount(topic)
	if err != nil {
		return 0, err
	}
	return p.partitioner.Partition(key, count), nil
}

// resolveTopic picks the target topic. An explicit topic is returned as-is;
// otherwise exactly one registered topic without the internal suffix must
// exist.
func (p *Producer) resolveTopic(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	var candidates []string
	for topic := range p.serializers {
		if !strings.HasSuffix(topic, InternalTopicSuffix) {
			candidates = append(candidates, topic)
		}
	}

	if len(candidates) != 1 {
		return "", fmt.Errorf("%w: %d eligible topics registered", ErrTopicAmbiguous, len(candidates))
	}
	return candidates[0], nil
}
