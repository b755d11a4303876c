package kafka

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterTopicFetchesPartitionCount(t *testing.T) {
	client := newFakeClient()
	metadata := newFakeMetadata(map[string]int32{"orders": 6})
	p := newTestProducer(t, client, metadata)

	require.NoError(t, p.RegisterTopic("orders", JSONSerializer{}))
	require.Equal(t, 1, metadata.calls["orders"])

	// The count is cached; re-registration does not refetch
	require.NoError(t, p.RegisterTopic("orders", BytesSerializer{}))
	require.Equal(t, 1, metadata.calls["orders"])
}

func TestRegisterTopicMetadataFailure(t *testing.T) {
	client := newFakeClient()
	metadata := newFakeMetadata(nil)
	metadata.err = errors.New("broker unreachable")
	p := newTestProducer(t, client, metadata)

	err := p.RegisterTopic("orders", JSONSerializer{})
	require.Error(t, err)
	require.True(t, IsMetadataError(err))

	var metaErr *MetadataError
	require.ErrorAs(t, err, &metaErr)
	require.Equal(t, "orders", metaErr.Topic)

	// A failed registration leaves the topic unknown
	require.NotContains(t, p.serializers, "orders")
}

func TestRegisterTopicReplacesSerializer(t *testing.T) {
	client := newFakeClient()
	metadata := newFakeMetadata(map[string]int32{"orders": 3})
	p := newTestProducer(t, client, metadata)

	require.NoError(t, p.RegisterTopic("orders", JSONSerializer{}))
	require.NoError(t, p.RegisterTopic("orders", MsgpackSerializer{}))

	require.IsType(t, MsgpackSerializer{}, p.serializers["orders"])
}

func TestResolveTopicExplicit(t *testing.T) {
	p := newTestProducer(t, newFakeClient(), newFakeMetadata(nil))

	topic, err := p.resolveTopic("payments")
	require.NoError(t, err)
	require.Equal(t, "payments", topic)
}

func TestResolveTopicSingleRegistered(t *testing.T) {
	client := newFakeClient()
	metadata := newFakeMetadata(map[string]int32{"orders": 3})
	p := newTestProducer(t, client, metadata)
	require.NoError(t, p.RegisterTopic("orders", JSONSerializer{}))

	topic, err := p.resolveTopic("")
	require.NoError(t, err)
	require.Equal(t, "orders", topic)
}

func TestResolveTopicExcludesChangelog(t *testing.T) {
	client := newFakeClient()
	metadata := newFakeMetadata(map[string]int32{
		"orders":            3,
		"my-app__changelog": 3,
	})
	p := newTestProducer(t, client, metadata)
	require.NoError(t, p.RegisterTopic("orders", JSONSerializer{}))
	require.NoError(t, p.RegisterTopic("my-app__changelog", BytesSerializer{}))

	topic, err := p.resolveTopic("")
	require.NoError(t, err)
	require.Equal(t, "orders", topic)
}

func TestResolveTopicAmbiguous(t *testing.T) {
	client := newFakeClient()
	metadata := newFakeMetadata(map[string]int32{"orders": 3, "payments": 3})
	p := newTestProducer(t, client, metadata)
	require.NoError(t, p.RegisterTopic("orders", JSONSerializer{}))
	require.NoError(t, p.RegisterTopic("payments", JSONSerializer{}))

	_, err := p.resolveTopic("")
	require.ErrorIs(t, err, ErrTopicAmbiguous)
}

func TestResolveTopicNoneRegistered(t *testing.T) {
	p := newTestProducer(t, newFakeClient(), newFakeMetadata(nil))

	_, err := p.resolveTopic("")
	require.ErrorIs(t, err, ErrTopicAmbiguous)
}

func TestChangelogTopic(t *testing.T) {
	t.Parallel()

	require.Equal(t, "my-app__changelog", ChangelogTopic("my-app"))
}
