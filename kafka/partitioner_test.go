package kafka

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMurmur3PartitionerDeterminism(t *testing.T) {
	t.Parallel()

	p := Murmur3Partitioner{}
	keys := []string{"customer-1", "customer-2", "order-42", "a", ""}
	for _, key := range keys {
		first := p.Partition([]byte(key), 12)
		for i := 0; i < 10; i++ {
			require.Equal(t, first, p.Partition([]byte(key), 12), "key %q", key)
		}
	}
}

func TestMurmur3PartitionerRange(t *testing.T) {
	t.Parallel()

	p := Murmur3Partitioner{}
	for i := 0; i < 1000; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		for _, n := range []int32{1, 2, 3, 8, 12, 100} {
			partition := p.Partition(key, n)
			require.GreaterOrEqual(t, partition, int32(0), "key %q across %d partitions", key, n)
			require.Less(t, partition, n, "key %q across %d partitions", key, n)
		}
	}
}

func TestMurmur3PartitionerSpreadsKeys(t *testing.T) {
	t.Parallel()

	p := Murmur3Partitioner{}
	used := make(map[int32]bool)
	for i := 0; i < 100; i++ {
		used[p.Partition([]byte(fmt.Sprintf("customer-%d", i)), 8)] = true
	}
	require.Greater(t, len(used), 1, "all keys landed on one partition")
}

func TestMurmur3PartitionerSinglePartition(t *testing.T) {
	t.Parallel()

	p := Murmur3Partitioner{}
	require.Equal(t, int32(0), p.Partition([]byte("anything"), 1))
}

func TestMurmur3PartitionerNilKey(t *testing.T) {
	t.Parallel()

	p := Murmur3Partitioner{}
	require.Equal(t, p.Partition([]byte{}, 8), p.Partition(nil, 8))
}

func TestMurmur3PartitionerNoPartitions(t *testing.T) {
	t.Parallel()

	p := Murmur3Partitioner{}
	require.Equal(t, int32(0), p.Partition([]byte("key"), 0))
	require.Equal(t, int32(0), p.Partition([]byte("key"), -1))
}
