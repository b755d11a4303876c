package kafka

import (
	"github.com/twmb/murmur3"
)

// Partitioner maps a message key to a partition index in [0, numPartitions).
// Partition assignment determines the ordering visible to consumers, so the
// hash must match whatever a companion consuming system uses. Substitute via
// WithPartitioner when integrating with a consumer that hashes differently.
type Partitioner interface {
	Partition(key []byte, numPartitions int32) int32
}

// Verify Murmur3Partitioner implements Partitioner interface
var _ Partitioner = (*Murmur3Partitioner)(nil)

// Murmur3Partitioner is the default partitioner. It reduces the signed 32-bit
// MurmurHash3 of the key with a floor modulo, which reproduces the assignment
// of clients computing mmh3.hash(key) % n with Python semantics.
type Murmur3Partitioner struct{}

// Partition hashes the key onto a partition index. A nil key hashes the same
// as an empty key, so keyless messages route deterministically within a
// producer instance.
func (Murmur3Partitioner) Partition(key []byte, numPartitions int32) int32 {
	if numPartitions <= 0 {
		return 0
	}
	h := int32(murmur3.Sum32(key))
	p := h % numPartitions
	if p < 0 {
		p += numPartitions
	}
	return p
}
