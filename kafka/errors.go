package kafka

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the producer. Use errors.Is to check for them,
// as they may be wrapped with additional context.
var (
	// ErrClosed is returned when an operation is attempted on a closed producer.
	ErrClosed = errors.New("producer is closed")

	// ErrTopicAmbiguous is returned when no topic was given and the registered
	// topics do not narrow down to exactly one candidate.
	ErrTopicAmbiguous = errors.New("topic must be set explicitly")

	// ErrUnknownTopic is returned when producing to a topic that has no
	// serializer registered.
	ErrUnknownTopic = errors.New("no serializer registered for topic")

	// ErrNoBrokers is returned when a producer is constructed without broker
	// addresses and without an injected client.
	ErrNoBrokers = errors.New("brokers are required")
)

// MetadataError indicates that a partition-count lookup failed. The caller may
// retry the whole produce call, as this usually reflects a transient broker or
// metadata-service hiccup.
type MetadataError struct {
	Topic string
	Err   error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata fetch for topic %q failed: %v", e.Topic, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// IsMetadataError checks whether an error is a failed metadata lookup.
func IsMetadataError(err error) bool {
	var metaErr *MetadataError
	return errors.As(err, &metaErr)
}

// DeliveryTimeoutError indicates that the confirmation loop exhausted its
// retry budget while the outbound queue was still non-empty. Messages counted
// in Remaining are buffered but unconfirmed; the caller must decide whether to
// treat them as lost or retry the batch.
type DeliveryTimeoutError struct {
	Attempts  int
	Remaining int
}

func (e *DeliveryTimeoutError) Error() string {
	return fmt.Sprintf("delivery unconfirmed after %d flush attempts: %d messages still queued", e.Attempts, e.Remaining)
}

// IsDeliveryTimeout checks whether an error is an exhausted confirmation loop.
func IsDeliveryTimeout(err error) bool {
	var timeoutErr *DeliveryTimeoutError
	return errors.As(err, &timeoutErr)
}

// TransactionError indicates that the underlying client rejected a transaction
// operation. It is fatal to the current transaction; the caller must abort and
// may retry with a fresh transaction.
type TransactionError struct {
	Op  string // "init", "begin", "commit" or "abort"
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// IsTransactionError checks whether an error is a rejected transaction operation.
func IsTransactionError(err error) bool {
	var txnErr *TransactionError
	return errors.As(err, &txnErr)
}
