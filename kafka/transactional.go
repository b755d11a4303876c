package kafka

import (
	"context"
	"fmt"
	"time"
)

// TransactionalProducer wraps a Producer with Kafka transactions. Produce
// opens a transaction when none is active; Commit and Abort close it. Like
// Producer, it is intended to be driven from a single goroutine.
type TransactionalProducer struct {
	base   *Producer
	id     string
	active bool
}

// NewTransactionalProducer creates a producer bound to the given
// transactional id and initializes transactions with the broker. The context
// bounds the init handshake, which blocks until transactions left open by
// earlier incarnations of the same id are fenced.
func NewTransactionalProducer(ctx context.Context, transactionalID string, opts ...Option) (*TransactionalProducer, error) {
	if transactionalID == "" {
		return nil, fmt.Errorf("transactional id is required")
	}

	opts = append(opts, func(c *ProducerConfig) {
		c.TransactionalID = transactionalID
	})

	base, err := NewProducer(opts...)
	if err != nil {
		return nil, err
	}

	if err := base.client.InitTransactions(ctx); err != nil {
		base.Close()
		return nil, &TransactionError{Op: "init", Err: err}
	}
	base.logger.Debug("Transactions initialized for id %q", transactionalID)

	return &TransactionalProducer{
		base: base,
		id:   transactionalID,
	}, nil
}

// ID returns the transactional id
func (t *TransactionalProducer) ID() string {
	return t.id
}

// InTransaction reports whether a transaction is currently open
func (t *TransactionalProducer) InTransaction() bool {
	return t.active
}

// Begin opens a transaction. Calling Begin inside an open transaction is a
// no-op.
func (t *TransactionalProducer) Begin() error {
	if t.active {
		return nil
	}

	t.base.logger.Debug("Beginning Kafka transaction")
	if err := t.base.client.BeginTransaction(); err != nil {
		return &TransactionError{Op: "begin", Err: err}
	}
	t.active = true
	return nil
}

// Produce opens a transaction if none is active, then produces through the
// base producer.
func (t *TransactionalProducer) Produce(ctx context.Context, value any, opts ...ProduceOption) error {
	if err := t.Begin(); err != nil {
		return err
	}
	return t.base.Produce(ctx, value, opts...)
}

// Commit commits the open transaction. The transaction stays open when the
// commit fails, so the caller can retry or abort. Committing with no open
// transaction is a no-op.
func (t *TransactionalProducer) Commit(ctx context.Context) error {
	if !t.active {
		return nil
	}

	t.base.logger.Debug("Committing Kafka transaction")
	if err := t.base.client.CommitTransaction(ctx); err != nil {
		return &TransactionError{Op: "commit", Err: err}
	}
	t.base.pollEvents()
	t.active = false
	return nil
}

// Abort aborts the open transaction. Aborting with no open transaction is a
// no-op.
func (t *TransactionalProducer) Abort(ctx context.Context) error {
	if !t.active {
		return nil
	}

	t.base.logger.Debug("Aborting Kafka transaction")
	if err := t.base.client.AbortTransaction(ctx); err != nil {
		return &TransactionError{Op: "abort", Err: err}
	}
	t.active = false
	return nil
}

// RegisterTopic binds a serializer to a topic on the base producer
func (t *TransactionalProducer) RegisterTopic(topic string, s Serializer) error {
	return t.base.RegisterTopic(topic, s)
}

// ConfirmDelivery flushes until the delivery queue is empty
func (t *TransactionalProducer) ConfirmDelivery(attempts int, timeout time.Duration) error {
	return t.base.ConfirmDelivery(attempts, timeout)
}

// Flush runs a single flush round and reports how many messages remain
func (t *TransactionalProducer) Flush(timeout time.Duration) int {
	return t.base.Flush(timeout)
}

// Len reports the number of messages awaiting delivery
func (t *TransactionalProducer) Len() int {
	return t.base.Len()
}

// Close aborts any open transaction, then closes the base producer
func (t *TransactionalProducer) Close() error {
	if t.active {
		if err := t.Abort(context.Background()); err != nil {
			t.base.logger.Warn("Failed to abort open transaction on close: %v", err)
		}
	}
	return t.base.Close()
}
