// Package kafka provides a production-ready Kafka producer library built on
// top of confluent-kafka-go.
//
// Features:
//   - Fire-and-forget Produce() with flush-based delivery confirmation
//   - Per-topic serializers: Avro with schema registry, JSON, msgpack, raw bytes
//   - Murmur3 key hashing for cross-language partition alignment
//   - Automatic guid header stamping and upstream header passthrough
//   - Transactional producer with transparent transaction begin
//   - Environment-driven configuration
//   - Prometheus metrics with optional pushgateway export
//   - OpenTelemetry distributed tracing
//   - Built-in health checks
//   - Graceful shutdown support
//
// Quick Start:
//
//	// Create producer
//	producer, err := kafka.NewProducer(
//	    kafka.WithBrokers("localhost:9092"),
//	    kafka.WithClientID("my-app"),
//	    kafka.WithTopicSerializer("orders", kafka.JSONSerializer{}),
//	)
//
//	// Produce message
//	err = producer.Produce(ctx, order,
//	    kafka.WithStringKey(order.ID),
//	)
//
//	// Confirm delivery before shutdown
//	err = producer.Close()
//
//	// Transactional variant
//	txn, err := kafka.NewTransactionalProducer(ctx, "my-app-txn",
//	    kafka.WithBrokers("localhost:9092"),
//	    kafka.WithTopicSerializer("orders", kafka.JSONSerializer{}),
//	)
//
//	err = txn.Produce(ctx, order, kafka.WithStringKey(order.ID))
//	err = txn.Commit(ctx)
package kafka

// Version of the library
const Version = "1.0.0"
