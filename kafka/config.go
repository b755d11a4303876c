package kafka

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds producer settings sourced from environment variables. It
// covers the common deployment knobs; anything beyond these is layered on
// with explicit options.
type EnvConfig struct {
	AppName                string        `env:"KAFKA_APP_NAME"                  envDefault:"kafka-go-producer"`               // Client identifier reported to brokers
	BootstrapServers       []string      `env:"KAFKA_BOOTSTRAP_SERVERS"         envSeparator:"," envDefault:"localhost:9092"` // Kafka broker addresses
	ClientUsername         string        `env:"KAFKA_CLIENT_USERNAME"`                                                        // SASL username; empty disables SASL
	ClientPassword         string        `env:"KAFKA_CLIENT_PASSWORD"`                                                        // SASL password
	SASLMechanism          string        `env:"KAFKA_SASL_MECHANISM"            envDefault:"PLAIN"`                           // SASL mechanism used when credentials are set
	SSL                    bool          `env:"KAFKA_SSL"                       envDefault:"false"`                           // Enable TLS without SASL
	TransactionTimeout     time.Duration `env:"KAFKA_TRANSACTION_TIMEOUT"       envDefault:"1m"`                              // Broker-side transaction timeout
	SchemaRegistryURL      string        `env:"KAFKA_SCHEMA_REGISTRY_URL"`                                                    // Schema registry endpoint
	SchemaRegistryUsername string        `env:"KAFKA_SCHEMA_REGISTRY_USERNAME"`                                               // Basic-auth user for the registry
	SchemaRegistryPassword string        `env:"KAFKA_SCHEMA_REGISTRY_PASSWORD"`                                               // Basic-auth password for the registry
	PushgatewayAddr        string        `env:"KAFKA_METRICS_PUSHGATEWAY"`                                                    // Pushgateway address; empty disables pushing
	PushInterval           time.Duration `env:"KAFKA_METRICS_PUSH_INTERVAL"     envDefault:"30s"`                             // Metrics push interval
}

// LoadEnvConfig parses producer settings from the environment
func LoadEnvConfig() (*EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment config: %w", err)
	}
	return &cfg, nil
}

// Options converts the environment settings into producer options. SASL
// credentials imply TLS, matching the usual managed-cluster setup.
func (c *EnvConfig) Options() []Option {
	opts := []Option{
		WithBrokers(c.BootstrapServers...),
		WithClientID(c.AppName),
		WithTransactionTimeout(c.TransactionTimeout),
	}

	if c.ClientUsername != "" {
		opts = append(opts,
			WithSSL(true),
			WithSASL(&SASLConfig{
				Mechanism: c.SASLMechanism,
				Username:  c.ClientUsername,
				Password:  c.ClientPassword,
			}),
		)
	} else if c.SSL {
		opts = append(opts, WithSSL(true))
	}

	if c.SchemaRegistryURL != "" {
		opts = append(opts, WithSchemaRegistry(c.SchemaRegistryURL))
		if c.SchemaRegistryUsername != "" {
			opts = append(opts, WithSchemaRegistryAuth(c.SchemaRegistryUsername, c.SchemaRegistryPassword))
		}
	}

	return opts
}

// NewProducerFromEnv builds a producer from environment variables plus any
// explicit options. Explicit options take precedence over the environment.
func NewProducerFromEnv(opts ...Option) (*Producer, error) {
	cfg, err := LoadEnvConfig()
	if err != nil {
		return nil, err
	}
	return NewProducer(append(cfg.Options(), opts...)...)
}
