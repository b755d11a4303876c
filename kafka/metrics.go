package kafka

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics is the sink for producer counters. Implementations are best-effort
// by construction: methods return nothing, so metric emission can never fail
// a produce call.
type Metrics interface {
	// MessagesProduced records messages enqueued for delivery to a topic.
	MessagesProduced(count int, topic string)

	// DeliveryFailure records a delivery report carrying an error.
	DeliveryFailure(topic string)
}

var (
	_ Metrics = NopMetrics{}
	_ Metrics = (*PrometheusMetrics)(nil)
)

// NopMetrics discards all counters. It is the default sink.
type NopMetrics struct{}

// MessagesProduced does nothing
func (NopMetrics) MessagesProduced(count int, topic string) {}

// DeliveryFailure does nothing
func (NopMetrics) DeliveryFailure(topic string) {}

// PrometheusMetrics counts produced messages and delivery failures per topic.
type PrometheusMetrics struct {
	produced *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewPrometheusMetrics builds the producer counters and registers them with
// the given registerer. A nil registerer falls back to the default one.
func NewPrometheusMetrics(r prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		produced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kafka",
			Subsystem: "producer",
			Name:      "messages_produced_total",
			Help:      "Total messages enqueued for delivery",
		}, []string{"topic"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kafka",
			Subsystem: "producer",
			Name:      "delivery_failures_total",
			Help:      "Total delivery reports carrying an error",
		}, []string{"topic"}),
	}

	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	if err := r.Register(m.produced); err != nil {
		return nil, err
	}
	if err := r.Register(m.failures); err != nil {
		return nil, err
	}
	return m, nil
}

// MessagesProduced increments the produced counter for the topic
func (m *PrometheusMetrics) MessagesProduced(count int, topic string) {
	m.produced.WithLabelValues(topic).Add(float64(count))
}

// DeliveryFailure increments the failure counter for the topic
func (m *PrometheusMetrics) DeliveryFailure(topic string) {
	m.failures.WithLabelValues(topic).Add(1)
}

// MetricsPusher pushes a metrics registry to a Prometheus pushgateway, for
// deployments where scraping individual producer processes is impractical.
type MetricsPusher struct {
	pusher   *push.Pusher
	interval time.Duration
	logger   Logger
}

// NewMetricsPusher creates a pusher for the given gateway address. The job
// name should uniquely identify the running application instance.
func NewMetricsPusher(gateway, job string, gatherer prometheus.Gatherer, interval time.Duration, logger Logger) *MetricsPusher {
	if logger == nil {
		logger = NewNoopLogger()
	}
	if interval <= 0 {
		interval = DefaultPushInterval
	}
	return &MetricsPusher{
		pusher:   push.New(gateway, job).Gatherer(gatherer),
		interval: interval,
		logger:   logger,
	}
}

// Push performs a single push to the gateway.
func (p *MetricsPusher) Push() error {
	return p.pusher.Push()
}

// Start pushes on the configured interval until the context is cancelled,
// with a final push on the way out. Push failures are logged, never fatal.
// Run it on its own goroutine.
func (p *MetricsPusher) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := p.Push(); err != nil {
				p.logger.Error("Failed to push metrics: %v", err)
			}
			return
		case <-ticker.C:
			if err := p.Push(); err != nil {
				p.logger.Error("Failed to push metrics: %v", err)
			}
		}
	}
}
