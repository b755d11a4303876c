package kafka

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetricsCounts(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(registry)
	require.NoError(t, err)

	m.MessagesProduced(3, "orders")
	m.MessagesProduced(1, "orders")
	m.DeliveryFailure("orders")

	require.Equal(t, 4.0, testutil.ToFloat64(m.produced.WithLabelValues("orders")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("orders")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.produced.WithLabelValues("payments")))
}

func TestPrometheusMetricsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewPrometheusMetrics(registry)
	require.NoError(t, err)

	_, err = NewPrometheusMetrics(registry)
	require.Error(t, err)
}

func TestNopMetrics(t *testing.T) {
	t.Parallel()

	// Must be callable without setup
	NopMetrics{}.MessagesProduced(1, "orders")
	NopMetrics{}.DeliveryFailure("orders")
}

func TestMetricsPusherPush(t *testing.T) {
	t.Parallel()

	pushes := make(chan struct{}, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushes <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	registry := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(registry)
	require.NoError(t, err)
	m.MessagesProduced(1, "orders")

	pusher := NewMetricsPusher(srv.URL, "test-producer", registry, time.Second, NewNoopLogger())
	require.NoError(t, pusher.Push())
	require.Len(t, pushes, 1)
}

func TestMetricsPusherPushFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway on fire", http.StatusInternalServerError)
	}))
	defer srv.Close()

	registry := prometheus.NewRegistry()
	pusher := NewMetricsPusher(srv.URL, "test-producer", registry, time.Second, NewNoopLogger())
	require.Error(t, pusher.Push())
}
