package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the bot.
type Metrics struct {
	MessagesProcessed  *prometheus.CounterVec
	MemoryOps          *prometheus.CounterVec
	GeneratorResponses *prometheus.CounterVec
	RoomMessages       *prometheus.CounterVec
	RoomConnected      prometheus.Gauge
	ProcessingDuration prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		MessagesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_processed_total",
			Help:      "Processed chat messages by outcome.",
		}, []string{"outcome"}),
		MemoryOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_operations_total",
			Help:      "Memory store operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		GeneratorResponses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generator_responses_total",
			Help:      "Replies by generator source.",
		}, []string{"source"}),
		RoomMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_messages_total",
			Help:      "Room data-channel messages by direction and disposition.",
		}, []string{"direction", "disposition"}),
		RoomConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_connected",
			Help:      "Whether the bot currently holds a room connection.",
		}),
		ProcessingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_duration_seconds",
			Help:      "End-to-end message processing latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		}),
	}
}

func (m *Metrics) ObserveProcessing(d time.Duration) {
	if m == nil {
		return
	}
	m.ProcessingDuration.Observe(d.Seconds())
}

func (m *Metrics) CountMemoryOp(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.MemoryOps.WithLabelValues(op, outcome).Inc()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
