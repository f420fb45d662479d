package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "huddle",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "huddle",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	signalMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "huddle",
			Subsystem: "signal",
			Name:      "messages_total",
			Help:      "Inbound signaling messages by type.",
		},
		[]string{"type"},
	)
	signalRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "huddle",
			Subsystem: "signal",
			Name:      "rooms",
			Help:      "Rooms with at least one connected client.",
		},
	)
	signalClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "huddle",
			Subsystem: "signal",
			Name:      "clients",
			Help:      "Connected signaling clients.",
		},
	)
	transcriptsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "huddle",
			Subsystem: "transcripts",
			Name:      "saved_total",
			Help:      "Transcript rows written to storage.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			signalMessages, signalRooms, signalClients,
			transcriptsSaved,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordSignalMessage(msgType string) {
	RegisterMetrics()
	signalMessages.WithLabelValues(msgType).Inc()
}

func RecordHubStats(rooms, clients int) {
	RegisterMetrics()
	signalRooms.Set(float64(rooms))
	signalClients.Set(float64(clients))
}

func RecordTranscriptSaved() {
	RegisterMetrics()
	transcriptsSaved.Inc()
}
