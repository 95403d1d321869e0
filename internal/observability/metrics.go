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
			Namespace: "rcxctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rcxctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rcxctl",
			Subsystem: "relay",
			Name:      "commands_total",
			Help:      "Command bytes encoded, by command name.",
		},
		[]string{"command"},
	)
	framesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rcxctl",
			Subsystem: "transport",
			Name:      "frames_total",
			Help:      "Frames handed to the transport driver, by opcode and success.",
		},
		[]string{"opcode", "success"},
	)
	sendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rcxctl",
			Subsystem: "transport",
			Name:      "send_duration_seconds",
			Help:      "Time spent in one transport send call.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	transportErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rcxctl",
			Subsystem: "transport",
			Name:      "errors_total",
			Help:      "Non-zero transport status codes, by operation and status.",
		},
		[]string{"op", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			commandsTotal,
			framesTotal,
			sendDuration,
			transportErrors,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordCommand(name string) {
	RegisterMetrics()
	commandsTotal.WithLabelValues(name).Inc()
}

func RecordFrame(opcode byte, success bool, duration time.Duration) {
	RegisterMetrics()
	framesTotal.WithLabelValues("0x"+strconv.FormatUint(uint64(opcode), 16), strconv.FormatBool(success)).Inc()
	sendDuration.Observe(duration.Seconds())
}

func RecordTransportError(op string, status int) {
	RegisterMetrics()
	transportErrors.WithLabelValues(op, strconv.Itoa(status)).Inc()
}
