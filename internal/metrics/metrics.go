// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesTotal counts frames read from a capture source
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbusdump_frames_total",
			Help: "Total number of frames read from the capture source",
		},
		[]string{"source"},
	)

	// LayerFramesTotal counts frames by the innermost layer decoded
	LayerFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbusdump_layer_frames_total",
			Help: "Total number of frames by innermost decoded layer",
		},
		[]string{"source", "layer"},
	)

	// DecodeErrorsTotal counts malformed frames by the layer that failed
	DecodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbusdump_decode_errors_total",
			Help: "Total number of malformed frames by failing layer",
		},
		[]string{"source", "layer"},
	)

	// ModbusMessagesTotal counts decoded Modbus messages
	ModbusMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbusdump_modbus_messages_total",
			Help: "Total number of Modbus messages by function and direction",
		},
		[]string{"source", "function", "direction"},
	)

	// CaptureDropsTotal counts frames the kernel or ring dropped
	CaptureDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbusdump_capture_drops_total",
			Help: "Total number of frames dropped during capture",
		},
		[]string{"source"},
	)

	// DecodeLatencySeconds measures decode plus report time per frame
	DecodeLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modbusdump_decode_latency_seconds",
			Help:    "Latency of decoding and reporting one frame in seconds",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20), // 1µs to ~1s
		},
		[]string{"source"},
	)
)
