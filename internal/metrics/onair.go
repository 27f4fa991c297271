// Package metrics provides Prometheus metrics for the camera watcher.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "onair"

// Publish results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	feedLines = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_lines_total",
		Help:      "Lines read from the log feed",
	})

	cameraEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "camera_events_total",
		Help:      "Camera activation and deactivation events",
	}, []string{"activated"})

	unrecognizedActivity = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unrecognized_activity_total",
		Help:      "Camera log lines with neither an on nor an off marker",
	})

	publishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "publish_total",
		Help:      "Air state publishes by result",
	}, []string{"result"})

	onAir = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "on_air",
		Help:      "1 while at least one camera is active",
	})

	camerasTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cameras_tracked",
		Help:      "Devices observed since start",
	})

	brokerConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "broker_connected",
		Help:      "1 while the MQTT broker connection is up",
	})
)

// IncFeedLines counts one line read from the feed.
func IncFeedLines() {
	feedLines.Inc()
}

// IncCameraEvent counts one camera event.
func IncCameraEvent(activated bool) {
	cameraEvents.WithLabelValues(strconv.FormatBool(activated)).Inc()
}

// IncUnrecognizedActivity counts one unrecognized camera line.
func IncUnrecognizedActivity() {
	unrecognizedActivity.Inc()
}

// IncPublish counts a publish attempt with the given result.
func IncPublish(result string) {
	publishes.WithLabelValues(result).Inc()
}

// SetOnAir sets the on-air gauge.
func SetOnAir(on bool) {
	onAir.Set(boolToFloat(on))
}

// SetCamerasTracked sets the number of devices in the camera table.
func SetCamerasTracked(n int) {
	camerasTracked.Set(float64(n))
}

// SetBrokerConnected sets the broker connection gauge.
func SetBrokerConnected(connected bool) {
	brokerConnected.Set(boolToFloat(connected))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
