package metrics

import (
	"log/slog"

	"github.com/smazurov/onair/internal/events"
)

// Recorder keeps gauges and counters in sync with bus events.
type Recorder struct {
	bus    *events.Bus
	logger *slog.Logger
	unsubs []func()
}

// NewRecorder creates a recorder for the given bus.
func NewRecorder(bus *events.Bus, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{bus: bus, logger: logger}
}

// Start subscribes to the bus.
func (r *Recorder) Start() {
	r.unsubs = append(r.unsubs,
		r.bus.Subscribe(func(e events.CameraStateChangedEvent) {
			IncCameraEvent(e.Active)
			SetCamerasTracked(e.Tracked)
		}),
		r.bus.Subscribe(func(e events.UnrecognizedActivityEvent) {
			IncUnrecognizedActivity()
		}),
		r.bus.Subscribe(func(e events.AirStateChangedEvent) {
			SetOnAir(e.OnAir)
			if e.Published {
				IncPublish(ResultOK)
			} else {
				IncPublish(ResultError)
			}
		}),
		r.bus.Subscribe(func(e events.BrokerStatusEvent) {
			SetBrokerConnected(e.Connected)
		}),
	)
	r.logger.Debug("Metrics recorder started")
}

// Stop unsubscribes from the bus.
func (r *Recorder) Stop() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}
