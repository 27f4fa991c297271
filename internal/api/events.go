package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/onair/internal/events"
)

// registerSSERoutes streams bus events to clients. Skipped without a bus.
func (s *Server) registerSSERoutes() {
	bus := s.options.EventBus
	if bus == nil {
		return
	}

	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Live air transitions, camera changes and broker status",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"air-state-changed":     events.AirStateChangedEvent{},
		"camera-state-changed":  events.CameraStateChangedEvent{},
		"broker-status":         events.BrokerStatusEvent{},
		"feed-terminated":       events.FeedTerminatedEvent{},
		"unrecognized-activity": events.UnrecognizedActivityEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 16)
		unsubscribers := []func(){
			events.SubscribeToChannel[events.AirStateChangedEvent](bus, eventCh),
			events.SubscribeToChannel[events.CameraStateChangedEvent](bus, eventCh),
			events.SubscribeToChannel[events.BrokerStatusEvent](bus, eventCh),
			events.SubscribeToChannel[events.FeedTerminatedEvent](bus, eventCh),
			events.SubscribeToChannel[events.UnrecognizedActivityEvent](bus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Headers are only flushed on the first send; the current state goes
		// out immediately so idle clients connect and learn it.
		snap := s.options.Air.Snapshot()
		if err := send.Data(events.AirStateChangedEvent{
			OnAir:     snap.OnAir,
			Source:    snap.Source,
			Published: snap.Transitions > 0 && snap.LastPublishErr == "",
			Error:     snap.LastPublishErr,
			Timestamp: snap.Since.Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-eventCh:
				if err := send.Data(ev); err != nil {
					return
				}
			}
		}
	})
}
