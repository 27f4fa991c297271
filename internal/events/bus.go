package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting.
// Delivery is asynchronous and ordered per subscriber.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// A nil bus drops the event, so components can run without one.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	switch e := ev.(type) {
	case CameraStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case AirStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case BrokerStatusEvent:
		event.Publish(b.dispatcher, e)
	case FeedTerminatedEvent:
		event.Publish(b.dispatcher, e)
	case UnrecognizedActivityEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler type selects the event type. Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e AirStateChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(CameraStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(AirStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BrokerStatusEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FeedTerminatedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(UnrecognizedActivityEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
