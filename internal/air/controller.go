// Package air holds the on-air state machine.
//
// The controller has two states, OFF_AIR and ON_AIR. It moves between them
// only on edges of the aggregate camera signal, or on an explicit manual
// override, and owns the side effects of each transition: publishing the new
// state and starting or stopping the blink signal.
package air

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smazurov/onair/internal/events"
)

// State is the on-air state.
type State bool

const (
	OffAir State = false
	OnAir  State = true
)

func (s State) String() string {
	if s {
		return "ON_AIR"
	}
	return "OFF_AIR"
}

// Transition sources.
const (
	SourceCamera   = "camera"
	SourceManual   = "manual"
	SourceShutdown = "shutdown"
)

// Publisher delivers the state to the outside world.
type Publisher interface {
	Publish(ctx context.Context, on bool) error
}

// Blinker is the periodic visual signal shown while on air.
type Blinker interface {
	Start()
	Stop()
}

// Snapshot is a read-only view of the controller.
type Snapshot struct {
	State          State     `json:"-"`
	OnAir          bool      `json:"on_air"`
	Source         string    `json:"source,omitempty"`
	Since          time.Time `json:"since"`
	Transitions    uint64    `json:"transitions"`
	LastPublishErr string    `json:"last_publish_error,omitempty"`
}

// Controller drives transitions. Evaluate is called from the reader loop and
// Set from control surfaces; transitions are serialized.
type Controller struct {
	publisher Publisher
	blinker   Blinker
	bus       *events.Bus
	logger    *slog.Logger

	mu       sync.Mutex // serializes transitions
	shutdown bool

	state atomic.Bool

	snapMu sync.RWMutex
	snap   Snapshot
}

// NewController creates a controller in OFF_AIR. blinker and bus may be nil.
func NewController(publisher Publisher, blinker Blinker, bus *events.Bus, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		publisher: publisher,
		blinker:   blinker,
		bus:       bus,
		logger:    logger,
		snap:      Snapshot{State: OffAir, Since: time.Now()},
	}
}

// Evaluate reacts to an aggregate change reported by the camera table.
// Only edges cause a transition; equal values are ignored.
// It reports whether a transition happened.
func (c *Controller) Evaluate(ctx context.Context, oldAggregate, newAggregate bool) bool {
	if oldAggregate == newAggregate {
		return false
	}
	return c.transition(ctx, State(newAggregate), SourceCamera)
}

// Set forces the state, as the menu toggle did. Setting the current state is
// a no-op.
func (c *Controller) Set(ctx context.Context, on bool) bool {
	return c.transition(ctx, State(on), SourceManual)
}

// State returns the current state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Snapshot returns a copy of the controller's observable state.
func (c *Controller) Snapshot() Snapshot {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snap
}

// Shutdown stops the blink signal, settles the local state on OFF_AIR and
// rejects further transitions. No final publish is made, so the broker keeps
// the last published value.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return
	}
	c.shutdown = true
	if c.blinker != nil {
		c.blinker.Stop()
	}

	was := c.State()
	c.state.Store(bool(OffAir))
	if was == OnAir {
		c.snapMu.Lock()
		c.snap.State = OffAir
		c.snap.OnAir = false
		c.snap.Source = SourceShutdown
		c.snap.Since = time.Now()
		c.snapMu.Unlock()
	}
	c.logger.Debug("Controller shut down", "was", was)
}

func (c *Controller) transition(ctx context.Context, to State, source string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown || c.State() == to {
		return false
	}

	c.state.Store(bool(to))
	c.logger.Info("Air state changed", "state", to, "source", source)

	if c.blinker != nil {
		if to == OnAir {
			c.blinker.Start()
		} else {
			c.blinker.Stop()
		}
	}

	// Publish failures are reported but never undo the transition.
	var publishErr string
	if err := c.publisher.Publish(ctx, bool(to)); err != nil {
		publishErr = err.Error()
		c.logger.Warn("Failed to publish air state", "state", to, "error", err)
	}

	now := time.Now()
	c.snapMu.Lock()
	c.snap = Snapshot{
		State:          to,
		OnAir:          bool(to),
		Source:         source,
		Since:          now,
		Transitions:    c.snap.Transitions + 1,
		LastPublishErr: publishErr,
	}
	c.snapMu.Unlock()

	c.bus.Publish(events.AirStateChangedEvent{
		OnAir:     bool(to),
		Source:    source,
		Published: publishErr == "",
		Error:     publishErr,
		Timestamp: now.Format(time.RFC3339),
	})
	return true
}
