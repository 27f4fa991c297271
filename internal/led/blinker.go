package led

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Indicator glyphs shown while blinking. GlyphIdle is also the resting state.
const (
	GlyphLit  = "🟢"
	GlyphIdle = "⚪"
)

// DefaultBlinkInterval is the toggle period while on air.
const DefaultBlinkInterval = time.Second

// Blinker toggles an indicator glyph, and optionally a board LED, at a fixed
// interval while started. Start and Stop are idempotent.
type Blinker struct {
	interval   time.Duration
	controller Controller // nil disables LED output
	ledName    string
	logger     *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}

	lit atomic.Bool
}

// NewBlinker creates a stopped blinker. controller may be nil.
func NewBlinker(interval time.Duration, controller Controller, ledName string, logger *slog.Logger) *Blinker {
	if interval <= 0 {
		interval = DefaultBlinkInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Blinker{
		interval:   interval,
		controller: controller,
		ledName:    ledName,
		logger:     logger,
	}
}

// Start begins toggling. The first phase is lit and shows immediately.
func (b *Blinker) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stop != nil {
		return
	}
	b.stop = make(chan struct{})
	b.done = make(chan struct{})
	b.set(true)

	go b.run(b.stop, b.done)
	b.logger.Debug("Blinker started", "interval", b.interval)
}

// Stop halts toggling and returns the indicator to idle. It waits for the
// ticker goroutine to exit.
func (b *Blinker) Stop() {
	b.mu.Lock()
	stop, done := b.stop, b.done
	b.stop, b.done = nil, nil
	b.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	b.set(false)
	b.logger.Debug("Blinker stopped")
}

// Active reports whether the blinker is running.
func (b *Blinker) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stop != nil
}

// Indicator returns the glyph for the current phase.
func (b *Blinker) Indicator() string {
	if b.lit.Load() {
		return GlyphLit
	}
	return GlyphIdle
}

func (b *Blinker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.set(!b.lit.Load())
		}
	}
}

func (b *Blinker) set(lit bool) {
	b.lit.Store(lit)
	if b.controller == nil {
		return
	}
	if err := b.controller.Set(b.ledName, lit); err != nil {
		b.logger.Debug("Failed to toggle LED", "led", b.ledName, "error", err)
	}
}
