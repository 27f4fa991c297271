package led

import (
	"sync"
	"testing"
	"time"
)

type recordingController struct {
	mu    sync.Mutex
	calls []bool
}

func (r *recordingController) Set(_ string, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, on)
	return nil
}

func (r *recordingController) Available() []string { return []string{"act"} }

func (r *recordingController) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.calls...)
}

func TestBlinkerToggles(t *testing.T) {
	ctrl := &recordingController{}
	b := NewBlinker(10*time.Millisecond, ctrl, "act", testLogger())

	if b.Indicator() != GlyphIdle {
		t.Fatalf("idle indicator = %q", b.Indicator())
	}

	b.Start()
	if b.Indicator() != GlyphLit {
		t.Errorf("indicator right after Start = %q, want lit", b.Indicator())
	}

	deadline := time.Now().Add(time.Second)
	for len(ctrl.snapshot()) < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	b.Stop()

	calls := ctrl.snapshot()
	if len(calls) < 4 {
		t.Fatalf("expected several toggles, got %v", calls)
	}
	for i := 1; i < len(calls)-1; i++ {
		if calls[i] == calls[i-1] {
			t.Errorf("toggle %d did not alternate: %v", i, calls)
		}
	}
	if calls[len(calls)-1] {
		t.Error("LED should be off after Stop")
	}
	if b.Indicator() != GlyphIdle {
		t.Errorf("indicator after Stop = %q, want idle", b.Indicator())
	}
}

func TestBlinkerStartStopIdempotent(t *testing.T) {
	b := NewBlinker(time.Hour, nil, "", testLogger())

	b.Stop()
	b.Start()
	b.Start()
	if !b.Active() {
		t.Fatal("blinker should be active")
	}
	b.Stop()
	b.Stop()
	if b.Active() {
		t.Error("blinker should be stopped")
	}
}

func TestBlinkerDefaultInterval(t *testing.T) {
	b := NewBlinker(0, nil, "", nil)
	if b.interval != DefaultBlinkInterval {
		t.Errorf("interval = %v, want %v", b.interval, DefaultBlinkInterval)
	}
}
