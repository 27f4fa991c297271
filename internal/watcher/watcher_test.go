package watcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/onair/internal/air"
	"github.com/smazurov/onair/internal/camera"
	"github.com/smazurov/onair/internal/events"
	"github.com/smazurov/onair/internal/logstream"
	"github.com/smazurov/onair/internal/rules"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePublisher struct {
	mu        sync.Mutex
	published []bool
}

func (f *fakePublisher) Publish(_ context.Context, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, on)
	return nil
}

func (f *fakePublisher) values() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.published)
}

type countingController struct {
	mu        sync.Mutex
	evals     int
	shutdowns int
}

func (c *countingController) Evaluate(context.Context, bool, bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evals++
	return false
}

func (c *countingController) evaluations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evals
}

func (c *countingController) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdowns++
}

func powerLog(guid, state string) string {
	return fmt.Sprintf(`2024-01-01 10:00:00 UVCExtension: [guid:%s] Post PowerLog { "VDCAssistant_Power_State" = %s; }`+"\n", guid, state)
}

func TestEndToEnd(t *testing.T) {
	input := strings.Join([]string{
		"Filtering the log data using ...\n",
		powerLog("A", "Start"),
		powerLog("B", "Start"),
		powerLog("A", "Stop"),
		powerLog("B", "Stop"),
	}, "")

	pub := &fakePublisher{}
	ctrl := air.NewController(pub, nil, nil, testLogger())
	var reasons []string

	w := New(Options{
		Feed:       logstream.NewReaderFeed(strings.NewReader(input)),
		Rule:       rules.Default(),
		Controller: ctrl,
		Logger:     testLogger(),
		OnShutdown: func(reason string) { reasons = append(reasons, reason) },
	})
	w.Run(context.Background())

	if got := pub.values(); !slices.Equal(got, []bool{true, false}) {
		t.Errorf("published %v, want [true false]", got)
	}
	if w.Lines() != 5 {
		t.Errorf("lines = %d, want 5", w.Lines())
	}
	if !slices.Equal(reasons, []string{ReasonFeedEnded}) {
		t.Errorf("shutdown reasons = %v", reasons)
	}
	snap := w.Table().Snapshot()
	if len(snap) != 2 || snap["A"] || snap["B"] {
		t.Errorf("table = %v", snap)
	}
}

func TestFeedTerminationShutsDownOnce(t *testing.T) {
	for _, n := range []int{0, 1, 3, 10} {
		t.Run(fmt.Sprintf("%d lines", n), func(t *testing.T) {
			var b strings.Builder
			for i := range n {
				state := "Start"
				if i%2 == 1 {
					state = "Stop"
				}
				b.WriteString(powerLog("cam", state))
			}

			ctrl := &countingController{}
			calls := 0
			w := New(Options{
				Feed:       logstream.NewReaderFeed(strings.NewReader(b.String())),
				Rule:       rules.Default(),
				Controller: ctrl,
				Logger:     testLogger(),
				OnShutdown: func(string) { calls++ },
			})

			w.Run(context.Background())
			w.shutdown("again")

			if calls != 1 || ctrl.shutdowns != 1 {
				t.Errorf("shutdown callbacks = %d, controller shutdowns = %d, want 1/1", calls, ctrl.shutdowns)
			}
			if ctrl.evals != n {
				t.Errorf("evaluations = %d, want %d", ctrl.evals, n)
			}
			select {
			case <-w.Done():
			default:
				t.Error("Done should be closed")
			}
		})
	}
}

func TestUnrecognizedLineDoesNotMutate(t *testing.T) {
	bus := events.New()
	got := make(chan events.UnrecognizedActivityEvent, 1)
	unsub := bus.Subscribe(func(e events.UnrecognizedActivityEvent) { got <- e })
	defer unsub()

	ctrl := &countingController{}
	table := camera.NewTable()
	w := New(Options{
		Feed:       logstream.NewReaderFeed(strings.NewReader(powerLog("ABC", "Idle"))),
		Rule:       rules.Default(),
		Table:      table,
		Controller: ctrl,
		Bus:        bus,
		Logger:     testLogger(),
	})
	w.Run(context.Background())

	if table.Len() != 0 {
		t.Errorf("table mutated: %v", table.Snapshot())
	}
	if ctrl.evals != 0 {
		t.Errorf("controller evaluated %d times", ctrl.evals)
	}
	select {
	case ev := <-got:
		if ev.DeviceID != "ABC" {
			t.Errorf("device = %q", ev.DeviceID)
		}
	case <-time.After(time.Second):
		t.Fatal("no UnrecognizedActivityEvent")
	}
}

func TestStopIsCooperative(t *testing.T) {
	pr, pw := io.Pipe()
	ctrl := &countingController{}
	var reason string
	w := New(Options{
		Feed:       logstream.NewReaderFeed(pr),
		Rule:       rules.Default(),
		Controller: ctrl,
		Logger:     testLogger(),
		OnShutdown: func(r string) { reason = r },
	})

	go w.Run(context.Background())

	if _, err := io.WriteString(pw, powerLog("A", "Start")); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(time.Second)
	for ctrl.evaluations() < 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	w.Stop()

	// The loop is blocked in ReadLine; the next line lets it notice the flag.
	go io.WriteString(pw, powerLog("A", "Stop"))

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after the next line")
	}
	if reason != ReasonStopped {
		t.Errorf("reason = %q, want %q", reason, ReasonStopped)
	}
	if ctrl.evals != 1 {
		t.Errorf("the line read after Stop must not be processed, evals = %d", ctrl.evals)
	}
}

func TestCancelUnblocksStalledFeed(t *testing.T) {
	pr, _ := io.Pipe()
	ctrl := &countingController{}
	var reason string
	w := New(Options{
		Feed:       logstream.NewReaderFeed(pr),
		Rule:       rules.Default(),
		Controller: ctrl,
		Logger:     testLogger(),
		OnShutdown: func(r string) { reason = r },
	})

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("cancel did not unblock the feed")
	}
	if reason != ReasonCancelled && reason != ReasonStopped {
		t.Errorf("reason = %q", reason)
	}
	if ctrl.shutdowns != 1 {
		t.Errorf("controller shutdowns = %d", ctrl.shutdowns)
	}
}

func TestFeedTerminatedEvent(t *testing.T) {
	bus := events.New()
	got := make(chan events.FeedTerminatedEvent, 1)
	unsub := bus.Subscribe(func(e events.FeedTerminatedEvent) { got <- e })
	defer unsub()

	w := New(Options{
		Feed:       logstream.NewReaderFeed(strings.NewReader("one\ntwo\n")),
		Rule:       rules.Default(),
		Controller: &countingController{},
		Bus:        bus,
		Logger:     testLogger(),
	})
	w.Run(context.Background())

	select {
	case ev := <-got:
		if ev.Lines != 2 || ev.Reason != ReasonFeedEnded {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no FeedTerminatedEvent")
	}
}
