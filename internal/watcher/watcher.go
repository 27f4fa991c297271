// Package watcher runs the reader loop that turns log lines into on-air
// transitions.
//
// Each line is matched, applied to the camera table, and evaluated by the
// air controller in a single synchronous step, so publishes always follow the
// order of the feed. When the feed ends the shutdown sequence runs exactly
// once and the loop returns; the feed is never restarted.
package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smazurov/onair/internal/camera"
	"github.com/smazurov/onair/internal/events"
	"github.com/smazurov/onair/internal/logstream"
	"github.com/smazurov/onair/internal/metrics"
	"github.com/smazurov/onair/internal/rules"
)

// Shutdown reasons.
const (
	ReasonFeedEnded = "feed ended"
	ReasonStopped   = "stopped"
	ReasonCancelled = "context cancelled"
)

// Controller is the part of the air controller the loop drives.
type Controller interface {
	Evaluate(ctx context.Context, oldAggregate, newAggregate bool) bool
	Shutdown()
}

// Options configures a Watcher.
type Options struct {
	Feed       logstream.Feed
	Rule       rules.MatchRule
	Table      *camera.Table
	Controller Controller
	Bus        *events.Bus
	Logger     *slog.Logger
	// OnShutdown is called once, after the feed is closed.
	OnShutdown func(reason string)
}

// Watcher consumes a feed until it ends or is stopped.
type Watcher struct {
	feed       logstream.Feed
	rule       rules.MatchRule
	table      *camera.Table
	controller Controller
	bus        *events.Bus
	logger     *slog.Logger
	onShutdown func(reason string)

	active atomic.Bool
	lines  atomic.Uint64

	shutdownOnce sync.Once
	done         chan struct{}
}

// New creates a watcher. Table defaults to an empty table.
func New(opts Options) *Watcher {
	if opts.Table == nil {
		opts.Table = camera.NewTable()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Watcher{
		feed:       opts.Feed,
		rule:       opts.Rule,
		table:      opts.Table,
		controller: opts.Controller,
		bus:        opts.Bus,
		logger:     opts.Logger,
		onShutdown: opts.OnShutdown,
		done:       make(chan struct{}),
	}
}

// Run reads the feed until it ends, Stop is called, or ctx is cancelled.
// Cancelling ctx also closes the feed so a blocked read returns.
func (w *Watcher) Run(ctx context.Context) {
	w.active.Store(true)
	stopOnCancel := context.AfterFunc(ctx, func() {
		w.Stop()
		if err := w.feed.Close(); err != nil {
			w.logger.Debug("Closing feed after cancel", "error", err)
		}
	})
	defer stopOnCancel()

	w.logger.Info("Watching camera activity", "rule", w.rule.Name)

	reason := ReasonFeedEnded
	for {
		if !w.active.Load() {
			reason = ReasonStopped
			break
		}

		line, err := w.feed.ReadLine()
		if line == "" {
			if ctx.Err() != nil {
				reason = ReasonCancelled
			} else if err != nil && !errors.Is(err, io.EOF) {
				w.logger.Warn("Log feed read failed", "error", err)
			}
			break
		}
		if !w.active.Load() {
			reason = ReasonStopped
			break
		}

		w.lines.Add(1)
		metrics.IncFeedLines()
		w.process(ctx, strings.TrimRight(line, "\r\n"))
	}

	w.shutdown(reason)
}

// Stop asks the loop to exit. It is noticed after the current read returns.
func (w *Watcher) Stop() {
	w.active.Store(false)
}

// Done is closed once the shutdown sequence has run.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Lines returns the number of lines read so far.
func (w *Watcher) Lines() uint64 {
	return w.lines.Load()
}

// Table returns the camera table the watcher writes to.
func (w *Watcher) Table() *camera.Table {
	return w.table
}

func (w *Watcher) process(ctx context.Context, line string) {
	ev, outcome := rules.Match(line, w.rule)
	switch outcome {
	case rules.OutcomeNoMatch:
		return
	case rules.OutcomeUnrecognized:
		w.logger.Warn("Unrecognized camera activity", "device", ev.DeviceID, "line", line)
		w.bus.Publish(events.UnrecognizedActivityEvent{
			DeviceID:  ev.DeviceID,
			Line:      line,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	oldAgg, newAgg := w.table.Apply(ev)
	w.logger.Debug("Camera event", "device", ev.DeviceID, "activated", ev.Activated, "aggregate", newAgg)
	w.bus.Publish(events.CameraStateChangedEvent{
		DeviceID:  ev.DeviceID,
		Active:    ev.Activated,
		Tracked:   w.table.Len(),
		Timestamp: time.Now().Format(time.RFC3339),
	})

	w.controller.Evaluate(ctx, oldAgg, newAgg)
}

func (w *Watcher) shutdown(reason string) {
	w.shutdownOnce.Do(func() {
		w.active.Store(false)
		w.logger.Info("Watcher shutting down", "reason", reason, "lines", w.Lines())

		w.controller.Shutdown()
		if err := w.feed.Close(); err != nil {
			w.logger.Debug("Closing feed", "error", err)
		}

		w.bus.Publish(events.FeedTerminatedEvent{
			Lines:     w.Lines(),
			Reason:    reason,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		if w.onShutdown != nil {
			w.onShutdown(reason)
		}
		close(w.done)
	})
}
