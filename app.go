package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/spf13/cobra"

	"github.com/smazurov/onair/internal/air"
	"github.com/smazurov/onair/internal/api"
	"github.com/smazurov/onair/internal/broker"
	"github.com/smazurov/onair/internal/config"
	"github.com/smazurov/onair/internal/events"
	"github.com/smazurov/onair/internal/led"
	"github.com/smazurov/onair/internal/logging"
	"github.com/smazurov/onair/internal/logstream"
	"github.com/smazurov/onair/internal/metrics"
	"github.com/smazurov/onair/internal/metrics/exporters"
	"github.com/smazurov/onair/internal/systemd"
	"github.com/smazurov/onair/internal/watcher"
)

// app owns the running daemon.
type app struct {
	opts   *Options
	root   *cobra.Command
	logger *slog.Logger

	cancel     context.CancelFunc
	watcher    *watcher.Watcher
	publisher  *broker.Publisher
	recorder   *metrics.Recorder
	server     *api.Server
	cfgWatcher *config.Watcher[Options]
	notifier   *systemd.Notifier
	unsubs     []func()

	cleanupOnce sync.Once
	stopped     chan struct{}
}

func newApp(opts *Options, root *cobra.Command) *app {
	return &app{
		opts:     opts,
		root:     root,
		logger:   logging.GetLogger("main"),
		notifier: systemd.NewNotifier(logging.GetLogger("main")),
		stopped:  make(chan struct{}),
	}
}

// start builds the pipeline and launches the log stream. An error means the
// process should exit non-zero.
func (a *app) start() error {
	if created, err := config.EnsureFile(a.opts.Config); err != nil {
		a.logger.Warn("Could not create default config", "path", a.opts.Config, "error", err)
	} else if created {
		a.logger.Info("Created default config", "path", config.ExpandPath(a.opts.Config))
	}

	brokerCfg, err := a.opts.brokerConfig()
	if err != nil {
		return err
	}
	interval, err := a.opts.blinkInterval()
	if err != nil {
		return err
	}
	rule, err := a.opts.rule(a.logger)
	if err != nil {
		return err
	}
	args, err := a.opts.command(rule)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	stream, err := logstream.Start(ctx, args, logging.GetLogger("logstream"))
	if err != nil {
		cancel()
		return err
	}

	bus := events.New()
	a.recorder = metrics.NewRecorder(bus, logging.GetLogger("metrics"))
	a.recorder.Start()

	var ledController led.Controller
	if a.opts.FeaturesLedControl {
		ledController = led.New(logging.GetLogger("led"))
	}
	blinker := led.NewBlinker(interval, ledController, a.opts.FeaturesLedName, logging.GetLogger("led"))

	a.publisher = broker.NewPublisher(brokerCfg, logging.GetLogger("broker"), broker.WithBus(bus))
	controller := air.NewController(a.publisher, blinker, bus, logging.GetLogger("air"))

	a.watcher = watcher.New(watcher.Options{
		Feed:       stream,
		Rule:       rule,
		Controller: controller,
		Bus:        bus,
		Logger:     logging.GetLogger("watcher"),
	})

	a.unsubs = append(a.unsubs, bus.Subscribe(func(e events.AirStateChangedEvent) {
		a.notifier.Status(air.State(e.OnAir).String())
	}))

	a.startConfigWatcher()
	a.startAPI(controller, blinker, rule.Name, bus)

	go a.probeBroker(ctx)
	go a.watcher.Run(ctx)

	a.notifier.Ready()
	a.notifier.Status(air.OffAir.String())
	a.logger.Info("onair started", "rule", rule.Name, "broker", brokerCfg.URL(), "topic", brokerCfg.Topic)
	return nil
}

// wait blocks until the feed ends or stop is called, then cleans up.
func (a *app) wait() {
	<-a.watcher.Done()
	a.cleanup()
}

// stop asks the pipeline to shut down and waits for cleanup.
func (a *app) stop() {
	a.logger.Info("Shutting down")
	if a.cancel != nil {
		a.cancel()
	}
	if a.watcher == nil {
		a.cleanup()
		return
	}
	<-a.stopped
}

func (a *app) cleanup() {
	a.cleanupOnce.Do(func() {
		defer close(a.stopped)
		a.notifier.Stopping()

		if a.cancel != nil {
			a.cancel()
		}
		if a.server != nil {
			if err := a.server.Stop(); err != nil {
				a.logger.Warn("Error stopping API server", "error", err)
			}
		}
		if a.cfgWatcher != nil {
			if err := a.cfgWatcher.Stop(); err != nil {
				a.logger.Debug("Error stopping config watcher", "error", err)
			}
		}
		for _, unsub := range a.unsubs {
			unsub()
		}
		if a.recorder != nil {
			a.recorder.Stop()
		}
		if a.publisher != nil {
			a.publisher.Close()
		}
		a.logger.Info("Shutdown complete")
	})
}

// probeBroker connects once at startup so the broker status is known before
// the first transition.
func (a *app) probeBroker(ctx context.Context) {
	if err := a.publisher.Probe(ctx); err != nil {
		a.logger.Debug("Broker probe failed", "error", err)
	}
}

// startConfigWatcher applies broker settings and log levels when the config
// file changes. The log stream and rule are not reloaded.
func (a *app) startConfigWatcher() {
	loader := func(path string) (Options, error) {
		reloaded := *a.opts
		reloaded.Config = path
		err := config.LoadConfig(&reloaded, a.root)
		return reloaded, err
	}

	a.cfgWatcher = config.NewConfigWatcher(a.opts.Config, loader, logging.GetLogger("config"))
	a.cfgWatcher.OnReload(func(o Options) {
		cfg, err := o.brokerConfig()
		if err != nil {
			a.logger.Warn("Ignoring invalid broker settings", "error", err)
		} else {
			a.publisher.UpdateConfig(cfg)
		}

		lc := o.loggingConfig()
		logging.SetLevels(lc.Level, lc.Modules)
	})
	if err := a.cfgWatcher.Start(); err != nil {
		a.logger.Warn("Config hot reload disabled", "error", err)
		a.cfgWatcher = nil
	}
}

func (a *app) startAPI(controller *air.Controller, blinker *led.Blinker, rule string, bus *events.Bus) {
	if a.opts.ApiListen == "" {
		return
	}

	a.server = api.NewServer(&api.Options{
		AuthUsername:      a.opts.ApiUsername,
		AuthPassword:      a.opts.ApiPassword,
		Air:               controller,
		Broker:            a.publisher,
		Indicator:         blinker,
		Cameras:           a.watcher.Table(),
		Lines:             a.watcher.Lines,
		Rule:              rule,
		EventBus:          bus,
		PrometheusHandler: exporters.HTTPHandler(),
		Logger:            logging.GetLogger("api"),
	})

	go func() {
		if err := a.server.Start(a.opts.ApiListen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("API server failed", "addr", a.opts.ApiListen, "error", err)
		}
	}()
}
