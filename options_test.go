package main

import (
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/onair/internal/broker"
	"github.com/smazurov/onair/internal/logging"
	"github.com/smazurov/onair/internal/logstream"
	"github.com/smazurov/onair/internal/rules"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultOptions() *Options {
	return &Options{
		MqttHost:               broker.DefaultHost,
		MqttPort:               broker.DefaultPort,
		MqttTopic:              broker.DefaultTopic,
		MqttProtocolVersion:    3,
		MqttRetain:             true,
		MqttConnectTimeout:     "5s",
		MqttAckTimeout:         "5s",
		IndicatorBlinkInterval: "1s",
		FeaturesLedName:        "act",
		LoggingLevel:           "info",
		LoggingFormat:          "text",
	}
}

func TestBrokerConfig(t *testing.T) {
	o := defaultOptions()
	o.MqttUser = "bob"
	o.MqttPassword = "secret"
	o.MqttQos = 1
	o.MqttWaitForAck = true
	o.MqttAckTimeout = "250ms"

	cfg, err := o.brokerConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Host != broker.DefaultHost || cfg.Port != 1884 || cfg.Username != "bob" || cfg.Password != "secret" {
		t.Errorf("connection fields: %+v", cfg)
	}
	if cfg.QoS != 1 || !cfg.Retain || !cfg.WaitForAck || cfg.ProtocolVersion != 3 {
		t.Errorf("publish fields: %+v", cfg)
	}
	if cfg.AckTimeout != 250*time.Millisecond || cfg.ConnectTimeout != 5*time.Second {
		t.Errorf("timeouts: %v / %v", cfg.ConnectTimeout, cfg.AckTimeout)
	}
}

func TestBrokerConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		want   string
	}{
		{"bad timeout", func(o *Options) { o.MqttConnectTimeout = "soon" }, "mqtt.connect_timeout"},
		{"negative timeout", func(o *Options) { o.MqttAckTimeout = "-1s" }, "mqtt.ack_timeout"},
		{"qos out of range", func(o *Options) { o.MqttQos = 3 }, "mqtt.qos"},
		{"bad protocol", func(o *Options) { o.MqttProtocolVersion = 5 }, "protocol version"},
		{"empty host", func(o *Options) { o.MqttHost = "" }, "host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			tt.mutate(o)
			_, err := o.brokerConfig()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestBrokerFlagAliases(t *testing.T) {
	o := defaultOptions()
	root := &cobra.Command{Use: "onair", Run: func(*cobra.Command, []string) {}}
	flags := root.PersistentFlags()
	flags.StringVar(&o.MqttHost, "mqtt-host", o.MqttHost, "")
	flags.IntVar(&o.MqttPort, "mqtt-port", o.MqttPort, "")
	flags.StringVar(&o.MqttTopic, "mqtt-topic", o.MqttTopic, "")
	flags.StringVar(&o.MqttUser, "mqtt-user", o.MqttUser, "")
	flags.StringVar(&o.MqttPassword, "mqtt-password", o.MqttPassword, "")
	root.SetGlobalNormalizationFunc(normalizeFlagName)

	root.SetArgs([]string{"--host", "hub.lan", "--port", "1883", "--topic", "a/b", "--user", "bob", "--mqtt-password", "pw"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	cfg, err := o.brokerConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Host != "hub.lan" || cfg.Port != 1883 || cfg.Topic != "a/b" || cfg.Username != "bob" || cfg.Password != "pw" {
		t.Errorf("broker config = %+v", cfg)
	}
	if f := root.PersistentFlags().Lookup("host"); f == nil || f.Name != "mqtt-host" || !f.Changed {
		t.Errorf("--host should resolve to a changed mqtt-host flag, got %+v", f)
	}
}

func TestRuleSelection(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"11.7", rules.Default().Name},
		{"12.6", rules.Select(12).Name},
		{"14.2.1", rules.Select(14).Name},
	}
	for _, tt := range tests {
		o := defaultOptions()
		o.WatcherOsVersion = tt.version
		rule, err := o.rule(testLogger())
		if err != nil {
			t.Fatal(err)
		}
		if rule.Name != tt.want {
			t.Errorf("os_version %s: rule %s, want %s", tt.version, rule.Name, tt.want)
		}
	}

	o := defaultOptions()
	o.WatcherOsVersion = "sonoma"
	if _, err := o.rule(testLogger()); err == nil {
		t.Error("invalid os_version should fail")
	}
}

func TestCommand(t *testing.T) {
	o := defaultOptions()
	rule := rules.Default()

	args, err := o.command(rule)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(args, logstream.Command(rule)) {
		t.Errorf("default command = %v", args)
	}

	o.WatcherCommand = `cat "/tmp/captured log.txt"`
	args, err = o.command(rule)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(args, []string{"cat", "/tmp/captured log.txt"}) {
		t.Errorf("override command = %v", args)
	}

	o.WatcherCommand = `cat "unterminated`
	if _, err := o.command(rule); err == nil {
		t.Error("unclosed quote should fail")
	}
}

func TestLoggingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onair.toml")
	if err := os.WriteFile(path, []byte("[logging.modules]\nbroker = \"debug\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	o := defaultOptions()
	o.Config = path
	o.LoggingFormat = "json"
	cfg := o.loggingConfig()
	if cfg.Level != "info" || cfg.Format != "json" || cfg.Modules["broker"] != "debug" {
		t.Errorf("logging config = %+v", cfg)
	}

	o.Debug = true
	if got := o.loggingConfig().Level; got != "debug" {
		t.Errorf("--debug level = %q", got)
	}
}

func TestBlinkInterval(t *testing.T) {
	o := defaultOptions()
	o.IndicatorBlinkInterval = "500ms"
	if d, err := o.blinkInterval(); err != nil || d != 500*time.Millisecond {
		t.Errorf("blinkInterval = %v, %v", d, err)
	}
	o.IndicatorBlinkInterval = ""
	if d, err := o.blinkInterval(); err != nil || d != time.Second {
		t.Errorf("empty blinkInterval = %v, %v", d, err)
	}
}

func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestAppRunsUntilFeedEnds(t *testing.T) {
	logging.Initialize(logging.Config{Level: "error", Output: io.Discard})

	o := defaultOptions()
	o.Config = filepath.Join(t.TempDir(), "onair.toml")
	o.MqttHost = "127.0.0.1"
	o.MqttPort = closedPort(t)
	o.MqttConnectTimeout = "1s"
	o.WatcherOsVersion = "11"
	o.WatcherCommand = `printf '%s\n' '[guid:A] Post PowerLog = Start;' '[guid:A] Post PowerLog = Stop;'`
	o.IndicatorBlinkInterval = "10ms"

	a := newApp(o, &cobra.Command{Use: "onair"})
	if err := a.start(); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		a.wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("app did not shut down after the feed ended")
	}

	if got := a.watcher.Lines(); got != 2 {
		t.Errorf("lines = %d, want 2", got)
	}
	if a.watcher.Table().Len() != 1 {
		t.Errorf("cameras = %v", a.watcher.Table().Snapshot())
	}
	if _, err := os.Stat(o.Config); err != nil {
		t.Errorf("default config not created: %v", err)
	}

	// A late signal after the feed already ended must not block.
	a.stop()
}

func TestAppStartFailures(t *testing.T) {
	logging.Initialize(logging.Config{Level: "error", Output: io.Discard})

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"missing log binary", func(o *Options) { o.WatcherCommand = "/nonexistent/onair-log-binary" }},
		{"invalid broker", func(o *Options) { o.MqttPort = 0 }},
		{"invalid blink interval", func(o *Options) { o.IndicatorBlinkInterval = "fast" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			o.Config = filepath.Join(t.TempDir(), "onair.toml")
			o.WatcherOsVersion = "11"
			o.WatcherCommand = "true"
			tt.mutate(o)

			a := newApp(o, &cobra.Command{Use: "onair"})
			if err := a.start(); err == nil {
				a.stop()
				t.Fatal("start should fail")
			}
		})
	}
}
