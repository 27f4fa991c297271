// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// Loggers are plain [log/slog] loggers tagged with a "module" attribute.
// Output goes to stdout and, on hosts running journald, to the systemd
// journal as well. Tests and tools can redirect output with Config.Output.
//
// # Usage
//
// Initialize once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"broker":  "debug",
//			"watcher": "warn",
//		},
//	})
//
// Then per package:
//
//	logger := logging.GetLogger("broker")
//	logger.Info("Published", "topic", topic, "on_air", true)
//
// # Runtime changes
//
// Every module logger owns a [slog.LevelVar]. [SetLevels] updates them in
// place, which is how a config file reload changes verbosity without
// restarting the watcher.
//
// # Journal
//
// Entries carry SYSLOG_IDENTIFIER=onair and upper-cased attributes:
//
//	journalctl -t onair -f
//	journalctl -t onair MODULE=broker
//
// Journal availability is checked via [github.com/coreos/go-systemd/v22/journal.Enabled].
//
// # Configuration
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	broker = "debug"
package logging
