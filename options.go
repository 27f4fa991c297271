package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/smazurov/onair/internal/broker"
	"github.com/smazurov/onair/internal/config"
	"github.com/smazurov/onair/internal/logging"
	"github.com/smazurov/onair/internal/logstream"
	"github.com/smazurov/onair/internal/rules"
)

// flagAliases accepts the short broker flag names (--host, --port, --topic,
// --user, --password) for the [mqtt] options.
var flagAliases = map[string]string{
	"host":     "mqtt-host",
	"port":     "mqtt-port",
	"topic":    "mqtt-topic",
	"user":     "mqtt-user",
	"password": "mqtt-password",
}

func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if alias, ok := flagAliases[name]; ok {
		name = alias
	}
	return pflag.NormalizedName(name)
}

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"~/.onair.toml"`
	Debug  bool   `help:"Enable debug logging" short:"d" toml:"debug" env:"DEBUG"`

	// Broker settings
	MqttHost            string `help:"MQTT broker host" default:"futurehome-smarthub.local" toml:"mqtt.host" env:"MQTT_HOST"`
	MqttPort            int    `help:"MQTT broker port" default:"1884" toml:"mqtt.port" env:"MQTT_PORT"`
	MqttTopic           string `help:"Topic the on-air state is published to" default:"pt:j1/mt:cmd/rt:dev/rn:zw/ad:1/sv:out_bin_switch/ad:19_0" toml:"mqtt.topic" env:"MQTT_TOPIC"`
	MqttUser            string `help:"MQTT username" toml:"mqtt.user" env:"MQTT_USER"`
	MqttPassword        string `help:"MQTT password" toml:"mqtt.password" env:"MQTT_PASSWORD"`
	MqttProtocolVersion int    `help:"MQTT protocol version (3 = 3.1, 4 = 3.1.1)" default:"3" toml:"mqtt.protocol_version" env:"MQTT_PROTOCOL_VERSION"`
	MqttQos             int    `help:"Publish QoS" default:"0" toml:"mqtt.qos" env:"MQTT_QOS"`
	MqttRetain          bool   `help:"Publish with the retain flag" default:"true" toml:"mqtt.retain" env:"MQTT_RETAIN"`
	MqttWaitForAck      bool   `help:"Wait for the broker to accept each publish" toml:"mqtt.wait_for_ack" env:"MQTT_WAIT_FOR_ACK"`
	MqttConnectTimeout  string `help:"Broker connect timeout" default:"5s" toml:"mqtt.connect_timeout" env:"MQTT_CONNECT_TIMEOUT"`
	MqttAckTimeout      string `help:"Publish acknowledgement timeout" default:"5s" toml:"mqtt.ack_timeout" env:"MQTT_ACK_TIMEOUT"`

	// Watcher settings
	WatcherOsVersion string `help:"macOS version used to pick the log rule, detected when empty" toml:"watcher.os_version" env:"WATCHER_OS_VERSION"`
	WatcherCommand   string `help:"Command that replaces log stream" toml:"watcher.command" env:"WATCHER_COMMAND"`

	// Indicator settings
	IndicatorBlinkInterval string `help:"Indicator blink period while on air" default:"1s" toml:"indicator.blink_interval" env:"INDICATOR_BLINK_INTERVAL"`
	FeaturesLedControl     bool   `help:"Blink a board LED while on air" toml:"features.led_control" env:"FEATURES_LED_CONTROL"`
	FeaturesLedName        string `help:"Board LED to blink" default:"act" toml:"features.led_name" env:"FEATURES_LED_NAME"`

	// API settings
	ApiListen   string `help:"Status API listen address, disabled when empty" toml:"api.listen" env:"API_LISTEN"`
	ApiUsername string `help:"Basic auth username for changing state" toml:"api.username" env:"API_USERNAME"`
	ApiPassword string `help:"Basic auth password for changing state" toml:"api.password" env:"API_PASSWORD"`

	// Update settings
	UpdateRepository string `help:"GitHub repository for self-update" default:"smazurov/onair" toml:"update.repository" env:"UPDATE_REPOSITORY"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
}

// brokerConfig builds and validates the publisher settings.
func (o *Options) brokerConfig() (broker.Config, error) {
	cfg := broker.DefaultConfig()
	cfg.Host = o.MqttHost
	cfg.Port = o.MqttPort
	cfg.Topic = o.MqttTopic
	cfg.Username = o.MqttUser
	cfg.Password = o.MqttPassword
	cfg.Retain = o.MqttRetain
	cfg.WaitForAck = o.MqttWaitForAck

	var errs []error
	if o.MqttProtocolVersion < 0 {
		errs = append(errs, fmt.Errorf("mqtt.protocol_version: %d is negative", o.MqttProtocolVersion))
	} else {
		cfg.ProtocolVersion = uint(o.MqttProtocolVersion)
	}
	if o.MqttQos < 0 || o.MqttQos > 2 {
		errs = append(errs, fmt.Errorf("mqtt.qos: %d out of range", o.MqttQos))
	} else {
		cfg.QoS = byte(o.MqttQos)
	}

	var err error
	if cfg.ConnectTimeout, err = parseDuration("mqtt.connect_timeout", o.MqttConnectTimeout, broker.DefaultConnectTimeout); err != nil {
		errs = append(errs, err)
	}
	if cfg.AckTimeout, err = parseDuration("mqtt.ack_timeout", o.MqttAckTimeout, broker.DefaultAckTimeout); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, cfg.Validate()
}

// blinkInterval returns the indicator period.
func (o *Options) blinkInterval() (time.Duration, error) {
	return parseDuration("indicator.blink_interval", o.IndicatorBlinkInterval, time.Second)
}

// rule picks the log rule: the configured OS version wins over detection,
// and hosts where detection fails get the default rule.
func (o *Options) rule(logger *slog.Logger) (rules.MatchRule, error) {
	if o.WatcherOsVersion != "" {
		major, err := rules.ParseMajor(o.WatcherOsVersion)
		if err != nil {
			return rules.MatchRule{}, fmt.Errorf("watcher.os_version: %w", err)
		}
		return rules.Select(major), nil
	}

	major, err := rules.DetectMajor()
	if err != nil {
		logger.Warn("Could not detect macOS version, using default rule", "error", err)
		return rules.Default(), nil
	}
	return rules.Select(major), nil
}

// command returns the feed subprocess for rule.
func (o *Options) command(rule rules.MatchRule) ([]string, error) {
	if o.WatcherCommand != "" {
		args, err := logstream.ParseCommand(o.WatcherCommand)
		if err != nil {
			return nil, fmt.Errorf("watcher.command: %w", err)
		}
		return args, nil
	}
	return logstream.Command(rule), nil
}

// loggingConfig merges the global settings with [logging.modules] from the
// config file. --debug forces the global level to debug.
func (o *Options) loggingConfig() logging.Config {
	cfg := config.LoadLoggingConfig(o.Config)
	cfg.Level = o.LoggingLevel
	cfg.Format = o.LoggingFormat
	if o.Debug {
		cfg.Level = "debug"
	}
	return cfg
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return fallback, fmt.Errorf("%s: %s must be positive", key, value)
	}
	return d, nil
}
