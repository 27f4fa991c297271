package broker

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Defaults match a Futurehome Smarthub with a Z-Wave wall plug on node 19.
const (
	DefaultHost            = "futurehome-smarthub.local"
	DefaultPort            = 1884
	DefaultTopic           = "pt:j1/mt:cmd/rt:dev/rn:zw/ad:1/sv:out_bin_switch/ad:19_0"
	DefaultProtocolVersion = 3
	DefaultConnectTimeout  = 5 * time.Second
	DefaultAckTimeout      = 5 * time.Second
)

// Config describes how to reach the broker and where to publish.
// Username and Password are plain scalars by the time they get here.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Topic    string
	ClientID string

	// ProtocolVersion is 3 (MQTT 3.1) or 4 (MQTT 3.1.1).
	ProtocolVersion uint
	QoS             byte
	Retain          bool
	WaitForAck      bool
	ConnectTimeout  time.Duration
	AckTimeout      time.Duration
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		Topic:           DefaultTopic,
		ProtocolVersion: DefaultProtocolVersion,
		Retain:          true,
		ConnectTimeout:  DefaultConnectTimeout,
		AckTimeout:      DefaultAckTimeout,
	}
}

// Validate reports configuration errors that would make every publish fail.
func (c Config) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("broker host is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("broker port %d out of range", c.Port))
	}
	if c.Topic == "" {
		errs = append(errs, errors.New("topic is required"))
	}
	if c.ProtocolVersion != 3 && c.ProtocolVersion != 4 {
		errs = append(errs, fmt.Errorf("unsupported MQTT protocol version %d", c.ProtocolVersion))
	}
	if c.QoS > 2 {
		errs = append(errs, fmt.Errorf("invalid QoS %d", c.QoS))
	}
	return errors.Join(errs...)
}

// URL returns the broker address in paho's scheme://host:port form.
func (c Config) URL() string {
	return "tcp://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// withDefaults fills zero durations and a missing client id.
func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.AckTimeout <= 0 {
		c.AckTimeout = DefaultAckTimeout
	}
	if c.ProtocolVersion == 0 {
		c.ProtocolVersion = DefaultProtocolVersion
	}
	if c.ClientID == "" {
		// MQTT 3.1 limits client ids to 23 bytes.
		c.ClientID = "onair-" + uuid.NewString()[:8]
	}
	return c
}
