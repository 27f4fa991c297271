package broker

import (
	"errors"
	"fmt"
)

// ErrTimeout is wrapped when the broker does not answer in time.
var ErrTimeout = errors.New("timed out waiting for broker")

// connackReasons maps MQTT 3.1 CONNACK return codes to readable text.
var connackReasons = map[byte]string{
	0: "connection successful",
	1: "incorrect protocol version",
	2: "invalid client identifier",
	3: "server unavailable",
	4: "bad username or password",
	5: "not authorised",
}

// ConnackReason returns the readable reason for a CONNACK return code.
func ConnackReason(code byte) string {
	if reason, ok := connackReasons[code]; ok {
		return reason
	}
	return fmt.Sprintf("unknown return code %d", code)
}

// ConnectError is returned when the broker cannot be reached or refuses the
// connection.
type ConnectError struct {
	Host string
	// Code is the CONNACK return code, or 0 for transport failures.
	Code byte
	Err  error
}

func (e *ConnectError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("connect to %s refused: %s", e.Host, ConnackReason(e.Code))
	}
	return fmt.Sprintf("connect to %s: %v", e.Host, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Reason returns the short text shown in the status line.
func (e *ConnectError) Reason() string {
	if e.Code != 0 {
		return ConnackReason(e.Code)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// PublishError is returned when a message could not be delivered after the
// connection was established.
type PublishError struct {
	Topic string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s: %v", e.Topic, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
