package events

// Event type constants for kelindar/event.
const (
	TypeCameraStateChanged uint32 = iota + 1
	TypeAirStateChanged
	TypeBrokerStatus
	TypeFeedTerminated
	TypeUnrecognizedActivity
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// CameraStateChangedEvent is published for every camera event applied to the
// state table, whether or not the aggregate changed.
type CameraStateChangedEvent struct {
	DeviceID  string `json:"device_id"`
	Active    bool   `json:"active"`
	Tracked   int    `json:"tracked"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for CameraStateChangedEvent.
func (e CameraStateChangedEvent) Type() uint32 { return TypeCameraStateChanged }

// AirStateChangedEvent is published on every on-air transition.
type AirStateChangedEvent struct {
	OnAir     bool   `json:"on_air"`
	Source    string `json:"source"` // camera, manual, shutdown
	Published bool   `json:"published"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for AirStateChangedEvent.
func (e AirStateChangedEvent) Type() uint32 { return TypeAirStateChanged }

// BrokerStatusEvent is published whenever the broker connection status changes.
type BrokerStatusEvent struct {
	Connected bool   `json:"connected"`
	Reason    string `json:"reason,omitempty"`
	Host      string `json:"host"`
	User      string `json:"user,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for BrokerStatusEvent.
func (e BrokerStatusEvent) Type() uint32 { return TypeBrokerStatus }

// FeedTerminatedEvent is published once when the log feed ends.
type FeedTerminatedEvent struct {
	Lines     uint64 `json:"lines"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for FeedTerminatedEvent.
func (e FeedTerminatedEvent) Type() uint32 { return TypeFeedTerminated }

// UnrecognizedActivityEvent is published when a line matches the device
// pattern but carries neither the on nor the off marker.
type UnrecognizedActivityEvent struct {
	DeviceID  string `json:"device_id"`
	Line      string `json:"line"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for UnrecognizedActivityEvent.
func (e UnrecognizedActivityEvent) Type() uint32 { return TypeUnrecognizedActivity }
