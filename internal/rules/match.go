package rules

import (
	"strings"

	"github.com/smazurov/onair/internal/camera"
)

// Outcome classifies the result of matching one line.
type Outcome int

const (
	// OutcomeNoMatch means the line is not camera related.
	OutcomeNoMatch Outcome = iota
	// OutcomeEvent means the line produced a camera event.
	OutcomeEvent
	// OutcomeUnrecognized means the line matched the device pattern but
	// carried neither marker.
	OutcomeUnrecognized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEvent:
		return "event"
	case OutcomeUnrecognized:
		return "unrecognized"
	default:
		return "no_match"
	}
}

// Match applies rule to a single log line.
// The returned event is only meaningful when the outcome is OutcomeEvent.
func Match(line string, rule MatchRule) (camera.Event, Outcome) {
	if rule.DeviceExtractPattern == nil {
		return camera.Event{}, OutcomeNoMatch
	}

	groups := rule.DeviceExtractPattern.FindStringSubmatch(line)
	if groups == nil {
		return camera.Event{}, OutcomeNoMatch
	}

	device := AggregateDevice
	if len(groups) > 1 {
		device = groups[1]
	}

	switch {
	case strings.Contains(line, rule.OnMarker):
		return camera.Event{DeviceID: device, Activated: true}, OutcomeEvent
	case strings.Contains(line, rule.OffMarker):
		return camera.Event{DeviceID: device, Activated: false}, OutcomeEvent
	default:
		return camera.Event{DeviceID: device}, OutcomeUnrecognized
	}
}
