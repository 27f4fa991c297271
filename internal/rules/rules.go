// Package rules maps unified-log lines to camera events.
//
// Each macOS release reports camera activity differently, so the log
// predicate, stream style, device pattern, and on/off markers are kept in a
// lookup table keyed by the OS major version. A rule is chosen once at
// startup with [Select] and never changes for the life of the process.
package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AggregateDevice is the device identifier used when a rule reports all
// cameras together instead of per device.
const AggregateDevice = "all-cameras"

// MatchRule describes how to recognise camera activity on one platform.
type MatchRule struct {
	Name            string
	PredicateFilter string
	// StreamStyle is passed to `log stream --style` when non-empty.
	StreamStyle string
	OnMarker    string
	OffMarker   string
	// DeviceExtractPattern must match every camera line. Capture group 1,
	// when present, is the device identifier.
	DeviceExtractPattern *regexp.Regexp
}

// HasDeviceCapture reports whether the rule extracts per-device identifiers.
func (r MatchRule) HasDeviceCapture() bool {
	return r.DeviceExtractPattern != nil && r.DeviceExtractPattern.NumSubexp() > 0
}

// entry binds a rule to an inclusive range of OS major versions.
// A zero bound is open.
type entry struct {
	minMajor int
	maxMajor int
	rule     MatchRule
}

func (e entry) covers(major int) bool {
	if e.minMajor != 0 && major < e.minMajor {
		return false
	}
	if e.maxMajor != 0 && major > e.maxMajor {
		return false
	}
	return true
}

var (
	uvcPowerLog = MatchRule{
		Name:                 "uvc-powerlog",
		PredicateFilter:      `subsystem == "com.apple.UVCExtension" and composedMessage contains "Post PowerLog"`,
		OnMarker:             "Start",
		OffMarker:            "Stop",
		DeviceExtractPattern: regexp.MustCompile(`guid:(.+)]`),
	}

	cameraStream = MatchRule{
		Name:                 "camera-stream",
		PredicateFilter:      `eventMessage contains "Post event kCameraStream"`,
		StreamStyle:          "ndjson",
		OnMarker:             "= On;",
		OffMarker:            "= Off;",
		DeviceExtractPattern: regexp.MustCompile(`VDCAssistant_Device_GUID\\" = \\"(.+)\\";`),
	}

	controlCenter = MatchRule{
		Name:                 "control-center",
		PredicateFilter:      `eventMessage contains "Cameras changed to"`,
		StreamStyle:          "ndjson",
		OnMarker:             "to [ControlCenter",
		OffMarker:            "to []",
		DeviceExtractPattern: regexp.MustCompile(`"Cameras changed to \[.*\]",`),
	}
)

// table is consulted in order; the last entry is the fallback.
var table = []entry{
	{minMajor: 13, rule: controlCenter},
	{minMajor: 12, maxMajor: 12, rule: cameraStream},
	{rule: uvcPowerLog},
}

// Default returns the rule used when the OS version is unknown.
func Default() MatchRule {
	return uvcPowerLog
}

// Select returns the rule for the given OS major version.
func Select(major int) MatchRule {
	for _, e := range table {
		if e.covers(major) {
			return e.rule
		}
	}
	return Default()
}

// ByName looks up a rule by its name.
func ByName(name string) (MatchRule, error) {
	for _, e := range table {
		if e.rule.Name == name {
			return e.rule, nil
		}
	}
	return MatchRule{}, fmt.Errorf("unknown rule %q", name)
}

// Entry is a printable view of one table row.
type Entry struct {
	Versions string
	Rule     MatchRule
}

// Table returns the rule table in lookup order.
func Table() []Entry {
	entries := make([]Entry, 0, len(table))
	for _, e := range table {
		entries = append(entries, Entry{Versions: e.versions(), Rule: e.rule})
	}
	return entries
}

func (e entry) versions() string {
	switch {
	case e.minMajor == 0 && e.maxMajor == 0:
		return "any"
	case e.minMajor == e.maxMajor:
		return strconv.Itoa(e.minMajor)
	case e.maxMajor == 0:
		return ">= " + strconv.Itoa(e.minMajor)
	case e.minMajor == 0:
		return "<= " + strconv.Itoa(e.maxMajor)
	default:
		return fmt.Sprintf("%d-%d", e.minMajor, e.maxMajor)
	}
}

// ParseMajor extracts the major component from a version such as "14.2.1".
func ParseMajor(version string) (int, error) {
	major, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0, fmt.Errorf("invalid OS version %q: %w", version, err)
	}
	return n, nil
}
