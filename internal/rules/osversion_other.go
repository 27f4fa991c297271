//go:build !darwin

package rules

import "errors"

// ErrUnsupportedPlatform is returned when the OS version cannot be mapped to
// a rule. Callers fall back to Default or an explicit override.
var ErrUnsupportedPlatform = errors.New("camera log rules are only defined for macOS")

// DetectMajor returns ErrUnsupportedPlatform on non-macOS hosts.
func DetectMajor() (int, error) {
	return 0, ErrUnsupportedPlatform
}
