//go:build darwin

package rules

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DetectMajor returns the running macOS major version.
func DetectMajor() (int, error) {
	version, err := unix.Sysctl("kern.osproductversion")
	if err != nil {
		return 0, fmt.Errorf("failed to read kern.osproductversion: %w", err)
	}
	return ParseMajor(version)
}
