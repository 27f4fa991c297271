package led

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Controller using the Linux sysfs LED interface.
type sysfs struct {
	root string
	leds map[string]string // logical name -> sysfs name

	mu     sync.Mutex
	manual map[string]bool // LEDs whose trigger was already set to "none"
}

func newSysfs(root string, leds map[string]string) *sysfs {
	return &sysfs{
		root:   root,
		leds:   leds,
		manual: make(map[string]bool),
	}
}

// Set writes the LED brightness. The kernel trigger is cleared on first use
// so the LED stays under manual control.
func (s *sysfs) Set(name string, on bool) error {
	sysfsName, ok := s.leds[name]
	if !ok {
		return fmt.Errorf("LED %q not supported on this board", name)
	}

	ledPath := filepath.Join(s.root, sysfsName)
	if _, err := os.Stat(ledPath); os.IsNotExist(err) {
		return fmt.Errorf("LED %q not found at %s", name, ledPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.manual[name] {
		if err := os.WriteFile(filepath.Join(ledPath, "trigger"), []byte("none"), 0o644); err != nil {
			return fmt.Errorf("failed to set LED trigger: %w", err)
		}
		s.manual[name] = true
	}

	brightness := "0"
	if on {
		brightness = "1"
	}
	if err := os.WriteFile(filepath.Join(ledPath, "brightness"), []byte(brightness), 0o644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}
	return nil
}

// Available returns the supported LED names in sorted order.
func (s *sysfs) Available() []string {
	names := make([]string, 0, len(s.leds))
	for name := range s.leds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
