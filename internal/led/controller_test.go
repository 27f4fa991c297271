package led

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNoopController(t *testing.T) {
	ctrl := newNoop(testLogger())

	if err := ctrl.Set("user", true); err != nil {
		t.Errorf("Set() returned error: %v", err)
	}
	if names := ctrl.Available(); len(names) != 0 {
		t.Errorf("Available() = %v, want empty slice", names)
	}
}

func TestSysfsController_Available(t *testing.T) {
	tests := []struct {
		name string
		leds map[string]string
		want []string
	}{
		{"NanoPC-T6 LEDs", map[string]string{"user": "usr_led", "system": "sys_led"}, []string{"system", "user"}},
		{"Orange Pi LEDs", map[string]string{"green": "green_led", "blue": "blue_led"}, []string{"blue", "green"}},
		{"No LEDs", map[string]string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newSysfs(t.TempDir(), tt.leds).Available()
			if !slices.Equal(got, tt.want) {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSysfsController_Set(t *testing.T) {
	root := t.TempDir()
	ledDir := filepath.Join(root, "usr_led")
	if err := os.MkdirAll(ledDir, 0o755); err != nil {
		t.Fatal(err)
	}

	ctrl := newSysfs(root, map[string]string{"user": "usr_led"})

	if err := ctrl.Set("user", true); err != nil {
		t.Fatalf("Set(on): %v", err)
	}
	assertFile(t, filepath.Join(ledDir, "trigger"), "none")
	assertFile(t, filepath.Join(ledDir, "brightness"), "1")

	if err := ctrl.Set("user", false); err != nil {
		t.Fatalf("Set(off): %v", err)
	}
	assertFile(t, filepath.Join(ledDir, "brightness"), "0")
}

func TestSysfsController_SetErrors(t *testing.T) {
	ctrl := newSysfs(t.TempDir(), map[string]string{"user": "usr_led"})

	if err := ctrl.Set("nonexistent", true); err == nil {
		t.Error("Set() with unknown LED should return error")
	}
	if err := ctrl.Set("user", true); err == nil {
		t.Error("Set() with missing sysfs directory should return error")
	}
}

func assertFile(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(data) != want {
		t.Errorf("%s = %q, want %q", filepath.Base(path), data, want)
	}
}
