package led

import (
	"os"
	"path/filepath"
	"testing"
)

func TestForModel(t *testing.T) {
	tests := []struct {
		model     string
		wantSysfs bool
		wantLED   string
	}{
		{"FriendlyElec NanoPC-T6", true, "user"},
		{"Orange Pi 5", true, "blue"},
		{"Raspberry Pi 4 Model B Rev 1.4", true, "act"},
		{"unknown", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			ctrl := forModel(tt.model, t.TempDir(), testLogger())
			_, isSysfs := ctrl.(*sysfs)
			if isSysfs != tt.wantSysfs {
				t.Fatalf("sysfs = %v, want %v", isSysfs, tt.wantSysfs)
			}
			if tt.wantLED == "" {
				return
			}
			found := false
			for _, name := range ctrl.Available() {
				if name == tt.wantLED {
					found = true
				}
			}
			if !found {
				t.Errorf("Available() = %v, missing %q", ctrl.Available(), tt.wantLED)
			}
		})
	}
}

func TestDetectBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model")
	if err := os.WriteFile(path, []byte("Raspberry Pi 4\x00"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := detectBoard(path); got != "Raspberry Pi 4" {
		t.Errorf("detectBoard() = %q", got)
	}
	if got := detectBoard(filepath.Join(t.TempDir(), "missing")); got != "unknown" {
		t.Errorf("detectBoard(missing) = %q, want unknown", got)
	}
}

func TestNewNeverNil(t *testing.T) {
	ctrl := New(testLogger())
	if ctrl == nil {
		t.Fatal("New() returned nil")
	}
	if ctrl.Available() == nil {
		t.Error("Available() returned nil")
	}
}
