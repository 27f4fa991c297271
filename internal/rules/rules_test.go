package rules

import "testing"

func TestSelect(t *testing.T) {
	tests := []struct {
		major int
		want  string
	}{
		{0, "uvc-powerlog"},
		{10, "uvc-powerlog"},
		{11, "uvc-powerlog"},
		{12, "camera-stream"},
		{13, "control-center"},
		{14, "control-center"},
		{26, "control-center"},
	}

	for _, tt := range tests {
		if got := Select(tt.major).Name; got != tt.want {
			t.Errorf("Select(%d) = %q, want %q", tt.major, got, tt.want)
		}
	}
}

func TestHasDeviceCapture(t *testing.T) {
	if !uvcPowerLog.HasDeviceCapture() {
		t.Error("uvc-powerlog extracts device ids")
	}
	if !cameraStream.HasDeviceCapture() {
		t.Error("camera-stream extracts device ids")
	}
	if controlCenter.HasDeviceCapture() {
		t.Error("control-center reports cameras in aggregate")
	}
}

func TestByName(t *testing.T) {
	rule, err := ByName("camera-stream")
	if err != nil {
		t.Fatalf("ByName() error = %v", err)
	}
	if rule.StreamStyle != "ndjson" {
		t.Errorf("StreamStyle = %q, want ndjson", rule.StreamStyle)
	}

	if _, err := ByName("nope"); err == nil {
		t.Error("ByName() should fail for unknown rules")
	}
}

func TestTable(t *testing.T) {
	entries := Table()
	if len(entries) != 3 {
		t.Fatalf("Table() len = %d, want 3", len(entries))
	}

	want := []string{">= 13", "12", "any"}
	for i, e := range entries {
		if e.Versions != want[i] {
			t.Errorf("entry %d versions = %q, want %q", i, e.Versions, want[i])
		}
	}
}

func TestParseMajor(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"14.2.1", 14, false},
		{"12", 12, false},
		{" 13.0\n", 13, false},
		{"", 0, true},
		{"x.1", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseMajor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMajor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMajor(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
