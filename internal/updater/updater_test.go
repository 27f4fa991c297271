package updater

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/creativeprojects/go-selfupdate"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSource struct {
	found bool
	err   error
}

func (f *fakeSource) DetectLatest(context.Context, selfupdate.Repository) (*selfupdate.Release, bool, error) {
	return nil, f.found, f.err
}

func (f *fakeSource) UpdateTo(context.Context, *selfupdate.Release, string) error {
	return errors.New("unexpected UpdateTo")
}

func newTestUpdater(t *testing.T, src releaseSource) *Updater {
	t.Helper()
	return &Updater{
		source:  src,
		repo:    selfupdate.ParseSlug(DefaultRepository),
		slug:    DefaultRepository,
		backup:  newBackupManager(t.TempDir(), testLogger()),
		current: "v1.0.0",
		logger:  testLogger(),
	}
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
		code string
	}{
		{"source failure", &fakeSource{err: errors.New("rate limited")}, ErrCodeCheckFailed},
		{"no releases", &fakeSource{found: false}, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newTestUpdater(t, tt.src)

			_, err := u.Check(context.Background())
			var upErr *Error
			if !errors.As(err, &upErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if upErr.Code != tt.code {
				t.Errorf("code = %s, want %s", upErr.Code, tt.code)
			}

			if _, err := u.Apply(context.Background()); !errors.As(err, &upErr) || upErr.Code != tt.code {
				t.Errorf("Apply error = %v, want code %s", err, tt.code)
			}
		})
	}
}

type fixedVersion bool

func (f fixedVersion) GreaterThan(string) bool { return bool(f) }

func TestIsNewer(t *testing.T) {
	tests := []struct {
		current string
		greater bool
		want    bool
	}{
		{"dev", false, true},
		{"v1.0.0", true, true},
		{"v1.0.0", false, false},
	}
	for _, tt := range tests {
		if got := isNewer(tt.current, fixedVersion(tt.greater)); got != tt.want {
			t.Errorf("isNewer(%q, %v) = %v, want %v", tt.current, tt.greater, got, tt.want)
		}
	}
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("boom")
	err := newError(ErrCodeApplyFailed, "failed to apply update", cause)

	if got := err.Error(); got != "APPLY_FAILED: failed to apply update: boom" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should unwrap")
	}
	if got := newError(ErrCodeNoUpdate, "already running v1", nil).Error(); got != "NO_UPDATE: already running v1" {
		t.Errorf("Error() = %q", got)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "onair")
	if err := os.WriteFile(exe, []byte("old binary"), 0o755); err != nil {
		t.Fatal(err)
	}

	backupDir := filepath.Join(dir, "backup")
	m := newBackupManager(backupDir, testLogger())
	if err := m.restore(); err == nil {
		t.Fatal("restore without a backup should fail")
	}
	if err := m.create(exe, "v1.0.0"); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(exe, []byte("broken new binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := m.restore(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(exe)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old binary" {
		t.Errorf("restored content = %q", data)
	}

	reloaded := newBackupManager(backupDir, testLogger())
	if got := reloaded.version(); got != "v1.0.0" {
		t.Errorf("reloaded backup version = %q", got)
	}
}

func TestCheckWritePermission(t *testing.T) {
	if reason := checkWritePermission(t.TempDir()); reason != "" {
		t.Errorf("temp dir should be writable: %s", reason)
	}
	if reason := checkWritePermission(filepath.Join(t.TempDir(), "missing")); reason == "" {
		t.Error("missing directory should not be writable")
	}
}
