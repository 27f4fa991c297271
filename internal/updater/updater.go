// Package updater replaces the running binary with the latest GitHub release.
package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/onair/internal/version"
)

// releaseSource is the part of selfupdate.Updater used here.
type releaseSource interface {
	DetectLatest(ctx context.Context, repository selfupdate.Repository) (*selfupdate.Release, bool, error)
	UpdateTo(ctx context.Context, rel *selfupdate.Release, cmdPath string) error
}

// Updater checks for and applies releases.
type Updater struct {
	source  releaseSource
	repo    selfupdate.Repository
	slug    string
	backup  *backupManager
	current string
	logger  *slog.Logger
}

// New creates an updater for opts.Repository.
func New(opts Options, logger *slog.Logger) (*Updater, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Repository == "" {
		opts.Repository = DefaultRepository
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("create GitHub source: %w", err)
	}
	up, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("create updater: %w", err)
	}

	backupDir := opts.BackupDir
	if backupDir == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("resolve home directory: %w", homeErr)
		}
		backupDir = filepath.Join(home, ".cache", "onair", "backup")
	}

	return &Updater{
		source:  up,
		repo:    selfupdate.ParseSlug(opts.Repository),
		slug:    opts.Repository,
		backup:  newBackupManager(backupDir, logger),
		current: version.Version,
		logger:  logger,
	}, nil
}

// Check queries the latest release without downloading it.
func (u *Updater) Check(ctx context.Context) (*Info, error) {
	info, _, err := u.detect(ctx)
	return info, err
}

// Apply downloads the latest release and replaces the running executable.
// The previous binary is backed up first and restored if replacement fails.
// The caller is responsible for restarting.
func (u *Updater) Apply(ctx context.Context) (*Info, error) {
	info, release, err := u.detect(ctx)
	if err != nil {
		return nil, err
	}
	if !info.UpdateAvailable {
		return info, newError(ErrCodeNoUpdate, "already running "+info.CurrentVersion, nil)
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return nil, newError(ErrCodeApplyFailed, "failed to get executable path", err)
	}
	if reason := checkWritePermission(filepath.Dir(exe)); reason != "" {
		return nil, newError(ErrCodeDisabled, reason, nil)
	}

	if err := u.backup.create(exe, u.current); err != nil {
		return nil, newError(ErrCodeBackupFailed, "failed to back up current binary", err)
	}

	u.logger.Info("Applying update", "from", info.CurrentVersion, "to", info.LatestVersion)
	if err := u.source.UpdateTo(ctx, release, exe); err != nil {
		if restoreErr := u.backup.restore(); restoreErr != nil {
			u.logger.Error("Failed to restore backup", "error", restoreErr)
			err = errors.Join(err, restoreErr)
		}
		return nil, newError(ErrCodeApplyFailed, "failed to apply update", err)
	}

	u.logger.Info("Update applied", "version", info.LatestVersion)
	return info, nil
}

func (u *Updater) detect(ctx context.Context) (*Info, *selfupdate.Release, error) {
	release, found, err := u.source.DetectLatest(ctx, u.repo)
	if err != nil {
		return nil, nil, newError(ErrCodeCheckFailed, "failed to check for updates", err)
	}
	if !found {
		return nil, nil, newError(ErrCodeNotFound, fmt.Sprintf("no releases for %s on %s/%s", u.slug, runtime.GOOS, runtime.GOARCH), nil)
	}

	info := &Info{
		CurrentVersion:  u.current,
		LatestVersion:   release.Version(),
		UpdateAvailable: isNewer(u.current, release),
	}
	if info.UpdateAvailable {
		info.ReleaseNotes = release.ReleaseNotes
		info.ReleaseURL = release.URL
		info.PublishedAt = release.PublishedAt
		info.AssetSize = release.AssetByteSize
	}
	return info, release, nil
}

// isNewer treats development builds as always outdated.
func isNewer(current string, latest interface{ GreaterThan(string) bool }) bool {
	return current == "dev" || latest.GreaterThan(current)
}

// checkWritePermission returns a reason when dir is not writable.
func checkWritePermission(dir string) string {
	f, err := os.CreateTemp(dir, ".onair.update.*")
	if err != nil {
		return fmt.Sprintf("no write permission to %s: %v", dir, err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return ""
}
