package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	backupFilename     = "onair.backup"
	backupInfoFilename = "backup.json"
)

type backupInfo struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	ExecPath  string    `json:"exec_path"`
}

// backupManager keeps one copy of the previous binary.
type backupManager struct {
	mu     sync.Mutex
	dir    string
	info   *backupInfo
	logger *slog.Logger
}

func newBackupManager(dir string, logger *slog.Logger) *backupManager {
	m := &backupManager{dir: dir, logger: logger}
	m.load()
	return m
}

func (m *backupManager) load() {
	data, err := os.ReadFile(filepath.Join(m.dir, backupInfoFilename))
	if err != nil {
		return
	}
	var info backupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		m.logger.Warn("Failed to parse backup info", "error", err)
		return
	}
	if _, err := os.Stat(filepath.Join(m.dir, backupFilename)); err != nil {
		m.logger.Warn("Backup file missing", "dir", m.dir)
		return
	}
	m.info = &info
}

func (m *backupManager) create(execPath, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	if err := copyFile(execPath, filepath.Join(m.dir, backupFilename)); err != nil {
		return err
	}

	info := backupInfo{Version: version, CreatedAt: time.Now(), ExecPath: execPath}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal backup info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.dir, backupInfoFilename), data, 0o644); err != nil {
		return fmt.Errorf("write backup info: %w", err)
	}

	m.info = &info
	m.logger.Info("Backup created", "version", version, "dir", m.dir)
	return nil
}

func (m *backupManager) restore() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.info == nil {
		return errors.New("no backup available")
	}
	if err := copyFile(filepath.Join(m.dir, backupFilename), m.info.ExecPath); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	m.logger.Info("Backup restored", "version", m.info.Version)
	return nil
}

func (m *backupManager) version() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.info == nil {
		return ""
	}
	return m.info.Version
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("open %s: %w", from, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("create %s: %w", to, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy %s: %w", from, err)
	}
	return dst.Close()
}
