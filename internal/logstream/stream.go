package logstream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Stream is a Feed backed by a subprocess's stdout.
type Stream struct {
	cmd    *exec.Cmd
	reader *bufio.Reader
	logger *slog.Logger

	gracefulTimeout time.Duration
	killTimeout     time.Duration

	stderrDone chan struct{}
	closed     chan struct{}
	closeOnce  sync.Once
	closeErr   error
}

// Start launches args[0] with the remaining arguments. The subprocess is
// stopped when ctx is cancelled or Close is called.
func Start(ctx context.Context, args []string, logger *slog.Logger) (*Stream, error) {
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", args[0], err)
	}

	s := &Stream{
		cmd:             cmd,
		reader:          bufio.NewReader(stdout),
		logger:          logger,
		gracefulTimeout: 5 * time.Second,
		killTimeout:     5 * time.Second,
		stderrDone:      make(chan struct{}),
		closed:          make(chan struct{}),
	}
	logger.Info("Log stream started", "pid", cmd.Process.Pid, "command", args)

	go s.forwardStderr(stderr)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.closed:
		}
	}()

	return s, nil
}

// Pid returns the subprocess id.
func (s *Stream) Pid() int {
	return s.cmd.Process.Pid
}

// ReadLine returns the next line of subprocess output. After the subprocess
// exits or the stream is closed it returns "" and an error.
func (s *Stream) ReadLine() (string, error) {
	return readLine(s.reader)
}

// Close stops the subprocess: SIGINT to its process group, then SIGKILL
// after the graceful timeout. Safe to call more than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.closeErr = s.stop()
	})
	return s.closeErr
}

func (s *Stream) stop() error {
	pid := s.cmd.Process.Pid

	if err := syscall.Kill(-pid, syscall.SIGINT); err != nil && !errors.Is(err, syscall.ESRCH) {
		s.logger.Warn("Failed to send SIGINT", "pid", pid, "error", err)
	}

	done := make(chan error, 1)
	go func() {
		// Wait must follow the stderr reader. It closes stdout, which
		// unblocks a pending ReadLine.
		<-s.stderrDone
		done <- s.cmd.Wait()
	}()

	select {
	case err := <-done:
		s.logExit(err)
		return nil
	case <-time.After(s.gracefulTimeout):
	}

	s.logger.Warn("Log stream ignored SIGINT, killing", "pid", pid, "timeout", s.gracefulTimeout)
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		if killErr := s.cmd.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			return fmt.Errorf("kill log stream: %w", killErr)
		}
	}

	select {
	case err := <-done:
		s.logExit(err)
		return nil
	case <-time.After(s.killTimeout):
		return fmt.Errorf("log stream pid %d did not exit after SIGKILL", pid)
	}
}

func (s *Stream) logExit(err error) {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		s.logger.Debug("Log stream exited", "exit_code", 0)
	case errors.As(err, &exitErr):
		s.logger.Debug("Log stream exited", "exit_code", exitErr.ExitCode(), "status", exitErr.String())
	default:
		s.logger.Warn("Log stream wait failed", "error", err)
	}
}

// forwardStderr logs diagnostics the log tool prints, such as permission
// errors.
func (s *Stream) forwardStderr(r io.Reader) {
	defer close(s.stderrDone)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			s.logger.Warn("log stream stderr", "line", line)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		s.logger.Debug("Error reading log stream stderr", "error", err)
	}
}
