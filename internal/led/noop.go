package led

import "log/slog"

// noop implements Controller for hosts without controllable LEDs.
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger}
}

// Set logs the request and does nothing.
func (n *noop) Set(name string, on bool) error {
	n.logger.Debug("LED control not available (no-op)", "led", name, "on", on)
	return nil
}

// Available returns an empty list.
func (n *noop) Available() []string {
	return []string{}
}
