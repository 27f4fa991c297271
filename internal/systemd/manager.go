// Package systemd integrates with the service manager: readiness
// notifications for Type=notify units and unit restarts over D-Bus.
package systemd

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

// Manager controls units through the user's D-Bus session.
type Manager struct {
	conn *dbus.Conn
}

// NewManager connects to the user-level systemd instance.
func NewManager(ctx context.Context) (*Manager, error) {
	conn, err := dbus.NewUserConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to systemd user bus: %w", err)
	}
	return &Manager{conn: conn}, nil
}

// ActiveState returns the unit's ActiveState property, e.g. "active".
func (m *Manager) ActiveState(ctx context.Context, unit string) (string, error) {
	prop, err := m.conn.GetUnitPropertyContext(ctx, unit, "ActiveState")
	if err != nil {
		return "", err
	}
	if state, ok := prop.Value.Value().(string); ok {
		return state, nil
	}
	return prop.Value.String(), nil
}

// Restart restarts unit and waits for the job to finish.
func (m *Manager) Restart(ctx context.Context, unit string) error {
	result := make(chan string, 1)
	if _, err := m.conn.RestartUnitContext(ctx, unit, "replace", result); err != nil {
		return fmt.Errorf("restart %s: %w", unit, err)
	}
	select {
	case r := <-result:
		if r != "done" {
			return fmt.Errorf("restart %s: job %s", unit, r)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the D-Bus connection.
func (m *Manager) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
}
