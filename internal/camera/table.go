// Package camera tracks which capture devices are currently in use.
package camera

import (
	"maps"
	"sync"
)

// Event is a single activation or deactivation observed for one device.
type Event struct {
	DeviceID  string
	Activated bool
}

// Table maps device identifiers to their last observed capture state.
//
// A device present in the table has been observed at least once; absence
// means "never observed", not "off". Entries are never removed, so a device
// that reports a start but never a stop keeps the aggregate true.
//
// Apply must only be called from a single goroutine. Snapshot and Aggregate
// are safe to call concurrently with Apply.
type Table struct {
	mu      sync.RWMutex
	devices map[string]bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{devices: make(map[string]bool)}
}

// Apply records the event and returns the aggregate before and after the write.
func (t *Table) Apply(ev Event) (oldAggregate, newAggregate bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	oldAggregate = anyActive(t.devices)
	t.devices[ev.DeviceID] = ev.Activated
	newAggregate = anyActive(t.devices)
	return oldAggregate, newAggregate
}

// Aggregate reports whether at least one device is active.
func (t *Table) Aggregate() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return anyActive(t.devices)
}

// Snapshot returns a copy of the table.
func (t *Table) Snapshot() map[string]bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.devices)
}

// Len returns the number of devices observed so far.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.devices)
}

func anyActive(devices map[string]bool) bool {
	for _, active := range devices {
		if active {
			return true
		}
	}
	return false
}
