package camera

import "testing"

func TestTableApply(t *testing.T) {
	tests := []struct {
		name    string
		events  []Event
		wantOld bool
		wantNew bool
	}{
		{
			name:    "first activation",
			events:  []Event{{"A", true}},
			wantOld: false,
			wantNew: true,
		},
		{
			name:    "second camera while first active",
			events:  []Event{{"A", true}, {"B", true}},
			wantOld: true,
			wantNew: true,
		},
		{
			name:    "one of two stops",
			events:  []Event{{"A", true}, {"B", true}, {"A", false}},
			wantOld: true,
			wantNew: true,
		},
		{
			name:    "last camera stops",
			events:  []Event{{"A", true}, {"B", true}, {"A", false}, {"B", false}},
			wantOld: true,
			wantNew: false,
		},
		{
			name:    "stop for never seen device",
			events:  []Event{{"A", false}},
			wantOld: false,
			wantNew: false,
		},
		{
			name:    "repeated start is idempotent",
			events:  []Event{{"A", true}, {"A", true}},
			wantOld: true,
			wantNew: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable()
			var gotOld, gotNew bool
			for _, ev := range tt.events {
				gotOld, gotNew = table.Apply(ev)
			}
			if gotOld != tt.wantOld || gotNew != tt.wantNew {
				t.Errorf("Apply() = (%v, %v), want (%v, %v)", gotOld, gotNew, tt.wantOld, tt.wantNew)
			}
		})
	}
}

func TestTableKeepsObservedDevices(t *testing.T) {
	table := NewTable()
	table.Apply(Event{"A", true})
	table.Apply(Event{"A", false})

	snap := table.Snapshot()
	active, ok := snap["A"]
	if !ok {
		t.Fatal("device A should remain in the table after stopping")
	}
	if active {
		t.Error("device A should be inactive")
	}
	if _, ok := snap["B"]; ok {
		t.Error("device B was never observed")
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestTableSnapshotIsCopy(t *testing.T) {
	table := NewTable()
	table.Apply(Event{"A", true})

	snap := table.Snapshot()
	snap["A"] = false

	if !table.Aggregate() {
		t.Error("mutating a snapshot must not change the table")
	}
}
