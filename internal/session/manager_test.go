package session

import (
	"testing"

	"tabpulse/pkg/model"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(nil)

	a := m.Begin()
	b := m.Begin()
	if a.ID == b.ID {
		t.Fatal("cycle IDs must be unique")
	}
	if n := len(m.List()); n != 2 {
		t.Fatalf("inflight = %d, want 2", n)
	}

	m.End(a.ID, model.CycleSent)
	m.End(b.ID, model.CycleIdle)
	m.End(b.ID, model.CycleIdle)

	if n := len(m.List()); n != 0 {
		t.Fatalf("inflight = %d, want 0", n)
	}
	st := m.Stats()
	if st.Total != 2 || st.ByResult[model.CycleSent] != 1 || st.ByResult[model.CycleIdle] != 1 {
		t.Fatalf("stats = %+v", st)
	}

	st.ByResult[model.CycleSent] = 99
	if m.Stats().ByResult[model.CycleSent] != 1 {
		t.Fatal("Stats must return a copy")
	}
}
