package state

import (
	"testing"

	"github.com/Its-donkey/circuit-console/internal/ui/model"
)

func TestSessionStoreSnapshotIsCopy(t *testing.T) {
	store := NewSessionStore(false)
	store.Update(model.Session{
		Connected: true,
		Token:     "abc1234567",
		Targets:   []model.Target{{ID: "ibmq_1", Label: "IBM Q1"}},
	})

	snap := store.Snapshot()
	snap.Targets[0].Label = "changed"

	if got := store.Snapshot().Targets[0].Label; got != "IBM Q1" {
		t.Fatalf("expected store to be unaffected, got %q", got)
	}
	if !store.Connected() {
		t.Fatal("expected connected session")
	}
}

func TestSessionStoreDisconnectKeepsTargets(t *testing.T) {
	store := NewSessionStore(true)
	store.Update(model.Session{Connected: true, Targets: []model.Target{{ID: "a", Label: "A"}}})

	store.Disconnect()

	snap := store.Snapshot()
	if snap.Connected {
		t.Fatal("expected disconnected session")
	}
	if len(snap.Targets) != 1 {
		t.Fatalf("expected targets to survive disconnect, got %+v", snap.Targets)
	}
}
