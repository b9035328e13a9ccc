package registry

import (
	"testing"

	"github.com/google/uuid"
)

type fakeInstance struct {
	id uuid.UUID
}

func (f fakeInstance) ID() uuid.UUID { return f.id }

func TestRegisterLookupUnregister(t *testing.T) {
	r := New()
	a := fakeInstance{id: uuid.New()}
	b := fakeInstance{id: uuid.New()}

	r.Register(a)
	r.Register(b)

	if got, ok := r.Lookup(a.id); !ok || got.ID() != a.id {
		t.Fatalf("Lookup(a) = %v, %v", got, ok)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	r.Unregister(a.id)
	if _, ok := r.Lookup(a.id); ok {
		t.Fatal("a still present after Unregister")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
}

func TestUnregisterMissingIsNoop(t *testing.T) {
	r := New()
	r.Unregister(uuid.New()) // must not panic
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
}

func TestRegisterReplacesSameID(t *testing.T) {
	r := New()
	id := uuid.New()
	r.Register(fakeInstance{id: id})
	r.Register(fakeInstance{id: id})
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after re-registering same id", r.Len())
	}
}

func TestSnapshotIsIndependentOfLaterMutation(t *testing.T) {
	r := New()
	a := fakeInstance{id: uuid.New()}
	r.Register(a)

	snap := r.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("len(snap) = %d, want 1", len(snap))
	}

	r.Register(fakeInstance{id: uuid.New()})
	if len(snap) != 1 {
		t.Fatalf("snapshot mutated by later Register: len = %d", len(snap))
	}
}
