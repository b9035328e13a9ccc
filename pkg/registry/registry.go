// Package registry holds the process-wide table of live controllers,
// letting a host look one up by id across FFI/plugin boundaries where the
// host only carries an opaque handle rather than a Go pointer.
package registry

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Instance is the minimal surface the registry needs from a controller:
// enough to identify and later find it again. pkg/controller's Controller
// satisfies this.
type Instance interface {
	ID() uuid.UUID
}

// Registry maps controller ids to instances, replacing the whole snapshot
// atomically rather than mutating a map under a mutex: a lookup or
// Snapshot never blocks on a register/unregister happening concurrently,
// at the cost of making register/unregister O(n) copies. Table sizes here
// are a handful of simultaneous controllers at most, so that tradeoff is
// free.
type Registry struct {
	table atomic.Pointer[map[uuid.UUID]Instance]
}

// New creates an empty registry.
func New() *Registry {
	r := &Registry{}
	empty := make(map[uuid.UUID]Instance)
	r.table.Store(&empty)
	return r
}

// Register adds inst under its own ID, replacing any prior entry with the
// same id.
func (r *Registry) Register(inst Instance) {
	for {
		old := r.table.Load()
		next := make(map[uuid.UUID]Instance, len(*old)+1)
		for k, v := range *old {
			next[k] = v
		}
		next[inst.ID()] = inst
		if r.table.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Unregister removes the entry for id, if present.
func (r *Registry) Unregister(id uuid.UUID) {
	for {
		old := r.table.Load()
		if _, ok := (*old)[id]; !ok {
			return
		}
		next := make(map[uuid.UUID]Instance, len(*old))
		for k, v := range *old {
			if k != id {
				next[k] = v
			}
		}
		if r.table.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Lookup returns the instance registered under id, if any.
func (r *Registry) Lookup(id uuid.UUID) (Instance, bool) {
	table := r.table.Load()
	inst, ok := (*table)[id]
	return inst, ok
}

// Snapshot returns a point-in-time read-only copy of every registered
// instance. Safe to range over without synchronization; concurrent
// Register/Unregister calls never mutate the returned slice.
func (r *Registry) Snapshot() []Instance {
	table := r.table.Load()
	out := make([]Instance, 0, len(*table))
	for _, v := range *table {
		out = append(out, v)
	}
	return out
}

// Len reports the number of registered instances.
func (r *Registry) Len() int {
	return len(*r.table.Load())
}
