package container

import (
	"context"
	"sync"

	"github.com/specialistvlad/wiregrid/internal/config"
)

// State is the build state of one object.
type State int

const (
	Requested State = iota
	Instantiating
	ConfiguringProperties
	AwaitingCycleResolution
	Configured
	Started
	Failed
)

func (s State) String() string {
	switch s {
	case Requested:
		return "requested"
	case Instantiating:
		return "instantiating"
	case ConfiguringProperties:
		return "configuring"
	case AwaitingCycleResolution:
		return "awaiting-cycle-resolution"
	case Configured:
		return "configured"
	case Started:
		return "started"
	}
	return "failed"
}

// slot is one object in the build arena.
type slot struct {
	id    int
	key   string
	named bool
	owner *Container
	state State

	// instance is what gets configured: the object itself or its proxy.
	instance any
	proxy    bool
	// object is the final value once final is set.
	object any
	final  bool
	cfg    *config.Configuration

	// configured is set when property injection returned.
	configured bool
	afterDone  bool
	// pending counts deferred injections into this object.
	pending int
	// waiters are deferred injections waiting for this object.
	waiters []*deferral
	// binding is set on a named slot whose value refers to objects still
	// being built; the slot is published when they are.
	binding *deferral
}

// deferral is an injection waiting for placeholders to resolve.
type deferral struct {
	owner   *slot
	keyPath string
	value   any
	apply   func(any) error
	waiting map[int]bool
	// counted is set while the deferral holds one of owner's pending counts.
	counted bool
	// drop runs when a slot the deferral waits for fails.
	drop func(ctx context.Context)
}

// arena holds every slot of a container tree. Slot ids are build-order
// indexes shared by parent and child containers.
// Slots and their states are guarded by mu so diagnostics can read them
// while a build runs.
type arena struct {
	mu    sync.Mutex
	slots []*slot
}

func (a *arena) add(key string, named bool, owner *Container) *slot {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := &slot{id: len(a.slots), key: key, named: named, owner: owner, state: Requested}
	a.slots = append(a.slots, s)
	return s
}

func (a *arena) get(id int) (*slot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id < 0 || id >= len(a.slots) {
		return nil, false
	}
	return a.slots[id], true
}

func (a *arena) setState(s *slot, state State) {
	a.mu.Lock()
	s.state = state
	a.mu.Unlock()
}

// unresolved returns the slots that still have waiting injections.
func (a *arena) unresolved() []*slot {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*slot
	for _, s := range a.slots {
		if len(s.waiters) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// awaiting returns the labels of owner's slots in state AwaitingCycleResolution.
func (a *arena) awaiting(owner *Container) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, s := range a.slots {
		if s.owner == owner && s.state == AwaitingCycleResolution {
			out = append(out, slotLabel(s))
		}
	}
	return out
}
