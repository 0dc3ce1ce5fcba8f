package rendezvous

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// StepID identifies one execution of the forward-suspend-backward cycle.
// Every concurrently running step has its own id and its own Channel; a
// second in-flight suspension under the same id is a programming error.
type StepID string

// NewStepID returns a fresh unique step identifier.
func NewStepID() StepID {
	return StepID(uuid.NewString())
}

// Registry maps live StepIDs to their channels. It is safe for concurrent
// use: multiple steps create and remove entries from different goroutines.
// Registry state is independent of the per-channel slots; holding the
// registry lock never blocks on a channel transfer.
type Registry struct {
	mu       sync.Mutex
	channels map[StepID]*Channel
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[StepID]*Channel),
	}
}

// Create allocates the channel for a step about to start.
// Creating a second channel for an id still in flight panics.
func (r *Registry) Create(id StepID) *Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.channels[id]; exists {
		panic(fmt.Sprintf("rendezvous: step %s already has a live channel", id))
	}
	c := newChannel()
	r.channels[id] = c
	return c
}

// Get returns the channel for a step, or ok=false when no step with that
// id is in flight. A miss is informational, not an error.
func (r *Registry) Get(id StepID) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.channels[id]
	return c, ok
}

// Remove drops a completed step's entry. Removing an unknown id is a no-op.
func (r *Registry) Remove(id StepID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, id)
}

// Teardown force-unblocks both sides of a step's channel and removes its
// entry. Used for step abort and shutdown; waiters observe ErrTornDown.
// Tearing down an unknown id is a no-op.
func (r *Registry) Teardown(id StepID) {
	r.mu.Lock()
	c, ok := r.channels[id]
	delete(r.channels, id)
	r.mu.Unlock()

	if ok {
		c.teardown()
	}
}

// Shutdown tears down every live channel. Used at process exit so no
// worker is left blocked at a suspension point.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	channels := make([]*Channel, 0, len(r.channels))
	for id, c := range r.channels {
		channels = append(channels, c)
		delete(r.channels, id)
	}
	r.mu.Unlock()

	for _, c := range channels {
		c.teardown()
	}
}

// Len returns the number of steps currently in flight.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}
