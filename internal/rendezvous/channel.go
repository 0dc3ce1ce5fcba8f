package rendezvous

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrTornDown is returned from an await when the channel was torn down
// before (or while) the awaited batch was posted. Callers treat it as the
// step being cancelled, not as a device or protocol failure.
var ErrTornDown = errors.New("rendezvous: channel torn down")

// Channel is the single-use, two-phase mailbox for one step.
//
// It holds one slot per direction. Each slot is filled exactly once and
// drained exactly once; posting never blocks, awaiting blocks until the
// slot is filled or the channel is torn down. Posting to a filled slot or
// draining a slot twice is a protocol violation and panics.
//
// The two parties get distinct views: GraphSide can only post forward and
// await backward, DriverSide only the converse. Obtain a Channel through a
// Registry; the zero value is not usable.
type Channel struct {
	forward  chan ForwardBatch
	backward chan BackwardBatch

	forwardPosted   atomic.Bool
	backwardPosted  atomic.Bool
	forwardDrained  atomic.Bool
	backwardDrained atomic.Bool

	done     chan struct{}
	downOnce sync.Once
}

func newChannel() *Channel {
	return &Channel{
		forward:  make(chan ForwardBatch, 1),
		backward: make(chan BackwardBatch, 1),
		done:     make(chan struct{}),
	}
}

// GraphSide returns the view used by the graph execution thread.
func (c *Channel) GraphSide() GraphSide {
	return GraphSide{c: c}
}

// DriverSide returns the view used by the external driver thread.
func (c *Channel) DriverSide() DriverSide {
	return DriverSide{c: c}
}

// teardown unblocks both sides. Batches already posted but not yet drained
// remain deliverable; only waiters with an empty slot observe ErrTornDown.
func (c *Channel) teardown() {
	c.downOnce.Do(func() {
		close(c.done)
	})
}

// GraphSide is the graph execution thread's view of a Channel.
type GraphSide struct {
	c *Channel
}

// PostForward stores the step's forward results and wakes the driver if it
// is already waiting. It never blocks. Posting twice for the same step is a
// protocol violation and panics.
func (g GraphSide) PostForward(batch ForwardBatch) {
	if !g.c.forwardPosted.CompareAndSwap(false, true) {
		panic("rendezvous: forward results already posted for this step")
	}
	g.c.forward <- batch
}

// AwaitBackward blocks until the driver posts backward inputs, then drains
// the slot. This is the suspension point of the whole protocol: it may
// block indefinitely. Returns ErrTornDown if the channel is torn down while
// no batch is available. Draining twice is a protocol violation and panics.
func (g GraphSide) AwaitBackward() (BackwardBatch, error) {
	if !g.c.backwardDrained.CompareAndSwap(false, true) {
		panic("rendezvous: backward inputs already consumed for this step")
	}

	select {
	case b := <-g.c.backward:
		return b, nil
	case <-g.c.done:
		// Teardown raced with a post; a batch posted before teardown must
		// still be delivered.
		select {
		case b := <-g.c.backward:
			return b, nil
		default:
			return BackwardBatch{}, ErrTornDown
		}
	}
}

// DriverSide is the external driver thread's view of a Channel.
type DriverSide struct {
	c *Channel
}

// AwaitForward blocks until the graph posts forward results, then drains
// the slot. Returns ErrTornDown if the channel is torn down while no batch
// is available. Draining twice is a protocol violation and panics.
func (d DriverSide) AwaitForward() (ForwardBatch, error) {
	if !d.c.forwardDrained.CompareAndSwap(false, true) {
		panic("rendezvous: forward results already consumed for this step")
	}

	select {
	case b := <-d.c.forward:
		return b, nil
	case <-d.c.done:
		select {
		case b := <-d.c.forward:
			return b, nil
		default:
			return ForwardBatch{}, ErrTornDown
		}
	}
}

// PostBackward stores the backward inputs (or terminate signal) and wakes
// the graph thread if it is already suspended. It never blocks. Posting
// twice for the same step is a protocol violation and panics.
func (d DriverSide) PostBackward(batch BackwardBatch) {
	if !d.c.backwardPosted.CompareAndSwap(false, true) {
		panic("rendezvous: backward inputs already posted for this step")
	}
	d.c.backward <- batch
}
