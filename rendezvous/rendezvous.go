// Copyright 2026 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package rendezvous provides the public API for the per-step handoff
// between the graph execution thread and the external driver thread.
//
// Each step performs exactly two transfers through one Channel: forward
// results out, backward inputs (or a terminate signal) in. The two parties
// hold distinct views of the channel, so neither can post in the other's
// direction.
//
// Example:
//
//	rv := rendezvous.NewRegistry()
//	step := rendezvous.NewStepID()
//	ch := rv.Create(step)
//
//	// graph thread
//	g := ch.GraphSide()
//	g.PostForward(rendezvous.ForwardBatch{Values: outs, Status: rendezvous.StatusOK})
//	back, err := g.AwaitBackward()
//
//	// driver thread
//	d := ch.DriverSide()
//	fwd, err := d.AwaitForward()
//	d.PostBackward(rendezvous.BackwardBatch{Values: grads})
package rendezvous

import (
	"github.com/loom-ml/loom/internal/rendezvous"
)

// StepID identifies one execution of the forward-suspend-backward cycle.
type StepID = rendezvous.StepID

// NewStepID returns a fresh unique step identifier.
func NewStepID() StepID {
	return rendezvous.NewStepID()
}

// Channel is the single-use, two-phase mailbox for one step.
type Channel = rendezvous.Channel

// GraphSide is the graph execution thread's view of a Channel.
type GraphSide = rendezvous.GraphSide

// DriverSide is the external driver thread's view of a Channel.
type DriverSide = rendezvous.DriverSide

// Registry maps live StepIDs to their channels.
type Registry = rendezvous.Registry

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return rendezvous.NewRegistry()
}

// Status is the completion status carried with forward results.
type Status = rendezvous.Status

// StatusOK is the success status.
var StatusOK = rendezvous.StatusOK

// FailureStatus builds a failed status from the underlying error.
func FailureStatus(err error) Status {
	return rendezvous.FailureStatus(err)
}

// ForwardBatch carries the forward-pass values captured at the suspension
// point plus the forward segment's completion status.
type ForwardBatch = rendezvous.ForwardBatch

// BackwardBatch carries the externally computed values that resume the
// graph, or the terminate signal.
type BackwardBatch = rendezvous.BackwardBatch

// TerminateBatch builds the backward batch that tears a step down.
func TerminateBatch() BackwardBatch {
	return rendezvous.TerminateBatch()
}

// ErrTornDown is returned from an await when the channel was torn down
// before the awaited batch was posted.
var ErrTornDown = rendezvous.ErrTornDown
