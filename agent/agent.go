// Copyright 2026 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package agent provides the public driver-facing API: launching graph
// steps on worker goroutines and exchanging values with them through
// per-step handles.
//
// Example:
//
//	a := agent.New()
//	step := a.Launch(g, feeds)
//
//	fwd, err := step.ForwardResults()
//	// ... compute gradients externally ...
//	step.PostBackward(grads)
//
//	result := step.Wait()
package agent

import (
	"github.com/loom-ml/loom/graph"
	"github.com/loom-ml/loom/internal/agent"
)

// Agent launches and tracks concurrent graph steps.
type Agent = agent.Agent

// Step is the driver's handle on one launched step.
type Step = agent.Step

// New creates an agent with the built-in operator set.
func New() *Agent {
	return agent.New()
}

// NewWithOps creates an agent dispatching through a caller-supplied
// operator registry.
func NewWithOps(ops *graph.Registry) *Agent {
	return agent.NewWithOps(ops)
}
