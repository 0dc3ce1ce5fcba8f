// Copyright 2026 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public graph model and executor.
//
// A Graph is an ordered list of operator nodes over named values. The
// executor runs the nodes in order; a Yield node suspends the step and
// exchanges values with the external driver through a rendezvous channel.
package graph

import (
	"github.com/loom-ml/loom/internal/graph"
	"github.com/loom-ml/loom/internal/graph/operators"
	"github.com/loom-ml/loom/internal/rendezvous"
)

// Graph is an ordered list of operator nodes over named values.
type Graph = graph.Graph

// Node represents one operation node in a graph.
type Node = operators.Node

// Attribute represents a node attribute.
type Attribute = operators.Attribute

// Registry maps operator types to handler functions.
type Registry = operators.Registry

// OpHandler processes a graph node and returns output values.
type OpHandler = operators.OpHandler

// Context provides per-step execution context for operators.
type Context = operators.Context

// ExternalFunc evaluates an externally defined operator.
type ExternalFunc = operators.ExternalFunc

// NewRegistry creates an operator registry with all built-in operators.
func NewRegistry() *Registry {
	return operators.NewRegistry()
}

// Executor runs graphs node by node through an operator registry.
type Executor = graph.Executor

// NewExecutor creates an executor dispatching through the given operator
// registry and suspending through the given rendezvous registry.
func NewExecutor(ops *Registry, rv *rendezvous.Registry) *Executor {
	return graph.NewExecutor(ops, rv)
}

// Outcome classifies how a step ended.
type Outcome = graph.Outcome

// Step outcomes.
const (
	Succeeded  Outcome = graph.Succeeded
	Terminated Outcome = graph.Terminated
	Failed     Outcome = graph.Failed
)

// StepResult reports the end of one step.
type StepResult = graph.StepResult

// TerminatedError unwinds a step whose driver deliberately stopped it.
type TerminatedError = operators.TerminatedError
