// Package graph provides the minimal graph model and the executor that
// drives operator nodes through a training step, including the suspension
// and resume around the Yield node.
package graph

import "github.com/loom-ml/loom/internal/graph/operators"

// Graph is an ordered list of operator nodes over named values.
// Nodes run in construction order; producing a correct order is the graph
// builder's job, not the executor's.
type Graph struct {
	Name    string
	Nodes   []*operators.Node
	Outputs []string // Names of the values reported when the step completes
}
