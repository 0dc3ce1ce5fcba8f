// Package agent is the driver-facing surface of the executor: it launches
// graph steps on worker goroutines and hands the external training loop a
// per-step handle for the forward-results/backward-inputs exchange.
package agent

import (
	"sync"

	"github.com/loom-ml/loom/internal/graph"
	"github.com/loom-ml/loom/internal/graph/operators"
	"github.com/loom-ml/loom/internal/rendezvous"
	"github.com/loom-ml/loom/internal/tensor"
)

// Agent owns an executor and the rendezvous registry tying running steps to
// their channels. One Agent drives any number of concurrent steps.
type Agent struct {
	executor   *graph.Executor
	rendezvous *rendezvous.Registry
}

// New creates an agent with the built-in operator set.
func New() *Agent {
	return NewWithOps(operators.NewRegistry())
}

// NewWithOps creates an agent dispatching through a caller-supplied
// operator registry (for custom or external operators).
func NewWithOps(ops *operators.Registry) *Agent {
	rv := rendezvous.NewRegistry()
	return &Agent{
		executor:   graph.NewExecutor(ops, rv),
		rendezvous: rv,
	}
}

// Launch starts one step of the graph on a worker goroutine and returns
// its handle. The caller is the driver: it awaits the step's forward
// results, posts backward inputs (or terminates), and finally waits for
// the step's outcome.
func (a *Agent) Launch(g *graph.Graph, feeds map[string]*tensor.Value) *Step {
	id := rendezvous.NewStepID()
	ch := a.rendezvous.Create(id)

	s := &Step{
		id:     id,
		agent:  a,
		driver: ch.DriverSide(),
		result: make(chan *graph.StepResult, 1),
	}

	go func() {
		result := s.agent.executor.Run(g, feeds, id)
		// Erase-on-completion. Teardown rather than plain removal: a step
		// that failed before reaching its suspension point has posted
		// nothing, and a driver already blocked on ForwardResults must not
		// wait forever for it.
		a.rendezvous.Teardown(id)
		s.result <- result
	}()

	return s
}

// Shutdown tears down every in-flight step so no worker stays blocked at a
// suspension point. Used at process exit.
func (a *Agent) Shutdown() {
	a.rendezvous.Shutdown()
}

// Step is the driver's handle on one launched step.
type Step struct {
	id     rendezvous.StepID
	agent  *Agent
	driver rendezvous.DriverSide

	result   chan *graph.StepResult
	waitOnce sync.Once
	final    *graph.StepResult
}

// ID returns the step's identifier.
func (s *Step) ID() rendezvous.StepID {
	return s.id
}

// ForwardResults blocks until the step reaches its suspension point and
// returns the captured forward values with their status. The driver must
// check the status before using the values: a failed status carries no
// tensor data and the driver must not post backward inputs for the step.
func (s *Step) ForwardResults() (rendezvous.ForwardBatch, error) {
	return s.driver.AwaitForward()
}

// PostBackward resumes the suspended step with externally computed values,
// bound in order to the suspension point's outputs.
func (s *Step) PostBackward(values []*tensor.Value) {
	s.driver.PostBackward(rendezvous.BackwardBatch{Values: values})
}

// Terminate resumes the suspended step on its teardown path: the step
// reports a terminated outcome instead of running its backward segment.
func (s *Step) Terminate() {
	s.driver.PostBackward(rendezvous.TerminateBatch())
}

// Abort force-unblocks the step wherever it is suspended. Best-effort
// cancellation for timeouts and shutdown; the step reports a terminated
// outcome.
func (s *Step) Abort() {
	s.agent.rendezvous.Teardown(s.id)
}

// Wait blocks until the step finishes and returns its result. Safe to call
// more than once; every call returns the same result.
func (s *Step) Wait() *graph.StepResult {
	s.waitOnce.Do(func() {
		s.final = <-s.result
	})
	return s.final
}
