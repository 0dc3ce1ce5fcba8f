package operators

import (
	"errors"
	"testing"

	"github.com/loom-ml/loom/internal/rendezvous"
	"github.com/loom-ml/loom/internal/tensor"
)

// failingWork simulates queued device work that fails.
type failingWork struct{ err error }

func (w failingWork) Wait() error { return w.err }

func yieldContext(t *testing.T) (*Context, *rendezvous.Channel) {
	t.Helper()
	rv := rendezvous.NewRegistry()
	step := rendezvous.NewStepID()
	ch := rv.Create(step)
	return &Context{Rendezvous: rv, Step: step}, ch
}

func TestYieldMissingChannel(t *testing.T) {
	r := NewRegistry()
	ctx := &Context{Rendezvous: rendezvous.NewRegistry(), Step: rendezvous.NewStepID()}

	node := &Node{Name: "y", OpType: "Yield", Outputs: []string{"g"}}
	if _, err := r.Execute(ctx, node, nil); err == nil {
		t.Error("expected error when no channel exists for the step")
	}
}

func TestYieldRoundTrip(t *testing.T) {
	r := NewRegistry()
	ctx, ch := yieldContext(t)

	fwd := makeValue(t, []float32{1, 2}, tensor.Shape{2})
	grad := makeValue(t, []float32{0.1, 0.2}, tensor.Shape{2})

	// Driver side.
	go func() {
		d := ch.DriverSide()
		batch, err := d.AwaitForward()
		if err != nil || !batch.Status.OK {
			return
		}
		d.PostBackward(rendezvous.BackwardBatch{Values: []*tensor.Value{grad}})
	}()

	node := &Node{Name: "y", OpType: "Yield", Inputs: []string{"x"}, Outputs: []string{"g"}}
	outs, err := r.Execute(ctx, node, []*tensor.Value{fwd})
	if err != nil {
		t.Fatalf("Yield failed: %v", err)
	}
	if len(outs) != 1 || outs[0] != grad {
		t.Error("yield outputs are not the posted backward values")
	}
}

func TestYieldTerminate(t *testing.T) {
	r := NewRegistry()
	ctx, ch := yieldContext(t)

	go func() {
		d := ch.DriverSide()
		if _, err := d.AwaitForward(); err != nil {
			return
		}
		d.PostBackward(rendezvous.TerminateBatch())
	}()

	node := &Node{Name: "y", OpType: "Yield", Inputs: []string{"x"}, Outputs: []string{"g"}}
	_, err := r.Execute(ctx, node, []*tensor.Value{makeValue(t, []float32{1}, tensor.Shape{1})})

	var term *TerminatedError
	if !errors.As(err, &term) {
		t.Fatalf("expected TerminatedError, got %v", err)
	}
	if term.TornDown {
		t.Error("explicit terminate should not be reported as teardown")
	}
}

func TestYieldTornDownWhileSuspended(t *testing.T) {
	r := NewRegistry()
	rv := rendezvous.NewRegistry()
	step := rendezvous.NewStepID()
	ch := rv.Create(step)
	ctx := &Context{Rendezvous: rv, Step: step}

	go func() {
		d := ch.DriverSide()
		if _, err := d.AwaitForward(); err != nil {
			return
		}
		rv.Teardown(step)
	}()

	node := &Node{Name: "y", OpType: "Yield", Inputs: []string{"x"}, Outputs: []string{"g"}}
	_, err := r.Execute(ctx, node, []*tensor.Value{makeValue(t, []float32{1}, tensor.Shape{1})})

	var term *TerminatedError
	if !errors.As(err, &term) {
		t.Fatalf("expected TerminatedError, got %v", err)
	}
	if !term.TornDown {
		t.Error("teardown unwind should be flagged as torn down")
	}
}

func TestYieldDeviceFaultBecomesForwardStatus(t *testing.T) {
	r := NewRegistry()
	ctx, ch := yieldContext(t)

	deviceErr := errors.New("stream sync failed")
	pending, err := tensor.NewAsync(tensor.Shape{2}, tensor.Float32, tensor.CPU, failingWork{err: deviceErr})
	if err != nil {
		t.Fatalf("NewAsync failed: %v", err)
	}

	status := make(chan rendezvous.Status, 1)
	go func() {
		batch, err := ch.DriverSide().AwaitForward()
		if err != nil {
			return
		}
		status <- batch.Status
	}()

	node := &Node{Name: "y", OpType: "Yield", Inputs: []string{"x"}, Outputs: []string{"g"}}
	_, err = r.Execute(ctx, node, []*tensor.Value{pending})
	if !errors.Is(err, deviceErr) {
		t.Fatalf("expected device error from yield, got %v", err)
	}

	// The driver observes a failure status with no tensor data.
	s := <-status
	if s.OK {
		t.Error("driver should observe a failed forward status")
	}
	if s.Err() == nil {
		t.Error("failed status should carry the failure message")
	}
}

func TestYieldArityMismatchPanics(t *testing.T) {
	r := NewRegistry()
	ctx, ch := yieldContext(t)

	// One value for a node declaring two outputs.
	short := makeValue(t, []float32{1}, tensor.Shape{1})
	go func() {
		d := ch.DriverSide()
		if _, err := d.AwaitForward(); err != nil {
			return
		}
		d.PostBackward(rendezvous.BackwardBatch{Values: []*tensor.Value{short}})
	}()

	node := &Node{Name: "y", OpType: "Yield", Inputs: []string{"x"}, Outputs: []string{"g0", "g1"}}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for backward arity mismatch")
		}
	}()
	r.Execute(ctx, node, []*tensor.Value{makeValue(t, []float32{1}, tensor.Shape{1})}) //nolint:errcheck // panics before returning
}
