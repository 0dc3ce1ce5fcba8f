package tensor

// Pending represents outstanding asynchronous device work that produces a
// value's buffer. Accelerator backends queue kernels and return immediately;
// a value carries a Pending handle until the queued work is known complete.
//
// Wait blocks until the producing work has finished. It returns an error if
// the device reported a failure, in which case the buffer contents are
// undefined and must not be read.
type Pending interface {
	Wait() error
}
