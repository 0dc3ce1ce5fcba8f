// Package parallel provides the worker-fanout helper used by CPU kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls kernel fanout.
type Config struct {
	Enabled    bool // Whether fanout is enabled.
	NumWorkers int  // Number of worker goroutines to use.
	MinUnits   int  // Minimum work units before fanout pays for itself.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinUnits:   4, // Channel reductions are coarse units; fan out early.
	}
}

// For executes f(i) for i in [0, n), fanning out across workers when the
// unit count justifies it. Units must be independent; f sees each index
// exactly once.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinUnits {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := (n + cfg.NumWorkers - 1) / cfg.NumWorkers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
