// Package parallel runs independent work items across goroutines.
//
// Differentiation stacks are single-threaded, so callers give each worker
// its own stack and hand it a contiguous chunk of items.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4, // Gradient evaluations are coarse work items.
	}
}

// chunks splits [0, n) into contiguous ranges, one per worker.
// A single range is returned when parallelism is off or n is too small.
func chunks(n int, cfg Config) [][2]int {
	if n <= 0 {
		return nil
	}
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		return [][2]int{{0, n}}
	}
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
	var out [][2]int
	for start := 0; start < n; start += chunkSize {
		out = append(out, [2]int{start, min(start+chunkSize, n)})
	}
	return out
}

// For executes f(lo, hi) over contiguous chunks of [0, n).
// Falls back to a single sequential call if parallelism is disabled or n is too small.
func For(n int, f func(lo, hi int), cfg Config) {
	cs := chunks(n, cfg)
	if len(cs) == 1 {
		f(cs[0][0], cs[0][1])
		return
	}

	var wg sync.WaitGroup
	for _, c := range cs {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			f(lo, hi)
		}(c[0], c[1])
	}
	wg.Wait()
}

// Do is For with cancellation and error propagation. The first error
// cancels the context passed to the remaining chunks and is returned.
func Do(ctx context.Context, n int, cfg Config, f func(ctx context.Context, lo, hi int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range chunks(n, cfg) {
		g.Go(func() error {
			return f(gctx, c[0], c[1])
		})
	}
	return g.Wait()
}
