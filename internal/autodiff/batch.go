package autodiff

import (
	"context"
	"fmt"

	"github.com/born-ml/revad/internal/parallel"
)

// BatchGradient evaluates f and its gradient at every point.
//
// Points are split into contiguous chunks according to cfg. Each chunk runs
// on a stack of its own, created with opts, so chunks proceed concurrently
// without sharing graph state. Cancellation is checked between points; the
// first error stops the remaining chunks and is returned.
func BatchGradient(ctx context.Context, f Func, points [][]float64, cfg parallel.Config, opts ...Option) ([]float64, [][]float64, error) {
	fx := make([]float64, len(points))
	grads := make([][]float64, len(points))

	err := parallel.Do(ctx, len(points), cfg, func(ctx context.Context, lo, hi int) error {
		s := NewStack(opts...)
		defer s.FreeMemory()
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("point %d: %w", i, err)
			}
			fx[i], grads[i] = GradientOf(s, f, points[i])
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return fx, grads, nil
}
