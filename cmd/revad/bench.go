package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/born-ml/revad/internal/autodiff"
	"github.com/born-ml/revad/internal/gradcheck"
	"github.com/born-ml/revad/internal/metrics"
)

func newBenchCmd(a *app) *cobra.Command {
	var (
		iterations  int
		dim         int
		parallelRun bool
		showMetrics bool
		listen      string
		seed        uint64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time repeated gradients of a normal log density",
		Long: `bench evaluates the gradient of a normal log density with unknown mean and
log scale over dim observations, at iterations random points. Each gradient
runs in a nested scope, so memory stays flat across iterations.

With --listen the metrics are served at /metrics after the run until the
command is interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := a.cfg.Bench
			if cmd.Flags().Changed("iterations") {
				b.Iterations = iterations
			}
			if cmd.Flags().Changed("dim") {
				b.Dim = dim
			}
			if cmd.Flags().Changed("parallel") {
				b.Parallel = parallelRun
			}
			if b.Iterations < 1 || b.Dim < 1 {
				return fmt.Errorf("iterations and dim must be positive, got %d and %d", b.Iterations, b.Dim)
			}

			rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			points := make([][]float64, b.Iterations)
			for i := range points {
				p := make([]float64, b.Dim+2)
				for j := range p {
					p[j] = rng.NormFloat64()
				}
				points[i] = p
			}

			rec := metrics.NewRecorder()
			opts := a.cfg.StackOptions(a.log)
			var fx []float64

			var elapsed time.Duration
			if b.Parallel {
				pc := a.cfg.Parallel()
				pc.Enabled = true
				var err error
				opts = append(opts, autodiff.WithName("bench"), autodiff.WithObserver(rec.Observe))
				elapsed = rec.Time("batch_gradient", func() {
					fx, _, err = autodiff.BatchGradient(cmd.Context(), gradcheck.NormalLogDensity, points, pc, opts...)
				})
				if err != nil {
					return fmt.Errorf("batch gradient: %w", err)
				}
			} else {
				s := autodiff.NewStack(append(opts, autodiff.WithName("bench"))...)
				fx = make([]float64, len(points))
				elapsed = rec.Time("gradient", func() {
					for i, p := range points {
						fx[i], _ = autodiff.GradientOf(s, gradcheck.NormalLogDensity, p)
					}
				})
				rec.Observe(s.Stats())
				a.log.Info("bench stack", "tape", s.Stats().Tape, "bytes", s.Stats().Bytes())
			}

			checksum := 0.0
			for _, v := range fx {
				checksum += v
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "iterations=%d dim=%d parallel=%t elapsed=%s per_gradient=%s checksum=%.6g\n",
				b.Iterations, b.Dim, b.Parallel, elapsed, elapsed/time.Duration(b.Iterations), checksum)

			if showMetrics {
				if err := rec.WriteText(out); err != nil {
					return err
				}
			}
			if listen != "" {
				return serveMetrics(cmd.Context(), listen, rec, a.log)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "number of gradient evaluations (default from config)")
	cmd.Flags().IntVar(&dim, "dim", 0, "number of observations (default from config)")
	cmd.Flags().BoolVarP(&parallelRun, "parallel", "p", false, "spread points over one stack per worker")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print Prometheus metrics after the run")
	cmd.Flags().StringVar(&listen, "listen", "", "serve Prometheus metrics on this address after the run")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for evaluation points")
	return cmd
}
