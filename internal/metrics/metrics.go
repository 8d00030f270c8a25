// Package metrics exports differentiation stack occupancy as Prometheus
// metrics.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/born-ml/revad/internal/arena"
	"github.com/born-ml/revad/internal/autodiff"
)

// Recorder publishes stack statistics to its own registry.
// It is safe for concurrent use.
type Recorder struct {
	reg *prometheus.Registry

	tapeNodes   *prometheus.GaugeVec
	depth       *prometheus.GaugeVec
	arenaBlocks *prometheus.GaugeVec
	arenaUsed   *prometheus.GaugeVec
	arenaBytes  *prometheus.GaugeVec
	sweeps      *prometheus.CounterVec
	recoveries  *prometheus.CounterVec
	duration    *prometheus.HistogramVec

	mu   sync.Mutex
	last map[string]autodiff.Stats // Last observation per stack ID, for counter deltas.
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	labels := []string{"stack", "name"}
	arenaLabels := []string{"stack", "name", "arena"}

	return &Recorder{
		reg: reg,
		tapeNodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "revad_tape_nodes",
			Help: "Nodes currently recorded on the tape",
		}, labels),
		depth: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "revad_nested_depth",
			Help: "Open nested scopes",
		}, labels),
		arenaBlocks: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "revad_arena_blocks",
			Help: "Blocks held by an arena",
		}, arenaLabels),
		arenaUsed: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "revad_arena_used_elements",
			Help: "Elements issued by an arena since its last reset",
		}, arenaLabels),
		arenaBytes: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "revad_arena_bytes",
			Help: "Bytes held by an arena",
		}, arenaLabels),
		sweeps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "revad_backward_sweeps_total",
			Help: "Backward passes run",
		}, labels),
		recoveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "revad_recoveries_total",
			Help: "Nested and full memory recoveries",
		}, labels),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "revad_operation_duration_seconds",
			Help:    "Duration of timed operations in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12), // 1µs to ~4s
		}, []string{"operation"}),
		last: make(map[string]autodiff.Stats),
	}
}

// Observe records the current statistics of a stack.
func (r *Recorder) Observe(st autodiff.Stats) {
	id := st.ID.String()

	r.tapeNodes.WithLabelValues(id, st.Name).Set(float64(st.Tape))
	r.depth.WithLabelValues(id, st.Name).Set(float64(st.Depth))
	for name, as := range map[string]arena.Stats{
		"nodes":    st.Nodes,
		"operands": st.Operands,
		"partials": st.Partials,
	} {
		r.arenaBlocks.WithLabelValues(id, st.Name, name).Set(float64(as.Blocks))
		r.arenaUsed.WithLabelValues(id, st.Name, name).Set(float64(as.Used))
		r.arenaBytes.WithLabelValues(id, st.Name, name).Set(float64(as.Bytes))
	}

	r.mu.Lock()
	prev := r.last[id]
	r.last[id] = st
	r.mu.Unlock()

	if st.Sweeps > prev.Sweeps {
		r.sweeps.WithLabelValues(id, st.Name).Add(float64(st.Sweeps - prev.Sweeps))
	}
	if st.Recoveries > prev.Recoveries {
		r.recoveries.WithLabelValues(id, st.Name).Add(float64(st.Recoveries - prev.Recoveries))
	}
}

// Time records how long f takes under the given operation label.
func (r *Recorder) Time(operation string, f func()) time.Duration {
	start := time.Now()
	f()
	d := time.Since(start)
	r.duration.WithLabelValues(operation).Observe(d.Seconds())
	return d
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Handler serves the recorder's metrics over HTTP.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// WriteText writes every metric in the Prometheus text exposition format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
