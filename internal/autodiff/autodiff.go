// Package autodiff implements scalar reverse-mode automatic differentiation.
//
// A Stack is the differentiation context. It owns:
//   - a node arena: every node (value, adjoint, operation tag, operands) is a
//     record in a bump-allocated slab and is never freed individually
//   - auxiliary arenas for multi-operand nodes (operand lists, partials)
//   - a Tape recording node construction order
//   - a stack of nested scopes used to reclaim memory between independent
//     forward/backward passes
//
// Var is a cheap, copyable handle into a Stack. Arithmetic on handles builds
// the graph: each operation allocates one node, records it on the tape and
// returns a new handle. Dropping a handle has no effect on its node; nodes
// live until the scope that created them is recovered.
//
// Usage:
//
//	s := autodiff.NewStack()
//	x1, x2 := s.NewVar(2), s.NewVar(3)
//	y := s.Add(s.Mul(x1, x2), s.Sin(x1))
//	grad := s.Gradient(y, []autodiff.Var{x1, x2}) // [3 + cos(2), 2]
//
// A Stack is single-threaded. Independent computations may run concurrently
// on distinct stacks.
package autodiff

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/born-ml/revad/internal/arena"
	"github.com/born-ml/revad/internal/autodiff/ops"
)

// Stack is a reverse-mode differentiation context.
type Stack struct {
	id   uuid.UUID
	name string

	nodes    *arena.Slab[node]
	operands *arena.Buffer[uint32]  // Operand lists of multi-operand nodes.
	partials *arena.Buffer[float64] // Stored partials of multi-operand nodes.
	tape     *Tape
	custom   []Chainer // Backward rules of custom nodes, indexed from node.span.Off.

	scopes []scope
	epoch  uint64 // Bumped on every recovery; stamps nodes and handles.

	sweeps     uint64
	recoveries uint64

	log      *slog.Logger
	observer func(Stats)
}

// scope remembers where a nested scope began in every arena.
type scope struct {
	tape     int
	nodes    arena.Mark
	operands arena.Mark
	partials arena.Mark
	custom   int
}

// Option configures a Stack.
type Option func(*options)

type options struct {
	blockShift uint
	maxBlocks  int
	logger     *slog.Logger
	name       string
	observer   func(Stats)
}

// WithBlockShift sets every arena block to 1<<shift elements. Shifts outside
// [1, arena.MaxBlockShift] fall back to arena.DefaultBlockShift.
func WithBlockShift(shift uint) Option {
	return func(o *options) { o.blockShift = shift }
}

// WithMaxBlocks bounds every arena of the stack to n blocks. Exceeding the
// bound panics with arena.ErrExhausted. Zero means unbounded.
func WithMaxBlocks(n int) Option {
	return func(o *options) { o.maxBlocks = n }
}

// WithLogger sets the logger used for arena and scope events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithName attaches a human-readable name reported in logs and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithObserver registers f to receive the stack's statistics whenever
// FreeMemory runs, after the final recovery and before retained blocks are
// released. Stacks created internally by BatchGradient and ParallelHessian
// are freed when their chunk finishes, so f sees every worker stack.
// f may be called from several goroutines when the option is shared.
func WithObserver(f func(Stats)) Option {
	return func(o *options) { o.observer = f }
}

// NewStack creates an empty differentiation context.
func NewStack(opts ...Option) *Stack {
	o := options{
		blockShift: arena.DefaultBlockShift,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	shift := arena.ClampShift(o.blockShift)
	s := &Stack{
		id:       uuid.New(),
		name:     o.name,
		nodes:    arena.NewSlab[node](shift, o.maxBlocks),
		operands: arena.NewBuffer[uint32](1<<shift, o.maxBlocks),
		partials: arena.NewBuffer[float64](1<<shift, o.maxBlocks),
		tape:     NewTape(),
		observer: o.observer,
	}
	s.log = o.logger.With("stack", s.id.String())
	if s.name != "" {
		s.log = s.log.With("name", s.name)
	}

	s.nodes.OnGrow(s.onGrow("nodes"))
	s.operands.OnGrow(s.onGrow("operands"))
	s.partials.OnGrow(s.onGrow("partials"))
	return s
}

func (s *Stack) onGrow(which string) func(int) {
	return func(blocks int) {
		s.log.Debug("arena block acquired", "arena", which, "blocks", blocks)
	}
}

// ID returns the stack's unique identifier.
func (s *Stack) ID() uuid.UUID {
	return s.id
}

// Name returns the name given with WithName.
func (s *Stack) Name() string {
	return s.name
}

// Tape returns the stack's tape for inspection.
func (s *Stack) Tape() *Tape {
	return s.tape
}

// Stats describes the memory held by a stack.
type Stats struct {
	ID         uuid.UUID
	Name       string
	Tape       int    // Recorded nodes.
	Depth      int    // Open nested scopes.
	Epoch      uint64 // Recoveries so far, nested or full.
	Sweeps     uint64 // Backward passes run.
	Recoveries uint64 // Same count as Epoch.
	Nodes      arena.Stats
	Operands   arena.Stats
	Partials   arena.Stats
}

// Bytes returns the bytes held by all arenas.
func (st Stats) Bytes() int64 {
	return st.Nodes.Bytes + st.Operands.Bytes + st.Partials.Bytes
}

// Stats reports current occupancy.
func (s *Stack) Stats() Stats {
	return Stats{
		ID:         s.id,
		Name:       s.name,
		Tape:       s.tape.Len(),
		Depth:      len(s.scopes),
		Epoch:      s.epoch,
		Sweeps:     s.sweeps,
		Recoveries: s.recoveries,
		Nodes:      s.nodes.Stats(),
		Operands:   s.operands.Stats(),
		Partials:   s.partials.Stats(),
	}
}

// push allocates a node, stamps it and records it on the tape.
// The returned pointer stays valid: slab blocks never move.
func (s *Stack) push(val float64, kind ops.Kind, f form) (uint32, *node) {
	id, n := s.nodes.Alloc()
	n.val = val
	n.kind = kind
	n.form = f
	n.epoch = s.epoch
	s.tape.Record(id)
	return id, n
}

func (s *Stack) handle(id uint32) Var {
	return Var{s: s, id: id, epoch: s.epoch}
}
