package autodiff

import (
	"fmt"

	"github.com/born-ml/revad/internal/arena"
	"github.com/born-ml/revad/internal/autodiff/ops"
)

// form is the operand shape of a node.
type form uint8

const (
	formLeaf   form = iota // no operands
	formUnary              // one variable operand a
	formVV                 // variable a, variable b
	formVD                 // variable a, constant c
	formDV                 // constant c, variable b
	formMulti              // operand list in span, partials in pspan
	formCustom             // user Chainer at custom[span.Off]
)

// node is one vertex of the computational graph.
//
// val is fixed at construction. adj is only written by the backward pass,
// and chain only ever adds to operand adjoints: a node may feed several
// downstream nodes and must receive every contribution.
type node struct {
	val   float64
	adj   float64
	c     float64 // constant operand of VD and DV nodes
	a, b  uint32  // variable operands
	epoch uint64
	kind  ops.Kind
	form  form
	span  arena.Span
	pspan arena.Span
}

// resolve validates v against s and returns its node.
func (s *Stack) resolve(v Var) *node {
	switch {
	case v.s == nil:
		panic(ErrUninitialized)
	case v.s != s:
		panic(fmt.Errorf("stack %s: %w", s.id, ErrForeignVar))
	case int(v.id) >= s.nodes.Len():
		panic(fmt.Errorf("node %d beyond tape end %d: %w", v.id, s.nodes.Len(), ErrStaleVar))
	}
	n := s.nodes.At(v.id)
	if n.epoch != v.epoch {
		panic(fmt.Errorf("node %d from epoch %d, slot now holds epoch %d: %w", v.id, v.epoch, n.epoch, ErrStaleVar))
	}
	return n
}

// chain propagates n's adjoint to its operands.
func (s *Stack) chain(id uint32, n *node) {
	switch n.form {
	case formLeaf:
	case formUnary:
		a := s.nodes.At(n.a)
		a.adj += n.adj * ops.Partial1(n.kind, a.val, n.val)
	case formVV:
		a, b := s.nodes.At(n.a), s.nodes.At(n.b)
		da, db := ops.Partial2(n.kind, a.val, b.val, n.val)
		a.adj += n.adj * da
		b.adj += n.adj * db
	case formVD:
		a := s.nodes.At(n.a)
		a.adj += n.adj * ops.PartialA(n.kind, a.val, n.c, n.val)
	case formDV:
		b := s.nodes.At(n.b)
		b.adj += n.adj * ops.PartialB(n.kind, n.c, b.val, n.val)
	case formMulti:
		s.chainMulti(n)
	case formCustom:
		s.custom[n.span.Off].Chain(Var{s: s, id: id, epoch: n.epoch})
	}
}

func (s *Stack) chainMulti(n *node) {
	ids := s.operands.Slice(n.span)
	switch n.kind {
	case ops.Sum:
		for _, i := range ids {
			s.nodes.At(i).adj += n.adj
		}
	case ops.Dot:
		half := len(ids) / 2
		for i := range half {
			x, y := s.nodes.At(ids[i]), s.nodes.At(ids[half+i])
			x.adj += n.adj * y.val
			y.adj += n.adj * x.val
		}
	case ops.DotSelf:
		for _, i := range ids {
			x := s.nodes.At(i)
			x.adj += 2 * n.adj * x.val
		}
	case ops.Precomputed:
		ds := s.partials.Slice(n.pspan)
		for j, i := range ids {
			s.nodes.At(i).adj += n.adj * ds[j]
		}
	default:
		panic(fmt.Sprintf("autodiff: %s is not a multi-operand operation", n.kind))
	}
}
