package autodiff

import "fmt"

// StartNested opens a nested scope. Nodes created until the matching
// RecoverMemoryNested are reclaimed by it; nodes of enclosing scopes stay
// valid and may be used as operands inside the scope.
func (s *Stack) StartNested() {
	s.scopes = append(s.scopes, scope{
		tape:     s.tape.Len(),
		nodes:    s.nodes.Mark(),
		operands: s.operands.Mark(),
		partials: s.partials.Mark(),
		custom:   len(s.custom),
	})
	s.log.Debug("nested scope started", "depth", len(s.scopes), "tape", s.tape.Len())
}

// RecoverMemoryNested closes the innermost nested scope, truncating the tape
// and returning the scope's arena memory for reuse. Handles created in the
// scope become stale. It panics with ErrNoNested when no scope is open.
func (s *Stack) RecoverMemoryNested() {
	if err := s.TryRecoverMemoryNested(); err != nil {
		panic(err)
	}
}

// TryRecoverMemoryNested is RecoverMemoryNested returning the misuse as an error.
func (s *Stack) TryRecoverMemoryNested() error {
	if len(s.scopes) == 0 {
		return ErrNoNested
	}
	top := s.scopes[len(s.scopes)-1]
	s.scopes = s.scopes[:len(s.scopes)-1]

	s.tape.Truncate(top.tape)
	s.nodes.Release(top.nodes)
	s.operands.Release(top.operands)
	s.partials.Release(top.partials)
	clear(s.custom[top.custom:])
	s.custom = s.custom[:top.custom]
	s.bump()

	s.log.Debug("nested scope recovered", "depth", len(s.scopes), "tape", s.tape.Len())
	return nil
}

// RecoverMemory reclaims every node on the stack. Every handle becomes
// stale. It panics with ErrNestedActive while a nested scope is open, since
// the enclosing computation still depends on its nodes.
func (s *Stack) RecoverMemory() {
	if err := s.TryRecoverMemory(); err != nil {
		panic(err)
	}
}

// TryRecoverMemory is RecoverMemory returning the misuse as an error.
func (s *Stack) TryRecoverMemory() error {
	if len(s.scopes) > 0 {
		return fmt.Errorf("recover memory at depth %d: %w", len(s.scopes), ErrNestedActive)
	}
	s.tape.Clear()
	s.nodes.Reset()
	s.operands.Reset()
	s.partials.Reset()
	clear(s.custom)
	s.custom = s.custom[:0]
	s.bump()

	s.log.Debug("memory recovered", "blocks", s.nodes.Stats().Blocks)
	return nil
}

// FreeMemory recovers all memory and releases the retained arena blocks.
// Same precondition as RecoverMemory.
func (s *Stack) FreeMemory() {
	s.RecoverMemory()
	if s.observer != nil {
		s.observer(s.Stats())
	}
	s.tape.Free()
	s.nodes.Free()
	s.operands.Free()
	s.partials.Free()
	s.custom = nil
	s.log.Debug("memory freed")
}

// NestedDepth returns the number of open nested scopes.
func (s *Stack) NestedDepth() int {
	return len(s.scopes)
}

// EmptyNested reports whether no nested scope is open.
func (s *Stack) EmptyNested() bool {
	return len(s.scopes) == 0
}

// Nested runs f inside a nested scope. The scope is recovered when f
// returns or panics, along with any scope f left open.
func (s *Stack) Nested(f func()) {
	depth := len(s.scopes)
	s.StartNested()
	defer s.unwindTo(depth)
	f()
}

// unwindTo recovers nested scopes until depth remain.
func (s *Stack) unwindTo(depth int) {
	for len(s.scopes) > depth {
		s.RecoverMemoryNested()
	}
}

func (s *Stack) bump() {
	s.epoch++
	s.recoveries++
}
