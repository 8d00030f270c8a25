// Package arena implements bump-pointer allocators with bulk-only reclamation.
//
// Two shapes are provided:
//   - Slab[T]: one element per allocation, addressed by a dense index that
//     equals allocation order since the last reset.
//   - Buffer[T]: contiguous runs of elements, addressed by a Span.
//
// Neither type frees individual allocations. Memory comes back in bulk, either
// to a Mark (Release) or entirely (Reset). Acquired blocks are kept for reuse so
// a loop that repeatedly allocates and releases the same amount of memory stops
// growing after its first iteration. Free drops the retained blocks.
//
// Arena types are not safe for concurrent use.
package arena

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrExhausted is raised (as a panic value) when an arena would need more
// blocks than its configured limit.
var ErrExhausted = errors.New("arena: block limit exhausted")

// DefaultBlockShift gives 4096 elements per Slab block.
const DefaultBlockShift = 12

// MaxBlockShift bounds block sizes to 1<<24 elements.
const MaxBlockShift = 24

// ClampShift returns shift, or DefaultBlockShift when shift is outside
// [1, MaxBlockShift].
func ClampShift(shift uint) uint {
	if shift == 0 || shift > MaxBlockShift {
		return DefaultBlockShift
	}
	return shift
}

// Stats describes arena occupancy.
type Stats struct {
	Blocks   int   // Blocks currently acquired (retained ones included).
	Capacity int   // Total elements the acquired blocks can hold.
	Used     int   // Elements issued since the last reset.
	Bytes    int64 // Bytes held by acquired blocks.
}

// Slab hands out single elements of T from fixed-size blocks.
//
// Index i lives in block i>>shift at offset i&mask, so At is two loads and
// no bookkeeping is kept per element.
type Slab[T any] struct {
	blocks    [][]T
	shift     uint
	mask      uint32
	n         uint32 // elements issued
	maxBlocks int    // 0 means unlimited
	onGrow    func(blocks int)
}

// NewSlab creates a slab with 1<<shift elements per block.
// maxBlocks bounds the number of blocks; zero means no bound.
func NewSlab[T any](shift uint, maxBlocks int) *Slab[T] {
	shift = ClampShift(shift)
	return &Slab[T]{
		shift:     shift,
		mask:      uint32(1)<<shift - 1,
		maxBlocks: maxBlocks,
	}
}

// OnGrow registers a callback invoked after a new block is acquired.
func (s *Slab[T]) OnGrow(f func(blocks int)) {
	s.onGrow = f
}

// Alloc issues the next element and returns its index and a pointer to it.
// The element is zeroed.
func (s *Slab[T]) Alloc() (uint32, *T) {
	i := s.n
	b := int(i >> s.shift)
	if b == len(s.blocks) {
		s.grow()
	}
	p := &s.blocks[b][i&s.mask]
	var zero T
	*p = zero
	s.n++
	return i, p
}

func (s *Slab[T]) grow() {
	if s.maxBlocks > 0 && len(s.blocks) >= s.maxBlocks {
		panic(fmt.Errorf("slab of %d blocks: %w", len(s.blocks), ErrExhausted))
	}
	s.blocks = append(s.blocks, make([]T, 1<<s.shift))
	if s.onGrow != nil {
		s.onGrow(len(s.blocks))
	}
}

// At returns the element at index i. i must be below Len.
func (s *Slab[T]) At(i uint32) *T {
	return &s.blocks[i>>s.shift][i&s.mask]
}

// Len returns the number of elements issued since the last reset.
func (s *Slab[T]) Len() int {
	return int(s.n)
}

// Mark captures the current cursor.
func (s *Slab[T]) Mark() Mark {
	return Mark{n: s.n}
}

// Release returns every element issued after m to the slab.
// Blocks are retained.
func (s *Slab[T]) Release(m Mark) {
	if m.n > s.n {
		panic(fmt.Sprintf("arena: release to mark %d beyond cursor %d", m.n, s.n))
	}
	s.n = m.n
}

// Reset returns every element to the slab. Blocks are retained.
func (s *Slab[T]) Reset() {
	s.n = 0
}

// Free resets the slab and drops all blocks but the first.
func (s *Slab[T]) Free() {
	s.n = 0
	if len(s.blocks) > 1 {
		for i := 1; i < len(s.blocks); i++ {
			s.blocks[i] = nil
		}
		s.blocks = s.blocks[:1]
	}
}

// Stats reports current occupancy.
func (s *Slab[T]) Stats() Stats {
	var zero T
	capacity := len(s.blocks) << s.shift
	return Stats{
		Blocks:   len(s.blocks),
		Capacity: capacity,
		Used:     int(s.n),
		Bytes:    int64(capacity) * int64(unsafe.Sizeof(zero)),
	}
}

// Mark is a saved cursor position.
type Mark struct {
	n     uint32
	block int
	off   int
}

// Index returns the number of elements issued when the mark was taken.
func (m Mark) Index() int {
	return int(m.n)
}
