package arena

import (
	"fmt"
	"unsafe"
)

// Span addresses a contiguous run of elements inside a Buffer.
type Span struct {
	Block uint32
	Off   uint32
	Len   uint32
}

// Buffer hands out contiguous runs of T.
//
// A run that does not fit in the remainder of the current block moves the
// cursor to the next retained block large enough to hold it, or to a freshly
// acquired one. Runs longer than the block size get a dedicated block.
type Buffer[T any] struct {
	blocks    [][]T
	blockSize int
	cur       int
	off       int
	used      int
	maxBlocks int
	onGrow    func(blocks int)
}

// NewBuffer creates a buffer whose regular blocks hold blockSize elements.
func NewBuffer[T any](blockSize, maxBlocks int) *Buffer[T] {
	if blockSize <= 0 {
		blockSize = 1 << DefaultBlockShift
	}
	return &Buffer[T]{blockSize: blockSize, maxBlocks: maxBlocks}
}

// OnGrow registers a callback invoked after a new block is acquired.
func (b *Buffer[T]) OnGrow(f func(blocks int)) {
	b.onGrow = f
}

// AllocN issues a zeroed run of n elements.
func (b *Buffer[T]) AllocN(n int) Span {
	if n <= 0 {
		return Span{}
	}
	for b.cur < len(b.blocks) {
		if b.off+n <= len(b.blocks[b.cur]) {
			return b.take(n)
		}
		b.cur++
		b.off = 0
	}
	b.grow(n)
	return b.take(n)
}

func (b *Buffer[T]) take(n int) Span {
	run := b.blocks[b.cur][b.off : b.off+n]
	clear(run)
	sp := Span{Block: uint32(b.cur), Off: uint32(b.off), Len: uint32(n)}
	b.off += n
	b.used += n
	return sp
}

func (b *Buffer[T]) grow(n int) {
	if b.maxBlocks > 0 && len(b.blocks) >= b.maxBlocks {
		panic(fmt.Errorf("buffer of %d blocks: %w", len(b.blocks), ErrExhausted))
	}
	b.blocks = append(b.blocks, make([]T, max(n, b.blockSize)))
	b.cur = len(b.blocks) - 1
	b.off = 0
	if b.onGrow != nil {
		b.onGrow(len(b.blocks))
	}
}

// Slice returns the elements of sp. The zero Span yields nil.
func (b *Buffer[T]) Slice(sp Span) []T {
	if sp.Len == 0 {
		return nil
	}
	end := sp.Off + sp.Len
	return b.blocks[sp.Block][sp.Off:end:end]
}

// Mark captures the current cursor.
func (b *Buffer[T]) Mark() Mark {
	return Mark{n: uint32(b.used), block: b.cur, off: b.off}
}

// Release returns every run issued after m to the buffer.
func (b *Buffer[T]) Release(m Mark) {
	if int(m.n) > b.used {
		panic(fmt.Sprintf("arena: release to mark %d beyond cursor %d", m.n, b.used))
	}
	b.cur, b.off, b.used = m.block, m.off, int(m.n)
}

// Reset returns every run to the buffer. Blocks are retained.
func (b *Buffer[T]) Reset() {
	b.cur, b.off, b.used = 0, 0, 0
}

// Free resets the buffer and drops all blocks but the first.
func (b *Buffer[T]) Free() {
	b.Reset()
	if len(b.blocks) > 1 {
		for i := 1; i < len(b.blocks); i++ {
			b.blocks[i] = nil
		}
		b.blocks = b.blocks[:1]
	}
}

// Stats reports current occupancy.
func (b *Buffer[T]) Stats() Stats {
	var zero T
	capacity := 0
	for _, blk := range b.blocks {
		capacity += len(blk)
	}
	return Stats{
		Blocks:   len(b.blocks),
		Capacity: capacity,
		Used:     b.used,
		Bytes:    int64(capacity) * int64(unsafe.Sizeof(zero)),
	}
}
