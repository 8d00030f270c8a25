package autodiff

import "slices"

// Tape records node construction order. The backward pass walks it in
// reverse, which is a valid reverse topological order because every node's
// operands are constructed before the node itself.
//
// Entries are node indices into the stack's node arena. The tape is
// append-only while recording and is only ever shortened from the end.
type Tape struct {
	ids []uint32 // Recorded node indices, strictly increasing.
}

// NewTape creates an empty tape.
func NewTape() *Tape {
	return &Tape{
		ids: make([]uint32, 0, 64), // Pre-allocate for common case
	}
}

// Record appends a node to the tape.
func (t *Tape) Record(id uint32) {
	t.ids = append(t.ids, id)
}

// Len returns the number of recorded nodes.
func (t *Tape) Len() int {
	return len(t.ids)
}

// At returns the node recorded at position i.
func (t *Tape) At(i int) uint32 {
	return t.ids[i]
}

// Search returns the tape position of node id, or -1 if it is not recorded.
func (t *Tape) Search(id uint32) int {
	if i, ok := slices.BinarySearch(t.ids, id); ok {
		return i
	}
	return -1
}

// Truncate discards every entry at position n and beyond.
func (t *Tape) Truncate(n int) {
	t.ids = t.ids[:n]
}

// Clear removes all entries. Capacity is kept.
func (t *Tape) Clear() {
	t.ids = t.ids[:0]
}

// Free removes all entries and drops the backing array.
func (t *Tape) Free() {
	t.ids = make([]uint32, 0, 64)
}
