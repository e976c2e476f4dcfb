package allocator

import "unsafe"

// blockList is an address-ordered singly linked list of free regions. It
// keeps no metadata of its own beyond the head pointer: every region's
// bookkeeping lives in the freeHeader written at its base.
//
// Invariants, maintained by addBlock, popSize and consumeAdjacent:
//
//   - (I1) address order: consecutive blocks A, B satisfy A.end <= B.start.
//   - (I2) no overlap: A.end <= B.start, strictly.
//   - (I3) maximal coalescing: A.end != B.start for consecutive blocks —
//     touching neighbors are always merged.
//   - (I4) minimum size: every block has size >= HeaderSize.
//   - (I5) no aliasing: each byte belongs to at most one block.
type blockList struct {
	first *freeHeader
}

// Validity is the result of a validity audit over a block list: counts of
// invariant violations observed by scanning consecutive pairs. A healthy
// list reports zero of each.
type Validity struct {
	Overlaps    int
	Adjacents   int
	OutOfOrders int
}

// IsValid reports whether the audit found no violations at all.
func (v Validity) IsValid() bool {
	return v.Overlaps == 0 && v.Adjacents == 0 && v.OutOfOrders == 0
}

// Stats summarizes the free list: how many blocks it holds and their
// total size in bytes.
type Stats struct {
	Count      int
	TotalBytes uintptr
}

// iter calls yield for every block in address order. It is read-only and
// safe to use while holding no other reference into the list.
func (l *blockList) iter(yield func(*freeHeader) bool) {
	for b := l.first; b != nil; b = b.next {
		if !yield(b) {
			return
		}
	}
}

// popSize implements first-fit allocation: it finds the first block whose
// size is >= need, removes exactly need bytes from the list (splitting if
// the remainder would still be at least HeaderSize, consuming the whole
// block otherwise), and returns the removed range. It reports ok=false if
// no block in the list can satisfy the request — blocks with
// need < size < need+HeaderSize are skipped rather than split, since
// splitting them would leave a sub-minimum residual (spec 4.3.1).
func (l *blockList) popSize(need uintptr) (base uintptr, size uintptr, ok bool) {
	var prev *freeHeader
	for b := l.first; b != nil; prev, b = b, b.next {
		if b.size < need {
			continue
		}
		if b.size == need {
			unlink(l, prev, b)
			return b.addr(), need, true
		}
		if b.canSplit(need) {
			base, size := b.split(need)
			return base, size, true
		}
		// need < b.size < need+HeaderSize: skip, keep searching.
	}
	return 0, 0, false
}

func unlink(l *blockList, prev, b *freeHeader) {
	if prev == nil {
		l.first = b.takeNext()
		return
	}
	prev.replaceNext(b.takeNext())
}

// addBlock inserts the region [base, base+size) into the list, merging it
// with an address-adjacent predecessor and/or successor so invariant (I3)
// holds afterward. Overlap with an existing block is a programmer error
// (double free); it is checked only when Debug is set, per spec 4.3.2.
func (l *blockList) addBlock(base unsafe.Pointer, size uintptr) {
	if Debug {
		checkNoOverlap(l, uintptr(base), size)
	}

	h := newFreeHeader(base, nil, size)

	if l.first == nil {
		l.first = h
		return
	}

	if rel := h.relationTo(l.first); rel == Before || rel == AdjacentBefore {
		h.replaceNext(l.first)
		l.first = h
		// h has no predecessor; only a successor-side merge is possible.
		h.tryMergeNext()
		return
	}

	// Find the predecessor P such that P comes before h and either P is
	// last or P.next starts after h.
	prev := l.first
	for prev.next != nil {
		if rel := h.relationTo(prev.next); rel == Before || rel == AdjacentBefore {
			break
		}
		prev = prev.next
	}

	h.replaceNext(prev.takeNext())
	prev.replaceNext(h)

	// At most two merges can happen at this insertion site: prev+h, and
	// then the (possibly now-enlarged) prev with its new successor. If
	// prev didn't absorb h, h itself may still merge with that successor.
	if prev.tryMergeNext() {
		prev.tryMergeNext()
	} else {
		h.tryMergeNext()
	}
}

func checkNoOverlap(l *blockList, hStart, size uintptr) {
	hEnd := hStart + size
	for b := l.first; b != nil; b = b.next {
		bStart, bEnd := b.blockRange()
		if hStart < bEnd && bStart < hEnd {
			panic("allocator: double free — region overlaps an existing free block")
		}
	}
}

// findAdjacent returns the range of the block whose base equals
// ptr+size, used by Realloc to attempt an in-place grow.
func (l *blockList) findAdjacent(ptr uintptr, size uintptr) (base uintptr, blockSize uintptr, ok bool) {
	target := ptr + size
	for b := l.first; b != nil; b = b.next {
		if b.addr() == target {
			return b.addr(), b.size, true
		}
		if b.addr() > target {
			return 0, 0, false
		}
	}
	return 0, 0, false
}

// consumeAdjacent removes need bytes from the front of the block at base
// (which must be the block findAdjacent just reported), splitting it if
// more than need bytes remain.
func (l *blockList) consumeAdjacent(base uintptr, need uintptr) {
	var prev *freeHeader
	for b := l.first; b != nil; prev, b = b, b.next {
		if b.addr() != base {
			continue
		}
		if b.size == need {
			unlink(l, prev, b)
			return
		}
		// Consume from the front: the remainder keeps the tail of the
		// block and must be re-homed at the new base, since the header
		// always lives at a block's lowest address.
		newBase := b.addr() + need
		newSize := b.size - need
		rest := newFreeHeader(unsafe.Pointer(newBase), b.next, newSize)
		if prev == nil {
			l.first = rest
		} else {
			prev.replaceNext(rest)
		}
		return
	}
	panic("allocator: consumeAdjacent called with a base not present in the list")
}

// stats performs a single pass recording block-list size totals and
// validity violations between every consecutive pair.
func (l *blockList) stats() (Validity, Stats) {
	var v Validity
	var s Stats

	var prev *freeHeader
	for b := l.first; b != nil; b = b.next {
		if prev != nil {
			switch prev.relationTo(b) {
			case Before:
			case AdjacentBefore:
				v.Adjacents++
			case Overlapping:
				v.Overlaps++
			case AdjacentAfter:
				v.OutOfOrders++
				v.Adjacents++
			case After:
				v.OutOfOrders++
			}
		}
		s.Count++
		s.TotalBytes += b.size
		prev = b
	}

	return v, s
}
