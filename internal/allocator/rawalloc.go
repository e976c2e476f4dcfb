package allocator

import (
	"fmt"
	"unsafe"
)

// RawAllocator is the core of the package: one free-block list backed by
// one PageProvider. It translates (size, align) requests into block-list
// operations, growing the heap from the OS on a miss. It is not safe for
// concurrent use; the package-level Alloc/AllocZeroed/Realloc/Dealloc
// functions wrap one lazily-initialized instance and do not serialize
// callers either.
type RawAllocator struct {
	grower PageProvider
	blocks blockList

	// Tracer, if non-nil, is invoked whenever the allocator grows the
	// heap. It is the observability hook described in SPEC_FULL.md's
	// ambient-stack section, a simplified analogue of the teacher's
	// RegionObserver/AllocatorObserver callbacks.
	Tracer func(event GrowthEvent)
}

// GrowthEvent describes a single call into the PageProvider.
type GrowthEvent struct {
	Requested uintptr
	Base      uintptr
	Actual    uintptr
	Err       error
}

// NewRawAllocator constructs a RawAllocator over the given PageProvider.
func NewRawAllocator(grower PageProvider) *RawAllocator {
	return &RawAllocator{grower: grower}
}

// Stats audits the free list and summarizes it; see blockList.stats.
func (a *RawAllocator) Stats() (Validity, Stats) {
	return a.blocks.stats()
}

// blockSizeFor computes the internal block size for a (size, align)
// request: align_up(max(size, align), HeaderAlign), per spec 4.4.
func blockSizeFor(size, align uintptr) uintptr {
	n := size
	if align > n {
		n = align
	}
	return alignUp(n, HeaderAlign)
}

// Alloc returns a writable, align-aligned region of at least size bytes,
// or nil on out-of-memory. The memory is not initialized.
func (a *RawAllocator) Alloc(size, align uintptr) unsafe.Pointer {
	n := blockSizeFor(size, align)

	if align > HeaderAlign {
		// Take align-HeaderAlign spare bytes, then free the unused head and tail.
		total := n + align - HeaderAlign
		base := uintptr(a.Alloc(total, HeaderAlign))
		if base == 0 {
			return nil
		}
		p := alignUp(base, align)
		if p > base {
			a.blocks.addBlock(unsafe.Pointer(base), p-base)
		}
		if p+n < base+total {
			a.blocks.addBlock(unsafe.Pointer(p+n), base+total-p-n)
		}
		return unsafe.Pointer(p)
	}

	if base, _, ok := a.blocks.popSize(n); ok {
		return unsafe.Pointer(base)
	}

	base, got, err := a.grower.Grow(n)
	a.trace(GrowthEvent{Requested: n, Base: base, Actual: got, Err: err})
	if err != nil {
		return nil
	}

	if got >= n+HeaderSize {
		a.blocks.addBlock(unsafe.Pointer(base+n), got-n)
	}
	// got < n+HeaderSize cannot arise when the grower rounds up to its
	// page size and n <= page size; the sub-header tail, if any, is
	// simply not tracked (spec 4.4).
	return unsafe.Pointer(base)
}

// AllocZeroed is Alloc with the first size bytes zeroed.
func (a *RawAllocator) AllocZeroed(size, align uintptr) unsafe.Pointer {
	p := a.Alloc(size, align)
	if p == nil {
		return nil
	}
	clear(unsafe.Slice((*byte)(p), size))
	return p
}

// Realloc changes the block backing ptr (previously obtained from Alloc,
// AllocZeroed, or Realloc with layout (oldSize, align)) to hold at least
// newSize bytes, returning the (possibly new) base pointer. A nil return
// means the reallocation failed and ptr is untouched; ptr==nil behaves
// like Alloc(newSize, align).
func (a *RawAllocator) Realloc(ptr unsafe.Pointer, oldSize, align, newSize uintptr) unsafe.Pointer {
	if ptr == nil {
		return a.Alloc(newSize, align)
	}

	oldBlock := blockSizeFor(oldSize, align)
	newBlock := blockSizeFor(newSize, align)
	base := uintptr(ptr)

	if newBlock <= oldBlock {
		if oldBlock-newBlock >= HeaderSize {
			a.blocks.addBlock(unsafe.Pointer(base+newBlock), oldBlock-newBlock)
		}
		return ptr
	}

	if adjBase, adjSize, ok := a.blocks.findAdjacent(base, oldBlock); ok {
		need := newBlock - oldBlock
		if adjSize >= need {
			a.blocks.consumeAdjacent(adjBase, need)
			return ptr
		}
	}

	newPtr := a.Alloc(newSize, align)
	if newPtr == nil {
		return nil
	}

	copySize := oldBlock
	if newBlock < copySize {
		copySize = newBlock
	}
	copy(unsafe.Slice((*byte)(newPtr), copySize), unsafe.Slice((*byte)(ptr), copySize))
	a.Dealloc(ptr, oldSize, align)
	return newPtr
}

// Dealloc returns the region [ptr, ptr+size) to the allocator. Using ptr
// afterward is undefined. Preconditions (checked only when Debug is
// set): ptr != nil, ptr is aligned to align, and ptr does not already lie
// within a free block (double free).
func (a *RawAllocator) Dealloc(ptr unsafe.Pointer, size, align uintptr) {
	if ptr == nil {
		if Debug {
			panic("allocator: Dealloc called with a nil pointer")
		}
		return
	}

	if Debug && uintptr(ptr)%align != 0 {
		panic(fmt.Sprintf("allocator: Dealloc pointer %#x is not aligned to %d", uintptr(ptr), align))
	}

	n := blockSizeFor(size, align)
	a.blocks.addBlock(ptr, n)
}

// Close releases every region this allocator has ever obtained from its
// PageProvider. The free list itself is simply abandoned — the backing
// pages go away with it.
func (a *RawAllocator) Close() error {
	return a.grower.Close()
}

func (a *RawAllocator) trace(ev GrowthEvent) {
	if a.Tracer != nil {
		a.Tracer(ev)
	}
}
