package allocator

import "fmt"

// ToyHeap is a fixed-capacity, non-OS-backed PageProvider used by tests
// and by embedders who want a bounded-memory sandbox. It is the external
// "toy-heap test fixture" collaborator spec scopes out of the core
// design (spec.md PURPOSE & SCOPE), grounded on
// original_source/src/allocators/toy_heap.rs: growth requests are
// rounded up to a configurable page size and served from a single
// preallocated buffer, failing once the buffer is exhausted.
type ToyHeap struct {
	pageSize uintptr
	buf      []byte
	base     uintptr // first HeaderAlign-aligned address within buf
	capacity uintptr // bytes available at and after base
	used     uintptr
}

// ErrToyHeapOverflow is returned by ToyHeap.Grow when a request would
// exceed the heap's fixed capacity.
var ErrToyHeapOverflow = fmt.Errorf("allocator: toy heap exhausted")

// NewToyHeap creates a ToyHeap with the given total capacity and page
// size, both in bytes. Both must be greater than zero. The backing
// buffer is padded so that every region Grow hands out starts
// HeaderAlign-aligned, regardless of where the Go runtime places the
// underlying array.
func NewToyHeap(capacity, pageSize uintptr) *ToyHeap {
	if capacity == 0 || pageSize == 0 {
		panic("allocator: ToyHeap capacity and pageSize must be positive")
	}

	buf := make([]byte, capacity+HeaderAlign)
	base := alignUp(addrOf(buf), HeaderAlign)

	return &ToyHeap{
		pageSize: pageSize,
		buf:      buf,
		base:     base,
		capacity: capacity,
	}
}

// Grow implements PageProvider.
func (h *ToyHeap) Grow(requested uintptr) (uintptr, uintptr, error) {
	if requested == 0 {
		return 0, 0, nil
	}

	size := roundUpToPage(requested, h.pageSize)
	if h.used+size > h.capacity {
		return 0, 0, ErrToyHeapOverflow
	}

	base := h.base + h.used
	h.used += size
	return base, size, nil
}

// Close is a no-op: the backing buffer is an ordinary Go slice reclaimed
// by the garbage collector once the ToyHeap itself is unreachable.
func (h *ToyHeap) Close() error { return nil }

// Used reports how many bytes of the toy heap have been handed out so far.
func (h *ToyHeap) Used() uintptr { return h.used }

// Capacity reports the toy heap's total size in bytes.
func (h *ToyHeap) Capacity() uintptr { return h.capacity }
