package allocator

import "unsafe"

// HeaderSize is the size, in bytes, of a freeHeader. Every free region
// must be at least this large, and every region handed to a caller is
// aligned to at least HeaderAlign so that the allocator can later write
// a header into it when it is freed.
const HeaderSize = unsafe.Sizeof(freeHeader{})

// HeaderAlign is the alignment required of a free region's base address.
const HeaderAlign = 16

// freeHeader is written at the base of every free region. It is the only
// metadata the allocator keeps; there is no out-of-band bookkeeping.
//
// size is the total length of the region, header included. next is an
// owning link to the next free region in address order, or nil for the
// last block in the list.
type freeHeader struct {
	size uintptr
	next *freeHeader
}

func init() {
	if HeaderSize > HeaderAlign {
		panic("allocator: freeHeader does not fit in HeaderAlign bytes")
	}
}

// newFreeHeader writes a header in place at base, recording size and
// next, and returns a pointer to it. The caller must ensure size >=
// HeaderSize and base is aligned to HeaderAlign; from_raw in spec terms.
func newFreeHeader(base unsafe.Pointer, next *freeHeader, size uintptr) *freeHeader {
	if size < HeaderSize {
		panic("allocator: region smaller than HeaderSize")
	}
	if uintptr(base)%HeaderAlign != 0 {
		panic("allocator: region base not HeaderAlign-aligned")
	}

	h := (*freeHeader)(base)
	h.size = size
	h.next = next
	return h
}

func (h *freeHeader) addr() uintptr {
	return uintptr(unsafe.Pointer(h))
}
