package allocator

import "unsafe"

// SliceHeader mirrors the three words backing a Go slice, used by
// AllocSlice/ReallocSlice to hand the caller something that can be
// turned back into a real slice with unsafe.Slice.
type SliceHeader struct {
	Data unsafe.Pointer
	Len  int
	Cap  int
}

// AllocObject allocates size bytes for a single value of the given
// alignment. It is Alloc with an argument order that reads naturally at
// call sites allocating one object rather than a buffer.
func AllocObject(size, align uintptr) unsafe.Pointer {
	return Alloc(size, align)
}

// AllocSlice allocates storage for cap elements of elementSize bytes,
// aligned to align, and returns a header with Len capped to cap. A
// cap of zero returns a zero SliceHeader without touching the
// allocator.
func AllocSlice(elementSize, align uintptr, length, capacity int) SliceHeader {
	if capacity <= 0 {
		return SliceHeader{}
	}
	if length > capacity {
		length = capacity
	}

	data := Alloc(elementSize*uintptr(capacity), align)
	if data == nil {
		return SliceHeader{}
	}

	return SliceHeader{Data: data, Len: length, Cap: capacity}
}

// FreeSlice returns a slice previously obtained from AllocSlice or
// ReallocSlice to the allocator.
func FreeSlice(h SliceHeader, elementSize, align uintptr) {
	if h.Data == nil {
		return
	}
	Dealloc(h.Data, elementSize*uintptr(h.Cap), align)
}

// ReallocSlice grows or shrinks h to newCap elements, preserving the
// first min(h.Len, newCap) elements. The returned header's Len is
// clamped to newCap. A zero-value h behaves like AllocSlice(elementSize,
// align, 0, newCap).
func ReallocSlice(h SliceHeader, elementSize, align uintptr, newCap int) SliceHeader {
	if h.Data == nil {
		return AllocSlice(elementSize, align, 0, newCap)
	}
	if newCap <= 0 {
		FreeSlice(h, elementSize, align)
		return SliceHeader{}
	}

	newData := Realloc(h.Data, elementSize*uintptr(h.Cap), align, elementSize*uintptr(newCap))
	if newData == nil {
		return SliceHeader{}
	}

	length := h.Len
	if length > newCap {
		length = newCap
	}

	return SliceHeader{Data: newData, Len: length, Cap: newCap}
}

// Bytes views a SliceHeader as a []byte spanning its Len elements of
// elementSize bytes each, for copying raw contents in and out of the
// allocation. elementSize must match the value passed to the call that
// produced h.
func (h SliceHeader) Bytes(elementSize uintptr) []byte {
	if h.Data == nil || h.Len == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(h.Data), uintptr(h.Len)*elementSize)
}
