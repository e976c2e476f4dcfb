package allocator

import "unsafe"

// addrOf returns the address of a non-empty byte slice's backing array.
func addrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
