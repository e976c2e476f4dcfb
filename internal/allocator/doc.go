// Package allocator implements the Orizon runtime's process-wide heap
// allocator.
//
// The design keeps no bookkeeping outside the memory it manages: every
// free region carries its own header (size plus a forward link) written
// into its first sixteen bytes, and the free regions form a single
// address-ordered linked list. Allocation is first-fit over that list;
// freeing coalesces with address-adjacent neighbors immediately. Large
// regions are obtained from the OS on demand (mmap on Unix, VirtualAlloc
// on Windows) through the PageProvider interface and are not returned
// to the OS until the allocator is closed.
//
// The package is not safe for concurrent use: the package-level
// Alloc/AllocZeroed/Realloc/Dealloc functions share a single
// lazily-constructed RawAllocator and do not serialize access to it, so
// callers using them from several goroutines must serialize the calls.
package allocator

// Debug enables precondition checks that are expensive or destructive
// enough that they are off by default: double-free detection (a freed
// range overlapping an existing free block), poisoning of headers
// absorbed by a merge, and nil-pointer and alignment checks on Dealloc.
// A Dealloc whose size does not match the allocation is not detected. Set it
// before the first call into the package; it is read without
// synchronization on the hot path.
var Debug = false
