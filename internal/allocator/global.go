package allocator

import (
	"runtime"
	"sync/atomic"
	"unsafe"
)

// Initialization states for the global shim, mirroring the three-state
// atomic byte described in spec.md 4.5: Uninit, Initializing, Ready.
const (
	stateUninit uint32 = iota
	stateInitializing
	stateReady
)

// globalAllocator lazily constructs a single RawAllocator and exposes
// exclusive access to it. Exclusivity is claimed, not enforced by a
// mutex: the design expects the embedder to serialize every
// Alloc/Dealloc/Realloc call on the installed allocator, exactly as a
// process-wide GlobalAlloc implementation's contract requires (spec.md
// CONCURRENCY & RESOURCE MODEL). A thread-safe deployment wraps its calls
// to the package-level functions in a mutex of its own; this package does
// not do that for you.
type globalAllocator struct {
	state uint32 // atomic: stateUninit / stateInitializing / stateReady
	raw   unsafe.Pointer // atomic: *RawAllocator, published once state reaches Ready
	opts  options
}

var shim globalAllocator

// Option configures the global allocator's first construction. Options
// passed after the shim has already initialized are ignored — there is
// no per-call runtime configuration, per spec.md EXTERNAL INTERFACES.
type Option func(*options)

type options struct {
	provider PageProvider
	tracer   func(GrowthEvent)
}

// WithPageProvider overrides the default OS-backed PageProvider — used
// by tests to install a ToyHeap, and by embedders sandboxing total
// memory use.
func WithPageProvider(p PageProvider) Option {
	return func(o *options) { o.provider = p }
}

// WithTracer installs a callback invoked on every heap growth.
func WithTracer(t func(GrowthEvent)) Option {
	return func(o *options) { o.tracer = t }
}

// Configure applies options to the global allocator. It only has an
// effect if called before the first Alloc/AllocZeroed/Realloc/Dealloc/
// GlobalStats call; once the shim is Ready, Configure is a no-op, reported via
// the boolean return.
func Configure(opts ...Option) (applied bool) {
	if atomic.LoadUint32(&shim.state) != stateUninit {
		return false
	}
	for _, opt := range opts {
		opt(&shim.opts)
	}
	return true
}

// get returns the process-wide RawAllocator, constructing it on the
// first call. Fast path: a single acquire load once Ready.
func get() *RawAllocator {
	if raw := (*RawAllocator)(atomic.LoadPointer(&shim.raw)); raw != nil {
		return raw
	}
	return ensureInitialized()
}

func ensureInitialized() *RawAllocator {
	if atomic.CompareAndSwapUint32(&shim.state, stateUninit, stateInitializing) {
		provider := shim.opts.provider
		if provider == nil {
			provider = newOSPageProvider()
		}

		raw := NewRawAllocator(provider)
		raw.Tracer = shim.opts.tracer

		atomic.StorePointer(&shim.raw, unsafe.Pointer(raw))
		atomic.StoreUint32(&shim.state, stateReady)
		return raw
	}

	// Lost the race: spin until the winner publishes, with bounded
	// exponential backoff using a scheduler yield as the relax hint
	// (spec.md DESIGN NOTES, "lazy one-time initialization").
	backoff := 1
	for {
		if raw := (*RawAllocator)(atomic.LoadPointer(&shim.raw)); raw != nil {
			return raw
		}
		for i := 0; i < backoff; i++ {
			runtime.Gosched()
		}
		if backoff < 64 {
			backoff *= 2
		}
	}
}

// Alloc, AllocZeroed, Realloc, Dealloc, and GlobalStats are the package's
// public surface (spec.md EXTERNAL INTERFACES), delegating to the
// lazily-constructed global RawAllocator. Each call is treated as having
// exclusive access to it for its duration; see globalAllocator's doc
// comment for what that requires of the caller.

// Alloc returns a writable, align-aligned region of at least size bytes,
// or nil on out-of-memory.
func Alloc(size, align uintptr) unsafe.Pointer {
	return get().Alloc(size, align)
}

// AllocZeroed is Alloc with the first size bytes zeroed.
func AllocZeroed(size, align uintptr) unsafe.Pointer {
	return get().AllocZeroed(size, align)
}

// Realloc resizes the allocation at ptr; see RawAllocator.Realloc.
func Realloc(ptr unsafe.Pointer, oldSize, align, newSize uintptr) unsafe.Pointer {
	return get().Realloc(ptr, oldSize, align, newSize)
}

// Dealloc returns the region [ptr, ptr+size) to the allocator.
func Dealloc(ptr unsafe.Pointer, size, align uintptr) {
	get().Dealloc(ptr, size, align)
}

// GlobalStats audits the global allocator's free list.
func GlobalStats() (Validity, Stats) {
	return get().Stats()
}
