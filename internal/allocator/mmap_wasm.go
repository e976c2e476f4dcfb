//go:build js && wasm

package allocator

import "sync"

// wasmPageSize is the fixed page size of a WebAssembly linear memory, per
// the core wasm spec: 64KiB, independent of any host native page size.
// Grounded on original_source/src/mmap/platform/wasm/mod.rs's
// "(len + 65535) / 65536" page-count computation.
const wasmPageSize = 65536

// wasmPageProvider grows the heap by allocating Go byte slices. On this
// target the Go runtime's own heap is already backed by the single
// WebAssembly linear memory, grown with the memory.grow instruction
// whenever an allocation needs more space; a make([]byte, n) here
// triggers that same growth without needing direct access to the
// js_sys/WebAssembly.Memory bindings the original reaches for. It is the
// js/wasm half of spec's "OS page provider" contract.
type wasmPageProvider struct {
	mu      sync.Mutex
	regions [][]byte
	closed  bool
}

// newOSPageProvider constructs the default, build-selected PageProvider
// for this platform.
func newOSPageProvider() PageProvider {
	return &wasmPageProvider{}
}

func (p *wasmPageProvider) Grow(requested uintptr) (uintptr, uintptr, error) {
	if requested == 0 {
		return 0, 0, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, 0, ErrPageProviderClosed
	}

	size := roundUpToPage(requested, wasmPageSize)

	// Pad by HeaderAlign and round the base up within the buffer, same
	// as ToyHeap: Go makes no alignment guarantee for a slice's backing
	// array beyond what its element type requires.
	b := make([]byte, size+HeaderAlign)
	base := alignUp(addrOf(b), HeaderAlign)

	p.regions = append(p.regions, b)
	return base, size, nil
}

func (p *wasmPageProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.regions = nil
	return nil
}
