//go:build unix

package allocator

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// unixPageProvider grows the heap with anonymous, private mmap regions.
// It is the Unix half of spec's "OS page provider" contract — grounded on
// the mmap/munmap pairing used throughout the pack's platform-specific
// syscall files (e.g. internal/runtime/asyncio's *_unix*.go pollers).
type unixPageProvider struct {
	pageSize uintptr

	mu      sync.Mutex
	regions [][]byte
	closed  bool
}

// newOSPageProvider constructs the default, build-selected PageProvider
// for this platform.
func newOSPageProvider() PageProvider {
	return &unixPageProvider{pageSize: uintptr(unix.Getpagesize())}
}

func (p *unixPageProvider) Grow(requested uintptr) (uintptr, uintptr, error) {
	if requested == 0 {
		return 0, 0, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, 0, ErrPageProviderClosed
	}

	size := roundUpToPage(requested, p.pageSize)

	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, 0, fmt.Errorf("allocator: mmap failed: %w", err)
	}

	p.regions = append(p.regions, b)
	return addrOf(b), size, nil
}

func (p *unixPageProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	for _, b := range p.regions {
		if err := unix.Munmap(b); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("allocator: munmap failed: %w", err)
		}
	}
	p.regions = nil
	return firstErr
}
