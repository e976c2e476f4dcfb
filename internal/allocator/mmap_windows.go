//go:build windows

package allocator

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"
)

// windowsPageProvider grows the heap with VirtualAlloc/VirtualFree, the
// Windows half of spec's "OS page provider" contract.
type windowsPageProvider struct {
	pageSize uintptr

	mu      sync.Mutex
	regions []uintptr
	closed  bool
}

func newOSPageProvider() PageProvider {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return &windowsPageProvider{pageSize: uintptr(info.PageSize)}
}

func (p *windowsPageProvider) Grow(requested uintptr) (uintptr, uintptr, error) {
	if requested == 0 {
		return 0, 0, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, 0, ErrPageProviderClosed
	}

	size := roundUpToPage(requested, p.pageSize)

	addr, err := windows.VirtualAlloc(0, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return 0, 0, fmt.Errorf("allocator: VirtualAlloc failed: %w", err)
	}

	p.regions = append(p.regions, addr)
	return addr, size, nil
}

func (p *windowsPageProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	for _, addr := range p.regions {
		if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("allocator: VirtualFree failed: %w", err)
		}
	}
	p.regions = nil
	return firstErr
}
