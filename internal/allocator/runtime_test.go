package allocator

import "testing"

func TestAllocObjectReturnsAlignedStorage(t *testing.T) {
	resetShimForTest()
	defer resetShimForTest()
	Configure(WithPageProvider(NewToyHeap(1<<16, 4096)))

	p := AllocObject(64, 16)
	if p == nil {
		t.Fatal("AllocObject returned nil")
	}
	if uintptr(p)%16 != 0 {
		t.Fatalf("pointer %p not aligned to 16", p)
	}
}

func TestAllocSliceZeroCapacityReturnsZeroHeaderWithoutAllocating(t *testing.T) {
	resetShimForTest()
	defer resetShimForTest()
	Configure(WithPageProvider(NewToyHeap(1<<16, 4096)))

	h := AllocSlice(8, 8, 0, 0)
	if h.Data != nil || h.Len != 0 || h.Cap != 0 {
		t.Fatalf("expected a zero SliceHeader, got %+v", h)
	}

	v, s := GlobalStats()
	if !v.IsValid() || s.Count != 0 {
		t.Fatalf("a zero-capacity AllocSlice must not touch the allocator: stats %+v", s)
	}
}

func TestAllocSliceClampsLengthToCapacity(t *testing.T) {
	resetShimForTest()
	defer resetShimForTest()
	Configure(WithPageProvider(NewToyHeap(1<<16, 4096)))

	h := AllocSlice(8, 8, 10, 4)
	if h.Data == nil {
		t.Fatal("AllocSlice failed")
	}
	if h.Cap != 4 {
		t.Fatalf("Cap = %d, want 4", h.Cap)
	}
	if h.Len != 4 {
		t.Fatalf("Len = %d, want Len clamped down to Cap (4)", h.Len)
	}
}

func TestAllocSliceFailureCollapsesToZeroHeader(t *testing.T) {
	resetShimForTest()
	defer resetShimForTest()
	// A heap too small to satisfy the request forces Alloc to return nil,
	// which AllocSlice must turn into a zero SliceHeader rather than a
	// header pointing at a failed allocation.
	Configure(WithPageProvider(NewToyHeap(64, 64)))

	h := AllocSlice(8, 8, 4, 100000)
	if h.Data != nil || h.Len != 0 || h.Cap != 0 {
		t.Fatalf("expected a zero SliceHeader on OOM, got %+v", h)
	}
}

func TestFreeSliceNilDataIsNoop(t *testing.T) {
	resetShimForTest()
	defer resetShimForTest()
	Configure(WithPageProvider(NewToyHeap(1<<16, 4096)))

	FreeSlice(SliceHeader{}, 8, 8)

	v, s := GlobalStats()
	if !v.IsValid() || s.Count != 0 {
		t.Fatalf("freeing a zero SliceHeader must not touch the allocator: stats %+v", s)
	}
}

func TestAllocSliceThenFreeSliceRoundTrips(t *testing.T) {
	resetShimForTest()
	defer resetShimForTest()
	Configure(WithPageProvider(NewToyHeap(1<<16, 4096)))

	h := AllocSlice(8, 8, 4, 4)
	if h.Data == nil {
		t.Fatal("AllocSlice failed")
	}
	FreeSlice(h, 8, 8)

	v, _ := GlobalStats()
	if !v.IsValid() {
		t.Fatalf("unexpected violations after FreeSlice: %+v", v)
	}
}

func TestReallocSliceOnZeroValueBehavesLikeAllocSlice(t *testing.T) {
	resetShimForTest()
	defer resetShimForTest()
	Configure(WithPageProvider(NewToyHeap(1<<16, 4096)))

	h := ReallocSlice(SliceHeader{}, 8, 8, 4)
	if h.Data == nil {
		t.Fatal("ReallocSlice on a zero-value header should allocate")
	}
	if h.Cap != 4 || h.Len != 0 {
		t.Fatalf("got %+v, want Cap=4 Len=0", h)
	}
}

func TestReallocSliceToNonPositiveCapFrees(t *testing.T) {
	resetShimForTest()
	defer resetShimForTest()
	Configure(WithPageProvider(NewToyHeap(1<<16, 4096)))

	h := AllocSlice(8, 8, 4, 4)
	if h.Data == nil {
		t.Fatal("AllocSlice failed")
	}

	h2 := ReallocSlice(h, 8, 8, 0)
	if h2.Data != nil || h2.Len != 0 || h2.Cap != 0 {
		t.Fatalf("expected a zero SliceHeader, got %+v", h2)
	}

	v, s := GlobalStats()
	if !v.IsValid() || s.Count != 1 {
		t.Fatalf("expected the freed storage back in the free list exactly once: %+v valid=%v", s, v.IsValid())
	}
}

func TestReallocSliceGrowsAndClampsLength(t *testing.T) {
	resetShimForTest()
	defer resetShimForTest()
	Configure(WithPageProvider(NewToyHeap(1<<16, 4096)))

	h := AllocSlice(8, 8, 4, 4)
	if h.Data == nil {
		t.Fatal("AllocSlice failed")
	}
	bytes := h.Bytes(8)
	for i := range bytes {
		bytes[i] = byte(i + 1)
	}

	grown := ReallocSlice(h, 8, 8, 8)
	if grown.Data == nil {
		t.Fatal("ReallocSlice failed")
	}
	if grown.Cap != 8 {
		t.Fatalf("Cap = %d, want 8", grown.Cap)
	}
	if grown.Len != 4 {
		t.Fatalf("Len = %d, want the original Len (4) preserved", grown.Len)
	}

	preserved := grown.Bytes(8)
	for i := 0; i < 4*8; i++ {
		want := byte(i + 1)
		if preserved[i] != want {
			t.Fatalf("byte %d = %d, want %d (contents not preserved across growth)", i, preserved[i], want)
		}
	}
}

func TestReallocSliceShrinksAndClampsLength(t *testing.T) {
	resetShimForTest()
	defer resetShimForTest()
	Configure(WithPageProvider(NewToyHeap(1<<16, 4096)))

	h := AllocSlice(8, 8, 8, 8)
	if h.Data == nil {
		t.Fatal("AllocSlice failed")
	}

	shrunk := ReallocSlice(h, 8, 8, 3)
	if shrunk.Data == nil {
		t.Fatal("ReallocSlice failed")
	}
	if shrunk.Cap != 3 {
		t.Fatalf("Cap = %d, want 3", shrunk.Cap)
	}
	if shrunk.Len != 3 {
		t.Fatalf("Len = %d, want Len clamped down to the new Cap (3)", shrunk.Len)
	}
}

func TestSliceHeaderBytesOfZeroValueIsNil(t *testing.T) {
	var h SliceHeader
	if h.Bytes(8) != nil {
		t.Fatalf("expected nil, got %v", h.Bytes(8))
	}
}

func TestSliceHeaderBytesReflectsLenScaledByElementSize(t *testing.T) {
	resetShimForTest()
	defer resetShimForTest()
	Configure(WithPageProvider(NewToyHeap(1<<16, 4096)))

	h := AllocSlice(4, 4, 3, 10)
	b := h.Bytes(4)
	if len(b) != 3*4 {
		t.Fatalf("len(Bytes(4)) = %d, want Len*elementSize (3*4=12), not Cap*elementSize (10*4=40)", len(b))
	}
}
