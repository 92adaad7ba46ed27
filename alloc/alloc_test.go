// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import (
	"flag"
	"math/rand"
	"sort"
	"testing"

	"github.com/cznic/sortutil"
)

var (
	stressN   = flag.Int("N", 10000, "stress test op count")
	stressLim = flag.Int("lim", 512, "stress test max request size")
)

func mustMalloc(t *testing.T, a *Allocator, size int) int {
	t.Helper()
	bp, err := a.Malloc(size)
	if err != nil {
		t.Fatal(err)
	}
	if bp == nilAddr {
		t.Fatalf("Malloc(%d) returned nilAddr", size)
	}
	return bp
}

func TestMallocZero(t *testing.T) {
	a := New(NewMemArena())
	bp, err := a.Malloc(0)
	if err != nil {
		t.Fatal(err)
	}
	if bp != nilAddr {
		t.Fatalf("Malloc(0) = %d, want nilAddr", bp)
	}
}

func TestMallocNegative(t *testing.T) {
	a := New(NewMemArena())
	if _, err := a.Malloc(-1); err == nil {
		t.Fatal("expected error for negative size")
	}
}

func TestPayloadWriteThrough(t *testing.T) {
	a := New(NewMemArena())
	bp := mustMalloc(t, a, 100)

	size, alloc := getHeader(a.p, bp)
	if !alloc {
		t.Fatal("block not marked allocated")
	}

	buf := make([]byte, size-dsize)
	for i := range buf {
		buf[i] = byte(i)
	}
	a.p.WriteAt(buf, bp)

	got := make([]byte, len(buf))
	a.p.ReadAt(got, bp)
	for i := range buf {
		if got[i] != buf[i] {
			t.Fatalf("roundtrip mismatch at %d", i)
		}
	}

	if g, _ := getHeader(a.p, bp); g != size {
		t.Fatalf("header size changed: %d -> %d", size, g)
	}
}

func TestAlignment(t *testing.T) {
	a := New(NewMemArena())
	for _, sz := range []int{1, 2, 7, 8, 9, 100, 4096} {
		bp := mustMalloc(t, a, sz)
		if bp%8 != 0 {
			t.Fatalf("Malloc(%d) = %d not 8 byte aligned", sz, bp)
		}
	}
}

// Freeing two adjacent small blocks must coalesce them, together with the
// CHUNKSIZE remainder, back into one free block big enough to satisfy a
// later request in place, with no heap extension.
func TestScenarioCoalesceEnablesFit(t *testing.T) {
	arena := NewMemArena()
	a := New(arena)

	bpA := mustMalloc(t, a, 1)
	bpB := mustMalloc(t, a, 1)
	hiBefore := arena.Hi()

	a.Free(bpA)
	a.Free(bpB)

	bpC := mustMalloc(t, a, 40)
	if arena.Hi() != hiBefore {
		t.Fatalf("malloc(40) grew the heap: hi %d -> %d", hiBefore, arena.Hi())
	}
	_ = bpC
}

// Freeing three adjacent allocated blocks in any order must coalesce them
// into exactly one free block.
func TestScenarioTripleCoalesce(t *testing.T) {
	arena := NewMemArena()
	a := New(arena)

	bpA := mustMalloc(t, a, 64)
	bpB := mustMalloc(t, a, 64)
	bpC := mustMalloc(t, a, 64)

	a.Free(bpA)
	a.Free(bpC)
	a.Free(bpB)

	var st Stats
	if err := NewChecker(a).Verify(nil, &st); err != nil {
		t.Fatal(err)
	}

	size, alloc := getHeader(a.p, bpA)
	if alloc {
		t.Fatalf("bpA's block not free after coalescing, size %d", size)
	}
	if st.FreeCount != 1 {
		t.Fatalf("expected exactly one free block after triple coalesce, got %d", st.FreeCount)
	}
	if st.ClassCount[classOf(size)] != 1 {
		t.Fatalf("expected exactly one free block in class(%d), got %d", classOf(size), st.ClassCount[classOf(size)])
	}
}

// Shrinking within cur-DSIZE keeps the same block.
func TestScenarioReallocShrinkInPlace(t *testing.T) {
	a := New(NewMemArena())
	bp := mustMalloc(t, a, 24)
	r, err := a.Realloc(bp, 8)
	if err != nil {
		t.Fatal(err)
	}
	if r != bp {
		t.Fatalf("realloc shrink relocated: %d -> %d", bp, r)
	}
}

// A growing realloc absorbs a free right neighbor.
func TestScenarioReallocAbsorbsRight(t *testing.T) {
	a := New(NewMemArena())
	bpA := mustMalloc(t, a, 24)
	bpB := mustMalloc(t, a, 24)
	a.Free(bpB)

	r, err := a.Realloc(bpA, 40)
	if err != nil {
		t.Fatal(err)
	}
	if r != bpA {
		t.Fatalf("realloc grow relocated unexpectedly: %d -> %d", bpA, r)
	}

	size, alloc := getHeader(a.p, bpA)
	if !alloc || size < 48 {
		t.Fatalf("expected merged size >= 48, got %d (alloc=%v)", size, alloc)
	}
}

// A growing realloc with no adjacent room relocates and copies the live
// prefix. The guard allocation occupies bp's right neighbor so neither the
// absorb nor the in-place-extension path applies, forcing the fallback.
func TestScenarioReallocRelocates(t *testing.T) {
	a := New(NewMemArena())
	bp := mustMalloc(t, a, 16)
	mustMalloc(t, a, 16) // guard

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	a.p.WriteAt(payload, bp)

	r, err := a.Realloc(bp, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if r == bp {
		t.Fatal("expected realloc to relocate")
	}

	got := make([]byte, len(payload))
	a.p.ReadAt(got, r)
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("copied payload mismatch at %d: got %d want %d", i, got[i], payload[i])
		}
	}
}

func TestOutOfMemory(t *testing.T) {
	arena := NewMemArena()
	arena.Limit = 64 // Init needs 16 sentinel bytes plus a 64 byte first chunk
	a := New(arena)
	if _, err := a.Malloc(8); err == nil {
		t.Fatal("expected out-of-memory error")
	}
}

// TestAllocatorRnd interleaves random mallocs and frees and verifies
// invariants I1-I8 every 100 ops.
func TestAllocatorRnd(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	arena := NewMemArena()
	a := New(arena)
	chk := NewChecker(a)

	live := map[int]int{} // bp -> requested size
	ref := map[int][]byte{}

	verify := func() {
		t.Helper()
		var errs []error
		log := func(err error) bool {
			errs = append(errs, err)
			return len(errs) < 20
		}
		if err := chk.Verify(log, nil); err != nil {
			t.Fatalf("Verify: %v (additional: %v)", err, errs)
		}
		if len(errs) != 0 {
			t.Fatalf("Verify reported %d problems, first: %v", len(errs), errs[0])
		}
	}

	N := *stressN
	for i := 0; i < N; i++ {
		switch {
		case len(live) == 0 || rng.Intn(3) != 0:
			sz := 1 + rng.Intn(*stressLim)
			bp, err := a.Malloc(sz)
			if err != nil {
				t.Fatal(err)
			}
			b := make([]byte, sz)
			for j := range b {
				b[j] = byte(rng.Int())
			}
			a.p.WriteAt(b, bp)
			live[bp] = sz
			ref[bp] = b
		default:
			keys := make(sortutil.Int64Slice, 0, len(live))
			for k := range live {
				keys = append(keys, int64(k))
			}
			sort.Sort(keys)
			bp := int(keys[rng.Intn(len(keys))])
			a.Free(bp)
			delete(live, bp)
			delete(ref, bp)
		}

		if i%100 == 99 {
			verify()
			for bp, want := range ref {
				got := make([]byte, len(want))
				a.p.ReadAt(got, bp)
				for j := range want {
					if got[j] != want[j] {
						t.Fatalf("live block %d corrupted at byte %d", bp, j)
					}
				}
			}
		}
	}
}
