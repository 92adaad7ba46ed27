// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

// Allocator bundles the host Provider and the segregated free index into a
// single explicit instance rather than holding them as package-level state,
// so multiple independent heaps can coexist in one process.
type Allocator struct {
	p           Provider
	idx         *segIndex
	heapListp   int
	initialized bool
}

// New returns an Allocator over the given Provider. The arena is
// initialized lazily, on the first Malloc; callers that want to force
// initialization (and observe its error) up front may call Init.
func New(p Provider) *Allocator {
	return &Allocator{p: p, idx: newSegIndex(p)}
}

// Init lays out the prologue and epilogue sentinels and performs the first
// heap extension. Calling Init more than once, or on an Allocator that
// already lazily initialized itself, is a no-op.
func (a *Allocator) Init() error {
	if a.initialized {
		return nil
	}

	base, ok := a.p.Extend(2 * dsize)
	if !ok {
		return &OutOfMemoryError{Op: "Init", Req: 2 * dsize}
	}

	a.p.WriteWord(base, 0) // alignment padding

	prologue := base + 2*wsize
	setHeaderFooter(a.p, prologue, prologueSize, true)

	epilogueAddr := base + 2*dsize - wsize
	a.p.WriteWord(epilogueAddr, pack(0, true))

	a.heapListp = prologue
	a.initialized = true

	_, err := extendHeap(a.idx, a.p, chunkSize)
	return err
}

// adjustedSize computes the block size a request of size bytes needs: room
// for a minimum block, or size plus header/footer overhead rounded up to 8.
func adjustedSize(size int) int {
	if size <= dsize {
		return 2 * dsize
	}
	return align8(size + dsize)
}

// Malloc returns the payload address of a new block able to hold size
// bytes, or nilAddr if size is 0 or the request cannot be satisfied.
func (a *Allocator) Malloc(size int) (int, error) {
	if size == 0 {
		return nilAddr, nil
	}
	if size < 0 {
		return nilAddr, &InvalidArgumentError{Op: "Malloc", Arg: size}
	}

	if !a.initialized {
		if err := a.Init(); err != nil {
			return nilAddr, err
		}
	}

	asize := adjustedSize(size)

	if bp := a.idx.search(asize); bp != nilAddr {
		place(a.idx, a.p, bp, asize)
		return bp, nil
	}

	extendSize := asize
	if extendSize < chunkSize {
		extendSize = chunkSize
	}

	bp, err := extendHeap(a.idx, a.p, extendSize)
	if err != nil {
		return nilAddr, err
	}

	place(a.idx, a.p, bp, asize)
	return bp, nil
}

// Free deallocates the block at bp. bp == nilAddr is a no-op; any other
// value not obtained from Malloc/Realloc is undefined input and is not
// checked here.
func (a *Allocator) Free(bp int) {
	if bp == nilAddr {
		return
	}

	size, _ := getHeader(a.p, bp)
	setHeaderFooter(a.p, bp, size, false)
	a.idx.insert(bp, size)
	coalesce(a.idx, a.p, bp)
}

// Realloc resizes the block at bp to hold size bytes. bp == nilAddr behaves
// as Malloc(size); size == 0 behaves as Free(bp).
func (a *Allocator) Realloc(bp, size int) (int, error) {
	if bp == nilAddr {
		return a.Malloc(size)
	}
	if size < 0 {
		return nilAddr, &InvalidArgumentError{Op: "Realloc", Arg: size}
	}
	if size == 0 {
		a.Free(bp)
		return nilAddr, nil
	}

	cur, _ := getHeader(a.p, bp)

	// Shrink-in-place without splitting: trades space for speed.
	if size < cur-dsize {
		return bp, nil
	}

	rbp := rightAddr(bp, cur)
	rSize, rAlloc := getHeader(a.p, rbp)

	// Right neighbor is free and, merged in, covers the request outright.
	if !rAlloc && size <= cur+rSize-dsize {
		a.idx.delete(rbp, rSize)
		combined := cur + rSize
		setHeaderFooter(a.p, bp, combined, true)
		return bp, nil
	}

	// In-place growth via heap extension: legal either when bp sits at the
	// heap's high end (its right neighbor is the epilogue, size 0) or when
	// the right neighbor is a free block that is itself the heap's tail,
	// so extending still lands space adjacent to bp.
	atTail := rSize == 0 && rAlloc
	rightFreeAtTail := !rAlloc && rbp+rSize == a.p.Hi()

	if atTail || rightFreeAtTail {
		avail := 0
		if !rAlloc {
			avail = rSize
		}

		// need is signed: a naive unsigned "remainder" would make a
		// negative-but-unsigned comparison vacuously false.
		need := size + dsize - cur - avail
		growBy := need
		if growBy < chunkSize {
			growBy = chunkSize
		}

		if _, err := extendHeap(a.idx, a.p, growBy); err != nil {
			return nilAddr, err
		}

		mergedBp := rightAddr(bp, cur)
		mergedSize, _ := getHeader(a.p, mergedBp)
		a.idx.delete(mergedBp, mergedSize)
		setHeaderFooter(a.p, bp, cur+mergedSize, true)
		return bp, nil
	}

	// Fallback: allocate fresh, copy, free the old block.
	newBp, err := a.Malloc(size)
	if err != nil {
		return nilAddr, err
	}

	copyLen := size
	if cur-dsize < copyLen {
		copyLen = cur - dsize
	}

	buf := make([]byte, copyLen)
	a.p.ReadAt(buf, bp)
	a.p.WriteAt(buf, newBp)
	a.Free(bp)
	return newBp, nil
}
