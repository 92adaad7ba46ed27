// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

// coalesce fuses bp with its physically adjacent free neighbors, if any.
// Precondition: bp is already registered in the segregated index (free
// inserts before coalescing). Returns the payload address of the (possibly
// merged) resulting free block, still registered in the index.
func coalesce(x *segIndex, p Provider, bp int) int {
	size, _ := getHeader(p, bp)

	lSize, lAlloc := unpack(p.ReadWord(bp - dsize))
	rbp := rightAddr(bp, size)
	rSize, rAlloc := getHeader(p, rbp)

	switch {
	case lAlloc && rAlloc:
		// Both allocated (or sentinels): nothing to do.
		return bp

	case lAlloc && !rAlloc:
		x.delete(bp, size)
		x.delete(rbp, rSize)
		merged := size + rSize
		setHeaderFooter(p, bp, merged, false)
		x.insert(bp, merged)
		return bp

	case !lAlloc && rAlloc:
		lbp := bp - lSize
		x.delete(bp, size)
		x.delete(lbp, lSize)
		merged := size + lSize
		setHeaderFooter(p, lbp, merged, false)
		x.insert(lbp, merged)
		return lbp

	default: // both free
		lbp := bp - lSize
		x.delete(bp, size)
		x.delete(lbp, lSize)
		x.delete(rbp, rSize)
		merged := size + lSize + rSize
		setHeaderFooter(p, lbp, merged, false)
		x.insert(lbp, merged)
		return lbp
	}
}

// extendHeap grows the arena by at least n bytes (rounded up to a multiple
// of 8) and returns the payload address of the resulting free block, after
// coalescing it with whatever was the previous tail block.
func extendHeap(x *segIndex, p Provider, n int) (bp int, err error) {
	n = align8(n)
	if n < dsize {
		n = dsize
	}

	old, ok := p.Extend(n)
	if !ok {
		return nilAddr, &OutOfMemoryError{Op: "extendHeap", Req: n}
	}

	bp = old
	setHeaderFooter(p, bp, n, false)

	epilogueAddr := rightAddr(bp, n) - wsize
	p.WriteWord(epilogueAddr, pack(0, true))

	x.insert(bp, n)
	return coalesce(x, p, bp), nil
}
