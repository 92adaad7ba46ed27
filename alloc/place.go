// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

// place marks the free block bp (already known to be >= asize bytes)
// allocated, splitting off the remainder as a fresh free block when it is
// large enough to hold one. bp must currently be registered in the index;
// place removes it.
func place(x *segIndex, p Provider, bp, asize int) {
	size, _ := getHeader(p, bp)
	x.delete(bp, size)

	rem := size - asize
	if rem >= minBlockSize {
		setHeaderFooter(p, bp, asize, true)
		free := rightAddr(bp, asize)
		setHeaderFooter(p, free, rem, false)
		x.insert(free, rem)
		return
	}

	setHeaderFooter(p, bp, size, true)
}
