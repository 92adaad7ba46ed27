// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import "github.com/cznic/mathutil"

// LEN is the number of size-classed free lists.
const LEN = 20

// classOf returns the size class a block of the given byte size belongs to:
// repeatedly right-shift size while counting, capped at LEN-1. Insert,
// delete and search all route through this single function so their
// notions of "which list" never disagree.
func classOf(size int) int {
	k, s := 0, size
	for k < LEN-1 && s > 1 {
		s >>= 1
		k++
	}
	return mathutil.Min(k, LEN-1)
}

// segIndex is the LEN-wide array of free-list heads, bundled into an
// explicit instance rather than held as package state.
type segIndex struct {
	p     Provider
	heads [LEN]int
}

func newSegIndex(p Provider) *segIndex {
	return &segIndex{p: p}
}

// insert adds the free block bp (of the given size) to its class list,
// walking forward to the first peer whose size is >= size so that the list
// stays ascending.
func (x *segIndex) insert(bp, size int) {
	k := classOf(size)

	prev, cur := nilAddr, x.heads[k]
	for cur != nilAddr {
		curSize, _ := getHeader(x.p, cur)
		if curSize >= size {
			break
		}
		prev = cur
		cur = getSucc(x.p, cur)
	}

	setPred(x.p, bp, prev)
	setSucc(x.p, bp, cur)
	if cur != nilAddr {
		setPred(x.p, cur, bp)
	}
	if prev == nilAddr {
		x.heads[k] = bp
	} else {
		setSucc(x.p, prev, bp)
	}
}

// delete unlinks bp from its class list using only its own stored
// predecessor/successor links - it never scans a list looking for bp. The
// caller supplies bp's size, which selects the class head; every caller
// (place, coalesce, Realloc) passes the size it read from bp's header before
// rewriting that header.
func (x *segIndex) delete(bp, size int) {
	k := classOf(size)
	pr := getPred(x.p, bp)
	sc := getSucc(x.p, bp)

	if pr == nilAddr {
		x.heads[k] = sc
	} else {
		setSucc(x.p, pr, sc)
	}

	if sc != nilAddr {
		setPred(x.p, sc, pr)
	}
}

// search returns the first free block with size >= asize, starting at
// class(asize) and progressing upward through classes; within a class the
// first adequate block wins since class lists are size-ascending. Returns
// nilAddr if no class yields a fit - a good fit, not a best fit across
// classes.
func (x *segIndex) search(asize int) int {
	for k := classOf(asize); k < LEN; k++ {
		for cur := x.heads[k]; cur != nilAddr; cur = getSucc(x.p, cur) {
			if sz, _ := getHeader(x.p, cur); sz >= asize {
				return cur
			}
		}
	}
	return nilAddr
}
