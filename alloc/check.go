// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

// Stats records counters optionally filled in by Checker.Verify, mirroring
// the teacher's AllocStats: diagnostic output, not part of the allocator's
// user-visible contract.
type Stats struct {
	TotalBytes int64 // bytes of all blocks walked, prologue included; padding and epilogue header not counted
	AllocBytes int64
	FreeBytes  int64
	AllocCount int64
	FreeCount  int64
	ClassCount [LEN]int64 // free block count per segregated class
}

var nolog = func(error) bool { return false }

// Checker walks an Allocator's arena to validate invariants I1-I8: header/
// footer parity, block sizing, sentinel allocation, free-list membership,
// absence of adjacent free blocks, class placement, and linkage sanity. It
// never runs as part of Malloc/Free/Realloc; a caller invokes it
// explicitly, typically between operations in a test or an external
// harness.
type Checker struct {
	a *Allocator
}

// NewChecker returns a Checker for a.
func NewChecker(a *Allocator) *Checker {
	return &Checker{a: a}
}

// Verify walks the heap from the prologue to the epilogue and the
// segregated index's class lists, reporting every problem found to log (or
// to nolog if log is nil). If log returns false for an error, Verify stops
// and returns that error; with a nil log that is the first error found.
// Otherwise it returns nil and fills stats, if non-nil, with
// AllocStats-equivalent counters.
func (c *Checker) Verify(log func(error) bool, stats *Stats) error {
	if log == nil {
		log = nolog
	}

	p, idx := c.a.p, c.a.idx
	var st Stats
	freeByWalk := map[int]int{} // addr -> size, as seen scanning the heap
	prevFree := false           // nothing precedes the prologue

	bp := c.a.heapListp
	for {
		size, allocated := getHeader(p, bp)
		if size == 0 {
			if !allocated && !log(&CorruptionError{"I3", bp, "epilogue not marked allocated"}) {
				return &CorruptionError{"I3", bp, "epilogue not marked allocated"}
			}
			break // epilogue
		}

		if bp == c.a.heapListp && !allocated && !log(&CorruptionError{"I3", bp, "prologue not marked allocated"}) {
			return &CorruptionError{"I3", bp, "prologue not marked allocated"}
		}

		if fsize, _ := unpack(p.ReadWord(footerAddr(bp, size))); fsize != size {
			if !log(&CorruptionError{"I1", bp, "header/footer size mismatch"}) {
				return &CorruptionError{"I1", bp, "header/footer size mismatch"}
			}
		}

		if bp != c.a.heapListp && (size%8 != 0 || size < minBlockSize) {
			if !log(&CorruptionError{"I2", bp, "bad block size"}) {
				return &CorruptionError{"I2", bp, "bad block size"}
			}
		}

		if bp < p.Lo() || bp >= p.Hi() {
			if !log(&CorruptionError{"P8", bp, "block out of heap bounds"}) {
				return &CorruptionError{"P8", bp, "block out of heap bounds"}
			}
		}

		if !allocated {
			if prevFree {
				if !log(&CorruptionError{"I5", bp, "adjacent free blocks"}) {
					return &CorruptionError{"I5", bp, "adjacent free blocks"}
				}
			}
			freeByWalk[bp] = size
			st.FreeBytes += int64(size)
			st.FreeCount++
			st.ClassCount[classOf(size)]++
		} else {
			st.AllocBytes += int64(size)
			st.AllocCount++
		}

		prevFree = !allocated
		st.TotalBytes += int64(size)
		bp = rightAddr(bp, size)
	}

	freeByIndex := map[int]int{}
	for k := 0; k < LEN; k++ {
		prevSize := -1
		for cur := idx.heads[k]; cur != nilAddr; {
			if _, seen := freeByIndex[cur]; seen {
				if !log(&CorruptionError{"I8", cur, "free list reaches a block twice"}) {
					return &CorruptionError{"I8", cur, "free list reaches a block twice"}
				}
				break
			}
			size, allocated := getHeader(p, cur)
			if allocated {
				if !log(&CorruptionError{"I4", cur, "allocated block present in free list"}) {
					return &CorruptionError{"I4", cur, "allocated block present in free list"}
				}
			}
			if classOf(size) != k {
				if !log(&CorruptionError{"P5", cur, "block in wrong size class"}) {
					return &CorruptionError{"P5", cur, "block in wrong size class"}
				}
			}
			if prevSize >= 0 && size < prevSize {
				if !log(&CorruptionError{"P6", cur, "class list not size-ascending"}) {
					return &CorruptionError{"P6", cur, "class list not size-ascending"}
				}
			}

			if pr := getPred(p, cur); pr != nilAddr {
				if getSucc(p, pr) != cur {
					if !log(&CorruptionError{"P7", cur, "predecessor linkage broken"}) {
						return &CorruptionError{"P7", cur, "predecessor linkage broken"}
					}
				}
			} else if cur != idx.heads[k] {
				if !log(&CorruptionError{"I7", cur, "non-head free block has nil predecessor"}) {
					return &CorruptionError{"I7", cur, "non-head free block has nil predecessor"}
				}
			}

			freeByIndex[cur] = size
			prevSize = size
			cur = getSucc(p, cur)
		}
	}

	for a, sz := range freeByWalk {
		if isz, ok := freeByIndex[a]; !ok || isz != sz {
			if !log(&CorruptionError{"I4", a, "free block missing from its class list"}) {
				return &CorruptionError{"I4", a, "free block missing from its class list"}
			}
		}
	}
	for a := range freeByIndex {
		if _, ok := freeByWalk[a]; !ok {
			if !log(&CorruptionError{"I4", a, "free list references a block not found while walking the heap"}) {
				return &CorruptionError{"I4", a, "free list references a block not found while walking the heap"}
			}
		}
	}

	if stats != nil {
		*stats = st
	}
	return nil
}
