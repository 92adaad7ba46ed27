// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

// Sizes, in bytes.
const (
	wsize = 4       // word
	dsize = 2 * wsize // double word; payload alignment

	minBlockSize = 2 * dsize // 16: room for size/alloc header+footer plus pred/succ
	chunkSize    = 64        // initial and minimum heap extension unit

	prologueSize = dsize // 8
	nilAddr      = 0     // the null payload address; addr 0 never denotes a live bp
)

// pack encodes size and the allocated flag into one 32 bit header/footer
// word. size must already be a multiple of 8.
func pack(size int, allocated bool) uint32 {
	w := uint32(size)
	if allocated {
		w |= 1
	}
	return w
}

// unpack splits a header/footer word into (size, allocated).
func unpack(w uint32) (size int, allocated bool) {
	return int(w &^ 7), w&1 != 0
}

// headerAddr returns the address of bp's header word.
func headerAddr(bp int) int { return bp - wsize }

// footerAddr returns the address of bp's footer word, given bp's size.
func footerAddr(bp, size int) int { return bp + size - dsize }

// predAddr and succAddr are the two payload-internal link words a free
// block carries.
func predAddr(bp int) int { return bp }
func succAddr(bp int) int { return bp + wsize }

// getHeader reads the (size, allocated) pair from bp's header.
func getHeader(p Provider, bp int) (size int, allocated bool) {
	return unpack(p.ReadWord(headerAddr(bp)))
}

// setHeaderFooter writes size/allocated to both bp's header and footer.
func setHeaderFooter(p Provider, bp, size int, allocated bool) {
	w := pack(size, allocated)
	p.WriteWord(headerAddr(bp), w)
	p.WriteWord(footerAddr(bp, size), w)
}

// rightAddr returns the payload address of bp's physical right neighbor,
// given bp's own size. Valid because the epilogue sentinel always follows
// the last real block.
func rightAddr(bp, size int) int { return bp + size }

func getPred(p Provider, bp int) int { return int(p.ReadWord(predAddr(bp))) }
func getSucc(p Provider, bp int) int { return int(p.ReadWord(succAddr(bp))) }

func setPred(p Provider, bp, val int) { p.WriteWord(predAddr(bp), uint32(val)) }
func setSucc(p Provider, bp, val int) { p.WriteWord(succAddr(bp), uint32(val)) }

// align8 rounds n up to the next multiple of 8.
func align8(n int) int { return (n + 7) &^ 7 }
