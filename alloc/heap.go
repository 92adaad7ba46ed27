// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import (
	"github.com/cznic/mathutil"
)

// Provider is the host sbrk-style heap collaborator. It models a single,
// contiguous, growable-at-the-high-end byte arena. Addresses are byte
// offsets from the arena's start, an index-based reformulation of raw
// pointer arithmetic suited to a language without unchecked pointers.
//
// A Provider is not safe for concurrent use.
type Provider interface {
	// Extend grows the arena by n bytes, n a nonnegative multiple of 8.
	// It returns the address of the old high watermark (where the new
	// space begins) and true, or (0, false) if the host refuses to grow.
	Extend(n int) (old int, ok bool)

	// Lo returns the arena's lowest valid address.
	Lo() int

	// Hi returns the arena's current high watermark (one past the last
	// valid address).
	Hi() int

	// Size returns Hi - Lo.
	Size() int

	// ReadWord reads the 4 byte word at addr.
	ReadWord(addr int) uint32

	// WriteWord writes the 4 byte word at addr.
	WriteWord(addr int, v uint32)

	// ReadAt copies len(b) bytes starting at addr into b.
	ReadAt(b []byte, addr int)

	// WriteAt copies b into the arena starting at addr.
	WriteAt(b []byte, addr int)
}

const (
	pgBits = 12
	pgSize = 1 << pgBits
	pgMask = pgSize - 1
)

var zeroPage [pgSize]byte

// MemArena is an in-process Provider backed by a sparse, page mapped byte
// store - the same storage strategy as a memory-backed Filer, retargeted at
// the narrower sbrk-style contract a heap allocator needs instead of a
// general random access file.
//
// If Limit is nonzero, Extend fails once growing would make Size() exceed
// Limit; this lets tests exercise the allocator's out-of-memory path without
// actually exhausting process memory.
type MemArena struct {
	m     map[int]*[pgSize]byte
	size  int
	Limit int
}

// NewMemArena returns a new, empty MemArena.
func NewMemArena() *MemArena {
	return &MemArena{m: map[int]*[pgSize]byte{}}
}

// Extend implements Provider.
func (a *MemArena) Extend(n int) (old int, ok bool) {
	if n < 0 || n%8 != 0 {
		return 0, false
	}

	if a.Limit != 0 && a.size+n > a.Limit {
		return 0, false
	}

	old = a.size
	a.size += n
	return old, true
}

// Lo implements Provider.
func (a *MemArena) Lo() int { return 0 }

// Hi implements Provider.
func (a *MemArena) Hi() int { return a.size }

// Size implements Provider.
func (a *MemArena) Size() int { return a.size }

// ReadWord implements Provider.
func (a *MemArena) ReadWord(addr int) uint32 {
	var b [4]byte
	a.ReadAt(b[:], addr)
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// WriteWord implements Provider.
func (a *MemArena) WriteWord(addr int, v uint32) {
	var b [4]byte
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	a.WriteAt(b[:], addr)
}

// ReadAt implements Provider.
func (a *MemArena) ReadAt(b []byte, addr int) {
	pgI := addr >> pgBits
	pgO := addr & pgMask
	rem := len(b)
	for rem != 0 {
		pg := a.m[pgI]
		if pg == nil {
			pg = &zeroPage
		}
		nc := copy(b[:mathutil.Min(rem, pgSize-pgO)], pg[pgO:])
		pgI++
		pgO = 0
		rem -= nc
		b = b[nc:]
	}
}

// WriteAt implements Provider.
func (a *MemArena) WriteAt(b []byte, addr int) {
	pgI := addr >> pgBits
	pgO := addr & pgMask
	rem := len(b)
	for rem != 0 {
		pg := a.m[pgI]
		if pg == nil {
			pg = new([pgSize]byte)
			a.m[pgI] = pg
		}
		nc := copy(pg[pgO:], b[:mathutil.Min(rem, pgSize-pgO)])
		pgI++
		pgO = 0
		rem -= nc
		b = b[nc:]
	}
}
