// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import "testing"

func TestMemArenaExtend(t *testing.T) {
	a := NewMemArena()
	old, ok := a.Extend(16)
	if !ok || old != 0 {
		t.Fatal(old, ok)
	}

	old, ok = a.Extend(8)
	if !ok || old != 16 {
		t.Fatal(old, ok)
	}

	if g, e := a.Size(), 24; g != e {
		t.Fatal(g, e)
	}

	if _, ok := a.Extend(3); ok {
		t.Fatal("unaligned Extend unexpectedly succeeded")
	}
}

func TestMemArenaLimit(t *testing.T) {
	a := NewMemArena()
	a.Limit = 16
	if _, ok := a.Extend(16); !ok {
		t.Fatal("Extend within limit failed")
	}
	if _, ok := a.Extend(8); ok {
		t.Fatal("Extend over limit unexpectedly succeeded")
	}
}

func TestMemArenaReadWriteWord(t *testing.T) {
	a := NewMemArena()
	a.Extend(pgSize + 16) // spans more than one page

	a.WriteWord(4, 0xdeadbeef)
	if g, e := a.ReadWord(4), uint32(0xdeadbeef); g != e {
		t.Fatalf("got %#x, want %#x", g, e)
	}

	// Crosses a page boundary.
	off := pgSize - 2
	a.WriteWord(off, 0x1234)
	if g, e := a.ReadWord(off), uint32(0x1234); g != e {
		t.Fatalf("got %#x, want %#x", g, e)
	}
}

func TestMemArenaReadAtWriteAt(t *testing.T) {
	a := NewMemArena()
	a.Extend(2 * pgSize)

	src := make([]byte, pgSize+10)
	for i := range src {
		src[i] = byte(i)
	}

	a.WriteAt(src, 7)
	dst := make([]byte, len(src))
	a.ReadAt(dst, 7)
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, dst[i], src[i])
		}
	}
}
