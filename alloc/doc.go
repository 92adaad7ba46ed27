// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package alloc implements a segregated free-list allocator over a single
contiguous, growable byte arena provided by a host sbrk-style Provider.

The arena file

The arena is a linear, contiguous sequence of blocks. Blocks may be either
free (currently unused) or allocated (currently used). The arena only grows
at its high end; the allocator never returns pages to the host.

Block layout

Every block, allocated or free, carries a 4 byte header immediately before
its payload address `bp` and a 4 byte footer at `bp + size - DSIZE`. Both
encode the same 32 bit word: the low bit is the allocated flag, the upper
bits the total block size, always a multiple of 8 with a minimum of 16
(the 8 byte prologue sentinel excepted).

Free blocks additionally store two payload words: a predecessor and a
successor pointer in the free list of their size class.

Segregated index

Free blocks are kept in one of LEN doubly linked lists, selected by a class
function of the block's size. Within a class, blocks are ordered by
ascending size. Malloc picks the first class with room, then the first
adequately sized block within it - a good fit, not a best fit across classes.

Coalescing

A freed block is registered in the index and then fused with any physically
adjacent free neighbor(s), the merged block replacing the parts in the index,
so no two free blocks are ever adjacent after a public call returns.

Sentinels

A permanently allocated prologue sits at the arena's low end and a
permanently allocated epilogue marker sits at its high end, so neighbor
reads during coalescing never run off either end of the arena.
*/
package alloc
