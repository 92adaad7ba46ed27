// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import "fmt"

// OutOfMemoryError is returned when the host Provider refuses to grow the
// arena. The heap is left unmodified.
type OutOfMemoryError struct {
	Op  string
	Req int
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("alloc: %s: out of memory requesting %d bytes", e.Op, e.Req)
}

// InvalidArgumentError reports a request the allocator's contract rejects
// outright, such as a negative size where only a nonnegative one is valid.
type InvalidArgumentError struct {
	Op  string
	Arg interface{}
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("alloc: %s: invalid argument %v", e.Op, e.Arg)
}

// CorruptionError is raised only by Checker.Verify; it is never part of the
// normal Malloc/Free/Realloc contract.
type CorruptionError struct {
	Invariant string
	Addr      int
	Detail    string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("alloc: invariant %s violated at addr %d: %s", e.Invariant, e.Addr, e.Detail)
}
