// Copyright (c) 2024 Symbol Not Found LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
// github.com:brinehash/imgkernel/internal/alloc/alloc.go

// Package alloc is the kernel's own allocator shim: every byte the kernel
// hands back across the C ABI is allocated here, stamped with a small
// header recording its size and alignment, so Free needs nothing but the
// user pointer to release it correctly. It sits on top of the C allocator
// (via cgo) rather than Go's own heap, because memory returned to a C
// caller must survive independently of the Go garbage collector.
package alloc

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"
)

// header is written immediately before every pointer Alloc returns.
type header struct {
	size  uint64
	align uint64
}

const headerSize = uint64(unsafe.Sizeof(header{}))

// DefaultAlign is the minimum alignment guaranteed for every allocation.
// It satisfies both ordinary caller alignment needs and the header's own
// alignment (uint64 fields align to 8).
const DefaultAlign = 8

// Alloc returns a pointer to n usable, zero-initialized-by-the-OS-only
// (not guaranteed zeroed) bytes aligned to at least DefaultAlign, or nil
// on overflow or allocation failure. Alloc(0) returns nil.
func Alloc(n uint64) unsafe.Pointer {
	if n == 0 {
		return nil
	}

	// Checked addition: total must not wrap past the address space.
	total := n + headerSize
	if total < n {
		return nil
	}

	raw := C.malloc(C.size_t(total))
	if raw == nil {
		return nil
	}

	hdr := (*header)(raw)
	hdr.size = total
	hdr.align = DefaultAlign

	return unsafe.Add(raw, headerSize)
}

// Free releases a pointer previously returned by Alloc. Free(nil) is a
// no-op. Calling Free on a pointer not obtained from Alloc, or calling it
// twice on the same pointer, is undefined behavior.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}

	raw := unsafe.Add(p, -int(headerSize))
	hdr := (*header)(raw)
	if hdr.size < headerSize || hdr.align == 0 {
		return
	}

	C.free(raw)
}

// AllocCString copies s plus a trailing NUL into a newly Alloc'd buffer,
// returning nil if the allocation fails. The result is owned exactly like
// any other Alloc'd block and must be released with Free (directly, or as
// part of a record destructor that calls Free on its inner pointers).
func AllocCString(s string) unsafe.Pointer {
	n := uint64(len(s)) + 1
	p := Alloc(n)
	if p == nil {
		return nil
	}

	dst := unsafe.Slice((*byte)(p), n)
	copy(dst, s)
	dst[len(s)] = 0

	return p
}

// AllocBytes copies n bytes from src into a newly Alloc'd buffer of
// exactly n bytes (no trailing NUL). Returns nil if n is 0 or allocation
// fails.
func AllocBytes(src []byte) unsafe.Pointer {
	if len(src) == 0 {
		return nil
	}

	p := Alloc(uint64(len(src)))
	if p == nil {
		return nil
	}

	dst := unsafe.Slice((*byte)(p), len(src))
	copy(dst, src)

	return p
}
