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
// github.com:brinehash/imgkernel/internal/bitutil/hex.go

// Package bitutil holds the small, shared bit- and hex-level primitives
// the rest of the kernel builds on: nibble parsing and a packed,
// fixed-width-block view of a hex hash string.
package bitutil

// hexDigits are the lowercase characters emitted by every hash encoder in
// this kernel. Parsers accept uppercase too (see HexToVal).
const hexDigits = "0123456789abcdef"

// HexToVal maps a single hex character ('0'-'9', 'a'-'f', 'A'-'F') to its
// nibble value 0-15. Any other byte silently maps to 0, matching the
// original kernel's hex_to_val (spec.md 4.2: "any other byte maps to 0").
func HexToVal(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// EmitNibble returns the lowercase hex character for a 4-bit value. The
// caller guarantees v < 16.
func EmitNibble(v uint8) byte {
	return hexDigits[v]
}
