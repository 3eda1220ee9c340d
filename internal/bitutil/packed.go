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
// github.com:brinehash/imgkernel/internal/bitutil/packed.go

package bitutil

// nibblesPerBlock is how many hex nibbles fit in one 64-bit block.
const nibblesPerBlock = 16

// Packed is the internal, comparison-friendly view of a hex hash: an
// ordered sequence of 64-bit blocks (each holding up to 16 nibbles,
// left-aligned within the block when short), the original nibble count,
// and a validity flag. Two Packed values are comparable (see
// internal/hamming) only when both are Valid and their NibbleCount match.
type Packed struct {
	Blocks      []uint64
	NibbleCount int
	Valid       bool
}

// Pack parses a hex byte sequence (as produced by a null-terminated C
// string already stripped of its NUL, or any []byte of hex digits) into
// its packed-block representation. An empty input yields an invalid
// Packed value, matching the original kernel's behavior for a hash that
// failed to parse.
func Pack(hex []byte) Packed {
	if len(hex) == 0 {
		return Packed{Valid: false}
	}

	numBlocks := (len(hex) + nibblesPerBlock - 1) / nibblesPerBlock
	blocks := make([]uint64, numBlocks)

	for b := 0; b < numBlocks; b++ {
		start := b * nibblesPerBlock
		end := start + nibblesPerBlock
		if end > len(hex) {
			end = len(hex)
		}

		var block uint64
		for i := start; i < end; i++ {
			block = (block << 4) | uint64(HexToVal(hex[i]))
		}

		k := end - start
		if k < nibblesPerBlock {
			// Left-align the short final chunk so its nibbles occupy the
			// high bits; the zero-padded low nibbles cancel under XOR.
			block <<= uint(4 * (nibblesPerBlock - k))
		}

		blocks[b] = block
	}

	return Packed{Blocks: blocks, NibbleCount: len(hex), Valid: true}
}

// Comparable reports whether a and b may be meaningfully compared: both
// must be valid and have the same nibble count.
func Comparable(a, b Packed) bool {
	return a.Valid && b.Valid && a.NibbleCount == b.NibbleCount
}
