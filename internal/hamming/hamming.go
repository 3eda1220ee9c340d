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
// github.com:brinehash/imgkernel/internal/hamming/hamming.go

// Package hamming computes Hamming distance between packed hex hashes,
// with an early-exit variant for the similarity search's O(n^2) inner
// loop.
package hamming

import (
	"math/bits"

	"github.com/brinehash/imgkernel/internal/bitutil"
)

// Distance returns the Hamming distance between two hex hash strings, or
// -1 if either fails to parse or their lengths differ (spec.md 4.4).
func Distance(hash1, hash2 []byte) int32 {
	return DistanceEarlyExit(hash1, hash2, -1)
}

// DistanceEarlyExit is Distance but stops accumulating as soon as the
// running total exceeds earlyStop (when earlyStop >= 0), returning a
// partial distance that is only guaranteed to satisfy ">earlyStop", not
// to be the true distance. Pass a negative earlyStop to always compute
// the exact distance (spec.md 4.4/4.9).
func DistanceEarlyExit(hash1, hash2 []byte, earlyStop int32) int32 {
	p1 := bitutil.Pack(hash1)
	p2 := bitutil.Pack(hash2)
	return DistancePackedEarlyExit(p1, p2, earlyStop)
}

// DistancePackedEarlyExit is DistanceEarlyExit over already-packed
// hashes, avoiding repeated parsing inside the similarity search's inner
// loop.
func DistancePackedEarlyExit(p1, p2 bitutil.Packed, earlyStop int32) int32 {
	if !bitutil.Comparable(p1, p2) {
		return -1
	}

	var distance int32
	blocks := p1.Blocks
	n := len(blocks)

	// Process four blocks per iteration; this changes nothing about the
	// result (XOR+popcount is associative/commutative per block) but
	// matches spec.md 4.4's allowance for 4-way unrolling.
	i := 0
	for ; i+4 <= n; i += 4 {
		distance += int32(bits.OnesCount64(blocks[i] ^ p2.Blocks[i]))
		distance += int32(bits.OnesCount64(blocks[i+1] ^ p2.Blocks[i+1]))
		distance += int32(bits.OnesCount64(blocks[i+2] ^ p2.Blocks[i+2]))
		distance += int32(bits.OnesCount64(blocks[i+3] ^ p2.Blocks[i+3]))

		if earlyStop >= 0 && distance > earlyStop {
			return distance
		}
	}
	for ; i < n; i++ {
		distance += int32(bits.OnesCount64(blocks[i] ^ p2.Blocks[i]))
		if earlyStop >= 0 && distance > earlyStop {
			return distance
		}
	}

	return distance
}
