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
// github.com:brinehash/imgkernel/internal/similarity/similarity.go

// Package similarity finds near-duplicate hash pairs: an O(n^2)
// all-pairs search with early-exit Hamming distance, and a bucketed
// variant that only compares within and between adjacent pre-sorted
// buckets.
package similarity

import (
	"github.com/brinehash/imgkernel/internal/bitutil"
	"github.com/brinehash/imgkernel/internal/hamming"
)

// Pair is one near-duplicate match, always with I < J.
type Pair struct {
	I, J int32
}

// Bucket is a contiguous window [Start, Start+Size) over the hash array.
// A bucket with non-positive Size, negative Start, or Start >= N is
// skipped entirely (spec.md 4.5).
type Bucket struct {
	Start, Size int32
}

// FindPairs runs the all-pairs search over hashes, returning every pair
// (i, j) with i < j whose Hamming distance is >= 0 and <= threshold, in
// ascending i then ascending j order. An unparseable hash (empty/invalid
// after packing) simply never matches anything, rather than aborting the
// search — it packs to an invalid, Hamming-incomparable value.
func FindPairs(hashes [][]byte, threshold int32) []Pair {
	if len(hashes) <= 1 {
		return nil
	}

	packed := packAll(hashes)
	return findPairsInRange(packed, 0, len(packed), 0, len(packed), threshold, true)
}

// FindPairsBucketed runs the two-stage bucketed search (spec.md 4.5):
// first intra-bucket all-pairs for every bucket, then inter-bucket
// all-pairs for every consecutive bucket pair. Output is stage-major:
// all intra-bucket pairs (bucket order, then i, then j) before all
// inter-bucket pairs (bucket-pair order, then i, then j).
func FindPairsBucketed(hashes [][]byte, buckets []Bucket, threshold int32) []Pair {
	if len(hashes) <= 1 || len(buckets) == 0 {
		return nil
	}

	packed := packAll(hashes)
	n := len(packed)

	var pairs []Pair

	for _, bkt := range buckets {
		start, end, ok := clampBucket(bkt, n)
		if !ok {
			continue
		}
		pairs = append(pairs, findPairsInRange(packed, start, end, start, end, threshold, true)...)
	}

	for b := 0; b+1 < len(buckets); b++ {
		start1, end1, ok1 := clampBucket(buckets[b], n)
		start2, end2, ok2 := clampBucket(buckets[b+1], n)
		if !ok1 || !ok2 {
			continue
		}
		pairs = append(pairs, findPairsInRange(packed, start1, end1, start2, end2, threshold, false)...)
	}

	return pairs
}

// clampBucket validates and clips a bucket to [0, n), returning ok=false
// for a bucket that spec.md 4.5 says to skip.
func clampBucket(b Bucket, n int) (start, end int, ok bool) {
	if b.Start < 0 || b.Size <= 0 {
		return 0, 0, false
	}
	start = int(b.Start)
	if start >= n {
		return 0, 0, false
	}
	end = start + int(b.Size)
	if end > n {
		end = n
	}
	return start, end, true
}

// findPairsInRange compares every i in [start1,end1) against every j in
// [start2,end2). When sameRange is true (intra-bucket/all-pairs), j only
// ranges over (i, end2) to avoid duplicate/self pairs; when false
// (inter-bucket), every i is compared against every j regardless of
// ordering between the two ranges (the ranges are disjoint by
// construction, so i < j always holds for adjacent, ascending buckets).
func findPairsInRange(packed []bitutil.Packed, start1, end1, start2, end2 int, threshold int32, sameRange bool) []Pair {
	var pairs []Pair
	earlyStop := threshold
	if earlyStop < 0 {
		earlyStop = 0
	}

	for i := start1; i < end1; i++ {
		jStart := start2
		if sameRange {
			jStart = i + 1
		}
		for j := jStart; j < end2; j++ {
			d := hamming.DistancePackedEarlyExit(packed[i], packed[j], earlyStop)
			if d >= 0 && d <= threshold {
				pairs = append(pairs, Pair{I: int32(i), J: int32(j)})
			}
		}
	}

	return pairs
}

func packAll(hashes [][]byte) []bitutil.Packed {
	packed := make([]bitutil.Packed, len(hashes))
	for i, h := range hashes {
		packed[i] = bitutil.Pack(h)
	}
	return packed
}

// Flatten encodes pairs as the flat [i0,j0,i1,j1,...] int32 array the C
// ABI returns, plus its K count.
func Flatten(pairs []Pair) (flat []int32, count int32) {
	flat = make([]int32, 0, len(pairs)*2)
	for _, p := range pairs {
		flat = append(flat, p.I, p.J)
	}
	return flat, int32(len(pairs))
}
