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
// github.com:brinehash/imgkernel/cmd/libphash/main.go

// Command libphash is the kernel's C ABI: a cgo shared/static library
// exposing every entry point in the external interface table, built with
// `go build -buildmode=c-shared` (or c-archive). It is pure marshalling —
// every algorithm lives in internal/* and is exercised directly by that
// package's own tests; this file only parses C inputs, calls the Go
// implementation, and marshals the result back out through
// internal/alloc-owned memory. Function names and signatures mirror the
// original kernel's C ABI verbatim, since they are normative for
// embedding compatibility.
package main

/*
#include <stdint.h>

typedef struct {
	char* hash;
	int32_t error_code;
	char* error_message;
} HashResult;

typedef struct {
	uint32_t r;
	uint32_t g;
	uint32_t b;
	uint32_t population;
} ColorEntry;

typedef struct {
	ColorEntry* colors;
	int32_t num_colors;
	int32_t error_code;
	char* error_message;
} ColorResult;
*/
import "C"

import (
	"errors"
	"math/bits"
	"unsafe"

	"github.com/brinehash/imgkernel/internal/alloc"
	"github.com/brinehash/imgkernel/internal/hamming"
	"github.com/brinehash/imgkernel/internal/palette"
	"github.com/brinehash/imgkernel/internal/phash"
	"github.com/brinehash/imgkernel/internal/similarity"
)

// errInvalidInput is the ABI-layer gate's sentinel (spec.md 7: "null
// pointer or non-positive dimension/k to a hashing or quantization entry
// point"), distinct from the internal packages' own "Invalid dimensions".
var errInvalidInput = errors.New("Invalid input parameters")

func main() {}

//export alloc
func alloc_(size C.uint64_t) unsafe.Pointer {
	return alloc.Alloc(uint64(size))
}

//export free
func free_(ptr unsafe.Pointer) {
	alloc.Free(ptr)
}

//export calculate_perceptual_hash
func calculate_perceptual_hash(data *C.uchar, width, height, hashSize C.int) (result *C.HashResult) {
	defer func() {
		if recover() != nil {
			result = newHashResult("", errInvalidInput)
		}
	}()

	if data == nil || width <= 0 || height <= 0 || hashSize <= 0 {
		return newHashResult("", errInvalidInput)
	}

	byteLen, err := imageByteLen(width, height)
	if err != nil {
		return newHashResult("", err)
	}

	buf := goBytes(data, byteLen)
	hash, err := phash.ComputeHash(buf, int(width), int(height))
	return newHashResult(hash, err)
}

//export calculate_batch_hashes
func calculate_batch_hashes(data *C.uchar, dims *C.int, offsets *C.int, n C.int, hashSize C.int) (result *C.HashResult) {
	defer func() {
		if recover() != nil {
			result = nil
		}
	}()

	if data == nil || dims == nil || offsets == nil || n <= 0 || hashSize <= 0 {
		return nil
	}

	dimSlice := unsafe.Slice(dims, int(n)*2)
	offsetSlice := unsafe.Slice(offsets, int(n))

	specs := make([]phash.ImageSpec, n)
	for i := 0; i < int(n); i++ {
		specs[i] = phash.ImageSpec{
			Width:  int(dimSlice[i*2]),
			Height: int(dimSlice[i*2+1]),
			Offset: int(offsetSlice[i]),
		}
	}

	bufLen, ok := batchBufferLen(specs)
	if !ok {
		return nil
	}
	buf := goBytes(data, bufLen)

	outcomes := phash.BatchHash(buf, specs)

	arraySize := C.size_t(n) * C.size_t(unsafe.Sizeof(C.HashResult{}))
	raw := alloc.Alloc(uint64(arraySize))
	if raw == nil {
		return nil
	}
	results := unsafe.Slice((*C.HashResult)(raw), int(n))
	for i, o := range outcomes {
		results[i] = buildHashResult(o.Hash, o.Err)
	}

	return (*C.HashResult)(raw)
}

//export calculate_hamming_distance
func calculate_hamming_distance(h1, h2 *C.char) (result C.int32_t) {
	defer func() {
		if recover() != nil {
			result = -1
		}
	}()

	return C.int32_t(hamming.Distance(goHexBytes(h1), goHexBytes(h2)))
}

//export find_similar_pairs
func find_similar_pairs(hashes **C.char, n C.int, threshold C.int32_t, outCount *C.int32_t) (result *C.int32_t) {
	*outCount = 0

	defer func() {
		if recover() != nil {
			*outCount = 0
			result = nil
		}
	}()

	if hashes == nil || n <= 0 {
		return nil
	}

	hashSlice := cStringArrayToHashes(hashes, n)
	pairs := similarity.FindPairs(hashSlice, int32(threshold))
	return flattenPairs(pairs, outCount)
}

//export find_similar_pairs_bucketed
func find_similar_pairs_bucketed(hashes **C.char, n C.int, starts, sizes *C.int32_t, b C.int, threshold C.int32_t, outCount *C.int32_t) (result *C.int32_t) {
	*outCount = 0

	defer func() {
		if recover() != nil {
			*outCount = 0
			result = nil
		}
	}()

	if hashes == nil || n <= 0 {
		return nil
	}
	if b < 0 || (b > 0 && (starts == nil || sizes == nil)) {
		return nil
	}

	hashSlice := cStringArrayToHashes(hashes, n)

	startSlice := unsafe.Slice(starts, int(b))
	sizeSlice := unsafe.Slice(sizes, int(b))
	buckets := make([]similarity.Bucket, b)
	for i := 0; i < int(b); i++ {
		buckets[i] = similarity.Bucket{Start: int32(startSlice[i]), Size: int32(sizeSlice[i])}
	}

	pairs := similarity.FindPairsBucketed(hashSlice, buckets, int32(threshold))
	return flattenPairs(pairs, outCount)
}

//export kmeans_quantize
func kmeans_quantize(data *C.uchar, width, height, k, maxIter C.int, skipAlpha C.uchar) (result *C.ColorResult) {
	defer func() {
		if recover() != nil {
			result = newColorResult(nil, errInvalidInput)
		}
	}()

	if data == nil || width <= 0 || height <= 0 || k <= 0 {
		return newColorResult(nil, errInvalidInput)
	}

	byteLen, err := paletteByteLen(width, height)
	if err != nil {
		return newColorResult(nil, err)
	}

	buf := goBytes(data, byteLen)
	colors, err := palette.KMeansQuantize(buf, int(width), int(height), int(k), int(maxIter), uint8(skipAlpha))
	return newColorResult(colors, err)
}

//export median_cut_quantize
func median_cut_quantize(data *C.uchar, width, height, numColors C.int, skipAlpha C.uchar) (result *C.ColorResult) {
	defer func() {
		if recover() != nil {
			result = newColorResult(nil, errInvalidInput)
		}
	}()

	if data == nil || width <= 0 || height <= 0 || numColors <= 0 {
		return newColorResult(nil, errInvalidInput)
	}

	byteLen, err := paletteByteLen(width, height)
	if err != nil {
		return newColorResult(nil, err)
	}

	buf := goBytes(data, byteLen)
	colors, err := palette.MedianCutQuantize(buf, int(width), int(height), int(numColors), uint8(skipAlpha))
	return newColorResult(colors, err)
}

//export free_hash_result
func free_hash_result(r *C.HashResult) {
	if r == nil {
		return
	}
	freeHashResultFields(r)
	alloc.Free(unsafe.Pointer(r))
}

//export free_batch_results
func free_batch_results(r *C.HashResult, n C.int) {
	if r == nil {
		return
	}
	results := unsafe.Slice(r, int(n))
	for i := range results {
		freeHashResultFields(&results[i])
	}
	alloc.Free(unsafe.Pointer(r))
}

//export free_color_result
func free_color_result(r *C.ColorResult) {
	if r == nil {
		return
	}
	if r.colors != nil {
		alloc.Free(unsafe.Pointer(r.colors))
	}
	if r.error_message != nil {
		alloc.Free(unsafe.Pointer(r.error_message))
	}
	alloc.Free(unsafe.Pointer(r))
}

//export free_pairs
func free_pairs(p *C.int32_t) {
	alloc.Free(unsafe.Pointer(p))
}

//export has_simd_support
func has_simd_support() C.int {
	// The inner-loop unrolling in internal/hamming is scalar (four
	// popcounts per iteration for back-end auto-vectorization
	// opportunity), not a hand-written vector-extension path, so the
	// kernel never claims SIMD support.
	return 0
}

// imageByteLen derives the RGBA8 buffer length spec.md's
// calculate_perceptual_hash expects from width/height alone (the ABI
// signature carries no explicit length, same as the original kernel),
// using the same checked 128-bit multiplication internal/phash itself
// relies on.
func imageByteLen(width, height C.int) (int, error) {
	pixels, ok := checkedMul(uint64(width), uint64(height))
	if !ok {
		return 0, phash.ErrPixelCountOverflow
	}
	total, ok := checkedMul(pixels, 4)
	if !ok {
		return 0, phash.ErrImageByteSizeOverflow
	}
	if total > uint64(^uint(0)>>1) {
		return 0, phash.ErrImageByteSizeOverflow
	}
	return int(total), nil
}

// paletteByteLen is imageByteLen's palette-side counterpart; the
// quantizers report overflow as "Invalid input parameters" since
// internal/palette has no dedicated overflow sentinel.
func paletteByteLen(width, height C.int) (int, error) {
	pixels, ok := checkedMul(uint64(width), uint64(height))
	if !ok {
		return 0, errInvalidInput
	}
	total, ok := checkedMul(pixels, 4)
	if !ok || total > uint64(^uint(0)>>1) {
		return 0, errInvalidInput
	}
	return int(total), nil
}

// batchBufferLen computes the smallest buffer length covering every
// spec's offset+image extent, the same bound the original kernel's raw
// pointer arithmetic trusts the caller to provide. A spec with malformed
// dimensions or an overflowing extent is simply excluded from the bound
// — it still gets its own error outcome from phash.BatchHash ("Invalid
// image metadata", or "Image size overflow" for an overflowing
// dimension product).
func batchBufferLen(specs []phash.ImageSpec) (int, bool) {
	var maxEnd uint64
	for _, spec := range specs {
		if spec.Width <= 0 || spec.Height <= 0 || spec.Offset < 0 {
			continue
		}
		pixels, ok := checkedMul(uint64(spec.Width), uint64(spec.Height))
		if !ok {
			continue
		}
		imgLen, ok := checkedMul(pixels, 4)
		if !ok {
			continue
		}
		end := uint64(spec.Offset) + imgLen
		if end < uint64(spec.Offset) {
			continue
		}
		if end > maxEnd {
			maxEnd = end
		}
	}
	if maxEnd > uint64(^uint(0)>>1) {
		return 0, false
	}
	return int(maxEnd), true
}

// checkedMul multiplies a and b, reporting false if the product does not
// fit in 64 bits (mirrors internal/phash's own checkedMul).
func checkedMul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

func goBytes(data *C.uchar, n int) []byte {
	if data == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(data)), n)
}

func goHexBytes(s *C.char) []byte {
	if s == nil {
		return nil
	}
	return []byte(C.GoString(s))
}

func cStringArrayToHashes(hashes **C.char, n C.int) [][]byte {
	ptrs := unsafe.Slice(hashes, int(n))
	out := make([][]byte, n)
	for i, p := range ptrs {
		out[i] = goHexBytes(p)
	}
	return out
}

func flattenPairs(pairs []similarity.Pair, outCount *C.int32_t) *C.int32_t {
	flat, count := similarity.Flatten(pairs)
	*outCount = C.int32_t(count)
	if count == 0 {
		return nil
	}

	raw := alloc.Alloc(uint64(len(flat)) * 4)
	if raw == nil {
		*outCount = 0
		return nil
	}
	dst := unsafe.Slice((*int32)(raw), len(flat))
	copy(dst, flat)

	return (*C.int32_t)(raw)
}

func newHashResult(hash string, err error) *C.HashResult {
	raw := alloc.Alloc(uint64(unsafe.Sizeof(C.HashResult{})))
	if raw == nil {
		return nil
	}
	r := (*C.HashResult)(raw)
	*r = buildHashResult(hash, err)
	return r
}

func buildHashResult(hash string, err error) C.HashResult {
	if err != nil {
		return C.HashResult{
			hash:          nil,
			error_code:    1,
			error_message: (*C.char)(alloc.AllocCString(err.Error())),
		}
	}
	return C.HashResult{
		hash:          (*C.char)(alloc.AllocCString(hash)),
		error_code:    0,
		error_message: nil,
	}
}

func freeHashResultFields(r *C.HashResult) {
	if r.hash != nil {
		alloc.Free(unsafe.Pointer(r.hash))
	}
	if r.error_message != nil {
		alloc.Free(unsafe.Pointer(r.error_message))
	}
}

func newColorResult(colors []palette.Color, err error) *C.ColorResult {
	raw := alloc.Alloc(uint64(unsafe.Sizeof(C.ColorResult{})))
	if raw == nil {
		return nil
	}
	r := (*C.ColorResult)(raw)

	if err != nil {
		*r = C.ColorResult{
			colors:        nil,
			num_colors:    0,
			error_code:    1,
			error_message: (*C.char)(alloc.AllocCString(err.Error())),
		}
		return r
	}

	var colorsPtr unsafe.Pointer
	if len(colors) > 0 {
		colorsPtr = alloc.Alloc(uint64(len(colors)) * uint64(unsafe.Sizeof(C.ColorEntry{})))
		if colorsPtr == nil {
			alloc.Free(raw)
			return nil
		}
		dst := unsafe.Slice((*C.ColorEntry)(colorsPtr), len(colors))
		for i, c := range colors {
			dst[i] = C.ColorEntry{r: C.uint32_t(c.R), g: C.uint32_t(c.G), b: C.uint32_t(c.B), population: C.uint32_t(c.Population)}
		}
	}

	*r = C.ColorResult{
		colors:        (*C.ColorEntry)(colorsPtr),
		num_colors:    C.int32_t(len(colors)),
		error_code:    0,
		error_message: nil,
	}
	return r
}
