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
// github.com:brinehash/imgkernel/internal/phash/batch.go

package phash

// ImageSpec describes one image packed into a concatenated buffer passed
// to BatchHash: its pixel dimensions and its byte offset into the shared
// buffer.
type ImageSpec struct {
	Width  int
	Height int
	Offset int
}

// Outcome is one element of a batch hash result: either Hash is set and
// Err is nil, or Hash is empty and Err describes why that entry failed.
// Unlike ComputeHash's caller, BatchHash never stops at the first failing
// entry — every element independently carries success or error (spec.md
// 7, "Partial success").
type Outcome struct {
	Hash string
	Err  error
}

// BatchHash hashes every image described by specs out of the shared
// buffer data. A malformed entry (non-positive dimensions, negative
// offset, a size that doesn't fit the remaining buffer, or a dimension
// product that overflows) produces an Outcome with Err set; it never
// aborts the rest of the batch.
//
// BatchHash takes no hash-size argument, same as ComputeHash: the ABI's
// hash_size is checked once in cmd/libphash and not passed on.
func BatchHash(data []byte, specs []ImageSpec) []Outcome {
	out := make([]Outcome, len(specs))

	for i, spec := range specs {
		out[i] = hashOne(data, spec)
	}

	return out
}

func hashOne(data []byte, spec ImageSpec) Outcome {
	if spec.Width <= 0 || spec.Height <= 0 || spec.Offset < 0 {
		return Outcome{Err: ErrInvalidImageMetadata}
	}

	imageLen, ok := checkedMul(uint64(spec.Width), uint64(spec.Height))
	if ok {
		imageLen, ok = checkedMul(imageLen, 4)
	}
	if !ok {
		return Outcome{Err: ErrImageSizeOverflow}
	}

	end := uint64(spec.Offset) + imageLen
	if end < uint64(spec.Offset) || end > uint64(len(data)) {
		// The original kernel trusts the caller's raw pointer arithmetic
		// here; this Go port has a real, bounds-checked slice, so an
		// out-of-range region is reported the same way as other
		// malformed metadata rather than risking a slice panic.
		return Outcome{Err: ErrInvalidImageMetadata}
	}

	hash, err := ComputeHash(data[spec.Offset:end], spec.Width, spec.Height)
	if err != nil {
		return Outcome{Err: err}
	}

	return Outcome{Hash: hash}
}
