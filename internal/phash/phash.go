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
// github.com:brinehash/imgkernel/internal/phash/phash.go

// Package phash computes the kernel's perceptual fingerprint: a
// variable-length bit hash derived from comparing each pixel's gray
// value against the image's mean gray value, serialized as lowercase
// hex. The hash_size parameter accepted by the exported ABI is advisory
// only (see calculate_perceptual_hash in the original kernel) — this
// package never resizes; callers must pre-scale images to the desired
// fingerprint dimensions.
package phash

import (
	"errors"
	"math/bits"
)

// Sentinel errors whose Error() text is part of the ABI's error-string
// contract (spec.md 7): the exact strings cross into the C ABI's
// error_message field unchanged.
var (
	ErrInvalidDimensions     = errors.New("Invalid dimensions")
	ErrPixelCountOverflow    = errors.New("Pixel count overflow")
	ErrImageByteSizeOverflow = errors.New("Image byte size overflow")
	ErrImageTooShort         = errors.New("Image data is too short")
	ErrImageSizeOverflow     = errors.New("Image size overflow")
	ErrInvalidImageMetadata  = errors.New("Invalid image metadata")
)

// ComputeHash hashes an RGBA8 buffer of width*height pixels (4 bytes
// each, R,G,B,A order) into a lowercase hex string of length
// ceil(width*height/4). It takes no hash-size argument: the ABI's
// hash_size is validated in cmd/libphash and not passed on.
func ComputeHash(data []byte, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", ErrInvalidDimensions
	}

	totalPixels, ok := checkedMul(uint64(width), uint64(height))
	if !ok {
		return "", ErrPixelCountOverflow
	}

	expectedBytes, ok := checkedMul(totalPixels, 4)
	if !ok {
		return "", ErrImageByteSizeOverflow
	}

	if uint64(len(data)) < expectedBytes {
		return "", ErrImageTooShort
	}

	return hashPixels(data, totalPixels), nil
}

// hashPixels implements spec.md 4.3 steps 1-3 over the first
// totalPixels*4 bytes of data (the caller has already validated length).
func hashPixels(data []byte, totalPixels uint64) string {
	gray := make([]uint16, totalPixels)
	var sum uint64

	for i := uint64(0); i < totalPixels; i++ {
		px := i * 4
		r := uint16(data[px])
		g := uint16(data[px+1])
		b := uint16(data[px+2])
		value := (r + g + b) / 3
		gray[i] = value
		sum += uint64(value)
	}

	numNibbles := (totalPixels + 3) / 4
	hex := make([]byte, 0, numNibbles)

	var nibble uint8
	var nibbleBits uint
	for _, value := range gray {
		nibble <<= 1
		if greaterWidened(uint64(value), totalPixels, sum) {
			nibble |= 1
		}

		nibbleBits++
		if nibbleBits == 4 {
			hex = append(hex, hexDigit(nibble))
			nibble = 0
			nibbleBits = 0
		}
	}

	if nibbleBits != 0 {
		nibble <<= 4 - nibbleBits
		hex = append(hex, hexDigit(nibble))
	}

	return string(hex)
}

// greaterWidened reports whether value*n > sum, computing the product in
// 128 bits (via math/bits.Mul64) so the comparison stays exact even when
// n exceeds 2^20 and the plain 64-bit product would wrap (spec.md 4.3/4.9).
func greaterWidened(value, n, sum uint64) bool {
	hi, lo := bits.Mul64(value, n)
	if hi != 0 {
		return true
	}
	return lo > sum
}

const hexDigits = "0123456789abcdef"

func hexDigit(v uint8) byte {
	return hexDigits[v]
}

// checkedMul multiplies a and b, reporting false if the product does not
// fit in 64 bits.
func checkedMul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}
