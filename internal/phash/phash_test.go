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
// github.com:brinehash/imgkernel/internal/phash/phash_test.go

package phash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/brinehash/imgkernel/internal/phash"
)

// Test_SeedScenario_2x2 reproduces spec.md 8's worked example exactly:
// a 2x2 checkerboard of black/white pixels hashes to "6".
func Test_SeedScenario_2x2(t *testing.T) {
	data := []byte{
		0, 0, 0, 255,
		255, 255, 255, 255,
		255, 255, 255, 255,
		0, 0, 0, 255,
	}
	hash, err := phash.ComputeHash(data, 2, 2)
	assert.NoError(t, err)
	assert.Equal(t, "6", hash)
}

func Test_InvalidDimensions(t *testing.T) {
	_, err := phash.ComputeHash([]byte{1, 2, 3, 4}, 0, 1)
	assert.ErrorIs(t, err, phash.ErrInvalidDimensions)

	_, err = phash.ComputeHash([]byte{1, 2, 3, 4}, 1, 0)
	assert.ErrorIs(t, err, phash.ErrInvalidDimensions)
}

func Test_ImageTooShort(t *testing.T) {
	_, err := phash.ComputeHash([]byte{1, 2, 3}, 2, 2)
	assert.ErrorIs(t, err, phash.ErrImageTooShort)
}

func Test_UniformImageHashesAllZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 12).Draw(t, "w")
		h := rapid.IntRange(1, 12).Draw(t, "h")
		r := byte(rapid.IntRange(0, 255).Draw(t, "r"))
		g := byte(rapid.IntRange(0, 255).Draw(t, "g"))
		b := byte(rapid.IntRange(0, 255).Draw(t, "b"))

		data := make([]byte, w*h*4)
		for i := 0; i < w*h; i++ {
			data[i*4] = r
			data[i*4+1] = g
			data[i*4+2] = b
			data[i*4+3] = 255
		}

		hash, err := phash.ComputeHash(data, w, h)
		assert.NoError(t, err)
		for _, c := range hash {
			assert.Equal(t, byte('0'), byte(c), "uniform image must hash to all-zero bits")
		}
	})
}

func Test_HashLengthIsCeilPixelsOverFour(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 17).Draw(t, "w")
		h := rapid.IntRange(1, 17).Draw(t, "h")
		data := make([]byte, w*h*4)

		hash, err := phash.ComputeHash(data, w, h)
		assert.NoError(t, err)
		assert.Equal(t, (w*h+3)/4, len(hash))
	})
}

func Test_ThreePixelOddLengthLeftAligns(t *testing.T) {
	// 3 pixels with bits 1,0,1 (per spec.md boundary behavior example)
	// should hex-encode to "a" (binary 1010, left aligned, low bit zero).
	// Build gray values so pixel 0 and 2 exceed the mean and pixel 1 does not.
	data := []byte{
		200, 200, 200, 255, // above mean
		10, 10, 10, 255, // below mean
		200, 200, 200, 255, // above mean
	}
	hash, err := phash.ComputeHash(data, 3, 1)
	assert.NoError(t, err)
	assert.Equal(t, "a", hash)
}

func Test_BatchHashPartialSuccess(t *testing.T) {
	good := make([]byte, 2*2*4)
	data := append(good, make([]byte, 4)...) // trailing junk for the bad entry's offset math

	specs := []phash.ImageSpec{
		{Width: 2, Height: 2, Offset: 0},
		{Width: 0, Height: 2, Offset: 0},
		{Width: 2, Height: 2, Offset: -1},
		{Width: 100, Height: 100, Offset: 0}, // too short for buffer
	}

	out := phash.BatchHash(data, specs)
	assert.Len(t, out, 4)
	assert.NoError(t, out[0].Err)
	assert.NotEmpty(t, out[0].Hash)
	assert.ErrorIs(t, out[1].Err, phash.ErrInvalidImageMetadata)
	assert.ErrorIs(t, out[2].Err, phash.ErrInvalidImageMetadata)
	assert.ErrorIs(t, out[3].Err, phash.ErrInvalidImageMetadata)
}
