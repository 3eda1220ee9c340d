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
// github.com:brinehash/imgkernel/internal/palette/mediancut_test.go

package palette_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/brinehash/imgkernel/internal/palette"
)

func Test_MedianCutSeedScenario_SingleColorMean(t *testing.T) {
	data := []byte{
		0, 0, 0, 255,
		255, 255, 255, 255,
	}
	colors, err := palette.MedianCutQuantize(data, 2, 1, 1, 128)
	require.NoError(t, err)
	require.Len(t, colors, 1)
	assert.Equal(t, uint32(127), colors[0].R)
	assert.Equal(t, uint32(127), colors[0].G)
	assert.Equal(t, uint32(127), colors[0].B)
	assert.Equal(t, uint32(2), colors[0].Population)
}

func Test_MedianCutInvalidDimensions(t *testing.T) {
	_, err := palette.MedianCutQuantize(nil, 0, 0, 2, 128)
	assert.ErrorIs(t, err, palette.ErrInvalidDimensions)
}

func Test_MedianCutNegativeNumColors(t *testing.T) {
	data := []byte{0, 0, 0, 255}
	_, err := palette.MedianCutQuantize(data, 1, 1, -1, 128)
	assert.ErrorIs(t, err, palette.ErrInvalidInput)
}

func Test_MedianCutAllTransparentYieldsEmptyPalette(t *testing.T) {
	data := []byte{
		10, 20, 30, 0,
		40, 50, 60, 0,
	}
	colors, err := palette.MedianCutQuantize(data, 2, 1, 4, 128)
	require.NoError(t, err)
	assert.Empty(t, colors)
}

func Test_MedianCutLeafCountNeverExceedsPowerOfTwoBound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 8).Draw(t, "w")
		h := rapid.IntRange(1, 8).Draw(t, "h")
		numColors := rapid.IntRange(1, 16).Draw(t, "numColors")

		n := w * h
		data := make([]byte, n*4)
		for i := 0; i < n; i++ {
			data[i*4] = byte(rapid.IntRange(0, 255).Draw(t, "r"))
			data[i*4+1] = byte(rapid.IntRange(0, 255).Draw(t, "g"))
			data[i*4+2] = byte(rapid.IntRange(0, 255).Draw(t, "b"))
			data[i*4+3] = 255
		}

		colors, err := palette.MedianCutQuantize(data, w, h, numColors, 128)
		require.NoError(t, err)

		depth := 0
		for (1 << uint(depth)) < numColors {
			depth++
		}
		assert.LessOrEqual(t, len(colors), 1<<uint(depth))
	})
}

func Test_MedianCutPopulationConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 8).Draw(t, "w")
		h := rapid.IntRange(1, 8).Draw(t, "h")
		numColors := rapid.IntRange(1, 16).Draw(t, "numColors")

		n := w * h
		data := make([]byte, n*4)
		for i := 0; i < n; i++ {
			data[i*4] = byte(rapid.IntRange(0, 255).Draw(t, "r"))
			data[i*4+1] = byte(rapid.IntRange(0, 255).Draw(t, "g"))
			data[i*4+2] = byte(rapid.IntRange(0, 255).Draw(t, "b"))
			data[i*4+3] = 255
		}

		colors, err := palette.MedianCutQuantize(data, w, h, numColors, 128)
		require.NoError(t, err)

		var total uint32
		for _, c := range colors {
			total += c.Population
		}
		assert.Equal(t, uint32(n), total)
	})
}

func Test_MedianCutResultIsSortedByPopulationDescending(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 8).Draw(t, "w")
		h := rapid.IntRange(1, 8).Draw(t, "h")
		numColors := rapid.IntRange(1, 8).Draw(t, "numColors")

		n := w * h
		data := make([]byte, n*4)
		for i := 0; i < n; i++ {
			data[i*4] = byte(rapid.IntRange(0, 255).Draw(t, "r"))
			data[i*4+1] = byte(rapid.IntRange(0, 255).Draw(t, "g"))
			data[i*4+2] = byte(rapid.IntRange(0, 255).Draw(t, "b"))
			data[i*4+3] = 255
		}

		colors, err := palette.MedianCutQuantize(data, w, h, numColors, 128)
		require.NoError(t, err)

		for i := 1; i < len(colors); i++ {
			assert.GreaterOrEqual(t, colors[i-1].Population, colors[i].Population)
		}
	})
}
