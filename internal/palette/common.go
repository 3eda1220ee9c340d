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
// github.com:brinehash/imgkernel/internal/palette/common.go

// Package palette reduces an RGBA8 pixel buffer to a small ordered color
// palette, via two unrelated quantizers sharing the same alpha-masked
// pixel filtering and population-descending stable sort: k-means
// (kmeans.go) and median-cut (mediancut.go).
package palette

import (
	"errors"
	"sort"
)

var (
	ErrInvalidDimensions = errors.New("Invalid dimensions")
	ErrInvalidInput      = errors.New("Invalid input parameters")
)

// Pixel is an opaque-alpha-stripped RGB sample from the input buffer.
type Pixel struct {
	R, G, B uint8
}

// Color is one palette entry: an integer-truncated RGB centroid/average
// and the number of source pixels it represents.
type Color struct {
	R, G, B, Population uint32
}

// filterPixels extracts every pixel whose alpha channel is at least
// skipAlphaThreshold, in raster order (spec.md 4.6/4.7's "filtered pixel
// list").
func filterPixels(data []byte, width, height int, skipAlphaThreshold uint8) []Pixel {
	n := width * height
	out := make([]Pixel, 0, n)

	for i := 0; i < n; i++ {
		px := i * 4
		if data[px+3] < skipAlphaThreshold {
			continue
		}
		out = append(out, Pixel{R: data[px], G: data[px+1], B: data[px+2]})
	}

	return out
}

// sortByPopulationDescending performs spec.md's required stable sort:
// ties break by first-encountered order.
func sortByPopulationDescending(colors []Color) {
	sort.SliceStable(colors, func(i, j int) bool {
		return colors[i].Population > colors[j].Population
	})
}

func checkDims(width, height int, data []byte) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	if len(data) < width*height*4 {
		return ErrInvalidInput
	}
	return nil
}
