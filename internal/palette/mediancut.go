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
// github.com:brinehash/imgkernel/internal/palette/mediancut.go

package palette

import "sort"

// MedianCutQuantize reduces the alpha-filtered pixels of an RGBA8 buffer
// to at most 2^ceil(log2(numColors)) entries via recursive longest-axis
// median splitting (spec.md 4.7); that bound exceeds numColors when
// numColors is not a power of two. numColors <= 1 yields a single
// mean-color entry covering every filtered pixel.
func MedianCutQuantize(data []byte, width, height, numColors int, skipAlphaThreshold uint8) ([]Color, error) {
	if err := checkDims(width, height, data); err != nil {
		return nil, err
	}
	if numColors < 0 {
		return nil, ErrInvalidInput
	}

	pixels := filterPixels(data, width, height, skipAlphaThreshold)
	if len(pixels) == 0 {
		return []Color{}, nil
	}

	depth := splitDepth(numColors)

	var colors []Color
	split(pixels, depth, &colors)

	sortByPopulationDescending(colors)
	return colors, nil
}

// splitDepth computes ceil(log2(numColors)), with numColors <= 1
// collapsing to depth 0 (a single leaf, the whole filtered set).
func splitDepth(numColors int) int {
	depth := 0
	for (1 << uint(depth)) < numColors {
		depth++
	}
	return depth
}

// split recursively partitions pixels along its longest-range channel
// (R, then G, then B on a tie) at the median index, until depth reaches
// zero, at which point it emits a single mean-color leaf. Ties in axis
// range favor the earlier axis via a strict '>' comparison.
func split(pixels []Pixel, depth int, out *[]Color) {
	if len(pixels) == 0 {
		return
	}
	if depth == 0 {
		*out = append(*out, meanColor(pixels))
		return
	}

	axis := longestAxis(pixels)
	sort.SliceStable(pixels, func(i, j int) bool {
		return channel(pixels[i], axis) < channel(pixels[j], axis)
	})

	mid := len(pixels) / 2
	split(pixels[:mid], depth-1, out)
	split(pixels[mid:], depth-1, out)
}

type axis int

const (
	axisR axis = iota
	axisG
	axisB
)

func channel(p Pixel, a axis) uint8 {
	switch a {
	case axisR:
		return p.R
	case axisG:
		return p.G
	default:
		return p.B
	}
}

// longestAxis finds the channel with the largest (max-min) range,
// breaking ties in favor of R over G over B.
func longestAxis(pixels []Pixel) axis {
	var minR, maxR, minG, maxG, minB, maxB uint8
	minR, maxR = pixels[0].R, pixels[0].R
	minG, maxG = pixels[0].G, pixels[0].G
	minB, maxB = pixels[0].B, pixels[0].B

	for _, p := range pixels[1:] {
		if p.R < minR {
			minR = p.R
		}
		if p.R > maxR {
			maxR = p.R
		}
		if p.G < minG {
			minG = p.G
		}
		if p.G > maxG {
			maxG = p.G
		}
		if p.B < minB {
			minB = p.B
		}
		if p.B > maxB {
			maxB = p.B
		}
	}

	rangeR := int(maxR) - int(minR)
	rangeG := int(maxG) - int(minG)
	rangeB := int(maxB) - int(minB)

	best := axisR
	bestRange := rangeR
	if rangeG > bestRange {
		best = axisG
		bestRange = rangeG
	}
	if rangeB > bestRange {
		best = axisB
	}
	return best
}

// meanColor averages a leaf's pixels into one palette entry.
func meanColor(pixels []Pixel) Color {
	var sumR, sumG, sumB uint64
	for _, p := range pixels {
		sumR += uint64(p.R)
		sumG += uint64(p.G)
		sumB += uint64(p.B)
	}
	n := uint64(len(pixels))
	return Color{
		R:          uint32(sumR / n),
		G:          uint32(sumG / n),
		B:          uint32(sumB / n),
		Population: uint32(n),
	}
}
