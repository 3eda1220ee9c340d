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
// github.com:brinehash/imgkernel/internal/palette/kmeans.go

package palette

// centroid holds a cluster center in integer RGB space.
type centroid struct {
	R, G, B int32
}

// KMeansQuantize runs deterministic k-means over the alpha-filtered
// pixels of an RGBA8 buffer (spec.md 4.6). maxIter <= 0 uses the default
// of 20. Initialization is uniform-stride sampling of the filtered pixel
// list, so two runs over identical input always produce byte-identical
// output.
func KMeansQuantize(data []byte, width, height, k int, maxIter int, skipAlphaThreshold uint8) ([]Color, error) {
	if err := checkDims(width, height, data); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, ErrInvalidInput
	}

	pixels := filterPixels(data, width, height, skipAlphaThreshold)
	if len(pixels) == 0 {
		return []Color{}, nil
	}

	if len(pixels) <= k {
		return onePixelPerColor(pixels), nil
	}

	if maxIter <= 0 {
		maxIter = 20
	}

	centroids := initCentroids(pixels, k)
	var counts []int

	for iter := 0; iter < maxIter; iter++ {
		assignments := assign(pixels, centroids)
		newCentroids, newCounts := recompute(pixels, assignments, centroids, k)
		counts = newCounts

		moved := maxSquaredMove(centroids, newCentroids)
		centroids = newCentroids

		// Stop once no centroid moved by more than 1 in squared distance.
		// This is so tight in practice it is close to exact-fixed-point
		// convergence.
		if moved <= 1 {
			break
		}
	}

	colors := make([]Color, 0, k)
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue
		}
		colors = append(colors, Color{
			R:          uint32(centroids[c].R),
			G:          uint32(centroids[c].G),
			B:          uint32(centroids[c].B),
			Population: uint32(counts[c]),
		})
	}

	sortByPopulationDescending(colors)
	return colors, nil
}

// onePixelPerColor handles the "filtered count <= k" case: every pixel
// becomes its own color with population 1, stable-sorted (a no-op, since
// every population is equal and the sort is stable).
func onePixelPerColor(pixels []Pixel) []Color {
	colors := make([]Color, len(pixels))
	for i, p := range pixels {
		colors[i] = Color{R: uint32(p.R), G: uint32(p.G), B: uint32(p.B), Population: 1}
	}
	sortByPopulationDescending(colors)
	return colors
}

// initCentroids picks k centroids by uniform stride sampling: centroid i
// starts at index (i*N)/k of the filtered pixel list.
func initCentroids(pixels []Pixel, k int) []centroid {
	n := len(pixels)
	centroids := make([]centroid, k)
	for i := 0; i < k; i++ {
		idx := (i * n) / k
		p := pixels[idx]
		centroids[i] = centroid{R: int32(p.R), G: int32(p.G), B: int32(p.B)}
	}
	return centroids
}

// assign maps each pixel to the index of its nearest centroid by squared
// Euclidean distance in integer RGB space. Ties resolve to the smallest
// centroid index (the scan only replaces the current best on a strictly
// smaller distance).
func assign(pixels []Pixel, centroids []centroid) []int {
	assignments := make([]int, len(pixels))
	for i, p := range pixels {
		best := 0
		bestDist := squaredDistance(p, centroids[0])
		for c := 1; c < len(centroids); c++ {
			d := squaredDistance(p, centroids[c])
			if d < bestDist {
				bestDist = d
				best = c
			}
		}
		assignments[i] = best
	}
	return assignments
}

// squaredDistance computes the squared Euclidean distance between a
// pixel and a centroid, using a 32-bit accumulator (bounded by
// 3*255^2, which comfortably fits).
func squaredDistance(p Pixel, c centroid) int32 {
	dr := int32(p.R) - c.R
	dg := int32(p.G) - c.G
	db := int32(p.B) - c.B
	return dr*dr + dg*dg + db*db
}

// recompute derives each cluster's new centroid as the integer-truncated
// mean of its assigned pixels (64-bit sum accumulators), leaving empty
// clusters at their previous position, and returns the per-cluster
// pixel counts alongside.
func recompute(pixels []Pixel, assignments []int, prev []centroid, k int) ([]centroid, []int) {
	sumR := make([]int64, k)
	sumG := make([]int64, k)
	sumB := make([]int64, k)
	counts := make([]int, k)

	for i, p := range pixels {
		c := assignments[i]
		sumR[c] += int64(p.R)
		sumG[c] += int64(p.G)
		sumB[c] += int64(p.B)
		counts[c]++
	}

	next := make([]centroid, k)
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			next[c] = prev[c]
			continue
		}
		n := int64(counts[c])
		next[c] = centroid{
			R: int32(sumR[c] / n),
			G: int32(sumG[c] / n),
			B: int32(sumB[c] / n),
		}
	}

	return next, counts
}

// maxSquaredMove returns the largest squared-distance movement of any
// centroid between the previous and next positions.
func maxSquaredMove(prev, next []centroid) int32 {
	var maxMove int32
	for c := range prev {
		dr := next[c].R - prev[c].R
		dg := next[c].G - prev[c].G
		db := next[c].B - prev[c].B
		move := dr*dr + dg*dg + db*db
		if move > maxMove {
			maxMove = move
		}
	}
	return maxMove
}
