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
// github.com:brinehash/imgkernel/cmd/phashctl/main.go

// Command phashctl is a demo CLI around the kernel: it decodes images
// with the standard library's image package (the "external collaborator"
// role the kernel itself never takes on) and drives internal/phash,
// internal/similarity and internal/palette directly, without going
// through the C ABI in cmd/libphash.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/brinehash/imgkernel/internal/phash"
	"github.com/brinehash/imgkernel/internal/similarity"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "hash":
		runHash(os.Args[2:])
	case "dedup":
		runDedup(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage: phashctl <hash|dedup> [flags]")
	fmt.Println()
	fmt.Println("  hash  --file path/to/image     print the perceptual hash of one image")
	fmt.Println("  dedup --in-path dir --threshold N   find near-duplicate images under a directory")
}

// runHash decodes a single image file and prints its perceptual hash.
func runHash(args []string) {
	flags := flag.NewFlagSet("hash", flag.ExitOnError)
	filename := flags.String("file", "", "path to an image file")
	flags.Parse(args)

	if *filename == "" {
		log.Fatal("hash requires --file")
	}

	_, data, width, height, err := decodeRGBA(*filename)
	if err != nil {
		log.Fatal(err)
	}

	hash, err := phash.ComputeHash(data, width, height)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(hash)
}

// runDedup walks a directory tree, hashes every decodable image, and
// reports the near-duplicate groups found by the all-pairs similarity
// search.
func runDedup(args []string) {
	flags := flag.NewFlagSet("dedup", flag.ExitOnError)
	inPath := flags.String("in-path", ".", "directory to walk for images")
	threshold := flags.Int("threshold", 4, "maximum Hamming distance considered a near-duplicate")
	flags.Parse(args)

	var paths []string
	var hashes [][]byte

	err := filepath.WalkDir(*inPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		_, data, width, height, decodeErr := decodeRGBA(path)
		if decodeErr != nil {
			// Not every file under the tree is a decodable image; skip
			// quietly rather than aborting the whole walk.
			return nil
		}

		hash, hashErr := phash.ComputeHash(data, width, height)
		if hashErr != nil {
			return nil
		}

		paths = append(paths, path)
		hashes = append(hashes, []byte(hash))
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	pairs := similarity.FindPairs(hashes, int32(*threshold))
	groups := groupPairs(len(paths), pairs)

	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		sort.Ints(g)
		for _, idx := range g {
			fmt.Println(paths[idx])
		}
		fmt.Println()
	}
}

// groupPairs unions indices connected by a similarity pair into
// connected components, reported in ascending representative order.
func groupPairs(n int, pairs []similarity.Pair) [][]int {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	for _, p := range pairs {
		ri, rj := find(int(p.I)), find(int(p.J))
		if ri != rj {
			parent[ri] = rj
		}
	}

	byRoot := make(map[int][]int)
	for i := 0; i < n; i++ {
		r := find(i)
		byRoot[r] = append(byRoot[r], i)
	}

	roots := make([]int, 0, len(byRoot))
	for r := range byRoot {
		roots = append(roots, r)
	}
	sort.Ints(roots)

	groups := make([][]int, 0, len(roots))
	for _, r := range roots {
		groups = append(groups, byRoot[r])
	}
	return groups
}

// decodeRGBA decodes an image file into a tightly packed RGBA8 buffer,
// ready to feed straight to internal/phash or internal/palette.
func decodeRGBA(path string) (format string, data []byte, width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, 0, 0, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return "", nil, 0, 0, err
	}

	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	data = make([]byte, 0, width*height*4)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			data = append(data, byte(r>>8), byte(g>>8), byte(b>>8), byte(a>>8))
		}
	}

	return format, data, width, height, nil
}
