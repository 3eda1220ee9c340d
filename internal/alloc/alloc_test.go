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
// github.com:brinehash/imgkernel/internal/alloc/alloc_test.go

package alloc_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/brinehash/imgkernel/internal/alloc"
)

func Test_AllocZero(t *testing.T) {
	assert.Nil(t, alloc.Alloc(0))
}

func Test_FreeNil(t *testing.T) {
	alloc.Free(nil) // must not panic
}

func Test_AllocWriteReadFree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Uint64Range(1, 4096).Draw(t, "n")

		p := alloc.Alloc(n)
		if !assert.NotNil(t, p, "alloc of %d bytes should succeed", n) {
			return
		}

		buf := unsafe.Slice((*byte)(p), n)
		for i := range buf {
			buf[i] = byte(i)
		}
		for i := range buf {
			assert.Equal(t, byte(i), buf[i])
		}

		alloc.Free(p)
	})
}

func Test_AllocCString(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")

		p := alloc.AllocCString(s)
		if len(s) == 0 {
			// non-empty header still required for the trailing NUL.
			assert.NotNil(t, p)
		}
		if p == nil {
			return
		}

		buf := unsafe.Slice((*byte)(p), len(s)+1)
		assert.Equal(t, s, string(buf[:len(s)]))
		assert.Equal(t, byte(0), buf[len(s)])

		alloc.Free(p)
	})
}

func Test_AllocBytesEmpty(t *testing.T) {
	assert.Nil(t, alloc.AllocBytes(nil))
	assert.Nil(t, alloc.AllocBytes([]byte{}))
}
