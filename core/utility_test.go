// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSliceUint32(t *testing.T) {
	c := qt.New(t)
	c.Assert(SliceUint32(nil), qt.IsNil)
	c.Assert(SliceUint32([]byte{1, 2, 3}), qt.IsNil)

	data := make([]byte, 10)
	binary.LittleEndian.PutUint32(data[0:], 0x07230203)
	binary.LittleEndian.PutUint32(data[4:], 42)
	words := SliceUint32(data)
	c.Assert(words, qt.HasLen, 2)
	if nativeLittleEndian() {
		c.Assert(words[0], qt.Equals, uint32(0x07230203))
		c.Assert(words[1], qt.Equals, uint32(42))
	}
}

func nativeLittleEndian() bool {
	b := SliceUint32([]byte{1, 0, 0, 0})
	return b[0] == 1
}

func TestSafeStrings(t *testing.T) {
	c := qt.New(t)
	c.Assert(SafeString("VK_KHR_surface"), qt.Equals, "VK_KHR_surface\x00")
	c.Assert(SafeStrings([]string{"a", "b"}), qt.DeepEquals, []string{"a\x00", "b\x00"})
	c.Assert(SafeStrings(nil), qt.HasLen, 0)
}

func TestMissing(t *testing.T) {
	c := qt.New(t)
	have := []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
	c.Assert(Missing(have, []string{"VK_KHR_surface"}), qt.IsNil)
	c.Assert(Missing(have, []string{"VK_KHR_swapchain", "VK_KHR_surface"}), qt.DeepEquals, []string{"VK_KHR_swapchain"})
	c.Assert(Missing(nil, []string{"a", "b"}), qt.DeepEquals, []string{"a", "b"})
}

func BenchmarkSliceUint32(b *testing.B) {
	data := make([]byte, 4096)
	for i := 0; i < b.N; i++ {
		SliceUint32(data)
	}
}
