// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
)

// FrameBufferSet holds one framebuffer per presentation chain image.
type FrameBufferSet struct {
	dev    *Device
	fbs    []gfx.Framebuffer
	extent gfx.Extent2D
}

// NewFrameBufferSet binds each chain image and the shared depth view
// to the layout's render pass.
func NewFrameBufferSet(dev *Device, chain *PresentationChain, layout *RenderTargetLayout) (*FrameBufferSet, error) {
	set := &FrameBufferSet{
		dev:    dev,
		extent: chain.Extent(),
	}
	for i := 0; i < chain.Len(); i++ {
		fb, err := dev.drv.CreateFramebuffer(dev.handle, gfx.FramebufferInfo{
			RenderPass:  layout.RenderPass(),
			Attachments: []gfx.ImageView{chain.View(i), chain.DepthView()},
			Extent:      set.extent,
		})
		if err != nil {
			set.Release()
			return nil, errors.Wrapf(err, "create framebuffer %d", i)
		}
		set.fbs = append(set.fbs, fb)
	}
	return set, nil
}

// Len returns the number of framebuffers.
func (s *FrameBufferSet) Len() int {
	return len(s.fbs)
}

// At returns framebuffer i.
func (s *FrameBufferSet) At(i int) gfx.Framebuffer {
	return s.fbs[i]
}

// Extent returns the framebuffer size.
func (s *FrameBufferSet) Extent() gfx.Extent2D {
	return s.extent
}

// Release destroys all framebuffers.
func (s *FrameBufferSet) Release() {
	if s == nil {
		return
	}
	for _, fb := range s.fbs {
		s.dev.drv.DestroyFramebuffer(s.dev.handle, fb)
	}
	s.fbs = nil
}
