// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
)

// ClearValues are the values attachments are cleared to at the
// start of the render pass.
type ClearValues struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

// DefaultClearValues clears to a teal colour and the far plane.
var DefaultClearValues = ClearValues{
	Color: [4]float32{0.3, 0.5, 0.5, 1.0},
	Depth: 1.0,
}

// RenderTargetLayout is a single subpass render pass with a colour
// and a depth attachment.
type RenderTargetLayout struct {
	dev     *Device
	pass    gfx.RenderPass
	formats ChainFormats
}

// NewRenderTargetLayout creates the render pass for the given formats.
func NewRenderTargetLayout(dev *Device, formats ChainFormats) (*RenderTargetLayout, error) {
	info := gfx.RenderPassInfo{
		Attachments: []gfx.Attachment{
			{
				Format:         formats.Color,
				LoadOp:         gfx.LoadOpClear,
				StoreOp:        gfx.StoreOpStore,
				StencilLoadOp:  gfx.LoadOpDontCare,
				StencilStoreOp: gfx.StoreOpDontCare,
				InitialLayout:  gfx.LayoutUndefined,
				FinalLayout:    gfx.LayoutPresentSrc,
			},
			{
				Format:         formats.Depth,
				LoadOp:         gfx.LoadOpClear,
				StoreOp:        gfx.StoreOpDontCare,
				StencilLoadOp:  gfx.LoadOpDontCare,
				StencilStoreOp: gfx.StoreOpDontCare,
				InitialLayout:  gfx.LayoutUndefined,
				FinalLayout:    gfx.LayoutDepthStencilAttachmentOptimal,
			},
		},
		Subpasses: []gfx.Subpass{{
			Color: []gfx.AttachmentRef{{Attachment: 0, Layout: gfx.LayoutColorAttachmentOptimal}},
			Depth: &gfx.AttachmentRef{Attachment: 1, Layout: gfx.LayoutDepthStencilAttachmentOptimal},
		}},
		Dependencies: []gfx.SubpassDependency{{
			SrcSubpass: gfx.SubpassExternal,
			DstSubpass: 0,
			SrcStage:   gfx.StageColorAttachmentOutput,
			DstStage:   gfx.StageColorAttachmentOutput,
			DstAccess:  gfx.AccessColorAttachmentRead | gfx.AccessColorAttachmentWrite,
		}},
	}

	pass, err := dev.drv.CreateRenderPass(dev.handle, info)
	if err != nil {
		return nil, errors.Wrap(err, "create render pass")
	}
	return &RenderTargetLayout{
		dev:     dev,
		pass:    pass,
		formats: formats,
	}, nil
}

// RenderPass returns the render pass handle.
func (l *RenderTargetLayout) RenderPass() gfx.RenderPass {
	return l.pass
}

// Formats returns the formats the layout was built for.
func (l *RenderTargetLayout) Formats() ChainFormats {
	return l.formats
}

// Begin starts the render pass on cb targeting fb.
func (l *RenderTargetLayout) Begin(cb gfx.CommandBuffer, fb gfx.Framebuffer, extent gfx.Extent2D, clear ClearValues) {
	l.dev.drv.CmdBeginRenderPass(cb, gfx.RenderPassBeginInfo{
		RenderPass:  l.pass,
		Framebuffer: fb,
		Area:        gfx.Rect2D{Extent: extent},
		ClearValues: []gfx.ClearValue{
			{Color: clear.Color},
			{Depth: clear.Depth, Stencil: clear.Stencil},
		},
	})
}

// End ends the render pass on cb.
func (l *RenderTargetLayout) End(cb gfx.CommandBuffer) {
	l.dev.drv.CmdEndRenderPass(cb)
}

// Release destroys the render pass.
func (l *RenderTargetLayout) Release() {
	if l == nil || l.pass == 0 {
		return
	}
	l.dev.drv.DestroyRenderPass(l.dev.handle, l.pass)
	l.pass = 0
}
