// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
)

// Drawer records draw commands into an open render pass.
type Drawer interface {
	Render(cb gfx.CommandBuffer)
}

// CommandRecorder owns one primary command buffer per framebuffer.
type CommandRecorder struct {
	dev     *Device
	pool    gfx.CommandPool
	buffers []gfx.CommandBuffer
}

// NewCommandRecorder allocates from the graphics pool of dev.
func NewCommandRecorder(dev *Device) (*CommandRecorder, error) {
	pool, ok := dev.CommandPool(GraphicsQueue)
	if !ok {
		return nil, errors.New("device has no graphics command pool")
	}
	return &CommandRecorder{dev: dev, pool: pool}, nil
}

// RecordAll frees any previously recorded buffers and records one buffer
// per framebuffer. Buffers are recorded for simultaneous use and stay
// valid until the next call or Release.
func (r *CommandRecorder) RecordAll(frames *FrameBufferSet, layout *RenderTargetLayout, extent gfx.Extent2D, clear ClearValues, scene Drawer) ([]gfx.CommandBuffer, error) {
	r.Release()

	drv := r.dev.drv
	buffers, err := drv.AllocateCommandBuffers(r.dev.handle, r.pool, frames.Len())
	if err != nil {
		return nil, errors.Wrap(err, "allocate command buffers")
	}
	r.buffers = buffers

	for i, cb := range buffers {
		if err := drv.BeginCommandBuffer(cb, gfx.UsageSimultaneousUse); err != nil {
			r.Release()
			return nil, errors.Wrapf(err, "begin command buffer %d", i)
		}
		layout.Begin(cb, frames.At(i), extent, clear)
		scene.Render(cb)
		layout.End(cb)
		if err := drv.EndCommandBuffer(cb); err != nil {
			r.Release()
			return nil, errors.Wrapf(err, "end command buffer %d", i)
		}
	}
	return r.buffers, nil
}

// Buffers returns the recorded buffers.
func (r *CommandRecorder) Buffers() []gfx.CommandBuffer {
	return r.buffers
}

// Len returns the number of recorded buffers.
func (r *CommandRecorder) Len() int {
	return len(r.buffers)
}

// Release frees the recorded buffers back to the pool.
func (r *CommandRecorder) Release() {
	if r == nil || len(r.buffers) == 0 {
		return
	}
	r.dev.drv.FreeCommandBuffers(r.dev.handle, r.pool, r.buffers)
	r.buffers = nil
}
