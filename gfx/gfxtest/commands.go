// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfxtest

import (
	"fmt"

	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
)

func (d *Driver) record(cb gfx.CommandBuffer, command string) {
	d.init()
	d.check("command buffer", uint64(cb))
	rec, ok := d.recordings[cb]
	if !ok || rec.Ended {
		d.faults = append(d.faults, fmt.Sprintf("%s recorded outside of command buffer %d", command, cb))
		return
	}
	rec.Commands = append(rec.Commands, command)
}

// BeginCommandBuffer implements gfx.Driver. Beginning resets the recording.
func (d *Driver) BeginCommandBuffer(cb gfx.CommandBuffer, usage gfx.CommandBufferUsage) error {
	if err := d.call("BeginCommandBuffer"); err != nil {
		return err
	}
	d.check("command buffer", uint64(cb))
	d.recordings[cb] = &Recording{Usage: usage}
	return nil
}

// EndCommandBuffer implements gfx.Driver.
func (d *Driver) EndCommandBuffer(cb gfx.CommandBuffer) error {
	if err := d.call("EndCommandBuffer"); err != nil {
		return err
	}
	rec, ok := d.recordings[cb]
	if !ok {
		return errors.Errorf("gfxtest.EndCommandBuffer(): buffer %d not begun", cb)
	}
	rec.Ended = true
	return nil
}

// CmdBeginRenderPass implements gfx.Driver.
func (d *Driver) CmdBeginRenderPass(cb gfx.CommandBuffer, info gfx.RenderPassBeginInfo) {
	d.call("CmdBeginRenderPass")
	d.check("render pass", uint64(info.RenderPass))
	d.check("framebuffer", uint64(info.Framebuffer))
	d.record(cb, "BeginRenderPass")
	if rec, ok := d.recordings[cb]; ok {
		rec.Clear = info.ClearValues
	}
}

// CmdEndRenderPass implements gfx.Driver.
func (d *Driver) CmdEndRenderPass(cb gfx.CommandBuffer) {
	d.call("CmdEndRenderPass")
	d.record(cb, "EndRenderPass")
}

// CmdBindPipeline implements gfx.Driver.
func (d *Driver) CmdBindPipeline(cb gfx.CommandBuffer, pipeline gfx.Pipeline) {
	d.call("CmdBindPipeline")
	d.check("pipeline", uint64(pipeline))
	d.record(cb, "BindPipeline")
}

// CmdSetViewport implements gfx.Driver.
func (d *Driver) CmdSetViewport(cb gfx.CommandBuffer, viewport gfx.Viewport) {
	d.call("CmdSetViewport")
	d.record(cb, "SetViewport")
}

// CmdSetScissor implements gfx.Driver.
func (d *Driver) CmdSetScissor(cb gfx.CommandBuffer, scissor gfx.Rect2D) {
	d.call("CmdSetScissor")
	d.record(cb, "SetScissor")
}

// CmdBindDescriptorSets implements gfx.Driver.
func (d *Driver) CmdBindDescriptorSets(cb gfx.CommandBuffer, layout gfx.PipelineLayout, sets []gfx.DescriptorSet) {
	d.call("CmdBindDescriptorSets")
	d.check("pipeline layout", uint64(layout))
	d.record(cb, "BindDescriptorSets")
}

// CmdDraw implements gfx.Driver.
func (d *Driver) CmdDraw(cb gfx.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	d.call("CmdDraw")
	d.record(cb, fmt.Sprintf("Draw(%d,%d)", vertexCount, instanceCount))
}

// QueueSubmit implements gfx.Driver. The fence is signaled immediately.
func (d *Driver) QueueSubmit(queue gfx.Queue, submit gfx.SubmitInfo, fence gfx.Fence) error {
	if err := d.call("QueueSubmit"); err != nil {
		return err
	}
	for _, cb := range submit.CommandBuffers {
		rec, ok := d.recordings[cb]
		if !ok || !rec.Ended {
			return errors.Errorf("gfxtest.QueueSubmit(): buffer %d is not recorded", cb)
		}
	}
	for _, s := range submit.WaitSemaphores {
		d.check("semaphore", uint64(s))
	}
	for _, s := range submit.SignalSemaphores {
		d.check("semaphore", uint64(s))
	}
	d.submits = append(d.submits, submit)
	if fence != 0 {
		d.check("fence", uint64(fence))
		if d.fences[fence] {
			d.faults = append(d.faults, fmt.Sprintf("submit with signaled fence %d", fence))
		}
		d.fences[fence] = true
	}
	return nil
}

// QueuePresent implements gfx.Driver.
func (d *Driver) QueuePresent(queue gfx.Queue, swapchain gfx.Swapchain, index uint32, wait gfx.Semaphore) error {
	if err := d.call("QueuePresent"); err != nil {
		return err
	}
	d.check("swapchain", uint64(swapchain))
	d.check("semaphore", uint64(wait))
	if index >= uint32(len(d.images[swapchain])) {
		return errors.Errorf("gfxtest.QueuePresent(): image %d out of range", index)
	}
	if len(d.PresentResults) > 0 {
		err := d.PresentResults[0]
		d.PresentResults = d.PresentResults[1:]
		return err
	}
	return nil
}
