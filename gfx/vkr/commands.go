// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// BeginCommandBuffer starts recording into cb.
func (d *Driver) BeginCommandBuffer(cb gfx.CommandBuffer, usage gfx.CommandBufferUsage) error {
	return check("vk.BeginCommandBuffer()", vk.BeginCommandBuffer(d.commandBuffer(cb), &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(usage),
	}))
}

// EndCommandBuffer finishes recording into cb.
func (d *Driver) EndCommandBuffer(cb gfx.CommandBuffer) error {
	return check("vk.EndCommandBuffer()", vk.EndCommandBuffer(d.commandBuffer(cb)))
}

// CmdBeginRenderPass begins a render pass with inline contents.
func (d *Driver) CmdBeginRenderPass(cb gfx.CommandBuffer, info gfx.RenderPassBeginInfo) {
	vk.CmdBeginRenderPass(d.commandBuffer(cb), &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  d.renderPass(info.RenderPass),
		Framebuffer: d.framebuffer(info.Framebuffer),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: info.Area.Offset.X, Y: info.Area.Offset.Y},
			Extent: toExtent(info.Area.Extent),
		},
		ClearValueCount: uint32(len(info.ClearValues)),
		PClearValues:    clearValues(info.ClearValues),
	}, vk.SubpassContentsInline)
}

// clearValues sets colour on the first value and depth on the rest,
// matching the colour then depth attachment order of the render pass.
func clearValues(values []gfx.ClearValue) []vk.ClearValue {
	out := make([]vk.ClearValue, len(values))
	for i, v := range values {
		if i == 0 {
			out[i].SetColor(v.Color[:])
			continue
		}
		out[i].SetDepthStencil(v.Depth, v.Stencil)
	}
	return out
}

// CmdEndRenderPass ends the current render pass.
func (d *Driver) CmdEndRenderPass(cb gfx.CommandBuffer) {
	vk.CmdEndRenderPass(d.commandBuffer(cb))
}

// CmdBindPipeline binds a graphics pipeline.
func (d *Driver) CmdBindPipeline(cb gfx.CommandBuffer, pipeline gfx.Pipeline) {
	vk.CmdBindPipeline(d.commandBuffer(cb), vk.PipelineBindPointGraphics, d.pipeline(pipeline))
}

// CmdSetViewport sets the dynamic viewport.
func (d *Driver) CmdSetViewport(cb gfx.CommandBuffer, viewport gfx.Viewport) {
	vk.CmdSetViewport(d.commandBuffer(cb), 0, 1, []vk.Viewport{{
		X:        viewport.X,
		Y:        viewport.Y,
		Width:    viewport.Width,
		Height:   viewport.Height,
		MinDepth: viewport.MinDepth,
		MaxDepth: viewport.MaxDepth,
	}})
}

// CmdSetScissor sets the dynamic scissor.
func (d *Driver) CmdSetScissor(cb gfx.CommandBuffer, scissor gfx.Rect2D) {
	vk.CmdSetScissor(d.commandBuffer(cb), 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: scissor.Offset.X, Y: scissor.Offset.Y},
		Extent: toExtent(scissor.Extent),
	}})
}

// CmdBindDescriptorSets binds sets starting at set zero.
func (d *Driver) CmdBindDescriptorSets(cb gfx.CommandBuffer, layout gfx.PipelineLayout, sets []gfx.DescriptorSet) {
	vkSets := d.descriptorSets(sets)
	if len(vkSets) == 0 {
		return
	}
	vk.CmdBindDescriptorSets(d.commandBuffer(cb), vk.PipelineBindPointGraphics,
		d.pipelineLayout(layout), 0, uint32(len(vkSets)), vkSets, 0, nil)
}

// CmdDraw draws non-indexed primitives.
func (d *Driver) CmdDraw(cb gfx.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(d.commandBuffer(cb), vertexCount, instanceCount, firstVertex, firstInstance)
}

// QueueSubmit submits one batch, signaling fence when it completes.
func (d *Driver) QueueSubmit(queue gfx.Queue, submit gfx.SubmitInfo, fence gfx.Fence) error {
	if len(submit.WaitSemaphores) != len(submit.WaitStages) {
		return errors.Errorf("%d wait semaphores with %d wait stages", len(submit.WaitSemaphores), len(submit.WaitStages))
	}

	waits := make([]vk.Semaphore, 0, len(submit.WaitSemaphores))
	for _, s := range submit.WaitSemaphores {
		waits = append(waits, d.semaphore(s))
	}
	stages := make([]vk.PipelineStageFlags, 0, len(submit.WaitStages))
	for _, s := range submit.WaitStages {
		stages = append(stages, vk.PipelineStageFlags(s))
	}
	buffers := make([]vk.CommandBuffer, 0, len(submit.CommandBuffers))
	for _, cb := range submit.CommandBuffers {
		buffers = append(buffers, d.commandBuffer(cb))
	}
	signals := make([]vk.Semaphore, 0, len(submit.SignalSemaphores))
	for _, s := range submit.SignalSemaphores {
		signals = append(signals, d.semaphore(s))
	}

	return check("vk.QueueSubmit()", vk.QueueSubmit(d.queue(queue), 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(waits)),
		PWaitSemaphores:      waits,
		PWaitDstStageMask:    stages,
		CommandBufferCount:   uint32(len(buffers)),
		PCommandBuffers:      buffers,
		SignalSemaphoreCount: uint32(len(signals)),
		PSignalSemaphores:    signals,
	}}, d.fence(fence)))
}
