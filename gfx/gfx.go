// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines the graphics objects and the driver surface
// that renderers are built against.
package gfx

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// Handles identify driver objects. The zero value of every
// handle is the null object.
type (
	Instance            uint64
	Surface             uint64
	DebugCallback       uint64
	Adapter             uint64
	Device              uint64
	Queue               uint64
	CommandPool         uint64
	CommandBuffer       uint64
	Swapchain           uint64
	Image               uint64
	ImageView           uint64
	RenderPass          uint64
	Framebuffer         uint64
	Semaphore           uint64
	Fence               uint64
	Buffer              uint64
	ShaderModule        uint64
	DescriptorSetLayout uint64
	DescriptorPool      uint64
	DescriptorSet       uint64
	PipelineLayout      uint64
	PipelineCache       uint64
	Pipeline            uint64
)

// Extent2D is a size in pixels.
type Extent2D struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Empty reports whether either dimension is zero.
func (e Extent2D) Empty() bool {
	return e.Width == 0 || e.Height == 0
}

// Offset2D is a position in pixels.
type Offset2D struct {
	X, Y int32
}

// Rect2D is a region in pixels.
type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

// Viewport describes the viewport transform.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}
