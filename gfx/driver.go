// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import (
	"time"
	"unsafe"
)

// DebugSeverity classifies a validation message.
type DebugSeverity int

// Validation message severities.
const (
	SeverityInformation DebugSeverity = iota
	SeverityWarning
	SeverityPerformanceWarning
	SeverityError
	SeverityDebug
)

// DebugFunc receives validation messages.
type DebugFunc func(severity DebugSeverity, layer string, code int32, message string)

// InstanceDriver manages the instance and everything bound to it.
type InstanceDriver interface {
	// Init loads the driver entry points. procAddr may be nil, in which
	// case the system loader is used.
	Init(procAddr unsafe.Pointer) error
	InstanceLayers() ([]string, error)
	InstanceExtensions() ([]string, error)
	CreateInstance(info InstanceInfo) (Instance, error)
	DestroyInstance(instance Instance)

	// NativeInstance returns the underlying API handle for windowing
	// libraries that create surfaces themselves.
	NativeInstance(instance Instance) interface{}
	ImportSurface(instance Instance, native uintptr) (Surface, error)
	DestroySurface(instance Instance, surface Surface)

	CreateDebugCallback(instance Instance, fn DebugFunc) (DebugCallback, error)
	DestroyDebugCallback(instance Instance, cb DebugCallback)
}

// AdapterDriver queries physical devices.
type AdapterDriver interface {
	Adapters(instance Instance) ([]Adapter, error)
	AdapterInfo(adapter Adapter) AdapterInfo
	AdapterExtensions(adapter Adapter) ([]string, error)
	QueueFamilies(adapter Adapter) []QueueFamily
	SurfaceSupport(adapter Adapter, family uint32, surface Surface) (bool, error)
	SurfaceDetails(adapter Adapter, surface Surface) (SurfaceDetails, error)
	SupportsDepthAttachment(adapter Adapter, format Format) bool
}

// DeviceDriver manages the logical device and its objects.
type DeviceDriver interface {
	CreateDevice(adapter Adapter, info DeviceInfo) (Device, error)
	DestroyDevice(device Device)
	GetQueue(device Device, family, index uint32) Queue
	DeviceWaitIdle(device Device) error

	CreateCommandPool(device Device, family uint32) (CommandPool, error)
	DestroyCommandPool(device Device, pool CommandPool)
	AllocateCommandBuffers(device Device, pool CommandPool, count int) ([]CommandBuffer, error)
	FreeCommandBuffers(device Device, pool CommandPool, buffers []CommandBuffer)

	CreateSwapchain(device Device, info SwapchainInfo) (Swapchain, error)
	DestroySwapchain(device Device, swapchain Swapchain)
	SwapchainImages(device Device, swapchain Swapchain) ([]Image, error)
	// AcquireNextImage returns ErrSurfaceOutOfDate or ErrTimeout causes
	// where applicable. A zero timeout waits indefinitely.
	AcquireNextImage(device Device, swapchain Swapchain, timeout time.Duration, signal Semaphore) (uint32, error)

	CreateImage(device Device, info ImageInfo) (Image, error)
	DestroyImage(device Device, image Image)
	CreateImageView(device Device, info ImageViewInfo) (ImageView, error)
	DestroyImageView(device Device, view ImageView)

	CreateRenderPass(device Device, info RenderPassInfo) (RenderPass, error)
	DestroyRenderPass(device Device, pass RenderPass)
	CreateFramebuffer(device Device, info FramebufferInfo) (Framebuffer, error)
	DestroyFramebuffer(device Device, fb Framebuffer)

	CreateSemaphore(device Device) (Semaphore, error)
	DestroySemaphore(device Device, semaphore Semaphore)
	CreateFence(device Device, signaled bool) (Fence, error)
	DestroyFence(device Device, fence Fence)
	WaitForFence(device Device, fence Fence, timeout time.Duration) error
	ResetFence(device Device, fence Fence) error

	CreateBuffer(device Device, info BufferInfo) (Buffer, error)
	DestroyBuffer(device Device, buffer Buffer)
	WriteBuffer(device Device, buffer Buffer, offset uint64, data []byte) error

	CreateDescriptorSetLayout(device Device, bindings []DescriptorBinding) (DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(device Device, layout DescriptorSetLayout)
	CreateDescriptorPool(device Device, maxSets uint32, sizes []DescriptorPoolSize) (DescriptorPool, error)
	DestroyDescriptorPool(device Device, pool DescriptorPool)
	ResetDescriptorPool(device Device, pool DescriptorPool) error
	AllocateDescriptorSets(device Device, pool DescriptorPool, layouts []DescriptorSetLayout) ([]DescriptorSet, error)
	UpdateDescriptorSets(device Device, writes []DescriptorBufferWrite)

	CreateShaderModule(device Device, code []byte) (ShaderModule, error)
	DestroyShaderModule(device Device, module ShaderModule)
	CreatePipelineLayout(device Device, layouts []DescriptorSetLayout) (PipelineLayout, error)
	DestroyPipelineLayout(device Device, layout PipelineLayout)
	CreatePipelineCache(device Device, initial []byte) (PipelineCache, error)
	PipelineCacheData(device Device, cache PipelineCache) ([]byte, error)
	DestroyPipelineCache(device Device, cache PipelineCache)
	CreateGraphicsPipeline(device Device, info PipelineInfo) (Pipeline, error)
	DestroyPipeline(device Device, pipeline Pipeline)
}

// CommandDriver records commands and submits work.
type CommandDriver interface {
	BeginCommandBuffer(cb CommandBuffer, usage CommandBufferUsage) error
	EndCommandBuffer(cb CommandBuffer) error

	CmdBeginRenderPass(cb CommandBuffer, info RenderPassBeginInfo)
	CmdEndRenderPass(cb CommandBuffer)
	CmdBindPipeline(cb CommandBuffer, pipeline Pipeline)
	CmdSetViewport(cb CommandBuffer, viewport Viewport)
	CmdSetScissor(cb CommandBuffer, scissor Rect2D)
	CmdBindDescriptorSets(cb CommandBuffer, layout PipelineLayout, sets []DescriptorSet)
	CmdDraw(cb CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32)

	QueueSubmit(queue Queue, submit SubmitInfo, fence Fence) error
	// QueuePresent returns an ErrSurfaceOutOfDate cause when the
	// surface changed underneath the swapchain.
	QueuePresent(queue Queue, swapchain Swapchain, index uint32, wait Semaphore) error
}

// Driver is the complete graphics API surface used by the renderer.
type Driver interface {
	InstanceDriver
	AdapterDriver
	DeviceDriver
	CommandDriver
}
