// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import "time"

// Format is a pixel format. Values match the Vulkan enumeration.
type Format int32

// Formats used by the renderer.
const (
	FormatUndefined       Format = 0
	FormatR8G8B8A8Unorm   Format = 37
	FormatB8G8R8A8Unorm   Format = 44
	FormatB8G8R8A8Srgb    Format = 50
	FormatD16Unorm        Format = 124
	FormatD32Sfloat       Format = 126
	FormatD24UnormS8Uint  Format = 129
	FormatD32SfloatS8Uint Format = 130
)

// HasStencil reports whether a depth format carries a stencil component.
func (f Format) HasStencil() bool {
	return f == FormatD24UnormS8Uint || f == FormatD32SfloatS8Uint
}

// ColorSpace of a surface format.
type ColorSpace int32

// ColorSpaceSrgbNonlinear is the only colour space every surface supports.
const ColorSpaceSrgbNonlinear ColorSpace = 0

// SurfaceFormat pairs a format with a colour space.
type SurfaceFormat struct {
	Format     Format     `json:"format"`
	ColorSpace ColorSpace `json:"colorSpace"`
}

// PresentMode controls how images are queued to the display.
type PresentMode int32

// Present modes. Values match the Vulkan enumeration.
const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

var presentModeNames = map[PresentMode]string{
	PresentModeImmediate:   "immediate",
	PresentModeMailbox:     "mailbox",
	PresentModeFifo:        "fifo",
	PresentModeFifoRelaxed: "fifo_relaxed",
}

func (p PresentMode) String() string {
	if name, ok := presentModeNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePresentMode resolves a present mode by its name.
func ParsePresentMode(name string) (PresentMode, bool) {
	for mode, n := range presentModeNames {
		if n == name {
			return mode, true
		}
	}
	return 0, false
}

// CompositeAlpha flags of a surface.
type CompositeAlpha uint32

// Composite alpha bits.
const (
	CompositeAlphaOpaque         CompositeAlpha = 0x1
	CompositeAlphaPreMultiplied  CompositeAlpha = 0x2
	CompositeAlphaPostMultiplied CompositeAlpha = 0x4
	CompositeAlphaInherit        CompositeAlpha = 0x8
)

// SurfaceTransform flags of a surface.
type SurfaceTransform uint32

// SurfaceTransformIdentity leaves images untransformed.
const SurfaceTransformIdentity SurfaceTransform = 0x1

// SurfaceCapabilities describes the limits of a surface on an adapter.
type SurfaceCapabilities struct {
	MinImageCount           uint32           `json:"minImageCount"`
	MaxImageCount           uint32           `json:"maxImageCount"`
	CurrentExtent           Extent2D         `json:"currentExtent"`
	MinImageExtent          Extent2D         `json:"minImageExtent"`
	MaxImageExtent          Extent2D         `json:"maxImageExtent"`
	SupportedTransforms     SurfaceTransform `json:"supportedTransforms"`
	CurrentTransform        SurfaceTransform `json:"currentTransform"`
	SupportedCompositeAlpha CompositeAlpha   `json:"supportedCompositeAlpha"`
}

// SurfaceDetails is everything an adapter reports about a surface.
type SurfaceDetails struct {
	Capabilities SurfaceCapabilities `json:"capabilities"`
	Formats      []SurfaceFormat     `json:"formats"`
	PresentModes []PresentMode       `json:"presentModes"`
}

// QueueFlags describe what a queue family can do.
type QueueFlags uint32

// Queue capability bits.
const (
	QueueGraphics QueueFlags = 0x1
	QueueCompute  QueueFlags = 0x2
	QueueTransfer QueueFlags = 0x4
)

// Has reports whether all bits of o are set.
func (q QueueFlags) Has(o QueueFlags) bool {
	return q&o == o
}

// QueueFamily describes one queue family of an adapter.
type QueueFamily struct {
	Index uint32     `json:"index"`
	Flags QueueFlags `json:"flags"`
	Count uint32     `json:"count"`
}

// AdapterType is the kind of physical device.
type AdapterType int32

// Adapter types. Values match the Vulkan enumeration.
const (
	AdapterOther AdapterType = iota
	AdapterIntegrated
	AdapterDiscrete
	AdapterVirtual
	AdapterCPU
)

func (a AdapterType) String() string {
	switch a {
	case AdapterIntegrated:
		return "integrated"
	case AdapterDiscrete:
		return "discrete"
	case AdapterVirtual:
		return "virtual"
	case AdapterCPU:
		return "cpu"
	}
	return "other"
}

// AdapterInfo describes a physical device.
type AdapterInfo struct {
	Name              string      `json:"name"`
	Type              AdapterType `json:"type"`
	APIVersion        uint32      `json:"apiVersion"`
	DriverVersion     uint32      `json:"driverVersion"`
	VendorID          uint32      `json:"vendorId"`
	DeviceID          uint32      `json:"deviceId"`
	PipelineCacheUUID [16]byte    `json:"pipelineCacheUuid"`
}

// ApplicationInfo names the application to the driver.
type ApplicationInfo struct {
	Name       string
	EngineName string
	Version    uint32
}

// InstanceInfo configures instance creation.
type InstanceInfo struct {
	Application ApplicationInfo
	Extensions  []string
	Layers      []string
}

// QueueRequest asks for queues of one family.
type QueueRequest struct {
	Family uint32
	Count  uint32
}

// DeviceInfo configures logical device creation.
type DeviceInfo struct {
	Queues     []QueueRequest
	Extensions []string
}

// SwapchainInfo configures swapchain creation.
type SwapchainInfo struct {
	Surface        Surface
	MinImageCount  uint32
	Format         SurfaceFormat
	Extent         Extent2D
	PresentMode    PresentMode
	PreTransform   SurfaceTransform
	CompositeAlpha CompositeAlpha
	QueueFamilies  []uint32
	OldSwapchain   Swapchain
}

// ImageUsage flags.
type ImageUsage uint32

// Image usage bits.
const (
	ImageUsageSampled                ImageUsage = 0x4
	ImageUsageColorAttachment        ImageUsage = 0x10
	ImageUsageDepthStencilAttachment ImageUsage = 0x20
)

// ImageInfo configures a device local 2D image.
type ImageInfo struct {
	Format Format
	Extent Extent2D
	Usage  ImageUsage
}

// ImageAspect selects the parts of an image a view covers.
type ImageAspect uint32

// Image aspect bits.
const (
	AspectColor   ImageAspect = 0x1
	AspectDepth   ImageAspect = 0x2
	AspectStencil ImageAspect = 0x4
)

// ImageViewInfo configures a 2D image view.
type ImageViewInfo struct {
	Image  Image
	Format Format
	Aspect ImageAspect
}

// LoadOp and StoreOp describe attachment load and store behaviour.
type (
	LoadOp  int32
	StoreOp int32
)

// Attachment operations. Values match the Vulkan enumeration.
const (
	LoadOpLoad      LoadOp  = 0
	LoadOpClear     LoadOp  = 1
	LoadOpDontCare  LoadOp  = 2
	StoreOpStore    StoreOp = 0
	StoreOpDontCare StoreOp = 1
)

// ImageLayout of an attachment. Values match the Vulkan enumeration.
type ImageLayout int32

// Image layouts.
const (
	LayoutUndefined                     ImageLayout = 0
	LayoutColorAttachmentOptimal        ImageLayout = 2
	LayoutDepthStencilAttachmentOptimal ImageLayout = 3
	LayoutPresentSrc                    ImageLayout = 1000001002
)

// PipelineStage flags.
type PipelineStage uint32

// Pipeline stage bits.
const (
	StageTopOfPipe             PipelineStage = 0x1
	StageEarlyFragmentTests    PipelineStage = 0x100
	StageColorAttachmentOutput PipelineStage = 0x400
)

// Access flags.
type Access uint32

// Access bits.
const (
	AccessColorAttachmentRead         Access = 0x80
	AccessColorAttachmentWrite        Access = 0x100
	AccessDepthStencilAttachmentWrite Access = 0x400
)

// SubpassExternal refers to operations outside the render pass.
const SubpassExternal = ^uint32(0)

// Attachment describes one render pass attachment.
type Attachment struct {
	Format         Format
	LoadOp         LoadOp
	StoreOp        StoreOp
	StencilLoadOp  LoadOp
	StencilStoreOp StoreOp
	InitialLayout  ImageLayout
	FinalLayout    ImageLayout
}

// AttachmentRef references an attachment from a subpass.
type AttachmentRef struct {
	Attachment uint32
	Layout     ImageLayout
}

// Subpass is a graphics subpass.
type Subpass struct {
	Color []AttachmentRef
	Depth *AttachmentRef
}

// SubpassDependency orders work between subpasses.
type SubpassDependency struct {
	SrcSubpass, DstSubpass uint32
	SrcStage, DstStage     PipelineStage
	SrcAccess, DstAccess   Access
}

// RenderPassInfo configures a render pass.
type RenderPassInfo struct {
	Attachments  []Attachment
	Subpasses    []Subpass
	Dependencies []SubpassDependency
}

// FramebufferInfo configures a framebuffer.
type FramebufferInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Extent      Extent2D
}

// ClearValue clears a single attachment. Depth and Stencil are used
// for depth attachments, Color for the rest.
type ClearValue struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

// RenderPassBeginInfo starts a render pass instance.
type RenderPassBeginInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	Area        Rect2D
	ClearValues []ClearValue
}

// CommandBufferUsage flags.
type CommandBufferUsage uint32

// Command buffer usage bits.
const (
	UsageOneTimeSubmit   CommandBufferUsage = 0x1
	UsageSimultaneousUse CommandBufferUsage = 0x4
)

// SubmitInfo is one batch of work for a queue.
type SubmitInfo struct {
	WaitSemaphores   []Semaphore
	WaitStages       []PipelineStage
	CommandBuffers   []CommandBuffer
	SignalSemaphores []Semaphore
}

// BufferUsage flags.
type BufferUsage uint32

// Buffer usage bits.
const (
	BufferUsageUniform BufferUsage = 0x10
	BufferUsageVertex  BufferUsage = 0x80
)

// BufferInfo configures a host visible buffer.
type BufferInfo struct {
	Size  uint64
	Usage BufferUsage
}

// DescriptorType of a binding. Values match the Vulkan enumeration.
type DescriptorType int32

// DescriptorUniformBuffer is a uniform buffer binding.
const DescriptorUniformBuffer DescriptorType = 6

// ShaderStage flags.
type ShaderStage uint32

// Shader stage bits.
const (
	ShaderStageVertex   ShaderStage = 0x1
	ShaderStageFragment ShaderStage = 0x10
)

// DescriptorBinding is one binding of a set layout.
type DescriptorBinding struct {
	Binding uint32
	Type    DescriptorType
	Count   uint32
	Stages  ShaderStage
}

// DescriptorPoolSize reserves descriptors of one type.
type DescriptorPoolSize struct {
	Type  DescriptorType
	Count uint32
}

// DescriptorBufferWrite points a binding at a buffer range.
type DescriptorBufferWrite struct {
	Set     DescriptorSet
	Binding uint32
	Type    DescriptorType
	Buffer  Buffer
	Offset  uint64
	Range   uint64
}

// ShaderStageInfo is one programmable stage of a pipeline.
type ShaderStageInfo struct {
	Stage  ShaderStage
	Module ShaderModule
	Entry  string
}

// CullMode flags.
type CullMode uint32

// Cull modes.
const (
	CullNone CullMode = 0
	CullBack CullMode = 0x2
)

// PipelineInfo configures a graphics pipeline with dynamic
// viewport and scissor.
type PipelineInfo struct {
	Stages     []ShaderStageInfo
	Layout     PipelineLayout
	RenderPass RenderPass
	Subpass    uint32
	Cache      PipelineCache
	CullMode   CullMode
	DepthTest  bool
}

// NoTimeout makes blocking calls wait indefinitely.
const NoTimeout time.Duration = 0
