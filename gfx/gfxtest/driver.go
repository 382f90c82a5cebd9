// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfxtest provides a resource tracking gfx.Driver for tests.
package gfxtest

import (
	"fmt"
	"sort"
	"time"
	"unsafe"

	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
)

var _ gfx.Driver = (*Driver)(nil)

// AdapterSpec describes a fake physical device.
type AdapterSpec struct {
	Info            gfx.AdapterInfo
	Families        []gfx.QueueFamily
	PresentFamilies []uint32
	Extensions      []string
	Surface         gfx.SurfaceDetails
	DepthFormats    []gfx.Format
}

// DefaultAdapter returns a discrete adapter with one queue family that does
// everything, a 1920x1080 surface and the swapchain extension.
func DefaultAdapter() AdapterSpec {
	return AdapterSpec{
		Info: gfx.AdapterInfo{
			Name:     "Fake GPU",
			Type:     gfx.AdapterDiscrete,
			VendorID: 0x10de,
			DeviceID: 0x1c82,
		},
		Families: []gfx.QueueFamily{
			{Index: 0, Flags: gfx.QueueGraphics | gfx.QueueCompute | gfx.QueueTransfer, Count: 16},
		},
		PresentFamilies: []uint32{0},
		Extensions:      []string{"VK_KHR_swapchain"},
		Surface: gfx.SurfaceDetails{
			Capabilities: gfx.SurfaceCapabilities{
				MinImageCount:           2,
				MaxImageCount:           8,
				CurrentExtent:           gfx.Extent2D{Width: 1920, Height: 1080},
				MinImageExtent:          gfx.Extent2D{Width: 1, Height: 1},
				MaxImageExtent:          gfx.Extent2D{Width: 4096, Height: 4096},
				SupportedTransforms:     gfx.SurfaceTransformIdentity,
				CurrentTransform:        gfx.SurfaceTransformIdentity,
				SupportedCompositeAlpha: gfx.CompositeAlphaOpaque,
			},
			Formats:      []gfx.SurfaceFormat{gfx.PreferredSurfaceFormat},
			PresentModes: []gfx.PresentMode{gfx.PresentModeFifo, gfx.PresentModeMailbox},
		},
		DepthFormats: []gfx.Format{gfx.FormatD32Sfloat, gfx.FormatD16Unorm},
	}
}

// Driver implements gfx.Driver without touching a GPU. Every object it hands
// out is tracked until destroyed, so tests can assert that nothing leaked.
type Driver struct {
	Specs  []AdapterSpec
	Layers []string
	Exts   []string

	// AcquireResults and PresentResults are consumed one per call.
	// A nil entry, or an empty queue, means success.
	AcquireResults []error
	PresentResults []error

	next    uint64
	live    map[uint64]string
	created map[string]int
	calls   []string
	faults  []string
	fail    map[string]error

	adapters   map[gfx.Adapter]*AdapterSpec
	images     map[gfx.Swapchain][]gfx.Image
	acquired   map[gfx.Swapchain]uint32
	extents    map[gfx.Swapchain]gfx.Extent2D
	poolOf     map[gfx.CommandBuffer]gfx.CommandPool
	recordings map[gfx.CommandBuffer]*Recording
	fences     map[gfx.Fence]bool
	buffers    map[gfx.Buffer][]byte
	caches     map[gfx.PipelineCache][]byte
	submits    []gfx.SubmitInfo
	debugFn    gfx.DebugFunc
}

// Recording is what was recorded into a command buffer.
type Recording struct {
	Usage    gfx.CommandBufferUsage
	Commands []string
	Ended    bool
	Clear    []gfx.ClearValue
}

// NewDriver returns a driver exposing the given adapters. With no
// arguments a single DefaultAdapter is exposed.
func NewDriver(adapters ...AdapterSpec) *Driver {
	if len(adapters) == 0 {
		adapters = []AdapterSpec{DefaultAdapter()}
	}
	return &Driver{
		Specs:  adapters,
		Exts:   []string{"VK_KHR_surface", "VK_KHR_xlib_surface", "VK_EXT_debug_report"},
		Layers: []string{"VK_LAYER_KHRONOS_validation"},
	}
}

func (d *Driver) init() {
	if d.live != nil {
		return
	}
	d.live = make(map[uint64]string)
	d.created = make(map[string]int)
	d.fail = make(map[string]error)
	d.adapters = make(map[gfx.Adapter]*AdapterSpec)
	d.images = make(map[gfx.Swapchain][]gfx.Image)
	d.acquired = make(map[gfx.Swapchain]uint32)
	d.extents = make(map[gfx.Swapchain]gfx.Extent2D)
	d.poolOf = make(map[gfx.CommandBuffer]gfx.CommandPool)
	d.recordings = make(map[gfx.CommandBuffer]*Recording)
	d.fences = make(map[gfx.Fence]bool)
	d.buffers = make(map[gfx.Buffer][]byte)
	d.caches = make(map[gfx.PipelineCache][]byte)
}

// FailOn makes every later call of method return err. A nil err clears it.
func (d *Driver) FailOn(method string, err error) {
	d.init()
	if err == nil {
		delete(d.fail, method)
		return
	}
	d.fail[method] = err
}

func (d *Driver) call(method string) error {
	d.init()
	d.calls = append(d.calls, method)
	if err, ok := d.fail[method]; ok {
		return err
	}
	return nil
}

func (d *Driver) alloc(kind string) uint64 {
	d.next++
	d.live[d.next] = kind
	d.created[kind]++
	return d.next
}

func (d *Driver) release(kind string, h uint64) {
	if h == 0 {
		return
	}
	if got, ok := d.live[h]; !ok || got != kind {
		d.faults = append(d.faults, fmt.Sprintf("release of unknown %s %d", kind, h))
		return
	}
	delete(d.live, h)
}

func (d *Driver) check(kind string, h uint64) {
	if got, ok := d.live[h]; !ok || got != kind {
		d.faults = append(d.faults, fmt.Sprintf("use of unknown %s %d", kind, h))
	}
}

// Live returns the number of objects created and not yet destroyed.
func (d *Driver) Live() int {
	d.init()
	return len(d.live)
}

// LiveOf returns the number of live objects of the given kind.
func (d *Driver) LiveOf(kind string) int {
	d.init()
	n := 0
	for _, k := range d.live {
		if k == kind {
			n++
		}
	}
	return n
}

// LiveKinds lists the kinds of all live objects, sorted.
func (d *Driver) LiveKinds() []string {
	d.init()
	kinds := make([]string, 0, len(d.live))
	for _, k := range d.live {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Created returns how many objects of kind were ever created.
func (d *Driver) Created(kind string) int {
	d.init()
	return d.created[kind]
}

// Calls returns the method names called so far, in order.
func (d *Driver) Calls() []string {
	return d.calls
}

// Count returns how many times method was called.
func (d *Driver) Count(method string) int {
	n := 0
	for _, c := range d.calls {
		if c == method {
			n++
		}
	}
	return n
}

// Faults lists misuse detected so far, such as double frees.
func (d *Driver) Faults() []string {
	return d.faults
}

// Recording returns what was recorded into cb.
func (d *Driver) Recording(cb gfx.CommandBuffer) *Recording {
	d.init()
	return d.recordings[cb]
}

// Submits returns every queue submission made.
func (d *Driver) Submits() []gfx.SubmitInfo {
	return d.submits
}

// BufferData returns the current contents of a buffer.
func (d *Driver) BufferData(b gfx.Buffer) []byte {
	d.init()
	return d.buffers[b]
}

// Debug delivers a validation message to the registered callback.
func (d *Driver) Debug(severity gfx.DebugSeverity, message string) {
	if d.debugFn != nil {
		d.debugFn(severity, "fake", 0, message)
	}
}

// Init implements gfx.Driver.
func (d *Driver) Init(procAddr unsafe.Pointer) error {
	return d.call("Init")
}

// InstanceLayers implements gfx.Driver.
func (d *Driver) InstanceLayers() ([]string, error) {
	if err := d.call("InstanceLayers"); err != nil {
		return nil, err
	}
	return d.Layers, nil
}

// InstanceExtensions implements gfx.Driver.
func (d *Driver) InstanceExtensions() ([]string, error) {
	if err := d.call("InstanceExtensions"); err != nil {
		return nil, err
	}
	return d.Exts, nil
}

// CreateInstance implements gfx.Driver.
func (d *Driver) CreateInstance(info gfx.InstanceInfo) (gfx.Instance, error) {
	if err := d.call("CreateInstance"); err != nil {
		return 0, err
	}
	return gfx.Instance(d.alloc("instance")), nil
}

// DestroyInstance implements gfx.Driver.
func (d *Driver) DestroyInstance(instance gfx.Instance) {
	d.call("DestroyInstance")
	d.release("instance", uint64(instance))
}

// NativeInstance implements gfx.Driver.
func (d *Driver) NativeInstance(instance gfx.Instance) interface{} {
	return instance
}

// ImportSurface implements gfx.Driver.
func (d *Driver) ImportSurface(instance gfx.Instance, native uintptr) (gfx.Surface, error) {
	if err := d.call("ImportSurface"); err != nil {
		return 0, err
	}
	d.check("instance", uint64(instance))
	return gfx.Surface(d.alloc("surface")), nil
}

// DestroySurface implements gfx.Driver.
func (d *Driver) DestroySurface(instance gfx.Instance, surface gfx.Surface) {
	d.call("DestroySurface")
	d.release("surface", uint64(surface))
}

// CreateDebugCallback implements gfx.Driver.
func (d *Driver) CreateDebugCallback(instance gfx.Instance, fn gfx.DebugFunc) (gfx.DebugCallback, error) {
	if err := d.call("CreateDebugCallback"); err != nil {
		return 0, err
	}
	d.debugFn = fn
	return gfx.DebugCallback(d.alloc("debug callback")), nil
}

// DestroyDebugCallback implements gfx.Driver.
func (d *Driver) DestroyDebugCallback(instance gfx.Instance, cb gfx.DebugCallback) {
	d.call("DestroyDebugCallback")
	d.debugFn = nil
	d.release("debug callback", uint64(cb))
}

// Adapters implements gfx.Driver.
func (d *Driver) Adapters(instance gfx.Instance) ([]gfx.Adapter, error) {
	if err := d.call("Adapters"); err != nil {
		return nil, err
	}
	d.check("instance", uint64(instance))
	res := make([]gfx.Adapter, 0, len(d.Specs))
	for i := range d.Specs {
		d.next++
		a := gfx.Adapter(d.next)
		d.adapters[a] = &d.Specs[i]
		res = append(res, a)
	}
	return res, nil
}

func (d *Driver) adapter(a gfx.Adapter) *AdapterSpec {
	d.init()
	if spec, ok := d.adapters[a]; ok {
		return spec
	}
	d.faults = append(d.faults, fmt.Sprintf("use of unknown adapter %d", a))
	return &AdapterSpec{}
}

// AdapterInfo implements gfx.Driver.
func (d *Driver) AdapterInfo(adapter gfx.Adapter) gfx.AdapterInfo {
	return d.adapter(adapter).Info
}

// AdapterExtensions implements gfx.Driver.
func (d *Driver) AdapterExtensions(adapter gfx.Adapter) ([]string, error) {
	if err := d.call("AdapterExtensions"); err != nil {
		return nil, err
	}
	return d.adapter(adapter).Extensions, nil
}

// QueueFamilies implements gfx.Driver.
func (d *Driver) QueueFamilies(adapter gfx.Adapter) []gfx.QueueFamily {
	return d.adapter(adapter).Families
}

// SurfaceSupport implements gfx.Driver.
func (d *Driver) SurfaceSupport(adapter gfx.Adapter, family uint32, surface gfx.Surface) (bool, error) {
	if err := d.call("SurfaceSupport"); err != nil {
		return false, err
	}
	for _, f := range d.adapter(adapter).PresentFamilies {
		if f == family {
			return true, nil
		}
	}
	return false, nil
}

// SurfaceDetails implements gfx.Driver.
func (d *Driver) SurfaceDetails(adapter gfx.Adapter, surface gfx.Surface) (gfx.SurfaceDetails, error) {
	if err := d.call("SurfaceDetails"); err != nil {
		return gfx.SurfaceDetails{}, err
	}
	d.check("surface", uint64(surface))
	return d.adapter(adapter).Surface, nil
}

// SupportsDepthAttachment implements gfx.Driver.
func (d *Driver) SupportsDepthAttachment(adapter gfx.Adapter, format gfx.Format) bool {
	for _, f := range d.adapter(adapter).DepthFormats {
		if f == format {
			return true
		}
	}
	return false
}

// CreateDevice implements gfx.Driver.
func (d *Driver) CreateDevice(adapter gfx.Adapter, info gfx.DeviceInfo) (gfx.Device, error) {
	if err := d.call("CreateDevice"); err != nil {
		return 0, err
	}
	d.adapter(adapter)
	return gfx.Device(d.alloc("device")), nil
}

// DestroyDevice implements gfx.Driver.
func (d *Driver) DestroyDevice(device gfx.Device) {
	d.call("DestroyDevice")
	d.release("device", uint64(device))
}

// GetQueue implements gfx.Driver.
func (d *Driver) GetQueue(device gfx.Device, family, index uint32) gfx.Queue {
	d.call("GetQueue")
	return gfx.Queue(0x1000 + uint64(family)<<8 + uint64(index))
}

// DeviceWaitIdle implements gfx.Driver.
func (d *Driver) DeviceWaitIdle(device gfx.Device) error {
	if err := d.call("DeviceWaitIdle"); err != nil {
		return err
	}
	d.check("device", uint64(device))
	return nil
}

// CreateCommandPool implements gfx.Driver.
func (d *Driver) CreateCommandPool(device gfx.Device, family uint32) (gfx.CommandPool, error) {
	if err := d.call("CreateCommandPool"); err != nil {
		return 0, err
	}
	return gfx.CommandPool(d.alloc("command pool")), nil
}

// DestroyCommandPool implements gfx.Driver. Buffers still allocated from
// the pool are freed with it.
func (d *Driver) DestroyCommandPool(device gfx.Device, pool gfx.CommandPool) {
	d.call("DestroyCommandPool")
	for cb, p := range d.poolOf {
		if p == pool {
			d.release("command buffer", uint64(cb))
			delete(d.poolOf, cb)
		}
	}
	d.release("command pool", uint64(pool))
}

// AllocateCommandBuffers implements gfx.Driver.
func (d *Driver) AllocateCommandBuffers(device gfx.Device, pool gfx.CommandPool, count int) ([]gfx.CommandBuffer, error) {
	if err := d.call("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	d.check("command pool", uint64(pool))
	res := make([]gfx.CommandBuffer, count)
	for i := range res {
		res[i] = gfx.CommandBuffer(d.alloc("command buffer"))
		d.poolOf[res[i]] = pool
	}
	return res, nil
}

// FreeCommandBuffers implements gfx.Driver.
func (d *Driver) FreeCommandBuffers(device gfx.Device, pool gfx.CommandPool, buffers []gfx.CommandBuffer) {
	d.call("FreeCommandBuffers")
	for _, cb := range buffers {
		if d.poolOf[cb] != pool {
			d.faults = append(d.faults, fmt.Sprintf("command buffer %d freed to the wrong pool", cb))
		}
		delete(d.poolOf, cb)
		delete(d.recordings, cb)
		d.release("command buffer", uint64(cb))
	}
}

// CreateSwapchain implements gfx.Driver.
func (d *Driver) CreateSwapchain(device gfx.Device, info gfx.SwapchainInfo) (gfx.Swapchain, error) {
	if err := d.call("CreateSwapchain"); err != nil {
		return 0, err
	}
	d.check("surface", uint64(info.Surface))
	if info.OldSwapchain != 0 {
		d.check("swapchain", uint64(info.OldSwapchain))
	}
	sc := gfx.Swapchain(d.alloc("swapchain"))
	images := make([]gfx.Image, info.MinImageCount)
	for i := range images {
		d.next++
		images[i] = gfx.Image(d.next)
	}
	d.images[sc] = images
	d.extents[sc] = info.Extent
	return sc, nil
}

// DestroySwapchain implements gfx.Driver.
func (d *Driver) DestroySwapchain(device gfx.Device, swapchain gfx.Swapchain) {
	d.call("DestroySwapchain")
	delete(d.images, swapchain)
	delete(d.extents, swapchain)
	d.release("swapchain", uint64(swapchain))
}

// SwapchainExtent returns the extent a swapchain was created with.
func (d *Driver) SwapchainExtent(swapchain gfx.Swapchain) gfx.Extent2D {
	d.init()
	return d.extents[swapchain]
}

// SwapchainImages implements gfx.Driver.
func (d *Driver) SwapchainImages(device gfx.Device, swapchain gfx.Swapchain) ([]gfx.Image, error) {
	if err := d.call("SwapchainImages"); err != nil {
		return nil, err
	}
	return d.images[swapchain], nil
}

// AcquireNextImage implements gfx.Driver. Images are handed out round robin.
func (d *Driver) AcquireNextImage(device gfx.Device, swapchain gfx.Swapchain, timeout time.Duration, signal gfx.Semaphore) (uint32, error) {
	if err := d.call("AcquireNextImage"); err != nil {
		return 0, err
	}
	d.check("swapchain", uint64(swapchain))
	d.check("semaphore", uint64(signal))
	if len(d.AcquireResults) > 0 {
		err := d.AcquireResults[0]
		d.AcquireResults = d.AcquireResults[1:]
		if err != nil {
			return 0, err
		}
	}
	n := uint32(len(d.images[swapchain]))
	if n == 0 {
		return 0, errors.New("swapchain has no images")
	}
	idx := d.acquired[swapchain] % n
	d.acquired[swapchain]++
	return idx, nil
}

// CreateImage implements gfx.Driver.
func (d *Driver) CreateImage(device gfx.Device, info gfx.ImageInfo) (gfx.Image, error) {
	if err := d.call("CreateImage"); err != nil {
		return 0, err
	}
	return gfx.Image(d.alloc("image")), nil
}

// DestroyImage implements gfx.Driver.
func (d *Driver) DestroyImage(device gfx.Device, image gfx.Image) {
	d.call("DestroyImage")
	d.release("image", uint64(image))
}

// CreateImageView implements gfx.Driver.
func (d *Driver) CreateImageView(device gfx.Device, info gfx.ImageViewInfo) (gfx.ImageView, error) {
	if err := d.call("CreateImageView"); err != nil {
		return 0, err
	}
	return gfx.ImageView(d.alloc("image view")), nil
}

// DestroyImageView implements gfx.Driver.
func (d *Driver) DestroyImageView(device gfx.Device, view gfx.ImageView) {
	d.call("DestroyImageView")
	d.release("image view", uint64(view))
}

// CreateRenderPass implements gfx.Driver.
func (d *Driver) CreateRenderPass(device gfx.Device, info gfx.RenderPassInfo) (gfx.RenderPass, error) {
	if err := d.call("CreateRenderPass"); err != nil {
		return 0, err
	}
	return gfx.RenderPass(d.alloc("render pass")), nil
}

// DestroyRenderPass implements gfx.Driver.
func (d *Driver) DestroyRenderPass(device gfx.Device, pass gfx.RenderPass) {
	d.call("DestroyRenderPass")
	d.release("render pass", uint64(pass))
}

// CreateFramebuffer implements gfx.Driver.
func (d *Driver) CreateFramebuffer(device gfx.Device, info gfx.FramebufferInfo) (gfx.Framebuffer, error) {
	if err := d.call("CreateFramebuffer"); err != nil {
		return 0, err
	}
	d.check("render pass", uint64(info.RenderPass))
	for _, v := range info.Attachments {
		d.check("image view", uint64(v))
	}
	return gfx.Framebuffer(d.alloc("framebuffer")), nil
}

// DestroyFramebuffer implements gfx.Driver.
func (d *Driver) DestroyFramebuffer(device gfx.Device, fb gfx.Framebuffer) {
	d.call("DestroyFramebuffer")
	d.release("framebuffer", uint64(fb))
}

// CreateSemaphore implements gfx.Driver.
func (d *Driver) CreateSemaphore(device gfx.Device) (gfx.Semaphore, error) {
	if err := d.call("CreateSemaphore"); err != nil {
		return 0, err
	}
	return gfx.Semaphore(d.alloc("semaphore")), nil
}

// DestroySemaphore implements gfx.Driver.
func (d *Driver) DestroySemaphore(device gfx.Device, semaphore gfx.Semaphore) {
	d.call("DestroySemaphore")
	d.release("semaphore", uint64(semaphore))
}

// CreateFence implements gfx.Driver.
func (d *Driver) CreateFence(device gfx.Device, signaled bool) (gfx.Fence, error) {
	if err := d.call("CreateFence"); err != nil {
		return 0, err
	}
	f := gfx.Fence(d.alloc("fence"))
	d.fences[f] = signaled
	return f, nil
}

// DestroyFence implements gfx.Driver.
func (d *Driver) DestroyFence(device gfx.Device, fence gfx.Fence) {
	d.call("DestroyFence")
	delete(d.fences, fence)
	d.release("fence", uint64(fence))
}

// WaitForFence implements gfx.Driver. An unsignaled fence that nothing
// will signal times out immediately.
func (d *Driver) WaitForFence(device gfx.Device, fence gfx.Fence, timeout time.Duration) error {
	if err := d.call("WaitForFence"); err != nil {
		return err
	}
	d.check("fence", uint64(fence))
	if !d.fences[fence] {
		return errors.Wrap(gfx.ErrTimeout, "gfxtest.WaitForFence()")
	}
	return nil
}

// ResetFence implements gfx.Driver.
func (d *Driver) ResetFence(device gfx.Device, fence gfx.Fence) error {
	if err := d.call("ResetFence"); err != nil {
		return err
	}
	d.check("fence", uint64(fence))
	d.fences[fence] = false
	return nil
}

// FenceSignaled reports the current state of a fence.
func (d *Driver) FenceSignaled(fence gfx.Fence) bool {
	d.init()
	return d.fences[fence]
}

// CreateBuffer implements gfx.Driver.
func (d *Driver) CreateBuffer(device gfx.Device, info gfx.BufferInfo) (gfx.Buffer, error) {
	if err := d.call("CreateBuffer"); err != nil {
		return 0, err
	}
	b := gfx.Buffer(d.alloc("buffer"))
	d.buffers[b] = make([]byte, info.Size)
	return b, nil
}

// DestroyBuffer implements gfx.Driver.
func (d *Driver) DestroyBuffer(device gfx.Device, buffer gfx.Buffer) {
	d.call("DestroyBuffer")
	delete(d.buffers, buffer)
	d.release("buffer", uint64(buffer))
}

// WriteBuffer implements gfx.Driver.
func (d *Driver) WriteBuffer(device gfx.Device, buffer gfx.Buffer, offset uint64, data []byte) error {
	if err := d.call("WriteBuffer"); err != nil {
		return err
	}
	mem, ok := d.buffers[buffer]
	if !ok {
		return errors.Errorf("gfxtest.WriteBuffer(): unknown buffer %d", buffer)
	}
	if offset+uint64(len(data)) > uint64(len(mem)) {
		return errors.Errorf("gfxtest.WriteBuffer(): %d bytes at %d overflow buffer of %d", len(data), offset, len(mem))
	}
	copy(mem[offset:], data)
	return nil
}

// CreateDescriptorSetLayout implements gfx.Driver.
func (d *Driver) CreateDescriptorSetLayout(device gfx.Device, bindings []gfx.DescriptorBinding) (gfx.DescriptorSetLayout, error) {
	if err := d.call("CreateDescriptorSetLayout"); err != nil {
		return 0, err
	}
	return gfx.DescriptorSetLayout(d.alloc("descriptor set layout")), nil
}

// DestroyDescriptorSetLayout implements gfx.Driver.
func (d *Driver) DestroyDescriptorSetLayout(device gfx.Device, layout gfx.DescriptorSetLayout) {
	d.call("DestroyDescriptorSetLayout")
	d.release("descriptor set layout", uint64(layout))
}

// CreateDescriptorPool implements gfx.Driver.
func (d *Driver) CreateDescriptorPool(device gfx.Device, maxSets uint32, sizes []gfx.DescriptorPoolSize) (gfx.DescriptorPool, error) {
	if err := d.call("CreateDescriptorPool"); err != nil {
		return 0, err
	}
	return gfx.DescriptorPool(d.alloc("descriptor pool")), nil
}

// DestroyDescriptorPool implements gfx.Driver.
func (d *Driver) DestroyDescriptorPool(device gfx.Device, pool gfx.DescriptorPool) {
	d.call("DestroyDescriptorPool")
	d.release("descriptor pool", uint64(pool))
}

// ResetDescriptorPool implements gfx.Driver.
func (d *Driver) ResetDescriptorPool(device gfx.Device, pool gfx.DescriptorPool) error {
	if err := d.call("ResetDescriptorPool"); err != nil {
		return err
	}
	d.check("descriptor pool", uint64(pool))
	return nil
}

// AllocateDescriptorSets implements gfx.Driver. Sets belong to their pool
// and are not tracked individually.
func (d *Driver) AllocateDescriptorSets(device gfx.Device, pool gfx.DescriptorPool, layouts []gfx.DescriptorSetLayout) ([]gfx.DescriptorSet, error) {
	if err := d.call("AllocateDescriptorSets"); err != nil {
		return nil, err
	}
	d.check("descriptor pool", uint64(pool))
	res := make([]gfx.DescriptorSet, len(layouts))
	for i := range res {
		d.next++
		res[i] = gfx.DescriptorSet(d.next)
	}
	return res, nil
}

// UpdateDescriptorSets implements gfx.Driver.
func (d *Driver) UpdateDescriptorSets(device gfx.Device, writes []gfx.DescriptorBufferWrite) {
	d.call("UpdateDescriptorSets")
	for _, w := range writes {
		d.check("buffer", uint64(w.Buffer))
	}
}

// CreateShaderModule implements gfx.Driver.
func (d *Driver) CreateShaderModule(device gfx.Device, code []byte) (gfx.ShaderModule, error) {
	if err := d.call("CreateShaderModule"); err != nil {
		return 0, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return 0, errors.Errorf("gfxtest.CreateShaderModule(): invalid code size %d", len(code))
	}
	return gfx.ShaderModule(d.alloc("shader module")), nil
}

// DestroyShaderModule implements gfx.Driver.
func (d *Driver) DestroyShaderModule(device gfx.Device, module gfx.ShaderModule) {
	d.call("DestroyShaderModule")
	d.release("shader module", uint64(module))
}

// CreatePipelineLayout implements gfx.Driver.
func (d *Driver) CreatePipelineLayout(device gfx.Device, layouts []gfx.DescriptorSetLayout) (gfx.PipelineLayout, error) {
	if err := d.call("CreatePipelineLayout"); err != nil {
		return 0, err
	}
	return gfx.PipelineLayout(d.alloc("pipeline layout")), nil
}

// DestroyPipelineLayout implements gfx.Driver.
func (d *Driver) DestroyPipelineLayout(device gfx.Device, layout gfx.PipelineLayout) {
	d.call("DestroyPipelineLayout")
	d.release("pipeline layout", uint64(layout))
}

// CreatePipelineCache implements gfx.Driver.
func (d *Driver) CreatePipelineCache(device gfx.Device, initial []byte) (gfx.PipelineCache, error) {
	if err := d.call("CreatePipelineCache"); err != nil {
		return 0, err
	}
	c := gfx.PipelineCache(d.alloc("pipeline cache"))
	d.caches[c] = append([]byte("cache:"), initial...)
	return c, nil
}

// PipelineCacheData implements gfx.Driver.
func (d *Driver) PipelineCacheData(device gfx.Device, cache gfx.PipelineCache) ([]byte, error) {
	if err := d.call("PipelineCacheData"); err != nil {
		return nil, err
	}
	return d.caches[cache], nil
}

// DestroyPipelineCache implements gfx.Driver.
func (d *Driver) DestroyPipelineCache(device gfx.Device, cache gfx.PipelineCache) {
	d.call("DestroyPipelineCache")
	delete(d.caches, cache)
	d.release("pipeline cache", uint64(cache))
}

// CreateGraphicsPipeline implements gfx.Driver.
func (d *Driver) CreateGraphicsPipeline(device gfx.Device, info gfx.PipelineInfo) (gfx.Pipeline, error) {
	if err := d.call("CreateGraphicsPipeline"); err != nil {
		return 0, err
	}
	d.check("pipeline layout", uint64(info.Layout))
	d.check("render pass", uint64(info.RenderPass))
	for _, s := range info.Stages {
		d.check("shader module", uint64(s.Module))
	}
	return gfx.Pipeline(d.alloc("pipeline")), nil
}

// DestroyPipeline implements gfx.Driver.
func (d *Driver) DestroyPipeline(device gfx.Device, pipeline gfx.Pipeline) {
	d.call("DestroyPipeline")
	d.release("pipeline", uint64(pipeline))
}
