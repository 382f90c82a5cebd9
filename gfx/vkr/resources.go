// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"unsafe"

	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// image is either device local with its own memory, or owned by a
// swapchain when memory is nil.
type image struct {
	handle vk.Image
	memory *Memory
}

type buffer struct {
	handle vk.Buffer
	memory Memory
	size   uint64
}

type descriptorSet struct {
	handle vk.DescriptorSet
	pool   uint64
}

// CreateImage creates an optimally tiled 2D image backed by device local memory.
func (d *Driver) CreateImage(dev gfx.Device, info gfx.ImageInfo) (gfx.Image, error) {
	dv := d.device(dev)

	var img vk.Image
	if err := check("vk.CreateImage()", vk.CreateImage(dv.handle, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.Format(info.Format),
		Extent: vk.Extent3D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(info.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img)); err != nil {
		return 0, err
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(dv.handle, img, &req)
	req.Deref()

	mem, err := dv.alloc.Malloc(req, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		vk.DestroyImage(dv.handle, img, nil)
		return 0, errors.Wrap(err, "image memory")
	}
	if err := check("vk.BindImageMemory()", vk.BindImageMemory(dv.handle, img, mem.Get(), 0)); err != nil {
		mem.Release()
		vk.DestroyImage(dv.handle, img, nil)
		return 0, err
	}

	return gfx.Image(d.reg.put(&image{handle: img, memory: &mem})), nil
}

// DestroyImage destroys an image created by CreateImage.
func (d *Driver) DestroyImage(dev gfx.Device, img gfx.Image) {
	obj, ok := d.reg.get(uint64(img)).(*image)
	if !ok || obj.memory == nil {
		return
	}
	d.reg.drop(uint64(img))
	vk.DestroyImage(d.device(dev).handle, obj.handle, nil)
	obj.memory.Release()
}

// CreateImageView creates a single level 2D view.
func (d *Driver) CreateImageView(dev gfx.Device, info gfx.ImageViewInfo) (gfx.ImageView, error) {
	img, ok := d.reg.get(uint64(info.Image)).(*image)
	if !ok {
		return 0, errors.Errorf("unknown image %d", info.Image)
	}

	var view vk.ImageView
	if err := check("vk.CreateImageView()", vk.CreateImageView(d.device(dev).handle, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img.handle,
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(info.Format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(info.Aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)); err != nil {
		return 0, err
	}
	return gfx.ImageView(d.reg.put(view)), nil
}

func (d *Driver) imageView(h gfx.ImageView) vk.ImageView {
	obj, _ := d.reg.get(uint64(h)).(vk.ImageView)
	return obj
}

// DestroyImageView destroys the view.
func (d *Driver) DestroyImageView(dev gfx.Device, view gfx.ImageView) {
	if obj, ok := d.reg.drop(uint64(view)).(vk.ImageView); ok {
		vk.DestroyImageView(d.device(dev).handle, obj, nil)
	}
}

// CreateRenderPass creates a graphics render pass.
func (d *Driver) CreateRenderPass(dev gfx.Device, info gfx.RenderPassInfo) (gfx.RenderPass, error) {
	attachments := make([]vk.AttachmentDescription, 0, len(info.Attachments))
	for _, a := range info.Attachments {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         vk.Format(a.Format),
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOp(a.LoadOp),
			StoreOp:        vk.AttachmentStoreOp(a.StoreOp),
			StencilLoadOp:  vk.AttachmentLoadOp(a.StencilLoadOp),
			StencilStoreOp: vk.AttachmentStoreOp(a.StencilStoreOp),
			InitialLayout:  vk.ImageLayout(a.InitialLayout),
			FinalLayout:    vk.ImageLayout(a.FinalLayout),
		})
	}

	subpasses := make([]vk.SubpassDescription, 0, len(info.Subpasses))
	for _, s := range info.Subpasses {
		desc := vk.SubpassDescription{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: uint32(len(s.Color)),
			PColorAttachments:    attachmentRefs(s.Color),
		}
		if s.Depth != nil {
			desc.PDepthStencilAttachment = &attachmentRefs([]gfx.AttachmentRef{*s.Depth})[0]
		}
		subpasses = append(subpasses, desc)
	}

	dependencies := make([]vk.SubpassDependency, 0, len(info.Dependencies))
	for _, dep := range info.Dependencies {
		dependencies = append(dependencies, vk.SubpassDependency{
			SrcSubpass:    dep.SrcSubpass,
			DstSubpass:    dep.DstSubpass,
			SrcStageMask:  vk.PipelineStageFlags(dep.SrcStage),
			DstStageMask:  vk.PipelineStageFlags(dep.DstStage),
			SrcAccessMask: vk.AccessFlags(dep.SrcAccess),
			DstAccessMask: vk.AccessFlags(dep.DstAccess),
		})
	}

	var pass vk.RenderPass
	if err := check("vk.CreateRenderPass()", vk.CreateRenderPass(d.device(dev).handle, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}, nil, &pass)); err != nil {
		return 0, err
	}
	return gfx.RenderPass(d.reg.put(pass)), nil
}

func attachmentRefs(refs []gfx.AttachmentRef) []vk.AttachmentReference {
	out := make([]vk.AttachmentReference, 0, len(refs))
	for _, r := range refs {
		out = append(out, vk.AttachmentReference{
			Attachment: r.Attachment,
			Layout:     vk.ImageLayout(r.Layout),
		})
	}
	return out
}

func (d *Driver) renderPass(h gfx.RenderPass) vk.RenderPass {
	obj, _ := d.reg.get(uint64(h)).(vk.RenderPass)
	return obj
}

// DestroyRenderPass destroys the render pass.
func (d *Driver) DestroyRenderPass(dev gfx.Device, pass gfx.RenderPass) {
	if obj, ok := d.reg.drop(uint64(pass)).(vk.RenderPass); ok {
		vk.DestroyRenderPass(d.device(dev).handle, obj, nil)
	}
}

// CreateFramebuffer creates a single layer framebuffer.
func (d *Driver) CreateFramebuffer(dev gfx.Device, info gfx.FramebufferInfo) (gfx.Framebuffer, error) {
	views := make([]vk.ImageView, 0, len(info.Attachments))
	for _, v := range info.Attachments {
		views = append(views, d.imageView(v))
	}

	var fb vk.Framebuffer
	if err := check("vk.CreateFramebuffer()", vk.CreateFramebuffer(d.device(dev).handle, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      d.renderPass(info.RenderPass),
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           info.Extent.Width,
		Height:          info.Extent.Height,
		Layers:          1,
	}, nil, &fb)); err != nil {
		return 0, err
	}
	return gfx.Framebuffer(d.reg.put(fb)), nil
}

func (d *Driver) framebuffer(h gfx.Framebuffer) vk.Framebuffer {
	obj, _ := d.reg.get(uint64(h)).(vk.Framebuffer)
	return obj
}

// DestroyFramebuffer destroys the framebuffer.
func (d *Driver) DestroyFramebuffer(dev gfx.Device, fb gfx.Framebuffer) {
	if obj, ok := d.reg.drop(uint64(fb)).(vk.Framebuffer); ok {
		vk.DestroyFramebuffer(d.device(dev).handle, obj, nil)
	}
}

// CreateBuffer creates an exclusive buffer in host visible, coherent memory.
func (d *Driver) CreateBuffer(dev gfx.Device, info gfx.BufferInfo) (gfx.Buffer, error) {
	dv := d.device(dev)

	var buf vk.Buffer
	if err := check("vk.CreateBuffer()", vk.CreateBuffer(dv.handle, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(info.Size),
		Usage:       vk.BufferUsageFlags(info.Usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf)); err != nil {
		return 0, err
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dv.handle, buf, &req)
	req.Deref()

	mem, err := dv.alloc.Malloc(req, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		vk.DestroyBuffer(dv.handle, buf, nil)
		return 0, errors.Wrap(err, "buffer memory")
	}
	if err := check("vk.BindBufferMemory()", vk.BindBufferMemory(dv.handle, buf, mem.Get(), 0)); err != nil {
		mem.Release()
		vk.DestroyBuffer(dv.handle, buf, nil)
		return 0, err
	}

	return gfx.Buffer(d.reg.put(&buffer{handle: buf, memory: mem, size: info.Size})), nil
}

// DestroyBuffer destroys the buffer and frees its memory.
func (d *Driver) DestroyBuffer(dev gfx.Device, buf gfx.Buffer) {
	obj, ok := d.reg.drop(uint64(buf)).(*buffer)
	if !ok {
		return
	}
	vk.DestroyBuffer(d.device(dev).handle, obj.handle, nil)
	obj.memory.Release()
}

// WriteBuffer copies data into the buffer at offset.
func (d *Driver) WriteBuffer(dev gfx.Device, buf gfx.Buffer, offset uint64, data []byte) error {
	obj, ok := d.reg.get(uint64(buf)).(*buffer)
	if !ok {
		return errors.Errorf("unknown buffer %d", buf)
	}
	if offset+uint64(len(data)) > obj.size {
		return errors.Errorf("write of %d bytes at %d overflows buffer of %d", len(data), offset, obj.size)
	}

	ptr, err := obj.memory.Map()
	if err != nil {
		return err
	}
	defer obj.memory.Unmap()

	vk.Memcopy(unsafe.Pointer(uintptr(ptr)+uintptr(offset)), data)
	return nil
}

// CreateDescriptorSetLayout creates a set layout from bindings.
func (d *Driver) CreateDescriptorSetLayout(dev gfx.Device, bindings []gfx.DescriptorBinding) (gfx.DescriptorSetLayout, error) {
	vkBindings := make([]vk.DescriptorSetLayoutBinding, 0, len(bindings))
	for _, b := range bindings {
		vkBindings = append(vkBindings, vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  vk.DescriptorType(b.Type),
			DescriptorCount: b.Count,
			StageFlags:      vk.ShaderStageFlags(b.Stages),
		})
	}

	var layout vk.DescriptorSetLayout
	if err := check("vk.CreateDescriptorSetLayout()", vk.CreateDescriptorSetLayout(d.device(dev).handle, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(vkBindings)),
		PBindings:    vkBindings,
	}, nil, &layout)); err != nil {
		return 0, err
	}
	return gfx.DescriptorSetLayout(d.reg.put(layout)), nil
}

func (d *Driver) descriptorSetLayouts(hs []gfx.DescriptorSetLayout) []vk.DescriptorSetLayout {
	layouts := make([]vk.DescriptorSetLayout, 0, len(hs))
	for _, h := range hs {
		obj, _ := d.reg.get(uint64(h)).(vk.DescriptorSetLayout)
		layouts = append(layouts, obj)
	}
	return layouts
}

// DestroyDescriptorSetLayout destroys the layout.
func (d *Driver) DestroyDescriptorSetLayout(dev gfx.Device, layout gfx.DescriptorSetLayout) {
	if obj, ok := d.reg.drop(uint64(layout)).(vk.DescriptorSetLayout); ok {
		vk.DestroyDescriptorSetLayout(d.device(dev).handle, obj, nil)
	}
}

// CreateDescriptorPool creates a pool for maxSets sets.
func (d *Driver) CreateDescriptorPool(dev gfx.Device, maxSets uint32, sizes []gfx.DescriptorPoolSize) (gfx.DescriptorPool, error) {
	poolSizes := make([]vk.DescriptorPoolSize, 0, len(sizes))
	for _, s := range sizes {
		poolSizes = append(poolSizes, vk.DescriptorPoolSize{
			Type:            vk.DescriptorType(s.Type),
			DescriptorCount: s.Count,
		})
	}

	var pool vk.DescriptorPool
	if err := check("vk.CreateDescriptorPool()", vk.CreateDescriptorPool(d.device(dev).handle, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}, nil, &pool)); err != nil {
		return 0, err
	}
	return gfx.DescriptorPool(d.reg.put(pool)), nil
}

func (d *Driver) descriptorPool(h gfx.DescriptorPool) vk.DescriptorPool {
	obj, _ := d.reg.get(uint64(h)).(vk.DescriptorPool)
	return obj
}

func (d *Driver) dropSets(pool gfx.DescriptorPool) {
	d.reg.dropWhere(func(o interface{}) bool {
		ds, ok := o.(*descriptorSet)
		return ok && ds.pool == uint64(pool)
	})
}

// DestroyDescriptorPool destroys the pool and the sets allocated from it.
func (d *Driver) DestroyDescriptorPool(dev gfx.Device, pool gfx.DescriptorPool) {
	obj, ok := d.reg.drop(uint64(pool)).(vk.DescriptorPool)
	if !ok {
		return
	}
	d.dropSets(pool)
	vk.DestroyDescriptorPool(d.device(dev).handle, obj, nil)
}

// ResetDescriptorPool returns every set of the pool.
func (d *Driver) ResetDescriptorPool(dev gfx.Device, pool gfx.DescriptorPool) error {
	if err := check("vk.ResetDescriptorPool()", vk.ResetDescriptorPool(d.device(dev).handle, d.descriptorPool(pool), 0)); err != nil {
		return err
	}
	d.dropSets(pool)
	return nil
}

// AllocateDescriptorSets allocates one set per layout.
func (d *Driver) AllocateDescriptorSets(dev gfx.Device, pool gfx.DescriptorPool, layouts []gfx.DescriptorSetLayout) ([]gfx.DescriptorSet, error) {
	if len(layouts) == 0 {
		return nil, nil
	}
	sets := make([]vk.DescriptorSet, len(layouts))
	if err := check("vk.AllocateDescriptorSets()", vk.AllocateDescriptorSets(d.device(dev).handle, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.descriptorPool(pool),
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        d.descriptorSetLayouts(layouts),
	}, &sets[0])); err != nil {
		return nil, err
	}

	handles := make([]gfx.DescriptorSet, 0, len(sets))
	for _, s := range sets {
		handles = append(handles, gfx.DescriptorSet(d.reg.put(&descriptorSet{handle: s, pool: uint64(pool)})))
	}
	return handles, nil
}

func (d *Driver) descriptorSets(hs []gfx.DescriptorSet) []vk.DescriptorSet {
	sets := make([]vk.DescriptorSet, 0, len(hs))
	for _, h := range hs {
		if obj, ok := d.reg.get(uint64(h)).(*descriptorSet); ok {
			sets = append(sets, obj.handle)
		}
	}
	return sets
}

// UpdateDescriptorSets points uniform buffer bindings at buffer ranges.
func (d *Driver) UpdateDescriptorSets(dev gfx.Device, writes []gfx.DescriptorBufferWrite) {
	wds := make([]vk.WriteDescriptorSet, 0, len(writes))
	for _, w := range writes {
		set, ok := d.reg.get(uint64(w.Set)).(*descriptorSet)
		if !ok {
			continue
		}
		buf, ok := d.reg.get(uint64(w.Buffer)).(*buffer)
		if !ok {
			continue
		}
		wds = append(wds, vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set.handle,
			DstBinding:      w.Binding,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorType(w.Type),
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: buf.handle,
				Offset: vk.DeviceSize(w.Offset),
				Range:  vk.DeviceSize(w.Range),
			}},
		})
	}
	if len(wds) == 0 {
		return
	}
	vk.UpdateDescriptorSets(d.device(dev).handle, uint32(len(wds)), wds, 0, nil)
}
