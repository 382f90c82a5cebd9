// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"time"

	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type swapchain struct {
	handle vk.Swapchain
	images []gfx.Image
}

// CreateSwapchain creates a swapchain for the surface. Images are shared
// concurrently when more than one queue family is given.
func (d *Driver) CreateSwapchain(dev gfx.Device, info gfx.SwapchainInfo) (gfx.Swapchain, error) {
	scci := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          d.surface(info.Surface),
		MinImageCount:    info.MinImageCount,
		ImageFormat:      vk.Format(info.Format.Format),
		ImageColorSpace:  vk.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      toExtent(info.Extent),
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:   vk.CompositeAlphaFlagBits(info.CompositeAlpha),
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          vk.True,
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
	}
	if len(info.QueueFamilies) > 1 {
		scci.ImageSharingMode = vk.SharingModeConcurrent
		scci.QueueFamilyIndexCount = uint32(len(info.QueueFamilies))
		scci.PQueueFamilyIndices = info.QueueFamilies
	}
	if info.OldSwapchain != 0 {
		if old, ok := d.reg.get(uint64(info.OldSwapchain)).(*swapchain); ok {
			scci.OldSwapchain = old.handle
		}
	}

	var handle vk.Swapchain
	if err := check("vk.CreateSwapchain()", vk.CreateSwapchain(d.device(dev).handle, &scci, nil, &handle)); err != nil {
		return 0, err
	}
	return gfx.Swapchain(d.reg.put(&swapchain{handle: handle})), nil
}

func (d *Driver) swapchain(h gfx.Swapchain) *swapchain {
	obj, _ := d.reg.get(uint64(h)).(*swapchain)
	if obj == nil {
		lookup("swapchain", nil)
		return &swapchain{}
	}
	return obj
}

// DestroySwapchain destroys the swapchain together with its images.
func (d *Driver) DestroySwapchain(dev gfx.Device, sc gfx.Swapchain) {
	obj, ok := d.reg.drop(uint64(sc)).(*swapchain)
	if !ok {
		lookup("vk.DestroySwapchain()", nil)
		return
	}
	for _, img := range obj.images {
		d.reg.drop(uint64(img))
	}
	vk.DestroySwapchain(d.device(dev).handle, obj.handle, nil)
}

// SwapchainImages returns the presentable images, owned by the swapchain.
func (d *Driver) SwapchainImages(dev gfx.Device, sc gfx.Swapchain) ([]gfx.Image, error) {
	obj := d.swapchain(sc)
	if obj.images != nil {
		return obj.images, nil
	}

	handle := d.device(dev).handle
	var count uint32
	if err := check("vk.GetSwapchainImages()", vk.GetSwapchainImages(handle, obj.handle, &count, nil)); err != nil {
		return nil, err
	}
	images := make([]vk.Image, count)
	if err := check("vk.GetSwapchainImages()", vk.GetSwapchainImages(handle, obj.handle, &count, images)); err != nil {
		return nil, err
	}

	obj.images = make([]gfx.Image, 0, count)
	for _, img := range images[:count] {
		obj.images = append(obj.images, gfx.Image(d.reg.put(&image{handle: img})))
	}
	return obj.images, nil
}

// AcquireNextImage acquires a presentable image, signaling signal once it
// is ready to be rendered to.
func (d *Driver) AcquireNextImage(dev gfx.Device, sc gfx.Swapchain, timeout time.Duration, signal gfx.Semaphore) (uint32, error) {
	var idx uint32
	ret := vk.AcquireNextImage(d.device(dev).handle, d.swapchain(sc).handle, nanos(timeout),
		d.semaphore(signal), vk.Fence(vk.NullHandle), &idx)
	if err := check("vk.AcquireNextImage()", ret); err != nil {
		return 0, err
	}
	return idx, nil
}

// QueuePresent queues image index of the swapchain for presentation once
// wait is signaled.
func (d *Driver) QueuePresent(queue gfx.Queue, sc gfx.Swapchain, index uint32, wait gfx.Semaphore) error {
	info := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{d.swapchain(sc).handle},
		PImageIndices:  []uint32{index},
	}
	if wait != 0 {
		info.WaitSemaphoreCount = 1
		info.PWaitSemaphores = []vk.Semaphore{d.semaphore(wait)}
	}

	ret := vk.QueuePresent(d.queue(queue), &info)
	if ret == vk.Suboptimal {
		return errors.Wrap(gfx.ErrSuboptimal, "vk.QueuePresent()")
	}
	return check("vk.QueuePresent()", ret)
}
