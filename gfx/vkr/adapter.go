// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/devblok/vista/gfx"
	vk "github.com/vulkan-go/vulkan"
)

// Adapters lists the physical devices of the instance. Handles are stable
// for the lifetime of the instance.
func (d *Driver) Adapters(instance gfx.Instance) ([]gfx.Adapter, error) {
	inst := d.instance(instance)

	var count uint32
	if err := check("vk.EnumeratePhysicalDevices()", vk.EnumeratePhysicalDevices(inst, &count, nil)); err != nil {
		return nil, err
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := check("vk.EnumeratePhysicalDevices()", vk.EnumeratePhysicalDevices(inst, &count, devices)); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	adapters := make([]gfx.Adapter, 0, count)
	for _, pd := range devices[:count] {
		h, ok := d.adapters[pd]
		if !ok {
			h = gfx.Adapter(d.reg.put(pd))
			d.adapters[pd] = h
		}
		adapters = append(adapters, h)
	}
	return adapters, nil
}

func (d *Driver) adapter(h gfx.Adapter) vk.PhysicalDevice {
	obj, _ := d.reg.get(uint64(h)).(vk.PhysicalDevice)
	return obj
}

// AdapterInfo reads the adapter properties.
func (d *Driver) AdapterInfo(adapter gfx.Adapter) gfx.AdapterInfo {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(d.adapter(adapter), &props)
	props.Deref()

	info := gfx.AdapterInfo{
		Name:          vk.ToString(props.DeviceName[:]),
		Type:          gfx.AdapterType(props.DeviceType),
		APIVersion:    props.ApiVersion,
		DriverVersion: props.DriverVersion,
		VendorID:      props.VendorID,
		DeviceID:      props.DeviceID,
	}
	copy(info.PipelineCacheUUID[:], props.PipelineCacheUUID[:])
	return info
}

// AdapterExtensions lists the device extensions of the adapter.
func (d *Driver) AdapterExtensions(adapter gfx.Adapter) ([]string, error) {
	pd := d.adapter(adapter)

	var count uint32
	if err := check("vk.EnumerateDeviceExtensionProperties()", vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := check("vk.EnumerateDeviceExtensionProperties()", vk.EnumerateDeviceExtensionProperties(pd, "", &count, props)); err != nil {
		return nil, err
	}
	return extensionNames(props[:count]), nil
}

// QueueFamilies lists the queue families of the adapter.
func (d *Driver) QueueFamilies(adapter gfx.Adapter) []gfx.QueueFamily {
	pd := d.adapter(adapter)

	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, props)

	families := make([]gfx.QueueFamily, 0, count)
	for idx, p := range props[:count] {
		p.Deref()
		families = append(families, gfx.QueueFamily{
			Index: uint32(idx),
			Flags: gfx.QueueFlags(p.QueueFlags),
			Count: p.QueueCount,
		})
	}
	return families
}

// SurfaceSupport reports whether the family can present to surface.
func (d *Driver) SurfaceSupport(adapter gfx.Adapter, family uint32, surface gfx.Surface) (bool, error) {
	var supported vk.Bool32
	if err := check("vk.GetPhysicalDeviceSurfaceSupport()",
		vk.GetPhysicalDeviceSurfaceSupport(d.adapter(adapter), family, d.surface(surface), &supported)); err != nil {
		return false, err
	}
	return supported == vk.True, nil
}

// SurfaceDetails reads capabilities, formats and present modes of surface.
func (d *Driver) SurfaceDetails(adapter gfx.Adapter, surface gfx.Surface) (gfx.SurfaceDetails, error) {
	pd, sf := d.adapter(adapter), d.surface(surface)

	var caps vk.SurfaceCapabilities
	if err := check("vk.GetPhysicalDeviceSurfaceCapabilities()", vk.GetPhysicalDeviceSurfaceCapabilities(pd, sf, &caps)); err != nil {
		return gfx.SurfaceDetails{}, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	var formatCount uint32
	if err := check("vk.GetPhysicalDeviceSurfaceFormats()", vk.GetPhysicalDeviceSurfaceFormats(pd, sf, &formatCount, nil)); err != nil {
		return gfx.SurfaceDetails{}, err
	}
	formats := make([]vk.SurfaceFormat, formatCount)
	if err := check("vk.GetPhysicalDeviceSurfaceFormats()", vk.GetPhysicalDeviceSurfaceFormats(pd, sf, &formatCount, formats)); err != nil {
		return gfx.SurfaceDetails{}, err
	}

	var modeCount uint32
	if err := check("vk.GetPhysicalDeviceSurfacePresentModes()", vk.GetPhysicalDeviceSurfacePresentModes(pd, sf, &modeCount, nil)); err != nil {
		return gfx.SurfaceDetails{}, err
	}
	modes := make([]vk.PresentMode, modeCount)
	if err := check("vk.GetPhysicalDeviceSurfacePresentModes()", vk.GetPhysicalDeviceSurfacePresentModes(pd, sf, &modeCount, modes)); err != nil {
		return gfx.SurfaceDetails{}, err
	}

	details := gfx.SurfaceDetails{
		Capabilities: gfx.SurfaceCapabilities{
			MinImageCount:           caps.MinImageCount,
			MaxImageCount:           caps.MaxImageCount,
			CurrentExtent:           fromExtent(caps.CurrentExtent),
			MinImageExtent:          fromExtent(caps.MinImageExtent),
			MaxImageExtent:          fromExtent(caps.MaxImageExtent),
			SupportedTransforms:     gfx.SurfaceTransform(caps.SupportedTransforms),
			CurrentTransform:        gfx.SurfaceTransform(caps.CurrentTransform),
			SupportedCompositeAlpha: gfx.CompositeAlpha(caps.SupportedCompositeAlpha),
		},
		Formats:      make([]gfx.SurfaceFormat, 0, formatCount),
		PresentModes: make([]gfx.PresentMode, 0, modeCount),
	}
	for _, f := range formats[:formatCount] {
		f.Deref()
		details.Formats = append(details.Formats, gfx.SurfaceFormat{
			Format:     gfx.Format(f.Format),
			ColorSpace: gfx.ColorSpace(f.ColorSpace),
		})
	}
	for _, m := range modes[:modeCount] {
		details.PresentModes = append(details.PresentModes, gfx.PresentMode(m))
	}
	return details, nil
}

// SupportsDepthAttachment reports whether format can back an optimally
// tiled depth attachment.
func (d *Driver) SupportsDepthAttachment(adapter gfx.Adapter, format gfx.Format) bool {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(d.adapter(adapter), vk.Format(format), &props)
	props.Deref()
	return props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit) != 0
}

func fromExtent(e vk.Extent2D) gfx.Extent2D {
	return gfx.Extent2D{Width: e.Width, Height: e.Height}
}

func toExtent(e gfx.Extent2D) vk.Extent2D {
	return vk.Extent2D{Width: e.Width, Height: e.Height}
}
