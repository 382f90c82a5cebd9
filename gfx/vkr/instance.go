// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"unsafe"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Init loads the Vulkan entry points, from procAddr when the windowing
// library provides one and from the system loader otherwise.
func (d *Driver) Init(procAddr unsafe.Pointer) error {
	if procAddr != nil {
		vk.SetGetInstanceProcAddr(procAddr)
	} else if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
	}
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "vk.Init()")
	}
	return nil
}

// InstanceLayers lists the layers the loader can enable.
func (d *Driver) InstanceLayers() ([]string, error) {
	var count uint32
	if err := check("vk.EnumerateInstanceLayerProperties()", vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.LayerProperties, count)
	if err := check("vk.EnumerateInstanceLayerProperties()", vk.EnumerateInstanceLayerProperties(&count, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, p := range props[:count] {
		p.Deref()
		names = append(names, vk.ToString(p.LayerName[:]))
	}
	return names, nil
}

// InstanceExtensions lists the instance extensions the loader can enable.
func (d *Driver) InstanceExtensions() ([]string, error) {
	var count uint32
	if err := check("vk.EnumerateInstanceExtensionProperties()", vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := check("vk.EnumerateInstanceExtensionProperties()", vk.EnumerateInstanceExtensionProperties("", &count, props)); err != nil {
		return nil, err
	}
	return extensionNames(props[:count]), nil
}

func extensionNames(props []vk.ExtensionProperties) []string {
	names := make([]string, 0, len(props))
	for _, p := range props {
		p.Deref()
		names = append(names, vk.ToString(p.ExtensionName[:]))
	}
	return names
}

// CreateInstance creates the instance and loads its entry points.
func (d *Driver) CreateInstance(info gfx.InstanceInfo) (gfx.Instance, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vk.MakeVersion(1, 0, 0),
		ApplicationVersion: info.Application.Version,
		PApplicationName:   core.SafeString(info.Application.Name),
		PEngineName:        core.SafeString(info.Application.EngineName),
		EngineVersion:      info.Application.Version,
	}

	var instance vk.Instance
	if err := check("vk.CreateInstance()", vk.CreateInstance(&vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: core.SafeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     core.SafeStrings(info.Layers),
	}, nil, &instance)); err != nil {
		return 0, err
	}

	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return 0, errors.Wrap(err, "vk.InitInstance()")
	}

	return gfx.Instance(d.reg.put(instance)), nil
}

func (d *Driver) instance(h gfx.Instance) vk.Instance {
	obj, _ := d.reg.get(uint64(h)).(vk.Instance)
	return obj
}

// DestroyInstance destroys the instance.
func (d *Driver) DestroyInstance(instance gfx.Instance) {
	obj, ok := d.reg.drop(uint64(instance)).(vk.Instance)
	if !ok {
		lookup("vk.DestroyInstance()", nil)
		return
	}
	d.mu.Lock()
	d.adapters = make(map[vk.PhysicalDevice]gfx.Adapter)
	d.mu.Unlock()
	vk.DestroyInstance(obj, nil)
}

// NativeInstance returns the vk.Instance behind the handle.
func (d *Driver) NativeInstance(instance gfx.Instance) interface{} {
	return d.instance(instance)
}

// ImportSurface takes ownership of a surface created by the window.
func (d *Driver) ImportSurface(instance gfx.Instance, native uintptr) (gfx.Surface, error) {
	if native == 0 {
		return 0, errors.New("null surface")
	}
	return gfx.Surface(d.reg.put(vk.SurfaceFromPointer(native))), nil
}

func (d *Driver) surface(h gfx.Surface) vk.Surface {
	obj, _ := d.reg.get(uint64(h)).(vk.Surface)
	return obj
}

// DestroySurface destroys the surface.
func (d *Driver) DestroySurface(instance gfx.Instance, surface gfx.Surface) {
	obj, ok := d.reg.drop(uint64(surface)).(vk.Surface)
	if !ok {
		lookup("vk.DestroySurface()", nil)
		return
	}
	vk.DestroySurface(d.instance(instance), obj, nil)
}

// CreateDebugCallback forwards validation reports to fn.
func (d *Driver) CreateDebugCallback(instance gfx.Instance, fn gfx.DebugFunc) (gfx.DebugCallback, error) {
	var cb vk.DebugReportCallback
	if err := check("vk.CreateDebugReportCallback()", vk.CreateDebugReportCallback(d.instance(instance), &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit | vk.DebugReportDebugBit),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
			object uint64, location uint, messageCode int32, pLayerPrefix string,
			pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
			fn(severity(flags), pLayerPrefix, messageCode, pMessage)
			return vk.Bool32(vk.False)
		},
	}, nil, &cb)); err != nil {
		return 0, err
	}
	return gfx.DebugCallback(d.reg.put(cb)), nil
}

// DestroyDebugCallback removes the debug callback.
func (d *Driver) DestroyDebugCallback(instance gfx.Instance, cb gfx.DebugCallback) {
	obj, ok := d.reg.drop(uint64(cb)).(vk.DebugReportCallback)
	if !ok {
		lookup("vk.DestroyDebugReportCallback()", nil)
		return
	}
	vk.DestroyDebugReportCallback(d.instance(instance), obj, nil)
}

func severity(flags vk.DebugReportFlags) gfx.DebugSeverity {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return gfx.SeverityError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return gfx.SeverityWarning
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return gfx.SeverityPerformanceWarning
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return gfx.SeverityDebug
	}
	return gfx.SeverityInformation
}
