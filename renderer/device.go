// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"strings"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// SwapchainExtension is required of every on-screen device.
const SwapchainExtension = "VK_KHR_swapchain"

// QueuePurpose identifies what a queue is used for.
type QueuePurpose int

// Queue purposes.
const (
	GraphicsQueue QueuePurpose = iota
	PresentQueue
	TransferQueue
	ComputeQueue
)

func (q QueuePurpose) String() string {
	switch q {
	case GraphicsQueue:
		return "graphics"
	case PresentQueue:
		return "present"
	case TransferQueue:
		return "transfer"
	case ComputeQueue:
		return "compute"
	}
	return "unknown"
}

// SurfaceCache stores the surface details each adapter reported.
type SurfaceCache interface {
	SurfaceSettings(adapter gfx.Adapter) (gfx.SurfaceDetails, bool)
	SetSurfaceSettings(adapter gfx.Adapter, details gfx.SurfaceDetails)
}

// Device is the selected adapter together with its logical device,
// queues and command pools.
type Device struct {
	drv      gfx.Driver
	adapter  gfx.Adapter
	info     gfx.AdapterInfo
	handle   gfx.Device
	families map[QueuePurpose]uint32
	queues   map[QueuePurpose]gfx.Queue
	pools    map[QueuePurpose]gfx.CommandPool
}

// Driver returns the driver the device was created with.
func (d *Device) Driver() gfx.Driver {
	return d.drv
}

// Adapter returns the physical device.
func (d *Device) Adapter() gfx.Adapter {
	return d.adapter
}

// Info describes the physical device.
func (d *Device) Info() gfx.AdapterInfo {
	return d.info
}

// Handle returns the logical device.
func (d *Device) Handle() gfx.Device {
	return d.handle
}

// Queue returns the queue used for purpose.
func (d *Device) Queue(purpose QueuePurpose) (gfx.Queue, bool) {
	q, ok := d.queues[purpose]
	return q, ok
}

// Family returns the queue family index used for purpose.
func (d *Device) Family(purpose QueuePurpose) (uint32, bool) {
	f, ok := d.families[purpose]
	return f, ok
}

// CommandPool returns the command pool created for purpose.
func (d *Device) CommandPool(purpose QueuePurpose) (gfx.CommandPool, bool) {
	p, ok := d.pools[purpose]
	return p, ok
}

// WaitIdle blocks until the device finished all submitted work.
func (d *Device) WaitIdle() error {
	return errors.Wrap(d.drv.DeviceWaitIdle(d.handle), "device wait idle")
}

// Release destroys the command pools and then the logical device.
func (d *Device) Release() {
	if d == nil || d.handle == 0 {
		return
	}
	for purpose, pool := range d.pools {
		d.drv.DestroyCommandPool(d.handle, pool)
		delete(d.pools, purpose)
	}
	d.drv.DestroyDevice(d.handle)
	d.handle = 0
}

// SelectDevice picks the first adapter that satisfies cfg and builds a
// logical device on it. The surface details of the chosen adapter are
// stored in cache.
func SelectDevice(drv gfx.Driver, instance gfx.Instance, surface gfx.Surface, cache SurfaceCache, cfg core.DeviceConfiguration) (*Device, error) {
	adapters, err := drv.Adapters(instance)
	if err != nil {
		return nil, errors.Wrap(err, "enumerate adapters")
	}
	if len(adapters) == 0 {
		return nil, errors.Wrap(ErrNoSuitableDevice, "no adapters present")
	}

	for _, adapter := range adapters {
		info := drv.AdapterInfo(adapter)
		families, details, reason, err := evaluate(drv, adapter, surface, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluate adapter %s", info.Name)
		}
		if reason != "" {
			log.WithFields(log.Fields{
				"adapter": info.Name,
				"reason":  reason,
			}).Debug("adapter rejected")
			continue
		}

		dev, err := createDevice(drv, adapter, families, cfg)
		if err != nil {
			return nil, err
		}
		dev.info = info
		if cfg.OnScreenRequired {
			cache.SetSurfaceSettings(adapter, details)
		}

		log.WithFields(log.Fields{
			"adapter": info.Name,
			"type":    info.Type.String(),
		}).Info("device selected")
		return dev, nil
	}
	return nil, ErrNoSuitableDevice
}

// evaluate returns a non-empty reason when the adapter is unsuitable.
func evaluate(drv gfx.Driver, adapter gfx.Adapter, surface gfx.Surface, cfg core.DeviceConfiguration) (map[QueuePurpose]uint32, gfx.SurfaceDetails, string, error) {
	var details gfx.SurfaceDetails
	families := drv.QueueFamilies(adapter)

	chosen, reason := chooseFamilies(families, cfg)
	if reason != "" {
		return nil, details, reason, nil
	}

	if cfg.OnScreenRequired {
		graphics, present, ok, err := choosePresentFamily(drv, adapter, surface, families, chosen[GraphicsQueue])
		if err != nil {
			return nil, details, "", err
		}
		if !ok {
			return nil, details, "no queue family can present to the surface", nil
		}
		chosen[GraphicsQueue] = graphics
		chosen[PresentQueue] = present
	}

	required := append([]string{}, cfg.Extensions...)
	if cfg.OnScreenRequired {
		required = append(required, SwapchainExtension)
	}
	available, err := drv.AdapterExtensions(adapter)
	if err != nil {
		return nil, details, "", err
	}
	if missing := core.Missing(available, required); len(missing) > 0 {
		return nil, details, "missing device extensions: " + strings.Join(missing, ", "), nil
	}

	if cfg.OnScreenRequired {
		details, err = drv.SurfaceDetails(adapter, surface)
		if err != nil {
			return nil, details, "", err
		}
		if len(details.Formats) == 0 {
			return nil, details, "surface reports no formats", nil
		}
		if len(details.PresentModes) == 0 {
			return nil, details, "surface reports no present modes", nil
		}
	}
	return chosen, details, "", nil
}

func chooseFamilies(families []gfx.QueueFamily, cfg core.DeviceConfiguration) (map[QueuePurpose]uint32, string) {
	chosen := make(map[QueuePurpose]uint32)

	graphics, ok := firstFamily(families, gfx.QueueGraphics)
	if !ok && (cfg.GraphicsRequired || cfg.OnScreenRequired) {
		return nil, "no graphics queue family"
	}
	if ok {
		chosen[GraphicsQueue] = graphics
	}

	if transfer, ok := firstFamily(families, gfx.QueueTransfer); ok {
		chosen[TransferQueue] = transfer
	} else if g, ok := chosen[GraphicsQueue]; ok {
		// graphics queues implicitly support transfer operations
		chosen[TransferQueue] = g
	} else {
		return nil, "no transfer queue family"
	}

	if cfg.ComputeRequired {
		compute, ok := firstFamily(families, gfx.QueueCompute)
		if !ok {
			return nil, "no compute queue family"
		}
		chosen[ComputeQueue] = compute
	}
	return chosen, ""
}

// choosePresentFamily prefers a graphics family that can present, so
// that a single queue does both, and otherwise takes the first family
// that can present while graphics stays where it was.
func choosePresentFamily(drv gfx.Driver, adapter gfx.Adapter, surface gfx.Surface, families []gfx.QueueFamily, graphics uint32) (uint32, uint32, bool, error) {
	var (
		first uint32
		found bool
	)
	for _, f := range families {
		ok, err := drv.SurfaceSupport(adapter, f.Index, surface)
		if err != nil {
			return 0, 0, false, err
		}
		if !ok {
			continue
		}
		if f.Count > 0 && f.Flags.Has(gfx.QueueGraphics) {
			return f.Index, f.Index, true, nil
		}
		if !found {
			first, found = f.Index, true
		}
	}
	return graphics, first, found, nil
}

func firstFamily(families []gfx.QueueFamily, flags gfx.QueueFlags) (uint32, bool) {
	for _, f := range families {
		if f.Count > 0 && f.Flags.Has(flags) {
			return f.Index, true
		}
	}
	return 0, false
}

func createDevice(drv gfx.Driver, adapter gfx.Adapter, families map[QueuePurpose]uint32, cfg core.DeviceConfiguration) (*Device, error) {
	var (
		requests []gfx.QueueRequest
		seen     = make(map[uint32]bool)
	)
	for _, purpose := range []QueuePurpose{GraphicsQueue, PresentQueue, TransferQueue, ComputeQueue} {
		family, ok := families[purpose]
		if !ok || seen[family] {
			continue
		}
		seen[family] = true
		requests = append(requests, gfx.QueueRequest{Family: family, Count: 1})
	}

	extensions := append([]string{}, cfg.Extensions...)
	if cfg.OnScreenRequired {
		extensions = append(extensions, SwapchainExtension)
	}

	handle, err := drv.CreateDevice(adapter, gfx.DeviceInfo{
		Queues:     requests,
		Extensions: extensions,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create logical device")
	}

	dev := &Device{
		drv:      drv,
		adapter:  adapter,
		handle:   handle,
		families: families,
		queues:   make(map[QueuePurpose]gfx.Queue, len(families)),
		pools:    make(map[QueuePurpose]gfx.CommandPool),
	}
	for purpose, family := range families {
		dev.queues[purpose] = drv.GetQueue(handle, family, 0)
	}

	for _, purpose := range []QueuePurpose{GraphicsQueue, TransferQueue, ComputeQueue} {
		family, ok := families[purpose]
		if !ok {
			continue
		}
		pool, err := drv.CreateCommandPool(handle, family)
		if err != nil {
			dev.Release()
			return nil, errors.Wrapf(err, "create %s command pool", purpose)
		}
		dev.pools[purpose] = pool
	}
	return dev, nil
}
