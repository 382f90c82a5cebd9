// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"time"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type device struct {
	handle vk.Device
	alloc  *MemoryAllocator
}

type commandBuffer struct {
	handle vk.CommandBuffer
	pool   uint64
}

// CreateDevice creates a logical device with the requested queues.
func (d *Driver) CreateDevice(adapter gfx.Adapter, info gfx.DeviceInfo) (gfx.Device, error) {
	pd := d.adapter(adapter)

	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(info.Queues))
	for _, q := range info.Queues {
		priorities := make([]float32, q.Count)
		for i := range priorities {
			priorities[i] = 1.0
		}
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.Family,
			QueueCount:       q.Count,
			PQueuePriorities: priorities,
		})
	}

	var handle vk.Device
	if err := check("vk.CreateDevice()", vk.CreateDevice(pd, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: core.SafeStrings(info.Extensions),
	}, nil, &handle)); err != nil {
		return 0, err
	}

	return gfx.Device(d.reg.put(&device{
		handle: handle,
		alloc:  NewMemoryAllocator(handle, pd),
	})), nil
}

func (d *Driver) device(h gfx.Device) *device {
	obj, _ := d.reg.get(uint64(h)).(*device)
	if obj == nil {
		lookup("device", nil)
		return &device{}
	}
	return obj
}

// DestroyDevice destroys the logical device.
func (d *Driver) DestroyDevice(dev gfx.Device) {
	obj, ok := d.reg.drop(uint64(dev)).(*device)
	if !ok {
		lookup("vk.DestroyDevice()", nil)
		return
	}
	d.mu.Lock()
	for q, h := range d.queues {
		d.reg.drop(uint64(h))
		delete(d.queues, q)
	}
	d.mu.Unlock()
	vk.DestroyDevice(obj.handle, nil)
}

// GetQueue returns a queue of the device.
func (d *Driver) GetQueue(dev gfx.Device, family, index uint32) gfx.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(d.device(dev).handle, family, index, &queue)

	d.mu.Lock()
	defer d.mu.Unlock()
	if h, ok := d.queues[queue]; ok {
		return h
	}
	h := gfx.Queue(d.reg.put(queue))
	d.queues[queue] = h
	return h
}

func (d *Driver) queue(h gfx.Queue) vk.Queue {
	obj, _ := d.reg.get(uint64(h)).(vk.Queue)
	return obj
}

// DeviceWaitIdle blocks until the device finishes all work.
func (d *Driver) DeviceWaitIdle(dev gfx.Device) error {
	return check("vk.DeviceWaitIdle()", vk.DeviceWaitIdle(d.device(dev).handle))
}

// CreateCommandPool creates a pool whose buffers can be reset individually.
func (d *Driver) CreateCommandPool(dev gfx.Device, family uint32) (gfx.CommandPool, error) {
	var pool vk.CommandPool
	if err := check("vk.CreateCommandPool()", vk.CreateCommandPool(d.device(dev).handle, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: family,
	}, nil, &pool)); err != nil {
		return 0, err
	}
	return gfx.CommandPool(d.reg.put(pool)), nil
}

func (d *Driver) commandPool(h gfx.CommandPool) vk.CommandPool {
	obj, _ := d.reg.get(uint64(h)).(vk.CommandPool)
	return obj
}

// DestroyCommandPool destroys the pool and every buffer allocated from it.
func (d *Driver) DestroyCommandPool(dev gfx.Device, pool gfx.CommandPool) {
	obj, ok := d.reg.drop(uint64(pool)).(vk.CommandPool)
	if !ok {
		lookup("vk.DestroyCommandPool()", nil)
		return
	}
	d.reg.dropWhere(func(o interface{}) bool {
		cb, ok := o.(*commandBuffer)
		return ok && cb.pool == uint64(pool)
	})
	vk.DestroyCommandPool(d.device(dev).handle, obj, nil)
}

// AllocateCommandBuffers allocates primary command buffers.
func (d *Driver) AllocateCommandBuffers(dev gfx.Device, pool gfx.CommandPool, count int) ([]gfx.CommandBuffer, error) {
	if count <= 0 {
		return nil, errors.Errorf("invalid command buffer count %d", count)
	}
	buffers := make([]vk.CommandBuffer, count)
	if err := check("vk.AllocateCommandBuffers()", vk.AllocateCommandBuffers(d.device(dev).handle, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool(pool),
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}, buffers)); err != nil {
		return nil, err
	}

	handles := make([]gfx.CommandBuffer, 0, count)
	for _, cb := range buffers {
		handles = append(handles, gfx.CommandBuffer(d.reg.put(&commandBuffer{handle: cb, pool: uint64(pool)})))
	}
	return handles, nil
}

func (d *Driver) commandBuffer(h gfx.CommandBuffer) vk.CommandBuffer {
	obj, _ := d.reg.get(uint64(h)).(*commandBuffer)
	if obj == nil {
		lookup("command buffer", nil)
		return nil
	}
	return obj.handle
}

// FreeCommandBuffers returns buffers to their pool.
func (d *Driver) FreeCommandBuffers(dev gfx.Device, pool gfx.CommandPool, buffers []gfx.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	handles := make([]vk.CommandBuffer, 0, len(buffers))
	for _, h := range buffers {
		if cb, ok := d.reg.drop(uint64(h)).(*commandBuffer); ok {
			handles = append(handles, cb.handle)
		}
	}
	if len(handles) == 0 {
		return
	}
	vk.FreeCommandBuffers(d.device(dev).handle, d.commandPool(pool), uint32(len(handles)), handles)
}

// CreateSemaphore creates a binary semaphore.
func (d *Driver) CreateSemaphore(dev gfx.Device) (gfx.Semaphore, error) {
	var sem vk.Semaphore
	if err := check("vk.CreateSemaphore()", vk.CreateSemaphore(d.device(dev).handle, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &sem)); err != nil {
		return 0, err
	}
	return gfx.Semaphore(d.reg.put(sem)), nil
}

func (d *Driver) semaphore(h gfx.Semaphore) vk.Semaphore {
	obj, _ := d.reg.get(uint64(h)).(vk.Semaphore)
	return obj
}

// DestroySemaphore destroys the semaphore.
func (d *Driver) DestroySemaphore(dev gfx.Device, semaphore gfx.Semaphore) {
	if obj, ok := d.reg.drop(uint64(semaphore)).(vk.Semaphore); ok {
		vk.DestroySemaphore(d.device(dev).handle, obj, nil)
	}
}

// CreateFence creates a fence, optionally in the signaled state.
func (d *Driver) CreateFence(dev gfx.Device, signaled bool) (gfx.Fence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	if err := check("vk.CreateFence()", vk.CreateFence(d.device(dev).handle, &info, nil, &fence)); err != nil {
		return 0, err
	}
	return gfx.Fence(d.reg.put(fence)), nil
}

func (d *Driver) fence(h gfx.Fence) vk.Fence {
	if h == 0 {
		return vk.Fence(vk.NullHandle)
	}
	obj, _ := d.reg.get(uint64(h)).(vk.Fence)
	return obj
}

// DestroyFence destroys the fence.
func (d *Driver) DestroyFence(dev gfx.Device, fence gfx.Fence) {
	if obj, ok := d.reg.drop(uint64(fence)).(vk.Fence); ok {
		vk.DestroyFence(d.device(dev).handle, obj, nil)
	}
}

// WaitForFence blocks until the fence is signaled or timeout passes.
func (d *Driver) WaitForFence(dev gfx.Device, fence gfx.Fence, timeout time.Duration) error {
	return check("vk.WaitForFences()", vk.WaitForFences(d.device(dev).handle, 1, []vk.Fence{d.fence(fence)}, vk.True, nanos(timeout)))
}

// ResetFence returns the fence to the unsignaled state.
func (d *Driver) ResetFence(dev gfx.Device, fence gfx.Fence) error {
	return check("vk.ResetFences()", vk.ResetFences(d.device(dev).handle, 1, []vk.Fence{d.fence(fence)}))
}

// nanos converts a timeout, treating gfx.NoTimeout as forever.
func nanos(timeout time.Duration) uint64 {
	if timeout <= gfx.NoTimeout {
		return vk.MaxUint64
	}
	return uint64(timeout.Nanoseconds())
}
