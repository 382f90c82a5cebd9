// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
)

// SyncPair orders one frame: ImageReady is signaled on acquire,
// RenderingComplete on submit completion, and InFlight fences the
// submission so only one frame is ever in flight.
type SyncPair struct {
	dev *Device

	ImageReady        gfx.Semaphore
	RenderingComplete gfx.Semaphore
	InFlight          gfx.Fence
}

// NewSyncPair creates both semaphores and a signaled fence.
func NewSyncPair(dev *Device) (*SyncPair, error) {
	sp := &SyncPair{dev: dev}
	var err error
	if sp.ImageReady, err = dev.drv.CreateSemaphore(dev.handle); err != nil {
		return nil, errors.Wrap(err, "create image ready semaphore")
	}
	if sp.RenderingComplete, err = dev.drv.CreateSemaphore(dev.handle); err != nil {
		sp.Release()
		return nil, errors.Wrap(err, "create rendering complete semaphore")
	}
	if sp.InFlight, err = dev.drv.CreateFence(dev.handle, true); err != nil {
		sp.Release()
		return nil, errors.Wrap(err, "create in flight fence")
	}
	return sp, nil
}

// Release destroys the fence and semaphores.
func (sp *SyncPair) Release() {
	if sp == nil {
		return
	}
	drv, device := sp.dev.drv, sp.dev.handle
	if sp.InFlight != 0 {
		drv.DestroyFence(device, sp.InFlight)
		sp.InFlight = 0
	}
	if sp.RenderingComplete != 0 {
		drv.DestroySemaphore(device, sp.RenderingComplete)
		sp.RenderingComplete = 0
	}
	if sp.ImageReady != 0 {
		drv.DestroySemaphore(device, sp.ImageReady)
		sp.ImageReady = 0
	}
}
