// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkr implements gfx.Driver on top of Vulkan.
package vkr

import (
	"sync"

	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

var _ gfx.Driver = (*Driver)(nil)

// Driver maps gfx handles onto Vulkan objects.
type Driver struct {
	reg registry

	mu       sync.Mutex
	adapters map[vk.PhysicalDevice]gfx.Adapter
	queues   map[vk.Queue]gfx.Queue
}

// New returns a driver. Init must be called before anything else.
func New() *Driver {
	return &Driver{
		reg:      registry{objects: make(map[uint64]interface{})},
		adapters: make(map[vk.PhysicalDevice]gfx.Adapter),
		queues:   make(map[vk.Queue]gfx.Queue),
	}
}

// Live returns the number of objects still registered.
func (d *Driver) Live() int {
	return d.reg.len()
}

// registry hands out stable 64 bit handles for Vulkan objects, which are
// pointers on some platforms and integers on others.
type registry struct {
	mu      sync.Mutex
	next    uint64
	objects map[uint64]interface{}
}

func (r *registry) put(obj interface{}) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.objects[r.next] = obj
	return r.next
}

func (r *registry) get(h uint64) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.objects[h]
}

func (r *registry) drop(h uint64) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj := r.objects[h]
	delete(r.objects, h)
	return obj
}

func (r *registry) dropWhere(match func(interface{}) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, obj := range r.objects {
		if match(obj) {
			delete(r.objects, h)
		}
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// check turns a Vulkan result into an error. Out of date surfaces and
// timeouts keep their gfx sentinel as the cause.
func check(call string, ret vk.Result) error {
	switch ret {
	case vk.Success, vk.Incomplete, vk.Suboptimal:
		return nil
	case vk.ErrorOutOfDate:
		return errors.Wrap(gfx.ErrSurfaceOutOfDate, call)
	case vk.Timeout, vk.NotReady:
		return errors.Wrap(gfx.ErrTimeout, call)
	}
	return gfx.NewCallError(call, int32(ret))
}

// lookup logs use of a handle that is not registered, which is always
// a bug in the caller.
func lookup(call string, obj interface{}) {
	if obj == nil {
		log.WithField("call", call).Error("unknown handle")
	}
}
