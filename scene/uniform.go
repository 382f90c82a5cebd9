// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package scene

import (
	"unsafe"

	"github.com/devblok/vista/gfx"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Uniform defines a model-view-projection object
type Uniform struct {
	Model      glm.Mat4
	View       glm.Mat4
	Projection glm.Mat4
}

// UniformSize is the size of Uniform in device memory.
const UniformSize = uint64(unsafe.Sizeof(Uniform{}))

// NewUniform builds the matrices for a model rotated by angle radians
// around Z, viewed from above on a surface of extent.
func NewUniform(extent gfx.Extent2D, angle float32) Uniform {
	aspect := float32(1)
	if extent.Height != 0 {
		aspect = float32(extent.Width) / float32(extent.Height)
	}

	u := Uniform{
		Model:      glm.HomogRotate3DZ(angle),
		View:       glm.LookAt(2, 2, 2, 0, 0, 0, 0, 0, 1),
		Projection: glm.Perspective(glm.DegToRad(45), aspect, 0.1, 10),
	}
	u.Projection[5] *= -1 // Flip from OpenGl to Vulkan projection
	return u
}

// Bytes returns the uniform in the layout the shader expects.
func (u *Uniform) Bytes() []byte {
	return (*[UniformSize]byte)(unsafe.Pointer(u))[:]
}
