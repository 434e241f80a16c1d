// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms are named shader values. The slice length selects the GL type:
// 1 float, 2/3/4 vec, 9 mat3, 16 mat4.
type Uniforms map[string][]float32

func (u Uniforms) SetFloat(name string, v float32) {
	u[name] = []float32{v}
}

func (u Uniforms) SetVec3(name string, v mgl32.Vec3) {
	u[name] = []float32{v[0], v[1], v[2]}
}

func (u Uniforms) Float(name string) (float32, bool) {
	v, ok := u[name]
	if !ok || len(v) != 1 {
		return 0, false
	}
	return v[0], true
}

func (u Uniforms) Vec3(name string) (mgl32.Vec3, bool) {
	v, ok := u[name]
	if !ok || len(v) != 3 {
		return mgl32.Vec3{}, false
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, true
}

// Clone returns a deep copy.
func (u Uniforms) Clone() Uniforms {
	c := make(Uniforms, len(u))
	for k, v := range u {
		c[k] = append([]float32(nil), v...)
	}
	return c
}
