// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Physical is a position, rotation and scale in 3D space.
type Physical struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewPhysical() Physical {
	return Physical{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// SetRotationEuler sets the rotation from intrinsic x, y, z angles in
// degrees.
func (p *Physical) SetRotationEuler(x, y, z float32) {
	p.Rotation = mgl32.AnglesToQuat(mgl32.DegToRad(x), mgl32.DegToRad(y), mgl32.DegToRad(z), mgl32.XYZ)
}

// LocalMatrix is T*R*S.
func (p *Physical) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(p.Position[0], p.Position[1], p.Position[2])
	r := p.Rotation.Normalize().Mat4()
	s := mgl32.Scale3D(p.Scale[0], p.Scale[1], p.Scale[2])
	return t.Mul4(r).Mul4(s)
}
