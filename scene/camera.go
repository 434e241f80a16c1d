// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrInvalidProjection is returned by Projection.Validate.
var ErrInvalidProjection = errors.New("invalid projection")

// Projection is a perspective projection. FovY is in degrees.
type Projection struct {
	FovY   float32 `mapstructure:"fov_y"`
	Aspect float32 `mapstructure:"aspect"`
	ZNear  float32 `mapstructure:"z_near"`
	ZFar   float32 `mapstructure:"z_far"`
}

func DefaultProjection() Projection {
	return Projection{FovY: 60, Aspect: 1.25, ZNear: 0.01, ZFar: 4.5}
}

func (p Projection) Validate() error {
	switch {
	case !(p.FovY > 0 && p.FovY < 180):
		return errors.Wrapf(ErrInvalidProjection, "fov_y %v", p.FovY)
	case !(p.Aspect > 0):
		return errors.Wrapf(ErrInvalidProjection, "aspect %v", p.Aspect)
	case !(p.ZNear > 0 && p.ZFar > p.ZNear):
		return errors.Wrapf(ErrInvalidProjection, "z_near %v z_far %v", p.ZNear, p.ZFar)
	}
	return nil
}

func (p Projection) Matrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(p.FovY), p.Aspect, p.ZNear, p.ZFar)
}

// FovX returns the horizontal field of view in degrees.
func (p Projection) FovX() float32 {
	half := mgl32.DegToRad(p.FovY) / 2
	return mgl32.RadToDeg(2 * math32.Atan(math32.Tan(half)*p.Aspect))
}

// Camera looks down its local -Z axis.
type Camera struct {
	Physical
	Projection Projection
	Uniforms   Uniforms

	view mgl32.Mat4
}

func NewCamera() *Camera {
	c := &Camera{
		Physical:   NewPhysical(),
		Projection: DefaultProjection(),
		Uniforms:   Uniforms{},
	}
	c.Update()
	return c
}

// Update recomputes the view matrix from the current position and
// rotation.
func (c *Camera) Update() {
	t := mgl32.Translate3D(c.Position[0], c.Position[1], c.Position[2])
	r := c.Rotation.Normalize().Mat4()
	c.view = t.Mul4(r).Inv()
}

// ViewMatrix is the matrix of the last Update.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return c.view
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return c.Projection.Matrix()
}

// Light is a point light.
type Light struct {
	Position mgl32.Vec3
}
