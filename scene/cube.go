// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CubeFace indexes the faces of a cube map in GL order.
type CubeFace int

const (
	PositiveX CubeFace = iota
	NegativeX
	PositiveY
	NegativeY
	PositiveZ
	NegativeZ
)

var cubeFaces = [6]struct {
	dir, up mgl32.Vec3
}{
	PositiveX: {mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	NegativeX: {mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	PositiveY: {mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	NegativeY: {mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	PositiveZ: {mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
	NegativeZ: {mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
}

func CubeFaces() []CubeFace {
	return []CubeFace{PositiveX, NegativeX, PositiveY, NegativeY, PositiveZ, NegativeZ}
}

// CubeFaceView is the world aligned view matrix of face seen from pos.
// The camera rotation does not take part: the cube map is sampled with
// world space directions.
func CubeFaceView(pos mgl32.Vec3, face CubeFace) mgl32.Mat4 {
	f := cubeFaces[face]
	return mgl32.LookAtV(pos, pos.Add(f.dir), f.up)
}

// CubeProjection is the 90 degree square projection used for every face.
func CubeProjection(zNear, zFar float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(90), 1, zNear, zFar)
}
