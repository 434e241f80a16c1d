// SPDX-License-Identifier: GPL-2.0-or-later
package render

import (
	"github.com/go-gl/gl/v4.6-core/gl"

	"ratcave/scene"
)

var capabilities = []struct {
	state scene.GLState
	cap   uint32
}{
	{scene.DepthTest, gl.DEPTH_TEST},
	{scene.TextureCubeMapSeamless, gl.TEXTURE_CUBE_MAP_SEAMLESS},
	{scene.CullFace, gl.CULL_FACE},
}

// glCaps splits the known GL capabilities into the ones s enables and
// the ones that must be off while s is drawn.
func glCaps(s scene.GLStates) (enable, disable []uint32) {
	for _, c := range capabilities {
		if s.Has(c.state) {
			enable = append(enable, c.cap)
		} else {
			disable = append(disable, c.cap)
		}
	}
	return enable, disable
}

func applyStates(s scene.GLStates) {
	enable, disable := glCaps(s)
	for _, c := range enable {
		gl.Enable(c)
	}
	for _, c := range disable {
		gl.Disable(c)
	}
}

// quad is a full-screen rectangle as position and texcoord pairs.
var (
	quadVertices = []float32{
		-1, -1, 0, 0,
		1, -1, 1, 0,
		1, 1, 1, 1,
		-1, 1, 0, 1,
	}
	quadElements = []uint32{
		0, 1, 2,
		2, 3, 0,
	}
)

// sceneTextures picks the first cube and the first 2D texture of a mesh.
func sceneTextures(ts []scene.Texture) (cube, flat scene.Texture) {
	for _, t := range ts {
		if t.Cube() {
			if cube == nil {
				cube = t
			}
		} else if flat == nil {
			flat = t
		}
	}
	return cube, flat
}
