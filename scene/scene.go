// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// GLState is a GL capability enabled while a scene is drawn.
type GLState int

const (
	DepthTest GLState = iota
	TextureCubeMapSeamless
	CullFace
)

func (s GLState) String() string {
	switch s {
	case DepthTest:
		return "depth_test"
	case TextureCubeMapSeamless:
		return "texture_cube_map_seamless"
	case CullFace:
		return "cull_face"
	}
	return "unknown"
}

type GLStates []GLState

func DefaultGLStates() GLStates {
	return GLStates{DepthTest, TextureCubeMapSeamless, CullFace}
}

// Without returns a copy of s without state.
func (s GLStates) Without(state GLState) GLStates {
	r := make(GLStates, 0, len(s))
	for _, st := range s {
		if st != state {
			r = append(r, st)
		}
	}
	return r
}

func (s GLStates) Has(state GLState) bool {
	for _, st := range s {
		if st == state {
			return true
		}
	}
	return false
}

type Scene struct {
	ID       uuid.UUID
	Name     string
	Meshes   []*Mesh
	Camera   *Camera
	Light    *Light
	BgColor  mgl32.Vec3
	GLStates GLStates
}

// New creates a scene. A nil camera is replaced by a default one.
func New(name string, meshes []*Mesh, camera *Camera) *Scene {
	if camera == nil {
		camera = NewCamera()
	}
	return &Scene{
		ID:       uuid.Must(uuid.NewV7()),
		Name:     name,
		Meshes:   meshes,
		Camera:   camera,
		Light:    &Light{},
		BgColor:  mgl32.Vec3{0.4, 0.4, 0.4},
		GLStates: DefaultGLStates(),
	}
}

// Mesh returns the first mesh called name.
func (s *Scene) Mesh(name string) (*Mesh, bool) {
	for _, m := range s.Meshes {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}
