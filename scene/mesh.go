// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrParentCycle is returned when parenting would make a mesh its own
// ancestor.
var ErrParentCycle = errors.New("mesh parent cycle")

// Texture is a GPU texture owned by the renderer.
type Texture interface {
	ID() uint32
	Cube() bool
}

// Mesh is a triangle list with its transform. Vertices, Normals and
// TexCoords are per triangle corner; TexCoords may be empty.
type Mesh struct {
	Physical
	Name      string
	Vertices  []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Uniforms  Uniforms
	Textures  []Texture
	Visible   bool

	parent *Mesh
}

func NewMesh(name string, vertices, normals []mgl32.Vec3, texCoords []mgl32.Vec2) *Mesh {
	return &Mesh{
		Physical:  NewPhysical(),
		Name:      name,
		Vertices:  vertices,
		Normals:   normals,
		TexCoords: texCoords,
		Uniforms:  Uniforms{"diffuse": {0.8, 0.8, 0.8}, "flat_shading": {0}},
		Visible:   true,
	}
}

func (m *Mesh) Parent() *Mesh {
	return m.parent
}

// SetParent attaches m to p. A nil p detaches the mesh.
func (m *Mesh) SetParent(p *Mesh) error {
	if err := m.CanParent(p); err != nil {
		return err
	}
	m.parent = p
	return nil
}

// CanParent reports the error SetParent(p) would return without changing m.
func (m *Mesh) CanParent(p *Mesh) error {
	for a := p; a != nil; a = a.parent {
		if a == m {
			return errors.Wrapf(ErrParentCycle, "%s under %s", m.Name, p.Name)
		}
	}
	return nil
}

// ModelMatrix is the world transform including all parents.
func (m *Mesh) ModelMatrix() mgl32.Mat4 {
	l := m.LocalMatrix()
	if m.parent == nil {
		return l
	}
	return m.parent.ModelMatrix().Mul4(l)
}

func (m *Mesh) NormalMatrix() mgl32.Mat3 {
	return m.ModelMatrix().Mat3().Inv().Transpose()
}

// HasCubeTexture reports whether any attached texture is a cube map.
func (m *Mesh) HasCubeTexture() bool {
	for _, t := range m.Textures {
		if t.Cube() {
			return true
		}
	}
	return false
}
