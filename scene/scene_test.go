// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func TestLocalMatrix(t *testing.T) {
	p := NewPhysical()
	p.Position = mgl32.Vec3{1, 2, 3}
	p.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	p.Scale = mgl32.Vec3{2, 2, 2}
	// +X scaled by 2, rotated to -Z, moved by position
	got := p.LocalMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	want := mgl32.Vec3{1, 2, 1}
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("LocalMatrix * (1,0,0) = %v, want %v", got, want)
	}
}

func TestParenting(t *testing.T) {
	arena := NewMesh("arena", nil, nil, nil)
	arena.Position = mgl32.Vec3{10, 0, 0}
	tree := NewMesh("tree", nil, nil, nil)
	tree.Position = mgl32.Vec3{0, 1, 0}
	if err := tree.SetParent(arena); err != nil {
		t.Fatal(err)
	}
	got := tree.ModelMatrix().Col(3).Vec3()
	if got != (mgl32.Vec3{10, 1, 0}) {
		t.Errorf("world position = %v", got)
	}
	if err := arena.SetParent(tree); errors.Cause(err) != ErrParentCycle {
		t.Errorf("cycle accepted: %v", err)
	}
	if err := arena.SetParent(arena); errors.Cause(err) != ErrParentCycle {
		t.Errorf("self parent accepted: %v", err)
	}
	if err := arena.CanParent(tree); errors.Cause(err) != ErrParentCycle || arena.Parent() != nil {
		t.Errorf("CanParent(tree) = %v, parent %v", err, arena.Parent())
	}
	if err := tree.SetParent(nil); err != nil || tree.Parent() != nil {
		t.Errorf("detach failed: %v", err)
	}
}

func TestCameraView(t *testing.T) {
	c := NewCamera()
	c.Position = mgl32.Vec3{0, 0, 5}
	c.Update()
	// the origin is 5 units in front of the camera
	got := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	if !got.ApproxEqualThreshold(mgl32.Vec3{0, 0, -5}, 1e-5) {
		t.Errorf("view * origin = %v", got)
	}
}

func TestProjectionValidate(t *testing.T) {
	for _, tc := range []struct {
		p  Projection
		ok bool
	}{
		{DefaultProjection(), true},
		{Projection{FovY: 90, Aspect: 1, ZNear: 0.004, ZFar: 3}, true},
		{Projection{FovY: 0, Aspect: 1, ZNear: 0.1, ZFar: 1}, false},
		{Projection{FovY: 180, Aspect: 1, ZNear: 0.1, ZFar: 1}, false},
		{Projection{FovY: 40, Aspect: 0, ZNear: 0.1, ZFar: 1}, false},
		{Projection{FovY: 40, Aspect: 1, ZNear: 1, ZFar: 1}, false},
		{Projection{FovY: 40, Aspect: 1, ZNear: -1, ZFar: 1}, false},
	} {
		err := tc.p.Validate()
		if (err == nil) != tc.ok {
			t.Errorf("%+v.Validate() = %v", tc.p, err)
		}
		if err != nil && errors.Cause(err) != ErrInvalidProjection {
			t.Errorf("%+v.Validate() cause = %v", tc.p, errors.Cause(err))
		}
	}
}

func TestFovX(t *testing.T) {
	p := Projection{FovY: 90, Aspect: 1, ZNear: 1, ZFar: 2}
	if got := p.FovX(); mgl32.Abs(got-90) > 1e-3 {
		t.Errorf("FovX = %v, want 90", got)
	}
}

func TestCubeFaceView(t *testing.T) {
	pos := mgl32.Vec3{1, 1, 1}
	for _, face := range CubeFaces() {
		dir := cubeFaces[face].dir
		got := CubeFaceView(pos, face).Mul4x1(pos.Add(dir).Vec4(1)).Vec3()
		if !got.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
			t.Errorf("face %d: direction maps to %v, want (0,0,-1)", face, got)
		}
	}
}

func TestGLStates(t *testing.T) {
	s := DefaultGLStates()
	w := s.Without(CullFace)
	if w.Has(CullFace) || !w.Has(DepthTest) || len(w) != len(s)-1 {
		t.Errorf("Without(CullFace) = %v", w)
	}
	if !s.Has(CullFace) {
		t.Errorf("Without modified its receiver")
	}
}

func TestNewScene(t *testing.T) {
	a := New("a", nil, nil)
	b := New("b", nil, nil)
	if a.Camera == nil || a.Light == nil {
		t.Fatalf("defaults missing: %+v", a)
	}
	if a.ID == b.ID {
		t.Errorf("scenes share id %v", a.ID)
	}
	m := NewMesh("m", nil, nil, nil)
	a.Meshes = append(a.Meshes, m)
	if got, ok := a.Mesh("m"); !ok || got != m {
		t.Errorf("Mesh(m) = %v, %v", got, ok)
	}
}

func TestUniforms(t *testing.T) {
	u := Uniforms{}
	u.SetVec3("playerPos", mgl32.Vec3{1, 2, 3})
	u.SetFloat("flat_shading", 1)
	c := u.Clone()
	u.SetFloat("flat_shading", 0)
	if v, ok := c.Vec3("playerPos"); !ok || v != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("Vec3 = %v, %v", v, ok)
	}
	if f, _ := c.Float("flat_shading"); f != 1 {
		t.Errorf("clone shares storage, got %v", f)
	}
	if _, ok := c.Float("playerPos"); ok {
		t.Errorf("Float accepted a vec3")
	}
}

func TestReadCamera(t *testing.T) {
	cam, err := ReadCamera(strings.NewReader(`{
		"position": [0.1, 1.5, -0.2],
		"rotation": [0, 0, 0, 1],
		"projection": {"fov_y": 41.5, "z_far": 10}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if cam.Position != (mgl32.Vec3{0.1, 1.5, -0.2}) {
		t.Errorf("position = %v", cam.Position)
	}
	if cam.Projection.FovY != 41.5 || cam.Projection.ZFar != 10 || cam.Projection.Aspect != DefaultProjection().Aspect {
		t.Errorf("projection = %+v", cam.Projection)
	}
	for _, bad := range []string{
		`{"position": [1, 2]}`,
		`{"rotation": [1, 2, 3]}`,
		`{"projection": {"fov_y": -1}}`,
		`not json`,
	} {
		if _, err := ReadCamera(strings.NewReader(bad)); err == nil {
			t.Errorf("ReadCamera(%s) accepted", bad)
		}
	}
	cam, err = ReadCamera(strings.NewReader(`{"rotation_euler": [0, 90, 0]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	if !cam.Rotation.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("euler rotation = %v, want %v", cam.Rotation, want)
	}
}
