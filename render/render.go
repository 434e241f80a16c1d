// SPDX-License-Identifier: GPL-2.0-or-later
package render

import (
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"ratcave/glh"
	"ratcave/scene"
)

type Config struct {
	CubeSize int32
	// AASize is the edge of the supersampling texture, 0 disables
	// antialiasing.
	AASize int32
	// WindowSize returns the drawable size of the default framebuffer.
	WindowSize func() (int32, int32)
}

type meshBuffers struct {
	vao      *glh.VertexArray
	vertices *glh.Buffer
	normals  *glh.Buffer
	uvs      *glh.Buffer
	count    int32
}

// Renderer draws scenes with the mesh shader. It needs a current GL
// context and must only be used from the GL thread.
type Renderer struct {
	prog       *glh.Program
	meshes     map[*scene.Mesh]*meshBuffers
	cube       *glh.TextureCube
	cubeFB     *glh.Framebuffer
	aa         *antialias
	windowSize func() (int32, int32)
}

func New(cfg Config) (*Renderer, error) {
	if cfg.CubeSize <= 0 {
		return nil, errors.Errorf("invalid cube size %d", cfg.CubeSize)
	}
	prog, err := glh.NewProgram(meshVertexSource, meshFragmentSource)
	if err != nil {
		return nil, errors.Wrap(err, "mesh program")
	}
	r := &Renderer{
		prog:       prog,
		meshes:     make(map[*scene.Mesh]*meshBuffers),
		windowSize: cfg.WindowSize,
	}
	r.cube = glh.NewTextureCube(cfg.CubeSize)
	r.cubeFB = glh.NewFramebuffer(cfg.CubeSize, cfg.CubeSize)
	r.cubeFB.Bind()
	r.cubeFB.AttachCubeFace(r.cube, 0)
	err = r.cubeFB.Check()
	glh.Unbind()
	if err != nil {
		return nil, errors.Wrap(err, "cube framebuffer")
	}
	if cfg.AASize > 0 {
		r.aa, err = newAntialias(cfg.AASize)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// CubeTexture is the target of Draw360ToTexture.
func (r *Renderer) CubeTexture() scene.Texture {
	return r.cube
}

func (r *Renderer) Antialiasing() bool {
	return r.aa != nil
}

func (r *Renderer) buffers(m *scene.Mesh) *meshBuffers {
	if b, ok := r.meshes[m]; ok {
		return b
	}
	b := &meshBuffers{
		vao:   glh.NewVertexArray(),
		count: int32(len(m.Vertices)),
	}
	b.vao.Bind()
	upload := func(loc uint32, size int32, n int, ptr any) *glh.Buffer {
		buf := glh.NewBuffer(glh.ArrayBuffer)
		buf.Bind()
		buf.SetData(n*int(size)*4, glh.Ptr(ptr))
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointer(loc, size, gl.FLOAT, false, 0, gl.PtrOffset(0))
		return buf
	}
	if len(m.Vertices) > 0 {
		b.vertices = upload(0, 3, len(m.Vertices), &m.Vertices[0][0])
	}
	if len(m.Normals) == len(m.Vertices) && len(m.Normals) > 0 {
		b.normals = upload(1, 3, len(m.Normals), &m.Normals[0][0])
	} else {
		gl.VertexAttrib3f(1, 0, 0, 1)
	}
	if len(m.TexCoords) == len(m.Vertices) && len(m.TexCoords) > 0 {
		b.uvs = upload(2, 2, len(m.TexCoords), &m.TexCoords[0][0])
	} else {
		gl.VertexAttrib2f(2, 0, 0)
	}
	gl.BindVertexArray(0)
	r.meshes[m] = b
	return b
}

// Forget drops the GPU buffers of m. They are uploaded again on its
// next draw.
func (r *Renderer) Forget(m *scene.Mesh) {
	delete(r.meshes, m)
}

func (r *Renderer) drawMeshes(s *scene.Scene, view, projection mgl32.Mat4) {
	applyStates(s.GLStates)
	gl.ClearColor(s.BgColor[0], s.BgColor[1], s.BgColor[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.prog.Use()
	r.prog.SetMat4("view_matrix", view)
	r.prog.SetMat4("projection_matrix", projection)
	if s.Light != nil {
		r.prog.SetVec3("light_position", s.Light.Position)
	}
	r.prog.SetInt("cubemap", 0)
	r.prog.SetInt("tex", 1)
	for name, v := range s.Camera.Uniforms {
		r.prog.SetUniform(name, v)
	}
	for _, m := range s.Meshes {
		if !m.Visible || len(m.Vertices) == 0 {
			continue
		}
		r.drawMesh(m)
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) drawMesh(m *scene.Mesh) {
	b := r.buffers(m)
	r.prog.SetMat4("model_matrix", m.ModelMatrix())
	r.prog.SetMat3("normal_matrix", m.NormalMatrix())
	for name, v := range m.Uniforms {
		r.prog.SetUniform(name, v)
	}
	cube, flat := sceneTextures(m.Textures)
	r.prog.SetInt("use_cubemap", 0)
	r.prog.SetInt("use_texture", 0)
	if cube != nil {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, cube.ID())
		r.prog.SetInt("use_cubemap", 1)
	}
	if flat != nil && b.uvs != nil {
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, flat.ID())
		r.prog.SetInt("use_texture", 1)
	}
	b.vao.Bind()
	gl.DrawArrays(gl.TRIANGLES, 0, b.count)
	gl.ActiveTexture(gl.TEXTURE0)
}

// DrawScene draws s from its camera into the window.
func (r *Renderer) DrawScene(s *scene.Scene) {
	glh.Unbind()
	w, h := r.windowSize()
	gl.Viewport(0, 0, w, h)
	r.drawMeshes(s, s.Camera.ViewMatrix(), s.Camera.ProjectionMatrix())
}

// DrawSceneAA draws s into the supersampling texture and resamples it
// into the window. Without antialiasing it is DrawScene.
func (r *Renderer) DrawSceneAA(s *scene.Scene) {
	if r.aa == nil {
		r.DrawScene(s)
		return
	}
	r.aa.fb.Bind()
	r.drawMeshes(s, s.Camera.ViewMatrix(), s.Camera.ProjectionMatrix())
	glh.Unbind()
	w, h := r.windowSize()
	r.aa.resample(w, h)
}

// Draw360ToTexture renders s into all six faces of the cube texture
// from the position of its camera.
func (r *Renderer) Draw360ToTexture(s *scene.Scene) {
	pos := s.Camera.Position
	proj := scene.CubeProjection(s.Camera.Projection.ZNear, s.Camera.Projection.ZFar)
	r.cubeFB.Bind()
	for _, face := range scene.CubeFaces() {
		r.cubeFB.AttachCubeFace(r.cube, int(face))
		r.drawMeshes(s, scene.CubeFaceView(pos, face), proj)
	}
	glh.Unbind()
}

// ReadPixels returns the RGBA content of the window, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int32, int32) {
	glh.Unbind()
	w, h := r.windowSize()
	data := make([]byte, int(w)*int(h)*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data))
	return data, w, h
}
