// SPDX-License-Identifier: GPL-2.0-or-later
package render

import (
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/pkg/errors"

	"ratcave/glh"
)

// antialias renders into a large mipmapped texture which is then
// minified into the window.
type antialias struct {
	tex  *glh.Texture2D
	fb   *glh.Framebuffer
	vao  *glh.VertexArray
	vbo  *glh.Buffer
	ebo  *glh.Buffer
	prog *glh.Program
}

func newAntialias(size int32) (*antialias, error) {
	a := &antialias{}
	var err error
	a.prog, err = glh.NewProgram(vertexTextureSource, resampleFragment)
	if err != nil {
		return nil, errors.Wrap(err, "resample program")
	}
	a.tex = glh.NewTexture2D(size, size, true)
	a.fb = glh.NewFramebuffer(size, size)
	a.fb.Bind()
	a.fb.AttachTexture2D(a.tex)
	err = a.fb.Check()
	glh.Unbind()
	if err != nil {
		return nil, errors.Wrap(err, "antialiasing framebuffer")
	}

	a.vao = glh.NewVertexArray()
	a.vao.Bind()
	a.vbo = glh.NewBuffer(glh.ArrayBuffer)
	a.vbo.Bind()
	a.vbo.SetData(4*len(quadVertices), glh.Ptr(quadVertices))
	a.ebo = glh.NewBuffer(glh.ElementArrayBuffer)
	a.ebo.Bind()
	a.ebo.SetData(4*len(quadElements), glh.Ptr(quadElements))
	gl.EnableVertexAttribArray(0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.BindVertexArray(0)
	return a, nil
}

// resample draws the texture over the whole bound framebuffer.
func (a *antialias) resample(width, height int32) {
	a.tex.GenerateMipmap()
	gl.Viewport(0, 0, width, height)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	a.prog.Use()
	a.prog.SetInt("tex", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	a.tex.Bind()
	a.vao.Bind()
	gl.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}
