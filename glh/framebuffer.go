// SPDX-License-Identifier: GPL-2.0-or-later
package glh

import (
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/gopxl/mainthread/v2"
	"github.com/pkg/errors"
)

// Framebuffer is an offscreen render target with its own depth buffer.
// Color attachments are swapped in per pass.
type Framebuffer struct {
	fbo           uint32
	depth         uint32
	width, height int32
}

type fbHandles struct {
	fbo, depth uint32
}

func deleteFramebuffer(h fbHandles) {
	mainthread.CallNonBlock(func() {
		gl.DeleteFramebuffers(1, &h.fbo)
		gl.DeleteRenderbuffers(1, &h.depth)
	})
}

func NewFramebuffer(width, height int32) *Framebuffer {
	f := &Framebuffer{width: width, height: height}
	gl.GenFramebuffers(1, &f.fbo)
	gl.GenRenderbuffers(1, &f.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, f.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	f.Bind()
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, f.depth)
	Unbind()
	track(f, fbHandles{f.fbo, f.depth}, deleteFramebuffer)
	return f
}

func (f *Framebuffer) Size() (int32, int32) { return f.width, f.height }

// Bind makes f the draw target and sets the viewport to cover it.
func (f *Framebuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.fbo)
	gl.Viewport(0, 0, f.width, f.height)
}

// Unbind returns drawing to the default framebuffer.
func Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// AttachTexture2D needs f to be bound.
func (f *Framebuffer) AttachTexture2D(t *Texture2D) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.id, 0)
}

// AttachCubeFace needs f to be bound. face is 0..5 in GL order
// (+X, -X, +Y, -Y, +Z, -Z).
func (f *Framebuffer) AttachCubeFace(t *TextureCube, face int) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), t.id, 0)
}

// Check needs f to be bound.
func (f *Framebuffer) Check() error {
	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		return errors.Errorf("framebuffer incomplete: 0x%x", s)
	}
	return nil
}
