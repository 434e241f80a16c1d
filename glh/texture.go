// SPDX-License-Identifier: GPL-2.0-or-later
package glh

import (
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/gopxl/mainthread/v2"
)

type texture struct {
	id uint32
}

type Texture2D struct {
	texture
	width, height int32
	mipmap        bool
}

type TextureCube struct {
	texture
	size int32
}

func (t *texture) ID() uint32 {
	return t.id
}

func deleteTexture(id uint32) {
	mainthread.CallNonBlock(func() {
		gl.DeleteTextures(1, &id)
	})
}

func genTexture[T any](owner *T, t *texture) {
	gl.GenTextures(1, &t.id)
	track(owner, t.id, deleteTexture)
}

// NewTexture2D allocates an empty RGBA8 texture. With mipmap set the
// minification filter samples the mip chain, which GenerateMipmap fills.
func NewTexture2D(width, height int32, mipmap bool) *Texture2D {
	t := &Texture2D{width: width, height: height, mipmap: mipmap}
	genTexture(t, &t.texture)
	t.Bind()
	levels := int32(1)
	if mipmap {
		for s := max(width, height); s > 1; s /= 2 {
			levels++
		}
	}
	gl.TexStorage2D(gl.TEXTURE_2D, levels, gl.RGBA8, width, height)
	minFilter := int32(gl.LINEAR)
	if mipmap {
		minFilter = gl.LINEAR_MIPMAP_LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return t
}

func (t *Texture2D) Bind() {
	gl.BindTexture(gl.TEXTURE_2D, t.id)
}

func (t *Texture2D) Cube() bool { return false }

func (t *Texture2D) Size() (int32, int32) { return t.width, t.height }

func (t *Texture2D) GenerateMipmap() {
	if !t.mipmap {
		return
	}
	t.Bind()
	gl.GenerateMipmap(gl.TEXTURE_2D)
}

// NewTextureCube allocates six empty square RGBA8 faces.
func NewTextureCube(size int32) *TextureCube {
	t := &TextureCube{size: size}
	genTexture(t, &t.texture)
	t.Bind()
	gl.TexStorage2D(gl.TEXTURE_CUBE_MAP, 1, gl.RGBA8, size, size)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	return t
}

func (t *TextureCube) Bind() {
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, t.id)
}

func (t *TextureCube) Cube() bool { return true }

func (t *TextureCube) Size() int32 { return t.size }
