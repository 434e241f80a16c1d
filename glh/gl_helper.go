// SPDX-License-Identifier: GPL-2.0-or-later

package glh

import (
	"runtime"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gopxl/mainthread/v2"
	"github.com/pkg/errors"
)

const (
	ArrayBuffer        = gl.ARRAY_BUFFER
	ElementArrayBuffer = gl.ELEMENT_ARRAY_BUFFER
)

// track releases h with release once owner is unreachable.
func track[T, H any](owner *T, h H, release func(H)) {
	runtime.AddCleanup(owner, release, h)
}

type Program struct {
	prog     uint32
	uniforms map[string]int32
}

func NewProgram(vertex, fragment string) (*Program, error) {
	vert, err := GetShader(vertex, gl.VERTEX_SHADER)
	if err != nil {
		return nil, errors.Wrap(err, "vertex shader")
	}
	frag, err := GetShader(fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return nil, errors.Wrap(err, "fragment shader")
	}
	p := &Program{
		prog:     gl.CreateProgram(),
		uniforms: make(map[string]int32),
	}
	gl.AttachShader(p.prog, vert)
	gl.AttachShader(p.prog, frag)
	gl.LinkProgram(p.prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	var status int32
	gl.GetProgramiv(p.prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(p.prog, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(p.prog, logLength, nil, gl.Str(log))
		gl.DeleteProgram(p.prog)
		return nil, errors.Errorf("failed to link program: %v", log)
	}
	track(p, p.prog, deleteProgram)
	return p, nil
}

func deleteProgram(p uint32) {
	mainthread.CallNonBlock(func() {
		gl.DeleteProgram(p)
	})
}

func (p *Program) Use() {
	gl.UseProgram(p.prog)
}

func (p *Program) GetAttribLocation(n string) uint32 {
	return uint32(gl.GetAttribLocation(p.prog, gl.Str(n+"\x00")))
}

// GetUniformLocation returns the cached location of n, -1 if the program
// has no such active uniform.
func (p *Program) GetUniformLocation(n string) int32 {
	if l, ok := p.uniforms[n]; ok {
		return l
	}
	l := gl.GetUniformLocation(p.prog, gl.Str(n+"\x00"))
	p.uniforms[n] = l
	return l
}

// SetUniform uploads v choosing the GL type by its length. The program
// needs to be in use.
func (p *Program) SetUniform(name string, v []float32) {
	l := p.GetUniformLocation(name)
	if l < 0 || len(v) == 0 {
		return
	}
	switch len(v) {
	case 1:
		gl.Uniform1fv(l, 1, &v[0])
	case 2:
		gl.Uniform2fv(l, 1, &v[0])
	case 3:
		gl.Uniform3fv(l, 1, &v[0])
	case 4:
		gl.Uniform4fv(l, 1, &v[0])
	case 9:
		gl.UniformMatrix3fv(l, 1, false, &v[0])
	case 16:
		gl.UniformMatrix4fv(l, 1, false, &v[0])
	}
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	if l := p.GetUniformLocation(name); l >= 0 {
		gl.UniformMatrix4fv(l, 1, false, &m[0])
	}
}

func (p *Program) SetMat3(name string, m mgl32.Mat3) {
	if l := p.GetUniformLocation(name); l >= 0 {
		gl.UniformMatrix3fv(l, 1, false, &m[0])
	}
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	if l := p.GetUniformLocation(name); l >= 0 {
		gl.Uniform3f(l, v[0], v[1], v[2])
	}
}

func (p *Program) SetFloat(name string, f float32) {
	if l := p.GetUniformLocation(name); l >= 0 {
		gl.Uniform1f(l, f)
	}
}

func (p *Program) SetInt(name string, i int32) {
	if l := p.GetUniformLocation(name); l >= 0 {
		gl.Uniform1i(l, i)
	}
}

type Buffer struct {
	buf    uint32
	target uint32
}

func NewBuffer(target uint32) *Buffer {
	b := &Buffer{
		target: target,
	}
	gl.GenBuffers(1, &b.buf)
	track(b, b.buf, deleteBuffer)
	return b
}

func deleteBuffer(buf uint32) {
	mainthread.CallNonBlock(func() {
		gl.DeleteBuffers(1, &buf)
	})
}

func (b *Buffer) Bind() {
	gl.BindBuffer(b.target, b.buf)
}

// SetData sets the data for this buffer. It needs to be bound first.
func (b *Buffer) SetData(size int, data unsafe.Pointer) {
	gl.BufferData(b.target, size, data, gl.STATIC_DRAW)
}

func Ptr(data interface{}) unsafe.Pointer {
	return gl.Ptr(data)
}

type VertexArray struct {
	a uint32
}

func NewVertexArray() *VertexArray {
	va := &VertexArray{}
	gl.GenVertexArrays(1, &va.a)
	track(va, va.a, deleteVertexArray)
	return va
}

func deleteVertexArray(va uint32) {
	mainthread.CallNonBlock(func() {
		gl.DeleteVertexArrays(1, &va)
	})
}

func (va *VertexArray) Bind() {
	gl.BindVertexArray(va.a)
}

func GetShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(src)
	defer free()
	length := int32(len(src))
	gl.ShaderSource(shader, 1, csource, &length)
	gl.CompileShader(shader)
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, errors.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}
