// SPDX-License-Identifier: GPL-2.0-or-later

package natnet

import (
	"bytes"
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
)

// message builds the payload of a natnet packet.
type message struct {
	buf bytes.Buffer
}

func (m *message) Bytes() []byte {
	return m.buf.Bytes()
}

func (m *message) Len() int {
	return m.buf.Len()
}

func (m *message) write(data interface{}) {
	binary.Write(&m.buf, binary.LittleEndian, data)
}

func (m *message) WriteUint8(c uint8) {
	m.write(c)
}

func (m *message) WriteInt16(c int16) {
	m.write(c)
}

func (m *message) WriteInt32(c int32) {
	m.write(c)
}

func (m *message) WriteFloat(c float32) {
	m.write(c)
}

func (m *message) WriteVec3(v mgl32.Vec3) {
	m.write([3]float32(v))
}

func (m *message) WriteQuat(q mgl32.Quat) {
	m.write([4]float32{q.V[0], q.V[1], q.V[2], q.W})
}

func (m *message) WriteString(c string) {
	if len(c) != 0 {
		m.buf.WriteString(c)
	}
	m.WriteUint8(0)
}

// WriteFixedString writes c NUL padded (and truncated) to n bytes.
func (m *message) WriteFixedString(c string, n int) {
	b := make([]byte, n)
	copy(b[:n-1], c)
	m.buf.Write(b)
}

func (m *message) WriteBytes(b []byte) {
	m.buf.Write(b)
}

// packet prefixes payload with the natnet header.
func packet(id uint16, payload []byte) []byte {
	b := make([]byte, 4, 4+len(payload))
	binary.LittleEndian.PutUint16(b[0:], id)
	binary.LittleEndian.PutUint16(b[2:], uint16(len(payload)))
	return append(b, payload...)
}
