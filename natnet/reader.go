// SPDX-License-Identifier: GPL-2.0-or-later

package natnet

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ErrMalformed is returned for packets whose counts or lengths do not fit
// the received data.
var ErrMalformed = errors.New("malformed natnet packet")

type reader struct {
	r *bytes.Reader
}

func newReader(data []byte) *reader {
	return &reader{bytes.NewReader(data)}
}

func (q *reader) ReadUint8() (uint8, error) {
	var r uint8
	err := binary.Read(q.r, binary.LittleEndian, &r)
	return r, err
}

func (q *reader) ReadInt16() (int16, error) {
	var r int16
	err := binary.Read(q.r, binary.LittleEndian, &r)
	return r, err
}

func (q *reader) ReadUint16() (uint16, error) {
	var r uint16
	err := binary.Read(q.r, binary.LittleEndian, &r)
	return r, err
}

func (q *reader) ReadInt32() (int32, error) {
	var r int32
	err := binary.Read(q.r, binary.LittleEndian, &r)
	return r, err
}

func (q *reader) ReadFloat32() (float32, error) {
	var r float32
	err := binary.Read(q.r, binary.LittleEndian, &r)
	return r, err
}

func (q *reader) ReadVec3() (mgl32.Vec3, error) {
	var v [3]float32
	err := binary.Read(q.r, binary.LittleEndian, &v)
	return mgl32.Vec3(v), err
}

// ReadQuat reads a quaternion sent as qx, qy, qz, qw.
func (q *reader) ReadQuat() (mgl32.Quat, error) {
	var v [4]float32
	if err := binary.Read(q.r, binary.LittleEndian, &v); err != nil {
		return mgl32.QuatIdent(), err
	}
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}, nil
}

// ReadString reads a NUL terminated string.
func (q *reader) ReadString() (string, error) {
	sb := strings.Builder{}
	for {
		b, err := q.r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		sb.WriteByte(b)
	}
	return sb.String(), nil
}

// ReadFixedString reads a NUL padded string of exactly n bytes.
func (q *reader) ReadFixedString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(q.r, b); err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

// ReadCount reads an int32 element count and checks that count elements
// of elemSize bytes can still be in the packet.
func (q *reader) ReadCount(elemSize int) (int, error) {
	n, err := q.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 || int64(n)*int64(elemSize) > int64(q.r.Len()) {
		return 0, errors.Wrapf(ErrMalformed, "count %d with %d bytes left", n, q.r.Len())
	}
	return int(n), nil
}

func (q *reader) Skip(n int) error {
	if n > q.r.Len() {
		return errors.Wrapf(ErrMalformed, "skip %d with %d bytes left", n, q.r.Len())
	}
	_, err := q.r.Seek(int64(n), io.SeekCurrent)
	return err
}

// Len returns the number of bytes of the unread portion of the slice.
func (q *reader) Len() int {
	return q.r.Len()
}
