// SPDX-License-Identifier: GPL-2.0-or-later

package record

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"ratcave/natnet"
	"ratcave/protos"
)

var (
	frameNumber  = protos.Field(protos.Frame, "number")
	frameElapsed = protos.Field(protos.Frame, "elapsed_ns")
	frameBodies  = protos.Field(protos.Frame, "bodies")

	bodyID       = protos.Field(protos.Body, "id")
	bodyName     = protos.Field(protos.Body, "name")
	bodyPosition = protos.Field(protos.Body, "position")
	bodyRotation = protos.Field(protos.Body, "rotation")
	bodyValid    = protos.Field(protos.Body, "valid")
)

var ErrMalformed = errors.New("malformed recording")

// Frame is one recorded tracking frame.
type Frame struct {
	Number  int32
	Elapsed time.Duration
	Poses   []natnet.Pose
}

func setFloats(m *dynamicpb.Message, fd protoreflect.FieldDescriptor, fs ...float32) {
	l := m.Mutable(fd).List()
	for _, f := range fs {
		l.Append(protoreflect.ValueOfFloat32(f))
	}
}

func floats(m protoreflect.Message, fd protoreflect.FieldDescriptor, n int) ([]float32, error) {
	l := m.Get(fd).List()
	if l.Len() != n {
		return nil, errors.Wrapf(ErrMalformed, "%s: want %d floats, got %d", fd.Name(), n, l.Len())
	}
	fs := make([]float32, n)
	for i := range fs {
		fs[i] = float32(l.Get(i).Float())
	}
	return fs, nil
}

func bodyMessage(p natnet.Pose) *dynamicpb.Message {
	m := protos.New(protos.Body)
	m.Set(bodyID, protoreflect.ValueOfInt32(p.ID))
	m.Set(bodyName, protoreflect.ValueOfString(p.Name))
	setFloats(m, bodyPosition, p.Position[0], p.Position[1], p.Position[2])
	setFloats(m, bodyRotation, p.Rotation.V[0], p.Rotation.V[1], p.Rotation.V[2], p.Rotation.W)
	m.Set(bodyValid, protoreflect.ValueOfBool(p.Valid))
	return m
}

func frameMessage(f Frame) *dynamicpb.Message {
	m := protos.New(protos.Frame)
	m.Set(frameNumber, protoreflect.ValueOfInt32(f.Number))
	m.Set(frameElapsed, protoreflect.ValueOfInt64(int64(f.Elapsed)))
	l := m.Mutable(frameBodies).List()
	for _, p := range f.Poses {
		l.Append(protoreflect.ValueOfMessage(bodyMessage(p)))
	}
	return m
}

func pose(m protoreflect.Message) (natnet.Pose, error) {
	p := natnet.Pose{
		ID:    int32(m.Get(bodyID).Int()),
		Name:  m.Get(bodyName).String(),
		Valid: m.Get(bodyValid).Bool(),
		Seen:  true,
	}
	pos, err := floats(m, bodyPosition, 3)
	if err != nil {
		return p, err
	}
	p.Position = mgl32.Vec3{pos[0], pos[1], pos[2]}
	rot, err := floats(m, bodyRotation, 4)
	if err != nil {
		return p, err
	}
	p.Rotation = mgl32.Quat{W: rot[3], V: mgl32.Vec3{rot[0], rot[1], rot[2]}}
	return p, nil
}

func frame(m protoreflect.Message) (Frame, error) {
	f := Frame{
		Number:  int32(m.Get(frameNumber).Int()),
		Elapsed: time.Duration(m.Get(frameElapsed).Int()),
	}
	l := m.Get(frameBodies).List()
	for i := 0; i < l.Len(); i++ {
		p, err := pose(l.Get(i).Message())
		if err != nil {
			return f, errors.Wrapf(err, "body %d", i)
		}
		f.Poses = append(f.Poses, p)
	}
	return f, nil
}
