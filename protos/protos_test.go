// SPDX-License-Identifier: GPL-2.0-or-later

package protos

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func TestDescriptors(t *testing.T) {
	tests := []struct {
		md     protoreflect.MessageDescriptor
		name   protoreflect.Name
		number protoreflect.FieldNumber
		kind   protoreflect.Kind
	}{
		{History, "entries", 1, protoreflect.StringKind},
		{Body, "id", 1, protoreflect.Int32Kind},
		{Body, "rotation", 4, protoreflect.FloatKind},
		{Frame, "elapsed_ns", 2, protoreflect.Int64Kind},
		{Frame, "bodies", 3, protoreflect.MessageKind},
	}
	for _, test := range tests {
		f := Field(test.md, test.name)
		if f.Number() != test.number || f.Kind() != test.kind {
			t.Errorf("%s.%s = %d %v, want %d %v", test.md.Name(), test.name, f.Number(), f.Kind(), test.number, test.kind)
		}
	}
	if Field(Frame, "bodies").Message().FullName() != Body.FullName() {
		t.Errorf("Frame.bodies is not a Body")
	}
}

func TestPackedFloats(t *testing.T) {
	m := New(Body)
	l := m.Mutable(Field(Body, "position")).List()
	for _, v := range []float32{1, 2, 3} {
		l.Append(protoreflect.ValueOfFloat32(v))
	}
	b, err := proto.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	num, typ, n := protowire.ConsumeTag(b)
	if n < 0 || num != 3 || typ != protowire.BytesType {
		t.Errorf("position encoded as field %d type %d", num, typ)
	}
}
