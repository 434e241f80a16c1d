// SPDX-License-Identifier: GPL-2.0-or-later

// Package protos describes the messages ratcave stores on disk. The
// descriptors are built at init and used through dynamicpb, so no protoc
// step is needed.
//
//	message History { repeated string entries = 1; }
//	message Body {
//	  int32 id = 1;
//	  string name = 2;
//	  repeated float position = 3;  // x y z
//	  repeated float rotation = 4;  // x y z w
//	  bool valid = 5;
//	}
//	message Frame {
//	  int32 number = 1;
//	  int64 elapsed_ns = 2;
//	  repeated Body bodies = 3;
//	}
package protos

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

var (
	History protoreflect.MessageDescriptor
	Body    protoreflect.MessageDescriptor
	Frame   protoreflect.MessageDescriptor
)

type fieldType = descriptorpb.FieldDescriptorProto_Type

const (
	optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
)

func field(name string, num int32, label descriptorpb.FieldDescriptorProto_Label, typ fieldType) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  label.Enum(),
		Type:   typ.Enum(),
	}
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
}

func init() {
	bodies := field("bodies", 3, repeated, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	bodies.TypeName = proto.String(".ratcave.Body")
	fd, err := protodesc.NewFile(&descriptorpb.FileDescriptorProto{
		Name:    proto.String("ratcave.proto"),
		Package: proto.String("ratcave"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("History",
				field("entries", 1, repeated, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
			message("Body",
				field("id", 1, optional, descriptorpb.FieldDescriptorProto_TYPE_INT32),
				field("name", 2, optional, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				field("position", 3, repeated, descriptorpb.FieldDescriptorProto_TYPE_FLOAT),
				field("rotation", 4, repeated, descriptorpb.FieldDescriptorProto_TYPE_FLOAT),
				field("valid", 5, optional, descriptorpb.FieldDescriptorProto_TYPE_BOOL)),
			message("Frame",
				field("number", 1, optional, descriptorpb.FieldDescriptorProto_TYPE_INT32),
				field("elapsed_ns", 2, optional, descriptorpb.FieldDescriptorProto_TYPE_INT64),
				bodies),
		},
	}, nil)
	if err != nil {
		panic(err)
	}
	msgs := fd.Messages()
	History = msgs.ByName("History")
	Body = msgs.ByName("Body")
	Frame = msgs.ByName("Frame")
}

// New returns an empty message of type md.
func New(md protoreflect.MessageDescriptor) *dynamicpb.Message {
	return dynamicpb.NewMessage(md)
}

// Field returns the field called name of md. It panics for unknown names.
func Field(md protoreflect.MessageDescriptor, name protoreflect.Name) protoreflect.FieldDescriptor {
	f := md.Fields().ByName(name)
	if f == nil {
		panic("protos: no field " + string(name) + " in " + string(md.FullName()))
	}
	return f
}
