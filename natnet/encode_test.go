// SPDX-License-Identifier: GPL-2.0-or-later

package natnet

func encodeServerInfo(si ServerInfo) []byte {
	m := message{}
	m.WriteFixedString(si.AppName, maxNameLength)
	m.WriteBytes(si.AppVersion[:])
	m.WriteBytes(si.NatNetVersion[:])
	return packet(MsgServerInfo, m.Bytes())
}

func writeRigidBodyDescription(m *message, d RigidBodyDescription, v Version) {
	if v.AtLeast(2, 0) {
		m.WriteString(d.Name)
	}
	m.WriteInt32(d.ID)
	m.WriteInt32(d.ParentID)
	m.WriteVec3(d.Offset)
	if !v.AtLeast(3, 0) {
		return
	}
	m.WriteInt32(int32(len(d.Markers)))
	for _, p := range d.Markers {
		m.WriteVec3(p)
	}
	for i := range d.Markers {
		m.WriteInt32(int32(i + 1))
	}
	if v.AtLeast(4, 0) {
		for range d.Markers {
			m.WriteString("marker")
		}
	}
}

// writeBlock writes the body built by fill, preceded by its byte size from
// NatNet 4.1 on.
func writeBlock(m *message, v Version, fill func(b *message)) {
	b := message{}
	fill(&b)
	if v.AtLeast(4, 1) {
		m.WriteInt32(int32(b.Len()))
	}
	m.WriteBytes(b.Bytes())
}

func encodeModelDef(ds Descriptions, v Version) []byte {
	m := message{}
	m.WriteInt32(int32(len(ds.MarkerSets) + len(ds.RigidBodies) + len(ds.Skeletons)))
	for _, name := range ds.MarkerSets {
		m.WriteInt32(datasetMarkerSet)
		writeBlock(&m, v, func(b *message) {
			b.WriteString(name)
			b.WriteInt32(2)
			b.WriteString("m1")
			b.WriteString("m2")
		})
	}
	for _, d := range ds.RigidBodies {
		m.WriteInt32(datasetRigidBody)
		writeBlock(&m, v, func(b *message) { writeRigidBodyDescription(b, d, v) })
	}
	for i, name := range ds.Skeletons {
		m.WriteInt32(datasetSkeleton)
		writeBlock(&m, v, func(b *message) {
			b.WriteString(name)
			b.WriteInt32(int32(100 + i))
			b.WriteInt32(1)
			writeRigidBodyDescription(b, RigidBodyDescription{Name: name + "_bone", ID: 1}, v)
		})
	}
	return packet(MsgModelDef, m.Bytes())
}

func encodeFrame(f Frame, v Version) []byte {
	m := message{}
	m.WriteInt32(f.Number)
	// one marker set with one marker
	m.WriteInt32(1)
	writeBlock(&m, v, func(b *message) {
		b.WriteString("all")
		b.WriteInt32(1)
		b.WriteVec3([3]float32{1, 2, 3})
	})
	// two unlabeled markers
	m.WriteInt32(2)
	writeBlock(&m, v, func(b *message) {
		b.WriteVec3([3]float32{4, 5, 6})
		b.WriteVec3([3]float32{7, 8, 9})
	})
	m.WriteInt32(int32(len(f.RigidBodies)))
	writeBlock(&m, v, func(b *message) {
		for _, rb := range f.RigidBodies {
			writeRigidBodyData(b, rb, v)
		}
	})
	// skeletons and the rest of the frame are not evaluated
	m.WriteInt32(0)
	return packet(MsgFrameOfData, m.Bytes())
}

func writeRigidBodyData(m *message, rb RigidBodyData, v Version) {
	m.WriteInt32(rb.ID)
	m.WriteVec3(rb.Position)
	m.WriteQuat(rb.Rotation)
	if !v.AtLeast(3, 0) {
		m.WriteInt32(1)
		m.WriteVec3([3]float32{0, 0, 0})
		if v.AtLeast(2, 0) {
			m.WriteInt32(1)
			m.WriteFloat(0.01)
		}
	}
	if v.AtLeast(2, 0) {
		m.WriteFloat(rb.MeanError)
	}
	if v.AtLeast(2, 6) {
		var params int16
		if rb.Valid {
			params |= paramTrackingValid
		}
		m.WriteInt16(params)
	}
}
