// SPDX-License-Identifier: GPL-2.0-or-later

package natnet

import (
	"encoding/binary"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Message ids of the NatNet protocol.
const (
	MsgConnect            uint16 = 0
	MsgServerInfo         uint16 = 1
	MsgRequest            uint16 = 2
	MsgResponse           uint16 = 3
	MsgRequestModelDef    uint16 = 4
	MsgModelDef           uint16 = 5
	MsgRequestFrameOfData uint16 = 6
	MsgFrameOfData        uint16 = 7
	MsgMessageString      uint16 = 8
	MsgUnrecognized       uint16 = 100
)

const (
	maxPacketSize = 65503
	maxNameLength = 256

	datasetMarkerSet = 0
	datasetRigidBody = 1
	datasetSkeleton  = 2

	// rigid body params bit for valid tracking
	paramTrackingValid = 0x01
)

// Version is major, minor, build, revision.
type Version [4]uint8

// DefaultVersion is assumed until the server announced its version.
var DefaultVersion = Version{3, 0, 0, 0}

func (v Version) AtLeast(major, minor uint8) bool {
	if v[0] != major {
		return v[0] > major
	}
	return v[1] >= minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}

// ServerInfo is the answer to a connect request.
type ServerInfo struct {
	AppName       string
	AppVersion    Version
	NatNetVersion Version
}

// RigidBodyDescription is the static part of a rigid body as sent in the
// model definitions.
type RigidBodyDescription struct {
	Name     string
	ID       int32
	ParentID int32
	Offset   mgl32.Vec3
	Markers  []mgl32.Vec3
}

// Descriptions holds the model definitions of a server.
type Descriptions struct {
	MarkerSets  []string
	RigidBodies []RigidBodyDescription
	Skeletons   []string
}

// RigidBodyData is the per frame state of one rigid body.
type RigidBodyData struct {
	ID        int32
	Position  mgl32.Vec3
	Rotation  mgl32.Quat
	MeanError float32
	Valid     bool
}

// Frame is the part of a frame of data this package evaluates.
type Frame struct {
	Number      int32
	RigidBodies []RigidBodyData
}

func splitPacket(b []byte) (uint16, []byte, error) {
	if len(b) < 4 {
		return 0, nil, errors.Wrapf(ErrMalformed, "packet of %d bytes", len(b))
	}
	id := binary.LittleEndian.Uint16(b[0:])
	size := int(binary.LittleEndian.Uint16(b[2:]))
	if size > len(b)-4 {
		return 0, nil, errors.Wrapf(ErrMalformed, "message %d announces %d bytes, got %d", id, size, len(b)-4)
	}
	return id, b[4 : 4+size], nil
}

func parseServerInfo(p []byte) (ServerInfo, error) {
	var si ServerInfo
	r := newReader(p)
	var err error
	if si.AppName, err = r.ReadFixedString(maxNameLength); err != nil {
		return si, errors.Wrap(err, "server name")
	}
	for i := range si.AppVersion {
		if si.AppVersion[i], err = r.ReadUint8(); err != nil {
			return si, errors.Wrap(err, "app version")
		}
	}
	for i := range si.NatNetVersion {
		if si.NatNetVersion[i], err = r.ReadUint8(); err != nil {
			return si, errors.Wrap(err, "natnet version")
		}
	}
	return si, nil
}

func readRigidBodyDescription(r *reader, v Version) (RigidBodyDescription, error) {
	var d RigidBodyDescription
	var err error
	if v.AtLeast(2, 0) {
		if d.Name, err = r.ReadString(); err != nil {
			return d, err
		}
	}
	if d.ID, err = r.ReadInt32(); err != nil {
		return d, err
	}
	if d.ParentID, err = r.ReadInt32(); err != nil {
		return d, err
	}
	if d.Offset, err = r.ReadVec3(); err != nil {
		return d, err
	}
	if !v.AtLeast(3, 0) {
		return d, nil
	}
	n, err := r.ReadCount(12)
	if err != nil {
		return d, err
	}
	d.Markers = make([]mgl32.Vec3, n)
	for i := range d.Markers {
		if d.Markers[i], err = r.ReadVec3(); err != nil {
			return d, err
		}
	}
	// required active labels
	if err := r.Skip(4 * n); err != nil {
		return d, err
	}
	if v.AtLeast(4, 0) {
		for i := 0; i < n; i++ {
			if _, err := r.ReadString(); err != nil {
				return d, err
			}
		}
	}
	return d, nil
}

// blockSize reads the byte size that NatNet 4.1 and later put in front of
// every frame block and model definition dataset.
func blockSize(r *reader, v Version) (int, bool, error) {
	if !v.AtLeast(4, 1) {
		return 0, false, nil
	}
	n, err := r.ReadCount(1)
	if err != nil {
		return 0, false, errors.Wrap(err, "block size")
	}
	return n, true, nil
}

// checkBlock verifies that a sized block was consumed exactly.
func checkBlock(r *reader, start, size int, sized bool) error {
	if got := start - r.Len(); sized && got != size {
		return errors.Wrapf(ErrMalformed, "block of %d bytes, parsed %d", size, got)
	}
	return nil
}

func parseModelDef(p []byte, v Version) (Descriptions, error) {
	var ds Descriptions
	r := newReader(p)
	n, err := r.ReadCount(4)
	if err != nil {
		return ds, errors.Wrap(err, "dataset count")
	}
	for i := 0; i < n; i++ {
		typ, err := r.ReadInt32()
		if err != nil {
			return ds, errors.Wrapf(err, "dataset %d", i)
		}
		size, sized, err := blockSize(r, v)
		if err != nil {
			return ds, errors.Wrapf(err, "dataset %d", i)
		}
		start := r.Len()
		switch typ {
		case datasetMarkerSet:
			name, err := r.ReadString()
			if err != nil {
				return ds, errors.Wrapf(err, "marker set %d", i)
			}
			nm, err := r.ReadCount(1)
			if err != nil {
				return ds, errors.Wrapf(err, "marker set %s", name)
			}
			for j := 0; j < nm; j++ {
				if _, err := r.ReadString(); err != nil {
					return ds, errors.Wrapf(err, "marker set %s", name)
				}
			}
			ds.MarkerSets = append(ds.MarkerSets, name)
		case datasetRigidBody:
			d, err := readRigidBodyDescription(r, v)
			if err != nil {
				return ds, errors.Wrapf(err, "rigid body %d", i)
			}
			ds.RigidBodies = append(ds.RigidBodies, d)
		case datasetSkeleton:
			name, err := r.ReadString()
			if err != nil {
				return ds, errors.Wrapf(err, "skeleton %d", i)
			}
			if _, err := r.ReadInt32(); err != nil {
				return ds, errors.Wrapf(err, "skeleton %s", name)
			}
			nb, err := r.ReadCount(20)
			if err != nil {
				return ds, errors.Wrapf(err, "skeleton %s", name)
			}
			for j := 0; j < nb; j++ {
				// skeleton bones are not streamed as standalone rigid bodies
				if _, err := readRigidBodyDescription(r, v); err != nil {
					return ds, errors.Wrapf(err, "skeleton %s", name)
				}
			}
			ds.Skeletons = append(ds.Skeletons, name)
		default:
			if !sized {
				return ds, errors.Wrapf(ErrMalformed, "unknown dataset type %d", typ)
			}
			// force plates, devices, cameras and assets
			if err := r.Skip(size); err != nil {
				return ds, errors.Wrapf(err, "dataset type %d", typ)
			}
		}
		if err := checkBlock(r, start, size, sized); err != nil {
			return ds, errors.Wrapf(err, "dataset %d", i)
		}
	}
	return ds, nil
}

// skipMarkerBlock skips a counted block of entries of at least elemSize
// bytes, as a whole when its size is streamed.
func skipMarkerBlock(r *reader, v Version, elemSize int, skip func(r *reader, n int) error) error {
	n, err := r.ReadCount(elemSize)
	if err != nil {
		return err
	}
	size, sized, err := blockSize(r, v)
	if err != nil {
		return err
	}
	if sized {
		return r.Skip(size)
	}
	return skip(r, n)
}

func skipMarkers(r *reader, n int) error {
	return r.Skip(12 * n)
}

func skipMarkerSets(r *reader, n int) error {
	for i := 0; i < n; i++ {
		if _, err := r.ReadString(); err != nil {
			return errors.Wrap(err, "marker set name")
		}
		nm, err := r.ReadCount(12)
		if err != nil {
			return errors.Wrap(err, "marker set")
		}
		if err := skipMarkers(r, nm); err != nil {
			return errors.Wrap(err, "marker set")
		}
	}
	return nil
}

func parseFrame(p []byte, v Version) (Frame, error) {
	var f Frame
	r := newReader(p)
	var err error
	if f.Number, err = r.ReadInt32(); err != nil {
		return f, errors.Wrap(err, "frame number")
	}
	if err := skipMarkerBlock(r, v, 5, skipMarkerSets); err != nil {
		return f, errors.Wrap(err, "marker sets")
	}
	if err := skipMarkerBlock(r, v, 12, skipMarkers); err != nil {
		return f, errors.Wrap(err, "unlabeled markers")
	}
	nBodies, err := r.ReadCount(32)
	if err != nil {
		return f, errors.Wrap(err, "rigid bodies")
	}
	size, sized, err := blockSize(r, v)
	if err != nil {
		return f, errors.Wrap(err, "rigid bodies")
	}
	start := r.Len()
	f.RigidBodies = make([]RigidBodyData, nBodies)
	for i := range f.RigidBodies {
		rb := &f.RigidBodies[i]
		if rb.ID, err = r.ReadInt32(); err != nil {
			return f, errors.Wrapf(err, "rigid body %d", i)
		}
		if rb.Position, err = r.ReadVec3(); err != nil {
			return f, errors.Wrapf(err, "rigid body %d", rb.ID)
		}
		if rb.Rotation, err = r.ReadQuat(); err != nil {
			return f, errors.Wrapf(err, "rigid body %d", rb.ID)
		}
		if !v.AtLeast(3, 0) {
			n, err := r.ReadCount(12)
			if err != nil {
				return f, errors.Wrapf(err, "rigid body %d markers", rb.ID)
			}
			size := 12 * n
			if v.AtLeast(2, 0) {
				// marker ids and sizes
				size += 8 * n
			}
			if err := r.Skip(size); err != nil {
				return f, errors.Wrapf(err, "rigid body %d markers", rb.ID)
			}
		}
		rb.Valid = true
		if v.AtLeast(2, 0) {
			if rb.MeanError, err = r.ReadFloat32(); err != nil {
				return f, errors.Wrapf(err, "rigid body %d", rb.ID)
			}
		}
		if v.AtLeast(2, 6) {
			params, err := r.ReadInt16()
			if err != nil {
				return f, errors.Wrapf(err, "rigid body %d", rb.ID)
			}
			rb.Valid = params&paramTrackingValid != 0
		}
	}
	if err := checkBlock(r, start, size, sized); err != nil {
		return f, errors.Wrap(err, "rigid bodies")
	}
	return f, nil
}

func connectPacket() []byte {
	m := message{}
	m.WriteString("Ping")
	return packet(MsgConnect, m.Bytes())
}

func requestModelDefPacket() []byte {
	return packet(MsgRequestModelDef, nil)
}
