// SPDX-License-Identifier: GPL-2.0-or-later

package record

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/proto"

	"ratcave/natnet"
)

var (
	arena = natnet.Pose{
		ID:       1,
		Name:     "Arena",
		Position: mgl32.Vec3{0.1, 0.2, 0.3},
		Rotation: mgl32.Quat{W: 0.5, V: mgl32.Vec3{0.5, 0.5, 0.5}},
		Valid:    true,
		Seen:     true,
	}
	rat = natnet.Pose{
		ID:       2,
		Name:     "Rat",
		Position: mgl32.Vec3{-1, 0.05, 2},
		Rotation: mgl32.QuatIdent(),
		Seen:     true,
	}
)

func TestRecordAndRead(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf)
	unseen := natnet.Pose{ID: 3, Name: "Ghost"}
	if err := r.Record(0, 10, []natnet.Pose{arena, rat, unseen}); err != nil {
		t.Fatal(err)
	}
	if err := r.Record(5*time.Millisecond, 11, []natnet.Pose{arena}); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	frames, err := ReadFrames(&buf)
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames", len(frames))
	}
	f := frames[0]
	if f.Number != 10 || f.Elapsed != 0 || len(f.Poses) != 2 {
		t.Fatalf("frame 0 = %+v", f)
	}
	if f.Poses[0] != arena {
		t.Errorf("arena = %+v, want %+v", f.Poses[0], arena)
	}
	// Rat has MeanError 0 and is not valid.
	if f.Poses[1] != rat {
		t.Errorf("rat = %+v, want %+v", f.Poses[1], rat)
	}
	if frames[1].Number != 11 || frames[1].Elapsed != 5*time.Millisecond {
		t.Errorf("frame 1 = %+v", frames[1])
	}
}

func TestReadFramesErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated", []byte{10, 8, 1}},
		{"huge", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
		{"bad floats", append([]byte{7, 26, 5, 26, 3}, 1, 2, 3)},
	}
	for _, test := range tests {
		if _, err := ReadFrames(bytes.NewReader(test.data)); err == nil {
			t.Errorf("%s: no error", test.name)
		}
	}
}

func TestReadShortPosition(t *testing.T) {
	m := frameMessage(Frame{Number: 1, Poses: []natnet.Pose{arena}})
	body := m.Get(frameBodies).List().Get(0).Message()
	body.Mutable(bodyPosition).List().Truncate(2)
	var buf bytes.Buffer
	if _, err := protodelim.MarshalTo(&buf, m); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFrames(&buf); errors.Cause(err) != ErrMalformed {
		t.Errorf("got %v, want %v", err, ErrMalformed)
	}
}

func TestReadSkipsUnknownFields(t *testing.T) {
	b, err := proto.Marshal(frameMessage(Frame{Number: 4}))
	if err != nil {
		t.Fatal(err)
	}
	// field 9, varint 1
	b = append(b, 9<<3, 1)
	var buf bytes.Buffer
	buf.WriteByte(byte(len(b)))
	buf.Write(b)
	frames, err := ReadFrames(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 || frames[0].Number != 4 {
		t.Errorf("frames = %+v", frames)
	}
}

func newTestPlayer(t *testing.T, frames []Frame) (*Player, *time.Time) {
	t.Helper()
	now := time.Unix(1000, 0)
	p, err := NewPlayer(frames)
	if err != nil {
		t.Fatal(err)
	}
	p.now = func() time.Time { return now }
	p.Restart()
	return p, &now
}

func TestPlayer(t *testing.T) {
	moved := rat
	moved.Position = mgl32.Vec3{1, 1, 1}
	frames := []Frame{
		{Number: 1, Elapsed: time.Second, Poses: []natnet.Pose{arena}},
		{Number: 2, Elapsed: time.Second + 10*time.Millisecond, Poses: []natnet.Pose{arena, rat}},
		{Number: 3, Elapsed: time.Second + 20*time.Millisecond, Poses: []natnet.Pose{arena, moved}},
	}
	p, now := newTestPlayer(t, frames)

	if names := p.Names(); len(names) != 2 || names[0] != "Arena" || names[1] != "Rat" {
		t.Errorf("Names = %v", names)
	}
	if p.Frame() != 1 {
		t.Errorf("Frame = %d, want 1", p.Frame())
	}
	r, err := p.Pose("Rat")
	if err != nil {
		t.Fatal(err)
	}
	if r.Seen || r.ID != 2 {
		t.Errorf("rat before first sighting = %+v", r)
	}

	*now = now.Add(15 * time.Millisecond)
	if r, _ := p.Pose("Rat"); r != rat {
		t.Errorf("rat at 15ms = %+v", r)
	}
	*now = now.Add(time.Hour)
	if r, _ := p.Pose("Rat"); r != moved {
		t.Errorf("rat after end = %+v", r)
	}
	if _, err := p.Pose("Mouse"); errors.Cause(err) != natnet.ErrUnknownRigidBody {
		t.Errorf("Pose(Mouse) = %v", err)
	}
}

func TestPlayerLoop(t *testing.T) {
	frames := []Frame{
		{Number: 1, Elapsed: 0, Poses: []natnet.Pose{arena}},
		{Number: 2, Elapsed: 10 * time.Millisecond, Poses: []natnet.Pose{arena}},
		{Number: 3, Elapsed: 20 * time.Millisecond, Poses: []natnet.Pose{arena}},
	}
	p, now := newTestPlayer(t, frames)
	p.Loop = true
	*now = now.Add(25 * time.Millisecond)
	if p.Frame() != 1 {
		t.Errorf("Frame = %d, want 1", p.Frame())
	}
	*now = now.Add(10 * time.Millisecond)
	if p.Frame() != 2 {
		t.Errorf("Frame = %d, want 2", p.Frame())
	}
}

func TestNewPlayerEmpty(t *testing.T) {
	if _, err := NewPlayer(nil); errors.Cause(err) != ErrMalformed {
		t.Errorf("NewPlayer(nil) = %v", err)
	}
}

func TestCreateAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.rec")
	r, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Record(0, 1, []natnet.Pose{arena, rat}); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	p, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if a, err := p.Pose("Arena"); err != nil || a != arena {
		t.Errorf("Pose(Arena) = %+v, %v", a, err)
	}
}
