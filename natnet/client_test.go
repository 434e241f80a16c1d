// SPDX-License-Identifier: GPL-2.0-or-later

package natnet

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// fakeServer answers connect and model definition requests on a loopback
// socket and sends frames in unicast mode to the requesting client.
type fakeServer struct {
	conn   *net.UDPConn
	defs   Descriptions
	frames []Frame
	v      Version
	done   chan struct{}
}

func newFakeServer(t *testing.T, defs Descriptions, frames ...Frame) *fakeServer {
	return newFakeServerVersion(t, Version{3, 0, 0, 0}, defs, frames...)
}

func newFakeServerVersion(t *testing.T, v Version, defs Descriptions, frames ...Frame) *fakeServer {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	s := &fakeServer{conn: conn, defs: defs, frames: frames, v: v, done: make(chan struct{})}
	go s.serve()
	t.Cleanup(func() {
		conn.Close()
		<-s.done
	})
	return s
}

func (s *fakeServer) port() int {
	return s.conn.LocalAddr().(*net.UDPAddr).Port
}

func (s *fakeServer) serve() {
	defer close(s.done)
	buf := make([]byte, maxPacketSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		id, _, err := splitPacket(buf[:n])
		if err != nil {
			continue
		}
		switch id {
		case MsgConnect:
			s.conn.WriteToUDP(encodeServerInfo(ServerInfo{AppName: "Motive", NatNetVersion: s.v}), addr)
		case MsgRequestModelDef:
			s.conn.WriteToUDP(encodeModelDef(s.defs, s.v), addr)
			for _, f := range s.frames {
				s.conn.WriteToUDP(encodeFrame(f, s.v), addr)
			}
		}
	}
}

func testConfig(port int) Config {
	cfg := DefaultConfig()
	cfg.CommandPort = port
	cfg.Multicast = false
	cfg.HandshakeTimeout = 2 * time.Second
	return cfg
}

func TestClientReceivesPoses(t *testing.T) {
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	s := newFakeServer(t,
		Descriptions{RigidBodies: []RigidBodyDescription{{Name: "Rat", ID: 2}, {Name: "Arena", ID: 1}}},
		Frame{Number: 7, RigidBodies: []RigidBodyData{
			{ID: 1, Position: mgl32.Vec3{1, 2, 3}, Rotation: rot, Valid: true},
		}})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, testConfig(s.port()))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if err := c.WaitForFrame(ctx); err != nil {
		t.Fatal(err)
	}
	if got := c.Names(); len(got) != 2 || got[0] != "Arena" || got[1] != "Rat" {
		t.Errorf("Names() = %q", got)
	}
	if c.Frame() != 7 {
		t.Errorf("Frame() = %d, want 7", c.Frame())
	}
	arena, err := c.Pose("Arena")
	if err != nil {
		t.Fatal(err)
	}
	if !arena.Seen || arena.Position != (mgl32.Vec3{1, 2, 3}) || !arena.Rotation.ApproxEqual(rot) {
		t.Errorf("Arena pose = %+v", arena)
	}
	rat, err := c.Pose("Rat")
	if err != nil {
		t.Fatal(err)
	}
	if rat.Seen {
		t.Errorf("Rat was never streamed but is marked seen: %+v", rat)
	}
	if bs := c.RigidBodies(); len(bs) != 2 || bs[0].Name != "Arena" || bs[1].Name != "Rat" {
		t.Errorf("RigidBodies() = %+v", bs)
	}
	if _, err := c.Pose("Mouse"); errors.Cause(err) != ErrUnknownRigidBody {
		t.Errorf("Pose(Mouse) err = %v", err)
	}
	if c.ServerInfo().AppName != "Motive" {
		t.Errorf("ServerInfo = %+v", c.ServerInfo())
	}
}

func TestClientNatNet41(t *testing.T) {
	s := newFakeServerVersion(t, Version{4, 1, 0, 0},
		Descriptions{RigidBodies: []RigidBodyDescription{{Name: "Arena", ID: 1, Markers: []mgl32.Vec3{{1, 0, 0}}}}},
		Frame{Number: 3, RigidBodies: []RigidBodyData{
			{ID: 1, Position: mgl32.Vec3{0, 0.5, 0}, Rotation: mgl32.QuatIdent(), Valid: true},
		}})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, testConfig(s.port()))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.WaitForFrame(ctx); err != nil {
		t.Fatal(err)
	}
	if v := c.Version(); v != (Version{4, 1, 0, 0}) {
		t.Errorf("Version() = %v", v)
	}
	p, err := c.Pose("Arena")
	if err != nil || !p.Seen || !p.Valid || p.Position != (mgl32.Vec3{0, 0.5, 0}) {
		t.Errorf("Pose(Arena) = %+v, %v", p, err)
	}

	closed := make(chan error, 1)
	go func() { closed <- c.Close() }()
	select {
	case err := <-closed:
		if err != nil {
			t.Errorf("Close() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not stop the read loop")
	}
}

func TestDialTimeout(t *testing.T) {
	// a socket nobody answers on
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	cfg := testConfig(conn.LocalAddr().(*net.UDPAddr).Port)
	cfg.HandshakeTimeout = 100 * time.Millisecond
	if _, err := Dial(context.Background(), cfg); errors.Cause(err) != context.DeadlineExceeded {
		t.Errorf("Dial err = %v, want deadline exceeded", err)
	}
}

func TestDispatchRejectsUnknownMessage(t *testing.T) {
	c := &Client{
		version:    DefaultVersion,
		byName:     map[string]int32{},
		bodies:     map[int32]*Pose{},
		firstFrame: make(chan struct{}),
		infoCh:     make(chan ServerInfo, 1),
		defsCh:     make(chan Descriptions, 1),
	}
	if err := c.dispatch(packet(55, nil)); err == nil {
		t.Errorf("unknown message accepted")
	}
	// frames for undescribed bodies are kept by id
	if err := c.dispatch(encodeFrame(Frame{Number: 1, RigidBodies: []RigidBodyData{{ID: 9, Rotation: mgl32.QuatIdent()}}}, DefaultVersion)); err != nil {
		t.Fatal(err)
	}
	if err := c.dispatch(encodeModelDef(Descriptions{RigidBodies: []RigidBodyDescription{{Name: "Late", ID: 9}}}, DefaultVersion)); err != nil {
		t.Fatal(err)
	}
	p, err := c.Pose("Late")
	if err != nil || !p.Seen {
		t.Errorf("Pose(Late) = %+v, %v", p, err)
	}
}
