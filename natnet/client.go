// SPDX-License-Identifier: GPL-2.0-or-later

package natnet

import (
	"context"
	"log"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

var (
	// ErrNoRigidBodies means the server did not describe any rigid body.
	ErrNoRigidBodies = errors.New("not detecting rigid bodies. Turn RigidBody Streaming On in the Motive Streaming Pane")
	// ErrUnknownRigidBody is returned for names the server never described.
	ErrUnknownRigidBody = errors.New("unknown rigid body")
)

// Pose is the latest known state of a named rigid body.
type Pose struct {
	ID        int32
	Name      string
	Position  mgl32.Vec3
	Rotation  mgl32.Quat
	MeanError float32
	Valid     bool
	// Seen is false until the first frame containing the body arrived.
	Seen bool
}

type Config struct {
	ServerAddr       string
	LocalAddr        string
	CommandPort      int
	DataPort         int
	Multicast        bool
	MulticastAddr    string
	HandshakeTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ServerAddr:       "127.0.0.1",
		CommandPort:      1510,
		DataPort:         1511,
		Multicast:        true,
		MulticastAddr:    "239.255.42.99",
		HandshakeTimeout: 3 * time.Second,
	}
}

// Client receives rigid body data from a NatNet server (e.g. Motive).
// All accessors are safe for concurrent use.
type Client struct {
	cfg    Config
	server *net.UDPAddr
	cmd    *net.UDPConn
	data   *net.UDPConn

	wg sync.WaitGroup

	infoCh chan ServerInfo
	defsCh chan Descriptions

	mu         sync.RWMutex
	info       ServerInfo
	version    Version
	byName     map[string]int32
	bodies     map[int32]*Pose
	frame      int32
	frames     uint64
	firstFrame chan struct{}
}

// Dial connects to the server, fetches the model definitions and starts
// receiving frames. The returned client must be closed.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultConfig().HandshakeTimeout
	}
	server, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(cfg.ServerAddr, strconv.Itoa(cfg.CommandPort)))
	if err != nil {
		return nil, errors.Wrapf(err, "resolve natnet server %s", cfg.ServerAddr)
	}
	var local *net.UDPAddr
	if cfg.LocalAddr != "" {
		local = &net.UDPAddr{IP: net.ParseIP(cfg.LocalAddr)}
	}
	cmdConn, err := net.ListenUDP("udp4", local)
	if err != nil {
		return nil, errors.Wrap(err, "open natnet command socket")
	}
	c := &Client{
		cfg:        cfg,
		server:     server,
		cmd:        cmdConn,
		infoCh:     make(chan ServerInfo, 1),
		defsCh:     make(chan Descriptions, 1),
		version:    DefaultVersion,
		byName:     make(map[string]int32),
		bodies:     make(map[int32]*Pose),
		firstFrame: make(chan struct{}),
	}
	if cfg.Multicast {
		if c.data, err = listenMulticast(cfg); err != nil {
			cmdConn.Close()
			return nil, err
		}
	}

	c.wg.Add(1)
	go c.readLoop(c.cmd)
	if c.data != nil {
		c.wg.Add(1)
		go c.readLoop(c.data)
	}

	if err := c.handshake(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func listenMulticast(cfg Config) (*net.UDPConn, error) {
	group := &net.UDPAddr{IP: net.ParseIP(cfg.MulticastAddr), Port: cfg.DataPort}
	if group.IP == nil {
		return nil, errors.Errorf("invalid multicast address %q", cfg.MulticastAddr)
	}
	var ifi *net.Interface
	if cfg.LocalAddr != "" {
		var err error
		if ifi, err = interfaceByAddr(net.ParseIP(cfg.LocalAddr)); err != nil {
			return nil, err
		}
	}
	conn, err := net.ListenMulticastUDP("udp4", ifi, group)
	if err != nil {
		return nil, errors.Wrapf(err, "join multicast group %v", group)
	}
	return conn, nil
}

func interfaceByAddr(ip net.IP) (*net.Interface, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "list interfaces")
	}
	for i := range ifs {
		addrs, err := ifs[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if n, ok := a.(*net.IPNet); ok && n.IP.Equal(ip) {
				return &ifs[i], nil
			}
		}
	}
	return nil, errors.Errorf("no interface with address %v", ip)
}

func (c *Client) send(b []byte) error {
	_, err := c.cmd.WriteToUDP(b, c.server)
	return err
}

func (c *Client) handshake(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
	defer cancel()
	if err := c.send(connectPacket()); err != nil {
		return errors.Wrap(err, "send connect")
	}
	select {
	case info := <-c.infoCh:
		log.Printf("natnet: connected to %s %v, NatNet %v", info.AppName, info.AppVersion, info.NatNetVersion)
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for natnet server info")
	}
	if err := c.send(requestModelDefPacket()); err != nil {
		return errors.Wrap(err, "request model definitions")
	}
	select {
	case ds := <-c.defsCh:
		log.Printf("natnet: %d rigid bodies described", len(ds.RigidBodies))
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for natnet model definitions")
	}
	return nil
}

// readLoop receives packets until Close closes conn.
func (c *Client) readLoop(conn *net.UDPConn) {
	defer c.wg.Done()
	buf := make([]byte, maxPacketSize)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Printf("natnet: read: %v", err)
			}
			return
		}
		if err := c.dispatch(buf[:n]); err != nil {
			log.Printf("natnet: %v", err)
		}
	}
}

func (c *Client) dispatch(b []byte) error {
	id, payload, err := splitPacket(b)
	if err != nil {
		return err
	}
	switch id {
	case MsgServerInfo:
		si, err := parseServerInfo(payload)
		if err != nil {
			return errors.Wrap(err, "server info")
		}
		c.mu.Lock()
		c.info = si
		if si.NatNetVersion[0] != 0 {
			c.version = si.NatNetVersion
		}
		c.mu.Unlock()
		select {
		case c.infoCh <- si:
		default:
		}
	case MsgModelDef:
		ds, err := parseModelDef(payload, c.Version())
		if err != nil {
			return errors.Wrap(err, "model definitions")
		}
		c.setDescriptions(ds)
		select {
		case c.defsCh <- ds:
		default:
		}
	case MsgFrameOfData:
		f, err := parseFrame(payload, c.Version())
		if err != nil {
			return errors.Wrap(err, "frame of data")
		}
		c.applyFrame(f)
	case MsgMessageString:
		r := newReader(payload)
		s, _ := r.ReadString()
		log.Printf("natnet: server message: %s", s)
	case MsgResponse:
	case MsgUnrecognized:
		log.Printf("natnet: server did not recognize a request")
	default:
		return errors.Errorf("unexpected message id %d", id)
	}
	return nil
}

func (c *Client) setDescriptions(ds Descriptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range ds.RigidBodies {
		c.byName[d.Name] = d.ID
		p, ok := c.bodies[d.ID]
		if !ok {
			p = &Pose{ID: d.ID, Rotation: mgl32.QuatIdent()}
			c.bodies[d.ID] = p
		}
		p.Name = d.Name
	}
}

func (c *Client) applyFrame(f Frame) {
	c.mu.Lock()
	for _, rb := range f.RigidBodies {
		p, ok := c.bodies[rb.ID]
		if !ok {
			// not described yet, keep the data under its id
			p = &Pose{ID: rb.ID}
			c.bodies[rb.ID] = p
		}
		p.Position = rb.Position
		p.Rotation = rb.Rotation
		p.MeanError = rb.MeanError
		p.Valid = rb.Valid
		p.Seen = true
	}
	c.frame = f.Number
	c.frames++
	first := c.frames == 1
	c.mu.Unlock()
	if first {
		close(c.firstFrame)
	}
}

// RequestModelDef asks the server to resend its descriptions, e.g. after
// rigid bodies were added in Motive.
func (c *Client) RequestModelDef() error {
	return c.send(requestModelDefPacket())
}

func (c *Client) Version() Version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

func (c *Client) ServerInfo() ServerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info
}

// Frame returns the number of the latest frame of data.
func (c *Client) Frame() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame
}

// Names returns the sorted names of all described rigid bodies.
func (c *Client) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RigidBodies returns the latest state of all described rigid bodies,
// sorted by id.
func (c *Client) RigidBodies() []Pose {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ps := make([]Pose, 0, len(c.byName))
	for _, id := range c.byName {
		ps = append(ps, *c.bodies[id])
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	return ps
}

// Pose returns the latest state of the rigid body called name.
func (c *Client) Pose(name string) (Pose, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byName[name]
	if !ok {
		return Pose{}, errors.Wrap(ErrUnknownRigidBody, name)
	}
	return *c.bodies[id], nil
}

// WaitForFrame blocks until the first frame of data was received.
func (c *Client) WaitForFrame(ctx context.Context) error {
	select {
	case <-c.firstFrame:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for natnet frame")
	}
}

func (c *Client) Close() error {
	err := c.cmd.Close()
	if c.data != nil {
		if derr := c.data.Close(); err == nil {
			err = derr
		}
	}
	c.wg.Wait()
	return err
}
