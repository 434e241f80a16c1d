// SPDX-License-Identifier: GPL-2.0-or-later

// Package app binds motion capture rigid bodies to the arena mesh and the
// virtual camera and decides what gets drawn each frame.
package app

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"ratcave/natnet"
	"ratcave/scene"
)

var (
	// ErrArenaNotTracked means the arena rigid body is described but no
	// position for it arrived yet.
	ErrArenaNotTracked    = errors.New("not detecting arena position. Turn RigidBody Streaming On in the Motive Streaming Pane")
	ErrSceneNotRegistered = errors.New("scene not in vr scenes, register it first")
	ErrNilScene           = errors.New("nil scene")
)

// Tracker is the source of rigid body poses.
type Tracker interface {
	Names() []string
	Pose(name string) (natnet.Pose, error)
}

// Renderer draws scenes. All methods are called on the GL thread.
type Renderer interface {
	DrawScene(s *scene.Scene)
	DrawSceneAA(s *scene.Scene)
	Draw360ToTexture(s *scene.Scene)
	CubeTexture() scene.Texture
}

type Config struct {
	ArenaRigidBody   string
	RodentRigidBody  string
	ArenaDiffuse     mgl32.Vec3
	ArenaFlatShading float32
	BeamerAspect     float32
	BeamerFovY       float32
	BgColor          mgl32.Vec3
	Antialiasing     bool
	// FPSMode draws the virtual scene straight from the animal's point
	// of view instead of projecting it through the arena.
	FPSMode bool
	FPSFovY float32
	// CubeProjection is given to virtual scene cameras on registration.
	CubeProjection scene.Projection
}

func DefaultConfig() Config {
	return Config{
		ArenaRigidBody:   "Arena",
		RodentRigidBody:  "Rat",
		ArenaDiffuse:     mgl32.Vec3{1, 1, 1},
		ArenaFlatShading: 0,
		BeamerAspect:     1.77778,
		BeamerFovY:       41.5,
		BgColor:          mgl32.Vec3{0.6, 0, 0},
		Antialiasing:     true,
		FPSFovY:          120,
		CubeProjection: scene.Projection{
			FovY:   90,
			Aspect: 1,
			ZNear:  0.004,
			ZFar:   3,
		},
	}
}

// RegisterOptions say how a virtual scene is adapted to the arena.
type RegisterOptions struct {
	ParentToArena      bool
	MatchLightToBeamer bool
	MakeCubeCamera     bool
	FaceCulling        bool
}

func DefaultRegisterOptions() RegisterOptions {
	return RegisterOptions{
		ParentToArena:      true,
		MatchLightToBeamer: true,
		MakeCubeCamera:     true,
	}
}

// Status is the outcome of one Update.
type Status struct {
	ArenaValid    bool
	RodentTracked bool
	RodentPos     mgl32.Vec3
}

type App struct {
	cfg      Config
	tracker  Tracker
	renderer Renderer

	arena  *scene.Mesh
	active *scene.Scene

	origTextures []scene.Texture
	vrScenes     []*scene.Scene
	current      *scene.Scene
}

// CheckTracking fails when the tracker reports no rigid bodies at all or
// has no position for the arena yet.
func CheckTracking(t Tracker, arena string) error {
	if len(t.Names()) == 0 {
		return natnet.ErrNoRigidBodies
	}
	p, err := t.Pose(arena)
	if err != nil {
		return err
	}
	if !p.Seen {
		return errors.Wrap(ErrArenaNotTracked, arena)
	}
	return nil
}

// New builds the active scene seen by the projector: the arena lit from
// the beamer position, without face culling.
func New(cfg Config, t Tracker, r Renderer, arena *scene.Mesh, beamer *scene.Camera) (*App, error) {
	if arena == nil || beamer == nil {
		return nil, errors.New("arena mesh and beamer camera are required")
	}
	if err := CheckTracking(t, cfg.ArenaRigidBody); err != nil {
		return nil, err
	}
	if _, err := t.Pose(cfg.RodentRigidBody); err != nil {
		return nil, err
	}
	arena.Uniforms.SetVec3("diffuse", cfg.ArenaDiffuse)
	arena.Uniforms.SetFloat("flat_shading", cfg.ArenaFlatShading)

	beamer.Projection.Aspect = cfg.BeamerAspect
	beamer.Projection.FovY = cfg.BeamerFovY
	if err := beamer.Projection.Validate(); err != nil {
		return nil, errors.Wrap(err, "beamer")
	}
	beamer.Update()

	active := scene.New("active", []*scene.Mesh{arena}, beamer)
	active.BgColor = cfg.BgColor
	active.GLStates = active.GLStates.Without(scene.CullFace)
	active.Light.Position = beamer.Position

	a := &App{
		cfg:      cfg,
		tracker:  t,
		renderer: r,
		arena:    arena,
		active:   active,
	}
	if err := a.updateArena(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) Arena() *scene.Mesh {
	return a.arena
}

func (a *App) ActiveScene() *scene.Scene {
	return a.active
}

func (a *App) Config() Config {
	return a.cfg
}

func (a *App) updateArena() error {
	p, err := a.tracker.Pose(a.cfg.ArenaRigidBody)
	if err != nil {
		return err
	}
	a.arena.Position = p.Position
	a.arena.Rotation = p.Rotation
	return nil
}

func sum(v mgl32.Vec3) float32 {
	return v[0] + v[1] + v[2]
}

// Update moves the arena to its rigid body and, with a virtual scene
// selected, puts that scene's camera at the animal.
func (a *App) Update(dt time.Duration) (Status, error) {
	var st Status
	arena, err := a.tracker.Pose(a.cfg.ArenaRigidBody)
	if err != nil {
		return st, err
	}
	a.arena.Position = arena.Position
	a.arena.Rotation = arena.Rotation
	st.ArenaValid = arena.Valid

	rodent, err := a.tracker.Pose(a.cfg.RodentRigidBody)
	if err != nil {
		return st, err
	}
	// An all zero position is what the server sends for a lost body.
	st.RodentTracked = sum(rodent.Position) != 0
	st.RodentPos = rodent.Position
	if a.current == nil || !st.RodentTracked {
		return st, nil
	}
	cam := a.current.Camera
	cam.Position = rodent.Position
	cam.Rotation = rodent.Rotation
	cam.Update()
	cam.Uniforms.SetVec3("playerPos", cam.Position)
	a.arena.Uniforms.SetVec3("playerPos", cam.Position)
	return st, nil
}

func (a *App) Draw() {
	if a.cfg.FPSMode {
		if a.current != nil {
			a.renderer.DrawScene(a.current)
		} else {
			a.renderer.DrawScene(a.active)
		}
		return
	}
	if a.current != nil {
		a.renderer.Draw360ToTexture(a.current)
	}
	if a.cfg.Antialiasing {
		a.renderer.DrawSceneAA(a.active)
	} else {
		a.renderer.DrawScene(a.active)
	}
}

// Poses returns the current state of every rigid body the tracker knows.
func (a *App) Poses() []natnet.Pose {
	names := a.tracker.Names()
	ps := make([]natnet.Pose, 0, len(names))
	for _, n := range names {
		p, err := a.tracker.Pose(n)
		if err != nil {
			continue
		}
		ps = append(ps, p)
	}
	return ps
}
