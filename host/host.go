// SPDX-License-Identifier: GPL-2.0-or-later

// Package host wires the tracker, renderer and application together and
// runs the frame loop on the main thread.
package host

import (
	"context"
	"log"
	"time"

	"github.com/gopxl/mainthread/v2"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"ratcave/alias"
	"ratcave/app"
	"ratcave/cbuf"
	"ratcave/cmd"
	cmdl "ratcave/commandline"
	"ratcave/conlog"
	"ratcave/cue"
	"ratcave/cvar"
	"ratcave/cvars"
	"ratcave/history"
	"ratcave/hub"
	"ratcave/keycode"
	"ratcave/keys"
	"ratcave/math"
	"ratcave/natnet"
	"ratcave/record"
	"ratcave/render"
	"ratcave/scene"
	"ratcave/wavefront"
	"ratcave/window"
)

// tracker is a pose source with frame numbers, a live natnet client or a
// replayed recording.
type tracker interface {
	app.Tracker
	Frame() int32
}

type pixelReader interface {
	ReadPixels() ([]byte, int32, int32)
}

// historyFilename keeps remote console lines between sessions.
const historyFilename = "history.txt"

type Host struct {
	cbuf    *cbuf.CommandBuffer
	cmds    *cmd.Commands
	tracker tracker
	app     *app.App
	hub     *hub.Hub
	rec     *record.Recorder
	cue     *cue.Player
	history *history.History
	pixels  pixelReader
	binds   keys.Bindings
	aliases *alias.Aliases
	pending []string

	start       time.Time
	lastMonitor time.Time
	rodent      bool
	quit        bool
}

func newHost() *Host {
	h := &Host{
		cbuf:    &cbuf.CommandBuffer{},
		cmds:    cmd.New(),
		history: &history.History{},
		aliases: alias.New(),
		start:   time.Now(),
	}
	// Start as tracked so a missing animal is reported once.
	h.rodent = true
	h.registerCommands()
	cmd.Must(h.aliases.Register(h.cmds))
	h.cbuf.SetCommandExecutors([]cbuf.Efunc{
		cbuf.Executor(h.cmds.Execute),
		h.aliases.Execute,
		cbuf.Executor(cmd.Execute),
		cbuf.Executor(cvar.Execute),
	})
	return h
}

func (h *Host) execute() {
	for _, err := range h.cbuf.Execute() {
		conlog.Printf("%v\n", err)
	}
}

func openTracker(ctx context.Context) (tracker, error) {
	if f := cmdl.ReplayFile(); f != "" {
		p, err := record.Open(f)
		if err != nil {
			return nil, err
		}
		p.Loop = true
		log.Printf("Replaying %s (%v)", f, p.Duration())
		return p, nil
	}
	c, err := natnet.Dial(ctx, natnetConfig())
	if err != nil {
		return nil, err
	}
	info := c.ServerInfo()
	log.Printf("Connected to %s %v, NatNet %v", info.AppName, info.AppVersion, c.Version())
	wctx, cancel := context.WithTimeout(ctx, seconds(cvars.TrackingTimeout))
	defer cancel()
	if err := c.WaitForFrame(wctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func loadArena(path, name string) (*scene.Mesh, error) {
	r, err := wavefront.Open(path)
	if err != nil {
		return nil, err
	}
	return r.Mesh(name)
}

func (h *Host) publishScenes() {
	if h.hub == nil {
		return
	}
	var ev hub.Scenes
	for _, s := range h.app.VRScenes() {
		ev.Scenes = append(ev.Scenes, s.Name)
	}
	if c := h.app.CurrentVRScene(); c != nil {
		ev.Current = c.Name
	}
	if err := h.hub.Publish("scenes", ev); err != nil {
		log.Printf("%v", err)
	}
}

// frame runs one iteration without presenting it.
func (h *Host) frame(now time.Time, dt time.Duration) {
	h.execute()
	st, err := h.app.Update(dt)
	if err != nil {
		conlog.Printf("update: %v\n", err)
		return
	}
	if st.RodentTracked != h.rodent {
		h.rodent = st.RodentTracked
		if h.rodent {
			conlog.Printf("Rodent tracking regained\n")
		} else {
			conlog.Printf("Rodent tracking lost\n")
		}
	}
	if err := h.cue.Tracking(st.RodentTracked); err != nil {
		log.Printf("%v", err)
	}
	var poses []natnet.Pose
	if h.rec != nil || h.hub != nil {
		poses = h.app.Poses()
	}
	if h.rec != nil {
		if err := h.rec.Record(now.Sub(h.start), h.tracker.Frame(), poses); err != nil {
			conlog.Printf("%v\n", err)
			h.rec.Close()
			h.rec = nil
		}
	}
	if h.hub != nil {
		if r := cvars.MonitorRate.Value(); r > 0 && now.Sub(h.lastMonitor) >= time.Duration(float32(time.Second)/r) {
			h.lastMonitor = now
			if err := h.hub.Publish("tracking", hub.NewTracking(h.tracker.Frame(), st.RodentTracked, poses)); err != nil {
				log.Printf("%v", err)
			}
		}
	}
	h.app.Draw()
}

// keyDown queues the command bound to k. Escape always quits.
func (h *Host) keyDown(k keycode.KeyCode) {
	if k == sdl.K_ESCAPE {
		h.quit = true
		return
	}
	if c, ok := h.binds.Command(k); ok {
		h.cbuf.AddLine(c)
	}
}

func (h *Host) pollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			h.quit = true
		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				h.keyDown(e.Keysym.Sym)
			}
		}
	}
}

// step runs and presents one frame. It must run on the main thread.
func (h *Host) step(now time.Time, dt time.Duration) {
	h.pollEvents()
	h.frame(now, dt)
	window.EndRendering()
}

// run drives the frame loop. Frames execute on the main thread; the
// time between them lets queued GL deletions run there.
func (h *Host) run() {
	oldtime := time.Now()
	for !h.quit {
		now := time.Now()
		dt := now.Sub(oldtime)
		oldtime = now
		mainthread.Call(func() { h.step(now, dt) })

		if !cmdl.VSync() {
			if m := cvars.HostMaxFps.Value(); m > 0 {
				m = math.Clamp(10, m, 1000)
				w := time.Duration(float32(time.Second)/m) - time.Since(now)
				time.Sleep(w)
			}
		}
	}
}

// openDisplay opens the window and creates the renderer.
func openDisplay() (*render.Renderer, error) {
	v := sdl.Version{}
	sdl.GetVersion(&v)
	log.Printf("Found SDL version %d.%d.%d\n", v.Major, v.Minor, v.Patch)
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, err
	}
	if err := window.Open(window.Config{
		Title:       "ratCAVE",
		Screen:      cmdl.Screen(),
		Fullscreen:  cmdl.Fullscreen(),
		VSync:       cmdl.VSync(),
		Multisample: cmdl.Multisamples(),
	}); err != nil {
		return nil, err
	}
	aaSize := int32(0)
	if cmdl.Antialiasing() {
		aaSize = int32(cvars.AntialiasingSize.Value())
	}
	return render.New(render.Config{
		CubeSize:   int32(cvars.CubeMapSize.Value()),
		AASize:     aaSize,
		WindowSize: window.FramebufferSize,
	})
}

func closeDisplay() {
	window.Shutdown()
	sdl.Quit()
}

// Run initializes everything from the command line and runs until quit.
// It must be called from the function given to mainthread.Run.
func Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHost()
	if f := cmdl.ConfigFile(); f != "" {
		h.cbuf.AddText("exec \"" + f + "\"\n")
		h.execute()
	}

	t, err := openTracker(ctx)
	if err != nil {
		return err
	}
	if c, ok := t.(*natnet.Client); ok {
		defer c.Close()
	}
	h.tracker = t
	cfg, err := appConfig()
	if err != nil {
		return err
	}
	if err := app.CheckTracking(t, cfg.ArenaRigidBody); err != nil {
		return err
	}

	arena, err := loadArena(cmdl.ArenaFile(), cvars.ArenaMeshName.String())
	if err != nil {
		return errors.Wrap(err, "arena")
	}
	beamer, err := scene.LoadCamera(cmdl.ProjectorFile())
	if err != nil {
		return errors.Wrap(err, "projector")
	}

	var r *render.Renderer
	mainthread.Call(func() { r, err = openDisplay() })
	defer mainthread.Call(closeDisplay)
	if err != nil {
		return err
	}
	h.pixels = r
	a, err := app.New(cfg, t, r, arena, beamer)
	if err != nil {
		return err
	}
	h.setApp(a)

	if cmdl.Cue() {
		h.cue, err = cue.New(func() float64 {
			return float64(math.Clamp(-10, cvars.CueVolume.Value(), 2))
		})
		if err != nil {
			log.Printf("Audio cues disabled: %v", err)
			h.cue = nil
		}
		defer h.cue.Close()
	}
	if addr := cmdl.MonitorAddr(); addr != "" {
		if err := h.history.Load(historyFilename); err != nil {
			log.Printf("%v", err)
		}
		defer func() {
			if err := h.history.Save(historyFilename); err != nil {
				log.Printf("%v", err)
			}
		}()
		h.hub = hub.New(h.cbuf, h.history)
		defer conlog.AddSink(h.hub.LogSink)()
		go func() {
			if err := h.hub.ListenAndServe(ctx, addr); err != nil {
				log.Printf("%v", err)
			}
		}()
	}
	if f := cmdl.RecordFile(); f != "" {
		h.rec, err = record.Create(f)
		if err != nil {
			return err
		}
		defer func() {
			if h.rec != nil {
				h.rec.Close()
			}
		}()
	}

	for _, f := range cmdl.Scenes() {
		if err := h.loadScene(sceneName(f), f, app.DefaultRegisterOptions()); err != nil {
			return err
		}
	}

	conlog.Printf("ratCAVE running, tracking %d rigid bodies\n", len(t.Names()))
	h.run()
	return nil
}
