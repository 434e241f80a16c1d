// SPDX-License-Identifier: GPL-2.0-or-later

package host

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"ratcave/app"
	"ratcave/cvars"
	"ratcave/hub"
	"ratcave/natnet"
	"ratcave/record"
	"ratcave/scene"
)

type fakeTracker struct {
	frame int32
	poses map[string]natnet.Pose
}

func (f *fakeTracker) Frame() int32 { return f.frame }

func (f *fakeTracker) Names() []string {
	return []string{"Arena", "Rat"}
}

func (f *fakeTracker) Pose(name string) (natnet.Pose, error) {
	p, ok := f.poses[name]
	if !ok {
		return natnet.Pose{}, errors.Wrap(natnet.ErrUnknownRigidBody, name)
	}
	return p, nil
}

type cubeTexture struct{}

func (cubeTexture) ID() uint32 { return 1 }
func (cubeTexture) Cube() bool { return true }

type fakeRenderer struct {
	draws int
}

func (r *fakeRenderer) DrawScene(*scene.Scene)        { r.draws++ }
func (r *fakeRenderer) DrawSceneAA(*scene.Scene)      { r.draws++ }
func (r *fakeRenderer) Draw360ToTexture(*scene.Scene) {}
func (r *fakeRenderer) CubeTexture() scene.Texture    { return cubeTexture{} }

const triangleObj = `o Tree
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
o Rock
v 0 0 1
v 1 0 1
v 0 1 1
f 4 5 6
`

func testHost(t *testing.T) (*Host, *fakeTracker, *fakeRenderer) {
	t.Helper()
	tr := &fakeTracker{poses: map[string]natnet.Pose{
		"Arena": {ID: 1, Name: "Arena", Rotation: mgl32.QuatIdent(), Valid: true, Seen: true},
		"Rat":   {ID: 2, Name: "Rat", Position: mgl32.Vec3{0.2, 0.1, 0.3}, Rotation: mgl32.QuatIdent(), Valid: true, Seen: true},
	}}
	r := &fakeRenderer{}
	h := newHost()
	h.tracker = tr
	h.setApp(testApp(t, tr, r))
	return h, tr, r
}

func testApp(t *testing.T, tr *fakeTracker, r *fakeRenderer) *app.App {
	t.Helper()
	arena := scene.NewMesh("Arena", []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, nil, nil)
	a, err := app.New(app.DefaultConfig(), tr, r, arena, scene.NewCamera())
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func run(t *testing.T, h *Host, text string) []error {
	t.Helper()
	h.cbuf.AddText(text)
	return h.cbuf.Execute()
}

func TestSceneName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"forest.obj", "forest"},
		{"/data/scenes/dark.maze.obj", "dark.maze"},
		{"plain", "plain"},
	}
	for _, test := range tests {
		if got := sceneName(test.in); got != test.want {
			t.Errorf("sceneName(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestSceneCommands(t *testing.T) {
	h, _, _ := testHost(t)
	obj := writeFile(t, "forest.obj", triangleObj)

	if errs := run(t, h, "loadscene forest \""+obj+"\"\n"); len(errs) != 0 {
		t.Fatalf("loadscene: %v", errs)
	}
	s := h.app.CurrentVRScene()
	if s == nil || s.Name != "forest" || len(s.Meshes) != 2 {
		t.Fatalf("current scene = %+v", s)
	}
	if s.Meshes[0].Parent() != h.app.Arena() {
		t.Errorf("meshes not parented to the arena")
	}

	if errs := run(t, h, "loadscene forest \""+obj+"\"\n"); len(errs) != 1 {
		t.Errorf("duplicate loadscene: %v", errs)
	}

	if errs := run(t, h, "loadscene rocks \""+obj+"\" noparent cull\n"); len(errs) != 0 {
		t.Fatalf("loadscene: %v", errs)
	}
	rocks := h.app.CurrentVRScene()
	if rocks.Name != "rocks" || rocks.Meshes[0].Parent() != nil || !rocks.GLStates.Has(scene.CullFace) {
		t.Errorf("options not applied to %+v", rocks)
	}
	if errs := run(t, h, "loadscene x \""+obj+"\" sideways\n"); len(errs) != 1 {
		t.Errorf("unknown option: %v", errs)
	}

	if errs := run(t, h, "noscene\n"); len(errs) != 0 || h.app.CurrentVRScene() != nil {
		t.Errorf("noscene: %v, current %v", errs, h.app.CurrentVRScene())
	}
	if errs := run(t, h, "scene forest\n"); len(errs) != 0 || h.app.CurrentVRScene() != s {
		t.Errorf("scene forest: %v", errs)
	}
	errs := run(t, h, "scene meadow\n")
	if len(errs) != 1 || errors.Cause(errs[0]) != app.ErrSceneNotRegistered {
		t.Errorf("scene meadow: %v", errs)
	}
	if errs := run(t, h, "scenes; status\n"); len(errs) != 0 {
		t.Errorf("scenes/status: %v", errs)
	}
}

func TestExecAndQuit(t *testing.T) {
	h, _, _ := testHost(t)
	defer cvars.VRZFar.Reset()
	obj := writeFile(t, "maze.obj", triangleObj)
	cfg := writeFile(t, "ratcave.cfg", "set vr_z_far 5\nloadscene maze \""+obj+"\"\n")

	if errs := run(t, h, "exec \""+cfg+"\"\n"); len(errs) != 0 {
		t.Fatalf("exec: %v", errs)
	}
	if v := cvars.VRZFar.Value(); v != 5 {
		t.Errorf("vr_z_far = %v", v)
	}
	if _, ok := h.app.VRScene("maze"); !ok {
		t.Errorf("maze not loaded")
	}
	if errs := run(t, h, "exec nothing.cfg\n"); len(errs) != 1 {
		t.Errorf("exec missing file: %v", errs)
	}
	run(t, h, "quit\n")
	if !h.quit {
		t.Errorf("quit did not stop the host")
	}
}

func TestFrame(t *testing.T) {
	h, tr, r := testHost(t)
	var buf bytes.Buffer
	h.rec = record.NewRecorder(&buf)
	h.hub = hub.New(h.cbuf, h.history)
	obj := writeFile(t, "forest.obj", triangleObj)
	if errs := run(t, h, "loadscene forest \""+obj+"\"\n"); len(errs) != 0 {
		t.Fatal(errs)
	}

	now := time.Now()
	tr.frame = 3
	h.frame(now, time.Millisecond)
	if r.draws != 1 {
		t.Errorf("draws = %d", r.draws)
	}
	if pos := h.app.CurrentVRScene().Camera.Position; pos != (mgl32.Vec3{0.2, 0.1, 0.3}) {
		t.Errorf("camera at %v", pos)
	}

	tr.poses["Rat"] = natnet.Pose{ID: 2, Name: "Rat", Rotation: mgl32.QuatIdent(), Seen: true}
	tr.frame = 4
	h.frame(now.Add(time.Millisecond), time.Millisecond)
	if h.rodent {
		t.Errorf("lost rodent not noticed")
	}

	if err := h.rec.Close(); err != nil {
		t.Fatal(err)
	}
	frames, err := record.ReadFrames(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 || frames[0].Number != 3 || frames[1].Number != 4 || len(frames[0].Poses) != 2 {
		t.Errorf("recorded frames = %+v", frames)
	}
}

func TestAppConfig(t *testing.T) {
	cfg, err := appConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BgColor != (mgl32.Vec3{0.6, 0, 0}) || cfg.ArenaDiffuse != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("colors = %v %v", cfg.BgColor, cfg.ArenaDiffuse)
	}
	want := scene.Projection{FovY: 90, Aspect: 1, ZNear: 0.004, ZFar: 3}
	if cfg.CubeProjection != want {
		t.Errorf("cube projection = %+v, want %+v", cfg.CubeProjection, want)
	}
	if cfg.ArenaRigidBody != "Arena" || cfg.RodentRigidBody != "Rat" {
		t.Errorf("rigid bodies = %q %q", cfg.ArenaRigidBody, cfg.RodentRigidBody)
	}

	defer cvars.ActiveBgColor.Reset()
	cvars.ActiveBgColor.SetByString("red")
	if _, err := appConfig(); err == nil {
		t.Errorf("bad color accepted")
	}
}

type fakePixels struct{}

func (fakePixels) ReadPixels() ([]byte, int32, int32) {
	return []byte{
		0, 0, 255, 255, 0, 0, 255, 255,
		255, 0, 0, 255, 255, 0, 0, 255,
	}, 2, 2
}

func TestScreenshot(t *testing.T) {
	h, _, _ := testHost(t)
	if errs := run(t, h, "screenshot x.png\n"); len(errs) != 1 {
		t.Errorf("screenshot without display: %v", errs)
	}
	h.pixels = fakePixels{}
	name := filepath.Join(t.TempDir(), "shot.png")
	if errs := run(t, h, "screenshot \""+name+"\"\n"); len(errs) != 0 {
		t.Fatalf("screenshot: %v", errs)
	}
	if _, err := os.Stat(name); err != nil {
		t.Error(err)
	}
}

func TestBindings(t *testing.T) {
	h, _, _ := testHost(t)
	obj := writeFile(t, "forest.obj", triangleObj)
	if errs := run(t, h, "loadscene forest \""+obj+"\"; bind 0 noscene; bind 1 scene forest\n"); len(errs) != 0 {
		t.Fatal(errs)
	}
	if errs := run(t, h, "bind HYPER quit\n"); len(errs) != 1 {
		t.Errorf("bind unknown key: %v", errs)
	}

	h.keyDown(sdl.K_0)
	h.execute()
	if h.app.CurrentVRScene() != nil {
		t.Errorf("key 0 did not clear the scene")
	}
	h.keyDown(sdl.K_1)
	h.execute()
	if s := h.app.CurrentVRScene(); s == nil || s.Name != "forest" {
		t.Errorf("key 1 selected %v", s)
	}

	run(t, h, "unbind 1\n")
	if _, ok := h.binds.Command(sdl.K_1); ok {
		t.Errorf("1 still bound")
	}
	h.keyDown(sdl.K_ESCAPE)
	if !h.quit {
		t.Errorf("escape did not quit")
	}
}

func TestConfigBeforeApp(t *testing.T) {
	defer cvars.VRZFar.Reset()
	h := newHost()
	obj := writeFile(t, "maze.obj", triangleObj)
	cfg := writeFile(t, "ratcave.cfg", "set vr_z_far 5\nloadscene maze \""+obj+"\"\nscene maze\nstatus\n")

	// Run executes the config file before the tracker and display exist.
	if errs := run(t, h, "exec \""+cfg+"\"\n"); len(errs) != 0 {
		t.Fatalf("exec: %v", errs)
	}
	if v := cvars.VRZFar.Value(); v != 5 {
		t.Errorf("vr_z_far = %v, want 5 before the app exists", v)
	}
	if len(h.pending) != 3 {
		t.Fatalf("pending = %q", h.pending)
	}

	tr := &fakeTracker{poses: map[string]natnet.Pose{
		"Arena": {ID: 1, Name: "Arena", Rotation: mgl32.QuatIdent(), Valid: true, Seen: true},
		"Rat":   {ID: 2, Name: "Rat", Position: mgl32.Vec3{0.2, 0.1, 0.3}, Rotation: mgl32.QuatIdent(), Valid: true, Seen: true},
	}}
	h.tracker = tr
	h.setApp(testApp(t, tr, &fakeRenderer{}))
	if len(h.pending) != 0 {
		t.Errorf("pending not drained: %q", h.pending)
	}
	if s := h.app.CurrentVRScene(); s == nil || s.Name != "maze" {
		t.Errorf("current scene = %v, want maze", s)
	}
}
