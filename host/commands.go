// SPDX-License-Identifier: GPL-2.0-or-later

package host

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"ratcave/app"
	"ratcave/cmd"
	"ratcave/conlog"
	"ratcave/cue"
	"ratcave/image"
	"ratcave/keycode"
	"ratcave/scene"
	"ratcave/wavefront"
)

func (h *Host) registerCommands() {
	cmd.Must(h.cmds.Add("scene", h.needsApp(h.sceneCmd)))
	cmd.Must(h.cmds.Add("noscene", h.needsApp(h.noSceneCmd)))
	cmd.Must(h.cmds.Add("scenes", h.needsApp(h.scenesCmd)))
	cmd.Must(h.cmds.Add("loadscene", h.needsApp(h.loadSceneCmd)))
	cmd.Must(h.cmds.Add("status", h.needsApp(h.statusCmd)))
	cmd.Must(h.cmds.Add("exec", h.execCmd))
	cmd.Must(h.cmds.Add("screenshot", h.screenshotCmd))
	cmd.Must(h.cmds.Add("bind", h.bindCmd))
	cmd.Must(h.cmds.Add("unbind", h.unbindCmd))
	cmd.Must(h.cmds.Add("unbindall", h.unbindAllCmd))
	cmd.Must(h.cmds.Add("bindlist", h.bindListCmd))
	cmd.Must(h.cmds.Add("quit", h.quitCmd))
}

// needsApp defers f until the application exists. Config files run before
// the display is open, so their scene lines are replayed by setApp.
func (h *Host) needsApp(f cmd.Func) cmd.Func {
	return func(a cmd.Arguments) error {
		if h.app == nil {
			h.pending = append(h.pending, a.Full())
			return nil
		}
		return f(a)
	}
}

// setApp installs a and runs the command lines deferred until now.
func (h *Host) setApp(a *app.App) {
	h.app = a
	for _, l := range h.pending {
		h.cbuf.AddLine(l)
	}
	h.pending = nil
	h.execute()
}

func (h *Host) sceneChanged() {
	if err := h.cue.Play(cue.SceneSwitch); err != nil {
		conlog.Printf("%v\n", err)
	}
	h.publishScenes()
}

func (h *Host) sceneCmd(a cmd.Arguments) error {
	if len(a.Args()) != 2 {
		conlog.Printf("scene <name> : switch the virtual scene\n")
		return nil
	}
	name := a.Argv(1).String()
	s, ok := h.app.VRScene(name)
	if !ok {
		return errors.Wrap(app.ErrSceneNotRegistered, name)
	}
	if err := h.app.SetCurrentVRScene(s); err != nil {
		return err
	}
	conlog.Printf("Scene %s\n", name)
	h.sceneChanged()
	return nil
}

func (h *Host) noSceneCmd(_ cmd.Arguments) error {
	if err := h.app.SetCurrentVRScene(nil); err != nil {
		return err
	}
	conlog.Printf("No scene\n")
	h.sceneChanged()
	return nil
}

func (h *Host) scenesCmd(_ cmd.Arguments) error {
	cur := h.app.CurrentVRScene()
	for _, s := range h.app.VRScenes() {
		mark := " "
		if s == cur {
			mark = "*"
		}
		conlog.Printf("%s %s (%d meshes)\n", mark, s.Name, len(s.Meshes))
	}
	conlog.Printf("%d scenes\n", len(h.app.VRScenes()))
	return nil
}

// loadScene reads every mesh of an obj file into a new virtual scene.
func (h *Host) loadScene(name, path string, opts app.RegisterOptions) error {
	if _, ok := h.app.VRScene(name); ok {
		return errors.Errorf("scene %s already loaded", name)
	}
	r, err := wavefront.Open(path)
	if err != nil {
		return err
	}
	meshes := r.Meshes()
	if len(meshes) == 0 {
		return errors.Errorf("%s has no meshes", path)
	}
	s := scene.New(name, meshes, nil)
	if err := h.app.RegisterVRScene(s, opts); err != nil {
		return err
	}
	conlog.Printf("Loaded scene %s from %s\n", name, path)
	h.sceneChanged()
	return nil
}

func sceneName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func (h *Host) loadSceneCmd(a cmd.Arguments) error {
	args := a.Args()
	if len(args) < 3 {
		conlog.Printf("loadscene <name> <obj> [noparent] [cull]\n")
		return nil
	}
	opts := app.DefaultRegisterOptions()
	for _, o := range args[3:] {
		switch o.String() {
		case "noparent":
			opts.ParentToArena = false
		case "cull":
			opts.FaceCulling = true
		case "nolight":
			opts.MatchLightToBeamer = false
		default:
			return errors.Errorf("unknown option %q", o.String())
		}
	}
	return h.loadScene(args[1].String(), args[2].String(), opts)
}

func (h *Host) statusCmd(_ cmd.Arguments) error {
	conlog.Printf("frame %d\n", h.tracker.Frame())
	for _, p := range h.app.Poses() {
		state := "lost"
		if p.Valid {
			state = "valid"
		}
		conlog.Printf("%3d %-12s %6.3f %6.3f %6.3f  %s\n", p.ID, p.Name,
			p.Position[0], p.Position[1], p.Position[2], state)
	}
	if s := h.app.CurrentVRScene(); s != nil {
		conlog.Printf("scene %s\n", s.Name)
	} else {
		conlog.Printf("no scene\n")
	}
	return nil
}

func (h *Host) execCmd(a cmd.Arguments) error {
	if len(a.Args()) != 2 {
		conlog.Printf("exec <filename> : execute a script file\n")
		return nil
	}
	name := a.Argv(1).String()
	b, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "couldn't exec")
	}
	conlog.Printf("execing %s\n", name)
	h.cbuf.InsertText(string(b))
	return nil
}

func (h *Host) screenshotCmd(a cmd.Arguments) error {
	if h.pixels == nil {
		return errors.New("no display")
	}
	name := a.Argv(1).String()
	if name == "" {
		name = time.Now().Format("ratcave-20060102-150405.png")
	}
	data, w, ht := h.pixels.ReadPixels()
	image.FlipRows(data, int(w), int(ht))
	if err := image.Write(name, data, int(w), int(ht)); err != nil {
		return errors.Wrap(err, "screenshot")
	}
	conlog.Printf("Wrote %s\n", name)
	return nil
}

func (h *Host) bindCmd(a cmd.Arguments) error {
	args := a.Args()
	switch len(args) {
	case 0, 1:
		conlog.Printf("bind <key> [command] : attach a command to a key\n")
		return nil
	case 2:
		k := keycode.StringToKey(args[1].String())
		if c, ok := h.binds.Command(k); ok {
			conlog.Printf("\"%s\" = \"%s\"\n", args[1].String(), c)
		} else {
			conlog.Printf("\"%s\" is not bound\n", args[1].String())
		}
		return nil
	}
	parts := make([]string, 0, len(args)-2)
	for _, p := range args[2:] {
		parts = append(parts, p.String())
	}
	return h.binds.Bind(args[1].String(), strings.Join(parts, " "))
}

func (h *Host) unbindCmd(a cmd.Arguments) error {
	if len(a.Args()) != 2 {
		conlog.Printf("unbind <key> : remove commands from a key\n")
		return nil
	}
	return h.binds.Unbind(a.Argv(1).String())
}

func (h *Host) unbindAllCmd(_ cmd.Arguments) error {
	h.binds.UnbindAll()
	return nil
}

func (h *Host) bindListCmd(_ cmd.Arguments) error {
	for _, b := range h.binds.List() {
		conlog.Printf("%-10s \"%s\"\n", b.Key, b.Command)
	}
	return nil
}

func (h *Host) quitCmd(_ cmd.Arguments) error {
	h.quit = true
	return nil
}
