// SPDX-License-Identifier: GPL-2.0-or-later

package app

import (
	"github.com/pkg/errors"

	"ratcave/scene"
)

func (a *App) registered(s *scene.Scene) bool {
	for _, r := range a.vrScenes {
		if r == s {
			return true
		}
	}
	return false
}

func (a *App) hasCubeTexture() bool {
	cube := a.renderer.CubeTexture()
	for _, t := range a.arena.Textures {
		if t == cube {
			return true
		}
	}
	return false
}

func (a *App) attachCubeTexture() {
	if !a.hasCubeTexture() {
		a.arena.Textures = append(a.arena.Textures, a.renderer.CubeTexture())
	}
}

// RegisterVRScene adapts s to the arena according to opts and makes it
// the current virtual scene. The first registration remembers the
// arena's own textures and adds the cube texture to it.
func (a *App) RegisterVRScene(s *scene.Scene, opts RegisterOptions) error {
	if s == nil {
		return ErrNilScene
	}
	if opts.ParentToArena {
		for _, m := range s.Meshes {
			if err := m.CanParent(a.arena); err != nil {
				return errors.Wrapf(err, "register %s", s.Name)
			}
		}
	}
	if len(a.vrScenes) == 0 {
		a.origTextures = append([]scene.Texture(nil), a.arena.Textures...)
	}
	if opts.ParentToArena {
		for _, m := range s.Meshes {
			m.SetParent(a.arena)
		}
	}
	if opts.MatchLightToBeamer {
		if s.Light == nil {
			s.Light = &scene.Light{}
		}
		s.Light.Position = a.active.Light.Position
	}
	if opts.MakeCubeCamera {
		if s.Camera == nil {
			s.Camera = scene.NewCamera()
		}
		s.Camera.Projection = a.cfg.CubeProjection
		if a.cfg.FPSMode {
			s.Camera.Projection.FovY = a.cfg.FPSFovY
			s.Camera.Projection.Aspect = a.cfg.BeamerAspect
		}
		s.Camera.Update()
	}
	if !opts.FaceCulling {
		s.GLStates = s.GLStates.Without(scene.CullFace)
	}
	if !a.registered(s) {
		a.vrScenes = append(a.vrScenes, s)
	}
	a.attachCubeTexture()
	a.current = s
	return nil
}

// VRScenes returns the registered scenes in registration order. The
// slice is a copy.
func (a *App) VRScenes() []*scene.Scene {
	return append([]*scene.Scene(nil), a.vrScenes...)
}

// VRScene finds a registered scene by name.
func (a *App) VRScene(name string) (*scene.Scene, bool) {
	for _, s := range a.vrScenes {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

func (a *App) CurrentVRScene() *scene.Scene {
	return a.current
}

// SetCurrentVRScene selects a registered scene. nil deselects and gives
// the arena back the textures it had before the first registration.
func (a *App) SetCurrentVRScene(s *scene.Scene) error {
	if s == nil {
		a.current = nil
		if len(a.vrScenes) > 0 {
			a.arena.Textures = append([]scene.Texture(nil), a.origTextures...)
		}
		return nil
	}
	if !a.registered(s) {
		return errors.Wrap(ErrSceneNotRegistered, s.Name)
	}
	a.attachCubeTexture()
	a.current = s
	return nil
}
