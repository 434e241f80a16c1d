// SPDX-License-Identifier: GPL-2.0-or-later

package host

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"ratcave/app"
	cmdl "ratcave/commandline"
	"ratcave/cvar"
	"ratcave/cvars"
	"ratcave/natnet"
	"ratcave/scene"
)

func vec3(cv *cvar.Cvar) (mgl32.Vec3, error) {
	v, err := cv.Vec3()
	if err != nil {
		return v, errors.Wrap(err, cv.Name())
	}
	return v, nil
}

// appConfig collects the application settings from the cvars and the
// command line.
func appConfig() (app.Config, error) {
	cfg := app.DefaultConfig()
	cfg.ArenaRigidBody = cvars.ArenaMotiveName.String()
	cfg.RodentRigidBody = cvars.RodentMotiveName.String()
	diffuse, err := vec3(cvars.ArenaDiffuse)
	if err != nil {
		return cfg, err
	}
	cfg.ArenaDiffuse = diffuse
	cfg.ArenaFlatShading = cvars.ArenaFlatShading.Value()
	bg, err := vec3(cvars.ActiveBgColor)
	if err != nil {
		return cfg, err
	}
	cfg.BgColor = bg
	cfg.BeamerAspect = cvars.BeamerAspect.Value()
	cfg.BeamerFovY = cvars.BeamerFovY.Value()
	cfg.Antialiasing = cmdl.Antialiasing()
	cfg.FPSMode = cmdl.FPSMode()
	cfg.FPSFovY = cvars.VRFpsFovY.Value()
	cfg.CubeProjection = scene.Projection{
		FovY:   cvars.VRFovY.Value(),
		Aspect: 1,
		ZNear:  cvars.VRZNear.Value(),
		ZFar:   cvars.VRZFar.Value(),
	}
	if err := cfg.CubeProjection.Validate(); err != nil {
		return cfg, errors.Wrap(err, "vr projection")
	}
	return cfg, nil
}

func natnetConfig() natnet.Config {
	cfg := natnet.DefaultConfig()
	cfg.ServerAddr = cmdl.NatNetServer()
	cfg.LocalAddr = cmdl.NatNetLocal()
	cfg.CommandPort = cmdl.CommandPort()
	cfg.DataPort = cmdl.DataPort()
	cfg.Multicast = cmdl.Multicast()
	cfg.MulticastAddr = cmdl.MulticastAddr()
	return cfg
}

func seconds(cv *cvar.Cvar) time.Duration {
	return time.Duration(cv.Value() * float32(time.Second))
}
