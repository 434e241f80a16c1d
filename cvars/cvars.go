// SPDX-License-Identifier: GPL-2.0-or-later

package cvars

import (
	"ratcave/cvar"
)

var (
	ArenaMeshName    *cvar.Cvar
	ArenaMotiveName  *cvar.Cvar
	RodentMotiveName *cvar.Cvar
	ArenaDiffuse     *cvar.Cvar
	ArenaFlatShading *cvar.Cvar
	ActiveBgColor    *cvar.Cvar

	BeamerAspect *cvar.Cvar
	BeamerFovY   *cvar.Cvar

	VRFovY    *cvar.Cvar
	VRFpsFovY *cvar.Cvar
	VRZNear   *cvar.Cvar
	VRZFar    *cvar.Cvar

	CubeMapSize      *cvar.Cvar
	AntialiasingSize *cvar.Cvar

	HostMaxFps      *cvar.Cvar
	MonitorRate     *cvar.Cvar
	TrackingTimeout *cvar.Cvar
	CueVolume       *cvar.Cvar
)

func init() {
	ArenaMeshName = cvar.MustRegister("arena_mesh", "Arena", cvar.ARCHIVE).
		SetHelp("object name of the arena inside the arena obj file")
	ArenaMotiveName = cvar.MustRegister("arena_motive", "Arena", cvar.ARCHIVE).
		SetHelp("rigid body name of the arena in the motion capture stream")
	RodentMotiveName = cvar.MustRegister("rodent_motive", "Rat", cvar.ARCHIVE).
		SetHelp("rigid body name of the animal in the motion capture stream")
	ArenaDiffuse = cvar.MustRegister("arena_diffuse", "1 1 1", cvar.ARCHIVE)
	ArenaFlatShading = cvar.MustRegister("arena_flat_shading", "0", cvar.ARCHIVE)
	ActiveBgColor = cvar.MustRegister("active_bgcolor", "0.6 0 0", cvar.ARCHIVE)

	BeamerAspect = cvar.MustRegister("beamer_aspect", "1.77778", cvar.ARCHIVE)
	BeamerFovY = cvar.MustRegister("beamer_fov_y", "41.5", cvar.ARCHIVE)

	VRFovY = cvar.MustRegister("vr_fov_y", "90", cvar.ROM).
		SetHelp("cube map faces need exactly 90 degrees")
	VRFpsFovY = cvar.MustRegister("vr_fps_fov_y", "120", cvar.ARCHIVE)
	VRZNear = cvar.MustRegister("vr_z_near", "0.004", cvar.ARCHIVE)
	VRZFar = cvar.MustRegister("vr_z_far", "3", cvar.ARCHIVE)

	CubeMapSize = cvar.MustRegister("cube_size", "4096", cvar.ROM)
	AntialiasingSize = cvar.MustRegister("aa_size", "4096", cvar.ROM)

	HostMaxFps = cvar.MustRegister("host_maxfps", "240", cvar.ARCHIVE).
		SetHelp("frame cap when vsync is off, 0 disables")
	MonitorRate = cvar.MustRegister("monitor_rate", "30", cvar.ARCHIVE).
		SetHelp("tracking events per second sent to monitor clients")
	TrackingTimeout = cvar.MustRegister("tracking_timeout", "5", cvar.ARCHIVE).
		SetHelp("seconds to wait for the first motion capture frame")
	CueVolume = cvar.MustRegister("cue_volume", "-1", cvar.ARCHIVE).
		SetHelp("audio cue volume, base 2 exponent")
}
