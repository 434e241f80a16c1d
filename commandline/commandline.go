// SPDX-License-Identifier: GPL-2.0-or-later

package commandline

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

var (
	fullscreen bool
	window     bool
	vsync      bool
	fpsMode    bool
	multicast  bool
	noCue      bool

	antialiasing = boolInt{true, 0}

	screen      int
	commandPort int
	dataPort    int

	arenaFile     string
	projectorFile string
	natnetServer  string
	natnetLocal   string
	multicastAddr string
	monitorAddr   string
	recordFile    string
	replayFile    string
	configFile    string

	scenes stringList
)

type boolInt struct {
	set bool
	num int
}

func (b *boolInt) IsBoolFlag() bool {
	// We can not support both "-flag" and "-flag 10"
	// This allows "-flag", and "-flag=10"
	// and also "-flag=true" and "-flag=false"
	// but not "-flag 10"
	return true
}

func (b *boolInt) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		v, err := strconv.ParseBool(s)
		b.set = v
		return err
	}
	b.set = v != 0
	b.num = int(v)
	return nil
}

func (b *boolInt) String() string {
	return fmt.Sprintf("Set: %v, Num: %v", b.set, b.num)
}

// stringList collects every occurrence of a repeated flag.
type stringList []string

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func init() {
	flag.BoolVar(&fullscreen, "f", true, "")
	flag.BoolVar(&fullscreen, "fullscreen", true, "fullscreen on the selected screen")
	flag.BoolVar(&window, "w", false, "")
	flag.BoolVar(&window, "window", false, "windowed mode, overrides -fullscreen")
	flag.BoolVar(&vsync, "vsync", false, "sync buffer swaps to the display refresh")
	flag.BoolVar(&fpsMode, "fps", false, "render the virtual scene from the animal's view directly to the window")
	flag.BoolVar(&multicast, "multicast", true, "receive motion capture frames by multicast")
	flag.BoolVar(&noCue, "nocue", false, "disable audio cues")

	flag.Var(&antialiasing, "aa", "antialiasing by supersampling, optional number of window multisamples")

	flag.IntVar(&screen, "screen", 1, "display index of the projector")
	flag.IntVar(&commandPort, "command-port", 1510, "NatNet command port")
	flag.IntVar(&dataPort, "data-port", 1511, "NatNet data port")

	flag.StringVar(&arenaFile, "arena", "arena.obj", "obj file containing the arena mesh")
	flag.StringVar(&projectorFile, "projector", "projector.json", "projector calibration file")
	flag.StringVar(&natnetServer, "natnet-server", "127.0.0.1", "motion capture server address")
	flag.StringVar(&natnetLocal, "natnet-local", "", "local interface address for motion capture, empty for any")
	flag.StringVar(&multicastAddr, "multicast-addr", "239.255.42.99", "NatNet multicast group")
	flag.StringVar(&monitorAddr, "monitor", "", "websocket monitor listen address, e.g. :8080")
	flag.StringVar(&recordFile, "record", "", "record tracking data of the session into this file")
	flag.StringVar(&replayFile, "replay", "", "replay a recorded session instead of connecting to the motion capture server")
	flag.StringVar(&configFile, "cfg", "", "config file executed at startup")

	flag.Var(&scenes, "scene", "obj file loaded as virtual scene, may be repeated")
}

func Fullscreen() bool {
	return fullscreen && !window
}

func VSync() bool {
	return vsync
}

func FPSMode() bool {
	return fpsMode
}

func Antialiasing() bool {
	return antialiasing.set
}

// Multisamples is the number of window multisamples requested with -aa=N.
func Multisamples() int {
	return antialiasing.num
}

func Multicast() bool {
	return multicast
}

func Cue() bool {
	return !noCue
}

func Screen() int {
	return screen
}

func CommandPort() int {
	return commandPort
}

func DataPort() int {
	return dataPort
}

func ArenaFile() string {
	return arenaFile
}

func ProjectorFile() string {
	return projectorFile
}

func NatNetServer() string {
	return natnetServer
}

func NatNetLocal() string {
	return natnetLocal
}

func MulticastAddr() string {
	return multicastAddr
}

func MonitorAddr() string {
	return monitorAddr
}

func RecordFile() string {
	return recordFile
}

func ReplayFile() string {
	return replayFile
}

func ConfigFile() string {
	return configFile
}

func Scenes() []string {
	return append([]string(nil), scenes...)
}
