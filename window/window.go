// SPDX-License-Identifier: GPL-2.0-or-later
package window

import (
	"log"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	window  *sdl.Window
	context sdl.GLContext
)

// Config selects where and how the projector output window opens.
type Config struct {
	Title       string
	Screen      int
	Fullscreen  bool
	VSync       bool
	Multisample int
	// Width and Height are used when not fullscreen. Zero means the
	// full size of the chosen display.
	Width, Height int32
}

func Get() *sdl.Window {
	return window
}

func Size() (int32, int32) {
	return window.GetSize()
}

// FramebufferSize is the drawable size in pixels which may differ from
// Size on high dpi displays.
func FramebufferSize() (int32, int32) {
	return window.GLGetDrawableSize()
}

func Shutdown() {
	if context != nil {
		sdl.GLDeleteContext(context)
		context = nil
	}
	if window != nil {
		window.Destroy()
		window = nil
	}
}

func Fullscreen() bool {
	return window.GetFlags()&sdl.WINDOW_FULLSCREEN != 0
}

func VSync() bool {
	i, _ := sdl.GLGetSwapInterval()
	return i != 0
}

func displayBounds(screen int) (sdl.Rect, error) {
	n, err := sdl.GetNumVideoDisplays()
	if err != nil {
		return sdl.Rect{}, err
	}
	if screen < 0 || screen >= n {
		return sdl.Rect{}, errors.Errorf("screen %d not available, %d connected", screen, n)
	}
	return sdl.GetDisplayBounds(screen)
}

func setAttributes(multisample int) {
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)
	sdl.GLSetAttribute(sdl.GL_MULTISAMPLEBUFFERS, func() int {
		if multisample > 0 {
			return 1
		}
		return 0
	}())
	sdl.GLSetAttribute(sdl.GL_MULTISAMPLESAMPLES, multisample)
}

// Open creates the window and its GL context on the configured display.
// SDL video needs to be initialized.
func Open(cfg Config) error {
	if window != nil {
		return errors.New("window already open")
	}
	bounds, err := displayBounds(cfg.Screen)
	if err != nil {
		return err
	}
	setAttributes(cfg.Multisample)

	width, height := cfg.Width, cfg.Height
	if cfg.Fullscreen || width == 0 || height == 0 {
		width, height = bounds.W, bounds.H
	}
	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_HIDDEN)
	x := int32(sdl.WINDOWPOS_CENTERED_MASK | cfg.Screen)
	y := x
	w, err := sdl.CreateWindow(cfg.Title, x, y, width, height, flags)
	if err != nil && cfg.Multisample > 0 {
		log.Printf("Window without multisampling: %v", err)
		setAttributes(0)
		w, err = sdl.CreateWindow(cfg.Title, x, y, width, height, flags)
	}
	if err != nil {
		return errors.Wrap(err, "create window")
	}
	window = w
	if cfg.Fullscreen {
		if err := window.SetFullscreen(sdl.WINDOW_FULLSCREEN_DESKTOP); err != nil {
			Shutdown()
			return errors.Wrap(err, "set fullscreen")
		}
	}
	window.Show()

	context, err = window.GLCreateContext()
	if err != nil {
		Shutdown()
		return errors.Wrap(err, "create GL context")
	}
	if err := gl.Init(); err != nil {
		Shutdown()
		return errors.Wrap(err, "init gl")
	}
	gl.DebugMessageCallback(debugCb, unsafe.Pointer(nil))

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.Printf("Couldn't set swap interval: %v", err)
	}
	log.Printf("GL %s on %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))
	return nil
}

func debugCb(
	source uint32,
	gltype uint32,
	id uint32,
	severity uint32,
	length int32,
	message string,
	userParam unsafe.Pointer) {
	if severity == gl.DEBUG_SEVERITY_HIGH {
		log.Panicf("[GL_DEBUG] source %d gltype %d id %d severity %d length %d: %s", source, gltype, id, severity, length, message)
	} else if severity != gl.DEBUG_SEVERITY_NOTIFICATION {
		log.Printf("[GL_DEBUG] source %d gltype %d id %d severity %d length %d: %s", source, gltype, id, severity, length, message)
	}
}

func EndRendering() {
	window.GLSwap()
}
