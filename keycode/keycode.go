// SPDX-License-Identifier: GPL-2.0-or-later

// Package keycode names keyboard keys for bindings.
package keycode

import (
	"strings"

	"github.com/veandco/go-sdl2/sdl"
)

type KeyCode = sdl.Keycode

// Printable keys are named by their character, which is also their
// keycode.
var (
	s2k = map[string]KeyCode{
		"TAB":        sdl.K_TAB,
		"ENTER":      sdl.K_RETURN,
		"ESCAPE":     sdl.K_ESCAPE,
		"SPACE":      sdl.K_SPACE,
		"BACKSPACE":  sdl.K_BACKSPACE,
		"UPARROW":    sdl.K_UP,
		"DOWNARROW":  sdl.K_DOWN,
		"LEFTARROW":  sdl.K_LEFT,
		"RIGHTARROW": sdl.K_RIGHT,
		"F1":         sdl.K_F1,
		"F2":         sdl.K_F2,
		"F3":         sdl.K_F3,
		"F4":         sdl.K_F4,
		"F5":         sdl.K_F5,
		"F6":         sdl.K_F6,
		"F7":         sdl.K_F7,
		"F8":         sdl.K_F8,
		"F9":         sdl.K_F9,
		"F10":        sdl.K_F10,
		"F11":        sdl.K_F11,
		"F12":        sdl.K_F12,
		"INS":        sdl.K_INSERT,
		"DEL":        sdl.K_DELETE,
		"PGDN":       sdl.K_PAGEDOWN,
		"PGUP":       sdl.K_PAGEUP,
		"HOME":       sdl.K_HOME,
		"END":        sdl.K_END,
		"KP_0":       sdl.K_KP_0,
		"KP_1":       sdl.K_KP_1,
		"KP_2":       sdl.K_KP_2,
		"KP_3":       sdl.K_KP_3,
		"KP_4":       sdl.K_KP_4,
		"KP_5":       sdl.K_KP_5,
		"KP_6":       sdl.K_KP_6,
		"KP_7":       sdl.K_KP_7,
		"KP_8":       sdl.K_KP_8,
		"KP_9":       sdl.K_KP_9,
		"KP_ENTER":   sdl.K_KP_ENTER,
		"KP_PLUS":    sdl.K_KP_PLUS,
		"KP_MINUS":   sdl.K_KP_MINUS,
		"PAUSE":      sdl.K_PAUSE,

		"SEMICOLON": ';', // because a raw semicolon seperates commands
	}
	k2s = reverseMap(s2k)
)

func reverseMap(m map[string]KeyCode) map[KeyCode]string {
	r := make(map[KeyCode]string)
	for k, v := range m {
		r[v] = k
	}
	return r
}

func KeyToString(k KeyCode) string {
	if k == -1 {
		return "<KEY NOT FOUND>"
	}
	if s, ok := k2s[k]; ok {
		return s
	}
	if k > 32 && k < 127 {
		return string(rune(k))
	}
	return "<UNKNOWN KEYNUM>"
}

// StringToKey returns -1 for unknown names. Letters are case
// insensitive.
func StringToKey(s string) KeyCode {
	if len(s) == 0 {
		return -1
	}
	if len(s) == 1 && s[0] > 32 && s[0] < 127 {
		return KeyCode(strings.ToLower(s)[0])
	}
	if v, ok := s2k[strings.ToUpper(s)]; ok {
		return v
	}
	return -1
}
