// SPDX-License-Identifier: GPL-2.0-or-later

package cvar

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"ratcave/cmd"
)

func TestRegister(t *testing.T) {
	cv, err := Register("test_register", "2.5", ARCHIVE)
	if err != nil {
		t.Fatal(err)
	}
	if cv.Value() != 2.5 || cv.String() != "2.5" || !cv.Archive() {
		t.Errorf("got %v %q %v", cv.Value(), cv.String(), cv.Archive())
	}
	if _, err := Register("TEST_REGISTER", "1", NONE); errors.Cause(err) != ErrDuplicate {
		t.Errorf("duplicate register: %v", err)
	}
	if got, ok := Get("Test_Register"); !ok || got != cv {
		t.Errorf("Get is not case insensitive")
	}
}

func TestROM(t *testing.T) {
	cv := MustRegister("test_rom", "1", ROM)
	cv.SetByString("2")
	if cv.String() != "1" {
		t.Errorf("ROM cvar changed to %q", cv.String())
	}
	cv.SetROM("3")
	if cv.Value() != 3 {
		t.Errorf("SetROM did not apply, got %v", cv.Value())
	}
}

func TestCallbackAndReset(t *testing.T) {
	cv := MustRegister("test_cb", "0", NONE)
	calls := 0
	cv.SetCallback(func(*Cvar) { calls++ })
	cv.SetValue(4)
	cv.Toggle()
	cv.Reset()
	if calls != 3 {
		t.Errorf("callback ran %d times, want 3", calls)
	}
	if cv.String() != "0" {
		t.Errorf("Reset gave %q", cv.String())
	}
	cv.SetValue(0.25)
	if cv.String() != "0.25" {
		t.Errorf("SetValue(0.25) gave %q", cv.String())
	}
}

func TestVec3(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    mgl32.Vec3
		wantErr bool
	}{
		{in: "0.6 0 0", want: mgl32.Vec3{0.6, 0, 0}},
		{in: " 1 ", want: mgl32.Vec3{1, 1, 1}},
		{in: "1 2", wantErr: true},
		{in: "a b c", wantErr: true},
	} {
		cv := &Cvar{name: "v", stringValue: tc.in}
		got, err := cv.Vec3()
		if (err != nil) != tc.wantErr {
			t.Errorf("Vec3(%q) err = %v", tc.in, err)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("Vec3(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetCommand(t *testing.T) {
	cv := MustRegister("test_set", "1 1 1", NONE)
	if ok, err := cmd.Execute(cmd.Parse("set test_set 0.5 0.5 0.5")); !ok || err != nil {
		t.Fatalf("set: %v %v", ok, err)
	}
	if cv.String() != "0.5 0.5 0.5" {
		t.Errorf("set gave %q", cv.String())
	}
	if ok, _ := Execute(cmd.Parse(`test_set "1 0 0"`)); !ok {
		t.Fatalf("Execute did not find cvar")
	}
	if cv.String() != "1 0 0" {
		t.Errorf("direct assignment gave %q", cv.String())
	}
	cmd.Execute(cmd.Parse("set test_user 7"))
	u, ok := Get("test_user")
	if !ok || !u.UserDefined() || u.Value() != 7 {
		t.Errorf("user cvar not created: %v %v", u, ok)
	}
}

func TestCycle(t *testing.T) {
	cv := MustRegister("test_cycle", "a", NONE)
	for _, want := range []string{"b", "c", "a"} {
		cmd.Execute(cmd.Parse("cycle test_cycle a b c"))
		if cv.String() != want {
			t.Errorf("cycle gave %q, want %q", cv.String(), want)
		}
	}
}
