// SPDX-License-Identifier: GPL-2.0-or-later

package image

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFlipRows(t *testing.T) {
	data := []byte{
		1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4,
		5, 5, 5, 5, 6, 6, 6, 6,
	}
	FlipRows(data, 2, 3)
	want := []byte{
		5, 5, 5, 5, 6, 6, 6, 6,
		3, 3, 3, 3, 4, 4, 4, 4,
		1, 1, 1, 1, 2, 2, 2, 2,
	}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("FlipRows = %v, want %v", data, want)
		}
	}
}

func TestWrite(t *testing.T) {
	name := filepath.Join(t.TempDir(), "shot.png")
	data := []byte{255, 0, 0, 255, 0, 255, 0, 255}
	if err := Write(name, data, 2, 1); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Errorf("bounds = %v", b)
	}
	if r, g, _, _ := img.At(1, 0).RGBA(); r != 0 || g != 0xffff {
		t.Errorf("pixel 1 = %v", img.At(1, 0))
	}
}

func TestWriteShort(t *testing.T) {
	if err := Write(filepath.Join(t.TempDir(), "x.png"), []byte{1, 2}, 2, 2); err == nil {
		t.Errorf("short data accepted")
	}
}
