// SPDX-License-Identifier: GPL-2.0-or-later

package image

import (
	"image"
	"image/png"
	"log"
	"os"

	"github.com/pkg/errors"
)

// FlipRows reverses the row order of tightly packed RGBA 8bit data in
// place. GL returns pixels bottom row first.
func FlipRows(data []byte, width, height int) {
	stride := 4 * width
	row := make([]byte, stride)
	for y := 0; y < height/2; y++ {
		a := data[y*stride : (y+1)*stride]
		b := data[(height-1-y)*stride : (height-y)*stride]
		copy(row, a)
		copy(a, b)
		copy(b, row)
	}
}

// Write expects RGBA 8bit data
func Write(name string, data []byte, width, height int) error {
	if len(data) < width*height*4 {
		return errors.New("tried to write an image but there is not enough data")
	}
	r := image.Rect(0, 0, width, height)
	img := &image.NRGBA{
		Pix:    data,
		Stride: 4 * width,
		Rect:   r,
	}

	f, err := os.Create(name)
	if err != nil {
		log.Println(err)
		return err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		log.Println(err)
		return err
	}
	return nil
}
