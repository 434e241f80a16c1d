// SPDX-License-Identifier: GPL-2.0-or-later

package scene

import (
	"encoding/json"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// calibration is the projector calibration file layout:
//
//	{
//	  "position": [x, y, z],
//	  "rotation": [qx, qy, qz, qw],
//	  "rotation_euler": [x, y, z],
//	  "projection": {"fov_y": 41.5, "aspect": 1.77778, "z_near": 0.01, "z_far": 4.5}
//	}
//
// rotation wins over rotation_euler when both are present. Missing
// projection fields keep their defaults.
type calibration struct {
	Position      []float32   `mapstructure:"position"`
	Rotation      []float32   `mapstructure:"rotation"`
	RotationEuler []float32   `mapstructure:"rotation_euler"`
	Projection    Projection  `mapstructure:"projection"`
}

// LoadCamera reads a projector calibration file.
func LoadCamera(path string) (*Camera, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open calibration")
	}
	defer f.Close()
	c, err := ReadCamera(f)
	if err != nil {
		return nil, errors.Wrapf(err, "calibration %s", path)
	}
	return c, nil
}

func ReadCamera(r io.Reader) (*Camera, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode json")
	}
	cal := calibration{Projection: DefaultProjection()}
	if err := mapstructure.Decode(raw, &cal); err != nil {
		return nil, errors.Wrap(err, "decode calibration")
	}
	cam := NewCamera()
	switch len(cal.Position) {
	case 0:
	case 3:
		cam.Position = mgl32.Vec3{cal.Position[0], cal.Position[1], cal.Position[2]}
	default:
		return nil, errors.Errorf("position needs 3 values, got %d", len(cal.Position))
	}
	switch {
	case len(cal.Rotation) == 4:
		cam.Rotation = mgl32.Quat{W: cal.Rotation[3], V: mgl32.Vec3{cal.Rotation[0], cal.Rotation[1], cal.Rotation[2]}}.Normalize()
	case len(cal.Rotation) != 0:
		return nil, errors.Errorf("rotation needs 4 values, got %d", len(cal.Rotation))
	case len(cal.RotationEuler) == 3:
		cam.SetRotationEuler(cal.RotationEuler[0], cal.RotationEuler[1], cal.RotationEuler[2])
	case len(cal.RotationEuler) != 0:
		return nil, errors.Errorf("rotation_euler needs 3 values, got %d", len(cal.RotationEuler))
	}
	cam.Projection = cal.Projection
	if err := cam.Projection.Validate(); err != nil {
		return nil, err
	}
	cam.Update()
	return cam, nil
}
