// SPDX-License-Identifier: GPL-2.0-or-later

package hub

import (
	"ratcave/natnet"
)

// Event is the message exchanged with monitor clients.
type Event struct {
	Name string      `json:"name"`
	Data interface{} `json:"data"`
}

type Body struct {
	ID        int32      `json:"id"`
	Name      string     `json:"name"`
	Position  [3]float32 `json:"position"`
	Rotation  [4]float32 `json:"rotation"`
	MeanError float32    `json:"meanError"`
	Valid     bool       `json:"valid"`
}

// Tracking is the payload of "tracking" events. Rotations are x, y, z, w.
type Tracking struct {
	Frame         int32  `json:"frame"`
	RodentTracked bool   `json:"rodentTracked"`
	Bodies        []Body `json:"bodies"`
}

// Scenes is the payload of "scenes" events.
type Scenes struct {
	Scenes  []string `json:"scenes"`
	Current string   `json:"current"`
}

type historyEntries struct {
	Entries []string `json:"entries"`
}

type logLine struct {
	Line string `json:"line"`
}

func NewTracking(frame int32, rodentTracked bool, poses []natnet.Pose) Tracking {
	t := Tracking{
		Frame:         frame,
		RodentTracked: rodentTracked,
		Bodies:        make([]Body, 0, len(poses)),
	}
	for _, p := range poses {
		t.Bodies = append(t.Bodies, Body{
			ID:        p.ID,
			Name:      p.Name,
			Position:  p.Position,
			Rotation:  [4]float32{p.Rotation.V[0], p.Rotation.V[1], p.Rotation.V[2], p.Rotation.W},
			MeanError: p.MeanError,
			Valid:     p.Valid,
		})
	}
	return t
}
