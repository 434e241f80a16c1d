// SPDX-License-Identifier: GPL-2.0-or-later

package record

import (
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"

	"ratcave/natnet"
)

// Player replays a recording in real time. It serves poses like a live
// natnet client.
type Player struct {
	frames []Frame
	names  []string
	ids    map[string]int32
	start  time.Time
	// Loop restarts playback after the last frame.
	Loop bool

	now func() time.Time
}

func NewPlayer(frames []Frame) (*Player, error) {
	if len(frames) == 0 {
		return nil, errors.Wrap(ErrMalformed, "empty recording")
	}
	p := &Player{
		frames: frames,
		ids:    make(map[string]int32),
		now:    time.Now,
	}
	for _, f := range frames {
		for _, b := range f.Poses {
			if _, ok := p.ids[b.Name]; !ok {
				p.ids[b.Name] = b.ID
				p.names = append(p.names, b.Name)
			}
		}
	}
	sort.Strings(p.names)
	p.start = p.now()
	return p, nil
}

// Open loads the recording at path.
func Open(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open recording")
	}
	defer f.Close()
	frames, err := ReadFrames(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return NewPlayer(frames)
}

// Restart rewinds to the first frame.
func (p *Player) Restart() {
	p.start = p.now()
}

func (p *Player) Duration() time.Duration {
	return p.frames[len(p.frames)-1].Elapsed - p.frames[0].Elapsed
}

func (p *Player) current() *Frame {
	el := p.now().Sub(p.start)
	if d := p.Duration(); p.Loop && d > 0 {
		el %= d
	}
	t := p.frames[0].Elapsed + el
	i := sort.Search(len(p.frames), func(i int) bool {
		return p.frames[i].Elapsed > t
	})
	if i > 0 {
		i--
	}
	return &p.frames[i]
}

// Frame is the number of the frame played right now.
func (p *Player) Frame() int32 {
	return p.current().Number
}

func (p *Player) Names() []string {
	return append([]string(nil), p.names...)
}

// Pose returns the body as recorded in the current frame. Bodies known
// from other frames are returned unseen.
func (p *Player) Pose(name string) (natnet.Pose, error) {
	id, ok := p.ids[name]
	if !ok {
		return natnet.Pose{}, errors.Wrap(natnet.ErrUnknownRigidBody, name)
	}
	for _, b := range p.current().Poses {
		if b.Name == name {
			return b, nil
		}
	}
	return natnet.Pose{ID: id, Name: name}, nil
}
