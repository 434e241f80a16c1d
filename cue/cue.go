// SPDX-License-Identifier: GPL-2.0-or-later

// Package cue plays short tones for events the experimenter should hear
// about without looking at a screen.
package cue

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/pkg/errors"
)

const (
	sampleRate = beep.SampleRate(44100)
	bufferSize = 1024
)

type Kind int

const (
	SceneSwitch Kind = iota
	TrackingLost
	TrackingRegained
)

type tone struct {
	freq float64
	dur  time.Duration
}

var tones = map[Kind]tone{
	SceneSwitch:      {880, 150 * time.Millisecond},
	TrackingLost:     {220, 400 * time.Millisecond},
	TrackingRegained: {660, 100 * time.Millisecond},
}

// Player plays cues. A nil *Player is silent.
type Player struct {
	sr     beep.SampleRate
	volume func() float64
	play   func(beep.Streamer)

	mu      sync.Mutex
	tracked bool
	known   bool
}

// New opens the default audio device. volume is the gain in powers of two,
// 0 is unchanged.
func New(volume func() float64) (*Player, error) {
	if err := speaker.Init(sampleRate, bufferSize); err != nil {
		return nil, errors.Wrap(err, "init speaker")
	}
	return newPlayer(sampleRate, volume, func(s beep.Streamer) {
		speaker.Play(s)
	}), nil
}

func newPlayer(sr beep.SampleRate, volume func() float64, play func(beep.Streamer)) *Player {
	return &Player{
		sr:     sr,
		volume: volume,
		play:   play,
	}
}

func (p *Player) streamer(k Kind) (beep.Streamer, error) {
	t, ok := tones[k]
	if !ok {
		return nil, errors.Errorf("unknown cue %d", k)
	}
	sine, err := generators.SineTone(p.sr, t.freq)
	if err != nil {
		return nil, errors.Wrapf(err, "cue %d", k)
	}
	return &effects.Volume{
		Streamer: beep.Take(p.sr.N(t.dur), sine),
		Base:     2,
		Volume:   p.volume(),
	}, nil
}

func (p *Player) Play(k Kind) error {
	if p == nil {
		return nil
	}
	s, err := p.streamer(k)
	if err != nil {
		return err
	}
	p.play(s)
	return nil
}

// Tracking plays TrackingLost or TrackingRegained when the state differs
// from the previous call. The first call only records the state.
func (p *Player) Tracking(tracked bool) error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	changed := p.known && p.tracked != tracked
	p.tracked = tracked
	p.known = true
	p.mu.Unlock()
	if !changed {
		return nil
	}
	if tracked {
		return p.Play(TrackingRegained)
	}
	return p.Play(TrackingLost)
}

func (p *Player) Close() {
	if p == nil {
		return
	}
	speaker.Close()
}
