// SPDX-License-Identifier: GPL-2.0-or-later

// Package record stores tracking sessions as a stream of length
// delimited protobuf frames and plays them back.
package record

import (
	"bufio"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protodelim"

	"ratcave/natnet"
	"ratcave/protos"
)

// maxFrameSize bounds a single record to guard against garbage lengths.
const maxFrameSize = 1 << 20

type Recorder struct {
	w      *bufio.Writer
	closer io.Closer
}

func NewRecorder(w io.Writer) *Recorder {
	r := &Recorder{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// Create truncates or creates the file at path.
func Create(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create recording")
	}
	return NewRecorder(f), nil
}

// Record appends one frame. Poses never seen by the tracker are skipped.
func (r *Recorder) Record(elapsed time.Duration, frame int32, poses []natnet.Pose) error {
	f := Frame{Number: frame, Elapsed: elapsed}
	for _, p := range poses {
		if p.Seen {
			f.Poses = append(f.Poses, p)
		}
	}
	if _, err := protodelim.MarshalTo(r.w, frameMessage(f)); err != nil {
		return errors.Wrap(err, "record")
	}
	return nil
}

func (r *Recorder) Flush() error {
	return r.w.Flush()
}

func (r *Recorder) Close() error {
	err := r.w.Flush()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ReadFrames reads all frames of a recording.
func ReadFrames(r io.Reader) ([]Frame, error) {
	br := bufio.NewReader(r)
	var frames []Frame
	opts := protodelim.UnmarshalOptions{MaxSize: maxFrameSize}
	for {
		m := protos.New(protos.Frame)
		err := opts.UnmarshalFrom(br, m)
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", len(frames))
		}
		f, err := frame(m)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", len(frames))
		}
		frames = append(frames, f)
	}
}
