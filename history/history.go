// SPDX-License-Identifier: GPL-2.0-or-later

// Package history keeps the console lines sent by monitor clients across
// sessions.
package history

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"ratcave/protos"
)

const (
	// add a max size to prevent the file from growing indefinitely
	maxHistory = 32
)

type History struct {
	mu  sync.Mutex
	txt []string
}

// Add appends s unless it repeats the previous line.
func (h *History) Add(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.txt); n > 0 && h.txt[n-1] == s {
		return
	}
	h.txt = append(h.txt, s)
	if len(h.txt) > maxHistory {
		h.txt = h.txt[len(h.txt)-maxHistory:]
	}
}

// Entries returns a copy, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.txt...)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.txt)
}

var entriesField = protos.Field(protos.History, "entries")

func marshal(entries []string) ([]byte, error) {
	m := protos.New(protos.History)
	l := m.Mutable(entriesField).List()
	for _, e := range entries {
		l.Append(protoreflect.ValueOfString(e))
	}
	return proto.Marshal(m)
}

func unmarshal(b []byte) ([]string, error) {
	m := protos.New(protos.History)
	if err := proto.Unmarshal(b, m); err != nil {
		return nil, err
	}
	l := m.Get(entriesField).List()
	entries := make([]string, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		entries = append(entries, l.Get(i).String())
	}
	return entries, nil
}

// Load replaces the history with the file content. A missing file is an
// empty history.
func (h *History) Load(name string) error {
	in, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "failed to read history")
	}
	entries, err := unmarshal(in)
	if err != nil {
		return errors.Wrap(err, "failed to decode history")
	}
	if len(entries) > maxHistory {
		entries = entries[len(entries)-maxHistory:]
	}
	h.mu.Lock()
	h.txt = entries
	h.mu.Unlock()
	return nil
}

func (h *History) Save(name string) error {
	out, err := marshal(h.Entries())
	if err != nil {
		return errors.Wrap(err, "failed to encode history")
	}
	if err := os.WriteFile(name, out, 0660); err != nil {
		return errors.Wrap(err, "failed to write history file")
	}
	return nil
}
