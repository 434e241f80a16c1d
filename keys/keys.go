// SPDX-License-Identifier: GPL-2.0-or-later

// Package keys maps keys of the projector machine to console commands.
package keys

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"ratcave/keycode"
)

var ErrUnknownKey = errors.New("unknown key")

type Bindings struct {
	mu sync.Mutex
	m  map[keycode.KeyCode]string
}

func (b *Bindings) Bind(key, command string) error {
	k := keycode.StringToKey(key)
	if k == -1 {
		return errors.Wrap(ErrUnknownKey, key)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.m == nil {
		b.m = make(map[keycode.KeyCode]string)
	}
	b.m[k] = command
	return nil
}

func (b *Bindings) Unbind(key string) error {
	k := keycode.StringToKey(key)
	if k == -1 {
		return errors.Wrap(ErrUnknownKey, key)
	}
	b.mu.Lock()
	delete(b.m, k)
	b.mu.Unlock()
	return nil
}

func (b *Bindings) UnbindAll() {
	b.mu.Lock()
	b.m = nil
	b.mu.Unlock()
}

// Command returns the command bound to k.
func (b *Bindings) Command(k keycode.KeyCode) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.m[k]
	return c, ok
}

type Binding struct {
	Key     string
	Command string
}

// List returns all bindings sorted by key name.
func (b *Bindings) List() []Binding {
	b.mu.Lock()
	l := make([]Binding, 0, len(b.m))
	for k, c := range b.m {
		l = append(l, Binding{keycode.KeyToString(k), c})
	}
	b.mu.Unlock()
	sort.Slice(l, func(i, j int) bool { return l[i].Key < l[j].Key })
	return l
}
