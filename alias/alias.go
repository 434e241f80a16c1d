// SPDX-License-Identifier: GPL-2.0-or-later

// Package alias lets the console name a sequence of commands, e.g.
// `alias trial1 "scene forest; exec trial1.cfg"`.
package alias

import (
	"sort"
	"strings"
	"sync"

	"ratcave/cbuf"
	"ratcave/cmd"
	"ratcave/conlog"
)

type Aliases struct {
	mu sync.Mutex
	m  map[string]string
}

func New() *Aliases {
	return &Aliases{m: make(map[string]string)}
}

// Register adds the alias, unalias and unaliasall commands to c.
func (a *Aliases) Register(c *cmd.Commands) error {
	if err := c.Add("alias", a.alias); err != nil {
		return err
	}
	if err := c.Add("unalias", a.unalias); err != nil {
		return err
	}
	return c.Add("unaliasall", a.unaliasAll)
}

func (a *Aliases) alias(args cmd.Arguments) error {
	switch n := len(args.Args()); n {
	case 1:
		a.list()
	case 2:
		name := args.Argv(1).String()
		if v, ok := a.Get(name); ok {
			conlog.Printf("  %s: %s\n", name, v)
		}
	default:
		parts := make([]string, 0, n-2)
		for _, p := range args.Args()[2:] {
			parts = append(parts, p.String())
		}
		a.Set(args.Argv(1).String(), strings.Join(parts, " "))
	}
	return nil
}

func (a *Aliases) list() {
	a.mu.Lock()
	names := make([]string, 0, len(a.m))
	for k := range a.m {
		names = append(names, k)
	}
	a.mu.Unlock()
	if len(names) == 0 {
		conlog.Printf("no alias commands found\n")
		return
	}
	sort.Strings(names)
	for _, k := range names {
		v, _ := a.Get(k)
		conlog.Printf("  %s: %s\n", k, v)
	}
	conlog.Printf("%v alias command(s)\n", len(names))
}

func (a *Aliases) unalias(args cmd.Arguments) error {
	if len(args.Args()) != 2 {
		conlog.Printf("unalias <name> : delete alias\n")
		return nil
	}
	name := args.Argv(1).String()
	a.mu.Lock()
	_, ok := a.m[name]
	delete(a.m, name)
	a.mu.Unlock()
	if !ok {
		conlog.Printf("No alias named %s\n", name)
	}
	return nil
}

func (a *Aliases) unaliasAll(_ cmd.Arguments) error {
	a.mu.Lock()
	a.m = make(map[string]string)
	a.mu.Unlock()
	return nil
}

func (a *Aliases) Set(name, command string) {
	a.mu.Lock()
	a.m[name] = strings.TrimSpace(command)
	a.mu.Unlock()
}

func (a *Aliases) Get(name string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.m[name]
	return v, ok
}

// Execute expands an alias in front of the remaining buffer text.
func (a *Aliases) Execute(cb *cbuf.CommandBuffer, args cmd.Arguments) (bool, error) {
	if len(args.Args()) == 0 {
		return false, nil
	}
	v, ok := a.Get(args.Argv(0).String())
	if !ok {
		return false, nil
	}
	cb.InsertText(v)
	return true, nil
}
