// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"ratcave/conlog"
)

// ErrCommandExists is returned when a command name is registered twice.
var ErrCommandExists = errors.New("command already defined")

// Func runs a console command. args.Argv(0) is the command name.
type Func func(args Arguments) error

type Commands map[string]Func

func New() *Commands {
	c := make(Commands)
	return &c
}

func (c *Commands) Add(name string, f Func) error {
	ln := strings.ToLower(name)
	if _, ok := (*c)[ln]; ok {
		return errors.Wrap(ErrCommandExists, ln)
	}
	(*c)[ln] = f
	return nil
}

func (c *Commands) Exists(cmdName string) bool {
	name := strings.ToLower(cmdName)
	_, ok := (*c)[name]
	return ok
}

func (c *Commands) List() []string {
	cmds := make([]string, 0, len(*c))
	for cmd := range *c {
		cmds = append(cmds, cmd)
	}
	sort.Strings(cmds)
	return cmds
}

// Execute runs the command named by the first argument. The bool result
// reports whether a command with that name exists.
func (c *Commands) Execute(a Arguments) (bool, error) {
	n := a.Args()
	if len(n) == 0 {
		return false, nil
	}
	name := strings.ToLower(n[0].String())
	if cmd, ok := (*c)[name]; ok {
		if err := cmd(a); err != nil {
			return true, errors.Wrap(err, name)
		}
		return true, nil
	}
	return false, nil
}

var (
	commands = make(Commands)
)

func init() {
	Must(AddCommand("cmdlist", printCmdList))
}

func Must(err error) {
	if err != nil {
		panic(err.Error())
	}
}

func AddCommand(name string, f Func) error {
	return commands.Add(name, f)
}

func Exists(cmdName string) bool {
	return commands.Exists(cmdName)
}

func Execute(a Arguments) (bool, error) {
	return commands.Execute(a)
}

func List() []string {
	return commands.List()
}

func printCmdList(a Arguments) error {
	part := a.Argv(1).String()
	count := 0
	for _, c := range commands.List() {
		if strings.HasPrefix(c, part) {
			conlog.Printf("  %s\n", c)
			count++
		}
	}
	conlog.Printf("%v commands\n", count)
	return nil
}
