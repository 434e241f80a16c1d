// SPDX-License-Identifier: GPL-2.0-or-later

package cbuf

import (
	"strings"
	"sync"

	"ratcave/cmd"
)

// CommandBuffer collects console text from any goroutine and executes it
// line by line on the goroutine calling Execute.
type CommandBuffer struct {
	mu   sync.Mutex
	text string
	// toggle to add a wait to Execute,
	// causing the following commands to be executed one frame later
	wait      bool
	executors executors
}

func (c *CommandBuffer) SetCommandExecutors(e []Efunc) {
	c.executors = e
}

// Wait stops the current Execute after the running command.
func (c *CommandBuffer) Wait() {
	c.mu.Lock()
	c.wait = true
	c.mu.Unlock()
}

func (c *CommandBuffer) nextLine() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.text) == 0 {
		return "", false
	}
	i := 0
	quote := false
LineLoop:
	for i = 0; i < len(c.text); i++ {
		switch c.text[i] {
		case '"':
			quote = !quote
			continue LineLoop
		case ';':
			if quote {
				continue LineLoop
			}
			break LineLoop
		case '\n':
			break LineLoop
		}
	}
	// do not put ';' or '\n' in line
	line := c.text[:i]
	// but remove this char as well
	if i < len(c.text) {
		i++
	}
	c.text = c.text[i:]
	return line, true
}

func (c *CommandBuffer) waiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.wait
	c.wait = false
	return w
}

// Execute runs buffered lines until the buffer is empty or a command
// requested a wait. Errors of single commands are returned joined by
// line; execution continues with the next line.
func (c *CommandBuffer) Execute() []error {
	var errs []error
	for {
		line, ok := c.nextLine()
		if !ok {
			return errs
		}
		if err := c.executors.execute(c, line); err != nil {
			errs = append(errs, err)
		}
		if c.waiting() {
			// wait for the next frame to continue executing
			return errs
		}
	}
}

func (c *CommandBuffer) AddText(text string) {
	c.mu.Lock()
	c.text = c.text + text
	c.mu.Unlock()
}

func (c *CommandBuffer) InsertText(text string) {
	c.mu.Lock()
	c.text = text + "\n" + c.text
	c.mu.Unlock()
}

// AddLine appends a single command line.
func (c *CommandBuffer) AddLine(line string) {
	c.AddText(strings.TrimRight(line, "\n") + "\n")
}

// Executor adapts cmd.Execute-style functions.
func Executor(f func(cmd.Arguments) (bool, error)) Efunc {
	return func(_ *CommandBuffer, a cmd.Arguments) (bool, error) {
		return f(a)
	}
}
