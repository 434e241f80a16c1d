// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"log"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Arg is a single token of a console line.
type Arg struct {
	a string
}

func (a Arg) String() string {
	return a.a
}

func (a Arg) Int() int {
	r, err := strconv.ParseInt(a.a, 10, 0)
	if err != nil {
		return 0
	}
	return int(r)
}

func (a Arg) Float32() float32 {
	r, err := strconv.ParseFloat(a.a, 32)
	if err != nil {
		return 0
	}
	return float32(r)
}

func (a Arg) Float64() float64 {
	r, err := strconv.ParseFloat(a.a, 64)
	if err != nil {
		return 0
	}
	return r
}

func (a Arg) Bool() bool {
	switch a.a {
	case "1", "t", "T", "true", "TRUE", "True", "On", "ON", "on":
		return true
	default:
		return false
	}
}

type Arguments struct {
	// each arg on its own
	args []Arg
	// concat of args[1:]
	full string
}

// Argv returns the i-th token or an empty Arg if there is none.
func (c *Arguments) Argv(i int) Arg {
	if i < 0 || i >= len(c.args) {
		return Arg{""}
	}
	return c.args[i]
}

func (c *Arguments) Full() string {
	return c.full
}

func (c *Arguments) Args() []Arg {
	return c.args
}

func (c *Arguments) ArgumentString() string {
	// args[0] is the cmd
	if len(c.args) < 2 {
		return ""
	}
	r := strings.TrimPrefix(c.full, c.args[0].String())
	r = strings.TrimLeftFunc(r, unicode.IsSpace)
	// we want to remove " around the text.
	// the end is not that important but the result should not start with " or
	// space.
	if len(r) > 1 {
		if r[0] == '"' {
			r = strings.Trim(r, "\"\t\n\v\f\r ")
		}
	}
	return r
}

// Parse splits a console line into arguments. Quoted text is a single
// argument without its quotes, "//" starts a comment and a line break ends
// the line.
func Parse(s string) (args Arguments) {
	args.full = strings.TrimFunc(s, unicode.IsSpace)
	args.args = []Arg{}

	in := args.full
	for len(in) > 0 {
		r, w := utf8.DecodeRuneInString(in)
		switch {
		case isEndOfLine(r):
			return
		case isSpace(r):
			in = in[w:]
		case r == '"':
			end := strings.IndexAny(in[1:], "\"\n")
			if end < 0 || in[1+end] == '\n' {
				log.Printf("unterminated string in %q", s)
				return
			}
			args.args = append(args.args, Arg{in[1 : 1+end]})
			in = in[end+2:]
		case strings.HasPrefix(in, "//"):
			return
		default:
			end := strings.IndexFunc(in, func(r rune) bool { return !isWordRune(r) })
			if end < 0 {
				end = len(in)
			}
			args.args = append(args.args, Arg{in[:end]})
			in = in[end:]
		}
	}
	return
}

func isWordRune(r rune) bool {
	return r > ' '
}

func isEndOfLine(r rune) bool {
	return r == '\r' || r == '\n'
}

func isSpace(r rune) bool {
	return r <= ' ' && !isEndOfLine(r)
}
