// SPDX-License-Identifier: GPL-2.0-or-later

package conlog

import (
	"fmt"
	"log"
	"sync"
)

// Sink receives every console line after formatting.
type Sink func(line string)

var (
	mu    sync.Mutex
	sinks = map[int]Sink{}
	next  int
)

// AddSink attaches s to the console and returns a function detaching it.
func AddSink(s Sink) (remove func()) {
	mu.Lock()
	defer mu.Unlock()
	id := next
	next++
	sinks[id] = s
	return func() {
		mu.Lock()
		delete(sinks, id)
		mu.Unlock()
	}
}

// Printf writes to every attached sink. Without sinks the line goes to the
// standard logger so nothing is lost during startup.
func Printf(format string, v ...interface{}) {
	line := fmt.Sprintf(format, v...)
	mu.Lock()
	ss := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		ss = append(ss, s)
	}
	mu.Unlock()
	if len(ss) == 0 {
		log.Print(line)
		return
	}
	for _, s := range ss {
		s(line)
	}
}
