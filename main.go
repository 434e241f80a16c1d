// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"flag"
	"log"

	"github.com/gopxl/mainthread/v2"

	"ratcave/host"
)

func main() {
	flag.Parse()
	mainthread.Run(func() {
		if err := host.Run(); err != nil {
			log.Fatalf("ratcave: %v", err)
		}
	})
}
