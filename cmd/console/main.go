// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/fused_localization/internal/app"
)

func main() {
	simulate := flag.Duration("simulate", 0, "run on simulated time for this long and exit (0 runs in real time)")
	flag.Parse()

	if *simulate > 0 {
		if err := app.SimulateMockConsole(os.Stdout, *simulate, 10); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	log.Println("starting fused-localization (mock console)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunMockConsole(ctx, os.Stdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
