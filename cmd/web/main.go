// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/fused_localization/internal/app"
	"github.com/relabs-tech/fused_localization/internal/config"
)

func main() {
	configPath := flag.String("config", "./fusion_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting fused-localization web server (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Println("Note: fused poses require the fusion node to be running (./fusion)")

	if err := app.RunWeb(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
