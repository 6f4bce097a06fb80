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

	log.Println("starting fused-localization MQTT producer (mock robot)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunSimProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
