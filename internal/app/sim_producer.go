// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/fused_localization/internal/config"
	"github.com/relabs-tech/fused_localization/internal/orientation"
	"github.com/relabs-tech/fused_localization/internal/sim"
	"github.com/relabs-tech/fused_localization/internal/transport"
)

// RunSimProducer publishes odometry and marker poses of a mock robot so the
// fusion node can run without hardware.
func RunSimProducer() error {
	cfg := config.Get()

	bus, err := transport.Connect("sim", cfg.MQTTBroker, cfg.MQTTClientIDSim)
	if err != nil {
		return err
	}
	defer bus.Close()

	robot := sim.NewRobot(time.Now(), cfg.SimSpeed, cfg.SimYawRate)
	log.Printf("sim: robot speed=%.2fm/s yaw rate=%.2frad/s, odometry every %dms, marker pose every %dms",
		cfg.SimSpeed, cfg.SimYawRate, cfg.SimOdomInterval, cfg.SimMarkerInterval)

	odomTicker := time.NewTicker(time.Duration(cfg.SimOdomInterval) * time.Millisecond)
	defer odomTicker.Stop()
	markerTicker := time.NewTicker(time.Duration(cfg.SimMarkerInterval) * time.Millisecond)
	defer markerTicker.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("sim: shutting down")
			return nil

		case t := <-odomTicker.C:
			if err := bus.PublishOdometry(cfg.TopicOdom, robot.OdometryAt(t)); err != nil {
				log.Printf("sim: %v", err)
			}

		case t := <-markerTicker.C:
			p := robot.PoseAt(t)
			if err := bus.PublishPose(cfg.TopicMarkerPose, false, p); err != nil {
				log.Printf("sim: %v", err)
				continue
			}
			log.Printf("%s published marker pose: X=%.3f Y=%.3f YAW=%.3f",
				t.Format(time.RFC3339), p.Position.X, p.Position.Y, orientation.Yaw(p.Orientation))
		}
	}
}
