// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/fused_localization/internal/config"
	"github.com/relabs-tech/fused_localization/internal/localization"
	"github.com/relabs-tech/fused_localization/internal/markers"
	"github.com/relabs-tech/fused_localization/internal/orientation"
	"github.com/relabs-tech/fused_localization/internal/transport"
)

// statusInterval is how often the fusion node logs its latest fused pose.
const statusInterval = 5 * time.Second

// fusionOptions maps the configuration onto the scheduler options.
func fusionOptions(cfg *config.Config) localization.Options {
	return localization.Options{
		Frequency:    cfg.FusionFrequency,
		FrameID:      cfg.FusedFrameID,
		StaleTimeout: cfg.FusionStaleTimeout,
	}
}

// loadMarkers loads the marker layout if one is configured.
func loadMarkers(cfg *config.Config) (*markers.Config, error) {
	if cfg.MarkerConfigFile == "" {
		return nil, nil
	}
	mc, err := markers.Load(cfg.MarkerConfigFile, cfg.PatternDir)
	if err != nil {
		return nil, err
	}
	log.Printf("markers: loaded %d markers (size %.3fm) from %s",
		len(mc.PatternFiles()), mc.MarkerSize(), cfg.MarkerConfigFile)
	return mc, nil
}

// RunFusion subscribes to odometry and marker poses, runs the fusion loop
// and publishes fused poses until SIGINT or SIGTERM.
func RunFusion() error {
	cfg := config.Get()

	// The layout is only checked here; poses arrive already in the map frame.
	mc, err := loadMarkers(cfg)
	if err != nil {
		return fmt.Errorf("fusion: %w", err)
	}
	if mc != nil {
		log.Printf("fusion: marker layout has %d corner points", len(mc.Points()))
	}

	bus, err := transport.Connect("fusion", cfg.MQTTBroker, cfg.MQTTClientIDFusion)
	if err != nil {
		return err
	}
	defer bus.Close()

	velocities := localization.NewOdomVelocityEstimator(cfg.YawRateWrap)
	poses := localization.NewMarkerPoseEstimator()

	if err := bus.SubscribeOdometry(cfg.TopicOdom, velocities.OnOdometry); err != nil {
		return err
	}
	if err := bus.SubscribePose(cfg.TopicMarkerPose, poses.OnPose); err != nil {
		return err
	}

	fused := localization.NewFusedLocalization(
		poses, velocities, bus.PosePublisher(cfg.TopicPoseFused), fusionOptions(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fused.Start(ctx); err != nil {
		return fmt.Errorf("fusion: %w", err)
	}
	log.Printf("fusion: publishing fused poses on %s (frame %s)", cfg.TopicPoseFused, cfg.FusedFrameID)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("fusion: shutting down")
			fused.Stop()
			return nil
		case t := <-ticker.C:
			p, ok := fused.LastFused()
			if !ok {
				log.Printf("%s status: waiting for marker pose and odometry", t.Format(time.RFC3339))
				continue
			}
			log.Printf("%s status: fused X=%.3f Y=%.3f Z=%.3f YAW=%.3f (age %s)",
				t.Format(time.RFC3339),
				p.Position.X, p.Position.Y, p.Position.Z,
				orientation.Yaw(p.Orientation),
				t.Sub(p.Stamp).Round(time.Millisecond),
			)
		}
	}
}
