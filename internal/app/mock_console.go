// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/relabs-tech/fused_localization/internal/config"
	"github.com/relabs-tech/fused_localization/internal/localization"
	"github.com/relabs-tech/fused_localization/internal/orientation"
	"github.com/relabs-tech/fused_localization/internal/sim"
)

// mockPipeline runs the whole estimation chain in-process against a mock
// robot. Samples are delivered on the robot's own schedule as time advances.
type mockPipeline struct {
	robot      *sim.Robot
	velocities *localization.OdomVelocityEstimator
	poses      *localization.MarkerPoseEstimator
	fused      *localization.FusedLocalization

	odomEvery   time.Duration
	markerEvery time.Duration
	nextOdom    time.Time
	nextMarker  time.Time
}

var discardPoses = localization.PublisherFunc(func(localization.Pose) error { return nil })

func newMockPipeline(cfg *config.Config, start time.Time, pub localization.Publisher) *mockPipeline {
	m := &mockPipeline{
		robot:       sim.NewRobot(start, cfg.SimSpeed, cfg.SimYawRate),
		velocities:  localization.NewOdomVelocityEstimator(cfg.YawRateWrap),
		poses:       localization.NewMarkerPoseEstimator(),
		odomEvery:   time.Duration(cfg.SimOdomInterval) * time.Millisecond,
		markerEvery: time.Duration(cfg.SimMarkerInterval) * time.Millisecond,
		nextOdom:    start,
		nextMarker:  start,
	}
	m.fused = localization.NewFusedLocalization(m.poses, m.velocities, pub, fusionOptions(cfg))
	return m
}

// step delivers every sample due by now, then runs one fusion tick.
func (m *mockPipeline) step(now time.Time) (localization.Pose, bool) {
	for !m.nextOdom.After(now) {
		m.velocities.OnOdometry(m.robot.OdometryAt(m.nextOdom))
		m.nextOdom = m.nextOdom.Add(m.odomEvery)
	}
	for !m.nextMarker.After(now) {
		m.poses.OnPose(m.robot.PoseAt(m.nextMarker))
		m.nextMarker = m.nextMarker.Add(m.markerEvery)
	}
	return m.fused.Tick(now)
}

func printComparison(w io.Writer, elapsed time.Duration, p, truth localization.Pose) error {
	_, err := fmt.Fprintf(w,
		"t=%7.3fs  FUSED X=%7.3f Y=%7.3f YAW=%6.3f  TRUE X=%7.3f Y=%7.3f YAW=%6.3f\n",
		elapsed.Seconds(),
		p.Position.X, p.Position.Y, orientation.Yaw(p.Orientation),
		truth.Position.X, truth.Position.Y, orientation.Yaw(truth.Orientation),
	)
	return err
}

// SimulateMockConsole drives the mock robot for duration on simulated time,
// as fast as possible, printing fused and true poses every printEvery ticks.
func SimulateMockConsole(w io.Writer, duration time.Duration, printEvery int) error {
	cfg := config.Default()
	start := time.Unix(0, 0).UTC()
	m := newMockPipeline(cfg, start, discardPoses)

	steps := int(duration / m.fused.Period())
	for i := 0; i <= steps; i++ {
		now := start.Add(time.Duration(i) * m.fused.Period())
		p, ok := m.step(now)
		if !ok || (printEvery > 0 && i%printEvery != 0) {
			continue
		}
		if err := printComparison(w, now.Sub(start), p, m.robot.PoseAt(now)); err != nil {
			return err
		}
	}
	return nil
}

// RunMockConsole runs the fusion chain against a mock robot in real time,
// with no broker, until ctx is done.
func RunMockConsole(ctx context.Context, w io.Writer) error {
	cfg := config.Default()
	start := time.Now()
	m := newMockPipeline(cfg, start, discardPoses)

	ticker := time.NewTicker(m.fused.Period())
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			p, ok := m.step(now)
			if !ok || n%10 != 0 {
				continue
			}
			if err := printComparison(w, now.Sub(start), p, m.robot.PoseAt(now)); err != nil {
				return err
			}
		}
	}
}
