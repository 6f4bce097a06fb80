// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package localization

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r3"

	"github.com/relabs-tech/fused_localization/internal/monitoring"
	"github.com/relabs-tech/fused_localization/internal/orientation"
)

const (
	// DefaultFrequency is the fusion tick rate in Hz.
	DefaultFrequency = 40.0
	// DefaultFrameID is the frame dead-reckoned poses are expressed in.
	DefaultFrameID = "map"
)

// ErrAlreadyRunning is returned by Start when the loop is already running.
var ErrAlreadyRunning = errors.New("fusion loop already running")

// Options configures a FusedLocalization. Zero values select the defaults.
type Options struct {
	// Frequency is the tick rate in Hz.
	Frequency float64
	// FrameID is stamped on dead-reckoned poses.
	FrameID string
	// StaleTimeout suppresses publishing while the latest raw pose is older
	// than this. Zero disables the check.
	StaleTimeout time.Duration
	// Clock returns "now" for each tick.
	Clock func() time.Time
}

// FusedLocalization combines the marker pose and the odometry velocity into
// a fixed-rate pose stream. Each tick either resets to the raw pose, when a
// new marker observation arrived since the previous tick, or dead-reckons
// from the last fused pose.
type FusedLocalization struct {
	poses      PoseEstimator
	velocities VelocityEstimator
	pub        Publisher
	opts       Options

	// Fusion state, touched only by the goroutine calling Tick.
	lastFused    *Pose
	lastRawStamp time.Time
	stale        bool

	published Latest[Pose]

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewFusedLocalization wires a scheduler. Nothing runs until Run or Start.
func NewFusedLocalization(poses PoseEstimator, velocities VelocityEstimator, pub Publisher, opts Options) *FusedLocalization {
	if opts.Frequency <= 0 {
		opts.Frequency = DefaultFrequency
	}
	if opts.FrameID == "" {
		opts.FrameID = DefaultFrameID
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &FusedLocalization{
		poses:      poses,
		velocities: velocities,
		pub:        pub,
		opts:       opts,
	}
}

// Period is the interval between ticks.
func (f *FusedLocalization) Period() time.Duration {
	return time.Duration(float64(time.Second) / f.opts.Frequency)
}

// Run ticks at the configured rate until ctx is done. The first tick runs
// immediately.
func (f *FusedLocalization) Run(ctx context.Context) {
	ticker := time.NewTicker(f.Period())
	defer ticker.Stop()

	f.Tick(f.opts.Clock())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Tick(f.opts.Clock())
		}
	}
}

// Start runs the loop in its own goroutine until Stop is called or ctx is done.
func (f *FusedLocalization) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.done != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	f.cancel = cancel
	f.done = done

	go func() {
		defer close(done)
		f.Run(ctx)
	}()

	monitoring.Logf("fusion: started at %.1f Hz (period %s)", f.opts.Frequency, f.Period())
	return nil
}

// Stop halts a loop started with Start and waits for it to exit.
// It is a no-op if the loop is not running.
func (f *FusedLocalization) Stop() {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	monitoring.Logf("fusion: stopped")
}

// LastFused returns the most recently published fused pose.
// Safe to call from any goroutine.
func (f *FusedLocalization) LastFused() (Pose, bool) {
	return f.published.Load()
}

// Tick runs one fusion step at time now and reports the pose it published.
// Nothing is published while either input is missing, or while the raw pose
// is stale.
func (f *FusedLocalization) Tick(now time.Time) (Pose, bool) {
	raw, ok := f.poses.MostRecentPose()
	if !ok {
		return Pose{}, false
	}
	vel, ok := f.velocities.MostRecentVelocity()
	if !ok {
		return Pose{}, false
	}

	if f.isStale(raw, now) {
		return Pose{}, false
	}

	var fused Pose
	switch {
	case f.lastFused == nil, !raw.Stamp.Equal(f.lastRawStamp):
		fused = raw
		f.lastRawStamp = raw.Stamp
	default:
		fused = f.deadReckon(*f.lastFused, vel.Velocity, now)
	}

	if err := f.pub.PublishPose(fused); err != nil {
		monitoring.Logf("fusion: publish error: %v", err)
	}
	f.lastFused = &fused
	f.published.Store(fused)
	return fused, true
}

func (f *FusedLocalization) isStale(raw Pose, now time.Time) bool {
	if f.opts.StaleTimeout <= 0 {
		return false
	}

	stale := now.Sub(raw.Stamp) > f.opts.StaleTimeout
	if stale != f.stale {
		if stale {
			monitoring.Logf("fusion: marker pose older than %s, suppressing output", f.opts.StaleTimeout)
		} else {
			monitoring.Logf("fusion: marker pose fresh again, resuming output")
		}
		f.stale = stale
	}
	return stale
}

// deadReckon integrates body-frame velocity v forward from last to now,
// assuming planar motion (roll = pitch = 0).
func (f *FusedLocalization) deadReckon(last Pose, v Velocity, now time.Time) Pose {
	yaw := orientation.Yaw(last.Orientation)
	inertial := BodyToInertial(v, yaw)
	dt := now.Sub(last.Stamp).Seconds()

	step := r3.Vector{X: inertial.X, Y: inertial.Y, Z: inertial.Z}.Mul(dt)
	return Pose{
		Position:    last.Position.Add(step),
		Orientation: orientation.YawToQuaternion(yaw + dt*inertial.Yaw),
		Stamp:       now,
		FrameID:     f.opts.FrameID,
	}
}

// BodyToInertial rotates the planar part of a body-frame velocity by yaw.
// Z and the yaw rate pass through unchanged.
func BodyToInertial(v Velocity, yaw float64) Velocity {
	sin, cos := math.Sincos(yaw)
	return Velocity{
		X:   v.X*cos - v.Y*sin,
		Y:   v.X*sin + v.Y*cos,
		Z:   v.Z,
		Yaw: v.Yaw,
	}
}
