// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package localization

import (
	"sync"

	"github.com/relabs-tech/fused_localization/internal/orientation"
)

// OdomVelocityEstimator derives velocities from an odometry stream.
// The linear velocity is the sample's reported twist; the yaw rate is the
// finite difference of the yaw of the two most recent samples.
type OdomVelocityEstimator struct {
	wrapYaw bool

	mu   sync.Mutex
	prev *Odometry

	latest Latest[VelocityStamped]
}

// NewOdomVelocityEstimator creates an estimator. When wrapYaw is set, the
// yaw difference is taken along the shortest arc (AngleDistance) instead of
// as a plain subtraction.
func NewOdomVelocityEstimator(wrapYaw bool) *OdomVelocityEstimator {
	return &OdomVelocityEstimator{wrapYaw: wrapYaw}
}

// OnOdometry consumes one odometry sample. Samples must arrive in stamp order.
// Equal stamps are not filtered and give a non-finite yaw rate.
func (e *OdomVelocityEstimator) OnOdometry(s Odometry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.prev == nil {
		e.prev = &s
		return
	}

	e.latest.Store(VelocityStamped{
		Velocity: Velocity{
			X:   s.Linear.X,
			Y:   s.Linear.Y,
			Z:   s.Linear.Z,
			Yaw: e.yawRate(*e.prev, s),
		},
		Stamp: s.Stamp,
	})
	e.prev = &s
}

func (e *OdomVelocityEstimator) yawRate(prev, cur Odometry) float64 {
	prevYaw := orientation.Yaw(prev.Orientation)
	curYaw := orientation.Yaw(cur.Orientation)
	dt := cur.Stamp.Sub(prev.Stamp).Seconds()

	if e.wrapYaw {
		return orientation.AngleDistance(prevYaw, curYaw) / dt
	}
	return (curYaw - prevYaw) / dt
}

// MostRecentVelocity implements VelocityEstimator.
func (e *OdomVelocityEstimator) MostRecentVelocity() (VelocityStamped, bool) {
	return e.latest.Load()
}
