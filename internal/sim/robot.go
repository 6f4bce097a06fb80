// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sim

import (
	"math"
	"time"

	"github.com/golang/geo/r3"

	"github.com/relabs-tech/fused_localization/internal/localization"
	"github.com/relabs-tech/fused_localization/internal/orientation"
)

// Robot is a mock platform driving a circle at constant forward speed and
// yaw rate, starting at the origin facing +X.
type Robot struct {
	start   time.Time
	speed   float64 // m/s, body X
	yawRate float64 // rad/s
	frameID string
}

// NewRobot creates a mock robot whose trajectory starts at start.
func NewRobot(start time.Time, speed, yawRate float64) *Robot {
	return &Robot{start: start, speed: speed, yawRate: yawRate, frameID: localization.DefaultFrameID}
}

// PoseAt returns the true pose at t, as a perfect marker detector would see it.
func (r *Robot) PoseAt(t time.Time) localization.Pose {
	elapsed := t.Sub(r.start).Seconds()
	yaw := r.yawRate * elapsed

	var pos r3.Vector
	if math.Abs(r.yawRate) < 1e-9 {
		pos = r3.Vector{X: r.speed * elapsed}
	} else {
		radius := r.speed / r.yawRate
		pos = r3.Vector{
			X: radius * math.Sin(yaw),
			Y: radius * (1 - math.Cos(yaw)),
		}
	}

	return localization.Pose{
		Position:    pos,
		Orientation: orientation.YawToQuaternion(orientation.AngleDistance(0, yaw)),
		Stamp:       t,
		FrameID:     r.frameID,
	}
}

// OdometryAt returns the odometry sample the platform would report at t.
func (r *Robot) OdometryAt(t time.Time) localization.Odometry {
	p := r.PoseAt(t)
	return localization.Odometry{
		Stamp:       t,
		Orientation: p.Orientation,
		Linear:      r3.Vector{X: r.speed},
	}
}
