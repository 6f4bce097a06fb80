// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package localization

import (
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a timestamped position and orientation expressed in FrameID.
type Pose struct {
	Position    r3.Vector
	Orientation quat.Number
	Stamp       time.Time
	FrameID     string
}

// Velocity is a linear velocity (m/s) plus a yaw rate (rad/s). Whether the
// linear part is body or inertial frame depends on where it came from.
type Velocity struct {
	X   float64
	Y   float64
	Z   float64
	Yaw float64
}

// VelocityStamped is a Velocity together with the stamp of the sample it was
// derived from.
type VelocityStamped struct {
	Velocity Velocity
	Stamp    time.Time
}

// Odometry is a single odometry sample: the platform orientation and its
// body-frame linear twist.
type Odometry struct {
	Stamp       time.Time
	Orientation quat.Number
	Linear      r3.Vector
}

// PoseEstimator provides the most recent absolute pose, if any.
type PoseEstimator interface {
	MostRecentPose() (Pose, bool)
}

// VelocityEstimator provides the most recent velocity estimate, if any.
type VelocityEstimator interface {
	MostRecentVelocity() (VelocityStamped, bool)
}

// Publisher carries fused poses out of the process.
type Publisher interface {
	PublishPose(Pose) error
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc func(Pose) error

func (fn PublisherFunc) PublishPose(p Pose) error { return fn(p) }
