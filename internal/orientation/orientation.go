// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// EulerAngle holds roll (X), pitch (Y) and yaw (Z) in radians.
// It is always derived from a quaternion.
type EulerAngle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// AngleDistance returns b - a wrapped into [-pi, pi].
// A negative distance means b lies clockwise of a.
func AngleDistance(a, b float64) float64 {
	d := b - a
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return d
	}
	// Large inputs are folded first so the loops below run at most once each.
	if math.Abs(d) > 4*math.Pi {
		d = math.Remainder(d, 2*math.Pi)
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	return d
}

// QuaternionToEuler converts a unit quaternion into XYZ (roll, pitch, yaw)
// angles. The input is not normalized; a malformed quaternion yields NaN.
//
//	roll  = atan2(2(wx + yz), 1 - 2(x² + y²))
//	pitch = asin(2(wy - zx))
//	yaw   = atan2(2(wz + xy), 1 - 2(y² + z²))
func QuaternionToEuler(q quat.Number) EulerAngle {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	return EulerAngle{
		X: math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)),
		Y: math.Asin(2 * (w*y - z*x)),
		Z: math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)),
	}
}

// Yaw returns the Z rotation of q.
func Yaw(q quat.Number) float64 {
	return QuaternionToEuler(q).Z
}

// YawToQuaternion builds the orientation for a pure yaw rotation,
// with roll and pitch taken as zero: exp(k*yaw/2).
func YawToQuaternion(yaw float64) quat.Number {
	return quat.Exp(quat.Number{Kmag: yaw / 2})
}
