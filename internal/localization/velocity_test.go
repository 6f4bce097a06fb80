package localization

import (
	"math"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/fused_localization/internal/orientation"
)

func odom(stamp time.Time, yaw float64, linear r3.Vector) Odometry {
	return Odometry{
		Stamp:       stamp,
		Orientation: orientation.YawToQuaternion(yaw),
		Linear:      linear,
	}
}

func TestOdomVelocityEstimator_SingleSample(t *testing.T) {
	e := NewOdomVelocityEstimator(false)

	_, ok := e.MostRecentVelocity()
	assert.False(t, ok)

	e.OnOdometry(odom(time.Unix(100, 0), 0, r3.Vector{X: 1}))
	_, ok = e.MostRecentVelocity()
	assert.False(t, ok, "one sample cannot yield a rate")
}

func TestOdomVelocityEstimator_TwoSamples(t *testing.T) {
	e := NewOdomVelocityEstimator(false)
	t0 := time.Unix(100, 0)
	twist := r3.Vector{X: 0.7, Y: -0.2, Z: 0.05}

	e.OnOdometry(odom(t0, 0, r3.Vector{X: 9}))
	e.OnOdometry(odom(t0.Add(time.Second), math.Pi/2, twist))

	v, ok := e.MostRecentVelocity()
	require.True(t, ok)
	assert.InDelta(t, math.Pi/2, v.Velocity.Yaw, 1e-9)
	assert.Equal(t, twist.X, v.Velocity.X)
	assert.Equal(t, twist.Y, v.Velocity.Y)
	assert.Equal(t, twist.Z, v.Velocity.Z)
	assert.True(t, v.Stamp.Equal(t0.Add(time.Second)))
}

func TestOdomVelocityEstimator_LastWriteWins(t *testing.T) {
	e := NewOdomVelocityEstimator(false)
	t0 := time.Unix(0, 0)

	e.OnOdometry(odom(t0, 0, r3.Vector{}))
	e.OnOdometry(odom(t0.Add(100*time.Millisecond), 0.1, r3.Vector{X: 1}))
	e.OnOdometry(odom(t0.Add(200*time.Millisecond), 0.1, r3.Vector{X: 2}))

	v, ok := e.MostRecentVelocity()
	require.True(t, ok)
	assert.Equal(t, 2.0, v.Velocity.X)
	assert.InDelta(t, 0, v.Velocity.Yaw, 1e-9)
}

func TestOdomVelocityEstimator_YawWrap(t *testing.T) {
	t0 := time.Unix(0, 0)
	before := odom(t0, math.Pi-0.05, r3.Vector{})
	after := odom(t0.Add(time.Second), -math.Pi+0.05, r3.Vector{})

	t.Run("raw difference", func(t *testing.T) {
		e := NewOdomVelocityEstimator(false)
		e.OnOdometry(before)
		e.OnOdometry(after)

		v, ok := e.MostRecentVelocity()
		require.True(t, ok)
		assert.InDelta(t, -2*math.Pi+0.1, v.Velocity.Yaw, 1e-9)
	})

	t.Run("shortest arc", func(t *testing.T) {
		e := NewOdomVelocityEstimator(true)
		e.OnOdometry(before)
		e.OnOdometry(after)

		v, ok := e.MostRecentVelocity()
		require.True(t, ok)
		assert.InDelta(t, 0.1, v.Velocity.Yaw, 1e-9)
	})
}

func TestOdomVelocityEstimator_ZeroDeltaNotGuarded(t *testing.T) {
	e := NewOdomVelocityEstimator(false)
	t0 := time.Unix(0, 0)

	e.OnOdometry(odom(t0, 0, r3.Vector{}))
	e.OnOdometry(odom(t0, 0.2, r3.Vector{}))

	v, ok := e.MostRecentVelocity()
	require.True(t, ok)
	assert.True(t, math.IsInf(v.Velocity.Yaw, 1))
}

func TestMarkerPoseEstimator(t *testing.T) {
	m := NewMarkerPoseEstimator()
	_, ok := m.MostRecentPose()
	assert.False(t, ok)

	p := Pose{Position: r3.Vector{X: 1}, Stamp: time.Unix(5, 0), FrameID: "map"}
	m.OnPose(p)
	got, ok := m.MostRecentPose()
	require.True(t, ok)
	assert.Equal(t, p, got)
}
