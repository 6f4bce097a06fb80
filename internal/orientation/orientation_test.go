package orientation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/num/quat"
)

func TestAngleDistance_Range(t *testing.T) {
	angles := []float64{
		0, 0.3, -0.3, math.Pi, -math.Pi, math.Pi - 1e-9, -math.Pi + 1e-9,
		2 * math.Pi, -2 * math.Pi, 7.5, -12.25, 1e6, -1e6,
	}

	for _, a := range angles {
		for _, b := range angles {
			d := AngleDistance(a, b)
			assert.GreaterOrEqual(t, d, -math.Pi, "a=%v b=%v", a, b)
			assert.LessOrEqual(t, d, math.Pi, "a=%v b=%v", a, b)
		}
	}
}

func TestAngleDistance_Same(t *testing.T) {
	for _, a := range []float64{0, 1, -3, math.Pi, 100} {
		assert.Equal(t, 0.0, AngleDistance(a, a))
	}
}

func TestAngleDistance_Wrap(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"plain", 0, 0.5, 0.5},
		{"negative", 0.5, 0, -0.5},
		{"across +pi", math.Pi - 0.1, -math.Pi + 0.1, 0.2},
		{"across -pi", -math.Pi + 0.1, math.Pi - 0.1, -0.2},
		{"full turn", 0, 2*math.Pi + 0.25, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AngleDistance(tt.a, tt.b), 1e-9)
		})
	}
}

func TestQuaternionToEuler_YawRoundTrip(t *testing.T) {
	for yaw := -math.Pi + 0.01; yaw <= math.Pi; yaw += 0.05 {
		e := QuaternionToEuler(YawToQuaternion(yaw))
		assert.InDelta(t, 0, e.X, 1e-12)
		assert.InDelta(t, 0, e.Y, 1e-12)
		assert.InDelta(t, yaw, e.Z, 1e-9)
	}

	e := QuaternionToEuler(YawToQuaternion(math.Pi))
	assert.InDelta(t, math.Pi, math.Abs(e.Z), 1e-9)
}

func TestQuaternionToEuler_RollPitch(t *testing.T) {
	// 90° about X
	h := math.Sqrt2 / 2
	e := QuaternionToEuler(quat.Number{Real: h, Imag: h})
	assert.InDelta(t, math.Pi/2, e.X, 1e-9)
	assert.InDelta(t, 0, e.Y, 1e-9)
	assert.InDelta(t, 0, e.Z, 1e-9)

	// 30° about Y
	e = QuaternionToEuler(quat.Number{Real: math.Cos(math.Pi / 12), Jmag: math.Sin(math.Pi / 12)})
	assert.InDelta(t, math.Pi/6, e.Y, 1e-9)
}

func TestQuaternionToEuler_MalformedPropagatesNaN(t *testing.T) {
	e := QuaternionToEuler(quat.Number{Real: 2, Jmag: 2})
	assert.True(t, math.IsNaN(e.Y))

	assert.True(t, math.IsNaN(Yaw(quat.Number{Real: math.NaN()})))
}

func TestYawToQuaternion(t *testing.T) {
	assert.Equal(t, quat.Number{Real: 1}, YawToQuaternion(0))

	for _, yaw := range []float64{-3, -math.Pi / 2, 0.3, 2.5} {
		q := YawToQuaternion(yaw)
		assert.InDelta(t, math.Cos(yaw/2), q.Real, 1e-15)
		assert.InDelta(t, math.Sin(yaw/2), q.Kmag, 1e-15)
		assert.Zero(t, q.Imag)
		assert.Zero(t, q.Jmag)
		assert.InDelta(t, 1, quat.Abs(q), 1e-15)
	}

	assert.True(t, math.IsNaN(YawToQuaternion(math.Inf(1)).Real))
	assert.True(t, math.IsNaN(YawToQuaternion(math.NaN()).Kmag))
}
