package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/fused_localization/internal/localization"
)

// ErrEmptyPayload is returned when a message has no body.
var ErrEmptyPayload = errors.New("empty payload")

// Header mirrors std_msgs/Header.
type Header struct {
	Stamp   time.Time `json:"stamp"`
	FrameID string    `json:"frame_id"`
}

// Vector3 mirrors geometry_msgs/Vector3 and geometry_msgs/Point.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion mirrors geometry_msgs/Quaternion.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// wireFloat is a float64 that survives JSON when it is not finite. NaN and
// the infinities travel as the strings "NaN", "+Inf" and "-Inf".
type wireFloat float64

func (f wireFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(v)
}

func (f *wireFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*f = wireFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = wireFloat(v)
	return nil
}

type wireVector3 struct {
	X wireFloat `json:"x"`
	Y wireFloat `json:"y"`
	Z wireFloat `json:"z"`
}

func (v Vector3) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireVector3{X: wireFloat(v.X), Y: wireFloat(v.Y), Z: wireFloat(v.Z)})
}

func (v *Vector3) UnmarshalJSON(data []byte) error {
	var w wireVector3
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*v = Vector3{X: float64(w.X), Y: float64(w.Y), Z: float64(w.Z)}
	return nil
}

type wireQuaternion struct {
	X wireFloat `json:"x"`
	Y wireFloat `json:"y"`
	Z wireFloat `json:"z"`
	W wireFloat `json:"w"`
}

func (q Quaternion) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireQuaternion{X: wireFloat(q.X), Y: wireFloat(q.Y), Z: wireFloat(q.Z), W: wireFloat(q.W)})
}

func (q *Quaternion) UnmarshalJSON(data []byte) error {
	var w wireQuaternion
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*q = Quaternion{X: float64(w.X), Y: float64(w.Y), Z: float64(w.Z), W: float64(w.W)}
	return nil
}

// PoseMsg mirrors geometry_msgs/Pose.
type PoseMsg struct {
	Position    Vector3    `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// PoseStampedMsg mirrors geometry_msgs/PoseStamped. Marker poses arrive and
// fused poses leave in this shape.
type PoseStampedMsg struct {
	Header Header  `json:"header"`
	Pose   PoseMsg `json:"pose"`
}

// TwistMsg mirrors geometry_msgs/Twist.
type TwistMsg struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

// OdometryMsg mirrors nav_msgs/Odometry, without covariances.
type OdometryMsg struct {
	Header       Header `json:"header"`
	ChildFrameID string `json:"child_frame_id,omitempty"`
	Pose         struct {
		Pose PoseMsg `json:"pose"`
	} `json:"pose"`
	Twist struct {
		Twist TwistMsg `json:"twist"`
	} `json:"twist"`
}

func toQuat(q Quaternion) quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromQuat(q quat.Number) Quaternion {
	return Quaternion{X: q.Imag, Y: q.Jmag, Z: q.Kmag, W: q.Real}
}

func toVector(v Vector3) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

func fromVector(v r3.Vector) Vector3 {
	return Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

// PoseToMsg converts a pose to its wire form.
func PoseToMsg(p localization.Pose) PoseStampedMsg {
	return PoseStampedMsg{
		Header: Header{Stamp: p.Stamp, FrameID: p.FrameID},
		Pose: PoseMsg{
			Position:    fromVector(p.Position),
			Orientation: fromQuat(p.Orientation),
		},
	}
}

// ToPose converts the message to a localization.Pose.
func (m PoseStampedMsg) ToPose() localization.Pose {
	return localization.Pose{
		Position:    toVector(m.Pose.Position),
		Orientation: toQuat(m.Pose.Orientation),
		Stamp:       m.Header.Stamp,
		FrameID:     m.Header.FrameID,
	}
}

// OdometryToMsg converts an odometry sample to its wire form.
func OdometryToMsg(o localization.Odometry) OdometryMsg {
	var m OdometryMsg
	m.Header.Stamp = o.Stamp
	m.Pose.Pose.Orientation = fromQuat(o.Orientation)
	m.Twist.Twist.Linear = fromVector(o.Linear)
	return m
}

// ToOdometry converts the message to a localization.Odometry.
func (m OdometryMsg) ToOdometry() localization.Odometry {
	return localization.Odometry{
		Stamp:       m.Header.Stamp,
		Orientation: toQuat(m.Pose.Pose.Orientation),
		Linear:      toVector(m.Twist.Twist.Linear),
	}
}

// EncodePose marshals a pose as a PoseStampedMsg.
func EncodePose(p localization.Pose) ([]byte, error) {
	return json.Marshal(PoseToMsg(p))
}

// DecodePose parses a PoseStampedMsg payload.
func DecodePose(payload []byte) (localization.Pose, error) {
	if len(payload) == 0 {
		return localization.Pose{}, ErrEmptyPayload
	}
	var m PoseStampedMsg
	if err := json.Unmarshal(payload, &m); err != nil {
		return localization.Pose{}, fmt.Errorf("decode pose: %w", err)
	}
	if m.Header.Stamp.IsZero() {
		return localization.Pose{}, fmt.Errorf("decode pose: missing header.stamp")
	}
	return m.ToPose(), nil
}

// EncodeOdometry marshals an odometry sample as an OdometryMsg.
func EncodeOdometry(o localization.Odometry) ([]byte, error) {
	return json.Marshal(OdometryToMsg(o))
}

// DecodeOdometry parses an OdometryMsg payload.
func DecodeOdometry(payload []byte) (localization.Odometry, error) {
	if len(payload) == 0 {
		return localization.Odometry{}, ErrEmptyPayload
	}
	var m OdometryMsg
	if err := json.Unmarshal(payload, &m); err != nil {
		return localization.Odometry{}, fmt.Errorf("decode odometry: %w", err)
	}
	if m.Header.Stamp.IsZero() {
		return localization.Odometry{}, fmt.Errorf("decode odometry: missing header.stamp")
	}
	return m.ToOdometry(), nil
}
