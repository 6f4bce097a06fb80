package localization

// MarkerPoseEstimator is the in-process end of the marker detector. The
// detector publishes raw poses; the transport hands them to OnPose and the
// fusion loop polls MostRecentPose.
type MarkerPoseEstimator struct {
	latest Latest[Pose]
}

func NewMarkerPoseEstimator() *MarkerPoseEstimator {
	return &MarkerPoseEstimator{}
}

// OnPose records a raw marker pose, replacing the previous one.
func (m *MarkerPoseEstimator) OnPose(p Pose) {
	m.latest.Store(p)
}

// MostRecentPose implements PoseEstimator.
func (m *MarkerPoseEstimator) MostRecentPose() (Pose, bool) {
	return m.latest.Load()
}
