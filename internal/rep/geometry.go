package rep

import (
	"math"

	"github.com/ayusman/repcount/internal/landmark"
)

var (
	legJoints = []landmark.Joint{
		landmark.LeftHip, landmark.RightHip,
		landmark.LeftKnee, landmark.RightKnee,
		landmark.LeftAnkle, landmark.RightAnkle,
	}
	armJoints = []landmark.Joint{
		landmark.LeftShoulder, landmark.RightShoulder,
		landmark.LeftElbow, landmark.RightElbow,
		landmark.LeftWrist, landmark.RightWrist,
	}
)

func joints(groups ...[]landmark.Joint) []landmark.Joint {
	var out []landmark.Joint
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func kneeAngles(j landmark.Joints) (left, right float64) {
	left = j.Angle(landmark.LeftHip, landmark.LeftKnee, landmark.LeftAnkle)
	right = j.Angle(landmark.RightHip, landmark.RightKnee, landmark.RightAnkle)
	return left, right
}

func elbowAngles(j landmark.Joints) (left, right float64) {
	left = j.Angle(landmark.LeftShoulder, landmark.LeftElbow, landmark.LeftWrist)
	right = j.Angle(landmark.RightShoulder, landmark.RightElbow, landmark.RightWrist)
	return left, right
}

func hipY(j landmark.Joints) float64 {
	return j.Mid(landmark.LeftHip, landmark.RightHip).Y
}

func shoulderY(j landmark.Joints) float64 {
	return j.Mid(landmark.LeftShoulder, landmark.RightShoulder).Y
}

func ankleY(j landmark.Joints) float64 {
	return j.Mid(landmark.LeftAnkle, landmark.RightAnkle).Y
}

// torsoLean returns the torso angle from vertical in degrees.
func torsoLean(j landmark.Joints) float64 {
	s := j.Mid(landmark.LeftShoulder, landmark.RightShoulder)
	h := j.Mid(landmark.LeftHip, landmark.RightHip)
	return math.Abs(math.Atan2(s.X-h.X, h.Y-s.Y) * 180 / math.Pi)
}
