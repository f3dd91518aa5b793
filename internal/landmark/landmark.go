// Package landmark provides body-pose landmark types and the geometry used by
// the rep detectors.
package landmark

import (
	"fmt"
	"time"
)

// Joint identifies a body keypoint. Values follow the MediaPipe pose topology.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
type Joint int

const (
	Nose          Joint = 0
	LeftShoulder  Joint = 11
	RightShoulder Joint = 12
	LeftElbow     Joint = 13
	RightElbow    Joint = 14
	LeftWrist     Joint = 15
	RightWrist    Joint = 16
	LeftHip       Joint = 23
	RightHip      Joint = 24
	LeftKnee      Joint = 25
	RightKnee     Joint = 26
	LeftAnkle     Joint = 27
	RightAnkle    Joint = 28

	// NumLandmarks is the number of points a full pose frame carries.
	NumLandmarks = 33
)

// MinConfidence is the detection confidence below which a point is ignored.
const MinConfidence = 0.5

var jointNames = map[Joint]string{
	Nose:          "nose",
	LeftShoulder:  "left_shoulder",
	RightShoulder: "right_shoulder",
	LeftElbow:     "left_elbow",
	RightElbow:    "right_elbow",
	LeftWrist:     "left_wrist",
	RightWrist:    "right_wrist",
	LeftHip:       "left_hip",
	RightHip:      "right_hip",
	LeftKnee:      "left_knee",
	RightKnee:     "right_knee",
	LeftAnkle:     "left_ankle",
	RightAnkle:    "right_ankle",
}

func (j Joint) String() string {
	if name, ok := jointNames[j]; ok {
		return name
	}
	return fmt.Sprintf("joint(%d)", int(j))
}

// ParseJoint returns the joint with the given snake_case name.
func ParseJoint(name string) (Joint, error) {
	for j, n := range jointNames {
		if n == name {
			return j, nil
		}
	}
	return 0, fmt.Errorf("unknown joint %q", name)
}

// Point is a normalized keypoint position with its detection confidence.
// X and Y are in [0,1] image space with Y growing downward.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Confidence float64 `json:"confidence"`
}

// Frame is one pose-model output. An empty Points slice means nobody was detected.
type Frame struct {
	Points    []Point   `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// Empty reports whether the frame carries no landmarks.
func (f Frame) Empty() bool {
	return len(f.Points) == 0
}

// JointMap maps a named joint to its index in Frame.Points.
type JointMap map[Joint]int

// DefaultJointMap returns the identity mapping for the 33-point pose topology.
func DefaultJointMap() JointMap {
	m := make(JointMap, len(jointNames))
	for j := range jointNames {
		m[j] = int(j)
	}
	return m
}

// Joints holds the points extracted from a frame, keyed by joint.
type Joints map[Joint]Point
