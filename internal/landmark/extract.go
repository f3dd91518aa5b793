package landmark

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPerson is returned when a frame carries no landmarks at all.
	ErrNoPerson = errors.New("no person detected")
	// ErrMissingLandmark is returned when a required joint has no point in the frame.
	ErrMissingLandmark = errors.New("landmark missing")
	// ErrLowConfidence is returned when a required joint is below MinConfidence.
	ErrLowConfidence = errors.New("landmark confidence too low")
)

// Extract pulls the required joints out of a frame. The frame is not modified.
// A nil JointMap uses DefaultJointMap.
func Extract(f Frame, m JointMap, required []Joint) (Joints, error) {
	if f.Empty() {
		return nil, ErrNoPerson
	}
	if m == nil {
		m = DefaultJointMap()
	}

	joints := make(Joints, len(required))
	for _, j := range required {
		idx, ok := m[j]
		if !ok || idx < 0 || idx >= len(f.Points) {
			return nil, fmt.Errorf("%w: %s", ErrMissingLandmark, j)
		}
		p := f.Points[idx]
		if p.Confidence < MinConfidence {
			return nil, fmt.Errorf("%w: %s (%.2f)", ErrLowConfidence, j, p.Confidence)
		}
		joints[j] = p
	}
	return joints, nil
}

// Angle returns the interior angle at b formed by the joints a-b-c.
func (j Joints) Angle(a, b, c Joint) float64 {
	return Angle(j[a], j[b], j[c])
}

// Mid returns the midpoint of two joints.
func (j Joints) Mid(a, b Joint) Point {
	return Midpoint(j[a], j[b])
}
