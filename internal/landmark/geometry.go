package landmark

import "math"

// DegenerateAngle is returned by Angle when a segment has zero length.
const DegenerateAngle = 180.0

// Distance returns the Euclidean distance between two points in the image plane.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the point halfway between a and b. Confidence is the lower of the two.
func Midpoint(a, b Point) Point {
	return Point{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Z:          (a.Z + b.Z) / 2,
		Confidence: math.Min(a.Confidence, b.Confidence),
	}
}

// Angle returns the angle at vertex b in degrees, in [0,180], using the law of cosines.
func Angle(a, b, c Point) float64 {
	ab := Distance(a, b)
	bc := Distance(b, c)
	if ab < 1e-9 || bc < 1e-9 {
		return DegenerateAngle
	}
	ac := Distance(a, c)

	cos := (ab*ab + bc*bc - ac*ac) / (2 * ab * bc)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}
