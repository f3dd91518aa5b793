package landmark

import (
	"math"
	"time"
)

// Side selects the left or right half of the body.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

const (
	presetConfidence = 0.95
	segment          = 0.2
)

// Standing returns a preset frame of an upright person facing the camera.
func Standing() Frame {
	return Squat(180)
}

// Squat returns a preset frame with both knees bent to kneeAngle degrees.
// Ankles stay planted; the hips travel forward and down as the knees bend.
func Squat(kneeAngle float64) Frame {
	pts := make(map[Joint]Point)
	phi := (180 - kneeAngle) * math.Pi / 180
	for _, s := range []struct {
		side             Side
		dx               float64
		hip, knee, ankle Joint
		shoulder, elbow  Joint
		wrist            Joint
	}{
		{Left, 0.05, LeftHip, LeftKnee, LeftAnkle, LeftShoulder, LeftElbow, LeftWrist},
		{Right, -0.05, RightHip, RightKnee, RightAnkle, RightShoulder, RightElbow, RightWrist},
	} {
		ankle := Point{X: 0.5 + s.dx, Y: 0.9}
		knee := Point{X: ankle.X, Y: ankle.Y - segment}
		hip := Point{X: knee.X + segment*math.Sin(phi), Y: knee.Y - segment*math.Cos(phi)}
		shoulder := Point{X: hip.X + s.dx*0.6, Y: hip.Y - 0.25}
		pts[s.ankle] = ankle
		pts[s.knee] = knee
		pts[s.hip] = hip
		pts[s.shoulder] = shoulder
		pts[s.elbow] = Point{X: shoulder.X, Y: shoulder.Y + 0.12}
		pts[s.wrist] = Point{X: shoulder.X, Y: shoulder.Y + 0.22}
	}
	mid := Midpoint(pts[LeftShoulder], pts[RightShoulder])
	pts[Nose] = Point{X: mid.X, Y: mid.Y - 0.12}
	return build(pts)
}

// HighKnee returns a standing frame with one thigh raised level with the hip
// and that knee bent to kneeAngle degrees.
func HighKnee(side Side, kneeAngle float64) Frame {
	f := Standing()
	hip, knee, ankle := LeftHip, LeftKnee, LeftAnkle
	if side == Right {
		hip, knee, ankle = RightHip, RightKnee, RightAnkle
	}
	h := f.Points[hip]
	k := Point{X: h.X + segment, Y: h.Y}
	a := bend(h, k, kneeAngle, -1)
	set(&f, knee, k)
	set(&f, ankle, a)
	return f
}

// PushUp returns a side-on push-up frame with both elbows at elbowAngle degrees.
// Hands stay planted and the body line from shoulder to ankle is straight.
func PushUp(elbowAngle float64) Frame {
	theta := elbowAngle * math.Pi / 180
	wrist := Point{X: 0.3, Y: 0.8}
	elbow := Point{X: 0.3, Y: 0.65}
	shoulder := Point{X: elbow.X + 0.15*math.Sin(theta), Y: elbow.Y + 0.15*math.Cos(theta)}
	ankle := Point{X: shoulder.X + 0.8, Y: 0.78}
	along := func(t float64) Point {
		return Point{X: shoulder.X + t*(ankle.X-shoulder.X), Y: shoulder.Y + t*(ankle.Y-shoulder.Y)}
	}

	pts := map[Joint]Point{
		Nose: {X: shoulder.X - 0.08, Y: shoulder.Y + 0.03},
	}
	mirror(pts, shoulder, elbow, wrist, along(0.4), along(0.7), ankle)
	return build(pts)
}

// Lunge returns a side-on lunge frame. The front thigh is level and the front
// knee bent to frontAngle; the back knee is bent to backAngle.
func Lunge(front Side, frontAngle, backAngle float64) Frame {
	leftHip := Point{X: 0.51, Y: 0.6}
	rightHip := Point{X: 0.49, Y: 0.6}
	fh, fk, fa, bh, bk, ba := leftHip, LeftKnee, LeftAnkle, rightHip, RightKnee, RightAnkle
	if front == Right {
		fh, fk, fa, bh, bk, ba = rightHip, RightKnee, RightAnkle, leftHip, LeftKnee, LeftAnkle
	}
	frontKnee := Point{X: fh.X + segment, Y: fh.Y}
	backKnee := toward(bh, 120, segment)

	pts := map[Joint]Point{
		Nose:          {X: 0.5, Y: 0.22},
		LeftShoulder:  {X: 0.51, Y: 0.35},
		RightShoulder: {X: 0.49, Y: 0.35},
		LeftElbow:     {X: 0.51, Y: 0.47},
		RightElbow:    {X: 0.49, Y: 0.47},
		LeftWrist:     {X: 0.51, Y: 0.57},
		RightWrist:    {X: 0.49, Y: 0.57},
		LeftHip:       leftHip,
		RightHip:      rightHip,
	}
	pts[fk], pts[fa] = frontKnee, bend(fh, frontKnee, frontAngle, -1)
	pts[bk], pts[ba] = backKnee, bend(bh, backKnee, backAngle, 1)
	return build(pts)
}

// Plank returns a side-on forearm plank with a straight body line.
func Plank() Frame {
	return plank(0.62)
}

// SaggingPlank returns a forearm plank whose hips have dropped below the shoulder band.
func SaggingPlank() Frame {
	return plank(0.72)
}

func plank(hipY float64) Frame {
	pts := map[Joint]Point{Nose: {X: 0.22, Y: 0.6}}
	mirror(pts,
		Point{X: 0.3, Y: 0.6},
		Point{X: 0.3, Y: 0.75},
		Point{X: 0.42, Y: 0.76},
		Point{X: 0.55, Y: hipY},
		Point{X: 0.7, Y: 0.67},
		Point{X: 0.85, Y: 0.72},
	)
	return build(pts)
}

// Shift returns a copy of f with every point moved by (dx, dy).
func Shift(f Frame, dx, dy float64) Frame {
	out := Frame{Points: make([]Point, len(f.Points)), Timestamp: f.Timestamp}
	for i, p := range f.Points {
		p.X += dx
		p.Y += dy
		out.Points[i] = p
	}
	return out
}

// WithConfidence returns a copy of f with the confidence of joint j replaced.
func WithConfidence(f Frame, j Joint, confidence float64) Frame {
	out := Frame{Points: append([]Point(nil), f.Points...), Timestamp: f.Timestamp}
	if int(j) < len(out.Points) {
		out.Points[j].Confidence = confidence
	}
	return out
}

// At returns f stamped with t.
func At(f Frame, t time.Time) Frame {
	f.Timestamp = t
	return f
}

func mirror(pts map[Joint]Point, shoulder, elbow, wrist, hip, knee, ankle Point) {
	pts[LeftShoulder], pts[RightShoulder] = shoulder, shoulder
	pts[LeftElbow], pts[RightElbow] = elbow, elbow
	pts[LeftWrist], pts[RightWrist] = wrist, wrist
	pts[LeftHip], pts[RightHip] = hip, hip
	pts[LeftKnee], pts[RightKnee] = knee, knee
	pts[LeftAnkle], pts[RightAnkle] = ankle, ankle
}

func build(pts map[Joint]Point) Frame {
	f := Frame{Points: make([]Point, NumLandmarks)}
	// Face and hand points nobody reads sit at the nose.
	for i := range f.Points {
		f.Points[i] = Point{X: pts[Nose].X, Y: pts[Nose].Y, Confidence: presetConfidence}
	}
	for j, p := range pts {
		set(&f, j, p)
	}
	return f
}

func set(f *Frame, j Joint, p Point) {
	p.Confidence = presetConfidence
	f.Points[j] = p
}

// toward returns the point length away from p in direction deg (0 = +x, 90 = down).
func toward(p Point, deg, length float64) Point {
	r := deg * math.Pi / 180
	return Point{X: p.X + length*math.Cos(r), Y: p.Y + length*math.Sin(r)}
}

// bend returns c such that the angle a-b-c equals deg, with |bc| = segment.
func bend(a, b Point, deg, sign float64) Point {
	d := Distance(a, b)
	ux, uy := (a.X-b.X)/d, (a.Y-b.Y)/d
	r := sign * deg * math.Pi / 180
	return Point{
		X: b.X + segment*(ux*math.Cos(r)-uy*math.Sin(r)),
		Y: b.Y + segment*(ux*math.Sin(r)+uy*math.Cos(r)),
	}
}
