package exercise

import (
	"time"

	"github.com/ayusman/repcount/internal/landmark"
)

// FallbackName is the exercise used when a requested name is not registered.
const FallbackName = "high knees"

// DefaultKneeLift returns the high-knees parameters.
func DefaultKneeLift() *KneeLiftParams {
	return &KneeLiftParams{
		HeightThreshold:    -0.1,
		UpAngle:            100,
		DownAngle:          110,
		Tolerance:          10,
		CalibrationSamples: 5,
		CalibrationOffset:  20,
		MinAngle:           90,
		MaxAngle:           170,
	}
}

// DefaultSquat returns the squat parameters.
func DefaultSquat() *SquatParams {
	return &SquatParams{
		BendAngle:      100,
		ExtensionAngle: 160,
		DepthThreshold: 0.1,
		Smoothing:      0.3,
		FormHistory:    5,
	}
}

// DefaultPushUp returns the push-up parameters.
func DefaultPushUp() *PushUpParams {
	return &PushUpParams{
		BendAngle:      120,
		PartialAngle:   140,
		ExtensionAngle: 160,
		ShoulderDrop:   0.05,
		BackAngle:      150,
	}
}

// DefaultBurpee returns the burpee parameters.
func DefaultBurpee(requirePushUp bool) *BurpeeParams {
	return &BurpeeParams{
		MinDwellFrames:   5,
		JumpDwellFrames:  10,
		SquatAngle:       130,
		StandingAngle:    150,
		ExtensionAngle:   160,
		PushUpElbowAngle: 100,
		PushUpFrames:     3,
		PlankTolerance:   0.15,
		JumpHeight:       0.05,
		RequirePushUp:    requirePushUp,
	}
}

// DefaultLunge returns the lunge parameters.
func DefaultLunge() *LungeParams {
	return &LungeParams{
		FrontKneeAngle: 135,
		Asymmetry:      25,
		FootSeparation: 0.08,
		MinHold:        time.Second,
		GapFrames:      20,
		KneeOverToe:    0.06,
		TorsoLean:      0.12,
	}
}

// DefaultPlank returns the plank parameters.
func DefaultPlank() *PlankParams {
	return &PlankParams{
		OnsetFrames:       10,
		TerminationFrames: 15,
		HipBand:           0.06,
		ShoulderOffset:    0.08,
		BodySlope:         0.25,
		KneeClearance:     0.04,
	}
}

// DefaultJumpSquat returns the jump-squat parameters.
func DefaultJumpSquat() *JumpSquatParams {
	return &JumpSquatParams{
		DescendAngle:  160,
		SquatAngle:    95,
		AscendAngle:   130,
		StandingAngle: 155,
		RiseDelta:     0.015,
		FallDelta:     0.005,
	}
}

// New returns a config for the archetype with default parameters.
func New(name string, a Archetype) Config {
	c := Config{
		Name:      name,
		Archetype: a,
		Cooldown:  500 * time.Millisecond,
		Phases:    PhasesFor(a),
		Joints:    landmark.DefaultJointMap(),
	}
	switch a {
	case KneeLift:
		c.KneeLift = DefaultKneeLift()
	case Squat:
		c.Squat = DefaultSquat()
	case PushUp:
		c.PushUp = DefaultPushUp()
	case Burpee:
		c.Burpee = DefaultBurpee(true)
		c.Cooldown = time.Second
	case Lunge:
		c.Lunge = DefaultLunge()
	case Plank:
		c.Plank = DefaultPlank()
		c.Cooldown = 0
	case JumpSquat:
		c.JumpSquat = DefaultJumpSquat()
	}
	return c
}

func builtins() []Config {
	noPushUp := New("burpees (no push-up)", Burpee)
	noPushUp.Burpee.RequirePushUp = false

	return []Config{
		New(FallbackName, KneeLift),
		New("knee lifts", KneeLift),
		New("squats", Squat),
		New("squats (holding chair for balance)", Squat),
		New("push-ups", PushUp),
		New("knee push-ups", PushUp),
		New("burpees", Burpee),
		noPushUp,
		New("lunges", Lunge),
		New("plank", Plank),
		New("forearm plank", Plank),
		New("jump squats", JumpSquat),
	}
}
