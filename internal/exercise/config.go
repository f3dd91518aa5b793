// Package exercise defines exercise configurations and the registry that
// resolves exercise names to them.
package exercise

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/repcount/internal/landmark"
)

// Archetype is the category of motion that decides which detector applies.
type Archetype string

const (
	KneeLift  Archetype = "knee-lift"
	Squat     Archetype = "squat"
	PushUp    Archetype = "push-up"
	Burpee    Archetype = "burpee"
	Lunge     Archetype = "lunge"
	Plank     Archetype = "plank"
	JumpSquat Archetype = "jump-squat"
)

// Archetypes lists every supported archetype.
var Archetypes = []Archetype{KneeLift, Squat, PushUp, Burpee, Lunge, Plank, JumpSquat}

// Phase is a discrete detector state.
type Phase string

const (
	PhaseUp         Phase = "up"
	PhaseDown       Phase = "down"
	PhaseStanding   Phase = "standing"
	PhaseSquatting  Phase = "squatting"
	PhasePushUp     Phase = "pushup"
	PhaseReturning  Phase = "returning"
	PhaseJumping    Phase = "jumping"
	PhaseDescending Phase = "descending"
	PhaseLanding    Phase = "landing"
	PhaseLunging    Phase = "lunging"
	PhaseHolding    Phase = "holding"
	PhaseIdle       Phase = "idle"
)

var phases = map[Archetype][]Phase{
	KneeLift:  {PhaseDown, PhaseUp},
	Squat:     {PhaseUp, PhaseDown},
	PushUp:    {PhaseUp, PhaseDown},
	Burpee:    {PhaseStanding, PhaseSquatting, PhasePushUp, PhaseReturning, PhaseJumping},
	Lunge:     {PhaseStanding, PhaseLunging},
	Plank:     {PhaseIdle, PhaseHolding},
	JumpSquat: {PhaseStanding, PhaseDescending, PhaseSquatting, PhaseJumping, PhaseLanding},
}

// PhasesFor returns the ordered phase sequence of an archetype.
func PhasesFor(a Archetype) []Phase {
	return append([]Phase(nil), phases[a]...)
}

var (
	// ErrUnknownExercise is returned when a name matches no registered exercise.
	ErrUnknownExercise = errors.New("unknown exercise")
	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid exercise config")
)

// Config is the immutable configuration of one exercise. Exactly one of the
// parameter blocks is set, the one matching Archetype.
type Config struct {
	Name      string
	Archetype Archetype
	Cooldown  time.Duration
	Phases    []Phase
	Joints    landmark.JointMap

	KneeLift  *KneeLiftParams
	Squat     *SquatParams
	PushUp    *PushUpParams
	Burpee    *BurpeeParams
	Lunge     *LungeParams
	Plank     *PlankParams
	JumpSquat *JumpSquatParams
}

// Hold reports whether the exercise is timed rather than counted.
func (c Config) Hold() bool {
	return c.Archetype == Plank
}

// KneeLiftParams tunes the high-knees detector. Knee height is hip.y - knee.y.
type KneeLiftParams struct {
	HeightThreshold float64 `yaml:"height_threshold"`
	UpAngle         float64 `yaml:"up_angle"`
	DownAngle       float64 `yaml:"down_angle"`
	Tolerance       float64 `yaml:"tolerance"`

	CalibrationSamples int     `yaml:"calibration_samples"` // per side
	CalibrationOffset  float64 `yaml:"calibration_offset"`
	MinAngle           float64 `yaml:"min_angle"`
	MaxAngle           float64 `yaml:"max_angle"`
}

// SquatParams tunes the squat detector.
type SquatParams struct {
	BendAngle      float64 `yaml:"bend_angle"`
	ExtensionAngle float64 `yaml:"extension_angle"`
	DepthThreshold float64 `yaml:"depth_threshold"`
	Smoothing      float64 `yaml:"smoothing"` // weight of the newest sample
	FormHistory    int     `yaml:"form_history"`
}

// PushUpParams tunes the push-up detector.
type PushUpParams struct {
	BendAngle      float64 `yaml:"bend_angle"`
	PartialAngle   float64 `yaml:"partial_angle"`
	ExtensionAngle float64 `yaml:"extension_angle"`
	ShoulderDrop   float64 `yaml:"shoulder_drop"`
	BackAngle      float64 `yaml:"back_angle"`
}

// BurpeeParams tunes the burpee detector.
type BurpeeParams struct {
	MinDwellFrames   int     `yaml:"min_dwell_frames"`
	JumpDwellFrames  int     `yaml:"jump_dwell_frames"`
	SquatAngle       float64 `yaml:"squat_angle"`
	StandingAngle    float64 `yaml:"standing_angle"`
	ExtensionAngle   float64 `yaml:"extension_angle"`
	PushUpElbowAngle float64 `yaml:"pushup_elbow_angle"`
	PushUpFrames     int     `yaml:"pushup_frames"`
	PlankTolerance   float64 `yaml:"plank_tolerance"`
	JumpHeight       float64 `yaml:"jump_height"`
	RequirePushUp    bool    `yaml:"require_pushup"`
}

// LungeParams tunes the lunge detector.
type LungeParams struct {
	FrontKneeAngle float64       `yaml:"front_knee_angle"`
	Asymmetry      float64       `yaml:"asymmetry"`
	FootSeparation float64       `yaml:"foot_separation"`
	MinHold        time.Duration `yaml:"min_hold"`
	GapFrames      int           `yaml:"gap_frames"`
	KneeOverToe    float64       `yaml:"knee_over_toe"`
	TorsoLean      float64       `yaml:"torso_lean"`
}

// PlankParams tunes the plank hold detector.
type PlankParams struct {
	OnsetFrames       int     `yaml:"onset_frames"`
	TerminationFrames int     `yaml:"termination_frames"`
	HipBand           float64 `yaml:"hip_band"`
	ShoulderOffset    float64 `yaml:"shoulder_offset"`
	BodySlope         float64 `yaml:"body_slope"`
	KneeClearance     float64 `yaml:"knee_clearance"`
}

// JumpSquatParams tunes the jump-squat detector. Deltas are per-frame hip travel.
type JumpSquatParams struct {
	DescendAngle  float64 `yaml:"descend_angle"`
	SquatAngle    float64 `yaml:"squat_angle"`
	AscendAngle   float64 `yaml:"ascend_angle"`
	StandingAngle float64 `yaml:"standing_angle"`
	RiseDelta     float64 `yaml:"rise_delta"`
	FallDelta     float64 `yaml:"fall_delta"`
}

// Validate checks that the config carries exactly the parameter block of its
// archetype and that the thresholds are coherent.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("%w: %s: negative cooldown", ErrInvalidConfig, c.Name)
	}

	set := map[Archetype]bool{
		KneeLift:  c.KneeLift != nil,
		Squat:     c.Squat != nil,
		PushUp:    c.PushUp != nil,
		Burpee:    c.Burpee != nil,
		Lunge:     c.Lunge != nil,
		Plank:     c.Plank != nil,
		JumpSquat: c.JumpSquat != nil,
	}
	if _, ok := set[c.Archetype]; !ok {
		return fmt.Errorf("%w: %s: unknown archetype %q", ErrInvalidConfig, c.Name, c.Archetype)
	}
	for a, present := range set {
		if present && a != c.Archetype {
			return fmt.Errorf("%w: %s: %s parameters on a %s exercise", ErrInvalidConfig, c.Name, a, c.Archetype)
		}
	}
	if !set[c.Archetype] {
		return fmt.Errorf("%w: %s: missing %s parameters", ErrInvalidConfig, c.Name, c.Archetype)
	}

	if err := c.validateParams(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, c.Name, err)
	}
	return nil
}

func (c Config) validateParams() error {
	switch c.Archetype {
	case KneeLift:
		p := c.KneeLift
		if p.CalibrationSamples < 0 {
			return errors.New("calibration samples must not be negative")
		}
		if p.MinAngle >= p.MaxAngle {
			return errors.New("calibration clamp range is empty")
		}
	case Squat:
		p := c.Squat
		if p.BendAngle >= p.ExtensionAngle {
			return errors.New("bend angle must be below extension angle")
		}
		if p.Smoothing <= 0 || p.Smoothing > 1 {
			return errors.New("smoothing must be in (0,1]")
		}
	case PushUp:
		p := c.PushUp
		if !(p.BendAngle < p.PartialAngle && p.PartialAngle < p.ExtensionAngle) {
			return errors.New("push-up angles must satisfy bend < partial < extension")
		}
	case Burpee:
		p := c.Burpee
		if p.MinDwellFrames < 0 || p.JumpDwellFrames < 0 || p.PushUpFrames <= 0 {
			return errors.New("frame counts must be positive")
		}
		if p.SquatAngle >= p.StandingAngle {
			return errors.New("squat angle must be below standing angle")
		}
	case Lunge:
		p := c.Lunge
		if p.MinHold <= 0 {
			return errors.New("minimum hold must be positive")
		}
	case Plank:
		p := c.Plank
		if p.OnsetFrames <= 0 || p.TerminationFrames <= 0 {
			return errors.New("debounce frame counts must be positive")
		}
	case JumpSquat:
		p := c.JumpSquat
		if !(p.SquatAngle < p.AscendAngle && p.AscendAngle < p.DescendAngle) {
			return errors.New("jump-squat angles must satisfy squat < ascend < descend")
		}
	}
	return nil
}
