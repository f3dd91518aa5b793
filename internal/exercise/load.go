package exercise

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/repcount/internal/landmark"
)

// definition is one exercise entry in a YAML definitions file. Parameter
// blocks start from the archetype defaults and override what they name.
type definition struct {
	Name      string         `yaml:"name"`
	Archetype Archetype      `yaml:"archetype"`
	Cooldown  *time.Duration `yaml:"cooldown"`
	Joints    map[string]int `yaml:"joints"`

	KneeLift  yaml.Node `yaml:"knee_lift"`
	Squat     yaml.Node `yaml:"squat"`
	PushUp    yaml.Node `yaml:"push_up"`
	Burpee    yaml.Node `yaml:"burpee"`
	Lunge     yaml.Node `yaml:"lunge"`
	Plank     yaml.Node `yaml:"plank"`
	JumpSquat yaml.Node `yaml:"jump_squat"`
}

type definitionFile struct {
	Exercises []definition `yaml:"exercises"`
}

// LoadFile registers the exercises defined in a YAML file and returns how many were added.
func (r *Registry) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read exercises file: %w", err)
	}
	return r.Load(bytes.NewReader(data))
}

// Load registers the exercises defined in a YAML document. Nothing is
// registered unless every definition is valid.
func (r *Registry) Load(rd io.Reader) (int, error) {
	var f definitionFile
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return 0, fmt.Errorf("decode exercises: %w", err)
	}

	configs := make([]Config, 0, len(f.Exercises))
	for i, d := range f.Exercises {
		c, err := d.config()
		if err != nil {
			return 0, fmt.Errorf("exercise %d (%s): %w", i, d.Name, err)
		}
		if err := c.Validate(); err != nil {
			return 0, err
		}
		configs = append(configs, c)
	}

	for _, c := range configs {
		if err := r.Register(c); err != nil {
			return 0, err
		}
	}
	return len(configs), nil
}

func (d definition) config() (Config, error) {
	if _, ok := phases[d.Archetype]; !ok {
		return Config{}, fmt.Errorf("%w: unknown archetype %q", ErrInvalidConfig, d.Archetype)
	}
	c := New(d.Name, d.Archetype)
	if d.Cooldown != nil {
		c.Cooldown = *d.Cooldown
	}
	for name, idx := range d.Joints {
		j, err := landmark.ParseJoint(name)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.Joints[j] = idx
	}

	blocks := []struct {
		archetype Archetype
		node      *yaml.Node
		target    any
	}{
		{KneeLift, &d.KneeLift, c.KneeLift},
		{Squat, &d.Squat, c.Squat},
		{PushUp, &d.PushUp, c.PushUp},
		{Burpee, &d.Burpee, c.Burpee},
		{Lunge, &d.Lunge, c.Lunge},
		{Plank, &d.Plank, c.Plank},
		{JumpSquat, &d.JumpSquat, c.JumpSquat},
	}
	for _, b := range blocks {
		if b.node.Kind == 0 {
			continue
		}
		if b.archetype != d.Archetype {
			return Config{}, fmt.Errorf("%w: %s parameters on a %s exercise", ErrInvalidConfig, b.archetype, d.Archetype)
		}
		if err := b.node.Decode(b.target); err != nil {
			return Config{}, fmt.Errorf("decode %s parameters: %w", b.archetype, err)
		}
	}
	return c, nil
}
