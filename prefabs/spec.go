package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StateSetSpec is one YAML file describing a character's channels and states.
type StateSetSpec struct {
	Name     string               `yaml:"name"`
	Channels []ChannelSpec        `yaml:"channels"`
	Curves   map[string]CurveSpec `yaml:"curves"`
	States   []StateSpec          `yaml:"states"`
}

type ChannelSpec struct {
	Name     string   `yaml:"name"`
	Weight   *float64 `yaml:"weight"`
	Enabled  *bool    `yaml:"enabled"`
	Fallback string   `yaml:"fallback"`
}

// CurveSpec is either a builtin curve kind or a list of [t, v] keyframes.
type CurveSpec struct {
	Kind string       `yaml:"kind"`
	Keys [][2]float64 `yaml:"keys"`
}

type StateSpec struct {
	Name            string       `yaml:"name"`
	Channel         string       `yaml:"channel"`
	Priority        float64      `yaml:"priority"`
	Cost            CostSpec     `yaml:"cost"`
	Duration        DurationSpec `yaml:"duration"`
	FadeIn          float64      `yaml:"fade_in"`
	FadeOut         float64      `yaml:"fade_out"`
	FadeInCurve     string       `yaml:"fade_in_curve"`
	FadeOutCurve    string       `yaml:"fade_out_curve"`
	FollowTimeScale bool         `yaml:"follow_time_scale"`
	Temporary       bool         `yaml:"temporary"`
	AutoRemove      bool         `yaml:"auto_remove"`
	AllowOverride   bool         `yaml:"allow_override"`
	Feedback        bool         `yaml:"feedback"`
	IK              IKSpec       `yaml:"ik"`
	Script          string       `yaml:"script"`
}

type CostSpec struct {
	Base    float64   `yaml:"base"`
	Motion  float64   `yaml:"motion"`
	Agility float64   `yaml:"agility"`
	Target  float64   `yaml:"target"`
	Weights []float64 `yaml:"weights"`
}

type DurationSpec struct {
	Mode    string  `yaml:"mode"`
	Seconds float64 `yaml:"seconds"`
	Clip    string  `yaml:"clip"`
}

type IKSpec struct {
	Goals  map[string]GoalSpec `yaml:"goals"`
	LookAt *LookAtSpec         `yaml:"look_at"`
}

type GoalSpec struct {
	Weight   float64       `yaml:"weight"`
	Position Vec3Spec      `yaml:"position"`
	Rotation *RotationSpec `yaml:"rotation"`
	Hint     Vec3Spec      `yaml:"hint"`
}

// RotationSpec is an axis-angle rotation in degrees.
type RotationSpec struct {
	Axis    Vec3Spec `yaml:"axis"`
	Degrees float64  `yaml:"degrees"`
}

type LookAtSpec struct {
	Weight   float64  `yaml:"weight"`
	Position Vec3Spec `yaml:"position"`
	Body     *float64 `yaml:"body"`
	Head     *float64 `yaml:"head"`
	Eyes     *float64 `yaml:"eyes"`
	Clamp    *float64 `yaml:"clamp"`
}

// Vec3Spec accepts either [x, y, z] or {x:, y:, z:}.
type Vec3Spec struct {
	X, Y, Z float64
}

func (v *Vec3Spec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xyz []float64
		if err := value.Decode(&xyz); err != nil {
			return err
		}
		if len(xyz) != 3 {
			return fmt.Errorf("prefabs: line %d: vector needs 3 components, got %d", value.Line, len(xyz))
		}
		v.X, v.Y, v.Z = xyz[0], xyz[1], xyz[2]
		return nil
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		v.X, v.Y, v.Z = m.X, m.Y, m.Z
		return nil
	default:
		return fmt.Errorf("prefabs: line %d: expected vector", value.Line)
	}
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadStateSet reads a state set from disk, falling back to the embedded copy.
func LoadStateSet(filename string) (*StateSetSpec, error) {
	spec, err := LoadSpec[StateSetSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// ParseStateSet decodes a state set from raw YAML.
func ParseStateSet(data []byte) (*StateSetSpec, error) {
	var spec StateSetSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal state set: %w", err)
	}
	return &spec, nil
}
