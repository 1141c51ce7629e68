package prefabs

import "gopkg.in/yaml.v3"

// EntityBuildSpec describes one entity as a bag of named component specs.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// DecodeComponentSpec re-decodes a loosely typed component into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

type PhysicsBodyComponentSpec struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Mass     float64 `yaml:"mass"`
	Friction float64 `yaml:"friction"`
}

type LocomotionComponentSpec struct {
	WalkSpeed   float64 `yaml:"walk_speed"`
	SprintSpeed float64 `yaml:"sprint_speed"`
	JumpSpeed   float64 `yaml:"jump_speed"`
}

// AnimationComponentSpec lists clip lengths in seconds.
type AnimationComponentSpec struct {
	Clips map[string]float64 `yaml:"clips"`
}

type StateMachineComponentSpec struct {
	StateSet       string   `yaml:"state_set"`
	Initial        []string `yaml:"initial"`
	TimeScale      *float64 `yaml:"time_scale"`
	StrictChannels bool     `yaml:"strict_channels"`
	Debug          bool     `yaml:"debug"`
}
