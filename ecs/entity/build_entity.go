package entity

import (
	"fmt"
	"log"
	"sort"

	"github.com/milk9111/stateblend/ecs"
	"github.com/milk9111/stateblend/ecs/component"
	"github.com/milk9111/stateblend/prefabs"
	"github.com/milk9111/stateblend/state"
)

// BuildOptions tunes entity construction.
type BuildOptions struct {
	Logger *log.Logger
	// Debug forces arbitration tracing on every machine built.
	Debug bool
	// StateSet overrides the state set named by the prefab.
	StateSet string
}

type buildContext struct {
	PrefabPath string
	Options    BuildOptions
}

func (c *buildContext) logger() *log.Logger {
	if c.Options.Logger != nil {
		return c.Options.Logger
	}
	return log.Default()
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":     addTransform,
	"physics_body":  addPhysicsBody,
	"locomotion":    addLocomotion,
	"animation":     addAnimation,
	"input":         addInput,
	"pose_output":   addPoseOutput,
	"state_machine": addStateMachine,
}

var componentBuildOrder = []string{
	"transform",
	"physics_body",
	"locomotion",
	"animation",
	"input",
	"pose_output",
	"state_machine",
}

// BuildEntity creates an entity from a prefab. On error nothing is left in
// the world.
func BuildEntity(w *ecs.World, prefabPath string, opts BuildOptions) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return BuildEntityFromSpec(w, prefabPath, spec, opts)
}

// BuildEntityFromSpec is BuildEntity for an already decoded spec. prefabPath
// is only used in error messages.
func BuildEntityFromSpec(w *ecs.World, prefabPath string, spec prefabs.EntityBuildSpec, opts BuildOptions) (ecs.Entity, error) {
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	names := make([]string, 0, len(spec.Components))
	for name := range spec.Components {
		if _, ok := componentRegistry[name]; !ok {
			return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
		names = append(names, name)
	}
	rank := make(map[string]int, len(componentBuildOrder))
	for i, name := range componentBuildOrder {
		rank[name] = i
	}
	sort.Slice(names, func(i, j int) bool { return rank[names[i]] < rank[names[j]] })

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath, Options: opts}
	for _, name := range names {
		if err := componentRegistry[name](w, e, spec.Components[name], ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
	}
	return e, nil
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent, &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		Rotation: spec.Rotation,
	})
}

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PhysicsBodyComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics body spec: %w", err)
	}
	if spec.Width < 0 || spec.Height < 0 || spec.Mass < 0 {
		return fmt.Errorf("physics body needs non-negative size and mass")
	}
	return ecs.Add(w, e, component.PhysicsBodyComponent, &component.PhysicsBody{
		Width:    spec.Width,
		Height:   spec.Height,
		Mass:     spec.Mass,
		Friction: spec.Friction,
	})
}

func addLocomotion(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.LocomotionComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode locomotion spec: %w", err)
	}
	if spec.SprintSpeed > 0 && spec.WalkSpeed > spec.SprintSpeed {
		return fmt.Errorf("walk_speed %.1f exceeds sprint_speed %.1f", spec.WalkSpeed, spec.SprintSpeed)
	}
	return ecs.Add(w, e, component.LocomotionComponent, &component.Locomotion{
		WalkSpeed:   spec.WalkSpeed,
		SprintSpeed: spec.SprintSpeed,
		JumpSpeed:   spec.JumpSpeed,
	})
}

func addAnimation(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.AnimationComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode animation spec: %w", err)
	}
	clips := make(map[string]float64, len(spec.Clips))
	for name, length := range spec.Clips {
		if length <= 0 {
			return fmt.Errorf("clip %q needs a positive length", name)
		}
		clips[name] = length
	}
	return ecs.Add(w, e, component.AnimationComponent, &component.Animation{Clips: clips})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent, &component.Input{})
}

func addPoseOutput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PoseOutputComponent, &component.PoseOutput{})
}

// addStateMachine builds a machine from the prefab's state set. The state
// machine system initializes it on the next world update.
func addStateMachine(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.StateMachineComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode state machine spec: %w", err)
	}
	if ctx.Options.StateSet != "" {
		spec.StateSet = ctx.Options.StateSet
	}
	if spec.StateSet == "" {
		return fmt.Errorf("state machine needs a state_set")
	}

	set, err := prefabs.LoadStateSet(spec.StateSet)
	if err != nil {
		return err
	}
	m := state.NewMachine(
		state.WithLogger(ctx.logger()),
		state.WithDebug(spec.Debug || ctx.Options.Debug),
		state.WithStrictChannels(spec.StrictChannels),
	)
	if spec.TimeScale != nil {
		m.SetTimeScale(*spec.TimeScale)
	}
	// Broken entries are logged and skipped so one bad state does not take
	// the whole character down.
	if err := set.Apply(m, prefabs.BuildOptions{Logger: ctx.logger()}); err != nil {
		ctx.logger().Printf("build entity: %q: %v", ctx.PrefabPath, err)
	}
	if len(m.States()) == 0 {
		return fmt.Errorf("state set %q registered no states", spec.StateSet)
	}
	for _, name := range spec.Initial {
		if !m.HasState(state.Name(name)) {
			return fmt.Errorf("initial state %q is not in %q", name, spec.StateSet)
		}
	}

	return ecs.Add(w, e, component.StateMachineComponent, &component.StateMachine{
		Machine:  m,
		StateSet: spec.StateSet,
		Initial:  spec.Initial,
	})
}
