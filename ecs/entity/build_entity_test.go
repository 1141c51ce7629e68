package entity

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/milk9111/stateblend/ecs"
	"github.com/milk9111/stateblend/ecs/component"
	"github.com/milk9111/stateblend/ecs/system"
	"github.com/milk9111/stateblend/prefabs"
)

func quietOptions() BuildOptions {
	return BuildOptions{Logger: log.New(io.Discard, "", 0)}
}

func TestBuildHero(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "characters/hero.yaml", quietOptions())
	if err != nil {
		t.Fatalf("build hero: %v", err)
	}

	for name, has := range map[string]bool{
		"transform":     ecs.Has(w, e, component.TransformComponent),
		"physics_body":  ecs.Has(w, e, component.PhysicsBodyComponent),
		"locomotion":    ecs.Has(w, e, component.LocomotionComponent),
		"animation":     ecs.Has(w, e, component.AnimationComponent),
		"input":         ecs.Has(w, e, component.InputComponent),
		"pose_output":   ecs.Has(w, e, component.PoseOutputComponent),
		"state_machine": ecs.Has(w, e, component.StateMachineComponent),
	} {
		if !has {
			t.Fatalf("hero is missing %s", name)
		}
	}

	sm, _ := ecs.Get(w, e, component.StateMachineComponent)
	if sm.StateSet != "humanoid.yaml" {
		t.Fatalf("unexpected state set %q", sm.StateSet)
	}
	if n := len(sm.Machine.States()); n != 9 {
		t.Fatalf("expected 9 humanoid states, got %d", n)
	}
	anim, _ := ecs.Get(w, e, component.AnimationComponent)
	if l, ok := anim.ClipLength("reload"); !ok || l != 1.1 {
		t.Fatalf("reload clip length = %v ok=%v", l, ok)
	}

	w.AddSystem(system.NewStateMachineSystem(log.New(io.Discard, "", 0)))
	w.Update(0.1)
	for _, name := range []string{"Idle", "LookAround"} {
		h, ok := sm.Machine.GetByString(name)
		if !ok || !h.Running() {
			t.Fatalf("%s should be running after the first update", name)
		}
	}
}

func TestBuildEntityErrors(t *testing.T) {
	cases := []struct {
		name string
		spec prefabs.EntityBuildSpec
		opts BuildOptions
		want string
	}{
		{
			name: "no_components",
			spec: prefabs.EntityBuildSpec{Name: "empty"},
			want: "does not define components",
		},
		{
			name: "unknown_component",
			spec: prefabs.EntityBuildSpec{Components: map[string]any{"transform": map[string]any{}, "sprite": nil}},
			want: `no builder for component "sprite"`,
		},
		{
			name: "walk_faster_than_sprint",
			spec: prefabs.EntityBuildSpec{Components: map[string]any{
				"locomotion": map[string]any{"walk_speed": 300, "sprint_speed": 100},
			}},
			want: "exceeds sprint_speed",
		},
		{
			name: "bad_clip",
			spec: prefabs.EntityBuildSpec{Components: map[string]any{
				"animation": map[string]any{"clips": map[string]any{"reload": 0}},
			}},
			want: `clip "reload"`,
		},
		{
			name: "missing_state_set",
			spec: prefabs.EntityBuildSpec{Components: map[string]any{"state_machine": map[string]any{}}},
			want: "needs a state_set",
		},
		{
			name: "unknown_initial_state",
			spec: prefabs.EntityBuildSpec{Components: map[string]any{
				"transform":     map[string]any{"x": 1},
				"state_machine": map[string]any{"state_set": "humanoid.yaml", "initial": []any{"Moonwalk"}},
			}},
			want: `initial state "Moonwalk"`,
		},
		{
			name: "state_set_override_missing",
			spec: prefabs.EntityBuildSpec{Components: map[string]any{
				"state_machine": map[string]any{"state_set": "humanoid.yaml"},
			}},
			opts: BuildOptions{StateSet: "nope.yaml"},
			want: "nope.yaml",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			opts := tc.opts
			opts.Logger = log.New(io.Discard, "", 0)
			_, err := BuildEntityFromSpec(w, "test.yaml", tc.spec, opts)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
			if n := len(w.Entities()); n != 0 {
				t.Fatalf("failed build left %d entities behind", n)
			}
		})
	}
}
