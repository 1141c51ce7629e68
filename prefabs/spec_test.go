package prefabs

import (
	"errors"
	"io"
	"log"
	"math"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/stateblend/pose"
	"github.com/milk9111/stateblend/state"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestLoadHumanoid(t *testing.T) {
	set, err := LoadStateSet("humanoid.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if set.Name != "humanoid" || len(set.Channels) != 3 || len(set.States) != 9 {
		t.Fatalf("unexpected set %q: %d channels, %d states", set.Name, len(set.Channels), len(set.States))
	}
	if err := set.Validate(BuildOptions{Logger: quietLogger()}); err != nil {
		t.Fatalf("humanoid should validate: %v", err)
	}

	defs, err := set.Definitions(BuildOptions{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	byName := make(map[string]state.Definition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	aim := byName["Aim"]
	if aim.Hooks.OnUpdate == nil || aim.Hooks.OnExit == nil || aim.Hooks.OnEnter == nil {
		t.Fatalf("aim script should provide all hooks")
	}
	if aim.FadeInCurve == nil || aim.FadeInCurve.Evaluate(0.2) != 0.7 {
		t.Fatalf("aim should use the snap curve")
	}
	gp, ok := aim.IK.Goal(pose.RightHand)
	if !ok || gp.Weight != 1 || gp.Hint.X != 0.5 {
		t.Fatalf("unexpected aim right hand goal %+v ok=%v", gp, ok)
	}
	if la, ok := aim.IK.LookAt(); !ok || la.BodyWeight != 0.3 || la.HeadWeight != 1 {
		t.Fatalf("look-at should keep defaults for omitted weights, got %+v", la)
	}

	reload := byName["Reload"]
	if reload.Duration != state.BoundToAnimation || reload.Clip != "reload" || reload.TimedDuration != 1.2 {
		t.Fatalf("unexpected reload duration %v %q %v", reload.Duration, reload.Clip, reload.TimedDuration)
	}
	if !byName["Flinch"].Feedback || !byName["Wave"].CanBeTemporary || !byName["LookAround"].FadeFollowTimeScale {
		t.Fatalf("flags were not carried over")
	}
	if got := byName["Sprint"].Cost.Total(); got != 90 {
		t.Fatalf("sprint cost = %v, want 90", got)
	}
}

func TestVec3Spec(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		want    Vec3Spec
		wantErr bool
	}{
		{"sequence", "v: [1, 2, 3]", Vec3Spec{1, 2, 3}, false},
		{"mapping", "v: {x: 1, z: 3}", Vec3Spec{1, 0, 3}, false},
		{"short_sequence", "v: [1, 2]", Vec3Spec{}, true},
		{"scalar", "v: 5", Vec3Spec{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out struct {
				V Vec3Spec `yaml:"v"`
			}
			err := yaml.Unmarshal([]byte(tc.src), &out)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if out.V != tc.want {
				t.Fatalf("got %+v, want %+v", out.V, tc.want)
			}
		})
	}
}

func TestBuildCurves(t *testing.T) {
	set := &StateSetSpec{Curves: map[string]CurveSpec{
		"steps":  {Keys: [][2]float64{{0, 0}, {0.5, 1}, {1, 1}}},
		"soft":   {Kind: "smoothstep"},
		"broken": {Kind: "wobble"},
		"empty":  {},
	}}
	curves, err := set.BuildCurves()
	if err == nil || !strings.Contains(err.Error(), "wobble") || !strings.Contains(err.Error(), `"empty"`) {
		t.Fatalf("expected errors for broken and empty curves, got %v", err)
	}
	if len(curves) != 2 {
		t.Fatalf("expected the two good curves, got %d", len(curves))
	}
	if got := curves["steps"].Evaluate(0.25); got != 0.5 {
		t.Fatalf("steps(0.25) = %v", got)
	}

	for _, tc := range []struct {
		name    string
		want    bool
		wantErr bool
	}{
		{"", false, false},
		{"steps", true, false},
		{"EASE_IN", true, false},
		{"nope", false, true},
	} {
		c, err := resolveCurve(tc.name, curves)
		if (err != nil) != tc.wantErr || (c != nil) != tc.want {
			t.Fatalf("resolveCurve(%q) = %v, %v", tc.name, c, err)
		}
	}
}

func validSet() *StateSetSpec {
	return &StateSetSpec{
		Name:     "test",
		Channels: []ChannelSpec{{Name: "body", Fallback: "Idle"}},
		States: []StateSpec{
			{Name: "Idle", Channel: "body", AllowOverride: true},
			{Name: "Run", Channel: "body", Priority: 1, AllowOverride: true},
		},
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *StateSetSpec)
		want   string
	}{
		{"duplicate_channel", func(s *StateSetSpec) { s.Channels = append(s.Channels, ChannelSpec{Name: "body"}) }, `duplicate channel "body"`},
		{"duplicate_state", func(s *StateSetSpec) { s.States = append(s.States, StateSpec{Name: "Run", Channel: "body"}) }, `duplicate state "Run"`},
		{"fallback_missing", func(s *StateSetSpec) { s.Channels[0].Fallback = "Nap" }, `fallback "Nap" is not defined`},
		{"fallback_other_channel", func(s *StateSetSpec) {
			s.States = append(s.States, StateSpec{Name: "Nod", Channel: "head"})
			s.Channels[0].Fallback = "Nod"
		}, `lives on "head"`},
		{"bad_duration", func(s *StateSetSpec) { s.States[1].Duration.Mode = "forever" }, "unknown duration mode"},
		{"bad_goal", func(s *StateSetSpec) { s.States[1].IK.Goals = map[string]GoalSpec{"tail": {Weight: 1}} }, `unknown IK goal "tail"`},
		{"bad_weights", func(s *StateSetSpec) { s.States[1].Cost.Weights = []float64{1, 2} }, "need 3 values"},
		{"bad_curve", func(s *StateSetSpec) { s.States[1].FadeOutCurve = "bouncy" }, `unknown curve "bouncy"`},
		{"missing_channel", func(s *StateSetSpec) { s.States[1].Channel = "" }, "empty channel"},
		{"nan_fade_in", func(s *StateSetSpec) { s.States[1].FadeIn = math.NaN() }, "non-finite number"},
		{"inf_seconds", func(s *StateSetSpec) {
			s.States[1].Duration = DurationSpec{Mode: "timed", Seconds: math.Inf(1)}
		}, "timed duration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set := validSet()
			tc.mutate(set)
			err := set.Validate(BuildOptions{Logger: quietLogger()})
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}

	t.Run("yaml_nan", func(t *testing.T) {
		set, err := ParseStateSet([]byte("name: n\nstates:\n  - name: Odd\n    channel: body\n    fade_in: .nan\n"))
		if err != nil {
			t.Fatalf("ParseStateSet: %v", err)
		}
		if err := set.Validate(BuildOptions{Logger: quietLogger()}); err == nil || !strings.Contains(err.Error(), "fade in") {
			t.Fatalf("expected fade in error, got %v", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		if err := validSet().Validate(BuildOptions{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestScripts(t *testing.T) {
	set := validSet()
	set.States[0].Script = "shared"
	set.States[1].Script = "shared"

	reads := 0
	opts := BuildOptions{
		Logger: quietLogger(),
		ReadScript: func(path string) ([]byte, error) {
			reads++
			return []byte(`onEnter := func(engine, state) { engine.set("entered", true) }`), nil
		},
	}
	defs, err := set.Definitions(opts)
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	if reads != 1 {
		t.Fatalf("shared script should be read once, got %d", reads)
	}
	if defs[0].Hooks.OnEnter == nil || defs[1].Hooks.OnEnter == nil {
		t.Fatalf("both states should get the enter hook")
	}

	t.Run("skip_scripts", func(t *testing.T) {
		defs, err := set.Definitions(BuildOptions{SkipScripts: true, ReadScript: func(string) ([]byte, error) {
			t.Fatalf("scripts should not be read")
			return nil, nil
		}})
		if err != nil || defs[0].Hooks.OnEnter != nil {
			t.Fatalf("expected hookless definitions, err=%v", err)
		}
	})

	t.Run("read_failure", func(t *testing.T) {
		_, err := set.Definitions(BuildOptions{Logger: quietLogger(), ReadScript: func(string) ([]byte, error) {
			return nil, errors.New("gone")
		}})
		if err == nil || !strings.Contains(err.Error(), "load script shared: gone") {
			t.Fatalf("unexpected error %v", err)
		}
	})

	t.Run("compile_failure", func(t *testing.T) {
		_, err := set.Definitions(BuildOptions{Logger: quietLogger(), ReadScript: func(string) ([]byte, error) {
			return []byte(`onEnter := func(`), nil
		}})
		if err == nil {
			t.Fatalf("expected a compile error")
		}
	})
}

func TestApply(t *testing.T) {
	m := state.NewMachine(state.WithLogger(quietLogger()))
	m.Initialize(state.Binding{Owner: "apply"})

	set := validSet()
	one := 0.5
	set.Channels[0].Weight = &one
	if err := set.Apply(m, BuildOptions{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if ch := m.Channel("body"); ch == nil || ch.Weight() != 0.5 || ch.Fallback() != "Idle" {
		t.Fatalf("channel not configured: %+v", ch)
	}
	run, _ := m.GetByString("Run")
	key := run.Key()
	if !m.TryActivateState(state.Name("Run")) {
		t.Fatalf("Run should activate")
	}

	t.Run("reapply_replaces_in_place", func(t *testing.T) {
		set.States[1].Priority = 7
		if err := set.Apply(m, BuildOptions{}); err != nil {
			t.Fatalf("reapply: %v", err)
		}
		h, _ := m.GetByString("Run")
		if h.Key() != key || h.Definition().Priority != 7 {
			t.Fatalf("override should keep key %d and take new priority, got %d/%v", key, h.Key(), h.Definition().Priority)
		}
		if h.Running() {
			t.Fatalf("replaced definitions drop their running instance")
		}
	})

	t.Run("errors_are_joined", func(t *testing.T) {
		bad := validSet()
		bad.States[0].AllowOverride = false
		bad.States = append(bad.States, StateSpec{Name: "Oops", Channel: "body", Duration: DurationSpec{Mode: "?"}})
		m2 := state.NewMachine(state.WithLogger(quietLogger()))
		if err := bad.Apply(m2, BuildOptions{}); err == nil {
			t.Fatalf("expected an error for the broken state")
		}
		if !m2.HasState(state.Name("Idle")) || !m2.HasState(state.Name("Run")) {
			t.Fatalf("good states should still register")
		}
		if err := bad.Apply(m2, BuildOptions{}); err == nil || !strings.Contains(err.Error(), `register "Idle": rejected`) {
			t.Fatalf("duplicate without override should be rejected, got %v", err)
		}
	})
}

func TestCleanPaths(t *testing.T) {
	cases := []struct {
		in, script, prefab string
	}{
		{"aim", "scripts/aim.tengo", "aim"},
		{"scripts/aim.tengo", "scripts/aim.tengo", "scripts/aim.tengo"},
		{"prefabs/scripts/flinch", "scripts/flinch.tengo", "scripts/flinch"},
		{"prefabs/humanoid.yaml", "scripts/humanoid.yaml", "humanoid.yaml"},
		{"", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := cleanScriptPath(tc.in); got != tc.script {
				t.Fatalf("cleanScriptPath(%q) = %q, want %q", tc.in, got, tc.script)
			}
			if got := cleanPrefabPath(tc.in); got != tc.prefab {
				t.Fatalf("cleanPrefabPath(%q) = %q, want %q", tc.in, got, tc.prefab)
			}
		})
	}
}

func TestEmbedded(t *testing.T) {
	sets := StateSets()
	if len(sets) != 1 || sets[0] != "humanoid.yaml" {
		t.Fatalf("unexpected embedded state sets %v", sets)
	}
	if _, err := LoadScript("aim"); err != nil {
		t.Fatalf("embedded aim script: %v", err)
	}
	if _, err := Load("characters/hero.yaml"); err != nil {
		t.Fatalf("embedded hero prefab: %v", err)
	}
}
