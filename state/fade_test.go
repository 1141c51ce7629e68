package state

import (
	"math"
	"testing"

	"github.com/milk9111/stateblend/common"
)

func TestBuiltinCurves(t *testing.T) {
	cases := []struct {
		name string
		t    float64
		want float64
	}{
		{"linear", 0.25, 0.25},
		{"ease_in", 0.5, 0.25},
		{"ease_out", 0.5, 0.75},
		{"smoothstep", 0.5, 0.5},
		{"SmoothStep", 0.25, 0.15625},
		{"ease_in_out", 1, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			curve, ok := BuiltinCurve(c.name)
			if !ok {
				t.Fatalf("BuiltinCurve(%q) not found", c.name)
			}
			if got := curve.Evaluate(c.t); !common.Approx(got, c.want, eps) {
				t.Fatalf("Evaluate(%v) = %v, want %v", c.t, got, c.want)
			}
		})
	}
	if _, ok := BuiltinCurve("bounce"); ok {
		t.Fatalf("unknown curve resolved")
	}
}

func TestKeyframes(t *testing.T) {
	k := NewKeyframes(Keyframe{T: 1, V: 1}, Keyframe{T: 0, V: 0}, Keyframe{T: 0.5, V: 0.8})
	cases := []struct {
		t, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.4},
		{0.5, 0.8},
		{0.75, 0.9},
		{1, 1},
		{2, 1},
	}
	for _, c := range cases {
		if got := k.Evaluate(c.t); !common.Approx(got, c.want, eps) {
			t.Fatalf("Evaluate(%v) = %v, want %v", c.t, got, c.want)
		}
	}
	if got := (Keyframes{}).Evaluate(0.3); got != 0.3 {
		t.Fatalf("empty keyframes should be linear, got %v", got)
	}
}

func fadeInstance(def Definition, weight float64) *Instance {
	return &Instance{entry: &entry{name: def.Name, def: def}, weight: weight}
}

func TestFadeIn(t *testing.T) {
	cases := []struct {
		name  string
		def   Definition
		from  float64
		steps []float64
		want  []float64
	}{
		{"linear", Definition{FadeIn: 0.4}, 0, []float64{0.1, 0.1, 0.2}, []float64{0.25, 0.5, 1}},
		{"from_half", Definition{FadeIn: 0.4}, 0.5, []float64{0.1, 0.1}, []float64{0.75, 1}},
		{"ease_in", Definition{FadeIn: 1, FadeInCurve: EaseIn}, 0, []float64{0.5, 0.5}, []float64{0.25, 1}},
		{"zero_duration", Definition{}, 0, []float64{0}, []float64{1}},
		{"overshoot", Definition{FadeIn: 0.1}, 0, []float64{5}, []float64{1}},
		{"curve_out_of_range", Definition{FadeIn: 1, FadeInCurve: CurveFunc(func(float64) float64 { return 3 })}, 0, []float64{0.5, 0.5}, []float64{1, 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			inst := fadeInstance(c.def, c.from)
			inst.beginFadeIn()
			for i, dt := range c.steps {
				inst.advance(dt, dt)
				if !common.Approx(inst.Weight(), c.want[i], eps) {
					t.Fatalf("step %d: weight = %v, want %v", i, inst.Weight(), c.want[i])
				}
			}
			if inst.Phase() != Steady {
				t.Fatalf("phase = %s, want steady", inst.Phase())
			}
		})
	}
}

func TestFadeOut(t *testing.T) {
	cases := []struct {
		name  string
		def   Definition
		from  float64
		steps []float64
		want  []float64
	}{
		{"linear", Definition{FadeOut: 0.2}, 1, []float64{0.05, 0.15}, []float64{0.75, 0}},
		// Fading out from half weight takes half as long.
		{"from_half", Definition{FadeOut: 0.2}, 0.5, []float64{0.05, 0.05}, []float64{0.25, 0}},
		{"zero_duration", Definition{}, 1, []float64{0}, []float64{0}},
		{"ease_out", Definition{FadeOut: 1, FadeOutCurve: EaseOut}, 1, []float64{0.5, 0.5}, []float64{0.25, 0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			inst := fadeInstance(c.def, c.from)
			inst.beginFadeOut(exitExplicit, 0)
			for i, dt := range c.steps {
				inst.advance(dt, dt)
				if !common.Approx(inst.Weight(), c.want[i], eps) {
					t.Fatalf("step %d: weight = %v, want %v", i, inst.Weight(), c.want[i])
				}
			}
			if inst.Phase() != Done {
				t.Fatalf("phase = %s, want done", inst.Phase())
			}
		})
	}
}

func TestFadeOutWindow(t *testing.T) {
	cases := []struct {
		name   string
		def    Definition
		window float64
		from   float64
		want   float64
	}{
		// A state without its own fade-out still crossfades over the window.
		{"window_only", Definition{}, 0.1, 1, 0.5},
		{"own_fade_longer", Definition{FadeOut: 0.2}, 0.1, 1, 0.75},
		{"window_longer", Definition{FadeOut: 0.05}, 0.1, 1, 0.5},
		{"scaled_by_weight", Definition{}, 0.1, 0.5, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			inst := fadeInstance(c.def, c.from)
			inst.beginFadeOut(exitPreempted, c.window)
			if c.from > 0 && inst.Phase() != FadingOut {
				t.Fatalf("phase = %s, want fading_out", inst.Phase())
			}
			inst.advance(0.05, 0.05)
			if !common.Approx(inst.Weight(), c.want, eps) {
				t.Fatalf("weight = %v, want %v", inst.Weight(), c.want)
			}
		})
	}
}

func TestFadeClock(t *testing.T) {
	unscaled := fadeInstance(Definition{FadeIn: 1}, 0)
	scaled := fadeInstance(Definition{FadeIn: 1, FadeFollowTimeScale: true}, 0)
	unscaled.beginFadeIn()
	scaled.beginFadeIn()
	unscaled.advance(0.1, 0.4)
	scaled.advance(0.1, 0.4)
	if !common.Approx(unscaled.Weight(), 0.4, eps) || !common.Approx(scaled.Weight(), 0.1, eps) {
		t.Fatalf("unscaled %v scaled %v", unscaled.Weight(), scaled.Weight())
	}
}

func TestDefinitionValidate(t *testing.T) {
	cases := []struct {
		name    string
		def     Definition
		wantErr bool
	}{
		{"ok", Definition{Name: "Idle", Channel: "loco"}, false},
		{"no_name", Definition{Channel: "loco"}, true},
		{"no_channel", Definition{Name: "Idle"}, true},
		{"bad_mode", Definition{Name: "Idle", Channel: "loco", Duration: DurationMode(9)}, true},
		{"nan_fade_in", Definition{Name: "Idle", Channel: "loco", FadeIn: math.NaN()}, true},
		{"nan_fade_out", Definition{Name: "Idle", Channel: "loco", FadeOut: math.NaN()}, true},
		{"inf_fade_in", Definition{Name: "Idle", Channel: "loco", FadeIn: math.Inf(1)}, true},
		{"nan_timed", Definition{Name: "Hit", Channel: "loco", Duration: Timed, TimedDuration: math.NaN()}, true},
		{"inf_timed", Definition{Name: "Hit", Channel: "loco", Duration: Timed, TimedDuration: math.Inf(1)}, true},
		{"neg_inf_priority", Definition{Name: "Idle", Channel: "loco", Priority: math.Inf(-1)}, true},
		{"nan_cost_base", Definition{Name: "Idle", Channel: "loco", Cost: Cost{Base: math.NaN()}}, true},
		{"nan_cost_axis", Definition{Name: "Idle", Channel: "loco", Cost: Cost{Agility: math.NaN()}}, true},
		{"inf_cost_weight", Definition{Name: "Idle", Channel: "loco", Cost: Cost{Weights: [3]float64{1, math.Inf(1), 1}}}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.def.Validate()
			if (err != nil) != c.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, c.wantErr)
			}
		})
	}

	d := Definition{Name: "Hit", Channel: "c", FadeIn: -1, FadeOut: -2, TimedDuration: -3, Cost: Cost{Motion: 150, Agility: -5}}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if d.FadeIn != 0 || d.FadeOut != 0 || d.TimedDuration != 0 {
		t.Fatalf("negative durations not clamped: %+v", d)
	}
	if d.Cost.Motion != 100 || d.Cost.Agility != 0 {
		t.Fatalf("cost axes not clamped: %+v", d.Cost)
	}
}

func TestCostTotal(t *testing.T) {
	cases := []struct {
		name string
		cost Cost
		want float64
	}{
		{"zero", Cost{}, 0},
		{"base", Cost{Base: 3}, 3},
		{"default_weights", Cost{Motion: 1, Agility: 2, Target: 3}, 6},
		{"weighted", Cost{Base: 1, Motion: 10, Agility: 10, Target: 10, Weights: [3]float64{0.5, 0, 2}}, 26},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.cost.Total(); !common.Approx(got, c.want, eps) {
				t.Fatalf("Total() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestParseDurationMode(t *testing.T) {
	cases := map[string]DurationMode{
		"":                   Infinite,
		"Infinite":           Infinite,
		"timed":              Timed,
		"animation":          BoundToAnimation,
		"bound_to_animation": BoundToAnimation,
	}
	for in, want := range cases {
		got, err := ParseDurationMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseDurationMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDurationMode("forever"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
