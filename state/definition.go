package state

import (
	"fmt"
	"math"
	"strings"

	"github.com/milk9111/stateblend/common"
	"github.com/milk9111/stateblend/pose"
)

// DurationMode controls when a state completes on its own.
type DurationMode uint8

const (
	Infinite DurationMode = iota
	Timed
	BoundToAnimation
)

func (d DurationMode) String() string {
	switch d {
	case Infinite:
		return "infinite"
	case Timed:
		return "timed"
	case BoundToAnimation:
		return "animation"
	default:
		return fmt.Sprintf("DurationMode(%d)", uint8(d))
	}
}

// ParseDurationMode accepts the names produced by String.
func ParseDurationMode(s string) (DurationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "infinite":
		return Infinite, nil
	case "timed":
		return Timed, nil
	case "animation", "bound_to_animation":
		return BoundToAnimation, nil
	default:
		return Infinite, fmt.Errorf("state: unknown duration mode %q", s)
	}
}

// Cost is how expensive a state is to hold. Cheaper states win priority ties.
// Base is added to the weighted motion, agility and target axes.
type Cost struct {
	Base    float64
	Motion  float64
	Agility float64
	Target  float64
	// Weights scales Motion, Agility and Target. A zero Weights counts as (1,1,1).
	Weights [3]float64
}

func (c Cost) Total() float64 {
	w := c.Weights
	if w == ([3]float64{}) {
		w = [3]float64{1, 1, 1}
	}
	return c.Base + c.Motion*w[0] + c.Agility*w[1] + c.Target*w[2]
}

// HookContext is handed to behavior hooks. Activation requests made through
// it are deferred until the machine finishes its current step.
type HookContext struct {
	Machine  *Machine
	State    Handle
	Instance *Instance
	// Delta is the scaled frame time for update hooks and 0 otherwise.
	Delta float64
}

func (c *HookContext) Activate(name string) {
	if c == nil || c.Machine == nil {
		return
	}
	c.Machine.enqueue(command{activate: true, key: Name(name)})
}

func (c *HookContext) Deactivate(name string) {
	if c == nil || c.Machine == nil {
		return
	}
	c.Machine.enqueue(command{key: Name(name)})
}

// Hooks are optional behavior callbacks attached to a definition.
type Hooks struct {
	OnEnter  func(ctx *HookContext)
	OnExit   func(ctx *HookContext)
	OnUpdate func(ctx *HookContext)
}

// Definition is the immutable template for one state.
type Definition struct {
	Name     string
	Channel  string
	Priority float64
	Cost     Cost

	Duration      DurationMode
	TimedDuration float64
	// Clip names the animation whose length bounds a BoundToAnimation state.
	Clip string

	FadeIn       float64
	FadeOut      float64
	FadeInCurve  Curve
	FadeOutCurve Curve
	// FadeFollowTimeScale makes fades advance on scaled time. Otherwise they
	// use the unscaled clock and look the same under slow motion.
	FadeFollowTimeScale bool

	// CanBeTemporary keeps an explicitly deactivated instance parked for reuse
	// instead of destroying it.
	CanBeTemporary bool
	// AutoRemoveWhenDone destroys instances that finish through pre-emption
	// or duration completion. Otherwise they are parked.
	AutoRemoveWhenDone bool
	// AllowOverride lets a later registration with the same name replace this one.
	AllowOverride bool
	// Feedback states never contest channel ownership. They ride alongside
	// the owner as secondary contributors.
	Feedback bool

	IK    pose.Targets
	Hooks Hooks
}

// nonFinite names the first numeric field holding NaN or an infinity.
func (d *Definition) nonFinite() (string, bool) {
	fields := []struct {
		name string
		v    float64
	}{
		{"priority", d.Priority},
		{"timed duration", d.TimedDuration},
		{"fade in", d.FadeIn},
		{"fade out", d.FadeOut},
		{"cost base", d.Cost.Base},
		{"cost motion", d.Cost.Motion},
		{"cost agility", d.Cost.Agility},
		{"cost target", d.Cost.Target},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return f.name, true
		}
	}
	for i, w := range d.Cost.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Sprintf("cost weight %d", i), true
		}
	}
	return "", false
}

// Validate clamps out-of-range numbers and reports configuration errors.
func (d *Definition) Validate() error {
	if d == nil {
		return ErrEmptyName
	}
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(d.Channel) == "" {
		return fmt.Errorf("%w for %q", ErrEmptyChannel, d.Name)
	}
	if field, ok := d.nonFinite(); ok {
		return fmt.Errorf("%w: %q has %s", ErrNonFinite, d.Name, field)
	}
	d.TimedDuration = max(d.TimedDuration, 0)
	d.FadeIn = max(d.FadeIn, 0)
	d.FadeOut = max(d.FadeOut, 0)
	d.Cost.Motion = common.Clamp(d.Cost.Motion, 0, 100)
	d.Cost.Agility = common.Clamp(d.Cost.Agility, 0, 100)
	d.Cost.Target = common.Clamp(d.Cost.Target, 0, 100)
	if d.Duration > BoundToAnimation {
		return fmt.Errorf("state: %q has invalid duration mode %d", d.Name, d.Duration)
	}
	return nil
}
