package state

import (
	"github.com/milk9111/stateblend/common"
	"github.com/milk9111/stateblend/pose"
)

// Phase is where an instance is on its fade timeline.
type Phase uint8

const (
	FadingIn Phase = iota
	Steady
	FadingOut
	Done
)

func (p Phase) String() string {
	switch p {
	case FadingIn:
		return "fading_in"
	case Steady:
		return "steady"
	case FadingOut:
		return "fading_out"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// exitReason records how an instance started leaving; it decides whether the
// instance is destroyed or parked once its fade-out completes.
type exitReason uint8

const (
	exitNone exitReason = iota
	exitExplicit
	exitPreempted
	exitCompleted
)

const fadeEpsilon = 1e-9

type fadeTrack struct {
	elapsed  float64
	duration float64
	from     float64
	curve    Curve
}

// progress is the shaped fade progress in [0,1].
func (f *fadeTrack) progress() float64 {
	if f.duration <= 0 {
		return 1
	}
	t := common.Clamp01(f.elapsed / f.duration)
	if f.curve != nil {
		t = f.curve.Evaluate(t)
	}
	return common.Clamp01(t)
}

func (f *fadeTrack) finished() bool {
	return f.elapsed >= f.duration-fadeEpsilon
}

// Instance is the mutable record of one activation.
type Instance struct {
	entry *entry

	enterTime float64
	weight    float64
	phase     Phase
	fade      fadeTrack
	feedback  bool
	exit      exitReason
	seq       int

	deadline    float64
	hasDeadline bool

	ik pose.Targets
}

func (i *Instance) Name() string {
	if i == nil || i.entry == nil {
		return ""
	}
	return i.entry.name
}

func (i *Instance) Key() int {
	if i == nil || i.entry == nil {
		return -1
	}
	return i.entry.key
}

// EnterTime is the machine's scaled clock at the last activation.
func (i *Instance) EnterTime() float64 {
	if i == nil {
		return 0
	}
	return i.enterTime
}

func (i *Instance) Weight() float64 {
	if i == nil {
		return 0
	}
	return i.weight
}

func (i *Instance) Phase() Phase {
	if i == nil {
		return Done
	}
	return i.phase
}

// Feedback reports whether the instance is a secondary contributor.
func (i *Instance) Feedback() bool {
	return i != nil && i.feedback
}

// Live reports whether the instance is still on its channel.
func (i *Instance) Live() bool {
	return i != nil && i.phase != Done
}

// SetIKGoal overrides the definition's goal for this activation.
func (i *Instance) SetIKGoal(g pose.Goal, gp pose.GoalPose) {
	if i == nil {
		return
	}
	i.ik.SetGoal(g, gp)
}

func (i *Instance) SetLookAt(l pose.LookAt) {
	if i == nil {
		return
	}
	i.ik.SetLookAt(l)
}

// ClearIK drops every runtime override, falling back to the definition.
func (i *Instance) ClearIK() {
	if i == nil {
		return
	}
	i.ik = pose.Targets{}
}

func (i *Instance) definition() *Definition {
	return &i.entry.def
}

// beginFadeIn starts (or restarts) a fade-in from the current weight.
func (i *Instance) beginFadeIn() {
	def := i.definition()
	from := common.Clamp01(i.weight)
	i.phase = FadingIn
	i.exit = exitNone
	i.fade = fadeTrack{
		duration: def.FadeIn * (1 - from),
		from:     from,
		curve:    def.FadeInCurve,
	}
	if i.fade.finished() {
		i.weight = 1
		i.phase = Steady
	}
}

// beginFadeOut starts fading toward 0 from the current weight. The fade
// lasts at least window, scaled like FadeOut, so a pre-empted owner
// crossfades with the fade-in of the state that replaced it.
func (i *Instance) beginFadeOut(reason exitReason, window float64) {
	def := i.definition()
	from := common.Clamp01(i.weight)
	i.phase = FadingOut
	i.exit = reason
	i.fade = fadeTrack{
		duration: max(def.FadeOut, window) * from,
		from:     from,
		curve:    def.FadeOutCurve,
	}
	if i.fade.finished() {
		i.weight = 0
		i.phase = Done
	}
}

// advance moves the fade by the appropriate clock.
func (i *Instance) advance(scaled, unscaled float64) {
	dt := unscaled
	if i.definition().FadeFollowTimeScale {
		dt = scaled
	}
	switch i.phase {
	case FadingIn:
		i.fade.elapsed += dt
		if i.fade.finished() {
			i.weight = 1
			i.phase = Steady
			return
		}
		i.weight = common.Clamp01(i.fade.from + (1-i.fade.from)*i.fade.progress())
	case FadingOut:
		i.fade.elapsed += dt
		if i.fade.finished() {
			i.weight = 0
			i.phase = Done
			return
		}
		i.weight = common.Clamp01(i.fade.from * (1 - i.fade.progress()))
	}
}

// targets merges the definition's goals with runtime overrides.
func (i *Instance) targets() pose.Targets {
	if i.ik.Empty() {
		return i.definition().IK
	}
	return pose.Overlay(i.definition().IK, i.ik)
}
