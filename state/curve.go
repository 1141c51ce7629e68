package state

import (
	"cmp"
	"slices"
	"strings"
)

// Curve shapes fade progress. Evaluate receives t in [0,1]; results outside
// [0,1] are clamped by the fade blender.
type Curve interface {
	Evaluate(t float64) float64
}

// CurveFunc adapts a function to Curve.
type CurveFunc func(t float64) float64

func (f CurveFunc) Evaluate(t float64) float64 {
	return f(t)
}

var (
	Linear     Curve = CurveFunc(func(t float64) float64 { return t })
	EaseIn     Curve = CurveFunc(func(t float64) float64 { return t * t })
	EaseOut    Curve = CurveFunc(func(t float64) float64 { return t * (2 - t) })
	SmoothStep Curve = CurveFunc(func(t float64) float64 { return t * t * (3 - 2*t) })
)

var builtinCurves = map[string]Curve{
	"linear":      Linear,
	"ease_in":     EaseIn,
	"ease_out":    EaseOut,
	"smoothstep":  SmoothStep,
	"ease_in_out": SmoothStep,
}

// BuiltinCurve looks up a named curve, case-insensitively.
func BuiltinCurve(name string) (Curve, bool) {
	c, ok := builtinCurves[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Keyframe is one point of a piecewise-linear curve.
type Keyframe struct {
	T, V float64
}

// Keyframes is a piecewise-linear curve. Outside its range it holds the end
// values.
type Keyframes []Keyframe

// NewKeyframes copies and sorts keys by time.
func NewKeyframes(keys ...Keyframe) Keyframes {
	out := append(Keyframes(nil), keys...)
	slices.SortStableFunc(out, func(a, b Keyframe) int { return cmp.Compare(a.T, b.T) })
	return out
}

func (k Keyframes) Evaluate(t float64) float64 {
	switch len(k) {
	case 0:
		return t
	case 1:
		return k[0].V
	}
	if t <= k[0].T {
		return k[0].V
	}
	last := k[len(k)-1]
	if t >= last.T {
		return last.V
	}
	i, _ := slices.BinarySearchFunc(k, t, func(kf Keyframe, t float64) int { return cmp.Compare(kf.T, t) })
	a, b := k[i-1], k[i]
	span := b.T - a.T
	if span <= 0 {
		return b.V
	}
	return a.V + (t-a.T)/span*(b.V-a.V)
}
