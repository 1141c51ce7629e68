package script

import (
	"strings"

	"github.com/d5/tengo/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/milk9111/stateblend/pose"
	"github.com/milk9111/stateblend/state"
)

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func floatArg(args []tengo.Object, i int, def float64) float64 {
	if i >= len(args) {
		return def
	}
	if f, ok := tengo.ToFloat64(args[i]); ok {
		return f
	}
	return def
}

func vecArgs(args []tengo.Object, from int) r3.Vec {
	return r3.Vec{X: floatArg(args, from, 0), Y: floatArg(args, from+1, 0), Z: floatArg(args, from+2, 0)}
}

// buildEngine exposes the hook context to scripts. Activation requests go
// through the context, so they are applied after the hook returns.
func buildEngine(rt *Runtime, ctx *state.HookContext) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["activate"] = &tengo.UserFunction{Name: "activate", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name == "" {
			return tengo.FalseValue, nil
		}
		ctx.Activate(name)
		return tengo.TrueValue, nil
	}}

	values["deactivate"] = &tengo.UserFunction{Name: "deactivate", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil {
			return tengo.FalseValue, nil
		}
		name := ctx.State.Name()
		if len(args) > 0 {
			name = strings.TrimSpace(objectAsString(args[0]))
		}
		if name == "" {
			return tengo.FalseValue, nil
		}
		ctx.Deactivate(name)
		return tengo.TrueValue, nil
	}}

	// set_ik_goal(goal, weight, x, y, z)
	values["set_ik_goal"] = &tengo.UserFunction{Name: "set_ik_goal", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || ctx.Instance == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		g, ok := pose.ParseGoal(objectAsString(args[0]))
		if !ok {
			return tengo.FalseValue, nil
		}
		ctx.Instance.SetIKGoal(g, pose.GoalPose{
			Weight:   floatArg(args, 1, 0),
			Position: vecArgs(args, 2),
			Rotation: pose.Identity,
		})
		return tengo.TrueValue, nil
	}}

	// set_look_at(weight, x, y, z)
	values["set_look_at"] = &tengo.UserFunction{Name: "set_look_at", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || ctx.Instance == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		var l pose.LookAt
		l.Reset()
		l.Weight = floatArg(args, 0, 0)
		l.Position = vecArgs(args, 1)
		ctx.Instance.SetLookAt(l)
		return tengo.TrueValue, nil
	}}

	values["clear_ik"] = &tengo.UserFunction{Name: "clear_ik", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || ctx.Instance == nil {
			return tengo.FalseValue, nil
		}
		ctx.Instance.ClearIK()
		return tengo.TrueValue, nil
	}}

	values["weight"] = &tengo.UserFunction{Name: "weight", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: ctx.Instance.Weight()}, nil
	}}

	values["elapsed"] = &tengo.UserFunction{Name: "elapsed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || ctx.Machine == nil {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: ctx.Machine.Now() - ctx.Instance.EnterTime()}, nil
	}}

	values["delta"] = &tengo.UserFunction{Name: "delta", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: ctx.Delta}, nil
	}}

	values["running"] = &tengo.UserFunction{Name: "running", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || ctx.Machine == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		h, ok := ctx.Machine.GetByString(objectAsString(args[0]))
		return boolObject(ok && h.Running()), nil
	}}

	values["get"] = &tengo.UserFunction{Name: "get", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || ctx.Machine == nil || len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		v, ok := ctx.Machine.Blackboard().Get(objectAsString(args[0]))
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return toObject(v), nil
	}}

	values["set"] = &tengo.UserFunction{Name: "set", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || ctx.Machine == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		v, ok := fromObject(args[1])
		if !ok {
			return tengo.FalseValue, nil
		}
		ctx.Machine.Blackboard().Set(objectAsString(args[0]), v)
		return tengo.TrueValue, nil
	}}

	values["flag"] = &tengo.UserFunction{Name: "flag", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx == nil || ctx.Machine == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		return boolObject(ctx.Machine.Blackboard().HasFlag(objectAsString(args[0]))), nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		rt.logger.Printf("script: %s: %s", rt.name, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func toObject(v state.Value) tengo.Object {
	switch v.Kind() {
	case state.KindBool:
		b, _ := v.AsBool()
		return boolObject(b)
	case state.KindInt:
		i, _ := v.AsInt()
		return &tengo.Int{Value: i}
	case state.KindFloat:
		f, _ := v.AsFloat()
		return &tengo.Float{Value: f}
	case state.KindString:
		s, _ := v.AsString()
		return &tengo.String{Value: s}
	case state.KindVec3:
		p, _ := v.AsVec3()
		return &tengo.Array{Value: []tengo.Object{
			&tengo.Float{Value: p.X}, &tengo.Float{Value: p.Y}, &tengo.Float{Value: p.Z},
		}}
	default:
		return tengo.UndefinedValue
	}
}

// fromObject converts script values to blackboard values. Three-number
// arrays become vectors.
func fromObject(obj tengo.Object) (state.Value, bool) {
	switch v := obj.(type) {
	case *tengo.Bool:
		return state.BoolValue(!v.IsFalsy()), true
	case *tengo.Int:
		return state.IntValue(v.Value), true
	case *tengo.Float:
		return state.FloatValue(v.Value), true
	case *tengo.String:
		return state.StringValue(v.Value), true
	case *tengo.Array:
		if len(v.Value) != 3 {
			return state.Value{}, false
		}
		var xyz [3]float64
		for i, item := range v.Value {
			f, ok := tengo.ToFloat64(item)
			if !ok {
				return state.Value{}, false
			}
			xyz[i] = f
		}
		return state.Vec3Value(r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}), true
	default:
		return state.Value{}, false
	}
}
