package prefabs

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/milk9111/stateblend/pose"
	"github.com/milk9111/stateblend/script"
	"github.com/milk9111/stateblend/state"
)

// BuildOptions controls how a state set becomes definitions.
type BuildOptions struct {
	Logger *log.Logger
	// ReadScript reads hook scripts. Defaults to LoadScript.
	ReadScript func(path string) ([]byte, error)
	// SkipScripts builds definitions without hooks.
	SkipScripts bool
}

func (o BuildOptions) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

func (v Vec3Spec) Vec() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// BuildCurves resolves the set's named curves.
func (s *StateSetSpec) BuildCurves() (map[string]state.Curve, error) {
	out := make(map[string]state.Curve, len(s.Curves))
	var errs []error
	for name, c := range s.Curves {
		switch {
		case len(c.Keys) > 0:
			keys := make([]state.Keyframe, len(c.Keys))
			for i, k := range c.Keys {
				keys[i] = state.Keyframe{T: k[0], V: k[1]}
			}
			out[name] = state.NewKeyframes(keys...)
		case c.Kind != "":
			builtin, ok := state.BuiltinCurve(c.Kind)
			if !ok {
				errs = append(errs, fmt.Errorf("prefabs: curve %q: unknown kind %q", name, c.Kind))
				continue
			}
			out[name] = builtin
		default:
			errs = append(errs, fmt.Errorf("prefabs: curve %q: needs kind or keys", name))
		}
	}
	return out, errors.Join(errs...)
}

func resolveCurve(name string, curves map[string]state.Curve) (state.Curve, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if c, ok := curves[name]; ok {
		return c, nil
	}
	if c, ok := state.BuiltinCurve(name); ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown curve %q", name)
}

// Definition converts one state spec. Hooks are left empty.
func (st *StateSpec) Definition(curves map[string]state.Curve) (state.Definition, error) {
	mode, err := state.ParseDurationMode(st.Duration.Mode)
	if err != nil {
		return state.Definition{}, err
	}
	def := state.Definition{
		Name:     st.Name,
		Channel:  st.Channel,
		Priority: st.Priority,
		Cost: state.Cost{
			Base:    st.Cost.Base,
			Motion:  st.Cost.Motion,
			Agility: st.Cost.Agility,
			Target:  st.Cost.Target,
		},
		Duration:            mode,
		TimedDuration:       st.Duration.Seconds,
		Clip:                st.Duration.Clip,
		FadeIn:              st.FadeIn,
		FadeOut:             st.FadeOut,
		FadeFollowTimeScale: st.FollowTimeScale,
		CanBeTemporary:      st.Temporary,
		AutoRemoveWhenDone:  st.AutoRemove,
		AllowOverride:       st.AllowOverride,
		Feedback:            st.Feedback,
	}
	switch len(st.Cost.Weights) {
	case 0:
	case 3:
		copy(def.Cost.Weights[:], st.Cost.Weights)
	default:
		return state.Definition{}, fmt.Errorf("cost weights need 3 values, got %d", len(st.Cost.Weights))
	}

	if def.FadeInCurve, err = resolveCurve(st.FadeInCurve, curves); err != nil {
		return state.Definition{}, err
	}
	if def.FadeOutCurve, err = resolveCurve(st.FadeOutCurve, curves); err != nil {
		return state.Definition{}, err
	}

	for name, g := range st.IK.Goals {
		goal, ok := pose.ParseGoal(name)
		if !ok {
			return state.Definition{}, fmt.Errorf("unknown IK goal %q", name)
		}
		rot := pose.Identity
		if g.Rotation != nil {
			rot = pose.AxisAngle(g.Rotation.Axis.Vec(), g.Rotation.Degrees*math.Pi/180)
		}
		def.IK.SetGoal(goal, pose.GoalPose{
			Weight:   g.Weight,
			Position: g.Position.Vec(),
			Rotation: rot,
			Hint:     g.Hint.Vec(),
		})
	}
	if la := st.IK.LookAt; la != nil {
		var l pose.LookAt
		l.Reset()
		l.Weight = la.Weight
		l.Position = la.Position.Vec()
		if la.Body != nil {
			l.BodyWeight = *la.Body
		}
		if la.Head != nil {
			l.HeadWeight = *la.Head
		}
		if la.Eyes != nil {
			l.EyesWeight = *la.Eyes
		}
		if la.Clamp != nil {
			l.ClampWeight = *la.Clamp
		}
		def.IK.SetLookAt(l)
	}

	if err := def.Validate(); err != nil {
		return state.Definition{}, err
	}
	return def, nil
}

// Definitions builds every state in the set. Failing states are reported
// together and left out; the rest are still returned.
func (s *StateSetSpec) Definitions(opts BuildOptions) ([]state.Definition, error) {
	var errs []error
	curves, err := s.BuildCurves()
	if err != nil {
		errs = append(errs, err)
	}

	read := opts.ReadScript
	if read == nil {
		read = LoadScript
	}
	scripts := make(map[string]*script.Runtime)

	defs := make([]state.Definition, 0, len(s.States))
	for i := range s.States {
		st := &s.States[i]
		def, err := st.Definition(curves)
		if err != nil {
			errs = append(errs, fmt.Errorf("prefabs: %s: state %q: %w", s.Name, st.Name, err))
			continue
		}
		if st.Script != "" && !opts.SkipScripts {
			rt, err := loadRuntime(st.Script, scripts, read, opts.logger())
			if err != nil {
				errs = append(errs, fmt.Errorf("prefabs: %s: state %q: %w", s.Name, st.Name, err))
				continue
			}
			def.Hooks = rt.Hooks()
		}
		defs = append(defs, def)
	}
	return defs, errors.Join(errs...)
}

// loadRuntime compiles each script once per build; states sharing a script
// get clones so their script state stays separate.
func loadRuntime(path string, cache map[string]*script.Runtime, read func(string) ([]byte, error), logger *log.Logger) (*script.Runtime, error) {
	if rt, ok := cache[path]; ok {
		return rt.Clone(), nil
	}
	src, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	rt, err := script.Compile(path, src, logger)
	if err != nil {
		return nil, err
	}
	cache[path] = rt
	return rt, nil
}

// ChannelConfig converts a channel spec, applying defaults for omitted fields.
func (c ChannelSpec) ChannelConfig() state.ChannelConfig {
	cfg := state.DefaultChannelConfig()
	if c.Weight != nil {
		cfg.Weight = *c.Weight
	}
	if c.Enabled != nil {
		cfg.Enabled = *c.Enabled
	}
	cfg.Fallback = c.Fallback
	return cfg
}

// Validate checks the set as a whole without touching a machine.
func (s *StateSetSpec) Validate(opts BuildOptions) error {
	var errs []error
	channels := make(map[string]bool, len(s.Channels))
	for _, ch := range s.Channels {
		if channels[ch.Name] {
			errs = append(errs, fmt.Errorf("prefabs: %s: duplicate channel %q", s.Name, ch.Name))
		}
		channels[ch.Name] = true
	}
	states := make(map[string]string, len(s.States))
	for _, st := range s.States {
		if _, dup := states[st.Name]; dup {
			errs = append(errs, fmt.Errorf("prefabs: %s: duplicate state %q", s.Name, st.Name))
		}
		states[st.Name] = st.Channel
	}
	for _, ch := range s.Channels {
		if ch.Fallback == "" {
			continue
		}
		on, ok := states[ch.Fallback]
		if !ok {
			errs = append(errs, fmt.Errorf("prefabs: %s: channel %q: fallback %q is not defined", s.Name, ch.Name, ch.Fallback))
		} else if on != ch.Name {
			errs = append(errs, fmt.Errorf("prefabs: %s: channel %q: fallback %q lives on %q", s.Name, ch.Name, ch.Fallback, on))
		}
	}
	if _, err := s.Definitions(opts); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Apply configures channels and registers every buildable state on m.
// Re-applying replaces states that allow override. All failures are joined
// into the returned error.
func (s *StateSetSpec) Apply(m *state.Machine, opts BuildOptions) error {
	var errs []error
	for _, ch := range s.Channels {
		if err := m.ConfigureChannel(ch.Name, ch.ChannelConfig()); err != nil {
			errs = append(errs, fmt.Errorf("prefabs: %s: channel %q: %w", s.Name, ch.Name, err))
		}
	}
	defs, err := s.Definitions(opts)
	if err != nil {
		errs = append(errs, err)
	}
	for _, def := range defs {
		if !m.RegisterState(def.Name, def, "") {
			errs = append(errs, fmt.Errorf("prefabs: %s: register %q: rejected", s.Name, def.Name))
		}
	}
	return errors.Join(errs...)
}
