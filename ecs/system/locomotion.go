package system

import (
	"github.com/milk9111/stateblend/ecs"
	"github.com/milk9111/stateblend/ecs/component"
	"github.com/milk9111/stateblend/state"
)

const (
	// Fractions of the configured speeds at which a gait is requested.
	walkThreshold   = 0.5
	sprintThreshold = 0.75
)

// LocomotionSystem requests locomotion states from observed body speed.
// Below walking speed it deactivates both gaits and lets the channel's
// fallback take over.
type LocomotionSystem struct {
	names StateNames
}

func NewLocomotionSystem(names StateNames) *LocomotionSystem {
	return &LocomotionSystem{names: names}
}

func (l *LocomotionSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	entities := w.Query(component.LocomotionComponent.Kind(), component.StateMachineComponent.Kind())
	for _, e := range entities {
		loco, ok := ecs.Get(w, e, component.LocomotionComponent)
		if !ok {
			continue
		}
		sm, ok := ecs.Get(w, e, component.StateMachineComponent)
		if !ok || !sm.Machine.Initialized() {
			continue
		}
		l.apply(sm.Machine, loco)
	}
}

func (l *LocomotionSystem) apply(m *state.Machine, loco *component.Locomotion) {
	if loco.Jumped {
		loco.Jumped = false
		activate(m, l.names.Jump)
		return
	}
	if !loco.Grounded {
		return
	}

	walk := loco.WalkSpeed
	if walk <= 0 {
		walk = defaultWalkSpeed
	}
	sprint := loco.SprintSpeed
	if sprint <= 0 {
		sprint = defaultSprintSpeed
	}

	switch {
	case loco.Speed >= sprint*sprintThreshold:
		request(m, l.names.Sprint)
	case loco.Speed >= walk*walkThreshold:
		deactivate(m, l.names.Sprint)
		request(m, l.names.Walk)
	default:
		deactivate(m, l.names.Sprint)
		deactivate(m, l.names.Walk)
	}
}

func known(m *state.Machine, name string) bool {
	return name != "" && m.HasState(state.Name(name))
}

// active reports whether name holds its channel and is not on its way out.
func active(m *state.Machine, name string) bool {
	if name == "" {
		return false
	}
	h, ok := m.GetByString(name)
	return ok && h.Running() && h.Phase() != state.FadingOut
}

func activate(m *state.Machine, name string) bool {
	if !known(m, name) {
		return false
	}
	return m.TryActivateState(state.Name(name))
}

// request queues name on its channel unless it is already active.
func request(m *state.Machine, name string) bool {
	if !known(m, name) || active(m, name) {
		return false
	}
	return m.RequestActivation(state.Name(name))
}

// deactivate also drops a queued request for name.
func deactivate(m *state.Machine, name string) {
	if known(m, name) {
		m.TryDeactivateState(state.Name(name))
	}
}
