package system

import (
	"github.com/milk9111/stateblend/ecs"
	"github.com/milk9111/stateblend/ecs/component"
	"github.com/milk9111/stateblend/state"
)

// AimTargetKey is the blackboard key holding the aim point.
const AimTargetKey = "aim_target"

// IntentSystem maps non-locomotion input to upper-body and head states and
// clears the input's one-frame edges.
type IntentSystem struct {
	names StateNames
}

func NewIntentSystem(names StateNames) *IntentSystem {
	return &IntentSystem{names: names}
}

func (s *IntentSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	entities := w.Query(component.InputComponent.Kind(), component.StateMachineComponent.Kind())
	for _, e := range entities {
		input, ok := ecs.Get(w, e, component.InputComponent)
		if !ok {
			continue
		}
		sm, ok := ecs.Get(w, e, component.StateMachineComponent)
		if !ok || !sm.Machine.Initialized() {
			continue
		}
		aiming := s.apply(sm.Machine, input)
		if loco, ok := ecs.Get(w, e, component.LocomotionComponent); ok {
			loco.Aiming = aiming
		}
		input.JumpPressed = false
		input.ReloadPressed = false
		input.WavePressed = false
		input.HitPressed = false
	}
}

func (s *IntentSystem) apply(m *state.Machine, input *component.Input) bool {
	if input.Aim {
		m.Blackboard().Set(AimTargetKey, state.Vec3Value(input.AimTarget))
		request(m, s.names.Aim)
	} else {
		deactivate(m, s.names.Aim)
	}

	if input.ReloadPressed {
		request(m, s.names.Reload)
	}
	if input.WavePressed {
		activate(m, s.names.Wave)
	}
	if input.HitPressed {
		activate(m, s.names.Hit)
	}

	if input.LookAround {
		request(m, s.names.LookAround)
	} else {
		deactivate(m, s.names.LookAround)
	}
	return active(m, s.names.Aim)
}
