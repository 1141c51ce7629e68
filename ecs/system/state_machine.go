package system

import (
	"log"

	"github.com/milk9111/stateblend/ecs"
	"github.com/milk9111/stateblend/ecs/component"
	"github.com/milk9111/stateblend/state"
)

// StateMachineSystem binds machines to their entities, ticks them with the
// world's delta, and copies the synthesized pose into PoseOutput. Machines
// whose entity or component disappeared are disposed.
type StateMachineSystem struct {
	logger   *log.Logger
	machines map[ecs.Entity]*state.Machine
}

func NewStateMachineSystem(logger *log.Logger) *StateMachineSystem {
	if logger == nil {
		logger = log.Default()
	}
	return &StateMachineSystem{
		logger:   logger,
		machines: make(map[ecs.Entity]*state.Machine),
	}
}

func (s *StateMachineSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	seen := make(map[ecs.Entity]bool)
	ecs.ForEach(w, component.StateMachineComponent.Kind(), func(e ecs.Entity, sm *component.StateMachine) {
		m := sm.Machine
		if m == nil {
			return
		}
		if prev, ok := s.machines[e]; ok && prev != m {
			prev.Dispose()
		}
		s.machines[e] = m
		seen[e] = true

		if !sm.Bound() {
			s.bind(w, e, sm)
		}
		m.Update(w.Delta())

		if out, ok := ecs.Get(w, e, component.PoseOutputComponent); ok {
			out.Pose = m.CurrentPose()
		}
	})

	for e, m := range s.machines {
		if !seen[e] {
			m.Dispose()
			delete(s.machines, e)
		}
	}
}

func (s *StateMachineSystem) bind(w *ecs.World, e ecs.Entity, sm *component.StateMachine) {
	m := sm.Machine
	b := state.Binding{Owner: e.String(), Logger: s.logger}
	if anim, ok := ecs.Get(w, e, component.AnimationComponent); ok {
		b.Animation = anim
	}
	m.Initialize(b)

	m.OnStateEntered(func(h state.Handle, channel string) {
		w.Events().Push(ecs.Event{
			Type: ecs.EventStateEntered,
			Data: ecs.StateEvent{Entity: e, State: h.Name(), Channel: channel, Time: m.Now(), Entered: true},
		})
	})
	m.OnStateExited(func(h state.Handle, channel string) {
		w.Events().Push(ecs.Event{
			Type: ecs.EventStateExited,
			Data: ecs.StateEvent{Entity: e, State: h.Name(), Channel: channel, Time: m.Now()},
		})
	})

	for _, name := range sm.Initial {
		if !m.RequestActivation(state.Name(name)) {
			s.logger.Printf("ecs: entity %s: initial state %q not active", e, name)
		}
	}
	sm.MarkBound()
}
