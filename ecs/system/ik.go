package system

import (
	"github.com/milk9111/stateblend/ecs"
	"github.com/milk9111/stateblend/ecs/component"
	"github.com/milk9111/stateblend/pose"
)

// IKSolver consumes the synthesized pose of one entity per tick.
type IKSolver interface {
	Solve(e ecs.Entity, p pose.Pose)
}

type IKSolverFunc func(e ecs.Entity, p pose.Pose)

func (f IKSolverFunc) Solve(e ecs.Entity, p pose.Pose) {
	f(e, p)
}

// IKSystem hands every PoseOutput to the solver. It runs after the state
// machine system.
type IKSystem struct {
	solver IKSolver
}

func NewIKSystem(solver IKSolver) *IKSystem {
	return &IKSystem{solver: solver}
}

func (s *IKSystem) Update(w *ecs.World) {
	if s == nil || s.solver == nil || w == nil {
		return
	}
	ecs.ForEach(w, component.PoseOutputComponent.Kind(), func(e ecs.Entity, out *component.PoseOutput) {
		s.solver.Solve(e, out.Pose)
		out.Solved++
	})
}
