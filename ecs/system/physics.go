package system

import (
	"math"

	"github.com/milk9111/stateblend/ecs"
	"github.com/milk9111/stateblend/ecs/component"
)

// PhysicsSystem steps the world's physics and copies body state back into
// transforms and locomotion.
type PhysicsSystem struct{}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{}
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		return
	}

	bodies := w.Query(component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind())
	for _, e := range bodies {
		t, _ := ecs.Get(w, e, component.TransformComponent)
		body, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
		pw.EnsureBody(e, t, body)
	}

	pw.Step(w.Delta())

	for _, e := range bodies {
		t, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		body, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		if !ok || body.Body == nil {
			continue
		}
		pos := body.Body.Position()
		t.X, t.Y = pos.X, pos.Y
		t.Rotation = body.Body.Angle()
		body.Grounded = pw.Grounded(e)

		if loco, ok := ecs.Get(w, e, component.LocomotionComponent); ok {
			loco.Speed = math.Abs(body.Body.Velocity().X)
			loco.Grounded = body.Grounded
		}
	}
}
