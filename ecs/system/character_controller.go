package system

import (
	"github.com/milk9111/stateblend/ecs"
	"github.com/milk9111/stateblend/ecs/component"
)

const (
	defaultWalkSpeed   = 140.0
	defaultSprintSpeed = 320.0
	defaultJumpSpeed   = 620.0
)

// CharacterControllerSystem turns input into body velocity.
type CharacterControllerSystem struct{}

func NewCharacterControllerSystem() *CharacterControllerSystem {
	return &CharacterControllerSystem{}
}

func (c *CharacterControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	entities := w.Query(
		component.InputComponent.Kind(),
		component.LocomotionComponent.Kind(),
		component.PhysicsBodyComponent.Kind(),
	)
	for _, e := range entities {
		input, ok := ecs.Get(w, e, component.InputComponent)
		if !ok {
			continue
		}
		loco, ok := ecs.Get(w, e, component.LocomotionComponent)
		if !ok {
			continue
		}
		bodyComp, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		if !ok || bodyComp.Body == nil {
			continue
		}

		speed := loco.WalkSpeed
		if speed <= 0 {
			speed = defaultWalkSpeed
		}
		if input.Sprint {
			speed = loco.SprintSpeed
			if speed <= 0 {
				speed = defaultSprintSpeed
			}
		}
		jump := loco.JumpSpeed
		if jump <= 0 {
			jump = defaultJumpSpeed
		}

		vel := bodyComp.Body.Velocity()
		vel.X = input.MoveX * speed
		if input.JumpPressed && bodyComp.Grounded {
			vel.Y = -jump
			loco.Jumped = true
		}

		bodyComp.Body.SetVelocityVector(vel)
		bodyComp.Body.SetAngle(0)
		bodyComp.Body.SetAngularVelocity(0)
	}
}
