package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/milk9111/stateblend/ecs"
	"github.com/milk9111/stateblend/ecs/component"
)

// pixelsPerMeter maps pose space, in meters from the feet, to the screen.
const pixelsPerMeter = 40.0

// InputSystem writes keyboard and mouse state into every Input component.
type InputSystem struct {
	floorY float64
}

func NewInputSystem(floorY float64) *InputSystem {
	return &InputSystem{floorY: floorY}
}

func (s *InputSystem) Update(w *ecs.World) {
	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, input *component.Input) {
		input.MoveX = 0
		if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
			input.MoveX -= 1
		}
		if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
			input.MoveX += 1
		}
		input.Sprint = ebiten.IsKeyPressed(ebiten.KeyShift)
		input.LookAround = ebiten.IsKeyPressed(ebiten.KeyL)

		// Edges stay set until the intent system consumes them.
		input.JumpPressed = input.JumpPressed || inpututil.IsKeyJustPressed(ebiten.KeySpace)
		input.ReloadPressed = input.ReloadPressed || inpututil.IsKeyJustPressed(ebiten.KeyR)
		input.WavePressed = input.WavePressed || inpututil.IsKeyJustPressed(ebiten.KeyE)
		input.HitPressed = input.HitPressed || inpututil.IsKeyJustPressed(ebiten.KeyH)

		input.Aim = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
		if input.Aim {
			mx, my := ebiten.CursorPosition()
			input.AimTarget = s.toPoseSpace(w, e, float64(mx), float64(my))
		}
	})
}

// toPoseSpace converts a screen point into pose space relative to the
// entity's feet: x right, y up, z toward the viewer.
func (s *InputSystem) toPoseSpace(w *ecs.World, e ecs.Entity, x, y float64) r3.Vec {
	originX, feetY := 0.0, s.floorY
	if t, ok := ecs.Get(w, e, component.TransformComponent); ok {
		originX = t.X
		feetY = t.Y
		if body, ok := ecs.Get(w, e, component.PhysicsBodyComponent); ok {
			feetY += body.Height / 2
		}
	}
	return r3.Vec{
		X: (x - originX) / pixelsPerMeter,
		Y: (feetY - y) / pixelsPerMeter,
		Z: 1,
	}
}

func toScreen(originX, feetY float64, p r3.Vec) (float32, float32) {
	return float32(originX + p.X*pixelsPerMeter), float32(feetY - p.Y*pixelsPerMeter)
}
