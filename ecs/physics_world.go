package ecs

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/stateblend/ecs/component"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeDynamic
	collisionTypeGroundSensor
)

// DefaultGravity is in pixels per second squared, y pointing down.
const DefaultGravity = 1800.0

// PhysicsWorld owns the Chipmunk space: a floor, two walls, and one dynamic
// box per entity with a ground sensor under it.
type PhysicsWorld struct {
	space  *cp.Space
	width  float64
	floorY float64

	bodies   map[Entity]*component.PhysicsBody
	sensors  map[*cp.Shape]Entity
	grounded map[Entity]bool
}

// NewPhysicsWorld creates a space spanning [0, width] with a floor at floorY.
func NewPhysicsWorld(width, floorY, gravity float64) *PhysicsWorld {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: gravity})

	pw := &PhysicsWorld{
		space:    space,
		width:    width,
		floorY:   floorY,
		bodies:   make(map[Entity]*component.PhysicsBody),
		sensors:  make(map[*cp.Shape]Entity),
		grounded: make(map[Entity]bool),
	}
	pw.buildStaticShapes()
	pw.setupHandlers()
	return pw
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

func (pw *PhysicsWorld) FloorY() float64 {
	if pw == nil {
		return 0
	}
	return pw.floorY
}

func (pw *PhysicsWorld) Width() float64 {
	if pw == nil {
		return 0
	}
	return pw.width
}

// EnsureBody creates the Chipmunk body for e from body's configuration,
// centered on t. Rotation is locked.
func (pw *PhysicsWorld) EnsureBody(e Entity, t *component.Transform, body *component.PhysicsBody) {
	if pw == nil || pw.space == nil || t == nil || body == nil || body.Body != nil {
		return
	}
	w, h := body.Width, body.Height
	if w <= 0 {
		w = 24
	}
	if h <= 0 {
		h = 48
	}
	mass := body.Mass
	if mass <= 0 {
		mass = 1
	}
	friction := body.Friction
	if friction <= 0 {
		friction = 0.8
	}

	cpBody := cp.NewBody(mass, math.Inf(1))
	cpBody.SetPosition(cp.Vector{X: t.X, Y: t.Y})
	shape := cp.NewBox(cpBody, w, h, 0)
	shape.SetFriction(friction)
	shape.SetCollisionType(collisionTypeDynamic)

	bb := cp.BB{L: -w * 0.45, B: h / 2, R: w * 0.45, T: h/2 + 2}
	ground := cp.NewBox2(cpBody, bb, 0)
	ground.SetSensor(true)
	ground.SetCollisionType(collisionTypeGroundSensor)

	pw.space.AddBody(cpBody)
	pw.space.AddShape(shape)
	pw.space.AddShape(ground)

	body.Body = cpBody
	body.Shape = shape
	body.GroundShape = ground
	body.Width, body.Height, body.Mass, body.Friction = w, h, mass, friction
	pw.bodies[e] = body
	pw.sensors[ground] = e
}

// RemoveBody takes e's shapes and body out of the space.
func (pw *PhysicsWorld) RemoveBody(e Entity) {
	if pw == nil {
		return
	}
	body, ok := pw.bodies[e]
	if !ok {
		return
	}
	delete(pw.bodies, e)
	delete(pw.grounded, e)
	if body.GroundShape != nil {
		delete(pw.sensors, body.GroundShape)
		pw.space.RemoveShape(body.GroundShape)
	}
	if body.Shape != nil {
		pw.space.RemoveShape(body.Shape)
	}
	if body.Body != nil {
		pw.space.RemoveBody(body.Body)
	}
	body.Body, body.Shape, body.GroundShape = nil, nil, nil
}

// Step advances the simulation and refreshes grounded flags.
func (pw *PhysicsWorld) Step(dt float64) {
	if pw == nil || pw.space == nil || dt <= 0 {
		return
	}
	clear(pw.grounded)
	pw.space.Step(dt)
}

// Grounded reports whether e's ground sensor touched solid ground during the
// last Step.
func (pw *PhysicsWorld) Grounded(e Entity) bool {
	if pw == nil {
		return false
	}
	return pw.grounded[e]
}

func (pw *PhysicsWorld) buildStaticShapes() {
	if pw.width <= 0 || pw.floorY <= 0 {
		return
	}
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: pw.floorY}, b: cp.Vector{X: pw.width, Y: pw.floorY}},
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: pw.floorY}},
		{a: cp.Vector{X: pw.width, Y: 0}, b: cp.Vector{X: pw.width, Y: pw.floorY}},
	}
	for _, seg := range segments {
		shape := cp.NewSegment(pw.space.StaticBody, seg.a, seg.b, 1)
		shape.SetFriction(0.8)
		shape.SetCollisionType(collisionTypeSolid)
		pw.space.AddShape(shape)
	}
}

func (pw *PhysicsWorld) setupHandlers() {
	groundHandler := pw.space.NewCollisionHandler(collisionTypeGroundSensor, collisionTypeSolid)
	groundHandler.UserData = pw
	groundHandler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*PhysicsWorld)
		if !ok || world == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		if e, ok := world.sensors[shapeA]; ok {
			world.grounded[e] = true
		} else if e, ok := world.sensors[shapeB]; ok {
			world.grounded[e] = true
		}
		return true
	}
}
