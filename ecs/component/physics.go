package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// Body and Shape are filled in by the physics world.
type PhysicsBody struct {
	Body        *cp.Body
	Shape       *cp.Shape
	GroundShape *cp.Shape
	Width       float64
	Height      float64
	Mass        float64
	Friction    float64
	Grounded    bool
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
