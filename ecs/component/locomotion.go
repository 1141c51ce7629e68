package component

// Locomotion turns body speed into locomotion states.
type Locomotion struct {
	WalkSpeed   float64
	SprintSpeed float64
	JumpSpeed   float64

	// Speed is the horizontal speed observed last frame.
	Speed    float64
	Grounded bool
	Aiming   bool
	// Jumped is set by the controller on the frame a jump starts.
	Jumped bool
}

var LocomotionComponent = NewComponent[Locomotion]()
