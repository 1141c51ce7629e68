package component

import "gonum.org/v1/gonum/spatial/r3"

// Input stores per-frame intent for a character. Pressed fields are edges and
// are cleared by the controller after use.
type Input struct {
	MoveX         float64
	Sprint        bool
	Aim           bool
	AimTarget     r3.Vec
	JumpPressed   bool
	ReloadPressed bool
	WavePressed   bool
	HitPressed    bool
	LookAround    bool
}

var InputComponent = NewComponent[Input]()
