package component

// Transform is the entity position in world pixels, y pointing down.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
