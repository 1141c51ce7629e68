package component

import "github.com/milk9111/stateblend/pose"

// PoseOutput is the synthesized pose of the last tick.
type PoseOutput struct {
	Pose pose.Pose
	// Solved counts the times an IK solver consumed this pose.
	Solved int
}

var PoseOutputComponent = NewComponent[PoseOutput]()
