// Package pose holds the IK output consumed by an external solver and the
// synthesizer that blends per-state limb and look-at goals into it.
package pose

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/milk9111/stateblend/common"
)

// Goal identifies one of the four limb effectors.
type Goal int

const (
	LeftHand Goal = iota
	RightHand
	LeftFoot
	RightFoot

	GoalCount
)

var goalNames = [GoalCount]string{"left_hand", "right_hand", "left_foot", "right_foot"}

func (g Goal) String() string {
	if g < 0 || g >= GoalCount {
		return "unknown"
	}
	return goalNames[g]
}

// ParseGoal maps a snake_case goal name to its Goal.
func ParseGoal(s string) (Goal, bool) {
	for i, name := range goalNames {
		if name == s {
			return Goal(i), true
		}
	}
	return 0, false
}

// Identity is the no-rotation quaternion.
var Identity = quat.Number{Real: 1}

// GoalPose is the target for one limb.
type GoalPose struct {
	Weight   float64
	Position r3.Vec
	Rotation quat.Number
	Hint     r3.Vec
}

func (g *GoalPose) Reset() {
	*g = GoalPose{Rotation: Identity}
}

// LookAt is the head/eye aim target.
type LookAt struct {
	Weight      float64
	Position    r3.Vec
	BodyWeight  float64
	HeadWeight  float64
	EyesWeight  float64
	ClampWeight float64
}

func (l *LookAt) Reset() {
	*l = LookAt{
		BodyWeight:  0.5,
		HeadWeight:  1,
		EyesWeight:  1,
		ClampWeight: 0.5,
	}
}

// Pose is the per-tick snapshot handed to the IK solver.
type Pose struct {
	Goals  [GoalCount]GoalPose
	LookAt LookAt
}

// Neutral returns a pose that overrides nothing.
func Neutral() Pose {
	var p Pose
	p.Reset()
	return p
}

func (p *Pose) Reset() {
	for i := range p.Goals {
		p.Goals[i].Reset()
	}
	p.LookAt.Reset()
}

// Goal returns the pose for g, or a zero-weight goal for an invalid index.
func (p Pose) Goal(g Goal) GoalPose {
	if g < 0 || g >= GoalCount {
		return GoalPose{Rotation: Identity}
	}
	return p.Goals[g]
}

// HasAnyWeight reports whether the pose overrides anything. A false result
// means the solver should trust the animation backend.
func (p Pose) HasAnyWeight() bool {
	for _, g := range p.Goals {
		if g.Weight > common.WeightEpsilon {
			return true
		}
	}
	return p.LookAt.Weight > common.WeightEpsilon
}
