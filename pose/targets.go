package pose

import "gonum.org/v1/gonum/num/quat"

const lookAtBit = 1 << GoalCount

// Targets is the set of goals one state contributes. A state may contribute
// to none, some, or all of them. The zero value contributes nothing.
type Targets struct {
	goals  [GoalCount]GoalPose
	lookAt LookAt
	mask   uint8
}

func (t *Targets) SetGoal(g Goal, gp GoalPose) {
	if t == nil || g < 0 || g >= GoalCount {
		return
	}
	if gp.Rotation == (quat.Number{}) {
		gp.Rotation = Identity
	}
	t.goals[g] = gp
	t.mask |= 1 << g
}

func (t *Targets) ClearGoal(g Goal) {
	if t == nil || g < 0 || g >= GoalCount {
		return
	}
	t.goals[g] = GoalPose{}
	t.mask &^= 1 << g
}

func (t *Targets) Goal(g Goal) (GoalPose, bool) {
	if t == nil || g < 0 || g >= GoalCount || t.mask&(1<<g) == 0 {
		return GoalPose{}, false
	}
	return t.goals[g], true
}

func (t *Targets) SetLookAt(l LookAt) {
	if t == nil {
		return
	}
	t.lookAt = l
	t.mask |= lookAtBit
}

func (t *Targets) ClearLookAt() {
	if t == nil {
		return
	}
	t.lookAt = LookAt{}
	t.mask &^= lookAtBit
}

func (t *Targets) LookAt() (LookAt, bool) {
	if t == nil || t.mask&lookAtBit == 0 {
		return LookAt{}, false
	}
	return t.lookAt, true
}

// Empty reports whether no goal is set.
func (t *Targets) Empty() bool {
	return t == nil || t.mask == 0
}

// Overlay returns base with every goal set in over replacing the base goal.
func Overlay(base, over Targets) Targets {
	out := base
	for g := Goal(0); g < GoalCount; g++ {
		if gp, ok := over.Goal(g); ok {
			out.goals[g] = gp
			out.mask |= 1 << g
		}
	}
	if l, ok := over.LookAt(); ok {
		out.lookAt = l
		out.mask |= lookAtBit
	}
	return out
}
