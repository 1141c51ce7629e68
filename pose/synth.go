package pose

import (
	"cmp"
	"slices"

	"github.com/milk9111/stateblend/common"
)

// Contribution is one weighted state's input to synthesis.
type Contribution struct {
	Priority float64
	// Weight is the state's fade weight already scaled by its channel weight.
	Weight float64
	// Order breaks priority ties; lower goes first.
	Order   int
	Targets *Targets
}

// Synthesizer combines contributions into a Pose. It reuses an internal
// buffer, so one Synthesizer must not be shared between goroutines.
type Synthesizer struct {
	sorted []Contribution
}

// Synthesize blends every contribution into one pose. Goals nobody
// contributes to keep weight 0. Contributions are not modified.
func (s *Synthesizer) Synthesize(contribs []Contribution) Pose {
	out := Neutral()
	if s == nil {
		return out
	}

	s.sorted = s.sorted[:0]
	for _, c := range contribs {
		if c.Targets.Empty() || common.Clamp01(c.Weight) <= 0 {
			continue
		}
		s.sorted = append(s.sorted, c)
	}
	if len(s.sorted) == 0 {
		return out
	}
	slices.SortStableFunc(s.sorted, func(a, b Contribution) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Order, b.Order)
	})

	for g := Goal(0); g < GoalCount; g++ {
		s.blendGoal(&out.Goals[g], g)
	}
	s.blendLookAt(&out.LookAt)
	return out
}

// blendGoal accumulates in priority order. Each contributor takes at most
// what is left of the unit budget, so once the sum would pass 1 the
// higher-priority contributors dominate.
func (s *Synthesizer) blendGoal(out *GoalPose, g Goal) {
	total := 0.0
	for i := range s.sorted {
		c := &s.sorted[i]
		gp, ok := c.Targets.Goal(g)
		if !ok {
			continue
		}
		take := min(common.Clamp01(c.Weight)*common.Clamp01(gp.Weight), 1-total)
		if take <= 0 {
			if total >= 1 {
				break
			}
			continue
		}
		next := total + take
		alpha := take / next
		if total == 0 {
			out.Position = gp.Position
			out.Rotation = Normalize(gp.Rotation)
			out.Hint = gp.Hint
		} else {
			out.Position = LerpVec(out.Position, gp.Position, alpha)
			out.Rotation = Slerp(out.Rotation, gp.Rotation, alpha)
			out.Hint = LerpVec(out.Hint, gp.Hint, alpha)
		}
		total = next
	}
	out.Weight = common.Clamp01(total)
}

func (s *Synthesizer) blendLookAt(out *LookAt) {
	total := 0.0
	for i := range s.sorted {
		c := &s.sorted[i]
		l, ok := c.Targets.LookAt()
		if !ok {
			continue
		}
		take := min(common.Clamp01(c.Weight)*common.Clamp01(l.Weight), 1-total)
		if take <= 0 {
			if total >= 1 {
				break
			}
			continue
		}
		next := total + take
		alpha := take / next
		if total == 0 {
			out.Position = l.Position
			out.BodyWeight = common.Clamp01(l.BodyWeight)
			out.HeadWeight = common.Clamp01(l.HeadWeight)
			out.EyesWeight = common.Clamp01(l.EyesWeight)
			out.ClampWeight = common.Clamp01(l.ClampWeight)
		} else {
			out.Position = LerpVec(out.Position, l.Position, alpha)
			out.BodyWeight = common.Lerp(out.BodyWeight, common.Clamp01(l.BodyWeight), alpha)
			out.HeadWeight = common.Lerp(out.HeadWeight, common.Clamp01(l.HeadWeight), alpha)
			out.EyesWeight = common.Lerp(out.EyesWeight, common.Clamp01(l.EyesWeight), alpha)
			out.ClampWeight = common.Lerp(out.ClampWeight, common.Clamp01(l.ClampWeight), alpha)
		}
		total = next
	}
	out.Weight = common.Clamp01(total)
}
