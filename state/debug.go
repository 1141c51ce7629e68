package state

import (
	"fmt"
	"strings"

	"github.com/milk9111/stateblend/pose"
)

type StateSnapshot struct {
	Name      string
	Key       int
	Channel   string
	Phase     Phase
	Weight    float64
	EnterTime float64
	Feedback  bool
	Priority  float64
}

type ChannelSnapshot struct {
	Name     string
	Owner    string
	Feedback []string
	Pending  []string
	Queued   []string
	Weight   float64
	Enabled  bool
	Fallback string
}

// Snapshot is a deep copy of the machine that is safe to hand to another
// goroutine.
type Snapshot struct {
	Time      float64
	TimeScale float64
	Running   []StateSnapshot
	Channels  []ChannelSnapshot
	Pose      pose.Pose
}

func instanceNames(list []*Instance) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i, inst := range list {
		out[i] = inst.Name()
	}
	return out
}

func (m *Machine) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{Pose: pose.Neutral()}
	}
	s := Snapshot{Time: m.now, TimeScale: m.timeScale, Pose: m.pose}
	for _, h := range m.ListRunningStates() {
		inst := h.e.inst
		s.Running = append(s.Running, StateSnapshot{
			Name:      h.Name(),
			Key:       h.Key(),
			Channel:   h.Channel(),
			Phase:     inst.phase,
			Weight:    inst.weight,
			EnterTime: inst.enterTime,
			Feedback:  inst.feedback,
			Priority:  h.e.def.Priority,
		})
	}
	for _, ch := range m.order {
		s.Channels = append(s.Channels, ChannelSnapshot{
			Name:     ch.name,
			Owner:    ch.owner.Name(),
			Feedback: instanceNames(ch.feedback),
			Pending:  instanceNames(ch.pending),
			Queued:   ch.Queued(),
			Weight:   ch.weight,
			Enabled:  ch.enabled,
			Fallback: ch.fallback,
		})
	}
	return s
}

// String renders the snapshot as the multi-line text used by the viewer and
// statecheck.
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%.3f scale=%.2f\n", s.Time, s.TimeScale)
	for _, ch := range s.Channels {
		owner := ch.Owner
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(&b, "[%s] owner=%s", ch.Name, owner)
		if len(ch.Feedback) > 0 {
			fmt.Fprintf(&b, " feedback=%s", strings.Join(ch.Feedback, ","))
		}
		if len(ch.Pending) > 0 {
			fmt.Fprintf(&b, " pending=%s", strings.Join(ch.Pending, ","))
		}
		if len(ch.Queued) > 0 {
			fmt.Fprintf(&b, " queued=%s", strings.Join(ch.Queued, ","))
		}
		if !ch.Enabled {
			b.WriteString(" disabled")
		}
		b.WriteByte('\n')
	}
	for _, st := range s.Running {
		fmt.Fprintf(&b, "  %-16s %-10s w=%.3f\n", st.Name, st.Phase, st.Weight)
	}
	for g := pose.Goal(0); g < pose.GoalCount; g++ {
		gp := s.Pose.Goals[g]
		if gp.Weight <= 0 {
			continue
		}
		fmt.Fprintf(&b, "  %-10s w=%.3f pos=(%.2f, %.2f, %.2f)\n", g, gp.Weight, gp.Position.X, gp.Position.Y, gp.Position.Z)
	}
	if s.Pose.LookAt.Weight > 0 {
		l := s.Pose.LookAt
		fmt.Fprintf(&b, "  look_at    w=%.3f pos=(%.2f, %.2f, %.2f)\n", l.Weight, l.Position.X, l.Position.Y, l.Position.Z)
	}
	return b.String()
}

// DebugInfo is Snapshot().String().
func (m *Machine) DebugInfo() string {
	return m.Snapshot().String()
}
