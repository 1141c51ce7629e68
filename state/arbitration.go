package state

import "fmt"

// Verdict is the outcome of arbitrating one activation request.
type Verdict uint8

const (
	Reject Verdict = iota
	Accept
	Preempt
	AlreadyActive
	Feedback
)

func (v Verdict) String() string {
	switch v {
	case Reject:
		return "reject"
	case Accept:
		return "accept"
	case Preempt:
		return "preempt"
	case AlreadyActive:
		return "already_active"
	case Feedback:
		return "feedback"
	default:
		return "unknown"
	}
}

// Decision explains a verdict. Preempts is the owner that would fade out.
type Decision struct {
	Verdict  Verdict
	Reason   string
	Preempts Handle
}

// Allowed reports whether executing the decision changes or keeps the state active.
func (d Decision) Allowed() bool {
	return d.Verdict != Reject
}

// outranks reports whether a challenger takes a channel from an incumbent:
// higher priority wins, then strictly lower cost. A full tie keeps the
// incumbent so equal states cannot flap.
func outranks(challenger, incumbent *Definition) bool {
	if challenger.Priority != incumbent.Priority {
		return challenger.Priority > incumbent.Priority
	}
	return challenger.Cost.Total() < incumbent.Cost.Total()
}

// decide arbitrates without mutating anything.
func decide(e *entry) Decision {
	ch := e.channel
	if !ch.enabled {
		return Decision{Verdict: Reject, Reason: fmt.Sprintf("channel %q disabled", ch.name)}
	}
	inst := e.inst
	active := inst.Live() && inst.phase != FadingOut

	if e.def.Feedback {
		if active {
			return Decision{Verdict: AlreadyActive}
		}
		return Decision{Verdict: Feedback}
	}

	owner := ch.owner
	switch {
	case owner == nil:
		return Decision{Verdict: Accept}
	case owner == inst:
		return Decision{Verdict: AlreadyActive}
	case outranks(&e.def, owner.definition()):
		return Decision{Verdict: Preempt, Preempts: Handle{e: owner.entry}}
	default:
		return Decision{
			Verdict: Reject,
			Reason: fmt.Sprintf("%q (priority %g, cost %g) holds channel %q",
				owner.entry.name, owner.definition().Priority, owner.definition().Cost.Total(), ch.name),
		}
	}
}
