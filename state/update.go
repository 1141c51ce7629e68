package state

import (
	"math"
	"slices"

	"github.com/milk9111/stateblend/pose"
)

// Update advances the machine by dt seconds of unscaled time. The steps
// always run in this order:
//
//  1. expire timed and animation-bound states, retry queued requests
//  2. advance fades, run update hooks, apply hook commands
//  3. sweep finished instances, activate channel fallbacks
//  4. synthesize the pose
func (m *Machine) Update(dt float64) {
	if !m.alive("update") {
		return
	}
	if !m.initialized {
		m.misuse("update", ErrNotInitialized)
		return
	}
	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}
	scaled := dt * m.timeScale
	m.now += scaled

	m.updating = true
	m.expire()
	m.retryQueued()

	for _, inst := range m.running {
		inst.advance(scaled, dt)
	}
	for _, inst := range slices.Clone(m.running) {
		if !inst.Live() {
			continue
		}
		if fn := inst.definition().Hooks.OnUpdate; fn != nil {
			fn(m.hookContext(inst, scaled))
		}
	}
	m.updating = false
	m.drain()

	m.updating = true
	m.sweep()
	m.activateFallbacks()
	m.updating = false
	m.drain()

	m.synthesize()
}

func (m *Machine) expire() {
	for _, inst := range slices.Clone(m.running) {
		if !inst.hasDeadline || (inst.phase != FadingIn && inst.phase != Steady) {
			continue
		}
		if m.now >= inst.deadline-fadeEpsilon {
			m.debugf("%q completed after %.3fs", inst.entry.name, m.now-inst.enterTime)
			m.beginExit(inst, exitCompleted, 0)
		}
	}
}

// retryQueued activates at most one queued request per channel, first come
// first served.
func (m *Machine) retryQueued() {
	for _, ch := range m.order {
		for _, e := range slices.Clone(ch.queue) {
			d := decide(e)
			if d.Verdict == Reject {
				continue
			}
			ch.dequeue(e)
			m.execute(e, d)
			break
		}
	}
}

// sweep removes instances that reached Done and parks or destroys them.
func (m *Machine) sweep() {
	kept := m.running[:0]
	for _, inst := range m.running {
		if inst.phase != Done {
			kept = append(kept, inst)
			continue
		}
		e := inst.entry
		e.channel.detach(inst)
		if !parkable(inst) && e.inst == inst {
			e.inst = nil
		}
	}
	clear(m.running[len(kept):])
	m.running = kept
}

// parkable decides whether a finished instance is kept for reuse.
func parkable(inst *Instance) bool {
	def := inst.definition()
	switch inst.exit {
	case exitExplicit:
		return def.CanBeTemporary
	case exitPreempted, exitCompleted:
		return !def.AutoRemoveWhenDone
	default:
		return false
	}
}

func (m *Machine) activateFallbacks() {
	for _, ch := range m.order {
		if ch.fallback == "" || ch.owner != nil || len(ch.queue) > 0 || !ch.enabled {
			continue
		}
		e := m.registry.lookupName(ch.fallback)
		if e == nil || e.channel != ch {
			m.debugf("channel %q: fallback %q is not registered on it", ch.name, ch.fallback)
			continue
		}
		m.execute(e, decide(e))
	}
}

func (m *Machine) synthesize() {
	m.contribs = m.contribs[:0]
	for _, inst := range m.running {
		if !inst.Live() || inst.weight <= 0 {
			continue
		}
		w := inst.weight * inst.entry.channel.weight
		if w <= 0 {
			continue
		}
		targets := inst.targets()
		if targets.Empty() {
			continue
		}
		order := inst.seq
		if inst.feedback {
			order += feedbackOrder
		}
		m.contribs = append(m.contribs, pose.Contribution{
			Priority: inst.definition().Priority,
			Weight:   w,
			Order:    order,
			Targets:  &targets,
		})
	}
	m.pose = m.synth.Synthesize(m.contribs)
}
