package state

import (
	"fmt"
	"slices"
)

// ready gates activation calls. Activating before Initialize is misuse like
// updating before it: refused and reported once per machine.
func (m *Machine) ready(op string, k Key) bool {
	if !m.alive(op) {
		return false
	}
	if !m.initialized {
		m.misuse(fmt.Sprintf("%s %s", op, k), ErrNotInitialized)
		return false
	}
	return true
}

func (m *Machine) resolve(op string, k Key) *entry {
	e := m.registry.lookup(k)
	if e == nil {
		m.debugf("%s %s: %v", op, k, ErrUnknownState)
	}
	return e
}

// TryActivateState arbitrates k against its channel's owner and activates it
// when it wins. Activating the current owner is a successful no-op.
func (m *Machine) TryActivateState(k Key) bool {
	if !m.ready("activate", k) {
		return false
	}
	e := m.resolve("activate", k)
	if e == nil {
		return false
	}
	ok := m.execute(e, decide(e))
	m.flush()
	return ok
}

// RequestActivation behaves like TryActivateState, but a request that loses
// is queued on the channel and retried every tick until it wins or is
// deactivated. It reports whether the state is active now.
func (m *Machine) RequestActivation(k Key) bool {
	if !m.ready("request", k) {
		return false
	}
	e := m.resolve("request", k)
	if e == nil {
		return false
	}
	d := decide(e)
	if d.Verdict == Reject {
		if e.channel.enabled && e.channel.enqueue(e) {
			m.debugf("queued %q on %q: %s", e.name, e.channel.name, d.Reason)
		}
		return false
	}
	ok := m.execute(e, d)
	m.flush()
	return ok
}

// ForceActivateState skips priority and cost and fades out everything else
// on the channel. Disabled channels still refuse.
func (m *Machine) ForceActivateState(k Key) bool {
	if !m.ready("force", k) {
		return false
	}
	e := m.resolve("force", k)
	if e == nil {
		return false
	}
	ok := m.force(e)
	m.flush()
	return ok
}

// TestActivation is a dry run of TryActivateState.
func (m *Machine) TestActivation(k Key) Decision {
	if m == nil {
		return Decision{Verdict: Reject, Reason: "nil machine"}
	}
	e := m.registry.lookup(k)
	if e == nil {
		return Decision{Verdict: Reject, Reason: ErrUnknownState.Error()}
	}
	return decide(e)
}

// TryDeactivateState fades k out. It is idempotent: states that are already
// fading or inactive report true, and only unknown keys report false.
func (m *Machine) TryDeactivateState(k Key) bool {
	if !m.alive("deactivate") {
		return false
	}
	e := m.resolve("deactivate", k)
	if e == nil {
		return false
	}
	m.deactivate(e)
	m.flush()
	return true
}

// DeactivateChannel fades out every state on the channel and drops its queue.
func (m *Machine) DeactivateChannel(name string) bool {
	if !m.alive("deactivate channel") {
		return false
	}
	ch := m.channel(name, false)
	if ch == nil {
		return false
	}
	m.deactivateChannel(ch)
	m.flush()
	return true
}

func (m *Machine) deactivateChannel(ch *Channel) {
	ch.queue = nil
	if ch.owner != nil {
		m.beginExit(ch.owner, exitExplicit, 0)
	}
	for _, inst := range slices.Clone(ch.feedback) {
		m.beginExit(inst, exitExplicit, 0)
	}
}

func (m *Machine) execute(e *entry, d Decision) bool {
	switch d.Verdict {
	case Reject:
		m.debugf("reject %q: %s", e.name, d.Reason)
		return false
	case AlreadyActive:
		return true
	case Preempt:
		m.debugf("%q pre-empts %q on %q", e.name, d.Preempts.Name(), e.channel.name)
		m.beginExit(e.channel.owner, exitPreempted, e.def.FadeIn)
		m.claim(e)
	case Accept:
		m.claim(e)
	case Feedback:
		inst := m.start(e)
		e.channel.feedback = append(e.channel.feedback, inst)
		m.fireEnter(inst)
	}
	return true
}

func (m *Machine) force(e *entry) bool {
	ch := e.channel
	if !ch.enabled {
		m.debugf("force %q: channel %q disabled", e.name, ch.name)
		return false
	}
	if e.def.Feedback {
		return m.execute(e, decide(e))
	}
	for _, inst := range slices.Clone(ch.feedback) {
		m.beginExit(inst, exitPreempted, e.def.FadeIn)
	}
	if owner := ch.owner; owner != nil {
		if owner == e.inst {
			return true
		}
		m.beginExit(owner, exitPreempted, e.def.FadeIn)
	}
	m.claim(e)
	return true
}

func (m *Machine) claim(e *entry) {
	inst := m.start(e)
	e.channel.owner = inst
	m.fireEnter(inst)
}

// start creates or revives e's instance and begins its fade-in from the
// current weight.
func (m *Machine) start(e *entry) *Instance {
	inst := e.inst
	if inst == nil {
		inst = &Instance{entry: e}
		e.inst = inst
	}
	e.channel.detach(inst)
	e.channel.dequeue(e)
	if !slices.Contains(m.running, inst) {
		m.running = append(m.running, inst)
	}

	m.seq++
	inst.seq = m.seq
	inst.feedback = e.def.Feedback
	inst.enterTime = m.now
	if d, ok := m.lifetime(&e.def); ok {
		inst.deadline = m.now + d
		inst.hasDeadline = true
	} else {
		inst.hasDeadline = false
	}
	inst.beginFadeIn()
	return inst
}

// lifetime is how long a state runs before completing on its own.
// Animation-bound states fall back to TimedDuration when the clip is unknown.
func (m *Machine) lifetime(def *Definition) (float64, bool) {
	switch def.Duration {
	case Timed:
		return def.TimedDuration, true
	case BoundToAnimation:
		if m.anim != nil && def.Clip != "" {
			if l, ok := m.anim.ClipLength(def.Clip); ok && l > 0 {
				return l, true
			}
		}
		if def.TimedDuration > 0 {
			return def.TimedDuration, true
		}
		m.debugf("%q: clip %q has no length, running until deactivated", def.Name, def.Clip)
	}
	return 0, false
}

func (m *Machine) deactivate(e *entry) {
	e.channel.dequeue(e)
	inst := e.inst
	switch {
	case inst == nil:
	case inst.phase == FadingOut:
	case inst.phase == Done:
		// Parked instances are only kept for states that may be temporary.
		if !slices.Contains(m.running, inst) && !e.def.CanBeTemporary {
			e.inst = nil
		}
	default:
		m.beginExit(inst, exitExplicit, 0)
	}
}

// beginExit moves inst to its channel's pending list and starts its fade-out
// over at least window seconds.
func (m *Machine) beginExit(inst *Instance, reason exitReason, window float64) {
	ch := inst.entry.channel
	if ch.owner == inst {
		ch.owner = nil
	}
	ch.feedback = removeInstance(ch.feedback, inst)
	if !slices.Contains(ch.pending, inst) {
		ch.pending = append(ch.pending, inst)
	}
	inst.beginFadeOut(reason, window)
	m.fireExit(inst)
}

// removeNow drops e's instance immediately with weight 0.
func (m *Machine) removeNow(e *entry) {
	inst := e.inst
	if inst == nil {
		return
	}
	if inst.Live() && inst.phase != FadingOut {
		m.fireExit(inst)
	}
	e.channel.detach(inst)
	m.running = removeInstance(m.running, inst)
	inst.weight = 0
	inst.phase = Done
	e.inst = nil
}

func (m *Machine) hookContext(inst *Instance, delta float64) *HookContext {
	return &HookContext{Machine: m, State: Handle{e: inst.entry}, Instance: inst, Delta: delta}
}

func (m *Machine) fireEnter(inst *Instance) {
	m.debugf("enter %q on %q", inst.entry.name, inst.entry.channel.name)
	if fn := inst.definition().Hooks.OnEnter; fn != nil {
		fn(m.hookContext(inst, 0))
	}
	h := Handle{e: inst.entry}
	for _, l := range m.entered {
		l(h, inst.entry.channel.name)
	}
}

func (m *Machine) fireExit(inst *Instance) {
	m.debugf("exit %q from %q", inst.entry.name, inst.entry.channel.name)
	if fn := inst.definition().Hooks.OnExit; fn != nil {
		fn(m.hookContext(inst, 0))
	}
	h := Handle{e: inst.entry}
	for _, l := range m.exited {
		l(h, inst.entry.channel.name)
	}
}

// enqueue defers a hook-issued command until the current step finishes.
func (m *Machine) enqueue(c command) {
	if m == nil || m.disposed {
		return
	}
	m.commands = append(m.commands, c)
}

// flush drains deferred commands unless an Update is in progress; Update
// drains them itself at fixed points.
func (m *Machine) flush() {
	if m.updating {
		return
	}
	m.drain()
}

func (m *Machine) drain() {
	if m.draining {
		return
	}
	m.draining = true
	defer func() { m.draining = false }()

	for n := 0; len(m.commands) > 0; n++ {
		if n >= maxDeferredCommands {
			m.logf("dropping %d deferred commands, hooks keep re-triggering each other", len(m.commands))
			m.commands = m.commands[:0]
			return
		}
		c := m.commands[0]
		m.commands = m.commands[1:]
		e := m.registry.lookup(c.key)
		if e == nil {
			m.logf("deferred command for %s: %v", c.key, ErrUnknownState)
			continue
		}
		if c.activate {
			m.execute(e, decide(e))
		} else {
			m.deactivate(e)
		}
	}
}
