package state

import (
	"fmt"
	"log"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/milk9111/stateblend/pose"
)

// AnimationSource is the clip backend. It only has to answer how long a clip
// is so BoundToAnimation states know when to finish.
type AnimationSource interface {
	ClipLength(clip string) (float64, bool)
}

// Binding is what the host hands the machine at Initialize.
type Binding struct {
	// Owner names the character in log lines.
	Owner     string
	Animation AnimationSource
	Logger    *log.Logger
}

// Listener observes lifecycle transitions.
type Listener func(h Handle, channel string)

type Option func(*Machine)

func WithLogger(l *log.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithDebug logs every arbitration decision.
func WithDebug(debug bool) Option {
	return func(m *Machine) { m.debug = debug }
}

func WithAnimationSource(src AnimationSource) Option {
	return func(m *Machine) { m.anim = src }
}

// WithStrictChannels rejects registrations on channels that were not
// created with ConfigureChannel first.
func WithStrictChannels(strict bool) Option {
	return func(m *Machine) { m.strictChannels = strict }
}

const (
	// maxDeferredCommands bounds the commands drained in one flush so hooks
	// that keep activating each other cannot spin forever.
	maxDeferredCommands = 64
	// feedbackOrder pushes feedback contributors behind owners of the same
	// priority during synthesis.
	feedbackOrder = 1 << 30
)

// command is an activation request issued from inside a hook.
type command struct {
	activate bool
	key      Key
}

// Machine owns one character's states and channels and produces its pose.
// It is not safe for concurrent use; readers on other goroutines should use
// Snapshot.
type Machine struct {
	registry *Registry
	channels map[string]*Channel
	order    []*Channel

	// running holds every instance on a channel, including ones that reached
	// Done this tick and have not been swept yet.
	running []*Instance
	seq     int

	now       float64
	timeScale float64

	synth    pose.Synthesizer
	contribs []pose.Contribution
	pose     pose.Pose

	blackboard Blackboard

	commands []command
	updating bool
	draining bool

	entered []Listener
	exited  []Listener

	logger         *log.Logger
	debug          bool
	anim           AnimationSource
	strictChannels bool
	owner          string

	initialized bool
	disposed    bool
	warned      bool
}

func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		registry:  newRegistry(),
		channels:  make(map[string]*Channel),
		timeScale: 1,
		pose:      pose.Neutral(),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *Machine) logf(format string, args ...any) {
	if m.owner != "" {
		m.logger.Printf("state[%s]: %s", m.owner, fmt.Sprintf(format, args...))
		return
	}
	m.logger.Printf("state: %s", fmt.Sprintf(format, args...))
}

func (m *Machine) debugf(format string, args ...any) {
	if m.debug {
		m.logf(format, args...)
	}
}

// misuse reports a programming error. Debug builds panic; release builds log
// once and let the caller no-op.
func (m *Machine) misuse(op string, err error) {
	if strictMisuse {
		panic(fmt.Errorf("%s: %w", op, err))
	}
	if m.warned {
		return
	}
	m.warned = true
	m.logf("%s ignored: %v", op, err)
}

func (m *Machine) alive(op string) bool {
	if m == nil {
		return false
	}
	if m.disposed {
		m.misuse(op, ErrDisposed)
		return false
	}
	return true
}

// Initialize binds the machine to its host. It must be called before Update.
func (m *Machine) Initialize(b Binding) {
	if !m.alive("initialize") {
		return
	}
	if b.Logger != nil {
		m.logger = b.Logger
	}
	if b.Animation != nil {
		m.anim = b.Animation
	}
	m.owner = b.Owner
	m.initialized = true
}

func (m *Machine) Initialized() bool {
	return m != nil && m.initialized && !m.disposed
}

// Dispose drops every instance without running exit hooks. Further use is
// misuse.
func (m *Machine) Dispose() {
	if m == nil || m.disposed {
		return
	}
	for _, inst := range m.running {
		inst.weight = 0
		inst.phase = Done
	}
	for _, e := range m.registry.entries {
		e.inst = nil
	}
	for _, ch := range m.order {
		ch.owner = nil
		ch.feedback = nil
		ch.pending = nil
		ch.queue = nil
	}
	m.running = nil
	m.commands = nil
	m.entered = nil
	m.exited = nil
	m.pose = pose.Neutral()
	m.disposed = true
}

// SetTimeScale scales the clock used by durations and time-following fades.
func (m *Machine) SetTimeScale(scale float64) {
	if m == nil {
		return
	}
	if math.IsNaN(scale) || scale < 0 {
		scale = 0
	}
	m.timeScale = scale
}

func (m *Machine) TimeScale() float64 {
	if m == nil {
		return 0
	}
	return m.timeScale
}

// Now is the scaled machine clock in seconds.
func (m *Machine) Now() float64 {
	if m == nil {
		return 0
	}
	return m.now
}

func (m *Machine) Blackboard() *Blackboard {
	if m == nil {
		return nil
	}
	return &m.blackboard
}

func (m *Machine) OnStateEntered(fn Listener) {
	if m == nil || fn == nil {
		return
	}
	m.entered = append(m.entered, fn)
}

func (m *Machine) OnStateExited(fn Listener) {
	if m == nil || fn == nil {
		return
	}
	m.exited = append(m.exited, fn)
}

func validChannelName(name string) bool {
	return name != "" && !strings.ContainsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
}

func (m *Machine) channel(name string, create bool) *Channel {
	if ch, ok := m.channels[name]; ok {
		return ch
	}
	if !create {
		return nil
	}
	ch := newChannel(name, len(m.order))
	m.channels[name] = ch
	m.order = append(m.order, ch)
	return ch
}

// ConfigureChannel creates the channel if needed and applies cfg.
func (m *Machine) ConfigureChannel(name string, cfg ChannelConfig) error {
	if !m.alive("configure channel") {
		return ErrDisposed
	}
	if !validChannelName(name) {
		return fmt.Errorf("%w: %q", ErrEmptyChannel, name)
	}
	ch := m.channel(name, true)
	ch.apply(cfg)
	if !ch.enabled {
		m.deactivateChannel(ch)
		m.flush()
	}
	return nil
}

// SetFallback changes only the fallback state of a channel.
func (m *Machine) SetFallback(channel, state string) error {
	if !m.alive("set fallback") {
		return ErrDisposed
	}
	ch := m.channel(channel, false)
	if ch == nil {
		return fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
	ch.fallback = state
	return nil
}

func (m *Machine) Channel(name string) *Channel {
	if m == nil {
		return nil
	}
	return m.channels[name]
}

// Channels returns the channels in creation order.
func (m *Machine) Channels() []*Channel {
	if m == nil {
		return nil
	}
	return slices.Clone(m.order)
}

// RegisterState adds def under name. A non-empty channel argument overrides
// def.Channel. It fails on malformed input and on duplicates unless the
// existing definition allows override, in which case the old definition's
// instances are removed at once and the new one takes over the same key.
func (m *Machine) RegisterState(name string, def Definition, channel string) bool {
	if !m.alive("register") {
		return false
	}
	def.Name = name
	if channel != "" {
		def.Channel = channel
	}
	if err := def.Validate(); err != nil {
		m.logf("register %q: %v", name, err)
		return false
	}
	if !validChannelName(def.Channel) {
		m.logf("register %q: malformed channel %q", name, def.Channel)
		return false
	}
	ch := m.channel(def.Channel, !m.strictChannels)
	if ch == nil {
		m.logf("register %q: %v %q", name, ErrUnknownChannel, def.Channel)
		return false
	}

	existing := m.registry.lookupName(name)
	if existing == nil {
		e := m.registry.add(name, def, ch)
		m.debugf("registered %q as #%d on %q", name, e.key, ch.name)
		return true
	}
	if !existing.def.AllowOverride {
		m.logf("register %q: %v", name, ErrDuplicate)
		return false
	}
	m.removeNow(existing)
	existing.channel.dequeue(existing)
	existing.def = def
	existing.channel = ch
	m.debugf("replaced %q (#%d) on %q", name, existing.key, ch.name)
	m.flush()
	return true
}

// UnregisterState removes a registration. Its key is never handed out again.
func (m *Machine) UnregisterState(k Key) bool {
	if !m.alive("unregister") {
		return false
	}
	e := m.registry.lookup(k)
	if e == nil {
		return false
	}
	m.removeNow(e)
	e.channel.dequeue(e)
	m.registry.retire(e)
	m.flush()
	return true
}

func (m *Machine) HasState(k Key) bool {
	return m != nil && m.registry.lookup(k) != nil
}

func (m *Machine) GetByString(name string) (Handle, bool) {
	if m == nil {
		return Handle{}, false
	}
	e := m.registry.lookupName(name)
	if e == nil {
		return Handle{}, false
	}
	return Handle{e: e}, true
}

func (m *Machine) GetByInt(key int) (Handle, bool) {
	if m == nil {
		return Handle{}, false
	}
	e := m.registry.lookupID(key)
	if e == nil {
		return Handle{}, false
	}
	return Handle{e: e}, true
}

// States returns every registered state in key order.
func (m *Machine) States() []Handle {
	if m == nil {
		return nil
	}
	out := make([]Handle, 0, m.registry.Len())
	for _, e := range m.registry.entries {
		if !e.retired {
			out = append(out, Handle{e: e})
		}
	}
	return out
}

// ListRunningStates returns the states on a channel, fading ones included,
// in activation order.
func (m *Machine) ListRunningStates() []Handle {
	if m == nil {
		return nil
	}
	live := make([]*Instance, 0, len(m.running))
	for _, inst := range m.running {
		if inst.Live() {
			live = append(live, inst)
		}
	}
	slices.SortFunc(live, func(a, b *Instance) int { return a.seq - b.seq })
	out := make([]Handle, len(live))
	for i, inst := range live {
		out[i] = Handle{e: inst.entry}
	}
	return out
}

// IsIdle reports whether no state is running.
func (m *Machine) IsIdle() bool {
	if m == nil {
		return true
	}
	for _, inst := range m.running {
		if inst.Live() {
			return false
		}
	}
	return true
}

// CurrentPose is the pose synthesized by the last Update.
func (m *Machine) CurrentPose() pose.Pose {
	if m == nil {
		return pose.Neutral()
	}
	return m.pose
}
