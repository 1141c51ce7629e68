package state

// entry is one registration. Its key is its index in Registry.entries.
type entry struct {
	key     int
	name    string
	def     Definition
	channel *Channel
	// inst is the live instance, or a parked one in phase Done.
	inst    *Instance
	retired bool
}

// Registry maps names and dense integer keys to registrations. Keys are
// handed out monotonically and never reused, so the hot update loop can index
// a slice instead of hashing strings.
type Registry struct {
	byName  map[string]*entry
	entries []*entry
}

func newRegistry() *Registry {
	return &Registry{byName: make(map[string]*entry)}
}

func (r *Registry) lookupName(name string) *entry {
	if r == nil {
		return nil
	}
	return r.byName[name]
}

func (r *Registry) lookupID(id int) *entry {
	if r == nil || id < 0 || id >= len(r.entries) {
		return nil
	}
	e := r.entries[id]
	if e == nil || e.retired {
		return nil
	}
	return e
}

func (r *Registry) lookup(k Key) *entry {
	switch k.kind {
	case KeyName:
		return r.lookupName(k.name)
	case KeyID:
		return r.lookupID(k.id)
	default:
		return nil
	}
}

func (r *Registry) add(name string, def Definition, ch *Channel) *entry {
	e := &entry{key: len(r.entries), name: name, def: def, channel: ch}
	r.entries = append(r.entries, e)
	r.byName[name] = e
	return e
}

func (r *Registry) retire(e *entry) {
	delete(r.byName, e.name)
	e.retired = true
}

// Len is the number of live registrations.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byName)
}

// Handle is a lightweight reference to a registered state. The zero Handle is
// the null handle.
type Handle struct {
	e *entry
}

func (h Handle) Valid() bool {
	return h.e != nil && !h.e.retired
}

func (h Handle) Name() string {
	if h.e == nil {
		return ""
	}
	return h.e.name
}

// Key is the dense integer key, or -1 for the null handle.
func (h Handle) Key() int {
	if h.e == nil {
		return -1
	}
	return h.e.key
}

func (h Handle) Channel() string {
	if h.e == nil {
		return ""
	}
	return h.e.channel.Name()
}

// Definition returns a copy of the registered definition.
func (h Handle) Definition() Definition {
	if h.e == nil {
		return Definition{}
	}
	return h.e.def
}

// Instance returns the current activation, or nil. Parked instances are
// returned too; check Phase.
func (h Handle) Instance() *Instance {
	if h.e == nil {
		return nil
	}
	return h.e.inst
}

// Running reports whether the state is on its channel, including while it
// fades out.
func (h Handle) Running() bool {
	return h.Valid() && h.e.inst.Live()
}

func (h Handle) Weight() float64 {
	if h.e == nil {
		return 0
	}
	return h.e.inst.Weight()
}

func (h Handle) Phase() Phase {
	if h.e == nil {
		return Done
	}
	return h.e.inst.Phase()
}
