package state

import "slices"

// ChannelConfig tunes a channel. Use DefaultChannelConfig as the base.
type ChannelConfig struct {
	Weight  float64
	Enabled bool
	// Fallback names the state activated whenever the channel is left
	// without an owner.
	Fallback string
}

func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{Weight: 1, Enabled: true}
}

// Channel is a named exclusivity slot. It has at most one owner; pre-empted
// owners stay in Pending while they fade out.
type Channel struct {
	name     string
	index    int
	weight   float64
	enabled  bool
	fallback string

	owner    *Instance
	feedback []*Instance
	pending  []*Instance
	queue    []*entry
}

func newChannel(name string, index int) *Channel {
	cfg := DefaultChannelConfig()
	return &Channel{name: name, index: index, weight: cfg.Weight, enabled: cfg.Enabled}
}

func (c *Channel) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

func (c *Channel) Owner() *Instance {
	if c == nil {
		return nil
	}
	return c.owner
}

// Feedback returns the secondary contributors riding on the channel.
func (c *Channel) Feedback() []*Instance {
	if c == nil {
		return nil
	}
	return slices.Clone(c.feedback)
}

// Pending returns the instances fading out of the channel, oldest first.
func (c *Channel) Pending() []*Instance {
	if c == nil {
		return nil
	}
	return slices.Clone(c.pending)
}

// Queued returns the names of requests waiting for the channel.
func (c *Channel) Queued() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.queue))
	for _, e := range c.queue {
		out = append(out, e.name)
	}
	return out
}

func (c *Channel) Weight() float64 {
	if c == nil {
		return 0
	}
	return c.weight
}

func (c *Channel) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Channel) Fallback() string {
	if c == nil {
		return ""
	}
	return c.fallback
}

// Idle reports whether nothing is on the channel, fading or not.
func (c *Channel) Idle() bool {
	return c == nil || (c.owner == nil && len(c.feedback) == 0 && len(c.pending) == 0)
}

func (c *Channel) apply(cfg ChannelConfig) {
	c.weight = max(cfg.Weight, 0)
	c.enabled = cfg.Enabled
	c.fallback = cfg.Fallback
}

// detach removes inst from every list on the channel.
func (c *Channel) detach(inst *Instance) {
	if c.owner == inst {
		c.owner = nil
	}
	c.feedback = removeInstance(c.feedback, inst)
	c.pending = removeInstance(c.pending, inst)
}

func (c *Channel) enqueue(e *entry) bool {
	if slices.Contains(c.queue, e) {
		return false
	}
	c.queue = append(c.queue, e)
	return true
}

func (c *Channel) dequeue(e *entry) {
	c.queue = slices.DeleteFunc(c.queue, func(q *entry) bool { return q == e })
}

func removeInstance(list []*Instance, inst *Instance) []*Instance {
	return slices.DeleteFunc(list, func(i *Instance) bool { return i == inst })
}
