package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/stateblend/state"
)

// Timeline scripts a headless run: clip lengths for animation-bound states
// and the activation calls to make at given machine times.
type Timeline struct {
	Clips     map[string]float64 `yaml:"clips"`
	TimeScale *float64           `yaml:"time_scale"`
	Steps     []Step             `yaml:"steps"`
}

// Step is one scheduled call. Exactly one action field must be set.
type Step struct {
	At         float64  `yaml:"at"`
	Activate   string   `yaml:"activate"`
	Request    string   `yaml:"request"`
	Force      string   `yaml:"force"`
	Deactivate string   `yaml:"deactivate"`
	TimeScale  *float64 `yaml:"time_scale"`
}

func (s Step) validate() error {
	n := 0
	for _, name := range []string{s.Activate, s.Request, s.Force, s.Deactivate} {
		if name != "" {
			n++
		}
	}
	if s.TimeScale != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("step at %.3fs: needs exactly one action, got %d", s.At, n)
	}
	if s.At < 0 || math.IsNaN(s.At) {
		return fmt.Errorf("step at %.3fs: time must be non-negative", s.At)
	}
	return nil
}

func (s Step) String() string {
	switch {
	case s.Activate != "":
		return "activate " + s.Activate
	case s.Request != "":
		return "request " + s.Request
	case s.Force != "":
		return "force " + s.Force
	case s.Deactivate != "":
		return "deactivate " + s.Deactivate
	case s.TimeScale != nil:
		return fmt.Sprintf("time_scale %.3g", *s.TimeScale)
	}
	return "noop"
}

// apply runs the step and reports whether the machine accepted it.
func (s Step) apply(m *state.Machine) bool {
	switch {
	case s.Activate != "":
		return m.TryActivateState(state.Name(s.Activate))
	case s.Request != "":
		return m.RequestActivation(state.Name(s.Request))
	case s.Force != "":
		return m.ForceActivateState(state.Name(s.Force))
	case s.Deactivate != "":
		return m.TryDeactivateState(state.Name(s.Deactivate))
	case s.TimeScale != nil:
		m.SetTimeScale(*s.TimeScale)
		return true
	}
	return false
}

func ParseTimeline(data []byte) (*Timeline, error) {
	var tl Timeline
	if err := yaml.Unmarshal(data, &tl); err != nil {
		return nil, fmt.Errorf("statecheck: parse timeline: %w", err)
	}
	var errs []error
	for _, s := range tl.Steps {
		if err := s.validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	slices.SortStableFunc(tl.Steps, func(a, b Step) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})
	return &tl, nil
}

func LoadTimeline(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("statecheck: load timeline %s: %w", path, err)
	}
	return ParseTimeline(data)
}

// ClipLength lets the timeline stand in for an animation backend.
func (tl *Timeline) ClipLength(clip string) (float64, bool) {
	if tl == nil {
		return 0, false
	}
	l, ok := tl.Clips[clip]
	return l, ok && l > 0
}

// RunOptions controls a simulation.
type RunOptions struct {
	Duration float64
	Step     float64
	// Every prints a snapshot at this interval; zero prints only transitions.
	Every float64
}

// Run ticks m through the timeline, writing transitions, step results and
// periodic snapshots to out. Steps fire once the unscaled run time reaches
// their At.
func Run(m *state.Machine, tl *Timeline, opts RunOptions, out io.Writer) error {
	if opts.Step <= 0 {
		return fmt.Errorf("statecheck: step must be positive, got %g", opts.Step)
	}
	if opts.Duration < 0 {
		return fmt.Errorf("statecheck: duration must be non-negative, got %g", opts.Duration)
	}
	if tl == nil {
		tl = &Timeline{}
	}
	if tl.TimeScale != nil {
		m.SetTimeScale(*tl.TimeScale)
	}

	var elapsed float64
	m.OnStateEntered(func(h state.Handle, channel string) {
		fmt.Fprintf(out, "%8.3fs + %s [%s]\n", elapsed, h.Name(), channel)
	})
	m.OnStateExited(func(h state.Handle, channel string) {
		fmt.Fprintf(out, "%8.3fs - %s [%s]\n", elapsed, h.Name(), channel)
	})

	next := 0
	fire := func() {
		for next < len(tl.Steps) && tl.Steps[next].At <= elapsed+1e-9 {
			s := tl.Steps[next]
			result := "ok"
			if !s.apply(m) {
				result = "rejected"
			}
			fmt.Fprintf(out, "%8.3fs %s: %s\n", elapsed, s, result)
			next++
		}
	}

	ticks := int(math.Ceil(opts.Duration/opts.Step - 1e-9))
	nextPrint := 0.0
	fire()
	for i := 0; i < ticks; i++ {
		m.Update(opts.Step)
		elapsed = float64(i+1) * opts.Step
		fire()
		if opts.Every > 0 && elapsed+1e-9 >= nextPrint+opts.Every {
			nextPrint = elapsed
			fmt.Fprintf(out, "--- %.3fs\n%s", elapsed, m.Snapshot())
		}
	}
	fmt.Fprintf(out, "=== final\n%s", m.Snapshot())
	return nil
}
