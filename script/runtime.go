package script

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/stateblend/state"
)

// Script hooks are plain top-level functions:
//
//	onEnter := func(engine, state) { ... }
//	update := func(engine, state) { ... }
//	onExit := func(engine, state) { ... }
//
// Any of them may be omitted. `state` is a map that persists for the life of
// the runtime.
const (
	hookEnter  = "onEnter"
	hookUpdate = "update"
	hookExit   = "onExit"
)

// Runtime is one compiled hook script bound to one registration. It is not
// safe for concurrent use; Clone it for each machine.
type Runtime struct {
	name     string
	compiled *tengo.Compiled
	data     *tengo.Map
	logger   *log.Logger

	hasEnter  bool
	hasUpdate bool
	hasExit   bool
}

func dispatchSource(enter, update, exit bool) string {
	var b strings.Builder
	b.WriteString("\n")
	write := func(phase, fn string, ok bool) {
		if !ok {
			return
		}
		fmt.Fprintf(&b, "if __phase == %q {\n\t%s(__engine, __state)\n}\n", phase, fn)
	}
	write("enter", hookEnter, enter)
	write("update", hookUpdate, update)
	write("exit", hookExit, exit)
	return b.String()
}

func newScript(src []byte) *tengo.Script {
	s := tengo.NewScript(src)
	_ = s.Add("__phase", "")
	_ = s.Add("__engine", map[string]any{})
	_ = s.Add("__state", map[string]any{})
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	return s
}

// Compile builds a runtime from hook source. name is only used in errors and
// log lines.
func Compile(name string, src []byte, logger *log.Logger) (*Runtime, error) {
	if logger == nil {
		logger = log.Default()
	}

	// Probe which hooks the script defines so the dispatcher only references
	// those; tengo rejects unresolved names at compile time.
	probe, err := newScript(src).Run()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	rt := &Runtime{
		name:      name,
		logger:    logger,
		hasEnter:  probe.IsDefined(hookEnter),
		hasUpdate: probe.IsDefined(hookUpdate),
		hasExit:   probe.IsDefined(hookExit),
	}

	full := append(append([]byte{}, src...), dispatchSource(rt.hasEnter, rt.hasUpdate, rt.hasExit)...)
	compiled, err := newScript(full).Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	rt.compiled = compiled
	rt.data = &tengo.Map{Value: map[string]tengo.Object{}}
	return rt, nil
}

func (rt *Runtime) Name() string {
	if rt == nil {
		return ""
	}
	return rt.name
}

// Clone returns an independent runtime with fresh script state.
func (rt *Runtime) Clone() *Runtime {
	if rt == nil {
		return nil
	}
	c := *rt
	c.compiled = rt.compiled.Clone()
	c.data = &tengo.Map{Value: map[string]tengo.Object{}}
	return &c
}

// State exposes the persistent script map, mostly for tests.
func (rt *Runtime) State() map[string]any {
	if rt == nil {
		return nil
	}
	out := make(map[string]any, len(rt.data.Value))
	for k, v := range rt.data.Value {
		out[k] = tengo.ToInterface(v)
	}
	return out
}

// Hooks adapts the runtime to state hooks. Phases the script does not define
// stay nil.
func (rt *Runtime) Hooks() state.Hooks {
	var h state.Hooks
	if rt == nil {
		return h
	}
	if rt.hasEnter {
		h.OnEnter = func(ctx *state.HookContext) { rt.run("enter", ctx) }
	}
	if rt.hasUpdate {
		h.OnUpdate = func(ctx *state.HookContext) { rt.run("update", ctx) }
	}
	if rt.hasExit {
		h.OnExit = func(ctx *state.HookContext) { rt.run("exit", ctx) }
	}
	return h
}

func (rt *Runtime) run(phase string, ctx *state.HookContext) {
	if err := rt.runPhase(phase, buildEngine(rt, ctx)); err != nil {
		rt.logger.Printf("script: %s %s: %v", rt.name, phase, err)
	}
}

func (rt *Runtime) runPhase(phase string, engine *tengo.ImmutableMap) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.data); err != nil {
		return err
	}
	return rt.compiled.Run()
}
