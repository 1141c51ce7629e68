package script

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/milk9111/stateblend/pose"
	"github.com/milk9111/stateblend/state"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

const drawScript = `
onEnter := func(engine, state) {
	state.entered = 1
	engine.set("mood", "alert")
	engine.set("target", [1, 2, 3])
	engine.set_ik_goal("right_hand", 1.0, 1, 2, 3)
	engine.activate("Brace")
}

update := func(engine, state) {
	if engine.elapsed() >= 0.2 {
		engine.deactivate()
	}
}

onExit := func(engine, state) {
	state.exited = true
}
`

func newMachine(t *testing.T) *state.Machine {
	t.Helper()
	m := state.NewMachine(state.WithLogger(quietLogger()))
	m.Initialize(state.Binding{Owner: "script-test"})
	return m
}

func TestCompileDetectsHooks(t *testing.T) {
	cases := []struct {
		name                string
		src                 string
		enter, update, exit bool
	}{
		{"all", drawScript, true, true, true},
		{"enter_only", `onEnter := func(engine, state) {}`, true, false, false},
		{"none", `x := 1`, false, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rt, err := Compile(c.name, []byte(c.src), quietLogger())
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			h := rt.Hooks()
			if (h.OnEnter != nil) != c.enter || (h.OnUpdate != nil) != c.update || (h.OnExit != nil) != c.exit {
				t.Fatalf("hooks enter=%v update=%v exit=%v", h.OnEnter != nil, h.OnUpdate != nil, h.OnExit != nil)
			}
		})
	}
}

func TestCompileError(t *testing.T) {
	if _, err := Compile("broken", []byte(`onEnter := func(`), quietLogger()); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestScriptDrivesMachine(t *testing.T) {
	rt, err := Compile("draw", []byte(drawScript), quietLogger())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	m := newMachine(t)
	m.RegisterState("Draw", state.Definition{Hooks: rt.Hooks()}, "upper")
	m.RegisterState("Brace", state.Definition{}, "legs")

	if !m.TryActivateState(state.Name("Draw")) {
		t.Fatalf("activate failed")
	}
	if brace, _ := m.GetByString("Brace"); !brace.Running() {
		t.Fatalf("script activate did not run")
	}
	if v, ok := m.Blackboard().Get("mood"); !ok || v.String() != "alert" {
		t.Fatalf("mood = %v %v", v, ok)
	}
	if v, ok := m.Blackboard().Get("target"); !ok || v.Kind() != state.KindVec3 {
		t.Fatalf("target = %v %v", v, ok)
	}

	m.Update(0.1)
	hand := m.CurrentPose().Goal(pose.RightHand)
	if hand.Weight != 1 || hand.Position.X != 1 || hand.Position.Y != 2 || hand.Position.Z != 3 {
		t.Fatalf("hand = %+v", hand)
	}

	m.Update(0.1)
	if draw, _ := m.GetByString("Draw"); draw.Running() {
		t.Fatalf("update hook should have deactivated Draw")
	}
	st := rt.State()
	if st["entered"] != int64(1) || st["exited"] != true {
		t.Fatalf("script state = %v", st)
	}
}

func TestScriptReadsBlackboard(t *testing.T) {
	src := `
update := func(engine, state) {
	t := engine.get("aim")
	if t != undefined {
		engine.set_look_at(0.5, t[0], t[1], t[2])
	}
	if engine.flag("grounded") {
		state.grounded = true
	}
}
`
	rt, err := Compile("aim", []byte(src), quietLogger())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	m := newMachine(t)
	m.RegisterState("Aim", state.Definition{Hooks: rt.Hooks()}, "upper")
	m.TryActivateState(state.Name("Aim"))

	m.Update(0.016)
	if m.CurrentPose().LookAt.Weight != 0 {
		t.Fatalf("look-at set without a target")
	}

	m.Blackboard().AddFlag("grounded")
	m.Blackboard().Set("aim", state.Vec3Value(r3.Vec{X: 4, Y: 1}))
	m.Update(0.016)
	look := m.CurrentPose().LookAt
	if look.Weight != 0.5 || look.Position.X != 4 || look.Position.Y != 1 {
		t.Fatalf("look-at = %+v", look)
	}
	if rt.State()["grounded"] != true {
		t.Fatalf("flag not visible to script")
	}
}

func TestRuntimeErrorsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	rt, err := Compile("faulty", []byte(`update := func(engine, state) { engine.missing() }`), log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	m := newMachine(t)
	m.RegisterState("Faulty", state.Definition{Hooks: rt.Hooks()}, "c")
	m.TryActivateState(state.Name("Faulty"))
	m.Update(0.1)
	if !strings.Contains(buf.String(), "faulty update") {
		t.Fatalf("log = %q", buf.String())
	}
	if h, _ := m.GetByString("Faulty"); !h.Running() {
		t.Fatalf("script error must not stop the state")
	}
}

func TestCloneHasOwnState(t *testing.T) {
	rt, err := Compile("count", []byte(`onEnter := func(engine, state) { state.n = is_undefined(state.n) ? 1 : state.n + 1 }`), quietLogger())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	clone := rt.Clone()

	m := newMachine(t)
	m.RegisterState("A", state.Definition{Hooks: rt.Hooks()}, "a")
	m.RegisterState("B", state.Definition{Hooks: clone.Hooks()}, "b")
	m.TryActivateState(state.Name("A"))
	m.TryDeactivateState(state.Name("A"))
	m.TryActivateState(state.Name("A"))
	m.TryActivateState(state.Name("B"))

	if rt.State()["n"] != int64(2) || clone.State()["n"] != int64(1) {
		t.Fatalf("original %v clone %v", rt.State(), clone.State())
	}
}
