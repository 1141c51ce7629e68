package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/milk9111/stateblend/ecs"
	"github.com/milk9111/stateblend/ecs/component"
	"github.com/milk9111/stateblend/pose"
)

// headHeight is where look-at lines start, in pose space.
var headHeight = r3.Vec{Y: 1.6}

var goalColors = [pose.GoalCount]color.Color{
	pose.LeftHand:  colornames.Orange,
	pose.RightHand: colornames.Gold,
	pose.LeftFoot:  colornames.Skyblue,
	pose.RightFoot: colornames.Deepskyblue,
}

// handTrail is the viewer's IK solver: it keeps the last blended right hand
// positions so fades are visible on screen.
type handTrail struct {
	max    int
	points []pose.GoalPose
}

func newHandTrail(max int) *handTrail {
	return &handTrail{max: max}
}

func (h *handTrail) Solve(e ecs.Entity, p pose.Pose) {
	h.points = append(h.points, p.Goal(pose.RightHand))
	if over := len(h.points) - h.max; over > 0 {
		h.points = append(h.points[:0], h.points[over:]...)
	}
}

func (g *Game) drawScene(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	vector.FillRect(screen, 0, float32(floorY), baseWidth, baseHeight-float32(floorY), colornames.Darkslategray, false)
	vector.StrokeLine(screen, 0, float32(floorY), baseWidth, float32(floorY), 1, colornames.Lightgrey, true)

	t, ok := ecs.Get(g.world, g.hero, component.TransformComponent)
	if !ok {
		return
	}
	body, ok := ecs.Get(g.world, g.hero, component.PhysicsBodyComponent)
	if !ok {
		return
	}
	x := float32(t.X - body.Width/2)
	y := float32(t.Y - body.Height/2)
	fill := colornames.Slategray
	if !body.Grounded {
		fill = colornames.Lightslategray
	}
	vector.FillRect(screen, x, y, float32(body.Width), float32(body.Height), fill, false)
	vector.StrokeRect(screen, x, y, float32(body.Width), float32(body.Height), 1, colornames.White, false)

	out, ok := ecs.Get(g.world, g.hero, component.PoseOutputComponent)
	if !ok {
		return
	}
	feetY := t.Y + body.Height/2

	for i, gp := range g.trail.points {
		if gp.Weight <= 0 {
			continue
		}
		px, py := toScreen(t.X, feetY, gp.Position)
		alpha := uint8(40 + 160*i/max(len(g.trail.points), 1))
		vector.FillCircle(screen, px, py, 2, color.NRGBA{R: 0xff, G: 0xd7, A: alpha}, true)
	}

	for goal := pose.Goal(0); goal < pose.GoalCount; goal++ {
		gp := out.Pose.Goals[goal]
		if gp.Weight <= 0 {
			continue
		}
		px, py := toScreen(t.X, feetY, gp.Position)
		vector.StrokeCircle(screen, px, py, float32(3+6*gp.Weight), 2, goalColors[goal], true)
		if gp.Hint != (r3.Vec{}) {
			hx, hy := toScreen(t.X, feetY, gp.Hint)
			vector.StrokeLine(screen, px, py, hx, hy, 1, colornames.Dimgray, true)
		}
	}

	if la := out.Pose.LookAt; la.Weight > 0 {
		hx, hy := toScreen(t.X, feetY, headHeight)
		lx, ly := toScreen(t.X, feetY, la.Position)
		vector.StrokeLine(screen, hx, hy, lx, ly, float32(1+2*la.Weight), colornames.Lightgreen, true)
	}
}

func (g *Game) drawWeights(screen *ebiten.Image) {
	sm, ok := ecs.Get(g.world, g.hero, component.StateMachineComponent)
	if !ok {
		return
	}
	snap := sm.Machine.Snapshot()
	const (
		left   = 900
		top    = 20
		width  = 160
		height = 10
		row    = 18
	)
	for i, st := range snap.Running {
		y := float32(top + i*row)
		vector.FillRect(screen, left, y, width, height, colornames.Dimgray, false)
		c := colornames.Limegreen
		if st.Feedback {
			c = colornames.Tomato
		}
		vector.FillRect(screen, left, y, float32(width*st.Weight), height, c, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s (%s)", st.Name, st.Phase), left+width+8, int(y)-3)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := []string{
		g.status(),
		"A/D move  Shift sprint  Space jump  RMB aim  R reload  E wave  H hit  L look around",
	}
	for _, evt := range g.events.Recent() {
		verb := "-"
		if evt.Entered {
			verb = "+"
		}
		lines = append(lines, fmt.Sprintf("%6.2fs %s %s [%s]", evt.Time, verb, evt.State, evt.Channel))
	}
	if g.debug {
		if sm, ok := ecs.Get(g.world, g.hero, component.StateMachineComponent); ok {
			lines = append(lines, "", sm.Machine.DebugInfo())
		}
	}
	ebitenutil.DebugPrintAt(screen, strings.Join(lines, "\n"), 10, 10)
}
