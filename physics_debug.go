package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"

	"github.com/milk9111/stateblend/ecs"
)

// drawPhysics outlines every chipmunk shape of the world. Ground sensors
// light up while they touch the floor.
func drawPhysics(screen *ebiten.Image, pw *ecs.PhysicsWorld) {
	if pw == nil || pw.Space() == nil || screen == nil {
		return
	}
	cp.DrawSpace(pw.Space(), &shapeOutliner{screen: screen})
}

type shapeOutliner struct {
	screen *ebiten.Image
}

func (d *shapeOutliner) line(a, b cp.Vector, c color.Color) {
	vector.StrokeLine(d.screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, c, true)
}

func (d *shapeOutliner) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := toColor(outline)
	vector.StrokeCircle(d.screen, float32(pos.X), float32(pos.Y), float32(radius), 1, c, true)
	d.line(pos, pos.Add(cp.ForAngle(angle).Mult(radius)), c)
}

func (d *shapeOutliner) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, toColor(fill))
}

func (d *shapeOutliner) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	vector.StrokeLine(d.screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(math.Max(1, 2*radius)), toColor(outline), true)
}

func (d *shapeOutliner) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := toColor(outline)
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], c)
	}
}

func (d *shapeOutliner) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	vector.FillCircle(d.screen, float32(pos.X), float32(pos.Y), float32(size/2), toColor(fill), true)
}

func (d *shapeOutliner) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_COLLISION_POINTS
}

func (d *shapeOutliner) OutlineColor() cp.FColor {
	return fromColor(colornames.Lime)
}

func (d *shapeOutliner) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	switch {
	case shape == nil:
		return fromColor(colornames.White)
	case shape.Sensor():
		return fromColor(colornames.Gold)
	case shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC:
		return fromColor(colornames.Cornflowerblue)
	}
	return fromColor(colornames.Orchid)
}

func (d *shapeOutliner) ConstraintColor() cp.FColor {
	return fromColor(colornames.Silver)
}

func (d *shapeOutliner) CollisionPointColor() cp.FColor {
	return fromColor(colornames.Red)
}

func (d *shapeOutliner) Data() interface{} {
	return nil
}

func toColor(c cp.FColor) color.Color {
	return color.NRGBA{R: unit(c.R), G: unit(c.G), B: unit(c.B), A: unit(c.A)}
}

func fromColor(c color.RGBA) cp.FColor {
	return cp.FColor{R: float32(c.R) / 255, G: float32(c.G) / 255, B: float32(c.B) / 255, A: float32(c.A) / 255}
}

func unit(v float32) uint8 {
	return uint8(min(max(v, 0), 1) * 255)
}
