package main

import (
	"fmt"
	"image/color"

	"golang.org/x/image/font/basicfont"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
)

// NewPauseUI builds the centered control panel shown while paused.
func NewPauseUI(g *Game) *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnPressedImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	centered := widget.RowLayoutData{Position: widget.RowLayoutPositionCenter}

	title := widget.NewText(
		widget.TextOpts.Text("Paused", &face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(centered)),
	)

	scaleLabel := widget.NewText(
		widget.TextOpts.Text(scaleText(g.timeScale()), &face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(centered)),
	)
	debugLabel := widget.NewText(
		widget.TextOpts.Text(debugText(g.debug), &face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(centered)),
	)

	button := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnPressedImg}),
			widget.ButtonOpts.Text(label, &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(centered)),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				onClick()
			}),
		)
	}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(baseWidth/3, baseHeight/2),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(title)
	panel.AddChild(button("Resume", func() {
		g.paused = false
	}))
	panel.AddChild(scaleLabel)
	panel.AddChild(button("Slower", func() {
		g.setTimeScale(g.timeScale() / 2)
		scaleLabel.Label = scaleText(g.timeScale())
	}))
	panel.AddChild(button("Faster", func() {
		g.setTimeScale(g.timeScale() * 2)
		scaleLabel.Label = scaleText(g.timeScale())
	}))
	panel.AddChild(button("Reload states", func() {
		g.reload()
	}))
	panel.AddChild(debugLabel)
	panel.AddChild(button("Toggle debug", func() {
		g.debug = !g.debug
		debugLabel.Label = debugText(g.debug)
	}))

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}
}

func scaleText(scale float64) string {
	return fmt.Sprintf("time scale %.3g", scale)
}

func debugText(on bool) string {
	if on {
		return "debug on"
	}
	return "debug off"
}
