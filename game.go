package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/stateblend/ecs"
	"github.com/milk9111/stateblend/ecs/component"
	"github.com/milk9111/stateblend/ecs/entity"
	"github.com/milk9111/stateblend/ecs/system"
	"github.com/milk9111/stateblend/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720
	floorY     = 620.0

	minTimeScale = 0.125
	maxTimeScale = 4
)

type GameOptions struct {
	Prefab    string
	StateSet  string
	Debug     bool
	Watch     bool
	TimeScale float64
}

type Game struct {
	frames int
	debug  bool
	paused bool

	world  *ecs.World
	hero   ecs.Entity
	events *system.EventLogSystem
	trail  *handTrail

	watcher  *prefabs.Watcher
	reloader *prefabs.Reloader
	logger   *log.Logger

	pauseUI *ebitenui.UI
}

func NewGame(opts GameOptions) (*Game, error) {
	logger := log.Default()
	g := &Game{
		debug:  opts.Debug,
		world:  ecs.NewWorld(),
		events: system.NewEventLogSystem(8, logger),
		trail:  newHandTrail(48),
		logger: logger,
	}
	g.world.SetPhysicsWorld(ecs.NewPhysicsWorld(baseWidth, floorY, ecs.DefaultGravity))

	hero, err := entity.BuildEntity(g.world, opts.Prefab, entity.BuildOptions{
		Logger:   logger,
		Debug:    opts.Debug,
		StateSet: opts.StateSet,
	})
	if err != nil {
		return nil, err
	}
	g.hero = hero
	if opts.TimeScale != 1 {
		g.setTimeScale(opts.TimeScale)
	}

	if opts.Watch {
		g.startWatching()
	}

	names := system.DefaultStateNames()
	g.world.AddSystem(NewInputSystem(floorY))
	if g.reloader != nil {
		g.world.AddSystem(system.NewReloadSystem(g.reloader, logger))
	}
	g.world.AddSystem(system.NewCharacterControllerSystem())
	g.world.AddSystem(system.NewPhysicsSystem())
	g.world.AddSystem(system.NewLocomotionSystem(names))
	g.world.AddSystem(system.NewIntentSystem(names))
	g.world.AddSystem(system.NewStateMachineSystem(logger))
	g.world.AddSystem(system.NewIKSystem(g.trail))
	g.world.AddSystem(g.events)

	g.pauseUI = NewPauseUI(g)
	return g, nil
}

// startWatching hooks the hero's state set up to the on-disk prefabs folder.
// Without one there is nothing to watch and the embedded copy is used.
func (g *Game) startWatching() {
	sm, ok := ecs.Get(g.world, g.hero, component.StateMachineComponent)
	if !ok || sm.StateSet == "" {
		return
	}
	if info, err := os.Stat("prefabs"); err != nil || !info.IsDir() {
		g.logger.Printf("watch: no prefabs directory in the working directory, hot reload disabled")
		return
	}
	w, err := prefabs.NewWatcher("prefabs")
	if err != nil {
		g.logger.Printf("watch: %v", err)
		return
	}
	g.watcher = w
	m := sm.Machine
	g.reloader = prefabs.NewReloader(w, sm.StateSet, func(set *prefabs.StateSetSpec) error {
		return set.Apply(m, prefabs.BuildOptions{Logger: g.logger})
	}, g.logger)
}

func (g *Game) reload() {
	if g.reloader == nil {
		sm, ok := ecs.Get(g.world, g.hero, component.StateMachineComponent)
		if !ok {
			return
		}
		g.reloader = prefabs.NewReloader(nil, sm.StateSet, func(set *prefabs.StateSetSpec) error {
			return set.Apply(sm.Machine, prefabs.BuildOptions{Logger: g.logger})
		}, g.logger)
	}
	if err := g.reloader.Reload(); err != nil {
		g.logger.Printf("reload: %v", err)
	}
}

func (g *Game) timeScale() float64 {
	if sm, ok := ecs.Get(g.world, g.hero, component.StateMachineComponent); ok {
		return sm.Machine.TimeScale()
	}
	return 1
}

func (g *Game) setTimeScale(scale float64) {
	scale = min(max(scale, minTimeScale), maxTimeScale)
	if sm, ok := ecs.Get(g.world, g.hero, component.StateMachineComponent); ok {
		sm.Machine.SetTimeScale(scale)
	}
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if sm, ok := ecs.Get(g.world, g.hero, component.StateMachineComponent); ok {
		sm.Machine.Dispose()
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		g.setTimeScale(g.timeScale() / 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		g.setTimeScale(g.timeScale() * 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.reload()
	}

	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.frames++
	g.world.Update(1.0 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawScene(screen)
	if g.debug {
		drawPhysics(screen, g.world.PhysicsWorld())
	}
	g.drawWeights(screen)
	g.drawHUD(screen)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) status() string {
	return fmt.Sprintf("FPS: %.1f  time scale: %.3g  [ ] scale  F1 debug  F5 reload  Esc pause", ebiten.ActualFPS(), g.timeScale())
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
