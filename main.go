package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	debug := flag.Bool("debug", false, "trace arbitration decisions and show the machine snapshot")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	prefab := flag.String("prefab", "characters/hero.yaml", "character prefab under prefabs/")
	states := flag.String("states", "", "state set under prefabs/, overriding the prefab's")
	watch := flag.Bool("watch", false, "reload the state set when it or a hook script changes on disk")
	timeScale := flag.Float64("scale", 1, "initial machine time scale")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("stateblend")

	game, err := NewGame(GameOptions{
		Prefab:    *prefab,
		StateSet:  *states,
		Debug:     *debug,
		Watch:     *watch,
		TimeScale: *timeScale,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
