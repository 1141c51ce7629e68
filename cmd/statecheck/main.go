package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/milk9111/stateblend/prefabs"
	"github.com/milk9111/stateblend/state"
)

func main() {
	states := flag.String("states", "humanoid.yaml", "state set under prefabs/")
	timelinePath := flag.String("script", "", "timeline YAML of activation steps to simulate")
	duration := flag.Float64("duration", 2, "simulated seconds")
	dt := flag.Float64("dt", 1.0/60.0, "tick length in seconds")
	every := flag.Float64("every", 0.5, "snapshot interval in seconds, 0 for transitions only")
	validateOnly := flag.Bool("validate", false, "validate the state set and exit")
	list := flag.Bool("list", false, "list the embedded state sets and exit")
	debug := flag.Bool("debug", false, "trace arbitration decisions")
	flag.Parse()

	log.SetFlags(0)

	if *list {
		fmt.Println(strings.Join(prefabs.StateSets(), "\n"))
		return
	}

	set, err := prefabs.LoadStateSet(*states)
	if err != nil {
		log.Fatal(err)
	}
	opts := prefabs.BuildOptions{Logger: log.Default()}
	if err := set.Validate(opts); err != nil {
		fmt.Fprintf(os.Stderr, "%s: invalid:\n%v\n", *states, err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d channels, %d states ok\n", *states, len(set.Channels), len(set.States))
	if *validateOnly {
		return
	}

	var tl *Timeline
	if *timelinePath != "" {
		if tl, err = LoadTimeline(*timelinePath); err != nil {
			log.Fatal(err)
		}
	}

	m := state.NewMachine(state.WithLogger(log.Default()), state.WithDebug(*debug))
	if err := set.Apply(m, opts); err != nil {
		log.Fatal(err)
	}
	b := state.Binding{Owner: "statecheck", Logger: log.Default()}
	if tl != nil {
		b.Animation = tl
	}
	m.Initialize(b)
	defer m.Dispose()

	if err := Run(m, tl, RunOptions{Duration: *duration, Step: *dt, Every: *every}, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
