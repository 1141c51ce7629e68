package system

import (
	"log"

	"github.com/milk9111/stateblend/ecs"
)

// Poller is satisfied by prefabs.Reloader.
type Poller interface {
	Poll() (bool, error)
}

// ReloadSystem polls for state set changes on the world's goroutine, so
// machines are only ever modified between their own updates.
type ReloadSystem struct {
	poller Poller
	logger *log.Logger
}

func NewReloadSystem(p Poller, logger *log.Logger) *ReloadSystem {
	if logger == nil {
		logger = log.Default()
	}
	return &ReloadSystem{poller: p, logger: logger}
}

func (s *ReloadSystem) Update(w *ecs.World) {
	if s == nil || s.poller == nil || w == nil {
		return
	}
	reloaded, err := s.poller.Poll()
	if err != nil {
		s.logger.Printf("ecs: reload: %v", err)
	}
	if reloaded {
		w.Events().Push(ecs.Event{Type: ecs.EventReloaded, Data: err})
	}
}
