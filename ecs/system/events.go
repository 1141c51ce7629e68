package system

import (
	"log"

	"github.com/milk9111/stateblend/ecs"
)

// EventLogSystem keeps the most recent state transitions for display and
// optionally logs them. It reads the queue without draining it.
type EventLogSystem struct {
	logger *log.Logger
	max    int
	recent []ecs.StateEvent
}

// NewEventLogSystem keeps up to max events; a nil logger keeps them silently.
func NewEventLogSystem(max int, logger *log.Logger) *EventLogSystem {
	if max <= 0 {
		max = 8
	}
	return &EventLogSystem{logger: logger, max: max}
}

func (s *EventLogSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	for _, evt := range w.Events().Pending() {
		se, ok := evt.Data.(ecs.StateEvent)
		if !ok {
			continue
		}
		if s.logger != nil {
			verb := "exited"
			if se.Entered {
				verb = "entered"
			}
			s.logger.Printf("ecs: entity %s %s %q on %q at %.2fs", se.Entity, verb, se.State, se.Channel, se.Time)
		}
		s.recent = append(s.recent, se)
	}
	if over := len(s.recent) - s.max; over > 0 {
		s.recent = append(s.recent[:0], s.recent[over:]...)
	}
}

// Recent returns the retained events, oldest first.
func (s *EventLogSystem) Recent() []ecs.StateEvent {
	if s == nil {
		return nil
	}
	return append([]ecs.StateEvent(nil), s.recent...)
}
