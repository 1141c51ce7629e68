package ecs

import (
	"fmt"

	"github.com/milk9111/stateblend/ecs/component"
)

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	if w == nil {
		return nil
	}
	if s, ok := w.stores[id]; ok {
		return s
	}
	if !create {
		return nil
	}
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]*SparseSet)
	}
	s := &SparseSet{}
	w.stores[id] = s
	return s
}

// AddComponent stores value for e under kind, replacing any previous value.
func (w *World) AddComponent(e Entity, kind component.Kind, value any) error {
	if kind == nil || kind.ID() == 0 {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !w.IsAlive(e) {
		return fmt.Errorf("%w: %s", component.ErrEntityNotAlive, e)
	}
	w.store(kind.ID(), true).Set(e, value)
	return nil
}

// RemoveComponent reports whether e had a value under kind.
func (w *World) RemoveComponent(e Entity, kind component.Kind) bool {
	if kind == nil {
		return false
	}
	return w.store(kind.ID(), false).Remove(e)
}

func (w *World) HasComponent(e Entity, kind component.Kind) bool {
	if kind == nil || !w.IsAlive(e) {
		return false
	}
	return w.store(kind.ID(), false).Has(e)
}

func (w *World) GetComponent(e Entity, kind component.Kind) (any, bool) {
	if kind == nil || !w.IsAlive(e) {
		return nil, false
	}
	s := w.store(kind.ID(), false)
	if !s.Has(e) {
		return nil, false
	}
	return s.Get(e), true
}

// Query returns live entities holding every kind, in the order of the
// smallest store.
func (w *World) Query(kinds ...component.Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(kinds))
	for _, k := range kinds {
		if k == nil {
			return nil
		}
		s := w.store(k.ID(), false)
		if s.Len() == 0 {
			return nil
		}
		sets = append(sets, s)
	}
	return IntersectEntities(sets...)
}

// First returns the first entity holding kind.
func (w *World) First(kind component.Kind) (Entity, bool) {
	ents := w.Query(kind)
	if len(ents) == 0 {
		return 0, false
	}
	return ents[0], true
}
