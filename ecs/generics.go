package ecs

import "github.com/milk9111/stateblend/ecs/component"

// Components are stored by pointer so systems can mutate them in place.

func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value *T) error {
	if value == nil {
		return component.ErrNilComponent
	}
	return w.AddComponent(e, handle.Kind(), value)
}

func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.RemoveComponent(e, handle.Kind())
}

func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.HasComponent(e, handle.Kind())
}

func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (*T, bool) {
	value, ok := w.GetComponent(e, handle.Kind())
	if !ok {
		return nil, false
	}
	cast, ok := value.(*T)
	if !ok || cast == nil {
		return nil, false
	}
	return cast, true
}

// ForEach calls fn for every entity holding a T of kind.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(e Entity, v *T)) {
	if w == nil || fn == nil {
		return
	}
	s := w.store(kind.ID(), false)
	ents := append([]Entity(nil), s.Entities()...)
	for _, e := range ents {
		if v, ok := s.Get(e).(*T); ok && v != nil {
			fn(e, v)
		}
	}
}
