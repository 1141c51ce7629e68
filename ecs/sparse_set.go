package ecs

// SparseSet stores one component value per entity slot. Values are kept
// densely packed; removal swaps the last element into the hole.
type SparseSet struct {
	dense  []Entity
	values []any
	sparse []int32
}

func (s *SparseSet) index(e Entity) (int, bool) {
	if s == nil {
		return 0, false
	}
	id := int(e.id())
	if id >= len(s.sparse) {
		return 0, false
	}
	idx := int(s.sparse[id])
	if idx < 0 || idx >= len(s.dense) || s.dense[idx] != e {
		return 0, false
	}
	return idx, true
}

// Has reports whether e has a value in the set.
func (s *SparseSet) Has(e Entity) bool {
	_, ok := s.index(e)
	return ok
}

// Get returns the value for e, or nil.
func (s *SparseSet) Get(e Entity) any {
	idx, ok := s.index(e)
	if !ok {
		return nil
	}
	return s.values[idx]
}

// Set inserts or replaces the value for e.
func (s *SparseSet) Set(e Entity, v any) {
	if s == nil || !e.Valid() {
		return
	}
	if idx, ok := s.index(e); ok {
		s.values[idx] = v
		return
	}
	id := int(e.id())
	for len(s.sparse) <= id {
		s.sparse = append(s.sparse, -1)
	}
	// A stale generation may still occupy the slot.
	if old := s.sparse[id]; old >= 0 && int(old) < len(s.dense) && s.dense[old].id() == e.id() {
		s.removeAt(int(old))
	}
	s.dense = append(s.dense, e)
	s.values = append(s.values, v)
	s.sparse[id] = int32(len(s.dense) - 1)
}

// Remove deletes the value for e and reports whether one was present.
func (s *SparseSet) Remove(e Entity) bool {
	idx, ok := s.index(e)
	if !ok {
		return false
	}
	s.removeAt(idx)
	return true
}

func (s *SparseSet) removeAt(idx int) {
	last := len(s.dense) - 1
	gone := s.dense[idx]
	moved := s.dense[last]

	s.dense[idx] = moved
	s.values[idx] = s.values[last]
	s.sparse[moved.id()] = int32(idx)

	s.dense = s.dense[:last]
	s.values[last] = nil
	s.values = s.values[:last]
	s.sparse[gone.id()] = -1
}

// Len is the number of stored values.
func (s *SparseSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.dense)
}

// Entities returns the dense entity list. Callers must not modify it.
func (s *SparseSet) Entities() []Entity {
	if s == nil {
		return nil
	}
	return s.dense
}

// Values returns the dense value list, parallel to Entities.
func (s *SparseSet) Values() []any {
	if s == nil {
		return nil
	}
	return s.values
}
