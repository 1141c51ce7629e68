package ecs

// IntersectEntities returns entities present in every set.
func IntersectEntities(sets ...*SparseSet) []Entity {
	if len(sets) == 0 {
		return nil
	}
	// iterate smallest set
	small := sets[0]
	for _, s := range sets[1:] {
		if s.Len() < small.Len() {
			small = s
		}
	}
	out := make([]Entity, 0, small.Len())
outer:
	for _, e := range small.Entities() {
		for _, s := range sets {
			if s != small && !s.Has(e) {
				continue outer
			}
		}
		out = append(out, e)
	}
	return out
}
