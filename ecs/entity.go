package ecs

import "strconv"

// Entity packs a 32-bit slot id with a 32-bit generation. The zero Entity is
// never handed out.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// String renders slot and generation as "3v2", the form used as a machine's
// owner name in log lines.
func (e Entity) String() string {
	b := strconv.AppendUint(nil, uint64(e.id()), 10)
	b = append(b, 'v')
	return string(strconv.AppendUint(b, uint64(e.generation()), 10))
}

// Valid reports whether e could name an entity at all. Use World.IsAlive to
// know whether it still does.
func (e Entity) Valid() bool {
	return e.id() != 0
}
