package state

import "strconv"

// KeyKind tells which variant a Key holds.
type KeyKind uint8

const (
	KeyInvalid KeyKind = iota
	KeyName
	KeyID
)

// Key addresses a registered state either by name or by its dense integer key.
type Key struct {
	kind KeyKind
	name string
	id   int
}

// Name builds a Key that looks a state up by name.
func Name(name string) Key {
	return Key{kind: KeyName, name: name}
}

// ID builds a Key that looks a state up by integer key.
func ID(id int) Key {
	return Key{kind: KeyID, id: id}
}

func (k Key) Kind() KeyKind {
	return k.kind
}

func (k Key) String() string {
	switch k.kind {
	case KeyName:
		return strconv.Quote(k.name)
	case KeyID:
		return "#" + strconv.Itoa(k.id)
	default:
		return "<invalid>"
	}
}
