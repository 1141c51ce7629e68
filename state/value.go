package state

import (
	"fmt"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// ValueKind tags the payload held by a Value.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindVec3
)

func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindVec3:
		return "vec3"
	default:
		return "invalid"
	}
}

// Value is a small tagged union for blackboard slots shared between states
// and scripts.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
	v    r3.Vec
}

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func Vec3Value(v r3.Vec) Value { return Value{kind: KindVec3, v: v} }
func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsFloat also widens ints.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) AsVec3() (r3.Vec, bool) {
	return v.v, v.kind == KindVec3
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindVec3:
		return fmt.Sprintf("(%g, %g, %g)", v.v.X, v.v.Y, v.v.Z)
	default:
		return "<invalid>"
	}
}

// Blackboard is per-machine shared data plus a set of runtime flags.
type Blackboard struct {
	values map[string]Value
	flags  map[string]struct{}
}

func (b *Blackboard) Set(key string, v Value) {
	if b == nil || key == "" {
		return
	}
	if b.values == nil {
		b.values = make(map[string]Value)
	}
	b.values[key] = v
}

func (b *Blackboard) Get(key string) (Value, bool) {
	if b == nil {
		return Value{}, false
	}
	v, ok := b.values[key]
	return v, ok
}

func (b *Blackboard) Delete(key string) {
	if b == nil {
		return
	}
	delete(b.values, key)
}

// Keys returns the value keys in sorted order.
func (b *Blackboard) Keys() []string {
	if b == nil {
		return nil
	}
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (b *Blackboard) AddFlag(flag string) {
	if b == nil || flag == "" {
		return
	}
	if b.flags == nil {
		b.flags = make(map[string]struct{})
	}
	b.flags[flag] = struct{}{}
}

func (b *Blackboard) RemoveFlag(flag string) {
	if b == nil {
		return
	}
	delete(b.flags, flag)
}

func (b *Blackboard) HasFlag(flag string) bool {
	if b == nil {
		return false
	}
	_, ok := b.flags[flag]
	return ok
}

func (b *Blackboard) Clear() {
	if b == nil {
		return
	}
	b.values = nil
	b.flags = nil
}
