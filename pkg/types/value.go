package types

import "github.com/sandrolain/treepath/pkg/tree"

// Type is one of the four types in the expression language. There is
// no implicit coercion between them (spec.md §4.3).
type Type uint8

const (
	TypeNodeSet Type = iota
	TypeBoolean
	TypeNumber
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeNodeSet:
		return "nodeset"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a dynamically-typed evaluation result. Exactly one of the
// fields is meaningful, selected by Type.
type Value struct {
	Type    Type
	Nodes   []tree.Node
	Boolean bool
	Number  int32 // spec.md §3: "signed 32-bit integer" — no floating point (Non-goal)
	Str     string
}

// Handle is a stable 32-bit reference into a ValuePool. Unlike a
// pointer, a Handle survives reallocation of the pool's backing
// slice: it is a plain index, not an address.
type Handle uint32

// Reserved handles for the canonical boolean values, so that a
// boolean doesn't need a round-trip through the pool in the common
// case of comparing against true/false.
const (
	HandleFalse Handle = 0
	HandleTrue  Handle = 1
)

// ValuePool owns Values by Handle. Handles 0 and 1 are pre-populated
// with the canonical false/true booleans (spec.md §3) so that every
// pool, once constructed via NewValuePool, already has stable
// handles for them.
type ValuePool struct {
	values []Value
}

// NewValuePool returns a pool with slots 0 (false) and 1 (true)
// already populated.
func NewValuePool() *ValuePool {
	p := &ValuePool{
		values: make([]Value, 2, 64),
	}
	p.values[HandleFalse] = Value{Type: TypeBoolean, Boolean: false}
	p.values[HandleTrue] = Value{Type: TypeBoolean, Boolean: true}
	return p
}

// Put stores v and returns a stable handle to it. Storing a boolean
// always returns the reserved HandleFalse/HandleTrue handle instead
// of allocating a new slot.
func (p *ValuePool) Put(v Value) Handle {
	if v.Type == TypeBoolean {
		if v.Boolean {
			return HandleTrue
		}
		return HandleFalse
	}
	p.values = append(p.values, v)
	return Handle(len(p.values) - 1)
}

// Get dereferences a handle. It panics on an out-of-range handle,
// which indicates an internal bug (EINTERNAL) rather than a user
// error — callers never construct handles themselves.
func (p *ValuePool) Get(h Handle) Value {
	return p.values[h]
}

// Len reports how many values the pool currently holds, including
// the two reserved boolean slots.
func (p *ValuePool) Len() int {
	return len(p.values)
}
