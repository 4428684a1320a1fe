package frontend

import (
	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/types"
)

// AbstractStack is the per-block WebAssembly operand stack: a
// double-ended deque of graph values, pushed and popped back-first.
type AbstractStack struct {
	values []fg.Value
}

// Push appends v to the back of the stack.
func (s *AbstractStack) Push(v fg.Value) {
	s.values = append(s.values, v)
}

// PopAny removes and returns the back value, failing with "empty stack"
// when the stack holds nothing.
func (s *AbstractStack) PopAny() (fg.Value, error) {
	if len(s.values) == 0 {
		return nil, types.Errf("empty stack")
	}
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v, nil
}

// PeekAny returns the back value without removing it.
func (s *AbstractStack) PeekAny() (fg.Value, error) {
	if len(s.values) == 0 {
		return nil, types.Errf("empty stack")
	}
	return s.values[len(s.values)-1], nil
}

// Len reports how many values the stack currently holds.
func (s *AbstractStack) Len() int { return len(s.values) }

// Pop pops the back value and coerces it to ty: integer pops assert kind
// match (via ToInteger when the popped value is a Schrödinger local), bool
// pops coerce through ToBool, everything else passes through unchanged.
func (s *AbstractStack) Pop(ty types.Scalar, vf fg.VariableFactory) (fg.Value, error) {
	v, err := s.PopAny()
	if err != nil {
		return nil, err
	}
	return coerce(v, ty, vf)
}

// Peek is the non-destructive variant of Pop.
func (s *AbstractStack) Peek(ty types.Scalar, vf fg.VariableFactory) (fg.Value, error) {
	v, err := s.PeekAny()
	if err != nil {
		return nil, err
	}
	return coerce(v, ty, vf)
}

func coerce(v fg.Value, ty types.Scalar, vf fg.VariableFactory) (fg.Value, error) {
	if ty == types.Bool {
		return toBool(v, vf)
	}
	if ty.IsInteger() {
		i, err := toInteger(v, vf)
		if err != nil {
			return nil, err
		}
		if i.Kind != ty {
			return nil, types.Errf("Type mismatch: expected %v, found %v", ty, i.Kind)
		}
		return i, nil
	}
	return v, nil
}

// PopPointer pops the back value and coerces it to a pointer over pointee
// (Memory: "pop an address (coerced to pointer over scalar
// pointee)"): an already-materialized Pointer is cast if its pointee
// differs, a Schrödinger local is read through ToPointer, which fails
// unless it is already committed to pointer use.
func (s *AbstractStack) PopPointer(vf fg.VariableFactory, class types.StorageClass, pointee types.Pointee, size types.PointerSize) (*fg.Pointer, error) {
	v, err := s.PopAny()
	if err != nil {
		return nil, err
	}
	return CoercePointer(v, vf, class, pointee, size)
}

// CoercePointer coerces an already-popped value to a pointer over pointee:
// an already-materialized Pointer is cast if its pointee differs, a raw
// Integer is reinterpreted via fg.FromInteger, and a Schrödinger local is
// read through ToPointer, which fails unless it is already committed to
// pointer use.
func CoercePointer(v fg.Value, vf fg.VariableFactory, class types.StorageClass, pointee types.Pointee, size types.PointerSize) (*fg.Pointer, error) {
	switch x := v.(type) {
	case *fg.Pointer:
		return fg.Cast(x, pointee), nil
	case *fg.Schrodinger:
		return x.ToPointer(vf, class, pointee, size)
	case *fg.Integer:
		return fg.FromInteger(x, class, pointee, size), nil
	default:
		return nil, types.Errf("Type mismatch: expected pointer, found %T", v)
	}
}

func toInteger(v fg.Value, vf fg.VariableFactory) (*fg.Integer, error) {
	switch x := v.(type) {
	case *fg.Integer:
		return x, nil
	case *fg.Schrodinger:
		return x.ToInteger(vf)
	default:
		return nil, types.Errf("Type mismatch: expected integer, found %T", v)
	}
}

// toBool coerces a popped value into a Bool: WebAssembly's br_if and the
// comparison-free conditional contexts all carry their condition as a
// plain i32, which is truthy-tested against zero rather than already a
// Bool node.
func toBool(v fg.Value, vf fg.VariableFactory) (*fg.Bool, error) {
	switch x := v.(type) {
	case *fg.Bool:
		return x, nil
	case *fg.Integer:
		zero := fg.NewConstInteger(x.Kind, 0)
		return fg.NewIntComparison(fg.CmpNe, false, x, zero)
	case *fg.Schrodinger:
		i, err := x.ToInteger(vf)
		if err != nil {
			return nil, err
		}
		return toBool(i, vf)
	default:
		return nil, types.Errf("Type mismatch: expected bool, found %T", v)
	}
}
