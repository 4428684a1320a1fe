package frontend

import (
	"testing"

	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/types"
)

func TestAbstractStackPushPopOrder(t *testing.T) {
	var s AbstractStack
	a := fg.NewConstInteger(types.I32, 1)
	b := fg.NewConstInteger(types.I32, 2)
	s.Push(a)
	s.Push(b)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	got, err := s.PopAny()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != b {
		t.Errorf("PopAny() should return the most recently pushed value")
	}
	if s.Len() != 1 {
		t.Errorf("Len() after one pop = %d, want 1", s.Len())
	}
}

func TestAbstractStackPopAnyEmpty(t *testing.T) {
	var s AbstractStack
	if _, err := s.PopAny(); err == nil {
		t.Errorf("expected an error popping an empty stack")
	}
}

func TestAbstractStackPopCoercesKind(t *testing.T) {
	var s AbstractStack
	s.Push(fg.NewConstInteger(types.I32, 42))
	v, err := s.Pop(types.I32, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.(*fg.Integer); !ok {
		t.Errorf("expected *fg.Integer, got %T", v)
	}
}

func TestAbstractStackPopKindMismatch(t *testing.T) {
	var s AbstractStack
	s.Push(fg.NewConstInteger(types.I32, 42))
	if _, err := s.Pop(types.I64, nil); err == nil {
		t.Errorf("expected a type-mismatch error popping an i32 as i64")
	}
}

func TestAbstractStackPopCoercesIntegerToBool(t *testing.T) {
	var s AbstractStack
	s.Push(fg.NewConstInteger(types.I32, 1))
	v, err := s.Pop(types.Bool, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.(*fg.Bool); !ok {
		t.Errorf("expected *fg.Bool, got %T", v)
	}
}

func TestAbstractStackPeekDoesNotRemove(t *testing.T) {
	var s AbstractStack
	s.Push(fg.NewConstInteger(types.I32, 7))
	if _, err := s.Peek(types.I32, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Peek should not remove the value; Len() = %d, want 1", s.Len())
	}
}
