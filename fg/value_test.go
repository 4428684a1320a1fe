package fg

import (
	"testing"

	"github.com/gogpu/wasm2spirv/types"
)

func TestNewBinaryIntegerConstantFolding(t *testing.T) {
	tests := []struct {
		name string
		op   BinaryOp
		l, r uint64
		want uint64
	}{
		{"add", BinAdd, 2, 3, 5},
		{"sub", BinSub, 5, 3, 2},
		{"mul", BinMul, 4, 5, 20},
		{"shl", BinShl, 1, 3, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewConstInteger(types.I32, tt.l)
			r := NewConstInteger(types.I32, tt.r)
			got, err := NewBinaryInteger(types.I32, tt.op, l, r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			c, ok := got.Source.(ConstSource)
			if !ok {
				t.Fatalf("expected folded constant, got %T", got.Source)
			}
			if c.Bits != tt.want {
				t.Errorf("bits = %d, want %d", c.Bits, tt.want)
			}
		})
	}
}

func TestNewBinaryIntegerIdentities(t *testing.T) {
	nonConst := &Integer{Source: ParamSource{Index: 0}, Kind: types.I32}

	addZero, err := NewBinaryInteger(types.I32, BinAdd, nonConst, NewConstInteger(types.I32, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addZero != nonConst {
		t.Errorf("x+0 should return x unchanged, got a new node")
	}

	mulOne, err := NewBinaryInteger(types.I32, BinMul, nonConst, NewConstInteger(types.I32, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mulOne != nonConst {
		t.Errorf("x*1 should return x unchanged, got a new node")
	}

	mulZero, err := NewBinaryInteger(types.I32, BinMul, nonConst, NewConstInteger(types.I32, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c, ok := mulZero.Source.(ConstSource); !ok || c.Bits != 0 {
		t.Errorf("x*0 should fold to the constant 0, got %#v", mulZero.Source)
	}
}

func TestNewBinaryIntegerDivisionByZero(t *testing.T) {
	l := NewConstInteger(types.I32, 10)
	r := NewConstInteger(types.I32, 0)
	for _, op := range []BinaryOp{BinDivS, BinDivU, BinRemS, BinRemU} {
		if _, err := NewBinaryInteger(types.I32, op, l, r); err == nil {
			t.Errorf("op %v: expected division-by-zero error, got nil", op)
		}
	}
}

func TestNewBinaryIntegerMasksToKindWidth(t *testing.T) {
	l := NewConstInteger(types.I32, 0xFFFFFFFF)
	r := NewConstInteger(types.I32, 1)
	got, err := NewBinaryInteger(types.I32, BinAdd, l, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := got.Source.(ConstSource)
	if c.Bits != 0 {
		t.Errorf("i32 overflow should wrap to 0, got %#x", c.Bits)
	}
}

func TestNewSelectPreservesOperandKind(t *testing.T) {
	cond := NewConstBool(true)

	intV := NewSelect(cond, NewConstInteger(types.I32, 1), NewConstInteger(types.I32, 2))
	if i, ok := intV.(*Integer); !ok || i.Kind != types.I32 {
		t.Errorf("select over integers should produce an I32 Integer, got %#v", intV)
	}

	floatV := NewSelect(cond, NewConstFloat32(1), NewConstFloat32(2))
	if f, ok := floatV.(*Float); !ok || f.Kind != types.F32 {
		t.Errorf("select over floats should produce an F32 Float, got %#v", floatV)
	}

	boolV := NewSelect(cond, NewConstBool(true), NewConstBool(false))
	if _, ok := boolV.(*Bool); !ok {
		t.Errorf("select over bools should produce a Bool, got %#v", boolV)
	}
}

func TestNewSelectPanicsOnUnknownKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for an unrecognized select operand kind")
		}
	}()
	NewSelect(NewConstBool(true), struct{ Value }{}, struct{ Value }{})
}
