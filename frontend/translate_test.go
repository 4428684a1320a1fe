package frontend

import (
	"testing"

	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/types"
)

// sliceReader replays a fixed slice of operators in order, the simplest
// possible OperatorReader for a test body.
type sliceReader struct {
	ops []Operator
	pos int
}

func (r *sliceReader) Next() (Operator, bool, error) {
	if r.pos >= len(r.ops) {
		return Operator{}, false, nil
	}
	op := r.ops[r.pos]
	r.pos++
	return op, true, nil
}

func constI32(v int32) Operator { return Operator{Code: OpI32Const, ConstI32: v} }

// TestTranslateDropAfterAdd exercises scenario "i32.const 2, i32.const 3,
// i32.add, drop": the folded sum must be computed and then discarded
// without leaving anything on the stack or emitting a result anchor.
func TestTranslateDropAfterAdd(t *testing.T) {
	fc := &FunctionContext{}
	var anchors fg.Anchors
	blk := &Block{
		Reader:  &sliceReader{ops: []Operator{constI32(2), constI32(3), {Code: OpI32Add}, {Code: OpDrop}, {Code: OpEnd}}},
		End:     EndReturn{},
		Anchors: &anchors,
	}
	if err := Translate(blk, fc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blk.Stack.Len() != 0 {
		t.Errorf("stack should be empty after drop, has %d values", blk.Stack.Len())
	}
	if len(anchors) != 1 {
		t.Fatalf("expected exactly one anchor (the void return), got %d", len(anchors))
	}
	if _, ok := anchors[0].(fg.AnchorReturn); !ok {
		t.Errorf("expected AnchorReturn, got %T", anchors[0])
	}
}

// TestTranslateAddFoldsConstants confirms i32.add over two constants folds
// to a single constant node in the value graph rather than a BinarySource.
func TestTranslateAddFoldsConstants(t *testing.T) {
	fc := &FunctionContext{}
	var anchors fg.Anchors
	result := types.I32
	blk := &Block{
		Reader:  &sliceReader{ops: []Operator{constI32(2), constI32(3), {Code: OpI32Add}, {Code: OpEnd}}},
		End:     EndReturn{Result: &result},
		Anchors: &anchors,
	}
	if err := Translate(blk, fc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(anchors) != 1 {
		t.Fatalf("expected exactly one anchor, got %d", len(anchors))
	}
	ret, ok := anchors[0].(fg.AnchorReturn)
	if !ok {
		t.Fatalf("expected AnchorReturn, got %T", anchors[0])
	}
	sum, ok := ret.Value.(*fg.Integer)
	if !ok {
		t.Fatalf("expected an *fg.Integer return value, got %T", ret.Value)
	}
	c, ok := sum.Source.(fg.ConstSource)
	if !ok {
		t.Fatalf("expected a folded constant, got %T", sum.Source)
	}
	if c.Bits != 5 {
		t.Errorf("2+3 folded to %d, want 5", c.Bits)
	}
}

// TestTranslateSelect exercises the parametric select operator: select
// over two i32 values yields an integer value.
func TestTranslateSelect(t *testing.T) {
	fc := &FunctionContext{}
	var anchors fg.Anchors
	result := types.I32
	blk := &Block{
		Reader: &sliceReader{ops: []Operator{
			constI32(10), constI32(20), constI32(1), {Code: OpSelect}, {Code: OpEnd},
		}},
		End:     EndReturn{Result: &result},
		Anchors: &anchors,
	}
	if err := Translate(blk, fc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ret := anchors[0].(fg.AnchorReturn)
	if _, ok := ret.Value.(*fg.Integer); !ok {
		t.Fatalf("expected select over integers to produce an *fg.Integer, got %T", ret.Value)
	}
}

// TestTranslateDivisionByZero confirms a constant-zero divisor fails
// translation immediately rather than reaching the emitter.
func TestTranslateDivisionByZero(t *testing.T) {
	fc := &FunctionContext{}
	var anchors fg.Anchors
	result := types.I32
	blk := &Block{
		Reader:  &sliceReader{ops: []Operator{constI32(1), constI32(0), {Code: OpI32DivS}, {Code: OpEnd}}},
		End:     EndReturn{Result: &result},
		Anchors: &anchors,
	}
	if err := Translate(blk, fc); err == nil {
		t.Errorf("expected a division-by-zero error")
	}
}

// TestTranslateUnknownOperatorFails confirms an operator no family
// recognizes (an out-of-range opcode here) is rejected rather than silently
// skipped.
func TestTranslateUnknownOperatorFails(t *testing.T) {
	fc := &FunctionContext{}
	var anchors fg.Anchors
	blk := &Block{
		Reader:  &sliceReader{ops: []Operator{{Code: OpCode(0xFFFF)}}},
		End:     EndReturn{},
		Anchors: &anchors,
	}
	if err := Translate(blk, fc); err == nil {
		t.Errorf("expected an error for an unrecognized operator code")
	}
}
