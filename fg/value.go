package fg

import (
	"math"

	"github.com/gogpu/wasm2spirv/types"
)

// Value is implemented by every node in the expression graph. EmitterID
// returns the single-writer memoization cell the SSA emitter uses to
// translate each shared node exactly once (checked-then-set, never
// cleared): see "Value emission order".
type Value interface {
	EmitterID() *uint32
}

type valueBase struct{ id uint32 }

func (v *valueBase) EmitterID() *uint32 { return &v.id }

// Integer is an i32 or i64-kinded value.
type Integer struct {
	valueBase
	Source Source
	Kind   types.Scalar // I32 or I64
}

// Float is an f32 or f64-kinded value.
type Float struct {
	valueBase
	Source Source
	Kind   types.Scalar // F32 or F64
}

// Bool is a boolean value: the result of a comparison, select, relational
// test, or constant, or a bool-typed load, parameter or call result.
type Bool struct {
	valueBase
	Source Source
}

// Vector is a fixed-size SIMD value.
type Vector struct {
	valueBase
	Source Source
	Elem   types.Scalar
	Count  uint32
}

// Pointer is a pointer-kinded value: either the canonical occurrence of a
// variable's address, or derived from one via access/cast.
type Pointer struct {
	valueBase
	Source  Source
	Class   types.StorageClass
	Pointee types.Pointee
	Kind    types.PointerSize
	// Offset holds the accumulated byte-offset expression for a Fat
	// pointer; nil for Skinny pointers.
	Offset *Integer
}

// SchrodingerState is the latch state of a Schrödinger local: {Uninit,
// CommittedInt, CommittedPtr} design notes.
type SchrodingerState uint8

const (
	SchrodingerUninit SchrodingerState = iota
	SchrodingerInt
	SchrodingerPtr
)

// Schrodinger is a marker value for an untyped i32/i64 local whose role
// (integer vs pointer) is latched on first store. IntShadow/PtrShadow are
// lazily allocated backing Pointer variables created on first typed use
// (see schrodinger.go).
type Schrodinger struct {
	valueBase
	Source    Source
	Bits      types.Scalar // I32 or I64, the WebAssembly-level local type
	State     SchrodingerState
	IntShadow *Pointer // pointee = Bits, Function storage
	PtrShadow *Pointer // pointee = whatever pointer type was first stored
	// OffsetShadow tracks byte-offset arithmetic once a pointer has been
	// committed, separated from the pointer's own Offset field so integer
	// arithmetic that doesn't fit the pointer's storage class still
	// round-trips.
	OffsetShadow *Pointer
}

// --- constructors -----------------------------------------------------

// NewConstInteger builds a canonicalized integer constant.
func NewConstInteger(kind types.Scalar, bits uint64) *Integer {
	return &Integer{Source: ConstSource{Bits: bits}, Kind: kind}
}

func NewConstFloat32(v float32) *Float {
	return &Float{Source: ConstSource{Bits: uint64(math.Float32bits(v))}, Kind: types.F32}
}

func NewConstFloat64(v float64) *Float {
	return &Float{Source: ConstSource{Bits: math.Float64bits(v)}, Kind: types.F64}
}

func NewConstBool(v bool) *Bool {
	bits := uint64(0)
	if v {
		bits = 1
	}
	return &Bool{Source: ConstSource{Bits: bits}}
}

// asConstInt reports whether v is a folded integer constant and its bits.
func asConstInt(v Value) (uint64, bool) {
	i, ok := v.(*Integer)
	if !ok {
		return 0, false
	}
	c, ok := i.Source.(ConstSource)
	if !ok {
		return 0, false
	}
	return c.Bits, true
}

func asConstFloat(v Value) (uint64, bool) {
	f, ok := v.(*Float)
	if !ok {
		return 0, false
	}
	c, ok := f.Source.(ConstSource)
	if !ok {
		return 0, false
	}
	return c.Bits, true
}

func maskFor(kind types.Scalar) uint64 {
	if kind == types.I32 {
		return 0xFFFFFFFF
	}
	return 0xFFFFFFFFFFFFFFFF
}

// NewBinaryInteger builds an integer binary operation, folding it into a
// constant at graph-construction time when possible: both
// operands constant reduces add/sub/mul/shl immediately, and the algebraic
// identities x+0, x*0, x*1 short-circuit even when only one side folds.
// Division by a constant zero divisor fails immediately (Testable Property 8).
func NewBinaryInteger(kind types.Scalar, op BinaryOp, left, right Value) (*Integer, error) {
	mask := maskFor(kind)

	if rb, ok := asConstInt(right); ok {
		switch op {
		case BinAdd:
			if rb == 0 {
				return left.(*Integer), nil
			}
		case BinMul:
			if rb == 0 {
				return NewConstInteger(kind, 0), nil
			}
			if rb == 1 {
				return left.(*Integer), nil
			}
		case BinDivS, BinDivU, BinRemS, BinRemU:
			if rb == 0 {
				return nil, types.Errf("division by zero")
			}
		}
	}
	if lb, ok := asConstInt(left); ok {
		switch op {
		case BinAdd:
			if lb == 0 {
				return right.(*Integer), nil
			}
		case BinMul:
			if lb == 0 {
				return NewConstInteger(kind, 0), nil
			}
			if lb == 1 {
				return right.(*Integer), nil
			}
		}
	}

	if lb, lok := asConstInt(left); lok {
		if rb, rok := asConstInt(right); rok {
			switch op {
			case BinAdd:
				return NewConstInteger(kind, (lb+rb)&mask), nil
			case BinSub:
				return NewConstInteger(kind, (lb-rb)&mask), nil
			case BinMul:
				return NewConstInteger(kind, (lb*rb)&mask), nil
			case BinShl:
				return NewConstInteger(kind, (lb<<(rb&63))&mask), nil
			}
		}
	}

	return &Integer{Source: BinarySource{Op: op, Left: left, Right: right}, Kind: kind}, nil
}

// NewBinaryFloat builds a float binary operation, folding add/sub/mul over
// two constants exactly as NewBinaryInteger does for integers.
func NewBinaryFloat(kind types.Scalar, op BinaryOp, left, right Value) (*Float, error) {
	if lb, lok := asConstFloat(left); lok {
		if rb, rok := asConstFloat(right); rok {
			switch kind {
			case types.F32:
				l, r := math.Float32frombits(uint32(lb)), math.Float32frombits(uint32(rb))
				switch op {
				case BinAdd:
					return NewConstFloat32(l + r), nil
				case BinSub:
					return NewConstFloat32(l - r), nil
				case BinMul:
					return NewConstFloat32(l * r), nil
				}
			case types.F64:
				l, r := math.Float64frombits(lb), math.Float64frombits(rb)
				switch op {
				case BinAdd:
					return NewConstFloat64(l + r), nil
				case BinSub:
					return NewConstFloat64(l - r), nil
				case BinMul:
					return NewConstFloat64(l * r), nil
				}
			}
		}
	}
	return &Float{Source: BinarySource{Op: op, Left: left, Right: right}, Kind: kind}, nil
}

// NewUnaryInteger/NewUnaryFloat wrap an operand with no folding beyond
// what the caller already guarantees; unary ops are rare enough in
// WebAssembly's integer/float instruction set (clz/ctz/popcnt, fabs/neg/
// sqrt/ceil/floor/trunc/nearest) that they are not folded at all: a
// constant operand is emitted and the instruction applied to it at runtime.
func NewUnaryInteger(kind types.Scalar, op UnaryOp, operand Value) *Integer {
	return &Integer{Source: UnarySource{Op: op, Operand: operand}, Kind: kind}
}

func NewUnaryFloat(kind types.Scalar, op UnaryOp, operand Value) *Float {
	return &Float{Source: UnarySource{Op: op, Operand: operand}, Kind: kind}
}

// NewIntComparison builds a Bool from comparing two Integers; the caller
// (the arithmetic/comparison translator family) is responsible for the
// kind-match invariant (Testable Property 2).
func NewIntComparison(op CompareOp, signed bool, left, right *Integer) (*Bool, error) {
	if left.Kind != right.Kind {
		return nil, types.Unexpectedf("comparison operand kind mismatch: %v vs %v", left.Kind, right.Kind)
	}
	return &Bool{Source: IntComparisonSource{Op: op, Signed: signed, Left: left, Right: right}}, nil
}

func NewFloatComparison(op CompareOp, left, right *Float) (*Bool, error) {
	if left.Kind != right.Kind {
		return nil, types.Unexpectedf("comparison operand kind mismatch: %v vs %v", left.Kind, right.Kind)
	}
	return &Bool{Source: FloatComparisonSource{Op: op, Left: left, Right: right}}, nil
}

// NewFromLong wraps an i64 down to i32.
func NewFromLong(operand *Integer) *Integer {
	return &Integer{Source: ConversionSource{Op: ConvFromLong, Operand: operand}, Kind: types.I32}
}

// NewFromShort extends an i32 to i64.
func NewFromShort(operand *Integer, signed bool) *Integer {
	return &Integer{Source: ConversionSource{Op: ConvFromShort, Operand: operand, Signed: signed}, Kind: types.I64}
}

// NewFloatToInt converts a float operand to an integer of the given kind.
func NewFloatToInt(kind types.Scalar, operand *Float, signed bool) *Integer {
	return &Integer{Source: ConversionSource{Op: ConvFromFloat, Operand: operand, Signed: signed}, Kind: kind}
}

// NewIntToFloat converts an integer operand to a float of the given kind.
func NewIntToFloat(kind types.Scalar, operand *Integer, signed bool) *Float {
	return &Float{Source: ConversionSource{Op: ConvFromInt, Operand: operand, Signed: signed}, Kind: kind}
}

// NewFloatDemoteOrPromote converts between f32 and f64.
func NewFloatDemoteOrPromote(kind types.Scalar, operand *Float) *Float {
	return &Float{Source: ConversionSource{Op: ConvFloatToFloat, Operand: operand}, Kind: kind}
}

// NewExtracted pulls a single lane out of a vector value.
func NewExtracted(v *Vector, index *Integer) Value {
	src := ExtractedSource{Vector: v, Index: index}
	switch v.Elem {
	case types.Bool:
		return &Bool{Source: src}
	case types.F32, types.F64:
		return &Float{Source: src, Kind: v.Elem}
	default:
		return &Integer{Source: src, Kind: v.Elem}
	}
}

// NewSelect builds a select value; Accept/Reject must share a kind, which
// is the caller's responsibility to enforce (mirrors ExprSelect's
// contract in the expression-graph design).
func NewSelect(cond *Bool, accept, reject Value) Value {
	switch a := accept.(type) {
	case *Integer:
		return &Integer{Source: SelectSource{Cond: cond, True: accept, False: reject}, Kind: a.Kind}
	case *Float:
		return &Float{Source: SelectSource{Cond: cond, True: accept, False: reject}, Kind: a.Kind}
	case *Bool:
		return &Bool{Source: SelectSource{Cond: cond, True: accept, False: reject}}
	case *Vector:
		return &Vector{Source: SelectSource{Cond: cond, True: accept, False: reject}, Elem: a.Elem, Count: a.Count}
	case *Pointer:
		return &Pointer{Source: SelectSource{Cond: cond, True: accept, False: reject}, Class: a.Class, Pointee: a.Pointee, Kind: a.Kind}
	default:
		panic("unreachable: unknown value kind in NewSelect")
	}
}
