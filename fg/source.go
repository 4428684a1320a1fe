package fg

import "github.com/gogpu/wasm2spirv/types"

// Source is the tag interface implemented by every value-node constructor.
// Sources form a DAG: a Value's Source may reference other Values, and
// those references are shared (the same *Value pointer), not copied — two
// uses of the same local produce the same pointer, which is what lets the
// emitter memoize each node's translation exactly once.
type Source interface{ source() }

// ConstSource is a canonicalized constant: (bits, result type). The
// emitter interns constants by (result-type, bits) so that two equal
// constants always produce the same SPIR-V id (see Emitter.internConstant).
type ConstSource struct {
	// Bits holds the raw bit pattern of the constant: the integer value
	// for Integer/Bool kinds, math.Float32bits/Float64bits for Float kinds.
	Bits uint64
}

func (ConstSource) source() {}

// ParamSource references the Index-th parameter of the enclosing function.
type ParamSource struct{ Index uint32 }

func (ParamSource) source() {}

// VariableSource marks a Value as the canonical occurrence of a local or
// global variable's address; the FunctionBuilder / ModuleBuilder create
// exactly one such Value per variable and every local.get/global.get
// returns that same pointer, preserving reference-equality sharing.
type VariableSource struct {
	Name string
	// Kind distinguishes locals from globals, purely for diagnostics.
	Kind VariableKind
}

func (VariableSource) source() {}

type VariableKind uint8

const (
	VariableLocal VariableKind = iota
	VariableGlobal
	VariableExternParam
)

// LoadSource loads the value currently stored behind a pointer.
type LoadSource struct {
	Pointer *Pointer
	// Log2Align is the alignment hint from the WebAssembly memory
	// instruction, if any (0 means "naturally aligned / not specified").
	Log2Align uint8
	HasAlign  bool
}

func (LoadSource) source() {}

// ExtractedSource pulls a single scalar lane out of a vector value. Index
// is a dynamic Integer rather than a compile-time constant because the
// spir_global builtin imports (gl_GlobalInvocationID(dim), …) take their
// lane index as a popped WebAssembly argument; emission lowers this to
// OpVectorExtractDynamic.
type ExtractedSource struct {
	Vector *Vector
	Index  *Integer
}

func (ExtractedSource) source() {}

// CallSource is the result of calling a function that returns a value.
type CallSource struct {
	FuncIndex uint32
	Args      []Value
}

func (CallSource) source() {}

// ConversionOp enumerates the scalar conversions the translator performs.
type ConversionOp uint8

const (
	ConvFromLong  ConversionOp = iota // i64 -> i32 (wrap)
	ConvFromShort                     // i32 -> i64 (extend, signedness carried separately)
	ConvFromFloat                     // float -> integer
	ConvFromInt                       // integer -> float
	ConvFromBool                      // bool -> integer/float, explicit target kind
	ConvFloatToFloat
)

// ConversionSource converts Operand to a new kind; the constructor is
// responsible for fixing the resulting Integer/Float kind:
// from-long forces short, from-short forces long, from-bool forces an
// explicit kind.
type ConversionSource struct {
	Op      ConversionOp
	Operand Value
	Signed  bool // meaningful for integer<->float and extend conversions
}

func (ConversionSource) source() {}

// UnaryOp enumerates supported unary operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryClz
	UnaryCtz
	UnaryPopcnt
	UnaryAbs
	UnarySqrt
	UnaryCeil
	UnaryFloor
	UnaryTrunc
	UnaryNearest
)

type UnarySource struct {
	Op      UnaryOp
	Operand Value
}

func (UnarySource) source() {}

// BinaryOp enumerates supported binary operators, shared between Integer,
// Float and Bool(comparison) result kinds; the owning Value's kind plus Op
// disambiguates int-vs-float lowering at emission time.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDivS
	BinDivU
	BinRemS
	BinRemU
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShrS
	BinShrU
	BinRotl
	BinRotr
	BinMin
	BinMax
	BinCopysign
)

// BinarySource applies Op to two operands of matching kind (enforced by
// the constructors in value.go, never by the emitter).
type BinarySource struct {
	Op          BinaryOp
	Left, Right Value
}

func (BinarySource) source() {}

// CompareOp enumerates the comparisons that produce a Bool value.
type CompareOp uint8

const (
	CmpEq CompareOp = iota
	CmpNe
	CmpLtS
	CmpLtU
	CmpLeS
	CmpLeU
	CmpGtS
	CmpGtU
	CmpGeS
	CmpGeU
)

// IntComparisonSource compares two Integers of matching kind.
type IntComparisonSource struct {
	Op          CompareOp
	Signed      bool
	Left, Right *Integer
}

func (IntComparisonSource) source() {}

// FloatComparisonSource compares two Floats of matching kind.
type FloatComparisonSource struct {
	Op          CompareOp
	Left, Right *Float
}

func (FloatComparisonSource) source() {}

// SelectSource is a ternary select between two values of matching kind.
type SelectSource struct {
	Cond        *Bool
	True, False Value
}

func (SelectSource) source() {}

// AccessSource produces a pointer offset from Base by ByteOffset (an
// Integer), the graph-level representation of Pointer.access; see
// pointer.go for the access-chain/fat-offset lowering rules.
type AccessSource struct {
	Base       *Pointer
	ByteOffset *Integer
}

func (AccessSource) source() {}

// CastSource reinterprets Base's pointee as a new type, a no-op in the
// graph when the pointee already matches; emission uses OpBitcast when it
// doesn't.
type CastSource struct {
	Base       *Pointer
	NewPointee types.Pointee
}

func (CastSource) source() {}

// FromIntegerSource reinterprets an integer bit pattern as a pointer (the
// inverse of converting a pointer to isize), used when a raw integer
// address is coerced to a pointer (frontend.CoercePointer).
type FromIntegerSource struct {
	Operand *Integer
}

func (FromIntegerSource) source() {}

// ArrayLengthSource queries the runtime length of the structured-array
// backing a fat pointer.
type ArrayLengthSource struct {
	Base *Pointer
}

func (ArrayLengthSource) source() {}
