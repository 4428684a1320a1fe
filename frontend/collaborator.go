// Package frontend implements the WebAssembly operator-stream translator:
// the abstract stack, block builder, and the operator-translator families
// that turn a validated function body into the value graph and anchor
// stream. It treats WebAssembly parsing and validation as an
// external collaborator's job and consumes only the
// narrow surface that collaborator is expected to expose.
package frontend

import "github.com/gogpu/wasm2spirv/types"

// OpCode names the WebAssembly operators the translator families dispatch
// on. It is a closed subset: only the operators the spec assigns semantics
// to appear here, and an external validator is assumed to have already
// rejected anything else in the input binary.
type OpCode uint16

const (
	OpUnreachable OpCode = iota
	OpNop
	OpBlock
	OpLoop
	OpEnd
	OpBr
	OpBrIf
	OpCall
	OpReturn
	OpDrop
	OpSelect

	OpLocalGet
	OpLocalSet
	OpLocalTee
	OpGlobalGet
	OpGlobalSet

	OpI32Const
	OpI64Const
	OpF32Const
	OpF64Const

	OpI32WrapI64
	OpI64ExtendI32S
	OpI64ExtendI32U
	OpI32TruncF32S
	OpI32TruncF32U
	OpI32TruncF64S
	OpI32TruncF64U
	OpI64TruncF32S
	OpI64TruncF32U
	OpI64TruncF64S
	OpI64TruncF64U
	OpF32ConvertI32S
	OpF32ConvertI32U
	OpF32ConvertI64S
	OpF32ConvertI64U
	OpF64ConvertI32S
	OpF64ConvertI32U
	OpF64ConvertI64S
	OpF64ConvertI64U
	OpF32DemoteF64
	OpF64PromoteF32

	OpMemorySize
	OpMemoryGrow

	OpI32Load
	OpI64Load
	OpF32Load
	OpF64Load
	OpI32Load8S
	OpI32Load8U
	OpI32Load16S
	OpI32Load16U
	OpI64Load8S
	OpI64Load8U
	OpI64Load16S
	OpI64Load16U
	OpI64Load32S
	OpI64Load32U
	OpI32Store
	OpI64Store
	OpF32Store
	OpF64Store
	OpI32Store8
	OpI32Store16
	OpI64Store8
	OpI64Store16
	OpI64Store32

	OpI32Add
	OpI32Sub
	OpI32Mul
	OpI32DivS
	OpI32DivU
	OpI32RemS
	OpI32RemU
	OpI32And
	OpI32Or
	OpI32Xor
	OpI32Shl
	OpI32ShrS
	OpI32ShrU
	OpI32Rotl
	OpI32Rotr
	OpI32Clz
	OpI32Ctz
	OpI32Popcnt
	OpI64Add
	OpI64Sub
	OpI64Mul
	OpI64DivS
	OpI64DivU
	OpI64RemS
	OpI64RemU
	OpI64And
	OpI64Or
	OpI64Xor
	OpI64Shl
	OpI64ShrS
	OpI64ShrU
	OpI64Rotl
	OpI64Rotr
	OpI64Clz
	OpI64Ctz
	OpI64Popcnt

	OpF32Add
	OpF32Sub
	OpF32Mul
	OpF32Div
	OpF32Min
	OpF32Max
	OpF32Copysign
	OpF32Abs
	OpF32Neg
	OpF32Sqrt
	OpF32Ceil
	OpF32Floor
	OpF32Trunc
	OpF32Nearest
	OpF64Add
	OpF64Sub
	OpF64Mul
	OpF64Div
	OpF64Min
	OpF64Max
	OpF64Copysign
	OpF64Abs
	OpF64Neg
	OpF64Sqrt
	OpF64Ceil
	OpF64Floor
	OpF64Trunc
	OpF64Nearest

	OpI32Eqz
	OpI32Eq
	OpI32Ne
	OpI32LtS
	OpI32LtU
	OpI32LeS
	OpI32LeU
	OpI32GtS
	OpI32GtU
	OpI32GeS
	OpI32GeU
	OpI64Eqz
	OpI64Eq
	OpI64Ne
	OpI64LtS
	OpI64LtU
	OpI64LeS
	OpI64LeU
	OpI64GtS
	OpI64GtU
	OpI64GeS
	OpI64GeU
	OpF32Eq
	OpF32Ne
	OpF32Lt
	OpF32Le
	OpF32Gt
	OpF32Ge
	OpF64Eq
	OpF64Ne
	OpF64Lt
	OpF64Le
	OpF64Gt
	OpF64Ge
)

// MemArg is the static offset and alignment hint attached to a memory
// operator, as the external validator is expected to have decoded it.
type MemArg struct {
	Offset    uint64
	Log2Align uint8
	HasAlign  bool
}

// Operator is one decoded WebAssembly operator plus whatever immediate
// operands its Code needs. Only the fields relevant to Code are populated;
// the rest are zero.
type Operator struct {
	Code OpCode

	Local  uint32
	Global uint32
	Func   uint32
	Depth  uint32

	ConstI32 int32
	ConstI64 int64
	ConstF32 float32
	ConstF64 float64

	Mem MemArg

	// BlockResult is the optional result type of a block/loop operator,
	// nil for a void block.
	BlockResult *types.Scalar
}

// OperatorReader yields the decoded operator stream for a single function
// body, in source order. Next returns ok=false with a nil error at a clean
// end of stream.
type OperatorReader interface {
	Next() (op Operator, ok bool, err error)
}

// FuncSignature is a function's parameter and result scalar kinds, as
// recorded in the module's type table.
type FuncSignature struct {
	Params  []types.Scalar
	Results []types.Scalar
}

// TypeTable resolves function indices to signatures.
type TypeTable interface {
	FuncSignature(funcIndex uint32) (FuncSignature, bool)
}

// MemoryDescriptor describes the module's linear memory.
type MemoryDescriptor interface {
	IsSixtyFour() bool
	HasMemory() bool
}
