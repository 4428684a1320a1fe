package frontend

import (
	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/types"
)

// --- constants ---------------------------------------------------------

func translateConstants(b *Block, op Operator, fc *FunctionContext) (Result, error) {
	switch op.Code {
	case OpI32Const:
		b.Stack.Push(fg.NewConstInteger(types.I32, uint64(uint32(op.ConstI32))))
	case OpI64Const:
		b.Stack.Push(fg.NewConstInteger(types.I64, uint64(op.ConstI64)))
	case OpF32Const:
		b.Stack.Push(fg.NewConstFloat32(op.ConstF32))
	case OpF64Const:
		b.Stack.Push(fg.NewConstFloat64(op.ConstF64))
	default:
		return NotFound, nil
	}
	return Found, nil
}

// --- control flow --------------------------------------------------------

func translateControlFlow(b *Block, op Operator, fc *FunctionContext) (Result, error) {
	switch op.Code {
	case OpUnreachable:
		*b.Anchors = append(*b.Anchors, fg.AnchorUnreachable{})
	case OpNop:
		*b.Anchors = append(*b.Anchors, fg.AnchorNop{})
	case OpDrop:
		if _, err := b.Stack.PopAny(); err != nil {
			return 0, err
		}
	case OpSelect:
		cond, err := b.Stack.Pop(types.Bool, fc)
		if err != nil {
			return 0, err
		}
		reject, err := b.Stack.PopAny()
		if err != nil {
			return 0, err
		}
		accept, err := b.Stack.PopAny()
		if err != nil {
			return 0, err
		}
		b.Stack.Push(fg.NewSelect(cond.(*fg.Bool), accept, reject))
	case OpBlock:
		if err := translateBlockOrLoop(b, fc, false); err != nil {
			return 0, err
		}
	case OpLoop:
		if err := translateBlockOrLoop(b, fc, true); err != nil {
			return 0, err
		}
	case OpBr:
		target, err := enclosingLabel(b, op.Depth)
		if err != nil {
			return 0, err
		}
		*b.Anchors = append(*b.Anchors, fg.AnchorBranch{Target: target})
		// Per Open Question: code between a br and the block's matching
		// end is unreachable WebAssembly; insert Unreachable so the anchor
		// termination invariant (exactly one terminator per block) holds
		// even if the translator keeps reading operators past this point.
		*b.Anchors = append(*b.Anchors, fg.AnchorUnreachable{})
	case OpBrIf:
		cond, err := b.Stack.Pop(types.Bool, fc)
		if err != nil {
			return 0, err
		}
		target, err := enclosingLabel(b, op.Depth)
		if err != nil {
			return 0, err
		}
		falseLabel := fg.NewLabel()
		*b.Anchors = append(*b.Anchors, fg.AnchorBranchConditional{Cond: cond.(*fg.Bool), True: target, False: falseLabel})
		*b.Anchors = append(*b.Anchors, fg.AnchorLabel{Target: falseLabel})
	case OpReturn:
		if err := emitEnd(b, EndReturn{Result: blockReturnType(b)}, fc); err != nil {
			return 0, err
		}
		return EOF, nil
	case OpCall:
		if err := translateCall(b, op, fc); err != nil {
			return 0, err
		}
	case OpEnd:
		if err := emitEnd(b, b.End, fc); err != nil {
			return 0, err
		}
		return EOF, nil
	default:
		return NotFound, nil
	}
	return Found, nil
}

func blockReturnType(b *Block) *types.Scalar {
	if r, ok := b.End.(EndReturn); ok {
		return r.Result
	}
	return nil
}

func emitEnd(b *Block, end EndPolicy, fc *FunctionContext) error {
	switch e := end.(type) {
	case EndReturn:
		if e.Result == nil {
			*b.Anchors = append(*b.Anchors, fg.AnchorReturn{})
			return nil
		}
		v, err := b.Stack.Pop(*e.Result, fc)
		if err != nil {
			return err
		}
		*b.Anchors = append(*b.Anchors, fg.AnchorReturn{Value: v})
		return nil
	case EndUnreachable:
		*b.Anchors = append(*b.Anchors, fg.AnchorUnreachable{})
		return nil
	default:
		return types.Unexpectedf("unknown end policy %T", end)
	}
}

func enclosingLabel(b *Block, depth uint32) (*fg.Label, error) {
	if int(depth) >= len(b.Enclosing) {
		return nil, types.Errf("Unknown instruction: branch depth %d exceeds enclosing scopes", depth)
	}
	return b.Enclosing[depth].Label, nil
}

// translateBlockOrLoop implements Control flow's `block`/`loop`
// handling: enter via an unconditional Branch to a fresh start label,
// recursively translate the nested scope against the shared operator
// reader and anchor stream, then (blocks only) anchor the end label that
// `br` targets resolve to.
func translateBlockOrLoop(b *Block, fc *FunctionContext, isLoop bool) error {
	start := fg.NewLabel()
	*b.Anchors = append(*b.Anchors, fg.AnchorBranch{Target: start})
	*b.Anchors = append(*b.Anchors, fg.AnchorLabel{Target: start})

	target := start
	if !isLoop {
		target = fg.NewLabel()
	}

	inner := &Block{
		Reader:    b.Reader,
		End:       EndUnreachable{},
		Enclosing: append([]EnclosingLabel{{Label: target, IsLoop: isLoop}}, b.Enclosing...),
		Anchors:   b.Anchors,
	}
	if err := Translate(inner, fc); err != nil {
		return err
	}

	if !isLoop {
		*b.Anchors = append(*b.Anchors, fg.AnchorLabel{Target: target})
	}
	return nil
}

func translateCall(b *Block, op Operator, fc *FunctionContext) error {
	if cb, ok := fc.Imports[op.Func]; ok {
		return cb(b, fc)
	}
	sig, ok := fc.Types.FuncSignature(op.Func)
	if !ok {
		return types.Errf("Unknown instruction: call to undefined function %d", op.Func)
	}
	args := make([]fg.Value, len(sig.Params))
	for i := len(sig.Params) - 1; i >= 0; i-- {
		v, err := b.Stack.Pop(sig.Params[i], fc)
		if err != nil {
			return err
		}
		args[i] = v
	}
	if len(sig.Results) == 0 {
		*b.Anchors = append(*b.Anchors, fg.AnchorFunctionCall{FuncIndex: op.Func, Args: args})
		return nil
	}
	if len(sig.Results) != 1 {
		return types.Errf("Function can only have a single result value")
	}
	result := sig.Results[0]
	src := fg.CallSource{FuncIndex: op.Func, Args: args}
	switch {
	case result == types.Bool:
		b.Stack.Push(&fg.Bool{Source: src})
	case result.IsFloat():
		b.Stack.Push(&fg.Float{Source: src, Kind: result})
	default:
		b.Stack.Push(&fg.Integer{Source: src, Kind: result})
	}
	return nil
}

// --- conversion ----------------------------------------------------------

func translateConversion(b *Block, op Operator, fc *FunctionContext) (Result, error) {
	switch op.Code {
	case OpI32WrapI64:
		v, err := b.Stack.Pop(types.I64, fc)
		if err != nil {
			return 0, err
		}
		b.Stack.Push(fg.NewFromLong(v.(*fg.Integer)))
	case OpI64ExtendI32S, OpI64ExtendI32U:
		v, err := b.Stack.Pop(types.I32, fc)
		if err != nil {
			return 0, err
		}
		b.Stack.Push(fg.NewFromShort(v.(*fg.Integer), op.Code == OpI64ExtendI32S))
	case OpI32TruncF32S, OpI32TruncF32U, OpI32TruncF64S, OpI32TruncF64U,
		OpI64TruncF32S, OpI64TruncF32U, OpI64TruncF64S, OpI64TruncF64U:
		srcKind := types.F32
		if op.Code == OpI32TruncF64S || op.Code == OpI32TruncF64U || op.Code == OpI64TruncF64S || op.Code == OpI64TruncF64U {
			srcKind = types.F64
		}
		dstKind := types.I32
		if op.Code == OpI64TruncF32S || op.Code == OpI64TruncF32U || op.Code == OpI64TruncF64S || op.Code == OpI64TruncF64U {
			dstKind = types.I64
		}
		signed := op.Code == OpI32TruncF32S || op.Code == OpI32TruncF64S || op.Code == OpI64TruncF32S || op.Code == OpI64TruncF64S
		v, err := b.Stack.Pop(srcKind, fc)
		if err != nil {
			return 0, err
		}
		b.Stack.Push(fg.NewFloatToInt(dstKind, v.(*fg.Float), signed))
	case OpF32ConvertI32S, OpF32ConvertI32U, OpF32ConvertI64S, OpF32ConvertI64U,
		OpF64ConvertI32S, OpF64ConvertI32U, OpF64ConvertI64S, OpF64ConvertI64U:
		srcKind := types.I32
		if op.Code == OpF32ConvertI64S || op.Code == OpF32ConvertI64U || op.Code == OpF64ConvertI64S || op.Code == OpF64ConvertI64U {
			srcKind = types.I64
		}
		dstKind := types.F32
		if op.Code == OpF64ConvertI32S || op.Code == OpF64ConvertI32U || op.Code == OpF64ConvertI64S || op.Code == OpF64ConvertI64U {
			dstKind = types.F64
		}
		signed := op.Code == OpF32ConvertI32S || op.Code == OpF32ConvertI64S || op.Code == OpF64ConvertI32S || op.Code == OpF64ConvertI64S
		v, err := b.Stack.Pop(srcKind, fc)
		if err != nil {
			return 0, err
		}
		b.Stack.Push(fg.NewIntToFloat(dstKind, v.(*fg.Integer), signed))
	case OpF32DemoteF64:
		v, err := b.Stack.Pop(types.F64, fc)
		if err != nil {
			return 0, err
		}
		b.Stack.Push(fg.NewFloatDemoteOrPromote(types.F32, v.(*fg.Float)))
	case OpF64PromoteF32:
		v, err := b.Stack.Pop(types.F32, fc)
		if err != nil {
			return 0, err
		}
		b.Stack.Push(fg.NewFloatDemoteOrPromote(types.F64, v.(*fg.Float)))
	default:
		return NotFound, nil
	}
	return Found, nil
}

// --- variables -------------------------------------------------------------

func translateVariables(b *Block, op Operator, fc *FunctionContext) (Result, error) {
	switch op.Code {
	case OpLocalGet:
		slot, err := fc.local(op.Local)
		if err != nil {
			return 0, err
		}
		v, err := slot.Get()
		if err != nil {
			return 0, err
		}
		b.Stack.Push(v)
	case OpLocalSet, OpLocalTee:
		slot, err := fc.local(op.Local)
		if err != nil {
			return 0, err
		}
		var v fg.Value
		if op.Code == OpLocalTee {
			v, err = b.Stack.PeekAny()
		} else {
			v, err = b.Stack.PopAny()
		}
		if err != nil {
			return 0, err
		}
		anchors, err := slot.Set(v)
		if err != nil {
			return 0, err
		}
		for _, a := range anchors {
			*b.Anchors = append(*b.Anchors, a)
		}
	case OpGlobalGet:
		g, err := fc.global(op.Global)
		if err != nil {
			return 0, err
		}
		b.Stack.Push(fg.Load(g.Pointer, 0, false))
	case OpGlobalSet:
		g, err := fc.global(op.Global)
		if err != nil {
			return 0, err
		}
		if !g.Mutable {
			return 0, types.Errf("Tried to update a constant global variable")
		}
		v, err := b.Stack.PopAny()
		if err != nil {
			return 0, err
		}
		*b.Anchors = append(*b.Anchors, fg.Store(g.Pointer, v, 0, false))
	default:
		return NotFound, nil
	}
	return Found, nil
}

// --- memory ------------------------------------------------------------

// loadSpec describes one memory load operator: the scalar it pushes, and
// (for narrow loads, i.e. i32.load8_u) the bit width to mask/sign-extend
// from, which always matches the operator's own declared width regardless
// of the result kind.
type loadSpec struct {
	result     types.Scalar
	narrowBits uint32
	signed     bool
}

var loadSpecs = map[OpCode]loadSpec{
	OpI32Load:    {result: types.I32},
	OpI64Load:    {result: types.I64},
	OpF32Load:    {result: types.F32},
	OpF64Load:    {result: types.F64},
	OpI32Load8S:  {result: types.I32, narrowBits: 8, signed: true},
	OpI32Load8U:  {result: types.I32, narrowBits: 8},
	OpI32Load16S: {result: types.I32, narrowBits: 16, signed: true},
	OpI32Load16U: {result: types.I32, narrowBits: 16},
	OpI64Load8S:  {result: types.I64, narrowBits: 8, signed: true},
	OpI64Load8U:  {result: types.I64, narrowBits: 8},
	OpI64Load16S: {result: types.I64, narrowBits: 16, signed: true},
	OpI64Load16U: {result: types.I64, narrowBits: 16},
	OpI64Load32S: {result: types.I64, narrowBits: 32, signed: true},
	OpI64Load32U: {result: types.I64, narrowBits: 32},
}

var storeScalars = map[OpCode]types.Scalar{
	OpI32Store: types.I32, OpI64Store: types.I64, OpF32Store: types.F32, OpF64Store: types.F64,
	OpI32Store8: types.I32, OpI32Store16: types.I32,
	OpI64Store8: types.I64, OpI64Store16: types.I64, OpI64Store32: types.I64,
}

func translateMemory(b *Block, op Operator, fc *FunctionContext) (Result, error) {
	if spec, ok := loadSpecs[op.Code]; ok {
		addr, err := b.Stack.PopAny()
		if err != nil {
			return 0, err
		}
		ptr, err := applyMemArg(addr, op.Mem, fc, types.ScalarPointee(spec.result))
		if err != nil {
			return 0, err
		}
		loaded := fg.Load(ptr, op.Mem.Log2Align, op.Mem.HasAlign)
		if spec.narrowBits != 0 {
			loaded, err = maskNarrow(loaded.(*fg.Integer), spec.narrowBits, spec.signed)
			if err != nil {
				return 0, err
			}
		}
		b.Stack.Push(loaded)
		return Found, nil
	}
	if scalar, ok := storeScalars[op.Code]; ok {
		value, err := b.Stack.Pop(scalar, fc)
		if err != nil {
			return 0, err
		}
		addr, err := b.Stack.PopAny()
		if err != nil {
			return 0, err
		}
		ptr, err := applyMemArg(addr, op.Mem, fc, types.ScalarPointee(scalar))
		if err != nil {
			return 0, err
		}
		*b.Anchors = append(*b.Anchors, fg.Store(ptr, value, op.Mem.Log2Align, op.Mem.HasAlign))
		return Found, nil
	}
	switch op.Code {
	case OpMemorySize:
		if fc.GrowError == GrowHard {
			return 0, types.Errf("Spirv cannot allocate memory")
		}
		b.Stack.Push(fg.NewConstInteger(fc.isize(), maskFor(fc.isize())))
	case OpMemoryGrow:
		return 0, types.Errf("Memory size cannot be grown")
	default:
		return NotFound, nil
	}
	return Found, nil
}

func maskFor(kind types.Scalar) uint64 {
	if kind == types.I32 {
		return 0xFFFFFFFF // -1 as isize, per the "soft" memory.size policy
	}
	return 0xFFFFFFFFFFFFFFFF
}

// linearMemoryClass picks the storage class a raw WebAssembly address
// reinterprets into: CrossWorkgroup under a physical addressing model
// (the conventional class for kernel-style linear buffers), Function
// otherwise (matching the backing class Schrödinger locals already use).
func (c *FunctionContext) linearMemoryClass() types.StorageClass {
	if c.Addressing.IsPhysical() {
		return types.StorageCrossWorkgroup
	}
	return types.StorageFunction
}

// applyMemArg implements the address-plus-static-offset step shared by
// every load/store translator: the popped address is
// coerced to a pointer over the narrow/result pointee, then the
// operator's static byte offset is applied as a pointer access.
func applyMemArg(addr fg.Value, mem MemArg, fc *FunctionContext, pointee types.Pointee) (*fg.Pointer, error) {
	base, err := CoercePointer(addr, fc, fc.linearMemoryClass(), pointee, types.Skinny)
	if err != nil {
		return nil, err
	}
	if mem.Offset == 0 {
		return base, nil
	}
	offset := fg.NewConstInteger(fc.isize(), mem.Offset)
	return fg.Access(base, offset, fc.Addressing)
}

// maskNarrow implements the narrow-load masking rule: a signed narrow load sign-extends
// by shifting left, then arithmetic-shifting right, by the kind's width
// minus the narrow width; an unsigned one masks with a zero-extending AND.
func maskNarrow(v *fg.Integer, bits uint32, signed bool) (*fg.Integer, error) {
	if !signed {
		mask := uint64(1)<<bits - 1
		return fg.NewBinaryInteger(v.Kind, fg.BinAnd, v, fg.NewConstInteger(v.Kind, mask))
	}
	// Sign-extend by shifting the narrow field up against the top of the
	// scalar then back down arithmetically.
	shift := uint64(types.Bits(v.Kind)) - uint64(bits)
	shl := uint64(shift)
	shifted, err := fg.NewBinaryInteger(v.Kind, fg.BinShl, v, fg.NewConstInteger(v.Kind, shl))
	if err != nil {
		return nil, err
	}
	return fg.NewBinaryInteger(v.Kind, fg.BinShrS, shifted, fg.NewConstInteger(v.Kind, shl))
}

// --- arithmetic ----------------------------------------------------------

var intBinaryOps = map[OpCode]fg.BinaryOp{
	OpI32Add: fg.BinAdd, OpI32Sub: fg.BinSub, OpI32Mul: fg.BinMul,
	OpI32DivS: fg.BinDivS, OpI32DivU: fg.BinDivU, OpI32RemS: fg.BinRemS, OpI32RemU: fg.BinRemU,
	OpI64Add: fg.BinAdd, OpI64Sub: fg.BinSub, OpI64Mul: fg.BinMul,
	OpI64DivS: fg.BinDivS, OpI64DivU: fg.BinDivU, OpI64RemS: fg.BinRemS, OpI64RemU: fg.BinRemU,
}

var intUnaryOps = map[OpCode]fg.UnaryOp{
	OpI32Clz: fg.UnaryClz, OpI32Ctz: fg.UnaryCtz, OpI32Popcnt: fg.UnaryPopcnt,
	OpI64Clz: fg.UnaryClz, OpI64Ctz: fg.UnaryCtz, OpI64Popcnt: fg.UnaryPopcnt,
}

var floatBinaryOps = map[OpCode]fg.BinaryOp{
	OpF32Add: fg.BinAdd, OpF32Sub: fg.BinSub, OpF32Mul: fg.BinMul, OpF32Div: fg.BinDivS,
	OpF32Min: fg.BinMin, OpF32Max: fg.BinMax, OpF32Copysign: fg.BinCopysign,
	OpF64Add: fg.BinAdd, OpF64Sub: fg.BinSub, OpF64Mul: fg.BinMul, OpF64Div: fg.BinDivS,
	OpF64Min: fg.BinMin, OpF64Max: fg.BinMax, OpF64Copysign: fg.BinCopysign,
}

var floatUnaryOps = map[OpCode]fg.UnaryOp{
	OpF32Abs: fg.UnaryAbs, OpF32Neg: fg.UnaryNeg, OpF32Sqrt: fg.UnarySqrt,
	OpF32Ceil: fg.UnaryCeil, OpF32Floor: fg.UnaryFloor, OpF32Trunc: fg.UnaryTrunc, OpF32Nearest: fg.UnaryNearest,
	OpF64Abs: fg.UnaryAbs, OpF64Neg: fg.UnaryNeg, OpF64Sqrt: fg.UnarySqrt,
	OpF64Ceil: fg.UnaryCeil, OpF64Floor: fg.UnaryFloor, OpF64Trunc: fg.UnaryTrunc, OpF64Nearest: fg.UnaryNearest,
}

func intKindOf(op OpCode) types.Scalar {
	switch op {
	case OpI32Add, OpI32Sub, OpI32Mul, OpI32DivS, OpI32DivU, OpI32RemS, OpI32RemU,
		OpI32Clz, OpI32Ctz, OpI32Popcnt,
		OpI32And, OpI32Or, OpI32Xor, OpI32Shl, OpI32ShrS, OpI32ShrU, OpI32Rotl, OpI32Rotr:
		return types.I32
	default:
		return types.I64
	}
}

func floatKindOf(op OpCode) types.Scalar {
	switch op {
	case OpF32Add, OpF32Sub, OpF32Mul, OpF32Div, OpF32Min, OpF32Max, OpF32Copysign,
		OpF32Abs, OpF32Neg, OpF32Sqrt, OpF32Ceil, OpF32Floor, OpF32Trunc, OpF32Nearest:
		return types.F32
	default:
		return types.F64
	}
}

func translateArithmetic(b *Block, op Operator, fc *FunctionContext) (Result, error) {
	if bop, ok := intBinaryOps[op.Code]; ok {
		kind := intKindOf(op.Code)
		rhs, err := b.Stack.Pop(kind, fc)
		if err != nil {
			return 0, err
		}
		lhs, err := b.Stack.Pop(kind, fc)
		if err != nil {
			return 0, err
		}
		v, err := fg.NewBinaryInteger(kind, bop, lhs, rhs)
		if err != nil {
			return 0, err
		}
		b.Stack.Push(v)
		return Found, nil
	}
	if uop, ok := intUnaryOps[op.Code]; ok {
		kind := intKindOf(op.Code)
		v, err := b.Stack.Pop(kind, fc)
		if err != nil {
			return 0, err
		}
		b.Stack.Push(fg.NewUnaryInteger(kind, uop, v))
		return Found, nil
	}
	if bop, ok := floatBinaryOps[op.Code]; ok {
		kind := floatKindOf(op.Code)
		rhs, err := b.Stack.Pop(kind, fc)
		if err != nil {
			return 0, err
		}
		lhs, err := b.Stack.Pop(kind, fc)
		if err != nil {
			return 0, err
		}
		v, err := fg.NewBinaryFloat(kind, bop, lhs, rhs)
		if err != nil {
			return 0, err
		}
		b.Stack.Push(v)
		return Found, nil
	}
	if uop, ok := floatUnaryOps[op.Code]; ok {
		kind := floatKindOf(op.Code)
		v, err := b.Stack.Pop(kind, fc)
		if err != nil {
			return 0, err
		}
		b.Stack.Push(fg.NewUnaryFloat(kind, uop, v))
		return Found, nil
	}
	return NotFound, nil
}

// --- logic (bitwise) ------------------------------------------------------

var bitwiseOps = map[OpCode]fg.BinaryOp{
	OpI32And: fg.BinAnd, OpI32Or: fg.BinOr, OpI32Xor: fg.BinXor,
	OpI32Shl: fg.BinShl, OpI32ShrS: fg.BinShrS, OpI32ShrU: fg.BinShrU,
	OpI32Rotl: fg.BinRotl, OpI32Rotr: fg.BinRotr,
	OpI64And: fg.BinAnd, OpI64Or: fg.BinOr, OpI64Xor: fg.BinXor,
	OpI64Shl: fg.BinShl, OpI64ShrS: fg.BinShrS, OpI64ShrU: fg.BinShrU,
	OpI64Rotl: fg.BinRotl, OpI64Rotr: fg.BinRotr,
}

func translateLogic(b *Block, op Operator, fc *FunctionContext) (Result, error) {
	bop, ok := bitwiseOps[op.Code]
	if !ok {
		return NotFound, nil
	}
	kind := intKindOf(op.Code)
	rhs, err := b.Stack.Pop(kind, fc)
	if err != nil {
		return 0, err
	}
	lhs, err := b.Stack.Pop(kind, fc)
	if err != nil {
		return 0, err
	}
	v, err := fg.NewBinaryInteger(kind, bop, lhs, rhs)
	if err != nil {
		return 0, err
	}
	b.Stack.Push(v)
	return Found, nil
}

// --- comparison ----------------------------------------------------------

var intCompareOps = map[OpCode]struct {
	op     fg.CompareOp
	signed bool
}{
	OpI32Eq: {fg.CmpEq, false}, OpI32Ne: {fg.CmpNe, false},
	OpI32LtS: {fg.CmpLtS, true}, OpI32LtU: {fg.CmpLtU, false},
	OpI32LeS: {fg.CmpLeS, true}, OpI32LeU: {fg.CmpLeU, false},
	OpI32GtS: {fg.CmpGtS, true}, OpI32GtU: {fg.CmpGtU, false},
	OpI32GeS: {fg.CmpGeS, true}, OpI32GeU: {fg.CmpGeU, false},
	OpI64Eq: {fg.CmpEq, false}, OpI64Ne: {fg.CmpNe, false},
	OpI64LtS: {fg.CmpLtS, true}, OpI64LtU: {fg.CmpLtU, false},
	OpI64LeS: {fg.CmpLeS, true}, OpI64LeU: {fg.CmpLeU, false},
	OpI64GtS: {fg.CmpGtS, true}, OpI64GtU: {fg.CmpGtU, false},
	OpI64GeS: {fg.CmpGeS, true}, OpI64GeU: {fg.CmpGeU, false},
}

var floatCompareOps = map[OpCode]fg.CompareOp{
	OpF32Eq: fg.CmpEq, OpF32Ne: fg.CmpNe, OpF32Lt: fg.CmpLtS, OpF32Le: fg.CmpLeS, OpF32Gt: fg.CmpGtS, OpF32Ge: fg.CmpGeS,
	OpF64Eq: fg.CmpEq, OpF64Ne: fg.CmpNe, OpF64Lt: fg.CmpLtS, OpF64Le: fg.CmpLeS, OpF64Gt: fg.CmpGtS, OpF64Ge: fg.CmpGeS,
}

func translateComparison(b *Block, op Operator, fc *FunctionContext) (Result, error) {
	if op.Code == OpI32Eqz || op.Code == OpI64Eqz {
		kind := types.I32
		if op.Code == OpI64Eqz {
			kind = types.I64
		}
		v, err := b.Stack.Pop(kind, fc)
		if err != nil {
			return 0, err
		}
		bv, err := fg.NewIntComparison(fg.CmpEq, false, v.(*fg.Integer), fg.NewConstInteger(kind, 0))
		if err != nil {
			return 0, err
		}
		b.Stack.Push(bv)
		return Found, nil
	}
	if cmp, ok := intCompareOps[op.Code]; ok {
		kind := intCompareKind(op.Code)
		rhs, err := b.Stack.Pop(kind, fc)
		if err != nil {
			return 0, err
		}
		lhs, err := b.Stack.Pop(kind, fc)
		if err != nil {
			return 0, err
		}
		v, err := fg.NewIntComparison(cmp.op, cmp.signed, lhs.(*fg.Integer), rhs.(*fg.Integer))
		if err != nil {
			return 0, err
		}
		b.Stack.Push(v)
		return Found, nil
	}
	if cmp, ok := floatCompareOps[op.Code]; ok {
		kind := floatCompareKind(op.Code)
		rhs, err := b.Stack.Pop(kind, fc)
		if err != nil {
			return 0, err
		}
		lhs, err := b.Stack.Pop(kind, fc)
		if err != nil {
			return 0, err
		}
		v, err := fg.NewFloatComparison(cmp, lhs.(*fg.Float), rhs.(*fg.Float))
		if err != nil {
			return 0, err
		}
		b.Stack.Push(v)
		return Found, nil
	}
	return NotFound, nil
}

func intCompareKind(op OpCode) types.Scalar {
	switch op {
	case OpI32Eq, OpI32Ne, OpI32LtS, OpI32LtU, OpI32LeS, OpI32LeU, OpI32GtS, OpI32GtU, OpI32GeS, OpI32GeU:
		return types.I32
	default:
		return types.I64
	}
}

func floatCompareKind(op OpCode) types.Scalar {
	switch op {
	case OpF32Eq, OpF32Ne, OpF32Lt, OpF32Le, OpF32Gt, OpF32Ge:
		return types.F32
	default:
		return types.F64
	}
}
