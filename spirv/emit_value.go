package spirv

import (
	"fmt"
	"math"

	"github.com/gogpu/wasm2spirv/config"
	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/types"
)

// emitValue realizes v as a SPIR-V id, memoizing through v's own
// EmitterID cell so a shared subtree is translated exactly once regardless
// of how many anchors reference it.
func (e *Emitter) emitValue(v fg.Value) (uint32, error) {
	if id := *v.EmitterID(); id != 0 {
		return id, nil
	}

	var id uint32
	var err error
	switch val := v.(type) {
	case *fg.Integer:
		id, err = e.emitInteger(val)
	case *fg.Float:
		id, err = e.emitFloat(val)
	case *fg.Bool:
		id, err = e.emitBool(val)
	case *fg.Vector:
		id, err = e.emitVector(val)
	case *fg.Pointer:
		return e.pointerID(val)
	case *fg.Schrodinger:
		return 0, fmt.Errorf("spirv: unresolved schrödinger value reached emission")
	default:
		return 0, fmt.Errorf("spirv: unknown value kind %T", v)
	}
	if err != nil {
		return 0, err
	}
	*v.EmitterID() = id
	return id, nil
}

// valueTypeID returns the SPIR-V type id of the value a load/call/select
// produces, used as the result-type operand of the instruction that
// materializes it.
func (e *Emitter) valueTypeID(v fg.Value) (uint32, error) {
	switch val := v.(type) {
	case *fg.Integer:
		return e.scalarTypeID(val.Kind)
	case *fg.Float:
		return e.scalarTypeID(val.Kind)
	case *fg.Bool:
		return e.scalarTypeID(types.Bool)
	case *fg.Vector:
		return e.vectorTypeID(val.Elem, val.Count)
	case *fg.Pointer:
		return e.pointerTypeID(val.Class, val.Pointee)
	default:
		return 0, fmt.Errorf("spirv: cannot determine the type of %T", v)
	}
}

func (e *Emitter) scalarParam(src fg.ParamSource) (uint32, error) {
	id, ok := e.cur.scalarParamID[int(src.Index)]
	if !ok {
		return 0, fmt.Errorf("spirv: parameter %d has no scalar binding", src.Index)
	}
	return id, nil
}

// --- Integer -------------------------------------------------------------

func (e *Emitter) emitInteger(v *fg.Integer) (uint32, error) {
	switch src := v.Source.(type) {
	case fg.ConstSource:
		return e.internConstant(v.Kind, src.Bits)
	case fg.ParamSource:
		return e.scalarParam(src)
	case fg.LoadSource:
		return e.emitLoad(v, src)
	case fg.ExtractedSource:
		return e.emitExtracted(v, src)
	case fg.CallSource:
		return e.emitCallValue(v, src)
	case fg.ConversionSource:
		return e.emitIntConversion(v, src)
	case fg.UnarySource:
		return e.emitIntUnary(v, src)
	case fg.BinarySource:
		return e.emitIntBinary(v, src)
	case fg.SelectSource:
		return e.emitSelect(v, src)
	case fg.ArrayLengthSource:
		return e.emitArrayLength(src)
	default:
		return 0, fmt.Errorf("spirv: integer value has unsupported source %T", v.Source)
	}
}

func (e *Emitter) emitIntConversion(v *fg.Integer, src fg.ConversionSource) (uint32, error) {
	resultType, err := e.scalarTypeID(v.Kind)
	if err != nil {
		return 0, err
	}
	if src.Op == fg.ConvFromBool {
		return e.selectFromBool(v.Kind, src.Operand, resultType)
	}
	operandID, err := e.emitValue(src.Operand)
	if err != nil {
		return 0, err
	}
	switch src.Op {
	case fg.ConvFromLong:
		return e.builder.AddUnaryOp(OpUConvert, resultType, operandID), nil
	case fg.ConvFromShort:
		op := OpUConvert
		if src.Signed {
			op = OpSConvert
		}
		return e.builder.AddUnaryOp(op, resultType, operandID), nil
	case fg.ConvFromFloat:
		op := OpConvertFToU
		if src.Signed {
			op = OpConvertFToS
		}
		return e.builder.AddUnaryOp(op, resultType, operandID), nil
	default:
		return 0, fmt.Errorf("spirv: unsupported integer conversion %v", src.Op)
	}
}

func (e *Emitter) emitIntUnary(v *fg.Integer, src fg.UnarySource) (uint32, error) {
	resultType, err := e.scalarTypeID(v.Kind)
	if err != nil {
		return 0, err
	}
	operandID, err := e.emitValue(src.Operand)
	if err != nil {
		return 0, err
	}
	switch src.Op {
	case fg.UnaryNeg:
		return e.builder.AddUnaryOp(OpSNegate, resultType, operandID), nil
	case fg.UnaryNot:
		return e.builder.AddUnaryOp(OpNot, resultType, operandID), nil
	case fg.UnaryClz, fg.UnaryCtz, fg.UnaryPopcnt:
		return e.emitBitCountOp(v.Kind, src.Op, operandID, resultType)
	default:
		return 0, fmt.Errorf("spirv: unsupported integer unary op %v", src.Op)
	}
}

// emitBitCountOp lowers popcnt (a core SPIR-V instruction on every
// platform), and clz/ctz, which OpenCL.std exposes directly with
// WebAssembly-matching semantics but GLSL.std.450 does not: on GLSL the
// portable fallback is built from FindUMsb/FindILsb. Both return -1 for a
// zero operand: clz's (width-1) - FindUMsb already yields the bit width
// then, and ctz selects the bit width explicitly for a zero operand, so
// both match WebAssembly.
func (e *Emitter) emitBitCountOp(kind types.Scalar, op fg.UnaryOp, operand, resultType uint32) (uint32, error) {
	if op == fg.UnaryPopcnt {
		return e.builder.AddUnaryOp(OpBitCount, resultType, operand), nil
	}
	if e.extInstSet == config.ExtOpenCL {
		instr := OpenCLstd450Clz
		if op == fg.UnaryCtz {
			instr = OpenCLstd450Ctz
		}
		return e.builder.AddExtInst(resultType, e.extInstID, instr, operand), nil
	}
	if op == fg.UnaryCtz {
		lsb := e.builder.AddExtInst(resultType, e.extInstID, GLSLstd450FindILsb, operand)
		boolType, err := e.scalarTypeID(types.Bool)
		if err != nil {
			return 0, err
		}
		zero, err := e.internConstant(kind, 0)
		if err != nil {
			return 0, err
		}
		bitWidth, err := e.internConstant(kind, uint64(types.Bits(kind)))
		if err != nil {
			return 0, err
		}
		isZero := e.builder.AddBinaryOp(OpIEqual, boolType, operand, zero)
		return e.builder.AddSelect(resultType, isZero, bitWidth, lsb), nil
	}
	width := types.Bits(kind)
	widthMinus1, err := e.internConstant(kind, uint64(width-1))
	if err != nil {
		return 0, err
	}
	msb := e.builder.AddExtInst(resultType, e.extInstID, GLSLstd450FindUMsb, operand)
	return e.builder.AddBinaryOp(OpISub, resultType, widthMinus1, msb), nil
}

func (e *Emitter) emitIntBinary(v *fg.Integer, src fg.BinarySource) (uint32, error) {
	resultType, err := e.scalarTypeID(v.Kind)
	if err != nil {
		return 0, err
	}
	leftID, err := e.emitValue(src.Left)
	if err != nil {
		return 0, err
	}
	rightID, err := e.emitValue(src.Right)
	if err != nil {
		return 0, err
	}
	switch src.Op {
	case fg.BinAdd:
		return e.builder.AddBinaryOp(OpIAdd, resultType, leftID, rightID), nil
	case fg.BinSub:
		return e.builder.AddBinaryOp(OpISub, resultType, leftID, rightID), nil
	case fg.BinMul:
		return e.builder.AddBinaryOp(OpIMul, resultType, leftID, rightID), nil
	case fg.BinDivS:
		return e.builder.AddBinaryOp(OpSDiv, resultType, leftID, rightID), nil
	case fg.BinDivU:
		return e.builder.AddBinaryOp(OpUDiv, resultType, leftID, rightID), nil
	case fg.BinRemS:
		return e.builder.AddBinaryOp(OpSRem, resultType, leftID, rightID), nil
	case fg.BinRemU:
		return e.builder.AddBinaryOp(OpUMod, resultType, leftID, rightID), nil
	case fg.BinAnd:
		return e.builder.AddBinaryOp(OpBitwiseAnd, resultType, leftID, rightID), nil
	case fg.BinOr:
		return e.builder.AddBinaryOp(OpBitwiseOr, resultType, leftID, rightID), nil
	case fg.BinXor:
		return e.builder.AddBinaryOp(OpBitwiseXor, resultType, leftID, rightID), nil
	case fg.BinShl:
		return e.builder.AddBinaryOp(OpShiftLeftLogical, resultType, leftID, rightID), nil
	case fg.BinShrS:
		return e.builder.AddBinaryOp(OpShiftRightArithmetic, resultType, leftID, rightID), nil
	case fg.BinShrU:
		return e.builder.AddBinaryOp(OpShiftRightLogical, resultType, leftID, rightID), nil
	case fg.BinRotl, fg.BinRotr:
		return e.emitRotate(v.Kind, src.Op, leftID, rightID, resultType)
	default:
		return 0, fmt.Errorf("spirv: integer values carry no WebAssembly source operator for %v", src.Op)
	}
}

// emitRotate lowers rotl/rotr. OpenCL.std's Rotate instruction always
// rotates left, so rotr is expressed as a left rotate by width-n.
// GLSL.std.450 has no native rotate; the portable fallback is the
// standard shift-and-or identity.
func (e *Emitter) emitRotate(kind types.Scalar, op fg.BinaryOp, x, n, resultType uint32) (uint32, error) {
	width := types.Bits(kind)
	widthConst, err := e.internConstant(kind, uint64(width))
	if err != nil {
		return 0, err
	}
	if e.extInstSet == config.ExtOpenCL {
		shift := n
		if op == fg.BinRotr {
			shift = e.builder.AddBinaryOp(OpISub, resultType, widthConst, n)
		}
		return e.builder.AddExtInst(resultType, e.extInstID, OpenCLstd450Rotate, x, shift), nil
	}
	complement := e.builder.AddBinaryOp(OpISub, resultType, widthConst, n)
	var left, right uint32
	if op == fg.BinRotl {
		left = e.builder.AddBinaryOp(OpShiftLeftLogical, resultType, x, n)
		right = e.builder.AddBinaryOp(OpShiftRightLogical, resultType, x, complement)
	} else {
		left = e.builder.AddBinaryOp(OpShiftRightLogical, resultType, x, n)
		right = e.builder.AddBinaryOp(OpShiftLeftLogical, resultType, x, complement)
	}
	return e.builder.AddBinaryOp(OpBitwiseOr, resultType, left, right), nil
}

// --- Float -----------------------------------------------------------

func (e *Emitter) emitFloat(v *fg.Float) (uint32, error) {
	switch src := v.Source.(type) {
	case fg.ConstSource:
		return e.internConstant(v.Kind, src.Bits)
	case fg.ParamSource:
		return e.scalarParam(src)
	case fg.LoadSource:
		return e.emitLoad(v, src)
	case fg.ExtractedSource:
		return e.emitExtracted(v, src)
	case fg.CallSource:
		return e.emitCallValue(v, src)
	case fg.ConversionSource:
		return e.emitFloatConversion(v, src)
	case fg.UnarySource:
		return e.emitFloatUnary(v, src)
	case fg.BinarySource:
		return e.emitFloatBinary(v, src)
	case fg.SelectSource:
		return e.emitSelect(v, src)
	default:
		return 0, fmt.Errorf("spirv: float value has unsupported source %T", v.Source)
	}
}

func (e *Emitter) emitFloatConversion(v *fg.Float, src fg.ConversionSource) (uint32, error) {
	resultType, err := e.scalarTypeID(v.Kind)
	if err != nil {
		return 0, err
	}
	if src.Op == fg.ConvFromBool {
		return e.selectFromBool(v.Kind, src.Operand, resultType)
	}
	operandID, err := e.emitValue(src.Operand)
	if err != nil {
		return 0, err
	}
	switch src.Op {
	case fg.ConvFromInt:
		op := OpConvertUToF
		if src.Signed {
			op = OpConvertSToF
		}
		return e.builder.AddUnaryOp(op, resultType, operandID), nil
	case fg.ConvFloatToFloat:
		return e.builder.AddUnaryOp(OpFConvert, resultType, operandID), nil
	default:
		return 0, fmt.Errorf("spirv: unsupported float conversion %v", src.Op)
	}
}

// selectFromBool lowers a bool-to-number conversion as a select between the
// 1/0 (or 1.0/0.0) constants of kind, since neither extended instruction
// set offers a direct bool-to-scalar convert opcode.
func (e *Emitter) selectFromBool(kind types.Scalar, operand fg.Value, resultType uint32) (uint32, error) {
	condID, err := e.emitValue(operand)
	if err != nil {
		return 0, err
	}
	one, err := e.internConstant(kind, oneBitsFor(kind))
	if err != nil {
		return 0, err
	}
	zero, err := e.internConstant(kind, 0)
	if err != nil {
		return 0, err
	}
	return e.builder.AddSelect(resultType, condID, one, zero), nil
}

func oneBitsFor(kind types.Scalar) uint64 {
	switch kind {
	case types.F32:
		return uint64(math.Float32bits(1))
	case types.F64:
		return math.Float64bits(1)
	default:
		return 1
	}
}

func (e *Emitter) emitFloatUnary(v *fg.Float, src fg.UnarySource) (uint32, error) {
	resultType, err := e.scalarTypeID(v.Kind)
	if err != nil {
		return 0, err
	}
	operandID, err := e.emitValue(src.Operand)
	if err != nil {
		return 0, err
	}
	if src.Op == fg.UnaryNeg {
		return e.builder.AddUnaryOp(OpFNegate, resultType, operandID), nil
	}
	instr, err := e.floatUnaryInstr(src.Op)
	if err != nil {
		return 0, err
	}
	return e.builder.AddExtInst(resultType, e.extInstID, instr, operandID), nil
}

func (e *Emitter) floatUnaryInstr(op fg.UnaryOp) (uint32, error) {
	openCL := e.extInstSet == config.ExtOpenCL
	switch op {
	case fg.UnaryAbs:
		if openCL {
			return OpenCLstd450Fabs, nil
		}
		return GLSLstd450FAbs, nil
	case fg.UnarySqrt:
		if openCL {
			return OpenCLstd450Sqrt, nil
		}
		return GLSLstd450Sqrt, nil
	case fg.UnaryCeil:
		if openCL {
			return OpenCLstd450Ceil, nil
		}
		return GLSLstd450Ceil, nil
	case fg.UnaryFloor:
		if openCL {
			return OpenCLstd450Floor, nil
		}
		return GLSLstd450Floor, nil
	case fg.UnaryTrunc:
		if openCL {
			return OpenCLstd450Trunc, nil
		}
		return GLSLstd450Trunc, nil
	case fg.UnaryNearest:
		if openCL {
			return OpenCLstd450Rint, nil
		}
		return GLSLstd450RoundEven, nil
	default:
		return 0, fmt.Errorf("spirv: unsupported float unary op %v", op)
	}
}

func (e *Emitter) emitFloatBinary(v *fg.Float, src fg.BinarySource) (uint32, error) {
	resultType, err := e.scalarTypeID(v.Kind)
	if err != nil {
		return 0, err
	}
	leftID, err := e.emitValue(src.Left)
	if err != nil {
		return 0, err
	}
	rightID, err := e.emitValue(src.Right)
	if err != nil {
		return 0, err
	}
	switch src.Op {
	case fg.BinAdd:
		return e.builder.AddBinaryOp(OpFAdd, resultType, leftID, rightID), nil
	case fg.BinSub:
		return e.builder.AddBinaryOp(OpFSub, resultType, leftID, rightID), nil
	case fg.BinMul:
		return e.builder.AddBinaryOp(OpFMul, resultType, leftID, rightID), nil
	case fg.BinDivS, fg.BinDivU:
		return e.builder.AddBinaryOp(OpFDiv, resultType, leftID, rightID), nil
	case fg.BinMin:
		return e.emitFloatMinMax(v.Kind, false, leftID, rightID, resultType)
	case fg.BinMax:
		return e.emitFloatMinMax(v.Kind, true, leftID, rightID, resultType)
	case fg.BinCopysign:
		return e.emitCopysign(v.Kind, leftID, rightID, resultType)
	default:
		return 0, fmt.Errorf("spirv: unsupported float binary op %v", src.Op)
	}
}

// emitFloatMinMax lowers f32.min/max and f64.min/max. OpenCL.std's
// Fmin/Fmax already propagate NaN the way WebAssembly requires.
// GLSL.std.450's FMin/FMax instead discard a NaN operand (C fmin/fmax
// semantics), so on that platform the raw result is overridden with a
// quiet NaN whenever either operand is NaN.
func (e *Emitter) emitFloatMinMax(kind types.Scalar, isMax bool, left, right, resultType uint32) (uint32, error) {
	if e.extInstSet == config.ExtOpenCL {
		instr := OpenCLstd450Fmin
		if isMax {
			instr = OpenCLstd450Fmax
		}
		return e.builder.AddExtInst(resultType, e.extInstID, instr, left, right), nil
	}

	instr := GLSLstd450FMin
	if isMax {
		instr = GLSLstd450FMax
	}
	raw := e.builder.AddExtInst(resultType, e.extInstID, instr, left, right)

	boolType, err := e.scalarTypeID(types.Bool)
	if err != nil {
		return 0, err
	}
	leftNan := e.builder.AddUnaryOp(OpIsNan, boolType, left)
	rightNan := e.builder.AddUnaryOp(OpIsNan, boolType, right)
	anyNan := e.builder.AddBinaryOp(OpLogicalOr, boolType, leftNan, rightNan)

	nanConst, err := e.floatNaNConstant(kind)
	if err != nil {
		return 0, err
	}
	return e.builder.AddSelect(resultType, anyNan, nanConst, raw), nil
}

func (e *Emitter) floatNaNConstant(kind types.Scalar) (uint32, error) {
	if kind == types.F32 {
		return e.internConstant(kind, uint64(math.Float32bits(float32(math.NaN()))))
	}
	return e.internConstant(kind, math.Float64bits(math.NaN()))
}

// emitCopysign lowers f32.copysign/f64.copysign: the magnitude of the left
// operand combined with the sign bit of the right. OpenCL.std has a native
// Copysign; GLSL.std.450 has none, so it's synthesized from a bitcast to
// the equal-width integer type plus a masked bitwise-or.
func (e *Emitter) emitCopysign(kind types.Scalar, left, right, resultType uint32) (uint32, error) {
	if e.extInstSet == config.ExtOpenCL {
		return e.builder.AddExtInst(resultType, e.extInstID, OpenCLstd450Copysign, left, right), nil
	}
	intKind := types.I32
	signMask := uint64(0x80000000)
	magMask := uint64(0x7FFFFFFF)
	if kind == types.F64 {
		intKind = types.I64
		signMask = 0x8000000000000000
		magMask = 0x7FFFFFFFFFFFFFFF
	}
	intType, err := e.scalarTypeID(intKind)
	if err != nil {
		return 0, err
	}
	leftBits := e.builder.AddUnaryOp(OpBitcast, intType, left)
	rightBits := e.builder.AddUnaryOp(OpBitcast, intType, right)
	signConst, err := e.internConstant(intKind, signMask)
	if err != nil {
		return 0, err
	}
	magConst, err := e.internConstant(intKind, magMask)
	if err != nil {
		return 0, err
	}
	magnitude := e.builder.AddBinaryOp(OpBitwiseAnd, intType, leftBits, magConst)
	sign := e.builder.AddBinaryOp(OpBitwiseAnd, intType, rightBits, signConst)
	combined := e.builder.AddBinaryOp(OpBitwiseOr, intType, magnitude, sign)
	return e.builder.AddUnaryOp(OpBitcast, resultType, combined), nil
}

// --- Bool / comparisons ------------------------------------------------

func (e *Emitter) emitBool(v *fg.Bool) (uint32, error) {
	switch src := v.Source.(type) {
	case fg.ConstSource:
		return e.internConstant(types.Bool, src.Bits)
	case fg.ParamSource:
		return e.scalarParam(src)
	case fg.LoadSource:
		return e.emitLoad(v, src)
	case fg.ExtractedSource:
		return e.emitExtracted(v, src)
	case fg.CallSource:
		return e.emitCallValue(v, src)
	case fg.IntComparisonSource:
		return e.emitIntComparison(src)
	case fg.FloatComparisonSource:
		return e.emitFloatComparison(src)
	case fg.SelectSource:
		return e.emitSelect(v, src)
	default:
		return 0, fmt.Errorf("spirv: bool value has unsupported source %T", v.Source)
	}
}

func (e *Emitter) emitIntComparison(src fg.IntComparisonSource) (uint32, error) {
	resultType, err := e.scalarTypeID(types.Bool)
	if err != nil {
		return 0, err
	}
	leftID, err := e.emitValue(src.Left)
	if err != nil {
		return 0, err
	}
	rightID, err := e.emitValue(src.Right)
	if err != nil {
		return 0, err
	}
	var op OpCode
	switch src.Op {
	case fg.CmpEq:
		op = OpIEqual
	case fg.CmpNe:
		op = OpINotEqual
	case fg.CmpLtS:
		op = OpSLessThan
	case fg.CmpLtU:
		op = OpULessThan
	case fg.CmpLeS:
		op = OpSLessThanEqual
	case fg.CmpLeU:
		op = OpULessThanEqual
	case fg.CmpGtS:
		op = OpSGreaterThan
	case fg.CmpGtU:
		op = OpUGreaterThan
	case fg.CmpGeS:
		op = OpSGreaterThanEqual
	case fg.CmpGeU:
		op = OpUGreaterThanEqual
	default:
		return 0, fmt.Errorf("spirv: unsupported integer comparison %v", src.Op)
	}
	return e.builder.AddBinaryOp(op, resultType, leftID, rightID), nil
}

func (e *Emitter) emitFloatComparison(src fg.FloatComparisonSource) (uint32, error) {
	resultType, err := e.scalarTypeID(types.Bool)
	if err != nil {
		return 0, err
	}
	leftID, err := e.emitValue(src.Left)
	if err != nil {
		return 0, err
	}
	rightID, err := e.emitValue(src.Right)
	if err != nil {
		return 0, err
	}
	var op OpCode
	switch src.Op {
	case fg.CmpEq:
		op = OpFOrdEqual
	case fg.CmpNe:
		op = OpFUnordNotEqual
	case fg.CmpLtS, fg.CmpLtU:
		op = OpFOrdLessThan
	case fg.CmpLeS, fg.CmpLeU:
		op = OpFOrdLessThanEqual
	case fg.CmpGtS, fg.CmpGtU:
		op = OpFOrdGreaterThan
	case fg.CmpGeS, fg.CmpGeU:
		op = OpFOrdGreaterThanEqual
	default:
		return 0, fmt.Errorf("spirv: unsupported float comparison %v", src.Op)
	}
	return e.builder.AddBinaryOp(op, resultType, leftID, rightID), nil
}

// --- Vector --------------------------------------------------------------

func (e *Emitter) emitVector(v *fg.Vector) (uint32, error) {
	switch src := v.Source.(type) {
	case fg.LoadSource:
		return e.emitLoad(v, src)
	case fg.CallSource:
		return e.emitCallValue(v, src)
	case fg.SelectSource:
		return e.emitSelect(v, src)
	default:
		return 0, fmt.Errorf("spirv: vector value has unsupported source %T", v.Source)
	}
}

// --- shared source kinds (Load, Extracted, Call, Select, ArrayLength) --

func (e *Emitter) emitLoad(v fg.Value, src fg.LoadSource) (uint32, error) {
	ptrID, err := e.pointerID(src.Pointer)
	if err != nil {
		return 0, err
	}
	resultType, err := e.valueTypeID(v)
	if err != nil {
		return 0, err
	}
	if src.HasAlign {
		return e.builder.AddLoadAligned(resultType, ptrID, uint32(1)<<src.Log2Align), nil
	}
	return e.builder.AddLoad(resultType, ptrID), nil
}

func (e *Emitter) emitExtracted(v fg.Value, src fg.ExtractedSource) (uint32, error) {
	vecID, err := e.emitValue(src.Vector)
	if err != nil {
		return 0, err
	}
	idxID, err := e.emitValue(src.Index)
	if err != nil {
		return 0, err
	}
	resultType, err := e.valueTypeID(v)
	if err != nil {
		return 0, err
	}
	return e.builder.AddVectorExtractDynamic(resultType, vecID, idxID), nil
}

func (e *Emitter) emitCallValue(v fg.Value, src fg.CallSource) (uint32, error) {
	slot, ok := e.funcIndexSlot[src.FuncIndex]
	if !ok {
		return 0, fmt.Errorf("spirv: call to unknown function index %d", src.FuncIndex)
	}
	callee := e.funcStates[slot]
	args := make([]uint32, len(src.Args))
	for i, a := range src.Args {
		id, err := e.emitValue(a)
		if err != nil {
			return 0, err
		}
		args[i] = id
	}
	resultType, err := e.valueTypeID(v)
	if err != nil {
		return 0, err
	}
	return e.builder.AddFunctionCall(resultType, callee.funcID, args...), nil
}

func (e *Emitter) emitSelect(v fg.Value, src fg.SelectSource) (uint32, error) {
	condID, err := e.emitValue(src.Cond)
	if err != nil {
		return 0, err
	}
	trueID, err := e.emitValue(src.True)
	if err != nil {
		return 0, err
	}
	falseID, err := e.emitValue(src.False)
	if err != nil {
		return 0, err
	}
	resultType, err := e.valueTypeID(v)
	if err != nil {
		return 0, err
	}
	return e.builder.AddSelect(resultType, condID, trueID, falseID), nil
}

func (e *Emitter) emitArrayLength(src fg.ArrayLengthSource) (uint32, error) {
	structID, err := e.pointerID(src.Base)
	if err != nil {
		return 0, err
	}
	resultType, err := e.scalarTypeID(types.I32)
	if err != nil {
		return 0, err
	}
	return e.builder.AddArrayLength(resultType, structID, 0), nil
}
