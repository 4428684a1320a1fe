package spirv

import (
	"fmt"

	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/types"
)

// pointerID realizes p as a SPIR-V id, memoizing through p's own
// EmitterID cell exactly like emitValue does for every other value kind.
// Pointers reach here through every Source a *fg.Pointer can carry: the
// canonical occurrence of a local/global/extern-param variable, an
// access-chain step, a cast, a raw-integer reinterpretation, or a select
// between two pointers.
func (e *Emitter) pointerID(p *fg.Pointer) (uint32, error) {
	if id := *p.EmitterID(); id != 0 {
		return id, nil
	}

	var id uint32
	var err error
	switch src := p.Source.(type) {
	case fg.VariableSource:
		id, err = e.variablePointerID(p, src)
	case fg.AccessSource:
		id, err = e.accessPointerID(p, src)
	case fg.CastSource:
		id, err = e.castPointerID(p, src)
	case fg.FromIntegerSource:
		id, err = e.fromIntegerPointerID(p, src)
	case fg.SelectSource:
		id, err = e.emitSelect(p, src)
	default:
		return 0, fmt.Errorf("spirv: pointer value has unsupported source %T", p.Source)
	}
	if err != nil {
		return 0, err
	}
	*p.EmitterID() = id
	return id, nil
}

// variablePointerID resolves the canonical occurrence of a local, global,
// or extern-param variable's address to its backing OpVariable id.
func (e *Emitter) variablePointerID(p *fg.Pointer, src fg.VariableSource) (uint32, error) {
	switch src.Kind {
	case fg.VariableLocal:
		typeID, err := e.pointerTypeID(p.Class, p.Pointee)
		if err != nil {
			return 0, err
		}
		id, next := e.builder.InsertLocalVariableAt(e.cur.varInsertPos, typeID)
		e.cur.varInsertPos = next
		return id, nil

	case fg.VariableGlobal:
		// emitGlobals/declareInterfaceVariable stamp a global's EmitterID
		// before any function body runs; reaching here with none set means
		// the pointer was never registered as a module global or interface
		// variable.
		return 0, fmt.Errorf("spirv: global variable %q was never declared", src.Name)

	case fg.VariableExternParam:
		return e.externParamPointerID(p, src)

	default:
		return 0, fmt.Errorf("spirv: unknown variable kind %v", src.Kind)
	}
}

// externParamPointerID resolves a pointer supplied from outside the
// function body: either a real OpFunctionParameter (materializeParameter's
// "%paramN" extern pointers), or a descriptor-set binding, which has no
// function argument of its own and is instead lazily declared here as a
// global variable decorated with its set/binding.
func (e *Emitter) externParamPointerID(p *fg.Pointer, src fg.VariableSource) (uint32, error) {
	if idx, ok := parseSuffix(src.Name, "%param"); ok {
		if id, ok := e.cur.ptrArgID[idx]; ok {
			return id, nil
		}
	}

	set, binding, ok := parseBinding(src.Name)
	if !ok {
		return 0, fmt.Errorf("spirv: extern parameter %q is neither a function argument nor a descriptor-set binding", src.Name)
	}
	typeID, err := e.pointerTypeID(p.Class, p.Pointee)
	if err != nil {
		return 0, err
	}
	id := e.builder.AddVariable(typeID, domainStorageClass(p.Class))
	e.builder.AddDecorate(id, DecorationDescriptorSet, set)
	e.builder.AddDecorate(id, DecorationBinding, binding)
	return id, nil
}

// accessPointerID lowers Pointer.access: autoAccessZero's zero-index wrap
// of a structured pointee, a byte-offset index into a structured-array
// pointee (fat or skinny), or ptr-access-chain arithmetic over a Skinny
// pointer to a plain scalar under a physical addressing model.
func (e *Emitter) accessPointerID(p *fg.Pointer, src fg.AccessSource) (uint32, error) {
	baseID, err := e.pointerID(src.Base)
	if err != nil {
		return 0, err
	}

	if p.Pointee.IsWrapped() && p.Pointee.Composite.Kind != types.CompositeStructuredArray {
		resultType, err := e.pointerTypeID(p.Class, types.ScalarPointee(p.Pointee.Composite.Elem))
		if err != nil {
			return 0, err
		}
		zero, err := e.internConstant(types.I32, 0)
		if err != nil {
			return 0, err
		}
		return e.builder.AddAccessChain(resultType, baseID, zero), nil
	}

	if p.Pointee.Composite != nil && p.Pointee.Composite.Kind == types.CompositeStructuredArray {
		elem := p.Pointee.Composite.Elem
		offset := src.ByteOffset
		if p.Kind == types.Fat {
			offset = p.Offset
		}
		idxID, err := e.divideByStride(offset, types.ByteSize(elem))
		if err != nil {
			return 0, err
		}
		zero, err := e.internConstant(types.I32, 0)
		if err != nil {
			return 0, err
		}
		resultType, err := e.pointerTypeID(p.Class, types.ScalarPointee(elem))
		if err != nil {
			return 0, err
		}
		return e.builder.AddAccessChain(resultType, baseID, zero, idxID), nil
	}

	// Skinny pointer to a plain scalar: only legal under a physical
	// addressing model (enforced when the graph node was constructed).
	if err := e.requireCapability(types.CapAddresses); err != nil {
		return 0, err
	}
	idxID, err := e.divideByStride(src.ByteOffset, types.ByteSize(p.Pointee.Scalar))
	if err != nil {
		return 0, err
	}
	resultType, err := e.pointerTypeID(p.Class, p.Pointee)
	if err != nil {
		return 0, err
	}
	return e.builder.AddPtrAccessChain(resultType, baseID, idxID), nil
}

// divideByStride converts a byte offset into an element index, skipping
// the division entirely when the element is single-byte.
func (e *Emitter) divideByStride(offset *fg.Integer, stride uint32) (uint32, error) {
	offsetID, err := e.emitValue(offset)
	if err != nil {
		return 0, err
	}
	if stride == 1 {
		return offsetID, nil
	}
	resultType, err := e.scalarTypeID(offset.Kind)
	if err != nil {
		return 0, err
	}
	strideID, err := e.internConstant(offset.Kind, uint64(stride))
	if err != nil {
		return 0, err
	}
	return e.builder.AddBinaryOp(OpUDiv, resultType, offsetID, strideID), nil
}

// castPointerID lowers Pointer.cast: OpBitcast to the new pointee's
// pointer type (a no-op cast never reaches here; fg.Cast returns the
// original pointer unchanged when the pointee already matches).
func (e *Emitter) castPointerID(p *fg.Pointer, src fg.CastSource) (uint32, error) {
	baseID, err := e.pointerID(src.Base)
	if err != nil {
		return 0, err
	}
	resultType, err := e.pointerTypeID(p.Class, p.Pointee)
	if err != nil {
		return 0, err
	}
	return e.builder.AddUnaryOp(OpBitcast, resultType, baseID), nil
}

// fromIntegerPointerID lowers Pointer.from_integer: OpConvertUToPtr
// reinterpreting a raw address, used for WebAssembly linear-memory
// addresses arriving as plain integers on the abstract stack.
func (e *Emitter) fromIntegerPointerID(p *fg.Pointer, src fg.FromIntegerSource) (uint32, error) {
	operandID, err := e.emitValue(src.Operand)
	if err != nil {
		return 0, err
	}
	resultType, err := e.pointerTypeID(p.Class, p.Pointee)
	if err != nil {
		return 0, err
	}
	if err := e.requireCapability(types.CapAddresses); err != nil {
		return 0, err
	}
	return e.builder.AddUnaryOp(OpConvertUToPtr, resultType, operandID), nil
}
