package spirv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/wasm2spirv/config"
	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/module"
	"github.com/gogpu/wasm2spirv/types"
)

// funcState is the per-function emission context: the real SPIR-V
// parameter ids (scalar copy-in parameters and pointer-typed extern-
// pointer arguments) and the function's own result type. Its label fields
// (labelDefIndex, isLoopHeader, handledAtLabel, entryLabel) are not filled
// in; emitFunctionBody finds merge targets with its own label scan.
type funcState struct {
	fn *module.Function

	scalarParamID map[int]uint32 // wasm param index -> OpFunctionParameter id
	ptrArgID      map[int]uint32 // wasm param index -> OpFunctionParameter id (pointer-typed)

	resultType uint32
	funcID     uint32

	labelDefIndex  map[*fg.Label]int
	isLoopHeader   map[*fg.Label]bool
	handledAtLabel map[int]bool // anchor index of a back-edge branch already covered by the header's OpLoopMerge

	// varInsertPos is the index into the module builder's function
	// instruction stream where the next lazily-discovered Function-storage
	// local's OpVariable must be spliced, immediately after the entry
	// block's OpLabel and any locals already declared there.
	varInsertPos int
	entryLabel   *fg.Label
}

// declareFunction emits the SPIR-V function header: its type, OpFunction,
// and OpFunctionParameters, plus the module-level Input/Output interface
// variables it binds (these must live in the global-variable section
// regardless of which function first references them).
func (e *Emitter) declareFunction(i int) error {
	fn := &e.mod.Functions[i]
	fs := &funcState{fn: fn, scalarParamID: map[int]uint32{}, ptrArgID: map[int]uint32{}}

	var paramTypeIDs []uint32
	var realParams []int
	for idx, p := range fn.Params {
		if !isRealParameter(p) {
			continue
		}
		realParams = append(realParams, idx)
		ty := fn.Signature.Params[idx]
		if p.Type != nil {
			ty = *p.Type
		}
		var typeID uint32
		var err error
		if p.IsExternPointer {
			typeID, err = e.pointerTypeID(types.StorageFunction, types.ScalarPointee(ty))
		} else {
			typeID, err = e.scalarTypeID(ty)
		}
		if err != nil {
			return err
		}
		paramTypeIDs = append(paramTypeIDs, typeID)
	}

	resultType := e.typeVoid()
	if len(fn.Signature.Results) == 1 {
		rt, err := e.scalarTypeID(fn.Signature.Results[0])
		if err != nil {
			return err
		}
		resultType = rt
	}
	fs.resultType = resultType

	funcType := e.builder.AddTypeFunction(resultType, paramTypeIDs...)
	fs.funcID = e.builder.AddFunction(funcType, resultType, FunctionControlNone)
	e.funcIDs[i] = fs.funcID

	for _, idx := range realParams {
		ty := fn.Signature.Params[idx]
		if fn.Params[idx].Type != nil {
			ty = *fn.Params[idx].Type
		}
		var typeID uint32
		var err error
		if fn.Params[idx].IsExternPointer {
			typeID, err = e.pointerTypeID(types.StorageFunction, types.ScalarPointee(ty))
		} else {
			typeID, err = e.scalarTypeID(ty)
		}
		if err != nil {
			return err
		}
		argID := e.builder.AddFunctionParameter(typeID)
		if fn.Params[idx].IsExternPointer {
			fs.ptrArgID[idx] = argID
		} else {
			fs.scalarParamID[idx] = argID
		}
	}

	for _, p := range fn.Interface {
		if err := e.declareInterfaceVariable(p); err != nil {
			return err
		}
	}

	if e.funcStates == nil {
		e.funcStates = make([]*funcState, len(e.mod.Functions))
	}
	e.funcStates[i] = fs
	return nil
}

// isRealParameter reports whether p materializes as an actual SPIR-V
// OpFunctionParameter (as opposed to an Input/Output/DescriptorSet
// binding, which becomes a separate global variable with no function
// argument of its own).
func isRealParameter(p config.Parameter) bool {
	switch p.Kind.(type) {
	case nil, config.FunctionParameter:
		return true
	default:
		return false
	}
}

// declareInterfaceVariable pre-declares the global Input/Output-storage
// variable backing an entry-point-bound parameter, recovering its
// location from the pointer's name (set by materializeParameter as
// "%in<location>"/"%out<location>", the only place that value survives).
func (e *Emitter) declareInterfaceVariable(p *fg.Pointer) error {
	if *p.EmitterID() != 0 {
		return nil
	}
	name, ok := p.Source.(fg.VariableSource)
	if !ok {
		return fmt.Errorf("spirv: interface pointer has non-variable source %T", p.Source)
	}
	typeID, err := e.pointerTypeID(p.Class, p.Pointee)
	if err != nil {
		return err
	}
	id := e.builder.AddVariable(typeID, domainStorageClass(p.Class))
	*p.EmitterID() = id

	if loc, ok := parseSuffix(name.Name, "%in"); ok {
		e.builder.AddDecorate(id, DecorationLocation, uint32(loc))
	} else if loc, ok := parseSuffix(name.Name, "%out"); ok {
		e.builder.AddDecorate(id, DecorationLocation, uint32(loc))
	}
	return nil
}

func parseSuffix(name, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseBinding(name string) (set, binding uint32, ok bool) {
	const prefix = "%binding_"
	if !strings.HasPrefix(name, prefix) {
		return 0, 0, false
	}
	parts := strings.SplitN(strings.TrimPrefix(name, prefix), "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	s, err1 := strconv.Atoi(parts[0])
	b, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return uint32(s), uint32(b), true
}

// emitGlobals declares the module-level resolved globals (mutable
// WebAssembly globals, demoted to a SPIR-V constant on platforms without
// mutable-global support per resolveGlobals).
func (e *Emitter) emitGlobals() error {
	for i := range e.mod.Globals {
		g := &e.mod.Globals[i]
		if g.Pointer == nil {
			continue // demoted to a constant; realized lazily wherever referenced
		}
		typeID, err := e.pointerTypeID(g.Pointer.Class, g.Pointer.Pointee)
		if err != nil {
			return err
		}
		var id uint32
		if g.Init != nil {
			initID, err := e.emitValue(g.Init)
			if err != nil {
				return err
			}
			id = e.builder.AddVariableWithInit(typeID, domainStorageClass(g.Pointer.Class), initID)
		} else {
			id = e.builder.AddVariable(typeID, domainStorageClass(g.Pointer.Class))
		}
		*g.Pointer.EmitterID() = id
	}
	return nil
}

// emitEntryPoint emits the OpEntryPoint/OpExecutionMode pair for a
// configured entry-point function, once every function id is known.
func (e *Emitter) emitEntryPoint(i int) {
	fn := &e.mod.Functions[i]
	if fn.Entry == nil {
		return
	}
	iface := make([]uint32, 0, len(fn.Interface))
	for _, p := range fn.Interface {
		iface = append(iface, *p.EmitterID())
	}
	name := fn.Name
	if name == "" {
		name = fmt.Sprintf("func_%d", fn.Index)
	}
	e.builder.AddEntryPoint(domainExecutionModel(fn.Entry.ExecutionModel), e.funcIDs[i], name, iface)
	if fn.Entry.ExecutionMode != nil {
		mode, params := domainExecutionMode(*fn.Entry.ExecutionMode)
		e.builder.AddExecutionMode(e.funcIDs[i], mode, params...)
	}
}

func domainExecutionModel(m config.ExecutionModel) ExecutionModel {
	switch m {
	case config.ExecVertex:
		return ExecutionModelVertex
	case config.ExecFragment:
		return ExecutionModelFragment
	case config.ExecGLCompute:
		return ExecutionModelGLCompute
	case config.ExecKernel:
		return ExecutionModelKernel
	default:
		return ExecutionModelVertex
	}
}

func domainExecutionMode(m config.ExecutionMode) (ExecutionMode, []uint32) {
	switch m.Tag {
	case config.ModeLocalSize:
		return ExecutionModeLocalSize, m.Operands
	case config.ModeOriginUpperLeft:
		return ExecutionModeOriginUpperLeft, nil
	case config.ModeDepthReplacing:
		return ExecutionModeDepthReplacing, nil
	default:
		return ExecutionModeOriginUpperLeft, nil
	}
}
