package module

import (
	"fmt"

	"github.com/gogpu/wasm2spirv/config"
	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/frontend"
	"github.com/gogpu/wasm2spirv/types"
)

// Parameter is one materialized function parameter: its backing local
// slot (registered at index i in the function's locals) plus, for
// Input/Output/DescriptorSet bindings, the copy-in/copy-out anchors that
// must run at function entry.
type Parameter struct {
	Slot    frontend.LocalSlot
	Prelude []fg.Anchor
}

// BuildFunction materializes parameters per their
// configured ParameterKind, allocate local slots (Schrödinger for
// qualifying i32/i64 locals, a fixed pointer otherwise), then translate
// the body as a single block with end = Return(return-type).
func BuildFunction(decl FunctionDecl, cfg config.FunctionConfig, globals []ResolvedGlobal, types_ frontend.TypeTable, memIs64 bool, addressing types.AddressingModel, growError frontend.MemoryGrowPolicy, imports map[uint32]frontend.ImportCallback) (fg.Anchors, []*fg.Pointer, error) {
	fc := &frontend.FunctionContext{
		Types:      types_,
		MemIs64:    memIs64,
		Addressing: addressing,
		GrowError:  growError,
		Imports:    imports,
	}
	fc.Globals = make([]frontend.Global, len(globals))
	for i, g := range globals {
		fc.Globals[i] = g.Global
	}

	var anchors fg.Anchors
	for i, param := range decl.Signature.Params {
		p, err := materializeParameter(fc, i, param, cfg.Params[uint32(i)])
		if err != nil {
			return nil, nil, types.WithFunction(err, fmt.Sprintf("parameter %d", i))
		}
		fc.Locals = append(fc.Locals, p.Slot)
		anchors = append(anchors, p.Prelude...)
	}

	for _, local := range decl.Locals {
		for n := uint32(0); n < local.Count; n++ {
			fc.Locals = append(fc.Locals, newDeclaredLocal(fc, local.Type))
		}
	}

	var result *types.Scalar
	if len(decl.Signature.Results) == 1 {
		result = &decl.Signature.Results[0]
	} else if len(decl.Signature.Results) > 1 {
		return nil, nil, types.Errf("Function can only have a single result value")
	}

	blk := &frontend.Block{
		Reader:  decl.Body,
		End:     frontend.EndReturn{Result: result},
		Anchors: &anchors,
	}
	if err := frontend.Translate(blk, fc); err != nil {
		return nil, nil, err
	}
	return anchors, fc.Interface, nil
}

// newDeclaredLocal allocates the backing slot for a plain (non-parameter)
// local: a Schrödinger for i32/i64, a fixed Function-storage pointer otherwise.
func newDeclaredLocal(fc *frontend.FunctionContext, ty types.Scalar) frontend.LocalSlot {
	if ty.IsInteger() {
		return frontend.NewSchrodingerLocal(fc, ty)
	}
	return frontend.NewScalarLocal(fc, ty)
}

// materializeParameter binds one function parameter to its configured
// storage: a plain local, an Input/Output global, an extern pointer, or
// a descriptor-set binding.
func materializeParameter(fc *frontend.FunctionContext, index int, wasmType types.Scalar, p config.Parameter) (Parameter, error) {
	ty := wasmType
	if p.Type != nil {
		ty = *p.Type
	}

	switch kind := p.Kind.(type) {
	case nil, config.FunctionParameter:
		if p.IsExternPointer {
			pointer := fg.NewVariablePointer(fmt.Sprintf("%%param%d", index), types.VariableExternParam, types.StorageFunction, types.ScalarPointee(ty), types.Skinny)
			return Parameter{Slot: frontend.NewExternPointerLocal(pointer)}, nil
		}
		// FunctionParameter: copy the SSA parameter into a Function-storage
		// local so later local.set/tee has somewhere to write.
		backing := fc.NewLocalPointer("", types.StorageFunction, types.ScalarPointee(ty), types.Skinny)
		return Parameter{
			Slot:    scalarLocalAdapter{backing: backing},
			Prelude: []fg.Anchor{fg.Store(backing, paramValue(ty, index), 0, false)},
		}, nil
	case config.Input:
		pointer := fg.NewVariablePointer(fmt.Sprintf("%%in%d", kind.Location), types.VariableGlobal, types.StorageInput, types.ScalarPointee(ty), types.Skinny)
		fc.AddInterface(pointer)
		backing := fc.NewLocalPointer("", types.StorageFunction, types.ScalarPointee(ty), types.Skinny)
		return Parameter{
			Slot:    scalarLocalAdapter{backing: backing},
			Prelude: []fg.Anchor{fg.Store(backing, fg.Load(pointer, 0, false), 0, false)},
		}, nil
	case config.Output:
		pointer := fg.NewVariablePointer(fmt.Sprintf("%%out%d", kind.Location), types.VariableGlobal, types.StorageOutput, types.ScalarPointee(ty), types.Skinny)
		fc.AddInterface(pointer)
		return Parameter{Slot: frontend.NewOutputLocal(pointer)}, nil
	case config.DescriptorSet:
		pointee := descriptorSetPointee(ty)
		pointer := fg.NewVariablePointer(fmt.Sprintf("%%binding_%d_%d", kind.Set, kind.Binding), types.VariableExternParam, kind.Class, pointee, types.Fat)
		return Parameter{Slot: frontend.NewExternPointerLocal(pointer)}, nil
	default:
		return Parameter{}, types.Unexpectedf("unknown parameter kind %T", kind)
	}
}

// descriptorSetPointee wraps a scalar parameter type as the structured
// runtime-array pointee a storage-buffer binding backs.
func descriptorSetPointee(ty types.Scalar) types.Pointee {
	return types.CompositePointee(types.StructuredArray(ty))
}

func paramValue(ty types.Scalar, index int) fg.Value {
	src := fg.ParamSource{Index: uint32(index)}
	if ty == types.Bool {
		return &fg.Bool{Source: src}
	}
	if ty.IsFloat() {
		return &fg.Float{Source: src, Kind: ty}
	}
	return &fg.Integer{Source: src, Kind: ty}
}

// scalarLocalAdapter backs a copied-in FunctionParameter/Input parameter:
// a fixed Function-storage local the Prelude anchor initializes before
// the body runs. Unlike frontend.NewScalarLocal, this keeps the backing
// pointer reachable so materializeParameter can build that Prelude store.
type scalarLocalAdapter struct{ backing *fg.Pointer }

func (l scalarLocalAdapter) Get() (fg.Value, error) { return fg.Load(l.backing, 0, false), nil }
func (l scalarLocalAdapter) Set(v fg.Value) ([]fg.Anchor, error) {
	return []fg.Anchor{fg.Store(l.backing, v, 0, false)}, nil
}
