package module

import (
	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/frontend"
	"github.com/gogpu/wasm2spirv/types"
)

// BuiltIn names the SPIR-V built-in variables the spir_global pseudo-module
// resolves imports to.
type BuiltIn uint8

const (
	BuiltInNumWorkGroups BuiltIn = iota
	BuiltInWorkGroupID
	BuiltInWorkGroupSize
	BuiltInLocalInvocationID
	BuiltInGlobalInvocationID
	BuiltInFragDepth
)

// builtinGlobals maps the spir_global import names to their built-in and
// shape: the five workgroup/invocation builtins are Input vec3<i32>, and
// FragDepth is an Output f32.
var builtinGlobals = map[string]struct {
	builtin BuiltIn
	class   types.StorageClass
	pointee types.Pointee
}{
	"gl_NumWorkGroups":      {BuiltInNumWorkGroups, types.StorageInput, types.CompositePointee(types.Vector(types.I32, 3))},
	"gl_WorkGroupID":        {BuiltInWorkGroupID, types.StorageInput, types.CompositePointee(types.Vector(types.I32, 3))},
	"gl_WorkGroupSize":      {BuiltInWorkGroupSize, types.StorageInput, types.CompositePointee(types.Vector(types.I32, 3))},
	"gl_LocalInvocationID":  {BuiltInLocalInvocationID, types.StorageInput, types.CompositePointee(types.Vector(types.I32, 3))},
	"gl_GlobalInvocationID": {BuiltInGlobalInvocationID, types.StorageInput, types.CompositePointee(types.Vector(types.I32, 3))},
	"gl_FragDepth":          {BuiltInFragDepth, types.StorageOutput, types.ScalarPointee(types.F32)},
}

// resolveBuiltinGlobal resolves a spir_global import's name to the pointer
// variable backing it, or ok=false if the name isn't a recognized builtin.
func resolveBuiltinGlobal(name string) (*fg.Pointer, BuiltIn, bool) {
	b, ok := builtinGlobals[name]
	if !ok {
		return nil, 0, false
	}
	return fg.NewVariablePointer(name, types.VariableGlobal, b.class, b.pointee, types.Skinny), b.builtin, true
}

// vectorExtractImport implements the call-site semantics of the
// NumWorkGroups/WorkGroupID/WorkGroupSize/LocalInvocationID/
// GlobalInvocationID builtins: pop the lane index, load the
// builtin's vec3<i32>, push the extracted lane. Grounded on
// original_source/src/fg/import.rs's import_uint3_input, which pops an
// i32 index and pushes vector.extract(index) the same way.
func vectorExtractImport(pointer *fg.Pointer) frontend.ImportCallback {
	return func(b *frontend.Block, fc *frontend.FunctionContext) error {
		index, err := b.Stack.Pop(types.I32, fc)
		if err != nil {
			return err
		}
		fc.AddInterface(pointer)
		vector, ok := fg.Load(pointer, 0, false).(*fg.Vector)
		if !ok {
			return types.Unexpectedf("builtin vector load produced non-vector value")
		}
		b.Stack.Push(fg.NewExtracted(vector, index.(*fg.Integer)))
		return nil
	}
}

// outputStoreImport implements gl_FragDepth's call-site semantics: pop the
// value to write, store it through the Output-storage-class variable, and
// push nothing (the import's WebAssembly signature is void-returning).
// Grounded on original_source/src/fg/import.rs's import_output.
func outputStoreImport(pointer *fg.Pointer, ty types.Scalar) frontend.ImportCallback {
	return func(b *frontend.Block, fc *frontend.FunctionContext) error {
		v, err := b.Stack.Pop(ty, fc)
		if err != nil {
			return err
		}
		fc.AddInterface(pointer)
		*b.Anchors = append(*b.Anchors, fg.Store(pointer, v, 0, false))
		return nil
	}
}

// BuildImportCallback resolves one spir_global function import to its
// call-site callback and the hidden global variable it backs. ok is false for any module/name this translator doesn't recognize,
// leaving it to the caller to decide whether that's fatal.
func BuildImportCallback(moduleName, name string) (cb frontend.ImportCallback, backing *fg.Pointer, ok bool) {
	if moduleName != "spir_global" {
		return nil, nil, false
	}
	pointer, builtin, ok := resolveBuiltinGlobal(name)
	if !ok {
		return nil, nil, false
	}
	if builtin == BuiltInFragDepth {
		return outputStoreImport(pointer, types.F32), pointer, true
	}
	return vectorExtractImport(pointer), pointer, true
}
