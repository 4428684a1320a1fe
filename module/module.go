package module

import (
	"fmt"

	"github.com/gogpu/wasm2spirv/config"
	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/frontend"
	"github.com/gogpu/wasm2spirv/types"
)

// Function is one translated, non-imported function: its anchor stream,
// the Input/Output storage-class pointers it touches, and, if the configuration marked it an entry point,
// its shader-stage metadata.
type Function struct {
	// Index is the function's WebAssembly function index, the key the emitter uses to look
	// up per-parameter binding config.
	Index     uint32
	Name      string
	Signature frontend.FuncSignature
	// Params is decl.Signature.Params's binding config, one entry per
	// parameter in order; an unconfigured parameter defaults to
	// FunctionParameter.
	Params  []config.Parameter
	Anchors fg.Anchors
	// Interface collects the Input/Output storage-class global pointers
	// this function touches.
	Interface []*fg.Pointer
	Entry     *EntryPoint
}

// EntryPoint carries the SPIR-V OpEntryPoint/OpExecutionMode metadata a
// configured entry-point function emits alongside its body.
type EntryPoint struct {
	ExecutionModel config.ExecutionModel
	ExecutionMode  *config.ExecutionMode
}

// Module is the fully-resolved, emitter-ready translation of one
// WebAssembly binary: the effective addressing model,
// the resolved globals, every translated function, and any diagnostic
// warnings collected along the way (e.g. a Vulkan global demoted to a
// constant).
type Module struct {
	Config     config.Config
	Addressing types.AddressingModel
	Globals    []ResolvedGlobal
	Functions  []Function
	Warnings   []string
}

// Compile implements steps 1-7: validate the binary against the
// configured feature set, resolve the effective addressing model,
// partition imports into the spir_global builtin callbacks each calling
// function needs, resolve module-level globals, then translate every
// non-imported function body in declaration order.
func Compile(bin Binary, cfg config.Config) (*Module, error) {
	types_, mem, err := bin.Validate(cfg.Features)
	if err != nil {
		return nil, err
	}

	addressing, err := config.ResolveAddressingModel(cfg.AddressingModel, mem.IsSixtyFour())
	if err != nil {
		return nil, err
	}

	imports, err := buildImports(bin.Imports())
	if err != nil {
		return nil, err
	}

	globals, warnings, err := resolveGlobals(bin.Globals(), cfg.Platform.Kind == config.Vulkan)
	if err != nil {
		return nil, err
	}

	growError := frontend.GrowHard
	if cfg.MemoryGrowError == config.Soft {
		growError = frontend.GrowSoft
	}

	exportNames := exportNamesByFunc(bin.Exports())

	// WebAssembly's function index space lists imported functions before
	// declared ones; Binary.Functions() only returns bodies,
	// so a declared function's real index is offset by the import count.
	funcIndexOffset := uint32(len(imports))

	decls := bin.Functions()
	funcs := make([]Function, len(decls))
	for i, decl := range decls {
		funcIndex := funcIndexOffset + uint32(i)
		fnCfg := cfg.Functions[funcIndex]
		anchors, iface, err := BuildFunction(decl, fnCfg, globals, types_, mem.IsSixtyFour(), addressing, growError, imports)
		if err != nil {
			return nil, types.WithFunction(err, fmt.Sprintf("function %d", funcIndex))
		}

		params := make([]config.Parameter, len(decl.Signature.Params))
		for pi := range params {
			params[pi] = fnCfg.Params[uint32(pi)]
		}

		fn := Function{
			Index:     funcIndex,
			Name:      exportNames[funcIndex],
			Signature: decl.Signature,
			Params:    params,
			Anchors:   anchors,
			Interface: iface,
		}
		if fnCfg.ExecutionModel != nil {
			fn.Entry = &EntryPoint{
				ExecutionModel: *fnCfg.ExecutionModel,
				ExecutionMode:  fnCfg.ExecutionMode,
			}
		}
		funcs[i] = fn
	}

	return &Module{
		Config:     cfg,
		Addressing: addressing,
		Globals:    globals,
		Functions:  funcs,
		Warnings:   warnings,
	}, nil
}

// buildImports resolves every function import to its spir_global builtin
// callback. A func import this translator doesn't
// recognize is rejected: wasm2spirv has no notion of calling a real
// external function, only the spir_global intrinsics.
func buildImports(decls []Import) (map[uint32]frontend.ImportCallback, error) {
	out := make(map[uint32]frontend.ImportCallback)
	funcIndex := uint32(0)
	for _, imp := range decls {
		if imp.Kind != ImportFunc {
			continue
		}
		cb, _, ok := BuildImportCallback(imp.Module, imp.Name)
		if !ok {
			return nil, types.Errf("Unknown instruction: unresolved import %s.%s", imp.Module, imp.Name)
		}
		out[funcIndex] = cb
		funcIndex++
	}
	return out, nil
}

// exportNamesByFunc maps a function index to its export name, when one
// exists, for the emitter's OpEntryPoint/OpName operands.
func exportNamesByFunc(exports []Export) map[uint32]string {
	out := make(map[uint32]string, len(exports))
	for _, e := range exports {
		out[e.FuncIndex] = e.Name
	}
	return out
}
