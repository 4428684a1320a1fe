package module

import (
	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/frontend"
	"github.com/gogpu/wasm2spirv/types"
)

// ResolvedGlobal is one module-level global after : its
// backing value (a variable pointer for a mutable global, or the folded
// initializer constant for an immutable one) and, for variables, the
// initializer anchors that must run before the function that first
// touches it.
type ResolvedGlobal struct {
	frontend.Global
	// Constant holds the folded initializer when the global was demoted
	// to (or declared as) a SPIR-V constant; nil for a real variable.
	Constant fg.Value
	// Init holds the folded initializer for a real (mutable) variable,
	// attached by the emitter as the OpVariable's initializer operand;
	// nil when Constant is set instead.
	Init fg.Value
}

// resolveGlobals evaluates each global's init-expr
// under a throwaway function, then decide variable-vs-constant. Mutable
// globals become CrossWorkgroup variables with initializers, except on
// Vulkan platforms (which have no mutable globals) where they are
// demoted to constants and a warning is recorded.
func resolveGlobals(decls []GlobalDecl, isVulkan bool) ([]ResolvedGlobal, []string, error) {
	var warnings []string
	out := make([]ResolvedGlobal, len(decls))
	for i, decl := range decls {
		init, err := evalInitExpr(decl.InitExpr, decl.Type)
		if err != nil {
			return nil, nil, types.WithFunction(err, "global init-expr")
		}

		mutable := decl.Mutable
		if mutable && isVulkan {
			warnings = append(warnings, "Vulkan has no mutable globals, demoted to constant")
			mutable = false
		}

		if !mutable {
			out[i] = ResolvedGlobal{Constant: init}
			continue
		}

		pointer := fg.NewVariablePointer("", types.VariableGlobal, types.StorageCrossWorkgroup, types.ScalarPointee(decl.Type), types.Skinny)
		out[i] = ResolvedGlobal{Global: frontend.Global{Pointer: pointer, Mutable: true}, Init: init}
	}
	return out, warnings, nil
}

// evalInitExpr runs a global's tiny init-expr operator stream (a
// constant-only expression terminated by `end`, per the WebAssembly
// init-expr grammar) under a throwaway function context and returns the
// single folded value it produces.
func evalInitExpr(reader frontend.OperatorReader, ty types.Scalar) (fg.Value, error) {
	fc := &frontend.FunctionContext{}
	var anchors fg.Anchors
	blk := &frontend.Block{
		Reader: reader,
		End:    frontend.EndReturn{Result: &ty},
		Anchors: &anchors,
	}
	if err := frontend.Translate(blk, fc); err != nil {
		return nil, err
	}
	if len(anchors) == 0 {
		return nil, types.Unexpectedf("init-expr produced no terminator")
	}
	ret, ok := anchors[len(anchors)-1].(fg.AnchorReturn)
	if !ok {
		return nil, types.Unexpectedf("init-expr terminator was not a return")
	}
	return ret.Value, nil
}
