package module

import (
	"testing"

	"github.com/gogpu/wasm2spirv/config"
	"github.com/gogpu/wasm2spirv/frontend"
	"github.com/gogpu/wasm2spirv/types"
)

// sliceReader replays a fixed operator slice, mirroring the external
// collaborator's decoded operator stream for one function body.
type sliceReader struct {
	ops []frontend.Operator
	pos int
}

func (r *sliceReader) Next() (frontend.Operator, bool, error) {
	if r.pos >= len(r.ops) {
		return frontend.Operator{}, false, nil
	}
	op := r.ops[r.pos]
	r.pos++
	return op, true, nil
}

func constI32(v int32) frontend.Operator {
	return frontend.Operator{Code: frontend.OpI32Const, ConstI32: v}
}

type fakeMemory struct{}

func (fakeMemory) IsSixtyFour() bool { return false }
func (fakeMemory) HasMemory() bool   { return false }

type fakeTypes struct{}

func (fakeTypes) FuncSignature(uint32) (frontend.FuncSignature, bool) { return frontend.FuncSignature{}, false }

// fakeBinary implements Binary for a single exported function:
//
//	func add(a i32, b i32) -> i32 { return a + b }
type fakeBinary struct{}

func (fakeBinary) Validate(uint64) (frontend.TypeTable, frontend.MemoryDescriptor, error) {
	return fakeTypes{}, fakeMemory{}, nil
}

func (fakeBinary) Imports() []Import { return nil }

func (fakeBinary) Exports() []Export {
	return []Export{{Name: "add", FuncIndex: 0}}
}

func (fakeBinary) Globals() []GlobalDecl { return nil }

func (fakeBinary) Functions() []FunctionDecl {
	sig := frontend.FuncSignature{Params: []types.Scalar{types.I32, types.I32}, Results: []types.Scalar{types.I32}}
	body := &sliceReader{ops: []frontend.Operator{
		{Code: frontend.OpLocalGet, Local: 0},
		{Code: frontend.OpLocalGet, Local: 1},
		{Code: frontend.OpI32Add},
		{Code: frontend.OpEnd},
	}}
	return []FunctionDecl{{Signature: sig, Body: body}}
}

func baseConfig() config.Config {
	return config.Config{
		Platform:        config.Platform{Kind: config.Universal, Version: config.Version1_3},
		AddressingModel: config.Logical,
		Functions:       map[uint32]config.FunctionConfig{},
	}
}

func TestCompileSimpleAddFunction(t *testing.T) {
	mod, err := Compile(fakeBinary{}, baseConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mod.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(mod.Functions))
	}
	fn := mod.Functions[0]
	if fn.Name != "add" {
		t.Errorf("expected exported name %q, got %q", "add", fn.Name)
	}
	if len(fn.Anchors) == 0 {
		t.Errorf("expected at least one anchor for a non-empty body")
	}
}

func TestCompileRejectsUnknownImport(t *testing.T) {
	bin := unknownImportBinary{}
	if _, err := Compile(bin, baseConfig()); err == nil {
		t.Errorf("expected an error for an unrecognized spir_global import")
	}
}

type unknownImportBinary struct{ fakeBinary }

func (unknownImportBinary) Imports() []Import {
	return []Import{{Module: "spir_global", Name: "not_a_real_builtin", Kind: ImportFunc}}
}
