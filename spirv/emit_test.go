package spirv

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/wasm2spirv/config"
	"github.com/gogpu/wasm2spirv/frontend"
	"github.com/gogpu/wasm2spirv/module"
	"github.com/gogpu/wasm2spirv/types"
)

type constReader struct {
	ops []frontend.Operator
	pos int
}

func (r *constReader) Next() (frontend.Operator, bool, error) {
	if r.pos >= len(r.ops) {
		return frontend.Operator{}, false, nil
	}
	op := r.ops[r.pos]
	r.pos++
	return op, true, nil
}

type fakeMemory struct{}

func (fakeMemory) IsSixtyFour() bool { return false }
func (fakeMemory) HasMemory() bool   { return false }

type fakeTypes struct{}

func (fakeTypes) FuncSignature(uint32) (frontend.FuncSignature, bool) { return frontend.FuncSignature{}, false }

// fakeBinary describes a single exported function, `answer() -> i32`,
// that returns the folded constant 42.
type fakeBinary struct{}

func (fakeBinary) Validate(uint64) (frontend.TypeTable, frontend.MemoryDescriptor, error) {
	return fakeTypes{}, fakeMemory{}, nil
}
func (fakeBinary) Imports() []module.Import { return nil }
func (fakeBinary) Exports() []module.Export {
	return []module.Export{{Name: "answer", FuncIndex: 0}}
}
func (fakeBinary) Globals() []module.GlobalDecl { return nil }
func (fakeBinary) Functions() []module.FunctionDecl {
	sig := frontend.FuncSignature{Results: []types.Scalar{types.I32}}
	body := &constReader{ops: []frontend.Operator{
		{Code: frontend.OpI32Const, ConstI32: 42},
		{Code: frontend.OpEnd},
	}}
	return []module.FunctionDecl{{Signature: sig, Body: body}}
}

func buildTestModule(t *testing.T) *module.Module {
	t.Helper()
	cfg := config.Config{
		Platform:        config.Platform{Kind: config.Universal, Version: config.Version1_3},
		AddressingModel: config.Logical,
		Capabilities:    config.CapabilityModel{Mode: config.Dynamic},
		Functions:       map[uint32]config.FunctionConfig{},
	}
	mod, err := module.Compile(fakeBinary{}, cfg)
	if err != nil {
		t.Fatalf("module.Compile failed: %v", err)
	}
	return mod
}

func TestEmitModuleProducesAllFourOutputForms(t *testing.T) {
	mod := buildTestModule(t)
	builder, err := EmitModule(mod)
	if err != nil {
		t.Fatalf("EmitModule failed: %v", err)
	}

	words := builder.Words()
	if len(words) == 0 {
		t.Fatalf("Words() returned nothing")
	}
	if words[0] != MagicNumber {
		t.Errorf("first word = %#x, want SPIR-V magic number %#x", words[0], MagicNumber)
	}

	bytes := builder.Build()
	if len(bytes) != len(words)*4 {
		t.Errorf("Build() length %d, want %d (4 bytes per word)", len(bytes), len(words)*4)
	}

	instructions := builder.Instructions()
	if len(instructions) == 0 {
		t.Errorf("Instructions() returned nothing")
	}

	text := builder.Disassemble()
	wantOp := fmt.Sprintf("Op#%d", OpFunction)
	if !strings.Contains(text, wantOp) {
		t.Errorf("Disassemble() output missing an OpFunction line (%q): %q", wantOp, text)
	}
}

func TestEmitTopLevelReturnsBytes(t *testing.T) {
	mod := buildTestModule(t)
	got, err := Emit(mod)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	if len(got) == 0 {
		t.Errorf("Emit() returned no bytes")
	}
}
