// Package module orchestrates the module builder: it consumes the
// validated-binary contract an external WebAssembly collaborator is
// expected to expose, resolves imports/globals/functions, and drives the
// frontend's per-function translation to build a complete Module ready
// for SPIR-V emission.
package module

import (
	"github.com/gogpu/wasm2spirv/frontend"
	"github.com/gogpu/wasm2spirv/types"
)

// ImportKind distinguishes the two import shapes the spir_global module
// recognizes.
type ImportKind uint8

const (
	ImportFunc ImportKind = iota
	ImportGlobal
)

// Import is one entry of the WebAssembly import section.
type Import struct {
	Module string
	Name   string
	Kind   ImportKind

	FuncSignature frontend.FuncSignature
	GlobalType    types.Scalar
	GlobalMutable bool
}

// Export is one entry of the WebAssembly export section (only function
// exports carry meaning for this translator: they become SPIR-V entry
// points when the configuration marks them so).
type Export struct {
	Name      string
	FuncIndex uint32
}

// GlobalDecl is one module-level global: its declared type, mutability,
// and initializer expression.
type GlobalDecl struct {
	Type     types.Scalar
	Mutable  bool
	InitExpr frontend.OperatorReader
}

// LocalDecl is one run of same-typed locals as WebAssembly's local section
// declares them (type plus repetition count).
type LocalDecl struct {
	Type  types.Scalar
	Count uint32
}

// FunctionDecl is one non-imported function body.
type FunctionDecl struct {
	Signature frontend.FuncSignature
	Locals    []LocalDecl
	Body      frontend.OperatorReader
}

// Binary is the narrow surface this package needs from a validated
// WebAssembly module: everything else (parsing, section
// framing, validation against a feature set) belongs to the external
// collaborator.
type Binary interface {
	// Validate checks the module against the configured WebAssembly
	// feature set and returns its type table and memory descriptor
	//.
	Validate(features uint64) (frontend.TypeTable, frontend.MemoryDescriptor, error)
	Imports() []Import
	Exports() []Export
	Globals() []GlobalDecl
	Functions() []FunctionDecl
}
