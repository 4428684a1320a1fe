package spirv

import (
	"fmt"

	"github.com/gogpu/wasm2spirv/config"
	"github.com/gogpu/wasm2spirv/module"
	"github.com/gogpu/wasm2spirv/types"
)

// Emitter lowers a translated module.Module into a SPIR-V binary: it
// walks each function's anchor stream in order, emitting the value graph
// on demand and memoizing every node through its EmitterID cell.
type Emitter struct {
	mod        *module.Module
	builder    *ModuleBuilder
	addressing types.AddressingModel

	capRequested map[Capability]bool
	capAdded     map[Capability]bool
	extRequested map[string]bool
	extAdded     map[string]bool

	extInstSet config.ExtendedInstructionSet
	extInstID  uint32

	typeCache  map[typeKey]uint32
	constCache map[constKey]uint32

	// funcIDs maps a module.Function's position in mod.Functions to its
	// SPIR-V OpFunction id, populated before function bodies are emitted
	// so forward calls (a function calling one declared later) resolve.
	funcIDs []uint32

	// funcStates holds each function's emission context, populated by
	// declareFunction before any function body is emitted so a call to a
	// function declared later in the module still resolves its signature.
	funcStates []*funcState

	// funcIndexSlot maps a WebAssembly function index (module.Function.Index)
	// to its position in mod.Functions, the slice CallSource.FuncIndex must
	// be translated through before indexing funcIDs/funcStates.
	funcIndexSlot map[uint32]int

	cur *funcState
}

type typeKey struct {
	kind    string
	scalar  types.Scalar
	count   uint32
	class   types.StorageClass
	pointee types.Pointee
}

type constKey struct {
	typeID uint32
	bits   uint64
}

// Emit translates mod into a SPIR-V binary.
func Emit(mod *module.Module) ([]byte, error) {
	b, err := EmitModule(mod)
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// EmitModule translates mod and returns the populated ModuleBuilder rather
// than a single encoding, so a caller can retrieve whichever of the four
// output forms it needs (Build's byte vector, Words, Instructions, or
// Disassemble) without re-running the emitter pass.
func EmitModule(mod *module.Module) (*ModuleBuilder, error) {
	e := &Emitter{
		mod:          mod,
		addressing:   mod.Addressing,
		capRequested: make(map[Capability]bool),
		capAdded:     make(map[Capability]bool),
		extRequested: make(map[string]bool),
		extAdded:     make(map[string]bool),
		typeCache:    make(map[typeKey]uint32),
		constCache:   make(map[constKey]uint32),
		extInstSet:   mod.Config.Platform.ExtendedInstructionSet(),
	}
	version := Version{Major: mod.Config.Platform.Version.Major, Minor: mod.Config.Platform.Version.Minor}
	e.builder = NewModuleBuilder(version)

	if err := e.collectCapabilities(); err != nil {
		return nil, err
	}
	e.emitCapabilities()
	e.emitExtensions()

	switch e.extInstSet {
	case config.ExtGLSL450:
		e.extInstID = e.builder.AddExtInstImport("GLSL.std.450")
	case config.ExtOpenCL:
		e.extInstID = e.builder.AddExtInstImport("OpenCL.std")
	}

	e.builder.SetMemoryModel(domainAddressingModel(e.addressing), domainMemoryModel(mod.Config.MemoryModel))

	if err := e.emitGlobals(); err != nil {
		return nil, err
	}

	e.funcIDs = make([]uint32, len(mod.Functions))
	e.funcIndexSlot = make(map[uint32]int, len(mod.Functions))
	for i := range mod.Functions {
		e.funcIndexSlot[mod.Functions[i].Index] = i
	}
	for i := range mod.Functions {
		if err := e.declareFunction(i); err != nil {
			return nil, err
		}
	}

	for i := range mod.Functions {
		if err := e.emitFunctionBody(i); err != nil {
			return nil, fmt.Errorf("function %d (%s): %w", mod.Functions[i].Index, mod.Functions[i].Name, err)
		}
	}

	for i := range mod.Functions {
		e.emitEntryPoint(i)
	}

	return e.builder, nil
}

// requireCapability records a capability as needed: under a Static
// capability model, anything not pre-declared by the caller is an error;
// under Dynamic, it is appended to the module the first time it's seen.
func (e *Emitter) requireCapability(c types.Capability) error {
	return e.requireRawCapability(FromDomainCapability(c))
}

func (e *Emitter) requireRawCapability(c Capability) error {
	e.capRequested[c] = true
	if e.capAdded[c] {
		return nil
	}
	model := e.mod.Config.Capabilities
	if model.Mode == config.Static && !hasCapability(model.List, c) {
		return fmt.Errorf("spirv: capability %d required but not declared under a static capability model", c)
	}
	e.capAdded[c] = true
	e.builder.AddCapability(c)
	return nil
}

func hasCapability(list []types.Capability, c Capability) bool {
	for _, d := range list {
		if FromDomainCapability(d) == c {
			return true
		}
	}
	return false
}

// collectCapabilities walks the module up front so Static-mode capability
// failures surface before any instructions are written, and so every
// pre-declared capability/extension is emitted even if nothing in this
// particular module happens to need it (a Static list is a contract with
// the caller, not just a cache of what got used).
func (e *Emitter) collectCapabilities() error {
	if err := e.requireRawCapability(CapabilityShader); err != nil {
		return err
	}
	for _, c := range e.mod.Config.Capabilities.List {
		if err := e.requireRawCapability(FromDomainCapability(c)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitCapabilities() {}

func (e *Emitter) emitExtensions() {
	for _, ext := range e.mod.Config.Extensions.List {
		if e.extAdded[ext] {
			continue
		}
		e.extAdded[ext] = true
		e.builder.AddExtension(ext)
	}
}

func (e *Emitter) requireExtension(name string) error {
	if e.extAdded[name] {
		return nil
	}
	model := e.mod.Config.Extensions
	if model.Mode == config.Static && !hasString(model.List, name) {
		return fmt.Errorf("spirv: extension %q required but not declared under a static extension model", name)
	}
	e.extAdded[name] = true
	e.builder.AddExtension(name)
	return nil
}

func hasString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func domainAddressingModel(a types.AddressingModel) AddressingModel {
	switch a {
	case types.AddressingPhysical32:
		return AddressingModelPhysical32
	case types.AddressingPhysical64, types.AddressingPhysicalStorageBuffer64:
		return AddressingModelPhysical64
	default:
		return AddressingModelLogical
	}
}

func domainMemoryModel(m config.MemoryModel) MemoryModel {
	switch m {
	case config.MemoryGLSL450:
		return MemoryModelGLSL450
	case config.MemoryOpenCL:
		return MemoryModelOpenCL
	case config.MemoryVulkan:
		return MemoryModelVulkan
	default:
		return MemoryModelSimple
	}
}

func domainStorageClass(c types.StorageClass) StorageClass {
	switch c {
	case types.StorageFunction:
		return StorageClassFunction
	case types.StoragePrivate:
		return StorageClassPrivate
	case types.StorageInput:
		return StorageClassInput
	case types.StorageOutput:
		return StorageClassOutput
	case types.StorageUniformConstant:
		return StorageClassUniformConstant
	case types.StorageUniform:
		return StorageClassUniform
	case types.StorageStorageBuffer:
		return StorageClassStorageBuffer
	case types.StorageWorkgroup:
		return StorageClassWorkgroup
	case types.StorageCrossWorkgroup:
		return StorageClassCrossWorkgroup
	case types.StorageGeneric:
		return StorageClassGeneric
	case types.StoragePhysicalStorageBuffer:
		return StorageClassPhysicalStorageBuffer
	case types.StoragePushConstant:
		return StorageClassPushConstant
	default:
		return StorageClassFunction
	}
}

// --- types -------------------------------------------------------------

func (e *Emitter) typeVoid() uint32 {
	key := typeKey{kind: "void"}
	if id, ok := e.typeCache[key]; ok {
		return id
	}
	id := e.builder.AddTypeVoid()
	e.typeCache[key] = id
	return id
}

func (e *Emitter) scalarTypeID(s types.Scalar) (uint32, error) {
	key := typeKey{kind: "scalar", scalar: s}
	if id, ok := e.typeCache[key]; ok {
		return id, nil
	}
	for _, c := range types.RequiredCapabilities(s) {
		if err := e.requireCapability(c); err != nil {
			return 0, err
		}
	}
	var id uint32
	switch s {
	case types.Bool:
		id = e.builder.AddTypeBool()
	case types.F32, types.F64:
		id = e.builder.AddTypeFloat(types.Bits(s))
	case types.I32, types.I64:
		id = e.builder.AddTypeInt(types.Bits(s), true)
	default:
		return 0, fmt.Errorf("spirv: unknown scalar kind %v", s)
	}
	e.typeCache[key] = id
	return id, nil
}

func (e *Emitter) vectorTypeID(elem types.Scalar, count uint32) (uint32, error) {
	key := typeKey{kind: "vector", scalar: elem, count: count}
	if id, ok := e.typeCache[key]; ok {
		return id, nil
	}
	base, err := e.scalarTypeID(elem)
	if err != nil {
		return 0, err
	}
	id := e.builder.AddTypeVector(base, count)
	e.typeCache[key] = id
	return id, nil
}

// wrappedStructTypeID builds the SPIR-V struct wrapping a "structured" or
// "structured-array" pointee: a one-member struct decorated Block, with
// the member itself either the plain scalar (structured) or a
// runtime array of it (structured-array, the backing store for a fat
// pointer's descriptor-set binding).
func (e *Emitter) wrappedStructTypeID(elem types.Scalar, isArray bool) (uint32, error) {
	key := typeKey{kind: "wrapped", scalar: elem, count: boolCount(isArray)}
	if id, ok := e.typeCache[key]; ok {
		return id, nil
	}
	elemID, err := e.scalarTypeID(elem)
	if err != nil {
		return 0, err
	}
	memberID := elemID
	if isArray {
		memberID = e.builder.AddTypeRuntimeArray(elemID)
		e.builder.AddDecorate(memberID, DecorationArrayStride, types.ByteSizeOfScalar(elem))
	}
	structID := e.builder.AddTypeStruct(memberID)
	e.builder.AddDecorate(structID, DecorationBlock)
	e.builder.AddMemberDecorate(structID, 0, DecorationOffset, 0)
	e.typeCache[key] = structID
	return structID, nil
}

func boolCount(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (e *Emitter) pointeeTypeID(p types.Pointee) (uint32, error) {
	if p.Composite == nil {
		return e.scalarTypeID(p.Scalar)
	}
	switch p.Composite.Kind {
	case types.CompositeVector:
		return e.vectorTypeID(p.Composite.Elem, p.Composite.Count)
	case types.CompositeStructured:
		return e.wrappedStructTypeID(p.Composite.Elem, false)
	case types.CompositeStructuredArray:
		return e.wrappedStructTypeID(p.Composite.Elem, true)
	default:
		return 0, fmt.Errorf("spirv: unknown composite kind %v", p.Composite.Kind)
	}
}

func (e *Emitter) pointerTypeID(class types.StorageClass, pointee types.Pointee) (uint32, error) {
	key := typeKey{kind: "pointer", class: class, pointee: pointee}
	if id, ok := e.typeCache[key]; ok {
		return id, nil
	}
	for _, c := range types.RequiredPointerCapabilities(class) {
		if err := e.requireCapability(c); err != nil {
			return 0, err
		}
	}
	base, err := e.pointeeTypeID(pointee)
	if err != nil {
		return 0, err
	}
	id := e.builder.AddTypePointer(domainStorageClass(class), base)
	e.typeCache[key] = id
	return id, nil
}

// --- constants -----------------------------------------------------------

func constWords(kind types.Scalar, bits uint64) []uint32 {
	if types.Bits(kind) == 32 {
		return []uint32{uint32(bits)}
	}
	return []uint32{uint32(bits & 0xFFFFFFFF), uint32(bits >> 32)}
}

func (e *Emitter) internConstant(kind types.Scalar, bits uint64) (uint32, error) {
	typeID, err := e.scalarTypeID(kind)
	if err != nil {
		return 0, err
	}
	key := constKey{typeID: typeID, bits: bits}
	if id, ok := e.constCache[key]; ok {
		return id, nil
	}
	var id uint32
	if kind == types.Bool {
		id = e.builder.AddConstantBool(typeID, bits != 0)
	} else {
		id = e.builder.AddConstant(typeID, constWords(kind, bits)...)
	}
	e.constCache[key] = id
	return id, nil
}
