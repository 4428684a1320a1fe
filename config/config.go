// Package config defines the per-compilation configuration surface: target
// platform, capability/extension handling, addressing/memory models, and
// per-function parameter bindings.
package config

import "github.com/gogpu/wasm2spirv/types"

// Version is a SPIR-V version number.
type Version struct {
	Major, Minor uint8
}

var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_5 = Version{1, 5}
)

// PlatformKind selects the target runtime family, which in turn picks the
// extended instruction set (Vulkan -> GLSL.std.450, Universal -> OpenCL.std).
type PlatformKind uint8

const (
	Vulkan PlatformKind = iota
	Universal
)

// Platform is the target platform plus the SPIR-V version to emit for it.
type Platform struct {
	Kind    PlatformKind
	Version Version
}

// AddressingModel re-exports types.AddressingModel so callers only need to
// import one package for the configuration surface.
type AddressingModel = types.AddressingModel

const (
	Logical               = types.AddressingLogical
	Physical              = types.AddressingPhysical32 // refined to 32/64 by memory64, see ResolveAddressingModel
	PhysicalStorageBuffer = types.AddressingPhysicalStorageBuffer64
)

// MemoryModel is the SPIR-V OpMemoryModel operand requested by config.
type MemoryModel uint8

const (
	MemorySimple MemoryModel = iota
	MemoryGLSL450
	MemoryOpenCL
	MemoryVulkan
)

// MemoryGrowError selects how memory.grow/memory.size-without-heap behave.
type MemoryGrowError uint8

const (
	Hard MemoryGrowError = iota // fail compilation
	Soft                        // memory.size pushes -1; memory.grow still fails
)

// CapabilityMode distinguishes a closed capability list (compilation fails
// if something beyond it is required) from an open one the compiler may
// append to.
type CapabilityMode uint8

const (
	Static CapabilityMode = iota
	Dynamic
)

// CapabilityModel is the capabilities the user pre-declared, plus whether
// the compiler may add more on demand.
type CapabilityModel struct {
	Mode CapabilityMode
	List []types.Capability
}

// ExtensionModel mirrors CapabilityModel for SPIR-V extension strings.
type ExtensionModel struct {
	Mode CapabilityMode
	List []string
}

// ExecutionModel is the SPIR-V shader stage an entry point runs under.
type ExecutionModel uint8

const (
	ExecVertex ExecutionModel = iota
	ExecFragment
	ExecGLCompute
	ExecKernel
)

// ExecutionMode is an OpExecutionMode tag plus its optional operands
// (e.g. LocalSize x/y/z for GLCompute).
type ExecutionMode struct {
	Tag      ExecutionModeTag
	Operands []uint32
}

type ExecutionModeTag uint8

const (
	ModeLocalSize ExecutionModeTag = iota
	ModeOriginUpperLeft
	ModeDepthReplacing
)

// ParameterKind classifies how a WebAssembly function parameter is bound
// on the SPIR-V side.
type ParameterKind interface{ parameterKind() }

// FunctionParameter binds the WebAssembly parameter directly to an SPIR-V
// OpFunctionParameter, copied into a Function-storage local on entry.
type FunctionParameter struct{}

func (FunctionParameter) parameterKind() {}

// Input binds the parameter to an Input-storage-class variable at the
// given location (vertex attributes, interpolated fragment inputs, or a
// builtin when IsExternPointer carries a builtin pointer instead).
type Input struct{ Location uint32 }

func (Input) parameterKind() {}

// Output binds the parameter to an Output-storage-class variable.
type Output struct{ Location uint32 }

func (Output) parameterKind() {}

// DescriptorSet binds the parameter to a descriptor-set/binding pair
// (storage buffers, uniforms) decorated accordingly.
type DescriptorSet struct {
	Class   types.StorageClass
	Set     uint32
	Binding uint32
}

func (DescriptorSet) parameterKind() {}

// Parameter is a single WebAssembly function parameter's binding.
type Parameter struct {
	// Type overrides the WebAssembly-inferred scalar type when set;
	// required when Kind needs a type the operand stack alone can't carry
	// (e.g. a pointer's pointee shape for a DescriptorSet binding).
	Type *types.Scalar
	Kind ParameterKind
	// IsExternPointer marks an i32/i64 parameter that is itself a pointer
	// binding.
	IsExternPointer bool
}

// FunctionConfig is the per-function slice of Config: whether the function
// is an entry point, under what execution model/mode, and how its
// parameters bind.
type FunctionConfig struct {
	ExecutionModel *ExecutionModel
	ExecutionMode  *ExecutionMode
	Params         map[uint32]Parameter
}

// Config is the full per-compilation configuration.
type Config struct {
	Platform        Platform
	Capabilities    CapabilityModel
	Extensions      ExtensionModel
	AddressingModel AddressingModel
	MemoryModel     MemoryModel
	MemoryGrowError MemoryGrowError
	// Features is the WebAssembly feature bitset to validate the input
	// binary against, opaque to this package (owned by the external
	// validator collaborator).
	Features uint64
	Functions map[uint32]FunctionConfig
}

// ExtendedInstructionSet returns the extended instruction set the
// platform implies.
type ExtendedInstructionSet uint8

const (
	ExtGLSL450 ExtendedInstructionSet = iota
	ExtOpenCL
)

func (p Platform) ExtendedInstructionSet() ExtendedInstructionSet {
	if p.Kind == Vulkan {
		return ExtGLSL450
	}
	return ExtOpenCL
}

// ResolveAddressingModel derives the effective
// SPIR-V addressing model from the configured one and whether the
// module's linear memory is 64-bit.
func ResolveAddressingModel(requested AddressingModel, memory64 bool) (AddressingModel, error) {
	switch requested {
	case types.AddressingLogical:
		return types.AddressingLogical, nil
	case types.AddressingPhysical32, types.AddressingPhysical64:
		if memory64 {
			return types.AddressingPhysical64, nil
		}
		return types.AddressingPhysical32, nil
	case types.AddressingPhysicalStorageBuffer64:
		if !memory64 {
			return 0, types.Errf("invalid addressing model")
		}
		return types.AddressingPhysicalStorageBuffer64, nil
	default:
		return 0, types.Errf("invalid addressing model")
	}
}
