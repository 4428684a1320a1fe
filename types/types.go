// Package types defines the type model shared by the frontend value graph
// and the SPIR-V emitter: scalars, composites (vector, structured,
// structured-array), and pointers (size, storage class, pointee).
package types

import "fmt"

// Scalar is one of the WebAssembly-derived scalar kinds the translator
// understands. Bool only ever appears as a value-graph kind, never as a
// WebAssembly-level local or global type.
type Scalar uint8

const (
	I32 Scalar = iota
	I64
	F32
	F64
	Bool
)

func (s Scalar) String() string {
	switch s {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("scalar(%d)", uint8(s))
	}
}

// IsInteger reports whether the scalar is i32 or i64.
func (s Scalar) IsInteger() bool { return s == I32 || s == I64 }

// IsFloat reports whether the scalar is f32 or f64.
func (s Scalar) IsFloat() bool { return s == F32 || s == F64 }

// ByteSize returns the size in bytes of a scalar value.
func ByteSize(s Scalar) uint32 {
	switch s {
	case I32, F32, Bool:
		return 4
	case I64, F64:
		return 8
	default:
		panic(fmt.Sprintf("unknown scalar %v", s))
	}
}

// Bits returns the bit-width used for the SPIR-V OpTypeInt/OpTypeFloat operand.
func Bits(s Scalar) uint32 { return ByteSize(s) * 8 }

// CompositeKind distinguishes the shapes a Composite type can take.
type CompositeKind uint8

const (
	CompositeVector CompositeKind = iota
	CompositeStructured
	CompositeStructuredArray
)

// Composite describes a vector, a single wrapped scalar ("structured", used
// when a pointee must be wrapped in a SPIR-V struct), or a runtime-sized
// array of a wrapped scalar ("structured-array", the backing store for fat
// pointers).
type Composite struct {
	Kind  CompositeKind
	Elem  Scalar
	Count uint32 // only meaningful for CompositeVector
}

func Vector(elem Scalar, count uint32) Composite {
	return Composite{Kind: CompositeVector, Elem: elem, Count: count}
}

func Structured(elem Scalar) Composite {
	return Composite{Kind: CompositeStructured, Elem: elem}
}

func StructuredArray(elem Scalar) Composite {
	return Composite{Kind: CompositeStructuredArray, Elem: elem}
}

// PointerSize distinguishes skinny (direct) pointers from fat (base plus
// byte-offset into a runtime array) pointers.
type PointerSize uint8

const (
	Skinny PointerSize = iota
	Fat
)

// StorageClass mirrors the subset of SPIR-V storage classes the translator
// ever materializes a pointer into.
type StorageClass uint8

const (
	StorageFunction StorageClass = iota
	StoragePrivate
	StorageInput
	StorageOutput
	StorageUniformConstant
	StorageUniform
	StorageStorageBuffer
	StorageWorkgroup
	StorageCrossWorkgroup
	StorageGeneric
	StoragePhysicalStorageBuffer
	StoragePushConstant
)

// Pointee is either a scalar or a composite; pointers to structured /
// structured-array composites force a wrapping struct at emission time.
type Pointee struct {
	Scalar    Scalar
	Composite *Composite // nil for a plain scalar pointee
}

func ScalarPointee(s Scalar) Pointee { return Pointee{Scalar: s} }

func CompositePointee(c Composite) Pointee {
	return Pointee{Scalar: c.Elem, Composite: &c}
}

// IsWrapped reports whether the pointee requires a SPIR-V wrapping struct
// (structured and structured-array pointees always do).
func (p Pointee) IsWrapped() bool {
	return p.Composite != nil && p.Composite.Kind != CompositeVector
}

// ElementScalar returns the scalar a Load/Store sees, unwrapping structured
// composites down to their element type.
func (p Pointee) ElementScalar() Scalar { return p.Scalar }

// Pointer is a (size, storage class, pointee) triple. Structured and
// structured-array pointees force a wrapping struct in SPIR-V emission; fat
// pointers index into the runtime array backing that struct.
type Pointer struct {
	Size    PointerSize
	Class   StorageClass
	Pointee Pointee
}

func NewPointer(size PointerSize, class StorageClass, pointee Pointee) Pointer {
	return Pointer{Size: size, Class: class, Pointee: pointee}
}

// ElementType returns the type loads/stores through this pointer observe.
func ElementType(p Pointer) Scalar { return p.Pointee.ElementScalar() }

// AddressingModel mirrors the SPIR-V addressing models the configuration
// can request; pointer arithmetic legality
// depends on which one is in effect.
type AddressingModel uint8

const (
	AddressingLogical AddressingModel = iota
	AddressingPhysical32
	AddressingPhysical64
	AddressingPhysicalStorageBuffer64
)

// IsPhysical reports whether pointer arithmetic is legal under this model.
func (a AddressingModel) IsPhysical() bool {
	return a == AddressingPhysical32 || a == AddressingPhysical64 || a == AddressingPhysicalStorageBuffer64
}

// VariableKind distinguishes the three places a variable pointer's backing
// storage can live: a function-local, a module global, or a value supplied
// from outside the function (a real parameter, an Input/Output interface
// variable, or a descriptor-set binding).
type VariableKind uint8

const (
	VariableLocal VariableKind = iota
	VariableGlobal
	VariableExternParam
)

// Module is the minimal surface the type model needs from the owning
// module to compute layout: struct stride/alignment of array elements for
// fat-pointer arithmetic.
type Module interface {
	// MemoryIsSixtyFour reports whether the module's linear memory uses
	// 64-bit addresses (affects isize and fat-pointer index width).
	MemoryIsSixtyFour() bool
	// Addressing reports the effective SPIR-V addressing model.
	Addressing() AddressingModel
}

// ISize returns the scalar used for "pointer-sized integer" conversions,
// depending on whether the module's addressing is 32 or 64 bit.
func ISize(m Module) Scalar {
	if m.MemoryIsSixtyFour() {
		return I64
	}
	return I32
}

// ByteSizeOfScalar is ByteSize under another name, used by callers that
// already know they hold a valid Scalar constant; like ByteSize it panics
// on any other value.
func ByteSizeOfScalar(s Scalar) uint32 { return ByteSize(s) }

// ComptimeByteSize returns the compile-time-known byte size of a pointee,
// used to derive the stride for fat-pointer byte-offset-to-index division.
// Structured-array pointees have no fixed size (ok is false).
func ComptimeByteSize(p Pointee, m Module) (uint32, bool) {
	if p.Composite == nil {
		return ByteSize(p.Scalar), true
	}
	switch p.Composite.Kind {
	case CompositeVector:
		return ByteSize(p.Composite.Elem) * p.Composite.Count, true
	case CompositeStructured:
		return ByteSize(p.Composite.Elem), true
	case CompositeStructuredArray:
		return 0, false
	default:
		return 0, false
	}
}

// Capability is a SPIR-V capability flag, named the way the emitter refers
// to it; the numeric SPIR-V encoding lives in the spirv package.
type Capability uint8

const (
	CapShader Capability = iota
	CapFloat64
	CapInt64
	CapAddresses
	CapPhysicalStorageBufferAddresses
	CapGenericPointer
	CapVariablePointers
	CapVariablePointersStorageBuffer
)

func (c Capability) String() string {
	switch c {
	case CapShader:
		return "Shader"
	case CapFloat64:
		return "Float64"
	case CapInt64:
		return "Int64"
	case CapAddresses:
		return "Addresses"
	case CapPhysicalStorageBufferAddresses:
		return "PhysicalStorageBufferAddresses"
	case CapGenericPointer:
		return "GenericPointer"
	case CapVariablePointers:
		return "VariablePointers"
	case CapVariablePointersStorageBuffer:
		return "VariablePointersStorageBuffer"
	default:
		return fmt.Sprintf("Capability(%d)", uint8(c))
	}
}

// RequiredCapabilities returns the capabilities a scalar requires to exist
// as a SPIR-V type, independent of how it is used.
func RequiredCapabilities(s Scalar) []Capability {
	switch s {
	case F64:
		return []Capability{CapFloat64}
	case I64:
		return []Capability{CapInt64}
	default:
		return nil
	}
}

// RequiredPointerCapabilities returns the capabilities a pointer of the
// given storage class requires: Generic needs GenericPointer,
// PhysicalStorageBuffer needs PhysicalStorageBufferAddresses.
func RequiredPointerCapabilities(class StorageClass) []Capability {
	switch class {
	case StorageGeneric:
		return []Capability{CapGenericPointer}
	case StoragePhysicalStorageBuffer:
		return []Capability{CapPhysicalStorageBufferAddresses}
	default:
		return nil
	}
}
