package fg

import "github.com/gogpu/wasm2spirv/types"

// NewVariablePointer builds the canonical Pointer value for a local,
// global, or descriptor-set-bound variable. Every later local.get/
// global.get for the same variable must reuse this exact pointer (never
// construct a new one) so that reference-equality sharing and
// memoization hold.
func NewVariablePointer(name string, kind types.VariableKind, class types.StorageClass, pointee types.Pointee, size types.PointerSize) *Pointer {
	return &Pointer{
		Source:  VariableSource{Name: name, Kind: variableKind(kind)},
		Class:   class,
		Pointee: pointee,
		Kind:    size,
	}
}

func variableKind(k types.VariableKind) VariableKind {
	switch k {
	case types.VariableLocal:
		return VariableLocal
	case types.VariableGlobal:
		return VariableGlobal
	case types.VariableExternParam:
		return VariableExternParam
	default:
		return VariableLocal
	}
}

// Access implements Pointer.access(byte_offset): for a fat pointer,
// the byte offset accumulates into the offset shadow expression; for a
// skinny pointer it is graph-equivalent (the accumulated byte_offset is
// carried for structured-array/physical access-chain lowering at
// emission time) but requires a physical addressing model unless the
// pointee is a structured-array (handled via the zero-index prefix, which
// needs no arithmetic capability).
func Access(base *Pointer, byteOffset *Integer, addressing types.AddressingModel) (*Pointer, error) {
	if base.Kind == types.Fat {
		newOffset := byteOffset
		if base.Offset != nil {
			sum, err := NewBinaryInteger(byteOffset.Kind, BinAdd, base.Offset, byteOffset)
			if err != nil {
				return nil, err
			}
			newOffset = sum
		}
		return &Pointer{
			Source:  AccessSource{Base: base, ByteOffset: byteOffset},
			Class:   base.Class,
			Pointee: base.Pointee,
			Kind:    types.Fat,
			Offset:  newOffset,
		}, nil
	}

	// Skinny pointer to a structured-array pointee: access-chain lowering
	// with a prefixed zero struct-index needs no Addresses capability,
	// because OpAccessChain over a logical pointer is always legal.
	if base.Pointee.Composite != nil && base.Pointee.Composite.Kind == types.CompositeStructuredArray {
		return &Pointer{
			Source:  AccessSource{Base: base, ByteOffset: byteOffset},
			Class:   base.Class,
			Pointee: base.Pointee,
			Kind:    types.Skinny,
		}, nil
	}

	// Skinny pointer to a scalar: only legal as ptr-access-chain under a
	// physical addressing model.
	if !addressing.IsPhysical() {
		return nil, types.Errf("logical pointer")
	}
	return &Pointer{
		Source:  AccessSource{Base: base, ByteOffset: byteOffset},
		Class:   base.Class,
		Pointee: base.Pointee,
		Kind:    types.Skinny,
	}, nil
}

// FromInteger reinterprets an integer's bit pattern as a pointer (the
// inverse of converting a pointer to isize): used for WebAssembly linear
// memory addresses, which arrive on the abstract stack as raw integers
// rather than already-materialized pointer values.
func FromInteger(operand *Integer, class types.StorageClass, pointee types.Pointee, size types.PointerSize) *Pointer {
	return &Pointer{Source: FromIntegerSource{Operand: operand}, Class: class, Pointee: pointee, Kind: size}
}

// Cast implements Pointer.cast: a no-op when the pointee already
// matches, otherwise a new pointer value whose emission uses OpBitcast.
// Fat pointers keep their accumulated offset across a cast.
func Cast(base *Pointer, newPointee types.Pointee) *Pointer {
	if base.Pointee == newPointee {
		return base
	}
	return &Pointer{
		Source:  CastSource{Base: base, NewPointee: newPointee},
		Class:   base.Class,
		Pointee: newPointee,
		Kind:    base.Kind,
		Offset:  base.Offset,
	}
}

// autoAccessZero implements the "structured pointees auto-access(0) first"
// rule shared by Load and Store.
func autoAccessZero(p *Pointer) *Pointer {
	if !p.Pointee.IsWrapped() || p.Pointee.Composite.Kind == types.CompositeStructuredArray {
		return p
	}
	zero := NewConstInteger(types.I32, 0)
	return &Pointer{
		Source:  AccessSource{Base: p, ByteOffset: zero},
		Class:   p.Class,
		Pointee: p.Pointee,
		Kind:    p.Kind,
		Offset:  p.Offset,
	}
}

// Load implements Pointer.load: dispatches by pointee kind to
// produce the matching value-graph node.
func Load(p *Pointer, log2Align uint8, hasAlign bool) Value {
	p = autoAccessZero(p)
	src := LoadSource{Pointer: p, Log2Align: log2Align, HasAlign: hasAlign}
	scalar := p.Pointee.ElementScalar()
	if p.Pointee.Composite != nil && p.Pointee.Composite.Kind == types.CompositeVector {
		return &Vector{Source: src, Elem: p.Pointee.Composite.Elem, Count: p.Pointee.Composite.Count}
	}
	switch scalar {
	case types.Bool:
		return &Bool{Source: src}
	case types.F32, types.F64:
		return &Float{Source: src, Kind: scalar}
	default:
		return &Integer{Source: src, Kind: scalar}
	}
}

// Store implements Pointer.store: produces a Store anchor, autoaccessing(0)
// structured pointees first.
func Store(p *Pointer, value Value, log2Align uint8, hasAlign bool) AnchorStore {
	p = autoAccessZero(p)
	return AnchorStore{Target: p, Value: value, Log2Align: log2Align, HasAlign: hasAlign}
}

// ArrayLength queries the runtime length of the structured array backing a
// fat pointer's wrapping struct.
func ArrayLength(p *Pointer) *Integer {
	return &Integer{Source: ArrayLengthSource{Base: p}, Kind: types.I32}
}

// SplitPointerOffset separates a pointer's accumulated fat-pointer byte
// offset from its base, used by Schrödinger resolution when a
// stored value doesn't fit the committed storage class cleanly.
func SplitPointerOffset(p *Pointer) (*Pointer, *Integer) {
	if p.Offset == nil {
		return p, nil
	}
	base := *p
	base.Offset = nil
	return &base, p.Offset
}
