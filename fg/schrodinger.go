package fg

import "github.com/gogpu/wasm2spirv/types"

// NewSchrodinger creates an unresolved Schrödinger local of the given
// WebAssembly-level width (i32 or i64 memory addressing).
func NewSchrodinger(bits types.Scalar) *Schrodinger {
	return &Schrodinger{Source: VariableSource{Name: "", Kind: VariableLocal}, Bits: bits, State: SchrodingerUninit}
}

// VariableFactory allocates the backing Pointer variables a Schrödinger
// local materializes on demand. The frontend's function builder supplies
// one so each materialized variable gets a stable, locally-unique name.
type VariableFactory interface {
	NewLocalPointer(name string, class types.StorageClass, pointee types.Pointee, size types.PointerSize) *Pointer
}

// ToInteger reads s as an Integer by loading its IntShadow. It fails while
// s is uninitialized and once s is committed to pointer use; it never
// commits s itself (StoreInteger does). A store of the other kind after
// commitment is rejected; no integer/pointer conversion is made.
func (s *Schrodinger) ToInteger(vf VariableFactory) (*Integer, error) {
	switch s.State {
	case SchrodingerUninit:
		return nil, types.Errf("schrödinger variable is still uninitialized")
	case SchrodingerInt:
		v := Load(s.IntShadow, 0, false)
		i, ok := v.(*Integer)
		if !ok {
			return nil, types.Unexpectedf("schrödinger integer shadow produced non-integer load")
		}
		return i, nil
	case SchrodingerPtr:
		return nil, types.Errf("schrödinger local already committed to pointer use")
	default:
		return nil, types.Unexpectedf("unknown schrödinger state %d", s.State)
	}
}

// ToPointer reads s as a Pointer by loading its PtrShadow, applying the
// OffsetShadow (if any) as an access. It fails while s is uninitialized
// and once s is committed to integer use; StorePointer commits s and
// allocates the shadows.
func (s *Schrodinger) ToPointer(vf VariableFactory, class types.StorageClass, pointee types.Pointee, size types.PointerSize) (*Pointer, error) {
	switch s.State {
	case SchrodingerUninit:
		return nil, types.Errf("schrödinger variable is still uninitialized")
	case SchrodingerPtr:
		v := Load(s.PtrShadow, 0, false)
		p, ok := v.(*Pointer)
		if !ok {
			return nil, types.Unexpectedf("schrödinger pointer shadow produced non-pointer load")
		}
		if s.OffsetShadow != nil {
			offsetVal := Load(s.OffsetShadow, 0, false)
			offsetInt, ok := offsetVal.(*Integer)
			if !ok {
				return nil, types.Unexpectedf("schrödinger offset shadow produced non-integer load")
			}
			return Access(p, offsetInt, types.AddressingLogical)
		}
		return p, nil
	case SchrodingerInt:
		return nil, types.Errf("schrödinger local already committed to integer use")
	default:
		return nil, types.Unexpectedf("unknown schrödinger state %d", s.State)
	}
}

// StoreInteger stores an integer into the Schrödinger's backing variable,
// materializing it as CommittedInt on first use.
func (s *Schrodinger) StoreInteger(vf VariableFactory, v *Integer) (AnchorStore, error) {
	if s.State == SchrodingerUninit {
		s.State = SchrodingerInt
		s.IntShadow = vf.NewLocalPointer("", types.StorageFunction, types.ScalarPointee(s.Bits), types.Skinny)
	}
	if s.State != SchrodingerInt {
		return AnchorStore{}, types.Errf("schrödinger local already committed to pointer use")
	}
	return Store(s.IntShadow, v, 0, false), nil
}

// StorePointer stores a pointer into the Schrödinger's backing variable,
// materializing it (and its lazily-allocated offset shadow, isize,
// Function storage) as CommittedPtr on first use. The returned
// anchors must both be appended, in order: the base-pointer store, then
// (when present) the accumulated-offset store.
func (s *Schrodinger) StorePointer(vf VariableFactory, p *Pointer) ([]AnchorStore, error) {
	if s.State == SchrodingerUninit {
		s.State = SchrodingerPtr
		s.PtrShadow = vf.NewLocalPointer("", p.Class, p.Pointee, p.Kind)
	}
	if s.State != SchrodingerPtr {
		return nil, types.Errf("schrödinger local already committed to integer use")
	}
	base, offset := SplitPointerOffset(p)
	stores := []AnchorStore{Store(s.PtrShadow, base, 0, false)}
	if offset != nil {
		if s.OffsetShadow == nil {
			s.OffsetShadow = vf.NewLocalPointer("", types.StorageFunction, types.ScalarPointee(offset.Kind), types.Skinny)
		}
		stores = append(stores, Store(s.OffsetShadow, offset, 0, false))
	}
	return stores, nil
}
