package fg

import (
	"strings"
	"testing"

	"github.com/gogpu/wasm2spirv/types"
)

// fakeVariableFactory hands out a distinct backing Pointer per call,
// mirroring frontend.FunctionContext.NewLocalPointer closely enough to
// exercise Schrödinger's lazy-allocation paths.
type fakeVariableFactory struct{ n int }

func (f *fakeVariableFactory) NewLocalPointer(name string, class types.StorageClass, pointee types.Pointee, size types.PointerSize) *Pointer {
	f.n++
	return NewVariablePointer(name, types.VariableLocal, class, pointee, size)
}

func TestSchrodingerUninitializedReadFails(t *testing.T) {
	vf := &fakeVariableFactory{}
	s := NewSchrodinger(types.I32)

	if _, err := s.ToInteger(vf); err == nil {
		t.Fatalf("ToInteger on an uninitialized schrödinger should fail")
	} else if !strings.Contains(err.Error(), "still uninitialized") {
		t.Errorf("unexpected error: %v", err)
	}
	if s.State != SchrodingerUninit {
		t.Errorf("a failed ToInteger must not commit state, got %v", s.State)
	}
	if s.IntShadow != nil {
		t.Errorf("a failed ToInteger must not allocate a backing variable")
	}

	if _, err := s.ToPointer(vf, types.StorageFunction, types.ScalarPointee(types.I32), types.Skinny); err == nil {
		t.Fatalf("ToPointer on an uninitialized schrödinger should fail")
	} else if !strings.Contains(err.Error(), "still uninitialized") {
		t.Errorf("unexpected error: %v", err)
	}
	if s.State != SchrodingerUninit {
		t.Errorf("a failed ToPointer must not commit state, got %v", s.State)
	}
	if s.PtrShadow != nil {
		t.Errorf("a failed ToPointer must not allocate a backing variable")
	}
}

func TestSchrodingerCommitsIntOnFirstStore(t *testing.T) {
	vf := &fakeVariableFactory{}
	s := NewSchrodinger(types.I32)

	v := &Integer{Source: ConstSource{Bits: 7}, Kind: types.I32}
	if _, err := s.StoreInteger(vf, v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State != SchrodingerInt {
		t.Fatalf("state = %v, want SchrodingerInt", s.State)
	}

	got, err := s.ToInteger(vf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	load, ok := got.Source.(LoadSource)
	if !ok || load.Pointer != s.IntShadow {
		t.Errorf("ToInteger should load from the committed IntShadow, got %#v", got.Source)
	}
}

func TestSchrodingerCommitsPtrOnFirstStore(t *testing.T) {
	vf := &fakeVariableFactory{}
	s := NewSchrodinger(types.I32)

	pointee := types.ScalarPointee(types.I32)
	p := NewVariablePointer("%somewhere", types.VariableGlobal, types.StorageFunction, pointee, types.Skinny)
	if _, err := s.StorePointer(vf, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State != SchrodingerPtr {
		t.Fatalf("state = %v, want SchrodingerPtr", s.State)
	}

	got, err := s.ToPointer(vf, types.StorageFunction, pointee, types.Skinny)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	load, ok := got.Source.(LoadSource)
	if !ok || load.Pointer != s.PtrShadow {
		t.Errorf("ToPointer should load from the committed PtrShadow, got %#v", got.Source)
	}
}

func TestSchrodingerRejectsKindMismatch(t *testing.T) {
	vf := &fakeVariableFactory{}

	intCommitted := NewSchrodinger(types.I32)
	if _, err := intCommitted.StoreInteger(vf, NewConstInteger(types.I32, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := intCommitted.ToPointer(vf, types.StorageFunction, types.ScalarPointee(types.I32), types.Skinny); err == nil {
		t.Fatalf("ToPointer on an integer-committed schrödinger should fail")
	} else if !strings.Contains(err.Error(), "committed to integer use") {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := intCommitted.StorePointer(vf, NewVariablePointer("%p", types.VariableLocal, types.StorageFunction, types.ScalarPointee(types.I32), types.Skinny)); err == nil {
		t.Fatalf("StorePointer on an integer-committed schrödinger should fail")
	}

	ptrCommitted := NewSchrodinger(types.I32)
	backing := NewVariablePointer("%p", types.VariableLocal, types.StorageFunction, types.ScalarPointee(types.I32), types.Skinny)
	if _, err := ptrCommitted.StorePointer(vf, backing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ptrCommitted.ToInteger(vf); err == nil {
		t.Fatalf("ToInteger on a pointer-committed schrödinger should fail")
	} else if !strings.Contains(err.Error(), "committed to pointer use") {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ptrCommitted.StoreInteger(vf, NewConstInteger(types.I32, 1)); err == nil {
		t.Fatalf("StoreInteger on a pointer-committed schrödinger should fail")
	}
}

func TestSchrodingerStorePointerWithOffsetAddsShadow(t *testing.T) {
	vf := &fakeVariableFactory{}
	s := NewSchrodinger(types.I32)

	pointee := types.CompositePointee(types.StructuredArray(types.I32))
	base := NewVariablePointer("%binding_0_0", types.VariableExternParam, types.StorageStorageBuffer, pointee, types.Fat)
	offset := NewConstInteger(types.I32, 4)
	accessed, err := Access(base, offset, types.AddressingLogical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stores, err := s.StorePointer(vf, accessed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("expected a base store and an offset store, got %d", len(stores))
	}
	if s.OffsetShadow == nil {
		t.Errorf("expected an offset shadow to be allocated")
	}
}
