package frontend

import (
	"fmt"

	"github.com/gogpu/wasm2spirv/fg"
	"github.com/gogpu/wasm2spirv/types"
)

// LocalSlot is the backing storage behind one WebAssembly local. Every local.get/local.set/local.tee routes through the
// slot that owns its index.
type LocalSlot interface {
	// Get reads the local's current value, per the kind's semantics.
	Get() (fg.Value, error)
	// Set stores v into the local, returning the anchors that must be
	// appended in order.
	Set(v fg.Value) ([]fg.Anchor, error)
}

// scalarLocal backs an f32/f64/bool local: a fixed Function-storage
// pointer, never ambiguous with a pointer type.
type scalarLocal struct{ backing *fg.Pointer }

func (l scalarLocal) Get() (fg.Value, error) { return fg.Load(l.backing, 0, false), nil }

func (l scalarLocal) Set(v fg.Value) ([]fg.Anchor, error) {
	return []fg.Anchor{fg.Store(l.backing, v, 0, false)}, nil
}

// schrodingerLocal backs an i32/i64 local whose use as integer or pointer
// is not yet known.
type schrodingerLocal struct {
	value *fg.Schrodinger
	vf    fg.VariableFactory
}

func (l schrodingerLocal) Get() (fg.Value, error) {
	switch l.value.State {
	case fg.SchrodingerPtr:
		return l.value.ToPointer(l.vf, l.value.PtrShadow.Class, l.value.PtrShadow.Pointee, l.value.PtrShadow.Kind)
	default:
		return l.value.ToInteger(l.vf)
	}
}

func (l schrodingerLocal) Set(v fg.Value) ([]fg.Anchor, error) {
	switch x := v.(type) {
	case *fg.Integer:
		st, err := l.value.StoreInteger(l.vf, x)
		if err != nil {
			return nil, err
		}
		return []fg.Anchor{st}, nil
	case *fg.Pointer:
		stores, err := l.value.StorePointer(l.vf, x)
		if err != nil {
			return nil, err
		}
		anchors := make([]fg.Anchor, len(stores))
		for i, s := range stores {
			anchors[i] = s
		}
		return anchors, nil
	default:
		return nil, types.Unexpectedf("schrödinger store of unsupported value kind %T", v)
	}
}

// externPointerLocal backs a parameter configured as an extern pointer
//: local.get pushes the pointer itself, never loads through it, and
// it is never written back to by the function body.
type externPointerLocal struct{ pointer *fg.Pointer }

func (l externPointerLocal) Get() (fg.Value, error) { return l.pointer, nil }

func (l externPointerLocal) Set(fg.Value) ([]fg.Anchor, error) {
	return nil, types.Errf("Tried to update a constant global variable")
}

// writeOnlyLocal backs an Output-bound parameter: reads observe whatever
// was last written (matching a plain scalar local's semantics), writes
// flow to the Output-storage-class variable itself.
type writeOnlyLocal struct{ pointer *fg.Pointer }

func (l writeOnlyLocal) Get() (fg.Value, error) { return fg.Load(l.pointer, 0, false), nil }

func (l writeOnlyLocal) Set(v fg.Value) ([]fg.Anchor, error) {
	return []fg.Anchor{fg.Store(l.pointer, v, 0, false)}, nil
}

// NewScalarLocal builds the LocalSlot for an f32/f64/bool local or a
// copied-in FunctionParameter/Input parameter: a fixed Function-storage
// backing pointer over ty.
func NewScalarLocal(vf fg.VariableFactory, ty types.Scalar) LocalSlot {
	backing := vf.NewLocalPointer("", types.StorageFunction, types.ScalarPointee(ty), types.Skinny)
	return scalarLocal{backing: backing}
}

// NewSchrodingerLocal builds the LocalSlot for an i32/i64 local whose
// integer-or-pointer use is not yet known.
func NewSchrodingerLocal(vf fg.VariableFactory, ty types.Scalar) LocalSlot {
	return schrodingerLocal{value: fg.NewSchrodinger(ty), vf: vf}
}

// NewExternPointerLocal builds the LocalSlot for a parameter that is
// itself a pointer binding (extern-pointer or descriptor-set): local.get
// pushes pointer directly, stores are rejected.
func NewExternPointerLocal(pointer *fg.Pointer) LocalSlot {
	return externPointerLocal{pointer: pointer}
}

// NewOutputLocal builds the LocalSlot for an Output(location)-bound
// parameter.
func NewOutputLocal(pointer *fg.Pointer) LocalSlot {
	return writeOnlyLocal{pointer: pointer}
}

// Global is a module-level global variable: its backing pointer and
// whether WebAssembly declared it mutable.
type Global struct {
	Pointer *fg.Pointer
	Mutable bool
}

// FunctionContext is the per-function translation state shared by every
// operator translator family: the local slots, the module's globals and
// type table, and the fresh-name counter used to materialize local
// backing variables (implements fg.VariableFactory).
type FunctionContext struct {
	Locals  []LocalSlot
	Globals []Global
	Types   TypeTable
	MemIs64 bool
	// Addressing is the module's effective SPIR-V addressing model,
	// needed by Pointer.access to decide whether scalar pointer
	// arithmetic is legal.
	Addressing types.AddressingModel
	// GrowError selects memory.size's hard/soft failure policy.
	GrowError MemoryGrowPolicy
	// Imports maps a spir_global builtin import's function index to its
	// call-site callback; a `call` to one of these indices
	// is intercepted by translateCall instead of emitting a real call.
	Imports map[uint32]ImportCallback
	// Interface collects the Input/Output storage-class global pointers
	// this function touches (bound parameters and builtin imports),
	// deduplicated by pointer identity, for the entry point's
	// OpEntryPoint interface list.
	Interface []*fg.Pointer

	nameCounter int
}

// AddInterface registers p in the function's entry-point interface list,
// deduplicating by reference equality.
func (c *FunctionContext) AddInterface(p *fg.Pointer) {
	for _, existing := range c.Interface {
		if existing == p {
			return
		}
	}
	c.Interface = append(c.Interface, p)
}

// MemoryGrowPolicy mirrors config.MemoryGrowError without importing the
// config package; the module builder translates the configured policy
// into this one value per function context.
type MemoryGrowPolicy uint8

const (
	GrowHard MemoryGrowPolicy = iota
	GrowSoft
)

// NewLocalPointer implements fg.VariableFactory.
func (c *FunctionContext) NewLocalPointer(name string, class types.StorageClass, pointee types.Pointee, size types.PointerSize) *fg.Pointer {
	if name == "" {
		name = fmt.Sprintf("%%local%d", c.nameCounter)
		c.nameCounter++
	}
	return fg.NewVariablePointer(name, types.VariableLocal, class, pointee, size)
}

func (c *FunctionContext) local(idx uint32) (LocalSlot, error) {
	if int(idx) >= len(c.Locals) {
		return nil, types.Errf("Unknown instruction: local index %d out of range", idx)
	}
	return c.Locals[idx], nil
}

func (c *FunctionContext) global(idx uint32) (Global, error) {
	if int(idx) >= len(c.Globals) {
		return Global{}, types.Errf("Unknown instruction: global index %d out of range", idx)
	}
	return c.Globals[idx], nil
}

func (c *FunctionContext) isize() types.Scalar {
	if c.MemIs64 {
		return types.I64
	}
	return types.I32
}
