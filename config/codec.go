package config

import (
	"encoding/binary"
	"io"

	"github.com/gogpu/wasm2spirv/types"
)

// Decode reads a Config from its persisted binary representation: little
// endian, self-describing with small integer tags, length-prefixed
// containers and UTF-8 strings.
func Decode(r io.Reader) (Config, error) {
	d := &decoder{r: r}
	var c Config
	platform, err := d.platform()
	if err != nil {
		return Config{}, err
	}
	c.Platform = platform
	if c.Features, err = d.u64(); err != nil {
		return Config{}, err
	}
	if c.AddressingModel, err = d.addressingModel(); err != nil {
		return Config{}, err
	}
	if c.MemoryModel, err = d.memoryModel(); err != nil {
		return Config{}, err
	}
	if c.MemoryGrowError, err = d.memoryGrowError(); err != nil {
		return Config{}, err
	}
	if c.Capabilities, err = d.capabilityModel(); err != nil {
		return Config{}, err
	}
	if c.Extensions, err = d.extensionModel(); err != nil {
		return Config{}, err
	}
	if c.Functions, err = d.functions(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Encode writes a Config to its persisted binary representation.
func Encode(w io.Writer, c Config) error {
	e := &encoder{w: w}
	if err := e.platform(c.Platform); err != nil {
		return err
	}
	if err := e.u64(c.Features); err != nil {
		return err
	}
	if err := e.addressingModel(c.AddressingModel); err != nil {
		return err
	}
	if err := e.memoryModel(c.MemoryModel); err != nil {
		return err
	}
	if err := e.memoryGrowError(c.MemoryGrowError); err != nil {
		return err
	}
	if err := e.capabilityModel(c.Capabilities); err != nil {
		return err
	}
	if err := e.extensionModel(c.Extensions); err != nil {
		return err
	}
	return e.functions(c.Functions)
}

type decoder struct{ r io.Reader }

func (d *decoder) u8() (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u16() (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (d *decoder) u32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (d *decoder) u64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func (d *decoder) bool() (bool, error) {
	b, err := d.u8()
	return b != 0, err
}

func (d *decoder) string() (string, error) {
	n, err := d.u32()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *decoder) version() (Version, error) {
	major, err := d.u8()
	if err != nil {
		return Version{}, err
	}
	minor, err := d.u8()
	if err != nil {
		return Version{}, err
	}
	return Version{Major: major, Minor: minor}, nil
}

func (d *decoder) platform() (Platform, error) {
	tag, err := d.u16()
	if err != nil {
		return Platform{}, err
	}
	version, err := d.version()
	if err != nil {
		return Platform{}, err
	}
	kind := Vulkan
	if tag == 1 {
		kind = Universal
	}
	return Platform{Kind: kind, Version: version}, nil
}

func (d *decoder) addressingModel() (AddressingModel, error) {
	v, err := d.u16()
	return types.AddressingModel(v), err
}

func (d *decoder) memoryModel() (MemoryModel, error) {
	v, err := d.u32()
	return MemoryModel(v), err
}

func (d *decoder) memoryGrowError() (MemoryGrowError, error) {
	v, err := d.u8()
	return MemoryGrowError(v), err
}

func (d *decoder) capability() (types.Capability, error) {
	v, err := d.u32()
	return types.Capability(v), err
}

func (d *decoder) capabilityModel() (CapabilityModel, error) {
	tag, err := d.u8()
	if err != nil {
		return CapabilityModel{}, err
	}
	n, err := d.u32()
	if err != nil {
		return CapabilityModel{}, err
	}
	list := make([]types.Capability, n)
	for i := range list {
		if list[i], err = d.capability(); err != nil {
			return CapabilityModel{}, err
		}
	}
	mode := Static
	if tag == 1 {
		mode = Dynamic
	}
	return CapabilityModel{Mode: mode, List: list}, nil
}

func (d *decoder) extensionModel() (ExtensionModel, error) {
	tag, err := d.u8()
	if err != nil {
		return ExtensionModel{}, err
	}
	n, err := d.u32()
	if err != nil {
		return ExtensionModel{}, err
	}
	list := make([]string, n)
	for i := range list {
		if list[i], err = d.string(); err != nil {
			return ExtensionModel{}, err
		}
	}
	mode := Static
	if tag == 1 {
		mode = Dynamic
	}
	return ExtensionModel{Mode: mode, List: list}, nil
}

func (d *decoder) scalar() (types.Scalar, error) {
	v, err := d.u16()
	return types.Scalar(v), err
}

func (d *decoder) composite() (types.Composite, error) {
	tag, err := d.u16()
	if err != nil {
		return types.Composite{}, err
	}
	elem, err := d.scalar()
	if err != nil {
		return types.Composite{}, err
	}
	switch types.CompositeKind(tag) {
	case types.CompositeVector:
		count, err := d.u32()
		if err != nil {
			return types.Composite{}, err
		}
		return types.Vector(elem, count), nil
	case types.CompositeStructured:
		return types.Structured(elem), nil
	case types.CompositeStructuredArray:
		return types.StructuredArray(elem), nil
	default:
		return types.Composite{}, types.Errf("unknown composite tag %d", tag)
	}
}

// pointee tag 0 = plain scalar, 1 = composite.
func (d *decoder) pointee() (types.Pointee, error) {
	tag, err := d.u16()
	if err != nil {
		return types.Pointee{}, err
	}
	if tag == 0 {
		scalar, err := d.scalar()
		if err != nil {
			return types.Pointee{}, err
		}
		return types.ScalarPointee(scalar), nil
	}
	comp, err := d.composite()
	if err != nil {
		return types.Pointee{}, err
	}
	return types.CompositePointee(comp), nil
}

func (d *decoder) storageClass() (types.StorageClass, error) {
	v, err := d.u32()
	return types.StorageClass(v), err
}

func (d *decoder) parameterKind() (ParameterKind, error) {
	tag, err := d.u16()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return FunctionParameter{}, nil
	case 1:
		loc, err := d.u32()
		if err != nil {
			return nil, err
		}
		return Input{Location: loc}, nil
	case 2:
		loc, err := d.u32()
		if err != nil {
			return nil, err
		}
		return Output{Location: loc}, nil
	case 3:
		class, err := d.storageClass()
		if err != nil {
			return nil, err
		}
		set, err := d.u32()
		if err != nil {
			return nil, err
		}
		binding, err := d.u32()
		if err != nil {
			return nil, err
		}
		return DescriptorSet{Class: class, Set: set, Binding: binding}, nil
	default:
		return nil, types.Errf("unknown parameter kind tag %d", tag)
	}
}

func (d *decoder) parameter() (Parameter, error) {
	hasType, err := d.bool()
	if err != nil {
		return Parameter{}, err
	}
	var ty *types.Scalar
	if hasType {
		s, err := d.scalar()
		if err != nil {
			return Parameter{}, err
		}
		ty = &s
	}
	kind, err := d.parameterKind()
	if err != nil {
		return Parameter{}, err
	}
	extern, err := d.bool()
	if err != nil {
		return Parameter{}, err
	}
	return Parameter{Type: ty, Kind: kind, IsExternPointer: extern}, nil
}

func (d *decoder) executionMode() (*ExecutionMode, error) {
	has, err := d.bool()
	if err != nil || !has {
		return nil, err
	}
	tag, err := d.u16()
	if err != nil {
		return nil, err
	}
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	operands := make([]uint32, n)
	for i := range operands {
		if operands[i], err = d.u32(); err != nil {
			return nil, err
		}
	}
	return &ExecutionMode{Tag: ExecutionModeTag(tag), Operands: operands}, nil
}

func (d *decoder) executionModel() (*ExecutionModel, error) {
	has, err := d.bool()
	if err != nil || !has {
		return nil, err
	}
	v, err := d.u32()
	if err != nil {
		return nil, err
	}
	model := ExecutionModel(v)
	return &model, nil
}

func (d *decoder) functionConfig() (FunctionConfig, error) {
	model, err := d.executionModel()
	if err != nil {
		return FunctionConfig{}, err
	}
	mode, err := d.executionMode()
	if err != nil {
		return FunctionConfig{}, err
	}
	n, err := d.u32()
	if err != nil {
		return FunctionConfig{}, err
	}
	params := make(map[uint32]Parameter, n)
	for i := uint32(0); i < n; i++ {
		idx, err := d.u32()
		if err != nil {
			return FunctionConfig{}, err
		}
		p, err := d.parameter()
		if err != nil {
			return FunctionConfig{}, err
		}
		params[idx] = p
	}
	return FunctionConfig{ExecutionModel: model, ExecutionMode: mode, Params: params}, nil
}

func (d *decoder) functions() (map[uint32]FunctionConfig, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	out := make(map[uint32]FunctionConfig, n)
	for i := uint32(0); i < n; i++ {
		idx, err := d.u32()
		if err != nil {
			return nil, err
		}
		fc, err := d.functionConfig()
		if err != nil {
			return nil, err
		}
		out[idx] = fc
	}
	return out, nil
}

type encoder struct{ w io.Writer }

func (e *encoder) u8(v uint8) error {
	_, err := e.w.Write([]byte{v})
	return err
}

func (e *encoder) u16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := e.w.Write(b[:])
	return err
}

func (e *encoder) u32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := e.w.Write(b[:])
	return err
}

func (e *encoder) u64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := e.w.Write(b[:])
	return err
}

func (e *encoder) boolean(v bool) error {
	if v {
		return e.u8(1)
	}
	return e.u8(0)
}

func (e *encoder) string(s string) error {
	if err := e.u32(uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

func (e *encoder) version(v Version) error {
	if err := e.u8(v.Major); err != nil {
		return err
	}
	return e.u8(v.Minor)
}

func (e *encoder) platform(p Platform) error {
	tag := uint16(0)
	if p.Kind == Universal {
		tag = 1
	}
	if err := e.u16(tag); err != nil {
		return err
	}
	return e.version(p.Version)
}

func (e *encoder) addressingModel(a AddressingModel) error { return e.u16(uint16(a)) }
func (e *encoder) memoryModel(m MemoryModel) error         { return e.u32(uint32(m)) }
func (e *encoder) memoryGrowError(m MemoryGrowError) error { return e.u8(uint8(m)) }
func (e *encoder) capability(c types.Capability) error     { return e.u32(uint32(c)) }

func (e *encoder) capabilityModel(m CapabilityModel) error {
	tag := uint8(0)
	if m.Mode == Dynamic {
		tag = 1
	}
	if err := e.u8(tag); err != nil {
		return err
	}
	if err := e.u32(uint32(len(m.List))); err != nil {
		return err
	}
	for _, c := range m.List {
		if err := e.capability(c); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) extensionModel(m ExtensionModel) error {
	tag := uint8(0)
	if m.Mode == Dynamic {
		tag = 1
	}
	if err := e.u8(tag); err != nil {
		return err
	}
	if err := e.u32(uint32(len(m.List))); err != nil {
		return err
	}
	for _, s := range m.List {
		if err := e.string(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) scalar(s types.Scalar) error { return e.u16(uint16(s)) }

func (e *encoder) composite(c types.Composite) error {
	if err := e.u16(uint16(c.Kind)); err != nil {
		return err
	}
	if err := e.scalar(c.Elem); err != nil {
		return err
	}
	if c.Kind == types.CompositeVector {
		return e.u32(c.Count)
	}
	return nil
}

func (e *encoder) pointee(p types.Pointee) error {
	if p.Composite == nil {
		if err := e.u16(0); err != nil {
			return err
		}
		return e.scalar(p.Scalar)
	}
	if err := e.u16(1); err != nil {
		return err
	}
	return e.composite(*p.Composite)
}

func (e *encoder) storageClass(c types.StorageClass) error { return e.u32(uint32(c)) }

func (e *encoder) parameterKind(k ParameterKind) error {
	switch v := k.(type) {
	case FunctionParameter:
		return e.u16(0)
	case Input:
		if err := e.u16(1); err != nil {
			return err
		}
		return e.u32(v.Location)
	case Output:
		if err := e.u16(2); err != nil {
			return err
		}
		return e.u32(v.Location)
	case DescriptorSet:
		if err := e.u16(3); err != nil {
			return err
		}
		if err := e.storageClass(v.Class); err != nil {
			return err
		}
		if err := e.u32(v.Set); err != nil {
			return err
		}
		return e.u32(v.Binding)
	default:
		return types.Unexpectedf("unknown parameter kind %T", k)
	}
}

func (e *encoder) parameter(p Parameter) error {
	if err := e.boolean(p.Type != nil); err != nil {
		return err
	}
	if p.Type != nil {
		if err := e.scalar(*p.Type); err != nil {
			return err
		}
	}
	if err := e.parameterKind(p.Kind); err != nil {
		return err
	}
	return e.boolean(p.IsExternPointer)
}

func (e *encoder) executionMode(m *ExecutionMode) error {
	if m == nil {
		return e.boolean(false)
	}
	if err := e.boolean(true); err != nil {
		return err
	}
	if err := e.u16(uint16(m.Tag)); err != nil {
		return err
	}
	if err := e.u32(uint32(len(m.Operands))); err != nil {
		return err
	}
	for _, o := range m.Operands {
		if err := e.u32(o); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) executionModel(m *ExecutionModel) error {
	if m == nil {
		return e.boolean(false)
	}
	if err := e.boolean(true); err != nil {
		return err
	}
	return e.u32(uint32(*m))
}

func (e *encoder) functionConfig(fc FunctionConfig) error {
	if err := e.executionModel(fc.ExecutionModel); err != nil {
		return err
	}
	if err := e.executionMode(fc.ExecutionMode); err != nil {
		return err
	}
	if err := e.u32(uint32(len(fc.Params))); err != nil {
		return err
	}
	for idx, p := range fc.Params {
		if err := e.u32(idx); err != nil {
			return err
		}
		if err := e.parameter(p); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) functions(fns map[uint32]FunctionConfig) error {
	if err := e.u32(uint32(len(fns))); err != nil {
		return err
	}
	for idx, fc := range fns {
		if err := e.u32(idx); err != nil {
			return err
		}
		if err := e.functionConfig(fc); err != nil {
			return err
		}
	}
	return nil
}
