package config

import (
	"bytes"
	"testing"

	"github.com/gogpu/wasm2spirv/types"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	loc := types.I32
	c := Config{
		Platform:        Platform{Kind: Vulkan, Version: Version1_3},
		Features:        0x1,
		AddressingModel: types.AddressingLogical,
		MemoryModel:     MemoryGLSL450,
		MemoryGrowError: Soft,
		Capabilities:    CapabilityModel{Mode: Static, List: []types.Capability{types.CapShader}},
		Extensions:      ExtensionModel{Mode: Dynamic, List: []string{"SPV_KHR_storage_buffer_storage_class"}},
		Functions: map[uint32]FunctionConfig{
			0: {
				Params: map[uint32]Parameter{
					0: {Type: &loc, Kind: FunctionParameter{}},
					1: {Kind: DescriptorSet{Class: types.StorageStorageBuffer, Set: 0, Binding: 1}, IsExternPointer: true},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Platform != c.Platform {
		t.Errorf("Platform = %+v, want %+v", got.Platform, c.Platform)
	}
	if got.Features != c.Features {
		t.Errorf("Features = %v, want %v", got.Features, c.Features)
	}
	if got.AddressingModel != c.AddressingModel {
		t.Errorf("AddressingModel = %v, want %v", got.AddressingModel, c.AddressingModel)
	}
	fc, ok := got.Functions[0]
	if !ok {
		t.Fatalf("missing function config for index 0")
	}
	if len(fc.Params) != 2 {
		t.Fatalf("Params len = %d, want 2", len(fc.Params))
	}
	p1 := fc.Params[1]
	ds, ok := p1.Kind.(DescriptorSet)
	if !ok {
		t.Fatalf("Params[1].Kind = %T, want DescriptorSet", p1.Kind)
	}
	if ds.Set != 0 || ds.Binding != 1 || ds.Class != types.StorageStorageBuffer {
		t.Errorf("DescriptorSet = %+v, want set 0 binding 1 storage-buffer", ds)
	}
	if !p1.IsExternPointer {
		t.Errorf("Params[1].IsExternPointer = false, want true")
	}
}

func TestResolveAddressingModel(t *testing.T) {
	cases := []struct {
		name     string
		model    types.AddressingModel
		mem64    bool
		want     types.AddressingModel
		wantErr  bool
	}{
		{"logical", types.AddressingLogical, false, types.AddressingLogical, false},
		{"physical32-on-32bit-memory", types.AddressingPhysical32, false, types.AddressingPhysical32, false},
		{"physical-upgrades-with-memory64", types.AddressingPhysical32, true, types.AddressingPhysical64, false},
		{"physical-storage-buffer-requires-memory64", types.AddressingPhysicalStorageBuffer64, false, 0, true},
		{"physical-storage-buffer-with-memory64", types.AddressingPhysicalStorageBuffer64, true, types.AddressingPhysicalStorageBuffer64, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveAddressingModel(tc.model, tc.mem64)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
