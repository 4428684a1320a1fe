// Package spirv lowers a translated wasm2spirv module into a
// SPIR-V binary.
//
// SPIR-V is the standard intermediate language for GPU shaders, used by
// Vulkan, OpenCL, and other APIs.
//
// # Emitter
//
// Emit walks a module.Module's functions, emitting each one's anchor
// stream in order and its referenced value graph on demand:
//
//	bin, err := spirv.Emit(mod)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Anchors (Label, Store, Branch, …) define the observable instruction
// order; a Value is only emitted the first time something actually
// references it, and its EmitterID cell memoizes the result so a value
// shared by two anchors is emitted once.
//
// # Binary Writer
//
// The package also exposes the low-level binary writer ModuleBuilder
// used to assemble the module's word stream:
//
//	builder := spirv.NewModuleBuilder(spirv.Version1_3)
//	builder.AddCapability(spirv.CapabilityShader)
//	builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//
//	floatType := builder.AddTypeFloat(32)
//	vec4Type := builder.AddTypeVector(floatType, 4)
//
//	binary := builder.Build()
//
// # SPIR-V Structure
//
// SPIR-V modules consist of:
//   - Header (magic, version, generator, bound, schema)
//   - Capabilities (required features)
//   - Extensions (optional extensions)
//   - Extended instruction imports (GLSL.std.450, OpenCL.std)
//   - Memory model (addressing and memory model)
//   - Entry points (shader entry functions)
//   - Execution modes (shader configuration)
//   - Debug information (names, source info)
//   - Annotations (decorations)
//   - Types and constants
//   - Global variables
//   - Functions (code)
//
// # References
//
// SPIR-V Specification: https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html
package spirv
