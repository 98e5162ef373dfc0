// Package envrt implements the "Runtime" collaborator the translator
// delegates memory, global, and indirect-call lowering to: wiring a Wasm
// module's linear memory, globals, and table onto the IL is inherently
// embedder-specific (flat address space vs. segmented, bounds-checked vs.
// trap-on-signal, and so on), so the translator only ever sees the
// Runtime interface and treats its return values as opaque.
package envrt

import "github.com/waspile/waspile/ssair"

// Runtime is the capability surface the translator consumes (spec.md §6).
type Runtime interface {
	// NextFunction resets any per-function scratch state the runtime keeps,
	// called once before each function body is translated.
	NextFunction()

	// TranslateMemoryBaseAddress returns the base address Value of the
	// given memory, to be added to a zero-extended Wasm address by the core.
	TranslateMemoryBaseAddress(b ssair.Builder, memoryIndex uint32) ssair.Value

	// TranslateGetGlobal returns the current value of the given global.
	TranslateGetGlobal(b ssair.Builder, globalIndex uint32, typ ssair.Type) ssair.Value
	// TranslateSetGlobal stores v into the given global.
	TranslateSetGlobal(b ssair.Builder, globalIndex uint32, v ssair.Value)

	// TranslateGrowMemory implements memory.grow: deltaPages in, previous
	// size in pages out.
	TranslateGrowMemory(b ssair.Builder, memoryIndex uint32, deltaPages ssair.Value) ssair.Value
	// TranslateCurrentMemory implements memory.size: current size in pages.
	TranslateCurrentMemory(b ssair.Builder, memoryIndex uint32) ssair.Value

	// TranslateCallIndirect implements call_indirect: indexVal selects the
	// table slot, sig is the expected signature, args are the Wasm-level
	// call arguments (not including indexVal).
	TranslateCallIndirect(b ssair.Builder, sig ssair.SigRef, indexVal ssair.Value, args []ssair.Value, results []ssair.Type) []ssair.Value
}
