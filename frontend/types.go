// Package frontend implements the function-body translator: the single-pass
// walk that turns one Wasm function's operator stream into an ssair.Function,
// reconciling Wasm's structured control flow and implicit operand stack with
// the IL's EBB/block-argument model. This is the core of the module; every
// other package here is an external collaborator it consumes (spec.md §6).
package frontend

import (
	"fmt"

	"github.com/waspile/waspile/ssair"
	"github.com/waspile/waspile/wasm"
)

// ilType maps a Wasm value-type byte to its IL scalar type. Panics on an
// unrecognized byte: the upstream parser is trusted (spec.md §1 Non-goals),
// so an invalid value type here is a contract violation, not user error.
func ilType(vt wasm.ValueType) ssair.Type {
	switch vt {
	case wasm.ValueTypeI32:
		return ssair.TypeI32
	case wasm.ValueTypeI64:
		return ssair.TypeI64
	case wasm.ValueTypeF32:
		return ssair.TypeF32
	case wasm.ValueTypeF64:
		return ssair.TypeF64
	default:
		panic(fmt.Sprintf("frontend: unrecognized wasm value type %#x", vt))
	}
}

// ilSignature converts a Wasm function type to an IL signature.
func ilSignature(ft wasm.FunctionType) ssair.Signature {
	sig := ssair.Signature{
		Params:  make([]ssair.Type, len(ft.Params)),
		Results: make([]ssair.Type, len(ft.Results)),
	}
	for i, p := range ft.Params {
		sig.Params[i] = ilType(p)
	}
	for i, r := range ft.Results {
		sig.Results[i] = ilType(r)
	}
	return sig
}

// blockReturnTypes decodes a block-type byte (spec.md §4.2's `ty`) into the
// IL result-type vector of the EBB it opens. In the Wasm MVP encoding this
// is either 0x40 (empty), or a single value type byte -- multi-value block
// types (a signed LEB128 type-section index) are out of scope here, matching
// the single-result shape spec.md's control-frame model assumes.
func blockReturnTypes(bt int8) []ssair.Type {
	const empty = 0x40
	if bt == empty {
		return nil
	}
	return []ssair.Type{ilType(wasm.ValueType(uint8(bt)))}
}
