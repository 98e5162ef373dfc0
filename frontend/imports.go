package frontend

import (
	"github.com/waspile/waspile/ssair"
	"github.com/waspile/waspile/wasm"
)

// importResolver maintains the per-function mapping from module-level
// function/signature indices to IL-local FuncRef/SigRef, materializing them
// lazily (spec.md §4.3). One instance is scoped to a single translated
// function and is discarded with it.
type importResolver struct {
	module *wasm.Module
	b      ssair.Builder

	funcRefs map[wasm.Index]ssair.FuncRef
	sigRefs  map[wasm.Index]ssair.SigRef
}

func newImportResolver(module *wasm.Module, b ssair.Builder) *importResolver {
	return &importResolver{
		module:   module,
		b:        b,
		funcRefs: make(map[wasm.Index]ssair.FuncRef),
		sigRefs:  make(map[wasm.Index]ssair.SigRef),
	}
}

// findSignatureImport resolves (or imports) the SigRef for type index s.
func (r *importResolver) findSignatureImport(s wasm.Index) ssair.SigRef {
	if ref, ok := r.sigRefs[s]; ok {
		return ref
	}
	ref := r.b.ImportSignature(ilSignature(r.module.TypeSection[s]))
	r.sigRefs[s] = ref
	return ref
}

// findFunctionImport resolves (or imports) the FuncRef for function index i.
func (r *importResolver) findFunctionImport(i wasm.Index) ssair.FuncRef {
	if ref, ok := r.funcRefs[i]; ok {
		return ref
	}
	sigIdx := r.module.FunctionTypeIndex(i)
	sigRef := r.findSignatureImport(sigIdx)
	ref := r.b.ImportFunction(ssair.ExtFuncData{
		Name:      r.module.ExportNameOfFunc(i),
		Signature: sigRef,
	})
	r.funcRefs[i] = ref
	return ref
}
