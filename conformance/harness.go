//go:build amd64 && cgo

// Package conformance differentially tests the translator: for a given
// function it runs the source Wasm module under wasmtime-go (the oracle)
// and the same function's translated IL under ssair.Evaluate, then compares
// results. Grounded on the teacher's internal/integration_test/vs/wasmtime
// harness, repurposed from a performance benchmark comparison to a
// correctness comparison against this repo's own IL instead of a second
// Wasm engine.
package conformance

import (
	"fmt"

	"github.com/bytecodealliance/wasmtime-go"
	"go.uber.org/zap"

	"github.com/waspile/waspile/decode"
	"github.com/waspile/waspile/envrt"
	"github.com/waspile/waspile/frontend"
	"github.com/waspile/waspile/ssair"
	"github.com/waspile/waspile/wasm"
)

// findExportedFunc resolves funcName to its index in the combined
// import+module function space, and the CodeSection index TranslateFunction
// expects.
func findExportedFunc(m *wasm.Module, funcName string) (absIdx, codeIdx wasm.Index, err error) {
	for _, exp := range m.ExportSection {
		if exp.Type == wasm.ExternTypeFunc && exp.Name == funcName {
			if exp.Index < m.ImportFuncCount {
				return 0, 0, fmt.Errorf("conformance: %q is an imported function, not translatable", funcName)
			}
			return exp.Index, exp.Index - m.ImportFuncCount, nil
		}
	}
	return 0, 0, fmt.Errorf("conformance: no exported function named %q", funcName)
}

// EvaluateIL decodes wasmBytes, translates funcName's body, and interprets
// the resulting IL against args (one raw value per parameter).
func EvaluateIL(wasmBytes []byte, funcName string, args []uint64) ([]uint64, error) {
	m, err := decode.ParseModule(wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("conformance: decode: %w", err)
	}
	_, codeIdx, err := findExportedFunc(m, funcName)
	if err != nil {
		return nil, err
	}

	fn, err := frontend.TranslateFunction(m, codeIdx, envrt.NewDefaultRuntime(), zap.NewNop().Sugar())
	if err != nil {
		return nil, fmt.Errorf("conformance: translate: %w", err)
	}
	return ssair.Evaluate(fn, args)
}

// EvaluateOracle instantiates wasmBytes under wasmtime and calls funcName
// with args, returning its raw-value results in the same shape EvaluateIL
// does, so callers can compare the two directly.
func EvaluateOracle(wasmBytes []byte, funcName string, args []uint64) ([]uint64, error) {
	m, err := decode.ParseModule(wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("conformance: decode: %w", err)
	}
	absIdx, _, err := findExportedFunc(m, funcName)
	if err != nil {
		return nil, err
	}
	sigIdx := m.FunctionTypeIndex(absIdx)
	sig := m.TypeSection[sigIdx]

	store := wasmtime.NewStore(wasmtime.NewEngine())
	mod, err := wasmtime.NewModule(store.Engine, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("conformance: wasmtime compile: %w", err)
	}
	instance, err := wasmtime.NewInstance(store, mod, nil)
	if err != nil {
		return nil, fmt.Errorf("conformance: wasmtime instantiate: %w", err)
	}
	fn := instance.GetFunc(store, funcName)
	if fn == nil {
		return nil, fmt.Errorf("conformance: %q is not an exported function", funcName)
	}

	callArgs := make([]interface{}, len(args))
	for i, a := range args {
		callArgs[i] = wasmValOf(sig.Params[i], a)
	}

	result, err := fn.Call(store, callArgs...)
	if err != nil {
		return nil, fmt.Errorf("conformance: wasmtime call: %w", err)
	}
	return rawResultsOf(sig.Results, result), nil
}

func wasmValOf(vt wasm.ValueType, raw uint64) interface{} {
	switch vt {
	case wasm.ValueTypeI32:
		return int32(raw)
	case wasm.ValueTypeI64:
		return int64(raw)
	default:
		panic(fmt.Sprintf("conformance: unsupported parameter value type %s", wasm.ValueTypeName(vt)))
	}
}

// rawResultsOf normalizes wasmtime-go's Call return (nil, a single value, or
// a []interface{} for multiple results) into one raw uint64 per result type.
func rawResultsOf(resultTypes []wasm.ValueType, result interface{}) []uint64 {
	if len(resultTypes) == 0 {
		return nil
	}
	var vals []interface{}
	if multi, ok := result.([]interface{}); ok {
		vals = multi
	} else {
		vals = []interface{}{result}
	}
	out := make([]uint64, len(resultTypes))
	for i, v := range vals {
		switch x := v.(type) {
		case int32:
			out[i] = uint64(uint32(x))
		case int64:
			out[i] = uint64(x)
		default:
			panic(fmt.Sprintf("conformance: unsupported result value %v (%T)", v, v))
		}
	}
	return out
}
