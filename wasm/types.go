// Package wasm holds the module-level Wasm data model consumed by the
// translator: value types, function signatures, and the section tables a
// decoded module exposes. It owns no behavior beyond normalising these
// shapes; decoding them from the binary format lives in package decode.
package wasm

import "fmt"

// Index is a dense index into one of a module's index spaces (functions,
// types, globals, ...). Imports and module-defined entries share a single
// namespace per kind, imports first.
type Index = uint32

// ValueType is a Wasm value type as it appears in the binary format.
type ValueType = byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
	ValueTypeF32 ValueType = 0x7d
	ValueTypeF64 ValueType = 0x7c
)

// ValueTypeName returns the Wasm text-format name of t, or "unknown".
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	default:
		return "unknown"
	}
}

// FunctionType is a Wasm function signature: an ordered list of parameter
// types and an ordered list of result types. Wasm 1.0 allows at most one
// result; this is not enforced here since later proposals (multi-value)
// lift it, and the core translator does not depend on the restriction.
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// String renders typ as parenthesized parameter and result lists, e.g.
// "(i32, i32) -> (i32)".
func (typ *FunctionType) String() string {
	return fmt.Sprintf("%s -> %s", namesOf(typ.Params), namesOf(typ.Results))
}

func namesOf(vts []ValueType) string {
	s := "("
	for i, vt := range vts {
		if i > 0 {
			s += ", "
		}
		s += ValueTypeName(vt)
	}
	return s + ")"
}

// GlobalType describes a module or imported global.
type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// Import is a single entry of the import section. DescFunc is valid when
// Type == ExternTypeFunc; DescGlobal is valid when Type == ExternTypeGlobal.
type Import struct {
	Module, Name string
	Type         ExternType
	DescFunc     Index // index into Module.TypeSection
	DescGlobal   GlobalType
}

// ExternType classifies an import or export.
type ExternType = byte

const (
	ExternTypeFunc   ExternType = 0x00
	ExternTypeTable  ExternType = 0x01
	ExternTypeMemory ExternType = 0x02
	ExternTypeGlobal ExternType = 0x03
)

// Export is a single entry of the export section.
type Export struct {
	Name  string
	Type  ExternType
	Index Index
}

// Global is a single entry of the (module-defined, non-imported) global section.
type Global struct {
	Type GlobalType
	// Init is the constant expression's raw bytes, copied verbatim up to and
	// including its `end` opcode; the translator never needs to evaluate it,
	// only the runtime collaborator does.
	Init []byte
}

// Code is the decoded body of a module-defined function: its local-variable
// declaration groups and the raw operator byte stream (without the leading
// locals-count/type groups, which LocalGroups already holds decoded).
type Code struct {
	LocalGroups []LocalGroup
	Body        []byte
}

// LocalGroup is one (count, type) run of declared locals, as Wasm encodes them.
type LocalGroup struct {
	Count uint32
	Type  ValueType
}

// Module is the subset of a decoded Wasm module the translator needs:
// the type table, the function->signature mapping (imports first), the
// import and export tables, and per-function code. Memory/table/element/
// data sections are omitted here since the core never inspects them
// directly -- it defers to the Runtime collaborator (see package envrt).
type Module struct {
	TypeSection     []FunctionType
	ImportSection   []Import
	ImportFuncCount Index // number of ImportSection entries with Type == ExternTypeFunc

	// FunctionSection maps a module-defined function's index (in the function
	// index space, i.e. offset by ImportFuncCount) to an index into TypeSection.
	FunctionSection []Index

	ExportSection []Export
	GlobalSection []Global

	// HasMemory reports whether the module's memory section declares a linear
	// memory; an imported memory does not set it. The core only needs the
	// boolean fact, the addressing itself is the Runtime collaborator's job.
	HasMemory bool

	CodeSection []Code
}

// FunctionTypeIndex resolves funcIdx (in the combined import+module function
// index space) to an index into TypeSection. funcIdx must be < total function
// count; out-of-range is a contract violation of the upstream parser's
// guarantees and panics rather than erroring, matching the "trusted input"
// posture of spec.md's Non-goals.
func (m *Module) FunctionTypeIndex(funcIdx Index) Index {
	if funcIdx < m.ImportFuncCount {
		count := Index(0)
		for _, imp := range m.ImportSection {
			if imp.Type != ExternTypeFunc {
				continue
			}
			if count == funcIdx {
				return imp.DescFunc
			}
			count++
		}
		panic(fmt.Sprintf("wasm: function index %d not found among imports", funcIdx))
	}
	i := funcIdx - m.ImportFuncCount
	if int(i) >= len(m.FunctionSection) {
		panic(fmt.Sprintf("wasm: function index %d out of range", funcIdx))
	}
	return m.FunctionSection[i]
}

// ExportNameOfFunc returns the first export name bound to funcIdx, or "" if
// the function isn't exported. Multiple export names for the same function
// are legal Wasm; the translator only needs one for diagnostics/IL naming.
func (m *Module) ExportNameOfFunc(funcIdx Index) string {
	for _, exp := range m.ExportSection {
		if exp.Type == ExternTypeFunc && exp.Index == funcIdx {
			return exp.Name
		}
	}
	return ""
}

// NumFunctions returns the size of the combined import+module function index space.
func (m *Module) NumFunctions() int {
	return int(m.ImportFuncCount) + len(m.FunctionSection)
}
