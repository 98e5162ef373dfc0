// Package ssair implements the low-level IL the translator targets: a
// control-flow graph of extended basic blocks (EBBs) carrying typed SSA
// values, block arguments in place of phi nodes, and a Braun-style
// incomplete-SSA construction for Wasm locals (declare_var/def_var/use_var).
//
// This is the "IL Builder" external collaborator of the translator's spec
// made concrete: the translator package depends only on the Builder
// interface (builder.go); this file and instruction.go hold the data model.
package ssair

import "fmt"

// Type is an IL scalar type.
type Type byte

const (
	TypeInvalid Type = iota
	TypeI32
	TypeI64
	TypeF32
	TypeF64
)

func (t Type) String() string {
	switch t {
	case TypeI32:
		return "i32"
	case TypeI64:
		return "i64"
	case TypeF32:
		return "f32"
	case TypeF64:
		return "f64"
	default:
		return "invalid"
	}
}

// Local is an opaque dense index identifying a Wasm local (function
// parameters concatenated with declared locals). The backend materializes
// its SSA values via DeclareVar/DefVar/UseVar.
type Local uint32

// Value is an opaque SSA value handle.
type Value struct {
	id    uint32
	typ   Type
	valid bool
}

// ValueInvalid is the zero Value; IsValid reports false for it.
var ValueInvalid = Value{}

// IsValid reports whether v was produced by the builder, as opposed to a
// zero-initialized placeholder.
func (v Value) IsValid() bool { return v.valid }

// Type returns the scalar type this value was allocated with.
func (v Value) Type() Type { return v.typ }

func (v Value) String() string {
	if !v.valid {
		return "<invalid>"
	}
	return fmt.Sprintf("v%d", v.id)
}

// EBB is an opaque handle to an extended basic block.
type EBB struct {
	id    int
	valid bool
}

func (e EBB) IsValid() bool { return e.valid }

func (e EBB) String() string {
	if !e.valid {
		return "<invalid ebb>"
	}
	return fmt.Sprintf("ebb%d", e.id)
}

// InstHandle is an opaque handle to a previously-inserted instruction,
// returned so callers can later rewrite it (change_jump_destination) or
// read its results (inst_results).
type InstHandle struct {
	blk, idx int
	valid    bool
}

func (h InstHandle) IsValid() bool { return h.valid }

// JumpTable is an opaque handle to a br_table jump table under
// construction via CreateJumpTable/InsertJumpTableEntry.
type JumpTable struct {
	id int
}

// SigRef is an opaque reference into a function's imported-signature table.
type SigRef uint32

// FuncRef is an opaque reference into a function's imported-function table.
type FuncRef uint32

// Signature is an IL function signature.
type Signature struct {
	Params  []Type
	Results []Type
}

// ExtFuncData names an externally-defined function being imported into the
// IL so the core can emit calls to it.
type ExtFuncData struct {
	Name      string
	Signature SigRef
}

// Offset32 is a 32-bit byte offset added to a memory instruction's base address.
type Offset32 uint32

// IntegerCmpCond is the condition code for an Icmp instruction.
type IntegerCmpCond byte

const (
	IntegerCmpCondEqual IntegerCmpCond = iota
	IntegerCmpCondNotEqual
	IntegerCmpCondSignedLessThan
	IntegerCmpCondSignedGreaterThanOrEqual
	IntegerCmpCondSignedGreaterThan
	IntegerCmpCondSignedLessThanOrEqual
	IntegerCmpCondUnsignedLessThan
	IntegerCmpCondUnsignedGreaterThanOrEqual
	IntegerCmpCondUnsignedGreaterThan
	IntegerCmpCondUnsignedLessThanOrEqual
)

// FloatCmpCond is the condition code for an Fcmp instruction.
type FloatCmpCond byte

const (
	FloatCmpCondEqual FloatCmpCond = iota
	FloatCmpCondNotEqual
	FloatCmpCondLessThan
	FloatCmpCondLessThanOrEqual
	FloatCmpCondGreaterThan
	FloatCmpCondGreaterThanOrEqual
)
