package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/waspile/waspile/leb128"
	"github.com/waspile/waspile/wasm"
)

// OperatorCode names a decoded Wasm instruction, mirroring wasmparser's
// Operator enum (consumed by the original wasm2cretonne translator this
// core is grounded on): one tag per distinct instruction shape, carrying
// only the immediate fields that shape actually has.
type OperatorCode int

const (
	OpUnreachable OperatorCode = iota
	OpNop
	OpBlock
	OpLoop
	OpIf
	OpElse
	OpEnd
	OpBr
	OpBrIf
	OpBrTable
	OpReturn
	OpCall
	OpCallIndirect
	OpDrop
	OpSelect
	OpLocalGet
	OpLocalSet
	OpLocalTee
	OpGlobalGet
	OpGlobalSet
	OpI32Load
	OpI64Load
	OpF32Load
	OpF64Load
	OpI32Load8S
	OpI32Load8U
	OpI32Load16S
	OpI32Load16U
	OpI64Load8S
	OpI64Load8U
	OpI64Load16S
	OpI64Load16U
	OpI64Load32S
	OpI64Load32U
	OpI32Store
	OpI64Store
	OpF32Store
	OpF64Store
	OpI32Store8
	OpI64Store8
	OpI32Store16
	OpI64Store16
	OpI64Store32
	OpMemorySize
	OpMemoryGrow
	OpI32Const
	OpI64Const
	OpF32Const
	OpF64Const
	OpI32Eqz
	OpI32Eq
	OpI32Ne
	OpI32LtS
	OpI32LtU
	OpI32GtS
	OpI32GtU
	OpI32LeS
	OpI32LeU
	OpI32GeS
	OpI32GeU
	OpI64Eqz
	OpI64Eq
	OpI64Ne
	OpI64LtS
	OpI64LtU
	OpI64GtS
	OpI64GtU
	OpI64LeS
	OpI64LeU
	OpI64GeS
	OpI64GeU
	OpF32Eq
	OpF32Ne
	OpF32Lt
	OpF32Gt
	OpF32Le
	OpF32Ge
	OpF64Eq
	OpF64Ne
	OpF64Lt
	OpF64Gt
	OpF64Le
	OpF64Ge
	OpI32Clz
	OpI32Ctz
	OpI32Popcnt
	OpI32Add
	OpI32Sub
	OpI32Mul
	OpI32DivS
	OpI32DivU
	OpI32RemS
	OpI32RemU
	OpI32And
	OpI32Or
	OpI32Xor
	OpI32Shl
	OpI32ShrS
	OpI32ShrU
	OpI32Rotl
	OpI32Rotr
	OpI64Clz
	OpI64Ctz
	OpI64Popcnt
	OpI64Add
	OpI64Sub
	OpI64Mul
	OpI64DivS
	OpI64DivU
	OpI64RemS
	OpI64RemU
	OpI64And
	OpI64Or
	OpI64Xor
	OpI64Shl
	OpI64ShrS
	OpI64ShrU
	OpI64Rotl
	OpI64Rotr
	OpF32Abs
	OpF32Neg
	OpF32Ceil
	OpF32Floor
	OpF32Trunc
	OpF32Nearest
	OpF32Sqrt
	OpF32Add
	OpF32Sub
	OpF32Mul
	OpF32Div
	OpF32Min
	OpF32Max
	OpF32Copysign
	OpF64Abs
	OpF64Neg
	OpF64Ceil
	OpF64Floor
	OpF64Trunc
	OpF64Nearest
	OpF64Sqrt
	OpF64Add
	OpF64Sub
	OpF64Mul
	OpF64Div
	OpF64Min
	OpF64Max
	OpF64Copysign
	OpI32WrapI64
	OpI32TruncSF32
	OpI32TruncUF32
	OpI32TruncSF64
	OpI32TruncUF64
	OpI64ExtendSI32
	OpI64ExtendUI32
	OpI64TruncSF32
	OpI64TruncUF32
	OpI64TruncSF64
	OpI64TruncUF64
	OpF32ConvertSI32
	OpF32ConvertUI32
	OpF32ConvertSI64
	OpF32ConvertUI64
	OpF32DemoteF64
	OpF64ConvertSI32
	OpF64ConvertUI32
	OpF64ConvertSI64
	OpF64ConvertUI64
	OpF64PromoteF32
	OpI32ReinterpretF32
	OpI64ReinterpretF64
	OpF32ReinterpretI32
	OpF64ReinterpretI64
)

// MemArg carries a load/store instruction's alignment hint and byte offset.
type MemArg struct {
	Align  uint32
	Offset uint32
}

// Operator is one decoded Wasm instruction plus whichever immediate fields
// its shape needs; fields irrelevant to Code are left zero.
type Operator struct {
	Code OperatorCode

	BlockType     int8 // raw block-type byte reinterpreted as int8: 0x40 (empty) or a single value type byte
	LocalIndex    wasm.Index
	GlobalIndex   wasm.Index
	FuncIndex     wasm.Index
	TypeIndex     wasm.Index
	RelativeDepth uint32
	Targets       []uint32 // br_table: relative depths, Default is the last non-table entry
	Default       uint32

	Mem MemArg

	I32 int32
	I64 int64
	F32 uint32 // raw IEEE-754 bits, as the binary format encodes them
	F64 uint64
}

// EventKind classifies a decoded function-body event: either another
// operator to translate, or the body's end.
type EventKind int

const (
	EventCodeOperator EventKind = iota
	EventEndFunctionBody
)

// Event is what OperatorReader.Next yields: the "Parser" state the core
// translator's main loop switches on (spec.md §6).
type Event struct {
	Kind EventKind
	Op   Operator
}

// OperatorReader decodes a function body's operator stream one instruction
// at a time, resumable across Next calls -- the concrete Parser the core
// translator drives. It tracks its own block nesting depth so that only the
// `end` matching the function body's implicit outermost block is surfaced
// as EventEndFunctionBody; every other `end` (closing a nested block, loop,
// or if) is surfaced as a regular OpEnd operator for the driver to handle.
type OperatorReader struct {
	r     *bytes.Reader
	depth int // starts at 1 for the function body's own implicit block
}

// NewOperatorReader wraps a function body's raw operator bytes (wasm.Code.Body).
func NewOperatorReader(body []byte) *OperatorReader {
	return &OperatorReader{r: bytes.NewReader(body), depth: 1}
}

// Next decodes and returns the next event, or an error on malformed input.
// Calling Next again after EventEndFunctionBody is undefined.
func (p *OperatorReader) Next() (Event, error) {
	opcode, err := p.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return Event{}, fmt.Errorf("decode: function body ended without an `end` opcode")
		}
		return Event{}, err
	}

	switch opcode {
	case 0x00:
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpUnreachable}}, nil
	case 0x01:
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpNop}}, nil
	case 0x02, 0x03, 0x04:
		bt, err := p.readBlockType()
		if err != nil {
			return Event{}, err
		}
		p.depth++
		code := map[byte]OperatorCode{0x02: OpBlock, 0x03: OpLoop, 0x04: OpIf}[opcode]
		return Event{Kind: EventCodeOperator, Op: Operator{Code: code, BlockType: bt}}, nil
	case 0x05:
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpElse}}, nil
	case 0x0b:
		p.depth--
		if p.depth == 0 {
			return Event{Kind: EventEndFunctionBody}, nil
		}
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpEnd}}, nil
	case 0x0c, 0x0d:
		depth, err := leb128.DecodeUint32(p.r)
		if err != nil {
			return Event{}, err
		}
		code := OpBr
		if opcode == 0x0d {
			code = OpBrIf
		}
		return Event{Kind: EventCodeOperator, Op: Operator{Code: code, RelativeDepth: depth}}, nil
	case 0x0e:
		return p.readBrTable()
	case 0x0f:
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpReturn}}, nil
	case 0x10:
		idx, err := leb128.DecodeUint32(p.r)
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpCall, FuncIndex: idx}}, nil
	case 0x11:
		typeIdx, err := leb128.DecodeUint32(p.r)
		if err != nil {
			return Event{}, err
		}
		if _, err := p.r.ReadByte(); err != nil { // reserved table-index byte, always 0 in MVP
			return Event{}, err
		}
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpCallIndirect, TypeIndex: typeIdx}}, nil
	case 0x1a:
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpDrop}}, nil
	case 0x1b:
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpSelect}}, nil
	case 0x20, 0x21, 0x22:
		idx, err := leb128.DecodeUint32(p.r)
		if err != nil {
			return Event{}, err
		}
		code := map[byte]OperatorCode{0x20: OpLocalGet, 0x21: OpLocalSet, 0x22: OpLocalTee}[opcode]
		return Event{Kind: EventCodeOperator, Op: Operator{Code: code, LocalIndex: idx}}, nil
	case 0x23, 0x24:
		idx, err := leb128.DecodeUint32(p.r)
		if err != nil {
			return Event{}, err
		}
		code := OpGlobalGet
		if opcode == 0x24 {
			code = OpGlobalSet
		}
		return Event{Kind: EventCodeOperator, Op: Operator{Code: code, GlobalIndex: idx}}, nil
	case 0x28, 0x29, 0x2a, 0x2b, 0x2c, 0x2d, 0x2e, 0x2f, 0x30, 0x31, 0x32, 0x33, 0x34, 0x35,
		0x36, 0x37, 0x38, 0x39, 0x3a, 0x3b, 0x3c, 0x3d, 0x3e:
		mem, err := p.readMemArg()
		if err != nil {
			return Event{}, err
		}
		code, ok := loadStoreOps[opcode]
		if !ok {
			return Event{}, fmt.Errorf("decode: unhandled memory opcode %#x", opcode)
		}
		return Event{Kind: EventCodeOperator, Op: Operator{Code: code, Mem: mem}}, nil
	case 0x3f, 0x40:
		if _, err := p.r.ReadByte(); err != nil { // reserved byte
			return Event{}, err
		}
		code := OpMemorySize
		if opcode == 0x40 {
			code = OpMemoryGrow
		}
		return Event{Kind: EventCodeOperator, Op: Operator{Code: code}}, nil
	case 0x41:
		v, err := leb128.DecodeInt32(p.r)
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpI32Const, I32: v}}, nil
	case 0x42:
		v, err := leb128.DecodeInt64(p.r)
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpI64Const, I64: v}}, nil
	case 0x43:
		var b [4]byte
		if _, err := io.ReadFull(p.r, b[:]); err != nil {
			return Event{}, err
		}
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpF32Const, F32: leU32(b[:])}}, nil
	case 0x44:
		var b [8]byte
		if _, err := io.ReadFull(p.r, b[:]); err != nil {
			return Event{}, err
		}
		return Event{Kind: EventCodeOperator, Op: Operator{Code: OpF64Const, F64: leU64(b[:])}}, nil
	default:
		if code, ok := simpleOps[opcode]; ok {
			return Event{Kind: EventCodeOperator, Op: Operator{Code: code}}, nil
		}
		return Event{}, fmt.Errorf("decode: unhandled opcode %#x", opcode)
	}
}

func (p *OperatorReader) readBlockType() (int8, error) {
	b, err := p.r.ReadByte()
	if err != nil {
		return 0, err
	}
	return int8(b), nil
}

func (p *OperatorReader) readMemArg() (MemArg, error) {
	align, err := leb128.DecodeUint32(p.r)
	if err != nil {
		return MemArg{}, err
	}
	offset, err := leb128.DecodeUint32(p.r)
	if err != nil {
		return MemArg{}, err
	}
	return MemArg{Align: align, Offset: offset}, nil
}

func (p *OperatorReader) readBrTable() (Event, error) {
	count, err := leb128.DecodeUint32(p.r)
	if err != nil {
		return Event{}, err
	}
	targets := make([]uint32, count)
	for i := uint32(0); i < count; i++ {
		if targets[i], err = leb128.DecodeUint32(p.r); err != nil {
			return Event{}, err
		}
	}
	def, err := leb128.DecodeUint32(p.r)
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: EventCodeOperator, Op: Operator{Code: OpBrTable, Targets: targets, Default: def}}, nil
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

var loadStoreOps = map[byte]OperatorCode{
	0x28: OpI32Load, 0x29: OpI64Load, 0x2a: OpF32Load, 0x2b: OpF64Load,
	0x2c: OpI32Load8S, 0x2d: OpI32Load8U, 0x2e: OpI32Load16S, 0x2f: OpI32Load16U,
	0x30: OpI64Load8S, 0x31: OpI64Load8U, 0x32: OpI64Load16S, 0x33: OpI64Load16U,
	0x34: OpI64Load32S, 0x35: OpI64Load32U,
	0x36: OpI32Store, 0x37: OpI64Store, 0x38: OpF32Store, 0x39: OpF64Store,
	0x3a: OpI32Store8, 0x3b: OpI32Store16, 0x3c: OpI64Store8, 0x3d: OpI64Store16, 0x3e: OpI64Store32,
}

var simpleOps = map[byte]OperatorCode{
	0x45: OpI32Eqz, 0x46: OpI32Eq, 0x47: OpI32Ne, 0x48: OpI32LtS, 0x49: OpI32LtU,
	0x4a: OpI32GtS, 0x4b: OpI32GtU, 0x4c: OpI32LeS, 0x4d: OpI32LeU, 0x4e: OpI32GeS, 0x4f: OpI32GeU,
	0x50: OpI64Eqz, 0x51: OpI64Eq, 0x52: OpI64Ne, 0x53: OpI64LtS, 0x54: OpI64LtU,
	0x55: OpI64GtS, 0x56: OpI64GtU, 0x57: OpI64LeS, 0x58: OpI64LeU, 0x59: OpI64GeS, 0x5a: OpI64GeU,
	0x5b: OpF32Eq, 0x5c: OpF32Ne, 0x5d: OpF32Lt, 0x5e: OpF32Gt, 0x5f: OpF32Le, 0x60: OpF32Ge,
	0x61: OpF64Eq, 0x62: OpF64Ne, 0x63: OpF64Lt, 0x64: OpF64Gt, 0x65: OpF64Le, 0x66: OpF64Ge,
	0x67: OpI32Clz, 0x68: OpI32Ctz, 0x69: OpI32Popcnt,
	0x6a: OpI32Add, 0x6b: OpI32Sub, 0x6c: OpI32Mul, 0x6d: OpI32DivS, 0x6e: OpI32DivU,
	0x6f: OpI32RemS, 0x70: OpI32RemU, 0x71: OpI32And, 0x72: OpI32Or, 0x73: OpI32Xor,
	0x74: OpI32Shl, 0x75: OpI32ShrS, 0x76: OpI32ShrU, 0x77: OpI32Rotl, 0x78: OpI32Rotr,
	0x79: OpI64Clz, 0x7a: OpI64Ctz, 0x7b: OpI64Popcnt,
	0x7c: OpI64Add, 0x7d: OpI64Sub, 0x7e: OpI64Mul, 0x7f: OpI64DivS, 0x80: OpI64DivU,
	0x81: OpI64RemS, 0x82: OpI64RemU, 0x83: OpI64And, 0x84: OpI64Or, 0x85: OpI64Xor,
	0x86: OpI64Shl, 0x87: OpI64ShrS, 0x88: OpI64ShrU, 0x89: OpI64Rotl, 0x8a: OpI64Rotr,
	0x8b: OpF32Abs, 0x8c: OpF32Neg, 0x8d: OpF32Ceil, 0x8e: OpF32Floor, 0x8f: OpF32Trunc,
	0x90: OpF32Nearest, 0x91: OpF32Sqrt, 0x92: OpF32Add, 0x93: OpF32Sub, 0x94: OpF32Mul,
	0x95: OpF32Div, 0x96: OpF32Min, 0x97: OpF32Max, 0x98: OpF32Copysign,
	0x99: OpF64Abs, 0x9a: OpF64Neg, 0x9b: OpF64Ceil, 0x9c: OpF64Floor, 0x9d: OpF64Trunc,
	0x9e: OpF64Nearest, 0x9f: OpF64Sqrt, 0xa0: OpF64Add, 0xa1: OpF64Sub, 0xa2: OpF64Mul,
	0xa3: OpF64Div, 0xa4: OpF64Min, 0xa5: OpF64Max, 0xa6: OpF64Copysign,
	0xa7: OpI32WrapI64, 0xa8: OpI32TruncSF32, 0xa9: OpI32TruncUF32, 0xaa: OpI32TruncSF64, 0xab: OpI32TruncUF64,
	0xac: OpI64ExtendSI32, 0xad: OpI64ExtendUI32, 0xae: OpI64TruncSF32, 0xaf: OpI64TruncUF32,
	0xb0: OpI64TruncSF64, 0xb1: OpI64TruncUF64,
	0xb2: OpF32ConvertSI32, 0xb3: OpF32ConvertUI32, 0xb4: OpF32ConvertSI64, 0xb5: OpF32ConvertUI64, 0xb6: OpF32DemoteF64,
	0xb7: OpF64ConvertSI32, 0xb8: OpF64ConvertUI32, 0xb9: OpF64ConvertSI64, 0xba: OpF64ConvertUI64, 0xbb: OpF64PromoteF32,
	0xbc: OpI32ReinterpretF32, 0xbd: OpI64ReinterpretF64, 0xbe: OpF32ReinterpretI32, 0xbf: OpF64ReinterpretI64,
}
