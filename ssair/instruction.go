package ssair

// Opcode identifies the operation an Instruction performs. Since Go has no
// union type, Instruction is one flattened struct and each field's meaning
// depends on Opcode, mirroring how compiler IRs built on a single node type
// (rather than a variant per op) are conventionally laid out.
type Opcode uint32

const (
	OpcodeInvalid Opcode = iota

	OpcodeIconst32
	OpcodeIconst64
	OpcodeF32const
	OpcodeF64const

	OpcodeIadd
	OpcodeIsub
	OpcodeImul
	OpcodeSdiv
	OpcodeUdiv
	OpcodeSrem
	OpcodeUrem
	OpcodeBand
	OpcodeBor
	OpcodeBxor
	OpcodeIshl
	OpcodeUshr
	OpcodeSshr
	OpcodeRotl
	OpcodeRotr
	OpcodeClz
	OpcodeCtz
	OpcodePopcnt
	OpcodeIcmp

	OpcodeFadd
	OpcodeFsub
	OpcodeFmul
	OpcodeFdiv
	OpcodeFmin
	OpcodeFmax
	OpcodeFneg
	OpcodeFabs
	OpcodeFcopysign
	OpcodeSqrt
	OpcodeCeil
	OpcodeFloor
	OpcodeTrunc
	OpcodeNearest
	OpcodeFcmp

	OpcodeBitcast
	OpcodeSExtend
	OpcodeUExtend
	OpcodeIreduce
	OpcodeFcvtFromInt
	OpcodeFcvtToInt
	OpcodeFpromote
	OpcodeFdemote

	OpcodeSelect

	OpcodeLoad
	OpcodeUload8
	OpcodeSload8
	OpcodeUload16
	OpcodeSload16
	OpcodeUload32
	OpcodeSload32
	OpcodeStore
	OpcodeIstore8
	OpcodeIstore16
	OpcodeIstore32

	OpcodeCall
	OpcodeCallIndirect

	OpcodeJump
	OpcodeBrz
	OpcodeBrnz
	OpcodeBrTable
	OpcodeReturn
	OpcodeTrap
)

var opcodeNames = map[Opcode]string{
	OpcodeIconst32: "iconst32", OpcodeIconst64: "iconst64",
	OpcodeF32const: "f32const", OpcodeF64const: "f64const",
	OpcodeIadd: "iadd", OpcodeIsub: "isub", OpcodeImul: "imul",
	OpcodeSdiv: "sdiv", OpcodeUdiv: "udiv", OpcodeSrem: "srem", OpcodeUrem: "urem",
	OpcodeBand: "band", OpcodeBor: "bor", OpcodeBxor: "bxor",
	OpcodeIshl: "ishl", OpcodeUshr: "ushr", OpcodeSshr: "sshr",
	OpcodeRotl: "rotl", OpcodeRotr: "rotr",
	OpcodeClz: "clz", OpcodeCtz: "ctz", OpcodePopcnt: "popcnt", OpcodeIcmp: "icmp",
	OpcodeFadd: "fadd", OpcodeFsub: "fsub", OpcodeFmul: "fmul", OpcodeFdiv: "fdiv",
	OpcodeFmin: "fmin", OpcodeFmax: "fmax", OpcodeFneg: "fneg", OpcodeFabs: "fabs",
	OpcodeFcopysign: "fcopysign", OpcodeSqrt: "sqrt", OpcodeCeil: "ceil",
	OpcodeFloor: "floor", OpcodeTrunc: "trunc", OpcodeNearest: "nearest", OpcodeFcmp: "fcmp",
	OpcodeBitcast: "bitcast", OpcodeSExtend: "sextend", OpcodeUExtend: "uextend",
	OpcodeIreduce: "ireduce", OpcodeFcvtFromInt: "fcvt_from_int", OpcodeFcvtToInt: "fcvt_to_int",
	OpcodeFpromote: "fpromote", OpcodeFdemote: "fdemote",
	OpcodeSelect: "select",
	OpcodeLoad:   "load", OpcodeUload8: "uload8", OpcodeSload8: "sload8",
	OpcodeUload16: "uload16", OpcodeSload16: "sload16", OpcodeUload32: "uload32", OpcodeSload32: "sload32",
	OpcodeStore: "store", OpcodeIstore8: "istore8", OpcodeIstore16: "istore16", OpcodeIstore32: "istore32",
	OpcodeCall: "call", OpcodeCallIndirect: "call_indirect",
	OpcodeJump: "jump", OpcodeBrz: "brz", OpcodeBrnz: "brnz", OpcodeBrTable: "br_table",
	OpcodeReturn: "return", OpcodeTrap: "trap",
}

func (o Opcode) String() string {
	if s, ok := opcodeNames[o]; ok {
		return s
	}
	return "invalid"
}

// Instruction is the single node type for every IL operation.
type Instruction struct {
	opcode Opcode

	args []Value // operands, in operator-specific order
	typ  Type     // result/target type, when opcode-specific

	offset Offset32
	icmp   IntegerCmpCond
	fcmp   FloatCmpCond
	signed bool
	fromW  byte // bit width of narrow operand, for extend/reduce ops
	toW    byte

	sigRef          SigRef
	funcRef         FuncRef
	callResultTypes []Type

	uImm32 uint32
	uImm64 uint64
	fImm32 float32
	fImm64 float64

	target EBB       // Jump/Brz/Brnz
	jt     JumpTable // BrTable

	results []Value
}

// Opcode returns the operation this instruction performs.
func (i *Instruction) Opcode() Opcode { return i.opcode }

// Args returns the instruction's operand values.
func (i *Instruction) Args() []Value { return i.args }

// Results returns the instruction's produced values, empty for instructions
// with no result (store, jump, return, trap).
func (i *Instruction) Results() []Value { return i.results }

// Result returns the first (and for every non-call opcode, only) produced value.
func (i *Instruction) Result() Value {
	if len(i.results) == 0 {
		return ValueInvalid
	}
	return i.results[0]
}
