package frontend

import (
	"github.com/waspile/waspile/decode"
	"github.com/waspile/waspile/ssair"
)

// translateArith dispatches the constant/unary/binary/comparison/conversion
// opcodes (spec.md §4.2's final paragraph): one-to-one lowering to IL
// arithmetic, with comparisons and bit-counts already producing
// correctly-widened results because the IL's Icmp/Fcmp opcodes always yield
// an i32 and its Clz/Ctz/Popcnt opcodes are typed to the operand width (see
// ssair/emit.go) -- no separate sign-extension instruction is needed for this
// IL, unlike an IL whose comparison opcode yields a narrower boolean.
func (c *compiler) translateArith(op decode.Operator) {
	switch op.Code {
	case decode.OpI32Eqz:
		c.binaryConstAndCmp32(0)
	case decode.OpI64Eqz:
		c.binaryConstAndCmp64(0)

	case decode.OpI32Eq:
		c.icmp(ssair.IntegerCmpCondEqual)
	case decode.OpI32Ne:
		c.icmp(ssair.IntegerCmpCondNotEqual)
	case decode.OpI32LtS:
		c.icmp(ssair.IntegerCmpCondSignedLessThan)
	case decode.OpI32LtU:
		c.icmp(ssair.IntegerCmpCondUnsignedLessThan)
	case decode.OpI32GtS:
		c.icmp(ssair.IntegerCmpCondSignedGreaterThan)
	case decode.OpI32GtU:
		c.icmp(ssair.IntegerCmpCondUnsignedGreaterThan)
	case decode.OpI32LeS:
		c.icmp(ssair.IntegerCmpCondSignedLessThanOrEqual)
	case decode.OpI32LeU:
		c.icmp(ssair.IntegerCmpCondUnsignedLessThanOrEqual)
	case decode.OpI32GeS:
		c.icmp(ssair.IntegerCmpCondSignedGreaterThanOrEqual)
	case decode.OpI32GeU:
		c.icmp(ssair.IntegerCmpCondUnsignedGreaterThanOrEqual)

	case decode.OpI64Eq:
		c.icmp(ssair.IntegerCmpCondEqual)
	case decode.OpI64Ne:
		c.icmp(ssair.IntegerCmpCondNotEqual)
	case decode.OpI64LtS:
		c.icmp(ssair.IntegerCmpCondSignedLessThan)
	case decode.OpI64LtU:
		c.icmp(ssair.IntegerCmpCondUnsignedLessThan)
	case decode.OpI64GtS:
		c.icmp(ssair.IntegerCmpCondSignedGreaterThan)
	case decode.OpI64GtU:
		c.icmp(ssair.IntegerCmpCondUnsignedGreaterThan)
	case decode.OpI64LeS:
		c.icmp(ssair.IntegerCmpCondSignedLessThanOrEqual)
	case decode.OpI64LeU:
		c.icmp(ssair.IntegerCmpCondUnsignedLessThanOrEqual)
	case decode.OpI64GeS:
		c.icmp(ssair.IntegerCmpCondSignedGreaterThanOrEqual)
	case decode.OpI64GeU:
		c.icmp(ssair.IntegerCmpCondUnsignedGreaterThanOrEqual)

	case decode.OpF32Eq:
		c.fcmp(ssair.FloatCmpCondEqual)
	case decode.OpF32Ne:
		c.fcmp(ssair.FloatCmpCondNotEqual)
	case decode.OpF32Lt:
		c.fcmp(ssair.FloatCmpCondLessThan)
	case decode.OpF32Gt:
		c.fcmp(ssair.FloatCmpCondGreaterThan)
	case decode.OpF32Le:
		c.fcmp(ssair.FloatCmpCondLessThanOrEqual)
	case decode.OpF32Ge:
		c.fcmp(ssair.FloatCmpCondGreaterThanOrEqual)
	case decode.OpF64Eq:
		c.fcmp(ssair.FloatCmpCondEqual)
	case decode.OpF64Ne:
		c.fcmp(ssair.FloatCmpCondNotEqual)
	case decode.OpF64Lt:
		c.fcmp(ssair.FloatCmpCondLessThan)
	case decode.OpF64Gt:
		c.fcmp(ssair.FloatCmpCondGreaterThan)
	case decode.OpF64Le:
		c.fcmp(ssair.FloatCmpCondLessThanOrEqual)
	case decode.OpF64Ge:
		c.fcmp(ssair.FloatCmpCondGreaterThanOrEqual)

	case decode.OpI32Clz:
		c.unary((*ssair.Instruction).AsClz)
	case decode.OpI32Ctz:
		c.unary((*ssair.Instruction).AsCtz)
	case decode.OpI32Popcnt:
		c.unary((*ssair.Instruction).AsPopcnt)
	case decode.OpI64Clz:
		c.unary((*ssair.Instruction).AsClz)
	case decode.OpI64Ctz:
		c.unary((*ssair.Instruction).AsCtz)
	case decode.OpI64Popcnt:
		c.unary((*ssair.Instruction).AsPopcnt)

	case decode.OpI32Add, decode.OpI64Add:
		c.binary((*ssair.Instruction).AsIadd)
	case decode.OpI32Sub, decode.OpI64Sub:
		c.binary((*ssair.Instruction).AsIsub)
	case decode.OpI32Mul, decode.OpI64Mul:
		c.binary((*ssair.Instruction).AsImul)
	case decode.OpI32DivS, decode.OpI64DivS:
		c.binary((*ssair.Instruction).AsSdiv)
	case decode.OpI32DivU, decode.OpI64DivU:
		c.binary((*ssair.Instruction).AsUdiv)
	case decode.OpI32RemS, decode.OpI64RemS:
		c.binary((*ssair.Instruction).AsSrem)
	case decode.OpI32RemU, decode.OpI64RemU:
		c.binary((*ssair.Instruction).AsUrem)
	case decode.OpI32And, decode.OpI64And:
		c.binary((*ssair.Instruction).AsBand)
	case decode.OpI32Or, decode.OpI64Or:
		c.binary((*ssair.Instruction).AsBor)
	case decode.OpI32Xor, decode.OpI64Xor:
		c.binary((*ssair.Instruction).AsBxor)
	case decode.OpI32Shl, decode.OpI64Shl:
		c.binary((*ssair.Instruction).AsIshl)
	case decode.OpI32ShrS, decode.OpI64ShrS:
		c.binary((*ssair.Instruction).AsSshr)
	case decode.OpI32ShrU, decode.OpI64ShrU:
		c.binary((*ssair.Instruction).AsUshr)
	case decode.OpI32Rotl, decode.OpI64Rotl:
		c.binary((*ssair.Instruction).AsRotl)
	case decode.OpI32Rotr, decode.OpI64Rotr:
		c.binary((*ssair.Instruction).AsRotr)

	case decode.OpF32Abs, decode.OpF64Abs:
		c.unary((*ssair.Instruction).AsFabs)
	case decode.OpF32Neg, decode.OpF64Neg:
		c.unary((*ssair.Instruction).AsFneg)
	case decode.OpF32Ceil, decode.OpF64Ceil:
		c.unary((*ssair.Instruction).AsCeil)
	case decode.OpF32Floor, decode.OpF64Floor:
		c.unary((*ssair.Instruction).AsFloor)
	case decode.OpF32Trunc, decode.OpF64Trunc:
		c.unary((*ssair.Instruction).AsTrunc)
	case decode.OpF32Nearest, decode.OpF64Nearest:
		c.unary((*ssair.Instruction).AsNearest)
	case decode.OpF32Sqrt, decode.OpF64Sqrt:
		c.unary((*ssair.Instruction).AsSqrt)
	case decode.OpF32Add, decode.OpF64Add:
		c.binary((*ssair.Instruction).AsFadd)
	case decode.OpF32Sub, decode.OpF64Sub:
		c.binary((*ssair.Instruction).AsFsub)
	case decode.OpF32Mul, decode.OpF64Mul:
		c.binary((*ssair.Instruction).AsFmul)
	case decode.OpF32Div, decode.OpF64Div:
		c.binary((*ssair.Instruction).AsFdiv)
	case decode.OpF32Min, decode.OpF64Min:
		c.binary((*ssair.Instruction).AsFmin)
	case decode.OpF32Max, decode.OpF64Max:
		c.binary((*ssair.Instruction).AsFmax)
	case decode.OpF32Copysign, decode.OpF64Copysign:
		c.binary((*ssair.Instruction).AsFcopysign)

	case decode.OpI32WrapI64:
		c.emit1(c.b.AllocateInstruction().AsIreduce(c.pop(), 32))
	case decode.OpI64ExtendSI32:
		c.emit1(c.b.AllocateInstruction().AsSExtend(c.pop(), 32, 64))
	case decode.OpI64ExtendUI32:
		c.emit1(c.b.AllocateInstruction().AsUExtend(c.pop(), 32, 64))

	case decode.OpI32TruncSF32, decode.OpI32TruncSF64:
		c.emit1(c.b.AllocateInstruction().AsFcvtToInt(c.pop(), true, ssair.TypeI32))
	case decode.OpI32TruncUF32, decode.OpI32TruncUF64:
		c.emit1(c.b.AllocateInstruction().AsFcvtToInt(c.pop(), false, ssair.TypeI32))
	case decode.OpI64TruncSF32, decode.OpI64TruncSF64:
		c.emit1(c.b.AllocateInstruction().AsFcvtToInt(c.pop(), true, ssair.TypeI64))
	case decode.OpI64TruncUF32, decode.OpI64TruncUF64:
		c.emit1(c.b.AllocateInstruction().AsFcvtToInt(c.pop(), false, ssair.TypeI64))

	case decode.OpF32ConvertSI32, decode.OpF32ConvertSI64:
		c.emit1(c.b.AllocateInstruction().AsFcvtFromInt(c.pop(), true, ssair.TypeF32))
	case decode.OpF32ConvertUI32, decode.OpF32ConvertUI64:
		c.emit1(c.b.AllocateInstruction().AsFcvtFromInt(c.pop(), false, ssair.TypeF32))
	case decode.OpF64ConvertSI32, decode.OpF64ConvertSI64:
		c.emit1(c.b.AllocateInstruction().AsFcvtFromInt(c.pop(), true, ssair.TypeF64))
	case decode.OpF64ConvertUI32, decode.OpF64ConvertUI64:
		c.emit1(c.b.AllocateInstruction().AsFcvtFromInt(c.pop(), false, ssair.TypeF64))

	case decode.OpF32DemoteF64:
		c.emit1(c.b.AllocateInstruction().AsFdemote(c.pop()))
	case decode.OpF64PromoteF32:
		c.emit1(c.b.AllocateInstruction().AsFpromote(c.pop()))

	case decode.OpI32ReinterpretF32:
		c.emit1(c.b.AllocateInstruction().AsBitcast(c.pop(), ssair.TypeI32))
	case decode.OpI64ReinterpretF64:
		c.emit1(c.b.AllocateInstruction().AsBitcast(c.pop(), ssair.TypeI64))
	case decode.OpF32ReinterpretI32:
		c.emit1(c.b.AllocateInstruction().AsBitcast(c.pop(), ssair.TypeF32))
	case decode.OpF64ReinterpretI64:
		c.emit1(c.b.AllocateInstruction().AsBitcast(c.pop(), ssair.TypeF64))

	default:
		c.panicInvariant("unhandled reachable opcode %d", op.Code)
	}
}

func (c *compiler) icmp(cond ssair.IntegerCmpCond) {
	y, x := c.pop(), c.pop()
	c.emit1(c.b.AllocateInstruction().AsIcmp(x, y, cond))
}

func (c *compiler) fcmp(cond ssair.FloatCmpCond) {
	y, x := c.pop(), c.pop()
	c.emit1(c.b.AllocateInstruction().AsFcmp(x, y, cond))
}

func (c *compiler) binary(as func(*ssair.Instruction, ssair.Value, ssair.Value) *ssair.Instruction) {
	y, x := c.pop(), c.pop()
	c.emit1(as(c.b.AllocateInstruction(), x, y))
}

func (c *compiler) unary(as func(*ssair.Instruction, ssair.Value) *ssair.Instruction) {
	x := c.pop()
	c.emit1(as(c.b.AllocateInstruction(), x))
}

// binaryConstAndCmp32/64 implement i32.eqz/i64.eqz as a comparison against a
// fresh zero constant -- the Wasm binary format encodes eqz as its own
// opcode, but semantically it is `x == 0`.
func (c *compiler) binaryConstAndCmp32(_ int32) {
	zeroH := c.b.InsertInstruction(c.b.AllocateInstruction().AsIconst32(0))
	zero := c.b.InstResults(zeroH)[0]
	x := c.pop()
	c.emit1(c.b.AllocateInstruction().AsIcmp(x, zero, ssair.IntegerCmpCondEqual))
}

func (c *compiler) binaryConstAndCmp64(_ int64) {
	zeroH := c.b.InsertInstruction(c.b.AllocateInstruction().AsIconst64(0))
	zero := c.b.InstResults(zeroH)[0]
	x := c.pop()
	c.emit1(c.b.AllocateInstruction().AsIcmp(x, zero, ssair.IntegerCmpCondEqual))
}
