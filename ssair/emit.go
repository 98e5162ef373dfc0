package ssair

// The As* methods configure a freshly allocated Instruction (from
// Builder.AllocateInstruction) for a specific opcode and return it so the
// caller can chain into Builder.InsertInstruction. This mirrors the
// allocate-then-configure-then-insert idiom of the IL this translator was
// modeled on, which keeps instruction construction branch-free regardless
// of how many operands a given opcode takes.

func (i *Instruction) AsIconst32(v uint32) *Instruction {
	i.opcode, i.typ, i.uImm32 = OpcodeIconst32, TypeI32, v
	return i
}

// Imm32 returns the encoded immediate of an Iconst32 instruction.
func (i *Instruction) Imm32() uint32 { return i.uImm32 }

func (i *Instruction) AsIconst64(v uint64) *Instruction {
	i.opcode, i.typ, i.uImm64 = OpcodeIconst64, TypeI64, v
	return i
}

// Imm64 returns the encoded immediate of an Iconst64 instruction.
func (i *Instruction) Imm64() uint64 { return i.uImm64 }

func (i *Instruction) AsF32const(f float32) *Instruction {
	i.opcode, i.typ, i.fImm32 = OpcodeF32const, TypeF32, f
	return i
}

// F32Imm returns the encoded immediate of an F32const instruction.
func (i *Instruction) F32Imm() float32 { return i.fImm32 }

func (i *Instruction) AsF64const(f float64) *Instruction {
	i.opcode, i.typ, i.fImm64 = OpcodeF64const, TypeF64, f
	return i
}

// F64Imm returns the encoded immediate of an F64const instruction.
func (i *Instruction) F64Imm() float64 { return i.fImm64 }

func binop(i *Instruction, op Opcode, typ Type, x, y Value) *Instruction {
	i.opcode, i.typ, i.args = op, typ, []Value{x, y}
	return i
}

func (i *Instruction) AsIadd(x, y Value) *Instruction { return binop(i, OpcodeIadd, x.typ, x, y) }
func (i *Instruction) AsIsub(x, y Value) *Instruction { return binop(i, OpcodeIsub, x.typ, x, y) }
func (i *Instruction) AsImul(x, y Value) *Instruction { return binop(i, OpcodeImul, x.typ, x, y) }
func (i *Instruction) AsSdiv(x, y Value) *Instruction { return binop(i, OpcodeSdiv, x.typ, x, y) }
func (i *Instruction) AsUdiv(x, y Value) *Instruction { return binop(i, OpcodeUdiv, x.typ, x, y) }
func (i *Instruction) AsSrem(x, y Value) *Instruction { return binop(i, OpcodeSrem, x.typ, x, y) }
func (i *Instruction) AsUrem(x, y Value) *Instruction { return binop(i, OpcodeUrem, x.typ, x, y) }
func (i *Instruction) AsBand(x, y Value) *Instruction { return binop(i, OpcodeBand, x.typ, x, y) }
func (i *Instruction) AsBor(x, y Value) *Instruction  { return binop(i, OpcodeBor, x.typ, x, y) }
func (i *Instruction) AsBxor(x, y Value) *Instruction { return binop(i, OpcodeBxor, x.typ, x, y) }
func (i *Instruction) AsIshl(x, y Value) *Instruction { return binop(i, OpcodeIshl, x.typ, x, y) }
func (i *Instruction) AsUshr(x, y Value) *Instruction { return binop(i, OpcodeUshr, x.typ, x, y) }
func (i *Instruction) AsSshr(x, y Value) *Instruction { return binop(i, OpcodeSshr, x.typ, x, y) }
func (i *Instruction) AsRotl(x, y Value) *Instruction { return binop(i, OpcodeRotl, x.typ, x, y) }
func (i *Instruction) AsRotr(x, y Value) *Instruction { return binop(i, OpcodeRotr, x.typ, x, y) }

func (i *Instruction) AsClz(x Value) *Instruction    { i.opcode, i.typ, i.args = OpcodeClz, x.typ, []Value{x}; return i }
func (i *Instruction) AsCtz(x Value) *Instruction    { i.opcode, i.typ, i.args = OpcodeCtz, x.typ, []Value{x}; return i }
func (i *Instruction) AsPopcnt(x Value) *Instruction { i.opcode, i.typ, i.args = OpcodePopcnt, x.typ, []Value{x}; return i }

func (i *Instruction) AsIcmp(x, y Value, cond IntegerCmpCond) *Instruction {
	i.opcode, i.typ, i.args, i.icmp = OpcodeIcmp, TypeI32, []Value{x, y}, cond
	return i
}

func (i *Instruction) AsFadd(x, y Value) *Instruction      { return binop(i, OpcodeFadd, x.typ, x, y) }
func (i *Instruction) AsFsub(x, y Value) *Instruction      { return binop(i, OpcodeFsub, x.typ, x, y) }
func (i *Instruction) AsFmul(x, y Value) *Instruction      { return binop(i, OpcodeFmul, x.typ, x, y) }
func (i *Instruction) AsFdiv(x, y Value) *Instruction      { return binop(i, OpcodeFdiv, x.typ, x, y) }
func (i *Instruction) AsFmin(x, y Value) *Instruction      { return binop(i, OpcodeFmin, x.typ, x, y) }
func (i *Instruction) AsFmax(x, y Value) *Instruction      { return binop(i, OpcodeFmax, x.typ, x, y) }
func (i *Instruction) AsFcopysign(x, y Value) *Instruction { return binop(i, OpcodeFcopysign, x.typ, x, y) }

func (i *Instruction) AsFneg(x Value) *Instruction    { i.opcode, i.typ, i.args = OpcodeFneg, x.typ, []Value{x}; return i }
func (i *Instruction) AsFabs(x Value) *Instruction    { i.opcode, i.typ, i.args = OpcodeFabs, x.typ, []Value{x}; return i }
func (i *Instruction) AsSqrt(x Value) *Instruction    { i.opcode, i.typ, i.args = OpcodeSqrt, x.typ, []Value{x}; return i }
func (i *Instruction) AsCeil(x Value) *Instruction    { i.opcode, i.typ, i.args = OpcodeCeil, x.typ, []Value{x}; return i }
func (i *Instruction) AsFloor(x Value) *Instruction   { i.opcode, i.typ, i.args = OpcodeFloor, x.typ, []Value{x}; return i }
func (i *Instruction) AsTrunc(x Value) *Instruction   { i.opcode, i.typ, i.args = OpcodeTrunc, x.typ, []Value{x}; return i }
func (i *Instruction) AsNearest(x Value) *Instruction { i.opcode, i.typ, i.args = OpcodeNearest, x.typ, []Value{x}; return i }

func (i *Instruction) AsFcmp(x, y Value, cond FloatCmpCond) *Instruction {
	i.opcode, i.typ, i.args, i.fcmp = OpcodeFcmp, TypeI32, []Value{x, y}, cond
	return i
}

func (i *Instruction) AsBitcast(x Value, to Type) *Instruction {
	i.opcode, i.typ, i.args = OpcodeBitcast, to, []Value{x}
	return i
}

// AsSExtend sign-extends x from a fromBits-wide integer to a toBits-wide one.
func (i *Instruction) AsSExtend(x Value, fromBits, toBits byte) *Instruction {
	i.opcode, i.args, i.fromW, i.toW = OpcodeSExtend, []Value{x}, fromBits, toBits
	i.typ = widthType(toBits)
	return i
}

// AsUExtend zero-extends x from a fromBits-wide integer to a toBits-wide one.
func (i *Instruction) AsUExtend(x Value, fromBits, toBits byte) *Instruction {
	i.opcode, i.args, i.fromW, i.toW = OpcodeUExtend, []Value{x}, fromBits, toBits
	i.typ = widthType(toBits)
	return i
}

// AsIreduce narrows x (e.g. i64 -> i32, Wasm's i32.wrap_i64) to toBits.
func (i *Instruction) AsIreduce(x Value, toBits byte) *Instruction {
	i.opcode, i.args, i.toW = OpcodeIreduce, []Value{x}, toBits
	i.typ = widthType(toBits)
	return i
}

func widthType(bits byte) Type {
	if bits == 32 {
		return TypeI32
	}
	return TypeI64
}

// AsFcvtFromInt converts integer x (sign interpreted per signed) to a float of type to.
func (i *Instruction) AsFcvtFromInt(x Value, signed bool, to Type) *Instruction {
	i.opcode, i.args, i.signed, i.typ = OpcodeFcvtFromInt, []Value{x}, signed, to
	return i
}

// AsFcvtToInt truncates float x to an integer of type to, per signed.
func (i *Instruction) AsFcvtToInt(x Value, signed bool, to Type) *Instruction {
	i.opcode, i.args, i.signed, i.typ = OpcodeFcvtToInt, []Value{x}, signed, to
	return i
}

func (i *Instruction) AsFpromote(x Value) *Instruction {
	i.opcode, i.typ, i.args = OpcodeFpromote, TypeF64, []Value{x}
	return i
}

func (i *Instruction) AsFdemote(x Value) *Instruction {
	i.opcode, i.typ, i.args = OpcodeFdemote, TypeF32, []Value{x}
	return i
}

// AsSelect implements Wasm's select: when cond is truthy, a (the deeper of
// the two value operands, third from the top of the Wasm stack with cond on
// top) is chosen, otherwise b -- see reachable.go.
func (i *Instruction) AsSelect(cond, a, b Value) *Instruction {
	i.opcode, i.typ, i.args = OpcodeSelect, a.typ, []Value{cond, a, b}
	return i
}

func load(i *Instruction, op Opcode, typ Type, ptr Value, offset Offset32) *Instruction {
	i.opcode, i.typ, i.args, i.offset = op, typ, []Value{ptr}, offset
	return i
}

func (i *Instruction) AsLoad(ptr Value, offset Offset32, typ Type) *Instruction {
	return load(i, OpcodeLoad, typ, ptr, offset)
}
func (i *Instruction) AsUload8(ptr Value, offset Offset32, typ Type) *Instruction {
	return load(i, OpcodeUload8, typ, ptr, offset)
}
func (i *Instruction) AsSload8(ptr Value, offset Offset32, typ Type) *Instruction {
	return load(i, OpcodeSload8, typ, ptr, offset)
}
func (i *Instruction) AsUload16(ptr Value, offset Offset32, typ Type) *Instruction {
	return load(i, OpcodeUload16, typ, ptr, offset)
}
func (i *Instruction) AsSload16(ptr Value, offset Offset32, typ Type) *Instruction {
	return load(i, OpcodeSload16, typ, ptr, offset)
}
func (i *Instruction) AsUload32(ptr Value, offset Offset32) *Instruction {
	return load(i, OpcodeUload32, TypeI64, ptr, offset)
}
func (i *Instruction) AsSload32(ptr Value, offset Offset32) *Instruction {
	return load(i, OpcodeSload32, TypeI64, ptr, offset)
}

func store(i *Instruction, op Opcode, v, ptr Value, offset Offset32) *Instruction {
	i.opcode, i.args, i.offset = op, []Value{v, ptr}, offset
	return i
}

func (i *Instruction) AsStore(v, ptr Value, offset Offset32) *Instruction {
	return store(i, OpcodeStore, v, ptr, offset)
}
func (i *Instruction) AsIstore8(v, ptr Value, offset Offset32) *Instruction {
	return store(i, OpcodeIstore8, v, ptr, offset)
}
func (i *Instruction) AsIstore16(v, ptr Value, offset Offset32) *Instruction {
	return store(i, OpcodeIstore16, v, ptr, offset)
}
func (i *Instruction) AsIstore32(v, ptr Value, offset Offset32) *Instruction {
	return store(i, OpcodeIstore32, v, ptr, offset)
}

// AsCall emits a direct call to fn with args, producing results typed per
// the callee's signature; the caller (package frontend) derives the result
// types from the module's type section, then sets them here so
// InsertInstruction can allocate the right number of results.
func (i *Instruction) AsCall(fn FuncRef, args []Value, results []Type) *Instruction {
	i.opcode, i.funcRef, i.args, i.callResultTypes = OpcodeCall, fn, args, results
	return i
}

// AsCallIndirect is provided for the Runtime collaborator's use when it
// lowers call_indirect; the core itself never emits this directly (spec.md
// §4.2 delegates call_indirect entirely to runtime.translate_call_indirect).
func (i *Instruction) AsCallIndirect(sig SigRef, calleeAddr Value, args []Value, results []Type) *Instruction {
	i.opcode, i.sigRef, i.args, i.callResultTypes = OpcodeCallIndirect, sig, append([]Value{calleeAddr}, args...), results
	return i
}

func (i *Instruction) AsJump(args []Value, target EBB) *Instruction {
	i.opcode, i.args, i.target = OpcodeJump, args, target
	return i
}

func (i *Instruction) AsBrz(cond Value, args []Value, target EBB) *Instruction {
	i.opcode, i.args, i.target = OpcodeBrz, append([]Value{cond}, args...), target
	return i
}

func (i *Instruction) AsBrnz(cond Value, args []Value, target EBB) *Instruction {
	i.opcode, i.args, i.target = OpcodeBrnz, append([]Value{cond}, args...), target
	return i
}

func (i *Instruction) AsBrTable(index Value, jt JumpTable) *Instruction {
	i.opcode, i.args, i.jt = OpcodeBrTable, []Value{index}, jt
	return i
}

func (i *Instruction) AsReturn(vs []Value) *Instruction {
	i.opcode, i.args = OpcodeReturn, vs
	return i
}

func (i *Instruction) AsTrap() *Instruction {
	i.opcode = OpcodeTrap
	return i
}

// JumpArgs returns the block arguments carried on a Jump/Brz/Brnz
// instruction (for Brz/Brnz, the condition occupies args[0]).
func (i *Instruction) JumpArgs() []Value {
	switch i.opcode {
	case OpcodeBrz, OpcodeBrnz:
		return i.args[1:]
	default:
		return i.args
	}
}

// Target returns the branch target of a Jump/Brz/Brnz instruction.
func (i *Instruction) Target() EBB { return i.target }
