package ssair

import (
	"fmt"
	"math/bits"
)

// Evaluate interprets fn against args (one raw value per declared function
// parameter, in order) by walking its blocks directly -- a small reference
// interpreter for the conformance package's differential testing, not a
// production execution engine. It supports integer arithmetic, comparisons,
// select, and control flow (Jump/Brz/Brnz/Return/Trap); Load/Store/Call/
// CallIndirect/BrTable and the floating-point opcodes are out of scope for
// this evaluator (it returns an error rather than guess at a memory or
// table model the translator deliberately left to the Runtime collaborator).
func Evaluate(fn *Function, args []uint64) ([]uint64, error) {
	if len(fn.blocks) == 0 {
		return nil, fmt.Errorf("ssair: eval: function has no blocks")
	}
	vals := make(map[uint32]uint64)

	blk := fn.blocks[0]
	if len(args) != len(blk.params) {
		return nil, fmt.Errorf("ssair: eval: got %d args, entry block wants %d", len(args), len(blk.params))
	}
	for i, p := range blk.params {
		vals[p.id] = args[i]
	}

	for steps := 0; ; steps++ {
		if steps > 1_000_000 {
			return nil, fmt.Errorf("ssair: eval: step limit exceeded (likely a non-terminating loop)")
		}
		next, results, done, err := evalBlock(fn, blk, vals)
		if err != nil {
			return nil, err
		}
		if done {
			return results, nil
		}
		blk = next
	}
}

// evalBlock runs blk's instructions against vals until a terminator, and
// returns either the next block to enter (done=false) or the function's
// final results (done=true).
func evalBlock(fn *Function, blk *block, vals map[uint32]uint64) (next *block, results []uint64, done bool, err error) {
	for _, instr := range blk.instrs {
		switch instr.opcode {
		case OpcodeIconst32:
			vals[instr.results[0].id] = uint64(instr.uImm32)
		case OpcodeIconst64:
			vals[instr.results[0].id] = instr.uImm64

		case OpcodeIadd, OpcodeIsub, OpcodeImul, OpcodeSdiv, OpcodeUdiv, OpcodeSrem, OpcodeUrem,
			OpcodeBand, OpcodeBor, OpcodeBxor, OpcodeIshl, OpcodeUshr, OpcodeSshr, OpcodeRotl, OpcodeRotr:
			x, y := vals[instr.args[0].id], vals[instr.args[1].id]
			v, ferr := evalIntBinop(instr.opcode, instr.typ, x, y)
			if ferr != nil {
				return nil, nil, false, ferr
			}
			vals[instr.results[0].id] = v

		case OpcodeClz, OpcodeCtz, OpcodePopcnt:
			vals[instr.results[0].id] = evalIntUnop(instr.opcode, instr.typ, vals[instr.args[0].id])

		case OpcodeIcmp:
			vals[instr.results[0].id] = boolU64(evalIcmp(instr.icmp, instr.args[0].typ, vals[instr.args[0].id], vals[instr.args[1].id]))

		case OpcodeIreduce:
			v := vals[instr.args[0].id]
			if instr.toW == 32 {
				v &= 0xffffffff
			}
			vals[instr.results[0].id] = v
		case OpcodeSExtend:
			vals[instr.results[0].id] = signExtend(vals[instr.args[0].id], instr.fromW, instr.toW)
		case OpcodeUExtend:
			v := vals[instr.args[0].id]
			if instr.fromW == 32 {
				v &= 0xffffffff
			}
			vals[instr.results[0].id] = v

		case OpcodeSelect:
			cond, a, b := vals[instr.args[0].id], vals[instr.args[1].id], vals[instr.args[2].id]
			if cond != 0 {
				vals[instr.results[0].id] = a
			} else {
				vals[instr.results[0].id] = b
			}

		case OpcodeJump:
			target := fn.block(instr.target)
			bindArgs(target, instr.args, vals)
			return target, nil, false, nil

		case OpcodeBrz, OpcodeBrnz:
			cond := vals[instr.args[0].id]
			taken := cond == 0
			if instr.opcode == OpcodeBrnz {
				taken = cond != 0
			}
			if taken {
				target := fn.block(instr.target)
				bindArgs(target, instr.args[1:], vals)
				return target, nil, false, nil
			}
			// fallthrough: execution continues past this instruction in blk.

		case OpcodeReturn:
			out := make([]uint64, len(instr.args))
			for i, a := range instr.args {
				out[i] = vals[a.id]
			}
			return nil, out, true, nil

		case OpcodeTrap:
			return nil, nil, false, fmt.Errorf("ssair: eval: trap")

		default:
			return nil, nil, false, fmt.Errorf("ssair: eval: unsupported opcode %s", instr.opcode)
		}
	}
	return nil, nil, false, fmt.Errorf("ssair: eval: block %d fell through without a terminator", blk.id)
}

func bindArgs(target *block, args []Value, vals map[uint32]uint64) {
	for i, p := range target.params {
		vals[p.id] = vals[args[i].id]
	}
}

func mask(typ Type, v uint64) uint64 {
	if typ == TypeI32 {
		return v & 0xffffffff
	}
	return v
}

func signExtend(v uint64, fromBits, toBits byte) uint64 {
	shift := 64 - fromBits
	signed := int64(v<<shift) >> shift
	if toBits == 32 {
		return uint64(uint32(signed))
	}
	return uint64(signed)
}

func boolU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func evalIntUnop(op Opcode, typ Type, x uint64) uint64 {
	width := 64
	if typ == TypeI32 {
		width = 32
		x &= 0xffffffff
	}
	switch op {
	case OpcodeClz:
		if width == 32 {
			return uint64(bits.LeadingZeros32(uint32(x)))
		}
		return uint64(bits.LeadingZeros64(x))
	case OpcodeCtz:
		if x == 0 {
			return uint64(width)
		}
		if width == 32 {
			return uint64(bits.TrailingZeros32(uint32(x)))
		}
		return uint64(bits.TrailingZeros64(x))
	case OpcodePopcnt:
		return uint64(bits.OnesCount64(x))
	default:
		return 0
	}
}

func evalIntBinop(op Opcode, typ Type, x, y uint64) (uint64, error) {
	is32 := typ == TypeI32
	if is32 {
		x, y = x&0xffffffff, y&0xffffffff
	}
	switch op {
	case OpcodeIadd:
		return mask(typ, x+y), nil
	case OpcodeIsub:
		return mask(typ, x-y), nil
	case OpcodeImul:
		return mask(typ, x*y), nil
	case OpcodeUdiv:
		if y == 0 {
			return 0, fmt.Errorf("ssair: eval: division by zero")
		}
		return mask(typ, x/y), nil
	case OpcodeUrem:
		if y == 0 {
			return 0, fmt.Errorf("ssair: eval: division by zero")
		}
		return mask(typ, x%y), nil
	case OpcodeSdiv:
		if y == 0 {
			return 0, fmt.Errorf("ssair: eval: division by zero")
		}
		sx, sy := toSigned(typ, x), toSigned(typ, y)
		return mask(typ, uint64(sx/sy)), nil
	case OpcodeSrem:
		if y == 0 {
			return 0, fmt.Errorf("ssair: eval: division by zero")
		}
		sx, sy := toSigned(typ, x), toSigned(typ, y)
		return mask(typ, uint64(sx%sy)), nil
	case OpcodeBand:
		return mask(typ, x&y), nil
	case OpcodeBor:
		return mask(typ, x|y), nil
	case OpcodeBxor:
		return mask(typ, x^y), nil
	case OpcodeIshl:
		return shiftOp(typ, x, y, func(v, s uint64) uint64 { return v << (s % widthOf(typ)) }), nil
	case OpcodeUshr:
		return shiftOp(typ, x, y, func(v, s uint64) uint64 { return v >> (s % widthOf(typ)) }), nil
	case OpcodeSshr:
		sx := toSigned(typ, x)
		s := y % widthOf(typ)
		return mask(typ, uint64(sx>>s)), nil
	case OpcodeRotl:
		if typ == TypeI32 {
			return uint64(bits.RotateLeft32(uint32(x), int(y%32))), nil
		}
		return bits.RotateLeft64(x, int(y%64)), nil
	case OpcodeRotr:
		if typ == TypeI32 {
			return uint64(bits.RotateLeft32(uint32(x), -int(y%32))), nil
		}
		return bits.RotateLeft64(x, -int(y%64)), nil
	default:
		return 0, fmt.Errorf("ssair: eval: unsupported integer opcode %s", op)
	}
}

func widthOf(typ Type) uint64 {
	if typ == TypeI32 {
		return 32
	}
	return 64
}

func shiftOp(typ Type, v, s uint64, f func(uint64, uint64) uint64) uint64 {
	return mask(typ, f(v, s))
}

func toSigned(typ Type, v uint64) int64 {
	if typ == TypeI32 {
		return int64(int32(uint32(v)))
	}
	return int64(v)
}

func evalIcmp(cond IntegerCmpCond, typ Type, x, y uint64) bool {
	ux, uy := mask(typ, x), mask(typ, y)
	sx, sy := toSigned(typ, x), toSigned(typ, y)
	switch cond {
	case IntegerCmpCondEqual:
		return ux == uy
	case IntegerCmpCondNotEqual:
		return ux != uy
	case IntegerCmpCondSignedLessThan:
		return sx < sy
	case IntegerCmpCondSignedGreaterThanOrEqual:
		return sx >= sy
	case IntegerCmpCondSignedGreaterThan:
		return sx > sy
	case IntegerCmpCondSignedLessThanOrEqual:
		return sx <= sy
	case IntegerCmpCondUnsignedLessThan:
		return ux < uy
	case IntegerCmpCondUnsignedGreaterThanOrEqual:
		return ux >= uy
	case IntegerCmpCondUnsignedGreaterThan:
		return ux > uy
	case IntegerCmpCondUnsignedLessThanOrEqual:
		return ux <= uy
	default:
		return false
	}
}
