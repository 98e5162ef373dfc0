package ssair

import (
	"fmt"
	"strings"
)

// Format implements Builder. It renders blocks in creation order with their
// formal parameters and instruction list, in the spirit of Cranelift-family
// IL dumps: enough to eyeball in a test failure, not a stable wire format.
func (f *Function) Format() string {
	var sb strings.Builder
	for _, b := range f.blocks {
		fmt.Fprintf(&sb, "ebb%d(%s):", b.id, formatValues(b.params))
		if b.sealed {
			sb.WriteString(" ; sealed")
		}
		sb.WriteString("\n")
		for _, instr := range b.instrs {
			sb.WriteString("    ")
			sb.WriteString(formatInstr(instr))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatValues(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

func formatInstr(i *Instruction) string {
	res := ""
	if len(i.results) > 0 {
		res = formatValues(i.results) + " = "
	}
	switch i.opcode {
	case OpcodeIconst32:
		return fmt.Sprintf("%s%s %d", res, i.opcode, i.uImm32)
	case OpcodeIconst64:
		return fmt.Sprintf("%s%s %d", res, i.opcode, i.uImm64)
	case OpcodeF32const:
		return fmt.Sprintf("%s%s %v", res, i.opcode, i.fImm32)
	case OpcodeF64const:
		return fmt.Sprintf("%s%s %v", res, i.opcode, i.fImm64)
	case OpcodeJump:
		return fmt.Sprintf("jump %s(%s)", i.target, formatValues(i.args))
	case OpcodeBrz:
		return fmt.Sprintf("brz %s, %s(%s)", i.args[0], i.target, formatValues(i.args[1:]))
	case OpcodeBrnz:
		return fmt.Sprintf("brnz %s, %s(%s)", i.args[0], i.target, formatValues(i.args[1:]))
	case OpcodeBrTable:
		return fmt.Sprintf("br_table %s, jt%d", i.args[0], i.jt.id)
	case OpcodeReturn:
		return fmt.Sprintf("return %s", formatValues(i.args))
	case OpcodeTrap:
		return "trap"
	default:
		return fmt.Sprintf("%s%s %s", res, i.opcode, formatValues(i.args))
	}
}
