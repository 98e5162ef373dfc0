package frontend

import (
	"math"

	"github.com/waspile/waspile/decode"
	"github.com/waspile/waspile/ssair"
	"github.com/waspile/waspile/wasm"
)

// translateReachable implements the reachable-operator translator
// (spec.md §4.2): the large dispatch that manipulates the operand stack and
// emits IL instructions. Clears lastInstReturn on entry; only an explicit
// `return` re-sets it.
func (c *compiler) translateReachable(op decode.Operator) {
	c.state.lastInstReturn = false

	switch op.Code {
	case decode.OpLocalGet:
		c.push(c.b.UseVar(ssair.Local(op.LocalIndex)))
	case decode.OpLocalSet:
		c.b.DefVar(ssair.Local(op.LocalIndex), c.pop())
	case decode.OpLocalTee:
		v := c.stack[len(c.stack)-1]
		c.b.DefVar(ssair.Local(op.LocalIndex), v)

	case decode.OpGlobalGet:
		ty := c.globalValueType(op.GlobalIndex)
		c.push(c.runtime.TranslateGetGlobal(c.b, op.GlobalIndex, ty))
	case decode.OpGlobalSet:
		c.runtime.TranslateSetGlobal(c.b, op.GlobalIndex, c.pop())

	case decode.OpDrop:
		c.pop()
	case decode.OpSelect:
		cond := c.pop()
		b := c.pop()
		a := c.pop()
		c.emit1(c.b.AllocateInstruction().AsSelect(cond, a, b))
	case decode.OpNop:
		// emits nothing
	case decode.OpUnreachable:
		c.b.InsertInstruction(c.b.AllocateInstruction().AsTrap())
		c.state.realUnreachableDepth = 1

	case decode.OpBlock:
		c.openBlock(op)
	case decode.OpLoop:
		c.openLoop(op)
	case decode.OpIf:
		c.openIf(op)
	case decode.OpElse:
		c.doElse()
	case decode.OpEnd:
		c.doEnd()

	case decode.OpBr:
		c.doBr(op.RelativeDepth)
	case decode.OpBrIf:
		c.doBrIf(op.RelativeDepth)
	case decode.OpBrTable:
		c.doBrTable(op)
	case decode.OpReturn:
		args := c.popReturnArgs(len(c.sig.Results))
		c.b.InsertInstruction(c.b.AllocateInstruction().AsReturn(args))
		c.state.lastInstReturn = true
		c.state.realUnreachableDepth = 1

	case decode.OpCall:
		c.doCall(op.FuncIndex)
	case decode.OpCallIndirect:
		c.doCallIndirect(op.TypeIndex)

	case decode.OpMemorySize:
		c.push(c.runtime.TranslateCurrentMemory(c.b, 0))
	case decode.OpMemoryGrow:
		c.push(c.runtime.TranslateGrowMemory(c.b, 0, c.pop()))

	case decode.OpI32Load:
		c.load(op.Mem, ssair.TypeI32, (*ssair.Instruction).AsLoad)
	case decode.OpI64Load:
		c.load(op.Mem, ssair.TypeI64, (*ssair.Instruction).AsLoad)
	case decode.OpF32Load:
		c.load(op.Mem, ssair.TypeF32, (*ssair.Instruction).AsLoad)
	case decode.OpF64Load:
		c.load(op.Mem, ssair.TypeF64, (*ssair.Instruction).AsLoad)
	case decode.OpI32Load8U:
		c.load(op.Mem, ssair.TypeI32, (*ssair.Instruction).AsUload8)
	case decode.OpI32Load8S:
		c.load(op.Mem, ssair.TypeI32, (*ssair.Instruction).AsSload8)
	case decode.OpI32Load16U:
		c.load(op.Mem, ssair.TypeI32, (*ssair.Instruction).AsUload16)
	case decode.OpI32Load16S:
		c.load(op.Mem, ssair.TypeI32, (*ssair.Instruction).AsSload16)
	case decode.OpI64Load8U:
		c.load(op.Mem, ssair.TypeI64, (*ssair.Instruction).AsUload8)
	case decode.OpI64Load8S:
		c.load(op.Mem, ssair.TypeI64, (*ssair.Instruction).AsSload8)
	case decode.OpI64Load16U:
		c.load(op.Mem, ssair.TypeI64, (*ssair.Instruction).AsUload16)
	case decode.OpI64Load16S:
		c.load(op.Mem, ssair.TypeI64, (*ssair.Instruction).AsSload16)
	case decode.OpI64Load32U:
		addr := c.effectiveAddress(c.pop())
		c.emit1(c.b.AllocateInstruction().AsUload32(addr, ssair.Offset32(op.Mem.Offset)))
	case decode.OpI64Load32S:
		addr := c.effectiveAddress(c.pop())
		c.emit1(c.b.AllocateInstruction().AsSload32(addr, ssair.Offset32(op.Mem.Offset)))

	case decode.OpI32Store, decode.OpI64Store, decode.OpF32Store, decode.OpF64Store:
		c.store(op.Mem, (*ssair.Instruction).AsStore)
	case decode.OpI32Store8, decode.OpI64Store8:
		c.store(op.Mem, (*ssair.Instruction).AsIstore8)
	case decode.OpI32Store16, decode.OpI64Store16:
		c.store(op.Mem, (*ssair.Instruction).AsIstore16)
	case decode.OpI64Store32:
		c.store(op.Mem, (*ssair.Instruction).AsIstore32)

	case decode.OpI32Const:
		c.emit1(c.b.AllocateInstruction().AsIconst32(uint32(op.I32)))
	case decode.OpI64Const:
		c.emit1(c.b.AllocateInstruction().AsIconst64(uint64(op.I64)))
	case decode.OpF32Const:
		c.emit1(c.b.AllocateInstruction().AsF32const(math.Float32frombits(op.F32)))
	case decode.OpF64Const:
		c.emit1(c.b.AllocateInstruction().AsF64const(math.Float64frombits(op.F64)))

	default:
		c.translateArith(op)
	}
}

func (c *compiler) emit1(inst *ssair.Instruction) {
	h := c.b.InsertInstruction(inst)
	c.push(c.b.InstResults(h)[0])
}

func (c *compiler) globalValueType(idx wasm.Index) ssair.Type {
	importCount := wasm.Index(0)
	for _, imp := range c.module.ImportSection {
		if imp.Type != wasm.ExternTypeGlobal {
			continue
		}
		if importCount == idx {
			return ilType(imp.DescGlobal.ValType)
		}
		importCount++
	}
	return ilType(c.module.GlobalSection[idx-importCount].Type.ValType)
}

// effectiveAddress implements the address computation shared by every
// load/store (spec.md §4.2 Memory): runtime base + zero-extended 32-bit
// Wasm address.
func (c *compiler) effectiveAddress(addr32 ssair.Value) ssair.Value {
	base := c.runtime.TranslateMemoryBaseAddress(c.b, 0)
	extH := c.b.InsertInstruction(c.b.AllocateInstruction().AsUExtend(addr32, 32, 64))
	ext := c.b.InstResults(extH)[0]
	addH := c.b.InsertInstruction(c.b.AllocateInstruction().AsIadd(base, ext))
	return c.b.InstResults(addH)[0]
}

type loadCtor func(*ssair.Instruction, ssair.Value, ssair.Offset32, ssair.Type) *ssair.Instruction

func (c *compiler) load(mem decode.MemArg, ty ssair.Type, as loadCtor) {
	addr := c.effectiveAddress(c.pop())
	c.emit1(as(c.b.AllocateInstruction(), addr, ssair.Offset32(mem.Offset), ty))
}

type storeCtor func(*ssair.Instruction, ssair.Value, ssair.Value, ssair.Offset32) *ssair.Instruction

func (c *compiler) store(mem decode.MemArg, as storeCtor) {
	v := c.pop()
	addr32 := c.pop()
	addr := c.effectiveAddress(addr32)
	c.b.InsertInstruction(as(c.b.AllocateInstruction(), v, addr, ssair.Offset32(mem.Offset)))
}

func (c *compiler) doCall(funcIdx wasm.Index) {
	ref := c.imports.findFunctionImport(funcIdx)
	sigIdx := c.module.FunctionTypeIndex(funcIdx)
	sig := c.module.TypeSection[sigIdx]
	args := c.popN(len(sig.Params))
	results := toILTypes(sig.Results)
	h := c.b.InsertInstruction(c.b.AllocateInstruction().AsCall(ref, args, results))
	c.pushAll(c.b.InstResults(h))
}

func (c *compiler) doCallIndirect(typeIdx wasm.Index) {
	sigRef := c.imports.findSignatureImport(typeIdx)
	indexVal := c.pop()
	sig := c.module.TypeSection[typeIdx]
	args := c.popN(len(sig.Params))
	results := toILTypes(sig.Results)
	c.pushAll(c.runtime.TranslateCallIndirect(c.b, sigRef, indexVal, args, results))
}
