package frontend

import (
	"github.com/waspile/waspile/decode"
	"github.com/waspile/waspile/ssair"
)

func (c *compiler) openBlock(op decode.Operator) {
	next := c.b.CreateEBB()
	rts := blockReturnTypes(op.BlockType)
	for _, t := range rts {
		c.b.AppendEBBArg(next, t)
	}
	c.pushFrame(&frame{kind: frameBlock, destination: next, returnTypes: rts, origStack: len(c.stack)})
}

func (c *compiler) openLoop(op decode.Operator) {
	loopBody := c.b.CreateEBB()
	next := c.b.CreateEBB()
	rts := blockReturnTypes(op.BlockType)
	for _, t := range rts {
		c.b.AppendEBBArg(next, t)
	}
	c.b.InsertInstruction(c.b.AllocateInstruction().AsJump(nil, loopBody))
	c.pushFrame(&frame{kind: frameLoop, destination: next, header: loopBody, returnTypes: rts, origStack: len(c.stack)})
	c.b.SwitchToBlock(loopBody)
	// loopBody stays unsealed: back-edges from `br` inside the loop body
	// still need to register as predecessors before it can be sealed.
}

func (c *compiler) openIf(op decode.Operator) {
	cond := c.pop()
	ifNot := c.b.CreateEBB()
	h := c.b.InsertInstruction(c.b.AllocateInstruction().AsBrz(cond, nil, ifNot))
	rts := blockReturnTypes(op.BlockType)
	for _, t := range rts {
		c.b.AppendEBBArg(ifNot, t)
	}
	c.pushFrame(&frame{kind: frameIf, destination: ifNot, branch: h, returnTypes: rts, origStack: len(c.stack)})
}

func (c *compiler) doElse() {
	f := c.topFrame()
	if f.kind != frameIf {
		c.panicInvariant("else outside an if frame")
	}
	args := c.popReturnArgs(len(f.returnTypes))
	c.b.InsertInstruction(c.b.AllocateInstruction().AsJump(args, f.destination))

	elseEBB := c.b.CreateEBB()
	c.b.ChangeJumpDestination(f.branch, elseEBB)
	c.b.SealBlock(elseEBB)
	c.b.SwitchToBlock(elseEBB)
	f.sawElse = true
	c.stack = c.stack[:f.origStack]
}

func (c *compiler) doEnd() {
	f := c.popFrame()
	if !c.b.IsFilled(c.b.CurrentBlock()) {
		args := c.popReturnArgs(len(f.returnTypes))
		c.b.InsertInstruction(c.b.AllocateInstruction().AsJump(args, f.destination))
	}

	c.b.SwitchToBlock(f.destination)
	c.b.SealBlock(f.destination)
	if f.kind == frameLoop {
		c.b.SealBlock(f.header)
	}

	c.stack = c.stack[:f.origStack]
	c.pushAll(c.b.EBBArgs(f.destination))
}

func (c *compiler) doBr(depth uint32) {
	f := c.frameAt(depth)
	var args []ssair.Value
	if !f.isLoop() {
		args = c.popReturnArgs(len(f.returnValues()))
	}
	c.b.InsertInstruction(c.b.AllocateInstruction().AsJump(args, f.brDestination()))
	c.state.realUnreachableDepth = 1 + int(depth)
}

func (c *compiler) doBrIf(depth uint32) {
	f := c.frameAt(depth)
	cond := c.pop()
	n := len(f.returnValues())
	var args []ssair.Value
	if !f.isLoop() && n > 0 {
		args = c.popN(n)
	}
	c.b.InsertInstruction(c.b.AllocateInstruction().AsBrnz(cond, args, f.brDestination()))
	// The branch args remain live for fall-through code, per spec.md §4.2.
	c.pushAll(args)
}

func (c *compiler) doBrTable(op decode.Operator) {
	allDepths := append(append([]uint32{}, op.Targets...), op.Default)
	minDepth := allDepths[0]
	for _, d := range allDepths[1:] {
		if d < minDepth {
			minDepth = d
		}
	}
	arity := len(c.frameAt(minDepth).returnValues())

	cond := c.pop()

	if arity == 0 {
		if len(op.Targets) > 0 {
			jt := c.b.CreateJumpTable(len(op.Targets))
			for i, d := range op.Targets {
				target := c.frameAt(d).brDestination()
				c.b.InsertJumpTableEntry(jt, i, target)
				c.state.markBrTableTarget(target)
			}
			c.b.InsertInstruction(c.b.AllocateInstruction().AsBrTable(cond, jt))
		}
		defTarget := c.frameAt(op.Default).brDestination()
		c.state.markBrTableTarget(defTarget)
		c.b.InsertInstruction(c.b.AllocateInstruction().AsJump(nil, defTarget))
		c.state.realUnreachableDepth = 1 + int(minDepth)
		return
	}

	args := c.popN(arity)

	// Critical-edge splitting: the IL's br_table carries no per-edge block
	// arguments, so each unique depth gets a fresh intermediate EBB that
	// re-jumps to the real target with args attached.
	intermediates := make(map[uint32]ssair.EBB)
	jt := c.b.CreateJumpTable(len(op.Targets))
	for i, d := range op.Targets {
		ebb, ok := intermediates[d]
		if !ok {
			ebb = c.b.CreateEBB()
			intermediates[d] = ebb
		}
		c.b.InsertJumpTableEntry(jt, i, ebb)
	}
	c.b.InsertInstruction(c.b.AllocateInstruction().AsBrTable(cond, jt))

	defTarget := c.frameAt(op.Default).brDestination()
	c.b.InsertInstruction(c.b.AllocateInstruction().AsJump(args, defTarget))
	c.state.markBrTableTarget(defTarget)

	for d, ebb := range intermediates {
		realTarget := c.frameAt(d).brDestination()
		c.b.SwitchToBlock(ebb)
		c.b.SealBlock(ebb)
		c.b.InsertInstruction(c.b.AllocateInstruction().AsJump(args, realTarget))
		c.state.markBrTableTarget(realTarget)
	}

	c.pushAll(args)
	c.state.realUnreachableDepth = 1 + int(minDepth)
}
