package frontend

import "github.com/waspile/waspile/decode"

// translateUnreachable implements the reduced dispatch that runs while
// either unreachable counter is positive (spec.md §4.5): it discards
// operands but still tracks nested control structure until reachability is
// restored.
func (c *compiler) translateUnreachable(op decode.Operator) {
	switch op.Code {
	case decode.OpBlock, decode.OpLoop, decode.OpIf:
		c.state.phantomUnreachableDepth++

	case decode.OpEnd:
		if c.state.phantomUnreachableDepth > 0 {
			c.state.phantomUnreachableDepth--
			return
		}
		f := c.popFrame()
		c.b.SwitchToBlock(f.destination)
		c.b.SealBlock(f.destination)
		if f.kind == frameLoop {
			c.b.SealBlock(f.header)
		}
		if f.kind == frameIf && !f.sawElse {
			c.state.realUnreachableDepth = 1
		}
		if c.state.brTableReachableEBBs[f.destination] {
			c.state.realUnreachableDepth = 1
		}
		c.stack = c.stack[:f.origStack]
		if c.state.realUnreachableDepth == 1 {
			c.pushAll(c.b.EBBArgs(f.destination))
		}
		c.state.realUnreachableDepth--
		c.state.lastInstReturn = false

	case decode.OpElse:
		if c.state.phantomUnreachableDepth > 0 {
			return
		}
		f := c.topFrame()
		if f.kind != frameIf {
			c.panicInvariant("else outside an if frame")
		}
		elseEBB := c.b.CreateEBB()
		c.b.ChangeJumpDestination(f.branch, elseEBB)
		c.b.SealBlock(elseEBB)
		c.b.SwitchToBlock(elseEBB)
		f.sawElse = true
		c.stack = c.stack[:f.origStack]
		c.state.realUnreachableDepth = 0
		c.state.lastInstReturn = false

	default:
		// discard
	}
}
