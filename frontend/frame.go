package frontend

import "github.com/waspile/waspile/ssair"

// frameKind discriminates the three control-frame variants (spec.md §3).
// A tagged struct stands in for a sum type here, the way the teacher's own
// wazevo frontend represents its control-flow frames.
type frameKind int

const (
	frameBlock frameKind = iota
	frameLoop
	frameIf
)

// frame is one entry of the control-frame stack.
type frame struct {
	kind frameKind

	destination ssair.EBB
	returnTypes []ssair.Type
	origStack   int // operand-stack length snapshot at frame entry

	header ssair.EBB      // Loop only
	branch ssair.InstHandle // If only: the brz emitted at `if`
	sawElse bool          // If only: whether an `else` rewired branch already
}

// returnValues returns the frame's declared result types (spec.md §4.4).
func (f *frame) returnValues() []ssair.Type { return f.returnTypes }

// followingCode returns the post-frame EBB.
func (f *frame) followingCode() ssair.EBB { return f.destination }

// brDestination returns where a `br` targeting this frame jumps to: a
// loop's header for back-edges, the destination EBB otherwise.
func (f *frame) brDestination() ssair.EBB {
	if f.kind == frameLoop {
		return f.header
	}
	return f.destination
}

func (f *frame) isLoop() bool { return f.kind == frameLoop }
