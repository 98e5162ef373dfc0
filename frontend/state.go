package frontend

import "github.com/waspile/waspile/ssair"

// translationState is the bookkeeping that persists across operator
// dispatch within one function body (spec.md §3 TranslationState).
type translationState struct {
	lastInstReturn bool

	// phantomUnreachableDepth counts block/loop/if openings encountered
	// entirely within unreachable code: their `end` closes no real frame.
	phantomUnreachableDepth int
	// realUnreachableDepth counts control frames whose bodies entered the
	// translator in unreachable state; 0 means reachable.
	realUnreachableDepth int

	// brTableReachableEBBs holds destinations a br_table referenced: a
	// frame whose destination is in this set becomes reachable again at
	// its `end` even if the preceding straight-line code was dead.
	brTableReachableEBBs map[ssair.EBB]bool
}

func newTranslationState() *translationState {
	return &translationState{brTableReachableEBBs: make(map[ssair.EBB]bool)}
}

// reachable reports whether the reachable-operator dispatcher should run.
func (s *translationState) reachable() bool {
	return s.phantomUnreachableDepth+s.realUnreachableDepth == 0
}

func (s *translationState) markBrTableTarget(e ssair.EBB) {
	s.brTableReachableEBBs[e] = true
}
