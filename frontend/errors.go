package frontend

import "fmt"

// translationError is a translation-structural failure (spec.md §4.6/§7):
// a malformed event sequence from the parser. The function being translated
// is abandoned; nothing else in the module is affected.
type translationError struct {
	funcIndex uint32
	msg       string
}

func (e *translationError) Error() string {
	return fmt.Sprintf("frontend: function %d: %s", e.funcIndex, e.msg)
}

func newTranslationError(funcIndex uint32, format string, args ...any) error {
	return &translationError{funcIndex: funcIndex, msg: fmt.Sprintf(format, args...)}
}

// newTranslationError builds a translationError for this function and warns
// on it, per spec.md §4.6's treatment of malformed-input conditions as
// abandoning the function rather than the whole module.
func (c *compiler) newTranslationError(format string, args ...any) error {
	err := newTranslationError(c.funcIndex, format, args...)
	c.logger.Warnf("%s", err)
	return err
}

// invariantViolation marks a should-not-happen condition: an empty stack
// pop, an unexpected frame variant, an unknown local type. These are
// programming errors in the core or in the upstream parser's guarantees,
// not malformed-input conditions, so the caller recovers them as panics
// (matching the "trusted input" posture of spec.md §1's Non-goals).
type invariantViolation struct {
	msg string
}

func (e *invariantViolation) Error() string { return "frontend: invariant violation: " + e.msg }

func panicInvariant(format string, args ...any) {
	panic(&invariantViolation{msg: fmt.Sprintf(format, args...)})
}

// panicInvariant logs the violation at error level before panicking, so a
// recovered invariant failure (see drive's deferred recover)
// still leaves a trace of what went wrong, matching cmd/waspile's own
// construction/fatal-boundary logging.
func (c *compiler) panicInvariant(format string, args ...any) {
	c.logger.Errorf(format, args...)
	panicInvariant(format, args...)
}
