package frontend

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/waspile/waspile/decode"
	"github.com/waspile/waspile/envrt"
	"github.com/waspile/waspile/ssair"
	"github.com/waspile/waspile/wasm"
)

// compiler holds everything scoped to translating a single function body:
// the IL builder, the operand stack, the control-frame stack, translation
// state, and the import cache (spec.md §5 -- nothing here crosses function
// boundaries).
type compiler struct {
	b       ssair.Builder
	module  *wasm.Module
	runtime envrt.Runtime
	imports *importResolver
	state   *translationState
	logger  *zap.SugaredLogger

	funcIndex wasm.Index
	sig       wasm.FunctionType

	frames    []*frame
	stack     []ssair.Value
	numLocals int
}

// TranslateFunction implements the function-body driver (spec.md §4.1): it
// translates the funcIdx'th module-defined function (an index into
// module.CodeSection, not the combined function index space) into a fresh
// ssair.Function.
func TranslateFunction(module *wasm.Module, funcIdx wasm.Index, runtime envrt.Runtime, logger *zap.SugaredLogger) (*ssair.Function, error) {
	absIdx := module.ImportFuncCount + funcIdx
	sigIdx := module.FunctionTypeIndex(absIdx)
	sig := module.TypeSection[sigIdx]
	code := module.CodeSection[funcIdx]

	runtime.NextFunction()

	fn := ssair.NewFunction(ilSignature(sig))
	var b ssair.Builder = fn

	c := &compiler{
		b:         b,
		module:    module,
		runtime:   runtime,
		state:     newTranslationState(),
		logger:    logger,
		funcIndex: absIdx,
		sig:       sig,
	}
	c.imports = newImportResolver(module, b)

	entry := b.CreateEBB()
	for _, p := range sig.Params {
		b.AppendEBBArg(entry, ilType(p))
	}
	b.SwitchToBlock(entry)
	b.SealBlock(entry)

	for i, p := range sig.Params {
		local := ssair.Local(i)
		ty := ilType(p)
		b.DeclareVar(local, ty)
		b.DefVar(local, b.ArgValue(i))
	}
	c.numLocals = len(sig.Params)

	if err := c.declareLocals(code.LocalGroups); err != nil {
		return nil, err
	}

	outerDest := b.CreateEBB()
	for _, rt := range sig.Results {
		b.AppendEBBArg(outerDest, ilType(rt))
	}
	outer := &frame{kind: frameBlock, destination: outerDest, returnTypes: toILTypes(sig.Results), origStack: 0}
	c.frames = append(c.frames, outer)

	if err := c.drive(code.Body); err != nil {
		return nil, err
	}

	if !b.IsFilled(b.CurrentBlock()) {
		args := c.popReturnArgs(len(sig.Results))
		b.InsertInstruction(b.AllocateInstruction().AsReturn(args))
	}

	f := c.popFrame()
	b.SwitchToBlock(f.destination)
	b.SealBlock(f.destination)
	if c.state.reachable() {
		if !b.IsFilled(f.destination) {
			args := b.EBBArgs(f.destination)
			b.InsertInstruction(b.AllocateInstruction().AsReturn(args))
		}
	}

	return fn, nil
}

func toILTypes(vts []wasm.ValueType) []ssair.Type {
	out := make([]ssair.Type, len(vts))
	for i, v := range vts {
		out[i] = ilType(v)
	}
	return out
}

// declareLocals implements step 5 of spec.md §4.1: one zero constant per
// declared-local group, fanned out to every local index in that group.
func (c *compiler) declareLocals(groups []wasm.LocalGroup) error {
	for _, g := range groups {
		ty := ilType(g.Type)
		zero := c.zeroConst(ty)
		for i := uint32(0); i < g.Count; i++ {
			local := ssair.Local(c.numLocals)
			c.b.DeclareVar(local, ty)
			c.b.DefVar(local, zero)
			c.numLocals++
		}
	}
	return nil
}

func (c *compiler) zeroConst(ty ssair.Type) ssair.Value {
	var inst *ssair.Instruction
	switch ty {
	case ssair.TypeI32:
		inst = c.b.AllocateInstruction().AsIconst32(0)
	case ssair.TypeI64:
		inst = c.b.AllocateInstruction().AsIconst64(0)
	case ssair.TypeF32:
		inst = c.b.AllocateInstruction().AsF32const(0)
	case ssair.TypeF64:
		inst = c.b.AllocateInstruction().AsF64const(0)
	default:
		c.panicInvariant("zero-initializing unsupported local type %v", ty)
	}
	h := c.b.InsertInstruction(inst)
	return c.b.InstResults(h)[0]
}

// drive implements step 7 of spec.md §4.1: stream operators until
// EndFunctionBody, dispatching each to the reachable or unreachable
// translator per the reachability predicate.
func (c *compiler) drive(body []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if iv, ok := r.(*invariantViolation); ok {
				err = fmt.Errorf("frontend: function %d: %w", c.funcIndex, iv)
				return
			}
			panic(r)
		}
	}()

	p := decode.NewOperatorReader(body)
	for {
		ev, perr := p.Next()
		if perr != nil {
			return c.newTranslationError("parser error: %v", perr)
		}
		switch ev.Kind {
		case decode.EventEndFunctionBody:
			return nil
		case decode.EventCodeOperator:
			if c.state.reachable() {
				c.translateReachable(ev.Op)
			} else {
				c.translateUnreachable(ev.Op)
			}
		default:
			return c.newTranslationError("unexpected parser event")
		}
	}
}

func (c *compiler) push(v ssair.Value)  { c.stack = append(c.stack, v) }
func (c *compiler) pushAll(vs []ssair.Value) { c.stack = append(c.stack, vs...) }

func (c *compiler) pop() ssair.Value {
	if len(c.stack) == 0 {
		c.panicInvariant("pop from empty operand stack")
	}
	v := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return v
}

// popN pops n values, returning them in original (bottom-to-top) order.
func (c *compiler) popN(n int) []ssair.Value {
	if len(c.stack) < n {
		c.panicInvariant("operand stack underflow: need %d, have %d", n, len(c.stack))
	}
	vs := make([]ssair.Value, n)
	copy(vs, c.stack[len(c.stack)-n:])
	c.stack = c.stack[:len(c.stack)-n]
	return vs
}

// popReturnArgs pops the tail n values for a return/jump to a frame with n
// declared result types.
func (c *compiler) popReturnArgs(n int) []ssair.Value {
	if n == 0 {
		return nil
	}
	return c.popN(n)
}

func (c *compiler) pushFrame(f *frame) { c.frames = append(c.frames, f) }

func (c *compiler) popFrame() *frame {
	if len(c.frames) == 0 {
		c.panicInvariant("control-frame stack underflow")
	}
	f := c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
	return f
}

func (c *compiler) topFrame() *frame {
	if len(c.frames) == 0 {
		c.panicInvariant("control-frame stack is empty")
	}
	return c.frames[len(c.frames)-1]
}

// frameAt resolves a relative branch depth to its control frame (0 = innermost).
func (c *compiler) frameAt(depth uint32) *frame {
	idx := len(c.frames) - 1 - int(depth)
	if idx < 0 || idx >= len(c.frames) {
		c.panicInvariant("branch depth %d out of range (have %d frames)", depth, len(c.frames))
	}
	return c.frames[idx]
}
