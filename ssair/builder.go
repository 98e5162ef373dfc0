package ssair

import "fmt"

// Builder is the capability surface the translator consumes from the IL
// builder collaborator (spec.md §6). A single Builder instance is scoped to
// one function body; a fresh one is created per function via NewFunction.
type Builder interface {
	// CreateEBB allocates a fresh, initially unsealed, paramless EBB.
	CreateEBB() EBB
	// AppendEBBArg appends one formal parameter of type ty to ebb and
	// returns its Value, usable immediately even though ebb isn't filled yet.
	AppendEBBArg(ebb EBB, ty Type) Value
	// EBBArgs returns the current formal parameter values of ebb, in order.
	EBBArgs(ebb EBB) []Value

	// SwitchToBlock makes ebb the current insertion point for subsequent
	// instruction emission.
	SwitchToBlock(ebb EBB)
	// CurrentBlock returns the current insertion point.
	CurrentBlock() EBB

	// SealBlock declares that all of ebb's predecessors are now known.
	SealBlock(ebb EBB)

	// IsFilled reports whether ebb already ends with a terminator
	// (jump/branch-table/return/trap).
	IsFilled(ebb EBB) bool
	// IsPristine reports whether ebb has had no instructions emitted into it.
	IsPristine(ebb EBB) bool

	// DeclareVar registers the type of local (a dense Wasm local index) so
	// later DefVar/UseVar calls can materialize its SSA values.
	DeclareVar(local Local, ty Type)
	// DefVar records value as local's definition in the current block.
	DefVar(local Local, value Value)
	// UseVar resolves local's current SSA value at the current block,
	// inserting EBB parameters (and patching predecessor branch args) as
	// needed per the incomplete-SSA construction algorithm.
	UseVar(local Local) Value

	// ArgValue returns the i-th formal parameter value of the function's
	// entry block.
	ArgValue(i int) Value

	// AllocateInstruction returns a fresh, not-yet-inserted instruction the
	// caller configures with one of the As* helpers and then inserts via InsertInstruction.
	AllocateInstruction() *Instruction
	// InsertInstruction appends instr to the current block and assigns it an
	// InstHandle plus any result Values its opcode produces.
	InsertInstruction(instr *Instruction) InstHandle
	// InstResults returns the result values produced by a previously-inserted instruction.
	InstResults(h InstHandle) []Value
	// ChangeJumpDestination rewires a previously-inserted Jump/Brz/Brnz
	// instruction to target newTarget instead of its original target.
	ChangeJumpDestination(h InstHandle, newTarget EBB)

	// CreateJumpTable allocates a jump table with n initially-unset entries.
	CreateJumpTable(n int) JumpTable
	// InsertJumpTableEntry sets jt's entry at index to target.
	InsertJumpTableEntry(jt JumpTable, index int, target EBB)

	// ImportFunction resolves (or creates) the FuncRef for an externally
	// defined function.
	ImportFunction(data ExtFuncData) FuncRef
	// ImportSignature resolves (or creates) the SigRef for sig.
	ImportSignature(sig Signature) SigRef
	// Signature returns the signature previously imported as ref.
	Signature(ref SigRef) Signature

	// Format renders the constructed function as IL text, for debugging and tests.
	Format() string
}

type predEdge struct {
	pred   *block
	branch *Instruction
}

type block struct {
	id             int
	sealed         bool
	filled         bool
	params         []Value
	instrs         []*Instruction
	preds          []predEdge
	singlePred     *block
	lastDefs       map[Local]Value
	incompletePhis map[Local]Value
}

// Function is the concrete Builder implementation.
type Function struct {
	sig    Signature
	blocks []*block
	cur    *block

	localTypes map[Local]Type

	nextValueID uint32

	jumpTables [][]EBB

	sigs     []Signature
	funcRefs []ExtFuncData
}

// NewFunction allocates a Function ready to translate a body with the given signature.
func NewFunction(sig Signature) *Function {
	return &Function{
		sig:        sig,
		localTypes: make(map[Local]Type),
	}
}

func (f *Function) allocateValue(typ Type) Value {
	v := Value{id: f.nextValueID, typ: typ, valid: true}
	f.nextValueID++
	return v
}

// CreateEBB implements Builder.
func (f *Function) CreateEBB() EBB {
	b := &block{
		id:             len(f.blocks),
		lastDefs:       make(map[Local]Value),
		incompletePhis: make(map[Local]Value),
	}
	f.blocks = append(f.blocks, b)
	return EBB{id: b.id, valid: true}
}

func (f *Function) block(e EBB) *block {
	if !e.valid || e.id >= len(f.blocks) {
		panic("ssair: invalid EBB handle")
	}
	return f.blocks[e.id]
}

// AppendEBBArg implements Builder.
func (f *Function) AppendEBBArg(e EBB, ty Type) Value {
	v := f.allocateValue(ty)
	b := f.block(e)
	b.params = append(b.params, v)
	return v
}

// EBBArgs implements Builder.
func (f *Function) EBBArgs(e EBB) []Value {
	return f.block(e).params
}

// SwitchToBlock implements Builder.
func (f *Function) SwitchToBlock(e EBB) {
	f.cur = f.block(e)
}

// CurrentBlock implements Builder.
func (f *Function) CurrentBlock() EBB {
	if f.cur == nil {
		return EBB{}
	}
	return EBB{id: f.cur.id, valid: true}
}

// SealBlock implements Builder.
func (f *Function) SealBlock(e EBB) {
	b := f.block(e)
	if b.sealed {
		panic("ssair: block sealed twice")
	}
	if len(b.preds) == 1 {
		b.singlePred = b.preds[0].pred
	}
	b.sealed = true

	for local, placeholder := range b.incompletePhis {
		ty := f.localTypes[local]
		b.params = append(b.params, placeholder)
		for _, pe := range b.preds {
			v := f.findValue(ty, local, pe.pred)
			pe.branch.args = append(pe.branch.args, v)
		}
	}
	b.incompletePhis = nil
}

// IsFilled implements Builder.
func (f *Function) IsFilled(e EBB) bool { return f.block(e).filled }

// IsPristine implements Builder.
func (f *Function) IsPristine(e EBB) bool {
	b := f.block(e)
	return len(b.instrs) == 0
}

// DeclareVar implements Builder.
func (f *Function) DeclareVar(local Local, ty Type) {
	f.localTypes[local] = ty
}

// DefVar implements Builder.
func (f *Function) DefVar(local Local, v Value) {
	if f.cur == nil {
		panic("ssair: DefVar with no current block")
	}
	f.cur.lastDefs[local] = v
}

// UseVar implements Builder.
func (f *Function) UseVar(local Local) Value {
	ty, ok := f.localTypes[local]
	if !ok {
		panic(fmt.Sprintf("ssair: local %d used before DeclareVar", local))
	}
	if f.cur == nil {
		panic("ssair: UseVar with no current block")
	}
	return f.findValue(ty, local, f.cur)
}

// findValue implements the incomplete-SSA-construction lookup: return the
// reaching definition of local at blk, inserting a placeholder EBB parameter
// (resolved later at Seal) when blk isn't sealed yet, or an EBB parameter
// immediately when blk is sealed with more than one predecessor.
func (f *Function) findValue(ty Type, local Local, blk *block) Value {
	if v, ok := blk.lastDefs[local]; ok {
		return v
	}
	if !blk.sealed {
		v := f.allocateValue(ty)
		blk.lastDefs[local] = v
		blk.incompletePhis[local] = v
		return v
	}
	if blk.singlePred != nil {
		v := f.findValue(ty, local, blk.singlePred)
		blk.lastDefs[local] = v
		return v
	}
	if len(blk.preds) == 0 {
		panic(fmt.Sprintf("ssair: local %d has no reaching definition in block %d", local, blk.id))
	}
	v := f.allocateValue(ty)
	blk.lastDefs[local] = v
	blk.params = append(blk.params, v)
	for _, pe := range blk.preds {
		arg := f.findValue(ty, local, pe.pred)
		pe.branch.args = append(pe.branch.args, arg)
	}
	return v
}

// ArgValue implements Builder.
func (f *Function) ArgValue(i int) Value {
	return f.blocks[0].params[i]
}

// AllocateInstruction implements Builder.
func (f *Function) AllocateInstruction() *Instruction {
	return &Instruction{}
}

func (f *Function) addPred(target EBB, branch *Instruction) {
	tb := f.block(target)
	tb.preds = append(tb.preds, predEdge{pred: f.cur, branch: branch})
}

// InsertInstruction implements Builder.
func (f *Function) InsertInstruction(instr *Instruction) InstHandle {
	if f.cur == nil {
		panic("ssair: InsertInstruction with no current block")
	}
	if f.cur.filled {
		panic("ssair: inserting into an already-filled block")
	}
	idx := len(f.cur.instrs)
	h := InstHandle{blk: f.cur.id, idx: idx, valid: true}

	switch instr.opcode {
	case OpcodeJump, OpcodeBrTable:
		f.cur.filled = true
	case OpcodeReturn, OpcodeTrap:
		f.cur.filled = true
	}

	switch instr.opcode {
	case OpcodeIadd, OpcodeIsub, OpcodeImul, OpcodeSdiv, OpcodeUdiv, OpcodeSrem, OpcodeUrem,
		OpcodeBand, OpcodeBor, OpcodeBxor, OpcodeIshl, OpcodeUshr, OpcodeSshr, OpcodeRotl, OpcodeRotr,
		OpcodeFadd, OpcodeFsub, OpcodeFmul, OpcodeFdiv, OpcodeFmin, OpcodeFmax, OpcodeFcopysign,
		OpcodeFneg, OpcodeFabs, OpcodeSqrt, OpcodeCeil, OpcodeFloor, OpcodeTrunc, OpcodeNearest,
		OpcodeClz, OpcodeCtz, OpcodePopcnt, OpcodeIcmp, OpcodeFcmp,
		OpcodeIconst32, OpcodeIconst64, OpcodeF32const, OpcodeF64const,
		OpcodeBitcast, OpcodeSExtend, OpcodeUExtend, OpcodeIreduce,
		OpcodeFcvtFromInt, OpcodeFcvtToInt, OpcodeFpromote, OpcodeFdemote,
		OpcodeSelect, OpcodeLoad, OpcodeUload8, OpcodeSload8, OpcodeUload16, OpcodeSload16,
		OpcodeUload32, OpcodeSload32:
		instr.results = []Value{f.allocateValue(instr.typ)}
	case OpcodeCall, OpcodeCallIndirect:
		instr.results = make([]Value, len(instr.callResultTypes))
		for idx, t := range instr.callResultTypes {
			instr.results[idx] = f.allocateValue(t)
		}
	}

	if instr.target.valid {
		f.addPred(instr.target, instr)
	}
	if instr.opcode == OpcodeBrTable {
		for _, t := range f.jumpTables[instr.jt.id] {
			f.addPred(t, instr)
		}
	}

	f.cur.instrs = append(f.cur.instrs, instr)
	return h
}

func (f *Function) inst(h InstHandle) *Instruction {
	if !h.valid || h.blk >= len(f.blocks) || h.idx >= len(f.blocks[h.blk].instrs) {
		panic("ssair: invalid instruction handle")
	}
	return f.blocks[h.blk].instrs[h.idx]
}

// InstResults implements Builder.
func (f *Function) InstResults(h InstHandle) []Value {
	return f.inst(h).results
}

// ChangeJumpDestination implements Builder.
func (f *Function) ChangeJumpDestination(h InstHandle, newTarget EBB) {
	instr := f.inst(h)
	switch instr.opcode {
	case OpcodeJump, OpcodeBrz, OpcodeBrnz:
	default:
		panic("ssair: ChangeJumpDestination on a non-branch instruction")
	}
	instr.target = newTarget
	f.addPred(newTarget, instr)
}

// CreateJumpTable implements Builder.
func (f *Function) CreateJumpTable(n int) JumpTable {
	f.jumpTables = append(f.jumpTables, make([]EBB, n))
	return JumpTable{id: len(f.jumpTables) - 1}
}

// InsertJumpTableEntry implements Builder.
func (f *Function) InsertJumpTableEntry(jt JumpTable, index int, target EBB) {
	f.jumpTables[jt.id][index] = target
}

// ImportFunction implements Builder.
func (f *Function) ImportFunction(data ExtFuncData) FuncRef {
	f.funcRefs = append(f.funcRefs, data)
	return FuncRef(len(f.funcRefs) - 1)
}

// ImportSignature implements Builder.
func (f *Function) ImportSignature(sig Signature) SigRef {
	f.sigs = append(f.sigs, sig)
	return SigRef(len(f.sigs) - 1)
}

// Signature implements Builder.
func (f *Function) Signature(ref SigRef) Signature {
	return f.sigs[ref]
}
