package envrt

import "github.com/waspile/waspile/ssair"

// DefaultRuntime is a reference Runtime: it models linear memory as a flat
// address space based at zero (so "memory base" is a compile-time constant,
// mirroring how a single-memory embedder with no sandboxing indirection
// would wire this), globals as fixed byte offsets into a second flat region
// starting at globalsBase, and memory.grow/memory.size/call_indirect as
// calls to runtime-provided intrinsic functions imported into the IL -- the
// same pattern wazevo uses for anything that needs a real host-side trap or
// side effect the pure translator cannot express as arithmetic.
type DefaultRuntime struct {
	globalsBase uint64
	globalSize  uint64

	growMemorySig, currentMemorySig ssair.Signature
	growMemoryRef, currentMemoryRef ssair.FuncRef
	haveIntrinsics                 bool
}

// NewDefaultRuntime constructs a DefaultRuntime. globalSize is the number
// of bytes reserved per global slot (8 is enough for any scalar Wasm type).
func NewDefaultRuntime() *DefaultRuntime {
	return &DefaultRuntime{globalsBase: 1 << 32, globalSize: 8}
}

// NextFunction implements Runtime. The intrinsic imports are function-local
// (the IL builder resets them per function too), so the cached refs are
// dropped here and re-imported lazily by the next function that needs them.
func (r *DefaultRuntime) NextFunction() {
	r.haveIntrinsics = false
}

// TranslateMemoryBaseAddress implements Runtime.
func (r *DefaultRuntime) TranslateMemoryBaseAddress(b ssair.Builder, _ uint32) ssair.Value {
	h := b.InsertInstruction(b.AllocateInstruction().AsIconst64(0))
	return resultOf(b, h)
}

func resultOf(b ssair.Builder, h ssair.InstHandle) ssair.Value {
	rs := b.InstResults(h)
	if len(rs) == 0 {
		return ssair.ValueInvalid
	}
	return rs[0]
}

// TranslateGetGlobal implements Runtime.
func (r *DefaultRuntime) TranslateGetGlobal(b ssair.Builder, globalIndex uint32, typ ssair.Type) ssair.Value {
	addr := r.globalAddress(b, globalIndex)
	h := b.InsertInstruction(b.AllocateInstruction().AsLoad(addr, 0, typ))
	return resultOf(b, h)
}

// TranslateSetGlobal implements Runtime.
func (r *DefaultRuntime) TranslateSetGlobal(b ssair.Builder, globalIndex uint32, v ssair.Value) {
	addr := r.globalAddress(b, globalIndex)
	b.InsertInstruction(b.AllocateInstruction().AsStore(v, addr, 0))
}

func (r *DefaultRuntime) globalAddress(b ssair.Builder, globalIndex uint32) ssair.Value {
	offset := r.globalsBase + uint64(globalIndex)*r.globalSize
	h := b.InsertInstruction(b.AllocateInstruction().AsIconst64(offset))
	return resultOf(b, h)
}

func (r *DefaultRuntime) ensureIntrinsics(b ssair.Builder) {
	if r.haveIntrinsics {
		return
	}
	r.growMemorySig = ssair.Signature{Params: []ssair.Type{ssair.TypeI32}, Results: []ssair.Type{ssair.TypeI32}}
	r.currentMemorySig = ssair.Signature{Results: []ssair.Type{ssair.TypeI32}}
	growSig := b.ImportSignature(r.growMemorySig)
	curSig := b.ImportSignature(r.currentMemorySig)
	r.growMemoryRef = b.ImportFunction(ssair.ExtFuncData{Name: "$runtime.memory_grow", Signature: growSig})
	r.currentMemoryRef = b.ImportFunction(ssair.ExtFuncData{Name: "$runtime.memory_size", Signature: curSig})
	r.haveIntrinsics = true
}

// TranslateGrowMemory implements Runtime.
func (r *DefaultRuntime) TranslateGrowMemory(b ssair.Builder, _ uint32, deltaPages ssair.Value) ssair.Value {
	r.ensureIntrinsics(b)
	h := b.InsertInstruction(b.AllocateInstruction().AsCall(r.growMemoryRef, []ssair.Value{deltaPages}, r.growMemorySig.Results))
	return resultOf(b, h)
}

// TranslateCurrentMemory implements Runtime.
func (r *DefaultRuntime) TranslateCurrentMemory(b ssair.Builder, _ uint32) ssair.Value {
	r.ensureIntrinsics(b)
	h := b.InsertInstruction(b.AllocateInstruction().AsCall(r.currentMemoryRef, nil, r.currentMemorySig.Results))
	return resultOf(b, h)
}

// TranslateCallIndirect implements Runtime: the table is modeled as a flat
// array of function pointers starting at tableBase; a load reads the slot's
// function pointer and one IL call-indirect instruction invokes it against sig.
func (r *DefaultRuntime) TranslateCallIndirect(b ssair.Builder, sig ssair.SigRef, indexVal ssair.Value, args []ssair.Value, results []ssair.Type) []ssair.Value {
	const tableBase = uint64(1) << 40
	const slotSize = 8

	baseH := b.InsertInstruction(b.AllocateInstruction().AsIconst64(tableBase))
	base := resultOf(b, baseH)

	widenedH := b.InsertInstruction(b.AllocateInstruction().AsUExtend(indexVal, 32, 64))
	widened := resultOf(b, widenedH)

	slotSizeH := b.InsertInstruction(b.AllocateInstruction().AsIconst64(slotSize))
	scaledH := b.InsertInstruction(b.AllocateInstruction().AsImul(widened, resultOf(b, slotSizeH)))
	scaled := resultOf(b, scaledH)

	slotAddrH := b.InsertInstruction(b.AllocateInstruction().AsIadd(base, scaled))
	slotAddr := resultOf(b, slotAddrH)

	fnPtrH := b.InsertInstruction(b.AllocateInstruction().AsLoad(slotAddr, 0, ssair.TypeI64))
	fnPtr := resultOf(b, fnPtrH)

	callH := b.InsertInstruction(b.AllocateInstruction().AsCallIndirect(sig, fnPtr, args, results))
	return b.InstResults(callH)
}
