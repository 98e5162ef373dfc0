package decode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waspile/waspile/wasm"
)

// constI32Module is `(module (func (result i32) i32.const 42))`.
var constI32Module = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f, // type section
	0x03, 0x02, 0x01, 0x00, // function section
	0x0a, 0x06, 0x01, 0x04, 0x00, 0x41, 0x2a, 0x0b, // code section
}

func TestParseModule_ConstReturn(t *testing.T) {
	m, err := ParseModule(constI32Module)
	require.NoError(t, err)
	require.Len(t, m.TypeSection, 1)
	require.Empty(t, m.TypeSection[0].Params)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, m.TypeSection[0].Results)
	require.Equal(t, []wasm.Index{0}, m.FunctionSection)
	require.Len(t, m.CodeSection, 1)
	require.Empty(t, m.CodeSection[0].LocalGroups)
	require.Equal(t, []byte{0x41, 0x2a, 0x0b}, m.CodeSection[0].Body)
	require.False(t, m.HasMemory)
	require.Equal(t, wasm.Index(0), m.ImportFuncCount)
}

func TestParseModule_BadMagic(t *testing.T) {
	_, err := ParseModule([]byte{0, 0, 0, 0, 1, 0, 0, 0})
	require.Error(t, err)
}

func TestParseModule_BadVersion(t *testing.T) {
	bad := append([]byte{}, constI32Module[:8]...)
	bad[4] = 0x02
	_, err := ParseModule(bad)
	require.Error(t, err)
}

func TestOperatorReader_NestedEndsDontEndBodyEarly(t *testing.T) {
	// block
	//   nop
	// end
	// end  <- only this one ends the body
	body := []byte{0x02, 0x40, 0x01, 0x0b, 0x0b}
	r := NewOperatorReader(body)

	ev, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, OpBlock, ev.Op.Code)

	ev, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, OpNop, ev.Op.Code)

	ev, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, EventCodeOperator, ev.Kind)
	require.Equal(t, OpEnd, ev.Op.Code)

	ev, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, EventEndFunctionBody, ev.Kind)
}

func TestOperatorReader_BrTable(t *testing.T) {
	// br_table 0 1 2 (targets 0,1, default 2)
	body := []byte{0x0e, 0x02, 0x00, 0x01, 0x02}
	r := NewOperatorReader(body)
	ev, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, OpBrTable, ev.Op.Code)
	require.Equal(t, []uint32{0, 1}, ev.Op.Targets)
	require.Equal(t, uint32(2), ev.Op.Default)
}
