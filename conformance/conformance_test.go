//go:build amd64 && cgo

package conformance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// addModule is `(module (func (export "add") (param i32 i32) (result i32)
// local.get 0 local.get 1 i32.add))`.
var addModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
}

// sumToModule is `(module (func (export "sum_to") (param i32) (result i32)
// (local i32 i32) ...))`, summing 1..n via a loop with a br_if-guarded exit
// and a br-driven back edge -- the shape the IL builder's incomplete-SSA
// construction has to get right across both a forward branch out of a loop
// and the loop's own back edge.
var sumToModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x06, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x0a, 0x01, 0x06, 0x73, 0x75, 0x6d, 0x5f, 0x74, 0x6f, 0x00, 0x00,
	0x0a, 0x2b, 0x01, 0x29, 0x01, 0x02, 0x7f,
	0x20, 0x00,
	0x21, 0x01,
	0x41, 0x00,
	0x21, 0x02,
	0x02, 0x40,
	0x03, 0x40,
	0x20, 0x01,
	0x45,
	0x0d, 0x01,
	0x20, 0x02,
	0x20, 0x01,
	0x6a,
	0x21, 0x02,
	0x20, 0x01,
	0x41, 0x01,
	0x6b,
	0x21, 0x01,
	0x0c, 0x00,
	0x0b,
	0x0b,
	0x20, 0x02,
	0x0b,
}

func TestAdd_MatchesOracle(t *testing.T) {
	for _, tc := range [][2]uint64{{1, 2}, {0, 0}, {40, 2}, {0xffffffff, 1}} {
		got, err := EvaluateIL(addModule, "add", tc[:])
		require.NoError(t, err)
		want, err := EvaluateOracle(addModule, "add", tc[:])
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestSumTo_MatchesOracle(t *testing.T) {
	for _, n := range []uint64{0, 1, 5, 10} {
		got, err := EvaluateIL(sumToModule, "sum_to", []uint64{n})
		require.NoError(t, err)
		want, err := EvaluateOracle(sumToModule, "sum_to", []uint64{n})
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
