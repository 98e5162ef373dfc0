package leb128

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeInt32(t *testing.T) {
	for _, c := range []struct {
		encoded  []byte
		expected int32
	}{
		{encoded: []byte{0x80, 0x80, 0x80, 0xb1, 0x7f}, expected: -165675008},
		{encoded: []byte{0x9b, 0xf1, 0x59}, expected: -624485},
		{encoded: []byte{0x80, 0x81, 0x7f}, expected: -16256},
		{encoded: []byte{0x7c}, expected: -4},
		{encoded: []byte{0x7f}, expected: -1},
		{encoded: []byte{0x00}, expected: 0},
		{encoded: []byte{0x01}, expected: 1},
		{encoded: []byte{0x04}, expected: 4},
		{encoded: []byte{0x80, 0xff, 0x0}, expected: 16256},
		{encoded: []byte{0xe5, 0x8e, 0x26}, expected: 624485},
		{encoded: []byte{0x80, 0x80, 0x80, 0xcf, 0x0}, expected: 165675008},
		{encoded: []byte{0xff, 0xff, 0xff, 0xff, 0x7}, expected: math.MaxInt32},
	} {
		got, err := DecodeInt32(bytes.NewReader(c.encoded))
		require.NoError(t, err)
		require.Equal(t, c.expected, got)
	}
}

func TestDecodeInt64(t *testing.T) {
	for _, c := range []struct {
		encoded  []byte
		expected int64
	}{
		{encoded: []byte{0x81, 0x80, 0x80, 0x80, 0x78}, expected: -math.MaxInt32},
		{encoded: []byte{0x7c}, expected: -4},
		{encoded: []byte{0xe5, 0x8e, 0x26}, expected: 624485},
		{encoded: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x0}, expected: math.MaxInt64},
	} {
		got, err := DecodeInt64(bytes.NewReader(c.encoded))
		require.NoError(t, err)
		require.Equal(t, c.expected, got)
	}
}

func TestDecodeUint32(t *testing.T) {
	for _, c := range []struct {
		encoded  []byte
		expected uint32
	}{
		{encoded: []byte{0x00}, expected: 0},
		{encoded: []byte{0x04}, expected: 4},
		{encoded: []byte{0x80, 0x7f}, expected: 16256},
		{encoded: []byte{0xe5, 0x8e, 0x26}, expected: 624485},
		{encoded: []byte{0x80, 0x80, 0x80, 0x4f}, expected: 165675008},
		{encoded: []byte{0xff, 0xff, 0xff, 0xff, 0xf}, expected: math.MaxUint32},
	} {
		got, err := DecodeUint32(bytes.NewReader(c.encoded))
		require.NoError(t, err)
		require.Equal(t, c.expected, got)
	}
}

func TestDecodeUint32_Overflow(t *testing.T) {
	// 5 bytes with the continuation bit set, then a non-zero sixth byte beyond
	// 32 bits worth of payload -- must be rejected rather than silently truncated.
	_, err := DecodeUint32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01}))
	require.Error(t, err)
}
