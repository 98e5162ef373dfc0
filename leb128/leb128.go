// Package leb128 implements the variable-length integer encodings used
// throughout the Wasm binary format: unsigned LEB128 for indices and
// counts, signed LEB128 for constants.
package leb128

import (
	"errors"
	"io"
)

var errOverflow = errors.New("leb128: varint overflows target width")

// DecodeUint32 reads an unsigned LEB128 value of at most 32 bits from r.
func DecodeUint32(r io.ByteReader) (uint32, error) {
	v, err := decodeUint(r, 32)
	return uint32(v), err
}

// DecodeUint64 reads an unsigned LEB128 value of at most 64 bits from r.
func DecodeUint64(r io.ByteReader) (uint64, error) {
	return decodeUint(r, 64)
}

func decodeUint(r io.ByteReader, width int) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift >= uint(width) && b&0x7f != 0 {
			return 0, errOverflow
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// DecodeInt32 reads a signed LEB128 value of at most 32 bits from r.
func DecodeInt32(r io.ByteReader) (int32, error) {
	v, err := decodeInt(r, 32)
	return int32(v), err
}

// DecodeInt64 reads a signed LEB128 value of at most 64 bits from r.
func DecodeInt64(r io.ByteReader) (int64, error) {
	return decodeInt(r, 64)
}

func decodeInt(r io.ByteReader, width int) (int64, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	// Sign-extend if the sign bit of the last read byte's low-order
	// significant bit is set and there are remaining bits in the target width.
	if shift < uint(width) && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, nil
}
