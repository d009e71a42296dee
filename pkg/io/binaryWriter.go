/*
Package io implements Borsh binary serialization primitives. Borsh is the
canonical encoding used by NEAR: integers are fixed-width little-endian,
dynamic strings and byte vectors carry a u32 length prefix and struct fields
are written in schema order, so the same value always yields the same bytes.
*/
package io

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/holiman/uint256"
)

// ErrU128Overflow is returned when a value doesn't fit into 128 bits.
var ErrU128Overflow = errors.New("value overflows u128")

// BinWriter is a convenient wrapper around an io.Writer and err object.
// Used to simplify error handling when writing into an io.Writer
// from a struct with many fields.
type BinWriter struct {
	w   io.Writer
	Err error
	uv  [16]byte
}

// NewBinWriterFromIO makes a BinWriter from io.Writer.
func NewBinWriterFromIO(iow io.Writer) *BinWriter {
	return &BinWriter{w: iow}
}

// WriteB writes a byte into the underlying io.Writer.
func (w *BinWriter) WriteB(u8 byte) {
	w.uv[0] = u8
	w.WriteBytes(w.uv[:1])
}

// WriteU32LE writes a uint32 value into the underlying io.Writer in
// little-endian format.
func (w *BinWriter) WriteU32LE(u32 uint32) {
	binary.LittleEndian.PutUint32(w.uv[:4], u32)
	w.WriteBytes(w.uv[:4])
}

// WriteU64LE writes a uint64 value into the underlying io.Writer in
// little-endian format.
func (w *BinWriter) WriteU64LE(u64 uint64) {
	binary.LittleEndian.PutUint64(w.uv[:8], u64)
	w.WriteBytes(w.uv[:8])
}

// WriteU128LE writes a 128-bit unsigned value into the underlying io.Writer
// in little-endian format. A nil value is written as zero, values wider than
// 128 bits set ErrU128Overflow.
func (w *BinWriter) WriteU128LE(u *uint256.Int) {
	if w.Err != nil {
		return
	}
	var lo, hi uint64
	if u != nil {
		if u[2] != 0 || u[3] != 0 {
			w.Err = ErrU128Overflow
			return
		}
		lo, hi = u[0], u[1]
	}
	binary.LittleEndian.PutUint64(w.uv[:8], lo)
	binary.LittleEndian.PutUint64(w.uv[8:16], hi)
	w.WriteBytes(w.uv[:16])
}

// WriteArray writes a slice arr into w prefixed with its u32 length.
func WriteArray[Slice ~[]E, E Encodable](w *BinWriter, arr Slice) {
	w.writeLen(len(arr))
	for i := range arr {
		if w.Err != nil {
			return
		}
		arr[i].EncodeBinary(w)
	}
}

// WriteBytes writes a fixed-size byte slice into the underlying io.Writer
// without prefix.
func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

// WriteVarBytes writes a variable length byte array into the underlying
// io.Writer prefixed with its u32 length.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.writeLen(len(b))
	w.WriteBytes(b)
}

// WriteString writes a variable length string into the underlying io.Writer
// prefixed with its u32 length.
func (w *BinWriter) WriteString(s string) {
	w.writeLen(len(s))
	if w.Err != nil {
		return
	}
	_, w.Err = io.WriteString(w.w, s)
}

func (w *BinWriter) writeLen(n int) {
	if w.Err != nil {
		return
	}
	if uint64(n) > math.MaxUint32 {
		w.Err = fmt.Errorf("length %d overflows u32", n)
		return
	}
	w.WriteU32LE(uint32(n))
}
