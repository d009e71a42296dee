package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/holiman/uint256"
)

// MaxArraySize is a maximum size of an array or byte vector which can be
// decoded.
const MaxArraySize = 0x1000000

// ErrTrailingData is returned by ExpectEOF when there are unread bytes left.
var ErrTrailingData = errors.New("trailing data after the encoded value")

// BinReader is a convenient wrapper around a io.Reader and err object.
// Used to simplify error handling when reading into a struct with many fields.
type BinReader struct {
	r   io.Reader
	uv  [16]byte
	Err error
}

// NewBinReaderFromIO makes a BinReader from io.Reader.
func NewBinReaderFromIO(ior io.Reader) *BinReader {
	return &BinReader{r: ior}
}

// NewBinReaderFromBuf makes a BinReader from byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return NewBinReaderFromIO(bytes.NewReader(b))
}

// ReadB reads a byte from the underlying io.Reader. On read failures it
// returns zero.
func (r *BinReader) ReadB() byte {
	r.ReadBytes(r.uv[:1])
	if r.Err != nil {
		return 0
	}
	return r.uv[0]
}

// ReadU32LE reads a little-endian encoded uint32 value from the underlying
// io.Reader. On read failures it returns zero.
func (r *BinReader) ReadU32LE() uint32 {
	r.ReadBytes(r.uv[:4])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.uv[:4])
}

// ReadU64LE reads a little-endian encoded uint64 value from the underlying
// io.Reader. On read failures it returns zero.
func (r *BinReader) ReadU64LE() uint64 {
	r.ReadBytes(r.uv[:8])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(r.uv[:8])
}

// ReadU128LE reads a little-endian encoded 128-bit unsigned value.
func (r *BinReader) ReadU128LE() *uint256.Int {
	r.ReadBytes(r.uv[:16])
	if r.Err != nil {
		return nil
	}
	return &uint256.Int{
		binary.LittleEndian.Uint64(r.uv[:8]),
		binary.LittleEndian.Uint64(r.uv[8:16]),
		0, 0,
	}
}

// ReadArray reads a u32-prefixed array using the element decoder f.
func ReadArray[E any](r *BinReader, f func(*BinReader) E) []E {
	n := r.readLen()
	if r.Err != nil {
		return nil
	}
	arr := make([]E, 0, n)
	for i := 0; i < n; i++ {
		e := f(r)
		if r.Err != nil {
			return nil
		}
		arr = append(arr, e)
	}
	return arr
}

// ReadBytes copies fixed-size buffer from the reader to provided slice.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil {
		return
	}
	_, r.Err = io.ReadFull(r.r, buf)
}

// ReadVarBytes reads a u32-prefixed byte vector.
func (r *BinReader) ReadVarBytes() []byte {
	n := r.readLen()
	if r.Err != nil {
		return nil
	}
	b := make([]byte, n)
	r.ReadBytes(b)
	if r.Err != nil {
		return nil
	}
	return b
}

// ReadString reads a u32-prefixed string.
func (r *BinReader) ReadString() string {
	b := r.ReadVarBytes()
	return string(b)
}

// ExpectEOF sets Err to ErrTrailingData if anything is left to be read.
func (r *BinReader) ExpectEOF() error {
	if r.Err != nil {
		return r.Err
	}
	var b [1]byte
	if n, _ := r.r.Read(b[:]); n != 0 {
		r.Err = ErrTrailingData
	}
	return r.Err
}

func (r *BinReader) readLen() int {
	n := r.ReadU32LE()
	if r.Err != nil {
		return 0
	}
	if n > MaxArraySize {
		r.Err = fmt.Errorf("array is too big (%d)", n)
		return 0
	}
	return int(n)
}
