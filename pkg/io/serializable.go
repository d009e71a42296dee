package io

// Encodable is anything that can be written in Borsh form.
type Encodable interface {
	EncodeBinary(*BinWriter)
}

// Decodable is anything that can be read from its Borsh form.
type Decodable interface {
	DecodeBinary(*BinReader)
}

// Serializable defines the binary encoding/decoding interface.
type Serializable interface {
	Encodable
	Decodable
}

// ToBytes serializes e into a fresh byte slice.
func ToBytes(e Encodable) ([]byte, error) {
	w := NewBufBinWriter()
	e.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// FromBytes deserializes d from b, all of b must be consumed.
func FromBytes(b []byte, d Decodable) error {
	r := NewBinReaderFromBuf(b)
	d.DecodeBinary(r)
	if r.Err != nil {
		return r.Err
	}
	return r.ExpectEOF()
}
