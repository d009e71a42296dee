package util

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// CryptoHashSize is the size of CryptoHash in bytes.
const CryptoHashSize = 32

// CryptoHash is a 32 byte long SHA-256 digest used for block and transaction
// hashes. Its textual form is base58.
type CryptoHash [CryptoHashSize]uint8

// CryptoHashDecodeBytes attempts to decode the given bytes into a CryptoHash.
func CryptoHashDecodeBytes(b []byte) (u CryptoHash, err error) {
	if len(b) != CryptoHashSize {
		return u, fmt.Errorf("expected []byte of size %d got %d", CryptoHashSize, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// CryptoHashDecodeString attempts to decode the given base58 string into a
// CryptoHash.
func CryptoHashDecodeString(s string) (u CryptoHash, err error) {
	b, err := base58.Decode(s)
	if err != nil {
		return u, fmt.Errorf("invalid base58 hash %q: %w", s, err)
	}
	return CryptoHashDecodeBytes(b)
}

// Bytes returns a byte slice representation of u.
func (u CryptoHash) Bytes() []byte {
	b := make([]byte, CryptoHashSize)
	copy(b, u[:])
	return b
}

// Equals returns true if both CryptoHash values are the same.
func (u CryptoHash) Equals(other CryptoHash) bool {
	return u == other
}

// IsZero returns true for an all-zero hash.
func (u CryptoHash) IsZero() bool {
	return u == CryptoHash{}
}

// String implements the stringer interface.
func (u CryptoHash) String() string {
	return base58.Encode(u[:])
}

// UnmarshalJSON implements the json unmarshaller interface.
func (u *CryptoHash) UnmarshalJSON(data []byte) (err error) {
	var js string
	if err = json.Unmarshal(data, &js); err != nil {
		return err
	}
	*u, err = CryptoHashDecodeString(js)
	return err
}

// MarshalJSON implements the json marshaller interface.
func (u CryptoHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}
