/*
Package keys implements NEAR account key handling: parsing of the textual
"<curve>:<base58>" form, Borsh serialization of public keys and signatures,
signing and verification over ed25519 and secp256k1.
*/
package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/near-go/pkg/io"
)

// KeyType is a curve identifier as used by the protocol.
type KeyType byte

// Supported key types.
const (
	ED25519   KeyType = 0
	SECP256K1 KeyType = 1
)

// Key and signature sizes.
const (
	ED25519PublicKeySize   = ed25519.PublicKeySize
	SECP256K1PublicKeySize = 64
	ED25519SignatureSize   = ed25519.SignatureSize
	SECP256K1SignatureSize = 65
)

// String implements the fmt.Stringer interface.
func (t KeyType) String() string {
	switch t {
	case ED25519:
		return "ed25519"
	case SECP256K1:
		return "secp256k1"
	default:
		return fmt.Sprintf("keytype(%d)", byte(t))
	}
}

func (t KeyType) publicKeySize() (int, error) {
	switch t {
	case ED25519:
		return ED25519PublicKeySize, nil
	case SECP256K1:
		return SECP256K1PublicKeySize, nil
	default:
		return 0, fmt.Errorf("unknown key type %d", byte(t))
	}
}

func (t KeyType) signatureSize() (int, error) {
	switch t {
	case ED25519:
		return ED25519SignatureSize, nil
	case SECP256K1:
		return SECP256K1SignatureSize, nil
	default:
		return 0, fmt.Errorf("unknown key type %d", byte(t))
	}
}

// parseKeyType splits "curve:data" and returns the curve and data parts. A
// string without a curve prefix is treated as ed25519.
func parseKeyType(s string) (KeyType, string, error) {
	curve, data, found := strings.Cut(s, ":")
	if !found {
		return ED25519, s, nil
	}
	switch curve {
	case "ed25519":
		return ED25519, data, nil
	case "secp256k1":
		return SECP256K1, data, nil
	default:
		return 0, "", fmt.Errorf("unknown key type %q", curve)
	}
}

// PublicKey is a protocol public key: curve type and raw key bytes (32 bytes
// for ed25519, 64 bytes of uncompressed X‖Y for secp256k1).
type PublicKey struct {
	Type KeyType
	Data []byte
}

// NewPublicKeyFromString parses "ed25519:<base58>" or "secp256k1:<base58>".
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	typ, data, err := parseKeyType(s)
	if err != nil {
		return nil, err
	}
	b, err := base58.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 public key: %w", err)
	}
	return NewPublicKeyFromBytes(typ, b)
}

// NewPublicKeyFromBytes creates a PublicKey of the given type checking the
// key size.
func NewPublicKeyFromBytes(typ KeyType, b []byte) (*PublicKey, error) {
	size, err := typ.publicKeySize()
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, fmt.Errorf("invalid %s public key length: expected %d got %d", typ, size, len(b))
	}
	if typ == SECP256K1 {
		if _, err := secp256k1.ParsePubKey(append([]byte{0x04}, b...)); err != nil {
			return nil, fmt.Errorf("invalid secp256k1 public key: %w", err)
		}
	}
	return &PublicKey{Type: typ, Data: bytes.Clone(b)}, nil
}

// String returns the textual "<curve>:<base58>" form.
func (p *PublicKey) String() string {
	return p.Type.String() + ":" + base58.Encode(p.Data)
}

// Equal returns true in case public keys are equal.
func (p *PublicKey) Equal(key *PublicKey) bool {
	return key != nil && p.Type == key.Type && bytes.Equal(p.Data, key.Data)
}

// EncodeBinary implements the io.Encodable interface.
func (p *PublicKey) EncodeBinary(w *io.BinWriter) {
	if w.Err != nil {
		return
	}
	size, err := p.Type.publicKeySize()
	if err == nil && len(p.Data) != size {
		err = fmt.Errorf("invalid %s public key length %d", p.Type, len(p.Data))
	}
	if err != nil {
		w.Err = err
		return
	}
	w.WriteB(byte(p.Type))
	w.WriteBytes(p.Data)
}

// DecodeBinary implements the io.Decodable interface.
func (p *PublicKey) DecodeBinary(r *io.BinReader) {
	p.Type = KeyType(r.ReadB())
	if r.Err != nil {
		return
	}
	size, err := p.Type.publicKeySize()
	if err != nil {
		r.Err = err
		return
	}
	p.Data = make([]byte, size)
	r.ReadBytes(p.Data)
}

// MarshalJSON implements the json.Marshaler interface.
func (p *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	pk, err := NewPublicKeyFromString(s)
	if err != nil {
		return err
	}
	*p = *pk
	return nil
}

// Verify returns true if sig is a valid signature of hash made by the private
// key corresponding to p.
func (p *PublicKey) Verify(sig *Signature, hash []byte) bool {
	if sig == nil || sig.Type != p.Type {
		return false
	}
	switch p.Type {
	case ED25519:
		if len(p.Data) != ED25519PublicKeySize || len(sig.Data) != ED25519SignatureSize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(p.Data), hash, sig.Data)
	case SECP256K1:
		pub, err := secp256k1.ParsePubKey(append([]byte{0x04}, p.Data...))
		if err != nil || len(sig.Data) != SECP256K1SignatureSize {
			return false
		}
		var r, s secp256k1.ModNScalar
		if r.SetByteSlice(sig.Data[:32]) || s.SetByteSlice(sig.Data[32:64]) {
			return false
		}
		return ecdsa.NewSignature(&r, &s).Verify(hash, pub)
	default:
		return false
	}
}

// Signature is a protocol signature: curve type and raw signature bytes
// (64 bytes for ed25519, 65 bytes R‖S‖V for secp256k1).
type Signature struct {
	Type KeyType
	Data []byte
}

// String returns the textual "<curve>:<base58>" form.
func (s *Signature) String() string {
	return s.Type.String() + ":" + base58.Encode(s.Data)
}

// EncodeBinary implements the io.Encodable interface.
func (s *Signature) EncodeBinary(w *io.BinWriter) {
	if w.Err != nil {
		return
	}
	size, err := s.Type.signatureSize()
	if err == nil && len(s.Data) != size {
		err = fmt.Errorf("invalid %s signature length %d", s.Type, len(s.Data))
	}
	if err != nil {
		w.Err = err
		return
	}
	w.WriteB(byte(s.Type))
	w.WriteBytes(s.Data)
}

// DecodeBinary implements the io.Decodable interface.
func (s *Signature) DecodeBinary(r *io.BinReader) {
	s.Type = KeyType(r.ReadB())
	if r.Err != nil {
		return
	}
	size, err := s.Type.signatureSize()
	if err != nil {
		r.Err = err
		return
	}
	s.Data = make([]byte, size)
	r.ReadBytes(s.Data)
}
