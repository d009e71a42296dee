package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// ErrDestroyed is returned on attempt to sign with a destroyed key.
var ErrDestroyed = errors.New("private key is destroyed")

// compactSigMagicOffset is the recovery code offset of decred's compact
// signatures, the protocol expects plain recovery id (0 or 1) instead.
const compactSigMagicOffset = 27

// PrivateKey is an account secret key. It holds the secret material of a
// single curve and is meant to live for the duration of one signing
// operation: call Destroy once it's no longer needed.
type PrivateKey struct {
	typ KeyType
	ed  ed25519.PrivateKey
	k1  *secp256k1.PrivateKey
	pub *PublicKey
}

// NewPrivateKey creates a new random ed25519 private key.
func NewPrivateKey() (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return newED25519Key(priv), nil
}

// NewSecp256k1PrivateKey creates a new random secp256k1 private key.
func NewSecp256k1PrivateKey() (*PrivateKey, error) {
	k, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return newSecp256k1Key(k), nil
}

// NewPrivateKeyFromString parses the "<curve>:<base58>" form of the secret
// key. ed25519 keys can be given either as a 64-byte expanded key (seed and
// public key, the form used in credential files) or as a 32-byte seed.
// Errors returned match neterr.ErrInvalidKeyMaterial and never include the
// key itself.
func NewPrivateKeyFromString(s string) (*PrivateKey, error) {
	typ, data, err := parseKeyType(s)
	if err != nil {
		return nil, neterr.New(neterr.KindInvalidKeyMaterial, neterr.StepNone, err)
	}
	b, err := base58.Decode(data)
	if err != nil {
		return nil, neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepNone, "secret key is not valid base58")
	}
	defer clear(b)
	return NewPrivateKeyFromBytes(typ, b)
}

// NewPrivateKeyFromBytes creates a private key of the given type from raw
// secret bytes. b is copied, the caller is free to wipe it afterwards.
func NewPrivateKeyFromBytes(typ KeyType, b []byte) (*PrivateKey, error) {
	switch typ {
	case ED25519:
		switch len(b) {
		case ed25519.SeedSize:
			return newED25519Key(ed25519.NewKeyFromSeed(b)), nil
		case ed25519.PrivateKeySize:
			priv := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
			if !priv.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(b[ed25519.SeedSize:])) {
				clear(priv)
				return nil, neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepNone,
					"ed25519 secret key doesn't match its public part")
			}
			return newED25519Key(priv), nil
		default:
			return nil, neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepNone,
				"invalid ed25519 secret key length %d", len(b))
		}
	case SECP256K1:
		if len(b) != secp256k1.PrivKeyBytesLen {
			return nil, neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepNone,
				"invalid secp256k1 secret key length %d", len(b))
		}
		k := secp256k1.PrivKeyFromBytes(b)
		if k.Key.IsZero() {
			return nil, neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepNone, "zero secp256k1 secret key")
		}
		return newSecp256k1Key(k), nil
	default:
		return nil, neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepNone, "unknown key type %d", byte(typ))
	}
}

func newED25519Key(priv ed25519.PrivateKey) *PrivateKey {
	pub := priv.Public().(ed25519.PublicKey)
	return &PrivateKey{
		typ: ED25519,
		ed:  priv,
		pub: &PublicKey{Type: ED25519, Data: []byte(pub)},
	}
}

func newSecp256k1Key(k *secp256k1.PrivateKey) *PrivateKey {
	// Uncompressed form without the 0x04 prefix.
	pub := k.PubKey().SerializeUncompressed()[1:]
	return &PrivateKey{
		typ: SECP256K1,
		k1:  k,
		pub: &PublicKey{Type: SECP256K1, Data: pub},
	}
}

// Type returns the curve of the key.
func (p *PrivateKey) Type() KeyType {
	return p.typ
}

// PublicKey returns the public key corresponding to p. It remains valid
// after Destroy.
func (p *PrivateKey) PublicKey() *PublicKey {
	return p.pub
}

// SignHash signs the given digest. Signing a destroyed key returns
// ErrDestroyed.
func (p *PrivateKey) SignHash(digest util.CryptoHash) (*Signature, error) {
	switch {
	case p.typ == ED25519 && p.ed != nil:
		return &Signature{Type: ED25519, Data: ed25519.Sign(p.ed, digest[:])}, nil
	case p.typ == SECP256K1 && p.k1 != nil:
		compact := ecdsa.SignCompact(p.k1, digest[:], false)
		sig := make([]byte, SECP256K1SignatureSize)
		copy(sig, compact[1:])
		sig[64] = compact[0] - compactSigMagicOffset
		return &Signature{Type: SECP256K1, Data: sig}, nil
	default:
		return nil, ErrDestroyed
	}
}

// Destroy wipes the secret material. The key can't be used for signing
// afterwards, calling Destroy more than once is safe.
func (p *PrivateKey) Destroy() {
	if p.ed != nil {
		clear(p.ed)
		p.ed = nil
	}
	if p.k1 != nil {
		p.k1.Zero()
		p.k1 = nil
	}
}

// String returns the public key form, secret material is never printed.
func (p *PrivateKey) String() string {
	return fmt.Sprintf("private key for %s", p.pub)
}

// GoString implements the fmt.GoStringer interface, so that %#v doesn't
// dump the secret either.
func (p *PrivateKey) GoString() string {
	return p.String()
}
