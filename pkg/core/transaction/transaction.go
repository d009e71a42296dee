/*
Package transaction implements the transaction record that is signed and
submitted to the network along with its canonical Borsh encoding.
*/
package transaction

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/io"
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// Transaction is an unsigned transaction. Its Borsh encoding is the
// pre-image of the hash that gets signed.
type Transaction struct {
	// SignerID is the account that signs and pays for the transaction.
	SignerID string
	// PublicKey is the access key of SignerID used to sign.
	PublicKey *keys.PublicKey
	// Nonce must be greater than the current access key nonce.
	Nonce uint64
	// ReceiverID is the account (contract) the actions are applied to.
	ReceiverID string
	// BlockHash is a recent block hash limiting the transaction lifetime.
	BlockHash util.CryptoHash
	Actions   []Action
}

// New creates a transaction with a single function call action.
func New(signer string, pub *keys.PublicKey, nonce uint64, receiver string, blockHash util.CryptoHash, call Action) *Transaction {
	return &Transaction{
		SignerID:   signer,
		PublicKey:  pub,
		Nonce:      nonce,
		ReceiverID: receiver,
		BlockHash:  blockHash,
		Actions:    []Action{call},
	}
}

// Validate checks the transaction for consistency, it's performed by Bytes
// and Hash before encoding.
func (t *Transaction) Validate() error {
	if err := ValidateAccountID(t.SignerID); err != nil {
		return fmt.Errorf("signer: %w", err)
	}
	if err := ValidateAccountID(t.ReceiverID); err != nil {
		return fmt.Errorf("receiver: %w", err)
	}
	if t.PublicKey == nil {
		return errors.New("no public key")
	}
	if len(t.Actions) == 0 {
		return errors.New("no actions")
	}
	for i, a := range t.Actions {
		if a.Type != FunctionCallT || a.FunctionCall == nil {
			return fmt.Errorf("action #%d: %w: %d", i, ErrUnsupportedAction, a.Type)
		}
		if err := a.FunctionCall.Validate(); err != nil {
			return fmt.Errorf("action #%d: %w", i, err)
		}
	}
	return nil
}

// EncodeBinary implements the io.Encodable interface. Field order is fixed
// by the protocol schema.
func (t *Transaction) EncodeBinary(w *io.BinWriter) {
	if w.Err != nil {
		return
	}
	if t.PublicKey == nil {
		w.Err = errors.New("no public key")
		return
	}
	w.WriteString(t.SignerID)
	t.PublicKey.EncodeBinary(w)
	w.WriteU64LE(t.Nonce)
	w.WriteString(t.ReceiverID)
	w.WriteBytes(t.BlockHash[:])
	io.WriteArray(w, t.Actions)
}

// DecodeBinary implements the io.Decodable interface.
func (t *Transaction) DecodeBinary(r *io.BinReader) {
	t.SignerID = r.ReadString()
	t.PublicKey = new(keys.PublicKey)
	t.PublicKey.DecodeBinary(r)
	t.Nonce = r.ReadU64LE()
	t.ReceiverID = r.ReadString()
	r.ReadBytes(t.BlockHash[:])
	t.Actions = io.ReadArray(r, func(r *io.BinReader) Action {
		var a Action
		a.DecodeBinary(r)
		return a
	})
}

// Bytes validates the transaction and returns its canonical encoding.
// Failures match neterr.ErrEncoding.
func (t *Transaction) Bytes() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, neterr.New(neterr.KindEncoding, neterr.StepNone, err)
	}
	b, err := io.ToBytes(t)
	if err != nil {
		return nil, neterr.New(neterr.KindEncoding, neterr.StepNone, err)
	}
	return b, nil
}

// Hash returns the transaction hash: SHA-256 of its canonical encoding.
func (t *Transaction) Hash() (util.CryptoHash, error) {
	b, err := t.Bytes()
	if err != nil {
		return util.CryptoHash{}, err
	}
	return hash.Sha256(b), nil
}

// NewTransactionFromBytes decodes an unsigned transaction.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	t := new(Transaction)
	if err := io.FromBytes(b, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Signed is a transaction along with the signature of its hash.
type Signed struct {
	Transaction *Transaction
	Signature   *keys.Signature

	hash util.CryptoHash
}

// Sign hashes the transaction and signs it with the given key. The key
// must correspond to t.PublicKey.
func Sign(t *Transaction, k *keys.PrivateKey) (*Signed, error) {
	if !k.PublicKey().Equal(t.PublicKey) {
		return nil, neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepNone,
			"signing key %s doesn't match transaction key %s", k.PublicKey(), t.PublicKey)
	}
	h, err := t.Hash()
	if err != nil {
		return nil, err
	}
	sig, err := k.SignHash(h)
	if err != nil {
		return nil, neterr.New(neterr.KindInvalidKeyMaterial, neterr.StepNone, err)
	}
	return &Signed{Transaction: t, Signature: sig, hash: h}, nil
}

// Hash returns the hash of the signed transaction (which is the hash of the
// unsigned part).
func (s *Signed) Hash() util.CryptoHash {
	return s.hash
}

// Verify checks the signature against the transaction hash and public key.
func (s *Signed) Verify() bool {
	h, err := s.Transaction.Hash()
	if err != nil {
		return false
	}
	return s.Transaction.PublicKey.Verify(s.Signature, h[:])
}

// EncodeBinary implements the io.Encodable interface.
func (s *Signed) EncodeBinary(w *io.BinWriter) {
	if w.Err != nil {
		return
	}
	if s.Transaction == nil || s.Signature == nil {
		w.Err = errors.New("incomplete signed transaction")
		return
	}
	s.Transaction.EncodeBinary(w)
	s.Signature.EncodeBinary(w)
}

// DecodeBinary implements the io.Decodable interface.
func (s *Signed) DecodeBinary(r *io.BinReader) {
	s.Transaction = new(Transaction)
	s.Transaction.DecodeBinary(r)
	s.Signature = new(keys.Signature)
	s.Signature.DecodeBinary(r)
	if r.Err == nil {
		b, err := io.ToBytes(s.Transaction)
		if err != nil {
			r.Err = err
			return
		}
		s.hash = hash.Sha256(b)
	}
}

// Bytes returns the canonical encoding of the signed transaction.
func (s *Signed) Bytes() ([]byte, error) {
	b, err := io.ToBytes(s)
	if err != nil {
		return nil, neterr.New(neterr.KindEncoding, neterr.StepNone, err)
	}
	return b, nil
}

// Base64 returns the base64 form of Bytes as expected by the RPC server.
func (s *Signed) Base64() (string, error) {
	b, err := s.Bytes()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// NewSignedFromBytes decodes a signed transaction.
func NewSignedFromBytes(b []byte) (*Signed, error) {
	s := new(Signed)
	if err := io.FromBytes(b, s); err != nil {
		return nil, err
	}
	return s, nil
}
