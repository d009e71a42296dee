/*
Package wallet reads account credentials stored the way NEAR command line
tools store them: one JSON file per account under
<root>/<network>/<account>.json, where the default root is
~/.near-credentials.
*/
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/neterr"
)

// Credential is a single account credential.
type Credential struct {
	AccountID string
	// PublicKey is the textual form of the access key ("ed25519:...").
	PublicKey string
	// Network is the name of the directory the file was found in, it's
	// empty for files read with ReadCredentialFile.
	Network string
	// Path is the file the credential was read from.
	Path string

	privateKey string
}

// credentialFile is the on-disk format.
type credentialFile struct {
	AccountID  string `json:"account_id,omitempty"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// NewCredential creates a Credential from the account ID and the textual
// private key. The public key is derived from the private one.
func NewCredential(accountID string, privateKey string) (*Credential, error) {
	c := &Credential{AccountID: accountID, privateKey: privateKey}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadCredentialFile reads the credential file. The account ID is taken from
// the file if it has one, from the file name otherwise. Errors returned
// match neterr.ErrInvalidKeyMaterial for bad key data and neterr.ErrConfig
// for unreadable files.
func ReadCredentialFile(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, neterr.New(neterr.KindConfig, neterr.StepLoadConfig, err)
	}
	var f credentialFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepLoadConfig, "%s: %w", path, err)
	}
	c := &Credential{
		AccountID:  f.AccountID,
		PublicKey:  f.PublicKey,
		Path:       path,
		privateKey: f.PrivateKey,
	}
	if c.AccountID == "" {
		c.AccountID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := c.validate(); err != nil {
		return nil, neterr.Newf(neterr.KindOf(err), neterr.StepLoadConfig, "%s: %w", path, errors.Unwrap(err))
	}
	return c, nil
}

// validate checks the account ID and the private key, it also derives the
// public key if it's not set or checks that it matches the private one.
func (c *Credential) validate() error {
	if err := transaction.ValidateAccountID(c.AccountID); err != nil {
		return neterr.New(neterr.KindInvalidInput, neterr.StepNone, err)
	}
	if c.privateKey == "" {
		return neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepNone, "no private key for %s", c.AccountID)
	}
	k, err := c.PrivateKey()
	if err != nil {
		return err
	}
	defer k.Destroy()
	if c.PublicKey == "" {
		c.PublicKey = k.PublicKey().String()
		return nil
	}
	pub, err := keys.NewPublicKeyFromString(c.PublicKey)
	if err != nil {
		return neterr.New(neterr.KindInvalidKeyMaterial, neterr.StepNone, err)
	}
	if !pub.Equal(k.PublicKey()) {
		return neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepNone, "public key %s doesn't match the private key of %s", c.PublicKey, c.AccountID)
	}
	return nil
}

// PrivateKey parses the private key, every call returns a new instance that
// should be destroyed by the caller after use.
func (c *Credential) PrivateKey() (*keys.PrivateKey, error) {
	return keys.NewPrivateKeyFromString(c.privateKey)
}

// String implements the fmt.Stringer interface, it never includes the
// private key.
func (c *Credential) String() string {
	if c.Network == "" {
		return fmt.Sprintf("%s (%s)", c.AccountID, c.PublicKey)
	}
	return fmt.Sprintf("%s@%s (%s)", c.AccountID, c.Network, c.PublicKey)
}

// GoString implements the fmt.GoStringer interface.
func (c *Credential) GoString() string {
	return c.String()
}

// MarshalJSON implements the json.Marshaler interface, the private key is
// omitted.
func (c *Credential) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AccountID string `json:"account_id"`
		PublicKey string `json:"public_key"`
		Network   string `json:"network,omitempty"`
		Path      string `json:"path,omitempty"`
	}{c.AccountID, c.PublicKey, c.Network, c.Path})
}
