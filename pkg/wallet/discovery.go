package wallet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nspcc-dev/near-go/pkg/neterr"
	"go.uber.org/zap"
)

// DefaultDir is the credentials directory under the user's home.
const DefaultDir = ".near-credentials"

// Networks are the directories scanned by Discover.
var Networks = []string{"mainnet", "testnet"}

// ErrNotFound is returned by Find when there is no matching credential.
var ErrNotFound = errors.New("credential not found")

// DefaultRoot returns the default credentials root, ~/.near-credentials.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", neterr.New(neterr.KindConfig, neterr.StepLoadConfig, err)
	}
	return filepath.Join(home, DefaultDir), nil
}

// Discover scans <root>/<network>/*.json for every known network and
// returns all valid credentials sorted by network and account. Malformed
// files are logged and skipped, a missing network directory is not an error,
// while a missing root is.
func Discover(root string, log *zap.Logger) ([]*Credential, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := os.Stat(root); err != nil {
		return nil, neterr.New(neterr.KindConfig, neterr.StepLoadConfig, fmt.Errorf("credentials directory: %w", err))
	}
	log.Debug("looking for credentials", zap.String("root", root))

	var res []*Credential
	for _, network := range Networks {
		creds, err := discoverNetwork(filepath.Join(root, network), network, log)
		if err != nil {
			return nil, err
		}
		res = append(res, creds...)
	}
	return res, nil
}

func discoverNetwork(dir string, network string, log *zap.Logger) ([]*Credential, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, neterr.New(neterr.KindConfig, neterr.StepLoadConfig, err)
	}
	var res []*Credential
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		c, err := ReadCredentialFile(path)
		if err != nil {
			log.Warn("skipping credential file", zap.String("path", path), zap.Error(err))
			continue
		}
		c.Network = network
		res = append(res, c)
	}
	slices.SortFunc(res, func(a, b *Credential) int {
		return strings.Compare(a.AccountID, b.AccountID)
	})
	return res, nil
}

// Find returns the credential of the account in the given network. An empty
// accountID matches the only credential of the network.
func Find(creds []*Credential, network string, accountID string) (*Credential, error) {
	var found []*Credential
	for _, c := range creds {
		if c.Network == network && (accountID == "" || c.AccountID == accountID) {
			found = append(found, c)
		}
	}
	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("%w: %q in %s", ErrNotFound, accountID, network)
	case len(found) > 1:
		return nil, fmt.Errorf("%d credentials in %s, account must be specified", len(found), network)
	}
	return found[0], nil
}
