package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/nspcc-dev/near-go/pkg/core/transaction"
)

// Network is the entry point of a single chain: the RPC node and the
// contract called.
type Network struct {
	// RPCURL is the JSON-RPC endpoint (http or https).
	RPCURL string `yaml:"RPCURL"`
	// ContractID is the account the contract is deployed to.
	ContractID string `yaml:"ContractID"`
}

// Validate checks that both the endpoint and the contract are set and valid.
func (n Network) Validate() error {
	if n.RPCURL == "" {
		return errors.New("empty RPCURL")
	}
	u, err := url.Parse(n.RPCURL)
	if err != nil {
		return fmt.Errorf("invalid RPCURL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid RPCURL %q: http(s) URL expected", n.RPCURL)
	}
	if n.ContractID == "" {
		return errors.New("empty ContractID")
	}
	if err := transaction.ValidateAccountID(n.ContractID); err != nil {
		return fmt.Errorf("invalid ContractID: %w", err)
	}
	return nil
}
