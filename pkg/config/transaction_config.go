package config

import (
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/encoding/yocto"
)

// DefaultGas is the gas attached to function calls unless configured.
const DefaultGas = transaction.DefaultGas

// TxDefaults contains the parameters attached to every function call
// transaction.
type TxDefaults struct {
	// Gas is the amount of gas attached, DefaultGas if zero.
	Gas uint64 `yaml:"Gas"`
	// Deposit is the amount of NEAR attached (like "0.5"), zero by default.
	Deposit yocto.Amount `yaml:"Deposit"`
}

// Validate checks gas against the protocol limit.
func (t TxDefaults) Validate() error {
	if t.Gas > transaction.MaxGas {
		return fmt.Errorf("gas %d exceeds the limit of %d", t.Gas, transaction.MaxGas)
	}
	return nil
}

// GetGas returns the configured gas or DefaultGas.
func (t TxDefaults) GetGas() uint64 {
	if t.Gas == 0 {
		return DefaultGas
	}
	return t.Gas
}
