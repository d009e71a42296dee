package flags

import (
	"flag"

	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/urfave/cli"
)

// AccountID is a wrapper for an account ID with flag.Value methods, the ID
// is validated when set.
type AccountID struct {
	Value string
}

// AccountFlag is a flag with type AccountID.
type AccountFlag struct {
	Name     string
	Usage    string
	Required bool
	Value    AccountID
}

var (
	_ flag.Value = (*AccountID)(nil)
	_ cli.Flag   = AccountFlag{}
)

// String implements the fmt.Stringer interface.
func (a AccountID) String() string {
	return a.Value
}

// Set implements the flag.Value interface.
func (a *AccountID) Set(s string) error {
	if err := transaction.ValidateAccountID(s); err != nil {
		return cli.NewExitError(err, 1)
	}
	a.Value = s
	return nil
}

// String returns a readable representation of this value
// (for usage defaults).
func (f AccountFlag) String() string {
	return flagString(f.Name, f.Usage)
}

// GetName returns the name of the flag.
func (f AccountFlag) GetName() string {
	return f.Name
}

// IsRequired implements the cli.RequiredFlag interface.
func (f AccountFlag) IsRequired() bool {
	return f.Required
}

// Apply populates the flag given the flag set and environment.
// Ignores errors.
func (f AccountFlag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

// AccountFromContext returns the account ID for the given flag name, it's
// empty if the flag is not set.
func AccountFromContext(ctx *cli.Context, name string) string {
	a, ok := ctx.Generic(name).(*AccountID)
	if !ok {
		return ""
	}
	return a.Value
}
