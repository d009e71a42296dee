package flags

import (
	"flag"

	"github.com/nspcc-dev/near-go/pkg/encoding/yocto"
	"github.com/urfave/cli"
)

// Amount is a wrapper for a NEAR amount with flag.Value methods.
type Amount struct {
	IsSet bool
	Value yocto.Amount
}

// AmountFlag is a flag accepting decimal NEAR amounts ("0.5").
type AmountFlag struct {
	Name  string
	Usage string
	Value Amount
}

var (
	_ flag.Value = (*Amount)(nil)
	_ cli.Flag   = AmountFlag{}
)

// String implements the fmt.Stringer interface.
func (a Amount) String() string {
	return a.Value.String()
}

// Set implements the flag.Value interface.
func (a *Amount) Set(s string) error {
	v, err := yocto.FromString(s)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	a.IsSet = true
	a.Value = v
	return nil
}

// String returns a readable representation of this value
// (for usage defaults).
func (f AmountFlag) String() string {
	return flagString(f.Name, f.Usage)
}

// GetName returns the name of the flag.
func (f AmountFlag) GetName() string {
	return f.Name
}

// Apply populates the flag given the flag set and environment.
// Ignores errors.
func (f AmountFlag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

// AmountFromContext returns the parsed amount for the given flag name and
// whether it was set.
func AmountFromContext(ctx *cli.Context, name string) (yocto.Amount, bool) {
	a, ok := ctx.Generic(name).(*Amount)
	if !ok {
		return yocto.Amount{}, false
	}
	return a.Value, a.IsSet
}
