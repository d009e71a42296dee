/*
Package yocto provides exact conversions between NEAR token amounts written as
decimal strings ("0.5") and their integer representation in yoctoNEAR (10^-24
NEAR) used on the wire.
*/
package yocto

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places of NEAR amounts.
const Precision = 24

// MaxBits is the width of on-chain balances.
const MaxBits = 128

var (
	// ErrNegative is returned for negative amounts.
	ErrNegative = errors.New("negative amount")
	// ErrPrecision is returned for amounts finer than one yoctoNEAR.
	ErrPrecision = errors.New("amount is more precise than 1 yoctoNEAR")
	// ErrOverflow is returned for amounts that don't fit into u128.
	ErrOverflow = errors.New("amount doesn't fit into 128 bits")
)

// Amount is a token amount in yoctoNEAR. Zero value is a valid zero amount.
type Amount struct {
	v uint256.Int
}

// FromString parses a decimal NEAR amount like "1", "0.5" or "1e-3". The
// conversion is exact: amounts that can't be represented in whole yoctoNEAR
// or don't fit into u128 are rejected.
func FromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts the NEAR amount to yoctoNEAR.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if d.Sign() < 0 {
		return Amount{}, ErrNegative
	}
	y := d.Shift(Precision)
	if !y.IsInteger() {
		return Amount{}, ErrPrecision
	}
	v, overflow := uint256.FromBig(y.BigInt())
	if overflow || v.BitLen() > MaxBits {
		return Amount{}, ErrOverflow
	}
	return Amount{v: *v}, nil
}

// FromYocto returns the Amount of the given number of yoctoNEAR.
func FromYocto(v *uint256.Int) (Amount, error) {
	if v == nil {
		return Amount{}, nil
	}
	if v.BitLen() > MaxBits {
		return Amount{}, ErrOverflow
	}
	return Amount{v: *v}, nil
}

// Yocto returns a copy of the amount in yoctoNEAR.
func (a Amount) Yocto() *uint256.Int {
	return new(uint256.Int).Set(&a.v)
}

// IsZero tells whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Decimal returns the amount in NEAR.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.v.ToBig(), -Precision)
}

// String returns the amount in NEAR without trailing zeroes.
func (a Amount) String() string {
	return a.Decimal().String()
}

// UnmarshalText implements the encoding.TextUnmarshaler interface, it's used
// by both JSON and YAML decoders.
func (a *Amount) UnmarshalText(text []byte) error {
	v, err := FromString(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
