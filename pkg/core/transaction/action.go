package transaction

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/near-go/pkg/io"
)

// Gas limits.
const (
	// DefaultGas is the default amount of gas attached to a function call
	// (30 TGas).
	DefaultGas uint64 = 30_000_000_000_000
	// MaxGas is the maximum amount of gas that can be attached to a single
	// function call (300 TGas).
	MaxGas uint64 = 300_000_000_000_000
)

// ActionType is the Borsh enum index of an action.
type ActionType byte

// Action types as defined by the protocol. Only FunctionCallT is supported
// by this package, others are listed to keep the indices fixed.
const (
	CreateAccountT  ActionType = 0
	DeployContractT ActionType = 1
	FunctionCallT   ActionType = 2
	TransferT       ActionType = 3
	StakeT          ActionType = 4
	AddKeyT         ActionType = 5
	DeleteKeyT      ActionType = 6
	DeleteAccountT  ActionType = 7
)

// ErrUnsupportedAction is returned when encoding or decoding an action of a
// type other than FunctionCallT.
var ErrUnsupportedAction = errors.New("unsupported action type")

// FunctionCall invokes a contract method.
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	// Deposit is attached in yoctoNEAR, nil means zero.
	Deposit *uint256.Int
}

// Action is a single transaction action.
type Action struct {
	Type         ActionType
	FunctionCall *FunctionCall
}

// NewFunctionCall creates a function call action.
func NewFunctionCall(method string, args []byte, gas uint64, deposit *uint256.Int) Action {
	return Action{
		Type: FunctionCallT,
		FunctionCall: &FunctionCall{
			MethodName: method,
			Args:       args,
			Gas:        gas,
			Deposit:    deposit,
		},
	}
}

// Validate checks function call parameters.
func (f *FunctionCall) Validate() error {
	if f.MethodName == "" {
		return errors.New("empty method name")
	}
	if f.Gas == 0 {
		return errors.New("zero gas")
	}
	if f.Gas > MaxGas {
		return fmt.Errorf("gas %d exceeds the limit of %d", f.Gas, MaxGas)
	}
	if f.Deposit != nil && f.Deposit.BitLen() > 128 {
		return io.ErrU128Overflow
	}
	return nil
}

// EncodeBinary implements the io.Encodable interface.
func (f *FunctionCall) EncodeBinary(w *io.BinWriter) {
	w.WriteString(f.MethodName)
	w.WriteVarBytes(f.Args)
	w.WriteU64LE(f.Gas)
	w.WriteU128LE(f.Deposit)
}

// DecodeBinary implements the io.Decodable interface.
func (f *FunctionCall) DecodeBinary(r *io.BinReader) {
	f.MethodName = r.ReadString()
	f.Args = r.ReadVarBytes()
	f.Gas = r.ReadU64LE()
	f.Deposit = r.ReadU128LE()
}

// EncodeBinary implements the io.Encodable interface.
func (a Action) EncodeBinary(w *io.BinWriter) {
	if w.Err != nil {
		return
	}
	if a.Type != FunctionCallT || a.FunctionCall == nil {
		w.Err = fmt.Errorf("%w: %d", ErrUnsupportedAction, a.Type)
		return
	}
	w.WriteB(byte(a.Type))
	a.FunctionCall.EncodeBinary(w)
}

// DecodeBinary implements the io.Decodable interface.
func (a *Action) DecodeBinary(r *io.BinReader) {
	a.Type = ActionType(r.ReadB())
	if r.Err != nil {
		return
	}
	if a.Type != FunctionCallT {
		r.Err = fmt.Errorf("%w: %d", ErrUnsupportedAction, a.Type)
		return
	}
	a.FunctionCall = new(FunctionCall)
	a.FunctionCall.DecodeBinary(r)
}
