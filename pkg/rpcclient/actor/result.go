package actor

import (
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// State is the outcome of a submission.
type State byte

// Submission states.
const (
	// StateUnknown is for final statuses not recognized by this package,
	// Result keeps everything that could be extracted from the outcome.
	StateUnknown State = iota
	// StateSuccess means the transaction was executed successfully.
	StateSuccess
	// StateFailure means the transaction was included, but its execution
	// failed (the contract panicked for example).
	StateFailure
	// StateIndeterminate means the transaction was sent, but its fate is
	// not known because of a transport failure.
	StateIndeterminate
)

// String implements the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case StateSuccess:
		return "Success"
	case StateFailure:
		return "Failure"
	case StateIndeterminate:
		return "Indeterminate"
	default:
		return "Unknown"
	}
}

// Result is the outcome of a submitted transaction.
type Result struct {
	State State
	// Hash is the transaction hash.
	Hash     util.CryptoHash
	SignerID string
	// ReceiverID is the contract called.
	ReceiverID string
	Nonce      uint64
	// ReferenceBlock is the block hash the transaction refers to.
	ReferenceBlock util.CryptoHash
	// BlockHash is the hash of the block the transaction was included in,
	// it's ReferenceBlock when that's not known.
	BlockHash util.CryptoHash
	// GasBurnt is the total gas burnt by the transaction and its receipts.
	GasBurnt uint64
	// Value is the value returned by the called method on success.
	Value []byte
	// Message is the failure description for StateFailure, the status
	// name for StateUnknown and the transport error for StateIndeterminate.
	Message string
	// Outcome is the outcome as returned by the node, nil for
	// StateIndeterminate.
	Outcome *result.FinalExecutionOutcome
	// Err is the transport error that led to StateIndeterminate.
	Err error
}

// applyOutcome fills the Result from the final execution outcome.
func (r *Result) applyOutcome(o *result.FinalExecutionOutcome) {
	r.Outcome = o
	r.Err = nil
	r.GasBurnt = o.GasBurnt()
	if !o.TransactionOutcome.BlockHash.IsZero() {
		r.BlockHash = o.TransactionOutcome.BlockHash
	}
	switch {
	case o.Status.IsSuccess():
		r.State = StateSuccess
		r.Value = o.Status.SuccessValue
		r.Message = ""
	case o.Status.Kind == result.StatusFailure:
		r.State = StateFailure
		r.Message = o.Status.FailureMessage()
	default:
		r.State = StateUnknown
		r.Message = o.Status.Name()
	}
}

// newResultFromOutcome creates a Result for a transaction known only by its
// outcome.
func newResultFromOutcome(h util.CryptoHash, o *result.FinalExecutionOutcome) *Result {
	r := &Result{
		Hash:       h,
		SignerID:   o.Transaction.SignerID,
		ReceiverID: o.Transaction.ReceiverID,
		Nonce:      o.Transaction.Nonce,
	}
	r.applyOutcome(o)
	return r
}
