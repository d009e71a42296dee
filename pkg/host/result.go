package host

import (
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
)

// Status is the textual outcome of a submission.
type Status string

// Submission statuses.
const (
	StatusSuccess       Status = "Success"
	StatusFailed        Status = "Failed"
	StatusUnknown       Status = "Unknown"
	StatusIndeterminate Status = "Indeterminate"
)

// TransactionResult is the outcome of a submission as reported to the shell.
type TransactionResult struct {
	TransactionHash string `json:"transaction_hash"`
	// BlockHash is the block the transaction was included in, the block it
	// refers to if that's not known.
	BlockHash string `json:"block_hash"`
	Status    Status `json:"status"`
	GasBurnt  uint64 `json:"gas_burnt"`
	// Message is the failure description, the unrecognized status name or
	// the transport error depending on Status.
	Message string `json:"message,omitempty"`
}

// NewTransactionResult converts actor.Result.
func NewTransactionResult(res *actor.Result) *TransactionResult {
	return &TransactionResult{
		TransactionHash: res.Hash.String(),
		BlockHash:       res.BlockHash.String(),
		Status:          StatusOf(res.State),
		GasBurnt:        res.GasBurnt,
		Message:         res.Message,
	}
}

// StatusOf returns the Status corresponding to actor.State.
func StatusOf(s actor.State) Status {
	switch s {
	case actor.StateSuccess:
		return StatusSuccess
	case actor.StateFailure:
		return StatusFailed
	case actor.StateIndeterminate:
		return StatusIndeterminate
	default:
		return StatusUnknown
	}
}
