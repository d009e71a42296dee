package actor

import (
	"bytes"
	"context"
	"errors"

	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"go.uber.org/zap"
)

// Send broadcasts the signed transaction and waits for its final outcome.
//
// A non-nil error is only returned when the transaction is known not to be
// executed: the context is done before sending, the transaction can't be
// encoded or the node rejected it as invalid (the error then wraps
// *nearrpc.Error with INVALID_TRANSACTION or PARSE_ERROR cause or the
// REQUEST_VALIDATION_ERROR name). Such errors are attributed to
// neterr.StepBroadcast. Included transactions are reported as StateSuccess,
// StateFailure or StateUnknown results. Everything else (connection loss,
// timeouts, any other node error, malformed responses, context cancellation
// after sending) is StateIndeterminate with the transaction hash computed
// locally.
func (a *Actor) Send(ctx context.Context, tx *transaction.Signed) (*Result, error) {
	var res = &Result{
		Hash:           tx.Hash(),
		SignerID:       tx.Transaction.SignerID,
		ReceiverID:     tx.Transaction.ReceiverID,
		Nonce:          tx.Transaction.Nonce,
		ReferenceBlock: tx.Transaction.BlockHash,
		BlockHash:      tx.Transaction.BlockHash,
	}
	log := a.log.With(zap.Stringer("hash", res.Hash), zap.Uint64("nonce", res.Nonce))

	if err := ctx.Err(); err != nil {
		err = neterr.New(neterr.KindNetwork, neterr.StepBroadcast, err)
		observeError(err)
		return nil, err
	}
	out, err := a.client.BroadcastTxCommit(ctx, tx)
	if err != nil {
		if isRejection(err) {
			err = neterr.WithStep(err, neterr.StepBroadcast)
			log.Warn("transaction rejected", zap.Error(err))
			observeError(err)
			return nil, err
		}
		res.State = StateIndeterminate
		res.Err = neterr.WithStep(err, neterr.StepBroadcast)
		res.Message = res.Err.Error()
		log.Warn("transaction fate is unknown, look it up before retrying", zap.Error(err))
		observeResult(res)
		return res, nil
	}
	res.applyOutcome(out)
	if id := out.TransactionOutcome.ID; !id.IsZero() && id != res.Hash {
		log.Warn("node reported a different transaction hash", zap.Stringer("reported", id))
	}
	log.Info("transaction executed",
		zap.Stringer("state", res.State),
		zap.Stringer("block", res.BlockHash),
		zap.Uint64("gas_burnt", res.GasBurnt))
	observeResult(res)
	return res, nil
}

// legacyInvalidTx is the marker of transaction validation errors in the data
// of errors returned by nodes that don't set name and cause.
var legacyInvalidTx = []byte(`"InvalidTxError"`)

// isRejection tells whether the error returned from broadcast proves the
// transaction wasn't executed. Only request validation and transaction
// validation failures do, any other node error (including the ones without
// name and cause) leaves the outcome unknown.
func isRejection(err error) bool {
	switch neterr.KindOf(err) {
	case neterr.KindEncoding, neterr.KindInvalidInput:
		return true
	}
	var rpcErr *nearrpc.Error
	if !errors.As(err, &rpcErr) {
		return false
	}
	switch {
	case rpcErr.Name == nearrpc.RequestValidationError,
		rpcErr.HasCause(nearrpc.CauseInvalidTransaction),
		rpcErr.HasCause(nearrpc.CauseParseError):
		return true
	case rpcErr.Name == "" && rpcErr.Cause == nil:
		return bytes.Contains(rpcErr.Data, legacyInvalidTx)
	}
	return false
}
