package host

import (
	"context"
	"errors"

	"github.com/nspcc-dev/near-go/pkg/config"
	"github.com/nspcc-dev/near-go/pkg/journal"
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/near-go/pkg/util"
	"go.uber.org/zap"
)

// ErrNotFound is returned by TxStatus for transactions unknown to the node.
var ErrNotFound = actor.ErrTxNotFound

// TxStatus looks up the transaction sent by senderID by its hash.
// ErrNotFound is returned if the node doesn't know it.
func TxStatus(ctx context.Context, cfg config.Config, network string, h util.CryptoHash, senderID string, opts Options) (*TransactionResult, error) {
	c, _, err := newClient(cfg, network, opts.logger().With(zap.String("network", network)))
	if err != nil {
		return nil, err
	}
	defer c.Close()

	res, err := actor.NewPollingWaiter(c, 0).Check(ctx, h, senderID)
	if err != nil {
		if !errors.Is(err, actor.ErrTxNotFound) {
			err = neterr.WithStep(err, neterr.StepQuery)
		}
		return nil, err
	}
	return NewTransactionResult(res), nil
}

// Reconciled is the state of a journal entry after the lookup.
type Reconciled struct {
	Entry journal.Entry
	// Result is nil if the transaction is still unknown to the node.
	Result *TransactionResult
	// Err is the lookup error, it's nil for unknown transactions.
	Err error
}

// Reconcile looks up every journal entry of the network. Found transactions
// are removed from the journal, unknown ones are kept. Lookup failures
// don't stop the process, they're reported per entry.
func Reconcile(ctx context.Context, cfg config.Config, network string, j *journal.Journal, opts Options) ([]Reconciled, error) {
	log := opts.logger().With(zap.String("network", network))
	entries, err := j.List(network)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	c, _, err := newClient(cfg, network, log)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var (
		w   = actor.NewPollingWaiter(c, 0)
		res = make([]Reconciled, 0, len(entries))
	)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		r := Reconciled{Entry: e}
		found, err := w.Check(ctx, e.Hash, e.SignerID)
		switch {
		case err == nil:
			r.Result = NewTransactionResult(found)
			if err := j.Delete(e.Hash); err != nil {
				return res, err
			}
			log.Info("submission resolved",
				zap.Stringer("hash", e.Hash),
				zap.String("status", string(r.Result.Status)))
		case errors.Is(err, actor.ErrTxNotFound):
			log.Info("submission is still unknown", zap.Stringer("hash", e.Hash))
		default:
			r.Err = neterr.WithStep(err, neterr.StepQuery)
			log.Warn("failed to look up submission", zap.Stringer("hash", e.Hash), zap.Error(err))
		}
		res = append(res, r)
	}
	return res, nil
}
