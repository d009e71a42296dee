package actor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// PollingWaiterRetryCount is a threshold for a number of subsequent failed
// attempts to get transaction status from the RPC server for PollingWaiter.
// If it fails PollingWaiterRetryCount times in a row then the awaiting attempt
// is considered to be failed and an error is returned.
const PollingWaiterRetryCount = 3

// DefaultPollInterval is the interval between transaction status requests
// used by PollingWaiter.
const DefaultPollInterval = time.Second

var (
	// ErrTxNotFound is returned when the node doesn't know the transaction
	// (yet).
	ErrTxNotFound = errors.New("transaction is not known to the node")
	// ErrContextDone is returned when Waiter context has been done in the middle
	// of transaction awaiting process and no result was received yet.
	ErrContextDone = errors.New("waiter context done")
	// ErrAwaitingNotSupported is returned from Wait method if Waiter instance
	// doesn't support transaction awaiting.
	ErrAwaitingNotSupported = errors.New("awaiting not supported")
)

type (
	// Waiter is an interface providing indeterminate transaction resolution
	// functionality to Actor.
	Waiter interface {
		// Wait can be used as a wrapper for Send or SendCall, it accepts
		// their result and error. Errors are returned as is, results in any
		// state but StateIndeterminate are returned as is. Indeterminate
		// results are looked up by hash until the node reports the final
		// outcome or the context is done. Notice that a transaction never
		// sent to the network is never found, so ctx must have a deadline.
		Wait(ctx context.Context, res *Result, err error) (*Result, error)
		// Check performs a single transaction lookup. ErrTxNotFound is
		// returned if the node doesn't know the transaction.
		Check(ctx context.Context, h util.CryptoHash, senderID string) (*Result, error)
	}
	// RPCPollingWaiter is an interface that enables transaction awaiting
	// functionality for Actor instance based on periodical tx polls.
	RPCPollingWaiter interface {
		TxStatus(ctx context.Context, hash util.CryptoHash, senderID string) (*result.FinalExecutionOutcome, error)
	}
)

type (
	// NullWaiter is a Waiter stub that doesn't support transaction awaiting
	// functionality.
	NullWaiter struct{}

	// PollingWaiter is a polling-based Waiter.
	PollingWaiter struct {
		polling  RPCPollingWaiter
		interval time.Duration
	}
)

// NewWaiter creates Waiter instance. It can be either PollingWaiter or
// NullWaiter depending on the base interface.
func NewWaiter(base any) Waiter {
	if p, ok := base.(RPCPollingWaiter); ok {
		return NewPollingWaiter(p, DefaultPollInterval)
	}
	return NewNullWaiter()
}

// NewNullWaiter creates an instance of Waiter stub.
func NewNullWaiter() NullWaiter {
	return NullWaiter{}
}

// Wait implements Waiter interface.
func (NullWaiter) Wait(ctx context.Context, res *Result, err error) (*Result, error) {
	if err != nil || res.State != StateIndeterminate {
		return res, err
	}
	return res, ErrAwaitingNotSupported
}

// Check implements Waiter interface.
func (NullWaiter) Check(ctx context.Context, h util.CryptoHash, senderID string) (*Result, error) {
	return nil, ErrAwaitingNotSupported
}

// NewPollingWaiter creates an instance of Waiter supporting poll-based
// transaction awaiting. Non-positive interval means DefaultPollInterval.
func NewPollingWaiter(waiter RPCPollingWaiter, interval time.Duration) *PollingWaiter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollingWaiter{
		polling:  waiter,
		interval: interval,
	}
}

// Check implements Waiter interface.
func (w *PollingWaiter) Check(ctx context.Context, h util.CryptoHash, senderID string) (*Result, error) {
	out, err := w.polling.TxStatus(ctx, h, senderID)
	if err != nil {
		var rpcErr *nearrpc.Error
		if errors.As(err, &rpcErr) && rpcErr.HasCause(nearrpc.CauseUnknownTransaction) {
			return nil, fmt.Errorf("%w: %s", ErrTxNotFound, h)
		}
		return nil, err
	}
	return newResultFromOutcome(h, out), nil
}

// Wait implements Waiter interface. The Result given is updated in place
// when the outcome is found.
func (w *PollingWaiter) Wait(ctx context.Context, res *Result, err error) (*Result, error) {
	if err != nil || res.State != StateIndeterminate {
		return res, err
	}
	var failedAttempt int
	timer := time.NewTicker(w.interval)
	defer timer.Stop()
	for {
		found, err := w.Check(ctx, res.Hash, res.SignerID)
		switch {
		case err == nil:
			res.applyOutcome(found.Outcome)
			return res, nil
		case errors.Is(err, ErrTxNotFound):
			failedAttempt = 0
		default:
			failedAttempt++
			if failedAttempt > PollingWaiterRetryCount {
				return res, fmt.Errorf("failed to retrieve transaction status: %w", err)
			}
		}
		select {
		case <-timer.C:
		case <-ctx.Done():
			return res, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
		}
	}
}
