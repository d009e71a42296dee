package actor

import (
	"context"
	"math"

	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/near-go/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MakeCall creates a signed transaction that calls the given method of the
// given contract with the given arguments. It resolves the nonce and the
// block hash via RPC, but doesn't send anything.
func (a *Actor) MakeCall(ctx context.Context, contract string, method string, args any) (*transaction.Signed, error) {
	tx, err := a.MakeUnsignedCall(ctx, contract, method, args)
	if err != nil {
		return nil, err
	}
	return a.Sign(tx)
}

// MakeUnsignedCall creates an unsigned transaction that calls the given
// method of the given contract with the given arguments. The nonce is the
// access key nonce reported by the node plus one, the block hash is the
// latest one known to the node.
func (a *Actor) MakeUnsignedCall(ctx context.Context, contract string, method string, args any) (*transaction.Transaction, error) {
	if err := transaction.ValidateAccountID(contract); err != nil {
		return nil, neterr.New(neterr.KindInvalidInput, neterr.StepValidateInput, err)
	}
	if method == "" {
		return nil, neterr.Newf(neterr.KindInvalidInput, neterr.StepValidateInput, "empty method name")
	}
	argBytes, err := invoker.EncodeArgs(args)
	if err != nil {
		return nil, err
	}

	nonce, blockHash, err := a.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if nonce == math.MaxUint64 {
		return nil, neterr.Newf(neterr.KindEncoding, neterr.StepBuildAndSign, "access key nonce overflow")
	}
	a.log.Debug("resolved transaction parameters",
		zap.Uint64("nonce", nonce),
		zap.Stringer("block", blockHash))

	return transaction.New(a.account.ID, a.account.PublicKey, nonce+1, contract, blockHash,
		transaction.NewFunctionCall(method, argBytes, a.opts.Gas, a.opts.Deposit)), nil
}

// resolve fetches the current access key nonce and the latest block hash
// concurrently. Both must succeed.
func (a *Actor) resolve(ctx context.Context) (uint64, util.CryptoHash, error) {
	var (
		nonce     uint64
		blockHash util.CryptoHash
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := a.client.AccessKeyNonce(gctx, a.account.ID, a.account.PublicKey)
		if err != nil {
			return neterr.WithStep(err, neterr.StepResolveNonce)
		}
		nonce = n
		return nil
	})
	g.Go(func() error {
		h, err := a.client.LatestBlockHash(gctx)
		if err != nil {
			return neterr.WithStep(err, neterr.StepResolveBlockHash)
		}
		blockHash = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, util.CryptoHash{}, err
	}
	return nonce, blockHash, nil
}
