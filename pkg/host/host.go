/*
Package host is the invocation surface for shells embedding the contract
call pipeline: every function takes the configuration and credentials
explicitly, builds its own RPC client and returns plain results that can be
marshaled to JSON.
*/
package host

import (
	"context"
	"time"

	"github.com/nspcc-dev/near-go/pkg/config"
	"github.com/nspcc-dev/near-go/pkg/journal"
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"github.com/nspcc-dev/near-go/pkg/rpcclient"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/greeting"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/invoker"
	"go.uber.org/zap"
)

// Options are optional collaborators of host functions.
type Options struct {
	// Logger is used for all logging, nothing is logged if nil.
	Logger *zap.Logger
	// Journal records indeterminate submissions if set.
	Journal *journal.Journal
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Payload is a function call to make.
type Payload struct {
	Method string
	// Args are the call arguments, see invoker.EncodeArgs.
	Args any
}

// GreetingPayload returns the Payload changing the greeting of the greeter
// contract.
func GreetingPayload(text string) Payload {
	return Payload{Method: greeting.SetMethod, Args: greeting.SetArgs{Greeting: text}}
}

// newClient creates an RPC client for the network.
func newClient(cfg config.Config, network string, log *zap.Logger) (*rpcclient.Client, config.Network, error) {
	n, err := cfg.Network(network)
	if err != nil {
		return nil, config.Network{}, err
	}
	c, err := rpcclient.New(n.RPCURL, rpcclient.Options{
		DialTimeout:     cfg.Application.DialTimeout,
		RequestTimeout:  cfg.Application.RequestTimeout,
		MaxConnsPerHost: cfg.Application.MaxConnsPerHost,
		Logger:          log,
	})
	if err != nil {
		return nil, config.Network{}, neterr.WithStep(err, neterr.StepLoadConfig)
	}
	return c, n, nil
}

// QueryContract returns the greeting stored in the network's contract.
func QueryContract(ctx context.Context, cfg config.Config, network string, opts Options) (string, error) {
	log := opts.logger().With(zap.String("network", network))
	c, n, err := newClient(cfg, network, log)
	if err != nil {
		return "", err
	}
	defer c.Close()

	text, err := greeting.NewReader(invoker.New(c), n.ContractID).Greeting(ctx)
	if err != nil {
		log.Debug("query failed", zap.String("contract", n.ContractID), zap.Error(err))
		return "", err
	}
	return text, nil
}

// ViewFunction calls the view method of the network's contract and returns
// the raw result.
func ViewFunction(ctx context.Context, cfg config.Config, network string, payload Payload, opts Options) ([]byte, error) {
	log := opts.logger().With(zap.String("network", network))
	c, n, err := newClient(cfg, network, log)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	res, err := invoker.New(c).Call(ctx, n.ContractID, payload.Method, payload.Args)
	if err != nil {
		log.Debug("view call failed", zap.String("contract", n.ContractID),
			zap.String("method", payload.Method), zap.Error(err))
		return nil, err
	}
	return res, nil
}

// SubmitFunctionCall calls the payload method of the network's contract on
// behalf of the account. Contract failures and transport losses after
// sending are results (Failed and Indeterminate), errors are returned only
// when the transaction is known not to be executed.
func SubmitFunctionCall(ctx context.Context, cfg config.Config, network string, accountID string, privateKey string, payload Payload, opts Options) (*TransactionResult, error) {
	return Submit(ctx, cfg, network, actor.Account{
		ID:  accountID,
		Key: actor.KeyFromString(privateKey),
	}, payload, opts)
}

// Submit is SubmitFunctionCall for callers keeping the key behind
// actor.KeyProvider.
func Submit(ctx context.Context, cfg config.Config, network string, acc actor.Account, payload Payload, opts Options) (*TransactionResult, error) {
	log := opts.logger().With(zap.String("network", network))
	c, n, err := newClient(cfg, network, log)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	a, err := actor.NewTuned(c, acc, actor.Options{
		Gas:     cfg.Transaction.GetGas(),
		Deposit: cfg.Transaction.Deposit.Yocto(),
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}
	res, err := a.SendCall(ctx, n.ContractID, payload.Method, payload.Args)
	if err != nil {
		return nil, err
	}
	if res.State == actor.StateIndeterminate {
		record(opts.Journal, network, payload.Method, res, log)
	}
	return NewTransactionResult(res), nil
}

// record stores the indeterminate submission in the journal.
func record(j *journal.Journal, network string, method string, res *actor.Result, log *zap.Logger) {
	if j == nil {
		return
	}
	err := j.Put(journal.Entry{
		Hash:       res.Hash,
		Network:    network,
		SignerID:   res.SignerID,
		ReceiverID: res.ReceiverID,
		Method:     method,
		Nonce:      res.Nonce,
		Block:      res.ReferenceBlock,
		Time:       time.Now(),
		Message:    res.Message,
	})
	if err != nil {
		log.Error("failed to record indeterminate submission",
			zap.Stringer("hash", res.Hash), zap.Error(err))
	}
}
