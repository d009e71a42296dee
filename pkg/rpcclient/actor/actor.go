/*
Package actor provides a way to change chain state via RPC client.

This layer builds on top of the basic RPC client and [invoker] package, it
simplifies creating, signing and sending function call transactions on behalf
of a single account. It's generic enough to be used for any contract and
contract-specific wrappers can build on top of it.

A submission goes through the following steps: the access key nonce and the
latest block hash are resolved (concurrently), the transaction is built with
the nonce following the one reported by the node, it's encoded, hashed and
signed and then it's broadcast to wait for the final outcome. Actor never
caches nonces and never retries, every SendCall gets fresh values from the
node.

The outcome is one of four states (see State). Contract failures are not
errors, they're reported as StateFailure results. Errors are only returned
when the transaction is known not to be executed: it wasn't sent or the node
explicitly rejected it. A transport failure after the transaction is sent
leads to StateIndeterminate, the transaction may or may not be included and
it must be looked up by hash (see Waiter) before any retry.
*/
package actor

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/near-go/pkg/util"
	"go.uber.org/zap"
)

// RPCActor is an interface required from the RPC client to successfully
// create and send transactions.
type RPCActor interface {
	invoker.RPCInvoke

	AccessKeyNonce(ctx context.Context, accountID string, pub *keys.PublicKey) (uint64, error)
	LatestBlockHash(ctx context.Context) (util.CryptoHash, error)
	// BroadcastTxCommit MUST return *nearrpc.Error (possibly wrapped) when
	// the node rejects the transaction, any other error is treated as
	// a transport failure with unknown transaction fate.
	BroadcastTxCommit(ctx context.Context, tx *transaction.Signed) (*result.FinalExecutionOutcome, error)
}

// KeyProvider returns the private key for a single signing operation. Actor
// destroys the key right after signing (whether it succeeds or not), so the
// provider must return a new instance on every call.
type KeyProvider func() (*keys.PrivateKey, error)

// KeyFromString returns a KeyProvider parsing the given textual key
// ("ed25519:<base58>") each time it's called.
func KeyFromString(s string) KeyProvider {
	return func() (*keys.PrivateKey, error) {
		return keys.NewPrivateKeyFromString(s)
	}
}

// Account is the signing identity of Actor.
type Account struct {
	// ID is the account ID (signer of transactions).
	ID string
	// PublicKey is the access key used, it's derived from Key if not set.
	PublicKey *keys.PublicKey
	// Key provides the private key corresponding to PublicKey.
	Key KeyProvider
}

// Actor keeps a connection to the RPC endpoint and allows to perform
// state-changing actions (via transactions that can also be created without
// sending them to the network) on behalf of an account. It also provides
// an Invoker interface to perform view calls.
//
// Actor-specific APIs follow a simple naming scheme: "Make" prefix is used
// for methods that create transactions, while "Send" prefix is used by
// methods that directly transmit created transactions to the RPC server.
//
// Actor also provides a Waiter interface to resolve indeterminate
// submissions. Depending on the underlying RPCActor functionality it's either
// PollingWaiter (if RPCActor implements RPCPollingWaiter) or NullWaiter.
//
// Actor has no mutable state, it can be used concurrently.
type Actor struct {
	invoker.Invoker
	Waiter

	client  RPCActor
	account Account
	opts    Options
	log     *zap.Logger
}

// Options are used to create Actor with non-default gas, deposit or logger.
type Options struct {
	// Gas attached to every function call, transaction.DefaultGas if zero.
	// It can't exceed transaction.MaxGas.
	Gas uint64
	// Deposit attached to every function call in yoctoNEAR, nil means zero.
	Deposit *uint256.Int
	// Logger is used to log submissions, no logging is done if nil.
	Logger *zap.Logger
}

// NewDefaultOptions returns Options with the default gas, no deposit and no
// logger.
func NewDefaultOptions() Options {
	return Options{
		Gas: transaction.DefaultGas,
	}
}

// New creates an Actor instance using the specified RPC interface and the
// account with the default Options. If the account has no PublicKey it's
// derived from the private key (which is then immediately destroyed).
func New(ra RPCActor, acc Account) (*Actor, error) {
	return NewTuned(ra, acc, NewDefaultOptions())
}

// NewTuned creates an Actor that will use the specified Options.
func NewTuned(ra RPCActor, acc Account, opts Options) (*Actor, error) {
	if err := transaction.ValidateAccountID(acc.ID); err != nil {
		return nil, neterr.New(neterr.KindInvalidInput, neterr.StepValidateInput, err)
	}
	if acc.Key == nil {
		return nil, neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepValidateInput, "no private key for %s", acc.ID)
	}
	if acc.PublicKey == nil {
		k, err := getKey(acc.Key)
		if err != nil {
			return nil, neterr.WithStep(err, neterr.StepValidateInput)
		}
		acc.PublicKey = k.PublicKey()
		k.Destroy()
	}
	if opts.Gas == 0 {
		opts.Gas = transaction.DefaultGas
	}
	if opts.Gas > transaction.MaxGas {
		return nil, neterr.Newf(neterr.KindInvalidInput, neterr.StepValidateInput, "gas %d exceeds the limit of %d", opts.Gas, transaction.MaxGas)
	}
	if opts.Deposit != nil && opts.Deposit.BitLen() > 128 {
		return nil, neterr.Newf(neterr.KindInvalidInput, neterr.StepValidateInput, "deposit %s doesn't fit into u128", opts.Deposit.Dec())
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Actor{
		Invoker: *invoker.New(ra),
		Waiter:  NewWaiter(ra),
		client:  ra,
		account: acc,
		opts:    opts,
		log:     opts.Logger.With(zap.String("signer", acc.ID)),
	}, nil
}

// NewSimple makes it easier to create an Actor for the most widespread case
// of a textual private key.
func NewSimple(ra RPCActor, accountID string, privateKey string) (*Actor, error) {
	return New(ra, Account{ID: accountID, Key: KeyFromString(privateKey)})
}

// Sender returns the account ID used as the transaction signer.
func (a *Actor) Sender() string {
	return a.account.ID
}

// PublicKey returns the access key used to sign transactions.
func (a *Actor) PublicKey() *keys.PublicKey {
	return a.account.PublicKey
}

// Sign signs the transaction with the Actor's key. The key is obtained from
// the KeyProvider and destroyed before returning on every path.
func (a *Actor) Sign(tx *transaction.Transaction) (*transaction.Signed, error) {
	k, err := getKey(a.account.Key)
	if err != nil {
		return nil, neterr.WithStep(err, neterr.StepBuildAndSign)
	}
	defer k.Destroy()

	signed, err := transaction.Sign(tx, k)
	if err != nil {
		return nil, neterr.WithStep(err, neterr.StepBuildAndSign)
	}
	return signed, nil
}

func getKey(p KeyProvider) (*keys.PrivateKey, error) {
	k, err := p()
	if err != nil {
		if neterr.KindOf(err) == neterr.KindUnknown {
			err = neterr.New(neterr.KindInvalidKeyMaterial, neterr.StepNone, err)
		}
		return nil, err
	}
	if k == nil {
		return nil, neterr.Newf(neterr.KindInvalidKeyMaterial, neterr.StepNone, "no private key")
	}
	return k, nil
}

// SendCall creates a transaction that calls the given method of the given
// contract with the given arguments (see invoker.EncodeArgs), signs it and
// sends it to the network waiting for the final outcome. See Send for the
// result semantics.
func (a *Actor) SendCall(ctx context.Context, contract string, method string, args any) (*Result, error) {
	tx, err := a.MakeCall(ctx, contract, method, args)
	if err != nil {
		observeError(err)
		return nil, err
	}
	return a.Send(ctx, tx)
}
