package host

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/near-go/internal/testnode"
	"github.com/nspcc-dev/near-go/pkg/config"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/journal"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"github.com/nspcc-dev/near-go/pkg/rpcclient"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/near-go/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testAccount struct {
	id      string
	pub     *keys.PublicKey
	private string
}

func newTestAccount(t *testing.T, id string, b byte) testAccount {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub, err := keys.NewPublicKeyFromBytes(keys.ED25519, priv.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	return testAccount{id: id, pub: pub, private: "ed25519:" + base58.Encode(priv)}
}

func newTestEnv(t *testing.T) (*testnode.Node, config.Config, testAccount) {
	node := testnode.New(t)
	node.Deploy("greeter.testnet", "Hello")
	alice := newTestAccount(t, "alice.testnet", 1)
	node.AddKey(alice.id, alice.pub, 10)

	cfg := config.Default()
	cfg.Networks[config.TestNet] = config.Network{RPCURL: node.URL(), ContractID: "greeter.testnet"}
	require.NoError(t, cfg.Validate())
	return node, cfg, alice
}

func TestQueryContract(t *testing.T) {
	node, cfg, _ := newTestEnv(t)
	opts := Options{Logger: zaptest.NewLogger(t)}

	text, err := QueryContract(context.Background(), cfg, config.TestNet, opts)
	require.NoError(t, err)
	require.Equal(t, "Hello", text)

	_, err = QueryContract(context.Background(), cfg, config.MainNet, opts)
	require.ErrorIs(t, err, neterr.ErrConfig)

	cfg.Networks[config.TestNet] = config.Network{RPCURL: node.URL(), ContractID: "missing.testnet"}
	_, err = QueryContract(context.Background(), cfg, config.TestNet, opts)
	require.ErrorIs(t, err, neterr.ErrNetwork)
	require.Equal(t, neterr.StepQuery, neterr.StepOf(err))

	cfg.Networks[config.TestNet] = config.Network{RPCURL: "http://127.0.0.1:1", ContractID: "greeter.testnet"}
	_, err = QueryContract(context.Background(), cfg, config.TestNet, opts)
	require.ErrorIs(t, err, neterr.ErrNetwork)
}

func TestSubmitFunctionCall(t *testing.T) {
	node, cfg, alice := newTestEnv(t)
	opts := Options{Logger: zaptest.NewLogger(t)}

	res, err := SubmitFunctionCall(context.Background(), cfg, config.TestNet, alice.id, alice.private,
		Payload{Method: "set_greeting", Args: json.RawMessage(`{"greeting":"hi"}`)}, opts)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, uint64(testnode.TxGasBurnt+testnode.ReceiptGasBurnt), res.GasBurnt)
	require.Empty(t, res.Message)

	sent := node.Sent()
	require.Len(t, sent, 1)
	tx := sent[0]
	require.Equal(t, uint64(11), tx.Transaction.Nonce)
	require.True(t, tx.Verify())
	require.Equal(t, tx.Hash().String(), res.TransactionHash)
	call := tx.Transaction.Actions[0].FunctionCall
	require.Equal(t, config.DefaultGas, call.Gas)
	require.Equal(t, uint64(30_000_000_000_000), call.Gas)
	require.True(t, call.Deposit == nil || call.Deposit.IsZero())
	require.Equal(t, []byte(`{"greeting":"hi"}`), call.Args)

	out, ok := node.Outcome(tx.Hash())
	require.True(t, ok)
	require.Equal(t, out.TransactionOutcome.BlockHash.String(), res.BlockHash)

	nonce, ok := node.Nonce(alice.id, alice.pub)
	require.True(t, ok)
	require.Equal(t, uint64(11), nonce)
	require.Equal(t, "hi", node.Greeting("greeter.testnet"))

	text, err := QueryContract(context.Background(), cfg, config.TestNet, opts)
	require.NoError(t, err)
	require.Equal(t, "hi", text)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, fmt.Sprintf(`{"transaction_hash":%q,"block_hash":%q,"status":"Success","gas_burnt":%d}`,
		res.TransactionHash, res.BlockHash, res.GasBurnt), string(b))

	// Next submission gets the next nonce.
	res, err = SubmitFunctionCall(context.Background(), cfg, config.TestNet, alice.id, alice.private, GreetingPayload("hey"), opts)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, uint64(12), node.Sent()[1].Transaction.Nonce)
	require.Equal(t, "hey", node.Greeting("greeter.testnet"))
}

func TestSubmitFunctionCallFailure(t *testing.T) {
	node, cfg, alice := newTestEnv(t)

	res, err := SubmitFunctionCall(context.Background(), cfg, config.TestNet, alice.id, alice.private,
		Payload{Method: "set_greeting", Args: map[string]int{"text": 1}}, Options{})
	require.NoError(t, err)
	require.Equal(t, StatusFailed, res.Status)
	require.Equal(t, "Smart contract panicked: Failed to deserialize input from JSON.", res.Message)
	require.NotZero(t, res.GasBurnt)
	require.Equal(t, "Hello", node.Greeting("greeter.testnet"))

	res, err = SubmitFunctionCall(context.Background(), cfg, config.TestNet, alice.id, alice.private,
		Payload{Method: "no_such_method"}, Options{})
	require.NoError(t, err)
	require.Equal(t, StatusFailed, res.Status)
	require.Contains(t, res.Message, "MethodNotFound")
}

func TestSubmitFunctionCallErrors(t *testing.T) {
	node, cfg, alice := newTestEnv(t)
	ctx := context.Background()
	payload := GreetingPayload("hi")

	t.Run("unknown network", func(t *testing.T) {
		_, err := SubmitFunctionCall(ctx, cfg, config.MainNet, alice.id, alice.private, payload, Options{})
		require.ErrorIs(t, err, neterr.ErrConfig)
	})
	t.Run("bad account", func(t *testing.T) {
		_, err := SubmitFunctionCall(ctx, cfg, config.TestNet, "Alice", alice.private, payload, Options{})
		require.ErrorIs(t, err, neterr.ErrInvalidInput)
	})
	t.Run("bad key", func(t *testing.T) {
		_, err := SubmitFunctionCall(ctx, cfg, config.TestNet, alice.id, "ed25519:abc", payload, Options{})
		require.ErrorIs(t, err, neterr.ErrInvalidKeyMaterial)
		require.NotContains(t, err.Error(), "ed25519:abc")
	})
	t.Run("bad args", func(t *testing.T) {
		_, err := SubmitFunctionCall(ctx, cfg, config.TestNet, alice.id, alice.private,
			Payload{Method: "set_greeting", Args: "{"}, Options{})
		require.ErrorIs(t, err, neterr.ErrInvalidInput)
		require.Equal(t, neterr.StepValidateInput, neterr.StepOf(err))
	})
	for _, legacy := range []bool{false, true} {
		t.Run(fmt.Sprintf("unknown key, legacy %t", legacy), func(t *testing.T) {
			node.SetLegacyErrors(legacy)
			defer node.SetLegacyErrors(false)
			bob := newTestAccount(t, "bob.testnet", 2)
			_, err := SubmitFunctionCall(ctx, cfg, config.TestNet, bob.id, bob.private, payload, Options{})
			require.ErrorIs(t, err, neterr.ErrAccessKeyNotFound)
			require.NotErrorIs(t, err, neterr.ErrNetwork)
			require.Equal(t, neterr.StepResolveNonce, neterr.StepOf(err))
		})
	}
	t.Run("unreachable", func(t *testing.T) {
		cfg := config.Default()
		cfg.Networks[config.TestNet] = config.Network{RPCURL: "http://127.0.0.1:1", ContractID: "greeter.testnet"}
		_, err := SubmitFunctionCall(ctx, cfg, config.TestNet, alice.id, alice.private, payload, Options{})
		require.ErrorIs(t, err, neterr.ErrNetwork)
		step := neterr.StepOf(err)
		require.True(t, step == neterr.StepResolveNonce || step == neterr.StepResolveBlockHash, step.String())
	})
	t.Run("rejected", func(t *testing.T) {
		node.FailBroadcasts(nearrpc.NewError(nearrpc.CauseInvalidTransaction, "Server error"))
		defer node.FailBroadcasts(nil)
		_, err := SubmitFunctionCall(ctx, cfg, config.TestNet, alice.id, alice.private, payload, Options{})
		require.ErrorIs(t, err, neterr.ErrNetwork)
		require.Equal(t, neterr.StepBroadcast, neterr.StepOf(err))
	})
	t.Run("node timeout", func(t *testing.T) {
		node.FailBroadcasts(nearrpc.NewError(nearrpc.CauseTimeoutError, "Timeout"))
		defer node.FailBroadcasts(nil)
		res, err := SubmitFunctionCall(ctx, cfg, config.TestNet, alice.id, alice.private, payload, Options{})
		require.NoError(t, err)
		require.Equal(t, StatusIndeterminate, res.Status)
	})
	t.Run("legacy node timeout", func(t *testing.T) {
		node.FailBroadcasts(&nearrpc.Error{Code: -32000, Message: "Server error", Data: json.RawMessage(`"Timeout"`)})
		defer node.FailBroadcasts(nil)
		res, err := SubmitFunctionCall(ctx, cfg, config.TestNet, alice.id, alice.private, payload, Options{})
		require.NoError(t, err)
		require.Equal(t, StatusIndeterminate, res.Status)
		require.NotEmpty(t, res.TransactionHash)
		require.Contains(t, res.Message, "Timeout")
	})
	require.Empty(t, node.Sent())
}

func TestSubmitFunctionCallMalformedStatus(t *testing.T) {
	node, cfg, alice := newTestEnv(t)
	node.ReportStatus(json.RawMessage(`{"SuccessValue":"!!notbase64"}`))

	res, err := SubmitFunctionCall(context.Background(), cfg, config.TestNet, alice.id, alice.private,
		GreetingPayload("hi"), Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	require.Equal(t, StatusUnknown, res.Status)
	require.Equal(t, uint64(testnode.TxGasBurnt+testnode.ReceiptGasBurnt), res.GasBurnt)
	require.Len(t, node.Sent(), 1)
	require.Equal(t, node.Sent()[0].Hash().String(), res.TransactionHash)
	out, ok := node.Outcome(node.Sent()[0].Hash())
	require.True(t, ok)
	require.Equal(t, out.TransactionOutcome.BlockHash.String(), res.BlockHash)
}

func TestIndeterminateAndReconcile(t *testing.T) {
	node, cfg, alice := newTestEnv(t)
	ctx := context.Background()
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()
	opts := Options{Logger: zaptest.NewLogger(t), Journal: j}

	node.DropBroadcasts(1)
	res, err := SubmitFunctionCall(ctx, cfg, config.TestNet, alice.id, alice.private, GreetingPayload("lost"), opts)
	require.NoError(t, err)
	require.Equal(t, StatusIndeterminate, res.Status)
	require.NotEmpty(t, res.Message)
	require.Zero(t, res.GasBurnt)

	// The transaction was executed nevertheless.
	require.Equal(t, "lost", node.Greeting("greeter.testnet"))
	sent := node.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, sent[0].Hash().String(), res.TransactionHash)
	require.Equal(t, sent[0].Transaction.BlockHash.String(), res.BlockHash)

	entries, err := j.List(config.TestNet)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, sent[0].Hash(), entries[0].Hash)
	require.Equal(t, alice.id, entries[0].SignerID)
	require.Equal(t, uint64(11), entries[0].Nonce)
	require.Equal(t, "set_greeting", entries[0].Method)

	h, err := util.CryptoHashDecodeString(res.TransactionHash)
	require.NoError(t, err)
	st, err := TxStatus(ctx, cfg, config.TestNet, h, alice.id, opts)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, st.Status)
	require.NotZero(t, st.GasBurnt)

	_, err = TxStatus(ctx, cfg, config.TestNet, util.CryptoHash{1}, alice.id, opts)
	require.ErrorIs(t, err, ErrNotFound)

	// An entry never sent stays in the journal.
	require.NoError(t, j.Put(journal.Entry{Hash: util.CryptoHash{1}, Network: config.TestNet, SignerID: alice.id, Time: time.Now()}))
	rec, err := Reconcile(ctx, cfg, config.TestNet, j, opts)
	require.NoError(t, err)
	require.Len(t, rec, 2)
	var resolved, pending int
	for _, r := range rec {
		require.NoError(t, r.Err)
		if r.Result != nil {
			resolved++
			require.Equal(t, StatusSuccess, r.Result.Status)
			require.Equal(t, sent[0].Hash(), r.Entry.Hash)
		} else {
			pending++
		}
	}
	require.Equal(t, 1, resolved)
	require.Equal(t, 1, pending)

	entries, err = j.List("")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, util.CryptoHash{1}, entries[0].Hash)

	rec, err = Reconcile(ctx, cfg, config.MainNet, j, opts)
	require.NoError(t, err)
	require.Empty(t, rec)
}

func TestStaleNonceRejected(t *testing.T) {
	node, cfg, alice := newTestEnv(t)
	ctx := context.Background()

	c, err := rpcclient.New(node.URL(), rpcclient.Options{})
	require.NoError(t, err)
	defer c.Close()
	a, err := actor.NewSimple(c, alice.id, alice.private)
	require.NoError(t, err)

	n := cfg.Networks[config.TestNet]
	tx1, err := a.MakeCall(ctx, n.ContractID, "set_greeting", map[string]string{"greeting": "one"})
	require.NoError(t, err)
	tx2, err := a.MakeCall(ctx, n.ContractID, "set_greeting", map[string]string{"greeting": "two"})
	require.NoError(t, err)
	require.Equal(t, tx1.Transaction.Nonce, tx2.Transaction.Nonce)

	res, err := a.Send(ctx, tx1)
	require.NoError(t, err)
	require.Equal(t, actor.StateSuccess, res.State)

	_, err = a.Send(ctx, tx2)
	require.ErrorIs(t, err, neterr.ErrNetwork)
	require.Equal(t, neterr.StepBroadcast, neterr.StepOf(err))
	var rpcErr *nearrpc.Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, nearrpc.CauseInvalidTransaction, rpcErr.CauseName())
	require.Equal(t, "one", node.Greeting(n.ContractID))

	// Resending the included transaction returns its outcome.
	res, err = a.Send(ctx, tx1)
	require.NoError(t, err)
	require.Equal(t, actor.StateSuccess, res.State)
	require.Len(t, node.Sent(), 1)
}

func TestConcurrentSubmissions(t *testing.T) {
	node, cfg, _ := newTestEnv(t)
	var accounts []testAccount
	for i := 0; i < 5; i++ {
		acc := newTestAccount(t, fmt.Sprintf("user%d.testnet", i), byte(10+i))
		node.AddKey(acc.id, acc.pub, uint64(100*i))
		accounts = append(accounts, acc)
	}

	var (
		wg      sync.WaitGroup
		results = make([]*TransactionResult, len(accounts))
		errs    = make([]error, len(accounts))
	)
	for i, acc := range accounts {
		wg.Add(1)
		go func(i int, acc testAccount) {
			defer wg.Done()
			results[i], errs[i] = SubmitFunctionCall(context.Background(), cfg, config.TestNet, acc.id, acc.private,
				GreetingPayload(acc.id), Options{})
		}(i, acc)
	}
	wg.Wait()
	for i, acc := range accounts {
		require.NoError(t, errs[i])
		require.Equal(t, StatusSuccess, results[i].Status)
		nonce, ok := node.Nonce(acc.id, acc.pub)
		require.True(t, ok)
		require.Equal(t, uint64(100*i+1), nonce)
	}
	require.Len(t, node.Sent(), len(accounts))
}

func TestViewFunction(t *testing.T) {
	_, cfg, _ := newTestEnv(t)

	res, err := ViewFunction(context.Background(), cfg, config.TestNet, Payload{Method: "get_greeting"}, Options{})
	require.NoError(t, err)
	require.Equal(t, `"Hello"`, string(res))

	_, err = ViewFunction(context.Background(), cfg, config.TestNet, Payload{Method: "get_farewell"}, Options{})
	require.ErrorIs(t, err, neterr.ErrNetwork)
	var rpcErr *nearrpc.Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, nearrpc.CauseContractExecution, rpcErr.CauseName())

	_, err = ViewFunction(context.Background(), cfg, config.TestNet, Payload{}, Options{})
	require.ErrorIs(t, err, neterr.ErrInvalidInput)
}

func TestSubmitWithProvider(t *testing.T) {
	node, cfg, alice := newTestEnv(t)

	var calls int
	res, err := Submit(context.Background(), cfg, config.TestNet, actor.Account{
		ID:        alice.id,
		PublicKey: alice.pub,
		Key: func() (*keys.PrivateKey, error) {
			calls++
			return keys.NewPrivateKeyFromString(alice.private)
		},
	}, GreetingPayload("provided"), Options{})
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, 1, calls)
	require.Equal(t, "provided", node.Greeting("greeter.testnet"))
}
