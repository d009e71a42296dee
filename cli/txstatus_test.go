package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/near-go/cli/contract"
	"github.com/nspcc-dev/near-go/pkg/host"
	"github.com/stretchr/testify/require"
)

func TestIndeterminateSubmission(t *testing.T) {
	e := newExecutor(t, true)

	e.Node.DropBroadcasts(1)
	e.RunWithErrorCode(t, contract.ExitIndeterminate, "neargo", "greeting", "set", "-c", e.ConfigFile, "-a", validatorAccount, "lost")
	var res host.TransactionResult
	e.decodeJSON(t, &res)
	require.Equal(t, host.StatusIndeterminate, res.Status)
	require.NotEmpty(t, res.TransactionHash)
	require.Equal(t, "lost", e.Node.Greeting(greeterContract))

	e.Run(t, "neargo", "tx", "pending", "-c", e.ConfigFile)
	e.checkNextLine(t, "^"+res.TransactionHash+`\s+alice\.testnet\s+set_greeting\s+11\s+`)
	e.checkEOF(t)

	e.Run(t, "neargo", "tx", "status", "-c", e.ConfigFile, "-a", validatorAccount, res.TransactionHash)
	var found host.TransactionResult
	e.decodeJSON(t, &found)
	require.Equal(t, host.StatusSuccess, found.Status)
	require.Equal(t, res.TransactionHash, found.TransactionHash)
	require.NotZero(t, found.GasBurnt)

	e.Run(t, "neargo", "tx", "reconcile", "-c", e.ConfigFile)
	e.checkNextLine(t, "^"+res.TransactionHash+`\tSuccess\t`+found.BlockHash+"$")
	e.checkEOF(t)

	e.Run(t, "neargo", "tx", "pending", "-c", e.ConfigFile)
	e.checkEOF(t)

	// Nothing to do, the loop ends immediately.
	e.Run(t, "neargo", "tx", "reconcile", "-c", e.ConfigFile, "--watch", "10ms")
	e.checkEOF(t)
}

func TestTxStatusErrors(t *testing.T) {
	e := newExecutor(t, true)

	t.Run("no hash", func(t *testing.T) {
		e.RunWithError(t, "neargo", "tx", "status", "-c", e.ConfigFile, "-a", validatorAccount)
	})
	t.Run("bad hash", func(t *testing.T) {
		e.RunWithError(t, "neargo", "tx", "status", "-c", e.ConfigFile, "-a", validatorAccount, "not-a-hash")
	})
	t.Run("no signer", func(t *testing.T) {
		require.Error(t, e.run("neargo", "tx", "status", "-c", e.ConfigFile, "11111111111111111111111111111111"))
	})
	t.Run("unknown", func(t *testing.T) {
		e.RunWithError(t, "neargo", "tx", "status", "-c", e.ConfigFile, "-a", validatorAccount, "11111111111111111111111111111111")
	})
	t.Run("no journal", func(t *testing.T) {
		cfg := filepath.Join(e.Dir, "nojournal.yml")
		require.NoError(t, os.WriteFile(cfg, []byte("Networks:\n  testnet:\n    RPCURL: "+e.Node.URL()+"\n    ContractID: "+greeterContract+"\n"), 0o600))
		e.RunWithError(t, "neargo", "tx", "reconcile", "-c", cfg)
		e.RunWithError(t, "neargo", "tx", "pending", "-c", cfg)
	})
}

func TestMetricsFile(t *testing.T) {
	e := newExecutor(t, true)
	path := filepath.Join(e.Dir, "metrics.prom")

	e.Run(t, "neargo", "--metrics-file", path, "greeting", "get", "-c", e.ConfigFile)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "neargo_rpc_client_call_time")

	require.NoError(t, os.Remove(path))
	e.RunWithError(t, "neargo", "--metrics-file", path, "greeting", "get", "-c", e.ConfigFile, "--network", "mainnet")
	_, err = os.Stat(path)
	require.NoError(t, err)
}
