package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalletList(t *testing.T) {
	e := newExecutor(t, false)
	require.NoError(t, os.WriteFile(filepath.Join(e.Dir, "credentials", "testnet", "broken.json"), []byte("{"), 0o600))

	e.Run(t, "neargo", "wallet", "list", "-c", e.ConfigFile)
	e.checkNextLine(t, `^testnet\s+alice\.testnet\s+`+e.PublicKey.String()+`$`)
	e.checkEOF(t)

	e.Run(t, "neargo", "wallet", "list", "-c", e.ConfigFile, "--network", "mainnet")
	e.checkEOF(t)

	e.Run(t, "neargo", "wallet", "list", "-c", e.ConfigFile, "--json")
	require.NotContains(t, e.Out.String(), e.PrivateKey)
	var creds []map[string]string
	e.decodeJSON(t, &creds)
	require.Len(t, creds, 1)
	require.Equal(t, "alice.testnet", creds[0]["account_id"])
	require.Equal(t, "testnet", creds[0]["network"])
	require.Equal(t, e.PublicKey.String(), creds[0]["public_key"])

	t.Run("missing directory", func(t *testing.T) {
		e.RunWithError(t, "neargo", "wallet", "list", "-c", e.ConfigFile, "--credentials-dir", filepath.Join(e.Dir, "nowhere"))
	})
}

func TestWalletDump(t *testing.T) {
	e := newExecutor(t, false)
	path := filepath.Join(e.Dir, "credentials", "testnet", validatorAccount+".json")

	e.Run(t, "neargo", "wallet", "dump", path)
	require.NotContains(t, e.Out.String(), e.PrivateKey)
	var c map[string]string
	require.NoError(t, json.Unmarshal(e.Out.Bytes(), &c))
	require.Equal(t, validatorAccount, c["account_id"])
	require.Equal(t, e.PublicKey.String(), c["public_key"])

	e.RunWithError(t, "neargo", "wallet", "dump")
	e.RunWithError(t, "neargo", "wallet", "dump", filepath.Join(e.Dir, "credentials", "testnet", "missing.json"))
}
