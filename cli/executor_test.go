package main

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/near-go/cli/app"
	"github.com/nspcc-dev/near-go/cli/input"
	"github.com/nspcc-dev/near-go/internal/testnode"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

const (
	validatorAccount = "alice.testnet"
	greeterContract  = "greeter.testnet"
	initialGreeting  = "Hello"
	initialNonce     = 10
)

var validatorSeed = bytes.Repeat([]byte{7}, ed25519.SeedSize)

// executor represents context for a test instance.
// It can be safely used in multiple tests, but not in parallel.
type executor struct {
	// CLI is a cli application to test.
	CLI *cli.App
	// Node is a fake NEAR node (can be empty).
	Node *testnode.Node
	// Dir contains configuration, credentials and journal files.
	Dir string
	// ConfigFile is the configuration pointing to Node.
	ConfigFile string
	// PrivateKey is the textual key of validatorAccount.
	PrivateKey string
	// PublicKey is the access key of validatorAccount.
	PublicKey *keys.PublicKey
	// Out contains command output.
	Out *bytes.Buffer
	// Err contains command errors.
	Err *bytes.Buffer
	// In contains command input.
	In *bytes.Buffer
}

func newExecutor(t *testing.T, needNode bool) *executor {
	e := &executor{
		CLI: app.New(),
		Dir: t.TempDir(),
		Out: bytes.NewBuffer(nil),
		Err: bytes.NewBuffer(nil),
		In:  bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err

	priv := ed25519.NewKeyFromSeed(validatorSeed)
	pub, err := keys.NewPublicKeyFromBytes(keys.ED25519, priv.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	e.PublicKey = pub
	e.PrivateKey = "ed25519:" + base58.Encode(priv)
	e.writeCredential(t, "testnet", validatorAccount, e.PrivateKey)

	rpcURL := "http://127.0.0.1:1"
	if needNode {
		e.Node = testnode.New(t)
		e.Node.Deploy(greeterContract, initialGreeting)
		e.Node.AddKey(validatorAccount, pub, initialNonce)
		rpcURL = e.Node.URL()
	}
	e.ConfigFile = filepath.Join(e.Dir, "neargo.yml")
	cfg := fmt.Sprintf(`Networks:
  testnet:
    RPCURL: %q
    ContractID: %s
Transaction:
  Deposit: "0"
Application:
  LogLevel: error
  CredentialsPath: %q
  JournalPath: %q
`, rpcURL, greeterContract, filepath.Join(e.Dir, "credentials"), filepath.Join(e.Dir, "journal.db"))
	require.NoError(t, os.WriteFile(e.ConfigFile, []byte(cfg), 0o600))

	t.Cleanup(func() {
		e.Close(t)
	})
	return e
}

func (e *executor) writeCredential(t *testing.T, network string, accountID string, privateKey string) string {
	dir := filepath.Join(e.Dir, "credentials", network)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	data, err := json.Marshal(map[string]string{
		"account_id":  accountID,
		"private_key": privateKey,
	})
	require.NoError(t, err)
	path := filepath.Join(dir, accountID+".json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func (e *executor) Close(t *testing.T) {
	input.Terminal = nil
}

func (e *executor) getNextLine(t *testing.T) string {
	line, err := e.Out.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

func (e *executor) checkNextLine(t *testing.T, expected string) {
	line := e.getNextLine(t)
	e.checkLine(t, line, expected)
}

func (e *executor) checkLine(t *testing.T, line, expected string) {
	require.Regexp(t, expected, line)
}

func (e *executor) checkEOF(t *testing.T) {
	_, err := e.Out.ReadString('\n')
	require.True(t, errors.Is(err, io.EOF))
}

// decodeJSON decodes the next JSON value from the command output.
func (e *executor) decodeJSON(t *testing.T, v any) {
	require.NoError(t, json.NewDecoder(e.Out).Decode(v))
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that is exits with error.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	e.RunWithErrorCode(t, 1, args...)
}

// RunWithErrorCode runs command and checks that is exits with the given code.
func (e *executor) RunWithErrorCode(t *testing.T, code int, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, code)
}

// Run runs command and checks that there were no errors.
func (e *executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...))
	checkExit(t, ch, 0)
}

func (e *executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	input.Terminal = term.NewTerminal(input.ReadWriter{
		Reader: e.In,
		Writer: io.Discard,
	}, "")
	err := e.CLI.Run(args)
	input.Terminal = nil
	e.In.Reset()
	return err
}
