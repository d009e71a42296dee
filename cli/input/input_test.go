package input

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

func TestReadFromTerminal(t *testing.T) {
	in := bytes.NewBufferString("alice.testnet\red25519:secret\r")
	Terminal = term.NewTerminal(ReadWriter{Reader: in, Writer: io.Discard}, "")
	defer func() { Terminal = nil }()

	line, err := ReadLine(io.Discard, "Account > ")
	require.NoError(t, err)
	require.Equal(t, "alice.testnet", line)

	pass, err := ReadPassword(io.Discard, "Key > ")
	require.NoError(t, err)
	require.Equal(t, "ed25519:secret", pass)
}
