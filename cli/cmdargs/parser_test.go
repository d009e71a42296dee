package cmdargs

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestEnsureNone(t *testing.T) {
	require.Nil(t, EnsureNone(newContext(t)))
	err := EnsureNone(newContext(t, "extra"))
	require.NotNil(t, err)
	require.Equal(t, 1, err.ExitCode())
}

func TestGetExactly(t *testing.T) {
	args, err := GetExactly(newContext(t, "hello"), 1, "greeting text")
	require.Nil(t, err)
	require.Equal(t, []string{"hello"}, args)

	_, err = GetExactly(newContext(t), 1, "greeting text")
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "greeting text expected, got 0 argument(s)")

	_, err = GetExactly(newContext(t, "a", "b"), 1, "greeting text")
	require.NotNil(t, err)
}
