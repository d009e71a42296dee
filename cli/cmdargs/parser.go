/*
Package cmdargs contains helper functions for positional command arguments.
*/
package cmdargs

import (
	"fmt"

	"github.com/urfave/cli"
)

// EnsureNone returns an error if there are any positional arguments present.
// It can be used to check for them in commands that don't accept arguments.
func EnsureNone(ctx *cli.Context) *cli.ExitError {
	if ctx.Args().Present() {
		return cli.NewExitError("additional arguments given while this command expects none", 1)
	}
	return nil
}

// GetExactly returns exactly n positional arguments, what describes them
// in the error message.
func GetExactly(ctx *cli.Context, n int, what string) ([]string, *cli.ExitError) {
	if ctx.NArg() != n {
		return nil, cli.NewExitError(fmt.Errorf("%s expected, got %d argument(s)", what, ctx.NArg()), 1)
	}
	return ctx.Args(), nil
}
