/*
Package wallet contains commands inspecting stored account credentials.
*/
package wallet

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/nspcc-dev/near-go/cli/cmdargs"
	"github.com/nspcc-dev/near-go/cli/options"
	"github.com/nspcc-dev/near-go/pkg/wallet"
	"github.com/urfave/cli"
)

var credentialsDirFlag = cli.StringFlag{
	Name:  "credentials-dir",
	Usage: "credentials root (CredentialsPath setting or ~/" + wallet.DefaultDir + " by default)",
}

// NewCommands returns 'wallet' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "wallet",
		Usage: "inspect stored account credentials",
		Subcommands: []cli.Command{
			{
				Name:      "list",
				Usage:     "list accounts having stored keys",
				UsageText: "neargo wallet list [--credentials-dir <path>] [--network <name>] [--json]",
				Action:    listCredentials,
				Flags: []cli.Flag{
					options.ConfigFile,
					options.Debug,
					credentialsDirFlag,
					cli.StringFlag{
						Name:  "network, n",
						Usage: "only list credentials of this network",
					},
					cli.BoolFlag{
						Name:  "json",
						Usage: "print credentials as JSON (keys are never printed)",
					},
				},
			},
			{
				Name:      "dump",
				Usage:     "check a credentials file and print its public part",
				UsageText: "neargo wallet dump <file>",
				Action:    dumpCredential,
			},
		},
	}}
}

func listCredentials(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log, _, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.Application)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	root, err := options.GetCredentialsRoot(ctx, cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	creds, err := wallet.Discover(root, log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if network := strings.ToLower(ctx.String("network")); network != "" {
		var filtered []*wallet.Credential
		for _, c := range creds {
			if c.Network == network {
				filtered = append(filtered, c)
			}
		}
		creds = filtered
	}

	if ctx.Bool("json") {
		if creds == nil {
			creds = []*wallet.Credential{}
		}
		b, err := json.MarshalIndent(creds, "", "  ")
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprintln(ctx.App.Writer, string(b))
		return nil
	}
	tw := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	for _, c := range creds {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Network, c.AccountID, c.PublicKey)
	}
	return tw.Flush()
}

func dumpCredential(ctx *cli.Context) error {
	args, exitErr := cmdargs.GetExactly(ctx, 1, "credentials file")
	if exitErr != nil {
		return exitErr
	}
	c, err := wallet.ReadCredentialFile(args[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(b))
	return nil
}
