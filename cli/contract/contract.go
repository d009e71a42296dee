/*
Package contract contains commands calling contract methods: generic view
calls and function calls plus greeter contract shortcuts.
*/
package contract

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nspcc-dev/near-go/cli/cmdargs"
	"github.com/nspcc-dev/near-go/cli/flags"
	"github.com/nspcc-dev/near-go/cli/options"
	"github.com/nspcc-dev/near-go/pkg/host"
	"github.com/nspcc-dev/near-go/pkg/rpcclient/actor"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// Exit codes of commands sending transactions.
const (
	// ExitFailed is returned for Failed and Unknown outcomes.
	ExitFailed = 1
	// ExitIndeterminate is returned when the transaction may or may not be
	// executed, it must be looked up before retrying.
	ExitIndeterminate = 2
)

var (
	methodFlag = cli.StringFlag{
		Name:  "method, m",
		Usage: "contract method to call",
	}
	argsFlag = cli.StringFlag{
		Name:  "args",
		Usage: "method arguments as a JSON object ({} if not set)",
	}
	txFlags = []cli.Flag{
		cli.Uint64Flag{
			Name:  "gas, g",
			Usage: "gas to attach (configured value or 30 TGas if not set)",
		},
		flags.AmountFlag{
			Name:  "deposit",
			Usage: "deposit to attach in NEAR (configured value if not set)",
		},
	}
)

// NewCommands returns 'contract' and 'greeting' commands.
func NewCommands() []cli.Command {
	var (
		viewFlags   = options.Common()
		invokeFlags = append(options.Common(), options.Account...)
	)
	invokeFlags = append(invokeFlags, txFlags...)
	return []cli.Command{{
		Name:  "contract",
		Usage: "call contract methods",
		Subcommands: []cli.Command{
			{
				Name:      "call",
				Usage:     "call a view method, nothing is sent to the network",
				UsageText: "neargo contract call -m <method> [--args <json>] [--network <name>] [--config-file <path>] [--rpc-endpoint <url>] [--contract <id>]",
				Action:    callView,
				Flags:     flags.MarkRequired(append(viewFlags, methodFlag, argsFlag), "method, m"),
			},
			{
				Name:      "invoke",
				Usage:     "send a transaction calling a method and wait for its outcome",
				UsageText: "neargo contract invoke -m <method> [--args <json>] -a <account> [--gas <gas>] [--deposit <NEAR>] [--network <name>] [--config-file <path>]",
				Description: `Signs and sends a function call transaction using the key of the
   account and prints the outcome as JSON. The key is taken from
   --private-key, --credentials file, the credentials directory or is
   asked for interactively.

   Exit code is 0 on success, 1 when the transaction failed or wasn't sent
   and 2 when its fate is unknown (look it up with 'tx status' before
   retrying).
`,
				Action: invoke,
				Flags:  flags.MarkRequired(append(invokeFlags, methodFlag, argsFlag), "method, m"),
			},
		},
	}, {
		Name:  "greeting",
		Usage: "get or set the greeting of the greeter contract",
		Subcommands: []cli.Command{
			{
				Name:      "get",
				Usage:     "print the current greeting",
				UsageText: "neargo greeting get [--network <name>] [--config-file <path>]",
				Action:    getGreeting,
				Flags:     viewFlags,
			},
			{
				Name:      "set",
				Usage:     "change the greeting",
				UsageText: "neargo greeting set -a <account> [--network <name>] [--config-file <path>] <text>",
				Action:    setGreeting,
				Flags:     invokeFlags,
			},
		},
	}}
}

func argsFromContext(ctx *cli.Context) any {
	if a := ctx.String("args"); a != "" {
		return a
	}
	return nil
}

func callView(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, log, exitErr := options.GetConfigAndLogger(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer func() { _ = log.Sync() }()

	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()

	res, err := host.ViewFunction(gctx, cfg, options.GetNetwork(ctx), host.Payload{
		Method: ctx.String("method"),
		Args:   argsFromContext(ctx),
	}, host.Options{Logger: log})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(res))
	return nil
}

func getGreeting(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, log, exitErr := options.GetConfigAndLogger(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer func() { _ = log.Sync() }()

	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()

	text, err := host.QueryContract(gctx, cfg, options.GetNetwork(ctx), host.Options{Logger: log})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, text)
	return nil
}

func invoke(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	return submit(ctx, host.Payload{
		Method: ctx.String("method"),
		Args:   argsFromContext(ctx),
	})
}

func setGreeting(ctx *cli.Context) error {
	args, err := cmdargs.GetExactly(ctx, 1, "greeting text")
	if err != nil {
		return err
	}
	return submit(ctx, host.GreetingPayload(args[0]))
}

func submit(ctx *cli.Context, payload host.Payload) error {
	cfg, log, exitErr := options.GetConfigAndLogger(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer func() { _ = log.Sync() }()

	if ctx.IsSet("gas") {
		cfg.Transaction.Gas = ctx.Uint64("gas")
	}
	if d, ok := flags.AmountFromContext(ctx, "deposit"); ok {
		cfg.Transaction.Deposit = d
	}
	network := options.GetNetwork(ctx)
	cred, err := options.GetCredential(ctx, cfg, network, log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	j, err := options.OpenJournal(cfg)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("failed to open journal: %w", err), 1)
	}
	if j != nil {
		defer j.Close()
	}

	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()

	log.Debug("submitting", zap.Stringer("credential", cred), zap.String("method", payload.Method))
	res, err := host.Submit(gctx, cfg, network, actor.Account{
		ID:  cred.AccountID,
		Key: cred.PrivateKey,
	}, payload, host.Options{Logger: log, Journal: j})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := printJSON(ctx.App.Writer, res); err != nil {
		return cli.NewExitError(err, 1)
	}
	switch res.Status {
	case host.StatusSuccess:
		return nil
	case host.StatusIndeterminate:
		return cli.NewExitError(fmt.Sprintf("transaction %s fate is unknown, check it with 'tx status' before retrying", res.TransactionHash), ExitIndeterminate)
	default:
		return cli.NewExitError(fmt.Sprintf("transaction %s: %s", res.TransactionHash, res.Status), ExitFailed)
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
