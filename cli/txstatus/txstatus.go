/*
Package txstatus contains commands looking up transactions and resolving
submissions with unknown outcome recorded in the journal.
*/
package txstatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/nspcc-dev/near-go/cli/cmdargs"
	"github.com/nspcc-dev/near-go/cli/flags"
	"github.com/nspcc-dev/near-go/cli/options"
	"github.com/nspcc-dev/near-go/pkg/config"
	"github.com/nspcc-dev/near-go/pkg/host"
	"github.com/nspcc-dev/near-go/pkg/journal"
	"github.com/nspcc-dev/near-go/pkg/services/metrics"
	"github.com/nspcc-dev/near-go/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var journalFlag = cli.StringFlag{
	Name:  "journal, j",
	Usage: "journal file (JournalPath setting if not set)",
}

// NewCommands returns 'tx' command.
func NewCommands() []cli.Command {
	var (
		statusFlags    = append(options.Common(), flags.AccountFlag{Name: "account, a", Usage: "transaction signer"})
		reconcileFlags = append(options.Common(), journalFlag, cli.DurationFlag{
			Name:  "watch, w",
			Usage: "repeat with the given interval until the journal is empty or the process is interrupted",
		})
		pendingFlags = []cli.Flag{options.ConfigFile, options.Network, journalFlag}
	)
	return []cli.Command{{
		Name:  "tx",
		Usage: "look up transactions",
		Subcommands: []cli.Command{
			{
				Name:      "status",
				Usage:     "print the outcome of a transaction",
				UsageText: "neargo tx status -a <signer> [--network <name>] [--config-file <path>] <hash>",
				Action:    txStatus,
				Flags:     flags.MarkRequired(statusFlags, "account, a"),
			},
			{
				Name:      "reconcile",
				Usage:     "look up submissions with unknown outcome recorded in the journal",
				UsageText: "neargo tx reconcile [--journal <file>] [--watch <interval>] [--network <name>] [--config-file <path>]",
				Description: `Every journal entry of the network is looked up by its hash. Found
   transactions are printed and removed from the journal, entries still
   unknown to the node are kept. With --watch the process is repeated
   until nothing is left, Prometheus metrics are served meanwhile if
   they're enabled in the configuration.
`,
				Action: reconcile,
				Flags:  reconcileFlags,
			},
			{
				Name:      "pending",
				Usage:     "list submissions with unknown outcome",
				UsageText: "neargo tx pending [--journal <file>] [--network <name>]",
				Action:    listPending,
				Flags:     pendingFlags,
			},
		},
	}}
}

func txStatus(ctx *cli.Context) error {
	args, exitErr := cmdargs.GetExactly(ctx, 1, "transaction hash")
	if exitErr != nil {
		return exitErr
	}
	h, err := util.CryptoHashDecodeString(args[0])
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid transaction hash: %w", err), 1)
	}
	cfg, log, cfgErr := options.GetConfigAndLogger(ctx)
	if cfgErr != nil {
		return cfgErr
	}
	defer func() { _ = log.Sync() }()

	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()

	res, err := host.TxStatus(gctx, cfg, options.GetNetwork(ctx), h, flags.AccountFromContext(ctx, "account"), host.Options{Logger: log})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(b))
	return nil
}

func openJournal(ctx *cli.Context, cfg config.Config) (*journal.Journal, error) {
	if path := ctx.String("journal"); path != "" {
		cfg.Application.JournalPath = path
	}
	if cfg.Application.JournalPath == "" {
		return nil, errors.New("no journal configured, set JournalPath or use --journal")
	}
	return options.OpenJournal(cfg)
}

func listPending(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	j, err := openJournal(ctx, cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer j.Close()

	entries, err := j.List(options.GetNetwork(ctx))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	tw := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", e.Hash, e.SignerID, e.Method, e.Nonce, e.Time.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func reconcile(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, log, exitErr := options.GetConfigAndLogger(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer func() { _ = log.Sync() }()

	j, err := openJournal(ctx, cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer j.Close()

	var (
		network = options.GetNetwork(ctx)
		opts    = host.Options{Logger: log}
		watch   = ctx.Duration("watch")
	)
	if watch <= 0 {
		gctx, cancel := options.GetTimeoutContext(ctx)
		defer cancel()
		_, err := reconcileOnce(gctx, ctx.App.Writer, cfg, network, j, opts)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		return nil
	}

	if cfg.Application.Prometheus.Enabled {
		prometheus := metrics.NewPrometheusService(cfg.Application.Prometheus, log)
		if err := prometheus.Start(); err != nil {
			return cli.NewExitError(fmt.Errorf("failed to start metrics service: %w", err), 1)
		}
		defer prometheus.ShutDown()
	}
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(watch)
	defer ticker.Stop()
	for {
		gctx, cancel := context.WithTimeout(sigCtx, ctx.Duration("timeout"))
		left, err := reconcileOnce(gctx, ctx.App.Writer, cfg, network, j, opts)
		cancel()
		if err != nil && sigCtx.Err() == nil {
			log.Warn("reconciliation failed", zap.Error(err))
		}
		if err == nil && left == 0 {
			log.Info("nothing left to reconcile")
			return nil
		}
		select {
		case <-sigCtx.Done():
			log.Info("interrupted", zap.Int("pending", left))
			return nil
		case <-ticker.C:
		}
	}
}

// reconcileOnce prints the state of every entry and returns the number of
// entries left in the journal.
func reconcileOnce(ctx context.Context, w io.Writer, cfg config.Config, network string, j *journal.Journal, opts host.Options) (int, error) {
	res, err := host.Reconcile(ctx, cfg, network, j, opts)
	var left int
	for _, r := range res {
		switch {
		case r.Err != nil:
			left++
			fmt.Fprintf(w, "%s\terror: %s\n", r.Entry.Hash, r.Err)
		case r.Result == nil:
			left++
			fmt.Fprintf(w, "%s\tpending\n", r.Entry.Hash)
		default:
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Entry.Hash, r.Result.Status, r.Result.BlockHash)
		}
	}
	return left, err
}
