package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/near-go/cli/contract"
	"github.com/nspcc-dev/near-go/cli/options"
	"github.com/nspcc-dev/near-go/cli/txstatus"
	"github.com/nspcc-dev/near-go/cli/wallet"
	"github.com/nspcc-dev/near-go/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "NearGo\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a NearGo instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "neargo"
	ctl.Version = config.Version
	ctl.Usage = "Go client calling NEAR smart contracts"
	ctl.ErrWriter = os.Stderr
	ctl.Flags = []cli.Flag{options.MetricsFile}
	ctl.After = options.WriteMetrics
	ctl.ExitErrHandler = func(ctx *cli.Context, err error) {
		// HandleExitCoder exits the process, so After wouldn't be called.
		_ = options.WriteMetrics(ctx)
		cli.HandleExitCoder(err)
	}

	ctl.Commands = append(ctl.Commands, contract.NewCommands()...)
	ctl.Commands = append(ctl.Commands, wallet.NewCommands()...)
	ctl.Commands = append(ctl.Commands, txstatus.NewCommands()...)
	return ctl
}
