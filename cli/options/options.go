/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nspcc-dev/near-go/cli/flags"
	"github.com/nspcc-dev/near-go/cli/input"
	"github.com/nspcc-dev/near-go/pkg/config"
	"github.com/nspcc-dev/near-go/pkg/journal"
	"github.com/nspcc-dev/near-go/pkg/services/metrics"
	"github.com/nspcc-dev/near-go/pkg/wallet"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTimeout is the default timeout of a command, it covers waiting for
// the transaction execution.
const DefaultTimeout = time.Minute

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// Network is a flag for choosing the network to operate on.
var Network = cli.StringFlag{
	Name:  "network, n",
	Value: config.TestNet,
	Usage: "network to use, one of the configured ones (mainnet and testnet usually)",
}

// RPC is a set of flags used for RPC connections (endpoint and timeout).
var RPC = []cli.Flag{
	cli.StringFlag{
		Name:  RPCEndpointFlag + ", r",
		Usage: "RPC node address (overrides the network configuration)",
	},
	cli.DurationFlag{
		Name:  "timeout, s",
		Value: DefaultTimeout,
		Usage: "Timeout for the operation",
	},
}

// Contract is a flag overriding the contract of the network.
var Contract = cli.StringFlag{
	Name:  "contract",
	Usage: "contract account ID (overrides the network configuration)",
}

// ConfigFile is a flag for commands that use the configuration file.
var ConfigFile = cli.StringFlag{
	Name:  "config-file, c",
	Usage: "path to the configuration file (" + config.DefaultConfigPath + " is used if it exists)",
}

// Debug is a flag for commands that allow debug logging.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging (LOTS of output, overrides configuration)",
}

// MetricsFile is a global flag to dump metrics after the command.
var MetricsFile = cli.StringFlag{
	Name:  "metrics-file",
	Usage: "write metrics to the file in Prometheus text format when the command finishes",
}

// Account is a set of flags selecting the signer and its key.
var Account = []cli.Flag{
	flags.AccountFlag{
		Name:  "account, a",
		Usage: "signer account ID",
	},
	cli.StringFlag{
		Name:  "credentials",
		Usage: "credentials file to take the key from",
	},
	cli.StringFlag{
		Name:  "credentials-dir",
		Usage: "credentials root to look for the account key in (~/" + wallet.DefaultDir + " by default)",
	},
	cli.StringFlag{
		Name:  "private-key",
		Usage: "private key to sign with, it's visible to other users of the system, so prefer credential files or the prompt",
	},
}

// Common is a set of flags used by every command talking to the network.
func Common() []cli.Flag {
	return append([]cli.Flag{ConfigFile, Network, Contract, Debug}, RPC...)
}

var errNoAccount = errors.New("no account given, use option '--account' or '-a'")

// GetNetwork returns the network name from the context, testnet by default.
func GetNetwork(ctx *cli.Context) string {
	if n := strings.ToLower(ctx.String("network")); n != "" {
		return n
	}
	return config.TestNet
}

// GetTimeoutContext returns a context.Context with the default or a user-set timeout.
func GetTimeoutContext(ctx *cli.Context) (context.Context, func()) {
	dur := ctx.Duration("timeout")
	if dur == 0 {
		dur = DefaultTimeout
	}
	return context.WithTimeout(context.Background(), dur)
}

// GetConfigFromContext loads the configuration from the file given in the
// context (or the default one if it exists) and applies network overrides
// (RPC endpoint and contract) to the selected network.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		cfg        = config.Default()
		configFile = ctx.String("config-file")
		err        error
	)
	if configFile == "" {
		if _, err := os.Stat(config.DefaultConfigPath); err == nil {
			configFile = config.DefaultConfigPath
		}
	}
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
		if err != nil {
			return config.Config{}, err
		}
	}
	if cfg.Networks == nil {
		cfg.Networks = make(map[string]config.Network)
	}
	var (
		name = GetNetwork(ctx)
		n    = cfg.Networks[name]
	)
	if endpoint := ctx.String(RPCEndpointFlag); endpoint != "" {
		n.RPCURL = endpoint
	}
	if contract := ctx.String("contract"); contract != "" {
		n.ContractID = contract
	}
	if n != (config.Network{}) {
		cfg.Networks[name] = n
	}
	return cfg, nil
}

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
// Logs go to stderr otherwise, stdout is left for command output.
func HandleLoggingParams(debug bool, cfg config.Application) (*zap.Logger, *zap.AtomicLevel, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	if cfg.LogEncoding != "" {
		cc.Encoding = cfg.LogEncoding
	}
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("could not create dir for logger: %w", err)
		}
		cc.OutputPaths = []string{logPath}
	}

	log, err := cc.Build()
	return log, &cc.Level, err
}

// GetCredential returns the signing credential for the network. The key is
// taken from the first source available: the --private-key flag, the
// --credentials file, the credentials directory (--credentials-dir,
// CredentialsPath setting or ~/.near-credentials) and finally the prompt.
func GetCredential(ctx *cli.Context, cfg config.Config, network string, log *zap.Logger) (*wallet.Credential, error) {
	accountID := flags.AccountFromContext(ctx, "account")
	if pk := ctx.String("private-key"); pk != "" {
		if accountID == "" {
			return nil, errNoAccount
		}
		return wallet.NewCredential(accountID, pk)
	}
	if path := ctx.String("credentials"); path != "" {
		c, err := wallet.ReadCredentialFile(path)
		if err != nil {
			return nil, err
		}
		if accountID != "" && c.AccountID != accountID {
			return nil, fmt.Errorf("%s contains the key of %s, not %s", path, c.AccountID, accountID)
		}
		return c, nil
	}

	root, err := GetCredentialsRoot(ctx, cfg)
	if err == nil {
		var creds []*wallet.Credential
		creds, err = wallet.Discover(root, log)
		if err == nil {
			var c *wallet.Credential
			c, err = wallet.Find(creds, network, accountID)
			if err == nil {
				log.Debug("using stored credential", zap.Stringer("credential", c), zap.String("path", c.Path))
				return c, nil
			}
		}
	}
	if accountID == "" {
		return nil, fmt.Errorf("%w (%s)", errNoAccount, err)
	}
	log.Debug("no stored credential", zap.String("account", accountID), zap.Error(err))
	return readCredential(ctx, accountID)
}

// GetCredentialsRoot returns the credentials directory: --credentials-dir,
// CredentialsPath setting or ~/.near-credentials.
func GetCredentialsRoot(ctx *cli.Context, cfg config.Config) (string, error) {
	if root := ctx.String("credentials-dir"); root != "" {
		return root, nil
	}
	if cfg.Application.CredentialsPath != "" {
		return cfg.Application.CredentialsPath, nil
	}
	return wallet.DefaultRoot()
}

func readCredential(ctx *cli.Context, accountID string) (*wallet.Credential, error) {
	key, err := input.ReadPassword(ctx.App.ErrWriter, fmt.Sprintf("Enter the private key of %s > ", accountID))
	if err != nil {
		return nil, fmt.Errorf("error reading private key: %w", err)
	}
	return wallet.NewCredential(accountID, strings.TrimSpace(key))
}

// OpenJournal opens the journal of indeterminate submissions if it's
// configured, nil is returned otherwise.
func OpenJournal(cfg config.Config) (*journal.Journal, error) {
	if cfg.Application.JournalPath == "" {
		return nil, nil
	}
	return journal.Open(cfg.Application.JournalPath)
}

// WriteMetrics writes metrics to the file given with --metrics-file, if any.
func WriteMetrics(ctx *cli.Context) error {
	path := ctx.GlobalString("metrics-file")
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path, nil); err != nil {
		return cli.NewExitError(fmt.Errorf("failed to write metrics: %w", err), 1)
	}
	return nil
}

// GetConfigAndLogger combines GetConfigFromContext with HandleLoggingParams.
func GetConfigAndLogger(ctx *cli.Context) (config.Config, *zap.Logger, cli.ExitCoder) {
	cfg, err := GetConfigFromContext(ctx)
	if err != nil {
		return config.Config{}, nil, cli.NewExitError(err, 1)
	}
	log, _, err := HandleLoggingParams(ctx.Bool("debug"), cfg.Application)
	if err != nil {
		return config.Config{}, nil, cli.NewExitError(err, 1)
	}
	return cfg, log, nil
}
