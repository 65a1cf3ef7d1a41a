// Package cli wires configuration, logging and the grocery controller into
// the grocery command tree.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/grocery/internal/api"
	"github.com/idilsaglam/grocery/internal/config"
	"github.com/idilsaglam/grocery/internal/grocery"
	"github.com/idilsaglam/grocery/internal/ui"
)

// RootOptions holds global flags and what PersistentPreRunE resolves from
// them.
type RootOptions struct {
	EnvFile string
	APIURL  string
	Timeout time.Duration
	Theme   string
	LogFile string
	Strict  bool
	NoDelay bool
	Verbose bool

	cfg      config.Config
	closeLog func() error
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		ui.Fail(err.Error())
	}
	return ExitCode(err)
}

// NewRootCommand creates the root command. Without a subcommand it opens the
// interactive list.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "grocery",
		Short: "A grocery list in your terminal",
		Long: `grocery keeps a shopping list on a JSON items API (json-server style).

Run without a subcommand for the interactive list, or use the subcommands
for one-shot changes. "grocery serve" runs a local store to develop against.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.closeLog != nil {
				return opts.closeLog()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	f := cmd.PersistentFlags()
	f.StringVar(&opts.EnvFile, "env-file", config.DefaultEnvFile, "dotenv file read before the environment")
	f.StringVar(&opts.APIURL, "api-url", config.DefaultAPIURL, "base URL of the items API (env "+config.EnvAPIURL+")")
	f.DurationVar(&opts.Timeout, "timeout", 0, "per-request timeout, 0 for none (env "+config.EnvTimeout+")")
	f.StringVar(&opts.Theme, "theme", config.DefaultTheme, "output theme: classic, neon or mono (env "+config.EnvTheme+")")
	f.StringVar(&opts.LogFile, "log-file", "", "append logs to this file (env "+config.EnvLog+")")
	f.BoolVar(&opts.Strict, "strict", false, "keep items whose delete the store rejected (env "+config.EnvStrict+")")
	f.BoolVar(&opts.NoDelay, "no-delay", false, "skip the pause before the first fetch")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewUICommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// resolve layers .env, environment and explicitly set flags.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return usageError("config: %v", err)
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = o.APIURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.Timeout
	}
	if flags.Changed("theme") {
		cfg.Theme = o.Theme
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.LogFile
	}
	if flags.Changed("strict") {
		cfg.Strict = o.Strict
	}
	cfg.NoDelay = o.NoDelay
	cfg.Verbose = o.Verbose

	if err := cfg.Validate(); err != nil {
		return usageError("config: %v", err)
	}
	o.cfg = cfg

	ui.SetTheme(cfg.Theme)
	ui.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	return nil
}

// logger returns the slog logger for this run. It writes to the log file
// when one is configured, otherwise to w.
func (o *RootOptions) logger(w io.Writer) (*slog.Logger, error) {
	if o.cfg.LogFile != "" {
		f, err := os.OpenFile(o.cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, failure("open log file", err)
		}
		o.closeLog = f.Close
		w = f
	}
	level := slog.LevelInfo
	if o.cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// diagnostics is where one-shot commands log: stderr with --verbose, else
// nowhere, since failures are already reported as the command's error.
func (o *RootOptions) diagnostics(cmd *cobra.Command) io.Writer {
	if o.cfg.Verbose {
		return cmd.ErrOrStderr()
	}
	return io.Discard
}

// newList builds a controller talking to the configured store.
func (o *RootOptions) newList(log *slog.Logger, delay time.Duration) *grocery.List {
	client := api.NewClient(o.cfg.APIURL,
		api.WithTimeout(o.cfg.Timeout),
		api.WithLogger(log))

	policy := grocery.PolicyDefault
	if o.cfg.Strict {
		policy = grocery.PolicyConfirmed
	}
	log.Debug("store", "url", client.BaseURL(), "policy", policy.String())

	return grocery.New(client,
		grocery.WithLogger(log),
		grocery.WithLoadDelay(delay),
		grocery.WithPolicy(policy))
}
