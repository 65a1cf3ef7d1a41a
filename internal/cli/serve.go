package cli

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/grocery/internal/devserver"
	"github.com/idilsaglam/grocery/internal/store/jsonstore"
	"github.com/idilsaglam/grocery/internal/ui"
)

type serveOptions struct {
	Addr string
	Data string
}

// NewServeCommand runs the local items store.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local items store",
		Long: `Serve a json-server compatible /items collection.

Without --data the items only live in memory.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", ":3500", "listen address")
	cmd.Flags().StringVar(&opts.Data, "data", "", "JSON file (or directory) to persist items in")
	return cmd
}

func runServe(cmd *cobra.Command, rootOpts *RootOptions, opts *serveOptions) error {
	// request logs go to stderr even without -v
	log, err := rootOpts.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	srvOpts := []devserver.Option{devserver.WithLogger(log)}
	if opts.Data != "" {
		srvOpts = append(srvOpts, devserver.WithFile(jsonstore.Open(opts.Data)))
	}
	srv, err := devserver.New(srvOpts...)
	if err != nil {
		return failure("serve", err)
	}

	err = srv.ListenAndServe(cmd.Context(), opts.Addr, func(addr net.Addr) {
		ui.OK("serving /items on http://" + addr.String())
	})
	if err != nil {
		return failure("serve", err)
	}
	return nil
}
