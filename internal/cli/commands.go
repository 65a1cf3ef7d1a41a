package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/grocery/internal/grocery"
	"github.com/idilsaglam/grocery/internal/tui"
	"github.com/idilsaglam/grocery/internal/ui"
)

// NewUICommand opens the interactive list.
func NewUICommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "ui",
		Short:         "Open the interactive list (default)",
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, rootOpts)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *RootOptions) error {
	// stderr would scribble over the alternate screen
	log, err := opts.logger(io.Discard)
	if err != nil {
		return err
	}
	delay := grocery.DefaultLoadDelay
	if opts.cfg.NoDelay {
		delay = 0
	}
	if err := tui.Run(cmd.Context(), opts.newList(log, delay), log); err != nil {
		return failure("tui", err)
	}
	return nil
}

type listOptions struct {
	Search string
	Group  bool
}

// NewListCommand prints the list once.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:           "ls",
		Short:         "Print the list",
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootOpts, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "only show items containing this text")
	cmd.Flags().BoolVar(&opts.Group, "group", false, "group output by pending/checked")
	return cmd
}

func runList(cmd *cobra.Command, rootOpts *RootOptions, opts *listOptions) error {
	l, err := loadList(cmd, rootOpts)
	if err != nil {
		return err
	}
	l.SetFilter(opts.Search)
	ui.Panel(cmd.OutOrStdout(), listLines(l.Snapshot(), opts.Group))
	return nil
}

// NewAddCommand adds one item.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "add <text...>",
		Short:         "Add an item (text can be multiple words)",
		Args:          usageArgs(cobra.MinimumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := rootOpts.logger(rootOpts.diagnostics(cmd))
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			it, err := rootOpts.newList(log, 0).Add(cmd.Context(), text)
			if err != nil {
				return failure("add", err)
			}
			ui.OK(fmt.Sprintf("added %q #%s", it.Item, it.ID))
			return nil
		},
	}
}

// NewCheckCommand toggles the checked flag of one item.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "check <id>",
		Short:         "Check or uncheck an item",
		Args:          usageArgs(cobra.ExactArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadList(cmd, rootOpts)
			if err != nil {
				return err
			}
			id := args[0]
			if err := l.Toggle(cmd.Context(), id); err != nil {
				if errors.Is(err, grocery.ErrItemNotFound) {
					return &ExitError{Code: ExitUsage, Message: "no item #" + id, Err: err}
				}
				return failure("check", err)
			}
			for _, it := range l.Items() {
				if it.ID != id {
					continue
				}
				state := "unchecked"
				if it.Checked {
					state = "checked"
				}
				ui.OK(fmt.Sprintf("%s %q", state, it.Item))
			}
			return nil
		},
	}
}

// NewRemoveCommand deletes one item.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <id>",
		Short:         "Delete an item",
		Args:          usageArgs(cobra.ExactArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := rootOpts.logger(rootOpts.diagnostics(cmd))
			if err != nil {
				return err
			}
			id := args[0]
			if err := rootOpts.newList(log, 0).Delete(cmd.Context(), id); err != nil {
				return failure("rm", err)
			}
			ui.OK("removed #" + id)
			return nil
		},
	}
}

// loadList returns a controller that already holds the store's items.
func loadList(cmd *cobra.Command, rootOpts *RootOptions) (*grocery.List, error) {
	log, err := rootOpts.logger(rootOpts.diagnostics(cmd))
	if err != nil {
		return nil, err
	}
	l := rootOpts.newList(log, 0)
	if err := l.Load(cmd.Context()); err != nil {
		return nil, failure("load", err)
	}
	return l, nil
}
