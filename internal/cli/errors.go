package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitOK      = 0 // success
	ExitFailure = 1 // the store or a file operation failed
	ExitUsage   = 2 // bad arguments, flags or configuration
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(format string, a ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, a...)}
}

func failure(message string, err error) *ExitError {
	return &ExitError{Code: ExitFailure, Message: message, Err: err}
}

// ExitCode extracts the exit code from err; plain errors map to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// usageArgs turns argument validation errors into usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError("%v\nusage: %s", err, cmd.UseLine())
		}
		return nil
	}
}
