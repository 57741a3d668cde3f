package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"pushfile/pkg/config"
	"pushfile/pkg/github"
)

// Process exit codes
const (
	ExitOK                = 0
	ExitInvalidInput      = 1
	ExitRemovalNotAllowed = 2
	ExitAuthFailed        = 3
	ExitFailure           = 4
)

// usageError marks a bad invocation: unknown flags, arguments or option values
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// noArgs rejects positional arguments as a usage error
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &usageError{err: err}
	}
	return nil
}

// exitCode maps an error returned by a command to the process exit code
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		missing *config.MissingInputError
		invalid *config.InvalidInputError
		usage   *usageError
		removal *github.RemovalNotAllowedError
	)

	switch {
	case errors.As(err, &missing), errors.As(err, &invalid), errors.As(err, &usage):
		return ExitInvalidInput
	case errors.As(err, &removal):
		return ExitRemovalNotAllowed
	case github.IsAuthError(err):
		return ExitAuthFailed
	default:
		return ExitFailure
	}
}
