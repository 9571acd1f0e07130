// Package cli builds the cobra command trees of the items client (items)
// and the items API server (itemsd).
package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/items/internal/ui"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// usageError is a malformed invocation. It exits with status 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// Execute runs cmd and returns the process exit code: 0 ok, 1 error,
// 2 usage.
func Execute(cmd *cobra.Command) int {
	ui.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	err := cmd.Execute()
	if err == nil {
		return 0
	}
	ui.Fail(err.Error())

	var uerr *usageError
	if errors.As(err, &uerr) {
		return 2
	}
	return 1
}

// exactArgs is cobra.ExactArgs with a usage line instead of cobra's message.
func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: %s", usage)
		}
		return nil
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("unknown subcommand: %s", args[0])
	}
	return nil
}

func parseID(verb, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, usagef("%s: not an id: %s", verb, s)
	}
	return id, nil
}
