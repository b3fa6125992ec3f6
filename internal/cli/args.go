package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireAtMostOnePath accepts an optional single path argument.
// Returns a helpful error message with usage and examples if more are given.
func RequireAtMostOnePath(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf(`accepts at most 1 arg(s), received %d

Usage: %s

Example:
  %s ./dwh.yaml`, len(args), cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}
