package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// dialects contains the supported warehouse dialects for shell completion.
var dialects = []string{dwhload.DialectRedshift, dwhload.DialectPostgres, dwhload.DialectDuckDB}

// loadModes contains the staging load modes for shell completion.
var loadModes = []string{dwhload.LoadModeServer, dwhload.LoadModeClient}

// statementPhases contains the values accepted by statements --phase.
var statementPhases = []string{"all", "drop", "create", "copy", "insert", "count"}

func completeFrom(values []string, toComplete string) []string {
	var matches []string
	for _, v := range values {
		if strings.HasPrefix(v, toComplete) {
			matches = append(matches, v)
		}
	}
	return matches
}

// completeDialects provides shell completion for the --dialect flag.
func completeDialects(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFrom(dialects, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeLoadModes provides shell completion for the --load-mode flag.
func completeLoadModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFrom(loadModes, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completePhases provides shell completion for statements --phase.
func completePhases(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFrom(statementPhases, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeConfigFiles restricts file completion to config file extensions.
func completeConfigFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"yaml", "yml", "cfg"}, cobra.ShellCompDirectiveFilterFileExt
}
