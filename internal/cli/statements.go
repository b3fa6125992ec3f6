package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dwhload/internal/config"
	"github.com/vvka-141/dwhload/internal/statements"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

var statementsCmd = &cobra.Command{
	Use:   "statements",
	Short: "Print the SQL a run would execute, without connecting",
	Long: `statements renders every statement for the configured dialect in execution
order and prints it to stdout. Nothing connects to the warehouse, and the
configuration does not need credentials.

Examples:
  dwhload statements
  dwhload statements --dialect postgres --phase insert`,
	Args: cobra.NoArgs,
	RunE: runStatements,
}

var statementsPhase string

func init() {
	rootCmd.AddCommand(statementsCmd)
	statementsCmd.Flags().StringVar(&statementsPhase, "phase", "all",
		"Which statements to print: all|drop|create|copy|insert|count")
	_ = statementsCmd.RegisterFlagCompletionFunc("phase", completePhases)
}

func runStatements(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Read(globalFlags.configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	builder, err := statements.New(cfg)
	if err != nil {
		return err
	}

	stmts, err := selectStatements(builder, statementsPhase)
	if err != nil {
		return err
	}
	return writeStatements(stdout, stmts)
}

func selectStatements(b *statements.Builder, phase string) ([]dwhload.Statement, error) {
	switch phase {
	case "drop":
		return b.DropTableStatements(), nil
	case "create":
		return b.CreateTableStatements(), nil
	case "copy":
		return b.CopyTableStatements(), nil
	case "insert":
		return b.InsertTableStatements()
	case "count":
		return b.CountStatements(), nil
	case "all", "":
		inserts, err := b.InsertTableStatements()
		if err != nil {
			return nil, err
		}
		var out []dwhload.Statement
		out = append(out, b.DropTableStatements()...)
		out = append(out, b.CreateTableStatements()...)
		out = append(out, b.CopyTableStatements()...)
		out = append(out, inserts...)
		return out, nil
	default:
		return nil, fmt.Errorf("invalid argument %q for --phase: expected one of %s",
			phase, strings.Join(statementPhases, ", "))
	}
}

func writeStatements(w io.Writer, stmts []dwhload.Statement) error {
	for _, stmt := range stmts {
		header := fmt.Sprintf("-- %s %s", stmt.Purpose, stmt.Table)
		if stmt.Source != nil {
			header += fmt.Sprintf(" from %s (jsonpaths: %s)", stmt.Source.URI, stmt.Source.JSONPaths)
		}
		if _, err := fmt.Fprintf(w, "%s\n%s;\n\n", header, strings.TrimRight(stmt.Text, "; \n")); err != nil {
			return err
		}
	}
	return nil
}
