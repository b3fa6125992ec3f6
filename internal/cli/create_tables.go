package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createTablesCmd = &cobra.Command{
	Use:   "create-tables",
	Short: "Drop and recreate the staging, fact and dimension tables",
	Long: `create-tables drops all seven tables if they exist and creates them again,
empty. Dropping destroys every row loaded so far, so the command asks for
confirmation by typing the database name. Use --force to skip the prompt in
scripts and pipelines.

Examples:
  # Interactive reset with dwh.cfg in the working directory
  dwhload create-tables

  # Unattended reset against a local PostgreSQL
  dwhload create-tables --dialect postgres --force`,
	Args: cobra.NoArgs,
	RunE: runCreateTables,
}

func init() {
	rootCmd.AddCommand(createTablesCmd)
}

func runCreateTables(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	env, err := prepare(ctx, cmd)
	if err != nil {
		return err
	}

	session, err := env.connect(ctx)
	if err != nil {
		return err
	}
	defer env.closeSession(session)

	observer, stop := env.observer()
	defer stop()

	if err := env.schemaManager(observer).Reset(ctx, session, env.cfg.Target()); err != nil {
		return fmt.Errorf("create-tables failed: %w", err)
	}
	return nil
}
