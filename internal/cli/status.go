package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dwhload/internal/services"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the row count of every table",
	Long: `status connects to the warehouse and prints the row count of each staging,
fact and dimension table. Tables that do not exist yet are reported as
missing.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
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

	reporter := services.NewReporter(env.builder, env.logger)
	counts, err := reporter.Counts(ctx, session)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	reporter.Render(stdout, counts)
	return nil
}
