package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Load the staging tables and populate the star schema",
	Long: `etl runs the two pipeline phases over one session:

  1. Load: staging_events from LOG_DATA (mapped by LOG_JSONPATH), then
     staging_songs from SONG_DATA (mapped by field name).
  2. Transform: songplays, users, songs, artists and time from staging.

The tables must exist (see create-tables). Running etl twice without a reset
appends the staging rows and the songplays again.

Examples:
  dwhload etl
  dwhload etl --dialect duckdb --load-mode client`,
	Args: cobra.NoArgs,
	RunE: runETL,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "create-tables followed by etl, over a single session",
	Args:  cobra.NoArgs,
	RunE:  runAll,
}

func init() {
	rootCmd.AddCommand(etlCmd)
	rootCmd.AddCommand(runCmd)
}

func runETL(cmd *cobra.Command, _ []string) error {
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

	if err := env.pipeline(observer).Run(ctx, session); err != nil {
		return fmt.Errorf("etl failed: %w", err)
	}
	env.logger.Info("✓ ETL complete")
	return nil
}

func runAll(cmd *cobra.Command, _ []string) error {
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
	if err := env.pipeline(observer).Run(ctx, session); err != nil {
		return fmt.Errorf("etl failed: %w", err)
	}
	env.logger.Info("✓ ETL complete")
	return nil
}
