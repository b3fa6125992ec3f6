package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dwhload",
	Short: "Load the Sparkify event and song logs into a star-schema warehouse",
	Long: `dwhload recreates the warehouse tables, bulk loads the JSON event and song
logs into two staging tables, and populates the songplays fact table and the
users, songs, artists and time dimensions from them.

Everything runs over a single database session. Statements execute one at a
time in a fixed order and the first failure stops the run.

Configuration is read from dwh.yaml, dwh.yml or dwh.cfg in the working
directory (or --config), overridden by DWH_<SECTION>__<KEY> environment
variables and the flags below.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Missing or invalid configuration
  11 - Warehouse connection failed
  12 - Table reset was not approved
  13 - DROP or CREATE TABLE failed
  14 - Staging load failed
  15 - Final-table insert failed`,
	SilenceUsage: true,
}

type globalFlagValues struct {
	configPath string
	verbose    bool
	force      bool
	timeout    time.Duration
}

var globalFlags globalFlagValues

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&globalFlags.configPath, "config", "c", "",
		"Configuration file (default: dwh.yaml, dwh.yml or dwh.cfg in the working directory)")
	flags.BoolVarP(&globalFlags.verbose, "verbose", "v", false, "Enable verbose output for all commands")
	flags.BoolVar(&globalFlags.force, "force", false,
		"Drop tables without the interactive confirmation\n"+
			"Required for unattended create-tables and run")
	flags.DurationVar(&globalFlags.timeout, "timeout", 0,
		"Upper bound for the whole run (default: unbounded)\n"+
			"The song_data COPY alone can take tens of minutes on a small cluster\n"+
			"Examples: 30m, 2h")

	// Read through the config loader, which gives them precedence over
	// the file and the environment when set.
	flags.String("dialect", "", "Warehouse dialect: redshift|postgres|duckdb (overrides WAREHOUSE.dialect)")
	flags.String("region", "", "AWS region of the source bucket (overrides WAREHOUSE.region)")
	flags.String("load-mode", "", "Staging load mode: server|client (overrides WAREHOUSE.load_mode)")
	flags.Bool("parallel-transforms", false, "Run the final-table inserts concurrently on separate sessions")

	_ = rootCmd.RegisterFlagCompletionFunc("config", completeConfigFiles)
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", completeDialects)
	_ = rootCmd.RegisterFlagCompletionFunc("load-mode", completeLoadModes)
}
