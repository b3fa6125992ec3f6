package cli

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vvka-141/dwhload/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented configuration template",
	Long: `init writes a dwh.yaml template with every section and key, defaults
filled in and placeholders for the cluster endpoint and credentials.

Examples:
  # Create dwh.yaml in the current directory
  dwhload config init

  # Replace an existing file
  dwhload config init ./prod.yaml --overwrite`,
	Args:              RequireAtMostOnePath,
	ValidArgsFunction: completeConfigFiles,
	RunE:              runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with the password masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitOverwrite bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configInitCmd.Flags().BoolVar(&configInitOverwrite, "overwrite", false, "Replace an existing file")
}

func runConfigInit(_ *cobra.Command, args []string) error {
	path := config.DefaultFileName
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.WriteTemplateFile(path, configInitOverwrite); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "✓ Configuration template written to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Read(globalFlags.configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	shown := cfg.Redacted()

	t := table.NewWriter()
	t.SetOutputMirror(stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Value"})
	t.AppendRows([]table.Row{
		{"cluster.host", shown.Cluster.Host},
		{"cluster.db_name", shown.Cluster.DBName},
		{"cluster.db_user", shown.Cluster.DBUser},
		{"cluster.db_password", shown.Cluster.DBPassword},
		{"cluster.db_port", strconv.Itoa(shown.Cluster.DBPort)},
		{"iam_role.arn", shown.IAMRole.ARN},
		{"s3.log_data", shown.S3.LogData},
		{"s3.log_jsonpath", shown.S3.LogJSONPath},
		{"s3.song_data", shown.S3.SongData},
		{"warehouse.dialect", shown.Warehouse.Dialect},
		{"warehouse.region", shown.Warehouse.Region},
		{"warehouse.auth_method", shown.Warehouse.AuthMethod},
		{"warehouse.sslmode", shown.Warehouse.SSLMode},
		{"warehouse.load_mode", shown.EffectiveLoadMode()},
		{"warehouse.path", shown.Warehouse.Path},
		{"warehouse.strict_staging_keys", strconv.FormatBool(shown.Warehouse.StrictStagingKeys)},
		{"warehouse.insert_batch_size", strconv.Itoa(shown.Warehouse.InsertBatchSize)},
		{"warehouse.parallel_transforms", strconv.FormatBool(shown.Warehouse.ParallelTransforms)},
		{"warehouse.assume_role", strconv.FormatBool(shown.Warehouse.AssumeRole)},
		{"warehouse.s3_anonymous", strconv.FormatBool(shown.Warehouse.S3Anonymous)},
	})
	t.Render()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration is incomplete: %w", err)
	}
	return nil
}
