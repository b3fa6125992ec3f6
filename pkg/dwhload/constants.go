package dwhload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Run completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Missing or invalid configuration
	ExitConnectionError = 11 // Failed to connect to the warehouse
	ExitApprovalDenied  = 12 // Operator declined the table reset
	ExitSchemaError     = 13 // DROP/CREATE rejected
	ExitLoadError       = 14 // Staging bulk load failed
	ExitTransformError  = 15 // Final-table insert failed
)

// Supported warehouse dialects.
const (
	DialectRedshift = "redshift"
	DialectPostgres = "postgres"
	DialectDuckDB   = "duckdb"
)

// Supported authentication methods.
const (
	AuthMethodPassword = "password"
	AuthMethodAWSIAM   = "aws-iam"
)

// Load modes. Server mode hands the source URI to the warehouse's own COPY;
// client mode streams the objects through this process.
const (
	LoadModeServer = "server"
	LoadModeClient = "client"
)

const (
	// DefaultRegion is the region the COPY statements name when none is configured.
	DefaultRegion = "us-west-2"

	// DefaultRedshiftPort is the Redshift listener port.
	DefaultRedshiftPort = 5439

	// DefaultDuckDBPath is the database file used by the duckdb dialect.
	DefaultDuckDBPath = "dwh.duckdb"

	// DefaultInsertBatchSize is the number of rows per client-side write.
	DefaultInsertBatchSize = 1000

	// DefaultForceApprovalCountdown is the countdown before a forced reset proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// JSONPathsAuto maps JSON fields to columns by name.
	JSONPathsAuto = "auto"

	// JSONPathsAutoIgnoreCase maps JSON fields to columns by case-insensitive name.
	JSONPathsAutoIgnoreCase = "auto ignorecase"

	// ConnectTimeout bounds a single connection attempt.
	ConnectTimeout = 30 * time.Second
)
