package dwhload

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds everything a run needs. It is built once by the config
// loader and passed explicitly to every constructor.
type Config struct {
	Cluster   ClusterConfig   `koanf:"cluster"`
	IAMRole   IAMRoleConfig   `koanf:"iam_role"`
	S3        S3Config        `koanf:"s3"`
	Warehouse WarehouseConfig `koanf:"warehouse"`
}

// ClusterConfig is the [CLUSTER] section.
type ClusterConfig struct {
	Host       string `koanf:"host"`
	DBName     string `koanf:"db_name"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBPort     int    `koanf:"db_port"`
}

// IAMRoleConfig is the [IAM_ROLE] section. ARN is the role the warehouse
// (or, in client load mode, this process) assumes to read the sources.
type IAMRoleConfig struct {
	ARN string `koanf:"arn"`
}

// S3Config is the [S3] section.
type S3Config struct {
	LogData     string `koanf:"log_data"`
	LogJSONPath string `koanf:"log_jsonpath"`
	SongData    string `koanf:"song_data"`
}

// WarehouseConfig selects the engine and tunes how the pipeline talks to it.
type WarehouseConfig struct {
	Dialect            string `koanf:"dialect"`
	Region             string `koanf:"region"`
	AuthMethod         string `koanf:"auth_method"`
	SSLMode            string `koanf:"sslmode"`
	LoadMode           string `koanf:"load_mode"`
	Path               string `koanf:"path"`
	StrictStagingKeys  bool   `koanf:"strict_staging_keys"`
	InsertBatchSize    int    `koanf:"insert_batch_size"`
	ParallelTransforms bool   `koanf:"parallel_transforms"`

	// AssumeRole makes client loads read the sources as IAM_ROLE.ARN.
	AssumeRole bool `koanf:"assume_role"`

	// S3Anonymous reads public buckets without signing requests.
	S3Anonymous bool `koanf:"s3_anonymous"`
}

// IsNetworked reports whether the dialect connects to a remote server.
func (c *Config) IsNetworked() bool {
	return c.Warehouse.Dialect != DialectDuckDB
}

// EffectiveLoadMode returns the configured load mode or the dialect default.
func (c *Config) EffectiveLoadMode() string {
	if c.Warehouse.LoadMode != "" {
		return c.Warehouse.LoadMode
	}
	if c.Warehouse.Dialect == DialectRedshift {
		return LoadModeServer
	}
	return LoadModeClient
}

// Target names the database a reset would wipe, for approval prompts and logs.
func (c *Config) Target() string {
	if !c.IsNetworked() {
		return c.Warehouse.Path
	}
	return c.Cluster.DBName
}

// Validate checks that every required key is present.
// It returns a multi-error listing every problem found.
func (c *Config) Validate() error {
	var errs []error

	missing := func(section, key string) {
		errs = append(errs, fmt.Errorf("missing %s.%s: %w", section, key, ErrConfig))
	}

	switch c.Warehouse.Dialect {
	case DialectRedshift, DialectPostgres, DialectDuckDB:
	default:
		errs = append(errs, fmt.Errorf("dialect %q: %w", c.Warehouse.Dialect, ErrUnsupportedDialect))
	}

	if c.IsNetworked() {
		if c.Cluster.Host == "" {
			missing("CLUSTER", "HOST")
		}
		if c.Cluster.DBName == "" {
			missing("CLUSTER", "DB_NAME")
		}
		if c.Cluster.DBUser == "" {
			missing("CLUSTER", "DB_USER")
		}
		if c.Cluster.DBPassword == "" && c.Warehouse.AuthMethod != AuthMethodAWSIAM {
			missing("CLUSTER", "DB_PASSWORD")
		}
		if c.Cluster.DBPort <= 0 || c.Cluster.DBPort > 65535 {
			errs = append(errs, fmt.Errorf("CLUSTER.DB_PORT %d out of range: %w", c.Cluster.DBPort, ErrConfig))
		}
	} else if c.Warehouse.Path == "" {
		missing("WAREHOUSE", "PATH")
	}

	if c.S3.LogData == "" {
		missing("S3", "LOG_DATA")
	}
	if c.S3.LogJSONPath == "" {
		missing("S3", "LOG_JSONPATH")
	}
	if c.S3.SongData == "" {
		missing("S3", "SONG_DATA")
	}

	switch c.EffectiveLoadMode() {
	case LoadModeServer:
		if c.Warehouse.Dialect != DialectRedshift {
			errs = append(errs, fmt.Errorf("load_mode %q requires the redshift dialect: %w", LoadModeServer, ErrConfig))
		}
		if c.IAMRole.ARN == "" {
			missing("IAM_ROLE", "ARN")
		}
	case LoadModeClient:
	default:
		errs = append(errs, fmt.Errorf("load_mode %q: %w", c.Warehouse.LoadMode, ErrConfig))
	}

	switch c.Warehouse.AuthMethod {
	case "", AuthMethodPassword:
	case AuthMethodAWSIAM:
		if c.Warehouse.Dialect != DialectPostgres {
			errs = append(errs, fmt.Errorf("%s with dialect %s: %w", AuthMethodAWSIAM, c.Warehouse.Dialect, ErrUnsupportedAuthMethod))
		}
	default:
		errs = append(errs, fmt.Errorf("auth_method %q: %w", c.Warehouse.AuthMethod, ErrUnsupportedAuthMethod))
	}

	if c.Warehouse.ParallelTransforms && c.Warehouse.Dialect == DialectDuckDB {
		errs = append(errs, fmt.Errorf("parallel transforms need independent sessions, which duckdb does not allow on one file: %w", ErrConfig))
	}

	if c.Warehouse.AssumeRole && c.IAMRole.ARN == "" {
		missing("IAM_ROLE", "ARN")
	}
	if c.Warehouse.AssumeRole && c.Warehouse.S3Anonymous {
		errs = append(errs, fmt.Errorf("assume_role and s3_anonymous are mutually exclusive: %w", ErrConfig))
	}

	if c.Warehouse.InsertBatchSize < 0 {
		errs = append(errs, fmt.Errorf("insert_batch_size cannot be negative: %w", ErrConfig))
	}

	return errors.Join(errs...)
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.Cluster.DBPassword != "" {
		out.Cluster.DBPassword = strings.Repeat("*", 8)
	}
	return out
}
