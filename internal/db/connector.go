package db

import (
	"fmt"
	"strings"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// NewConnector is a factory function that creates the Connector matching
// the configured dialect and auth method.
func NewConnector(cfg *dwhload.Config, runID string, logger dwhload.Logger) (dwhload.Connector, error) {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	switch cfg.Warehouse.Dialect {
	case dwhload.DialectDuckDB:
		return NewDuckDBConnector(cfg.Warehouse.Path), nil
	case dwhload.DialectRedshift, dwhload.DialectPostgres:
	default:
		return nil, fmt.Errorf("dialect %q: %w", cfg.Warehouse.Dialect, dwhload.ErrUnsupportedDialect)
	}

	params := ParamsFromConfig(cfg, runID)
	redshift := cfg.Warehouse.Dialect == dwhload.DialectRedshift

	switch cfg.Warehouse.AuthMethod {
	case "", dwhload.AuthMethodPassword:
		return NewPgConnector(params, redshift, logger), nil
	case dwhload.AuthMethodAWSIAM:
		if redshift {
			return nil, fmt.Errorf("%s is only available for RDS/Aurora PostgreSQL: %w", dwhload.AuthMethodAWSIAM, dwhload.ErrUnsupportedAuthMethod)
		}
		provider, err := NewAWSIAMTokenProvider(params.Address(), cfg.Warehouse.Region, params.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS IAM token provider: %w: %w", err, dwhload.ErrConfig)
		}
		return NewPgConnector(params, false, logger).WithTokenProvider(provider), nil
	default:
		return nil, fmt.Errorf("auth method %q: %w", cfg.Warehouse.AuthMethod, dwhload.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw driver connection errors with actionable
// guidance. The result always matches dwhload.ErrConnection.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var guided error
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		guided = fmt.Errorf(`connection refused to %s

Possible causes:
  - The cluster is paused, resizing or still being created
  - Wrong host or port
  - Security group or firewall does not allow inbound traffic on port %d

Original error: %w`, addr, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		guided = fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Endpoint is misspelled (copy it from the cluster console)
  - The cluster was deleted
  - DNS is not configured or reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		guided = fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong CLUSTER.DB_PASSWORD (or DWH_CLUSTER__DB_PASSWORD)
  - Wrong CLUSTER.DB_USER
  - User does not have access to the database

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		guided = fmt.Errorf(`database "%s" does not exist

Check CLUSTER.DB_NAME; dwhload creates tables, not databases.

Original error: %w`, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		guided = fmt.Errorf(`connection timed out to %s

Possible causes:
  - Cluster is not publicly accessible from this network
  - Security group silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		guided = fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but WAREHOUSE.SSLMODE disables it
  - Certificate verification failed (try sslmode=require)

Original error: %w`, err)

	case strings.Contains(errStr, "too many connections"):
		guided = fmt.Errorf(`too many connections to database "%s"

Possible causes:
  - max_connections limit reached on the server
  - Stale sessions from previous runs

Original error: %w`, database, err)

	default:
		guided = fmt.Errorf("failed to connect to database: %w", err)
	}

	return fmt.Errorf("%w: %w", dwhload.ErrConnection, guided)
}
