package testinfra

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

const (
	PostgresImage    = "postgres:17-alpine"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "dwh"

	// ConnEnvVar points tests at an existing server instead of a container.
	ConnEnvVar = "DWHLOAD_TEST_CONN"
)

type PostgresContainer struct {
	*postgres.PostgresContainer
	Cluster dwhload.ClusterConfig
}

// StartPostgres runs a throwaway PostgreSQL server.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &PostgresContainer{
		PostgresContainer: ctr,
		Cluster: dwhload.ClusterConfig{
			Host:       host,
			DBPort:     port.Int(),
			DBName:     PostgresDB,
			DBUser:     PostgresUser,
			DBPassword: PostgresPassword,
		},
	}, nil
}

var (
	sharedOnce    sync.Once
	sharedCluster dwhload.ClusterConfig
	sharedErr     error
)

func sharedPostgres() (dwhload.ClusterConfig, error) {
	sharedOnce.Do(func() {
		ctr, err := StartPostgres(context.Background())
		if err != nil {
			sharedErr = err
			return
		}
		sharedCluster = ctr.Cluster
	})
	return sharedCluster, sharedErr
}

// RequirePostgres returns cluster settings for an integration database.
// Priority: DWHLOAD_TEST_CONN env var > shared testcontainer > skip test.
// Always skips in -short mode.
func RequirePostgres(t *testing.T) dwhload.ClusterConfig {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	if connString := os.Getenv(ConnEnvVar); connString != "" {
		cfg, err := pgconn.ParseConfig(connString)
		if err != nil {
			t.Fatalf("parse %s: %v", ConnEnvVar, err)
		}
		return dwhload.ClusterConfig{
			Host:       cfg.Host,
			DBPort:     int(cfg.Port),
			DBName:     cfg.Database,
			DBUser:     cfg.User,
			DBPassword: cfg.Password,
		}
	}

	cluster, err := sharedPostgres()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", ConnEnvVar, err)
	}
	return cluster
}
