package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dwhload/internal/statements"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

func redshiftConfig() *dwhload.Config {
	return &dwhload.Config{
		Cluster: dwhload.ClusterConfig{Host: "h", DBName: "dwh", DBUser: "u", DBPassword: "p", DBPort: 5439},
		IAMRole: dwhload.IAMRoleConfig{ARN: "arn:aws:iam::123456789012:role/dwhRole"},
		S3: dwhload.S3Config{
			LogData:     "s3://udacity-dend/log_data",
			LogJSONPath: "s3://udacity-dend/log_json_path.json",
			SongData:    "s3://udacity-dend/song_data",
		},
		Warehouse: dwhload.WarehouseConfig{Dialect: dwhload.DialectRedshift},
	}
}

func newBuilder(t *testing.T, cfg *dwhload.Config) *statements.Builder {
	t.Helper()
	b, err := statements.New(cfg)
	require.NoError(t, err)
	return b
}
