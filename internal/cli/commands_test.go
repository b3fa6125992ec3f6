package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dwhload/internal/testinfra"
	"github.com/vvka-141/dwhload/internal/ui"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

type stubApprover struct {
	approved bool
	targets  []string
}

func (a *stubApprover) RequestApproval(_ context.Context, target string) (bool, error) {
	a.targets = append(a.targets, target)
	return a.approved, nil
}

// redirectOutput points the command writers at buffers.
func redirectOutput(out, errOut io.Writer) func() {
	origOut, origErr := stdout, stderr
	stdout, stderr = out, errOut
	return func() { stdout, stderr = origOut, origErr }
}

// resetGlobals restores flag values and seams after a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	origFlags := globalFlags
	origApprover, origConnector, origTerminal := newApprover, newConnector, isTerminal
	origPhase, origOverwrite := statementsPhase, configInitOverwrite

	globalFlags = globalFlagValues{}
	isTerminal = func() bool { return false }

	t.Cleanup(func() {
		globalFlags = origFlags
		newApprover, newConnector, isTerminal = origApprover, origConnector, origTerminal
		statementsPhase, configInitOverwrite = origPhase, origOverwrite
	})
}

func useApprover(a dwhload.Approver) {
	newApprover = func(_, _, _ bool) dwhload.Approver { return a }
}

// writeDuckDBConfig writes a config for a file-backed duckdb warehouse
// loading the local Muse fixtures.
func writeDuckDBConfig(t *testing.T) (path string, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	s3cfg := testinfra.WriteMuseFixtures(t, dir)
	dbPath = filepath.Join(dir, "dwh.duckdb")

	content := fmt.Sprintf(`s3:
  log_data: %q
  log_jsonpath: %q
  song_data: %q
warehouse:
  dialect: duckdb
  path: %q
`, s3cfg.LogData, s3cfg.LogJSONPath, s3cfg.SongData, dbPath)
	path = filepath.Join(dir, "dwh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path, dbPath
}

const redshiftCfg = `[CLUSTER]
HOST=dwhcluster.abc123.us-west-2.redshift.amazonaws.com
DB_NAME=dwh
DB_USER=dwhuser
DB_PASSWORD=secret
DB_PORT=5439

[IAM_ROLE]
ARN='arn:aws:iam::123456789012:role/dwhRole'

[S3]
LOG_DATA='s3://udacity-dend/log_data'
LOG_JSONPATH='s3://udacity-dend/log_json_path.json'
SONG_DATA='s3://udacity-dend/song_data'
`

func writeRedshiftConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dwh.cfg")
	require.NoError(t, os.WriteFile(path, []byte(redshiftCfg), 0o600))
	return path
}

func TestCommands_Registered(t *testing.T) {
	want := []string{"create-tables", "etl", "run", "statements", "status", "config", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRun_DuckDB_EndToEnd(t *testing.T) {
	resetGlobals(t)
	cfgPath, _ := writeDuckDBConfig(t)
	globalFlags.configPath = cfgPath
	approver := &stubApprover{approved: true}
	useApprover(approver)

	var out, errOut bytes.Buffer
	defer redirectOutput(&out, &errOut)()

	require.NoError(t, runAll(runCmd, nil))
	assert.Len(t, approver.targets, 1)
	assert.Contains(t, errOut.String(), "✓ Dropped 7 tables")
	assert.Contains(t, errOut.String(), "✓ Created 7 tables")
	assert.Contains(t, errOut.String(), "✓ ETL complete")

	out.Reset()
	require.NoError(t, runStatus(statusCmd, nil))
	assert.Contains(t, out.String(), "songplays")
	assert.Contains(t, out.String(), "staging_events")
	assert.NotContains(t, out.String(), "missing")
}

func TestCreateTablesThenETL_DuckDB(t *testing.T) {
	resetGlobals(t)
	cfgPath, dbPath := writeDuckDBConfig(t)
	globalFlags.configPath = cfgPath
	useApprover(&stubApprover{approved: true})
	defer redirectOutput(&bytes.Buffer{}, &bytes.Buffer{})()

	require.NoError(t, runCreateTables(createTablesCmd, nil))
	_, err := os.Stat(dbPath)
	require.NoError(t, err, "duckdb file created")

	require.NoError(t, runETL(etlCmd, nil))
}

func TestETL_WithoutTables_FailsWithLoadExitCode(t *testing.T) {
	resetGlobals(t)
	cfgPath, _ := writeDuckDBConfig(t)
	globalFlags.configPath = cfgPath
	defer redirectOutput(&bytes.Buffer{}, &bytes.Buffer{})()

	err := runETL(etlCmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dwhload.ErrLoad)
	assert.Equal(t, dwhload.ExitLoadError, dwhload.ExitCodeForError(err))

	var stmtErr *dwhload.StatementError
	require.True(t, errors.As(err, &stmtErr))
	assert.Equal(t, "staging_events", stmtErr.Statement.Table)
}

func TestStatus_BeforeCreate_ReportsMissing(t *testing.T) {
	resetGlobals(t)
	cfgPath, _ := writeDuckDBConfig(t)
	globalFlags.configPath = cfgPath

	var out bytes.Buffer
	defer redirectOutput(&out, &bytes.Buffer{})()

	require.NoError(t, runStatus(statusCmd, nil))
	assert.Contains(t, out.String(), "missing")
}

func TestCreateTables_Unattended_RefusesWithoutForce(t *testing.T) {
	resetGlobals(t)
	cfgPath, _ := writeDuckDBConfig(t)
	globalFlags.configPath = cfgPath
	defer redirectOutput(&bytes.Buffer{}, &bytes.Buffer{})()

	err := runCreateTables(createTablesCmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dwhload.ErrApprovalDenied)
	assert.Equal(t, dwhload.ExitApprovalDenied, dwhload.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "--force")
}

func TestCreateTables_Denied(t *testing.T) {
	resetGlobals(t)
	cfgPath, _ := writeDuckDBConfig(t)
	globalFlags.configPath = cfgPath
	useApprover(&stubApprover{approved: false})
	defer redirectOutput(&bytes.Buffer{}, &bytes.Buffer{})()

	err := runCreateTables(createTablesCmd, nil)
	assert.Equal(t, dwhload.ExitApprovalDenied, dwhload.ExitCodeForError(err))
}

func TestRun_MissingConfigFile(t *testing.T) {
	resetGlobals(t)
	globalFlags.configPath = filepath.Join(t.TempDir(), "absent.cfg")
	defer redirectOutput(&bytes.Buffer{}, &bytes.Buffer{})()

	err := runAll(runCmd, nil)
	require.Error(t, err)
	assert.Equal(t, dwhload.ExitConfigError, dwhload.ExitCodeForError(err))
}

func TestRun_ConnectionFailure(t *testing.T) {
	resetGlobals(t)
	globalFlags.configPath = writeRedshiftConfig(t)
	useApprover(&stubApprover{approved: true})
	newConnector = func(*dwhload.Config, string, dwhload.Logger) (dwhload.Connector, error) {
		return failingConnector{}, nil
	}
	defer redirectOutput(&bytes.Buffer{}, &bytes.Buffer{})()

	err := runAll(runCmd, nil)
	require.Error(t, err)
	assert.Equal(t, dwhload.ExitConnectionError, dwhload.ExitCodeForError(err))
}

type failingConnector struct{}

func (failingConnector) Connect(context.Context) (dwhload.Session, error) {
	return nil, fmt.Errorf("dial tcp: connection refused: %w", dwhload.ErrConnection)
}

func TestStatements_Redshift(t *testing.T) {
	resetGlobals(t)
	globalFlags.configPath = writeRedshiftConfig(t)

	var out bytes.Buffer
	defer redirectOutput(&out, &bytes.Buffer{})()

	require.NoError(t, runStatements(statementsCmd, nil))
	text := out.String()

	assert.Contains(t, text, "-- drop staging_events")
	assert.Contains(t, text, "-- create songplays")
	assert.Contains(t, text, "COPY staging_events FROM 's3://udacity-dend/log_data'")
	assert.Contains(t, text, "FORMAT AS JSON 's3://udacity-dend/log_json_path.json'")
	assert.Contains(t, text, "aws_iam_role=arn:aws:iam::123456789012:role/dwhRole")
	assert.Contains(t, text, "-- insert time")

	drop := bytes.Index(out.Bytes(), []byte("-- drop staging_events"))
	create := bytes.Index(out.Bytes(), []byte("-- create staging_events"))
	copyEvents := bytes.Index(out.Bytes(), []byte("-- copy staging_events"))
	insert := bytes.Index(out.Bytes(), []byte("-- insert songplays"))
	assert.True(t, drop < create && create < copyEvents && copyEvents < insert, "statements print in execution order")
}

func TestStatements_Phase(t *testing.T) {
	resetGlobals(t)
	globalFlags.configPath = writeRedshiftConfig(t)
	statementsPhase = "insert"

	var out bytes.Buffer
	defer redirectOutput(&out, &bytes.Buffer{})()

	require.NoError(t, runStatements(statementsCmd, nil))
	assert.Contains(t, out.String(), "-- insert songplays")
	assert.NotContains(t, out.String(), "-- drop")
	assert.NotContains(t, out.String(), "COPY")
}

func TestStatements_InvalidPhase(t *testing.T) {
	resetGlobals(t)
	globalFlags.configPath = writeRedshiftConfig(t)
	statementsPhase = "vacuum"
	defer redirectOutput(&bytes.Buffer{}, &bytes.Buffer{})()

	err := runStatements(statementsCmd, nil)
	require.Error(t, err)
	assert.Equal(t, dwhload.ExitUsageError, dwhload.ExitCodeForError(err))
}

func TestConfigInit(t *testing.T) {
	resetGlobals(t)
	path := filepath.Join(t.TempDir(), "dwh.yaml")

	var out bytes.Buffer
	defer redirectOutput(&out, &bytes.Buffer{})()

	require.NoError(t, runConfigInit(configInitCmd, []string{path}))
	assert.Contains(t, out.String(), path)

	err := runConfigInit(configInitCmd, []string{path})
	assert.Error(t, err, "existing file is kept without --overwrite")

	configInitOverwrite = true
	assert.NoError(t, runConfigInit(configInitCmd, []string{path}))
}

func TestConfigShow_MasksPassword(t *testing.T) {
	resetGlobals(t)
	globalFlags.configPath = writeRedshiftConfig(t)

	var out bytes.Buffer
	defer redirectOutput(&out, &bytes.Buffer{})()

	require.NoError(t, runConfigShow(configShowCmd, nil))
	assert.Contains(t, out.String(), "dwhcluster.abc123.us-west-2.redshift.amazonaws.com")
	assert.Contains(t, out.String(), "********")
	assert.NotContains(t, out.String(), "secret")
}

func TestSelectApprover(t *testing.T) {
	_, ok := selectApprover(true, false, false).(*ui.ForcedApprover)
	assert.True(t, ok, "force wins")

	_, ok = selectApprover(false, true, false).(*ui.InteractiveApprover)
	assert.True(t, ok)

	_, ok = selectApprover(false, false, false).(ui.RefusingApprover)
	assert.True(t, ok)
}
