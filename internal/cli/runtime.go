package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vvka-141/dwhload/internal/config"
	"github.com/vvka-141/dwhload/internal/db"
	"github.com/vvka-141/dwhload/internal/ingest"
	"github.com/vvka-141/dwhload/internal/logging"
	"github.com/vvka-141/dwhload/internal/objectstore"
	"github.com/vvka-141/dwhload/internal/secrets"
	"github.com/vvka-141/dwhload/internal/services"
	"github.com/vvka-141/dwhload/internal/statements"
	"github.com/vvka-141/dwhload/internal/tui"
	"github.com/vvka-141/dwhload/internal/ui"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// Seams replaced in tests.
var (
	newApprover  = selectApprover
	newConnector = db.NewConnector
	isTerminal   = tui.IsInteractive
	stdout       io.Writer = os.Stdout
	stderr       io.Writer = os.Stderr
)

// runEnv is what every warehouse command needs once configuration is loaded.
type runEnv struct {
	cfg       *dwhload.Config
	runID     string
	logger    dwhload.Logger
	builder   *statements.Builder
	connector dwhload.Connector
}

// commandContext returns a context cancelled on SIGINT/SIGTERM and after
// the --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if globalFlags.timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, globalFlags.timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// prepare loads and validates configuration, resolves a secret password
// reference and builds the statement builder and connector.
func prepare(ctx context.Context, cmd *cobra.Command) (*runEnv, error) {
	logger := logging.NewConsoleLoggerTo(stderr, globalFlags.verbose, isTerminal())

	cfg, err := config.Load(globalFlags.configPath, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if secrets.IsRef(cfg.Cluster.DBPassword) {
		logger.Verbose("Resolving CLUSTER.db_password from AWS Secrets Manager")
		resolver, err := secrets.NewResolverFromConfig(ctx, cfg.Warehouse.Region)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", dwhload.ErrConfig, err)
		}
		if err := resolver.ResolveConfig(ctx, cfg); err != nil {
			return nil, err
		}
	}

	builder, err := statements.New(cfg)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	connector, err := newConnector(cfg, runID, logger)
	if err != nil {
		return nil, err
	}

	logger.Verbose("Run %s", runID)
	logger.Verbose("  Dialect: %s", cfg.Warehouse.Dialect)
	logger.Verbose("  Target: %s", cfg.Target())
	logger.Verbose("  Load mode: %s", cfg.EffectiveLoadMode())
	logger.Verbose("  Parallel transforms: %t", cfg.Warehouse.ParallelTransforms)

	return &runEnv{cfg: cfg, runID: runID, logger: logger, builder: builder, connector: connector}, nil
}

// connect opens the run's single session.
func (e *runEnv) connect(ctx context.Context) (dwhload.Session, error) {
	e.logger.Verbose("Connecting to %s", e.cfg.Target())
	return e.connector.Connect(ctx)
}

// selectApprover picks how a table reset is confirmed.
func selectApprover(force, interactive, verbose bool) dwhload.Approver {
	switch {
	case force:
		return ui.NewForcedApprover(verbose)
	case interactive:
		return ui.NewInteractiveApprover(verbose)
	default:
		return ui.RefusingApprover{}
	}
}

// observer returns the statement observer and a func that tears it down.
// The spinner view only runs on a terminal and never alongside verbose
// logging, which would interleave with it. It starts with the first
// statement, after any approval prompt has finished.
func (e *runEnv) observer() (dwhload.Observer, func()) {
	if isTerminal() && !globalFlags.verbose {
		sink, _ := e.logger.(tui.LogSink)
		p := tui.NewProgressObserver(stderr, sink)
		return p, p.Stop
	}
	return services.NewLoggingObserver(e.logger), func() {}
}

func (e *runEnv) schemaManager(observer dwhload.Observer) *services.SchemaManager {
	approver := newApprover(globalFlags.force, isTerminal(), globalFlags.verbose)
	return services.NewSchemaManager(e.builder, approver, observer, e.logger)
}

func (e *runEnv) pipeline(observer dwhload.Observer) *services.Pipeline {
	mode := e.cfg.EffectiveLoadMode()
	var loader *ingest.Loader
	if mode == dwhload.LoadModeClient {
		loader = ingest.NewLoader(e.objectStore(), e.builder.Catalog(), e.cfg.Warehouse.InsertBatchSize, e.logger).
			WithVarcharLimit(e.builder.Dialect().VarcharLength)
	}
	opts := services.PipelineOptions{
		LoadMode:           mode,
		ParallelTransforms: e.cfg.Warehouse.ParallelTransforms,
	}
	return services.NewPipeline(e.builder, e.connector, loader, opts, observer, e.logger)
}

// objectStore serves s3:// sources through the AWS SDK and everything
// else from the local filesystem.
func (e *runEnv) objectStore() objectstore.Store {
	opts := objectstore.S3Options{
		Region:      e.cfg.Warehouse.Region,
		SessionName: "dwhload-" + e.runID,
		Anonymous:   e.cfg.Warehouse.S3Anonymous,
	}
	if e.cfg.Warehouse.AssumeRole {
		opts.RoleARN = e.cfg.IAMRole.ARN
	}
	return objectstore.NewMux(objectstore.NewLocalStore(), func(ctx context.Context) (objectstore.Store, error) {
		e.logger.Verbose("Creating S3 client for region %s", opts.Region)
		return objectstore.NewS3StoreFromConfig(ctx, opts)
	})
}

// closeSession releases the session and reports a close failure without
// masking the run's own error.
func (e *runEnv) closeSession(session dwhload.Session) {
	if err := session.Close(); err != nil {
		e.logger.Error("failed to close session: %v", err)
	}
}
