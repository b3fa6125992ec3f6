package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vvka-141/dwhload/internal/ingest"
	"github.com/vvka-141/dwhload/internal/statements"
	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// PipelineOptions selects how the two phases execute.
type PipelineOptions struct {
	// LoadMode is dwhload.LoadModeServer (the warehouse runs COPY) or
	// dwhload.LoadModeClient (rows are streamed through the session).
	LoadMode string

	// ParallelTransforms runs each INSERT-SELECT on its own session.
	ParallelTransforms bool
}

// Pipeline bulk-loads the staging tables and populates the star schema.
//
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type Pipeline struct {
	builder   *statements.Builder
	connector dwhload.Connector
	loader    *ingest.Loader
	opts      PipelineOptions
	observer  dwhload.Observer
	logger    dwhload.Logger
}

// NewPipeline creates a Pipeline. loader is required in client load mode;
// connector is used only for parallel transforms.
//
// Panics on nil dependencies.
func NewPipeline(
	builder *statements.Builder,
	connector dwhload.Connector,
	loader *ingest.Loader,
	opts PipelineOptions,
	observer dwhload.Observer,
	logger dwhload.Logger,
) *Pipeline {
	if builder == nil {
		panic("builder cannot be nil")
	}
	if connector == nil {
		panic("connector cannot be nil")
	}
	if opts.LoadMode == dwhload.LoadModeClient && loader == nil {
		panic("loader cannot be nil in client load mode")
	}
	if observer == nil {
		panic("observer cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Pipeline{
		builder:   builder,
		connector: connector,
		loader:    loader,
		opts:      opts,
		observer:  observer,
		logger:    logger,
	}
}

// Run executes Load then Transform on session.
func (p *Pipeline) Run(ctx context.Context, session dwhload.Session) error {
	if err := p.Load(ctx, session); err != nil {
		return err
	}
	return p.Transform(ctx, session)
}

// Load executes the staging copies, events first then songs.
func (p *Pipeline) Load(ctx context.Context, session dwhload.Session) error {
	stmts := p.builder.CopyTableStatements()

	exec := execOn(session)
	if p.opts.LoadMode == dwhload.LoadModeClient {
		w, ok := session.(dwhload.BulkWriter)
		if !ok {
			return fmt.Errorf("%w: session does not support client-side loads", dwhload.ErrLoad)
		}
		exec = func(ctx context.Context, stmt dwhload.Statement) error {
			n, err := p.loader.Load(ctx, w, stmt)
			if err != nil {
				return err
			}
			p.logger.Verbose("Loaded %d rows into %s", n, stmt.Table)
			return nil
		}
	}

	if err := runSequence(ctx, p.observer, stmts, exec); err != nil {
		return err
	}
	p.logger.Info("✓ Loaded %d staging tables", len(stmts))
	return nil
}

// Transform executes the five INSERT-SELECTs in order songplays, users,
// songs, artists, time.
func (p *Pipeline) Transform(ctx context.Context, session dwhload.Session) error {
	stmts, err := p.builder.InsertTableStatements()
	if err != nil {
		return fmt.Errorf("%w: %w", dwhload.ErrTransform, err)
	}

	if p.opts.ParallelTransforms {
		err = p.transformParallel(ctx, stmts)
	} else {
		err = runSequence(ctx, p.observer, stmts, execOn(session))
	}
	if err != nil {
		return err
	}

	p.logger.Info("✓ Populated %d tables", len(stmts))
	return nil
}

// transformParallel gives each insert its own session. The inserts only
// read staging tables, so they are independent of each other.
func (p *Pipeline) transformParallel(ctx context.Context, stmts []dwhload.Statement) error {
	g, gctx := errgroup.WithContext(ctx)

	for i, stmt := range stmts {
		g.Go(func() error {
			return runOne(gctx, p.observer, stmt, i, len(stmts), func(ctx context.Context, stmt dwhload.Statement) error {
				session, err := p.connector.Connect(ctx)
				if err != nil {
					return err
				}
				defer session.Close()
				return session.Exec(ctx, stmt.Text)
			})
		})
	}

	return g.Wait()
}
