// Package runner extracts a set of streams into a sink.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/hashicorp-forge/tap-bamboohr/pkg/fields"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/output"
	"github.com/hashicorp-forge/tap-bamboohr/pkg/streams"
)

// Runner extracts streams concurrently. A failing stream does not stop the
// others; every failure is reported once all streams are done.
type Runner struct {
	sink        output.Sink
	maxParallel int
	logger      hclog.Logger
	now         func() time.Time
}

// Config configures a Runner.
type Config struct {
	Sink output.Sink

	// MaxParallel bounds the number of streams extracted at once.
	// Default: 1
	MaxParallel int

	Logger hclog.Logger

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// New creates a runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must not be negative, got %d", cfg.MaxParallel)
	}
	if cfg.MaxParallel == 0 {
		cfg.MaxParallel = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Runner{
		sink:        cfg.Sink,
		maxParallel: cfg.MaxParallel,
		logger:      cfg.Logger.Named("runner"),
		now:         cfg.Now,
	}, nil
}

// Result summarizes one stream.
type Result struct {
	Stream  string
	Records int
	Err     error
}

// Run extracts every stream. The returned error aggregates the failures of
// all streams; results are in the order of ss.
func (r *Runner) Run(ctx context.Context, ss []streams.Stream) ([]Result, error) {
	results := make([]Result, len(ss))

	// Stream failures are collected instead of returned so that one stream
	// does not cancel its siblings.
	g := new(errgroup.Group)
	g.SetLimit(r.maxParallel)

	var (
		mu   sync.Mutex
		merr *multierror.Error
	)
	for i, s := range ss {
		i, s := i, s
		g.Go(func() error {
			count, err := r.runStream(ctx, s)
			results[i] = Result{Stream: s.Name(), Records: count, Err: err}
			if err != nil {
				r.logger.Error("stream failed", "stream", s.Name(), "records", count, "error", err)
				mu.Lock()
				merr = multierror.Append(merr, fmt.Errorf("stream %s: %w", s.Name(), err))
				mu.Unlock()
				return nil
			}
			r.logger.Info("stream completed", "stream", s.Name(), "records", count)
			return nil
		})
	}
	_ = g.Wait()

	return results, merr.ErrorOrNil()
}

// runStream writes the SCHEMA message, the records and a final STATE message
// of one stream.
func (r *Runner) runStream(ctx context.Context, s streams.Stream) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	logger := r.logger.With("stream", s.Name())
	logger.Debug("extracting stream")

	schema, err := s.Schema(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to build schema: %w", err)
	}
	if err := r.sink.Write(ctx, output.NewSchemaMessage(s.Name(), schema, s.KeyProperties())); err != nil {
		return 0, err
	}

	count := 0
	err = s.Records(ctx, func(rec fields.Record) error {
		if err := r.sink.Write(ctx, output.NewRecordMessage(s.Name(), rec, r.now())); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	if err := r.sink.Write(ctx, output.NewStateMessage(s.Name(), r.now(), count)); err != nil {
		return count, err
	}
	return count, nil
}

// Discover renders the catalog of ss. Streams whose schema cannot be built
// are left out and reported in the returned error.
func Discover(ctx context.Context, ss []streams.Stream) (*output.Catalog, error) {
	var (
		catalog output.Catalog
		merr    *multierror.Error
	)
	for _, s := range ss {
		schema, err := s.Schema(ctx)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("stream %s: %w", s.Name(), err))
			continue
		}
		catalog.Add(output.NewSchemaMessage(s.Name(), schema, s.KeyProperties()))
	}
	return &catalog, merr.ErrorOrNil()
}
