package core

// pipeline.go drives one run over a raw table.
//
// The loop is strictly sequential over chunks: read a chunk, transform every
// row (inline, or across a worker pool for parallel shapes), append the whole
// chunk to the output, repeat. Exactly one chunk is in flight at a time, so a
// failed or interrupted run leaves the header plus a whole number of chunks,
// and a later run with Restart picks up after the last complete row.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/JonMunkholm/bestcontent/internal/logging"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Options configures a single run. Zero values fall back to the shape's
// defaults.
type Options struct {
	ChunkSize int  // Rows per chunk; 0 uses the shape default
	Workers   int  // Worker pool size for parallel shapes; < 1 means 1
	Restart   bool // Resume from an existing output instead of replacing it

	Progress ProgressCallback
}

// Processor runs registered shapes over raw tables.
type Processor struct {
	collab  Collaborators
	tracker *Tracker
	limiter *RunLimiter
}

// NewProcessor creates a Processor. tracker and limiter may be nil.
func NewProcessor(collab Collaborators, tracker *Tracker, limiter *RunLimiter) *Processor {
	return &Processor{
		collab:  collab,
		tracker: tracker,
		limiter: limiter,
	}
}

// ProcessAbstracts runs the abstracts shape from in to out.
func (p *Processor) ProcessAbstracts(ctx context.Context, in, out string, opts Options) (*RunResult, error) {
	return p.Run(ctx, "abstracts", in, out, opts)
}

// ProcessFulltexts runs the fulltexts shape from in to out.
func (p *Processor) ProcessFulltexts(ctx context.Context, in, out string, opts Options) (*RunResult, error) {
	return p.Run(ctx, "fulltexts", in, out, opts)
}

// Run transforms the raw table at in into the processed table at out.
//
// Without Restart any existing output is replaced. With Restart the rows
// already present in out are skipped in the input. The first row error
// aborts the run before anything of the failing chunk is written.
// Cancellation of ctx is observed between chunks: the chunk in flight is
// finished and written first.
func (p *Processor) Run(ctx context.Context, shapeKey, in, out string, opts Options) (*RunResult, error) {
	def, ok := Get(shapeKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShape, shapeKey)
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = def.DefaultChunkSize
	}
	workers := max(opts.Workers, 1)
	if !def.Parallel {
		workers = 1
	}

	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.WithFields(ctx, "shape", def.Key, "input", in, "output", out)

	start := time.Now()
	progress := RunProgress{
		RunID:  runID,
		Shape:  def.Key,
		Phase:  PhaseStarting,
		Input:  in,
		Output: out,
	}
	notify := func() {
		if p.tracker != nil {
			p.tracker.Update(progress)
		}
		if opts.Progress != nil {
			opts.Progress(progress)
		}
	}
	fail := func(err error) error {
		progress.Phase = PhaseFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			progress.Phase = PhaseCancelled
		}
		progress.Error = err.Error()
		notify()
		logger.Error("run failed",
			"phase", progress.Phase,
			"chunks", progress.Chunks,
			"rows_written", progress.RowsWritten,
			"error", err,
		)
		return err
	}
	notify()

	if p.limiter != nil {
		if err := p.limiter.Acquire(ctx); err != nil {
			return nil, fail(err)
		}
		defer p.limiter.Release()
	}

	lockPath := out + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fail(fmt.Errorf("lock output: %w", err))
	}
	if !locked {
		return nil, fail(fmt.Errorf("%w: %s", ErrOutputLocked, out))
	}
	defer func() {
		// Remove before release.
		_ = os.Remove(lockPath)
		_ = lock.Unlock()
	}()

	skip, err := ComputeSkip(out, opts.Restart)
	if err != nil {
		return nil, fail(err)
	}
	progress.SkippedRows = skip

	logger.Info("run started",
		"restart", opts.Restart,
		"skip_rows", skip,
		"chunk_size", chunkSize,
		"workers", workers,
	)

	progress.Phase = PhaseReading
	notify()

	reader, err := OpenChunks(in, def.Layout, skip, chunkSize)
	if err != nil {
		return nil, fail(err)
	}
	defer reader.Close()

	transformer := def.NewTransformer(p.collab)

	for chunk, err := range reader.All(ctx) {
		if err != nil {
			return nil, fail(err)
		}

		chunkStart := time.Now()
		progress.Phase = PhaseTransforming
		progress.BytesRead = reader.BytesRead()
		progress.BytesTotal = reader.BytesTotal()
		notify()

		// In-flight chunks run to completion even if ctx is cancelled.
		rows, err := OrderedMap(context.WithoutCancel(ctx), workers, chunk.Rows, transformer.Transform)
		if err != nil {
			return nil, fail(fmt.Errorf("chunk %d (rows %d-%d): %w",
				chunk.Number, chunk.StartRow, chunk.StartRow+int64(len(chunk.Rows))-1, err))
		}

		progress.Phase = PhaseWriting
		notify()

		if _, err := AppendChunk(out, ProcessedHeader, rows); err != nil {
			return nil, fail(fmt.Errorf("chunk %d: %w", chunk.Number, err))
		}

		progress.Chunks++
		progress.RowsWritten += int64(len(rows))
		progress.Phase = PhaseReading
		notify()

		logger.Debug("chunk written",
			"chunk", chunk.Number,
			"start_row", chunk.StartRow,
			"rows", len(rows),
			"duration_ms", time.Since(chunkStart).Milliseconds(),
		)
	}

	progress.Phase = PhaseComplete
	progress.BytesRead = reader.BytesRead()
	notify()

	result := &RunResult{
		RunID:       runID,
		Shape:       def.Key,
		Input:       in,
		Output:      out,
		SkippedRows: skip,
		Chunks:      progress.Chunks,
		RowsWritten: progress.RowsWritten,
		Duration:    time.Since(start),
	}

	logger.Info("run completed",
		"chunks", result.Chunks,
		"rows_written", result.RowsWritten,
		"skipped_rows", result.SkippedRows,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}
