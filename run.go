package jurisgraph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jurisgraph/jurisgraph/pkg/assembler"
	"github.com/jurisgraph/jurisgraph/pkg/registry"
	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// Run executes one processing run and blocks until it completes. It always
// returns a RunResult; failures inside the run are folded into the result
// rather than returned as errors. The only error return is ErrRunInProgress,
// when another run holds the pipeline.
func (c *Client) Run(ctx context.Context, opts Options) (*types.RunResult, error) {
	runID, err := c.begin()
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, runID, opts), nil
}

// Start launches a run in the background. The run mutex is claimed before
// Start returns, so a concurrent trigger surfaces immediately as
// ErrRunInProgress. The result arrives on the returned channel.
func (c *Client) Start(ctx context.Context, opts Options) (string, <-chan *types.RunResult, error) {
	runID, err := c.begin()
	if err != nil {
		return "", nil, err
	}
	done := make(chan *types.RunResult, 1)
	go func() {
		done <- c.execute(ctx, runID, opts)
	}()
	return runID, done, nil
}

// execute drives a claimed run to completion and releases the mutex.
func (c *Client) execute(ctx context.Context, runID string, opts Options) *types.RunResult {
	ctx = context.WithValue(ctx, types.ContextKeyRunID, runID)

	log := c.log.With("run_id", runID)
	log.Info("processing run started",
		"doc_ids", len(opts.DocIDs), "full", opts.Full, "dry_run", opts.DryRun, "append", opts.Append)

	result := c.run(ctx, log, opts)
	c.finish(result)

	if result.Succeeded() {
		log.Info("processing run finished", "documents", result.DocumentsProcessed, "marked", result.DocumentsMarked)
	} else {
		log.Error("processing run failed", "message", result.Message)
	}
	return result
}

// run drives LOADING through MARKING. Panics anywhere inside become a failed
// result; nothing escapes the coordinator boundary.
func (c *Client) run(ctx context.Context, log *slog.Logger, opts Options) (result *types.RunResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("processing run panicked", "panic", fmt.Sprint(r))
			result = failure(fmt.Sprintf("internal error: %v", r))
		}
	}()

	docs, result := c.load(ctx, log, opts)
	if result != nil {
		return result
	}

	builders := registry.NewBuilders()
	var snap *registry.Snapshot
	if c.snapshotDir != "" {
		var err error
		snap, err = registry.OpenSnapshot(c.snapshotDir, log)
		if err != nil {
			return failure(fmt.Sprintf("failed to open registry snapshot: %v", err))
		}
		defer snap.Close()
		if err := snap.LoadInto(builders); err != nil {
			return failure(fmt.Sprintf("failed to load registry snapshot: %v", err))
		}
	}

	c.setState(types.StateAssembling)
	var asmOpts []assembler.Option
	if !opts.Full {
		// Incremental batches are stamped so the graph records when each
		// judgment entered it.
		asmOpts = append(asmOpts, assembler.WithTimestamp(time.Now().UTC()))
	}
	asm := assembler.New(builders, log, asmOpts...)
	asm.Collect(docs)
	asm.Emit()

	c.setState(types.StateEmitting)
	written, err := c.writer.Write(asm.Statements(), opts.Append)
	if err != nil {
		return failure(fmt.Sprintf("failed to write triple file: %v", err))
	}
	stats := asm.Stats()

	if opts.DryRun {
		log.Info("dry run: skipping upload and converted-flag marking", "triples", written)
		return success(fmt.Sprintf("dry run: wrote %d triples", written), len(docs), 0, &stats)
	}

	c.setState(types.StateUploading)
	if c.loader == nil {
		return failure("no loader configured for upload")
	}
	if err := c.loader.Upload(ctx, c.writer.Path()); err != nil {
		return failure(fmt.Sprintf("upload failed, documents left unconverted: %v", err))
	}

	// Only after the upload is durable downstream: persist identifier
	// assignments and flip the converted flags.
	if snap != nil {
		if err := snap.Save(builders); err != nil {
			return failure(fmt.Sprintf("failed to persist registry snapshot: %v", err))
		}
	}

	c.setState(types.StateMarking)
	marked, err := c.store.MarkConverted(ctx, asm.DocIDs())
	if err != nil {
		return failure(fmt.Sprintf("upload succeeded but marking converted failed: %v", err))
	}

	if c.cleanup {
		if _, err := c.writer.Backup(); err != nil {
			log.Warn("failed to back up triple file", "error", err)
		}
	}

	return success(fmt.Sprintf("processed %d documents, %d triples", len(docs), written), len(docs), marked, &stats)
}

// load resolves the run's input set. It returns either documents to process
// or a terminal result (the empty-unconverted no-op, or a failure).
func (c *Client) load(ctx context.Context, log *slog.Logger, opts Options) ([]types.SourceDocument, *types.RunResult) {
	c.setState(types.StateLoading)

	switch {
	case len(opts.DocIDs) > 0:
		if opts.ForceReprocess {
			reset, err := c.store.ResetConverted(ctx, opts.DocIDs)
			if err != nil {
				return nil, failure(fmt.Sprintf("failed to reset converted flags: %v", err))
			}
			log.Info("reset converted flags for reprocessing", "documents", reset)
		}
		docs, err := c.store.LoadByIDs(ctx, opts.DocIDs)
		if err != nil {
			return nil, failure(fmt.Sprintf("failed to load documents by id: %v", err))
		}
		if len(docs) == 0 {
			return nil, failure(types.ErrNoDocuments.Error())
		}
		return docs, nil

	case opts.Full:
		docs, err := c.store.LoadAll(ctx)
		if err != nil {
			return nil, failure(fmt.Sprintf("failed to load documents: %v", err))
		}
		if len(docs) == 0 {
			return nil, failure(types.ErrNoDocuments.Error())
		}
		return docs, nil

	default:
		docs, err := c.store.LoadUnconverted(ctx)
		if err != nil {
			return nil, failure(fmt.Sprintf("failed to load unconverted documents: %v", err))
		}
		if len(docs) == 0 {
			// Nothing pending is the normal steady state, not an error.
			log.Info("no unconverted documents, nothing to do")
			return nil, success("no unconverted documents to process", 0, 0, nil)
		}
		return docs, nil
	}
}

func success(msg string, processed, marked int, stats *types.Stats) *types.RunResult {
	return &types.RunResult{
		Status:             "success",
		Message:            msg,
		DocumentsProcessed: processed,
		DocumentsMarked:    marked,
		Stats:              stats,
		Timestamp:          time.Now().UTC(),
	}
}

func failure(msg string) *types.RunResult {
	return &types.RunResult{
		Status:    "error",
		Message:   msg,
		Timestamp: time.Now().UTC(),
	}
}
