// Package jurisgraph converts tabular legal-judgment records from a document
// store into graph triples for bulk loading into dgraph, tracking which
// source records have already been converted so repeated runs only process
// new data.
//
// The heart of the package is the Client, the coordinator that drives one
// processing run end to end: load records, assemble them into entity and
// relationship statements (pkg/assembler, pkg/registry), serialize the
// triple file (pkg/rdf), invoke the external bulk loader (pkg/loader) and
// finally mark the source records converted (pkg/store). A single run owns
// all per-run state; concurrent triggers are rejected, never queued.
package jurisgraph

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jurisgraph/jurisgraph/pkg/loader"
	"github.com/jurisgraph/jurisgraph/pkg/rdf"
	"github.com/jurisgraph/jurisgraph/pkg/store"
	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// Options selects the input set and behavior of one processing run.
type Options struct {
	// DocIDs restricts the run to the named records. Empty means "only
	// unconverted records" unless Full is set.
	DocIDs []string
	// ForceReprocess resets the converted flag on DocIDs before loading, so
	// already-converted records run again.
	ForceReprocess bool
	// Full regenerates from every record in the store.
	Full bool
	// DryRun writes the triple file but skips the upload and, with it, the
	// converted-flag marking.
	DryRun bool
	// Append adds this run's statements to the existing triple file instead
	// of overwriting it.
	Append bool
}

// Status is a point-in-time view of the coordinator.
type Status struct {
	State      types.RunState   `json:"state"`
	Running    bool             `json:"running"`
	RunID      string           `json:"run_id,omitempty"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	LastResult *types.RunResult `json:"last_result,omitempty"`
}

// Client coordinates processing runs. Safe for concurrent use; at most one
// run executes at a time.
type Client struct {
	store       store.Store
	loader      *loader.Live
	writer      *rdf.Writer
	snapshotDir string
	cleanup     bool
	log         *slog.Logger

	mu         sync.Mutex
	running    bool
	state      types.RunState
	runID      string
	startedAt  time.Time
	lastResult *types.RunResult
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSnapshotDir enables registry snapshot persistence under dir.
func WithSnapshotDir(dir string) ClientOption {
	return func(c *Client) { c.snapshotDir = dir }
}

// WithCleanup makes successful runs back the triple file up after upload.
func WithCleanup(cleanup bool) ClientOption {
	return func(c *Client) { c.cleanup = cleanup }
}

// NewClient creates a coordinator over the given collaborators. live may be
// nil when uploads are never wanted (dry-run-only tooling).
func NewClient(st store.Store, live *loader.Live, writer *rdf.Writer, log *slog.Logger, opts ...ClientOption) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		store:  st,
		loader: live,
		writer: writer,
		log:    log,
		state:  types.StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the coordinator's current state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{
		State:      c.state,
		Running:    c.running,
		RunID:      c.runID,
		LastResult: c.lastResult,
	}
	if !c.startedAt.IsZero() {
		t := c.startedAt
		s.StartedAt = &t
	}
	return s
}

// UnconvertedCount reports how many records still await conversion.
func (c *Client) UnconvertedCount(ctx context.Context) (int, error) {
	return c.store.CountUnconverted(ctx)
}

// Store exposes the underlying document store to the control plane.
func (c *Client) Store() store.Store { return c.store }

// begin claims the run mutex. A trigger while a run is active is rejected
// with ErrRunInProgress.
func (c *Client) begin() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return "", types.ErrRunInProgress
	}
	c.running = true
	c.runID = uuid.New().String()
	c.startedAt = time.Now()
	c.state = types.StateLoading
	return c.runID, nil
}

func (c *Client) setState(s types.RunState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) finish(result *types.RunResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.lastResult = result
	if result.Succeeded() {
		c.state = types.StateDone
	} else {
		c.state = types.StateFailed
	}
}
