package types

import (
	"errors"
	"time"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// ContextKeyRunID identifies the pipeline run a log record belongs to.
	ContextKeyRunID ContextKey = "run_id"
	// ContextKeyRequestSource identifies where a request originated (cli, server, watcher).
	ContextKeyRequestSource ContextKey = "request_source"
)

var (
	// ErrRunInProgress is returned when a run is triggered while another run
	// holds the pipeline. Concurrent triggers are rejected, never queued.
	ErrRunInProgress = errors.New("a processing run is already in progress")
	// ErrNoDocuments is returned when a full or by-id load yields nothing.
	ErrNoDocuments = errors.New("no documents found in source store")
	// ErrEmptyDocID is returned when a record carries neither a doc_id nor a
	// store-assigned identifier to fall back on.
	ErrEmptyDocID = errors.New("document has no doc_id and no store id")
)

// SourceDocument is one raw record pulled from the document store. Fields
// holds the stored source verbatim; StoreID is the store-assigned identifier,
// used as the doc_id fallback.
type SourceDocument struct {
	StoreID string
	Fields  map[string]any
}

// JudgmentRecord is the normalized, immutable form of one source document.
// It is built once by the normalizer during pass 1 and lives only for the
// duration of a single processing run.
type JudgmentRecord struct {
	DocID        string
	Title        string
	Year         *int
	Outcome      string
	CaseDuration string

	Citations           []string
	Judges              []string
	PetitionerAdvocates []string
	RespondantAdvocates []string

	// NodeID is the stable judgment identifier assigned in pass 1.
	NodeID string
}

// RunState describes where the coordinator is in a processing run.
type RunState string

const (
	StateIdle       RunState = "idle"
	StateLoading    RunState = "loading"
	StateAssembling RunState = "assembling"
	StateEmitting   RunState = "emitting"
	StateUploading  RunState = "uploading"
	StateMarking    RunState = "marking"
	StateDone       RunState = "done"
	StateFailed     RunState = "failed"
)

// RunResult is what a processing run reports back to its caller. A run always
// produces a result; errors are folded into Status/Message rather than thrown
// past the coordinator boundary.
type RunResult struct {
	Status             string    `json:"status"` // "success" or "error"
	Message            string    `json:"message"`
	DocumentsProcessed int       `json:"documents_processed"`
	DocumentsMarked    int       `json:"documents_marked"`
	Stats              *Stats    `json:"stats,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// Succeeded reports whether the run completed without a fatal error.
func (r *RunResult) Succeeded() bool {
	return r != nil && r.Status == "success"
}
