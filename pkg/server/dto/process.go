package dto

import "github.com/jurisgraph/jurisgraph/pkg/types"

// ProcessRequest triggers a processing run. With no fields set, the run
// covers the unconverted documents only.
type ProcessRequest struct {
	// DocIDs restricts the run to the named documents.
	DocIDs []string `json:"doc_ids,omitempty"`
	// ForceReprocess resets the converted flag on DocIDs before processing.
	ForceReprocess bool `json:"force_reprocess,omitempty"`
	// Full regenerates the triple file from every document in the store.
	Full bool `json:"full,omitempty"`
	// DryRun writes the triple file but skips upload and marking.
	DryRun bool `json:"dry_run,omitempty"`
	// Append adds to the existing triple file instead of overwriting it.
	Append *bool `json:"append,omitempty"`
}

// ProcessResponse acknowledges an accepted run.
type ProcessResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ProcessID string `json:"process_id,omitempty"`
}

// StatusResponse reports the coordinator state and the last run's outcome.
type StatusResponse struct {
	State      string           `json:"state"`
	Running    bool             `json:"running"`
	RunID      string           `json:"run_id,omitempty"`
	LastResult *types.RunResult `json:"last_result,omitempty"`
}

// DocumentCountResponse reports store-level document counts.
type DocumentCountResponse struct {
	Total       int `json:"total"`
	Unconverted int `json:"unconverted"`
}

// UnconvertedResponse lists the documents awaiting conversion.
type UnconvertedResponse struct {
	Count  int      `json:"count"`
	DocIDs []string `json:"doc_ids"`
}

// MarkRequest names documents whose converted flag should change.
type MarkRequest struct {
	DocIDs []string `json:"doc_ids" binding:"required"`
}

// MarkResponse reports how many documents were updated.
type MarkResponse struct {
	Success bool   `json:"success"`
	Updated int    `json:"updated"`
	Message string `json:"message,omitempty"`
}
