// Package store is the boundary to the document store holding the raw
// judgment records. The pipeline core only depends on the Store interface;
// the production implementation talks to an Elasticsearch index, and MemStore
// backs tests.
package store

import (
	"context"

	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// Store is the pull contract the coordinator consumes: fetch records matching
// all / a given identifier list / unconverted-only, plus the converted-flag
// bookkeeping.
type Store interface {
	// Ping verifies connectivity and index existence.
	Ping(ctx context.Context) error

	// LoadAll fetches every record.
	LoadAll(ctx context.Context) ([]types.SourceDocument, error)

	// LoadByIDs fetches the records with the given doc_ids.
	LoadByIDs(ctx context.Context, docIDs []string) ([]types.SourceDocument, error)

	// LoadUnconverted fetches records whose converted flag is not set.
	LoadUnconverted(ctx context.Context) ([]types.SourceDocument, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int, error)

	// CountUnconverted returns how many records still await conversion.
	CountUnconverted(ctx context.Context) (int, error)

	// MarkConverted sets the converted flag on the given records and returns
	// how many were updated. Only called after the run's statements are
	// durably persisted downstream.
	MarkConverted(ctx context.Context, docIDs []string) (int, error)

	// ResetConverted clears the converted flag on the given records (all
	// records when docIDs is empty) and returns how many were updated.
	ResetConverted(ctx context.Context, docIDs []string) (int, error)
}
