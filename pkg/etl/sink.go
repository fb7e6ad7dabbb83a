// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

import (
	"context"
)

// BulkResult reports the outcome of one bulk write.
type BulkResult struct {
	// Stored is the number of documents the engine accepted.
	Stored int
	// Rejected lists ids of documents the engine rejected item-level.
	// Rejects are logged and counted but do not block progress: reverting
	// the watermark for a single bad row would stall the pipeline forever.
	Rejected []string
}

// Sink writes document batches into the search engine with full-document
// upsert semantics keyed by (index, id). Connection failures are wrapped in
// LoadError.
type Sink interface {
	Store(ctx context.Context, index string, docs []Document) (BulkResult, error)
	Close() error
}
