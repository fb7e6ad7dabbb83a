// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

// Package etl implements the incremental change-propagation daemon. It
// watches the normalized movie tables in PostgreSQL for modified rows and
// projects them into denormalized documents in the movies, persons and
// genres Elasticsearch indices, remembering its progress in an external
// key-value store.
package etl

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var mon = monkit.Package()

var (
	// Error is the general error class of this package.
	Error = errs.Class("etl error")

	// ErrConfig is returned for invalid daemon configuration; fatal at
	// startup.
	ErrConfig = errs.Class("config error")

	// SourceError wraps relational store failures; callers retry with
	// backoff.
	SourceError = errs.Class("source unavailable")

	// StateError wraps state store failures; callers retry with backoff and
	// the watermark is not advanced.
	StateError = errs.Class("state unavailable")

	// LoadError wraps search engine connection failures; callers retry with
	// backoff.
	LoadError = errs.Class("load unavailable")

	// ErrTransform marks a document that violates its destination schema.
	// This indicates a source-data or code bug: the batch is abandoned
	// without advancing the watermark and the error is never retried.
	ErrTransform = errs.Class("transform error")
)

// Destination index names.
const (
	IndexMovies  = "movies"
	IndexPersons = "persons"
	IndexGenres  = "genres"
)
