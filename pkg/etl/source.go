// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SourceRow is one modified row read from a watched table. EntityID holds
// the value of the pipeline's entity id column; for most tables that is the
// row id itself, for link tables it is the film_work_id.
type SourceRow struct {
	ID         uuid.UUID
	EntityID   uuid.UUID
	ModifiedAt time.Time
}

// JoinSpec describes how a change in a source table maps to target entity
// ids through a link table.
type JoinSpec struct {
	Table       string
	JoinField   string
	SelectField string
}

// RoleCredit is one person attached to a film work with a role, as
// aggregated by the movies denormalization query.
type RoleCredit struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// GenreRef is one genre attached to a film work.
type GenreRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilmRole is one film a person participated in, with their role.
type FilmRole struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// FilmRef is one film attached to a genre.
type FilmRef struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	IMDBRating *float64 `json:"imdb_rating"`
}

// DenormalizedMovie is the single-round-trip payload for one movies
// document.
type DenormalizedMovie struct {
	ID          uuid.UUID
	Title       string
	Description *string
	Rating      *float64
	Persons     []RoleCredit
	Genres      []GenreRef
}

// DenormalizedPerson is the single-round-trip payload for one persons
// document.
type DenormalizedPerson struct {
	ID       uuid.UUID
	FullName string
	Films    []FilmRole
}

// DenormalizedGenre is the single-round-trip payload for one genres
// document.
type DenormalizedGenre struct {
	ID    uuid.UUID
	Name  string
	Films []FilmRef
}

// Source reads modified rows from the relational store and assembles full
// document payloads for target entity ids. All failures are wrapped in
// SourceError.
type Source interface {
	// FetchModified returns up to limit rows of table modified since the
	// watermark, in (timestampField, id) order. An empty result means there
	// is no new work.
	FetchModified(ctx context.Context, table, entityField, timestampField string, mark Watermark, limit int) ([]SourceRow, error)

	// MapThroughJoin maps source row ids to target entity ids through a
	// link table. The result may be empty.
	MapThroughJoin(ctx context.Context, join JoinSpec, ids []uuid.UUID) ([]uuid.UUID, error)

	// DenormalizeMovies assembles movies payloads for the given film work
	// ids in one query.
	DenormalizeMovies(ctx context.Context, ids []uuid.UUID) ([]DenormalizedMovie, error)

	// DenormalizePersons assembles persons payloads for the given person
	// ids in one query.
	DenormalizePersons(ctx context.Context, ids []uuid.UUID) ([]DenormalizedPerson, error)

	// DenormalizeGenres assembles genres payloads for the given genre ids
	// in one query.
	DenormalizeGenres(ctx context.Context, ids []uuid.UUID) ([]DenormalizedGenre, error)

	Close() error
}
