// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PGSource implements Source on a PostgreSQL connection pool.
//
// Table and column names are interpolated into query text; they come from
// the static pipeline catalog, never from user input.
type PGSource struct {
	db *sql.DB
}

// OpenPGSource opens a connection pool to the given database URL and
// verifies it.
func OpenPGSource(ctx context.Context, url string) (*PGSource, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, SourceError.Wrap(err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, SourceError.Wrap(err)
	}
	return &PGSource{db: db}, nil
}

// Close closes the connection pool.
func (source *PGSource) Close() error {
	return source.db.Close()
}

// fetchModifiedSQL renders the incremental fetch query. The composite
// predicate is load-bearing: `ts > $1` alone loses rows that share the
// watermark timestamp, `ts >= $1` replays the watermark row forever. The
// (timestamp, id) tuple is a strict total order and the watermark is the
// last tuple actually consumed.
func fetchModifiedSQL(table, entityField, timestampField string) string {
	return fmt.Sprintf(`
		SELECT id, %[2]s, %[3]s
		FROM %[1]s
		WHERE (%[3]s = $1 AND id > $2::uuid)
		   OR %[3]s > $1
		ORDER BY %[3]s, id
		LIMIT $3
	`, table, entityField, timestampField)
}

// FetchModified implements Source.
func (source *PGSource) FetchModified(ctx context.Context, table, entityField, timestampField string, mark Watermark, limit int) (_ []SourceRow, err error) {
	defer mon.Task()(&ctx)(&err)

	query := fetchModifiedSQL(table, entityField, timestampField)
	rows, err := source.db.QueryContext(ctx, query, mark.UpdatedAt, mark.LastID.String(), limit)
	if err != nil {
		return nil, SourceError.Wrap(err)
	}
	defer func() { err = combine(err, rows.Close()) }()

	var result []SourceRow
	for rows.Next() {
		var row SourceRow
		if err := rows.Scan(&row.ID, &row.EntityID, &row.ModifiedAt); err != nil {
			return nil, SourceError.Wrap(err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, SourceError.Wrap(err)
	}
	return result, nil
}

// MapThroughJoin implements Source.
func (source *PGSource) MapThroughJoin(ctx context.Context, join JoinSpec, ids []uuid.UUID) (_ []uuid.UUID, err error) {
	defer mon.Task()(&ctx)(&err)

	query := fmt.Sprintf(`
		SELECT t.%s AS id
		FROM %s t
		WHERE t.%s = ANY($1::uuid[])
	`, join.SelectField, join.Table, join.JoinField)

	rows, err := source.db.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, SourceError.Wrap(err)
	}
	defer func() { err = combine(err, rows.Close()) }()

	var result []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, SourceError.Wrap(err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, SourceError.Wrap(err)
	}
	return result, nil
}

// The denormalization queries bound work to a single round trip per batch:
// lateral joins with jsonb aggregation keep the nested-array size
// proportional to each entity's natural fan-out. A NULL aggregate (no
// linked rows) scans as a nil slice and is coerced to an empty array by the
// transformer.

const denormalizeMoviesSQL = `
	SELECT fw.id, fw.title, fw.description, fw.rating, fwp.persons, fwg.genres
	FROM "public".film_work fw
	LEFT JOIN LATERAL (
		SELECT jsonb_agg(jsonb_build_object(
			'id', p.id,
			'full_name', p.full_name,
			'role', pfw.role
		)) AS persons
		FROM "public".person_film_work pfw
		JOIN "public".person p ON p.id = pfw.person_id
		WHERE pfw.film_work_id = fw.id
	) fwp ON TRUE
	LEFT JOIN LATERAL (
		SELECT jsonb_agg(jsonb_build_object(
			'id', g.id,
			'name', g.name
		)) AS genres
		FROM "public".genre_film_work gfw
		JOIN "public".genre g ON g.id = gfw.genre_id
		WHERE gfw.film_work_id = fw.id
	) fwg ON TRUE
	WHERE fw.id = ANY($1::uuid[])
`

// DenormalizeMovies implements Source.
func (source *PGSource) DenormalizeMovies(ctx context.Context, ids []uuid.UUID) (_ []DenormalizedMovie, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := source.db.QueryContext(ctx, denormalizeMoviesSQL, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, SourceError.Wrap(err)
	}
	defer func() { err = combine(err, rows.Close()) }()

	var result []DenormalizedMovie
	for rows.Next() {
		var film DenormalizedMovie
		var description sql.NullString
		var rating sql.NullFloat64
		var persons, genres []byte
		if err := rows.Scan(&film.ID, &film.Title, &description, &rating, &persons, &genres); err != nil {
			return nil, SourceError.Wrap(err)
		}
		if description.Valid {
			film.Description = &description.String
		}
		if rating.Valid {
			film.Rating = &rating.Float64
		}
		if err := unmarshalAggregate(persons, &film.Persons); err != nil {
			return nil, err
		}
		if err := unmarshalAggregate(genres, &film.Genres); err != nil {
			return nil, err
		}
		result = append(result, film)
	}
	if err := rows.Err(); err != nil {
		return nil, SourceError.Wrap(err)
	}
	return result, nil
}

const denormalizePersonsSQL = `
	SELECT p.id, p.full_name, fwp.films
	FROM "public".person p
	LEFT JOIN LATERAL (
		SELECT jsonb_agg(jsonb_build_object(
			'id', pfw.film_work_id,
			'role', pfw.role
		)) AS films
		FROM "public".person_film_work pfw
		WHERE pfw.person_id = p.id
	) fwp ON TRUE
	WHERE p.id = ANY($1::uuid[])
`

// DenormalizePersons implements Source.
func (source *PGSource) DenormalizePersons(ctx context.Context, ids []uuid.UUID) (_ []DenormalizedPerson, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := source.db.QueryContext(ctx, denormalizePersonsSQL, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, SourceError.Wrap(err)
	}
	defer func() { err = combine(err, rows.Close()) }()

	var result []DenormalizedPerson
	for rows.Next() {
		var person DenormalizedPerson
		var films []byte
		if err := rows.Scan(&person.ID, &person.FullName, &films); err != nil {
			return nil, SourceError.Wrap(err)
		}
		if err := unmarshalAggregate(films, &person.Films); err != nil {
			return nil, err
		}
		result = append(result, person)
	}
	if err := rows.Err(); err != nil {
		return nil, SourceError.Wrap(err)
	}
	return result, nil
}

const denormalizeGenresSQL = `
	SELECT g.id, g.name, fwg.filmworks
	FROM "public".genre g
	LEFT JOIN LATERAL (
		SELECT jsonb_agg(jsonb_build_object(
			'id', fw.id,
			'title', fw.title,
			'imdb_rating', fw.rating
		)) AS filmworks
		FROM "public".genre_film_work gfw
		JOIN "public".film_work fw ON fw.id = gfw.film_work_id
		WHERE gfw.genre_id = g.id
	) fwg ON TRUE
	WHERE g.id = ANY($1::uuid[])
`

// DenormalizeGenres implements Source.
func (source *PGSource) DenormalizeGenres(ctx context.Context, ids []uuid.UUID) (_ []DenormalizedGenre, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := source.db.QueryContext(ctx, denormalizeGenresSQL, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, SourceError.Wrap(err)
	}
	defer func() { err = combine(err, rows.Close()) }()

	var result []DenormalizedGenre
	for rows.Next() {
		var genre DenormalizedGenre
		var films []byte
		if err := rows.Scan(&genre.ID, &genre.Name, &films); err != nil {
			return nil, SourceError.Wrap(err)
		}
		if err := unmarshalAggregate(films, &genre.Films); err != nil {
			return nil, err
		}
		result = append(result, genre)
	}
	if err := rows.Err(); err != nil {
		return nil, SourceError.Wrap(err)
	}
	return result, nil
}

// unmarshalAggregate decodes a jsonb_agg column. NULL leaves the target
// slice nil.
func unmarshalAggregate(raw []byte, target interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return SourceError.New("malformed aggregate: %v", err)
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, id.String())
	}
	return result
}

func combine(err, closeErr error) error {
	if err != nil {
		return err
	}
	return SourceError.Wrap(closeErr)
}
