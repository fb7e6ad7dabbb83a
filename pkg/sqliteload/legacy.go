// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

// Package sqliteload migrates the legacy SQLite movie database into the
// normalized PostgreSQL schema the daemon watches. It is a one-shot tool:
// fetch everything, transform in memory, write in one transaction.
package sqliteload

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/errs"
)

// Error is the error class of this package.
var Error = errs.Class("sqliteload error")

// The legacy database stores "N/A" and the empty string where it means
// no value.
func cleaned(value string) *string {
	if value == "N/A" || value == "" {
		return nil
	}
	return &value
}

// LegacyMovie is one row of the legacy movies table with empty markers
// already normalized to nil.
type LegacyMovie struct {
	ID         string
	Genre      *string
	Director   *string
	Title      string
	Plot       *string
	IMDBRating *string
	WriterIDs  []string
}

// LegacyData is the legacy database fetched into memory.
type LegacyData struct {
	Movies      []LegacyMovie
	MovieActors map[string][]int64
	ActorNames  map[int64]string
	WriterNames map[string]string
}

// OpenLegacy opens the legacy SQLite database file.
func OpenLegacy(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return db, nil
}

// FetchLegacy reads the whole legacy database, dropping actors and writers
// without a usable name.
func FetchLegacy(db *sql.DB) (LegacyData, error) {
	data := LegacyData{
		MovieActors: map[string][]int64{},
		ActorNames:  map[int64]string{},
		WriterNames: map[string]string{},
	}

	invalidActors := map[int64]bool{}
	err := forEachRow(db, `SELECT DISTINCT id, name FROM actors`, func(rows *sql.Rows) error {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		if cleaned(name) == nil {
			invalidActors[id] = true
			return nil
		}
		data.ActorNames[id] = name
		return nil
	})
	if err != nil {
		return LegacyData{}, err
	}

	invalidWriters := map[string]bool{}
	err = forEachRow(db, `SELECT DISTINCT id, name FROM writers`, func(rows *sql.Rows) error {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		if cleaned(name) == nil {
			invalidWriters[id] = true
			return nil
		}
		data.WriterNames[id] = name
		return nil
	})
	if err != nil {
		return LegacyData{}, err
	}

	err = forEachRow(db, `SELECT DISTINCT movie_id, actor_id FROM movie_actors`, func(rows *sql.Rows) error {
		var movieID string
		var actorID int64
		if err := rows.Scan(&movieID, &actorID); err != nil {
			return err
		}
		if !invalidActors[actorID] {
			data.MovieActors[movieID] = append(data.MovieActors[movieID], actorID)
		}
		return nil
	})
	if err != nil {
		return LegacyData{}, err
	}

	err = forEachRow(db,
		`SELECT DISTINCT id, genre, director, writer, writers, title, plot, imdb_rating FROM movies`,
		func(rows *sql.Rows) error {
			var id, title string
			var genre, director, writer, writersJSON, plot, rating sql.NullString
			if err := rows.Scan(&id, &genre, &director, &writer, &writersJSON, &title, &plot, &rating); err != nil {
				return err
			}

			writerIDs, err := parseWriterIDs(writersJSON.String, writer.String, invalidWriters)
			if err != nil {
				return err
			}

			data.Movies = append(data.Movies, LegacyMovie{
				ID:         id,
				Genre:      cleaned(genre.String),
				Director:   cleaned(director.String),
				Title:      title,
				Plot:       cleaned(plot.String),
				IMDBRating: cleaned(rating.String),
				WriterIDs:  writerIDs,
			})
			return nil
		})
	if err != nil {
		return LegacyData{}, err
	}

	return data, nil
}

// parseWriterIDs decodes the movies.writers JSON list when present and
// falls back to the single writer column, deduplicating in first-seen
// order.
func parseWriterIDs(writersJSON, writer string, invalid map[string]bool) ([]string, error) {
	var ids []string
	if writersJSON != "" {
		var entries []struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(writersJSON), &entries); err != nil {
			return nil, Error.New("malformed writers column: %v", err)
		}
		for _, entry := range entries {
			ids = append(ids, entry.ID)
		}
	} else if writer != "" {
		ids = []string{writer}
	}

	seen := map[string]bool{}
	result := []string{}
	for _, id := range ids {
		if invalid[id] || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result, nil
}

func forEachRow(db *sql.DB, query string, scan func(*sql.Rows) error) (err error) {
	rows, err := db.Query(query)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return Error.Wrap(err)
		}
	}
	return Error.Wrap(rows.Err())
}
