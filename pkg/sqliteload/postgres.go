// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package sqliteload

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/zeebo/errs"
)

// OpenTarget opens the target PostgreSQL database.
func OpenTarget(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, errs.Combine(Error.Wrap(err), db.Close())
	}
	return db, nil
}

// WriteAll executes the schema init script and bulk-copies the dataset,
// all in one transaction.
func WriteAll(ctx context.Context, db *sql.DB, initSQL string, dataset Dataset) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, tx.Rollback())
		}
	}()

	if _, err := tx.ExecContext(ctx, initSQL); err != nil {
		return Error.New("init script: %v", err)
	}

	err = copyRows(ctx, tx, "film_work",
		[]string{"id", "title", "description", "rating", "type", "created_at", "updated_at"},
		len(dataset.FilmWorks), func(i int) []interface{} {
			row := dataset.FilmWorks[i]
			return []interface{}{row.ID.String(), row.Title, row.Description, row.Rating, row.Type, row.CreatedAt, row.UpdatedAt}
		})
	if err != nil {
		return err
	}

	err = copyRows(ctx, tx, "person",
		[]string{"id", "full_name", "created_at", "updated_at"},
		len(dataset.Persons), func(i int) []interface{} {
			row := dataset.Persons[i]
			return []interface{}{row.ID.String(), row.FullName, row.CreatedAt, row.UpdatedAt}
		})
	if err != nil {
		return err
	}

	err = copyRows(ctx, tx, "genre",
		[]string{"id", "name", "created_at", "updated_at"},
		len(dataset.Genres), func(i int) []interface{} {
			row := dataset.Genres[i]
			return []interface{}{row.ID.String(), row.Name, row.CreatedAt, row.UpdatedAt}
		})
	if err != nil {
		return err
	}

	err = copyRows(ctx, tx, "person_film_work",
		[]string{"id", "film_work_id", "person_id", "role", "created_at"},
		len(dataset.PersonFilmWorks), func(i int) []interface{} {
			row := dataset.PersonFilmWorks[i]
			return []interface{}{row.ID.String(), row.FilmWorkID.String(), row.PersonID.String(), row.Role, row.CreatedAt}
		})
	if err != nil {
		return err
	}

	err = copyRows(ctx, tx, "genre_film_work",
		[]string{"id", "film_work_id", "genre_id", "created_at"},
		len(dataset.GenreFilmWorks), func(i int) []interface{} {
			row := dataset.GenreFilmWorks[i]
			return []interface{}{row.ID.String(), row.FilmWorkID.String(), row.GenreID.String(), row.CreatedAt}
		})
	if err != nil {
		return err
	}

	return Error.Wrap(tx.Commit())
}

func copyRows(ctx context.Context, tx *sql.Tx, table string, columns []string, count int, row func(i int) []interface{}) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return Error.Wrap(err)
	}

	for i := 0; i < count; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return errs.Combine(Error.Wrap(err), stmt.Close())
		}
	}
	// flush the copy buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return errs.Combine(Error.Wrap(err), stmt.Close())
	}
	return Error.Wrap(stmt.Close())
}
