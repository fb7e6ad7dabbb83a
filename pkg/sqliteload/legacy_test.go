// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package sqliteload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const legacySchema = `
	CREATE TABLE movies (
		id TEXT PRIMARY KEY,
		genre TEXT,
		director TEXT,
		writer TEXT,
		writers TEXT,
		title TEXT,
		plot TEXT,
		imdb_rating TEXT
	);
	CREATE TABLE actors (id INTEGER PRIMARY KEY, name TEXT);
	CREATE TABLE writers (id TEXT PRIMARY KEY, name TEXT);
	CREATE TABLE movie_actors (movie_id TEXT, actor_id INTEGER);
`

func TestFetchLegacy(t *testing.T) {
	db, err := OpenLegacy(":memory:")
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	_, err = db.Exec(legacySchema)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO actors VALUES (1, 'Ann Actor'), (2, 'N/A'), (3, '');
		INSERT INTO writers VALUES ('w1', 'Will Writer'), ('w2', 'N/A');
		INSERT INTO movie_actors VALUES ('tt1', 1), ('tt1', 2), ('tt1', 3);
		INSERT INTO movies VALUES
			('tt1', 'Drama', 'Dana Director', '', '[{"id":"w1"},{"id":"w2"}]',
			 'The Example', 'Something happens.', '7.5'),
			('tt2', 'N/A', 'N/A', 'w1', '', 'Bare', 'N/A', 'N/A');
	`)
	require.NoError(t, err)

	data, err := FetchLegacy(db)
	require.NoError(t, err)

	// nameless actors and writers are dropped everywhere
	require.Equal(t, map[int64]string{1: "Ann Actor"}, data.ActorNames)
	require.Equal(t, map[string]string{"w1": "Will Writer"}, data.WriterNames)
	require.Equal(t, map[string][]int64{"tt1": {1}}, data.MovieActors)

	require.Len(t, data.Movies, 2)
	byID := map[string]LegacyMovie{}
	for _, movie := range data.Movies {
		byID[movie.ID] = movie
	}

	first := byID["tt1"]
	require.Equal(t, "The Example", first.Title)
	require.Equal(t, "Drama", *first.Genre)
	require.Equal(t, "Dana Director", *first.Director)
	require.Equal(t, "7.5", *first.IMDBRating)
	require.Equal(t, []string{"w1"}, first.WriterIDs)

	second := byID["tt2"]
	require.Nil(t, second.Genre)
	require.Nil(t, second.Director)
	require.Nil(t, second.Plot)
	require.Nil(t, second.IMDBRating)
	require.Equal(t, []string{"w1"}, second.WriterIDs)
}
