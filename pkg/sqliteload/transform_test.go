// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package sqliteload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestTransformSingleMovie(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data := LegacyData{
		Movies: []LegacyMovie{{
			ID:         "tt0000001",
			Genre:      strptr("Drama, Comedy"),
			Director:   strptr("Dana Director"),
			Title:      "The Example",
			Plot:       strptr("Something happens."),
			IMDBRating: strptr("7.5"),
			WriterIDs:  []string{"w1"},
		}},
		MovieActors: map[string][]int64{"tt0000001": {1, 2}},
		ActorNames:  map[int64]string{1: "Ann Actor", 2: "Bob Actor"},
		WriterNames: map[string]string{"w1": "Will Writer"},
	}

	dataset, err := Transform(data, now)
	require.NoError(t, err)

	require.Len(t, dataset.FilmWorks, 1)
	film := dataset.FilmWorks[0]
	require.Equal(t, "The Example", film.Title)
	require.Equal(t, "Something happens.", *film.Description)
	require.Equal(t, 7.5, *film.Rating)
	require.Equal(t, "movie", film.Type)
	require.Equal(t, now, film.CreatedAt)

	require.Len(t, dataset.Genres, 2)
	require.Equal(t, "Drama", dataset.Genres[0].Name)
	require.Equal(t, "Comedy", dataset.Genres[1].Name)
	require.Len(t, dataset.GenreFilmWorks, 2)

	// director + two actors + one writer
	require.Len(t, dataset.Persons, 4)
	require.Len(t, dataset.PersonFilmWorks, 4)

	roles := map[string]int{}
	for _, link := range dataset.PersonFilmWorks {
		require.Equal(t, film.ID, link.FilmWorkID)
		roles[link.Role]++
	}
	require.Equal(t, map[string]int{"director": 1, "actor": 2, "writer": 1}, roles)
}

func TestTransformReusesIDsAcrossMovies(t *testing.T) {
	now := time.Now().UTC()
	data := LegacyData{
		Movies: []LegacyMovie{
			{ID: "tt1", Genre: strptr("Drama"), Director: strptr("Dana Director"), Title: "One"},
			{ID: "tt2", Genre: strptr("Drama"), Director: strptr("Dana Director"), Title: "Two"},
		},
		MovieActors: map[string][]int64{"tt1": {1}, "tt2": {1}},
		ActorNames:  map[int64]string{1: "Ann Actor"},
	}

	dataset, err := Transform(data, now)
	require.NoError(t, err)

	require.Len(t, dataset.Genres, 1)
	require.Len(t, dataset.Persons, 2)

	require.Len(t, dataset.GenreFilmWorks, 2)
	require.Equal(t, dataset.GenreFilmWorks[0].GenreID, dataset.GenreFilmWorks[1].GenreID)
	require.NotEqual(t, dataset.GenreFilmWorks[0].FilmWorkID, dataset.GenreFilmWorks[1].FilmWorkID)
}

func TestTransformActorAndDirectorShareName(t *testing.T) {
	now := time.Now().UTC()
	data := LegacyData{
		Movies: []LegacyMovie{
			{ID: "tt1", Director: strptr("Sam Auteur"), Title: "One"},
		},
		MovieActors: map[string][]int64{"tt1": {7}},
		ActorNames:  map[int64]string{7: "Sam Auteur"},
	}

	dataset, err := Transform(data, now)
	require.NoError(t, err)

	require.Len(t, dataset.Persons, 1)
	require.Len(t, dataset.PersonFilmWorks, 2)
	require.Equal(t, dataset.PersonFilmWorks[0].PersonID, dataset.PersonFilmWorks[1].PersonID)
}

func TestTransformMissingOptionalFields(t *testing.T) {
	dataset, err := Transform(LegacyData{
		Movies: []LegacyMovie{{ID: "tt1", Title: "Bare"}},
	}, time.Now().UTC())
	require.NoError(t, err)

	require.Len(t, dataset.FilmWorks, 1)
	require.Nil(t, dataset.FilmWorks[0].Description)
	require.Nil(t, dataset.FilmWorks[0].Rating)
	require.Empty(t, dataset.Genres)
	require.Empty(t, dataset.Persons)
}

func TestTransformBadRating(t *testing.T) {
	_, err := Transform(LegacyData{
		Movies: []LegacyMovie{{ID: "tt1", Title: "Bad", IMDBRating: strptr("unrated")}},
	}, time.Now().UTC())
	require.Error(t, err)
	require.True(t, Error.Has(err))
}

func TestCleaned(t *testing.T) {
	require.Nil(t, cleaned(""))
	require.Nil(t, cleaned("N/A"))
	require.Equal(t, "x", *cleaned("x"))
}

func TestParseWriterIDs(t *testing.T) {
	invalid := map[string]bool{"bad": true}

	ids, err := parseWriterIDs(`[{"id":"w1"},{"id":"w2"},{"id":"w1"},{"id":"bad"}]`, "", invalid)
	require.NoError(t, err)
	require.Equal(t, []string{"w1", "w2"}, ids)

	ids, err = parseWriterIDs("", "w3", invalid)
	require.NoError(t, err)
	require.Equal(t, []string{"w3"}, ids)

	ids, err = parseWriterIDs("", "bad", invalid)
	require.NoError(t, err)
	require.Empty(t, ids)

	_, err = parseWriterIDs("{nope", "", invalid)
	require.Error(t, err)
}
