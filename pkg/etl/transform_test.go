// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	filmID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	personID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	genreID  = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string { return &v }

func TestTransformMoviesRoleSplit(t *testing.T) {
	films := []DenormalizedMovie{{
		ID:          filmID,
		Title:       "The Example",
		Description: strPtr("a film"),
		Rating:      floatPtr(7.5),
		Persons: []RoleCredit{
			{ID: personID.String(), FullName: "Ann Actor", Role: "actor"},
			{ID: "44444444-4444-4444-4444-444444444444", FullName: "Will Writer", Role: "writer"},
			{ID: "55555555-5555-5555-5555-555555555555", FullName: "Dana Director", Role: "director"},
		},
		Genres: []GenreRef{
			{ID: genreID.String(), Name: "Drama"},
		},
	}}

	docs, err := TransformMovies(films)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	movie, ok := docs[0].(Movie)
	require.True(t, ok)
	require.Equal(t, filmID.String(), movie.ID)
	require.Equal(t, 7.5, *movie.IMDBRating)
	require.Equal(t, []string{"Ann Actor"}, movie.ActorsNames)
	require.Equal(t, []string{"Will Writer"}, movie.WritersNames)
	require.Equal(t, []string{"Dana Director"}, movie.DirectorsNames)
	require.Equal(t, []string{"Drama"}, movie.GenresNames)
	require.Equal(t, []Credit{{ID: personID.String(), Name: "Ann Actor"}}, movie.Actors)
	require.Equal(t, []Credit{{ID: genreID.String(), Name: "Drama"}}, movie.Genres)
}

func TestTransformMoviesEmptyFanOut(t *testing.T) {
	// NULL lateral aggregates arrive as nil slices; the document must still
	// carry empty arrays, never null.
	docs, err := TransformMovies([]DenormalizedMovie{{
		ID:    filmID,
		Title: "A",
	}})
	require.NoError(t, err)

	movie := docs[0].(Movie)
	require.Nil(t, movie.IMDBRating)
	require.Nil(t, movie.Description)
	require.NotNil(t, movie.Actors)
	require.Empty(t, movie.Actors)
	require.NotNil(t, movie.ActorsNames)
	require.NotNil(t, movie.Writers)
	require.NotNil(t, movie.Directors)
	require.NotNil(t, movie.Genres)
	require.NotNil(t, movie.GenresNames)
	require.NoError(t, movie.Validate())
}

func TestTransformMoviesUnknownRole(t *testing.T) {
	_, err := TransformMovies([]DenormalizedMovie{{
		ID:    filmID,
		Title: "A",
		Persons: []RoleCredit{
			{ID: personID.String(), FullName: "X", Role: "producer"},
		},
	}})
	require.True(t, ErrTransform.Has(err))
}

func TestTransformMoviesInvalidCreditID(t *testing.T) {
	_, err := TransformMovies([]DenormalizedMovie{{
		ID:    filmID,
		Title: "A",
		Persons: []RoleCredit{
			{ID: "not-a-uuid", FullName: "X", Role: "actor"},
		},
	}})
	require.True(t, ErrTransform.Has(err))
}

func TestTransformPersonsDedupe(t *testing.T) {
	otherFilm := "66666666-6666-6666-6666-666666666666"
	docs, err := TransformPersons([]DenormalizedPerson{{
		ID:       personID,
		FullName: "Ann Actor",
		Films: []FilmRole{
			{ID: filmID.String(), Role: "actor"},
			{ID: filmID.String(), Role: "director"},
			{ID: otherFilm, Role: "actor"},
		},
	}})
	require.NoError(t, err)

	person := docs[0].(Person)
	require.Equal(t, []string{"actor", "director"}, person.Roles)
	require.Equal(t, []string{filmID.String(), otherFilm}, person.FilmIDs)
	require.NoError(t, person.Validate())
}

func TestTransformPersonsNoFilms(t *testing.T) {
	docs, err := TransformPersons([]DenormalizedPerson{{
		ID:       personID,
		FullName: "Ann Actor",
	}})
	require.NoError(t, err)

	person := docs[0].(Person)
	require.NotNil(t, person.Roles)
	require.Empty(t, person.Roles)
	require.NotNil(t, person.FilmIDs)
}

func TestTransformGenresRename(t *testing.T) {
	docs, err := TransformGenres([]DenormalizedGenre{{
		ID:   genreID,
		Name: "Drama",
		Films: []FilmRef{
			{ID: filmID.String(), Title: "The Example", IMDBRating: floatPtr(7.5)},
			{ID: "66666666-6666-6666-6666-666666666666", Title: "Unrated"},
		},
	}})
	require.NoError(t, err)

	genre := docs[0].(Genre)
	require.Equal(t, "Drama", genre.Name)
	require.Len(t, genre.Filmworks, 2)
	require.Equal(t, 7.5, *genre.Filmworks[0].IMDBRating)
	require.Nil(t, genre.Filmworks[1].IMDBRating)
	require.NoError(t, genre.Validate())
}

func TestTransformPurity(t *testing.T) {
	films := []DenormalizedMovie{{
		ID:    filmID,
		Title: "A",
		Persons: []RoleCredit{
			{ID: personID.String(), FullName: "Ann Actor", Role: "actor"},
		},
		Genres: []GenreRef{{ID: genreID.String(), Name: "Drama"}},
	}}

	first, err := TransformMovies(films)
	require.NoError(t, err)
	second, err := TransformMovies(films)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
