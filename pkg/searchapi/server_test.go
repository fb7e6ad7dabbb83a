// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package searchapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/movielab/searchsync/pkg/etl"
)

type fakeSearcher struct {
	movies     map[string]etl.Movie
	items      []ListItem
	lastParams ListParams
}

func (searcher *fakeSearcher) GetMovie(ctx context.Context, id string) (*etl.Movie, error) {
	movie, ok := searcher.movies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &movie, nil
}

func (searcher *fakeSearcher) ListMovies(ctx context.Context, params ListParams) ([]ListItem, error) {
	searcher.lastParams = params
	return searcher.items, nil
}

func newTestServer(t *testing.T, searcher Searcher) *Server {
	return NewServer(zaptest.NewLogger(t), searcher, ":0")
}

func TestGetMovie(t *testing.T) {
	id := "11111111-1111-1111-1111-111111111111"
	rating := 7.5
	searcher := &fakeSearcher{movies: map[string]etl.Movie{
		id: {
			ID:             id,
			Title:          "The Example",
			IMDBRating:     &rating,
			GenresNames:    []string{"Drama"},
			DirectorsNames: []string{"Dana Director"},
			Actors:         []etl.Credit{{ID: "22222222-2222-2222-2222-222222222222", Name: "Ann Actor"}},
			Writers:        []etl.Credit{},
		},
	}}
	server := newTestServer(t, searcher)

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/movies/"+id, nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var info MovieInfo
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &info))
	require.Equal(t, "The Example", info.Title)
	require.Equal(t, 7.5, *info.IMDBRating)
	require.Equal(t, []string{"Drama"}, info.Genres)
	require.Equal(t, []string{"Dana Director"}, info.Directors)
	require.Len(t, info.Actors, 1)
}

func TestGetMovieNotFound(t *testing.T) {
	server := newTestServer(t, &fakeSearcher{})

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/movies/unknown", nil))
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListDefaults(t *testing.T) {
	searcher := &fakeSearcher{}
	server := newTestServer(t, searcher)

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/movies/", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, ListParams{Limit: 50, Page: 1, Sort: "id", SortOrder: "asc"}, searcher.lastParams)

	// empty result serializes as an empty array
	require.JSONEq(t, "[]", recorder.Body.String())
}

func TestListParams(t *testing.T) {
	searcher := &fakeSearcher{items: []ListItem{{ID: "a", Title: "A"}}}
	server := newTestServer(t, searcher)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet,
		"/api/movies/?limit=10&page=3&sort=imdb_rating&sort_order=desc&search=drama", nil)
	server.Handler().ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, ListParams{
		Limit: 10, Page: 3, Sort: "imdb_rating", SortOrder: "desc", Search: "drama",
	}, searcher.lastParams)
}

func TestListInvalidParams(t *testing.T) {
	server := newTestServer(t, &fakeSearcher{})

	for _, target := range []string{
		"/api/movies/?limit=0",
		"/api/movies/?limit=nope",
		"/api/movies/?page=-1",
		"/api/movies/?sort=rating",
		"/api/movies/?sort_order=sideways",
	} {
		recorder := httptest.NewRecorder()
		server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code, target)
	}
}
