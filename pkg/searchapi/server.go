// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

// Package searchapi implements the read facade over the movies index. It
// serves movie lookups and paginated listings; all data comes from the
// documents the daemon maintains.
package searchapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/movielab/searchsync/pkg/etl"
)

const (
	defaultLimit = 50
	defaultPage  = 1
)

// ListParams are the validated listing parameters.
type ListParams struct {
	Limit     int
	Page      int
	Sort      string
	SortOrder string
	Search    string
}

// ListItem is one row of a listing response.
type ListItem struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	IMDBRating *float64 `json:"imdb_rating"`
}

// MovieInfo is the facade view of one movies document.
type MovieInfo struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	IMDBRating  *float64     `json:"imdb_rating"`
	Writers     []etl.Credit `json:"writers"`
	Actors      []etl.Credit `json:"actors"`
	Genres      []string     `json:"genres"`
	Directors   []string     `json:"directors"`
}

// Searcher is the read interface over the movies index.
type Searcher interface {
	// GetMovie returns the document indexed under id, or ErrNotFound.
	GetMovie(ctx context.Context, id string) (*etl.Movie, error)
	// ListMovies returns one page of listing items.
	ListMovies(ctx context.Context, params ListParams) ([]ListItem, error)
}

// Server implements the REST API for movie search.
type Server struct {
	log      *zap.Logger
	searcher Searcher
	endpoint string
	handler  http.Handler
}

// NewServer creates a new search facade server.
func NewServer(log *zap.Logger, searcher Searcher, endpoint string) *Server {
	server := &Server{
		log:      log,
		searcher: searcher,
		endpoint: endpoint,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/movies/{id}", server.handleMovie).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/", server.handleList).Methods(http.MethodGet)
	server.handler = router

	return server
}

// Handler exposes the router, mainly for tests.
func (server *Server) Handler() http.Handler { return server.handler }

// Run serves until the context is cancelled.
func (server *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{Addr: server.endpoint, Handler: server.handler}

	go func() {
		<-ctx.Done()
		_ = httpServer.Shutdown(context.Background())
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (server *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	movie, err := server.searcher.GetMovie(ctx, id)
	if err != nil {
		server.errorResponse(w, err)
		return
	}

	server.jsonResponse(w, http.StatusOK, MovieInfo{
		ID:          movie.ID,
		Title:       movie.Title,
		Description: movie.Description,
		IMDBRating:  movie.IMDBRating,
		Writers:     movie.Writers,
		Actors:      movie.Actors,
		Genres:      movie.GenresNames,
		Directors:   movie.DirectorsNames,
	})
}

func (server *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := parseListParams(r)
	if err != nil {
		server.errorResponse(w, err)
		return
	}

	items, err := server.searcher.ListMovies(ctx, params)
	if err != nil {
		server.errorResponse(w, err)
		return
	}
	if items == nil {
		items = []ListItem{}
	}

	server.jsonResponse(w, http.StatusOK, items)
}

func parseListParams(r *http.Request) (ListParams, error) {
	params := ListParams{
		Limit:     defaultLimit,
		Page:      defaultPage,
		Sort:      "id",
		SortOrder: "asc",
	}
	query := r.URL.Query()

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return ListParams{}, ErrInvalidQuery
		}
		params.Limit = limit
	}
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return ListParams{}, ErrInvalidQuery
		}
		params.Page = page
	}
	if raw := query.Get("sort"); raw != "" {
		switch raw {
		case "id", "title", "imdb_rating":
			params.Sort = raw
		default:
			return ListParams{}, ErrInvalidQuery
		}
	}
	if raw := query.Get("sort_order"); raw != "" {
		switch raw {
		case "asc", "desc":
			params.SortOrder = raw
		default:
			return ListParams{}, ErrInvalidQuery
		}
	}
	params.Search = query.Get("search")

	return params, nil
}

func (server *Server) jsonResponse(w http.ResponseWriter, status int, body interface{}) {
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		server.errorResponse(w, ErrInternalError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(jsonBytes)
}

func (server *Server) errorResponse(w http.ResponseWriter, err error) {
	var e *ErrorResponse
	if !errors.As(err, &e) {
		server.log.Warn("error during API request", zap.Error(err))
		e = ErrInternalError
	}

	resp, _ := json.Marshal(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_, _ = w.Write(resp)
}
