// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package searchapi

import (
	"context"
	"encoding/json"

	"github.com/zeebo/errs"
	elastic "gopkg.in/olivere/elastic.v5"

	"github.com/movielab/searchsync/pkg/etl"
)

// Error is the error class for search backend failures.
var Error = errs.Class("searchapi error")

// searchFields are the document fields a free-text search matches against.
var searchFields = []string{
	"title", "description",
	"genres_names", "actors_names", "writers_names", "directors_names",
}

// ElasticSearcher implements Searcher on an Elasticsearch client.
type ElasticSearcher struct {
	client *elastic.Client
}

// NewElasticSearcher connects to the search engine at the given URL.
func NewElasticSearcher(url string) (*ElasticSearcher, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &ElasticSearcher{client: client}, nil
}

// GetMovie implements Searcher.
func (searcher *ElasticSearcher) GetMovie(ctx context.Context, id string) (*etl.Movie, error) {
	result, err := searcher.client.Search().
		Index(etl.IndexMovies).
		Query(elastic.NewMatchQuery("id", id)).
		Size(1).
		Do(ctx)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if result.Hits == nil || len(result.Hits.Hits) == 0 {
		return nil, ErrNotFound
	}

	var movie etl.Movie
	if err := json.Unmarshal(*result.Hits.Hits[0].Source, &movie); err != nil {
		return nil, Error.Wrap(err)
	}
	return &movie, nil
}

// ListMovies implements Searcher.
func (searcher *ElasticSearcher) ListMovies(ctx context.Context, params ListParams) ([]ListItem, error) {
	var query elastic.Query = elastic.NewMatchAllQuery()
	if params.Search != "" {
		query = elastic.NewMultiMatchQuery(params.Search, searchFields...)
	}

	result, err := searcher.client.Search().
		Index(etl.IndexMovies).
		Query(query).
		Sort(params.Sort, params.SortOrder == "asc").
		From((params.Page - 1) * params.Limit).
		Size(params.Limit).
		Do(ctx)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	items := []ListItem{}
	if result.Hits == nil {
		return items, nil
	}
	for _, hit := range result.Hits.Hits {
		var movie etl.Movie
		if err := json.Unmarshal(*hit.Source, &movie); err != nil {
			return nil, Error.Wrap(err)
		}
		items = append(items, ListItem{
			ID:         movie.ID,
			Title:      movie.Title,
			IMDBRating: movie.IMDBRating,
		})
	}
	return items, nil
}
