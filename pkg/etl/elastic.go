// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

import (
	"context"

	elastic "gopkg.in/olivere/elastic.v5"
)

// ElasticSink implements Sink on the Elasticsearch bulk API. It only issues
// index operations with explicit ids; index mappings are assumed to exist.
type ElasticSink struct {
	client *elastic.Client
}

// NewElasticSink connects to the search engine at the given URL.
func NewElasticSink(url string) (*ElasticSink, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, LoadError.Wrap(err)
	}
	return &ElasticSink{client: client}, nil
}

// Store implements Sink.
func (sink *ElasticSink) Store(ctx context.Context, index string, docs []Document) (_ BulkResult, err error) {
	defer mon.Task()(&ctx)(&err)

	bulk := sink.client.Bulk()
	for _, doc := range docs {
		bulk.Add(elastic.NewBulkIndexRequest().
			Index(index).
			Type("_doc").
			Id(doc.DocID()).
			Doc(doc))
	}

	response, err := bulk.Do(ctx)
	if err != nil {
		return BulkResult{}, LoadError.Wrap(err)
	}

	result := BulkResult{Stored: len(docs)}
	if response.Errors {
		for _, item := range response.Failed() {
			result.Rejected = append(result.Rejected, item.Id)
		}
		result.Stored = len(docs) - len(result.Rejected)
	}
	return result, nil
}

// Close releases the client.
func (sink *ElasticSink) Close() error {
	sink.client.Stop()
	return nil
}
