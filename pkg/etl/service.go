// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the change-propagation supervisor. It holds the pipeline
// catalog and drives every pipeline through one turn per polling interval.
// Pipelines run sequentially within a turn, which bounds database
// concurrency to one pipeline at a time; a failing pipeline is logged and
// the next one proceeds.
type Service struct {
	log    *zap.Logger
	config Config

	state  *State
	source Source
	sink   Sink

	pipelines []Pipeline

	// retry tuning, overridden in tests
	retryBase  time.Duration
	retryTries uint64
}

// NewService creates the supervisor for the given pipelines.
func NewService(log *zap.Logger, config Config, state *State, source Source, sink Sink, pipelines []Pipeline) *Service {
	return &Service{
		log:        log,
		config:     config,
		state:      state,
		source:     source,
		sink:       sink,
		pipelines:  pipelines,
		retryBase:  retryBaseDelay,
		retryTries: retryMaxTries,
	}
}

// Run polls until the context is cancelled. Shutdown is observed between
// pipelines, never mid-pipeline; an interrupted turn simply leaves the
// watermark un-advanced and redelivers on the next start.
func (service *Service) Run(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	ticker := time.NewTicker(service.config.PollPeriod)
	defer ticker.Stop()

	for {
		service.Turn(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Turn runs every pipeline once, in catalog order.
func (service *Service) Turn(ctx context.Context) {
	for _, pipeline := range service.pipelines {
		if ctx.Err() != nil {
			return
		}
		if err := service.runPipeline(ctx, pipeline); err != nil {
			service.log.Error("pipeline turn failed",
				zap.String("table", pipeline.Table),
				zap.String("index", pipeline.Index),
				zap.Error(err))
		}
	}
}

// runPipeline executes one extract-to-load turn for a single pipeline. The
// watermark is advanced only after the whole downstream chain has
// completed, and it always advances to the last fetched row, even when the
// id mapper yields no target entities for the batch.
func (service *Service) runPipeline(ctx context.Context, pipeline Pipeline) (err error) {
	defer mon.Task()(&ctx)(&err)

	log := service.log.With(
		zap.String("table", pipeline.Table),
		zap.String("index", pipeline.Index))

	var mark Watermark
	err = service.retry(ctx, func() error {
		var err error
		mark, err = service.state.Watermark(pipeline.Table, pipeline.Index)
		// only store outages are transient; corrupt values abort at once
		if err != nil && !StateError.Has(err) {
			return backoff.Permanent(err)
		}
		return err
	})
	if err != nil {
		return err
	}

	var rows []SourceRow
	err = service.retry(ctx, func() error {
		var err error
		rows, err = service.source.FetchModified(ctx,
			pipeline.Table, pipeline.entityField(), pipeline.TimestampField,
			mark, service.config.FetchBatchSize)
		return err
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		log.Debug("no updated rows")
		return nil
	}
	log.Info("fetched updated rows", zap.Int("count", len(rows)))
	mon.IntVal("fetched_rows").Observe(int64(len(rows)))

	ids, err := service.mapIDs(ctx, pipeline, rows)
	if err != nil {
		return err
	}

	if len(ids) > 0 {
		docs, err := service.project(ctx, pipeline, ids)
		if err != nil {
			return err
		}

		stored := 0
		for _, batch := range SplitBatches(docs, service.config.IndexBatchSize) {
			var result BulkResult
			batch := batch
			err = service.retry(ctx, func() error {
				var err error
				result, err = service.sink.Store(ctx, pipeline.Index, batch)
				return err
			})
			if err != nil {
				return err
			}
			if len(result.Rejected) > 0 {
				log.Warn("bulk index rejected documents",
					zap.Int("count", len(result.Rejected)),
					zap.Strings("ids", result.Rejected))
				mon.Counter("bulk_rejected").Inc(int64(len(result.Rejected)))
			}
			stored += result.Stored
		}
		log.Info("updated documents", zap.Int("count", stored))
		mon.IntVal("stored_documents").Observe(int64(stored))
	}

	last := rows[len(rows)-1]
	next := Watermark{UpdatedAt: last.ModifiedAt, LastID: last.ID}
	err = service.retry(ctx, func() error {
		return service.state.Advance(pipeline.Table, pipeline.Index, next)
	})
	if err != nil {
		return err
	}
	log.Debug("advanced watermark",
		zap.Time("updated_at", next.UpdatedAt),
		zap.Stringer("last_id", next.LastID))
	return nil
}

// mapIDs converts fetched rows into target entity ids using the pipeline's
// mapper variant.
func (service *Service) mapIDs(ctx context.Context, pipeline Pipeline, rows []SourceRow) ([]uuid.UUID, error) {
	if pipeline.Join == nil {
		ids := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.EntityID)
		}
		return ids, nil
	}

	keys := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, row.ID)
	}
	var ids []uuid.UUID
	err := service.retry(ctx, func() error {
		var err error
		ids, err = service.source.MapThroughJoin(ctx, *pipeline.Join, keys)
		return err
	})
	return ids, err
}

// project denormalizes the target entities and transforms them into
// destination documents; the pipeline's index tag drives dispatch.
func (service *Service) project(ctx context.Context, pipeline Pipeline, ids []uuid.UUID) ([]Document, error) {
	switch pipeline.Index {
	case IndexMovies:
		var films []DenormalizedMovie
		err := service.retry(ctx, func() error {
			var err error
			films, err = service.source.DenormalizeMovies(ctx, ids)
			return err
		})
		if err != nil {
			return nil, err
		}
		return TransformMovies(films)

	case IndexPersons:
		var persons []DenormalizedPerson
		err := service.retry(ctx, func() error {
			var err error
			persons, err = service.source.DenormalizePersons(ctx, ids)
			return err
		})
		if err != nil {
			return nil, err
		}
		return TransformPersons(persons)

	case IndexGenres:
		var genres []DenormalizedGenre
		err := service.retry(ctx, func() error {
			var err error
			genres, err = service.source.DenormalizeGenres(ctx, ids)
			return err
		})
		if err != nil {
			return nil, err
		}
		return TransformGenres(genres)

	default:
		return nil, Error.New("unknown index %q", pipeline.Index)
	}
}
