// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

import (
	"time"

	"github.com/google/uuid"

	"github.com/movielab/searchsync/storage"
)

// watermarkTimeLayout renders timestamps as ISO-8601 with an explicit
// numeric UTC offset, e.g. 2024-01-01T00:00:00+00:00.
const watermarkTimeLayout = "2006-01-02T15:04:05.999999-07:00"

// Watermark marks the boundary between consumed and unconsumed source rows
// for one (table, index) pair. It advances in lexicographic
// (timestamp, last id) order; the id breaks ties between rows sharing a
// modification timestamp.
type Watermark struct {
	UpdatedAt time.Time
	LastID    uuid.UUID
}

// EpochWatermark is the initial watermark: the unix epoch with the zero
// UUID, strictly less than any real row.
func EpochWatermark() Watermark {
	return Watermark{UpdatedAt: time.Unix(0, 0).UTC(), LastID: uuid.Nil}
}

// State persists per-(table, index) watermarks in a KeyValueStore. The key
// prefix carries both the table and the index so that two pipelines reading
// the same table into different indices cannot clobber each other's
// progress.
type State struct {
	store storage.KeyValueStore
}

// NewState creates a State on top of the given store.
func NewState(store storage.KeyValueStore) *State {
	return &State{store: store}
}

func watermarkKeys(table, index string) (timestampKey, lastIDKey string) {
	prefix := table + "." + index
	return prefix + ".updated_at", prefix + ".last_id"
}

// Watermark loads the stored watermark for (table, index), or the epoch
// watermark when none has been stored yet.
func (state *State) Watermark(table, index string) (Watermark, error) {
	timestampKey, lastIDKey := watermarkKeys(table, index)
	epoch := EpochWatermark()

	rawTimestamp, err := storage.GetDefault(state.store, timestampKey, epoch.UpdatedAt.Format(watermarkTimeLayout))
	if err != nil {
		return Watermark{}, StateError.Wrap(err)
	}
	updatedAt, err := time.Parse(watermarkTimeLayout, rawTimestamp)
	if err != nil {
		return Watermark{}, Error.New("corrupt watermark timestamp %q: %v", rawTimestamp, err)
	}

	rawLastID, err := storage.GetDefault(state.store, lastIDKey, epoch.LastID.String())
	if err != nil {
		return Watermark{}, StateError.Wrap(err)
	}
	lastID, err := uuid.Parse(rawLastID)
	if err != nil {
		return Watermark{}, Error.New("corrupt watermark id %q: %v", rawLastID, err)
	}

	return Watermark{UpdatedAt: updatedAt, LastID: lastID}, nil
}

// Advance persists the watermark for (table, index). The two keys are
// written separately; a crash between the writes redelivers at most one
// batch, which at-least-once delivery tolerates.
func (state *State) Advance(table, index string, mark Watermark) error {
	timestampKey, lastIDKey := watermarkKeys(table, index)

	err := state.store.Set(timestampKey, mark.UpdatedAt.UTC().Format(watermarkTimeLayout))
	if err != nil {
		return StateError.Wrap(err)
	}
	err = state.store.Set(lastIDKey, mark.LastID.String())
	if err != nil {
		return StateError.Wrap(err)
	}
	return nil
}
