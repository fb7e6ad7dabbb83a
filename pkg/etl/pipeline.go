// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

// Pipeline ties one watched table to one destination index. The Index tag
// selects the denormalize/transform pair; the id-mapper variant is direct
// when EntityField is set and a link-table join when Join is set.
type Pipeline struct {
	Table          string
	TimestampField string
	Index          string

	// EntityField names the column forwarded as the target entity id for
	// the direct mapper variant.
	EntityField string
	// Join configures the join mapper variant. Exactly one of EntityField
	// and Join is set.
	Join *JoinSpec
}

// entityField returns the column the extractor reads alongside id. Join
// pipelines map through the row id.
func (pipeline Pipeline) entityField() string {
	if pipeline.EntityField != "" {
		return pipeline.EntityField
	}
	return "id"
}

// Catalog returns the mandatory pipeline set. Each entry owns an
// independent (table, index) watermark; person and genre appear twice with
// different target indices, which is why the watermark key carries both
// parts.
func Catalog() []Pipeline {
	return []Pipeline{
		{
			Table:          "public.film_work",
			TimestampField: "updated_at",
			Index:          IndexMovies,
			EntityField:    "id",
		},
		{
			Table:          "public.person",
			TimestampField: "updated_at",
			Index:          IndexMovies,
			Join: &JoinSpec{
				Table:       "public.person_film_work",
				JoinField:   "person_id",
				SelectField: "film_work_id",
			},
		},
		{
			Table:          "public.genre",
			TimestampField: "updated_at",
			Index:          IndexMovies,
			Join: &JoinSpec{
				Table:       "public.genre_film_work",
				JoinField:   "genre_id",
				SelectField: "film_work_id",
			},
		},
		{
			Table:          "public.person_film_work",
			TimestampField: "created_at",
			Index:          IndexMovies,
			EntityField:    "film_work_id",
		},
		{
			Table:          "public.genre_film_work",
			TimestampField: "created_at",
			Index:          IndexMovies,
			EntityField:    "film_work_id",
		},
		{
			Table:          "public.person",
			TimestampField: "created_at",
			Index:          IndexPersons,
			Join: &JoinSpec{
				Table:       "public.person_film_work",
				JoinField:   "person_id",
				SelectField: "person_id",
			},
		},
		{
			Table:          "public.genre",
			TimestampField: "created_at",
			Index:          IndexGenres,
			Join: &JoinSpec{
				Table:       "public.genre_film_work",
				JoinField:   "genre_id",
				SelectField: "genre_id",
			},
		},
	}
}
