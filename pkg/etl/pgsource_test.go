// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchModifiedSQL(t *testing.T) {
	query := fetchModifiedSQL("public.film_work", "id", "updated_at")

	// the composite predicate catches rows that share the watermark
	// timestamp without replaying the watermark row itself
	require.Contains(t, query, "(updated_at = $1 AND id > $2::uuid)")
	require.Contains(t, query, "OR updated_at > $1")
	require.Contains(t, query, "ORDER BY updated_at, id")
	require.Contains(t, query, "LIMIT $3")
	require.Contains(t, query, "FROM public.film_work")
}

func TestFetchModifiedSQLLinkTable(t *testing.T) {
	query := fetchModifiedSQL("public.person_film_work", "film_work_id", "created_at")

	require.Contains(t, query, "SELECT id, film_work_id, created_at")
	require.Contains(t, query, "(created_at = $1 AND id > $2::uuid)")
	require.Contains(t, query, "ORDER BY created_at, id")
}

func TestDenormalizeQueriesShape(t *testing.T) {
	// one round trip per batch: every denormalization query carries the
	// lateral aggregation and an ANY(uuid[]) filter
	for _, query := range []string{denormalizeMoviesSQL, denormalizePersonsSQL, denormalizeGenresSQL} {
		require.Contains(t, query, "LEFT JOIN LATERAL")
		require.Contains(t, query, "jsonb_agg")
		require.Contains(t, query, "ANY($1::uuid[])")
	}
	require.Equal(t, 2, strings.Count(denormalizeMoviesSQL, "LEFT JOIN LATERAL"))
}
