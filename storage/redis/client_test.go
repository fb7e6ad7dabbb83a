// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/movielab/searchsync/storage"
)

func newTestClient(t *testing.T) *Client {
	server := miniredis.RunT(t)

	client, err := NewClient(server.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, client.Close()) })

	return client
}

func TestGetSet(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Set("public.film_work.movies.updated_at", "2024-01-01T00:00:00+00:00"))

	value, err := client.Get("public.film_work.movies.updated_at")
	require.NoError(t, err)
	require.Equal(t, "2024-01-01T00:00:00+00:00", value)

	require.NoError(t, client.Set("public.film_work.movies.updated_at", "2024-02-01T00:00:00+00:00"))

	value, err = client.Get("public.film_work.movies.updated_at")
	require.NoError(t, err)
	require.Equal(t, "2024-02-01T00:00:00+00:00", value)
}

func TestGetMissing(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Get("no-such-key")
	require.True(t, storage.ErrKeyNotFound.Has(err))

	value, err := storage.GetDefault(client, "no-such-key", "fallback")
	require.NoError(t, err)
	require.Equal(t, "fallback", value)
}
