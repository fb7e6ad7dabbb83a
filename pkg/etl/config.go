// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

import (
	"time"
)

// Config holds the daemon settings gathered from flags.
type Config struct {
	PostgresURL string
	ElasticURL  string
	RedisHost   string

	// PollPeriod is the sleep between polling turns.
	PollPeriod time.Duration
	// FetchBatchSize bounds how many modified rows one turn reads from a
	// watched table.
	FetchBatchSize int
	// IndexBatchSize bounds how many documents go into one bulk request.
	IndexBatchSize int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		PostgresURL:    "postgresql://localhost:5432/",
		ElasticURL:     "http://localhost:9200",
		RedisHost:      "localhost",
		PollPeriod:     2 * time.Second,
		FetchBatchSize: 1000,
		IndexBatchSize: 1000,
	}
}

// Verify checks that the configuration is usable.
func (config Config) Verify() error {
	switch {
	case config.PostgresURL == "":
		return ErrConfig.New("postgres url is required")
	case config.ElasticURL == "":
		return ErrConfig.New("elastic url is required")
	case config.RedisHost == "":
		return ErrConfig.New("redis host is required")
	case config.PollPeriod <= 0:
		return ErrConfig.New("poll period must be positive, got %v", config.PollPeriod)
	case config.FetchBatchSize <= 0:
		return ErrConfig.New("fetch batch size must be positive, got %d", config.FetchBatchSize)
	case config.IndexBatchSize <= 0:
		return ErrConfig.New("index batch size must be positive, got %d", config.IndexBatchSize)
	}
	return nil
}
