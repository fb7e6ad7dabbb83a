// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package redis

import (
	"github.com/go-redis/redis"
	"github.com/zeebo/errs"

	"github.com/movielab/searchsync/storage"
)

// Error is the error class for redis client failures.
var Error = errs.Class("redis error")

// Client is the entrypoint into Redis
type Client struct {
	db *redis.Client
}

// NewClient returns a configured Client instance, verifying a successful
// connection to redis
func NewClient(address, password string, db int) (*Client, error) {
	client := &Client{
		db: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
	}

	// ping here to verify we are able to connect to the redis instance with
	// the initialized client.
	if err := client.db.Ping().Err(); err != nil {
		return nil, Error.New("ping failed: %v", err)
	}

	return client, nil
}

// Get looks up the provided key from redis.
func (client *Client) Get(key string) (string, error) {
	value, err := client.db.Get(key).Result()
	if err == redis.Nil {
		return "", storage.ErrKeyNotFound.New("%q", key)
	}
	if err != nil {
		return "", Error.New("get error: %v", err)
	}
	return value, nil
}

// Set stores the value under key, overwriting any previous value.
func (client *Client) Set(key, value string) error {
	if err := client.db.Set(key, value, 0).Err(); err != nil {
		return Error.New("set error: %v", err)
	}
	return nil
}

// Close closes a redis client
func (client *Client) Close() error {
	return client.db.Close()
}
