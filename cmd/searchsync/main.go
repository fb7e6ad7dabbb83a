// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package main

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/movielab/searchsync/pkg/etl"
	"github.com/movielab/searchsync/pkg/process"
	"github.com/movielab/searchsync/storage/redis"
)

var (
	rootCmd = &cobra.Command{
		Use:   "searchsync",
		Short: "Incremental PostgreSQL to Elasticsearch projection daemon",
		RunE:  cmdRun,
	}

	runCfg struct {
		postgresURL string
		elasticURL  string
		redisHost   string
		pollPeriod  int
		pgBatch     int
		esBatch     int
	}
)

func init() {
	defaults := etl.DefaultConfig()

	flags := rootCmd.Flags()
	flags.StringVar(&runCfg.postgresURL, "postgres-url", defaults.PostgresURL, "connection URL of the source database")
	flags.StringVar(&runCfg.elasticURL, "elastic-url", defaults.ElasticURL, "base URL of the search engine")
	flags.StringVar(&runCfg.redisHost, "redis-host", defaults.RedisHost, "host of the state store")
	flags.IntVar(&runCfg.pollPeriod, "poll-period", int(defaults.PollPeriod/time.Second), "seconds between polling turns")
	flags.IntVar(&runCfg.pgBatch, "pg-batch", defaults.FetchBatchSize, "rows fetched from a watched table per turn")
	flags.IntVar(&runCfg.esBatch, "es-batch", defaults.IndexBatchSize, "documents per bulk index request")
}

func cmdRun(cmd *cobra.Command, args []string) (err error) {
	ctx := process.Ctx(cmd)

	log, err := process.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	config := etl.Config{
		PostgresURL:    runCfg.postgresURL,
		ElasticURL:     runCfg.elasticURL,
		RedisHost:      runCfg.redisHost,
		PollPeriod:     time.Duration(runCfg.pollPeriod) * time.Second,
		FetchBatchSize: runCfg.pgBatch,
		IndexBatchSize: runCfg.esBatch,
	}
	if err := config.Verify(); err != nil {
		return err
	}

	store, err := redis.NewClient(net.JoinHostPort(config.RedisHost, "6379"), "", 0)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, store.Close()) }()

	source, err := etl.OpenPGSource(ctx, config.PostgresURL)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, source.Close()) }()

	sink, err := etl.NewElasticSink(config.ElasticURL)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, sink.Close()) }()

	service := etl.NewService(log, config, etl.NewState(store), source, sink, etl.Catalog())

	log.Info("daemon started",
		zap.Duration("poll period", config.PollPeriod),
		zap.Int("fetch batch", config.FetchBatchSize),
		zap.Int("index batch", config.IndexBatchSize))

	err = service.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	process.Exec(rootCmd)
}
