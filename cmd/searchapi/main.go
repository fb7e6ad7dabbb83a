// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/movielab/searchsync/pkg/process"
	"github.com/movielab/searchsync/pkg/searchapi"
)

var (
	rootCmd = &cobra.Command{
		Use:   "searchapi",
		Short: "Read-only REST facade over the movies search index",
		RunE:  cmdRun,
	}

	runCfg struct {
		elasticURL string
		listen     string
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&runCfg.elasticURL, "elastic-url", "http://localhost:9200", "base URL of the search engine")
	flags.StringVar(&runCfg.listen, "listen", ":8000", "address to serve the API on")
}

func cmdRun(cmd *cobra.Command, args []string) error {
	ctx := process.Ctx(cmd)

	log, err := process.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	searcher, err := searchapi.NewElasticSearcher(runCfg.elasticURL)
	if err != nil {
		return err
	}

	server := searchapi.NewServer(log, searcher, runCfg.listen)

	log.Info("search API started", zap.String("listen", runCfg.listen))
	return server.Run(ctx)
}

func main() {
	process.Exec(rootCmd)
}
