// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/movielab/searchsync/pkg/process"
	"github.com/movielab/searchsync/pkg/sqliteload"
)

var (
	rootCmd = &cobra.Command{
		Use:   "sqliteload",
		Short: "One-shot migration of the legacy SQLite database into PostgreSQL",
		RunE:  cmdRun,
	}

	runCfg struct {
		from     string
		to       string
		initPath string
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&runCfg.from, "from", "db.sqlite", "path of the legacy SQLite database")
	flags.StringVar(&runCfg.to, "to", "postgresql://localhost:5432/", "connection URL of the target database")
	flags.StringVar(&runCfg.initPath, "init", "init.sql", "path of the schema init script")
}

func cmdRun(cmd *cobra.Command, args []string) (err error) {
	ctx := process.Ctx(cmd)

	log, err := process.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	initSQL, err := os.ReadFile(runCfg.initPath)
	if err != nil {
		return errs.Wrap(err)
	}

	legacy, err := sqliteload.OpenLegacy(runCfg.from)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, legacy.Close()) }()

	data, err := sqliteload.FetchLegacy(legacy)
	if err != nil {
		return err
	}
	log.Info("fetched legacy data",
		zap.Int("movies", len(data.Movies)),
		zap.Int("actors", len(data.ActorNames)),
		zap.Int("writers", len(data.WriterNames)))

	dataset, err := sqliteload.Transform(data, time.Now().UTC())
	if err != nil {
		return err
	}

	target, err := sqliteload.OpenTarget(ctx, runCfg.to)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, target.Close()) }()

	if err := sqliteload.WriteAll(ctx, target, string(initSQL), dataset); err != nil {
		return err
	}

	log.Info("migration finished",
		zap.Int("film works", len(dataset.FilmWorks)),
		zap.Int("persons", len(dataset.Persons)),
		zap.Int("genres", len(dataset.Genres)))
	return nil
}

func main() {
	process.Exec(rootCmd)
}
