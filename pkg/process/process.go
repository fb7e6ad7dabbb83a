// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

// Package process wires up everything a binary needs before its command
// runs: flag binding, environment overrides, logging, and a root context
// that is cancelled on shutdown signals.
package process

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Error is a process error class
var Error = errs.Class("process error")

var (
	contextMtx sync.Mutex
	contexts   = map[*cobra.Command]context.Context{}
)

// Exec runs a *cobra.Command and sets up process-wide configuration like
// environment variable overrides for flags.
func Exec(cmd *cobra.Command) {
	cobra.OnInitialize(func() {
		flags := cmd.Flags()
		_ = viper.BindPFlags(flags)
		viper.SetEnvPrefix("searchsync")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()

		// environment values apply only where the command line left the
		// flag untouched
		flags.VisitAll(func(flag *pflag.Flag) {
			if !flag.Changed && viper.IsSet(flag.Name) {
				_ = flags.Set(flag.Name, viper.GetString(flag.Name))
			}
		})
	})

	Must(cmd.Execute())
}

// Ctx returns a context for the command that is cancelled on SIGINT or
// SIGTERM. The signal is observed once; a second signal kills the process
// the default way.
func Ctx(cmd *cobra.Command) context.Context {
	contextMtx.Lock()
	defer contextMtx.Unlock()

	if ctx, ok := contexts[cmd]; ok {
		return ctx
	}

	ctx, cancel := context.WithCancel(context.Background())
	contexts[cmd] = ctx

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		zap.L().Info("received shutdown signal", zap.Stringer("signal", sig))
		signal.Stop(signals)
		cancel()
	}()

	return ctx
}

// NewLogger creates a logger configured by the LOG_LEVEL environment
// variable. Unset means info.
func NewLogger() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if value := os.Getenv("LOG_LEVEL"); value != "" {
		if err := level.Set(strings.ToLower(value)); err != nil {
			return nil, Error.New("invalid LOG_LEVEL: %v", err)
		}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return logger, nil
}

// Must can be used for default error handling in main; startup errors exit
// nonzero.
func Must(err error) {
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
