// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerec/internal/config"
	"github.com/tomtom215/cinerec/internal/logging"
	"github.com/tomtom215/cinerec/internal/recommend"
)

// Exit codes.
const (
	exitOK     = 0
	exitError  = 1
	exitDomain = 2
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	dataDir    string
	loader     string
	logLevel   string
	logFormat  string
}

// newRootCmd builds the command tree. out receives command output.
func newRootCmd(out io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "cinerec",
		Short:         "Seed-based movie recommendations",
		Long:          "cinerec recommends movies from three favourite titles using metadata similarity or collaborative filtering.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default: $CONFIG_PATH or ./config.yaml)")
	pf.StringVar(&opts.dataDir, "data-dir", "", "directory holding movies.csv, imdb_data.csv and ratings.csv")
	pf.StringVar(&opts.loader, "loader", "", "dataset loader: csv or duckdb")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: json or console")

	root.AddCommand(
		newRecommendCmd(opts),
		newResolveCmd(opts),
		newServeCmd(opts),
		newEvaluateCmd(opts),
		newVersionCmd(),
	)
	return root
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode is 2 for errors the user can fix by changing the seeds or the
// strategy, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case recommend.IsDomainError(err):
		return exitDomain
	default:
		return exitError
	}
}

// loadConfig loads layered configuration and applies the flag overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.dataDir != "" {
		cfg.Data.Dir = o.dataDir
	}
	if o.loader != "" {
		cfg.Data.Loader = o.loader
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// setup loads configuration and initializes the global logger.
func (o *globalOptions) setup() (*config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	initLogging(cfg)
	return cfg, nil
}

func initLogging(cfg *config.Config) {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Format = cfg.Logging.Format
	lc.Caller = cfg.Logging.Caller
	logging.Init(lc)
}

// usageError marks bad command-line input. It is a domain error so the
// exit status is 2.
func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", recommend.ErrInvalidRequest, fmt.Sprintf(format, args...))
}
