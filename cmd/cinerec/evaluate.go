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
	"github.com/tomtom215/cinerec/internal/recommend/algorithms"
)

type evaluateOptions struct {
	testRatio  float64
	seed       int64
	jsonOutput bool
}

func newEvaluateCmd(g *globalOptions) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure collaborative model accuracy on held-out ratings",
		Long: `Hold out a share of every user's ratings, fit the collaborative model on
the rest and report the mean absolute and root mean squared error of the
predicted ratings.`,
		Example: `  cinerec evaluate
  cinerec evaluate --test-ratio 0.1 --seed 7 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, g, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.testRatio, "test-ratio", 0.2, "share of each user's ratings held out, in (0, 1)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "seed for the hold-out split")
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "output as JSON")

	return cmd
}

func runEvaluate(cmd *cobra.Command, g *globalOptions, opts *evaluateOptions) error {
	if opts.testRatio <= 0 || opts.testRatio >= 1 {
		return usageError("--test-ratio must be in (0, 1), got %g", opts.testRatio)
	}

	cfg, err := g.setup()
	if err != nil {
		return err
	}
	logger := logging.WithComponent("evaluate")

	loader, closer, err := newLoader(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("error closing loader")
		}
	}()

	cat, stats, err := loader.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logLoadStats(logger, stats)

	eval, err := algorithms.EvaluateALS(cmd.Context(), algorithms.NewALS(alsConfig(cfg)), cat.Ratings(), cat.Scale(),
		algorithms.EvaluationConfig{TestRatio: opts.testRatio, Seed: opts.seed})
	if err != nil {
		return err
	}

	logger.Info().
		Int("evaluated", eval.Evaluated).
		Float64("mae", eval.MAE).
		Float64("rmse", eval.RMSE).
		Dur("fit", eval.FitDuration).
		Msg("evaluation complete")

	if opts.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), eval)
	}
	printEvaluation(cmd.OutOrStdout(), eval)
	return nil
}

func alsConfig(cfg *config.Config) algorithms.ALSConfig {
	c := cfg.Recommend.Collaborative
	return algorithms.ALSConfig{
		NumFactors:     c.Factors,
		NumIterations:  c.Iterations,
		Regularization: c.Lambda,
		MinItemRatings: c.MinItemRatings,
		NumWorkers:     c.Workers,
		Seed:           cfg.Recommend.Seed,
	}
}

func printEvaluation(w io.Writer, e *algorithms.Evaluation) {
	fmt.Fprintf(w, "train ratings:  %d\n", e.TrainRatings)
	fmt.Fprintf(w, "test ratings:   %d\n", e.TestRatings)
	fmt.Fprintf(w, "evaluated:      %d (skipped %d)\n", e.Evaluated, e.Skipped)
	fmt.Fprintf(w, "MAE:            %.4f\n", e.MAE)
	fmt.Fprintf(w, "RMSE:           %.4f\n", e.RMSE)
	fmt.Fprintf(w, "fit time:       %s\n", e.FitDuration.Round(1e6))
}
