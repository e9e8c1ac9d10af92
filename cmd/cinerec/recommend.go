// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerec/internal/logging"
	"github.com/tomtom215/cinerec/internal/metrics"
	"github.com/tomtom215/cinerec/internal/recommend"
)

type recommendOptions struct {
	strategy   string
	topN       int
	jsonOutput bool
}

func newRecommendCmd(g *globalOptions) *cobra.Command {
	opts := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend TITLE TITLE TITLE",
		Short: "Recommend movies similar to three favourites",
		Long: `Resolve three favourite titles against the catalog and merge the movies
most similar to each, taking one from every favourite in turn.

A title may carry its release year ("Heat (1995)") to pick one of several
movies sharing a name.`,
		Example: `  cinerec recommend "Heat (1995)" "Collateral" "The Godfather"
  cinerec recommend "Toy Story (1995)" "Up" "Shrek" --strategy collaborative --top-n 5
  cinerec recommend "Alien" "Aliens" "Predator" --json`,
		Args: cobra.ExactArgs(recommend.SeedCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, g, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", string(recommend.StrategyContent), "content or collaborative")
	cmd.Flags().IntVarP(&opts.topN, "top-n", "n", 0, "number of recommendations (default from config)")
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "output as JSON")

	return cmd
}

func runRecommend(cmd *cobra.Command, g *globalOptions, opts *recommendOptions, titles []string) error {
	strategy, err := recommend.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}
	if opts.topN < 0 {
		return usageError("--top-n must not be negative")
	}

	cfg, err := g.setup()
	if err != nil {
		return err
	}
	logger := logging.WithComponent("cli")

	engine, err := loadAndBuild(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := engine.Recommend(cmd.Context(), recommend.NewRequest(titles, strategy, opts.topN))
	metrics.RecordRecommendation(strategy.String(), recommend.Kind(err), time.Since(start))
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), resp)
	}
	return printRecommendations(cmd.OutOrStdout(), resp)
}

func printRecommendations(w io.Writer, resp *recommend.Response) error {
	fmt.Fprintf(w, "Because you like ")
	for i, s := range resp.Seeds {
		switch {
		case i == len(resp.Seeds)-1:
			fmt.Fprintf(w, "and %s:\n\n", s.Title)
		default:
			fmt.Fprintf(w, "%s, ", s.Title)
		}
	}

	if len(resp.Items) == 0 {
		fmt.Fprintln(w, "  no recommendations")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tTITLE\tSCORE")
	for i, it := range resp.Items {
		fmt.Fprintf(tw, "  %d\t%s\t%.3f\n", i+1, it.Title, it.Score)
	}
	return tw.Flush()
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
