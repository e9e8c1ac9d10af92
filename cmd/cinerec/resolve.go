// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerec/internal/catalog"
	"github.com/tomtom215/cinerec/internal/logging"
	"github.com/tomtom215/cinerec/internal/recommend"
)

// maxSuggestions bounds the titles suggested for an unknown title.
const maxSuggestions = 5

type resolveOptions struct {
	year       int
	jsonOutput bool
}

func newResolveCmd(g *globalOptions) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve TITLE",
		Short: "Look up a title in the catalog",
		Long: `Resolve a title exactly as recommend does and print the matching movie.
An unknown title lists the most popular movies whose title contains it.`,
		Example: `  cinerec resolve "Heat" --year 1995
  cinerec resolve "Heat (1995)" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, g, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.year, "year", "y", 0, "release year")
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "output as JSON")

	return cmd
}

func runResolve(cmd *cobra.Command, g *globalOptions, opts *resolveOptions, title string) error {
	cfg, err := g.setup()
	if err != nil {
		return err
	}

	engine, err := loadAndBuild(cmd.Context(), cfg, logging.WithComponent("cli"))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	item, err := engine.Resolve(title, opts.year)
	if err != nil {
		if errors.Is(err, recommend.ErrNotFound) {
			printSuggestions(cmd.ErrOrStderr(), suggest(engine.Catalog(), title, maxSuggestions))
		}
		return err
	}

	if opts.jsonOutput {
		return writeJSON(w, item)
	}

	fmt.Fprintf(w, "%d\t%s\n", item.ID, item.Title)
	if len(item.Genres) > 0 {
		fmt.Fprintf(w, "  genres:   %s\n", strings.Join(item.Genres, ", "))
	}
	if item.Director != "" {
		fmt.Fprintf(w, "  director: %s\n", item.Director)
	}
	if len(item.Cast) > 0 {
		fmt.Fprintf(w, "  cast:     %s\n", strings.Join(item.Cast, ", "))
	}
	fmt.Fprintf(w, "  ratings:  %d\n", engine.Catalog().ItemRatingCount(item.ID))
	return nil
}

// suggest returns up to n popular items whose display title contains
// query, ignoring case.
func suggest(cat *catalog.Store, query string, n int) []catalog.Item {
	if cat == nil {
		return nil
	}
	display, _ := catalog.SplitTitle(strings.TrimSpace(query))
	needle := strings.ToLower(display)
	if needle == "" {
		return nil
	}

	var out []catalog.Item
	for _, p := range cat.Popular(0) {
		if strings.Contains(strings.ToLower(p.Item.Title), needle) {
			out = append(out, p.Item)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

func printSuggestions(w io.Writer, items []catalog.Item) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, "Did you mean:")
	for _, it := range items {
		fmt.Fprintf(w, "  %s\n", it.Title)
	}
}
