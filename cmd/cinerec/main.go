// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

/*
Command cinerec recommends movies from three favourite titles.

Usage:

	cinerec [command]

Available Commands:

	recommend   Recommend movies similar to three favourites
	resolve     Look up a title in the catalog
	serve       Run the HTTP API
	evaluate    Measure collaborative rating error on held-out ratings
	version     Show version information

Examples:

	cinerec recommend "Heat (1995)" "Collateral" "The Godfather" --strategy content
	cinerec recommend "Toy Story (1995)" "Up" "Shrek" --strategy collaborative --top-n 5 --json
	cinerec serve --port 8080

Exit status is 0 on success, 2 when a title cannot be resolved or a seed
cannot be scored by the chosen strategy, and 1 for any other failure.
*/
package main

import (
	"os"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
