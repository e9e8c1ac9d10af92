// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package services provides suture.Service wrappers for the serve-mode
// components: the HTTP server and the periodic catalog reload.
package services
