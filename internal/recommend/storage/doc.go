// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

// Package storage persists fitted recommendation models.
//
// Fitting the latent factor model over a full ratings file takes far
// longer than loading it, so the engine saves every fitted model and, on
// the next start, reuses it when the catalog fingerprint still matches.
//
// # Storage Format
//
// Each file holds a gob-encoded header (ModelMetadata) followed by the
// gzip-compressed, gob-encoded model state:
//
//	{model_dir}/
//	  content_v1.gob.gz
//	  als_v3.gob.gz     <- latest
//	  als_v2.gob.gz
//
// The metadata carries a SHA-256 checksum of the uncompressed state, which
// Load verifies before decoding. Files are written to a temporary name
// and renamed into place.
//
// # Usage
//
//	store, err := storage.NewStore("/var/lib/cinerec/models")
//	if err != nil {
//	    return err
//	}
//
//	meta := storage.ModelMetadata{Fingerprint: cat.Fingerprint(), TrainedAt: time.Now()}
//	if err := store.Save(ctx, "als", 1, state, meta); err != nil {
//	    return err
//	}
//
//	var restored storage.ALSModelState
//	meta, err := store.Load(ctx, "als", 0, &restored) // 0 = latest version
//
// # Thread Safety
//
// Save and Prune take the write lock; Load and ListModels share the read
// lock.
package storage
