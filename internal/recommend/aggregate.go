// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

// Merge interleaves per-seed candidate lists round-robin in seed order.
// Each turn a list contributes its next item not already emitted; the
// first occurrence of an item wins. Merging stops at topN items or when
// every list is exhausted. Both strategies share this policy.
//
//	[a b c] [b d e] [f g h], topN=5  ->  a b f c d
func Merge(perSeed [][]Recommendation, topN int) []Recommendation {
	if topN <= 0 {
		return []Recommendation{}
	}

	out := make([]Recommendation, 0, topN)
	seen := make(map[int]struct{}, topN)
	cursors := make([]int, len(perSeed))

	for len(out) < topN {
		progressed := false

		for i, list := range perSeed {
			if len(out) == topN {
				break
			}
			for cursors[i] < len(list) {
				rec := list[cursors[i]]
				cursors[i]++
				if _, dup := seen[rec.ItemID]; dup {
					continue
				}
				seen[rec.ItemID] = struct{}{}
				out = append(out, rec)
				progressed = true
				break
			}
		}

		if !progressed {
			break
		}
	}

	return out
}
