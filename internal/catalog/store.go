// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package catalog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math"
	"sort"
	"strings"
)

// Validation errors returned by NewStore. They are wrapped with the
// offending identifiers.
var (
	ErrInvalidItem      = errors.New("invalid item")
	ErrDuplicateItem    = errors.New("duplicate item id")
	ErrUnknownItem      = errors.New("rating references unknown item")
	ErrRatingOutOfRange = errors.New("rating outside scale")
)

// Store is the read-only catalog of items and rating events.
// It is safe for concurrent use because nothing mutates it after NewStore.
type Store struct {
	items   []Item      // sorted by ID ascending
	index   map[int]int // item ID -> position in items
	ratings []Rating    // sorted by (user, item, timestamp)

	itemRatings map[int]int
	users       int
	scale       RatingScale
	fingerprint string
}

// NewStore validates items and ratings and builds an immutable catalog.
// The input slices are copied. Items whose Year is zero get it derived
// from the title.
func NewStore(items []Item, ratings []Rating, scale RatingScale) (*Store, error) {
	if scale.Max < scale.Min {
		return nil, fmt.Errorf("rating scale max %v below min %v", scale.Max, scale.Min)
	}

	s := &Store{
		items:       make([]Item, 0, len(items)),
		index:       make(map[int]int, len(items)),
		ratings:     make([]Rating, len(ratings)),
		itemRatings: make(map[int]int),
		scale:       scale,
	}

	for i := range items {
		item := items[i]
		if item.ID <= 0 {
			return nil, fmt.Errorf("%w: id %d", ErrInvalidItem, item.ID)
		}
		if strings.TrimSpace(item.Title) == "" {
			return nil, fmt.Errorf("%w: id %d has empty title", ErrInvalidItem, item.ID)
		}
		if _, dup := s.index[item.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateItem, item.ID)
		}
		if item.Year == 0 {
			item.Year = ReleaseYear(item.Title)
		}
		s.index[item.ID] = -1
		s.items = append(s.items, item)
	}

	sort.Slice(s.items, func(a, b int) bool { return s.items[a].ID < s.items[b].ID })
	for pos := range s.items {
		s.index[s.items[pos].ID] = pos
	}

	copy(s.ratings, ratings)
	users := make(map[int]struct{})
	for _, r := range s.ratings {
		if _, ok := s.index[r.ItemID]; !ok {
			return nil, fmt.Errorf("%w: user %d item %d", ErrUnknownItem, r.UserID, r.ItemID)
		}
		if math.IsNaN(r.Value) || !scale.Contains(r.Value) {
			return nil, fmt.Errorf("%w: user %d item %d value %v", ErrRatingOutOfRange, r.UserID, r.ItemID, r.Value)
		}
		s.itemRatings[r.ItemID]++
		users[r.UserID] = struct{}{}
	}
	s.users = len(users)

	sort.SliceStable(s.ratings, func(a, b int) bool {
		ra, rb := s.ratings[a], s.ratings[b]
		if ra.UserID != rb.UserID {
			return ra.UserID < rb.UserID
		}
		if ra.ItemID != rb.ItemID {
			return ra.ItemID < rb.ItemID
		}
		return ra.Timestamp.Before(rb.Timestamp)
	})

	s.fingerprint = s.computeFingerprint()
	return s, nil
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.items)
}

// Item returns the item with the given ID.
func (s *Store) Item(id int) (Item, bool) {
	pos, ok := s.index[id]
	if !ok {
		return Item{}, false
	}
	return s.items[pos], true
}

// Has reports whether id is in the catalog.
func (s *Store) Has(id int) bool {
	_, ok := s.index[id]
	return ok
}

// Items returns all items ordered by ID. The slice is a copy but the
// nested slices are shared and must not be modified.
func (s *Store) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Ratings returns all ratings ordered by user, item, then timestamp.
func (s *Store) Ratings() []Rating {
	out := make([]Rating, len(s.ratings))
	copy(out, s.ratings)
	return out
}

// RatingCount returns the number of rating events.
func (s *Store) RatingCount() int {
	return len(s.ratings)
}

// ItemRatingCount returns how many ratings reference id.
func (s *Store) ItemRatingCount(id int) int {
	return s.itemRatings[id]
}

// UserCount returns the number of distinct users that rated anything.
func (s *Store) UserCount() int {
	return s.users
}

// Scale returns the rating scale the store was validated against.
func (s *Store) Scale() RatingScale {
	return s.scale
}

// Fingerprint is a SHA-256 digest over every item and rating. Two stores
// built from the same data have the same fingerprint regardless of input
// order.
func (s *Store) Fingerprint() string {
	return s.fingerprint
}

func (s *Store) computeFingerprint() string {
	h := sha256.New()
	for i := range s.items {
		item := &s.items[i]
		writeInt(h, int64(item.ID))
		writeString(h, item.Title)
		writeInt(h, int64(item.Year))
		writeStrings(h, item.Genres)
		writeStrings(h, item.Cast)
		writeString(h, item.Director)
		writeStrings(h, item.Keywords)
	}
	for _, r := range s.ratings {
		writeInt(h, int64(r.UserID))
		writeInt(h, int64(r.ItemID))
		writeInt(h, int64(math.Float64bits(r.Value)))
		writeInt(h, r.Timestamp.Unix())
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeInt(h hash.Hash, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, _ = h.Write(buf[:])
}

func writeString(h hash.Hash, v string) {
	writeInt(h, int64(len(v)))
	_, _ = h.Write([]byte(v))
}

func writeStrings(h hash.Hash, v []string) {
	writeInt(h, int64(len(v)))
	for _, s := range v {
		writeString(h, s)
	}
}
