// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. The typed errors below match them through errors.Is so
// callers can branch without type assertions.
var (
	ErrNotFound         = errors.New("title not found")
	ErrAmbiguous        = errors.New("ambiguous title")
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInternal         = errors.New("internal error")
	ErrNotReady         = errors.New("engine not built")
	ErrBuildInProgress  = errors.New("engine build already in progress")
)

// NotFoundError reports a seed title with no catalog entry.
type NotFoundError struct {
	Title string
	Year  int
}

func (e *NotFoundError) Error() string {
	if e.Year != 0 {
		return fmt.Sprintf("no movie titled %q from %d", e.Title, e.Year)
	}
	return fmt.Sprintf("no movie titled %q", e.Title)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Candidate is one of the catalog entries an ambiguous title maps to.
type Candidate struct {
	ItemID int    `json:"item_id"`
	Title  string `json:"title"`
	Year   int    `json:"year,omitempty"`
}

// AmbiguousError reports a seed title shared by several catalog entries.
type AmbiguousError struct {
	Title      string
	Candidates []Candidate
}

func (e *AmbiguousError) Error() string {
	titles := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		titles[i] = fmt.Sprintf("%q (id %d)", c.Title, c.ItemID)
	}
	return fmt.Sprintf("title %q matches %d movies: %s; add the release year",
		e.Title, len(e.Candidates), strings.Join(titles, ", "))
}

// Is matches ErrAmbiguous.
func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguous
}

// InsufficientDataError reports a seed the chosen strategy cannot score,
// such as an unrated movie for collaborative filtering.
type InsufficientDataError struct {
	ItemID   int
	Title    string
	Strategy Strategy
	Reason   string
}

func (e *InsufficientDataError) Error() string {
	name := e.Title
	if name == "" {
		name = fmt.Sprintf("item %d", e.ItemID)
	}
	return fmt.Sprintf("%s cannot seed %s recommendations: %s", name, e.Strategy, e.Reason)
}

// Is matches ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// InternalError wraps a computation fault. It never matches one of the
// domain errors, even when the wrapped error does.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return "internal error: " + e.Op
	}
	return fmt.Sprintf("internal error: %s: %v", e.Op, e.Err)
}

// Is matches ErrInternal.
func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

// Internal builds an InternalError.
func Internal(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}

// IsDomainError reports whether err is one of the errors a caller is
// expected to present to the user: not found, ambiguous, insufficient
// data or an invalid request. Internal faults are never domain errors.
func IsDomainError(err error) bool {
	if err == nil || errors.Is(err, ErrInternal) {
		return false
	}
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAmbiguous) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidRequest)
}

// Error kinds reported by Kind.
const (
	KindOK               = "ok"
	KindNotFound         = "not_found"
	KindAmbiguous        = "ambiguous"
	KindInsufficientData = "insufficient_data"
	KindInvalidRequest   = "invalid_request"
	KindNotReady         = "not_ready"
	KindCanceled         = "canceled"
	KindInternal         = "internal"
)

// Kind classifies err for metrics labels and status mapping.
func Kind(err error) string {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrInternal):
		return KindInternal
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAmbiguous):
		return KindAmbiguous
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrNotReady), errors.Is(err, ErrBuildInProgress):
		return KindNotReady
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

// invalidf wraps ErrInvalidRequest with a formatted message.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
