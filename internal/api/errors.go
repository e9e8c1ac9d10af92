// Cinerec - Seed-Based Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/cinerec/internal/recommend"
	"github.com/tomtom215/cinerec/internal/validation"
)

// writeEngineError maps an engine error onto the response taxonomy:
//
//	not found          404 NOT_FOUND
//	ambiguous          409 AMBIGUOUS_TITLE (candidates in details)
//	insufficient data  422 INSUFFICIENT_DATA
//	invalid request    400 VALIDATION_ERROR or BAD_REQUEST
//	not ready          503 SERVICE_UNAVAILABLE
//	canceled           504 TIMEOUT
//	anything else      500 INTERNAL_ERROR, cause logged only
func writeEngineError(rw *ResponseWriter, err error) {
	switch recommend.Kind(err) {
	case recommend.KindNotFound:
		rw.Error(http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)

	case recommend.KindAmbiguous:
		var amb *recommend.AmbiguousError
		var details any
		if errors.As(err, &amb) {
			details = map[string]any{"title": amb.Title, "candidates": amb.Candidates}
		}
		rw.Error(http.StatusConflict, ErrCodeAmbiguous, err.Error(), details)

	case recommend.KindInsufficientData:
		var ins *recommend.InsufficientDataError
		var details any
		if errors.As(err, &ins) {
			details = map[string]any{"item_id": ins.ItemID, "strategy": ins.Strategy}
		}
		rw.Error(http.StatusUnprocessableEntity, ErrCodeInsufficientData, err.Error(), details)

	case recommend.KindInvalidRequest:
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			apiErr := verr.ToAPIError()
			rw.ValidationError(apiErr.Message, apiErr.Details)
			return
		}
		rw.BadRequest(err.Error())

	case recommend.KindNotReady:
		rw.ServiceUnavailable("Recommendation models are not built yet")

	case recommend.KindCanceled:
		rw.Error(http.StatusGatewayTimeout, ErrCodeTimeout, "Request canceled or timed out", nil)

	default:
		rw.InternalError(err)
	}
}
