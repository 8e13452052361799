package server

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/store"
)

// Error codes for responses that do not come from the engine.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeRevisionConflict = "REVISION_CONFLICT"
	CodeInternal         = "INTERNAL"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Revision int64             `json:"revision,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// httpError maps err onto a status and response body:
//
//	UNKNOWN_CAPTAIN, UNKNOWN_UNIT      404
//	OUT_OF_BOUNDS                      422
//	STALE_SUGGESTION, revision         409
//	INVARIANT_VIOLATION, anything else 500
func httpError(err error, revision int64) *echo.HTTPError {
	var se *engine.SequenceError
	if errors.As(err, &se) {
		status := http.StatusInternalServerError
		switch se.Code {
		case engine.ErrCodeUnknownCaptain, engine.ErrCodeUnknownUnit:
			status = http.StatusNotFound
		case engine.ErrCodeOutOfBounds:
			status = http.StatusUnprocessableEntity
		case engine.ErrCodeStaleSuggestion:
			status = http.StatusConflict
		}
		return echo.NewHTTPError(status, ErrorResponse{
			Code:     string(se.Code),
			Message:  se.Message,
			Revision: revision,
			Details:  se.Details,
		})
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return echo.NewHTTPError(http.StatusNotFound, ErrorResponse{
			Code:    string(engine.ErrCodeUnknownCaptain),
			Message: "captain not found",
		})
	case errors.Is(err, store.ErrRevisionConflict):
		return echo.NewHTTPError(http.StatusConflict, ErrorResponse{
			Code:     CodeRevisionConflict,
			Message:  "captain was changed by another writer; re-read and retry",
			Revision: revision,
		})
	case errors.Is(err, store.ErrInvalidSequence):
		return echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{
			Code:    string(engine.ErrCodeInvariantViolation),
			Message: err.Error(),
		})
	}

	return echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{
		Code:    CodeInternal,
		Message: err.Error(),
	})
}

func badRequest(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
		Code:    CodeBadRequest,
		Message: message,
	})
}
