package handler

import (
	"errors"
	"net/http"

	"inkwell/internal/domain"
	"inkwell/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, "Permission denied")
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderCollision):
		httputil.RespondError(w, http.StatusConflict, "Chapter order changed concurrently, reload and retry")
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrNotInProject),
		errors.Is(err, domain.ErrUnsupportedFormat):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrIO):
		httputil.RespondError(w, http.StatusInternalServerError, "could not process the file")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
