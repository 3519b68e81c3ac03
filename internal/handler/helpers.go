package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"qwksearch/internal/domain"
	"qwksearch/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Unexpected errors
// are logged and answered with a generic 500.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &validationErr):
		httputil.RespondValidationError(w, validationErr)
	case errors.Is(err, domain.ErrUnknownFocusMode):
		httputil.RespondError(w, http.StatusBadRequest, "Invalid focus mode")
	case errors.Is(err, domain.ErrUnknownModel):
		httputil.RespondError(w, http.StatusBadRequest, "Invalid chat model")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, domain.ErrNoResults):
		httputil.RespondError(w, http.StatusInternalServerError, "No results found")
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "An error has occurred.")
	}
}

// requireUser returns the caller's user id, or answers 401 and returns false
// for guests and rejected tokens.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" || httputil.AuthFailed(r) {
		httputil.RespondError(w, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return userID, true
}

// parseBody decodes a JSON body, answering 400 on malformed input.
func parseBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		httputil.RespondValidationError(w, &domain.ValidationError{
			Message: "Invalid request body",
			Issues:  []domain.FieldIssue{{Path: "", Message: err.Error()}},
		})
		return false
	}
	return true
}
