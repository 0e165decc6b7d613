// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog/internal/model"
	"github.com/olegiv/oblog/internal/session"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, url, message, messageType string) {
	session.SetFlash(r.Context(), sm, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, url, message string) {
	flashAndRedirect(w, r, sm, url, message, session.FlashError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, url, message string) {
	flashAndRedirect(w, r, sm, url, message, session.FlashSuccess)
}

// parseFormOrRedirect parses the request form and redirects with an error message on failure.
// Returns true if parsing succeeded, false if it failed (and redirect was performed).
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, sm, redirectURL, msgInvalidForm)
		return false
	}
	return true
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, r *http.Request, message string, statusCode int, logMsg string, args ...any) {
	slog.ErrorContext(r.Context(), logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, r *http.Request, logMsg string, args ...any) {
	logAndHTTPError(w, r, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// validationMessage joins the field messages of a validation error.
func validationMessage(err error) string {
	var ve *model.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		return strings.Join(ve.Messages(), "; ")
	}
	return msgInvalidForm
}

// handleServiceError maps a service error onto the response for a write
// route. Validation, permission and disabled-comment failures flash and
// redirect to back; a missing entity is a 404; anything else is logged and
// answered with a 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, back string, err error, logMsg string, args ...any) {
	switch {
	case errors.Is(err, model.ErrValidation):
		flashError(w, r, sm, back, validationMessage(err))
	case errors.Is(err, model.ErrForbidden):
		slog.WarnContext(r.Context(), "action forbidden", "error", err, "method", r.Method)
		flashError(w, r, sm, back, msgPermissionDenied)
	case errors.Is(err, model.ErrCommentsDisabled):
		flashError(w, r, sm, back, msgCommentsDisabled)
	case errors.Is(err, model.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "Not found")
	default:
		logAndInternalError(w, r, logMsg, append(args, "error", err)...)
	}
}
