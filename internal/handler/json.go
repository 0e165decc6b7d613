// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/middleware"
	"github.com/olegiv/oblog/internal/session"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   message,
	})
}

// flashView is a one-shot notice carried over from the previous request.
type flashView struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// principalView describes the signed-in principal.
type principalView struct {
	Kind        string `json:"kind"`
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// pageView is the envelope every read route answers with.
type pageView struct {
	Success   bool           `json:"success"`
	Flash     *flashView     `json:"flash,omitempty"`
	Principal *principalView `json:"principal,omitempty"`
	Data      any            `json:"data"`
}

func newPrincipalView(p *auth.Principal) *principalView {
	if p == nil {
		return nil
	}
	return &principalView{
		Kind:        p.Kind.String(),
		ID:          p.ID(),
		DisplayName: p.DisplayName(),
		Email:       p.Email(),
	}
}

// renderView writes data as a JSON view, consuming the pending flash message.
func renderView(w http.ResponseWriter, r *http.Request, sm *scs.SessionManager, data any) {
	view := pageView{
		Success:   true,
		Principal: newPrincipalView(middleware.GetPrincipal(r)),
		Data:      data,
	}
	if msg, typ := session.PopFlash(r.Context(), sm); msg != "" {
		view.Flash = &flashView{Message: msg, Type: typ}
	}
	writeJSON(w, http.StatusOK, view)
}
