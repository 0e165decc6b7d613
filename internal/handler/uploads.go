// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oblog/internal/service"
)

// UploadsHandler serves stored featured images.
type UploadsHandler struct {
	uploads *service.UploadService
}

// NewUploadsHandler creates a new UploadsHandler.
func NewUploadsHandler(uploads *service.UploadService) *UploadsHandler {
	return &UploadsHandler{uploads: uploads}
}

// Serve handles GET /uploads/{filename}. Names that would leave the upload
// directory are rejected.
func (h *UploadsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	path, err := h.uploads.Path(name)
	if err != nil {
		slog.WarnContext(r.Context(), "rejected upload path", "filename", name, "error", err)
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.ErrorContext(r.Context(), "failed to stat upload", "filename", name, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	if info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, path)
}
