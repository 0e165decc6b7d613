// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oblog/internal/metrics"
	"github.com/olegiv/oblog/internal/middleware"
	"github.com/olegiv/oblog/internal/model"
	"github.com/olegiv/oblog/internal/service"
	"github.com/olegiv/oblog/internal/util"
)

// BlogHandler serves the public blog and takes comments.
type BlogHandler struct {
	blog           *service.BlogService
	sessionManager *scs.SessionManager
	metrics        metrics.Recorder
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(blog *service.BlogService, sm *scs.SessionManager, rec metrics.Recorder) *BlogHandler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &BlogHandler{
		blog:           blog,
		sessionManager: sm,
		metrics:        rec,
	}
}

// postURL returns the public URL of a post.
func postURL(id int64) string {
	return RouteBlog + "/" + strconv.FormatInt(id, 10)
}

// urlID parses a positive id route parameter, answering 404 when it is
// malformed.
func urlID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, ok := util.ParsePositiveID(chi.URLParam(r, param))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Not found")
		return 0, false
	}
	return id, true
}

// postListView is the public listing.
type postListView struct {
	Posts []service.PostSummary `json:"posts"`
}

// List handles GET /blog.
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blog.ListPublished(r.Context())
	if err != nil {
		logAndInternalError(w, r, "failed to list published posts", "error", err)
		return
	}
	if posts == nil {
		posts = []service.PostSummary{}
	}
	renderView(w, r, h.sessionManager, postListView{Posts: posts})
}

// View handles GET /blog/{id}. Drafts are only visible to their author.
func (h *BlogHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	page, err := h.blog.ViewPost(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Post not found")
			return
		}
		logAndInternalError(w, r, "failed to load post", "error", err, "post_id", id)
		return
	}

	renderView(w, r, h.sessionManager, page)
}

func commentInput(r *http.Request) model.CommentInput {
	return model.CommentInput{
		Content:     r.FormValue(fieldContent),
		DisplayName: r.FormValue(fieldName),
	}
}

// Comment handles POST /blog/{id}/comment.
func (h *BlogHandler) Comment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	back := postURL(id)
	if !parseFormOrRedirect(w, r, h.sessionManager, back) {
		return
	}

	if _, err := h.blog.PostComment(r.Context(), middleware.GetPrincipal(r), id, commentInput(r)); err != nil {
		handleServiceError(w, r, h.sessionManager, back, err, "failed to post comment", "post_id", id)
		return
	}

	h.metrics.RecordComment(false)
	flashSuccess(w, r, h.sessionManager, back, msgCommentPosted)
}

// Reply handles POST /blog/{id}/comment/{commentID}/reply. Only signed-in
// principals may reply.
func (h *BlogHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	parentID, ok := urlID(w, r, "commentID")
	if !ok {
		return
	}

	p := middleware.GetPrincipal(r)
	if p == nil {
		flashError(w, r, h.sessionManager, RouteLogin, msgReplyLoginRequired)
		return
	}

	back := postURL(id)
	if !parseFormOrRedirect(w, r, h.sessionManager, back) {
		return
	}

	if _, err := h.blog.Reply(r.Context(), p, id, parentID, commentInput(r)); err != nil {
		handleServiceError(w, r, h.sessionManager, back, err, "failed to post reply",
			"post_id", id, "parent_id", parentID)
		return
	}

	h.metrics.RecordComment(true)
	flashSuccess(w, r, h.sessionManager, back, msgReplyPosted)
}
