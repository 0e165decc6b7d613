// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog/internal/metrics"
	"github.com/olegiv/oblog/internal/middleware"
	"github.com/olegiv/oblog/internal/model"
	"github.com/olegiv/oblog/internal/service"
)

// Multipart parsing limits for the post forms.
const (
	maxFormMemory = 10 << 20
	maxFormBody   = service.MaxUploadSize + 1<<20
)

// AdminHandler handles post and comment management for admins.
type AdminHandler struct {
	blog           *service.BlogService
	uploads        *service.UploadService
	sessionManager *scs.SessionManager
	metrics        metrics.Recorder
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(blog *service.BlogService, uploads *service.UploadService, sm *scs.SessionManager, rec metrics.Recorder) *AdminHandler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AdminHandler{
		blog:           blog,
		uploads:        uploads,
		sessionManager: sm,
		metrics:        rec,
	}
}

func editURL(id int64) string {
	return RouteAdminBlog + "/edit/" + strconv.FormatInt(id, 10)
}

var postFormFields = []string{fieldTitle, fieldExcerpt, fieldContent, fieldFeaturedImage, fieldIsPublished}

// parseCheckbox reports whether a checkbox value is ticked.
func parseCheckbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "on", "true", "1", "yes":
		return true
	}
	return false
}

// parsePostForm reads the post form, storing an attached featured image.
// On failure the response is already written.
func (h *AdminHandler) parsePostForm(w http.ResponseWriter, r *http.Request, back string) (model.PostInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			flashError(w, r, h.sessionManager, back, "Upload is too large.")
			return model.PostInput{}, false
		}
		flashError(w, r, h.sessionManager, back, msgInvalidForm)
		return model.PostInput{}, false
	}

	in := model.PostInput{
		Title:   r.FormValue(fieldTitle),
		Content: r.FormValue(fieldContent),
		Excerpt: r.FormValue(fieldExcerpt),
		Publish: parseCheckbox(r.FormValue(fieldIsPublished)),
	}

	file, header, err := r.FormFile(fieldFeaturedImage)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, true
	case err != nil:
		flashError(w, r, h.sessionManager, back, msgInvalidForm)
		return model.PostInput{}, false
	}
	defer func() { _ = file.Close() }()

	ref, err := h.uploads.SaveFeaturedImage(file, header.Filename, header.Size)
	if err != nil {
		handleServiceError(w, r, h.sessionManager, back, err, "failed to store featured image")
		return model.PostInput{}, false
	}
	in.FeaturedImageRef = ref
	return in, true
}

// discardUpload removes an image stored for a form that was then rejected.
func (h *AdminHandler) discardUpload(r *http.Request, ref string) {
	if ref == "" {
		return
	}
	if err := h.uploads.Remove(ref); err != nil {
		slog.WarnContext(r.Context(), "failed to remove rejected upload", "ref", ref, "error", err)
	}
}

// CreateForm handles GET /admin/blog/create.
func (h *AdminHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	renderView(w, r, h.sessionManager, formView{
		Action: redirectAdminCreate,
		Fields: postFormFields,
	})
}

// Create handles POST /admin/blog/create.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.parsePostForm(w, r, redirectAdminCreate)
	if !ok {
		return
	}

	post, err := h.blog.CreatePost(r.Context(), middleware.GetPrincipal(r), in)
	if err != nil {
		h.discardUpload(r, in.FeaturedImageRef)
		handleServiceError(w, r, h.sessionManager, redirectAdminCreate, err, "failed to create post")
		return
	}

	if post.IsPublished {
		h.metrics.RecordPublication(true)
	}
	flashSuccess(w, r, h.sessionManager, redirectAdminList, msgPostCreated)
}

// editView is the edit form together with the post being edited.
type editView struct {
	Form formView         `json:"form"`
	Post service.PostView `json:"post"`
}

// EditForm handles GET /admin/blog/edit/{id}.
func (h *AdminHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	post, err := h.blog.GetPostForEdit(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		handleServiceError(w, r, h.sessionManager, redirectAdminList, err, "failed to load post for edit", "post_id", id)
		return
	}

	view, err := service.NewPostView(post)
	if err != nil {
		logAndInternalError(w, r, "failed to render post", "error", err, "post_id", id)
		return
	}

	renderView(w, r, h.sessionManager, editView{
		Form: formView{Action: editURL(id), Fields: postFormFields},
		Post: view,
	})
}

// Edit handles POST /admin/blog/edit/{id}. Leaving the image field empty
// keeps the current image.
func (h *AdminHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	back := editURL(id)

	in, ok := h.parsePostForm(w, r, back)
	if !ok {
		return
	}

	if _, err := h.blog.UpdatePost(r.Context(), middleware.GetPrincipal(r), id, in); err != nil {
		h.discardUpload(r, in.FeaturedImageRef)
		if errors.Is(err, model.ErrForbidden) {
			back = redirectAdminList
		}
		handleServiceError(w, r, h.sessionManager, back, err, "failed to update post", "post_id", id)
		return
	}

	flashSuccess(w, r, h.sessionManager, redirectAdminList, msgPostUpdated)
}

// adminPostRow is one line of the admin post list.
type adminPostRow struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Excerpt          string     `json:"excerpt"`
	FeaturedImageURL string     `json:"featured_image_url,omitempty"`
	IsPublished      bool       `json:"is_published"`
	AllowComments    bool       `json:"allow_comments"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
}

func newAdminPostRow(p model.Post) adminPostRow {
	row := adminPostRow{
		ID:               p.ID,
		Title:            p.Title,
		Excerpt:          p.Excerpt,
		FeaturedImageURL: service.AssetURL(p.FeaturedImageRef.String),
		IsPublished:      p.IsPublished,
		AllowComments:    p.AllowComments,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.PublishedAt.Valid {
		t := p.PublishedAt.Time
		row.PublishedAt = &t
	}
	return row
}

// List handles GET /admin/blog/list: the admin's own posts, drafts included.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blog.ListByAuthor(r.Context(), middleware.GetPrincipal(r))
	if err != nil {
		handleServiceError(w, r, h.sessionManager, RouteBlog, err, "failed to list posts")
		return
	}

	rows := make([]adminPostRow, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, newAdminPostRow(p))
	}
	renderView(w, r, h.sessionManager, map[string]any{"posts": rows})
}

// Delete handles POST /admin/blog/delete/{id}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.blog.DeletePost(r.Context(), middleware.GetPrincipal(r), id); err != nil {
		handleServiceError(w, r, h.sessionManager, redirectAdminList, err, "failed to delete post", "post_id", id)
		return
	}

	flashSuccess(w, r, h.sessionManager, redirectAdminList, msgPostDeleted)
}

// ToggleComments handles POST /admin/blog/{id}/toggle-comments.
func (h *AdminHandler) ToggleComments(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	allowed, err := h.blog.ToggleComments(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		handleServiceError(w, r, h.sessionManager, redirectAdminList, err, "failed to toggle comments", "post_id", id)
		return
	}

	msg := msgCommentsOff
	if allowed {
		msg = msgCommentsEnabled
	}
	flashSuccess(w, r, h.sessionManager, postURL(id), msg)
}

// Publish handles POST /admin/blog/{id}/publish.
func (h *AdminHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublication(w, r, true)
}

// Unpublish handles POST /admin/blog/{id}/unpublish.
func (h *AdminHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublication(w, r, false)
}

func (h *AdminHandler) setPublication(w http.ResponseWriter, r *http.Request, publish bool) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	p := middleware.GetPrincipal(r)
	var err error
	if publish {
		_, err = h.blog.Publish(r.Context(), p, id)
	} else {
		_, err = h.blog.Unpublish(r.Context(), p, id)
	}
	if err != nil {
		handleServiceError(w, r, h.sessionManager, redirectAdminList, err, "failed to change publication",
			"post_id", id, "publish", publish)
		return
	}

	h.metrics.RecordPublication(publish)
	msg := msgPostUnpublished
	if publish {
		msg = msgPostPublished
	}
	flashSuccess(w, r, h.sessionManager, redirectAdminList, msg)
}

// DeleteComment handles POST /admin/comment/{id}/delete. Replies under the
// comment go with it.
func (h *AdminHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	postID, err := h.blog.DeleteComment(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		handleServiceError(w, r, h.sessionManager, redirectAdminList, err, "failed to delete comment", "comment_id", id)
		return
	}

	flashSuccess(w, r, h.sessionManager, postURL(postID), msgCommentDeleted)
}
