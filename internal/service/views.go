// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"time"

	"github.com/olegiv/oblog/internal/model"
)

// UploadsURLPrefix is where stored assets are served from.
const UploadsURLPrefix = "/uploads/"

// AssetURL returns the public URL of a stored asset ref.
func AssetURL(ref string) string {
	if ref == "" {
		return ""
	}
	return UploadsURLPrefix + ref
}

// PostSummary is a published post as shown in the public listing.
type PostSummary struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Excerpt          string    `json:"excerpt"`
	FeaturedImageURL string    `json:"featured_image_url,omitempty"`
	AuthorID         int64     `json:"author_id"`
	PublishedAt      time.Time `json:"published_at"`
}

// PostView is a single post with its rendered body.
type PostView struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Excerpt          string     `json:"excerpt"`
	Content          string     `json:"content"`
	ContentHTML      string     `json:"content_html"`
	FeaturedImageURL string     `json:"featured_image_url,omitempty"`
	AuthorID         int64      `json:"author_id"`
	IsPublished      bool       `json:"is_published"`
	AllowComments    bool       `json:"allow_comments"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
}

// PostPage is everything the post page shows: the post, its comment
// thread and whether the viewer may manage it.
type PostPage struct {
	Post         PostView             `json:"post"`
	Comments     []*model.CommentNode `json:"comments"`
	CommentCount int                  `json:"comment_count"`
	CanManage    bool                 `json:"can_manage"`
	CanReply     bool                 `json:"can_reply"`
}

func newPostSummary(p model.Post) PostSummary {
	return PostSummary{
		ID:               p.ID,
		Title:            p.Title,
		Excerpt:          p.Excerpt,
		FeaturedImageURL: AssetURL(p.FeaturedImageRef.String),
		AuthorID:         p.AuthorID,
		PublishedAt:      p.PublishedAt.Time,
	}
}

// NewPostView renders p for display.
func NewPostView(p model.Post) (PostView, error) {
	body, err := RenderContent(p.Content)
	if err != nil {
		return PostView{}, err
	}

	v := PostView{
		ID:               p.ID,
		Title:            p.Title,
		Excerpt:          p.Excerpt,
		Content:          p.Content,
		ContentHTML:      body,
		FeaturedImageURL: AssetURL(p.FeaturedImageRef.String),
		AuthorID:         p.AuthorID,
		IsPublished:      p.IsPublished,
		AllowComments:    p.AllowComments,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.PublishedAt.Valid {
		t := p.PublishedAt.Time
		v.PublishedAt = &t
	}
	return v, nil
}
