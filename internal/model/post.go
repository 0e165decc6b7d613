// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Post is a blog post written by an Admin.
//
// PublishedAt is valid exactly when IsPublished is true. The store only
// writes both columns together, so the pair cannot drift apart.
type Post struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	Content          string         `json:"content"`
	Excerpt          string         `json:"excerpt"`
	FeaturedImageRef sql.NullString `json:"-"`
	AuthorID         int64          `json:"author_id"`
	IsPublished      bool           `json:"is_published"`
	AllowComments    bool           `json:"allow_comments"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	PublishedAt      sql.NullTime   `json:"-"`
}

// HasFeaturedImage returns true if an uploaded asset is attached.
func (p *Post) HasFeaturedImage() bool {
	return p.FeaturedImageRef.Valid && p.FeaturedImageRef.String != ""
}

// IsDraft returns true if the post is not published.
func (p *Post) IsDraft() bool {
	return !p.IsPublished
}

// PostInput carries the editable fields of a post from a create or edit form.
type PostInput struct {
	Title            string
	Content          string
	Excerpt          string
	Publish          bool
	FeaturedImageRef string // relative ref of a freshly stored upload, empty to keep the current one
}
