// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/oblog/internal/model"
)

const postColumns = `id, title, content, excerpt, featured_image_ref, author_id,
is_published, allow_comments, created_at, updated_at, published_at`

func scanPost(row rowScanner) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Excerpt, &p.FeaturedImageRef, &p.AuthorID,
		&p.IsPublished, &p.AllowComments, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt)
	return p, err
}

func scanPosts(rows *sql.Rows) ([]model.Post, error) {
	defer func() { _ = rows.Close() }()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CreatePostParams holds the columns of a new post. Posts are always
// created as drafts; publication goes through SetPostPublication.
type CreatePostParams struct {
	Title            string
	Content          string
	Excerpt          string
	FeaturedImageRef sql.NullString
	AuthorID         int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const createPost = `INSERT INTO posts (title, content, excerpt, featured_image_ref, author_id,
is_published, allow_comments, created_at, updated_at, published_at)
VALUES (?, ?, ?, ?, ?, 0, 1, ?, ?, NULL)
RETURNING ` + postColumns

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, createPost,
		arg.Title, arg.Content, arg.Excerpt, arg.FeaturedImageRef, arg.AuthorID,
		arg.CreatedAt.UTC(), arg.UpdatedAt.UTC()))
}

const getPostByID = `SELECT ` + postColumns + ` FROM posts WHERE id = ?`

func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPostByID, id))
}

// UpdatePostContentParams holds the editable columns of a post.
type UpdatePostContentParams struct {
	ID               int64
	Title            string
	Content          string
	Excerpt          string
	FeaturedImageRef sql.NullString
	UpdatedAt        time.Time
}

const updatePostContent = `UPDATE posts
SET title = ?, content = ?, excerpt = ?, featured_image_ref = ?, updated_at = ?
WHERE id = ?
RETURNING ` + postColumns

func (q *Queries) UpdatePostContent(ctx context.Context, arg UpdatePostContentParams) (model.Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, updatePostContent,
		arg.Title, arg.Content, arg.Excerpt, arg.FeaturedImageRef, arg.UpdatedAt.UTC(), arg.ID))
}

const setPostPublication = `UPDATE posts
SET is_published = ?, published_at = ?, updated_at = ?
WHERE id = ?
RETURNING ` + postColumns

// SetPostPublication publishes the post when publishedAt is valid and
// unpublishes it otherwise. Both columns are written together.
func (q *Queries) SetPostPublication(ctx context.Context, id int64, publishedAt sql.NullTime, updatedAt time.Time) (model.Post, error) {
	if publishedAt.Valid {
		publishedAt.Time = publishedAt.Time.UTC()
	}
	return scanPost(q.db.QueryRowContext(ctx, setPostPublication,
		publishedAt.Valid, publishedAt, updatedAt.UTC(), id))
}

const setPostAllowComments = `UPDATE posts SET allow_comments = ?, updated_at = ?
WHERE id = ?
RETURNING ` + postColumns

func (q *Queries) SetPostAllowComments(ctx context.Context, id int64, allow bool, updatedAt time.Time) (model.Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, setPostAllowComments, allow, updatedAt.UTC(), id))
}

const deletePost = `DELETE FROM posts WHERE id = ?`

func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deletePost, id)
	return err
}

const listPublishedPosts = `SELECT ` + postColumns + ` FROM posts
WHERE is_published = 1
ORDER BY published_at DESC, id DESC`

// ListPublishedPosts returns published posts, newest publication first.
func (q *Queries) ListPublishedPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, listPublishedPosts)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

const listPostsByAuthor = `SELECT ` + postColumns + ` FROM posts
WHERE author_id = ?
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListPostsByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, listPostsByAuthor, authorID)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

const countPosts = `SELECT COUNT(*) FROM posts`

func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPosts).Scan(&n)
	return n, err
}
