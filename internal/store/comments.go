// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/oblog/internal/model"
)

const commentColumns = `id, content, author_display_name, user_id, blog_post_id,
parent_comment_id, created_at, updated_at, is_approved`

func scanComment(row rowScanner) (model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.Content, &c.AuthorDisplayName, &c.UserID, &c.BlogPostID,
		&c.ParentCommentID, &c.CreatedAt, &c.UpdatedAt, &c.IsApproved)
	return c, err
}

// CreateCommentParams holds the columns of a new top-level comment.
type CreateCommentParams struct {
	Content           string
	AuthorDisplayName string
	UserID            sql.NullInt64
	BlogPostID        int64
	CreatedAt         time.Time
}

const createComment = `INSERT INTO comments (content, author_display_name, user_id, blog_post_id,
parent_comment_id, created_at, updated_at, is_approved)
VALUES (?, ?, ?, ?, NULL, ?, ?, 1)
RETURNING ` + commentColumns

func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (model.Comment, error) {
	created := arg.CreatedAt.UTC()
	return scanComment(q.db.QueryRowContext(ctx, createComment,
		arg.Content, arg.AuthorDisplayName, arg.UserID, arg.BlogPostID, created, created))
}

// CreateReplyParams holds the columns of a reply. The post id is copied
// from the parent row, and the insert only happens when the parent belongs
// to BlogPostID.
type CreateReplyParams struct {
	Content           string
	AuthorDisplayName string
	UserID            sql.NullInt64
	BlogPostID        int64
	ParentCommentID   int64
	CreatedAt         time.Time
}

const createReply = `INSERT INTO comments (content, author_display_name, user_id, blog_post_id,
parent_comment_id, created_at, updated_at, is_approved)
SELECT ?, ?, ?, parent.blog_post_id, parent.id, ?, ?, 1
FROM comments AS parent
WHERE parent.id = ? AND parent.blog_post_id = ?
RETURNING ` + commentColumns

// CreateReply returns sql.ErrNoRows when the parent does not exist on the
// given post.
func (q *Queries) CreateReply(ctx context.Context, arg CreateReplyParams) (model.Comment, error) {
	created := arg.CreatedAt.UTC()
	return scanComment(q.db.QueryRowContext(ctx, createReply,
		arg.Content, arg.AuthorDisplayName, arg.UserID, created, created,
		arg.ParentCommentID, arg.BlogPostID))
}

const getCommentByID = `SELECT ` + commentColumns + ` FROM comments WHERE id = ?`

func (q *Queries) GetCommentByID(ctx context.Context, id int64) (model.Comment, error) {
	return scanComment(q.db.QueryRowContext(ctx, getCommentByID, id))
}

const listCommentsByPost = `SELECT ` + commentColumns + ` FROM comments
WHERE blog_post_id = ?
ORDER BY created_at ASC, id ASC`

// ListCommentsByPost returns every comment on a post, oldest first, as a
// flat list ready for model.BuildCommentTree.
func (q *Queries) ListCommentsByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	rows, err := q.db.QueryContext(ctx, listCommentsByPost, postID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

const countCommentsByPost = `SELECT COUNT(*) FROM comments WHERE blog_post_id = ?`

func (q *Queries) CountCommentsByPost(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countCommentsByPost, postID).Scan(&n)
	return n, err
}

const countComments = `SELECT COUNT(*) FROM comments`

func (q *Queries) CountComments(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countComments).Scan(&n)
	return n, err
}

const deleteComment = `DELETE FROM comments WHERE id = ?`

// DeleteComment removes a comment. Replies go with it through the
// parent_comment_id cascade.
func (q *Queries) DeleteComment(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteComment, id)
	return err
}
