// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Comment is a comment on a post. Comments with a ParentCommentID are replies;
// the set of comments on one post forms a forest rooted at top-level comments.
type Comment struct {
	ID                int64         `json:"id"`
	Content           string        `json:"content"`
	AuthorDisplayName string        `json:"author_display_name"`
	UserID            sql.NullInt64 `json:"-"`
	BlogPostID        int64         `json:"blog_post_id"`
	ParentCommentID   sql.NullInt64 `json:"-"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	IsApproved        bool          `json:"is_approved"`
}

// IsReply returns true if the comment has a parent.
func (c *Comment) IsReply() bool {
	return c.ParentCommentID.Valid
}

// CommentInput carries the visitor-supplied fields of a comment or reply.
type CommentInput struct {
	Content     string
	DisplayName string
}

// CommentNode is a comment with its nested replies.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}

// BuildCommentTree nests a flat list of comments by ParentCommentID.
// The input order is kept among siblings, so passing comments ordered by
// creation time yields oldest-first threads. Replies whose parent is not in
// the list are dropped.
func BuildCommentTree(comments []Comment) []*CommentNode {
	nodes := make(map[int64]*CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &CommentNode{Comment: c, Replies: []*CommentNode{}}
	}

	roots := make([]*CommentNode, 0)
	for _, c := range comments {
		node := nodes[c.ID]
		if !c.ParentCommentID.Valid {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[c.ParentCommentID.Int64]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}
	return roots
}

// CountNodes returns the number of comments in a forest, replies included.
func CountNodes(nodes []*CommentNode) int {
	n := 0
	for _, node := range nodes {
		n += 1 + CountNodes(node.Replies)
	}
	return n
}
