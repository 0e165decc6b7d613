// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import "github.com/olegiv/oblog/internal/model"

// Actions named in ForbiddenError.
const (
	ActionAdminArea     = "admin area"
	ActionEditPost      = "edit post"
	ActionDeletePost    = "delete post"
	ActionManageComment = "manage comment"
	ActionReply         = "reply to comment"
)

// IsAdmin reports whether p is an Admin. A nil principal is a visitor.
func IsAdmin(p *Principal) bool {
	return p != nil && p.Kind == KindAdmin && p.Admin != nil
}

// OwnsPost reports whether p is the Admin who wrote post.
func OwnsPost(p *Principal, post *model.Post) bool {
	return IsAdmin(p) && post != nil && post.AuthorID == p.Admin.ID
}

// CanEditOrDeletePost is the same as OwnsPost.
func CanEditOrDeletePost(p *Principal, post *model.Post) bool {
	return OwnsPost(p, post)
}

// CanManageComment reports whether p may delete comment. Only the author of
// the post the comment belongs to may; writing the comment grants nothing.
func CanManageComment(p *Principal, comment *model.Comment, post *model.Post) bool {
	if comment == nil || post == nil || comment.BlogPostID != post.ID {
		return false
	}
	return OwnsPost(p, post)
}

// CanReply reports whether p is authenticated. Visitors may only post
// top-level comments.
func CanReply(p *Principal) bool {
	return p != nil && (p.Kind == KindUser || p.Kind == KindAdmin)
}

// RequireAdmin returns a ForbiddenError unless p is an Admin.
func RequireAdmin(p *Principal) error {
	if !IsAdmin(p) {
		return model.NewForbidden(ActionAdminArea)
	}
	return nil
}

// RequirePostOwner returns a ForbiddenError naming action unless p owns post.
func RequirePostOwner(p *Principal, post *model.Post, action string) error {
	if !CanEditOrDeletePost(p, post) {
		return model.NewForbidden(action)
	}
	return nil
}

// RequireCommentManager returns a ForbiddenError unless p may manage comment.
func RequireCommentManager(p *Principal, comment *model.Comment, post *model.Post) error {
	if !CanManageComment(p, comment, post) {
		return model.NewForbidden(ActionManageComment)
	}
	return nil
}

// RequireReply returns a ForbiddenError unless p may reply.
func RequireReply(p *Principal) error {
	if !CanReply(p) {
		return model.NewForbidden(ActionReply)
	}
	return nil
}
