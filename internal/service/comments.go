// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/model"
	"github.com/olegiv/oblog/internal/store"
	"github.com/olegiv/oblog/internal/util"
)

// prepareComment sanitizes the input and fills in the display name. The
// name is kept as entered; only a blank one is replaced by the principal's.
func prepareComment(in model.CommentInput, p *auth.Principal) (model.CommentInput, error) {
	in.Content = StripTags(in.Content)
	if strings.TrimSpace(in.DisplayName) == "" {
		in.DisplayName = ""
		if p != nil {
			in.DisplayName = p.DisplayName()
		}
	}

	v := model.NewValidator()
	v.Check(in.Content != "", "content", "Comment cannot be empty")
	v.Check(utf8.RuneCountInString(in.Content) <= MaxCommentLength, "content",
		fmt.Sprintf("Comment must be at most %d characters", MaxCommentLength))
	v.Check(in.DisplayName != "", "display_name", "Name is required")
	v.Check(utf8.RuneCountInString(in.DisplayName) <= MaxDisplayNameLength, "display_name",
		fmt.Sprintf("Name must be at most %d characters", MaxDisplayNameLength))
	return in, v.Err()
}

// commenterID is the user id recorded on a comment. Only Users are
// attributed; Admins and visitors leave it empty.
func commenterID(p *auth.Principal) sql.NullInt64 {
	if p != nil && p.Kind == auth.KindUser {
		return util.NullInt64FromValue(p.ID())
	}
	return sql.NullInt64{}
}

// PostComment adds a top-level comment to a post the caller can see.
// The principal is optional.
func (s *BlogService) PostComment(ctx context.Context, p *auth.Principal, postID int64, in model.CommentInput) (model.Comment, error) {
	post, err := s.visiblePost(ctx, p, postID)
	if err != nil {
		return model.Comment{}, err
	}
	if !post.AllowComments {
		return model.Comment{}, model.ErrCommentsDisabled
	}

	in, err = prepareComment(in, p)
	if err != nil {
		return model.Comment{}, err
	}

	comment, err := s.queries.CreateComment(ctx, store.CreateCommentParams{
		Content:           in.Content,
		AuthorDisplayName: in.DisplayName,
		UserID:            commenterID(p),
		BlogPostID:        postID,
		CreatedAt:         s.timestamp(),
	})
	if err != nil {
		return model.Comment{}, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment posted", "comment_id", comment.ID, "post_id", postID)
	return comment, nil
}

// Reply answers a comment on the same post. Only authenticated principals
// may reply, and the parent must belong to postID.
func (s *BlogService) Reply(ctx context.Context, p *auth.Principal, postID, parentID int64, in model.CommentInput) (model.Comment, error) {
	if err := auth.RequireReply(p); err != nil {
		return model.Comment{}, err
	}

	post, err := s.visiblePost(ctx, p, postID)
	if err != nil {
		return model.Comment{}, err
	}
	if !post.AllowComments {
		return model.Comment{}, model.ErrCommentsDisabled
	}

	parent, err := s.queries.GetCommentByID(ctx, parentID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && parent.BlogPostID != postID) {
		return model.Comment{}, fmt.Errorf("comment %d on post %d: %w", parentID, postID, model.ErrNotFound)
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("loading comment %d: %w", parentID, err)
	}

	in, err = prepareComment(in, p)
	if err != nil {
		return model.Comment{}, err
	}

	reply, err := s.queries.CreateReply(ctx, store.CreateReplyParams{
		Content:           in.Content,
		AuthorDisplayName: in.DisplayName,
		UserID:            commenterID(p),
		BlogPostID:        postID,
		ParentCommentID:   parentID,
		CreatedAt:         s.timestamp(),
	})
	if errors.Is(err, sql.ErrNoRows) {
		// Parent went away between the lookup and the insert.
		return model.Comment{}, fmt.Errorf("comment %d on post %d: %w", parentID, postID, model.ErrNotFound)
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("creating reply: %w", err)
	}

	s.logger.Info("reply posted", "comment_id", reply.ID, "parent_id", parentID, "post_id", postID)
	return reply, nil
}

// DeleteComment deletes a comment and its whole reply subtree. Only the
// author of the comment's post may do so. It returns the post id.
func (s *BlogService) DeleteComment(ctx context.Context, p *auth.Principal, commentID int64) (int64, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return 0, err
	}

	var postID int64
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		comment, err := q.GetCommentByID(ctx, commentID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("comment %d: %w", commentID, model.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("loading comment %d: %w", commentID, err)
		}

		post, err := getPost(ctx, q, comment.BlogPostID)
		if err != nil {
			return err
		}
		if err := auth.RequireCommentManager(p, &comment, &post); err != nil {
			return err
		}

		if err := q.DeleteComment(ctx, commentID); err != nil {
			return fmt.Errorf("deleting comment: %w", err)
		}
		postID = post.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("comment deleted", "comment_id", commentID, "post_id", postID)
	return postID, nil
}

// Thread returns a post's comments as a forest ordered by creation time.
func (s *BlogService) Thread(ctx context.Context, postID int64) ([]*model.CommentNode, error) {
	comments, err := s.queries.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return model.BuildCommentTree(comments), nil
}

// CommentCount returns the number of comments on a post.
func (s *BlogService) CommentCount(ctx context.Context, postID int64) (int64, error) {
	return s.queries.CountCommentsByPost(ctx, postID)
}
