// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog/internal/model"
	"github.com/olegiv/oblog/internal/store"
)

func TestPostComment_Attribution(t *testing.T) {
	f := newBlogFixture(t)
	ctx := t.Context()
	post := f.createPost(t, f.adminA, true)

	visitor, err := f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{Content: "Hello", DisplayName: "  Guest  "})
	require.NoError(t, err)
	assert.False(t, visitor.UserID.Valid)
	assert.Equal(t, "  Guest  ", visitor.AuthorDisplayName)
	assert.True(t, visitor.IsApproved)

	byUser, err := f.svc.PostComment(ctx, f.user, post.ID, model.CommentInput{Content: "Hi", DisplayName: "Nickname"})
	require.NoError(t, err)
	assert.True(t, byUser.UserID.Valid)
	assert.Equal(t, f.user.ID(), byUser.UserID.Int64)
	assert.Equal(t, "Nickname", byUser.AuthorDisplayName)

	defaulted, err := f.svc.PostComment(ctx, f.user, post.ID, model.CommentInput{Content: "Again"})
	require.NoError(t, err)
	assert.Equal(t, "Uma Reader", defaulted.AuthorDisplayName)

	byAdmin, err := f.svc.PostComment(ctx, f.adminB, post.ID, model.CommentInput{Content: "Admin here"})
	require.NoError(t, err)
	assert.False(t, byAdmin.UserID.Valid)
	assert.Equal(t, "bob", byAdmin.AuthorDisplayName)
}

func TestPostComment_Validation(t *testing.T) {
	f := newBlogFixture(t)
	ctx := t.Context()
	post := f.createPost(t, f.adminA, true)

	_, err := f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{Content: "   ", DisplayName: "Guest"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{Content: "<b></b>", DisplayName: "Guest"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{Content: "No name"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{
		Content: strings.Repeat("x", MaxCommentLength+1), DisplayName: "Guest",
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	c, err := f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{
		Content: "<script>alert(1)</script>Nice <b>post</b>", DisplayName: "Guest",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nice post", c.Content)

	// Entity-encoded markup must not be decoded into live tags.
	_, err = f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{
		Content: "&lt;script&gt;alert(1)&lt;/script&gt;", DisplayName: "Guest",
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	c, err = f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{
		Content: "Look &lt;img src=x onerror=alert(1)&gt;here", DisplayName: "Guest",
	})
	require.NoError(t, err)
	assert.Equal(t, "Look here", c.Content)
	assert.NotContains(t, c.Content, "<")
}

func TestPostComment_Disabled(t *testing.T) {
	f := newBlogFixture(t)
	ctx := t.Context()
	post := f.createPost(t, f.adminA, true)

	_, err := f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{Content: "Before", DisplayName: "Guest"})
	require.NoError(t, err)

	_, err = f.svc.ToggleComments(ctx, f.adminA, post.ID)
	require.NoError(t, err)

	before, err := f.svc.CommentCount(ctx, post.ID)
	require.NoError(t, err)

	_, err = f.svc.PostComment(ctx, f.user, post.ID, model.CommentInput{Content: "Rejected"})
	assert.ErrorIs(t, err, model.ErrCommentsDisabled)

	after, err := f.svc.CommentCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, int64(1), after, "existing comments stay")
}

func TestPostComment_HiddenDraft(t *testing.T) {
	f := newBlogFixture(t)
	post := f.createPost(t, f.adminA, false)

	_, err := f.svc.PostComment(t.Context(), f.user, post.ID, model.CommentInput{Content: "Sneaky"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestReply_RequiresPrincipal(t *testing.T) {
	f := newBlogFixture(t)
	ctx := t.Context()
	post := f.createPost(t, f.adminA, true)
	root, err := f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{Content: "Root", DisplayName: "Guest"})
	require.NoError(t, err)

	_, err = f.svc.Reply(ctx, nil, post.ID, root.ID, model.CommentInput{Content: "Anon reply", DisplayName: "Guest"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	reply, err := f.svc.Reply(ctx, f.user, post.ID, root.ID, model.CommentInput{Content: "Signed reply"})
	require.NoError(t, err)
	assert.Equal(t, root.ID, reply.ParentCommentID.Int64)
	assert.Equal(t, post.ID, reply.BlogPostID)
}

func TestReply_Disabled(t *testing.T) {
	f := newBlogFixture(t)
	ctx := t.Context()
	post := f.createPost(t, f.adminA, true)
	root, err := f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{Content: "Root", DisplayName: "Guest"})
	require.NoError(t, err)

	_, err = f.svc.ToggleComments(ctx, f.adminA, post.ID)
	require.NoError(t, err)

	_, err = f.svc.Reply(ctx, f.user, post.ID, root.ID, model.CommentInput{Content: "Too late"})
	assert.ErrorIs(t, err, model.ErrCommentsDisabled)
}

func TestReply_ParentMustBelongToPost(t *testing.T) {
	f := newBlogFixture(t)
	ctx := t.Context()
	postA := f.createPost(t, f.adminA, true)
	postB := f.createPost(t, f.adminA, true)

	root, err := f.svc.PostComment(ctx, nil, postA.ID, model.CommentInput{Content: "On A", DisplayName: "Guest"})
	require.NoError(t, err)

	_, err = f.svc.Reply(ctx, f.user, postB.ID, root.ID, model.CommentInput{Content: "Cross post"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.Reply(ctx, f.user, postA.ID, 9999, model.CommentInput{Content: "No parent"})
	assert.ErrorIs(t, err, model.ErrNotFound)

	n, err := f.svc.CommentCount(ctx, postB.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteComment_RemovesSubtree(t *testing.T) {
	f := newBlogFixture(t)
	ctx := t.Context()
	post := f.createPost(t, f.adminA, true)

	root, err := f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{Content: "Root", DisplayName: "Guest"})
	require.NoError(t, err)

	// K = 3 replies under root, one of them nested.
	r1, err := f.svc.Reply(ctx, f.user, post.ID, root.ID, model.CommentInput{Content: "r1"})
	require.NoError(t, err)
	_, err = f.svc.Reply(ctx, f.adminA, post.ID, root.ID, model.CommentInput{Content: "r2"})
	require.NoError(t, err)
	_, err = f.svc.Reply(ctx, f.user, post.ID, r1.ID, model.CommentInput{Content: "r1.1"})
	require.NoError(t, err)

	other, err := f.svc.PostComment(ctx, f.user, post.ID, model.CommentInput{Content: "Other root"})
	require.NoError(t, err)

	q := store.New(f.db)
	before, err := q.CountComments(ctx)
	require.NoError(t, err)

	postID, err := f.svc.DeleteComment(ctx, f.adminA, root.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, postID)

	after, err := q.CountComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, before-4, after)

	thread, err := f.svc.Thread(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, other.ID, thread[0].ID)
}

func TestDeleteComment_OnlyPostOwner(t *testing.T) {
	f := newBlogFixture(t)
	ctx := t.Context()
	post := f.createPost(t, f.adminA, true)

	c, err := f.svc.PostComment(ctx, f.adminB, post.ID, model.CommentInput{Content: "Bob wrote this"})
	require.NoError(t, err)

	// Writing the comment grants nothing.
	_, err = f.svc.DeleteComment(ctx, f.adminB, c.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.svc.DeleteComment(ctx, f.user, c.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.svc.DeleteComment(ctx, f.adminA, 424242)
	assert.ErrorIs(t, err, model.ErrNotFound)

	n, err := f.svc.CommentCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestThread_OrderAndNesting(t *testing.T) {
	f := newBlogFixture(t)
	ctx := t.Context()
	post := f.createPost(t, f.adminA, true)

	a, err := f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{Content: "a", DisplayName: "G"})
	require.NoError(t, err)
	b, err := f.svc.PostComment(ctx, nil, post.ID, model.CommentInput{Content: "b", DisplayName: "G"})
	require.NoError(t, err)
	a1, err := f.svc.Reply(ctx, f.user, post.ID, a.ID, model.CommentInput{Content: "a1"})
	require.NoError(t, err)
	a2, err := f.svc.Reply(ctx, f.user, post.ID, a.ID, model.CommentInput{Content: "a2"})
	require.NoError(t, err)

	page, err := f.svc.ViewPost(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, page.CommentCount)

	require.Len(t, page.Comments, 2)
	assert.Equal(t, a.ID, page.Comments[0].ID)
	assert.Equal(t, b.ID, page.Comments[1].ID)
	require.Len(t, page.Comments[0].Replies, 2)
	assert.Equal(t, a1.ID, page.Comments[0].Replies[0].ID)
	assert.Equal(t, a2.ID, page.Comments[0].Replies[1].ID)
	assert.Empty(t, page.Comments[1].Replies)
}
